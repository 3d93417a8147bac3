package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/api"
	"github.com/tcp_snm/arena/internal/config"
	"github.com/tcp_snm/arena/internal/database"
	"github.com/tcp_snm/arena/internal/email"
	"github.com/tcp_snm/arena/internal/events"
	"github.com/tcp_snm/arena/internal/realtime"
	"github.com/tcp_snm/arena/internal/repository"
	"github.com/tcp_snm/arena/internal/service"
	"github.com/tcp_snm/arena/internal/service/judge_service"
	"github.com/tcp_snm/arena/internal/service/lock_service"
	"github.com/tcp_snm/arena/internal/service/problem_service"
	"github.com/tcp_snm/arena/internal/service/room_service"
	"github.com/tcp_snm/arena/internal/service/scheduler_service"
	"github.com/tcp_snm/arena/internal/service/submission_service"
	"github.com/tcp_snm/arena/internal/service/user_service"
	"github.com/tcp_snm/arena/middleware"
)

const shutdownTimeout = 15 * time.Second

type app struct {
	cfg       *config.Config
	pool      *pgxpool.Pool
	redis     *redis.Client
	scheduler *scheduler_service.Scheduler
	email     *email.EmailService
	socket    *realtime.Server
	rooms     *room_service.RoomService
	api       *api.Api
	auth      *middleware.JWTAuth
}

func initLogger(level string) {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp: true,
	})
	lvl, err := log.ParseLevel(level)
	if err != nil {
		log.Warnf("unknown log level %q, using info", level)
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

func initDatabase(dbURL string) *pgxpool.Pool {
	// create a connection pool to the database
	pool, err := pgxpool.New(context.Background(), dbURL)
	if err != nil {
		panic(err)
	}
	if err = pool.Ping(context.Background()); err != nil {
		panic(err)
	}
	log.Info("database connection pool created")
	return pool
}

func (a *app) initLocker() lock_service.RoomLocker {
	if a.cfg.LockBackend != config.LockBackendRedis {
		log.Info("using in-process room locks")
		return lock_service.NewLocalLocker()
	}

	a.redis = redis.NewClient(&redis.Options{
		Addr:     a.cfg.RedisAddr,
		Password: a.cfg.RedisPassword,
		DB:       a.cfg.RedisDB,
	})
	if err := a.redis.Ping(context.Background()).Err(); err != nil {
		panic(err)
	}
	locker := &lock_service.RedisLocker{
		Client: a.redis,
		TTL:    a.cfg.RoomLockTTL,
	}
	locker.Start()
	log.Infof("using redis room locks at %s", a.cfg.RedisAddr)
	return locker
}

func (a *app) initEvaluator() *judge_service.Evaluator {
	log.Info("initializing evaluator")
	e := &judge_service.Evaluator{
		Judge: judge_service.NewJudge0Client(
			a.cfg.Judge0URL,
			a.cfg.Judge0APIKey,
			a.cfg.Judge0APIHost,
			a.cfg.JudgeHTTPTimeout,
		),
		PollInterval:    a.cfg.JudgePollInterval,
		MaxPollAttempts: a.cfg.JudgeMaxPollAttempts,
		CPUTimeLimit:    a.cfg.JudgeCPUTimeLimit,
		MemoryLimitKB:   a.cfg.JudgeMemoryLimitKB,
	}
	e.Start()
	return e
}

func (a *app) initServices() {
	store := &repository.PgStore{DB: database.New(a.pool)}

	log.Info("initializing user service")
	us := &user_service.UserService{Users: store}
	us.Start()

	log.Info("initializing problem service")
	ps := &problem_service.ProblemService{
		Problems:  store,
		CacheSize: a.cfg.ProblemCacheSize,
	}
	ps.Start()

	a.scheduler = &scheduler_service.Scheduler{}
	a.scheduler.Start()

	a.email = &email.EmailService{
		Sender:   a.cfg.SenderEmail,
		Password: a.cfg.SenderEmailPassword,
		SMTPHost: a.cfg.SMTPHost,
		SMTPPort: a.cfg.SMTPPort,
		Workers:  a.cfg.EmailWorkers,
	}
	a.email.Start()

	a.socket = &realtime.Server{
		Verify: a.auth.Parse,
	}
	a.socket.Start()
	publisher := events.Fanout{a.socket, events.LogPublisher{}}

	log.Info("initializing room service")
	a.rooms = &room_service.RoomService{
		Rooms:          store,
		Submissions:    store,
		ProblemService: ps,
		UserService:    us,
		Locker:         a.initLocker(),
		Scheduler:      a.scheduler,
		Publisher:      publisher,
		EmailService:   a.email,
	}
	a.rooms.Start()

	log.Info("initializing submission service")
	ss := &submission_service.SubmissionService{
		Submissions:    store,
		RoomService:    a.rooms,
		ProblemService: ps,
		Evaluator:      a.initEvaluator(),
		Publisher:      publisher,
	}
	ss.Start()

	a.api = &api.Api{
		RoomService:       a.rooms,
		SubmissionService: ss,
		UserService:       us,
	}
}

func setup() *app {
	cfg := config.Load()
	initLogger(cfg.LogLevel)
	cfg.Validate()
	service.InitializeServices()

	a := &app{
		cfg:  cfg,
		pool: initDatabase(cfg.DBURL),
		auth: middleware.NewJWTAuth(cfg.JWTSecret),
	}
	a.initServices()

	// battles that were running before a restart
	if err := a.rooms.RecoverTimers(context.Background()); err != nil {
		panic(err)
	}
	return a
}

func (a *app) setCors(router *chi.Mux) {
	router.Use(
		cors.Handler(
			cors.Options{
				AllowedOrigins:   a.cfg.AllowedOrigins,
				AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders:   []string{"*"},
				AllowCredentials: true,
				ExposedHeaders:   []string{"Link"},
				MaxAge:           300,
			},
		),
	)
	log.Info("cors options has been set")
}

// shutdown stops accepting work first, then drains background components.
func (a *app) shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("server shutdown, %v", err)
	}
	a.scheduler.Stop()
	a.email.Stop()
	if err := a.socket.Close(); err != nil {
		log.Errorf("socket server close, %v", err)
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Errorf("redis close, %v", err)
		}
	}
	a.pool.Close()
	log.Info("shutdown complete")
}

func main() {
	a := setup()

	// initialize a new router
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	a.setCors(router)

	// real-time events
	go a.socket.Serve()
	router.Handle("/socket.io/*", a.socket.Handler())
	log.Info("socket.io server has been mounted")

	// mount v1 router
	router.Mount("/v1", a.newV1Router())
	log.Info("v1 router has been mounted")

	log.Info("starting server")
	srv := &http.Server{
		Handler:           router,
		Addr:              a.cfg.Address(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server cannot be started. Error: %v", err)
		}
	}()
	log.Infof("listening on %s", srv.Addr)

	<-ctx.Done()
	log.Info("shutting down")
	a.shutdown(srv)
}

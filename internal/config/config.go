package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	LockBackendLocal = "local"
	LockBackendRedis = "redis"
)

type Config struct {
	APIURL    string
	Port      string
	DBURL     string
	JWTSecret []byte
	LogLevel  string

	Judge0URL     string
	Judge0APIKey  string
	Judge0APIHost string

	JudgePollInterval    time.Duration
	JudgeMaxPollAttempts int
	JudgeCPUTimeLimit    float64
	JudgeMemoryLimitKB   int
	JudgeHTTPTimeout     time.Duration

	LockBackend   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RoomLockTTL   time.Duration

	ProblemCacheSize int

	SenderEmail         string
	SenderEmailPassword string
	SMTPHost            string
	SMTPPort            int
	EmailWorkers        int

	AllowedOrigins []string
}

// Load reads the environment, after merging a .env file when one exists.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, relying on environment variables")
	}

	return &Config{
		APIURL:    getEnv("API_URL", ""),
		Port:      getEnv("PORT", "8080"),
		DBURL:     getEnv("DB_URL", ""),
		JWTSecret: []byte(getEnv("JWT_SECRET", "")),
		LogLevel:  getEnv("LOG_LEVEL", "info"),

		Judge0URL:     getEnv("JUDGE0_URL", "https://judge0-ce.p.rapidapi.com"),
		Judge0APIKey:  getEnv("JUDGE0_API_KEY", ""),
		Judge0APIHost: getEnv("JUDGE0_API_HOST", "judge0-ce.p.rapidapi.com"),

		JudgePollInterval:    time.Duration(getEnvAsInt("JUDGE_POLL_INTERVAL_MS", 1000)) * time.Millisecond,
		JudgeMaxPollAttempts: getEnvAsInt("JUDGE_MAX_POLL_ATTEMPTS", 10),
		JudgeCPUTimeLimit:    float64(getEnvAsInt("JUDGE_CPU_TIME_LIMIT", 5)),
		JudgeMemoryLimitKB:   getEnvAsInt("JUDGE_MEMORY_LIMIT_KB", 128000),
		JudgeHTTPTimeout:     time.Duration(getEnvAsInt("JUDGE_HTTP_TIMEOUT_SECONDS", 30)) * time.Second,

		LockBackend:   strings.ToLower(getEnv("LOCK_BACKEND", LockBackendLocal)),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		RoomLockTTL:   time.Duration(getEnvAsInt("ROOM_LOCK_TTL_SECONDS", 10)) * time.Second,

		ProblemCacheSize: getEnvAsInt("PROBLEM_CACHE_SIZE", 256),

		SenderEmail:         getEnv("SENDER_EMAIL", ""),
		SenderEmailPassword: getEnv("SENDER_EMAIL_PASSWORD", ""),
		SMTPHost:            getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:            getEnvAsInt("SMTP_PORT", 587),
		EmailWorkers:        getEnvAsInt("EMAIL_WORKERS", 1),

		AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"https://*", "http://*"}),
	}
}

// Validate panics on settings the server cannot run without.
func (c *Config) Validate() {
	if c.DBURL == "" {
		panic("DB_URL not found")
	}
	if len(c.JWTSecret) == 0 {
		panic("JWT_SECRET not found")
	}
	if c.LockBackend != LockBackendLocal && c.LockBackend != LockBackendRedis {
		panic("LOCK_BACKEND must be local or redis, got " + c.LockBackend)
	}
	if c.Judge0APIKey == "" {
		log.Warn("JUDGE0_API_KEY not set, judge requests will likely be rejected")
	}
}

func (c *Config) Address() string {
	return c.APIURL + ":" + c.Port
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	if valueStr != "" {
		log.Warnf("%s=%q is not a number, using %d", key, valueStr, fallback)
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	values := make([]string, 0)
	for _, v := range strings.Split(valueStr, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

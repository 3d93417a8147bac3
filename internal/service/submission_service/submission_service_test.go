package submission_service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/arena_errors"
	"github.com/tcp_snm/arena/internal/events"
	"github.com/tcp_snm/arena/internal/models"
	"github.com/tcp_snm/arena/internal/repository"
	"github.com/tcp_snm/arena/internal/service"
	"github.com/tcp_snm/arena/internal/service/judge_service"
	"github.com/tcp_snm/arena/internal/service/lock_service"
	"github.com/tcp_snm/arena/internal/service/problem_service"
	"github.com/tcp_snm/arena/internal/service/room_service"
	"github.com/tcp_snm/arena/internal/service/scheduler_service"
	"github.com/tcp_snm/arena/internal/service/user_service"
)

func TestMain(m *testing.M) {
	fmt.Println("initializing logger")
	logrus.SetFormatter(&logrus.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})
	logrus.SetLevel(logrus.DebugLevel)

	code := m.Run()
	logrus.Info("tests completed")
	os.Exit(code)
}

// echoJudge accepts a submission when its source contains "correct" and
// reports a wrong answer otherwise.
type echoJudge struct {
	dispatches atomic.Int32
	failAll    bool
}

func (j *echoJudge) Dispatch(_ context.Context, req judge_service.DispatchRequest) (string, error) {
	j.dispatches.Add(1)
	if j.failAll {
		return "", errors.New("judge is down")
	}
	if strings.Contains(req.SourceCode, "correct") {
		return "ok:" + req.ExpectedOutput, nil
	}
	return "wrong:" + req.ExpectedOutput, nil
}

func (j *echoJudge) Poll(_ context.Context, token string) (judge_service.Verdict, error) {
	elapsed := "0.01"
	if out, ok := strings.CutPrefix(token, "ok:"); ok {
		return judge_service.Verdict{
			Token:  token,
			Status: judge_service.VerdictStatus{ID: 3, Description: "Accepted"},
			Stdout: &out,
			Time:   &elapsed,
		}, nil
	}
	out := "nope"
	return judge_service.Verdict{
		Token:  token,
		Status: judge_service.VerdictStatus{ID: 4, Description: "Wrong Answer"},
		Stdout: &out,
		Time:   &elapsed,
	}, nil
}

type fixture struct {
	store       *repository.MemoryStore
	recorder    *events.Recorder
	judge       *echoJudge
	rooms       *room_service.RoomService
	submissions *SubmissionService
	users       []models.User
	problems    []uuid.UUID
	room        models.Room
}

// newFixture starts a battle between alice and bob over two problems.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    repository.NewMemoryStore(),
		recorder: &events.Recorder{},
		judge:    &echoJudge{},
	}
	for _, name := range []string{"alice", "bob", "carol"} {
		u := models.User{ID: uuid.New(), UserName: name}
		f.store.AddUser(u)
		f.users = append(f.users, u)
	}
	for i := 0; i < 2; i++ {
		p := models.Problem{
			ID:         uuid.New(),
			Title:      fmt.Sprintf("problem %d", i+1),
			Difficulty: models.DifficultyMedium,
			TestCases: []models.TestCase{
				{Input: "1 2", Output: "3"},
				{Input: "2 2", Output: "4"},
			},
		}
		f.store.AddProblem(p)
		f.problems = append(f.problems, p.ID)
	}

	scheduler := &scheduler_service.Scheduler{}
	scheduler.Start()
	t.Cleanup(scheduler.Stop)
	ps := &problem_service.ProblemService{Problems: f.store}
	ps.Start()
	us := &user_service.UserService{Users: f.store}
	us.Start()
	f.rooms = &room_service.RoomService{
		Rooms:          f.store,
		Submissions:    f.store,
		ProblemService: ps,
		UserService:    us,
		Locker:         lock_service.NewLocalLocker(),
		Scheduler:      scheduler,
		Publisher:      f.recorder,
	}
	f.rooms.Start()

	evaluator := &judge_service.Evaluator{
		Judge:           f.judge,
		PollInterval:    time.Millisecond,
		MaxPollAttempts: 3,
	}
	evaluator.Start()
	f.submissions = &SubmissionService{
		Submissions:    f.store,
		RoomService:    f.rooms,
		ProblemService: ps,
		Evaluator:      evaluator,
		Publisher:      f.recorder,
	}
	f.submissions.Start()

	view, err := f.rooms.CreateRoom(f.as(0), room_service.CreateRoomRequest{Name: "duel", Problems: f.problems})
	if err != nil {
		t.Fatal(err)
	}
	if _, err = f.rooms.JoinRoom(f.as(1), room_service.JoinRoomRequest{RoomID: view.ID}); err != nil {
		t.Fatal(err)
	}
	started, err := f.rooms.StartRoom(f.as(0), view.ID)
	if err != nil {
		t.Fatal(err)
	}
	f.room = started.Room
	return f
}

func (f *fixture) as(i int) context.Context {
	return service.WithClaims(context.Background(), service.UserCredentialClaims{
		UserId:   f.users[i].ID,
		UserName: f.users[i].UserName,
	})
}

func (f *fixture) stored(t *testing.T) []models.Submission {
	t.Helper()
	subs, err := f.store.GetSubmissionsByRoom(context.Background(), f.room.ID)
	if err != nil {
		t.Fatal(err)
	}
	return subs
}

func TestUnsupportedLanguageIsRejectedBeforeJudging(t *testing.T) {
	f := newFixture(t)

	_, err := f.submissions.Submit(f.as(1), f.room.ID, SubmissionRequest{
		ProblemID: f.problems[0],
		Code:      "++[>+<-]",
		Language:  "brainfuck",
	})
	if !errors.Is(err, arena_errors.ErrUnsupportedLanguage) {
		t.Fatalf("expected ErrUnsupportedLanguage, got %v", err)
	}
	if n := f.judge.dispatches.Load(); n != 0 {
		t.Errorf("judge called %d times", n)
	}
	if subs := f.stored(t); len(subs) != 0 {
		t.Errorf("nothing must be stored, got %d submissions", len(subs))
	}
}

func TestSubmitRejections(t *testing.T) {
	f := newFixture(t)
	ok := SubmissionRequest{ProblemID: f.problems[0], Code: "print('correct')", Language: "python"}

	if _, err := f.submissions.Submit(f.as(1), f.room.ID, SubmissionRequest{ProblemID: f.problems[0], Language: "python"}); !errors.Is(err, arena_errors.ErrInvalidInput) {
		t.Errorf("empty code: expected ErrInvalidInput, got %v", err)
	}
	if _, err := f.submissions.Submit(f.as(2), f.room.ID, ok); !errors.Is(err, arena_errors.ErrNotParticipant) {
		t.Errorf("outsider: expected ErrNotParticipant, got %v", err)
	}
	if _, err := f.submissions.Submit(f.as(1), uuid.New(), ok); !errors.Is(err, arena_errors.ErrNotFound) {
		t.Errorf("unknown room: expected ErrNotFound, got %v", err)
	}
	foreign := ok
	foreign.ProblemID = uuid.New()
	if _, err := f.submissions.Submit(f.as(1), f.room.ID, foreign); !errors.Is(err, arena_errors.ErrProblemNotInBattle) {
		t.Errorf("foreign problem: expected ErrProblemNotInBattle, got %v", err)
	}
	if _, err := f.submissions.Submit(context.Background(), f.room.ID, ok); err == nil {
		t.Error("expected an error without claims")
	}

	if _, err := f.submissions.Submit(f.as(1), f.room.ID, ok); err != nil {
		t.Fatal(err)
	}
	if _, err := f.submissions.Submit(f.as(1), f.room.ID, ok); !errors.Is(err, arena_errors.ErrAlreadySolved) {
		t.Errorf("resubmission: expected ErrAlreadySolved, got %v", err)
	}
	if n := f.judge.dispatches.Load(); n != 2 {
		t.Errorf("only the accepted submission should reach the judge, got %d dispatches", n)
	}
}

func TestFailedSubmissionIsStored(t *testing.T) {
	f := newFixture(t)

	res, err := f.submissions.Submit(f.as(1), f.room.ID, SubmissionRequest{
		ProblemID: f.problems[0],
		Code:      "print(0)",
		Language:  "Python",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != models.StatusFailed || res.PassedCount != 0 || res.TestCount != 2 {
		t.Errorf("unexpected response %+v", res)
	}
	subs := f.stored(t)
	if len(subs) != 1 || subs[0].ID != res.SubmissionID || subs[0].Status != models.StatusFailed {
		t.Fatalf("unexpected stored submissions %+v", subs)
	}
	if subs[0].SubmittedAt.Before(*f.room.StartedAt) {
		t.Error("submission predates the battle")
	}

	updates := f.recorder.Named(events.EventSubmissionUpdate)
	if len(updates) != 1 || updates[0].Topic != events.RoomTopic(f.room.ID) {
		t.Fatalf("expected one submissionUpdate on the room topic, got %v", updates)
	}
	if p := updates[0].Payload.(events.SubmissionUpdate); p.ProblemTitle != "problem 1" || p.SubmissionID != res.SubmissionID {
		t.Errorf("unexpected payload %+v", p)
	}
}

func TestJudgeOutageIsStoredAsError(t *testing.T) {
	f := newFixture(t)
	f.judge.failAll = true

	res, err := f.submissions.Submit(f.as(1), f.room.ID, SubmissionRequest{
		ProblemID: f.problems[0],
		Code:      "print('correct')",
		Language:  "python",
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Status != models.StatusError {
		t.Errorf("expected status Error, got %s", res.Status)
	}
	if subs := f.stored(t); len(subs) != 1 || subs[0].Status != models.StatusError {
		t.Errorf("unexpected stored submissions %+v", subs)
	}
}

func TestSolvingEverythingEndsTheBattle(t *testing.T) {
	f := newFixture(t)
	correct := func(p uuid.UUID) SubmissionRequest {
		return SubmissionRequest{ProblemID: p, Code: "print('correct')", Language: "javascript"}
	}

	for _, p := range f.problems {
		res, err := f.submissions.Submit(f.as(1), f.room.ID, correct(p))
		if err != nil {
			t.Fatal(err)
		}
		if res.Status != models.StatusSolved || res.PassedCount != 2 {
			t.Fatalf("unexpected response %+v", res)
		}
	}
	if _, err := f.submissions.Submit(f.as(1), f.room.ID, correct(f.problems[0])); !errors.Is(err, arena_errors.ErrAlreadyCompleted) {
		t.Errorf("completed user: expected ErrAlreadyCompleted, got %v", err)
	}
	if n := len(f.recorder.Named(events.EventUserCompletedBattle)); n != 1 {
		t.Errorf("expected one userCompletedBattle, got %d", n)
	}

	for _, p := range f.problems {
		if _, err := f.submissions.Submit(f.as(0), f.room.ID, correct(p)); err != nil {
			t.Fatal(err)
		}
	}
	if n := len(f.recorder.Named(events.EventBattleCompleted)); n != 1 {
		t.Fatalf("expected one battleCompleted, got %d", n)
	}
	room, _ := f.store.GetRoom(context.Background(), f.room.ID)
	if room.Status != models.RoomCompleted || len(room.Scoreboard) != 2 || room.Scoreboard[1].SolvedProblems != 2 {
		t.Errorf("unexpected final room %+v", room)
	}

	_, err := f.submissions.Submit(f.as(0), f.room.ID, correct(f.problems[0]))
	if !errors.Is(err, arena_errors.ErrBattleNotActive) {
		t.Errorf("after the battle: expected ErrBattleNotActive, got %v", err)
	}
}

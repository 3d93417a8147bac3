package scheduler_service

import (
	"fmt"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
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

func newScheduler() *Scheduler {
	s := &Scheduler{}
	s.Start()
	return s
}

func waitFor(t *testing.T, cond func() bool, within time.Duration) {
	t.Helper()
	deadline := time.Now().Add(within)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", within)
}

func TestTaskRunsAtDeadline(t *testing.T) {
	s := newScheduler()
	defer s.Stop()

	var runs atomic.Int32
	key := uuid.New()
	err := s.Schedule(Task{Key: key, Name: "battle timer", Deadline: time.Now().Add(20 * time.Millisecond), Run: func() {
		runs.Add(1)
	}})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.Pending(key); !ok {
		t.Error("task should be pending")
	}

	waitFor(t, func() bool { return runs.Load() == 1 }, time.Second)
	if _, ok := s.Pending(key); ok {
		t.Error("task still pending after it ran")
	}
}

func TestPastDeadlineRunsImmediately(t *testing.T) {
	s := newScheduler()
	defer s.Stop()

	done := make(chan struct{})
	s.Schedule(Task{Key: uuid.New(), Deadline: time.Now().Add(-time.Hour), Run: func() { close(done) }})
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("overdue task did not run")
	}
}

func TestCancelledTaskNeverRuns(t *testing.T) {
	s := newScheduler()
	defer s.Stop()

	var runs atomic.Int32
	key := uuid.New()
	s.Schedule(Task{Key: key, Deadline: time.Now().Add(30 * time.Millisecond), Run: func() { runs.Add(1) }})
	if !s.Cancel(key) {
		t.Fatal("cancel should report a pending task")
	}
	if s.Cancel(key) {
		t.Error("second cancel should be a no-op")
	}

	time.Sleep(60 * time.Millisecond)
	if runs.Load() != 0 {
		t.Errorf("cancelled task ran %d times", runs.Load())
	}
}

func TestScheduleReplacesPendingTask(t *testing.T) {
	s := newScheduler()
	defer s.Stop()

	var first, second atomic.Int32
	key := uuid.New()
	s.Schedule(Task{Key: key, Deadline: time.Now().Add(20 * time.Millisecond), Run: func() { first.Add(1) }})
	s.Schedule(Task{Key: key, Deadline: time.Now().Add(40 * time.Millisecond), Run: func() { second.Add(1) }})

	waitFor(t, func() bool { return second.Load() == 1 }, time.Second)
	if first.Load() != 0 {
		t.Error("replaced task still ran")
	}
}

func TestScheduleRejectsNilCallbackAndStoppedScheduler(t *testing.T) {
	s := newScheduler()
	if err := s.Schedule(Task{Key: uuid.New(), Deadline: time.Now()}); err == nil {
		t.Error("expected error for nil callback")
	}
	s.Stop()
	if err := s.Schedule(Task{Key: uuid.New(), Deadline: time.Now(), Run: func() {}}); err == nil {
		t.Error("expected error after stop")
	}
}

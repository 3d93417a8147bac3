package scheduler_service

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/arena_errors"
)

func (s *Scheduler) Start() {
	s.logger = logrus.WithField("from", "scheduler")

	s.logger.Info("initializing scheduler's tasks map")
	s.tasks = make(map[uuid.UUID]*Task)
	s.stopped = false
}

// Schedule arms task.Run at task.Deadline, replacing any pending task with the
// same key. A deadline in the past runs immediately.
func (s *Scheduler) Schedule(task Task) error {
	if task.Run == nil {
		return fmt.Errorf("%w, task callback cannot be nil", arena_errors.ErrInvalidRequest)
	}

	s.taskMu.Lock()
	defer s.taskMu.Unlock()

	if s.stopped {
		return fmt.Errorf("%w, scheduler is stopped", arena_errors.ErrComponentStart)
	}
	if prev, ok := s.tasks[task.Key]; ok {
		prev.timer.Stop()
		s.logger.Infof("replacing pending task %v", prev)
	}

	t := &task
	t.timer = time.AfterFunc(time.Until(t.Deadline), func() { s.fire(t) })
	s.tasks[t.Key] = t
	s.logger.WithField("task", t.String()).Info("task scheduled")
	return nil
}

func (s *Scheduler) fire(t *Task) {
	s.taskMu.Lock()
	if s.tasks[t.Key] != t || s.stopped {
		// cancelled or replaced after the timer fired
		s.taskMu.Unlock()
		return
	}
	delete(s.tasks, t.Key)
	s.running.Add(1)
	s.taskMu.Unlock()

	defer s.running.Done()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf("task %v panicked, %v", t, r)
		}
	}()
	s.logger.WithField("task", t.String()).Info("running task")
	t.Run()
}

// Cancel drops the pending task of key. It reports whether one was pending.
func (s *Scheduler) Cancel(key uuid.UUID) bool {
	s.taskMu.Lock()
	defer s.taskMu.Unlock()

	t, ok := s.tasks[key]
	if !ok {
		return false
	}
	t.timer.Stop()
	delete(s.tasks, key)
	s.logger.WithField("task", t.String()).Info("task cancelled")
	return true
}

func (s *Scheduler) Pending(key uuid.UUID) (time.Time, bool) {
	s.taskMu.Lock()
	defer s.taskMu.Unlock()

	t, ok := s.tasks[key]
	if !ok {
		return time.Time{}, false
	}
	return t.Deadline, true
}

// Stop cancels every pending task and waits for running ones.
func (s *Scheduler) Stop() {
	s.taskMu.Lock()
	s.stopped = true
	for key, t := range s.tasks {
		t.timer.Stop()
		delete(s.tasks, key)
	}
	s.taskMu.Unlock()

	s.running.Wait()
	s.logger.Info("scheduler stopped")
}

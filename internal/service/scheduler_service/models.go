package scheduler_service

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Task is a callback armed to run once at a deadline.
type Task struct {
	Key      uuid.UUID
	Name     string
	Deadline time.Time
	Run      func()
	timer    *time.Timer
}

func (t *Task) String() string {
	return fmt.Sprintf("[Key=%s Name=%s Deadline=%s]", t.Key, t.Name, t.Deadline.Format(time.RFC3339))
}

// Scheduler keeps at most one pending task per key.
type Scheduler struct {
	tasks   map[uuid.UUID]*Task
	taskMu  sync.Mutex
	running sync.WaitGroup
	stopped bool
	logger  *logrus.Entry
}

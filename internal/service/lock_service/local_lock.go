package lock_service

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/tcp_snm/arena/internal/arena_errors"
)

type roomLock struct {
	sem  chan struct{}
	refs int
}

// LocalLocker is an in-process keyed mutex. Entries are dropped once nobody
// holds or waits for them.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*roomLock
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[uuid.UUID]*roomLock)}
}

func (l *LocalLocker) Lock(ctx context.Context, roomID uuid.UUID) (func(), error) {
	l.mu.Lock()
	lock, ok := l.locks[roomID]
	if !ok {
		lock = &roomLock{sem: make(chan struct{}, 1)}
		l.locks[roomID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	select {
	case lock.sem <- struct{}{}:
	case <-ctx.Done():
		l.unref(roomID, lock)
		return nil, fmt.Errorf("%w, room %v, %w", arena_errors.ErrLockNotAcquired, roomID, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-lock.sem
			l.unref(roomID, lock)
		})
	}, nil
}

func (l *LocalLocker) unref(roomID uuid.UUID, lock *roomLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, roomID)
	}
}

// size is the number of rooms with holders or waiters.
func (l *LocalLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

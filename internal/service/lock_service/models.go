package lock_service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	keyPrefixRoomLock        = "arena:room-lock:"
	defaultLockTTL           = 10 * time.Second
	defaultLockRetryInterval = 25 * time.Millisecond
)

// RoomLocker serializes state changing work on a room. Lock blocks until the
// room's critical section is free or ctx is done. The returned release func
// must be called exactly once.
type RoomLocker interface {
	Lock(ctx context.Context, roomID uuid.UUID) (release func(), err error)
}

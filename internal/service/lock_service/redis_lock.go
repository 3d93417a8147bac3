package lock_service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/arena_errors"
)

// deletes the key only if this holder still owns it
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
    return redis.call("del", KEYS[1])
else
    return 0
end
`)

// RedisLocker shares room critical sections between api instances.
// TTL bounds how long a crashed holder can block a room.
type RedisLocker struct {
	Client        *redis.Client
	TTL           time.Duration
	RetryInterval time.Duration
	logger        *logrus.Entry
}

func (r *RedisLocker) Start() {
	if r.Client == nil {
		panic("redis locker expects non-nil client")
	}
	if r.TTL <= 0 {
		r.TTL = defaultLockTTL
	}
	if r.RetryInterval <= 0 {
		r.RetryInterval = defaultLockRetryInterval
	}
	r.logger = logrus.WithField("from", "redis room locker")
}

func (r *RedisLocker) Lock(ctx context.Context, roomID uuid.UUID) (func(), error) {
	key := keyPrefixRoomLock + roomID.String()
	value := uuid.NewString()

	for {
		ok, err := r.Client.SetNX(ctx, key, value, r.TTL).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("%w, room %v, %w", arena_errors.ErrLockNotAcquired, roomID, ctx.Err())
			}
			err = fmt.Errorf("%w, room %v, %w", arena_errors.ErrLockNotAcquired, roomID, err)
			r.logger.Error(err)
			return nil, err
		}
		if ok {
			break
		}

		timer := time.NewTimer(r.RetryInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w, room %v, %w", arena_errors.ErrLockNotAcquired, roomID, ctx.Err())
		case <-timer.C:
		}
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true
		// release must outlive a cancelled request context
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		deleted, err := releaseScript.Run(releaseCtx, r.Client, []string{key}, value).Int()
		if err != nil {
			r.logger.Errorf("cannot release lock of room %v, %v", roomID, err)
			return
		}
		if deleted == 0 {
			r.logger.Warnf("lock of room %v expired before release", roomID)
		}
	}, nil
}

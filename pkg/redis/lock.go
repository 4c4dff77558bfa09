package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	goredislib "github.com/redis/go-redis/v9"
)

var ErrLockNotHeld = errors.New("lock was not held or already expired")

// Unlock releases a lock obtained from Locker.TryLock.
type Unlock func(ctx context.Context) error

// Locker hands out Redlock mutexes backed by a single redis deployment.
type Locker struct {
	rs *redsync.Redsync
}

func NewLocker(client goredislib.UniversalClient) *Locker {
	return &Locker{
		rs: redsync.New(goredis.NewPool(client)),
	}
}

// TryLock makes a single acquisition attempt. A busy lock is reported as
// (nil, false, nil); only transport failures produce an error.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (Unlock, bool, error) {
	mutex := l.rs.NewMutex(key, redsync.WithExpiry(ttl), redsync.WithTries(1))

	if err := mutex.TryLockContext(ctx); err != nil {
		var taken *redsync.ErrTaken
		if errors.Is(err, redsync.ErrFailed) || errors.As(err, &taken) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("failed to acquire lock %q: %w", key, err)
	}

	unlock := func(ctx context.Context) error {
		ok, err := mutex.UnlockContext(ctx)
		if ok {
			return nil
		}

		var taken *redsync.ErrTaken
		if err == nil || errors.As(err, &taken) {
			return ErrLockNotHeld
		}

		return fmt.Errorf("failed to release lock %q: %w", key, err)
	}

	return unlock, true, nil
}

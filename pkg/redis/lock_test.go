package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLocker(t *testing.T) (*Locker, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)

	client := goredislib.NewClient(&goredislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewLocker(client), mr
}

func TestLocker_TryLockIsExclusive(t *testing.T) {
	locker, _ := setupLocker(t)
	ctx := context.Background()

	unlock, acquired, err := locker.TryLock(ctx, "lock:outbox", 5*time.Second)
	require.NoError(t, err)
	require.True(t, acquired)

	_, acquired, err = locker.TryLock(ctx, "lock:outbox", 5*time.Second)
	require.NoError(t, err)
	assert.False(t, acquired, "second acquisition must see the lock as busy")

	require.NoError(t, unlock(ctx))

	unlock, acquired, err = locker.TryLock(ctx, "lock:outbox", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, acquired)
	assert.NoError(t, unlock(ctx))
}

func TestLocker_ExpiredLockCanBeRetaken(t *testing.T) {
	locker, mr := setupLocker(t)
	ctx := context.Background()

	unlock, acquired, err := locker.TryLock(ctx, "lock:outbox", time.Second)
	require.NoError(t, err)
	require.True(t, acquired)

	mr.FastForward(2 * time.Second)

	_, acquired, err = locker.TryLock(ctx, "lock:outbox", time.Second)
	require.NoError(t, err)
	assert.True(t, acquired)

	// the key now belongs to the second holder
	assert.Error(t, unlock(ctx))
}

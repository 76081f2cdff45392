package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/gambit/pkg/adapters/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocker_Exclusive(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "s1", time.Minute)
	require.NoError(t, err)
	assert.True(t, mr.Exists("gambit:lock:s1"))

	short, cancel := context.WithTimeout(ctx, 120*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(short, "s1", time.Minute)
	assert.ErrorIs(t, err, redis.ErrLockAcquire)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("gambit:lock:s1"))

	unlock, err = locker.Lock(ctx, "s1", time.Minute)
	require.NoError(t, err)
	require.NoError(t, unlock(ctx))
}

func TestLocker_UnlockAfterExpiryKeepsNewOwner(t *testing.T) {
	mr, client := newClient(t)
	locker := redis.NewLocker(client, "")
	ctx := context.Background()

	stale, err := locker.Lock(ctx, "s2", time.Second)
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	fresh, err := locker.Lock(ctx, "s2", time.Minute)
	require.NoError(t, err)

	require.NoError(t, stale(ctx))
	assert.True(t, mr.Exists("gambit:lock:s2"), "stale unlock must not release the new owner's lock")
	require.NoError(t, fresh(ctx))
}

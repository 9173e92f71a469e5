package infra_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codrive/internal/infra"
	"codrive/internal/testutil"
	"codrive/internal/types"
)

func rideKey(t *testing.T, client *redis.Client, l *infra.RedisLocker) string {
	t.Helper()
	key := "ride-" + string(types.NewID())
	t.Cleanup(func() { client.Del(context.Background(), l.RedisKey(key)) })
	return key
}

func TestRedisLocker_ExcludesOtherInstances(t *testing.T) {
	client := testutil.NewRedis(t)
	a := infra.NewRedisLocker(client, 5*time.Second)
	b := infra.NewRedisLocker(client, 5*time.Second)
	key := rideKey(t, client, a)

	unlock, err := a.Lock(context.Background(), key)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	_, err = b.Lock(ctx, key)
	require.ErrorIs(t, err, infra.ErrLockTimeout)

	unlock()
	unlock()

	ctx2, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	unlockB, err := b.Lock(ctx2, key)
	require.NoError(t, err)
	unlockB()

	n, err := client.Exists(context.Background(), a.RedisKey(key)).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRedisLocker_ReleaseLeavesForeignHolder(t *testing.T) {
	client := testutil.NewRedis(t)
	l := infra.NewRedisLocker(client, 5*time.Second)
	key := rideKey(t, client, l)
	ctx := context.Background()

	unlock, err := l.Lock(ctx, key)
	require.NoError(t, err)
	// the lock expired and another instance took it over
	require.NoError(t, client.Set(ctx, l.RedisKey(key), "other-holder", time.Minute).Err())

	unlock()

	got, err := client.Get(ctx, l.RedisKey(key)).Result()
	require.NoError(t, err)
	assert.Equal(t, "other-holder", got)
}

func TestRedisLocker_ExtendsWhileHeld(t *testing.T) {
	client := testutil.NewRedis(t)
	l := infra.NewRedisLocker(client, 300*time.Millisecond)
	key := rideKey(t, client, l)

	unlock, err := l.Lock(context.Background(), key)
	require.NoError(t, err)

	time.Sleep(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = infra.NewRedisLocker(client, 300*time.Millisecond).Lock(ctx, key)
	require.ErrorIs(t, err, infra.ErrLockTimeout)

	unlock()
	n, err := client.Exists(context.Background(), l.RedisKey(key)).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}

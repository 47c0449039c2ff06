package store

import (
	"context"
	"testing"
	"time"

	"intervue-api/pkg/redis"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupRedisStore(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := redis.NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return mr, NewRedisStore(client)
}

func TestRedisStore_GetMapsMissToErrNotFound(t *testing.T) {
	_, s := setupRedisStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "present", "value", time.Minute))
	val, err := s.Get(ctx, "present")
	require.NoError(t, err)
	assert.Equal(t, "value", val)
}

func TestRedisStore_IncrementSetsWindowOnce(t *testing.T) {
	mr, s := setupRedisStore(t)
	ctx := context.Background()

	count, ttl, err := s.Increment(ctx, "ratelimit:api:fp", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, time.Minute, ttl, "the first hit arms the full window")

	mr.FastForward(20 * time.Second)

	count, ttl, err = s.Increment(ctx, "ratelimit:api:fp", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.LessOrEqual(t, ttl, 40*time.Second, "later hits report the remaining window")
	assert.Greater(t, ttl, time.Duration(0))
}

func TestRedisStore_IncrementAfterWindowStartsFresh(t *testing.T) {
	mr, s := setupRedisStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _, err := s.Increment(ctx, "ratelimit:api:fp", time.Minute)
		require.NoError(t, err)
	}

	mr.FastForward(61 * time.Second)

	count, _, err := s.Increment(ctx, "ratelimit:api:fp", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "an expired window restarts the count")
}

func TestRedisStore_DecrementFloorsAtZero(t *testing.T) {
	mr, s := setupRedisStore(t)
	ctx := context.Background()

	_, _, err := s.Increment(ctx, "counter", time.Minute)
	require.NoError(t, err)

	require.NoError(t, s.Decrement(ctx, "counter"))
	require.NoError(t, s.Decrement(ctx, "counter"))

	val, _ := mr.Get("counter")
	assert.Equal(t, "0", val)
}

func TestRedisStore_CounterPeeksWithoutMutating(t *testing.T) {
	_, s := setupRedisStore(t)
	ctx := context.Background()

	count, err := s.Counter(ctx, "eval:budget")
	require.NoError(t, err)
	assert.Equal(t, int64(0), count, "a missing counter reads as zero")

	_, _, err = s.Increment(ctx, "eval:budget", time.Minute)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		count, err = s.Counter(ctx, "eval:budget")
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	}
}

func TestRedisStore_DeletePattern(t *testing.T) {
	ctx := context.Background()
	_, s := setupRedisStore(t)

	require.NoError(t, s.Set(ctx, "analytics:u1", "a", time.Minute))
	require.NoError(t, s.Set(ctx, "history:u1:1", "h1", time.Minute))
	require.NoError(t, s.Set(ctx, "history:u1:2", "h2", time.Minute))
	require.NoError(t, s.Set(ctx, "history:u2:1", "other", time.Minute))

	require.NoError(t, s.DeletePattern(ctx, "history:u1:*"))

	_, err := s.Get(ctx, "history:u1:1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, "history:u1:2")
	assert.ErrorIs(t, err, ErrNotFound)

	val, err := s.Get(ctx, "history:u2:1")
	require.NoError(t, err)
	assert.Equal(t, "other", val)

	val, err = s.Get(ctx, "analytics:u1")
	require.NoError(t, err)
	assert.Equal(t, "a", val)
}

package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)

	return mr, client
}

func TestNewClient_InvalidURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "Invalid scheme", url: "invalid://url"},
		{name: "Empty URL", url: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewClient(tt.url, "test", zap.NewNop())
			assert.Error(t, err)
			assert.Nil(t, client)
		})
	}
}

func TestClient_GetSet(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "test:key1", "value1", time.Minute))

	value, err := client.Get(ctx, "test:key1")
	assert.NoError(t, err)
	assert.Equal(t, "value1", value)

	ttl := mr.TTL("test:key1")
	assert.Greater(t, ttl, time.Duration(0))

	_, err = client.Get(ctx, "test:missing")
	assert.Error(t, err)
	assert.True(t, IsNil(err), "a cache miss is the redis nil sentinel")
}

func TestClient_SetNX(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()

	ok, err := client.SetNX(ctx, "test:nx", "first", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.SetNX(ctx, "test:nx", "second", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "SetNX must not overwrite an existing key")

	value, err := client.Get(ctx, "test:nx")
	require.NoError(t, err)
	assert.Equal(t, "first", value)
}

func TestClient_Delete(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	mr.Set("test:key1", "value1")
	mr.Set("test:key2", "value2")

	assert.NoError(t, client.Delete(ctx, "test:key1", "test:key2"))
	assert.False(t, mr.Exists("test:key1"))
	assert.False(t, mr.Exists("test:key2"))

	// Deleting a missing key is not an error.
	assert.NoError(t, client.Delete(ctx, "test:nonexistent"))
}

func TestClient_Incr(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	v, err := client.Incr(ctx, "test:counter")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v, "a fresh counter starts at one")

	mr.Set("test:counter", "5")
	v, err = client.Incr(ctx, "test:counter")
	require.NoError(t, err)
	assert.Equal(t, int64(6), v)
}

func TestClient_DecrFloor(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	mr.Set("test:counter", "2")
	require.NoError(t, client.DecrFloor(ctx, "test:counter"))
	val, _ := mr.Get("test:counter")
	assert.Equal(t, "1", val)

	require.NoError(t, client.DecrFloor(ctx, "test:counter"))
	val, _ = mr.Get("test:counter")
	assert.Equal(t, "0", val)

	// A decrement below zero is corrected back to zero.
	require.NoError(t, client.DecrFloor(ctx, "test:counter"))
	val, _ = mr.Get("test:counter")
	assert.Equal(t, "0", val)
}

func TestClient_ExpireAndTTL(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	mr.Set("test:expire", "value")
	require.NoError(t, client.Expire(ctx, "test:expire", time.Hour))

	ttl, err := client.TTL(ctx, "test:expire")
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestClient_InvalidatePattern(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	mr.Set("staging:history:u1:1", "page1")
	mr.Set("staging:history:u1:2", "page2")
	mr.Set("staging:history:u2:1", "other user")

	require.NoError(t, client.InvalidatePattern(ctx, "staging:history:u1:*"))

	assert.False(t, mr.Exists("staging:history:u1:1"))
	assert.False(t, mr.Exists("staging:history:u1:2"))
	assert.True(t, mr.Exists("staging:history:u2:1"), "other users' keys survive")
}

func TestClient_Pipeline(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	pipe := client.Pipeline()
	require.NotNil(t, pipe)

	pipe.Set(ctx, "test:pipe1", "value1", time.Minute)
	pipe.Set(ctx, "test:pipe2", "value2", time.Minute)
	pipe.Incr(ctx, "test:counter")

	cmds, err := pipe.Exec(ctx)
	assert.NoError(t, err)
	assert.Len(t, cmds, 3)

	val1, _ := mr.Get("test:pipe1")
	assert.Equal(t, "value1", val1)
	counter, _ := mr.Get("test:counter")
	assert.Equal(t, "1", counter)
}

func TestClient_Health(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	assert.NoError(t, client.Health(ctx))

	mr.Close()
	assert.Error(t, client.Health(ctx))
}

func TestClient_KeyBuilderIntegration(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	require.NotNil(t, client.KeyBuilder)
	assert.Equal(t, "staging", client.KeyBuilder.GetPrefix())

	key := client.KeyBuilder.KeyAnalytics("u1")
	require.NoError(t, client.Set(ctx, key, `{"total_interviews":3}`, time.Hour))

	val, _ := mr.Get("staging:analytics:u1")
	assert.Equal(t, `{"total_interviews":3}`, val)
}

func TestClient_Close(t *testing.T) {
	_, client := setupTestRedis(t)

	require.NoError(t, client.Close())

	_, err := client.Get(context.Background(), "test:key")
	assert.Error(t, err)
}

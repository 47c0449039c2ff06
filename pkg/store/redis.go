package store

import (
	"context"
	"strconv"
	"time"

	"intervue-api/pkg/redis"
)

// RedisStore adapts the shared Redis client to the KeyValueStore contract,
// giving every replica the same limiter counters and cache entries.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an existing Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key)
	if redis.IsNil(err) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl)
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.client.Delete(ctx, keys...)
}

func (s *RedisStore) DeletePattern(ctx context.Context, pattern string) error {
	return s.client.InvalidatePattern(ctx, pattern)
}

func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	count, err := s.client.Incr(ctx, key)
	if err != nil {
		return 0, 0, err
	}
	if count == 1 {
		if err := s.client.Expire(ctx, key, window); err != nil {
			return count, window, err
		}
		return count, window, nil
	}

	ttl, err := s.client.TTL(ctx, key)
	if err != nil || ttl < 0 {
		// Counter without expiry (e.g. an earlier EXPIRE failed): re-arm it
		// so the window cannot leak forever.
		_ = s.client.Expire(ctx, key, window)
		return count, window, err
	}
	return count, ttl, nil
}

func (s *RedisStore) Decrement(ctx context.Context, key string) error {
	return s.client.DecrFloor(ctx, key)
}

func (s *RedisStore) Counter(ctx context.Context, key string) (int64, error) {
	val, err := s.client.Get(ctx, key)
	if redis.IsNil(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	count, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, err
	}
	return count, nil
}

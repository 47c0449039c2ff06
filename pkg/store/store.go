// Package store defines the key-value abstraction behind the response cache,
// the rate limiter and the evaluation budget counter. Business logic depends
// only on KeyValueStore, so the same code runs against the shared Redis
// deployment in production and the in-memory implementation in tests or
// single-process deployments without Redis.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key is absent or expired.
var ErrNotFound = errors.New("store: key not found")

// KeyValueStore is the minimal contract needed by the admission-control layer.
type KeyValueStore interface {
	// Get returns the value for key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key for ttl. A zero ttl means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// DeletePattern removes every key matching a glob pattern
	// (only trailing-asterisk patterns are required by callers).
	DeletePattern(ctx context.Context, pattern string) error

	// Increment adds one to the counter at key inside a fixed window.
	// The first increment of a window starts it and arms the expiry;
	// the returned ttl is the time until the window resets.
	Increment(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)

	// Decrement subtracts one from the counter at key, flooring at zero.
	// Used by skip-on-success rate-limit policies to refund an attempt.
	Decrement(ctx context.Context, key string) error

	// Counter reads the current value of the counter at key without
	// touching it. Absent or expired counters read as zero.
	Counter(ctx context.Context, key string) (int64, error)
}

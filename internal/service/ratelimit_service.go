package service

import (
	"context"
	"time"

	"intervue-api/internal/domain"
	"intervue-api/pkg/redis"
	"intervue-api/pkg/store"

	"go.uber.org/zap"
)

// RateLimitService admits or rejects requests under named fixed-window
// policies. Counters live in the shared store, so every replica enforces the
// same budget when backed by Redis.
type RateLimitService struct {
	store    store.KeyValueStore
	keys     *redis.KeyBuilder
	policies map[string]domain.RateLimitPolicy
	logger   *zap.Logger
}

// NewRateLimitService creates a rate limit service with the default policies
func NewRateLimitService(kv store.KeyValueStore, keys *redis.KeyBuilder, logger *zap.Logger) *RateLimitService {
	return &RateLimitService{
		store:    kv,
		keys:     keys,
		policies: domain.DefaultPolicies(),
		logger:   logger,
	}
}

// Policy returns the named policy, if defined
func (s *RateLimitService) Policy(scope string) (domain.RateLimitPolicy, bool) {
	p, ok := s.policies[scope]
	return p, ok
}

// Check counts one request against the policy's window and decides admission.
// It never fails a request on its own account: an unknown scope or a store
// error admits the request with a warning, since dropping traffic because the
// limiter's backend hiccuped would be worse than briefly under-limiting.
func (s *RateLimitService) Check(ctx context.Context, scope, fingerprint string) domain.RateLimitDecision {
	policy, ok := s.policies[scope]
	if !ok {
		s.logger.Warn("unknown rate limit scope, admitting", zap.String("scope", scope))
		return domain.RateLimitDecision{Allowed: true}
	}

	key := s.keys.KeyRateLimit(scope, fingerprint)
	count, ttl, err := s.store.Increment(ctx, key, policy.Window)
	if err != nil {
		s.logger.Warn("rate limit store error, admitting",
			zap.String("scope", scope),
			zap.Error(err))
		return domain.RateLimitDecision{Allowed: true}
	}

	remaining := policy.MaxRequests - int(count)
	if remaining < 0 {
		remaining = 0
	}

	decision := domain.RateLimitDecision{
		Allowed:    count <= int64(policy.MaxRequests),
		Remaining:  remaining,
		RetryAfter: ttl,
	}

	if !decision.Allowed {
		s.logger.Info("rate limit exceeded",
			zap.String("scope", scope),
			zap.Int64("count", count),
			zap.Int("max", policy.MaxRequests),
			zap.Duration("retry_after", ttl))
	}

	return decision
}

// Refund returns one attempt to the caller's budget. Used by skip-on-success
// policies after the request turned out to succeed, so only failed attempts
// count toward the limit.
func (s *RateLimitService) Refund(ctx context.Context, scope, fingerprint string) {
	key := s.keys.KeyRateLimit(scope, fingerprint)
	if err := s.store.Decrement(ctx, key); err != nil {
		s.logger.Warn("rate limit refund failed",
			zap.String("scope", scope),
			zap.Error(err))
	}
}

// RetryAfterSeconds rounds a retry hint up to whole seconds for the
// Retry-After header; a rejected request never reports zero.
func RetryAfterSeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}

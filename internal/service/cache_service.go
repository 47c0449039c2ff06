package service

import (
	"context"
	"encoding/json"

	"intervue-api/internal/domain"
	"intervue-api/pkg/redis"
	"intervue-api/pkg/store"

	"go.uber.org/zap"
)

// CacheService memoizes successful read responses for a bounded time using
// the cache-aside pattern. Only successful computations are cached; errors
// always pass through uncached. The cache is never a source of truth; losing
// it costs a recomputation, nothing more.
type CacheService struct {
	store  store.KeyValueStore
	keys   *redis.KeyBuilder
	logger *zap.Logger

	// computeHook observes cache misses (the key being recomputed).
	// Tests use it to assert that hits skip the underlying aggregation.
	computeHook func(key string)
}

// NewCacheService creates a new cache service
func NewCacheService(kv store.KeyValueStore, keys *redis.KeyBuilder, logger *zap.Logger) *CacheService {
	return &CacheService{
		store:  kv,
		keys:   keys,
		logger: logger,
	}
}

// SetComputeHook installs a spy called on every cache miss. Tests only.
func (c *CacheService) SetComputeHook(hook func(key string)) {
	c.computeHook = hook
}

// GetAnalyticsWithCache retrieves a user's analytics summary, computing it on
// a miss and caching the result.
func (c *CacheService) GetAnalyticsWithCache(ctx context.Context, userID string, compute func(ctx context.Context) (*domain.AnalyticsSummary, error)) (*domain.AnalyticsSummary, error) {
	cacheKey := c.keys.KeyAnalytics(userID)

	if cached, err := c.store.Get(ctx, cacheKey); err == nil {
		var summary domain.AnalyticsSummary
		if marshalErr := json.Unmarshal([]byte(cached), &summary); marshalErr == nil {
			c.logger.Debug("analytics cache hit", zap.String("user_id", userID))
			return &summary, nil
		}
		// Corrupted entry: fall through to recompute and overwrite.
		c.logger.Warn("analytics cache corrupted, recomputing", zap.String("user_id", userID))
	} else if err != store.ErrNotFound {
		c.logger.Warn("analytics cache error, recomputing",
			zap.String("user_id", userID),
			zap.Error(err))
	}

	c.logger.Debug("analytics cache miss", zap.String("user_id", userID))
	if c.computeHook != nil {
		c.computeHook(cacheKey)
	}

	summary, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	c.cacheJSON(ctx, cacheKey, summary, "analytics")
	return summary, nil
}

// GetHistoryWithCache retrieves one page of a user's interview history,
// computing it on a miss and caching the result. Each pagination/filter
// variant caches under its own key.
func (c *CacheService) GetHistoryWithCache(ctx context.Context, userID string, filter domain.HistoryFilter, compute func(ctx context.Context) (*domain.HistoryPage, error)) (*domain.HistoryPage, error) {
	filter.Normalize()
	cacheKey := c.keys.KeyHistory(userID, filter.Page, filter.Limit, filter.Type, filter.Status)

	if cached, err := c.store.Get(ctx, cacheKey); err == nil {
		var page domain.HistoryPage
		if marshalErr := json.Unmarshal([]byte(cached), &page); marshalErr == nil {
			c.logger.Debug("history cache hit", zap.String("user_id", userID))
			return &page, nil
		}
		c.logger.Warn("history cache corrupted, recomputing", zap.String("user_id", userID))
	} else if err != store.ErrNotFound {
		c.logger.Warn("history cache error, recomputing",
			zap.String("user_id", userID),
			zap.Error(err))
	}

	c.logger.Debug("history cache miss", zap.String("user_id", userID))
	if c.computeHook != nil {
		c.computeHook(cacheKey)
	}

	page, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	c.cacheJSON(ctx, cacheKey, page, "history")
	return page, nil
}

// InvalidateUser clears every cached analytics and history variant for a
// user. Fired after any write that mutates the user's interviews, so stale
// pages never outlive a mutation regardless of their pagination suffix.
func (c *CacheService) InvalidateUser(ctx context.Context, userID string) {
	patterns := []string{
		c.keys.KeyAnalyticsPattern(userID),
		c.keys.KeyHistoryPattern(userID),
	}

	for _, pattern := range patterns {
		if err := c.store.DeletePattern(ctx, pattern); err != nil {
			c.logger.Error("failed to invalidate cache pattern",
				zap.String("pattern", pattern),
				zap.Error(err))
		}
	}

	c.logger.Debug("user caches invalidated", zap.String("user_id", userID))
}

// cacheJSON stores a successful payload. A cache write failure is logged and
// swallowed: the caller already has a correct response.
func (c *CacheService) cacheJSON(ctx context.Context, key string, value interface{}, kind string) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Error("failed to marshal for caching",
			zap.String("kind", kind),
			zap.Error(err))
		return
	}

	ttl := redis.TTLHistory
	if kind == "analytics" {
		ttl = redis.TTLAnalytics
	}

	if err := c.store.Set(ctx, key, string(data), ttl); err != nil {
		c.logger.Error("failed to cache payload",
			zap.String("kind", kind),
			zap.Error(err))
	}
}

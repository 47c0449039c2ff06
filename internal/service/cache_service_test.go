package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"intervue-api/internal/domain"
	"intervue-api/pkg/redis"
	"intervue-api/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCache() (*CacheService, *store.MemoryStore, *limiterClock) {
	kv := store.NewMemoryStore()
	clock := &limiterClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	kv.SetClock(clock.Now)
	return NewCacheService(kv, redis.NewKeyBuilder("test"), zap.NewNop()), kv, clock
}

func TestCacheService_AnalyticsHitSkipsCompute(t *testing.T) {
	ctx := context.Background()
	cache, _, _ := newTestCache()

	computes := 0
	cache.SetComputeHook(func(string) { computes++ })

	compute := func(context.Context) (*domain.AnalyticsSummary, error) {
		return &domain.AnalyticsSummary{UserID: "u1", TotalInterviews: 7}, nil
	}

	first, err := cache.GetAnalyticsWithCache(ctx, "u1", compute)
	require.NoError(t, err)
	assert.Equal(t, 7, first.TotalInterviews)
	assert.Equal(t, 1, computes)

	second, err := cache.GetAnalyticsWithCache(ctx, "u1", compute)
	require.NoError(t, err)
	assert.Equal(t, first.TotalInterviews, second.TotalInterviews)
	assert.Equal(t, 1, computes, "a cache hit must not recompute")
}

func TestCacheService_EntryExpires(t *testing.T) {
	ctx := context.Background()
	cache, _, clock := newTestCache()

	computes := 0
	cache.SetComputeHook(func(string) { computes++ })

	compute := func(context.Context) (*domain.AnalyticsSummary, error) {
		return &domain.AnalyticsSummary{UserID: "u1"}, nil
	}

	_, err := cache.GetAnalyticsWithCache(ctx, "u1", compute)
	require.NoError(t, err)

	clock.current = clock.current.Add(redis.TTLAnalytics)

	_, err = cache.GetAnalyticsWithCache(ctx, "u1", compute)
	require.NoError(t, err)
	assert.Equal(t, 2, computes, "an expired entry recomputes")
}

func TestCacheService_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	cache, _, _ := newTestCache()

	computes := 0
	cache.SetComputeHook(func(string) { computes++ })

	boom := errors.New("aggregation failed")
	_, err := cache.GetAnalyticsWithCache(ctx, "u1", func(context.Context) (*domain.AnalyticsSummary, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	summary, err := cache.GetAnalyticsWithCache(ctx, "u1", func(context.Context) (*domain.AnalyticsSummary, error) {
		return &domain.AnalyticsSummary{UserID: "u1"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", summary.UserID)
	assert.Equal(t, 2, computes, "a failed computation must not leave a cache entry")
}

func TestCacheService_HistoryVariantsCacheSeparately(t *testing.T) {
	ctx := context.Background()
	cache, _, _ := newTestCache()

	computes := 0
	cache.SetComputeHook(func(string) { computes++ })

	compute := func(context.Context) (*domain.HistoryPage, error) {
		return &domain.HistoryPage{Page: 1, Limit: 10}, nil
	}

	_, err := cache.GetHistoryWithCache(ctx, "u1", domain.HistoryFilter{Page: 1}, compute)
	require.NoError(t, err)
	_, err = cache.GetHistoryWithCache(ctx, "u1", domain.HistoryFilter{Page: 2}, compute)
	require.NoError(t, err)
	assert.Equal(t, 2, computes, "each pagination variant computes once")

	_, err = cache.GetHistoryWithCache(ctx, "u1", domain.HistoryFilter{Page: 1}, compute)
	require.NoError(t, err)
	assert.Equal(t, 2, computes)
}

func TestCacheService_CorruptedEntryRecomputes(t *testing.T) {
	ctx := context.Background()
	cache, kv, _ := newTestCache()

	keys := redis.NewKeyBuilder("test")
	require.NoError(t, kv.Set(ctx, keys.KeyAnalytics("u1"), "{not json", time.Minute))

	summary, err := cache.GetAnalyticsWithCache(ctx, "u1", func(context.Context) (*domain.AnalyticsSummary, error) {
		return &domain.AnalyticsSummary{UserID: "u1", TotalInterviews: 3}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalInterviews)

	// The corrupted entry was overwritten with the good payload
	cached, err := kv.Get(ctx, keys.KeyAnalytics("u1"))
	require.NoError(t, err)
	assert.Contains(t, cached, `"total_interviews":3`)
}

func TestCacheService_InvalidateUser(t *testing.T) {
	ctx := context.Background()
	cache, _, _ := newTestCache()

	computes := 0
	cache.SetComputeHook(func(string) { computes++ })

	analyticsCompute := func(context.Context) (*domain.AnalyticsSummary, error) {
		return &domain.AnalyticsSummary{UserID: "u1"}, nil
	}
	historyCompute := func(context.Context) (*domain.HistoryPage, error) {
		return &domain.HistoryPage{Page: 1}, nil
	}

	_, err := cache.GetAnalyticsWithCache(ctx, "u1", analyticsCompute)
	require.NoError(t, err)
	_, err = cache.GetHistoryWithCache(ctx, "u1", domain.HistoryFilter{}, historyCompute)
	require.NoError(t, err)
	_, err = cache.GetAnalyticsWithCache(ctx, "u2", analyticsCompute)
	require.NoError(t, err)
	require.Equal(t, 3, computes)

	cache.InvalidateUser(ctx, "u1")

	_, err = cache.GetAnalyticsWithCache(ctx, "u1", analyticsCompute)
	require.NoError(t, err)
	_, err = cache.GetHistoryWithCache(ctx, "u1", domain.HistoryFilter{}, historyCompute)
	require.NoError(t, err)
	assert.Equal(t, 5, computes, "both analytics and history recompute after invalidation")

	_, err = cache.GetAnalyticsWithCache(ctx, "u2", analyticsCompute)
	require.NoError(t, err)
	assert.Equal(t, 5, computes, "other users' entries survive the invalidation")
}

func TestCacheService_InvalidateUserSparesPrefixNeighbors(t *testing.T) {
	ctx := context.Background()
	cache, _, _ := newTestCache()

	computes := 0
	cache.SetComputeHook(func(string) { computes++ })

	analyticsCompute := func(context.Context) (*domain.AnalyticsSummary, error) {
		return &domain.AnalyticsSummary{}, nil
	}
	historyCompute := func(context.Context) (*domain.HistoryPage, error) {
		return &domain.HistoryPage{Page: 1}, nil
	}

	// "u12" shares "u1" as a prefix; invalidating u1 must not touch it.
	for _, userID := range []string{"u1", "u12"} {
		_, err := cache.GetAnalyticsWithCache(ctx, userID, analyticsCompute)
		require.NoError(t, err)
		_, err = cache.GetHistoryWithCache(ctx, userID, domain.HistoryFilter{}, historyCompute)
		require.NoError(t, err)
	}
	require.Equal(t, 4, computes)

	cache.InvalidateUser(ctx, "u1")

	_, err := cache.GetAnalyticsWithCache(ctx, "u12", analyticsCompute)
	require.NoError(t, err)
	_, err = cache.GetHistoryWithCache(ctx, "u12", domain.HistoryFilter{}, historyCompute)
	require.NoError(t, err)
	assert.Equal(t, 4, computes, "the neighboring user's entries are still cached")
}

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"intervue-api/internal/domain"
	"intervue-api/internal/service"
	"intervue-api/pkg/logger"
	"intervue-api/pkg/redis"
	"intervue-api/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRateLimiter() *service.RateLimitService {
	return service.NewRateLimitService(store.NewMemoryStore(), redis.NewKeyBuilder("test"), zap.NewNop())
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
}

func doRequest(t *testing.T, handler http.Handler, userAgent string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	req.Header.Set("User-Agent", userAgent)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit_RejectsOverBudget(t *testing.T) {
	limiter := newTestRateLimiter()
	handler := RateLimit(limiter, domain.ScopeInterview, logger.NewNop())(okHandler())

	policy, ok := limiter.Policy(domain.ScopeInterview)
	require.True(t, ok)

	for i := 0; i < policy.MaxRequests; i++ {
		rec := doRequest(t, handler, "test-agent")
		assert.Equal(t, http.StatusOK, rec.Code, "request %d admitted", i+1)
	}

	rec := doRequest(t, handler, "test-agent")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Type       string `json:"type"`
			Code       string `json:"code"`
			StatusCode int    `json:"statusCode"`
			RetryAfter int    `json:"retryAfter"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "rate_limit", body.Error.Type)
	assert.Equal(t, "RATE_LIMIT_ERROR", body.Error.Code)
	assert.Equal(t, http.StatusTooManyRequests, body.Error.StatusCode)
	assert.GreaterOrEqual(t, body.Error.RetryAfter, 1)
}

func TestRateLimit_DifferentUserAgentsGetSeparateBuckets(t *testing.T) {
	limiter := newTestRateLimiter()
	handler := RateLimit(limiter, domain.ScopeInterview, logger.NewNop())(okHandler())

	policy, _ := limiter.Policy(domain.ScopeInterview)
	for i := 0; i <= policy.MaxRequests; i++ {
		doRequest(t, handler, "agent-a")
	}

	assert.Equal(t, http.StatusTooManyRequests, doRequest(t, handler, "agent-a").Code)
	assert.Equal(t, http.StatusOK, doRequest(t, handler, "agent-b").Code)
}

func TestRateLimit_SkipOnSuccessRefundsSuccesses(t *testing.T) {
	limiter := newTestRateLimiter()

	policy, ok := limiter.Policy(domain.ScopeAuth)
	require.True(t, ok)
	require.True(t, policy.SkipOnSuccess)

	handler := RateLimit(limiter, domain.ScopeAuth, logger.NewNop())(okHandler())

	// Far more successful requests than the budget allows all pass, because
	// each one is refunded after responding
	for i := 0; i < policy.MaxRequests*3; i++ {
		rec := doRequest(t, handler, "test-agent")
		assert.Equal(t, http.StatusOK, rec.Code, "successful request %d admitted", i+1)
	}
}

func TestRateLimit_SkipOnSuccessCountsFailures(t *testing.T) {
	limiter := newTestRateLimiter()

	failing := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	handler := RateLimit(limiter, domain.ScopeAuth, logger.NewNop())(failing)

	policy, _ := limiter.Policy(domain.ScopeAuth)
	for i := 0; i < policy.MaxRequests; i++ {
		rec := doRequest(t, handler, "test-agent")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "failed attempt %d passes through", i+1)
	}

	rec := doRequest(t, handler, "test-agent")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code, "failed attempts exhaust the budget")
}

func TestFingerprint(t *testing.T) {
	base := func() *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.7:51234"
		req.Header.Set("User-Agent", "agent-a")
		return req
	}

	t.Run("stable for identical inputs", func(t *testing.T) {
		assert.Equal(t, Fingerprint(base(), "u1"), Fingerprint(base(), "u1"))
	})

	t.Run("anonymous sentinel", func(t *testing.T) {
		assert.Contains(t, Fingerprint(base(), ""), "anonymous")
	})

	t.Run("port changes do not change the key", func(t *testing.T) {
		other := base()
		other.RemoteAddr = "203.0.113.7:60000"
		assert.Equal(t, Fingerprint(base(), "u1"), Fingerprint(other, "u1"))
	})

	t.Run("different address changes the key", func(t *testing.T) {
		other := base()
		other.RemoteAddr = "198.51.100.9:51234"
		assert.NotEqual(t, Fingerprint(base(), "u1"), Fingerprint(other, "u1"))
	})

	t.Run("different user changes the key", func(t *testing.T) {
		assert.NotEqual(t, Fingerprint(base(), "u1"), Fingerprint(base(), "u2"))
	})

	t.Run("different user agent changes the key", func(t *testing.T) {
		other := base()
		other.Header.Set("User-Agent", "agent-b")
		assert.NotEqual(t, Fingerprint(base(), "u1"), Fingerprint(other, "u1"))
	})

	t.Run("missing user agent is tolerated", func(t *testing.T) {
		other := base()
		other.Header.Del("User-Agent")
		assert.NotEmpty(t, Fingerprint(other, "u1"))
	})
}

package middleware

import (
	"fmt"
	"net/http"

	"intervue-api/internal/service"
	"intervue-api/pkg/errors"
	"intervue-api/pkg/logger"
)

// RateLimit creates a middleware that enforces the named admission policy.
// The fingerprint mixes in the authenticated user id, so this must run after
// Auth on protected routes to give each user their own bucket.
//
// For skip-on-success policies the window slot consumed on entry is refunded
// once the handler responds below 400, so only failed attempts count against
// the budget.
func RateLimit(limiter *service.RateLimitService, scope string, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := ""
			if claims, ok := ClaimsFromContext(r.Context()); ok {
				userID = claims.UserID
			}
			fingerprint := Fingerprint(r, userID)

			decision := limiter.Check(r.Context(), scope, fingerprint)
			if !decision.Allowed {
				retryAfter := service.RetryAfterSeconds(decision.RetryAfter)
				w.Header().Set("Retry-After", fmt.Sprintf("%d", retryAfter))
				writeErrorResponse(w, errors.NewRateLimitError("Too many requests, please try again later", retryAfter), logger)
				return
			}

			policy, _ := limiter.Policy(scope)
			if !policy.SkipOnSuccess {
				next.ServeHTTP(w, r)
				return
			}

			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)
			if recorder.status < http.StatusBadRequest {
				limiter.Refund(r.Context(), scope, fingerprint)
			}
		})
	}
}

// statusRecorder captures the response status for post-handler decisions
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

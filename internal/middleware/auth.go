package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"intervue-api/internal/domain"
	"intervue-api/internal/service"
	"intervue-api/pkg/errors"
	"intervue-api/pkg/logger"
)

// ContextKey represents keys used in request context
type ContextKey string

const (
	// ClaimsContextKey is the key for session claims in context
	ClaimsContextKey ContextKey = "claims"
)

// ClaimsFromContext extracts the session claims set by Auth or OptionalAuth
func ClaimsFromContext(ctx context.Context) (*domain.AuthClaims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*domain.AuthClaims)
	return claims, ok
}

// Auth creates an authentication middleware that validates the app session
// token and stores its claims in the request context
func Auth(authService service.AuthService, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, appErr := bearerToken(r)
			if appErr != nil {
				writeErrorResponse(w, appErr, logger)
				return
			}

			ctx := r.Context()
			claims, err := authService.ValidateToken(ctx, token)
			if err != nil {
				logger.WithError(err).Warn("Token validation failed")
				writeErrorResponse(w, errors.NewAuthenticationError("Invalid or expired token"), logger)
				return
			}

			ctx = context.WithValue(ctx, ClaimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth validates the session token when one is present and continues
// anonymously otherwise. An invalid token is still rejected.
func OptionalAuth(authService service.AuthService, logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, appErr := bearerToken(r)
			if appErr != nil {
				writeErrorResponse(w, appErr, logger)
				return
			}

			ctx := r.Context()
			claims, err := authService.ValidateToken(ctx, token)
			if err != nil {
				logger.WithError(err).Warn("Token validation failed")
				writeErrorResponse(w, errors.NewAuthenticationError("Invalid or expired token"), logger)
				return
			}

			ctx = context.WithValue(ctx, ClaimsContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests whose session claims lack the admin role.
// Must run after Auth.
func RequireAdmin(logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeErrorResponse(w, errors.NewAuthenticationError("Authentication required"), logger)
				return
			}
			if !claims.IsAdmin() {
				writeErrorResponse(w, errors.NewAuthorizationError("Admin access required"), logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the token from the Authorization header
func bearerToken(r *http.Request) (string, *errors.AppError) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.NewAuthenticationError("Authorization header is required")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", errors.NewAuthenticationError("Invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", errors.NewAuthenticationError("Token is required")
	}
	return token, nil
}

// writeErrorResponse writes an error envelope to the client
func writeErrorResponse(w http.ResponseWriter, appErr *errors.AppError, logger *logger.Logger) {
	response := &errors.ErrorResponse{}
	response.Error.Type = appErr.Type
	response.Error.Code = appErr.Code
	response.Error.Message = appErr.Message
	response.Error.StatusCode = appErr.StatusCode
	response.Error.RetryAfter = appErr.RetryAfter
	response.Error.Details = appErr.Details
	response.Error.Timestamp = time.Now().UTC().Format(time.RFC3339)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.WithError(err).Error("Failed to encode error response")
	}
}

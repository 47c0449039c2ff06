package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different types of application errors
type ErrorType string

const (
	ErrorTypeValidation          ErrorType = "validation"
	ErrorTypeAuthentication      ErrorType = "authentication"
	ErrorTypeAuthorization       ErrorType = "authorization"
	ErrorTypeNotFound            ErrorType = "not_found"
	ErrorTypeConflict            ErrorType = "conflict"
	ErrorTypeInternal            ErrorType = "internal"
	ErrorTypeExternal            ErrorType = "external"
	ErrorTypeRateLimit           ErrorType = "rate_limit"
	ErrorTypeInsufficientBalance ErrorType = "insufficient_balance"
	ErrorTypeUnavailable         ErrorType = "unavailable"
)

// Machine-readable error codes included in API responses.
const (
	CodeRateLimit           = "RATE_LIMIT_ERROR"
	CodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	CodeServiceUnavailable  = "SERVICE_UNAVAILABLE"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Code       string                 `json:"code,omitempty"`
	Message    string                 `json:"message"`
	StatusCode int                    `json:"status_code"`
	RetryAfter int                    `json:"retry_after,omitempty"` // seconds, rate-limit errors only
	Internal   error                  `json:"-"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Internal.Error())
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// AsAppError extracts an *AppError from err's chain, if any
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details map[string]interface{}) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Details:    details,
	}
}

// NewAuthenticationError creates a new authentication error
func NewAuthenticationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeAuthentication,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewAuthorizationError creates a new authorization error
func NewAuthorizationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeAuthorization,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewConflictError creates a new duplicate-resource error
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

// NewInternalError creates a new internal server error
func NewInternalError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   internal,
	}
}

// NewExternalError creates a new external service error
func NewExternalError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeExternal,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Internal:   internal,
	}
}

// NewRateLimitError creates a new rate limit error carrying the retry-after hint
func NewRateLimitError(message string, retryAfterSeconds int) *AppError {
	return &AppError{
		Type:       ErrorTypeRateLimit,
		Code:       CodeRateLimit,
		Message:    message,
		StatusCode: http.StatusTooManyRequests,
		RetryAfter: retryAfterSeconds,
	}
}

// NewInsufficientBalanceError creates a precondition error for ledger debits
// that would overdraw the account. Callers must treat it as a hard failure,
// not something to retry.
func NewInsufficientBalanceError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInsufficientBalance,
		Code:       CodeInsufficientBalance,
		Message:    message,
		StatusCode: http.StatusPaymentRequired,
	}
}

// NewUnavailableError creates a service-unavailable error for upstream
// failures that have no fallback (e.g. the payment gateway).
func NewUnavailableError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeUnavailable,
		Code:       CodeServiceUnavailable,
		Message:    message,
		StatusCode: http.StatusServiceUnavailable,
		Internal:   internal,
	}
}

// ErrorResponse represents the JSON error response envelope
type ErrorResponse struct {
	Success bool `json:"success"`
	Error   struct {
		Type       ErrorType              `json:"type"`
		Code       string                 `json:"code,omitempty"`
		Message    string                 `json:"message"`
		StatusCode int                    `json:"statusCode"`
		RetryAfter int                    `json:"retryAfter,omitempty"`
		Details    map[string]interface{} `json:"details,omitempty"`
		RequestID  string                 `json:"request_id,omitempty"`
		Timestamp  string                 `json:"timestamp"`
	} `json:"error"`
}

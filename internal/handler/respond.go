package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"intervue-api/pkg/errors"
	"intervue-api/pkg/logger"
)

// successResponse is the generic success envelope
type successResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// writeJSON writes a success envelope to the client
func writeJSON(w http.ResponseWriter, status int, data interface{}, message string, logger *logger.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := successResponse{
		Success: true,
		Data:    data,
		Message: message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.WithError(err).Error("Failed to encode response")
	}
}

// writeError writes an error envelope to the client. Unrecognized errors are
// masked as internal errors so their details stay out of responses.
func writeError(w http.ResponseWriter, err error, logger *logger.Logger) {
	appErr, ok := errors.AsAppError(err)
	if !ok {
		appErr = errors.NewInternalError("An unexpected error occurred", err)
	}

	if appErr.StatusCode >= http.StatusInternalServerError {
		logger.WithError(appErr).Error("Request failed")
	} else {
		logger.WithError(appErr).Debug("Request rejected")
	}

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

	if encErr := json.NewEncoder(w).Encode(response); encErr != nil {
		logger.WithError(encErr).Error("Failed to encode error response")
	}
}

// decodeJSON decodes a request body into dst
func decodeJSON(r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return errors.NewValidationError("Request body is required", nil)
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.NewValidationError("Invalid JSON body", nil)
	}
	return nil
}

package handler

import (
	"net/http"

	"intervue-api/internal/container"
	"intervue-api/internal/middleware"
	"intervue-api/pkg/errors"
)

// AnalyticsHandler serves aggregated interview statistics
type AnalyticsHandler struct {
	container *container.Container
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(container *container.Container) *AnalyticsHandler {
	return &AnalyticsHandler{
		container: container,
	}
}

// Summary handles GET /api/v1/analytics. Results are cached per user with a
// short TTL and invalidated whenever the user's interviews change.
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, errors.NewAuthenticationError("User not authenticated"), logger)
		return
	}

	summary, err := h.container.GetInterviewService().Analytics(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err, logger)
		return
	}

	writeJSON(w, http.StatusOK, summary, "", logger)
}

package handler

import (
	"net/http"
	"strconv"

	"intervue-api/internal/container"
	"intervue-api/internal/domain"
	"intervue-api/internal/middleware"
	"intervue-api/pkg/errors"

	"github.com/go-chi/chi/v5"
)

// InterviewHandler handles interview lifecycle requests
type InterviewHandler struct {
	container *container.Container
}

// NewInterviewHandler creates a new interview handler
func NewInterviewHandler(container *container.Container) *InterviewHandler {
	return &InterviewHandler{
		container: container,
	}
}

// Create handles POST /api/v1/interviews
func (h *InterviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, errors.NewAuthenticationError("User not authenticated"), logger)
		return
	}

	var req domain.CreateInterviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, logger)
		return
	}

	interview, err := h.container.GetInterviewService().Create(r.Context(), claims.UserID, &req)
	if err != nil {
		writeError(w, err, logger)
		return
	}

	writeJSON(w, http.StatusCreated, interview, "Interview created", logger)
}

// Get handles GET /api/v1/interviews/{id}
func (h *InterviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, errors.NewAuthenticationError("User not authenticated"), logger)
		return
	}

	interview, err := h.container.GetInterviewService().Get(r.Context(), claims.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, logger)
		return
	}

	writeJSON(w, http.StatusOK, interview, "", logger)
}

// History handles GET /api/v1/interviews
func (h *InterviewHandler) History(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, errors.NewAuthenticationError("User not authenticated"), logger)
		return
	}

	filter := domain.HistoryFilter{
		Page:   queryInt(r, "page"),
		Limit:  queryInt(r, "limit"),
		Type:   r.URL.Query().Get("type"),
		Status: r.URL.Query().Get("status"),
	}

	page, err := h.container.GetInterviewService().History(r.Context(), claims.UserID, filter)
	if err != nil {
		writeError(w, err, logger)
		return
	}

	writeJSON(w, http.StatusOK, page, "", logger)
}

// Complete handles POST /api/v1/interviews/{id}/complete. A degraded
// evaluation still completes the interview; the response carries the
// evaluation source so clients can tell.
func (h *InterviewHandler) Complete(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, errors.NewAuthenticationError("User not authenticated"), logger)
		return
	}

	var req domain.CompleteInterviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, logger)
		return
	}

	interview, err := h.container.GetInterviewService().Complete(r.Context(), claims.UserID, chi.URLParam(r, "id"), &req)
	if err != nil {
		writeError(w, err, logger)
		return
	}

	writeJSON(w, http.StatusOK, interview, "Interview completed", logger)
}

// Evaluate handles POST /api/v1/interviews/{id}/evaluate. Always responds
// 200 on a handled evaluation; degraded results are flagged, not errored.
func (h *InterviewHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, errors.NewAuthenticationError("User not authenticated"), logger)
		return
	}

	var req domain.EvaluateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, logger)
		return
	}

	evaluation, err := h.container.GetInterviewService().Evaluate(r.Context(), claims.UserID, chi.URLParam(r, "id"), req.Transcript)
	if err != nil {
		writeError(w, err, logger)
		return
	}

	resp := domain.EvaluateResponse{
		Success:    true,
		Evaluation: evaluation.Result,
		Degraded:   evaluation.IsFallback(),
	}
	if resp.Degraded {
		resp.Message = "Evaluation service degraded, baseline scores returned"
	}

	writeJSON(w, http.StatusOK, resp, "", logger)
}

// queryInt parses an integer query parameter, zero when absent or invalid
func queryInt(r *http.Request, name string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return v
}

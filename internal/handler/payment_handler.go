package handler

import (
	"net/http"

	"intervue-api/internal/container"
	"intervue-api/internal/domain"
	"intervue-api/internal/middleware"
	"intervue-api/pkg/errors"
)

// PaymentHandler serves plan purchases and gateway webhooks
type PaymentHandler struct {
	container *container.Container
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(container *container.Container) *PaymentHandler {
	return &PaymentHandler{
		container: container,
	}
}

// Plans handles GET /api/v1/payments/plans
func (h *PaymentHandler) Plans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"plans": domain.PaymentPlans}, "", h.container.GetLogger())
}

// CreateOrder handles POST /api/v1/payments/orders
func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, errors.NewAuthenticationError("User not authenticated"), logger)
		return
	}

	var req domain.CreateOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, logger)
		return
	}

	order, err := h.container.GetPaymentService().CreateOrder(r.Context(), claims.UserID, req.PlanID)
	if err != nil {
		writeError(w, err, logger)
		return
	}

	writeJSON(w, http.StatusCreated, order, "Order created", logger)
}

// Webhook handles POST /api/v1/payments/webhook. Unauthenticated; trust
// comes from the HMAC signature inside the payload.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	var event domain.PaymentWebhookEvent
	if err := decodeJSON(r, &event); err != nil {
		writeError(w, err, logger)
		return
	}

	if err := h.container.GetPaymentService().HandleWebhook(r.Context(), &event); err != nil {
		writeError(w, err, logger)
		return
	}

	writeJSON(w, http.StatusOK, nil, "Webhook processed", logger)
}

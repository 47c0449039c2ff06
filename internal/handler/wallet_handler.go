package handler

import (
	"net/http"

	"intervue-api/internal/container"
	"intervue-api/internal/domain"
	"intervue-api/internal/middleware"
	"intervue-api/pkg/errors"
)

// WalletHandler serves minute-balance and ledger requests
type WalletHandler struct {
	container *container.Container
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(container *container.Container) *WalletHandler {
	return &WalletHandler{
		container: container,
	}
}

// Balance handles GET /api/v1/wallet/balance
func (h *WalletHandler) Balance(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, errors.NewAuthenticationError("User not authenticated"), logger)
		return
	}

	minutes, err := h.container.GetLedgerService().GetBalance(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, errors.NewInternalError("Failed to compute balance", err), logger)
		return
	}

	writeJSON(w, http.StatusOK, domain.WalletBalance{UserID: claims.UserID, Minutes: minutes}, "", logger)
}

// History handles GET /api/v1/wallet/ledger
func (h *WalletHandler) History(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, errors.NewAuthenticationError("User not authenticated"), logger)
		return
	}

	entries, err := h.container.GetLedgerService().History(r.Context(), claims.UserID, queryInt(r, "limit"))
	if err != nil {
		writeError(w, errors.NewInternalError("Failed to load ledger", err), logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries}, "", logger)
}

// Adjust handles POST /api/v1/admin/wallet/adjust. Admin only; negative
// minutes are applied as debits and still respect the balance floor.
func (h *WalletHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	var req domain.AdjustBalanceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, logger)
		return
	}
	if req.UserID == "" {
		writeError(w, errors.NewValidationError("user_id is required", nil), logger)
		return
	}
	if req.Minutes == 0 {
		writeError(w, errors.NewValidationError("minutes must be non-zero", nil), logger)
		return
	}

	ledger := h.container.GetLedgerService()
	description := req.Description
	if description == "" {
		description = "Manual adjustment"
	}

	var entry *domain.LedgerEntry
	var err error
	if req.Minutes > 0 {
		entry, err = ledger.AddCredit(r.Context(), req.UserID, req.Minutes, domain.CategoryAdminAdjustment, description, "")
	} else {
		entry, err = ledger.AddDebit(r.Context(), req.UserID, -req.Minutes, domain.CategoryAdminAdjustment, description, "")
	}
	if err != nil {
		writeError(w, err, logger)
		return
	}

	writeJSON(w, http.StatusOK, entry, "Balance adjusted", logger)
}

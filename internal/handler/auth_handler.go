package handler

import (
	"net/http"
	"time"

	"intervue-api/internal/container"
	"intervue-api/internal/domain"
	"intervue-api/internal/middleware"
	"intervue-api/pkg/errors"
)

// AuthHandler handles authentication related requests
type AuthHandler struct {
	container *container.Container
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(container *container.Container) *AuthHandler {
	return &AuthHandler{
		container: container,
	}
}

// GoogleSignIn handles POST /api/v1/auth/google. It verifies the Google
// credential, upserts the user and issues an app session token. First
// sign-ins receive the signup bonus minutes.
func (h *AuthHandler) GoogleSignIn(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()
	ctx := r.Context()

	var req domain.GoogleSignInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err, logger)
		return
	}

	profile, err := h.container.GetAuthService().SignInWithGoogle(ctx, &req)
	if err != nil {
		writeError(w, err, logger)
		return
	}

	user := &domain.User{
		ID:      profile.Sub,
		Email:   profile.Email,
		Name:    profile.Name,
		Picture: profile.Picture,
		Role:    domain.RoleUser,
	}

	created, err := h.container.Repositories.User.Upsert(ctx, user)
	if err != nil {
		writeError(w, errors.NewInternalError("Failed to save user", err), logger)
		return
	}

	if created {
		bonus := h.container.GetConfig().SignupBonusMinutes
		if bonus > 0 {
			if _, err := h.container.GetLedgerService().AddCredit(ctx, user.ID, bonus, domain.CategorySignupBonus, "Welcome bonus", ""); err != nil {
				// The account exists either way. Log and continue.
				logger.WithError(err).WithField("user_id", user.ID).Error("Failed to credit signup bonus")
			}
		}
		logger.WithField("user_id", user.ID).Info("New user signed up")
	}

	authResp, err := h.container.GetAuthService().IssueToken(user)
	if err != nil {
		writeError(w, errors.NewInternalError("Failed to issue session token", err), logger)
		return
	}

	writeJSON(w, http.StatusOK, authResp, "Signed in successfully", logger)
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	logger := h.container.GetLogger()

	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, errors.NewAuthenticationError("User not authenticated"), logger)
		return
	}

	user, err := h.container.Repositories.User.GetByID(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, errors.NewInternalError("Failed to load user", err), logger)
		return
	}
	if user == nil {
		writeError(w, errors.NewNotFoundError("user"), logger)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":       user,
		"expires_at": claims.ExpiresAt.Format(time.RFC3339),
	}, "", logger)
}

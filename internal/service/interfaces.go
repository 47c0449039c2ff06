package service

import (
	"context"

	"intervue-api/internal/domain"
)

// AuthService defines the interface for authentication operations
type AuthService interface {
	// SignInWithGoogle verifies a Google authorization code or access token
	// and returns the verified profile
	SignInWithGoogle(ctx context.Context, req *domain.GoogleSignInRequest) (*domain.UserProfile, error)

	// IssueToken mints an app session token for a user
	IssueToken(user *domain.User) (*domain.AuthResponse, error)

	// ValidateToken validates an app session token and returns its claims
	ValidateToken(ctx context.Context, token string) (*domain.AuthClaims, error)
}

// LLMClient defines the interface to the external language model
type LLMClient interface {
	// Complete sends a prompt pair and returns the raw model text
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// PaymentService defines the interface for payment gateway operations
type PaymentService interface {
	// CreateOrder creates a gateway order for a plan purchase
	CreateOrder(ctx context.Context, userID, planID string) (*domain.PaymentOrder, error)

	// HandleWebhook processes a gateway confirmation callback
	HandleWebhook(ctx context.Context, event *domain.PaymentWebhookEvent) error
}

// Services aggregates the service layer for the container
type Services struct {
	Auth       AuthService
	RateLimit  *RateLimitService
	Cache      *CacheService
	Ledger     *LedgerService
	Evaluation *EvaluationService
	Interview  *InterviewService
	Payment    PaymentService
}

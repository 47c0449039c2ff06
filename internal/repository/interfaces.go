package repository

import (
	"context"
	"errors"

	"intervue-api/internal/domain"
)

// ErrInsufficientBalance is returned by AppendDebit when the debit would
// drive the wallet balance negative. Nothing is written in that case.
var ErrInsufficientBalance = errors.New("insufficient balance")

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// Upsert creates the user on first sign-in or refreshes profile fields
	Upsert(ctx context.Context, user *domain.User) (created bool, err error)
}

// InterviewRepository defines the interface for interview data operations
type InterviewRepository interface {
	// Create inserts a new interview session
	Create(ctx context.Context, interview *domain.Interview) error

	// GetByID retrieves an interview by ID, nil when not found
	GetByID(ctx context.Context, id string) (*domain.Interview, error)

	// ListByUser returns one page of a user's history plus the total count
	ListByUser(ctx context.Context, userID string, filter domain.HistoryFilter) ([]domain.Interview, int, error)

	// Complete stores the transcript, evaluation and final status
	Complete(ctx context.Context, interview *domain.Interview) error

	// Aggregate computes the analytics summary for a user
	Aggregate(ctx context.Context, userID string) (*domain.AnalyticsSummary, error)
}

// LedgerRepository defines the interface for the append-only minute ledger
type LedgerRepository interface {
	// Balance returns the signed sum of all entries for a user
	Balance(ctx context.Context, userID string) (int, error)

	// AppendCredit atomically raises the wallet balance and appends the
	// entry with the resulting balance
	AppendCredit(ctx context.Context, entry *domain.LedgerEntry) error

	// AppendDebit atomically lowers the wallet balance with a floor-at-zero
	// guard and appends the entry. Returns ErrInsufficientBalance without
	// writing anything when the guard fails.
	AppendDebit(ctx context.Context, entry *domain.LedgerEntry) error

	// ListByUser returns the most recent entries for a user
	ListByUser(ctx context.Context, userID string, limit int) ([]domain.LedgerEntry, error)
}

// PaymentRepository defines the interface for payment order records
type PaymentRepository interface {
	// CreateOrder inserts a pending order
	CreateOrder(ctx context.Context, order *domain.PaymentOrder) error

	// GetByGatewayOrderID retrieves an order by the gateway's ID, nil when
	// not found
	GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*domain.PaymentOrder, error)

	// UpdateStatus transitions an order's status, reporting whether the row
	// changed (guards double-processing of webhooks)
	UpdateStatus(ctx context.Context, orderID, fromStatus, toStatus string) (bool, error)
}

// Repositories aggregates all repository interfaces
type Repositories struct {
	User      UserRepository
	Interview InterviewRepository
	Ledger    LedgerRepository
	Payment   PaymentRepository
}

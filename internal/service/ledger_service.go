package service

import (
	"context"
	"fmt"

	"intervue-api/internal/domain"
	"intervue-api/internal/repository"
	apperrors "intervue-api/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LedgerService maintains the append-only minute ledger and the derived
// balance. Debits are atomic with a floor-at-zero guard in the repository, so
// concurrent debits cannot overdraw a wallet.
type LedgerService struct {
	repo   repository.LedgerRepository
	logger *zap.Logger
}

// NewLedgerService creates a new ledger service
func NewLedgerService(repo repository.LedgerRepository, logger *zap.Logger) *LedgerService {
	return &LedgerService{repo: repo, logger: logger}
}

// GetBalance returns a user's usable minutes: the signed sum of all entries
func (s *LedgerService) GetBalance(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("ledger: user id is required")
	}
	return s.repo.Balance(ctx, userID)
}

// AddCredit appends a credit entry. Credits always succeed.
func (s *LedgerService) AddCredit(ctx context.Context, userID string, minutes int, category, description, relatedID string) (*domain.LedgerEntry, error) {
	if err := validateEntryInput(userID, minutes); err != nil {
		return nil, err
	}

	entry := &domain.LedgerEntry{
		UserID:        userID,
		TransactionID: uuid.NewString(),
		Type:          domain.EntryCredit,
		Category:      category,
		Minutes:       minutes,
		RelatedID:     relatedID,
		Description:   description,
	}

	if err := s.repo.AppendCredit(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to append credit: %w", err)
	}

	s.logger.Info("minutes credited",
		zap.String("user_id", userID),
		zap.String("transaction_id", entry.TransactionID),
		zap.String("category", category),
		zap.Int("minutes", minutes),
		zap.Int("balance_after", entry.BalanceAfter))

	return entry, nil
}

// AddDebit appends a debit entry after the atomic balance guard passes.
// An insufficient balance is a hard precondition failure: nothing is written
// and the caller must block the triggering action, not retry.
func (s *LedgerService) AddDebit(ctx context.Context, userID string, minutes int, category, description, relatedID string) (*domain.LedgerEntry, error) {
	if err := validateEntryInput(userID, minutes); err != nil {
		return nil, err
	}

	entry := &domain.LedgerEntry{
		UserID:        userID,
		TransactionID: uuid.NewString(),
		Type:          domain.EntryDebit,
		Category:      category,
		Minutes:       minutes,
		RelatedID:     relatedID,
		Description:   description,
	}

	err := s.repo.AppendDebit(ctx, entry)
	if err == repository.ErrInsufficientBalance {
		s.logger.Info("debit rejected, insufficient balance",
			zap.String("user_id", userID),
			zap.Int("minutes", minutes))
		return nil, apperrors.NewInsufficientBalanceError(
			fmt.Sprintf("insufficient balance for a %d minute debit", minutes))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to append debit: %w", err)
	}

	s.logger.Info("minutes debited",
		zap.String("user_id", userID),
		zap.String("transaction_id", entry.TransactionID),
		zap.String("category", category),
		zap.Int("minutes", minutes),
		zap.Int("balance_after", entry.BalanceAfter))

	return entry, nil
}

// History returns a user's most recent ledger entries
func (s *LedgerService) History(ctx context.Context, userID string, limit int) ([]domain.LedgerEntry, error) {
	if userID == "" {
		return nil, fmt.Errorf("ledger: user id is required")
	}
	return s.repo.ListByUser(ctx, userID, limit)
}

func validateEntryInput(userID string, minutes int) error {
	if userID == "" {
		return apperrors.NewValidationError("user id is required", nil)
	}
	if minutes <= 0 {
		return apperrors.NewValidationError("minutes must be positive", map[string]interface{}{
			"minutes": minutes,
		})
	}
	return nil
}

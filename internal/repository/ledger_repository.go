package repository

import (
	"context"
	"errors"
	"fmt"

	"intervue-api/internal/domain"
	"intervue-api/pkg/database"

	"github.com/jackc/pgx/v5"
)

type LedgerPGRepository struct {
	db *database.PostgresDB
}

func NewLedgerRepository(db *database.PostgresDB) *LedgerPGRepository {
	return &LedgerPGRepository{db: db}
}

// Balance returns the signed sum of all entries for a user. The wallets row
// carries the same number; the ledger stays the source of truth.
func (r *LedgerPGRepository) Balance(ctx context.Context, userID string) (int, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN type = 'debit' THEN -minutes ELSE minutes END), 0)
		FROM ledger_entries
		WHERE user_id = $1
	`

	var balance int
	if err := r.db.Pool.QueryRow(ctx, query, userID).Scan(&balance); err != nil {
		return 0, fmt.Errorf("failed to compute balance: %w", err)
	}

	return balance, nil
}

// AppendCredit atomically raises the wallet balance and appends the entry
func (r *LedgerPGRepository) AppendCredit(ctx context.Context, entry *domain.LedgerEntry) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin credit transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	walletQuery := `
		INSERT INTO wallets (user_id, balance)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET balance = wallets.balance + $2, updated_at = now()
		RETURNING balance
	`

	if err := tx.QueryRow(ctx, walletQuery, entry.UserID, entry.Minutes).Scan(&entry.BalanceAfter); err != nil {
		return fmt.Errorf("failed to credit wallet: %w", err)
	}

	if err := insertEntry(ctx, tx, entry); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// AppendDebit lowers the wallet balance with a floor-at-zero guard and
// appends the entry in the same transaction. The conditional UPDATE is the
// single atomic step that prevents two concurrent debits from both passing
// a stale balance check.
func (r *LedgerPGRepository) AppendDebit(ctx context.Context, entry *domain.LedgerEntry) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin debit transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	walletQuery := `
		UPDATE wallets
		SET balance = balance - $2, updated_at = now()
		WHERE user_id = $1 AND balance >= $2
		RETURNING balance
	`

	if err := tx.QueryRow(ctx, walletQuery, entry.UserID, entry.Minutes).Scan(&entry.BalanceAfter); err != nil {
		// Zero rows means the guard rejected the debit (or the wallet does
		// not exist yet, which is the same empty balance). Anything else is
		// a database failure and must not read as an overdraft.
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInsufficientBalance
		}
		return fmt.Errorf("failed to debit wallet: %w", err)
	}

	if err := insertEntry(ctx, tx, entry); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// ListByUser returns the most recent entries for a user
func (r *LedgerPGRepository) ListByUser(ctx context.Context, userID string, limit int) ([]domain.LedgerEntry, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}

	query := `
		SELECT id, user_id, transaction_id, type, category, minutes,
		       balance_after, related_id, description, created_at
		FROM ledger_entries
		WHERE user_id = $1
		ORDER BY id DESC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		var (
			entry       domain.LedgerEntry
			relatedID   *string
			description *string
		)
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.TransactionID,
			&entry.Type,
			&entry.Category,
			&entry.Minutes,
			&entry.BalanceAfter,
			&relatedID,
			&description,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		if relatedID != nil {
			entry.RelatedID = *relatedID
		}
		if description != nil {
			entry.Description = *description
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

// insertEntry appends one immutable ledger row inside the caller's transaction
func insertEntry(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (
			user_id, transaction_id, type, category, minutes,
			balance_after, related_id, description
		)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''))
		RETURNING id, created_at
	`

	err := tx.QueryRow(ctx, query,
		entry.UserID,
		entry.TransactionID,
		entry.Type,
		entry.Category,
		entry.Minutes,
		entry.BalanceAfter,
		entry.RelatedID,
		entry.Description,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to append ledger entry: %w", err)
	}

	return nil
}

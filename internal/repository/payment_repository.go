package repository

import (
	"context"
	"fmt"

	"intervue-api/internal/domain"
	"intervue-api/pkg/database"

	"github.com/jackc/pgx/v5"
)

type PaymentPGRepository struct {
	db *database.PostgresDB
}

func NewPaymentRepository(db *database.PostgresDB) *PaymentPGRepository {
	return &PaymentPGRepository{db: db}
}

// CreateOrder inserts a pending order
func (r *PaymentPGRepository) CreateOrder(ctx context.Context, order *domain.PaymentOrder) error {
	query := `
		INSERT INTO payment_orders (
			order_id, gateway_order_id, user_id, plan_id, minutes, amount, currency, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		order.OrderID,
		order.GatewayOrderID,
		order.UserID,
		order.PlanID,
		order.Minutes,
		order.Amount,
		order.Currency,
		order.Status,
	).Scan(&order.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create payment order: %w", err)
	}

	return nil
}

// GetByGatewayOrderID retrieves an order by the gateway's ID
func (r *PaymentPGRepository) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*domain.PaymentOrder, error) {
	query := `
		SELECT order_id, gateway_order_id, user_id, plan_id, minutes, amount, currency, status, created_at
		FROM payment_orders
		WHERE gateway_order_id = $1
	`

	var order domain.PaymentOrder
	err := r.db.Pool.QueryRow(ctx, query, gatewayOrderID).Scan(
		&order.OrderID,
		&order.GatewayOrderID,
		&order.UserID,
		&order.PlanID,
		&order.Minutes,
		&order.Amount,
		&order.Currency,
		&order.Status,
		&order.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment order: %w", err)
	}

	return &order, nil
}

// UpdateStatus transitions an order's status. The fromStatus guard makes
// webhook processing idempotent: a replayed confirmation matches zero rows.
func (r *PaymentPGRepository) UpdateStatus(ctx context.Context, orderID, fromStatus, toStatus string) (bool, error) {
	query := `
		UPDATE payment_orders
		SET status = $3, updated_at = now()
		WHERE order_id = $1 AND status = $2
	`

	ct, err := r.db.Pool.Exec(ctx, query, orderID, fromStatus, toStatus)
	if err != nil {
		return false, fmt.Errorf("failed to update payment order status: %w", err)
	}

	return ct.RowsAffected() > 0, nil
}

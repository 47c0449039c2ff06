package repository

import (
	"context"
	"fmt"

	"intervue-api/internal/domain"
	"intervue-api/pkg/database"

	"github.com/jackc/pgx/v5"
)

type UserPGRepository struct {
	db *database.PostgresDB
}

func NewUserRepository(db *database.PostgresDB) *UserPGRepository {
	return &UserPGRepository{db: db}
}

// GetByID retrieves a user by ID
func (r *UserPGRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, email, name, picture, role, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var user domain.User
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Picture,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &user, nil
}

// Upsert creates the user on first sign-in or refreshes profile fields.
// Reports whether a new row was created so sign-in can grant the signup bonus
// exactly once.
func (r *UserPGRepository) Upsert(ctx context.Context, user *domain.User) (bool, error) {
	query := `
		INSERT INTO users (id, email, name, picture, role)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET email = $2, name = $3, picture = $4, updated_at = now()
		RETURNING (xmax = 0), role, created_at, updated_at
	`

	var created bool
	err := r.db.Pool.QueryRow(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.Picture,
		domain.RoleUser,
	).Scan(&created, &user.Role, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return false, fmt.Errorf("failed to upsert user: %w", err)
	}

	return created, nil
}

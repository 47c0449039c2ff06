package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run main.go [up|drop|seed]")
		os.Exit(1)
	}

	command := os.Args[1]

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	switch command {
	case "up":
		if err := createTables(ctx, conn); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		fmt.Println("✅ All tables created successfully")

	case "drop":
		if err := dropTables(ctx, conn); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Println("✅ All tables dropped successfully")

	case "seed":
		if err := seedData(ctx, conn); err != nil {
			log.Fatalf("Failed to seed data: %v", err)
		}
		fmt.Println("✅ Data seeded successfully")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println("Usage: go run main.go [up|drop|seed]")
		os.Exit(1)
	}
}

// schemaStatements is the full schema in creation order. Repository queries
// are checked against these statements in main_test.go, so a column used in
// an INSERT or UPDATE must appear here.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id VARCHAR(255) PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		picture TEXT,
		role VARCHAR(20) NOT NULL DEFAULT 'user',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS interviews (
		id UUID PRIMARY KEY,
		user_id VARCHAR(255) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		type VARCHAR(30) NOT NULL,
		difficulty VARCHAR(20) NOT NULL,
		topics TEXT[] NOT NULL DEFAULT '{}',
		mode VARCHAR(10) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'created',
		duration_minutes INTEGER NOT NULL,
		transcript TEXT,
		evaluation JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		completed_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_interviews_user_created
		ON interviews (user_id, created_at DESC)`,

	// Wallet balance is the authoritative floor guard for debits; the
	// ledger below is the audit trail it must always agree with.
	`CREATE TABLE IF NOT EXISTS wallets (
		user_id VARCHAR(255) PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		balance INTEGER NOT NULL DEFAULT 0 CHECK (balance >= 0),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS ledger_entries (
		id BIGSERIAL PRIMARY KEY,
		user_id VARCHAR(255) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		transaction_id UUID UNIQUE NOT NULL,
		type VARCHAR(10) NOT NULL CHECK (type IN ('credit', 'debit')),
		category VARCHAR(30) NOT NULL,
		minutes INTEGER NOT NULL CHECK (minutes > 0),
		balance_after INTEGER NOT NULL,
		related_id VARCHAR(255),
		description TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_ledger_entries_user_created
		ON ledger_entries (user_id, created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS payment_orders (
		order_id UUID PRIMARY KEY,
		gateway_order_id VARCHAR(255) UNIQUE NOT NULL,
		user_id VARCHAR(255) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		plan_id VARCHAR(50) NOT NULL,
		minutes INTEGER NOT NULL,
		amount BIGINT NOT NULL,
		currency VARCHAR(10) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

func createTables(ctx context.Context, conn *pgx.Conn) error {
	for _, query := range schemaStatements {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

func dropTables(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`DROP TABLE IF EXISTS payment_orders CASCADE`,
		`DROP TABLE IF EXISTS ledger_entries CASCADE`,
		`DROP TABLE IF EXISTS wallets CASCADE`,
		`DROP TABLE IF EXISTS interviews CASCADE`,
		`DROP TABLE IF EXISTS users CASCADE`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
		fmt.Printf("  Dropped: %s\n", query)
	}

	return nil
}

func seedData(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`INSERT INTO users (id, email, name, role)
			VALUES ('admin-local', 'admin@example.com', 'Local Admin', 'admin')
			ON CONFLICT (id) DO NOTHING`,
		`INSERT INTO wallets (user_id, balance)
			VALUES ('admin-local', 120)
			ON CONFLICT (user_id) DO NOTHING`,
		`INSERT INTO ledger_entries (user_id, transaction_id, type, category, minutes, balance_after, description)
			VALUES ('admin-local', gen_random_uuid(), 'credit', 'admin_adjustment', 120, 120, 'Seed balance')
			ON CONFLICT (transaction_id) DO NOTHING`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}

	return nil
}

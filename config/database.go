package config

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

func InitDB(ctx context.Context, dbURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// migrations are idempotent and run in order on every start.
var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`,

	`CREATE TABLE IF NOT EXISTS user_profiles (
		id TEXT PRIMARY KEY,
		email VARCHAR(255),
		created_at TIMESTAMPTZ DEFAULT NOW()
	)`,

	// access_token holds the sealed provider credential, never plaintext.
	`CREATE TABLE IF NOT EXISTS user_accounts (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id TEXT NOT NULL,
		account_id TEXT NOT NULL,
		account_name VARCHAR(255) NOT NULL,
		account_type VARCHAR(50),
		account_subtype VARCHAR(50),
		account_number_masked VARCHAR(20),
		balance NUMERIC(14, 2),
		available_balance NUMERIC(14, 2),
		currency VARCHAR(3) DEFAULT 'CAD',
		access_token TEXT,
		last_synced_at TIMESTAMPTZ,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW(),
		UNIQUE(user_id, account_id)
	)`,

	`CREATE TABLE IF NOT EXISTS transactions (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		account_id UUID NOT NULL REFERENCES user_accounts(id) ON DELETE CASCADE,
		transaction_id TEXT UNIQUE NOT NULL,
		amount NUMERIC(14, 2) NOT NULL,
		description TEXT,
		merchant_name TEXT,
		date DATE NOT NULL,
		posted_date DATE,
		category VARCHAR(100),
		subcategory VARCHAR(100),
		is_recurring BOOLEAN NOT NULL DEFAULT FALSE,
		is_manual BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ DEFAULT clock_timestamp(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS custom_categories (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id TEXT NOT NULL,
		name VARCHAR(100) NOT NULL,
		description TEXT,
		color VARCHAR(7) NOT NULL DEFAULT '#3182ce',
		icon VARCHAR(50) NOT NULL DEFAULT 'tag',
		is_income BOOLEAN NOT NULL DEFAULT FALSE,
		parent_category VARCHAR(100),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		UNIQUE(user_id, name)
	)`,

	`CREATE TABLE IF NOT EXISTS budgets (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id TEXT NOT NULL,
		name VARCHAR(255) NOT NULL,
		category_name VARCHAR(100) NOT NULL,
		budget_type VARCHAR(20) NOT NULL DEFAULT 'monthly'
			CHECK (budget_type IN ('weekly', 'monthly', 'annual', 'goal')),
		amount NUMERIC(14, 2) NOT NULL CHECK (amount > 0),
		period_start DATE NOT NULL,
		period_end DATE NOT NULL,
		auto_renew BOOLEAN NOT NULL DEFAULT TRUE,
		rollover_unused BOOLEAN NOT NULL DEFAULT FALSE,
		alert_threshold NUMERIC(5, 2) NOT NULL DEFAULT 80.00
			CHECK (alert_threshold >= 0 AND alert_threshold <= 100),
		notes TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW(),
		CONSTRAINT budgets_period_order CHECK (period_end >= period_start)
	)`,

	`CREATE TABLE IF NOT EXISTS budget_goals (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		budget_id UUID UNIQUE NOT NULL REFERENCES budgets(id) ON DELETE CASCADE,
		goal_name VARCHAR(255) NOT NULL,
		target_amount NUMERIC(14, 2) NOT NULL,
		target_date DATE
	)`,

	`CREATE INDEX IF NOT EXISTS idx_user_accounts_user_id ON user_accounts(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_account_date ON transactions(account_id, date DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category)`,
	`CREATE INDEX IF NOT EXISTS idx_custom_categories_user_id ON custom_categories(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_budgets_user_id ON budgets(user_id)`,
}

func RunMigrations(ctx context.Context, db *sql.DB) error {
	for i, migration := range migrations {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("failed to run migration %d: %w", i, err)
		}
	}

	return nil
}

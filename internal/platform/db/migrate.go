package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS stores (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		manager_id TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		description TEXT NOT NULL DEFAULT '',
		opening_hours TEXT NOT NULL DEFAULT '',
		tax_id TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS stores_name_unique_idx ON stores (lower(name));`,
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		full_name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'cajero',
		assigned_store_id TEXT REFERENCES stores(id) ON DELETE SET NULL,
		permissions TEXT[] NOT NULL DEFAULT '{}',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_unique_idx ON users (lower(email));`,
	`CREATE TABLE IF NOT EXISTS cash_registers (
		id TEXT PRIMARY KEY,
		store_id TEXT NOT NULL REFERENCES stores(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS cash_registers_store_name_idx ON cash_registers (store_id, lower(name));`,
	`CREATE TABLE IF NOT EXISTS cash_register_users (
		cash_register_id TEXT NOT NULL REFERENCES cash_registers(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (cash_register_id, user_id)
	);`,
	`CREATE TABLE IF NOT EXISTS daily_incomes (
		id TEXT PRIMARY KEY,
		store_id TEXT NOT NULL REFERENCES stores(id),
		cash_register_id TEXT REFERENCES cash_registers(id) ON DELETE SET NULL,
		date DATE NOT NULL,
		amount_usd NUMERIC(18,4) NOT NULL,
		amount_bs NUMERIC(20,4) NOT NULL DEFAULT 0,
		bcv_rate NUMERIC(18,6) NOT NULL,
		payment_method TEXT NOT NULL,
		is_opening BOOLEAN NOT NULL DEFAULT FALSE,
		description TEXT NOT NULL DEFAULT '',
		payment_details TEXT NOT NULL DEFAULT '',
		created_by TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS daily_incomes_scope_idx ON daily_incomes (store_id, date);`,
	`CREATE TABLE IF NOT EXISTS daily_expenses (
		id TEXT PRIMARY KEY,
		store_id TEXT NOT NULL REFERENCES stores(id),
		cash_register_id TEXT REFERENCES cash_registers(id) ON DELETE SET NULL,
		date DATE NOT NULL,
		amount_usd NUMERIC(18,4) NOT NULL,
		amount_bs NUMERIC(20,4) NOT NULL DEFAULT 0,
		bcv_rate NUMERIC(18,6) NOT NULL,
		payment_source TEXT NOT NULL,
		description TEXT NOT NULL,
		created_by TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS daily_expenses_scope_idx ON daily_expenses (store_id, date);`,
	`CREATE TABLE IF NOT EXISTS daily_closures (
		id TEXT PRIMARY KEY,
		store_id TEXT NOT NULL REFERENCES stores(id),
		date DATE NOT NULL,
		shift_name TEXT NOT NULL DEFAULT '',
		bcv_rate NUMERIC(18,6) NOT NULL,
		total_cash_usd NUMERIC(18,4) NOT NULL DEFAULT 0,
		total_zelle_usd NUMERIC(18,4) NOT NULL DEFAULT 0,
		total_mobile_payment_usd NUMERIC(18,4) NOT NULL DEFAULT 0,
		total_pdv_banesco_usd NUMERIC(18,4) NOT NULL DEFAULT 0,
		total_cashea_usd NUMERIC(18,4) NOT NULL DEFAULT 0,
		opening_float JSONB NOT NULL DEFAULT '{}',
		declared_cash_usd NUMERIC(18,4) NOT NULL DEFAULT 0,
		declared_zelle_usd NUMERIC(18,4) NOT NULL DEFAULT 0,
		declared_mobile_payment_usd NUMERIC(18,4) NOT NULL DEFAULT 0,
		declared_pdv_banesco_usd NUMERIC(18,4) NOT NULL DEFAULT 0,
		declared_cashea_usd NUMERIC(18,4) NOT NULL DEFAULT 0,
		calculated_total_usd NUMERIC(18,4) NOT NULL,
		declared_total_usd NUMERIC(18,4) NOT NULL,
		difference_usd NUMERIC(18,4) NOT NULL,
		is_balanced BOOLEAN NOT NULL,
		total_expenses_usd NUMERIC(18,4) NOT NULL,
		net_profit_usd NUMERIC(18,4) NOT NULL,
		petty_cash_usd NUMERIC(18,4) NOT NULL DEFAULT 0,
		stored_cash_usd NUMERIC(18,4) NOT NULL DEFAULT 0,
		observations TEXT NOT NULL DEFAULT '',
		surplus_notes TEXT NOT NULL DEFAULT '',
		created_by TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT daily_closures_shift_unique UNIQUE (store_id, date, shift_name)
	);`,
	`CREATE INDEX IF NOT EXISTS daily_closures_date_idx ON daily_closures (date DESC);`,
	`CREATE TABLE IF NOT EXISTS exchange_rates (
		date DATE PRIMARY KEY,
		rate NUMERIC(18,6) NOT NULL CHECK (rate > 0),
		source TEXT NOT NULL DEFAULT 'manual',
		fetched_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS app_settings (
		section TEXT PRIMARY KEY,
		payload JSONB NOT NULL,
		updated_by TEXT,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id BIGSERIAL PRIMARY KEY,
		actor_id TEXT NOT NULL DEFAULT '',
		action TEXT NOT NULL,
		entity TEXT NOT NULL,
		entity_id TEXT NOT NULL,
		meta JSONB,
		occurred_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS idempotency_keys (
		key TEXT NOT NULL,
		module TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (key, module)
	);`,
}

// Migrate applies the schema. Every statement is idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("platform/db: apply migration %d: %w", i, err)
		}
	}
	return nil
}

package postgres

import (
	"context"
	"fmt"
)

// schemaStatements DDL idempotente. stock_transitions no tiene FK a products: el libro sobrevive a la baja del producto.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id            TEXT PRIMARY KEY,
		name          TEXT NOT NULL,
		description   TEXT NOT NULL DEFAULT '',
		category      TEXT NOT NULL,
		cost_price    NUMERIC(14,2) NOT NULL DEFAULT 0,
		selling_price NUMERIC(14,2) NOT NULL DEFAULT 0,
		stock         INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
		min_stock     INTEGER NOT NULL DEFAULT 5,
		barcode       TEXT UNIQUE,
		supplier      TEXT NOT NULL DEFAULT '',
		discount      NUMERIC(14,2) NOT NULL DEFAULT 0,
		size          TEXT NOT NULL DEFAULT '',
		dry_food      BOOLEAN NOT NULL DEFAULT FALSE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_products_category ON products (category)`,

	`CREATE TABLE IF NOT EXISTS stock_transitions (
		id               UUID PRIMARY KEY,
		product_id       TEXT NOT NULL,
		product_name     TEXT NOT NULL,
		transaction_type TEXT NOT NULL CHECK (transaction_type IN
			('sale','purchase','customer_return','supplier_return','adjustment','delete')),
		quantity         INTEGER NOT NULL CHECK (quantity >= 0),
		previous_stock   INTEGER NOT NULL,
		new_stock        INTEGER NOT NULL,
		unit_price       NUMERIC(14,2) NOT NULL DEFAULT 0,
		total_value      NUMERIC(14,2) NOT NULL DEFAULT 0,
		reference        TEXT NOT NULL DEFAULT '',
		party            JSONB,
		user_id          UUID,
		user_name        TEXT NOT NULL DEFAULT 'System',
		notes            TEXT NOT NULL DEFAULT '',
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_transitions_product ON stock_transitions (product_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_transitions_type ON stock_transitions (transaction_type, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_stock_transitions_created ON stock_transitions (created_at DESC)`,
	`CREATE OR REPLACE FUNCTION stock_transitions_immutable() RETURNS trigger AS $$
	BEGIN
		RAISE EXCEPTION 'stock_transitions es de solo inserción';
	END;
	$$ LANGUAGE plpgsql`,
	`DROP TRIGGER IF EXISTS trg_stock_transitions_immutable ON stock_transitions`,
	`CREATE TRIGGER trg_stock_transitions_immutable
		BEFORE UPDATE OR DELETE ON stock_transitions
		FOR EACH ROW EXECUTE FUNCTION stock_transitions_immutable()`,

	`CREATE TABLE IF NOT EXISTS orders (
		id                  UUID PRIMARY KEY,
		name                TEXT NOT NULL DEFAULT '',
		order_type          TEXT NOT NULL,
		customer            JSONB,
		cashier_id          TEXT NOT NULL DEFAULT '',
		cashier_name        TEXT NOT NULL DEFAULT '',
		cart                JSONB NOT NULL,
		kitchen_note        TEXT NOT NULL DEFAULT '',
		status              TEXT NOT NULL,
		payment_details     JSONB,
		table_charge        NUMERIC(14,2) NOT NULL DEFAULT 0,
		delivery_charge     NUMERIC(14,2) NOT NULL DEFAULT 0,
		discount_percentage NUMERIC(5,2) NOT NULL DEFAULT 0,
		total_amount        NUMERIC(14,2) NOT NULL DEFAULT 0,
		created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_created ON orders (created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS returns (
		id             UUID PRIMARY KEY,
		product_id     TEXT NOT NULL,
		product_name   TEXT NOT NULL,
		return_type    TEXT NOT NULL CHECK (return_type IN ('customer','supplier')),
		quantity       INTEGER NOT NULL CHECK (quantity > 0),
		reason         TEXT NOT NULL,
		notes          TEXT NOT NULL DEFAULT '',
		unit_price     NUMERIC(14,2) NOT NULL DEFAULT 0,
		total_value    NUMERIC(14,2) NOT NULL DEFAULT 0,
		previous_stock INTEGER NOT NULL DEFAULT 0,
		new_stock      INTEGER NOT NULL DEFAULT 0,
		cashier_id     TEXT NOT NULL DEFAULT '',
		cashier_name   TEXT NOT NULL DEFAULT '',
		status         TEXT NOT NULL,
		failure_reason TEXT NOT NULL DEFAULT '',
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_returns_created ON returns (created_at DESC)`,

	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		username      TEXT NOT NULL,
		email         TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		role          TEXT NOT NULL,
		status        TEXT NOT NULL DEFAULT 'active',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username ON users (lower(username))`,
}

// EnsureSchema crea tablas, índices y el trigger de inmutabilidad del libro si no existen.
func EnsureSchema(ctx context.Context, q Querier) error {
	for i, stmt := range schemaStatements {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i, err)
		}
	}
	return nil
}

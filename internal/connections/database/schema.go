package database

import (
	"context"
	"fmt"

	"orderboard/internal/domain"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS dishes (
		id          UUID PRIMARY KEY,
		name        VARCHAR(255)   NOT NULL,
		price       DECIMAL(10, 2) NOT NULL DEFAULT 0,
		description TEXT           NOT NULL DEFAULT '',
		tags        TEXT           NOT NULL DEFAULT '',
		created_at  TIMESTAMPTZ    NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id            UUID PRIMARY KEY,
		customer_name VARCHAR(255) NOT NULL,
		destination   VARCHAR(255) NOT NULL DEFAULT 'N/A',
		status        VARCHAR(50)  NOT NULL DEFAULT 'open',
		created_at    TIMESTAMPTZ  NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS order_dishes (
		id       UUID PRIMARY KEY,
		order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		dish_id  UUID NOT NULL REFERENCES dishes(id) ON DELETE CASCADE,
		price    DECIMAL(10, 2) NOT NULL DEFAULT 0,
		position INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_order_dishes_order_id ON order_dishes(order_id)`,
}

// SQLite keeps prices and timestamps as TEXT so nothing passes through float.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS dishes (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		price       TEXT NOT NULL DEFAULT '0',
		description TEXT NOT NULL DEFAULT '',
		tags        TEXT NOT NULL DEFAULT '',
		created_at  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id            TEXT PRIMARY KEY,
		customer_name TEXT NOT NULL,
		destination   TEXT NOT NULL DEFAULT 'N/A',
		status        TEXT NOT NULL DEFAULT 'open',
		created_at    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS order_dishes (
		id       TEXT PRIMARY KEY,
		order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		dish_id  TEXT NOT NULL REFERENCES dishes(id) ON DELETE CASCADE,
		price    TEXT NOT NULL DEFAULT '0',
		position INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_order_dishes_order_id ON order_dishes(order_id)`,
}

// EnsureSchema creates the tables if they do not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	stmts := postgresSchema
	if db.Dialect.Name == DialectSQLite {
		stmts = sqliteSchema
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%w: apply schema: %w", domain.ErrStoreUnavailable, err)
		}
	}
	return nil
}

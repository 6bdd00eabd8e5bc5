package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"orderboard/internal/connections/database"
	"orderboard/internal/domain"
)

// Repository is the SQL Persistence Gateway for dishes, orders and order lines.
// A Repository built without a database fails every call with ErrConfiguration.
type Repository struct {
	db      *database.DB
	nowFunc func() time.Time
	newID   func() string
}

func New(db *database.DB) *Repository {
	return &Repository{
		db:      db,
		nowFunc: time.Now,
		newID:   func() string { return uuid.NewString() },
	}
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *Repository) conn() error {
	if r == nil || r.db == nil || r.db.DB == nil {
		return domain.ErrConfiguration
	}
	return nil
}

func (r *Repository) q(query string) string { return r.db.Dialect.Rebind(query) }

func (r *Repository) now() time.Time { return r.nowFunc().UTC() }

// Ping checks that the store answers.
func (r *Repository) Ping(ctx context.Context) error {
	if err := r.conn(); err != nil {
		return err
	}
	if err := r.db.PingContext(ctx); err != nil {
		return r.fail("ping", err)
	}
	return nil
}

// EnsureSchema creates the tables if they are missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if err := r.conn(); err != nil {
		return err
	}
	return r.db.EnsureSchema(ctx)
}

// fail classifies a driver error. Broken foreign keys mean a referenced row is gone.
func (r *Repository) fail(op string, err error) error {
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrNotFound, err)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// validID reports whether id could be a stored key. Malformed ids never match a row.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func notFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, domain.ErrNotFound)
}

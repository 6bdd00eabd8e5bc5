package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"orderboard/internal/config"
	"orderboard/internal/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// DB is a pool bound to the SQL dialect it was opened with.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// Open resolves the URL and opens the pool without checking connectivity.
func Open(url string, maxConns int) (*DB, error) {
	dialect, dsn, err := ParseURL(url)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", domain.ErrStoreUnavailable, dialect.Name, err)
	}
	if dialect.Name == DialectSQLite {
		// one writer; readers queue behind busy_timeout
		db.SetMaxOpenConns(1)
	} else if maxConns > 0 {
		db.SetMaxOpenConns(maxConns)
	}
	return &DB{DB: db, Dialect: dialect}, nil
}

// ConnectDB opens the pool and pings it until it answers or retries run out.
func ConnectDB(ctx context.Context, cfg config.DatabaseConfig) (*DB, error) {
	const pingTTL = 5 * time.Second

	retries := cfg.ConnectRetries
	if retries <= 0 {
		retries = 1
	}

	var lastErr error
	for i := 1; i <= retries; i++ {
		db, err := Open(cfg.URL, cfg.MaxConns)
		if err != nil {
			if strings.TrimSpace(cfg.URL) == "" {
				return nil, err
			}
			lastErr = err
		} else {
			pctx, cancel := context.WithTimeout(ctx, pingTTL)
			err = db.PingContext(pctx)
			cancel()
			if err == nil {
				return db, nil
			}
			_ = db.Close()
			lastErr = err
		}

		if i == retries {
			break
		}
		select {
		case <-time.After(cfg.RetryDelay):
		case <-ctx.Done():
			return nil, fmt.Errorf("db connect canceled: %w", ctx.Err())
		}
	}

	return nil, fmt.Errorf("%w: database unreachable after %d attempts: %w", domain.ErrStoreUnavailable, retries, lastErr)
}

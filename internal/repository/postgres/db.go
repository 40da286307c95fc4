package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
)

//go:embed schema.sql
var schema string

// Pool settings for a small service.
const (
	maxOpenConns    = 20
	maxIdleConns    = 5
	connMaxLifetime = 30 * time.Minute
	connMaxIdleTime = 5 * time.Minute
)

// ConnectOptions controls how Open waits for the database to come up.
type ConnectOptions struct {
	Attempts int
	Backoff  time.Duration
}

// DefaultConnectOptions retries for about ten seconds, enough for a database container starting alongside.
var DefaultConnectOptions = ConnectOptions{Attempts: 5, Backoff: 2 * time.Second}

// Open opens a lib/pq pool for url and pings it, retrying per opts.
func Open(ctx context.Context, url string, opts ConnectOptions, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	if err := ping(ctx, db, opts, logger); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func ping(ctx context.Context, db *sql.DB, opts ConnectOptions, logger *slog.Logger) error {
	attempts := max(opts.Attempts, 1)
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		logger.WarnContext(ctx, "database ping failed, retrying", "attempt", attempt, "of", attempts, "err", err)
		select {
		case <-ctx.Done():
			return fmt.Errorf("connect to postgres: %w", ctx.Err())
		case <-time.After(opts.Backoff):
		}
	}
	return fmt.Errorf("connect to postgres: %w", err)
}

// Migrate creates the tables and indexes the repositories rely on. It is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

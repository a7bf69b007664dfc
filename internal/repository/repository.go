// Package repository provides the database access layer. It is the
// single place where store errors are classified: not-found, duplicate
// key, malformed id, and deadline exceedance all become tagged errors
// here, never in handlers.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rosterd/rosterd/internal/apperr"
)

// defaultQueryTimeout bounds a single store operation when the caller
// does not configure one.
const defaultQueryTimeout = 5 * time.Second

// Repository provides database access methods.
type Repository struct {
	pool         *pgxpool.Pool
	queryTimeout time.Duration
}

// New creates a new Repository with a connection pool.
// Every operation on the repository runs under queryTimeout; pass zero
// to use the default.
func New(ctx context.Context, databaseURL string, queryTimeout time.Duration) (*Repository, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pool settings
	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if queryTimeout <= 0 {
		queryTimeout = defaultQueryTimeout
	}

	return &Repository{pool: pool, queryTimeout: queryTimeout}, nil
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (r *Repository) Close() {
	r.pool.Close()
}

// Pool returns the underlying connection pool.
// Use sparingly - prefer adding methods to Repository.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

// opContext derives a context bounded by the per-operation deadline.
func (r *Repository) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.queryTimeout)
}

// classifyTimeout turns deadline exceedance into a Timeout error so it
// never surfaces as an unclassified failure. Other errors pass through.
func classifyTimeout(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(apperr.KindTimeout, "Database operation timed out", err)
	}
	return err
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

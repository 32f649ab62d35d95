package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"food-trade-twin/internal/observability"
	"food-trade-twin/internal/storage"
)

// Pool wraps pgxpool.Pool for dependency injection.
type Pool struct {
	*pgxpool.Pool
}

// NewPool creates a new Postgres connection pool and verifies it with a ping.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}

	// Drop idle connections before managed load balancers do
	if config.MaxConnLifetime == 0 || config.MaxConnLifetime > 200*time.Second {
		config.MaxConnLifetime = 200 * time.Second
	}
	config.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: ping postgres: %v", storage.ErrUnavailable, err)
	}

	return &Pool{Pool: pool}, nil
}

// Close closes the connection pool.
func (p *Pool) Close() {
	p.Pool.Close()
}

// PostgreSQL error classes
const (
	pgClassConnection    = "08"    // connection_exception
	pgAdminShutdown      = "57P01" // admin_shutdown
	pgCannotConnectNow   = "57P03" // cannot_connect_now
	pgTooManyConnections = "53300" // too_many_connections
)

// isUnavailableError reports whether err means the database cannot be reached.
func isUnavailableError(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, pgClassConnection) ||
			pgErr.Code == pgAdminShutdown ||
			pgErr.Code == pgCannotConnectNow ||
			pgErr.Code == pgTooManyConnections
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	return errors.Is(err, context.DeadlineExceeded) || pgconn.SafeToRetry(err)
}

// isNotFoundError checks if error indicates no rows found.
func isNotFoundError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// wrapError classifies err for callers: connection failures become
// storage.ErrUnavailable, everything else keeps its cause.
func wrapError(op string, err error) error {
	if isUnavailableError(err) {
		return fmt.Errorf("%w: %s: %v", storage.ErrUnavailable, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// observe records query metrics for op started at start.
func observe(op string, start time.Time, err error) {
	observability.RecordDBQuery("postgres", op, time.Since(start).Seconds(), err)
}

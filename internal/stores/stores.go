// Package stores selects and opens the storage backends for a binary.
package stores

import (
	"context"
	"errors"
	"fmt"
	"log"

	"food-trade-twin/internal/fixtures"
	"food-trade-twin/internal/storage"
	chstore "food-trade-twin/internal/storage/clickhouse"
	"food-trade-twin/internal/storage/memory"
	"food-trade-twin/internal/storage/migrations"
	pgstore "food-trade-twin/internal/storage/postgres"
	"food-trade-twin/internal/storage/sqlite"
)

// ErrNoBackend is returned when no primary store is configured.
var ErrNoBackend = errors.New("no store configured: set --postgres-dsn, --sqlite-path or --use-memory")

// Config selects the backends. The primary store is the first of
// UseMemory, PostgresDSN, SQLitePath that is set. ClickhouseDSN adds an
// analytics mirror on top of any primary.
type Config struct {
	UseMemory     bool
	Fixtures      bool   // seed the memory store with the fixture graph
	FixtureSeed   uint64 // seed for the fixture graph
	PostgresDSN   string
	SQLitePath    string
	ClickhouseDSN string
}

// Stores holds the opened backends.
type Stores struct {
	Primary   storage.Store
	Analytics storage.TradeAnalytics // ClickHouse when configured, else Primary
	Mirrors   []storage.GraphWriter  // writers that receive every import
	Kind      string                 // "memory", "postgres" or "sqlite"

	closers []func()
}

// Close releases all backend connections.
func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// Open connects to the configured backends and applies migrations.
func Open(ctx context.Context, cfg Config, logger *log.Logger) (*Stores, error) {
	if logger == nil {
		logger = log.Default()
	}
	s := &Stores{}

	switch {
	case cfg.UseMemory:
		mem := memory.NewGraphStore()
		if cfg.Fixtures {
			if err := fixtures.Load(ctx, mem, cfg.FixtureSeed); err != nil {
				return nil, err
			}
			logger.Printf("Loaded fixture graph for years %v", fixtures.Years)
		}
		s.Primary, s.Kind = mem, "memory"

	case cfg.PostgresDSN != "":
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		s.closers = append(s.closers, pool.Close)
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			s.Close()
			return nil, fmt.Errorf("postgres migrations: %w", err)
		}
		s.Primary, s.Kind = pgstore.NewGraphStore(pool), "postgres"

	case cfg.SQLitePath != "":
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		s.closers = append(s.closers, func() { db.Close() })
		s.Primary, s.Kind = db, "sqlite"

	default:
		return nil, ErrNoBackend
	}
	s.Analytics = s.Primary
	logger.Printf("Using %s graph store", s.Kind)

	if cfg.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		s.closers = append(s.closers, func() { conn.Close() })

		analytics := chstore.NewAnalyticsStore(conn)
		s.Analytics = analytics
		s.Mirrors = append(s.Mirrors, analytics)
		logger.Println("Using ClickHouse for partner and stats analytics")
	}

	return s, nil
}

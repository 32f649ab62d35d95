// Package sqlite implements storage.Store on a single SQLite file using the
// pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"food-trade-twin/internal/domain"
	"food-trade-twin/internal/observability"
	"food-trade-twin/internal/storage"
	"food-trade-twin/internal/storage/migrations"
)

// GraphStore implements storage.Store using SQLite.
type GraphStore struct {
	db *sql.DB
}

// Compile-time interface check.
var _ storage.Store = (*GraphStore)(nil)

// Open opens (creating if needed) the database at path and applies migrations.
func Open(ctx context.Context, path string) (*GraphStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: ping sqlite: %v", storage.ErrUnavailable, err)
	}
	if err := migrations.RunSQLiteMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite: %w", err)
	}

	return &GraphStore{db: db}, nil
}

// Close closes the database.
func (s *GraphStore) Close() error {
	return s.db.Close()
}

const nodeColumns = `country, year, production, food_supply, net_trade, import_dependency`

// FetchSnapshot returns all node states of year and the flows between them,
// both in insertion order.
func (s *GraphStore) FetchSnapshot(ctx context.Context, year int) (nodes []*domain.NodeState, edges []*domain.TradeFlow, err error) {
	defer func(start time.Time) { observe("fetch_snapshot", start, err) }(time.Now())

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, nil, fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT `+nodeColumns+`
		FROM node_states
		WHERE year = ?
		ORDER BY rowid ASC
	`, year)
	if err != nil {
		return nil, nil, fmt.Errorf("query node states: %w", err)
	}
	if nodes, err = scanNodeStates(rows); err != nil {
		return nil, nil, fmt.Errorf("scan node states: %w", err)
	}

	rows, err = tx.QueryContext(ctx, `
		SELECT source, target, year, commodity, quantity
		FROM trade_flows
		WHERE year = ?
		ORDER BY rowid ASC
	`, year)
	if err != nil {
		return nil, nil, fmt.Errorf("query trade flows: %w", err)
	}
	if edges, err = scanTradeFlows(rows); err != nil {
		return nil, nil, fmt.Errorf("scan trade flows: %w", err)
	}

	return nodes, edges, nil
}

// ListCountries returns all country names, sorted ascending.
func (s *GraphStore) ListCountries(ctx context.Context) (names []string, err error) {
	defer func(start time.Time) { observe("list_countries", start, err) }(time.Now())

	rows, err := s.db.QueryContext(ctx, `SELECT name FROM countries ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list countries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan country row: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// CountryHistory returns a country's node states ordered by year ASC.
func (s *GraphStore) CountryHistory(ctx context.Context, country string) (states []*domain.NodeState, err error) {
	defer func(start time.Time) { observe("country_history", start, err) }(time.Now())

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+nodeColumns+`
		FROM node_states
		WHERE country = ?
		ORDER BY year ASC
	`, country)
	if err != nil {
		return nil, fmt.Errorf("query country history: %w", err)
	}
	if states, err = scanNodeStates(rows); err != nil {
		return nil, fmt.Errorf("scan country history: %w", err)
	}
	if len(states) == 0 {
		return nil, storage.ErrNotFound
	}
	return states, nil
}

// UpsertNodeStates creates missing countries and merges node states on (country, year).
func (s *GraphStore) UpsertNodeStates(ctx context.Context, states []*domain.NodeState) (err error) {
	if len(states) == 0 {
		return nil
	}
	for _, n := range states {
		if n == nil || n.Country == "" {
			return storage.ErrInvalidInput
		}
	}
	defer func(start time.Time) { observe("upsert_node_states", start, err) }(time.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin upsert tx: %w", err)
	}
	defer tx.Rollback()

	countryStmt, err := tx.PrepareContext(ctx, `INSERT INTO countries (name) VALUES (?) ON CONFLICT (name) DO NOTHING`)
	if err != nil {
		return fmt.Errorf("prepare country insert: %w", err)
	}
	defer countryStmt.Close()

	stateStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO node_states (`+nodeColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (country, year) DO UPDATE SET
			production = excluded.production,
			food_supply = excluded.food_supply,
			net_trade = excluded.net_trade,
			import_dependency = excluded.import_dependency
	`)
	if err != nil {
		return fmt.Errorf("prepare node state upsert: %w", err)
	}
	defer stateStmt.Close()

	for _, n := range states {
		if _, err := countryStmt.ExecContext(ctx, n.Country); err != nil {
			return fmt.Errorf("insert country %s: %w", n.Country, err)
		}
		if _, err := stateStmt.ExecContext(ctx, n.Country, n.Year, n.Production, n.FoodSupply, n.NetTrade, n.ImportDependency); err != nil {
			return fmt.Errorf("upsert node state %s/%d: %w", n.Country, n.Year, err)
		}
	}

	return tx.Commit()
}

// UpsertTradeFlows merges flows on their identity key, skipping flows whose
// endpoint node states are missing.
func (s *GraphStore) UpsertTradeFlows(ctx context.Context, flows []*domain.TradeFlow) (written int, err error) {
	if len(flows) == 0 {
		return 0, nil
	}
	for _, f := range flows {
		if f == nil || f.Source == "" || f.Target == "" || f.Commodity == "" {
			return 0, storage.ErrInvalidInput
		}
	}
	defer func(start time.Time) { observe("upsert_trade_flows", start, err) }(time.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin upsert tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trade_flows (source, target, commodity, year, quantity)
		SELECT ?1, ?2, ?3, ?4, ?5
		WHERE EXISTS (SELECT 1 FROM node_states WHERE country = ?1 AND year = ?4)
		  AND EXISTS (SELECT 1 FROM node_states WHERE country = ?2 AND year = ?4)
		ON CONFLICT (source, target, commodity, year) DO UPDATE SET
			quantity = excluded.quantity
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare trade flow upsert: %w", err)
	}
	defer stmt.Close()

	for _, f := range flows {
		res, err := stmt.ExecContext(ctx, f.Source, f.Target, f.Commodity, f.Year, f.Quantity)
		if err != nil {
			return 0, fmt.Errorf("upsert trade flow %s: %w", f.ID(), err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		written += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit trade flows: %w", err)
	}
	return written, nil
}

// Partners returns the top trading partners of country in year.
func (s *GraphStore) Partners(ctx context.Context, country string, year, limit int) (partners []*domain.PartnerSummary, err error) {
	defer func(start time.Time) { observe("partners", start, err) }(time.Now())

	rows, err := s.db.QueryContext(ctx, `
		SELECT source, target, year, commodity, quantity
		FROM trade_flows
		WHERE year = ? AND (source = ? OR target = ?)
		ORDER BY rowid ASC
	`, year, country, country)
	if err != nil {
		return nil, fmt.Errorf("query partner flows: %w", err)
	}
	flows, err := scanTradeFlows(rows)
	if err != nil {
		return nil, fmt.Errorf("scan partner flows: %w", err)
	}
	return storage.RankPartners(storage.PartnerCommodities(country, flows), limit), nil
}

// Stats summarizes all stored node states.
func (s *GraphStore) Stats(ctx context.Context) (stats *domain.GraphStats, err error) {
	defer func(start time.Time) { observe("stats", start, err) }(time.Now())

	stats = &domain.GraphStats{}
	err = s.db.QueryRowContext(ctx, `
		SELECT
			count(DISTINCT country),
			COALESCE(sum(production), 0),
			COALESCE(avg(food_supply), 0),
			COALESCE(max(year), 0)
		FROM node_states
	`).Scan(&stats.AreaCount, &stats.TotalProduction, &stats.AvgFoodSupply, &stats.LatestYear)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.GraphStats{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	return stats, nil
}

func scanNodeStates(rows *sql.Rows) ([]*domain.NodeState, error) {
	defer rows.Close()

	var states []*domain.NodeState
	for rows.Next() {
		var n domain.NodeState
		if err := rows.Scan(&n.Country, &n.Year, &n.Production, &n.FoodSupply, &n.NetTrade, &n.ImportDependency); err != nil {
			return nil, err
		}
		states = append(states, &n)
	}
	return states, rows.Err()
}

func scanTradeFlows(rows *sql.Rows) ([]*domain.TradeFlow, error) {
	defer rows.Close()

	var flows []*domain.TradeFlow
	for rows.Next() {
		var f domain.TradeFlow
		if err := rows.Scan(&f.Source, &f.Target, &f.Year, &f.Commodity, &f.Quantity); err != nil {
			return nil, err
		}
		flows = append(flows, &f)
	}
	return flows, rows.Err()
}

func observe(op string, start time.Time, err error) {
	observability.RecordDBQuery("sqlite", op, time.Since(start).Seconds(), err)
}

package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"food-trade-twin/internal/domain"
	"food-trade-twin/internal/storage"
)

// GraphStore implements storage.Store using PostgreSQL.
type GraphStore struct {
	pool *Pool
}

// NewGraphStore creates a new GraphStore.
func NewGraphStore(pool *Pool) *GraphStore {
	return &GraphStore{pool: pool}
}

// Compile-time interface check.
var _ storage.Store = (*GraphStore)(nil)

const nodeColumns = `country, year, production, food_supply, net_trade, import_dependency`

// FetchSnapshot returns all node states of year and the flows between them.
func (s *GraphStore) FetchSnapshot(ctx context.Context, year int) (nodes []*domain.NodeState, edges []*domain.TradeFlow, err error) {
	defer func(start time.Time) { observe("fetch_snapshot", start, err) }(time.Now())

	// One read-only transaction so nodes and edges come from the same state
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly, IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return nil, nil, wrapError("begin snapshot tx", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `
		SELECT `+nodeColumns+`
		FROM node_states
		WHERE year = $1
		ORDER BY country ASC
	`, year)
	if err != nil {
		return nil, nil, wrapError("query node states", err)
	}
	nodes, err = scanNodeStates(rows)
	if err != nil {
		return nil, nil, wrapError("scan node states", err)
	}

	rows, err = tx.Query(ctx, `
		SELECT f.source, f.target, f.year, f.commodity, f.quantity
		FROM trade_flows f
		JOIN node_states s ON s.country = f.source AND s.year = f.year
		JOIN node_states t ON t.country = f.target AND t.year = f.year
		WHERE f.year = $1
		ORDER BY f.source ASC, f.target ASC, f.commodity ASC
	`, year)
	if err != nil {
		return nil, nil, wrapError("query trade flows", err)
	}
	edges, err = scanTradeFlows(rows)
	if err != nil {
		return nil, nil, wrapError("scan trade flows", err)
	}

	return nodes, edges, nil
}

// ListCountries returns all country names, sorted ascending.
func (s *GraphStore) ListCountries(ctx context.Context) (names []string, err error) {
	defer func(start time.Time) { observe("list_countries", start, err) }(time.Now())

	rows, err := s.pool.Query(ctx, `SELECT name FROM countries ORDER BY name ASC`)
	if err != nil {
		return nil, wrapError("list countries", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, wrapError("scan country row", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapError("iterate country rows", err)
	}
	return names, nil
}

// CountryHistory returns a country's node states ordered by year ASC.
func (s *GraphStore) CountryHistory(ctx context.Context, country string) (states []*domain.NodeState, err error) {
	defer func(start time.Time) { observe("country_history", start, err) }(time.Now())

	rows, err := s.pool.Query(ctx, `
		SELECT `+nodeColumns+`
		FROM node_states
		WHERE country = $1
		ORDER BY year ASC
	`, country)
	if err != nil {
		return nil, wrapError("query country history", err)
	}

	states, err = scanNodeStates(rows)
	if err != nil {
		return nil, wrapError("scan country history", err)
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

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return wrapError("begin upsert tx", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, n := range states {
		batch.Queue(`INSERT INTO countries (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, n.Country)
		batch.Queue(`
			INSERT INTO node_states (`+nodeColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (country, year) DO UPDATE SET
				production = EXCLUDED.production,
				food_supply = EXCLUDED.food_supply,
				net_trade = EXCLUDED.net_trade,
				import_dependency = EXCLUDED.import_dependency,
				updated_at = now()
		`, n.Country, n.Year, n.Production, n.FoodSupply, n.NetTrade, n.ImportDependency)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return wrapError("upsert node states", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapError("commit node states", err)
	}
	return nil
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

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, wrapError("begin upsert tx", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, f := range flows {
		batch.Queue(`
			INSERT INTO trade_flows (source, target, commodity, year, quantity)
			SELECT $1, $2, $3, $4, $5
			WHERE EXISTS (SELECT 1 FROM node_states WHERE country = $1 AND year = $4)
			  AND EXISTS (SELECT 1 FROM node_states WHERE country = $2 AND year = $4)
			ON CONFLICT (source, target, commodity, year) DO UPDATE SET
				quantity = EXCLUDED.quantity,
				updated_at = now()
		`, f.Source, f.Target, f.Commodity, f.Year, f.Quantity)
	}

	br := tx.SendBatch(ctx, batch)
	for range flows {
		tag, err := br.Exec()
		if err != nil {
			br.Close()
			return 0, wrapError("upsert trade flow", err)
		}
		written += int(tag.RowsAffected())
	}
	if err := br.Close(); err != nil {
		return 0, wrapError("close trade flow batch", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, wrapError("commit trade flows", err)
	}
	return written, nil
}

// Partners returns the top trading partners of country in year.
func (s *GraphStore) Partners(ctx context.Context, country string, year, limit int) (partners []*domain.PartnerSummary, err error) {
	defer func(start time.Time) { observe("partners", start, err) }(time.Now())

	rows, err := s.pool.Query(ctx, `
		SELECT source, target, year, commodity, quantity
		FROM trade_flows
		WHERE year = $1 AND (source = $2 OR target = $2)
		ORDER BY source ASC, target ASC, commodity ASC
	`, year, country)
	if err != nil {
		return nil, wrapError("query partner flows", err)
	}

	flows, err := scanTradeFlows(rows)
	if err != nil {
		return nil, wrapError("scan partner flows", err)
	}
	return storage.RankPartners(storage.PartnerCommodities(country, flows), limit), nil
}

// Stats summarizes all stored node states.
func (s *GraphStore) Stats(ctx context.Context) (stats *domain.GraphStats, err error) {
	defer func(start time.Time) { observe("stats", start, err) }(time.Now())

	stats = &domain.GraphStats{}
	err = s.pool.QueryRow(ctx, `
		SELECT
			count(DISTINCT country),
			COALESCE(sum(production), 0),
			COALESCE(avg(food_supply), 0),
			COALESCE(max(year), 0)
		FROM node_states
	`).Scan(&stats.AreaCount, &stats.TotalProduction, &stats.AvgFoodSupply, &stats.LatestYear)
	if err != nil {
		if isNotFoundError(err) {
			return &domain.GraphStats{}, nil
		}
		return nil, wrapError("query stats", err)
	}
	return stats, nil
}

// scanNodeStates scans and closes rows of nodeColumns.
func scanNodeStates(rows pgx.Rows) ([]*domain.NodeState, error) {
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

// scanTradeFlows scans and closes rows of (source, target, year, commodity, quantity).
func scanTradeFlows(rows pgx.Rows) ([]*domain.TradeFlow, error) {
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

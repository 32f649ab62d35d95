package clickhouse

import (
	"context"
	"fmt"
	"time"

	"food-trade-twin/internal/domain"
	"food-trade-twin/internal/storage"
)

// AnalyticsStore mirrors node states and trade flows into ClickHouse and
// answers partner and summary queries from the mirror.
type AnalyticsStore struct {
	conn *Conn
}

// NewAnalyticsStore creates a new AnalyticsStore.
func NewAnalyticsStore(conn *Conn) *AnalyticsStore {
	return &AnalyticsStore{conn: conn}
}

// Compile-time interface checks.
var (
	_ storage.TradeAnalytics = (*AnalyticsStore)(nil)
	_ storage.GraphWriter    = (*AnalyticsStore)(nil)
)

// UpsertNodeStates appends node states. ReplacingMergeTree keeps the latest
// row per (country, year); reads use FINAL.
func (s *AnalyticsStore) UpsertNodeStates(ctx context.Context, states []*domain.NodeState) (err error) {
	if len(states) == 0 {
		return nil
	}
	for _, n := range states {
		if n == nil || n.Country == "" {
			return storage.ErrInvalidInput
		}
	}
	defer func(start time.Time) { observe("upsert_node_states", start, err) }(time.Now())

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO node_states (
			country, year, production, food_supply, net_trade, import_dependency
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, n := range states {
		err = batch.Append(
			n.Country, uint16(n.Year), n.Production,
			n.FoodSupply, n.NetTrade, n.ImportDependency,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// UpsertTradeFlows appends flows whose endpoint node states exist.
func (s *AnalyticsStore) UpsertTradeFlows(ctx context.Context, flows []*domain.TradeFlow) (written int, err error) {
	if len(flows) == 0 {
		return 0, nil
	}
	for _, f := range flows {
		if f == nil || f.Source == "" || f.Target == "" || f.Commodity == "" {
			return 0, storage.ErrInvalidInput
		}
	}
	defer func(start time.Time) { observe("upsert_trade_flows", start, err) }(time.Now())

	known, err := s.knownNodes(ctx, flows)
	if err != nil {
		return 0, err
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO trade_flows (source, target, commodity, year, quantity)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare batch: %w", err)
	}

	for _, f := range flows {
		if !known[nodeKey{f.Source, f.Year}] || !known[nodeKey{f.Target, f.Year}] {
			continue
		}
		if err := batch.Append(f.Source, f.Target, f.Commodity, uint16(f.Year), f.Quantity); err != nil {
			return 0, fmt.Errorf("append to batch: %w", err)
		}
		written++
	}

	if written == 0 {
		return 0, batch.Abort()
	}
	if err := batch.Send(); err != nil {
		return 0, fmt.Errorf("send batch: %w", err)
	}
	return written, nil
}

type nodeKey struct {
	country string
	year    int
}

// knownNodes returns which (country, year) pairs referenced by flows are stored.
func (s *AnalyticsStore) knownNodes(ctx context.Context, flows []*domain.TradeFlow) (map[nodeKey]bool, error) {
	yearSet := make(map[uint16]struct{})
	for _, f := range flows {
		yearSet[uint16(f.Year)] = struct{}{}
	}
	years := make([]uint16, 0, len(yearSet))
	for y := range yearSet {
		years = append(years, y)
	}

	rows, err := s.conn.Query(ctx, `
		SELECT DISTINCT country, year
		FROM node_states FINAL
		WHERE year IN (?)
	`, years)
	if err != nil {
		return nil, fmt.Errorf("query known nodes: %w", err)
	}
	defer rows.Close()

	known := make(map[nodeKey]bool)
	for rows.Next() {
		var country string
		var year uint16
		if err := rows.Scan(&country, &year); err != nil {
			return nil, fmt.Errorf("scan known node: %w", err)
		}
		known[nodeKey{country, int(year)}] = true
	}
	return known, rows.Err()
}

// Partners aggregates per-partner, per-commodity volumes in ClickHouse and
// ranks them with storage.RankPartners.
func (s *AnalyticsStore) Partners(ctx context.Context, country string, year, limit int) (partners []*domain.PartnerSummary, err error) {
	defer func(start time.Time) { observe("partners", start, err) }(time.Now())

	rows, err := s.conn.Query(ctx, `
		SELECT
			if(source = ?, target, source) AS partner,
			commodity,
			sumIf(quantity, source = ?) AS exported,
			sumIf(quantity, target = ?) AS imported
		FROM trade_flows FINAL
		WHERE year = ? AND (source = ? OR target = ?) AND source != target
		GROUP BY partner, commodity
		ORDER BY partner ASC, commodity ASC
	`, country, country, country, uint16(year), country, country)
	if err != nil {
		return nil, fmt.Errorf("query partners: %w", err)
	}
	defer rows.Close()

	var agg []storage.PartnerCommodity
	for rows.Next() {
		var pc storage.PartnerCommodity
		if err := rows.Scan(&pc.Partner, &pc.Commodity, &pc.ExportQuantity, &pc.ImportQuantity); err != nil {
			return nil, fmt.Errorf("scan partner row: %w", err)
		}
		agg = append(agg, pc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate partner rows: %w", err)
	}

	return storage.RankPartners(agg, limit), nil
}

// Stats summarizes the mirrored node states.
func (s *AnalyticsStore) Stats(ctx context.Context) (stats *domain.GraphStats, err error) {
	defer func(start time.Time) { observe("stats", start, err) }(time.Now())

	var (
		areas      uint64
		production float64
		supply     float64
		latest     uint16
		rowCount   uint64
	)
	row := s.conn.QueryRow(ctx, `
		SELECT
			uniqExact(country),
			sum(production),
			avg(food_supply),
			max(year),
			count()
		FROM node_states FINAL
	`)
	if err := row.Scan(&areas, &production, &supply, &latest, &rowCount); err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}

	// avg over zero rows is nan
	if rowCount == 0 {
		return &domain.GraphStats{}, nil
	}
	return &domain.GraphStats{
		AreaCount:       int(areas),
		TotalProduction: production,
		AvgFoodSupply:   supply,
		LatestYear:      int(latest),
	}, nil
}

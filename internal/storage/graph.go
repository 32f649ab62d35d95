package storage

import (
	"context"

	"food-trade-twin/internal/domain"
)

// SnapshotFetcher reads one year's graph. It is the only capability the
// propagation engine needs from a store.
type SnapshotFetcher interface {
	// FetchSnapshot returns all node states of year and all trade flows whose
	// endpoints are both in year. Results are deterministic for the same data.
	FetchSnapshot(ctx context.Context, year int) ([]*domain.NodeState, []*domain.TradeFlow, error)
}

// GraphStore provides read access to the stored trade graph.
type GraphStore interface {
	SnapshotFetcher

	// ListCountries returns all country names, sorted ascending.
	ListCountries(ctx context.Context) ([]string, error)

	// CountryHistory returns a country's node states ordered by year ASC.
	// Returns ErrNotFound if the country has no states.
	CountryHistory(ctx context.Context, country string) ([]*domain.NodeState, error)
}

// GraphWriter loads ETL output into a store.
type GraphWriter interface {
	// UpsertNodeStates creates missing countries and merges node states on
	// (country, year), overwriting attribute values.
	UpsertNodeStates(ctx context.Context, states []*domain.NodeState) error

	// UpsertTradeFlows merges flows on (source, target, commodity, year).
	// Flows whose endpoint node states do not exist are skipped.
	// Returns the number of flows written.
	UpsertTradeFlows(ctx context.Context, flows []*domain.TradeFlow) (int, error)
}

// TradeAnalytics answers aggregate queries over the stored graph.
type TradeAnalytics interface {
	// Partners returns the top trading partners of country in year,
	// ordered by total volume DESC. limit <= 0 means DefaultPartnerLimit.
	Partners(ctx context.Context, country string, year, limit int) ([]*domain.PartnerSummary, error)

	// Stats summarizes all stored node states. Returns zero values on an empty store.
	Stats(ctx context.Context) (*domain.GraphStats, error)
}

// Store is a complete backend: reads, writes and analytics.
type Store interface {
	GraphStore
	GraphWriter
	TradeAnalytics
}

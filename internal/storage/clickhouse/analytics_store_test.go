package clickhouse_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-trade-twin/internal/domain"
	"food-trade-twin/internal/storage"
	chstore "food-trade-twin/internal/storage/clickhouse"
)

func seedAnalytics(t *testing.T, store *chstore.AnalyticsStore) {
	t.Helper()
	ctx := context.Background()

	err := store.UpsertNodeStates(ctx, []*domain.NodeState{
		{Country: "Brazil", Year: 2021, Production: 1000, FoodSupply: 3200},
		{Country: "China", Year: 2021, Production: 5000, FoodSupply: 3100},
		{Country: "Egypt", Year: 2021, Production: 200, FoodSupply: 3300},
		{Country: "Brazil", Year: 2020, Production: 900, FoodSupply: 3150},
	})
	require.NoError(t, err)

	n, err := store.UpsertTradeFlows(ctx, []*domain.TradeFlow{
		{Source: "Brazil", Target: "China", Year: 2021, Commodity: "Soybeans", Quantity: 80},
		{Source: "Brazil", Target: "China", Year: 2021, Commodity: "Maize", Quantity: 20},
		{Source: "China", Target: "Brazil", Year: 2021, Commodity: "Rice", Quantity: 5},
		{Source: "Egypt", Target: "Brazil", Year: 2021, Commodity: "Wheat", Quantity: 30},
		{Source: "Brazil", Target: "Atlantis", Year: 2021, Commodity: "Wheat", Quantity: 99},
	})
	require.NoError(t, err)
	assert.Equal(t, 4, n, "flow to unknown node should be skipped")
}

func TestAnalyticsStore_Partners(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := chstore.NewAnalyticsStore(conn)
	seedAnalytics(t, store)

	partners, err := store.Partners(context.Background(), "Brazil", 2021, 0)
	require.NoError(t, err)
	require.Len(t, partners, 2)

	china := partners[0]
	assert.Equal(t, "China", china.Partner)
	assert.InDelta(t, 105, china.Quantity, 1e-9)
	assert.Equal(t, "Soybeans", china.PrimaryCommodity)
	assert.Equal(t, domain.FlowExport, china.Type)
	assert.InDelta(t, 100, china.TotalExports, 1e-9)
	assert.InDelta(t, 5, china.TotalImports, 1e-9)
	require.Len(t, china.Commodities, 3)

	egypt := partners[1]
	assert.Equal(t, "Egypt", egypt.Partner)
	assert.Equal(t, domain.FlowImport, egypt.Type)
	assert.Equal(t, "Wheat", egypt.PrimaryCommodity)
}

func TestAnalyticsStore_PartnersLimitAndEmpty(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := chstore.NewAnalyticsStore(conn)
	seedAnalytics(t, store)
	ctx := context.Background()

	partners, err := store.Partners(ctx, "Brazil", 2021, 1)
	require.NoError(t, err)
	require.Len(t, partners, 1)
	assert.Equal(t, "China", partners[0].Partner)

	partners, err = store.Partners(ctx, "Brazil", 1999, 10)
	require.NoError(t, err)
	assert.Empty(t, partners)
}

func TestAnalyticsStore_ReplacingUpsert(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := chstore.NewAnalyticsStore(conn)
	seedAnalytics(t, store)
	ctx := context.Background()

	_, err := store.UpsertTradeFlows(ctx, []*domain.TradeFlow{
		{Source: "Egypt", Target: "Brazil", Year: 2021, Commodity: "Wheat", Quantity: 300},
	})
	require.NoError(t, err)

	partners, err := store.Partners(ctx, "Brazil", 2021, 0)
	require.NoError(t, err)
	require.NotEmpty(t, partners)
	assert.Equal(t, "Egypt", partners[0].Partner)
	assert.InDelta(t, 300, partners[0].Quantity, 1e-9)
}

func TestAnalyticsStore_Stats(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := chstore.NewAnalyticsStore(conn)
	ctx := context.Background()

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &domain.GraphStats{}, stats)

	seedAnalytics(t, store)

	stats, err = store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.AreaCount)
	assert.InDelta(t, 7100, stats.TotalProduction, 1e-9)
	assert.InDelta(t, 3187.5, stats.AvgFoodSupply, 1e-9)
	assert.Equal(t, 2021, stats.LatestYear)
}

func TestAnalyticsStore_InvalidInput(t *testing.T) {
	store := chstore.NewAnalyticsStore(nil)
	ctx := context.Background()

	err := store.UpsertNodeStates(ctx, []*domain.NodeState{{Year: 2021}})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	_, err = store.UpsertTradeFlows(ctx, []*domain.TradeFlow{{Source: "A", Year: 2021}})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	n, err := store.UpsertTradeFlows(ctx, nil)
	assert.NoError(t, err)
	assert.Zero(t, n)
}

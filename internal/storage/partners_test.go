package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-trade-twin/internal/domain"
)

func TestPartnerCommodities_Directions(t *testing.T) {
	flows := []*domain.TradeFlow{
		{Source: "India", Target: "Egypt", Commodity: "Rice", Quantity: 10},
		{Source: "Egypt", Target: "India", Commodity: "Rice", Quantity: 4},
		{Source: "India", Target: "Egypt", Commodity: "Wheat", Quantity: 3},
		{Source: "Brazil", Target: "Egypt", Commodity: "Maize", Quantity: 99}, // unrelated
		{Source: "India", Target: "India", Commodity: "Rice", Quantity: 50},   // self-loop
	}

	rows := PartnerCommodities("India", flows)
	require.Len(t, rows, 2)

	assert.Equal(t, PartnerCommodity{Partner: "Egypt", Commodity: "Rice", ExportQuantity: 10, ImportQuantity: 4}, rows[0])
	assert.Equal(t, PartnerCommodity{Partner: "Egypt", Commodity: "Wheat", ExportQuantity: 3}, rows[1])
}

func TestRankPartners_OrderingAndType(t *testing.T) {
	rows := []PartnerCommodity{
		{Partner: "Egypt", Commodity: "Rice", ExportQuantity: 10, ImportQuantity: 4},
		{Partner: "Egypt", Commodity: "Wheat", ExportQuantity: 30},
		{Partner: "Brazil", Commodity: "Soybeans", ImportQuantity: 100},
		{Partner: "Kenya", Commodity: "Tea", ImportQuantity: 1},
	}

	got := RankPartners(rows, 0)
	require.Len(t, got, 3)

	assert.Equal(t, "Brazil", got[0].Partner)
	assert.Equal(t, domain.FlowImport, got[0].Type)
	assert.InDelta(t, 100, got[0].Quantity, 1e-9)

	egypt := got[1]
	assert.Equal(t, "Egypt", egypt.Partner)
	assert.Equal(t, "Wheat", egypt.PrimaryCommodity)
	assert.Equal(t, domain.FlowExport, egypt.Type)
	assert.InDelta(t, 44, egypt.Quantity, 1e-9)
	assert.InDelta(t, 40, egypt.TotalExports, 1e-9)
	assert.InDelta(t, 4, egypt.TotalImports, 1e-9)
	require.Len(t, egypt.Commodities, 2)
	assert.Equal(t, "Wheat", egypt.Commodities[0].Commodity)
	assert.InDelta(t, 14, egypt.Commodities[1].TotalQuantity, 1e-9)

	assert.Equal(t, "Kenya", got[2].Partner)
}

func TestRankPartners_Limit(t *testing.T) {
	var rows []PartnerCommodity
	for _, p := range []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L"} {
		rows = append(rows, PartnerCommodity{Partner: p, Commodity: "Rice", ExportQuantity: 1})
	}

	assert.Len(t, RankPartners(rows, 0), DefaultPartnerLimit)
	assert.Len(t, RankPartners(rows, 3), 3)
	// Ties break by partner name
	assert.Equal(t, "A", RankPartners(rows, 1)[0].Partner)
}

func TestComputeStats(t *testing.T) {
	assert.Equal(t, &domain.GraphStats{}, ComputeStats(nil))

	stats := ComputeStats([]*domain.NodeState{
		{Country: "India", Year: 2020, Production: 100, FoodSupply: 2000},
		{Country: "India", Year: 2021, Production: 110, FoodSupply: 2100},
		{Country: "Egypt", Year: 2019, Production: 50, FoodSupply: 3000},
	})
	assert.Equal(t, 2, stats.AreaCount)
	assert.InDelta(t, 260, stats.TotalProduction, 1e-9)
	assert.InDelta(t, 2366.6666666, stats.AvgFoodSupply, 1e-6)
	assert.Equal(t, 2021, stats.LatestYear)
}

// Package fixtures generates a small deterministic trade graph for demos and tests.
package fixtures

import (
	"context"
	"fmt"
	"math/rand/v2"

	"food-trade-twin/internal/domain"
	"food-trade-twin/internal/storage"
)

// Years covered by the fixture graph.
var Years = []int{2018, 2019, 2020, 2021}

type countryProfile struct {
	name             string
	production       float64 // million tonnes
	foodSupply       float64 // kcal/capita/day
	importDependency float64
}

var profiles = []countryProfile{
	{"India", 310.5, 2400, 0.15},
	{"United States", 420.3, 3500, 0.05},
	{"Brazil", 245.8, 3100, 0.08},
	{"Egypt", 25.4, 3200, 0.62},
	{"China", 615.2, 3000, 0.25},
}

type tradePattern struct {
	exporter, importer, commodity string
	quantity                      float64 // million tonnes
}

var patterns = []tradePattern{
	{"United States", "Egypt", "Wheat", 6.2},
	{"United States", "China", "Soybeans", 12.5},
	{"Brazil", "China", "Soybeans", 14.5},
	{"Brazil", "Egypt", "Maize", 3.1},
	{"India", "Egypt", "Rice", 2.1},
	{"United States", "India", "Maize", 3.4},
	{"China", "India", "Processed", 1.8},
	{"United States", "Brazil", "Wheat", 1.2},
	{"Brazil", "United States", "Sugar", 2.3},
	{"India", "United States", "Rice", 1.5},
	{"China", "Brazil", "Wheat", 2.0},
	{"Egypt", "India", "Cotton", 0.5},
}

// Graph returns the fixture node states and trade flows for all Years.
// The same seed always yields the same graph.
func Graph(seed uint64) ([]*domain.NodeState, []*domain.TradeFlow) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	vary := func(lo, hi float64) float64 { return 1 + lo + rng.Float64()*(hi-lo) }

	var flows []*domain.TradeFlow
	exports := make(map[string]float64)
	imports := make(map[string]float64)
	for _, year := range Years {
		for _, p := range patterns {
			qty := p.quantity * vary(-0.15, 0.15) * 1e6
			flows = append(flows, &domain.TradeFlow{
				Source:    p.exporter,
				Target:    p.importer,
				Year:      year,
				Commodity: p.commodity,
				Quantity:  qty,
			})
			exports[key(p.exporter, year)] += qty
			imports[key(p.importer, year)] += qty
		}
	}

	var states []*domain.NodeState
	for _, c := range profiles {
		for _, year := range Years {
			k := key(c.name, year)
			states = append(states, &domain.NodeState{
				Country:          c.name,
				Year:             year,
				Production:       c.production * vary(-0.05, 0.10) * 1e6,
				FoodSupply:       c.foodSupply * vary(-0.02, 0.03),
				NetTrade:         exports[k] - imports[k],
				ImportDependency: c.importDependency,
			})
		}
	}

	return states, flows
}

// Load writes the fixture graph into w.
func Load(ctx context.Context, w storage.GraphWriter, seed uint64) error {
	states, flows := Graph(seed)
	if err := w.UpsertNodeStates(ctx, states); err != nil {
		return fmt.Errorf("load fixture node states: %w", err)
	}
	if _, err := w.UpsertTradeFlows(ctx, flows); err != nil {
		return fmt.Errorf("load fixture trade flows: %w", err)
	}
	return nil
}

func key(country string, year int) string {
	return fmt.Sprintf("%s/%d", country, year)
}

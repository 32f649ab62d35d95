package scenario

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food-trade-twin/internal/domain"
)

const doc = `
scenarios:
  - name: us-drought
    area: United States
    year: 2021
    commodity: Wheat
    production_change: -30
    climate_stress: 0.4
  - area: India
    year: 2020
    production_change: 15
    policy_restriction: true
`

func TestParse(t *testing.T) {
	f, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, f.Scenarios, 2)

	first := f.Scenarios[0]
	assert.Equal(t, "us-drought", first.Name)
	assert.Equal(t, domain.Perturbation{
		Area:                "United States",
		Year:                2021,
		Commodity:           "Wheat",
		ProductionChangePct: -30,
		ClimateStress:       0.4,
	}, first.Perturbation())

	second := f.Scenarios[1]
	assert.Equal(t, "scenario-2", second.Name)
	assert.Equal(t, domain.AllCommodities, second.Commodity)
	assert.True(t, second.Perturbation().PolicyRestriction)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"no scenarios", "scenarios: []\n"},
		{"missing area", "scenarios:\n  - year: 2021\n"},
		{"missing year", "scenarios:\n  - area: India\n"},
		{"unknown key", "scenarios:\n  - area: India\n    year: 2021\n    magnitude: 3\n"},
		{"duplicate name", "scenarios:\n  - {name: a, area: India, year: 2021}\n  - {name: a, area: Egypt, year: 2021}\n"},
		{"bad type", "scenarios:\n  - area: India\n    year: soon\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.True(t, errors.Is(err, ErrInvalidScenario), "got %v", err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, f.Scenarios, 2)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	baseline := &domain.SimulationResult{
		Nodes: []domain.NodeStateView{
			{ID: "A", Production: 100, OriginalProduction: 100, FoodSupply: 3000},
			{ID: "B", Production: 50, OriginalProduction: 50, FoodSupply: 2000},
			{ID: "C", Production: 10, OriginalProduction: 10, FoodSupply: 1000},
		},
	}
	result := &domain.SimulationResult{
		Nodes: []domain.NodeStateView{
			{ID: "A", Production: 80, OriginalProduction: 100, FoodSupply: 3000, IsAffected: true},
			{ID: "C", Production: 10, OriginalProduction: 10, FoodSupply: 995, IsAffected: true, ImpactSeverity: domain.SeverityMedium},
			{ID: "B", Production: 50, OriginalProduction: 50, FoodSupply: 1800, IsAffected: true, ImpactSeverity: domain.SeverityHigh},
		},
		Edges: []domain.TradeFlowView{
			{ID: "A-B-Total", Quantity: 8, OriginalQuantity: 10},
			{ID: "B-C-Total", Quantity: 5, OriginalQuantity: 5},
		},
	}

	s := Summarize(result, baseline)
	assert.Equal(t, 3, s.Affected)
	assert.Equal(t, 1, s.High)
	assert.Equal(t, 1, s.Medium)
	assert.Equal(t, 1, s.ChangedEdges)
	assert.InDelta(t, -20, s.ProductionDelta, 1e-9)
	assert.InDelta(t, -205, s.FoodSupplyDelta, 1e-9)
	assert.Equal(t, []string{"A", "B", "C"}, s.AffectedAreas)

	s = Summarize(result, nil)
	assert.Zero(t, s.FoodSupplyDelta)

	assert.Equal(t, Summary{}, Summarize(nil, nil))
}

package reporting

import (
	"sort"
	"time"

	"food-trade-twin/internal/domain"
	"food-trade-twin/internal/scenario"
)

// Run is one executed scenario.
type Run struct {
	Scenario scenario.Scenario
	Summary  scenario.Summary
	Result   *domain.SimulationResult
	Baseline *domain.SimulationResult // unmodified snapshot; nil leaves original food supply at 0
}

// Generator builds reports from scenario runs.
type Generator struct {
	store string
	now   func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a report generator for runs against the named store.
func NewGenerator(store string) *Generator {
	return &Generator{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate builds a report from runs.
func (g *Generator) Generate(runs []Run) *Report {
	r := &Report{
		GeneratedAt:   g.now(),
		Store:         g.store,
		ScenarioCount: len(runs),
	}

	for _, run := range runs {
		s, sum := run.Scenario, run.Summary
		commodity := s.Commodity
		if commodity == "" {
			commodity = domain.AllCommodities
		}
		r.Scenarios = append(r.Scenarios, ScenarioRow{
			Name:             s.Name,
			Area:             s.Area,
			Year:             s.Year,
			Commodity:        commodity,
			ProductionChange: s.ProductionChange,
			Affected:         sum.Affected,
			High:             sum.High,
			Medium:           sum.Medium,
			ChangedEdges:     sum.ChangedEdges,
			ProductionDelta:  sum.ProductionDelta,
			FoodSupplyDelta:  sum.FoodSupplyDelta,
		})
		r.Impacts = append(r.Impacts, impacts(s.Name, run.Result, run.Baseline)...)
	}
	return r
}

// impacts lists affected nodes, high before medium before unclassified,
// then by area.
func impacts(name string, result, baseline *domain.SimulationResult) []ImpactRow {
	if result == nil {
		return nil
	}

	var rows []ImpactRow
	for _, n := range result.Nodes {
		if !n.IsAffected {
			continue
		}
		row := ImpactRow{
			Scenario:           name,
			Area:               n.ID,
			Severity:           string(n.ImpactSeverity),
			OriginalProduction: n.OriginalProduction,
			Production:         n.Production,
			FoodSupply:         n.FoodSupply,
		}
		if baseline != nil {
			if b := baseline.Node(n.ID); b != nil {
				row.OriginalFoodSupply = b.FoodSupply
			}
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		ri, rj := severityRank(rows[i].Severity), severityRank(rows[j].Severity)
		if ri != rj {
			return ri < rj
		}
		return rows[i].Area < rows[j].Area
	})
	return rows
}

func severityRank(s string) int {
	switch domain.Severity(s) {
	case domain.SeverityHigh:
		return 0
	case domain.SeverityMedium:
		return 1
	default:
		return 2
	}
}

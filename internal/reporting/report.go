// Package reporting renders scenario run reports as Markdown and CSV.
package reporting

import "time"

// Report is a batch of scenario runs against one store.
type Report struct {
	// Metadata
	GeneratedAt   time.Time
	Store         string
	ScenarioCount int

	// One row per scenario, in run order
	Scenarios []ScenarioRow

	// Affected countries per scenario, sorted by scenario then severity and area
	Impacts []ImpactRow
}

// ScenarioRow is one scenario's input and summary.
type ScenarioRow struct {
	Name             string
	Area             string
	Year             int
	Commodity        string
	ProductionChange float64
	Affected         int
	High             int
	Medium           int
	ChangedEdges     int
	ProductionDelta  float64
	FoodSupplyDelta  float64
}

// ImpactRow is one affected country within a scenario.
type ImpactRow struct {
	Scenario           string
	Area               string
	Severity           string // high, medium or "" for the shocked country and expansions
	OriginalProduction float64
	Production         float64
	OriginalFoodSupply float64
	FoodSupply         float64
}

// FoodSupplyChangePct returns the relative food supply change in percent.
func (r ImpactRow) FoodSupplyChangePct() float64 {
	if r.OriginalFoodSupply == 0 {
		return 0
	}
	return (r.FoodSupply - r.OriginalFoodSupply) / r.OriginalFoodSupply * 100
}

package reporting

import (
	"strings"
	"testing"
	"time"

	"food-trade-twin/internal/domain"
	"food-trade-twin/internal/scenario"
)

func testRuns() []Run {
	baseline := &domain.SimulationResult{
		Nodes: []domain.NodeStateView{
			{ID: "India", Production: 300, FoodSupply: 2400, OriginalProduction: 300},
			{ID: "Egypt", Production: 25, FoodSupply: 3200, OriginalProduction: 25},
			{ID: "Korea, Republic of", Production: 10, FoodSupply: 20, OriginalProduction: 10},
		},
	}
	result := &domain.SimulationResult{
		Nodes: []domain.NodeStateView{
			{ID: "India", Production: 150, FoodSupply: 2400, OriginalProduction: 300, IsAffected: true},
			{ID: "Egypt", Production: 25, FoodSupply: 3199, OriginalProduction: 25, IsAffected: true, ImpactSeverity: domain.SeverityMedium},
			{ID: "Korea, Republic of", Production: 10, FoodSupply: 18, OriginalProduction: 10, IsAffected: true, ImpactSeverity: domain.SeverityHigh},
		},
		Edges: []domain.TradeFlowView{
			{ID: "India->Egypt:Rice", Source: "India", Target: "Egypt", Commodity: "Rice", Quantity: 1, OriginalQuantity: 2},
		},
	}
	s := scenario.Scenario{Name: "india-drought", Area: "India", Year: 2021, ProductionChange: -50}
	return []Run{{
		Scenario: s,
		Summary:  scenario.Summarize(result, baseline),
		Result:   result,
		Baseline: baseline,
	}}
}

func fixedClock() time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}

func TestGenerate(t *testing.T) {
	r := NewGenerator("sqlite").WithClock(fixedClock).Generate(testRuns())

	if r.ScenarioCount != 1 || len(r.Scenarios) != 1 {
		t.Fatalf("expected 1 scenario, got %d", len(r.Scenarios))
	}
	s := r.Scenarios[0]
	if s.Commodity != domain.AllCommodities {
		t.Errorf("expected default commodity %q, got %q", domain.AllCommodities, s.Commodity)
	}
	if s.Affected != 3 || s.High != 1 || s.Medium != 1 || s.ChangedEdges != 1 {
		t.Errorf("unexpected summary: %+v", s)
	}
	if s.ProductionDelta != -150 {
		t.Errorf("expected production delta -150, got %f", s.ProductionDelta)
	}

	if len(r.Impacts) != 3 {
		t.Fatalf("expected 3 impacts, got %d", len(r.Impacts))
	}
	order := []string{r.Impacts[0].Area, r.Impacts[1].Area, r.Impacts[2].Area}
	want := []string{"Korea, Republic of", "Egypt", "India"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected impact order %v, got %v", want, order)
		}
	}
	if got := r.Impacts[0].FoodSupplyChangePct(); got != -10 {
		t.Errorf("expected -10%% food supply, got %f", got)
	}
}

func TestGenerate_NilResult(t *testing.T) {
	r := NewGenerator("memory").Generate([]Run{{Scenario: scenario.Scenario{Name: "empty"}}})
	if len(r.Impacts) != 0 {
		t.Errorf("expected no impacts, got %d", len(r.Impacts))
	}
}

func TestFoodSupplyChangePct_ZeroBaseline(t *testing.T) {
	if got := (ImpactRow{FoodSupply: 5}).FoodSupplyChangePct(); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
}

func TestRenderMarkdown(t *testing.T) {
	r := NewGenerator("sqlite").WithClock(fixedClock).Generate(testRuns())
	md := RenderMarkdown(r)

	for _, want := range []string{
		"# Scenario Report",
		"Generated: 2024-01-01T00:00:00Z",
		"Store: sqlite | Scenarios: 1",
		"| india-drought | India | 2021 | Total | -50.00 | 3 | 1 | 1 | 1 |",
		"| india-drought | Korea, Republic of | high |",
		"| india-drought | India | - |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q\n%s", want, md)
		}
	}
}

func TestRenderMarkdown_Empty(t *testing.T) {
	md := RenderMarkdown(NewGenerator("memory").WithClock(fixedClock).Generate(nil))
	if !strings.Contains(md, "No scenarios run.") || !strings.Contains(md, "No countries affected.") {
		t.Errorf("expected empty sections, got:\n%s", md)
	}
}

func TestRenderCSV(t *testing.T) {
	out, err := RenderCSV(NewGenerator("sqlite").Generate(testRuns()))
	if err != nil {
		t.Fatalf("RenderCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "scenario,area,severity,") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	// Names with commas are quoted
	if !strings.HasPrefix(lines[1], `india-drought,"Korea, Republic of",high,`) {
		t.Errorf("unexpected first row: %s", lines[1])
	}
}

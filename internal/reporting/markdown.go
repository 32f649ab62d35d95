package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Scenario Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Store: %s | Scenarios: %d\n\n", r.Store, r.ScenarioCount))

	// Scenario summary
	sb.WriteString("## Scenarios\n\n")
	if len(r.Scenarios) > 0 {
		sb.WriteString("| Scenario | Area | Year | Commodity | Change% | Affected | High | Medium | Edges | Production Δ | Food Supply Δ |\n")
		sb.WriteString("|----------|------|------|-----------|---------|----------|------|--------|-------|--------------|---------------|\n")
		for _, s := range r.Scenarios {
			sb.WriteString(fmt.Sprintf("| %s | %s | %d | %s | %.2f | %d | %d | %d | %d | %.4f | %.4f |\n",
				s.Name, s.Area, s.Year, s.Commodity, s.ProductionChange,
				s.Affected, s.High, s.Medium, s.ChangedEdges, s.ProductionDelta, s.FoodSupplyDelta))
		}
	} else {
		sb.WriteString("No scenarios run.\n")
	}
	sb.WriteString("\n")

	// Impacts
	sb.WriteString("## Affected Countries\n\n")
	if len(r.Impacts) > 0 {
		sb.WriteString("| Scenario | Area | Severity | Production | Food Supply | Food Supply % |\n")
		sb.WriteString("|----------|------|----------|------------|-------------|---------------|\n")
		for _, i := range r.Impacts {
			severity := i.Severity
			if severity == "" {
				severity = "-"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %.4f → %.4f | %.4f → %.4f | %.2f |\n",
				i.Scenario, i.Area, severity,
				i.OriginalProduction, i.Production,
				i.OriginalFoodSupply, i.FoodSupply, i.FoodSupplyChangePct()))
		}
	} else {
		sb.WriteString("No countries affected.\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

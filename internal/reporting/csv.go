package reporting

import (
	"encoding/csv"
	"strconv"
	"strings"
)

// RenderCSV renders the affected-country rows as a CSV string.
func RenderCSV(r *Report) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	// Header
	if err := w.Write([]string{
		"scenario", "area", "severity",
		"original_production", "production",
		"original_food_supply", "food_supply", "food_supply_change_pct",
	}); err != nil {
		return "", err
	}

	// Rows
	for _, i := range r.Impacts {
		if err := w.Write([]string{
			i.Scenario,
			i.Area,
			i.Severity,
			formatFloat(i.OriginalProduction),
			formatFloat(i.Production),
			formatFloat(i.OriginalFoodSupply),
			formatFloat(i.FoodSupply),
			formatFloat(i.FoodSupplyChangePct()),
		}); err != nil {
			return "", err
		}
	}

	w.Flush()
	return sb.String(), w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

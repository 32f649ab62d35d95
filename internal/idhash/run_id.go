package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"

	"food-trade-twin/internal/domain"
)

// ComputeRunID computes a deterministic id for a perturbation using SHA256.
// Formula: SHA256(area|year|commodity|production_pct|import_pct|climate_stress|policy)
// Returns the first 16 hex characters. Identical inputs always share an id,
// so repeated what-if queries can be correlated in logs.
func ComputeRunID(p domain.Perturbation) string {
	data := fmt.Sprintf("%s|%d|%s|%s|%s|%s|%t",
		p.Area,
		p.Year,
		p.CommodityFilter(),
		formatFloat(p.ProductionChangePct),
		formatFloat(p.ImportChangePct),
		formatFloat(p.ClimateStress),
		p.PolicyRestriction,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])[:16]
}

// formatFloat renders f with the shortest exact representation.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

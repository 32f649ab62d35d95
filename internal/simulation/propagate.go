package simulation

import (
	"fmt"
	"math"

	"food-trade-twin/internal/domain"
	"food-trade-twin/internal/snapshot"
)

// Propagation coefficients.
const (
	// ContractionPassThrough is the share of lost trade that reaches a
	// partner's food supply.
	ContractionPassThrough = 0.5

	// ExpansionPassThrough is the share of added trade that reaches a
	// partner's food supply.
	ExpansionPassThrough = 0.3

	// HighSeverityRatio is the loss / food supply ratio above which a
	// partner is classified as high impact.
	HighSeverityRatio = 0.05
)

// propagate applies p to snap in place. It reports false when p.Area is not
// in the snapshot, in which case snap is left untouched.
func propagate(snap *snapshot.Snapshot, p domain.Perturbation) (bool, error) {
	target, ok := snap.Node(p.Area)
	if !ok {
		return false, nil
	}

	factor := p.Factor()
	oldProd := target.State.Production
	newProd := oldProd * factor

	target.OriginalProduction = oldProd
	target.State.Production = newProd
	target.Affected = true

	delta := newProd - oldProd
	switch {
	case delta < 0:
		return true, contract(snap, p.Area, p.CommodityFilter(), factor)
	case delta > 0:
		return true, expand(snap, p.Area, p.CommodityFilter(), factor)
	default:
		return true, nil
	}
}

// contract scales outgoing flows down and removes part of the lost volume
// from each importer's food supply. Nothing changes when the filtered
// exports total zero.
func contract(snap *snapshot.Snapshot, area, commodity string, factor float64) error {
	outgoing := snap.EdgesFrom(area, commodity)

	var totalExports float64
	for _, e := range outgoing {
		totalExports += e.Flow.Quantity
	}
	if totalExports <= 0 {
		return nil
	}

	for _, e := range outgoing {
		oldQty := e.Flow.Quantity
		newQty := oldQty * factor
		e.OriginalQuantity = oldQty
		e.Flow.Quantity = newQty

		partner, ok := snap.Node(e.Flow.Target)
		if !ok {
			return fmt.Errorf("edge %s: partner %q missing from snapshot", e.Flow.ID(), e.Flow.Target)
		}

		loss := oldQty - newQty
		partner.State.FoodSupply -= loss * ContractionPassThrough
		partner.Affected = true
		// Ratio uses the already reduced supply
		if loss/math.Max(1, partner.State.FoodSupply) > HighSeverityRatio {
			partner.Severity = domain.SeverityHigh
		} else {
			partner.Severity = domain.SeverityMedium
		}
	}
	return nil
}

// expand scales outgoing flows up and adds part of the gain to each
// importer's food supply. No severity is assigned.
func expand(snap *snapshot.Snapshot, area, commodity string, factor float64) error {
	for _, e := range snap.EdgesFrom(area, commodity) {
		e.OriginalQuantity = e.Flow.Quantity
		e.Flow.Quantity *= factor

		partner, ok := snap.Node(e.Flow.Target)
		if !ok {
			return fmt.Errorf("edge %s: partner %q missing from snapshot", e.Flow.ID(), e.Flow.Target)
		}

		partner.State.FoodSupply += e.Flow.Quantity * (factor - 1) * ExpansionPassThrough
		partner.Affected = true
	}
	return nil
}

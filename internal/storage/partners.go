package storage

import (
	"sort"

	"food-trade-twin/internal/domain"
)

// DefaultPartnerLimit is the number of partners returned when no limit is given.
const DefaultPartnerLimit = 10

// PartnerCommodity is the per-commodity volume between a country and one partner.
type PartnerCommodity struct {
	Partner        string
	Commodity      string
	ExportQuantity float64 // country -> partner
	ImportQuantity float64 // partner -> country
}

// PartnerCommodities folds the flows touching country into per-partner,
// per-commodity export and import sums. Self-loops and unrelated flows are ignored.
func PartnerCommodities(country string, flows []*domain.TradeFlow) []PartnerCommodity {
	type key struct{ partner, commodity string }
	sums := make(map[key]*PartnerCommodity)
	var order []key

	for _, f := range flows {
		var k key
		var export bool
		switch {
		case f.Source == country && f.Target != country:
			k, export = key{f.Target, f.Commodity}, true
		case f.Target == country && f.Source != country:
			k, export = key{f.Source, f.Commodity}, false
		default:
			continue
		}

		pc, ok := sums[k]
		if !ok {
			pc = &PartnerCommodity{Partner: k.partner, Commodity: k.commodity}
			sums[k] = pc
			order = append(order, k)
		}
		if export {
			pc.ExportQuantity += f.Quantity
		} else {
			pc.ImportQuantity += f.Quantity
		}
	}

	out := make([]PartnerCommodity, 0, len(order))
	for _, k := range order {
		out = append(out, *sums[k])
	}
	return out
}

// RankPartners groups rows by partner and returns the top partners by total
// volume. Within a partner, commodities are ordered by total volume DESC and
// the first one is the primary commodity. Type is Export when exports exceed
// imports, Import otherwise.
func RankPartners(rows []PartnerCommodity, limit int) []*domain.PartnerSummary {
	if limit <= 0 {
		limit = DefaultPartnerLimit
	}

	byPartner := make(map[string]*domain.PartnerSummary)
	for _, r := range rows {
		p, ok := byPartner[r.Partner]
		if !ok {
			p = &domain.PartnerSummary{Partner: r.Partner}
			byPartner[r.Partner] = p
		}
		total := r.ExportQuantity + r.ImportQuantity
		p.Commodities = append(p.Commodities, domain.CommodityDetail{
			Commodity:      r.Commodity,
			ExportQuantity: r.ExportQuantity,
			ImportQuantity: r.ImportQuantity,
			TotalQuantity:  total,
		})
		p.Quantity += total
		p.TotalExports += r.ExportQuantity
		p.TotalImports += r.ImportQuantity
	}

	out := make([]*domain.PartnerSummary, 0, len(byPartner))
	for _, p := range byPartner {
		sort.SliceStable(p.Commodities, func(i, j int) bool {
			a, b := p.Commodities[i], p.Commodities[j]
			if a.TotalQuantity != b.TotalQuantity {
				return a.TotalQuantity > b.TotalQuantity
			}
			return a.Commodity < b.Commodity
		})
		if len(p.Commodities) > 0 {
			p.PrimaryCommodity = p.Commodities[0].Commodity
		}
		p.Type = domain.FlowImport
		if p.TotalExports > p.TotalImports {
			p.Type = domain.FlowExport
		}
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].Partner < out[j].Partner
	})

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ComputeStats summarizes node states.
func ComputeStats(states []*domain.NodeState) *domain.GraphStats {
	stats := &domain.GraphStats{}
	if len(states) == 0 {
		return stats
	}

	countries := make(map[string]struct{})
	var supply float64
	for _, s := range states {
		countries[s.Country] = struct{}{}
		stats.TotalProduction += s.Production
		supply += s.FoodSupply
		if s.Year > stats.LatestYear {
			stats.LatestYear = s.Year
		}
	}
	stats.AreaCount = len(countries)
	stats.AvgFoodSupply = supply / float64(len(states))
	return stats
}

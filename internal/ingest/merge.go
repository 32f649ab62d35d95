package ingest

import "food-trade-twin/internal/domain"

// DedupNodes keeps the first row per (country, year) and drops aggregate
// regions. Order of first appearance is preserved.
func DedupNodes(rows []*domain.NodeState) (kept []*domain.NodeState, duplicates, aggregates int) {
	type key struct {
		country string
		year    int
	}
	seen := make(map[key]bool, len(rows))

	for _, n := range rows {
		if IsAggregate(n.Country) {
			aggregates++
			continue
		}
		k := key{n.Country, n.Year}
		if seen[k] {
			duplicates++
			continue
		}
		seen[k] = true
		kept = append(kept, n)
	}
	return kept, duplicates, aggregates
}

// MergeEdges drops self-loops and merges rows sharing an identity key by
// averaging their quantities, which collapses double reporting by both
// trading partners. Order of first appearance is preserved.
func MergeEdges(rows []*domain.TradeFlow) (merged []*domain.TradeFlow, duplicates, selfLoops int) {
	type acc struct {
		flow  *domain.TradeFlow
		sum   float64
		count int
	}
	byKey := make(map[domain.TradeFlowKey]*acc, len(rows))
	var order []domain.TradeFlowKey

	for _, f := range rows {
		if f.Source == f.Target {
			selfLoops++
			continue
		}
		k := f.Key()
		a, ok := byKey[k]
		if !ok {
			flowCopy := *f
			a = &acc{flow: &flowCopy}
			byKey[k] = a
			order = append(order, k)
		} else {
			duplicates++
		}
		a.sum += f.Quantity
		a.count++
	}

	merged = make([]*domain.TradeFlow, 0, len(order))
	for _, k := range order {
		a := byKey[k]
		a.flow.Quantity = a.sum / float64(a.count)
		merged = append(merged, a.flow)
	}
	return merged, duplicates, selfLoops
}

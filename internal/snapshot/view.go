package snapshot

import "food-trade-twin/internal/domain"

// View renders the snapshot as a SimulationResult.
func (s *Snapshot) View() *domain.SimulationResult {
	res := &domain.SimulationResult{
		Nodes: make([]domain.NodeStateView, 0, len(s.order)),
		Edges: make([]domain.TradeFlowView, 0, len(s.edges)),
	}

	for _, name := range s.order {
		n := s.nodes[name]
		res.Nodes = append(res.Nodes, domain.NodeStateView{
			ID:                 name,
			Label:              name,
			Production:         n.State.Production,
			FoodSupply:         n.State.FoodSupply,
			NetTrade:           n.State.NetTrade,
			ImportDependency:   n.State.ImportDependency,
			OriginalProduction: n.OriginalProduction,
			IsAffected:         n.Affected,
			ImpactSeverity:     n.Severity,
		})
	}

	for _, e := range s.edges {
		res.Edges = append(res.Edges, domain.TradeFlowView{
			ID:               e.Flow.ID(),
			Source:           e.Flow.Source,
			Target:           e.Flow.Target,
			Commodity:        e.Flow.Commodity,
			Quantity:         e.Flow.Quantity,
			OriginalQuantity: e.OriginalQuantity,
		})
	}

	return res
}

package domain

// Severity classifies the impact on a partner under contraction.
type Severity string

// Severity values. The zero value means no classification.
const (
	SeverityNone   Severity = ""
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
)

// SimulationResult is a snapshot annotated with perturbation effects.
// It is returned to the caller and never persisted.
type SimulationResult struct {
	Nodes []NodeStateView `json:"nodes"`
	Edges []TradeFlowView `json:"edges"`
}

// NodeStateView is the serialized form of a node in a result.
type NodeStateView struct {
	ID                 string   `json:"id"`
	Label              string   `json:"label"`
	Production         float64  `json:"production"`
	FoodSupply         float64  `json:"food_supply"`
	NetTrade           float64  `json:"net_trade"`
	ImportDependency   float64  `json:"import_dependency"`
	OriginalProduction float64  `json:"original_production"`
	IsAffected         bool     `json:"is_affected"`
	ImpactSeverity     Severity `json:"impact_severity,omitempty"`
}

// TradeFlowView is the serialized form of an edge in a result.
type TradeFlowView struct {
	ID               string  `json:"id"`
	Source           string  `json:"source"`
	Target           string  `json:"target"`
	Commodity        string  `json:"commodity"`
	Quantity         float64 `json:"quantity"`
	OriginalQuantity float64 `json:"original_quantity"`
}

// Node returns the view for the given country, or nil.
func (r *SimulationResult) Node(id string) *NodeStateView {
	for i := range r.Nodes {
		if r.Nodes[i].ID == id {
			return &r.Nodes[i]
		}
	}
	return nil
}

// Edge returns the view for the given edge id, or nil.
func (r *SimulationResult) Edge(id string) *TradeFlowView {
	for i := range r.Edges {
		if r.Edges[i].ID == id {
			return &r.Edges[i]
		}
	}
	return nil
}

// AffectedCount returns the number of nodes marked affected.
func (r *SimulationResult) AffectedCount() int {
	n := 0
	for _, v := range r.Nodes {
		if v.IsAffected {
			n++
		}
	}
	return n
}

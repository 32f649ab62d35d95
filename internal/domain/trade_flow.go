package domain

import "fmt"

// AllCommodities is the commodity filter that matches every edge.
const AllCommodities = "Total"

// TradeFlow is a directed, commodity-specific trade volume between two
// NodeStates of the same year.
type TradeFlow struct {
	Source    string  // exporter country name
	Target    string  // importer country name
	Year      int     // shared year of both endpoints
	Commodity string  // commodity item name
	Quantity  float64 // tons
}

// TradeFlowKey is the identity key of a TradeFlow.
type TradeFlowKey struct {
	Source    string
	Target    string
	Commodity string
	Year      int
}

// Key returns the identity key of the flow.
func (f *TradeFlow) Key() TradeFlowKey {
	return TradeFlowKey{
		Source:    f.Source,
		Target:    f.Target,
		Commodity: f.Commodity,
		Year:      f.Year,
	}
}

// ID returns the composite edge id used in API views.
func (f *TradeFlow) ID() string {
	return fmt.Sprintf("%s-%s-%s", f.Source, f.Target, f.Commodity)
}

// MatchesCommodity reports whether the flow passes the commodity filter.
func (f *TradeFlow) MatchesCommodity(filter string) bool {
	return filter == AllCommodities || f.Commodity == filter
}

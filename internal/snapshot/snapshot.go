// Package snapshot holds one year's trade graph in memory.
//
// A Snapshot is request-scoped: it is built from store records on each call,
// mutated freely by the caller, and discarded. Load copies every record so the
// store's values are never touched.
package snapshot

import (
	"errors"
	"fmt"

	"food-trade-twin/internal/domain"
)

// Snapshot invariant errors.
var (
	// ErrDanglingEdge is returned when an edge endpoint has no node state.
	ErrDanglingEdge = errors.New("trade flow references unknown node")

	// ErrYearMismatch is returned when records of different years are mixed.
	ErrYearMismatch = errors.New("trade flow year does not match snapshot year")
)

// Node is a node state plus its simulation annotations.
type Node struct {
	State              domain.NodeState
	OriginalProduction float64
	Affected           bool
	Severity           domain.Severity
}

// Edge is a trade flow plus its original quantity.
type Edge struct {
	Flow             domain.TradeFlow
	OriginalQuantity float64
}

// Snapshot is an indexed, mutable copy of one year's graph.
type Snapshot struct {
	year     int
	nodes    map[string]*Node
	order    []string // country names in first-seen order
	edges    []*Edge
	bySource map[string][]int // source country -> indexes into edges
}

// Load builds a snapshot of year from store records.
// Repeated node states for a country keep the first one.
func Load(year int, nodes []*domain.NodeState, edges []*domain.TradeFlow) (*Snapshot, error) {
	s := &Snapshot{
		year:     year,
		nodes:    make(map[string]*Node, len(nodes)),
		order:    make([]string, 0, len(nodes)),
		edges:    make([]*Edge, 0, len(edges)),
		bySource: make(map[string][]int),
	}

	for _, n := range nodes {
		if n == nil {
			continue
		}
		if n.Year != year {
			return nil, fmt.Errorf("%w: node %s has year %d, want %d", ErrYearMismatch, n.Country, n.Year, year)
		}
		if _, exists := s.nodes[n.Country]; exists {
			continue
		}
		s.nodes[n.Country] = &Node{
			State:              *n,
			OriginalProduction: n.Production,
		}
		s.order = append(s.order, n.Country)
	}

	for _, e := range edges {
		if e == nil {
			continue
		}
		if e.Year != year {
			return nil, fmt.Errorf("%w: edge %s has year %d, want %d", ErrYearMismatch, e.ID(), e.Year, year)
		}
		if _, ok := s.nodes[e.Source]; !ok {
			return nil, fmt.Errorf("%w: source %q of %s", ErrDanglingEdge, e.Source, e.ID())
		}
		if _, ok := s.nodes[e.Target]; !ok {
			return nil, fmt.Errorf("%w: target %q of %s", ErrDanglingEdge, e.Target, e.ID())
		}
		s.bySource[e.Source] = append(s.bySource[e.Source], len(s.edges))
		s.edges = append(s.edges, &Edge{
			Flow:             *e,
			OriginalQuantity: e.Quantity,
		})
	}

	return s, nil
}

// Year returns the snapshot year.
func (s *Snapshot) Year() int {
	return s.year
}

// Node returns the node for country.
func (s *Snapshot) Node(country string) (*Node, bool) {
	n, ok := s.nodes[country]
	return n, ok
}

// Nodes returns all nodes in load order.
func (s *Snapshot) Nodes() []*Node {
	out := make([]*Node, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.nodes[name])
	}
	return out
}

// Edges returns all edges in load order.
func (s *Snapshot) Edges() []*Edge {
	out := make([]*Edge, len(s.edges))
	copy(out, s.edges)
	return out
}

// EdgesFrom returns the outgoing edges of country that pass the commodity
// filter, in load order. domain.AllCommodities passes every commodity.
func (s *Snapshot) EdgesFrom(country, commodity string) []*Edge {
	idx := s.bySource[country]
	out := make([]*Edge, 0, len(idx))
	for _, i := range idx {
		e := s.edges[i]
		if e.Flow.MatchesCommodity(commodity) {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of nodes and edges.
func (s *Snapshot) Len() (nodes, edges int) {
	return len(s.order), len(s.edges)
}

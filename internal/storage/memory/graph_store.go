package memory

import (
	"context"
	"sort"
	"sync"

	"food-trade-twin/internal/domain"
	"food-trade-twin/internal/storage"
)

type nodeKey struct {
	country string
	year    int
}

// GraphStore is an in-memory implementation of storage.Store.
type GraphStore struct {
	mu        sync.RWMutex
	countries map[string]domain.Country
	states    map[nodeKey]*domain.NodeState
	stateSeq  []nodeKey // insertion order
	flows     map[domain.TradeFlowKey]*domain.TradeFlow
	flowSeq   []domain.TradeFlowKey // insertion order
}

// NewGraphStore creates a new in-memory graph store.
func NewGraphStore() *GraphStore {
	return &GraphStore{
		countries: make(map[string]domain.Country),
		states:    make(map[nodeKey]*domain.NodeState),
		flows:     make(map[domain.TradeFlowKey]*domain.TradeFlow),
	}
}

// Verify interface compliance at compile time.
var _ storage.Store = (*GraphStore)(nil)

// UpsertNodeStates creates missing countries and merges node states on (country, year).
func (s *GraphStore) UpsertNodeStates(_ context.Context, states []*domain.NodeState) error {
	for _, n := range states {
		if n == nil || n.Country == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range states {
		if _, ok := s.countries[n.Country]; !ok {
			s.countries[n.Country] = domain.Country{Name: n.Country}
		}
		k := nodeKey{n.Country, n.Year}
		if _, ok := s.states[k]; !ok {
			s.stateSeq = append(s.stateSeq, k)
		}
		// Store a copy to prevent external mutation
		stateCopy := *n
		s.states[k] = &stateCopy
	}
	return nil
}

// UpsertTradeFlows merges flows on their identity key, skipping flows whose
// endpoint node states are missing.
func (s *GraphStore) UpsertTradeFlows(_ context.Context, flows []*domain.TradeFlow) (int, error) {
	for _, f := range flows {
		if f == nil || f.Source == "" || f.Target == "" || f.Commodity == "" {
			return 0, storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	written := 0
	for _, f := range flows {
		if _, ok := s.states[nodeKey{f.Source, f.Year}]; !ok {
			continue
		}
		if _, ok := s.states[nodeKey{f.Target, f.Year}]; !ok {
			continue
		}
		k := f.Key()
		if _, ok := s.flows[k]; !ok {
			s.flowSeq = append(s.flowSeq, k)
		}
		flowCopy := *f
		s.flows[k] = &flowCopy
		written++
	}
	return written, nil
}

// FetchSnapshot returns copies of all node states and flows of year, in insertion order.
func (s *GraphStore) FetchSnapshot(ctx context.Context, year int) ([]*domain.NodeState, []*domain.TradeFlow, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var nodes []*domain.NodeState
	for _, k := range s.stateSeq {
		if k.year == year {
			stateCopy := *s.states[k]
			nodes = append(nodes, &stateCopy)
		}
	}

	var edges []*domain.TradeFlow
	for _, k := range s.flowSeq {
		if k.Year == year {
			flowCopy := *s.flows[k]
			edges = append(edges, &flowCopy)
		}
	}

	return nodes, edges, nil
}

// ListCountries returns all country names, sorted ascending.
func (s *GraphStore) ListCountries(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.countries))
	for name := range s.countries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// CountryHistory returns a country's node states ordered by year ASC.
func (s *GraphStore) CountryHistory(_ context.Context, country string) ([]*domain.NodeState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.NodeState
	for k, n := range s.states {
		if k.country == country {
			stateCopy := *n
			result = append(result, &stateCopy)
		}
	}
	if len(result) == 0 {
		return nil, storage.ErrNotFound
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Year < result[j].Year
	})
	return result, nil
}

// Partners returns the top trading partners of country in year.
func (s *GraphStore) Partners(_ context.Context, country string, year, limit int) ([]*domain.PartnerSummary, error) {
	s.mu.RLock()
	var touching []*domain.TradeFlow
	for _, k := range s.flowSeq {
		if k.Year == year && (k.Source == country || k.Target == country) {
			touching = append(touching, s.flows[k])
		}
	}
	rows := storage.PartnerCommodities(country, touching)
	s.mu.RUnlock()

	return storage.RankPartners(rows, limit), nil
}

// Stats summarizes all stored node states.
func (s *GraphStore) Stats(_ context.Context) (*domain.GraphStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	states := make([]*domain.NodeState, 0, len(s.states))
	for _, n := range s.states {
		states = append(states, n)
	}
	return storage.ComputeStats(states), nil
}

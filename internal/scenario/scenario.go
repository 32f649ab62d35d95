// Package scenario reads what-if scenario files and summarizes simulation results.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"food-trade-twin/internal/domain"
)

// ErrInvalidScenario is returned for scenario files that fail validation.
var ErrInvalidScenario = errors.New("invalid scenario")

// File is a scenario document.
//
//	scenarios:
//	  - name: us-drought
//	    area: United States
//	    year: 2021
//	    commodity: Wheat
//	    production_change: -30
type File struct {
	Scenarios []Scenario `yaml:"scenarios"`
}

// Scenario is one named perturbation.
type Scenario struct {
	Name              string  `yaml:"name"`
	Area              string  `yaml:"area"`
	Year              int     `yaml:"year"`
	Commodity         string  `yaml:"commodity,omitempty"`
	ProductionChange  float64 `yaml:"production_change"`
	ImportChange      float64 `yaml:"import_change,omitempty"`
	ClimateStress     float64 `yaml:"climate_stress,omitempty"`
	PolicyRestriction bool    `yaml:"policy_restriction,omitempty"`
}

// Perturbation converts the scenario into an engine input.
func (s Scenario) Perturbation() domain.Perturbation {
	return domain.Perturbation{
		Area:                s.Area,
		Year:                s.Year,
		Commodity:           s.Commodity,
		ProductionChangePct: s.ProductionChange,
		ImportChangePct:     s.ImportChange,
		ClimateStress:       s.ClimateStress,
		PolicyRestriction:   s.PolicyRestriction,
	}
}

// Load reads and validates a scenario file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a scenario document. Unknown keys are rejected.
// Missing names default to "scenario-N" and missing commodities to Total.
func Parse(data []byte) (*File, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidScenario)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}
	if len(f.Scenarios) == 0 {
		return nil, fmt.Errorf("%w: no scenarios", ErrInvalidScenario)
	}

	seen := make(map[string]bool, len(f.Scenarios))
	for i := range f.Scenarios {
		s := &f.Scenarios[i]
		if s.Name == "" {
			s.Name = fmt.Sprintf("scenario-%d", i+1)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("%w: duplicate name %q", ErrInvalidScenario, s.Name)
		}
		seen[s.Name] = true

		if s.Area == "" {
			return nil, fmt.Errorf("%w: %s: area is required", ErrInvalidScenario, s.Name)
		}
		if s.Year <= 0 {
			return nil, fmt.Errorf("%w: %s: year is required", ErrInvalidScenario, s.Name)
		}
		if s.Commodity == "" {
			s.Commodity = domain.AllCommodities
		}
	}
	return &f, nil
}

// Summary condenses a simulation result.
type Summary struct {
	Affected        int      `json:"affected" yaml:"affected"`
	High            int      `json:"high" yaml:"high"`
	Medium          int      `json:"medium" yaml:"medium"`
	ProductionDelta float64  `json:"production_delta" yaml:"production_delta"`
	FoodSupplyDelta float64  `json:"food_supply_delta" yaml:"food_supply_delta"`
	ChangedEdges    int      `json:"changed_edges" yaml:"changed_edges"`
	AffectedAreas   []string `json:"affected_areas" yaml:"affected_areas"`
}

// Summarize counts affected nodes and severities and totals the production
// change. With a baseline view of the same snapshot it also totals the
// food-supply change; a nil baseline leaves FoodSupplyDelta at 0.
func Summarize(result, baseline *domain.SimulationResult) Summary {
	var s Summary
	if result == nil {
		return s
	}

	for _, n := range result.Nodes {
		s.ProductionDelta += n.Production - n.OriginalProduction
		if n.IsAffected {
			s.Affected++
			s.AffectedAreas = append(s.AffectedAreas, n.ID)
		}
		switch n.ImpactSeverity {
		case domain.SeverityHigh:
			s.High++
		case domain.SeverityMedium:
			s.Medium++
		}
		if baseline != nil {
			if b := baseline.Node(n.ID); b != nil {
				s.FoodSupplyDelta += n.FoodSupply - b.FoodSupply
			}
		}
	}
	for _, e := range result.Edges {
		if e.Quantity != e.OriginalQuantity {
			s.ChangedEdges++
		}
	}
	sort.Strings(s.AffectedAreas)
	return s
}

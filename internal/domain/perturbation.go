package domain

// Perturbation is a hypothetical production shock applied to one area
// of one year's snapshot.
type Perturbation struct {
	Area                string  // target country name
	Year                int     // snapshot year
	Commodity           string  // outgoing edge filter, AllCommodities for all
	ProductionChangePct float64 // signed percent, -100 zeroes production

	// Reserved inputs. Accepted and reported but not applied by propagation.
	ImportChangePct   float64
	ClimateStress     float64
	PolicyRestriction bool
}

// Factor returns the multiplicative production factor.
func (p Perturbation) Factor() float64 {
	return 1 + p.ProductionChangePct/100.0
}

// CommodityFilter returns the commodity filter, defaulting to AllCommodities.
func (p Perturbation) CommodityFilter() string {
	if p.Commodity == "" {
		return AllCommodities
	}
	return p.Commodity
}

package domain

// Country is the identity entity for a trading area.
// Created once per distinct name, never updated.
type Country struct {
	Name string // unique key
}

// NodeState is a country's economic state in one year.
// Natural key is (Country, Year).
type NodeState struct {
	Country          string  // country name
	Year             int     // snapshot year
	Production       float64 // tons
	FoodSupply       float64 // per-capita supply units
	NetTrade         float64 // exports - imports, signed
	ImportDependency float64 // imports / (production + imports), not clamped
}

// CountryYear is one row of a country's history.
type CountryYear struct {
	Year             int     `json:"year"`
	Production       float64 `json:"production"`
	FoodSupply       float64 `json:"food_supply"`
	NetTrade         float64 `json:"net_trade"`
	ImportDependency float64 `json:"import_dependency"`
}

// History converts a NodeState into its history row.
func (n *NodeState) History() CountryYear {
	return CountryYear{
		Year:             n.Year,
		Production:       n.Production,
		FoodSupply:       n.FoodSupply,
		NetTrade:         n.NetTrade,
		ImportDependency: n.ImportDependency,
	}
}

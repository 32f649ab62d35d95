package domain

// Trade direction labels relative to the queried country.
const (
	FlowExport = "Export"
	FlowImport = "Import"
)

// CommodityDetail is one commodity's volume between a country and a partner.
type CommodityDetail struct {
	Commodity      string  `json:"commodity"`
	ExportQuantity float64 `json:"export_quantity"`
	ImportQuantity float64 `json:"import_quantity"`
	TotalQuantity  float64 `json:"total_quantity"`
}

// PartnerSummary aggregates all trade between a country and one partner in a year.
type PartnerSummary struct {
	Partner          string            `json:"partner"`
	Quantity         float64           `json:"quantity"` // total volume both directions
	PrimaryCommodity string            `json:"primary_commodity"`
	Type             string            `json:"type"` // FlowExport | FlowImport
	Commodities      []CommodityDetail `json:"commodities"`
	TotalExports     float64           `json:"total_exports"`
	TotalImports     float64           `json:"total_imports"`
}

// GraphStats summarizes the stored node states.
type GraphStats struct {
	AreaCount       int     `json:"area_count"`
	TotalProduction float64 `json:"total_production"`
	AvgFoodSupply   float64 `json:"avg_food_supply"`
	LatestYear      int     `json:"latest_year"`
}

package ingest

import "strings"

// nameMap normalizes source-specific country spellings.
var nameMap = map[string]string{
	"China, mainland":           "China",
	"China, Taiwan Province of": "Taiwan",
	"China, Hong Kong SAR":      "Hong Kong",
	"China, Macao SAR":          "Macao",
	"Russian Federation":        "Russia",
	"Viet Nam":                  "Vietnam",
}

// aggregateMarkers identify regional totals mixed into country rows.
var aggregateMarkers = []string{"total", "world", "africa", "asia", "europe", "americas", "oceania"}

// aggregateAllowed are countries whose names would otherwise match a marker.
var aggregateAllowed = map[string]bool{
	"India":  true,
	"China":  true,
	"Brazil": true,
	"Egypt":  true,
	"Russia": true,
}

// NormalizeName trims name and maps known aliases to their canonical form.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if canonical, ok := nameMap[name]; ok {
		return canonical
	}
	return name
}

// IsAggregate reports whether a normalized name is a regional or world total
// rather than a country.
func IsAggregate(name string) bool {
	if aggregateAllowed[name] {
		return false
	}
	lower := strings.ToLower(name)
	for _, m := range aggregateMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

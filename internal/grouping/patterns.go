package grouping

import "strings"

// Pattern is a recognised run of facet names that belong together.
type Pattern struct {
	Name        string
	Facets      []string
	MaxPerGroup int
}

var Catalog = []Pattern{
	{Name: "Time", Facets: []string{"year", "quarter", "month", "week", "day"}, MaxPerGroup: 3},
	{Name: "Location", Facets: []string{"country", "region", "state", "city", "neighborhood"}, MaxPerGroup: 3},
	{Name: "Organization", Facets: []string{"department", "team", "role", "person"}, MaxPerGroup: 2},
	{Name: "Category", Facets: []string{"category", "subcategory", "type", "subtype"}, MaxPerGroup: 2},
}

func (p Pattern) has(facet string) bool {
	facet = strings.ToLower(strings.TrimSpace(facet))
	for _, f := range p.Facets {
		if f == facet {
			return true
		}
	}
	return false
}

// matchLevels returns the ascending levels whose facets include one of the
// pattern's facets.
func (p Pattern) matchLevels(facetsByLevel [][]string) []int {
	var out []int
	for level, facets := range facetsByLevel {
		for _, f := range facets {
			if p.has(f) {
				out = append(out, level)
				break
			}
		}
	}
	return out
}

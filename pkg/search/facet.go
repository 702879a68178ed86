package search

import (
	"fmt"
	"strings"
)

// Facet names a filterable dimension of a wine.
type Facet string

const (
	FacetType    Facet = "type"
	FacetCountry Facet = "country"
	FacetRegion  Facet = "region"
	FacetWinery  Facet = "winery"
	FacetGrape   Facet = "grape"
	FacetAcidity Facet = "acidity"
	FacetABV     Facet = "abv-range"
	FacetVintage Facet = "vintage-range"
	FacetQuery   Facet = "query"
)

// OptionFacets are the facets whose narrowed options accompany every search response.
var OptionFacets = []Facet{ //nolint:gochecknoglobals // fixed ordering of the response facets
	FacetType, FacetCountry, FacetRegion, FacetWinery, FacetGrape, FacetAcidity, FacetABV, FacetVintage,
}

func ParseFacet(name string) (Facet, error) {
	facet := Facet(strings.ToLower(strings.TrimSpace(name)))

	for _, known := range OptionFacets {
		if facet == known {
			return facet, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownFacet, name)
}

func (f Facet) IsRange() bool {
	return f == FacetABV || f == FacetVintage
}

// Option is one selectable value of a discrete facet. Code is set for countries, ParentID holds
// the country of a region and the region of a winery.
type Option struct {
	ID       uint
	Name     string
	Code     string
	ParentID uint
}

type Range struct {
	Min float64
	Max float64
}

// FacetOptions is the narrowed option set of one facet. Discrete facets fill Options, range
// facets fill Range, which stays nil when no wine is left to take bounds from.
type FacetOptions struct {
	Facet   Facet
	Options []Option
	Range   *Range
}

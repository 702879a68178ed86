package search

import (
	"maps"
	"strings"
)

// Constraint restricts a single facet.
type Constraint interface {
	constraint()
}

type IDConstraint struct {
	ID uint
}

// RangeConstraint bounds a numeric facet. Either end may be open.
type RangeConstraint struct {
	Min *float64
	Max *float64
}

type TextConstraint struct {
	Query string
}

func (IDConstraint) constraint()    {}
func (RangeConstraint) constraint() {}
func (TextConstraint) constraint()  {}

// FilterSet holds the active constraint of every constrained facet. A facet missing from the
// set is unconstrained.
type FilterSet map[Facet]Constraint

// Without returns a copy of the set with the given facets left unconstrained.
func (f FilterSet) Without(facets ...Facet) FilterSet {
	out := maps.Clone(f)
	if out == nil {
		out = FilterSet{}
	}

	for _, facet := range facets {
		delete(out, facet)
	}

	return out
}

func (f FilterSet) IsEmpty() bool {
	return len(f) == 0
}

func (f FilterSet) ID(facet Facet) (uint, bool) {
	constraint, ok := f[facet].(IDConstraint)

	return constraint.ID, ok
}

func (f FilterSet) Query() string {
	constraint, _ := f[FacetQuery].(TextConstraint)

	return constraint.Query
}

// Params carries the optional scalar and range filters of a search request.
type Params struct {
	TypeID     *uint
	CountryID  *uint
	RegionID   *uint
	GrapeID    *uint
	WineryID   *uint
	AcidityID  *uint
	MinABV     *float64
	MaxABV     *float64
	MinVintage *int
	MaxVintage *int
}

// FilterSet converts the request parameters and free-text query into a filter set. A blank
// query adds no constraint.
func (p Params) FilterSet(query string) FilterSet {
	filters := FilterSet{}

	for facet, id := range map[Facet]*uint{
		FacetType:    p.TypeID,
		FacetCountry: p.CountryID,
		FacetRegion:  p.RegionID,
		FacetGrape:   p.GrapeID,
		FacetWinery:  p.WineryID,
		FacetAcidity: p.AcidityID,
	} {
		if id != nil {
			filters[facet] = IDConstraint{ID: *id}
		}
	}

	if p.MinABV != nil || p.MaxABV != nil {
		filters[FacetABV] = RangeConstraint{Min: p.MinABV, Max: p.MaxABV}
	}

	if p.MinVintage != nil || p.MaxVintage != nil {
		filters[FacetVintage] = RangeConstraint{Min: intToFloat(p.MinVintage), Max: intToFloat(p.MaxVintage)}
	}

	if query = strings.TrimSpace(query); query != "" {
		filters[FacetQuery] = TextConstraint{Query: query}
	}

	return filters
}

func intToFloat(value *int) *float64 {
	if value == nil {
		return nil
	}

	converted := float64(*value)

	return &converted
}

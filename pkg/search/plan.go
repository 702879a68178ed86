package search

import (
	"droscher.com/WineLovers/pkg/model"
)

// Plan is a filter set compiled into a two-phase pipeline: predicates pushed down to the store,
// then refinements applied to what the store returned. Empty marks a filter set that cannot
// match anything, so no store query is needed.
type Plan struct {
	Predicates  []Predicate
	Refinements []Refinement
	Empty       bool
}

func (p Plan) NeedsRefinement() bool {
	return len(p.Refinements) > 0
}

func (p Plan) Keep(wine *model.Wine) bool {
	for _, refinement := range p.Refinements {
		if !refinement.Keep(wine) {
			return false
		}
	}

	return true
}

func (p Plan) RefineWines(wines []*model.Wine) []*model.Wine {
	if !p.NeedsRefinement() {
		return wines
	}

	kept := make([]*model.Wine, 0, len(wines))

	for _, wine := range wines {
		if p.Keep(wine) {
			kept = append(kept, wine)
		}
	}

	return kept
}

func (p Plan) RefineResults(results []*Result) []*Result {
	if !p.NeedsRefinement() {
		return results
	}

	kept := make([]*Result, 0, len(results))

	for _, result := range results {
		if p.Keep(result.Wine) {
			kept = append(kept, result)
		}
	}

	return kept
}

// planner compiles filter sets for one request. Region filters resolve to the wineries of the
// region, looked up once per request and shared by every compiled plan.
type planner struct {
	ranker         Ranker
	regionWineries map[uint][]uint
}

var compileOrder = append(append([]Facet{}, OptionFacets...), FacetQuery) //nolint:gochecknoglobals // read only

//nolint:cyclop // one case per facet
func (p *planner) compile(filters FilterSet) Plan {
	var plan Plan

	for _, facet := range compileOrder {
		switch constraint := filters[facet].(type) {
		case IDConstraint:
			switch facet {
			case FacetType:
				plan.Predicates = append(plan.Predicates, Equals{Field: FieldType, Value: constraint.ID})
			case FacetCountry:
				plan.Predicates = append(plan.Predicates, Equals{Field: FieldCountry, Value: constraint.ID})
			case FacetAcidity:
				plan.Predicates = append(plan.Predicates, Equals{Field: FieldAcidity, Value: constraint.ID})
			case FacetWinery:
				plan.Predicates = append(plan.Predicates, Equals{Field: FieldWinery, Value: constraint.ID})
			case FacetGrape:
				plan.Predicates = append(plan.Predicates, Contains{Field: FieldGrapes, Value: constraint.ID})
			case FacetRegion:
				wineries := p.regionWineries[constraint.ID]
				if len(wineries) == 0 {
					return Plan{Empty: true}
				}

				plan.Predicates = append(plan.Predicates, In{Field: FieldWinery, Values: wineries})
			}
		case RangeConstraint:
			switch facet {
			case FacetABV:
				plan.Predicates = append(plan.Predicates, Between{Field: FieldABV, Min: constraint.Min, Max: constraint.Max})
			case FacetVintage:
				plan.Refinements = append(plan.Refinements, VintageRange{Min: constraint.Min, Max: constraint.Max})
			}
		case TextConstraint:
			plan.Predicates = append(plan.Predicates, p.ranker.Match(constraint.Query))
		}
	}

	return plan
}

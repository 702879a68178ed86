package search

import (
	"context"
	"slices"

	"go.uber.org/zap"

	"droscher.com/WineLovers/pkg/model"
)

// FacetResolver computes which values of a facet still lead to at least one wine, given every
// other active filter. A facet never narrows itself, otherwise a selection could not be changed
// once made.
type FacetResolver struct {
	wines     WineStore
	reference ReferenceStore
	logger    *zap.Logger
}

func NewFacetResolver(wines WineStore, reference ReferenceStore, logger *zap.Logger) *FacetResolver {
	return &FacetResolver{wines: wines, reference: reference, logger: logger}
}

func (r *FacetResolver) Resolve(ctx context.Context, plans *planner, filters FilterSet, facet Facet) (*FacetOptions, error) {
	options, err := r.resolve(ctx, plans, filters, facet)
	if err != nil {
		facetResolutions.WithLabelValues(string(facet), "error").Inc()

		return nil, err
	}

	outcome := "narrowed"

	switch {
	case filters.IsEmpty():
		outcome = "full"
	case len(options.Options) == 0 && options.Range == nil:
		outcome = "empty"
	}

	facetResolutions.WithLabelValues(string(facet), outcome).Inc()

	return options, nil
}

//nolint:cyclop // dispatch on facet kind
func (r *FacetResolver) resolve(ctx context.Context, plans *planner, filters FilterSet, facet Facet) (*FacetOptions, error) {
	options := &FacetOptions{Facet: facet, Options: []Option{}}

	var plan Plan
	if !filters.IsEmpty() {
		plan = plans.compile(filters.Without(facet))
	}

	if plan.Empty {
		return options, nil
	}

	var err error

	switch facet {
	case FacetABV:
		options.Range, err = r.abvRange(ctx, plan)

		return options, err
	case FacetVintage:
		options.Range, err = r.vintageRange(ctx, plan)

		return options, err
	case FacetQuery:
		return nil, ErrUnknownFacet
	}

	if filters.IsEmpty() {
		options.Options, err = r.reference.Options(ctx, facet, Scope{All: true})

		return options, err
	}

	var ids []uint

	switch facet {
	case FacetRegion:
		var wineryIDs []uint

		wineryIDs, err = r.distinct(ctx, FieldWinery, plan)
		if err == nil && len(wineryIDs) > 0 {
			ids, err = r.reference.RegionIDsForWineries(ctx, wineryIDs)
		}
	default:
		ids, err = r.distinct(ctx, facetField(facet), plan)
	}

	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		r.logger.Debug("no options left for facet", zap.String("facet", string(facet)), zap.Object("filters", filters))

		return options, nil
	}

	options.Options, err = r.reference.Options(ctx, facet, narrowedScope(facet, filters, ids))
	if err != nil {
		return nil, err
	}

	return options, nil
}

// narrowedScope chains regions to the selected country and wineries to the selected region, or
// to the selected country's regions when no region is selected.
func narrowedScope(facet Facet, filters FilterSet, ids []uint) Scope {
	scope := Scope{IDs: ids}

	countryID, hasCountry := filters.ID(FacetCountry)
	regionID, hasRegion := filters.ID(FacetRegion)

	switch facet {
	case FacetRegion:
		if hasCountry {
			scope.CountryID = &countryID
		}
	case FacetWinery:
		if hasRegion {
			scope.RegionID = &regionID
		} else if hasCountry {
			scope.CountryID = &countryID
		}
	}

	return scope
}

func facetField(facet Facet) Field {
	switch facet {
	case FacetCountry:
		return FieldCountry
	case FacetAcidity:
		return FieldAcidity
	case FacetWinery:
		return FieldWinery
	case FacetGrape:
		return FieldGrapes
	default:
		return FieldType
	}
}

func (r *FacetResolver) distinct(ctx context.Context, field Field, plan Plan) ([]uint, error) {
	if !plan.NeedsRefinement() {
		return r.wines.DistinctValues(ctx, field, plan.Predicates)
	}

	rows, err := r.wines.FacetRows(ctx, plan.Predicates)
	if err != nil {
		return nil, err
	}

	return DistinctOf(field, plan.RefineWines(rows)), nil
}

func (r *FacetResolver) abvRange(ctx context.Context, plan Plan) (*Range, error) {
	if !plan.NeedsRefinement() {
		return r.wines.ABVRange(ctx, plan.Predicates)
	}

	rows, err := r.wines.FacetRows(ctx, plan.Predicates)
	if err != nil {
		return nil, err
	}

	return ABVBounds(plan.RefineWines(rows)), nil
}

func (r *FacetResolver) vintageRange(ctx context.Context, plan Plan) (*Range, error) {
	if !plan.NeedsRefinement() {
		labels, err := r.wines.VintageLabels(ctx, plan.Predicates)
		if err != nil {
			return nil, err
		}

		return VintageBounds(labels), nil
	}

	rows, err := r.wines.FacetRows(ctx, plan.Predicates)
	if err != nil {
		return nil, err
	}

	var labels []string
	for _, wine := range plan.RefineWines(rows) {
		labels = append(labels, wine.Vintages...)
	}

	return VintageBounds(labels), nil
}

// DistinctOf projects the distinct values of field over wines in ascending order. Wines
// without a winery contribute nothing to FieldWinery.
func DistinctOf(field Field, wines []*model.Wine) []uint {
	seen := make(map[uint]struct{})

	add := func(value uint) {
		seen[value] = struct{}{}
	}

	for _, wine := range wines {
		switch field {
		case FieldType:
			add(wine.TypeID)
		case FieldCountry:
			add(wine.CountryID)
		case FieldAcidity:
			add(wine.AcidityID)
		case FieldWinery:
			if wine.WineryID != nil {
				add(*wine.WineryID)
			}
		case FieldGrapes:
			for _, id := range wine.GrapeIDs {
				if id > 0 {
					add(uint(id))
				}
			}
		case FieldABV:
		}
	}

	values := make([]uint, 0, len(seen))
	for value := range seen {
		values = append(values, value)
	}

	slices.Sort(values)

	return values
}

func ABVBounds(wines []*model.Wine) *Range {
	if len(wines) == 0 {
		return nil
	}

	bounds := &Range{Min: wines[0].ABV, Max: wines[0].ABV}

	for _, wine := range wines[1:] {
		bounds.Min = min(bounds.Min, wine.ABV)
		bounds.Max = max(bounds.Max, wine.ABV)
	}

	return bounds
}

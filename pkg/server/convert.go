package server

import (
	"go.openly.dev/pointy"

	"droscher.com/WineLovers/pkg/model"
	"droscher.com/WineLovers/pkg/search"
	api "droscher.com/WineLovers/pkg/server/api/v1"
)

func ParamsFromFilters(filters *api.Filters) search.Params {
	return search.Params{
		TypeID:     toUint(filters.TypeID),
		CountryID:  toUint(filters.CountryID),
		RegionID:   toUint(filters.RegionID),
		GrapeID:    toUint(filters.GrapeID),
		WineryID:   toUint(filters.WineryID),
		AcidityID:  toUint(filters.AcidityID),
		MinABV:     filters.MinAbv,
		MaxABV:     filters.MaxAbv,
		MinVintage: toInt(filters.MinVintage),
		MaxVintage: toInt(filters.MaxVintage),
	}
}

// WinesFromResults converts hydrated results. Scores are only set for text searches.
func WinesFromResults(results []*search.Result, scored bool) []*api.Wine {
	wines := make([]*api.Wine, 0, len(results))

	for _, result := range results {
		wine := WineFromModel(result.Wine)
		wine.Rating = result.Rating

		if scored {
			wine.Score = pointy.Float64(result.Score)
		}

		wines = append(wines, wine)
	}

	return wines
}

func WineFromModel(wine *model.Wine) *api.Wine {
	pbWine := api.Wine{
		ID:          uint64(wine.ID),
		Name:        wine.Name,
		Description: wine.Description,
		Type:        wine.Type.Name,
		Country:     wine.Country.Name,
		Acidity:     wine.Acidity.Name,
		Abv:         wine.ABV,
		Vintages:    append([]string{}, wine.Vintages...),
		Grapes:      make([]*api.Reference, 0, len(wine.Grapes)),
		PairWith:    make([]*api.Reference, 0, len(wine.PairedDishes)),
	}

	if wine.WineryID != nil {
		pbWine.WineryID = pointy.Uint64(uint64(*wine.WineryID))
	}

	for _, grape := range wine.Grapes {
		pbWine.Grapes = append(pbWine.Grapes, &api.Reference{ID: uint64(grape.ID), Name: grape.Name})
	}

	for _, dish := range wine.PairedDishes {
		pbWine.PairWith = append(pbWine.PairWith, &api.Reference{ID: uint64(dish.ID), Name: dish.Name})
	}

	return &pbWine
}

func FacetsFromOptions(facets []*search.FacetOptions) []*api.Facet {
	pbFacets := make([]*api.Facet, 0, len(facets))

	for _, facet := range facets {
		pbFacets = append(pbFacets, FacetFromOptions(facet))
	}

	return pbFacets
}

func FacetFromOptions(facet *search.FacetOptions) *api.Facet {
	pbFacet := api.Facet{Facet: string(facet.Facet)}

	if facet.Facet.IsRange() {
		if facet.Range != nil {
			pbFacet.Min = pointy.Float64(facet.Range.Min)
			pbFacet.Max = pointy.Float64(facet.Range.Max)
		}

		return &pbFacet
	}

	pbFacet.Options = OptionsFromModel(facet.Options)

	return &pbFacet
}

func OptionsFromModel(options []search.Option) []*api.Option {
	pbOptions := make([]*api.Option, 0, len(options))

	for _, option := range options {
		pbOption := api.Option{ID: uint64(option.ID), Name: option.Name, Code: option.Code}

		if option.ParentID != 0 {
			pbOption.ParentID = pointy.Uint64(uint64(option.ParentID))
		}

		pbOptions = append(pbOptions, &pbOption)
	}

	return pbOptions
}

func LiveResultsFromSearch(results []search.LiveResult) []*api.LiveResult {
	pbResults := make([]*api.LiveResult, 0, len(results))

	for _, result := range results {
		pbResults = append(pbResults, &api.LiveResult{ID: uint64(result.ID), Name: result.Name, Type: result.TypeName})
	}

	return pbResults
}

func toUint(value *uint64) *uint {
	if value == nil {
		return nil
	}

	return pointy.Uint(uint(*value))
}

func toInt(value *int32) *int {
	if value == nil {
		return nil
	}

	return pointy.Int(int(*value))
}

package repository

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"droscher.com/WineLovers/pkg/model"
	"droscher.com/WineLovers/pkg/search"
)

type optionTable struct {
	model   any
	table   string
	columns []string
}

var optionTables = map[search.Facet]optionTable{ //nolint:gochecknoglobals // read only
	search.FacetType:    {model: &model.WineType{}, table: "wine_types", columns: []string{"wine_types.id", "wine_types.name"}},
	search.FacetAcidity: {model: &model.WineAcidity{}, table: "wine_acidities", columns: []string{"wine_acidities.id", "wine_acidities.name"}},
	search.FacetGrape:   {model: &model.Grape{}, table: "grapes", columns: []string{"grapes.id", "grapes.name"}},
	search.FacetCountry: {model: &model.Country{}, table: "countries", columns: []string{"countries.id", "countries.name", "countries.code"}},
	search.FacetRegion: {
		model: &model.Region{}, table: "regions",
		columns: []string{"regions.id", "regions.name", "regions.country_id AS parent_id"},
	},
	search.FacetWinery: {
		model: &model.Winery{}, table: "wineries",
		columns: []string{"wineries.id", "wineries.name", "wineries.region_id AS parent_id"},
	},
}

// Options reads the reference rows of a facet ordered by name.
func (r *Repository) Options(ctx context.Context, facet search.Facet, scope search.Scope) ([]search.Option, error) {
	table, ok := optionTables[facet]
	if !ok {
		return nil, fmt.Errorf("%w: %q has no reference table", search.ErrUnknownFacet, facet)
	}

	options := []search.Option{}

	if !scope.All && len(scope.IDs) == 0 {
		return options, nil
	}

	statement := r.DB.WithContext(ctx).Model(table.model).
		Select(strings.Join(table.columns, ", "))

	if !scope.All {
		statement = statement.Where(table.table+".id IN ?", scope.IDs)
	}

	statement = scoped(statement, facet, scope)

	result := statement.Order(table.table + ".name, " + table.table + ".id").Scan(&options)
	if result.Error != nil {
		return nil, r.storeError("options "+string(facet), result.Error)
	}

	return options, nil
}

func scoped(statement *gorm.DB, facet search.Facet, scope search.Scope) *gorm.DB {
	switch facet {
	case search.FacetRegion:
		if scope.CountryID != nil {
			statement = statement.Where("regions.country_id = ?", *scope.CountryID)
		}
	case search.FacetWinery:
		if scope.RegionID != nil {
			statement = statement.Where("wineries.region_id = ?", *scope.RegionID)
		}

		if scope.CountryID != nil {
			statement = statement.
				Joins("INNER JOIN regions ON regions.id = wineries.region_id").
				Where("regions.country_id = ?", *scope.CountryID)
		}
	}

	return statement
}

func (r *Repository) WineryIDsInRegion(ctx context.Context, regionID uint) ([]uint, error) {
	var ids []uint

	result := r.DB.WithContext(ctx).Model(&model.Winery{}).
		Where("region_id = ?", regionID).
		Order("id").
		Pluck("id", &ids)
	if result.Error != nil {
		return nil, r.storeError("winery ids in region", result.Error)
	}

	return ids, nil
}

func (r *Repository) RegionIDsForWineries(ctx context.Context, wineryIDs []uint) ([]uint, error) {
	var ids []uint

	if len(wineryIDs) == 0 {
		return ids, nil
	}

	result := r.DB.WithContext(ctx).Model(&model.Winery{}).
		Where("id IN ?", wineryIDs).
		Distinct().
		Order("region_id").
		Pluck("region_id", &ids)
	if result.Error != nil {
		return nil, r.storeError("region ids for wineries", result.Error)
	}

	return ids, nil
}

func (r *Repository) GrapesByIDs(ctx context.Context, ids []uint) ([]*model.Grape, error) {
	var grapes []*model.Grape

	if result := r.DB.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&grapes); result.Error != nil {
		return nil, r.storeError("grapes by ids", result.Error)
	}

	return grapes, nil
}

func (r *Repository) DishesByIDs(ctx context.Context, ids []uint) ([]*model.Dish, error) {
	var dishes []*model.Dish

	if result := r.DB.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&dishes); result.Error != nil {
		return nil, r.storeError("dishes by ids", result.Error)
	}

	return dishes, nil
}

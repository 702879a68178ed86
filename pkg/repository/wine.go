package repository

import (
	"context"
	"slices"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"droscher.com/WineLovers/pkg/model"
	"droscher.com/WineLovers/pkg/search"
)

const candidateColumns = "wines.id, wines.name, wines.type_id, wines.description, wines.grape_ids, wines.pair_with_ids, " +
	"wines.abv, wines.acidity_id, wines.country_id, wines.winery_id, wines.vintages, " +
	"t.name AS type_name, c.name AS country_name, c.code AS country_code, a.name AS acidity_name, " +
	"(SELECT AVG(r.value) FROM ratings r WHERE r.wine_id = wines.id AND r.deleted_at IS NULL) AS rating"

const facetColumns = "wines.id, wines.type_id, wines.country_id, wines.acidity_id, wines.winery_id, wines.grape_ids, " +
	"wines.abv, wines.vintages"

type candidateRow struct {
	ID                    uint
	Name                  string
	TypeID                uint
	Description           string
	GrapeIDs              pq.Int64Array `gorm:"type:integer[]"`
	PairWithIDs           pq.Int64Array `gorm:"type:integer[]"`
	ABV                   float64
	AcidityID             uint
	CountryID             uint
	WineryID              *uint
	Vintages              pq.StringArray `gorm:"type:text[]"`
	TypeName              *string
	CountryName           *string
	CountryCode           *string
	AcidityName           *string
	Rating                *float64
	NameSimilarity        float64
	DescriptionSimilarity float64
	MatchScore            float64
}

func (c candidateRow) result() *search.Result {
	wine := &model.Wine{
		Name:        c.Name,
		TypeID:      c.TypeID,
		Description: c.Description,
		GrapeIDs:    c.GrapeIDs,
		PairWithIDs: c.PairWithIDs,
		ABV:         c.ABV,
		AcidityID:   c.AcidityID,
		CountryID:   c.CountryID,
		WineryID:    c.WineryID,
		Vintages:    c.Vintages,
	}
	wine.ID = c.ID
	wine.Type.ID = c.TypeID
	wine.Type.Name = deref(c.TypeName)
	wine.Country.ID = c.CountryID
	wine.Country.Name = deref(c.CountryName)
	wine.Country.Code = deref(c.CountryCode)
	wine.Acidity.ID = c.AcidityID
	wine.Acidity.Name = deref(c.AcidityName)

	return &search.Result{
		Wine:                  wine,
		Rating:                c.Rating,
		NameSimilarity:        c.NameSimilarity,
		DescriptionSimilarity: c.DescriptionSimilarity,
		Score:                 c.MatchScore,
	}
}

// FindCandidates loads matching wines with their type, country and acidity names and their
// average rating. With a text match it also selects both similarities and the match score, so
// the ordering of a limited query agrees with the ranker.
func (r *Repository) FindCandidates(ctx context.Context, query search.CandidateQuery) ([]*search.Result, error) {
	orders, err := orderBy(query.Order, query.Text != nil)
	if err != nil {
		return nil, err
	}

	columns := candidateColumns

	var args []any

	if query.Text != nil {
		hit, hitArgs := exactHit(*query.Text)
		columns += ", similarity(wines.name, ?) AS name_similarity" +
			", similarity(wines.description, ?) AS description_similarity" +
			", CASE WHEN " + hit + " THEN 1.0 ELSE similarity(wines.name, ?) END AS match_score"
		args = append(args, query.Text.Query, query.Text.Query)
		args = append(args, hitArgs...)
		args = append(args, query.Text.Query)
	}

	statement := r.DB.WithContext(ctx).Table("wines").
		Select(columns, args...).
		Joins("LEFT JOIN wine_types t ON t.id = wines.type_id").
		Joins("LEFT JOIN countries c ON c.id = wines.country_id").
		Joins("LEFT JOIN wine_acidities a ON a.id = wines.acidity_id").
		Where("wines.deleted_at IS NULL")
	statement = applyPredicates(statement, query.Predicates)

	statement = statement.Order(strings.Join(orders, ", "))

	if query.Limit > 0 {
		statement = statement.Limit(query.Limit)
	}

	var rows []candidateRow

	if result := statement.Scan(&rows); result.Error != nil {
		return nil, r.storeError("find candidates", result.Error)
	}

	results := make([]*search.Result, 0, len(rows))
	for _, row := range rows {
		results = append(results, row.result())
	}

	return results, nil
}

// orderBy mirrors the in-process comparators. Names compare in the C collation to match
// byte-wise string comparison.
func orderBy(order search.Order, scored bool) ([]string, error) {
	if _, err := order.Sort.Comparator(); err != nil {
		return nil, err
	}

	var orders []string

	if order.ByScore && scored {
		orders = append(orders, "match_score DESC")
	}

	switch order.Sort {
	case search.SortNameDesc:
		orders = append(orders, `wines.name COLLATE "C" DESC`)
	case search.SortRatingDesc:
		orders = append(orders, "rating DESC NULLS LAST", `wines.name COLLATE "C" ASC`)
	case search.SortRatingAsc:
		orders = append(orders, "rating ASC NULLS LAST", `wines.name COLLATE "C" ASC`)
	default:
		orders = append(orders, `wines.name COLLATE "C" ASC`)
	}

	return append(orders, "wines.id ASC"), nil
}

func (r *Repository) wines(ctx context.Context, predicates []search.Predicate) *gorm.DB {
	return applyPredicates(r.DB.WithContext(ctx).Model(&model.Wine{}), predicates)
}

// DistinctValues projects a facet column, unnesting the grape arrays.
func (r *Repository) DistinctValues(ctx context.Context, field search.Field, predicates []search.Predicate) ([]uint, error) {
	column := fieldColumns[field]

	statement := r.wines(ctx, predicates)
	if field == search.FieldGrapes {
		column = "unnest(" + column + ")"
	} else {
		statement = statement.Where(column + " IS NOT NULL")
	}

	var values []uint

	if result := statement.Distinct().Pluck(column, &values); result.Error != nil {
		return nil, r.storeError("distinct "+strings.TrimPrefix(fieldColumns[field], "wines."), result.Error)
	}

	slices.Sort(values)

	return values, nil
}

type abvBounds struct {
	Minimum *float64
	Maximum *float64
}

func (r *Repository) ABVRange(ctx context.Context, predicates []search.Predicate) (*search.Range, error) {
	var bounds abvBounds

	result := r.wines(ctx, predicates).
		Select("MIN(wines.abv) AS minimum, MAX(wines.abv) AS maximum").
		Scan(&bounds)
	if result.Error != nil {
		return nil, r.storeError("abv range", result.Error)
	}

	if bounds.Minimum == nil || bounds.Maximum == nil {
		return nil, nil //nolint:nilnil // no wine matches
	}

	return &search.Range{Min: *bounds.Minimum, Max: *bounds.Maximum}, nil
}

func (r *Repository) VintageLabels(ctx context.Context, predicates []search.Predicate) ([]string, error) {
	var labels []string

	if result := r.wines(ctx, predicates).Distinct().Pluck("unnest(wines.vintages)", &labels); result.Error != nil {
		return nil, r.storeError("vintage labels", result.Error)
	}

	return labels, nil
}

func (r *Repository) FacetRows(ctx context.Context, predicates []search.Predicate) ([]*model.Wine, error) {
	var wines []*model.Wine

	if result := r.wines(ctx, predicates).Select(facetColumns).Find(&wines); result.Error != nil {
		return nil, r.storeError("facet rows", result.Error)
	}

	return wines, nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}

	return *value
}

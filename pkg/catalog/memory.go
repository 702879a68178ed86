package catalog

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"droscher.com/WineLovers/pkg/model"
	"droscher.com/WineLovers/pkg/search"
	"droscher.com/WineLovers/pkg/trigram"
)

// MemoryStore evaluates search predicates over a snapshot held in memory. The snapshot is never
// modified, so a MemoryStore is safe for concurrent use.
type MemoryStore struct {
	snapshot *Snapshot

	types     map[uint]*model.WineType
	acidities map[uint]*model.WineAcidity
	countries map[uint]*model.Country
	regions   map[uint]*model.Region
	wineries  map[uint]*model.Winery
	grapes    map[uint]*model.Grape
	dishes    map[uint]*model.Dish
	ratings   map[uint]float64
}

func NewMemoryStore(snapshot *Snapshot) *MemoryStore {
	store := &MemoryStore{
		snapshot:  snapshot,
		types:     indexByID(snapshot.Types, func(t *model.WineType) uint { return t.ID }),
		acidities: indexByID(snapshot.Acidities, func(a *model.WineAcidity) uint { return a.ID }),
		countries: indexByID(snapshot.Countries, func(c *model.Country) uint { return c.ID }),
		regions:   indexByID(snapshot.Regions, func(r *model.Region) uint { return r.ID }),
		wineries:  indexByID(snapshot.Wineries, func(w *model.Winery) uint { return w.ID }),
		grapes:    indexByID(snapshot.Grapes, func(g *model.Grape) uint { return g.ID }),
		dishes:    indexByID(snapshot.Dishes, func(d *model.Dish) uint { return d.ID }),
		ratings:   averageRatings(snapshot.Ratings),
	}

	return store
}

// LoadMemoryStore builds a memory store from the catalog files, see ImportFiles.
func LoadMemoryStore(winesFile, ratingsFile string, logger *zap.Logger) (*MemoryStore, error) {
	snapshot, err := ImportFiles(winesFile, ratingsFile, logger)
	if err != nil {
		return nil, err
	}

	return NewMemoryStore(snapshot), nil
}

// ImportFiles imports the wines file and, when ratingsFile is set, the ratings file. Rows that
// fail to import are logged and left out.
func ImportFiles(winesFile, ratingsFile string, logger *zap.Logger) (*Snapshot, error) {
	importer := NewImporter(logger)

	if err := importFile(winesFile, importer.ImportWines, logger); err != nil {
		return nil, err
	}

	if ratingsFile != "" {
		if err := importFile(ratingsFile, importer.ImportRatings, logger); err != nil {
			return nil, err
		}
	}

	snapshot := importer.Snapshot()
	logger.Info("Loaded catalog", zap.Any("counts", snapshot.Counts()))

	return snapshot, nil
}

func importFile(name string, load func(reader io.Reader) error, logger *zap.Logger) error {
	file, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("opening catalog file: %w", err)
	}
	defer file.Close()

	err = load(file)
	for _, rowError := range multierr.Errors(err) {
		if !errors.Is(rowError, ErrMalformedRow) {
			return rowError
		}

		logger.Warn("Skipped catalog row", zap.String("file", name), zap.Error(rowError))
	}

	return nil
}

func (m *MemoryStore) FindCandidates(ctx context.Context, query search.CandidateQuery) ([]*search.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var results []*search.Result

	for _, wine := range m.snapshot.Wines {
		if !m.matches(wine, query.Predicates) {
			continue
		}

		result := &search.Result{Wine: m.candidate(wine)}

		if rating, ok := m.ratings[wine.ID]; ok {
			result.Rating = &rating
		}

		if query.Text != nil {
			result.NameSimilarity = trigram.Similarity(wine.Name, query.Text.Query)
			result.DescriptionSimilarity = trigram.Similarity(wine.Description, query.Text.Query)
			result.Score = query.Text.Score(query.Text.ExactHit(wine.Name, wine.Description), result.NameSimilarity)
		}

		results = append(results, result)
	}

	if err := search.SortResults(results, query.Order); err != nil {
		return nil, err
	}

	if query.Limit > 0 && len(results) > query.Limit {
		results = results[:query.Limit]
	}

	return results, nil
}

func (m *MemoryStore) DistinctValues(ctx context.Context, field search.Field, predicates []search.Predicate) ([]uint, error) {
	wines, err := m.FacetRows(ctx, predicates)
	if err != nil {
		return nil, err
	}

	return search.DistinctOf(field, wines), nil
}

func (m *MemoryStore) ABVRange(ctx context.Context, predicates []search.Predicate) (*search.Range, error) {
	wines, err := m.FacetRows(ctx, predicates)
	if err != nil {
		return nil, err
	}

	return search.ABVBounds(wines), nil
}

func (m *MemoryStore) VintageLabels(ctx context.Context, predicates []search.Predicate) ([]string, error) {
	wines, err := m.FacetRows(ctx, predicates)
	if err != nil {
		return nil, err
	}

	var labels []string
	for _, wine := range wines {
		labels = append(labels, wine.Vintages...)
	}

	return labels, nil
}

func (m *MemoryStore) FacetRows(ctx context.Context, predicates []search.Predicate) ([]*model.Wine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var wines []*model.Wine

	for _, wine := range m.snapshot.Wines {
		if m.matches(wine, predicates) {
			wines = append(wines, wine)
		}
	}

	return wines, nil
}

//nolint:cyclop // one case per reference table
func (m *MemoryStore) Options(ctx context.Context, facet search.Facet, scope search.Scope) ([]search.Option, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var options []search.Option

	switch facet {
	case search.FacetType:
		for _, wineType := range m.snapshot.Types {
			options = append(options, search.Option{ID: wineType.ID, Name: wineType.Name})
		}
	case search.FacetAcidity:
		for _, acidity := range m.snapshot.Acidities {
			options = append(options, search.Option{ID: acidity.ID, Name: acidity.Name})
		}
	case search.FacetCountry:
		for _, country := range m.snapshot.Countries {
			options = append(options, search.Option{ID: country.ID, Name: country.Name, Code: country.Code})
		}
	case search.FacetGrape:
		for _, grape := range m.snapshot.Grapes {
			options = append(options, search.Option{ID: grape.ID, Name: grape.Name})
		}
	case search.FacetRegion:
		for _, region := range m.snapshot.Regions {
			if scope.CountryID != nil && region.CountryID != *scope.CountryID {
				continue
			}

			options = append(options, search.Option{ID: region.ID, Name: region.Name, ParentID: region.CountryID})
		}
	case search.FacetWinery:
		for _, winery := range m.snapshot.Wineries {
			if scope.RegionID != nil && winery.RegionID != *scope.RegionID {
				continue
			}

			if scope.CountryID != nil && m.wineryCountry(winery) != *scope.CountryID {
				continue
			}

			options = append(options, search.Option{ID: winery.ID, Name: winery.Name, ParentID: winery.RegionID})
		}
	default:
		return nil, fmt.Errorf("%w: %q has no reference table", search.ErrUnknownFacet, facet)
	}

	if !scope.All {
		options = slices.DeleteFunc(options, func(option search.Option) bool {
			return !slices.Contains(scope.IDs, option.ID)
		})
	}

	slices.SortFunc(options, func(a, b search.Option) int {
		return cmpOr(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})

	if options == nil {
		options = []search.Option{}
	}

	return options, nil
}

func (m *MemoryStore) WineryIDsInRegion(ctx context.Context, regionID uint) ([]uint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var ids []uint

	for _, winery := range m.snapshot.Wineries {
		if winery.RegionID == regionID {
			ids = append(ids, winery.ID)
		}
	}

	slices.Sort(ids)

	return ids, nil
}

func (m *MemoryStore) RegionIDsForWineries(ctx context.Context, wineryIDs []uint) ([]uint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var ids []uint

	for _, wineryID := range wineryIDs {
		if winery, ok := m.wineries[wineryID]; ok {
			ids = append(ids, winery.RegionID)
		}
	}

	slices.Sort(ids)

	return slices.Compact(ids), nil
}

func (m *MemoryStore) GrapesByIDs(ctx context.Context, ids []uint) ([]*model.Grape, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return lookup(m.grapes, ids), nil
}

func (m *MemoryStore) DishesByIDs(ctx context.Context, ids []uint) ([]*model.Dish, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return lookup(m.dishes, ids), nil
}

//nolint:cyclop // one case per predicate kind
func (m *MemoryStore) matches(wine *model.Wine, predicates []search.Predicate) bool {
	for _, predicate := range predicates {
		switch predicate := predicate.(type) {
		case search.Equals:
			value, ok := fieldValue(wine, predicate.Field)
			if !ok || value != predicate.Value {
				return false
			}
		case search.In:
			value, ok := fieldValue(wine, predicate.Field)
			if !ok || !slices.Contains(predicate.Values, value) {
				return false
			}
		case search.Contains:
			if !slices.Contains(wine.GrapeIDs, int64(predicate.Value)) {
				return false
			}
		case search.Between:
			if predicate.Min != nil && wine.ABV < *predicate.Min {
				return false
			}

			if predicate.Max != nil && wine.ABV > *predicate.Max {
				return false
			}
		case search.TextMatch:
			exactHit := predicate.ExactHit(wine.Name, wine.Description)
			nameSimilarity := trigram.Similarity(wine.Name, predicate.Query)
			descriptionSimilarity := trigram.Similarity(wine.Description, predicate.Query)

			if !predicate.Admits(exactHit, nameSimilarity, descriptionSimilarity) {
				return false
			}
		}
	}

	return true
}

func fieldValue(wine *model.Wine, field search.Field) (uint, bool) {
	switch field {
	case search.FieldType:
		return wine.TypeID, true
	case search.FieldCountry:
		return wine.CountryID, true
	case search.FieldAcidity:
		return wine.AcidityID, true
	case search.FieldWinery:
		if wine.WineryID == nil {
			return 0, false
		}

		return *wine.WineryID, true
	case search.FieldGrapes, search.FieldABV:
	}

	return 0, false
}

// candidate copies the wine with its type, country and acidity attached, leaving the snapshot
// untouched by hydration.
func (m *MemoryStore) candidate(wine *model.Wine) *model.Wine {
	copied := *wine

	if wineType, ok := m.types[wine.TypeID]; ok {
		copied.Type = *wineType
	}

	if country, ok := m.countries[wine.CountryID]; ok {
		copied.Country = *country
	}

	if acidity, ok := m.acidities[wine.AcidityID]; ok {
		copied.Acidity = *acidity
	}

	copied.Grapes = nil
	copied.PairedDishes = nil

	return &copied
}

func (m *MemoryStore) wineryCountry(winery *model.Winery) uint {
	if region, ok := m.regions[winery.RegionID]; ok {
		return region.CountryID
	}

	return 0
}

func indexByID[T any](rows []*T, id func(*T) uint) map[uint]*T {
	index := make(map[uint]*T, len(rows))
	for _, row := range rows {
		index[id(row)] = row
	}

	return index
}

func lookup[T any](index map[uint]*T, ids []uint) []*T {
	sorted := slices.Clone(ids)
	slices.Sort(sorted)

	rows := make([]*T, 0, len(sorted))

	for _, id := range slices.Compact(sorted) {
		if row, ok := index[id]; ok {
			rows = append(rows, row)
		}
	}

	return rows
}

func averageRatings(ratings []*model.Rating) map[uint]float64 {
	sums := map[uint]float64{}
	counts := map[uint]int{}

	for _, rating := range ratings {
		sums[rating.WineID] += rating.Value
		counts[rating.WineID]++
	}

	averages := make(map[uint]float64, len(sums))
	for wineID, sum := range sums {
		averages[wineID] = sum / float64(counts[wineID])
	}

	return averages
}

// cmpOr is cmp.Or from Go 1.22: it returns the first of its arguments that is not the zero value.
func cmpOr[T comparable](vals ...T) T {
	var zero T
	for _, v := range vals {
		if v != zero {
			return v
		}
	}
	return zero
}

package search

import (
	"context"

	"droscher.com/WineLovers/pkg/model"
)

// Result is a wine on its way through a search: first a store candidate, then a ranked and
// hydrated result. Rating is nil for unrated wines. The similarity fields are only meaningful
// for candidates fetched with a text match.
type Result struct {
	Wine                  *model.Wine
	Rating                *float64
	NameSimilarity        float64
	DescriptionSimilarity float64
	Score                 float64
}

// Order tells a store how to order candidates. With ByScore, the match score of the query's
// text match comes first and Sort orders within equal scores.
type Order struct {
	Sort    SortOption
	ByScore bool
}

type CandidateQuery struct {
	Predicates []Predicate
	Text       *TextMatch
	Order      Order
	// Limit caps the number of candidates; 0 fetches all of them.
	Limit int
}

// WineStore runs predicate queries over wines.
type WineStore interface {
	// FindCandidates returns wines matching all predicates and the text match, with type,
	// country and acidity filled in and, when Text is set, name/description similarity.
	FindCandidates(ctx context.Context, query CandidateQuery) ([]*Result, error)
	// DistinctValues projects the distinct non-null values of field over the matching wines.
	// For FieldGrapes it projects the elements of the grape arrays.
	DistinctValues(ctx context.Context, field Field, predicates []Predicate) ([]uint, error)
	// ABVRange returns nil when no wine matches.
	ABVRange(ctx context.Context, predicates []Predicate) (*Range, error)
	VintageLabels(ctx context.Context, predicates []Predicate) ([]string, error)
	// FacetRows returns matching wines with only their ids and facet attributes loaded.
	FacetRows(ctx context.Context, predicates []Predicate) ([]*model.Wine, error)
}

// Scope selects reference rows. Without All, only rows with one of IDs are returned. CountryID
// restricts regions and wineries, RegionID restricts wineries.
type Scope struct {
	All       bool
	IDs       []uint
	CountryID *uint
	RegionID  *uint
}

// ReferenceStore reads the tables wines refer to.
type ReferenceStore interface {
	// Options returns the reference rows of a discrete facet ordered by name.
	Options(ctx context.Context, facet Facet, scope Scope) ([]Option, error)
	WineryIDsInRegion(ctx context.Context, regionID uint) ([]uint, error)
	RegionIDsForWineries(ctx context.Context, wineryIDs []uint) ([]uint, error)
	GrapesByIDs(ctx context.Context, ids []uint) ([]*model.Grape, error)
	DishesByIDs(ctx context.Context, ids []uint) ([]*model.Dish, error)
}

// Store is the catalog the search engine reads from.
type Store interface {
	WineStore
	ReferenceStore
}

package search

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"droscher.com/WineLovers/configs"
	"droscher.com/WineLovers/pkg/model"
)

var (
	ErrUnknownFacet     = errors.New("unknown facet")
	ErrUnsupportedSort  = errors.New("unsupported sort option")
	ErrStoreUnavailable = errors.New("catalog store unavailable")
)

const unknownTypeName = "Unknown"

type Request struct {
	Query  string
	Params Params
	Sort   SortOption
	// Limit defaults to the configured default limit when nil.
	Limit *int
}

type Response struct {
	Results []*Result
	Facets  []*FacetOptions
}

type LiveResult struct {
	ID       uint
	Name     string
	TypeName string
}

// Engine answers search requests against a catalog store.
type Engine struct {
	store    Store
	config   configs.Search
	ranker   Ranker
	resolver *FacetResolver
	hydrator *Hydrator
	logger   *zap.Logger
}

func NewEngine(store Store, config configs.Search, logger *zap.Logger) *Engine {
	return &Engine{
		store:  store,
		config: config,
		ranker: Ranker{
			NameThreshold:        config.NameSimilarityThreshold,
			DescriptionThreshold: config.DescriptionSimilarityThreshold,
		},
		resolver: NewFacetResolver(store, store, logger),
		hydrator: NewHydrator(store),
		logger:   logger,
	}
}

// Search returns the hydrated, ordered results of the request together with the narrowed
// options of every facet. Results and facets are computed concurrently; the first store failure
// fails the whole search.
func (e *Engine) Search(ctx context.Context, request Request) (*Response, error) {
	start := time.Now()

	comparator, err := request.Sort.Comparator()
	if err != nil {
		return nil, err
	}

	filters := request.Params.FilterSet(request.Query)
	limit := clampLimit(request.Limit, e.config.DefaultLimit, e.config.MaxLimit)

	plans, err := e.newPlanner(ctx, filters)
	if err != nil {
		return nil, err
	}

	response := &Response{Facets: make([]*FacetOptions, len(OptionFacets))}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(e.config.FacetParallelism + 1)

	group.Go(func() error {
		results, err := e.results(groupCtx, plans, filters, request.Sort, comparator, limit)
		response.Results = results

		return err
	})

	for i, facet := range OptionFacets {
		i, facet := i, facet
		group.Go(func() error {
			options, err := e.resolver.Resolve(groupCtx, plans, filters, facet)
			response.Facets[i] = options

			return err
		})
	}

	if err := group.Wait(); err != nil {
		e.logger.Error("search failed", zap.Object("filters", filters), zap.Error(err))

		return nil, err
	}

	path := pathFiltered
	if filters.Query() != "" {
		path = pathRanked
	}

	searchDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
	searchResults.Observe(float64(len(response.Results)))

	e.logger.Info("search complete",
		zap.String("path", path),
		zap.Object("filters", filters),
		zap.Stringer("sort", request.Sort),
		zap.Int("limit", limit),
		zap.Int("results", len(response.Results)),
		zap.Duration("total", time.Since(start)),
	)

	return response, nil
}

func (e *Engine) results(ctx context.Context, plans *planner, filters FilterSet, sort SortOption, comparator Comparator, limit int) ([]*Result, error) {
	if limit <= 0 {
		return []*Result{}, nil
	}

	plan := plans.compile(filters)
	if plan.Empty {
		e.logger.Debug("filters cannot match any wine", zap.Object("filters", filters))

		return []*Result{}, nil
	}

	query := CandidateQuery{Predicates: plan.Predicates, Order: Order{Sort: sort}}

	var match *TextMatch

	if text := filters.Query(); text != "" {
		textMatch := e.ranker.Match(text)
		match = &textMatch
		query.Text = match
		query.Order.ByScore = true
	}

	// Refinements run after the store, so the store can only apply the limit without them.
	if !plan.NeedsRefinement() {
		query.Limit = limit
	}

	storeStart := time.Now()

	candidates, err := e.store.FindCandidates(ctx, query)
	if err != nil {
		return nil, err
	}

	storeElapsed := time.Since(storeStart)
	fetched := len(candidates)
	candidates = plan.RefineResults(candidates)
	refined := len(candidates)

	rankStart := time.Now()

	var results []*Result

	if match != nil {
		results = e.ranker.Rank(*match, candidates, comparator)
	} else {
		results = candidates
		if err := SortResults(results, Order{Sort: sort}); err != nil {
			return nil, err
		}
	}

	if len(results) > limit {
		results = results[:limit]
	}

	rankElapsed := time.Since(rankStart)
	hydrateStart := time.Now()

	if err := e.hydrator.Hydrate(ctx, resultWines(results)); err != nil {
		return nil, err
	}

	e.logger.Info("search results",
		zap.Int("fetched", fetched),
		zap.Int("refined", refined),
		zap.Int("returned", len(results)),
		zap.Duration("store", storeElapsed),
		zap.Duration("rank", rankElapsed),
		zap.Duration("hydrate", time.Since(hydrateStart)),
	)

	return results, nil
}

// LiveSearch is the typeahead variant of Search: name-only matching, no facets and no
// hydration. A blank query returns nothing.
func (e *Engine) LiveSearch(ctx context.Context, query string, limit *int) ([]LiveResult, error) {
	start := time.Now()

	query = strings.TrimSpace(query)
	size := clampLimit(limit, e.config.LiveDefaultLimit, e.config.LiveMaxLimit)

	if query == "" || size <= 0 {
		return []LiveResult{}, nil
	}

	match := e.ranker.Match(query)
	match.NameOnly = true

	candidates, err := e.store.FindCandidates(ctx, CandidateQuery{
		Predicates: []Predicate{match},
		Text:       &match,
		Order:      Order{Sort: SortRelevance, ByScore: true},
		Limit:      size,
	})
	if err != nil {
		return nil, err
	}

	ranked := e.ranker.Rank(match, candidates, byNameAsc)
	if len(ranked) > size {
		ranked = ranked[:size]
	}

	results := make([]LiveResult, 0, len(ranked))

	for _, result := range ranked {
		typeName := result.Wine.Type.Name
		if typeName == "" {
			typeName = unknownTypeName
		}

		results = append(results, LiveResult{ID: result.Wine.ID, Name: result.Wine.Name, TypeName: typeName})
	}

	searchDuration.WithLabelValues(pathLive).Observe(time.Since(start).Seconds())
	e.logger.Debug("live search", zap.String("query", query), zap.Int("results", len(results)))

	return results, nil
}

// FilterOptions resolves the options of a single facet under the given filters.
func (e *Engine) FilterOptions(ctx context.Context, facetName string, query string, params Params) (*FacetOptions, error) {
	facet, err := ParseFacet(facetName)
	if err != nil {
		return nil, err
	}

	filters := params.FilterSet(query)

	plans, err := e.newPlanner(ctx, filters)
	if err != nil {
		return nil, err
	}

	return e.resolver.Resolve(ctx, plans, filters, facet)
}

// ListRegions lists the regions of a country ordered by name.
func (e *Engine) ListRegions(ctx context.Context, countryID uint) ([]Option, error) {
	return e.store.Options(ctx, FacetRegion, Scope{All: true, CountryID: &countryID})
}

// ListWineries lists wineries ordered by name, restricted to a region when regionID is set and
// otherwise to a country when countryID is set.
func (e *Engine) ListWineries(ctx context.Context, regionID, countryID *uint) ([]Option, error) {
	scope := Scope{All: true}

	switch {
	case regionID != nil:
		scope.RegionID = regionID
	case countryID != nil:
		scope.CountryID = countryID
	}

	return e.store.Options(ctx, FacetWinery, scope)
}

// newPlanner looks up the wineries of the filtered region once for all plans of a request.
func (e *Engine) newPlanner(ctx context.Context, filters FilterSet) (*planner, error) {
	plans := &planner{ranker: e.ranker, regionWineries: map[uint][]uint{}}

	if regionID, ok := filters.ID(FacetRegion); ok {
		wineries, err := e.store.WineryIDsInRegion(ctx, regionID)
		if err != nil {
			return nil, err
		}

		plans.regionWineries[regionID] = wineries
	}

	return plans, nil
}

// clampLimit applies the default to a missing limit and caps it at the maximum. Zero and
// negative limits are returned as they are and yield no results.
func clampLimit(limit *int, defaultLimit, maxLimit int) int {
	if limit == nil {
		return defaultLimit
	}

	return min(*limit, maxLimit)
}

func resultWines(results []*Result) []*model.Wine {
	wines := make([]*model.Wine, 0, len(results))
	for _, result := range results {
		wines = append(wines, result.Wine)
	}

	return wines
}

// MarshalLogObject logs the active constraints keyed by facet.
func (f FilterSet) MarshalLogObject(encoder zapcore.ObjectEncoder) error {
	for _, facet := range compileOrder {
		switch constraint := f[facet].(type) {
		case IDConstraint:
			encoder.AddUint(string(facet), constraint.ID)
		case RangeConstraint:
			if constraint.Min != nil {
				encoder.AddFloat64(string(facet)+".min", *constraint.Min)
			}

			if constraint.Max != nil {
				encoder.AddFloat64(string(facet)+".max", *constraint.Max)
			}
		case TextConstraint:
			encoder.AddString(string(facet), constraint.Query)
		}
	}

	return nil
}

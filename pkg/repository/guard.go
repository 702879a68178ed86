package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"droscher.com/WineLovers/configs"
	"droscher.com/WineLovers/pkg/model"
	"droscher.com/WineLovers/pkg/search"
)

// GuardedStore puts a circuit breaker in front of a catalog store and caches the unfiltered
// reference listings, which only change when the catalog is seeded.
type GuardedStore struct {
	store   search.Store
	breaker *gobreaker.CircuitBreaker[any]
	options *lru.Cache[optionKey, []search.Option]
}

var _ search.Store = (*GuardedStore)(nil)

type optionKey struct {
	facet     search.Facet
	countryID uint
	regionID  uint
}

func NewGuardedStore(store search.Store, conf configs.Store, logger *zap.Logger) (*GuardedStore, error) {
	options, err := lru.New[optionKey, []search.Option](conf.OptionCacheSize)
	if err != nil {
		return nil, fmt.Errorf("%w: Store.OptionCacheSize: %w", configs.ErrConfiguration, err)
	}

	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:    "catalog",
		Timeout: conf.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= conf.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name), zap.Stringer("from", from), zap.Stringer("to", to))
		},
		IsSuccessful: isSuccessful,
	})

	return &GuardedStore{store: store, breaker: breaker, options: options}, nil
}

// isSuccessful counts only store outages as failures. Cancelled requests and rejected input say
// nothing about the health of the database.
func isSuccessful(err error) bool {
	return err == nil || errors.Is(err, context.Canceled) || !errors.Is(err, search.ErrStoreUnavailable)
}

func guarded[T any](g *GuardedStore, call func() (T, error)) (T, error) {
	var zero T

	result, err := g.breaker.Execute(func() (any, error) {
		return call()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return zero, fmt.Errorf("%w: %w", search.ErrStoreUnavailable, err)
	}

	if err != nil {
		return zero, err
	}

	typed, _ := result.(T)

	return typed, nil
}

func (g *GuardedStore) FindCandidates(ctx context.Context, query search.CandidateQuery) ([]*search.Result, error) {
	return guarded(g, func() ([]*search.Result, error) { return g.store.FindCandidates(ctx, query) })
}

func (g *GuardedStore) DistinctValues(ctx context.Context, field search.Field, predicates []search.Predicate) ([]uint, error) {
	return guarded(g, func() ([]uint, error) { return g.store.DistinctValues(ctx, field, predicates) })
}

func (g *GuardedStore) ABVRange(ctx context.Context, predicates []search.Predicate) (*search.Range, error) {
	return guarded(g, func() (*search.Range, error) { return g.store.ABVRange(ctx, predicates) })
}

func (g *GuardedStore) VintageLabels(ctx context.Context, predicates []search.Predicate) ([]string, error) {
	return guarded(g, func() ([]string, error) { return g.store.VintageLabels(ctx, predicates) })
}

func (g *GuardedStore) FacetRows(ctx context.Context, predicates []search.Predicate) ([]*model.Wine, error) {
	return guarded(g, func() ([]*model.Wine, error) { return g.store.FacetRows(ctx, predicates) })
}

// Options serves listings of whole tables, optionally scoped to a country or region, from the
// cache. Listings restricted to ids always go to the store.
func (g *GuardedStore) Options(ctx context.Context, facet search.Facet, scope search.Scope) ([]search.Option, error) {
	if !scope.All {
		return guarded(g, func() ([]search.Option, error) { return g.store.Options(ctx, facet, scope) })
	}

	key := optionKey{facet: facet}
	if scope.CountryID != nil {
		key.countryID = *scope.CountryID
	}

	if scope.RegionID != nil {
		key.regionID = *scope.RegionID
	}

	if options, ok := g.options.Get(key); ok {
		return slices.Clone(options), nil
	}

	options, err := guarded(g, func() ([]search.Option, error) { return g.store.Options(ctx, facet, scope) })
	if err != nil {
		return nil, err
	}

	g.options.Add(key, slices.Clone(options))

	return options, nil
}

func (g *GuardedStore) WineryIDsInRegion(ctx context.Context, regionID uint) ([]uint, error) {
	return guarded(g, func() ([]uint, error) { return g.store.WineryIDsInRegion(ctx, regionID) })
}

func (g *GuardedStore) RegionIDsForWineries(ctx context.Context, wineryIDs []uint) ([]uint, error) {
	return guarded(g, func() ([]uint, error) { return g.store.RegionIDsForWineries(ctx, wineryIDs) })
}

func (g *GuardedStore) GrapesByIDs(ctx context.Context, ids []uint) ([]*model.Grape, error) {
	return guarded(g, func() ([]*model.Grape, error) { return g.store.GrapesByIDs(ctx, ids) })
}

func (g *GuardedStore) DishesByIDs(ctx context.Context, ids []uint) ([]*model.Dish, error) {
	return guarded(g, func() ([]*model.Dish, error) { return g.store.DishesByIDs(ctx, ids) })
}

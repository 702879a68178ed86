package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/suite"
	"go.openly.dev/pointy"
	"go.uber.org/zap/zaptest"

	"droscher.com/WineLovers/configs"
	"droscher.com/WineLovers/pkg/repository"
	"droscher.com/WineLovers/pkg/search"
)

// stubStore answers the two calls the guard tests need and counts them.
type stubStore struct {
	search.Store
	distinctErr   error
	distinctCalls int
	optionCalls   int
}

func (s *stubStore) DistinctValues(context.Context, search.Field, []search.Predicate) ([]uint, error) {
	s.distinctCalls++

	if s.distinctErr != nil {
		return nil, s.distinctErr
	}

	return []uint{1, 2}, nil
}

func (s *stubStore) Options(_ context.Context, facet search.Facet, _ search.Scope) ([]search.Option, error) {
	s.optionCalls++

	return []search.Option{{ID: 1, Name: string(facet)}}, nil
}

type GuardedStoreTestSuite struct {
	suite.Suite
	stub  *stubStore
	store *repository.GuardedStore
}

func TestGuardedStoreTestSuite(t *testing.T) {
	suite.Run(t, new(GuardedStoreTestSuite))
}

func (suite *GuardedStoreTestSuite) SetupTest() {
	var err error

	suite.stub = &stubStore{}
	suite.store, err = repository.NewGuardedStore(suite.stub, configs.Store{
		BreakerFailures: 2,
		BreakerTimeout:  time.Minute,
		OptionCacheSize: 8,
	}, zaptest.NewLogger(suite.T()))
	suite.Require().NoError(err)
}

func (suite *GuardedStoreTestSuite) TestOpensAfterConsecutiveOutages() {
	suite.stub.distinctErr = fmt.Errorf("%w: distinct: %w", search.ErrStoreUnavailable, errors.New("connection refused"))

	for n := 0; n < 2; n++ {
		_, err := suite.store.DistinctValues(context.Background(), search.FieldType, nil)
		suite.Require().ErrorIs(err, search.ErrStoreUnavailable)
	}

	values, err := suite.store.DistinctValues(context.Background(), search.FieldType, nil)
	suite.Nil(values)
	suite.Require().ErrorIs(err, search.ErrStoreUnavailable)
	suite.Require().ErrorIs(err, gobreaker.ErrOpenState)
	suite.Equal(2, suite.stub.distinctCalls)
}

func (suite *GuardedStoreTestSuite) TestCancellationDoesNotTrip() {
	suite.stub.distinctErr = fmt.Errorf("%w: distinct: %w", search.ErrStoreUnavailable, context.Canceled)

	for n := 0; n < 3; n++ {
		_, err := suite.store.DistinctValues(context.Background(), search.FieldType, nil)
		suite.Require().ErrorIs(err, context.Canceled)
	}

	suite.stub.distinctErr = nil

	values, err := suite.store.DistinctValues(context.Background(), search.FieldType, nil)
	suite.Require().NoError(err)
	suite.Equal([]uint{1, 2}, values)
	suite.Equal(4, suite.stub.distinctCalls)
}

func (suite *GuardedStoreTestSuite) TestCachesFullListings() {
	for n := 0; n < 3; n++ {
		options, err := suite.store.Options(context.Background(), search.FacetType, search.Scope{All: true})
		suite.Require().NoError(err)
		suite.Equal([]search.Option{{ID: 1, Name: "type"}}, options)
	}

	suite.Equal(1, suite.stub.optionCalls)

	_, err := suite.store.Options(context.Background(), search.FacetRegion, search.Scope{All: true, CountryID: pointy.Uint(1)})
	suite.Require().NoError(err)
	_, err = suite.store.Options(context.Background(), search.FacetRegion, search.Scope{All: true, CountryID: pointy.Uint(2)})
	suite.Require().NoError(err)
	suite.Equal(3, suite.stub.optionCalls)
}

func (suite *GuardedStoreTestSuite) TestNeverCachesNarrowedOptions() {
	for n := 0; n < 2; n++ {
		_, err := suite.store.Options(context.Background(), search.FacetType, search.Scope{IDs: []uint{1}})
		suite.Require().NoError(err)
	}

	suite.Equal(2, suite.stub.optionCalls)
}

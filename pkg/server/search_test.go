package server_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/bufbuild/connect-go"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.openly.dev/pointy"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"droscher.com/WineLovers/pkg/model"
	"droscher.com/WineLovers/pkg/search"
	"droscher.com/WineLovers/pkg/server"
	apiv1 "droscher.com/WineLovers/pkg/server/api/v1"
)

type searcherMock struct {
	mock.Mock
}

func (m *searcherMock) Search(ctx context.Context, request search.Request) (*search.Response, error) {
	args := m.Called(ctx, request)
	response, _ := args.Get(0).(*search.Response)

	return response, args.Error(1)
}

func (m *searcherMock) LiveSearch(ctx context.Context, query string, limit *int) ([]search.LiveResult, error) {
	args := m.Called(ctx, query, limit)
	results, _ := args.Get(0).([]search.LiveResult)

	return results, args.Error(1)
}

func (m *searcherMock) FilterOptions(ctx context.Context, facetName string, query string, params search.Params) (*search.FacetOptions, error) {
	args := m.Called(ctx, facetName, query, params)
	options, _ := args.Get(0).(*search.FacetOptions)

	return options, args.Error(1)
}

func (m *searcherMock) ListRegions(ctx context.Context, countryID uint) ([]search.Option, error) {
	args := m.Called(ctx, countryID)
	options, _ := args.Get(0).([]search.Option)

	return options, args.Error(1)
}

func (m *searcherMock) ListWineries(ctx context.Context, regionID, countryID *uint) ([]search.Option, error) {
	args := m.Called(ctx, regionID, countryID)
	options, _ := args.Get(0).([]search.Option)

	return options, args.Error(1)
}

type SearchServerTestSuite struct {
	suite.Suite
	engine       *searcherMock
	service      *server.SearchServer
	observedLogs *observer.ObservedLogs
}

func TestSearchServerTestSuite(t *testing.T) {
	suite.Run(t, new(SearchServerTestSuite))
}

func (suite *SearchServerTestSuite) SetupTest() {
	suite.engine = &searcherMock{}
	observedZapCore, observedLogs := observer.New(zap.InfoLevel)
	suite.observedLogs = observedLogs
	suite.service = server.NewSearchServer(suite.engine, zap.New(observedZapCore))
}

func (suite *SearchServerTestSuite) TearDownTest() {
	suite.engine.AssertExpectations(suite.T())
}

func (suite *SearchServerTestSuite) TestSearch_ConvertsRequestAndResponse() {
	ctx := context.Background()
	wine := &model.Wine{
		Model:        gorm.Model{ID: 100001},
		Name:         "Cabernet Reserve",
		Type:         model.WineType{Name: "Red"},
		Country:      model.Country{Name: "France"},
		Acidity:      model.WineAcidity{Name: "High"},
		ABV:          13.5,
		WineryID:     pointy.Uint(5001),
		Vintages:     []string{"2015"},
		Grapes:       []model.Grape{{Model: gorm.Model{ID: 1}, Name: "Cabernet Sauvignon"}},
		PairedDishes: []model.Dish{},
	}

	suite.engine.On("Search", ctx, search.Request{
		Query:  "cabernet",
		Params: search.Params{CountryID: pointy.Uint(1), MinVintage: pointy.Int(2010)},
		Sort:   search.SortRatingDesc,
		Limit:  pointy.Int(10),
	}).Return(&search.Response{
		Results: []*search.Result{{Wine: wine, Rating: pointy.Float64(3.5), Score: 1}},
		Facets: []*search.FacetOptions{
			{Facet: search.FacetCountry, Options: []search.Option{{ID: 1, Name: "France", Code: "FR"}}},
			{Facet: search.FacetABV, Range: &search.Range{Min: 12, Max: 14.5}},
			{Facet: search.FacetVintage},
		},
	}, nil)

	response, err := suite.service.Search(ctx, connect.NewRequest(&apiv1.SearchRequest{
		Query:   "cabernet",
		Filters: &apiv1.Filters{CountryID: pointy.Uint64(1), MinVintage: pointy.Int32(2010)},
		SortBy:  "rating_desc",
		Limit:   pointy.Int32(10),
	}))
	suite.Require().NoError(err)

	suite.Require().Len(response.Msg.Results, 1)
	result := response.Msg.Results[0]
	suite.Equal(uint64(100001), result.ID)
	suite.Equal("Red", result.Type)
	suite.Equal("France", result.Country)
	suite.Equal(pointy.Uint64(5001), result.WineryID)
	suite.Equal([]*apiv1.Reference{{ID: 1, Name: "Cabernet Sauvignon"}}, result.Grapes)
	suite.NotNil(result.PairWith)
	suite.Equal(pointy.Float64(3.5), result.Rating)
	suite.Equal(pointy.Float64(1), result.Score)

	suite.Require().Len(response.Msg.Facets, 3)
	suite.Equal([]*apiv1.Option{{ID: 1, Name: "France", Code: "FR"}}, response.Msg.Facets[0].Options)
	suite.Equal(pointy.Float64(12), response.Msg.Facets[1].Min)
	suite.Equal(pointy.Float64(14.5), response.Msg.Facets[1].Max)
	suite.Nil(response.Msg.Facets[2].Min)
}

func (suite *SearchServerTestSuite) TestSearch_OmitsScoreWithoutQuery() {
	ctx := context.Background()
	wine := &model.Wine{Model: gorm.Model{ID: 100004}, Name: "Napa Chardonnay"}

	suite.engine.On("Search", ctx, search.Request{}).
		Return(&search.Response{Results: []*search.Result{{Wine: wine}}}, nil)

	response, err := suite.service.Search(ctx, connect.NewRequest(&apiv1.SearchRequest{}))
	suite.Require().NoError(err)
	suite.Require().Len(response.Msg.Results, 1)
	suite.Nil(response.Msg.Results[0].Score)
	suite.Nil(response.Msg.Results[0].Rating)
}

func (suite *SearchServerTestSuite) TestSearch_OmitsScoreForBlankQuery() {
	ctx := context.Background()
	wine := &model.Wine{Model: gorm.Model{ID: 100004}, Name: "Napa Chardonnay"}

	suite.engine.On("Search", ctx, search.Request{Query: "   "}).
		Return(&search.Response{Results: []*search.Result{{Wine: wine}}}, nil)

	response, err := suite.service.Search(ctx, connect.NewRequest(&apiv1.SearchRequest{Query: "   "}))
	suite.Require().NoError(err)
	suite.Require().Len(response.Msg.Results, 1)
	suite.Nil(response.Msg.Results[0].Score)
}

func (suite *SearchServerTestSuite) TestSearch_RejectsPriceSort() {
	ctx := context.Background()

	suite.engine.On("Search", ctx, search.Request{Sort: search.SortPriceAsc}).
		Return(nil, fmt.Errorf("%w: %s", search.ErrUnsupportedSort, search.SortPriceAsc))

	response, err := suite.service.Search(ctx, connect.NewRequest(&apiv1.SearchRequest{SortBy: "price_asc"}))
	suite.Nil(response)
	suite.Equal(connect.CodeInvalidArgument, connect.CodeOf(err))
	suite.Require().ErrorIs(err, search.ErrUnsupportedSort)
	suite.Equal(1, suite.observedLogs.FilterMessage("rejected request").Len())
}

func (suite *SearchServerTestSuite) TestSearch_MapsEngineErrors() {
	tests := []struct {
		err  error
		code connect.Code
	}{
		{fmt.Errorf("%w: find candidates: %w", search.ErrStoreUnavailable, errors.New("connection refused")), connect.CodeUnavailable},
		{fmt.Errorf("%w: find candidates: %w", search.ErrStoreUnavailable, context.DeadlineExceeded), connect.CodeDeadlineExceeded},
		{context.Canceled, connect.CodeCanceled},
		{errors.New("boom"), connect.CodeInternal},
	}

	for _, test := range tests {
		suite.Run(test.code.String(), func() {
			engine := &searcherMock{}
			engine.On("Search", mock.Anything, mock.Anything).Return(nil, test.err)
			service := server.NewSearchServer(engine, zap.NewNop())

			_, err := service.Search(context.Background(), connect.NewRequest(&apiv1.SearchRequest{}))
			suite.Equal(test.code, connect.CodeOf(err))
			suite.Require().ErrorIs(err, test.err)
		})
	}
}

func (suite *SearchServerTestSuite) TestSearch_RejectsUnknownSort() {
	_, err := suite.service.Search(context.Background(), connect.NewRequest(&apiv1.SearchRequest{SortBy: "vintage"}))
	suite.Equal(connect.CodeInvalidArgument, connect.CodeOf(err))
}

func (suite *SearchServerTestSuite) TestLiveSearch() {
	ctx := context.Background()

	suite.engine.On("LiveSearch", ctx, "cab", pointy.Int(3)).
		Return([]search.LiveResult{{ID: 100001, Name: "Cabernet Reserve", TypeName: "Red"}}, nil)

	response, err := suite.service.LiveSearch(ctx, connect.NewRequest(&apiv1.LiveSearchRequest{Query: "cab", Limit: pointy.Int32(3)}))
	suite.Require().NoError(err)
	suite.Equal([]*apiv1.LiveResult{{ID: 100001, Name: "Cabernet Reserve", Type: "Red"}}, response.Msg.Results)
}

func (suite *SearchServerTestSuite) TestGetFilterOptions() {
	ctx := context.Background()

	suite.engine.On("FilterOptions", ctx, "region", "", search.Params{CountryID: pointy.Uint(2)}).
		Return(&search.FacetOptions{Facet: search.FacetRegion, Options: []search.Option{{ID: 2001, Name: "Toscana", ParentID: 2}}}, nil)

	response, err := suite.service.GetFilterOptions(ctx, connect.NewRequest(&apiv1.GetFilterOptionsRequest{
		Facet:   "region",
		Filters: &apiv1.Filters{CountryID: pointy.Uint64(2)},
	}))
	suite.Require().NoError(err)
	suite.Equal("region", response.Msg.Facet.Facet)
	suite.Equal([]*apiv1.Option{{ID: 2001, Name: "Toscana", ParentID: pointy.Uint64(2)}}, response.Msg.Facet.Options)
}

func (suite *SearchServerTestSuite) TestGetFilterOptions_UnknownFacet() {
	ctx := context.Background()

	suite.engine.On("FilterOptions", ctx, "colour", "", search.Params{}).
		Return(nil, fmt.Errorf("%w: %q", search.ErrUnknownFacet, "colour"))

	_, err := suite.service.GetFilterOptions(ctx, connect.NewRequest(&apiv1.GetFilterOptionsRequest{Facet: "colour"}))
	suite.Equal(connect.CodeInvalidArgument, connect.CodeOf(err))
}

func (suite *SearchServerTestSuite) TestListRegions() {
	ctx := context.Background()

	suite.engine.On("ListRegions", ctx, uint(2)).Return([]search.Option{{ID: 2002, Name: "Piemonte", ParentID: 2}}, nil)

	response, err := suite.service.ListRegions(ctx, connect.NewRequest(&apiv1.ListRegionsRequest{CountryID: 2}))
	suite.Require().NoError(err)
	suite.Len(response.Msg.Regions, 1)

	_, err = suite.service.ListRegions(ctx, connect.NewRequest(&apiv1.ListRegionsRequest{}))
	suite.Equal(connect.CodeInvalidArgument, connect.CodeOf(err))
	suite.Require().ErrorIs(err, server.ErrInvalidInput)
}

func (suite *SearchServerTestSuite) TestListWineries() {
	ctx := context.Background()

	suite.engine.On("ListWineries", ctx, (*uint)(nil), pointy.Uint(1)).
		Return([]search.Option{{ID: 5001, Name: "Chateau Alpha", ParentID: 1001}}, nil)

	response, err := suite.service.ListWineries(ctx, connect.NewRequest(&apiv1.ListWineriesRequest{CountryID: pointy.Uint64(1)}))
	suite.Require().NoError(err)
	suite.Equal([]*apiv1.Option{{ID: 5001, Name: "Chateau Alpha", ParentID: pointy.Uint64(1001)}}, response.Msg.Wineries)

	_, err = suite.service.ListWineries(ctx, connect.NewRequest(&apiv1.ListWineriesRequest{}))
	suite.Equal(connect.CodeInvalidArgument, connect.CodeOf(err))
}

package server

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bufbuild/connect-go"
	"go.uber.org/zap"

	"droscher.com/WineLovers/pkg/search"
	api "droscher.com/WineLovers/pkg/server/api/v1"
	"droscher.com/WineLovers/pkg/server/api/v1/apiv1connect"
)

var ErrInvalidInput = errors.New("invalid input")

// Searcher is the part of the search engine the RPC layer depends on.
type Searcher interface {
	Search(ctx context.Context, request search.Request) (*search.Response, error)
	LiveSearch(ctx context.Context, query string, limit *int) ([]search.LiveResult, error)
	FilterOptions(ctx context.Context, facetName string, query string, params search.Params) (*search.FacetOptions, error)
	ListRegions(ctx context.Context, countryID uint) ([]search.Option, error)
	ListWineries(ctx context.Context, regionID, countryID *uint) ([]search.Option, error)
}

type SearchServer struct {
	apiv1connect.UnimplementedSearchServiceHandler
	engine Searcher
	logger *zap.Logger
}

func NewSearchServer(engine Searcher, logger *zap.Logger) *SearchServer {
	return &SearchServer{engine: engine, logger: logger}
}

func (s *SearchServer) Search(ctx context.Context, request *connect.Request[api.SearchRequest]) (*connect.Response[api.SearchResponse], error) {
	sort, err := search.ParseSort(request.Msg.SortBy)
	if err != nil {
		return nil, s.connectError(ctx, err)
	}

	response, err := s.engine.Search(ctx, search.Request{
		Query:  request.Msg.Query,
		Params: ParamsFromFilters(request.Msg.GetFilters()),
		Sort:   sort,
		Limit:  toInt(request.Msg.Limit),
	})
	if err != nil {
		return nil, s.connectError(ctx, err)
	}

	scored := strings.TrimSpace(request.Msg.Query) != ""

	return connect.NewResponse(&api.SearchResponse{
		Results: WinesFromResults(response.Results, scored),
		Facets:  FacetsFromOptions(response.Facets),
	}), nil
}

func (s *SearchServer) LiveSearch(ctx context.Context, request *connect.Request[api.LiveSearchRequest]) (*connect.Response[api.LiveSearchResponse], error) {
	results, err := s.engine.LiveSearch(ctx, request.Msg.Query, toInt(request.Msg.Limit))
	if err != nil {
		return nil, s.connectError(ctx, err)
	}

	return connect.NewResponse(&api.LiveSearchResponse{Results: LiveResultsFromSearch(results)}), nil
}

func (s *SearchServer) GetFilterOptions(ctx context.Context, request *connect.Request[api.GetFilterOptionsRequest]) (*connect.Response[api.GetFilterOptionsResponse], error) {
	options, err := s.engine.FilterOptions(ctx, request.Msg.Facet, request.Msg.Query, ParamsFromFilters(request.Msg.GetFilters()))
	if err != nil {
		return nil, s.connectError(ctx, err)
	}

	return connect.NewResponse(&api.GetFilterOptionsResponse{Facet: FacetFromOptions(options)}), nil
}

func (s *SearchServer) ListRegions(ctx context.Context, request *connect.Request[api.ListRegionsRequest]) (*connect.Response[api.ListRegionsResponse], error) {
	if request.Msg.CountryID == 0 {
		return nil, s.connectError(ctx, fmt.Errorf("%w: countryId is required", ErrInvalidInput))
	}

	regions, err := s.engine.ListRegions(ctx, uint(request.Msg.CountryID))
	if err != nil {
		return nil, s.connectError(ctx, err)
	}

	return connect.NewResponse(&api.ListRegionsResponse{Regions: OptionsFromModel(regions)}), nil
}

func (s *SearchServer) ListWineries(ctx context.Context, request *connect.Request[api.ListWineriesRequest]) (*connect.Response[api.ListWineriesResponse], error) {
	if request.Msg.RegionID == nil && request.Msg.CountryID == nil {
		return nil, s.connectError(ctx, fmt.Errorf("%w: regionId or countryId is required", ErrInvalidInput))
	}

	wineries, err := s.engine.ListWineries(ctx, toUint(request.Msg.RegionID), toUint(request.Msg.CountryID))
	if err != nil {
		return nil, s.connectError(ctx, err)
	}

	return connect.NewResponse(&api.ListWineriesResponse{Wineries: OptionsFromModel(wineries)}), nil
}

// connectError maps engine errors onto connect codes. Client mistakes are logged at Info, the
// rest at Error.
func (s *SearchServer) connectError(ctx context.Context, err error) error {
	logger := LoggerFrom(ctx, s.logger)

	var code connect.Code

	switch {
	case errors.Is(err, search.ErrUnknownFacet), errors.Is(err, search.ErrUnsupportedSort), errors.Is(err, ErrInvalidInput):
		logger.Info("rejected request", zap.Error(err))

		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, context.Canceled):
		code = connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	case errors.Is(err, search.ErrStoreUnavailable):
		code = connect.CodeUnavailable
	default:
		code = connect.CodeInternal
	}

	logger.Error("request failed", zap.Stringer("code", code), zap.Error(err))

	return connect.NewError(code, err)
}

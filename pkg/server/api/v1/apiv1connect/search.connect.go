// Package apiv1connect binds the search API messages to connect unary handlers and clients.
package apiv1connect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/bufbuild/connect-go"

	apiv1 "droscher.com/WineLovers/pkg/server/api/v1"
)

const SearchServiceName = "winelovers.v1.SearchService"

const (
	SearchServiceSearchProcedure           = "/winelovers.v1.SearchService/Search"
	SearchServiceLiveSearchProcedure       = "/winelovers.v1.SearchService/LiveSearch"
	SearchServiceGetFilterOptionsProcedure = "/winelovers.v1.SearchService/GetFilterOptions"
	SearchServiceListRegionsProcedure      = "/winelovers.v1.SearchService/ListRegions"
	SearchServiceListWineriesProcedure     = "/winelovers.v1.SearchService/ListWineries"
)

type SearchServiceHandler interface {
	Search(context.Context, *connect.Request[apiv1.SearchRequest]) (*connect.Response[apiv1.SearchResponse], error)
	LiveSearch(context.Context, *connect.Request[apiv1.LiveSearchRequest]) (*connect.Response[apiv1.LiveSearchResponse], error)
	GetFilterOptions(context.Context, *connect.Request[apiv1.GetFilterOptionsRequest]) (*connect.Response[apiv1.GetFilterOptionsResponse], error)
	ListRegions(context.Context, *connect.Request[apiv1.ListRegionsRequest]) (*connect.Response[apiv1.ListRegionsResponse], error)
	ListWineries(context.Context, *connect.Request[apiv1.ListWineriesRequest]) (*connect.Response[apiv1.ListWineriesResponse], error)
}

// NewSearchServiceHandler builds an HTTP handler serving every procedure of the search service
// and returns the path to mount it on.
func NewSearchServiceHandler(svc SearchServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(SearchServiceSearchProcedure, connect.NewUnaryHandler(SearchServiceSearchProcedure, svc.Search, opts...))
	mux.Handle(SearchServiceLiveSearchProcedure, connect.NewUnaryHandler(SearchServiceLiveSearchProcedure, svc.LiveSearch, opts...))
	mux.Handle(SearchServiceGetFilterOptionsProcedure,
		connect.NewUnaryHandler(SearchServiceGetFilterOptionsProcedure, svc.GetFilterOptions, opts...))
	mux.Handle(SearchServiceListRegionsProcedure, connect.NewUnaryHandler(SearchServiceListRegionsProcedure, svc.ListRegions, opts...))
	mux.Handle(SearchServiceListWineriesProcedure, connect.NewUnaryHandler(SearchServiceListWineriesProcedure, svc.ListWineries, opts...))

	return "/" + SearchServiceName + "/", mux
}

type UnimplementedSearchServiceHandler struct{}

func (UnimplementedSearchServiceHandler) Search(context.Context, *connect.Request[apiv1.SearchRequest]) (*connect.Response[apiv1.SearchResponse], error) {
	return nil, unimplemented(SearchServiceSearchProcedure)
}

func (UnimplementedSearchServiceHandler) LiveSearch(context.Context, *connect.Request[apiv1.LiveSearchRequest]) (*connect.Response[apiv1.LiveSearchResponse], error) {
	return nil, unimplemented(SearchServiceLiveSearchProcedure)
}

func (UnimplementedSearchServiceHandler) GetFilterOptions(context.Context, *connect.Request[apiv1.GetFilterOptionsRequest]) (*connect.Response[apiv1.GetFilterOptionsResponse], error) {
	return nil, unimplemented(SearchServiceGetFilterOptionsProcedure)
}

func (UnimplementedSearchServiceHandler) ListRegions(context.Context, *connect.Request[apiv1.ListRegionsRequest]) (*connect.Response[apiv1.ListRegionsResponse], error) {
	return nil, unimplemented(SearchServiceListRegionsProcedure)
}

func (UnimplementedSearchServiceHandler) ListWineries(context.Context, *connect.Request[apiv1.ListWineriesRequest]) (*connect.Response[apiv1.ListWineriesResponse], error) {
	return nil, unimplemented(SearchServiceListWineriesProcedure)
}

func unimplemented(procedure string) error {
	name := strings.TrimPrefix(procedure, "/")

	return connect.NewError(connect.CodeUnimplemented, errors.New(name+" is not implemented"))
}

type SearchServiceClient struct {
	search           *connect.Client[apiv1.SearchRequest, apiv1.SearchResponse]
	liveSearch       *connect.Client[apiv1.LiveSearchRequest, apiv1.LiveSearchResponse]
	getFilterOptions *connect.Client[apiv1.GetFilterOptionsRequest, apiv1.GetFilterOptionsResponse]
	listRegions      *connect.Client[apiv1.ListRegionsRequest, apiv1.ListRegionsResponse]
	listWineries     *connect.Client[apiv1.ListWineriesRequest, apiv1.ListWineriesResponse]
}

// NewSearchServiceClient builds a client for the search service at baseURL. Callers pass the
// JSON codec through opts.
func NewSearchServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SearchServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")

	return &SearchServiceClient{
		search:           connect.NewClient[apiv1.SearchRequest, apiv1.SearchResponse](httpClient, baseURL+SearchServiceSearchProcedure, opts...),
		liveSearch:       connect.NewClient[apiv1.LiveSearchRequest, apiv1.LiveSearchResponse](httpClient, baseURL+SearchServiceLiveSearchProcedure, opts...),
		getFilterOptions: connect.NewClient[apiv1.GetFilterOptionsRequest, apiv1.GetFilterOptionsResponse](httpClient, baseURL+SearchServiceGetFilterOptionsProcedure, opts...),
		listRegions:      connect.NewClient[apiv1.ListRegionsRequest, apiv1.ListRegionsResponse](httpClient, baseURL+SearchServiceListRegionsProcedure, opts...),
		listWineries:     connect.NewClient[apiv1.ListWineriesRequest, apiv1.ListWineriesResponse](httpClient, baseURL+SearchServiceListWineriesProcedure, opts...),
	}
}

func (c *SearchServiceClient) Search(ctx context.Context, request *connect.Request[apiv1.SearchRequest]) (*connect.Response[apiv1.SearchResponse], error) {
	return c.search.CallUnary(ctx, request)
}

func (c *SearchServiceClient) LiveSearch(ctx context.Context, request *connect.Request[apiv1.LiveSearchRequest]) (*connect.Response[apiv1.LiveSearchResponse], error) {
	return c.liveSearch.CallUnary(ctx, request)
}

func (c *SearchServiceClient) GetFilterOptions(ctx context.Context, request *connect.Request[apiv1.GetFilterOptionsRequest]) (*connect.Response[apiv1.GetFilterOptionsResponse], error) {
	return c.getFilterOptions.CallUnary(ctx, request)
}

func (c *SearchServiceClient) ListRegions(ctx context.Context, request *connect.Request[apiv1.ListRegionsRequest]) (*connect.Response[apiv1.ListRegionsResponse], error) {
	return c.listRegions.CallUnary(ctx, request)
}

func (c *SearchServiceClient) ListWineries(ctx context.Context, request *connect.Request[apiv1.ListWineriesRequest]) (*connect.Response[apiv1.ListWineriesResponse], error) {
	return c.listWineries.CallUnary(ctx, request)
}

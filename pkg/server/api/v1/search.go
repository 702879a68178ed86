// Package apiv1 holds the messages of the wine search API. They travel as JSON.
package apiv1

// Filters are the optional facet constraints of a search. Unset fields leave the facet
// unconstrained.
type Filters struct {
	TypeID     *uint64  `json:"typeId,omitempty"`
	CountryID  *uint64  `json:"countryId,omitempty"`
	RegionID   *uint64  `json:"regionId,omitempty"`
	GrapeID    *uint64  `json:"grapeId,omitempty"`
	WineryID   *uint64  `json:"wineryId,omitempty"`
	AcidityID  *uint64  `json:"acidityId,omitempty"`
	MinAbv     *float64 `json:"minAbv,omitempty"`
	MaxAbv     *float64 `json:"maxAbv,omitempty"`
	MinVintage *int32   `json:"minVintage,omitempty"`
	MaxVintage *int32   `json:"maxVintage,omitempty"`
}

type SearchRequest struct {
	Query   string   `json:"query,omitempty"`
	Filters *Filters `json:"filters,omitempty"`
	// SortBy is one of relevance, name_asc, name_desc, rating_desc, rating_asc. Empty means
	// relevance.
	SortBy string `json:"sortBy,omitempty"`
	Limit  *int32 `json:"limit,omitempty"`
}

func (r *SearchRequest) GetFilters() *Filters {
	if r == nil || r.Filters == nil {
		return &Filters{}
	}

	return r.Filters
}

type SearchResponse struct {
	Results []*Wine  `json:"results"`
	Facets  []*Facet `json:"facets"`
}

type Reference struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type Wine struct {
	ID          uint64       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Type        string       `json:"type"`
	Country     string       `json:"country"`
	Acidity     string       `json:"acidity"`
	Abv         float64      `json:"abv"`
	WineryID    *uint64      `json:"wineryId,omitempty"`
	Vintages    []string     `json:"vintages"`
	Grapes      []*Reference `json:"grapes"`
	PairWith    []*Reference `json:"pairWith"`
	Rating      *float64     `json:"rating,omitempty"`
	Score       *float64     `json:"score,omitempty"`
}

// Facet carries the options of a discrete facet, or Min and Max for a range facet.
type Facet struct {
	Facet   string    `json:"facet"`
	Options []*Option `json:"options,omitempty"`
	Min     *float64  `json:"min,omitempty"`
	Max     *float64  `json:"max,omitempty"`
}

type Option struct {
	ID       uint64  `json:"id"`
	Name     string  `json:"name"`
	Code     string  `json:"code,omitempty"`
	ParentID *uint64 `json:"parentId,omitempty"`
}

type LiveSearchRequest struct {
	Query string `json:"query"`
	Limit *int32 `json:"limit,omitempty"`
}

type LiveSearchResponse struct {
	Results []*LiveResult `json:"results"`
}

type LiveResult struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

type GetFilterOptionsRequest struct {
	Facet   string   `json:"facet"`
	Query   string   `json:"query,omitempty"`
	Filters *Filters `json:"filters,omitempty"`
}

func (r *GetFilterOptionsRequest) GetFilters() *Filters {
	if r == nil || r.Filters == nil {
		return &Filters{}
	}

	return r.Filters
}

type GetFilterOptionsResponse struct {
	Facet *Facet `json:"facet"`
}

type ListRegionsRequest struct {
	CountryID uint64 `json:"countryId"`
}

type ListRegionsResponse struct {
	Regions []*Option `json:"regions"`
}

// ListWineriesRequest lists the wineries of a region, or of a country when RegionID is unset.
type ListWineriesRequest struct {
	RegionID  *uint64 `json:"regionId,omitempty"`
	CountryID *uint64 `json:"countryId,omitempty"`
}

type ListWineriesResponse struct {
	Wineries []*Option `json:"wineries"`
}

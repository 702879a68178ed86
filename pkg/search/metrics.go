package search

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	pathRanked   = "ranked"
	pathFiltered = "filtered"
	pathLive     = "live"
)

var (
	// searchDuration measures a whole search including facet resolution.
	// Labels:
	//   - path: "ranked" (free-text query), "filtered" (filters only), "live" (typeahead)
	searchDuration = promauto.NewHistogramVec( //nolint:gochecknoglobals // prometheus collectors
		prometheus.HistogramOpts{
			Name:    "winelovers_search_duration_seconds",
			Help:    "Duration of wine searches in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"path"},
	)

	searchResults = promauto.NewHistogram( //nolint:gochecknoglobals // prometheus collectors
		prometheus.HistogramOpts{
			Name:    "winelovers_search_results",
			Help:    "Number of results returned per search",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		},
	)

	// facetResolutions counts facet resolutions.
	// Labels:
	//   - facet: facet key
	//   - outcome: "full" (no filters), "narrowed", "empty", "error"
	facetResolutions = promauto.NewCounterVec( //nolint:gochecknoglobals // prometheus collectors
		prometheus.CounterOpts{
			Name: "winelovers_facet_resolutions_total",
			Help: "Total number of facet option resolutions",
		},
		[]string{"facet", "outcome"},
	)
)

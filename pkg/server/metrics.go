package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// rpcRequests counts handled RPCs.
// Labels:
//   - procedure: full connect procedure name
//   - code: "ok" or the connect error code
var rpcRequests = promauto.NewCounterVec( //nolint:gochecknoglobals // prometheus collectors
	prometheus.CounterOpts{
		Name: "winelovers_rpc_requests_total",
		Help: "Total number of handled RPC requests",
	},
	[]string{"procedure", "code"},
)

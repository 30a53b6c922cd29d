// Package metrics defines Prometheus metrics for foray.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foray_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foray_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foray_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	EmbedQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "foray_embed_queue_depth",
			Help: "Current embedding queue depth",
		},
	)

	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "foray_websocket_connections",
			Help: "Active WebSocket connections",
		},
	)

	NodeCount = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "foray_nodes_total",
			Help: "Total interest-graph node count",
		},
	)

	DiscoveryCycles = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "foray_discovery_cycles_total",
			Help: "Total discovery cycles run",
		},
	)

	ReactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foray_reactions_total",
			Help: "Total reactions applied, by direction",
		},
		[]string{"reaction"},
	)

	InterestRemovals = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "foray_interest_removals_total",
			Help: "Total interest removals",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		EmbedQueueDepth, WSConnections, NodeCount,
		DiscoveryCycles, ReactionsTotal, InterestRemovals,
	)
}

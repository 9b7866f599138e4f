// Package metrics declares the Prometheus collectors of the service.
// Collectors are registered on the default registry through promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts requests by method, route and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proteograph_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration measures server response time.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "proteograph_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	// QueryDuration measures graph query round trips per search kind.
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "proteograph_graph_query_duration_seconds",
			Help:    "Duration of graph queries in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"kind"},
	)

	// QueryErrorsTotal counts failed graph queries by kind and error class.
	QueryErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proteograph_graph_query_errors_total",
			Help: "Total number of failed graph queries",
		},
		[]string{"kind", "class"},
	)

	// ResponseBytes tracks encoded response sizes, split by compression.
	ResponseBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "proteograph_http_response_bytes",
			Help:    "Size of encoded response bodies in bytes",
			Buckets: prometheus.ExponentialBuckets(256, 4, 10),
		},
		[]string{"encoding"},
	)
)

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyadmin_http_requests_total",
			Help: "Number of HTTP requests handled by the panel.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storyadmin_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BackendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyadmin_backend_requests_total",
			Help: "Number of requests issued to the content backend.",
		},
		[]string{"operation", "outcome"},
	)

	OpsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storyadmin_ops_in_flight",
			Help: "Number of operations currently driving the loading overlay.",
		},
	)
)

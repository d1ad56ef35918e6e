package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(httpRequestsTotal, httpRequestDurationMs) }

var httpRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests served, labeled by route and status code.",
	},
	[]string{"route", "code"},
)

var httpRequestDurationMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_ms",
		Help:    "HTTP request handling duration in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
	},
	[]string{"route"},
)

func ObserveHTTPRequest(route string, code int, durationMs int) {
	httpRequestsTotal.WithLabelValues(norm(route), strconv.Itoa(code)).Inc()
	httpRequestDurationMs.WithLabelValues(norm(route)).Observe(float64(durationMs))
}

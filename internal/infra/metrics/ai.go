package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		aiCallsLatencyMs,
		aiContentTokens,
		aiVerdictsTotal,
	)
}

var (
	aiCallsLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_calls_latency_ms",
			Help:    "LLM call latency distribution in milliseconds.",
			Buckets: []float64{50, 100, 200, 400, 800, 1600, 3000, 5000, 10000, 20000},
		},
		[]string{"provider", "model", "step", "success"}, // step: 'extract', 'verify'
	)

	aiContentTokens = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_content_tokens",
			Help:    "Token count of page content sent for analysis (post-truncation).",
			Buckets: []float64{250, 500, 1000, 2000, 4000, 6000, 8000},
		},
		[]string{"model"},
	)

	aiVerdictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_verdicts_total",
			Help: "Verdicts produced by claim verification, labeled by verdict.",
		},
		[]string{"verdict"}, // 'true', 'false', 'somewhat true', 'invalid'
	)
)

func ObserveAICall(provider, model, step string, latencyMs int, success bool) {
	aiCallsLatencyMs.
		WithLabelValues(norm(provider), norm(model), norm(step), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}

func ObserveContentTokens(model string, tokens int) {
	aiContentTokens.WithLabelValues(norm(model)).Observe(float64(tokens))
}

func IncVerdict(verdict string) {
	aiVerdictsTotal.WithLabelValues(norm(verdict)).Inc()
}

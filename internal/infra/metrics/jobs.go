package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(factChecksTotal, factCheckDurationMs, factFindingsPerRun) }

var factChecksTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fact_checks_total",
		Help: "Total number of fact-check runs, labeled by outcome.",
	},
	[]string{"outcome"}, // 'completed', 'failed'
)

var factCheckDurationMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "fact_check_duration_ms",
		Help:    "End-to-end pipeline run duration in milliseconds.",
		Buckets: []float64{250, 500, 1000, 2500, 5000, 10000, 30000, 60000, 120000},
	},
	[]string{"outcome"},
)

var factFindingsPerRun = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "fact_findings_per_run",
		Help:    "Number of checked facts produced by one run.",
		Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
	},
)

func ObserveFactCheck(outcome string, durationMs int, findings int) {
	factChecksTotal.WithLabelValues(norm(outcome)).Inc()
	factCheckDurationMs.WithLabelValues(norm(outcome)).Observe(float64(durationMs))
	if outcome == "completed" {
		factFindingsPerRun.Observe(float64(findings))
	}
}

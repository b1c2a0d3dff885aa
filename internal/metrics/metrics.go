// Package metrics exposes Prometheus collectors for pipeline stage latency
// and Model Client call accounting. Grounded on the teacher's
// cmd/metrics-server/main.go.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	StageLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "legalrisk",
		Name:      "stage_latency_seconds",
		Help:      "Latency of each pipeline stage.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"stage"})

	ModelClientCallsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "legalrisk",
		Name:      "model_client_calls_total",
		Help:      "Total Model Client calls by provider and outcome.",
	}, []string{"provider", "outcome"})

	JobsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "legalrisk",
		Name:      "jobs_in_flight",
		Help:      "Number of analyses currently processing.",
	})

	RiskyClausesFlagged = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "legalrisk",
		Name:      "risky_clauses_flagged_total",
		Help:      "Total clauses flagged as risky across all analyses.",
	})
)

// MustRegister registers all collectors with the given registerer.
func MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(StageLatencySeconds, ModelClientCallsTotal, JobsInFlight, RiskyClausesFlagged)
}

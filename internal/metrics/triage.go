package metrics

import "github.com/prometheus/client_golang/prometheus"

// Triage pipeline Prometheus metrics.
var (
	TriageStateTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medtriage",
			Name:      "triage_state_transitions_total",
			Help:      "Triage pipeline state transitions",
		},
		[]string{"from", "to"},
	)

	TriageOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medtriage",
			Name:      "triage_outcomes_total",
			Help:      "Triage reports by evidence outcome",
		},
		[]string{"outcome"},
	)

	TriageCategoriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medtriage",
			Name:      "triage_categories_total",
			Help:      "Triage reports by category and urgency",
		},
		[]string{"category", "urgency"},
	)

	RetrievalDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "medtriage",
			Name:      "retrieval_duration_seconds",
			Help:      "Evidence retrieval duration in seconds",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"status"},
	)

	StorageRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medtriage",
			Name:      "storage_retries_total",
			Help:      "Storage call retries",
		},
		[]string{"op"},
	)

	NarrativeRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "medtriage",
			Name:      "narrative_requests_total",
			Help:      "Narrative generation attempts",
		},
		[]string{"status"}, // "ok" / "error" / "rate_limited"
	)
)

var triageMetricsRegistered bool

// RegisterTriageMetrics registers triage pipeline metrics. Must be called once from main.
func RegisterTriageMetrics() {
	if triageMetricsRegistered {
		return
	}
	prometheus.MustRegister(TriageStateTransitionsTotal)
	prometheus.MustRegister(TriageOutcomesTotal)
	prometheus.MustRegister(TriageCategoriesTotal)
	prometheus.MustRegister(RetrievalDuration)
	prometheus.MustRegister(StorageRetriesTotal)
	prometheus.MustRegister(NarrativeRequestsTotal)
	triageMetricsRegistered = true
}

package metrics

import "github.com/prometheus/client_golang/prometheus"

// Bot and search Prometheus metrics.
var (
	SearchRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "phrasehound",
			Name:      "search_runs_total",
			Help:      "Total number of operator search runs",
		},
		[]string{"status"},
	)

	SearchRunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "phrasehound",
			Name:      "search_run_duration_seconds",
			Help:      "Full search run duration in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "phrasehound",
			Name:      "provider_requests_total",
			Help:      "Total content search API requests",
		},
		[]string{"status"},
	)

	ProviderRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "phrasehound",
			Name:      "provider_request_duration_seconds",
			Help:      "Content search API request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	ProviderPagesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "phrasehound",
			Name:      "provider_pages_total",
			Help:      "Total result pages fetched from the content search API",
		},
	)

	VerdictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "phrasehound",
			Name:      "verdicts_total",
			Help:      "Match verdicts produced, by kind",
		},
		[]string{"kind"},
	)

	FlowTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "phrasehound",
			Name:      "flow_transitions_total",
			Help:      "Conversation state transitions, by target state",
		},
		[]string{"state"},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "phrasehound",
			Name:      "active_sessions",
			Help:      "Chats with a conversation flow in progress",
		},
	)
)

var botMetricsRegistered bool

// RegisterBotMetrics registers Prometheus bot metrics. Must be called once from main.
func RegisterBotMetrics() {
	if botMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRunsTotal)
	prometheus.MustRegister(SearchRunDuration)
	prometheus.MustRegister(ProviderRequestsTotal)
	prometheus.MustRegister(ProviderRequestDuration)
	prometheus.MustRegister(ProviderPagesTotal)
	prometheus.MustRegister(VerdictsTotal)
	prometheus.MustRegister(FlowTransitionsTotal)
	prometheus.MustRegister(ActiveSessions)
	botMetricsRegistered = true
}

package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Ask outcome labels. "executed" means SQL was extracted and re-executed
// cleanly; the other three map to the remaining terminal states of an
// ask.
const (
	AskOutcomeAgentFailed     = "agent_failed"
	AskOutcomeNoSQL           = "no_sql"
	AskOutcomeExecuted        = "executed"
	AskOutcomeExecutionFailed = "execution_failed"
)

var (
	asksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sqlsage_asks_total",
			Help: "Total number of processed questions by terminal outcome.",
		},
		[]string{"outcome"},
	)
	askDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sqlsage_ask_duration_seconds",
			Help:    "End-to-end question processing latency, agent call included.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		},
	)
	agentIterations = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sqlsage_agent_iterations",
			Help:    "Model round trips used per answered question.",
			Buckets: []float64{1, 2, 3, 4, 5, 8, 10},
		},
	)
	resultRows = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sqlsage_result_rows",
			Help:    "Rows returned by successfully re-executed statements.",
			Buckets: []float64{0, 1, 10, 100, 1000, 10000, 100000},
		},
	)
)

func init() {
	prometheus.MustRegister(
		asksTotal,
		askDurationSeconds,
		agentIterations,
		resultRows,
	)
}

func ObserveAsk(outcome string, elapsed time.Duration) {
	asksTotal.WithLabelValues(outcome).Inc()
	askDurationSeconds.Observe(elapsed.Seconds())
}

func ObserveAgentIterations(iterations int) {
	if iterations > 0 {
		agentIterations.Observe(float64(iterations))
	}
}

func ObserveResultRows(rows int) {
	if rows >= 0 {
		resultRows.Observe(float64(rows))
	}
}

package workflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	nodeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "workflow_node_duration_seconds",
		Help:    "time spent executing a single workflow node",
		Buckets: prometheus.DefBuckets,
	}, []string{"node"})

	retriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workflow_retries_total",
		Help: "number of retry-edge re-entries, by retry family",
	}, []string{"family"})

	spilledResultsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "workflow_spilled_results_total",
		Help: "number of query results spilled to the external memory store",
	})

	tokenBudgetRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "workflow_token_budget_remaining",
		Help: "remaining per-session LLM token budget after the last call",
	})
)

// recordRetry increments the retry counter for family ("generation" or
// "execution"), called from the retry nodes right after they bump
// their own in-state counter.
func recordRetry(family string) {
	retriesTotal.WithLabelValues(family).Inc()
}

// recordSpill increments the spill counter, called once per result
// moved to the external memory store.
func recordSpill() {
	spilledResultsTotal.Inc()
}

// recordBudgetRemaining sets the remaining-token-budget gauge. Nothing
// in the workflow or driver packages calls it, so the gauge is not
// updated during a run.
func recordBudgetRemaining(remaining int) {
	tokenBudgetRemaining.Set(float64(remaining))
}

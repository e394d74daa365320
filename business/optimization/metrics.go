package optimization

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	OptimizationRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "optimization_runs_total",
			Help: "Count of optimization runs by optimization_type and status.",
		},
		[]string{"type", "status"},
	)

	OptimizationStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "optimization_stage_duration_seconds",
			Help:    "Duration of each optimization pipeline stage.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	OptimizationCandidatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "optimization_candidates_total",
			Help: "Count of optimization candidates by entity_type and outcome.",
		},
		[]string{"entity_type", "outcome"},
	)

	OptimizationDegradedComponentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "optimization_degraded_components_total",
			Help: "Count of pipeline components replaced by their neutral default.",
		},
		[]string{"component"},
	)
)

func init() {
	prometheus.MustRegister(
		OptimizationRunsTotal,
		OptimizationStageDuration,
		OptimizationCandidatesTotal,
		OptimizationDegradedComponentsTotal,
	)
}

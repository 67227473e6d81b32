package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the engine's Prometheus collectors.
type Metrics struct {
	// RunsTotal counts finished runs by terminal status.
	RunsTotal *prometheus.CounterVec

	// NodeExecutions counts node dispatches by node name.
	NodeExecutions *prometheus.CounterVec

	// StepDuration observes per-node execution time in seconds.
	StepDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "espalier_runs_total",
				Help: "Graph runs finished, by terminal status.",
			},
			[]string{"status"},
		),
		NodeExecutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "espalier_node_executions_total",
				Help: "Node step executions, by node name.",
			},
			[]string{"node"},
		),
		StepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "espalier_step_duration_seconds",
				Help:    "Node step execution time.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"node"},
		),
	}

	reg.MustRegister(m.RunsTotal, m.NodeExecutions, m.StepDuration)
	return m
}

// Package monitoring handles Prometheus metrics collection for the
// planning pipeline.
package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// PlannerMetrics implements outbound.PlannerMetrics over Prometheus
// collectors.
type PlannerMetrics struct {
	logger *zap.Logger

	solvesTotal     *prometheus.CounterVec
	solveDuration   *prometheus.HistogramVec
	fallbacksTotal  prometheus.Counter
	rejectionsTotal *prometheus.CounterVec
}

// NewPlannerMetrics creates a metrics collector registered on the default
// Prometheus registry.
func NewPlannerMetrics(logger *zap.Logger) *PlannerMetrics {
	return &PlannerMetrics{
		logger: logger,

		solvesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planner_solves_total",
				Help: "Total number of optimize calls by outcome",
			},
			[]string{"outcome"},
		),
		solveDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "planner_solve_duration_seconds",
				Help:    "Optimize call duration in seconds",
				Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
			},
			[]string{"outcome"},
		),
		fallbacksTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "planner_fallbacks_total",
				Help: "Total number of fallback planner activations",
			},
		),
		rejectionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planner_rejections_total",
				Help: "Total number of requests rejected before solving, by error code",
			},
			[]string{"code"},
		),
	}
}

// RecordSolve implements outbound.PlannerMetrics.
func (m *PlannerMetrics) RecordSolve(outcome string, duration time.Duration) {
	m.solvesTotal.WithLabelValues(outcome).Inc()
	m.solveDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordFallback implements outbound.PlannerMetrics.
func (m *PlannerMetrics) RecordFallback() {
	m.fallbacksTotal.Inc()
}

// RecordRejection implements outbound.PlannerMetrics.
func (m *PlannerMetrics) RecordRejection(code string) {
	m.rejectionsTotal.WithLabelValues(code).Inc()
}

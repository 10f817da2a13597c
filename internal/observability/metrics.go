// Package observability wires engine lifecycle events into Prometheus.
package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/forager/pkg/domain"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
	toolAttempts  *prometheus.CounterVec
	breakerOpens  *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg. Pass
// prometheus.DefaultRegisterer for the usual global registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "forager",
			Name:      "stage_duration_seconds",
			Help:      "Wall-clock duration of pipeline stages.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		stageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "forager",
			Name:      "stage_errors_total",
			Help:      "Stage executions that ended in an error.",
		}, []string{"stage"}),
		toolAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "forager",
			Name:      "tool_attempts_total",
			Help:      "Tool invocation attempts, including retries.",
		}, []string{"tool", "outcome"}),
		breakerOpens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "forager",
			Name:      "tool_circuit_open_total",
			Help:      "Tool calls rejected by an open circuit breaker.",
		}, []string{"tool"}),
	}
	reg.MustRegister(m.stageDuration, m.stageErrors, m.toolAttempts, m.breakerOpens)
	return m
}

// Hooks adapts the collectors to engine lifecycle callbacks.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStageLeave: func(_ context.Context, e *domain.StageEvent) {
			m.stageDuration.WithLabelValues(e.Stage).Observe(float64(e.LatencyMS) / 1000)
			if e.Error != "" {
				m.stageErrors.WithLabelValues(e.Stage).Inc()
			}
		},
		OnToolReturn: func(_ context.Context, e *domain.ToolEvent) {
			outcome := "success"
			if e.IsError {
				outcome = string(e.ErrorKind)
			}
			m.toolAttempts.WithLabelValues(e.Tool, outcome).Add(float64(max(e.Attempts, 1)))
			if e.CircuitOpen {
				m.breakerOpens.WithLabelValues(e.Tool).Inc()
			}
		},
	}
}

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// TeamMetrics records access-control outcomes and membership transitions.
type TeamMetrics struct {
	operations  *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	transitions *prometheus.CounterVec
}

// NewTeamMetrics registers the team metrics on the provided registerer. A nil
// registerer yields a no-op recorder.
func NewTeamMetrics(reg prometheus.Registerer) *TeamMetrics {
	if reg == nil {
		return &TeamMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "team_operations_total",
		Help: "Team access-control operations by outcome code.",
	}, []string{"operation", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "team_operation_duration_seconds",
		Help:    "Duration of team access-control operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "team_membership_transitions_total",
		Help: "Membership lifecycle events (joined, applied, approved, rejected, removed, left).",
	}, []string{"event"})
	reg.MustRegister(operations, duration, transitions)
	return &TeamMetrics{
		operations:  operations,
		duration:    duration,
		transitions: transitions,
	}
}

// ObserveOperation records one finished operation. outcome is "ok" or an error code.
func (m *TeamMetrics) ObserveOperation(operation, outcome string, elapsed time.Duration) {
	if m == nil || m.operations == nil {
		return
	}
	op := normalizeLabel(operation)
	m.operations.WithLabelValues(op, normalizeLabel(outcome)).Inc()
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

func (m *TeamMetrics) IncTransition(event string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(event)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// TimeclockMetrics records timeclock state-machine transitions.
type TimeclockMetrics struct {
	transitions *prometheus.CounterVec
	sideEffects *prometheus.CounterVec
}

// NewTimeclockMetrics registers the timeclock metrics on the provided registerer.
func NewTimeclockMetrics(reg prometheus.Registerer) *TimeclockMetrics {
	if reg == nil {
		return &TimeclockMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldhr_timeclock_transitions_total",
		Help: "Timeclock state machine transitions by action and outcome.",
	}, []string{"action", "outcome"})
	sideEffects := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fieldhr_timeclock_side_effect_failures_total",
		Help: "Best-effort side effects (activity log, assignment sync, notifications) that failed.",
	}, []string{"effect"})
	reg.MustRegister(transitions, sideEffects)
	return &TimeclockMetrics{
		transitions: transitions,
		sideEffects: sideEffects,
	}
}

// ObserveTransition increments the transition counter for an action/outcome pair.
func (m *TimeclockMetrics) ObserveTransition(action, outcome string) {
	if m == nil || m.transitions == nil {
		return
	}
	m.transitions.WithLabelValues(normalizeLabel(action), normalizeLabel(outcome)).Inc()
}

// IncSideEffectFailure increments the failure counter for the named side effect.
func (m *TimeclockMetrics) IncSideEffectFailure(effect string) {
	if m == nil || m.sideEffects == nil {
		return
	}
	m.sideEffects.WithLabelValues(normalizeLabel(effect)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

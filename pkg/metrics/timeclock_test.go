package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveTransitionCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewTimeclockMetrics(reg)

	m.ObserveTransition("clock_in", OutcomeOK)
	m.ObserveTransition("clock_in", OutcomeOK)
	m.ObserveTransition("clock_in", OutcomeRejected)

	if got := testutil.ToFloat64(m.transitions.WithLabelValues("clock_in", OutcomeOK)); got != 2 {
		t.Fatalf("expected 2 ok transitions, got %v", got)
	}
	if got := testutil.ToFloat64(m.transitions.WithLabelValues("clock_in", OutcomeRejected)); got != 1 {
		t.Fatalf("expected 1 rejected transition, got %v", got)
	}
}

func TestNilReceiverIsSafe(t *testing.T) {
	var m *TimeclockMetrics
	m.ObserveTransition("clock_out", OutcomeOK)
	m.IncSideEffectFailure("activity_log")
}

func TestEmptyLabelNormalized(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewTimeclockMetrics(reg)
	m.ObserveTransition("", "")
	if got := testutil.ToFloat64(m.transitions.WithLabelValues("unknown", "unknown")); got != 1 {
		t.Fatalf("expected normalized label count 1, got %v", got)
	}
}

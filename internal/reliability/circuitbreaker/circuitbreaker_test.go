package circuitbreaker

import (
	"testing"
	"time"
)

func TestBreakerTripsAndRecovers(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	cb := NewCircuitBreaker(2, 1, time.Minute)
	cb.now = func() time.Time { return now }

	var transitions []State
	cb.SetStateChangeCallback(func(_, to State) { transitions = append(transitions, to) })

	cb.RecordFailure()
	if !cb.AllowRequest() {
		t.Fatalf("breaker should stay closed below the threshold")
	}
	cb.RecordFailure()
	if cb.GetState() != StateOpen {
		t.Fatalf("expected open, got %s", cb.GetState())
	}
	if cb.AllowRequest() {
		t.Fatalf("open breaker must reject inside the timeout")
	}

	now = now.Add(2 * time.Minute)
	if !cb.AllowRequest() {
		t.Fatalf("expected a half-open probe after the timeout")
	}
	cb.RecordSuccess()
	if cb.GetState() != StateClosed {
		t.Fatalf("expected closed after a successful probe, got %s", cb.GetState())
	}

	want := []State{StateOpen, StateHalfOpen, StateClosed}
	if len(transitions) != len(want) {
		t.Fatalf("expected transitions %v, got %v", want, transitions)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Fatalf("expected transitions %v, got %v", want, transitions)
		}
	}
}

func TestHalfOpenFailureReopens(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	cb := NewCircuitBreaker(1, 2, time.Second)
	cb.now = func() time.Time { return now }

	cb.RecordFailure()
	now = now.Add(2 * time.Second)
	cb.AllowRequest()
	cb.RecordFailure()
	if cb.GetState() != StateOpen {
		t.Fatalf("expected open after a failed probe, got %s", cb.GetState())
	}
}

func TestSuccessResetsFailureStreak(t *testing.T) {
	cb := NewCircuitBreaker(2, 1, time.Second)
	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()
	if cb.GetState() != StateClosed {
		t.Fatalf("non-consecutive failures must not trip the breaker")
	}
}

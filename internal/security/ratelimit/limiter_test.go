package ratelimit

import "testing"

func TestLimiterBurstThenDeny(t *testing.T) {
	l := NewLimiter(3)
	defer l.Stop()

	for i := 0; i < 3; i++ {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("request %d should pass the burst", i+1)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Fatalf("fourth request inside a minute must be limited")
	}
	if !l.Allow("10.0.0.2") {
		t.Fatalf("other keys have their own bucket")
	}
	if !l.Allow("") {
		t.Fatalf("empty key is never limited")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	l := NewLimiter(1)
	l.Stop()
	l.Stop()
}

package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig() *Config {
	return &Config{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond, BackoffMultiplier: 2}
}

func TestDoSucceedsAfterFailures(t *testing.T) {
	calls := 0
	got, err := Do(context.Background(), fastConfig(), nil, "ping", func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("not yet")
		}
		return 7, nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if got != 7 || calls != 3 {
		t.Fatalf("expected 7 after 3 calls, got %d after %d", got, calls)
	}
}

func TestDoReturnsLastError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Do(context.Background(), fastConfig(), nil, "ping", func(context.Context) (struct{}, error) {
		return struct{}{}, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
}

func TestDoStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	_, err := Do(ctx, fastConfig(), nil, "ping", func(context.Context) (struct{}, error) {
		calls++
		return struct{}{}, nil
	})
	if !errors.Is(err, context.Canceled) || calls != 0 {
		t.Fatalf("expected context.Canceled with no calls, got %v after %d calls", err, calls)
	}
}

func TestCalculateBackoffCapped(t *testing.T) {
	cfg := &Config{InitialBackoff: time.Second, MaxBackoff: 3 * time.Second, BackoffMultiplier: 2}
	if got := calculateBackoff(5, cfg); got != 3*time.Second {
		t.Fatalf("expected capped backoff, got %v", got)
	}
}

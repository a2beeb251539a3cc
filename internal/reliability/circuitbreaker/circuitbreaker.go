package circuitbreaker

import (
	"sync"
	"time"
)

// State represents the circuit breaker state
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// CircuitBreaker lets callers skip a dependency that keeps failing. The cache
// layer uses it so an unreachable Redis costs one timeout per window instead
// of one per request.
type CircuitBreaker struct {
	mu               sync.Mutex
	state            State
	failureCount     int32
	successCount     int32
	lastFailure      time.Time
	failureThreshold int32
	successThreshold int32
	timeout          time.Duration
	onStateChange    func(from, to State)
	now              func() time.Time
}

// NewCircuitBreaker creates a closed circuit breaker
func NewCircuitBreaker(failureThreshold, successThreshold int32, timeout time.Duration) *CircuitBreaker {
	if failureThreshold < 1 {
		failureThreshold = 1
	}
	if successThreshold < 1 {
		successThreshold = 1
	}
	return &CircuitBreaker{
		state:            StateClosed,
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		timeout:          timeout,
		onStateChange:    func(_, _ State) {},
		now:              time.Now,
	}
}

// SetStateChangeCallback registers a callback for state transitions. The
// callback runs outside the breaker lock.
func (cb *CircuitBreaker) SetStateChangeCallback(fn func(from, to State)) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if fn == nil {
		fn = func(_, _ State) {}
	}
	cb.onStateChange = fn
}

// RecordSuccess resets the failure streak and closes a half-open breaker
// once enough probes succeed.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	var from, to State
	changed := false
	switch cb.state {
	case StateHalfOpen:
		cb.successCount++
		if cb.successCount >= cb.successThreshold {
			from, to, changed = cb.transition(StateClosed)
		}
	case StateClosed:
		cb.failureCount = 0
	}
	fn := cb.onStateChange
	cb.mu.Unlock()
	if changed {
		fn(from, to)
	}
}

// RecordFailure counts a failure and may trip the breaker open
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	cb.lastFailure = cb.now()
	var from, to State
	changed := false
	switch cb.state {
	case StateClosed:
		cb.failureCount++
		if cb.failureCount >= cb.failureThreshold {
			from, to, changed = cb.transition(StateOpen)
		}
	case StateHalfOpen:
		from, to, changed = cb.transition(StateOpen)
	}
	fn := cb.onStateChange
	cb.mu.Unlock()
	if changed {
		fn(from, to)
	}
}

// AllowRequest reports whether the protected call should be attempted. An
// open breaker moves to half-open after the timeout and lets probes through.
func (cb *CircuitBreaker) AllowRequest() bool {
	cb.mu.Lock()
	if cb.state != StateOpen {
		cb.mu.Unlock()
		return true
	}
	if cb.now().Sub(cb.lastFailure) <= cb.timeout {
		cb.mu.Unlock()
		return false
	}
	from, to, changed := cb.transition(StateHalfOpen)
	fn := cb.onStateChange
	cb.mu.Unlock()
	if changed {
		fn(from, to)
	}
	return true
}

// GetState returns the current state
func (cb *CircuitBreaker) GetState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// transition must be called with cb.mu held
func (cb *CircuitBreaker) transition(newState State) (State, State, bool) {
	oldState := cb.state
	if oldState == newState {
		return oldState, newState, false
	}
	cb.state = newState
	cb.failureCount = 0
	cb.successCount = 0
	return oldState, newState, true
}

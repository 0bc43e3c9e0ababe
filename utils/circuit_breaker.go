package utils

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrBreakerOpen is returned when the breaker rejects a call without trying
// the underlying request.
var ErrBreakerOpen = errors.New("circuit breaker is open")

// CircuitBreaker protects passive refresh calls against a flapping remote
// API: after enough consecutive failures the breaker opens and refreshes are
// skipped until the cooldown elapses, matching the retry-on-next-trigger
// policy for background fetches.
type CircuitBreaker struct {
	name        string
	maxFailures uint32
	cooldown    time.Duration

	mu       sync.Mutex
	state    BreakerState
	failures uint32
	openedAt time.Time
}

type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerHalfOpen
	BreakerOpen
)

func NewCircuitBreaker(name string) *CircuitBreaker {
	return &CircuitBreaker{
		name:        name,
		maxFailures: 5,
		cooldown:    30 * time.Second,
		state:       BreakerClosed,
	}
}

// Execute runs req unless the breaker is open. A success while half-open
// closes the breaker; a failure re-opens it.
func (cb *CircuitBreaker) Execute(ctx context.Context, req func(context.Context) error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}

	err := req(ctx)
	cb.afterRequest(err == nil)
	return err
}

func (cb *CircuitBreaker) State() BreakerState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentState(time.Now())
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.currentState(time.Now()) == BreakerOpen {
		return ErrBreakerOpen
	}
	return nil
}

func (cb *CircuitBreaker) afterRequest(success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if success {
		cb.failures = 0
		cb.state = BreakerClosed
		return
	}

	cb.failures++
	if cb.state == BreakerHalfOpen || cb.failures >= cb.maxFailures {
		cb.state = BreakerOpen
		cb.openedAt = time.Now()
	}
}

func (cb *CircuitBreaker) currentState(now time.Time) BreakerState {
	if cb.state == BreakerOpen && now.Sub(cb.openedAt) >= cb.cooldown {
		cb.state = BreakerHalfOpen
	}
	return cb.state
}

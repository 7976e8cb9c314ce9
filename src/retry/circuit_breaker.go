// SPDX-License-Identifier: MIT

// Package retry provides the transport-level circuit breaker and retry
// helper that sit inside engine.BaseEngine.fetch(), one layer beneath the
// engine manager's coarser search-level quarantine.
package retry

import (
	"fmt"
	"sync"
	"time"
)

// State is one of the three classic circuit-breaker states.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case HalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// CircuitBreakerConfig tunes the thresholds and timeout.
type CircuitBreakerConfig struct {
	Name string
	FailureThreshold int
	SuccessThreshold int
	Timeout time.Duration
	OnStateChange func(name string, from, to State)
}

// DefaultCircuitBreakerConfig: open after 5 raw HTTP failures, close again
// after 2 successful probes.
func DefaultCircuitBreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name: name,
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Timeout: 30 * time.Second,
	}
}

// CircuitBreaker guards a single engine's outbound HTTP calls. It is
// transport-level and deliberately finer-grained than the Engine Manager's
// consecutive-failure quarantine (K=3), the breaker trips on raw
// network/5xx failures within one engine's fetch() calls, while the
// manager's counter trips on whole search() invocations failing.
type CircuitBreaker struct {
	mu sync.Mutex

	name string
	state State
	failureCount int
	successCount int
	lastFailureTime time.Time
	failureThreshold int
	successThreshold int
	timeout time.Duration
	onStateChange func(name string, from, to State)
}

// ErrCircuitOpen is returned by Execute/AllowRequest when the breaker has
// tripped and the timeout has not yet elapsed.
var ErrCircuitOpen = fmt.Errorf("circuit breaker open")

// NewCircuitBreaker builds a breaker in the Closed state.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = 2
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &CircuitBreaker{
		name: cfg.Name,
		state: Closed,
		failureThreshold: cfg.FailureThreshold,
		successThreshold: cfg.SuccessThreshold,
		timeout: cfg.Timeout,
		onStateChange: cfg.OnStateChange,
	}
}

// AllowRequest reports whether a call should be attempted right now,
// transitioning Open→HalfOpen once the timeout has elapsed.
func (cb *CircuitBreaker) AllowRequest() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case Closed, HalfOpen:
		return true
	case Open:
		if time.Since(cb.lastFailureTime) >= cb.timeout {
			cb.setState(HalfOpen)
			cb.successCount = 0
			return true
		}
		return false
	default:
		return true
	}
}

// RecordSuccess registers a successful call.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case HalfOpen:
		cb.successCount++
		if cb.successCount >= cb.successThreshold {
			cb.transitionTo(Closed)
		}
	case Closed:
		cb.failureCount = 0
	}
}

// RecordFailure registers a failed call, tripping the breaker open once
// failureThreshold consecutive failures accumulate (or immediately on any
// failure while half-open).
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.lastFailureTime = time.Now()

	switch cb.state {
	case HalfOpen:
		cb.transitionTo(Open)
	case Closed:
		cb.failureCount++
		if cb.failureCount >= cb.failureThreshold {
			cb.transitionTo(Open)
		}
	}
}

func (cb *CircuitBreaker) transitionTo(to State) {
	cb.setState(to)
	if to == Closed {
		cb.failureCount = 0
		cb.successCount = 0
	}
}

func (cb *CircuitBreaker) setState(to State) {
	from := cb.state
	if from == to {
		return
	}
	cb.state = to
	if cb.onStateChange != nil {
		cb.onStateChange(cb.name, from, to)
	}
}

// State returns the breaker's current state.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// FailureCount returns the current consecutive-failure tally.
func (cb *CircuitBreaker) FailureCount() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failureCount
}

// Reset forces the breaker back to Closed.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.transitionTo(Closed)
}

// Execute runs fn if the breaker allows it, recording the outcome.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.AllowRequest() {
		return ErrCircuitOpen
	}
	err := fn()
	if err != nil {
		cb.RecordFailure()
		return err
	}
	cb.RecordSuccess()
	return nil
}

// ExecuteWithResult is Execute for functions that also return a value.
func ExecuteWithResult[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	var zero T
	if !cb.AllowRequest() {
		return zero, ErrCircuitOpen
	}
	result, err := fn()
	if err != nil {
		cb.RecordFailure()
		return zero, err
	}
	cb.RecordSuccess()
	return result, nil
}

// Registry tracks named breakers so callers can fetch or enumerate them
// without threading pointers through every layer.
type Registry struct {
	mu sync.RWMutex
	breakers map[string]*CircuitBreaker
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{breakers: make(map[string]*CircuitBreaker)}
}

// Get returns the named breaker, creating it with cfg if absent.
func (r *Registry) Get(cfg CircuitBreakerConfig) *CircuitBreaker {
	r.mu.RLock()
	cb, ok := r.breakers[cfg.Name]
	r.mu.RUnlock()
	if ok {
		return cb
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cb, ok := r.breakers[cfg.Name]; ok {
		return cb
	}
	cb = NewCircuitBreaker(cfg)
	r.breakers[cfg.Name] = cb
	return cb
}

// GetAll returns a snapshot of every registered breaker.
func (r *Registry) GetAll() map[string]*CircuitBreaker {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*CircuitBreaker, len(r.breakers))
	for k, v := range r.breakers {
		out[k] = v
	}
	return out
}

// ResetAll forces every registered breaker back to Closed.
func (r *Registry) ResetAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, cb := range r.breakers {
		cb.Reset()
	}
}

// SPDX-License-Identifier: MIT

package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreakerOpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "t", FailureThreshold: 3, SuccessThreshold: 1, Timeout: time.Minute})
	for i := 0; i < 3; i++ {
		cb.RecordFailure()
	}
	assert.Equal(t, Open, cb.State())
	assert.False(t, cb.AllowRequest())
}

func TestCircuitBreakerHalfOpensAfterTimeout(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "t", FailureThreshold: 1, SuccessThreshold: 1, Timeout: 10 * time.Millisecond})
	cb.RecordFailure()
	require.Equal(t, Open, cb.State())

	time.Sleep(20 * time.Millisecond)
	assert.True(t, cb.AllowRequest())
	assert.Equal(t, HalfOpen, cb.State())
}

func TestCircuitBreakerClosesAfterSuccessThreshold(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "t", FailureThreshold: 1, SuccessThreshold: 2, Timeout: time.Millisecond})
	cb.RecordFailure()
	time.Sleep(2 * time.Millisecond)
	cb.AllowRequest() // transitions to HalfOpen
	cb.RecordSuccess()
	assert.Equal(t, HalfOpen, cb.State())
	cb.RecordSuccess()
	assert.Equal(t, Closed, cb.State())
}

func TestExecuteReturnsErrCircuitOpen(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "t", FailureThreshold: 1, Timeout: time.Minute})
	cb.RecordFailure()
	err := cb.Execute(func() error { return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestRegistryGetReusesBreaker(t *testing.T) {
	r := NewRegistry()
	a := r.Get(DefaultCircuitBreakerConfig("google"))
	b := r.Get(DefaultCircuitBreakerConfig("google"))
	assert.Same(t, a, b)
}

func TestDoRetriesRetryableErrors(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), Config{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}, nil, func() error {
		attempts++
		if attempts < 3 {
			return ErrTemporary
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestDoStopsOnNonRetryableError(t *testing.T) {
	attempts := 0
	boom := errors.New("boom")
	err := Do(context.Background(), DefaultConfig(), nil, func() error {
		attempts++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, attempts)
}

func TestClassifyHTTPError(t *testing.T) {
	assert.ErrorIs(t, ClassifyHTTPError(429), ErrRateLimited)
	assert.ErrorIs(t, ClassifyHTTPError(503), ErrUpstream)
}

// SPDX-License-Identifier: MIT

package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowPermitsUpToLimit(t *testing.T) {
	l := New(true, 3, time.Minute)
	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("1.2.3.4"))
	}
	assert.False(t, l.Allow("1.2.3.4"))
}

func TestAllowDisabledAlwaysPermits(t *testing.T) {
	l := New(false, 1, time.Minute)
	for i := 0; i < 10; i++ {
		assert.True(t, l.Allow("1.2.3.4"))
	}
}

func TestAllowTracksClientsIndependently(t *testing.T) {
	l := New(true, 1, time.Minute)
	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))
	assert.False(t, l.Allow("a"))
}

func TestRemainingReflectsConsumedBudget(t *testing.T) {
	l := New(true, 5, time.Minute)
	l.Allow("ip")
	l.Allow("ip")
	assert.Equal(t, 3, l.Remaining("ip"))
}

func TestMiddlewareRejectsOverLimitWithHeaders(t *testing.T) {
	l := New(true, 1, time.Minute)
	handler := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	req.RemoteAddr = "5.5.5.5:1234"

	rec1 := httptest.NewRecorder()
	handler.ServeHTTP(rec1, req)
	assert.Equal(t, http.StatusOK, rec1.Code)

	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, req)
	assert.Equal(t, http.StatusTooManyRequests, rec2.Code)
	assert.NotEmpty(t, rec2.Header().Get("Retry-After"))
}

func TestEndpointLimitersFallsBackToDefault(t *testing.T) {
	el := NewEndpointLimiters(true)
	l := el.Get("unknown-endpoint")
	assert.Equal(t, el.Get(EndpointDefault), l)
}

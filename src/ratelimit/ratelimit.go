// SPDX-License-Identifier: MIT

// Package ratelimit is the per-IP/per-endpoint limiter guarding the
// search API: a sliding window per endpoint category, the same shape
// used elsewhere for auth-style endpoints, applied here to search,
// stream, and cache-management endpoints instead.
package ratelimit

import (
	"net/http"
	"sync"
	"time"

	"github.com/apimgr/seesea/src/logging"
)

// Endpoint categories this API actually exposes.
const (
	EndpointSearch = "search"
	EndpointStream = "stream"
	EndpointCacheWrite = "cache_write"
	EndpointDefault = "default"
)

type limitSpec struct {
	Requests int
	Window time.Duration
}

// DefaultLimits budgets each endpoint by traffic shape: search is the
// highest-traffic route and gets the most generous budget; mutating cache
// routes (clear/cleanup) are tightly bounded since they're operator tools,
// not query traffic.
var DefaultLimits = map[string]limitSpec{
	EndpointSearch: {60, time.Minute},
	EndpointStream: {30, time.Minute},
	EndpointCacheWrite: {5, time.Minute},
	EndpointDefault: {100, time.Minute},
}

// EndpointLimiters holds one sliding-window Limiter per endpoint category.
type EndpointLimiters struct {
	mu sync.RWMutex
	limiters map[string]*Limiter
	logger *logging.Logger
}

// NewEndpointLimiters builds the default set of per-endpoint limiters.
// enabled=false makes every limiter a no-op, for local development.
func NewEndpointLimiters(enabled bool) *EndpointLimiters {
	el := &EndpointLimiters{limiters: make(map[string]*Limiter)}
	for endpoint, spec := range DefaultLimits {
		el.limiters[endpoint] = New(enabled, spec.Requests, spec.Window)
	}
	return el
}

// SetLogger wires a logger into every endpoint limiter for security-event
// reporting on trips.
func (el *EndpointLimiters) SetLogger(logger *logging.Logger) {
	el.mu.Lock()
	defer el.mu.Unlock()
	el.logger = logger
	for _, l := range el.limiters {
		l.SetLogger(logger)
	}
}

// Get returns the limiter for endpoint, falling back to the default
// bucket for an unrecognized name.
func (el *EndpointLimiters) Get(endpoint string) *Limiter {
	el.mu.RLock()
	defer el.mu.RUnlock()
	if l, ok := el.limiters[endpoint]; ok {
		return l
	}
	return el.limiters[EndpointDefault]
}

// Limiter is a sliding-window rate limiter keyed by client IP.
type Limiter struct {
	mu sync.RWMutex
	enabled bool
	requests int
	window time.Duration
	clients map[string]*clientWindow
	logger *logging.Logger
}

type clientWindow struct {
	mu sync.Mutex
	timestamps []time.Time
}

// New creates a Limiter. A non-positive requests or window falls back to
// the default endpoint's budget (100 per minute).
func New(enabled bool, requests int, window time.Duration) *Limiter {
	if requests <= 0 {
		requests = 100
	}
	if window <= 0 {
		window = time.Minute
	}
	l := &Limiter{
		enabled: enabled,
		requests: requests,
		window: window,
		clients: make(map[string]*clientWindow),
	}
	go l.cleanupLoop()
	return l
}

// SetLogger wires a logger for security-event reporting on trips.
func (l *Limiter) SetLogger(logger *logging.Logger) {
	l.logger = logger
}

// Allow reports whether a request from ip should proceed, recording the
// attempt if so.
func (l *Limiter) Allow(ip string) bool {
	if !l.enabled {
		return true
	}

	l.mu.Lock()
	client, ok := l.clients[ip]
	if !ok {
		client = &clientWindow{timestamps: make([]time.Time, 0, l.requests)}
		l.clients[ip] = client
	}
	l.mu.Unlock()

	client.mu.Lock()
	defer client.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-l.window)
	valid := client.timestamps[:0]
	for _, t := range client.timestamps {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	client.timestamps = valid

	if len(client.timestamps) >= l.requests {
		return false
	}
	client.timestamps = append(client.timestamps, now)
	return true
}

// Remaining reports how many requests ip has left in the current window.
func (l *Limiter) Remaining(ip string) int {
	if !l.enabled {
		return l.requests
	}
	l.mu.RLock()
	client, ok := l.clients[ip]
	l.mu.RUnlock()
	if !ok {
		return l.requests
	}

	client.mu.Lock()
	defer client.mu.Unlock()
	cutoff := time.Now().Add(-l.window)
	count := 0
	for _, t := range client.timestamps {
		if t.After(cutoff) {
			count++
		}
	}
	remaining := l.requests - count
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ResetAt reports when ip's window will next free up a slot.
func (l *Limiter) ResetAt(ip string) time.Time {
	if !l.enabled {
		return time.Now()
	}
	l.mu.RLock()
	client, ok := l.clients[ip]
	l.mu.RUnlock()
	if !ok || len(client.timestamps) == 0 {
		return time.Now()
	}
	client.mu.Lock()
	defer client.mu.Unlock()
	return client.timestamps[0].Add(l.window)
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		l.cleanupOnce()
	}
}

func (l *Limiter) cleanupOnce() {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := time.Now().Add(-l.window * 2)
	for ip, client := range l.clients {
		client.mu.Lock()
		hasRecent := false
		for _, t := range client.timestamps {
			if t.After(cutoff) {
				hasRecent = true
				break
			}
		}
		client.mu.Unlock()
		if !hasRecent {
			delete(l.clients, ip)
		}
	}
}

// clientIP extracts the caller's address, honoring X-Real-IP and the
// first hop of X-Forwarded-For ahead of RemoteAddr.
func clientIP(r *http.Request) string {
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		for i, c := range forwarded {
			if c == ',' {
				return forwarded[:i]
			}
		}
		return forwarded
	}
	return r.RemoteAddr
}

// Middleware enforces the limiter against incoming requests, setting
// standard X-RateLimit-* headers and logging a security event on trip.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		w.Header().Set("X-RateLimit-Limit", itoa(l.requests))
		w.Header().Set("X-RateLimit-Remaining", itoa(l.Remaining(ip)))
		w.Header().Set("X-RateLimit-Reset", itoa(int(l.ResetAt(ip).Unix())))

		if !l.Allow(ip) {
			if l.logger != nil {
				l.logger.Security("rate_limit_exceeded", ip, map[string]any{
					"endpoint": r.URL.Path,
					"method": r.Method,
					"limit": l.requests,
					"window_s": int(l.window.Seconds()),
				})
			}
			w.Header().Set("Retry-After", "60")
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

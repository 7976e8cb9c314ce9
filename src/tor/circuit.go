// SPDX-License-Identifier: MIT

// Package tor is the privacy manager's outbound anonymity transport: a
// SOCKS5 dialer routed through Tor, with circuit rotation via bine's
// control-port NEWNYM signal so a single exit node doesn't accumulate
// enough request volume to be fingerprinted. Outbound only: SeeSea
// dials out through Tor but never hosts anything over it.
package tor

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/cretz/bine/tor"
	"golang.org/x/net/proxy"
)

// rotateAfterAge and rotateAfterRequests are the two triggers for a fresh
// circuit: whichever comes first.
const (
	rotateAfterAge      = 10 * time.Minute
	rotateAfterRequests = 100
)

// Manager owns one Tor circuit (dialer) at a time and rotates it once it
// gets old or busy enough to be worth replacing.
type Manager struct {
	mu           sync.Mutex
	dialer       proxy.Dialer
	instance     *tor.Tor // non-nil only when we started our own embedded process
	socksAddr    string   // non-empty when dialing an external Tor instance instead
	circuitSince time.Time
	requestCount int
	managed      bool
}

// Config selects how the Manager reaches Tor.
type Config struct {
	// SOCKSAddr, if set, points at an already-running Tor instance's SOCKS5
	// port (e.g. "127.0.0.1:9050"), the simple path, no process management.
	SOCKSAddr string
	// Embedded, if true and SOCKSAddr is empty, starts a dedicated Tor
	// process via bine, giving this Manager its own control port for
	// NEWNYM signals instead of relying on an external instance's.
	Embedded bool
	DataDir  string
}

// New builds a Manager and establishes its first circuit.
func New(ctx context.Context, cfg Config) (*Manager, error) {
	m := &Manager{circuitSince: time.Now()}

	if cfg.SOCKSAddr != "" {
		dialer, err := proxy.SOCKS5("tcp", cfg.SOCKSAddr, nil, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("tor: socks5 dialer: %w", err)
		}
		m.dialer = dialer
		m.socksAddr = cfg.SOCKSAddr
		return m, nil
	}

	if !cfg.Embedded {
		return nil, fmt.Errorf("tor: no SOCKSAddr and Embedded not set")
	}

	t, err := tor.Start(ctx, &tor.StartConf{DataDir: cfg.DataDir, ExtraArgs: []string{"--quiet"}})
	if err != nil {
		return nil, fmt.Errorf("tor: start embedded process: %w", err)
	}
	dialCtx, cancel := context.WithTimeout(ctx, 3*time.Minute)
	defer cancel()
	if err := t.EnableNetwork(dialCtx, true); err != nil {
		t.Close()
		return nil, fmt.Errorf("tor: enable network: %w", err)
	}
	dialer, err := t.Dialer(ctx, nil)
	if err != nil {
		t.Close()
		return nil, fmt.Errorf("tor: build dialer: %w", err)
	}

	m.instance = t
	m.dialer = dialer
	m.managed = true
	return m, nil
}

// DialContext satisfies the http.Transport.DialContext shape, routing
// every dial through the current circuit and counting it toward rotation.
func (m *Manager) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	m.mu.Lock()
	m.requestCount++
	needsRotation := m.shouldRotateLocked()
	dialer := m.dialer
	m.mu.Unlock()

	if needsRotation {
		m.Rotate(ctx)
		m.mu.Lock()
		dialer = m.dialer
		m.mu.Unlock()
	}

	return dialer.Dial(network, addr)
}

func (m *Manager) shouldRotateLocked() bool {
	return time.Since(m.circuitSince) >= rotateAfterAge || m.requestCount >= rotateAfterRequests
}

// Rotate requests a new circuit. For an embedded process this sends
// SIGNAL NEWNYM over the control connection; an external SOCKS5-only
// instance has no control port available here, so rotation there is a
// no-op beyond resetting our own bookkeeping, the exit node itself won't
// change until that external Tor instance rotates on its own schedule.
func (m *Manager) Rotate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.managed && m.instance != nil {
		if _, err := m.instance.Control.Signal("NEWNYM"); err != nil {
			return fmt.Errorf("tor: signal newnym: %w", err)
		}
	}
	m.circuitSince = time.Now()
	m.requestCount = 0
	return nil
}

// Age reports how long the current circuit has been in use.
func (m *Manager) Age() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Since(m.circuitSince)
}

// RequestCount reports how many requests the current circuit has served.
func (m *Manager) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requestCount
}

// Dialer exposes the underlying proxy.Dialer for callers (e.g. netclient)
// that want to wire it in directly rather than through DialContext.
func (m *Manager) Dialer() proxy.Dialer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dialer
}

// Close tears down an embedded Tor process, if any.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.instance != nil {
		return m.instance.Close()
	}
	return nil
}

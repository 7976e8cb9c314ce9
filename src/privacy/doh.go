// SPDX-License-Identifier: MIT

package privacy

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/apimgr/seesea/src/netclient"
)

// dohTimeout is the per-server DoH timeout.
const dohTimeout = 5 * time.Second

type dohAnswer struct {
	Status int `json:"Status"`
	Answer []struct {
		Type int `json:"type"`
		Data string `json:"data"`
	} `json:"Answer"`
}

// Resolve looks hostname up against the configured DoH servers in order,
// falling back to the system resolver when DoH is disabled, every server
// errors, and FallbackToSystem is true. Returns the first A record found.
func (m *Manager) Resolve(ctx context.Context, client *netclient.Client, hostname string) (net.IP, error) {
	servers := m.DoHServers()
	if len(servers) == 0 {
		return m.resolveSystem(ctx, hostname)
	}

	var lastErr error
	for _, server := range servers {
		ip, err := m.resolveOne(ctx, client, server, hostname)
		if err == nil {
			return ip, nil
		}
		lastErr = err
	}

	if m.FallbackToSystem() {
		return m.resolveSystem(ctx, hostname)
	}
	return nil, fmt.Errorf("privacy: doh resolve %q: all servers failed: %w", hostname, lastErr)
}

func (m *Manager) resolveOne(ctx context.Context, client *netclient.Client, server DoHServer, hostname string) (net.IP, error) {
	dohCtx, cancel := context.WithTimeout(ctx, dohTimeout)
	defer cancel()

	url := server.URL + "?name=" + hostname + "&type=A"
	headers := m.Headers(url)
	headers["Accept"] = "application/dns-json"

	resp, err := client.Get(dohCtx, url, headers)
	if err != nil {
		return nil, fmt.Errorf("privacy: doh query %s: %w", server.Name, err)
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("privacy: doh query %s: status %d", server.Name, resp.StatusCode)
	}

	var parsed dohAnswer
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return nil, fmt.Errorf("privacy: doh query %s: decode: %w", server.Name, err)
	}
	for _, a := range parsed.Answer {
		if a.Type == 1 { // A record
			if ip := net.ParseIP(a.Data); ip != nil {
				return ip, nil
			}
		}
	}
	return nil, fmt.Errorf("privacy: doh query %s: no A record for %s", server.Name, hostname)
}

func (m *Manager) resolveSystem(ctx context.Context, hostname string) (net.IP, error) {
	ips, err := net.DefaultResolver.LookupIP(ctx, "ip4", hostname)
	if err != nil {
		return nil, fmt.Errorf("privacy: system resolve %q: %w", hostname, err)
	}
	if len(ips) == 0 {
		return nil, fmt.Errorf("privacy: system resolve %q: no results", hostname)
	}
	return ips[0], nil
}

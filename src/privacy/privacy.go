// SPDX-License-Identifier: MIT

// Package privacy is the Privacy Manager: it decides what level of
// anonymity a request asks for (UA, synthetic headers, forged referer,
// TLS fingerprint tier, DoH) and hands that decision to netclient, which
// is the only package that actually speaks HTTP/TLS/DNS. Region inference
// for faked geolocation uses maxminddb-golang.
package privacy

import (
	"crypto/rand"
	"math/big"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/oschwald/maxminddb-golang"

	"github.com/apimgr/seesea/src/netclient"
)

// UAStrategy selects how a user-agent string is produced.
type UAStrategy int

const (
	UAFixed UAStrategy = iota
	UARealistic
	UARandom
	UACustom
)

// TLSFingerprintLevel mirrors netclient.FingerprintLevel; kept as its own
// type here since it's the Privacy Manager, not netclient, that owns the
// *decision* of which level a request gets.
type TLSFingerprintLevel int

const (
	FingerprintNone TLSFingerprintLevel = iota
	FingerprintBasic
	FingerprintAdvanced
	FingerprintFull
)

func (l TLSFingerprintLevel) toNetclient() netclient.FingerprintLevel {
	return netclient.FingerprintLevel(l)
}

// Level is the one-dimensional summary exposed for display only.
type Level int

const (
	LevelLow Level = iota
	LevelMedium
	LevelHigh
	LevelMaximum
)

func (l Level) String() string {
	switch l {
	case LevelMedium:
		return "medium"
	case LevelHigh:
		return "high"
	case LevelMaximum:
		return "maximum"
	default:
		return "low"
	}
}

// userAgentPool is the ~10 real UAs Random chooses from and Realistic
// always picks the first of.
var userAgentPool = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 17_4_1 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15 Edge/124.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36 OPR/109.0.0.0",
	"Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Android 14; Mobile; rv:125.0) Gecko/125.0 Firefox/125.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36 Vivaldi/6.7",
}

// DoHServer is one configured DNS-over-HTTPS resolver.
type DoHServer struct {
	Name string
	URL string // e.g. "https://cloudflare-dns.com/dns-query"
}

// Config is the set of knobs an operator sets; Manager derives everything
// else (including the PrivacyLevel summary) from it.
type Config struct {
	UAStrategy UAStrategy
	CustomUA string
	FakeHeaders bool
	FakeReferer bool
	Fingerprint TLSFingerprintLevel

	DoHEnabled bool
	DoHServers []DoHServer
	FallbackToSystem bool

	GeoIPDBPath string // optional MaxMind DB for region inference
}

// DefaultConfig matches a reasonable out-of-the-box posture: realistic UA,
// synthetic headers on, no forged referer, advanced TLS fingerprinting,
// DoH off (left to the operator to opt into, since it adds a hop).
func DefaultConfig() Config {
	return Config{
		UAStrategy: UARealistic,
		FakeHeaders: true,
		FakeReferer: false,
		Fingerprint: FingerprintAdvanced,
		FallbackToSystem: true,
	}
}

// Manager is the Privacy Manager: stateless besides an optional GeoIP
// reader, since every other decision is a pure function of Config plus
// per-request randomness.
type Manager struct {
	cfg Config

	geoMu sync.RWMutex
	geo *maxminddb.Reader
}

// New builds a Manager, opening the GeoIP database if one is configured.
// A missing or unreadable database is not fatal, region inference simply
// falls back to the caller's configured default.
func New(cfg Config) *Manager {
	m := &Manager{cfg: cfg}
	if cfg.GeoIPDBPath != "" {
		if reader, err := maxminddb.Open(cfg.GeoIPDBPath); err == nil {
			m.geo = reader
		}
	}
	return m
}

// Close releases the GeoIP database handle, if one was opened.
func (m *Manager) Close() error {
	m.geoMu.Lock()
	defer m.geoMu.Unlock()
	if m.geo != nil {
		return m.geo.Close()
	}
	return nil
}

// UserAgent resolves the UA strategy into a concrete string for one request.
func (m *Manager) UserAgent() string {
	switch m.cfg.UAStrategy {
	case UAFixed, UARealistic:
		return userAgentPool[0]
	case UACustom:
		if m.cfg.CustomUA != "" {
			return m.cfg.CustomUA
		}
		return userAgentPool[0]
	case UARandom:
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(userAgentPool))))
		if err != nil {
			return userAgentPool[0]
		}
		return userAgentPool[n.Int64()]
	default:
		return userAgentPool[0]
	}
}

// Headers builds the per-request header set: UA always, plus synthetic
// Accept/Accept-Language/Accept-Encoding/DNT/Sec-Fetch-* when FakeHeaders
// is set, plus a forged Referer derived from targetURL's host when
// FakeReferer is set.
func (m *Manager) Headers(targetURL string) map[string]string {
	headers := map[string]string{"User-Agent": m.UserAgent()}

	if m.cfg.FakeHeaders {
		headers["Accept"] = "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8"
		headers["Accept-Language"] = "en-US,en;q=0.9"
		headers["Accept-Encoding"] = "gzip, deflate, br"
		headers["DNT"] = "1"
		headers["Sec-Fetch-Dest"] = "document"
		headers["Sec-Fetch-Mode"] = "navigate"
		headers["Sec-Fetch-Site"] = "none"
		headers["Sec-Fetch-User"] = "?1"
	}

	if m.cfg.FakeReferer {
		if host := hostOf(targetURL); host != "" {
			headers["Referer"] = "https://" + host + "/"
		}
	}

	return headers
}

func hostOf(rawURL string) string {
	rest := rawURL
	if i := strings.Index(rest, "://"); i >= 0 {
		rest = rest[i+3:]
	}
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

// Fingerprint returns the configured TLS fingerprint tier translated into
// netclient's own type, so netclient stays free of a privacy import.
func (m *Manager) Fingerprint() netclient.FingerprintLevel {
	return m.cfg.Fingerprint.toNetclient()
}

// DoHServers returns the configured resolver list, or nil when DoH is
// disabled.
func (m *Manager) DoHServers() []DoHServer {
	if !m.cfg.DoHEnabled {
		return nil
	}
	return m.cfg.DoHServers
}

// FallbackToSystem reports whether DNS resolution falls back to the
// system resolver when DoH is disabled or a DoH lookup errors.
func (m *Manager) FallbackToSystem() bool {
	return m.cfg.FallbackToSystem
}

// RegionFor infers a two-letter region code for ip using the configured
// GeoIP database, returning "" when no database is loaded or the lookup
// fails, callers fall back to their own default region in that case.
func (m *Manager) RegionFor(ip net.IP) string {
	m.geoMu.RLock()
	defer m.geoMu.RUnlock()
	if m.geo == nil || ip == nil {
		return ""
	}
	var record struct {
		Country struct {
			ISOCode string `maxminddb:"iso_code"`
		} `maxminddb:"country"`
	}
	if err := m.geo.Lookup(ip, &record); err != nil {
		return ""
	}
	return record.Country.ISOCode
}

// Level computes the PrivacyLevel summary from the configured
// knobs, display-only, never consulted for behavior.
func (m *Manager) Level() Level {
	points := 0
	if m.cfg.FakeHeaders {
		points++
	}
	if m.cfg.FakeReferer {
		points++
	}
	if m.cfg.UAStrategy == UARandom {
		points++
	}
	switch m.cfg.Fingerprint {
	case FingerprintBasic:
		points++
	case FingerprintAdvanced:
		points += 2
	case FingerprintFull:
		points += 3
	}
	if m.cfg.DoHEnabled {
		points += 2
	}

	switch {
	case points >= 7:
		return LevelMaximum
	case points >= 5:
		return LevelHigh
	case points >= 2:
		return LevelMedium
	default:
		return LevelLow
	}
}

// ApplyTo writes the Privacy Manager's header decisions directly onto an
// outgoing request, for callers that build an
// *http.Request rather than going through netclient's map[string]string
// header convention.
func (m *Manager) ApplyTo(req *http.Request, targetURL string) {
	for k, v := range m.Headers(targetURL) {
		req.Header.Set(k, v)
	}
}

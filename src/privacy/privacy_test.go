// SPDX-License-Identifier: MIT

package privacy

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserAgentFixedAndRealisticUseFirstPoolEntry(t *testing.T) {
	m := New(Config{UAStrategy: UAFixed})
	assert.Equal(t, userAgentPool[0], m.UserAgent())

	m = New(Config{UAStrategy: UARealistic})
	assert.Equal(t, userAgentPool[0], m.UserAgent())
}

func TestUserAgentCustomReturnsConfiguredString(t *testing.T) {
	m := New(Config{UAStrategy: UACustom, CustomUA: "custom-bot/1.0"})
	assert.Equal(t, "custom-bot/1.0", m.UserAgent())
}

func TestUserAgentRandomPicksFromPool(t *testing.T) {
	m := New(Config{UAStrategy: UARandom})
	ua := m.UserAgent()
	assert.Contains(t, userAgentPool, ua)
}

func TestHeadersOmitsSyntheticFieldsWhenDisabled(t *testing.T) {
	m := New(Config{UAStrategy: UAFixed, FakeHeaders: false})
	headers := m.Headers("https://example.com/search")
	assert.NotContains(t, headers, "Accept-Language")
	assert.NotContains(t, headers, "DNT")
}

func TestHeadersIncludesSyntheticFieldsWhenEnabled(t *testing.T) {
	m := New(Config{UAStrategy: UAFixed, FakeHeaders: true})
	headers := m.Headers("https://example.com/search")
	assert.Equal(t, "1", headers["DNT"])
	assert.NotEmpty(t, headers["Accept-Language"])
}

func TestHeadersForgesRefererFromTargetHost(t *testing.T) {
	m := New(Config{UAStrategy: UAFixed, FakeReferer: true})
	headers := m.Headers("https://example.com/search?q=rust")
	assert.Equal(t, "https://example.com/", headers["Referer"])
}

func TestHeadersOmitsRefererWhenDisabled(t *testing.T) {
	m := New(Config{UAStrategy: UAFixed, FakeReferer: false})
	headers := m.Headers("https://example.com/search")
	assert.NotContains(t, headers, "Referer")
}

func TestLevelLowWithNoProtectionEnabled(t *testing.T) {
	m := New(Config{UAStrategy: UAFixed, Fingerprint: FingerprintNone})
	assert.Equal(t, LevelLow, m.Level())
}

func TestLevelMaximumWithEverythingEnabled(t *testing.T) {
	m := New(Config{
		UAStrategy:  UARandom,
		FakeHeaders: true,
		FakeReferer: true,
		Fingerprint: FingerprintFull,
		DoHEnabled:  true,
	})
	assert.Equal(t, LevelMaximum, m.Level())
}

func TestRegionForWithNoGeoIPDatabaseReturnsEmpty(t *testing.T) {
	m := New(Config{})
	assert.Equal(t, "", m.RegionFor(net.ParseIP("1.1.1.1")))
}

func TestDoHServersNilWhenDisabled(t *testing.T) {
	m := New(Config{DoHEnabled: false, DoHServers: []DoHServer{{Name: "cf", URL: "https://cloudflare-dns.com/dns-query"}}})
	assert.Nil(t, m.DoHServers())
}

func TestDoHServersReturnedWhenEnabled(t *testing.T) {
	servers := []DoHServer{{Name: "cf", URL: "https://cloudflare-dns.com/dns-query"}}
	m := New(Config{DoHEnabled: true, DoHServers: servers})
	assert.Equal(t, servers, m.DoHServers())
}

// SPDX-License-Identifier: MIT

package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DBPath = filepath.Join(t.TempDir(), "cache.db")
	s, err := OpenAt(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSetGetRoundTrip(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Set("k", []byte("v"), nil))
	v, ok := s.Get("k")
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)
}

func TestGetMissingKey(t *testing.T) {
	s := openTestStore(t)
	_, ok := s.Get("nope")
	assert.False(t, ok)
}

func TestGetExpiredEntryIsAMiss(t *testing.T) {
	s := openTestStore(t)
	ttl := -1 * time.Second // already expired
	require.NoError(t, s.Set("k", []byte("v"), &ttl))
	_, ok := s.Get("k")
	assert.False(t, ok)
}

func TestGetIncludeStaleReportsStaleHit(t *testing.T) {
	s := openTestStore(t)
	ttl := -1 * time.Second
	require.NoError(t, s.Set("k", []byte("v"), &ttl))
	v, stale, ok := s.GetIncludeStale("k")
	assert.True(t, ok)
	assert.True(t, stale)
	assert.Equal(t, []byte("v"), v)
}

func TestDeleteReportsWhetherKeyExisted(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Set("k", []byte("v"), nil))
	existed, err := s.Delete("k")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = s.Delete("k")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestClearRemovesEverything(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Set("a", []byte("1"), nil))
	require.NoError(t, s.Set("b", []byte("2"), nil))
	require.NoError(t, s.Clear())
	_, ok := s.Get("a")
	assert.False(t, ok)
	_, ok = s.Get("b")
	assert.False(t, ok)
}

func TestCleanupExpiredReclaimsOnlyExpiredEntries(t *testing.T) {
	s := openTestStore(t)
	expired := -1 * time.Second
	fresh := 1 * time.Hour
	require.NoError(t, s.Set("old", []byte("v"), &expired))
	require.NoError(t, s.Set("new", []byte("v"), &fresh))

	n := s.CleanupExpired()
	assert.Equal(t, 1, n)

	_, ok := s.Get("new")
	assert.True(t, ok)
	_, ok = s.GetIncludeStale("old")
	assert.False(t, ok)
}

func TestStatsTracksHitsAndMisses(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Set("k", []byte("v"), nil))
	s.Get("k")
	s.Get("missing")

	stats := s.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, uint64(1), stats.Writes)
	assert.InDelta(t, 0.5, stats.HitRate(), 0.001)
}

func TestScanPrefixOnlyVisitsMatchingKeys(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Set(PrefixRSS+"a", []byte("1"), nil))
	require.NoError(t, s.Set(PrefixRSS+"b", []byte("2"), nil))
	require.NoError(t, s.Set(PrefixResult+"c", []byte("3"), nil))

	var seen []string
	s.ScanPrefix(PrefixRSS, func(key string, value []byte, stale bool) bool {
		seen = append(seen, key)
		return true
	})
	assert.ElementsMatch(t, []string{PrefixRSS + "a", PrefixRSS + "b"}, seen)
}

func TestScanPrefixStopsWhenCallbackReturnsFalse(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Set(PrefixRSS+"a", []byte("1"), nil))
	require.NoError(t, s.Set(PrefixRSS+"b", []byte("2"), nil))

	count := 0
	s.ScanPrefix(PrefixRSS, func(key string, value []byte, stale bool) bool {
		count++
		return false
	})
	assert.Equal(t, 1, count)
}

func TestSetRejectsWhenCacheFullAfterCleanup(t *testing.T) {
	s := openTestStore(t)
	s.cfg.MaxSizeBytes = 1 // smaller than any write plus metadata overhead
	err := s.Set("k", []byte("some value"), nil)
	assert.ErrorIs(t, err, ErrCacheFull)
}

func TestHashKey64IsDeterministic(t *testing.T) {
	a := HashKey64("golang", "google")
	b := HashKey64("golang", "google")
	assert.Equal(t, a, b)
}

func TestHashKey64DistinguishesFieldBoundaries(t *testing.T) {
	// "ab"+"c" and "a"+"bc" must not collide just because the concatenated
	// bytes are the same.
	a := HashKey64("ab", "c")
	b := HashKey64("a", "bc")
	assert.NotEqual(t, a, b)
}

func TestResultKeyCarriesPrefix(t *testing.T) {
	key := ResultKey("golang", "google")
	assert.Contains(t, key, PrefixResult)
}

func TestAggregateKeyIgnoresEngineOrder(t *testing.T) {
	a := AggregateKey("golang", []string{"google", "bing"})
	b := AggregateKey("golang", []string{"bing", "google"})
	assert.Equal(t, a, b)
}

func TestOpenAtWithoutRedisAddrLeavesTierNil(t *testing.T) {
	s := openTestStore(t)
	assert.Nil(t, s.redis)
}

func TestOpenAtWithRedisAddrConfiguresTier(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DBPath = filepath.Join(t.TempDir(), "cache.db")
	cfg.RedisAddr = "127.0.0.1:0"
	s, err := OpenAt(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	assert.NotNil(t, s.redis)
}

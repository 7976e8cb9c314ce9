// SPDX-License-Identifier: MIT

// Package cache is the embedded key-value cache layer: two logical "trees"
// (values and metadata) backed by a single bbolt database file, with TTL,
// stale-serve semantics, atomic stats, and a full-text scan for historical
// recall.
package cache

import (
	"time"
)

// Mode names a RAM-cache/flush profile (see modeProfiles). OpenAt does not
// pass the profile's cache size or flush interval to bbolt; the only setting
// a Mode changes is NoSync, which LowLatency turns on.
type Mode int

const (
	// LowLatency skips the fsync on every commit (bbolt NoSync).
	LowLatency Mode = iota
	// HighThroughput is the default; it fsyncs every commit.
	HighThroughput
	// LowMemory opens bbolt exactly as HighThroughput does.
	LowMemory
)

func (m Mode) String() string {
	switch m {
	case LowLatency:
		return "low_latency"
	case LowMemory:
		return "low_memory"
	default:
		return "high_throughput"
	}
}

// modeProfile is the (RAM cache hint, flush interval) pair for a Mode.
type modeProfile struct {
	ramCacheBytes int64
	flushInterval time.Duration
}

var modeProfiles = map[Mode]modeProfile{
	LowLatency:     {ramCacheBytes: 128 << 20, flushInterval: 1 * time.Second},
	HighThroughput: {ramCacheBytes: 64 << 20, flushInterval: 5 * time.Second},
	LowMemory:      {ramCacheBytes: 16 << 20, flushInterval: 10 * time.Second},
}

// Config configures Open.
type Config struct {
	DBPath         string
	DefaultTTL     time.Duration
	MaxSizeBytes   int64
	Enabled        bool
	Compression    bool
	Mode           Mode
	CleanupCron    string // robfig/cron expression for the periodic cleanup_expired sweep
	RedisAddr      string // optional secondary tier; empty disables it
}

// DefaultConfig returns the baseline cache configuration every deployment
// starts from.
func DefaultConfig() Config {
	return Config{
		DBPath:       "./data/cache.db",
		DefaultTTL:   1 * time.Hour,
		MaxSizeBytes: 1 << 30,
		Enabled:      true,
		Compression:  false,
		Mode:         HighThroughput,
		CleanupCron:  "@every 10m",
	}
}

// Entry is the metadata-tree record for one value-tree key.
type Entry struct {
	Key            string
	CreatedAt      int64
	ExpiresAt      *int64
	AccessCount    uint64
	LastAccessedAt int64
	SizeBytes      int
}

// IsExpired reports whether the entry has passed its TTL. An entry with no
// ExpiresAt never expires.
func (e *Entry) IsExpired(now time.Time) bool {
	if e.ExpiresAt == nil {
		return false
	}
	return now.Unix() >= *e.ExpiresAt
}

// newEntry builds metadata for a freshly written value.
func newEntry(key string, ttl *time.Duration, sizeBytes int, now time.Time) *Entry {
	e := &Entry{
		Key:            key,
		CreatedAt:      now.Unix(),
		AccessCount:    0,
		LastAccessedAt: now.Unix(),
		SizeBytes:      sizeBytes,
	}
	if ttl != nil {
		exp := now.Add(*ttl).Unix()
		e.ExpiresAt = &exp
	}
	return e
}

// Stats are the process-wide, atomically-updated cache counters exposed by
// /api/cache/stats.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Writes    uint64
	Deletes   uint64
	TotalKeys uint64
	DiskBytes uint64
	Evictions uint64
}

// HitRate returns hits/(hits+misses), or 0 when there have been no lookups.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Key prefixes, per the content-addressing scheme shared across the cache
// and the orchestrator/rss packages.
const (
	PrefixResult   = "result:"
	PrefixRSS      = "rss:"
	PrefixRSSMeta  = "rss_meta:"
	PrefixSemantic = "semantic:"
	PrefixQueryVec = "qvec:"
)

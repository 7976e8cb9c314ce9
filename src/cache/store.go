// SPDX-License-Identifier: MIT

package cache

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.etcd.io/bbolt"
)

var (
	// ErrCacheFull is returned by Set when the write would exceed MaxSizeBytes
	// even after an attempted cleanup_expired pass.
	ErrCacheFull = errors.New("cache: would exceed max_size_bytes")
	// ErrNotFound is returned by operations that need an existing key.
	ErrNotFound = errors.New("cache: key not found")
)

var (
	bucketValues  = []byte("default")
	bucketMeta    = []byte("metadata")
)

// Store is the embedded sorted key-value cache: one bbolt file holding two
// buckets, values and metadata.
//
// Stats counters are lock-free atomics; bbolt itself serializes writers
// internally, so Store only needs to protect the disk-size estimate used by
// Set's admission check.
type Store struct {
	db     *bbolt.DB
	cfg    Config
	path   string
	redis  *RedisTier

	sizeMu    sync.Mutex
	diskBytes int64

	hits      atomic.Uint64
	misses    atomic.Uint64
	writes    atomic.Uint64
	deletes   atomic.Uint64
	evictions atomic.Uint64
}

var (
	globalOnce  sync.Once
	globalStore *Store
	globalErr   error
)

// Open acquires the process-wide Store, opening the underlying bbolt file on
// first call. Every subsequent call with any Config returns the same shared
// handle, the embedded store is process-exclusive on its data directory,
// so a second instance is never constructed; only tests (with their own
// per-test temp dir and a fresh process) bypass the singleton via OpenAt.
func Open(cfg Config) (*Store, error) {
	globalOnce.Do(func() {
		globalStore, globalErr = OpenAt(cfg)
	})
	return globalStore, globalErr
}

// OpenAt opens an independent Store at cfg.DBPath, bypassing the process
// singleton. Intended for tests that want isolated temp-dir instances.
func OpenAt(cfg Config) (*Store, error) {
	if cfg.DBPath == "" {
		cfg = DefaultConfig()
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("cache: mkdir data dir: %w", err)
	}
	profile := modeProfiles[cfg.Mode]
	opts := &bbolt.Options{
		Timeout:      2 * time.Second,
		FreelistType: bbolt.FreelistMapType,
	}
	_ = profile // the profile's RAM-cache size and flush interval are not passed
	// to bbolt; the mode only decides the NoSync setting below.

	db, err := bbolt.Open(cfg.DBPath, 0o600, opts)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", cfg.DBPath, err)
	}
	// LowLatency trades durability for speed: commits skip the fsync.
	// The other two modes fsync every commit.
	db.NoSync = cfg.Mode == LowLatency

	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucketValues); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(bucketMeta)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: init buckets: %w", err)
	}

	s := &Store{db: db, cfg: cfg, path: cfg.DBPath}
	s.diskBytes = s.fileSize()
	if cfg.RedisAddr != "" {
		s.redis = NewRedisTier(cfg.RedisAddr)
	}
	return s, nil
}

func (s *Store) fileSize() int64 {
	fi, err := os.Stat(s.path)
	if err != nil {
		return 0
	}
	return fi.Size()
}

// Close releases the underlying database handle (and the Redis tier's
// connection pool, if one is configured). Only meaningful for instances
// obtained via OpenAt; the process singleton is typically never closed.
func (s *Store) Close() error {
	if s.redis != nil {
		_ = s.redis.Close()
	}
	return s.db.Close()
}

func encodeEntry(e *Entry) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeEntry(b []byte) (*Entry, error) {
	var e Entry
	if err := gob.NewDecoder(bytes.NewReader(b)).Decode(&e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Set writes value under key with the given ttl (nil means never expires).
// It rejects the write with ErrCacheFull if, after an attempted
// cleanup_expired pass, the write would still exceed MaxSizeBytes.
func (s *Store) Set(key string, value []byte, ttl *time.Duration) error {
	if s.cfg.MaxSizeBytes > 0 {
		s.sizeMu.Lock()
		projected := s.diskBytes + int64(len(value))
		s.sizeMu.Unlock()
		if projected > s.cfg.MaxSizeBytes {
			s.CleanupExpired()
			s.sizeMu.Lock()
			projected = s.diskBytes + int64(len(value))
			s.sizeMu.Unlock()
			if projected > s.cfg.MaxSizeBytes {
				return ErrCacheFull
			}
		}
	}

	now := time.Now()
	effectiveTTL := ttl
	entry := newEntry(key, effectiveTTL, len(value), now)
	encoded, err := encodeEntry(entry)
	if err != nil {
		return fmt.Errorf("cache: encode metadata: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(bucketValues).Put([]byte(key), value); err != nil {
			return err
		}
		return tx.Bucket(bucketMeta).Put([]byte(key), encoded)
	})
	if err != nil {
		return fmt.Errorf("cache: write %s: %w", key, err)
	}

	s.writes.Add(1)
	s.sizeMu.Lock()
	s.diskBytes += int64(len(value) + len(encoded))
	s.sizeMu.Unlock()

	if s.redis != nil {
		redisTTL := s.cfg.DefaultTTL
		if effectiveTTL != nil {
			redisTTL = *effectiveTTL
		}
		s.redis.Set(context.Background(), key, value, redisTTL)
	}

	return nil
}

// Get returns the value for key, or (nil, false) if absent or expired.
// Expired entries are never deleted on read, only CleanupExpired reclaims
// them, so stale-serve and full-text recall keep working.
func (s *Store) Get(key string) ([]byte, bool) {
	val, stale, ok := s.getRaw(key)
	if !ok || stale {
		if !ok {
			s.misses.Add(1)
		}
		return nil, false
	}
	s.hits.Add(1)
	return val, true
}

// GetIncludeStale returns the value along with whether it is past its TTL.
// Unlike Get, a stale hit still counts as found.
func (s *Store) GetIncludeStale(key string) (value []byte, stale bool, ok bool) {
	value, stale, ok = s.getRaw(key)
	if ok {
		s.hits.Add(1)
	} else {
		s.misses.Add(1)
	}
	return value, stale, ok
}

func (s *Store) getRaw(key string) (value []byte, stale bool, ok bool) {
	var rawVal, rawMeta []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		m := tx.Bucket(bucketMeta).Get([]byte(key))
		if m == nil {
			return nil
		}
		rawMeta = append([]byte(nil), m...)
		v := tx.Bucket(bucketValues).Get([]byte(key))
		rawVal = append([]byte(nil), v...)
		return nil
	})
	if err != nil || rawMeta == nil {
		if s.redis == nil {
			return nil, false, false
		}
		return s.getFromRedis(key)
	}
	entry, err := decodeEntry(rawMeta)
	if err != nil {
		return nil, false, false
	}
	now := time.Now()
	stale = entry.IsExpired(now)

	// Best-effort access bookkeeping kept off the hot path; failures
	// here are swallowed.
	go s.bumpAccess(key, entry)

	return rawVal, stale, true
}

// getFromRedis consults the distributed tier on a local miss, backfilling
// the embedded store so subsequent reads on this process hit locally. A
// value recovered this way is never reported stale; the distributed tier
// only ever holds entries within their original TTL.
func (s *Store) getFromRedis(key string) (value []byte, stale bool, ok bool) {
	val, found := s.redis.Get(context.Background(), key)
	if !found {
		return nil, false, false
	}
	var ttl *time.Duration
	if s.cfg.DefaultTTL > 0 {
		ttl = &s.cfg.DefaultTTL
	}
	_ = s.Set(key, val, ttl)
	return val, false, true
}

func (s *Store) bumpAccess(key string, entry *Entry) {
	entry.AccessCount++
	entry.LastAccessedAt = time.Now().Unix()
	encoded, err := encodeEntry(entry)
	if err != nil {
		return
	}
	_ = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketMeta).Put([]byte(key), encoded)
	})
}

// Delete removes key from both trees, returning whether it existed.
func (s *Store) Delete(key string) (existed bool, err error) {
	var freed int64
	err = s.db.Update(func(tx *bbolt.Tx) error {
		vb := tx.Bucket(bucketValues)
		mb := tx.Bucket(bucketMeta)
		if v := vb.Get([]byte(key)); v != nil {
			existed = true
			freed += int64(len(v))
		}
		if m := mb.Get([]byte(key)); m != nil {
			freed += int64(len(m))
		}
		if err := vb.Delete([]byte(key)); err != nil {
			return err
		}
		return mb.Delete([]byte(key))
	})
	if err != nil {
		return false, fmt.Errorf("cache: delete %s: %w", key, err)
	}
	if existed {
		s.deletes.Add(1)
		s.sizeMu.Lock()
		s.diskBytes -= freed
		if s.diskBytes < 0 {
			s.diskBytes = 0
		}
		s.sizeMu.Unlock()
	}
	return existed, nil
}

// Clear truncates both trees.
func (s *Store) Clear() error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketValues); err != nil && err != bbolt.ErrBucketNotFound {
			return err
		}
		if err := tx.DeleteBucket(bucketMeta); err != nil && err != bbolt.ErrBucketNotFound {
			return err
		}
		if _, err := tx.CreateBucket(bucketValues); err != nil {
			return err
		}
		_, err := tx.CreateBucket(bucketMeta)
		return err
	})
	if err != nil {
		return fmt.Errorf("cache: clear: %w", err)
	}
	s.sizeMu.Lock()
	s.diskBytes = 0
	s.sizeMu.Unlock()
	return nil
}

// CleanupExpired deletes every entry whose ExpiresAt has passed, returning
// the count reclaimed.
func (s *Store) CleanupExpired() int {
	now := time.Now()
	var toDelete []string
	var freed int64

	_ = s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(bucketMeta).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			entry, err := decodeEntry(v)
			if err != nil {
				continue
			}
			if entry.IsExpired(now) {
				toDelete = append(toDelete, string(k))
			}
		}
		return nil
	})
	if len(toDelete) == 0 {
		return 0
	}

	_ = s.db.Update(func(tx *bbolt.Tx) error {
		vb := tx.Bucket(bucketValues)
		mb := tx.Bucket(bucketMeta)
		for _, k := range toDelete {
			if v := vb.Get([]byte(k)); v != nil {
				freed += int64(len(v))
			}
			if m := mb.Get([]byte(k)); m != nil {
				freed += int64(len(m))
			}
			vb.Delete([]byte(k))
			mb.Delete([]byte(k))
		}
		return nil
	})

	s.evictions.Add(uint64(len(toDelete)))
	s.sizeMu.Lock()
	s.diskBytes -= freed
	if s.diskBytes < 0 {
		s.diskBytes = 0
	}
	s.sizeMu.Unlock()
	return len(toDelete)
}

// IsStale reports whether the entry for key (if any) was created at least
// timeline ago. Returns nil if the key has no cached entry at all.
func (s *Store) IsStale(key string, timeline time.Duration) *bool {
	var rawMeta []byte
	_ = s.db.View(func(tx *bbolt.Tx) error {
		m := tx.Bucket(bucketMeta).Get([]byte(key))
		rawMeta = append([]byte(nil), m...)
		return nil
	})
	if rawMeta == nil {
		return nil
	}
	entry, err := decodeEntry(rawMeta)
	if err != nil {
		return nil
	}
	stale := time.Since(time.Unix(entry.CreatedAt, 0)) >= timeline
	return &stale
}

// Stats snapshots the atomic counters plus a bucket key count.
func (s *Store) Stats() Stats {
	var totalKeys uint64
	_ = s.db.View(func(tx *bbolt.Tx) error {
		totalKeys = uint64(tx.Bucket(bucketValues).Stats().KeyN)
		return nil
	})
	s.sizeMu.Lock()
	disk := s.diskBytes
	s.sizeMu.Unlock()
	return Stats{
		Hits:      s.hits.Load(),
		Misses:    s.misses.Load(),
		Writes:    s.writes.Load(),
		Deletes:   s.deletes.Load(),
		TotalKeys: totalKeys,
		DiskBytes: uint64(disk),
		Evictions: s.evictions.Load(),
	}
}

// ScanPrefix walks every key with the given prefix, calling fn(key, value,
// stale) for each. Stops early if fn returns false. Used by the full-text
// scan and by the rss package's historical recall.
func (s *Store) ScanPrefix(prefix string, fn func(key string, value []byte, stale bool) bool) {
	now := time.Now()
	_ = s.db.View(func(tx *bbolt.Tx) error {
		vc := tx.Bucket(bucketValues).Cursor()
		mb := tx.Bucket(bucketMeta)
		pfx := []byte(prefix)
		for k, v := vc.Seek(pfx); k != nil && bytes.HasPrefix(k, pfx); k, v = vc.Next() {
			stale := false
			if m := mb.Get(k); m != nil {
				if entry, err := decodeEntry(m); err == nil {
					stale = entry.IsExpired(now)
				}
			}
			if !fn(string(k), v, stale) {
				return nil
			}
		}
		return nil
	})
}

// HashKey64 is the content-addressing hash used to build cache keys ,
// FNV-1a over the UTF-8 bytes, a stable, fast, non-cryptographic 64-bit
// hash.
func HashKey64(parts ...string) uint64 {
	h := fnvOffset
	for i, p := range parts {
		if i > 0 {
			h = fnvStep(h, 0xff) // separator byte between fields, same role as "⊕"
		}
		for j := 0; j < len(p); j++ {
			h = fnvStep(h, p[j])
		}
	}
	return h
}

const (
	fnvOffset = uint64(14695981039346656037)
	fnvPrime  = uint64(1099511628211)
)

func fnvStep(h uint64, b byte) uint64 {
	h ^= uint64(b)
	h *= fnvPrime
	return h
}

// ResultKey builds the "result:"+hash64(query⊕engine) cache key.
func ResultKey(query, engine string) string {
	return PrefixResult + formatHash(HashKey64(query, engine))
}

// AggregateKey builds the orchestrator's aggregate cache key:
// hash(query ⊕ sorted(engines_used)).
func AggregateKey(query string, engines []string) string {
	sorted := append([]string(nil), engines...)
	sort.Strings(sorted)
	return PrefixResult + formatHash(HashKey64(query, strings.Join(sorted, ",")))
}

func formatHash(h uint64) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], h)
	return fmt.Sprintf("%x", buf)
}

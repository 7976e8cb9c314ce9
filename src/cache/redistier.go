// SPDX-License-Identifier: MIT

package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTier is an optional distributed front for the embedded Store, letting
// a HighThroughput deployment share cached results across a cluster of
// processes instead of each holding its own bbolt file cold on startup.
// The embedded Store remains authoritative; RedisTier is a best-effort
// accelerator, never a requirement, every method degrades to a miss on
// error rather than surfacing it.
type RedisTier struct {
	client *redis.Client
}

// NewRedisTier connects to addr. Pass "" (checked by callers) to skip the
// tier entirely; the embedded store is correct and complete without it.
func NewRedisTier(addr string) *RedisTier {
	return &RedisTier{client: redis.NewClient(&redis.Options{Addr: addr})}
}

// Get attempts the distributed tier before the caller falls back to Store.
func (r *RedisTier) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

// Set mirrors a write into the distributed tier with the same TTL used
// locally. Best-effort: errors are swallowed since the embedded Store is
// the tier of record.
func (r *RedisTier) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	_ = r.client.Set(ctx, key, value, ttl).Err()
}

// Close releases the Redis client's connection pool.
func (r *RedisTier) Close() error {
	return r.client.Close()
}

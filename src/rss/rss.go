// SPDX-License-Identifier: MIT

// Package rss is the read side of the RSS subsystem: a feed-fetching
// subsystem writes cached entries under the rss:/rss_meta: key prefixes,
// and this package only ever reads them back, it never fetches or
// parses a feed itself.
package rss

import (
	"encoding/json"
	"strings"

	"github.com/apimgr/seesea/src/cache"
)

// Item is one cached RSS entry, keyed by feed item URL.
type Item struct {
	URL string `json:"url"`
	Title string `json:"title"`
	Description string `json:"description"`
	PublishedAt string `json:"published_at,omitempty"`
	FeedURL string `json:"feed_url,omitempty"`
}

// Cache wraps the embedded KV store's rss:/rss_meta: namespace.
type Cache struct {
	store *cache.Store
}

// New builds an rss.Cache over an already-open store.
func New(store *cache.Store) *Cache {
	return &Cache{store: store}
}

// Get fetches one cached RSS item by URL, if present.
func (c *Cache) Get(url string) (Item, bool) {
	raw, ok := c.store.Get(cache.PrefixRSS + url)
	if !ok {
		return Item{}, false
	}
	var item Item
	if err := json.Unmarshal(raw, &item); err != nil {
		return Item{}, false
	}
	return item, true
}

// Hit is one match from a full-text scan over cached RSS entries.
type Hit struct {
	Item Item
	Stale bool
}

// Search scans every cached RSS entry for one whose title or description
// contains term (case-insensitive).
func (c *Cache) Search(term string) []Hit {
	term = strings.ToLower(term)
	var hits []Hit
	c.store.ScanPrefix(cache.PrefixRSS, func(key string, value []byte, stale bool) bool {
		var item Item
		if err := json.Unmarshal(value, &item); err != nil {
			return true
		}
		if strings.Contains(strings.ToLower(item.Title), term) || strings.Contains(strings.ToLower(item.Description), term) {
			hits = append(hits, Hit{Item: item, Stale: stale})
		}
		return true
	})
	return hits
}

// Count reports how many RSS entries are currently cached.
func (c *Cache) Count() int {
	n := 0
	c.store.ScanPrefix(cache.PrefixRSS, func(key string, value []byte, stale bool) bool {
		n++
		return true
	})
	return n
}

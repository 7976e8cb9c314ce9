// SPDX-License-Identifier: MIT

package rss

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/apimgr/seesea/src/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*cache.Store, *Cache) {
	t.Helper()
	store, err := cache.OpenAt(cache.Config{DBPath: filepath.Join(t.TempDir(), "rss.db"), Mode: cache.HighThroughput})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, New(store)
}

func seedItem(t *testing.T, store *cache.Store, item Item) {
	t.Helper()
	raw, err := json.Marshal(item)
	require.NoError(t, err)
	require.NoError(t, store.Set(cache.PrefixRSS+item.URL, raw, nil))
}

func TestGetReturnsStoredItem(t *testing.T) {
	store, c := newTestCache(t)
	seedItem(t, store, Item{URL: "https://example.com/a", Title: "Rust 1.80 released"})

	item, ok := c.Get("https://example.com/a")
	require.True(t, ok)
	assert.Equal(t, "Rust 1.80 released", item.Title)
}

func TestGetMissingReturnsFalse(t *testing.T) {
	_, c := newTestCache(t)
	_, ok := c.Get("https://example.com/missing")
	assert.False(t, ok)
}

func TestSearchMatchesTitleCaseInsensitive(t *testing.T) {
	store, c := newTestCache(t)
	seedItem(t, store, Item{URL: "https://example.com/a", Title: "RUST programming news"})
	seedItem(t, store, Item{URL: "https://example.com/b", Title: "unrelated"})

	hits := c.Search("rust")
	require.Len(t, hits, 1)
	assert.Equal(t, "https://example.com/a", hits[0].Item.URL)
}

func TestCountReflectsStoredEntries(t *testing.T) {
	store, c := newTestCache(t)
	seedItem(t, store, Item{URL: "https://example.com/a", Title: "one"})
	seedItem(t, store, Item{URL: "https://example.com/b", Title: "two"})

	assert.Equal(t, 2, c.Count())
}

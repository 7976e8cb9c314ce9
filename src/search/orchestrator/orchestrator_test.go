// SPDX-License-Identifier: MIT

package orchestrator

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/apimgr/seesea/src/cache"
	"github.com/apimgr/seesea/src/model"
	"github.com/apimgr/seesea/src/netclient"
	"github.com/apimgr/seesea/src/search/aggregator"
	"github.com/apimgr/seesea/src/search/manager"
	"github.com/apimgr/seesea/src/search/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEngine struct {
	info  model.EngineInfo
	items []model.SearchResultItem
}

func (s *stubEngine) Info() model.EngineInfo                                  { return s.info }
func (s *stubEngine) Request(model.SearchQuery, *model.RequestParams) error   { return nil }
func (s *stubEngine) Fetch(context.Context, model.RequestParams) (*netclient.Response, error) {
	return nil, nil
}
func (s *stubEngine) Response(*netclient.Response) ([]model.SearchResultItem, error) {
	return s.items, nil
}
func (s *stubEngine) Search(ctx context.Context, q model.SearchQuery) (model.SearchResult, error) {
	return model.SearchResult{EngineName: s.info.Name, Items: s.items}, nil
}

func newOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	store, err := cache.OpenAt(cache.Config{DBPath: filepath.Join(t.TempDir(), "test.db"), Mode: cache.HighThroughput})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	mgr := manager.New()
	mgr.Register(&stubEngine{
		info:  model.EngineInfo{Name: "stub-a"},
		items: []model.SearchResultItem{{Title: "Rust programming language", URL: "https://a", Content: "systems language"}},
	})
	mgr.Register(&stubEngine{
		info:  model.EngineInfo{Name: "stub-b"},
		items: []model.SearchResultItem{{Title: "unrelated result", URL: "https://b", Content: "nothing to do with it"}},
	})

	return New(store, mgr, query.NewParser(), aggregator.Default(), DefaultOptions())
}

func TestSearchReturnsAggregatedResultsAcrossEngines(t *testing.T) {
	o := newOrchestrator(t)
	resp, err := o.Search(context.Background(), model.SearchQuery{Query: "rust", PageSize: 10})
	require.NoError(t, err)
	assert.False(t, resp.Cached)
	assert.Len(t, resp.Results, 2)
	assert.ElementsMatch(t, []string{"stub-a", "stub-b"}, resp.EnginesUsed)
}

func TestSearchSecondCallHitsCache(t *testing.T) {
	o := newOrchestrator(t)
	_, err := o.Search(context.Background(), model.SearchQuery{Query: "rust", PageSize: 10})
	require.NoError(t, err)

	resp, err := o.Search(context.Background(), model.SearchQuery{Query: "rust", PageSize: 10})
	require.NoError(t, err)
	assert.True(t, resp.Cached)
	assert.Len(t, resp.Results, 2)
}

func TestSearchRespectsPageSizeTruncation(t *testing.T) {
	o := newOrchestrator(t)
	resp, err := o.Search(context.Background(), model.SearchQuery{Query: "rust", PageSize: 1})
	require.NoError(t, err)
	assert.Len(t, resp.Results, 1)
}

func TestStatsCountSearchesAndCacheOutcomes(t *testing.T) {
	o := newOrchestrator(t)
	_, _ = o.Search(context.Background(), model.SearchQuery{Query: "rust", PageSize: 10})
	_, _ = o.Search(context.Background(), model.SearchQuery{Query: "rust", PageSize: 10})

	stats := o.Stats()
	assert.Equal(t, uint64(2), stats.TotalSearches)
	assert.Equal(t, uint64(1), stats.CacheHits)
	assert.Equal(t, uint64(1), stats.CacheMisses)
}

func TestSearchFullTextSurfacesHistoricalItemNoEngineReturns(t *testing.T) {
	o := newOrchestrator(t)

	// Simulate an earlier, unrelated search that cached an item titled
	// "Asynchronous Rust" under the result: prefix. No live engine in this
	// orchestrator ever returns that title.
	historicalKey := cache.AggregateKey("async guide", []string{"stub-a", "stub-b"})
	o.storeCache(historicalKey, cachedEnvelope{
		Items: []model.SearchResultItem{
			{Title: "Asynchronous Rust", URL: "https://async-rust.example/guide", Content: "a guide to async in rust"},
		},
		EnginesUsed: []string{"stub-a", "stub-b"},
	})

	resp, err := o.SearchFullText(context.Background(), model.SearchQuery{Query: "async rust", PageSize: 10})
	require.NoError(t, err)

	var found bool
	for _, item := range resp.Results {
		if item.Title == "Asynchronous Rust" {
			found = true
		}
	}
	assert.True(t, found, "expected historical item to resurface in full-text search")
}

func TestFullTextSearchScansResultPrefixAsPrimarySource(t *testing.T) {
	o := newOrchestrator(t)

	key := cache.AggregateKey("async guide", []string{"stub-a"})
	o.storeCache(key, cachedEnvelope{
		Items: []model.SearchResultItem{
			{Title: "Asynchronous Rust", URL: "https://async-rust.example/guide", Content: "a guide to async in rust"},
		},
	})

	items := o.FullTextSearch("async rust", 10)
	require.Len(t, items, 1)
	assert.Equal(t, "Asynchronous Rust", items[0].Title)
}

func TestSearchRejectsEmptyQueryBeforeDispatch(t *testing.T) {
	o := newOrchestrator(t)
	_, err := o.Search(context.Background(), model.SearchQuery{Query: "", PageSize: 10})
	require.Error(t, err)

	stats := o.Stats()
	assert.Equal(t, uint64(0), stats.CacheMisses)
	assert.Equal(t, uint64(0), stats.EngineFailures)
}

func TestSearchFullTextRejectsEmptyQueryBeforeDispatch(t *testing.T) {
	o := newOrchestrator(t)
	_, err := o.SearchFullText(context.Background(), model.SearchQuery{Query: "", PageSize: 10})
	require.Error(t, err)
}

func TestStreamSearchDeliversItemsFromEachEngine(t *testing.T) {
	o := newOrchestrator(t)
	stream := o.StreamSearch(context.Background(), model.SearchQuery{Query: "rust"})

	var gotItems int
	for item := range stream {
		if item.Item.Title != "" {
			gotItems++
		}
	}
	assert.Equal(t, 2, gotItems)
}

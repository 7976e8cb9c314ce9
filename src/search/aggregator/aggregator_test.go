// SPDX-License-Identifier: MIT

package aggregator

import (
	"testing"

	"github.com/apimgr/seesea/src/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(url, title string) model.SearchResultItem {
	return model.SearchResultItem{Title: title, URL: url, Content: "test", Score: 1.0, ResultType: model.ResultWeb}
}

func itemFromEngine(url, title, engine string) model.SearchResultItem {
	it := item(url, title)
	it.Engine = engine
	return it
}

func TestDefaultAggregatorConfiguration(t *testing.T) {
	agg := Default()
	assert.Equal(t, Merged, agg.strategy)
	assert.Equal(t, SortByRelevance, agg.sortBy)
}

func TestAggregateEmptyInput(t *testing.T) {
	agg := Default()
	result := agg.Aggregate(nil)
	assert.Equal(t, 0, len(result.Items))
	assert.Equal(t, 0, *result.TotalResults)
}

func TestAggregateDeduplicatesAcrossEngines(t *testing.T) {
	agg := Default()
	r1 := model.SearchResult{EngineName: "engine1", Items: []model.SearchResultItem{
		item("https://example.com/1", "Title 1"),
		item("https://example.com/2", "Title 2"),
	}}
	r2 := model.SearchResult{EngineName: "engine2", Items: []model.SearchResultItem{
		item("https://example.com/1", "Title 1 dup"),
		item("https://example.com/3", "Title 3"),
	}}

	aggregated := agg.Aggregate([]model.SearchResult{r1, r2})
	assert.Len(t, aggregated.Items, 3)
}

func TestRoundRobinInterleavesByEngine(t *testing.T) {
	agg := New(RoundRobin, SortByRelevance)
	r1 := model.SearchResult{EngineName: "engine1", Items: []model.SearchResultItem{
		item("https://example.com/1", "A1"),
		item("https://example.com/2", "A2"),
	}}
	r2 := model.SearchResult{EngineName: "engine2", Items: []model.SearchResultItem{
		item("https://example.com/3", "B1"),
		item("https://example.com/4", "B2"),
	}}

	aggregated := agg.Aggregate([]model.SearchResult{r1, r2})
	assert.Len(t, aggregated.Items, 4)
	assert.Equal(t, "A1", aggregated.Items[0].Title)
	assert.Equal(t, "B1", aggregated.Items[1].Title)
}

func TestAggregateWithScoringReordersByRelevance(t *testing.T) {
	agg := Default()
	r1 := model.SearchResult{EngineName: "engine1", Items: []model.SearchResultItem{
		item("https://example.com/python", "Python tutorial"),
	}}
	r2 := model.SearchResult{EngineName: "engine2", Items: []model.SearchResultItem{
		item("https://example.com/rust", "Rust programming language"),
	}}

	aggregated := agg.AggregateWithScoring([]model.SearchResult{r1, r2}, "rust")
	assert.Equal(t, "Rust programming language", aggregated.Items[0].Title)
	for i := 1; i < len(aggregated.Items); i++ {
		assert.GreaterOrEqual(t, aggregated.Items[i-1].Score, aggregated.Items[i].Score)
	}
}

func TestAggregateWithScoringUsesEachItemsOwnEngineAuthority(t *testing.T) {
	// Identical title/content/URL-relevance, differing only in source
	// engine: google (1.0) must outscore mojeek (0.75) in the mixed batch,
	// proving authority isn't collapsed to a single "aggregated" lookup.
	agg := Default()
	r1 := model.SearchResult{EngineName: "google", Items: []model.SearchResultItem{
		itemFromEngine("https://example.com/a", "identical result", "google"),
	}}
	r2 := model.SearchResult{EngineName: "mojeek", Items: []model.SearchResultItem{
		itemFromEngine("https://example.com/b", "identical result", "mojeek"),
	}}

	aggregated := agg.AggregateWithScoring([]model.SearchResult{r1, r2}, "identical result")
	require.Len(t, aggregated.Items, 2)
	assert.Equal(t, "https://example.com/a", aggregated.Items[0].URL)
	assert.Greater(t, aggregated.Items[0].Score, aggregated.Items[1].Score)
}

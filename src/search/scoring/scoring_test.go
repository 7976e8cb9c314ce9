// SPDX-License-Identifier: MIT

package scoring

import (
	"testing"

	"github.com/apimgr/seesea/src/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tokens := Tokenize("Hello, World! This is a test.")
	assert.Equal(t, []string{"hello", "world", "this", "is", "a", "test"}, tokens)
}

func TestBM25Score(t *testing.T) {
	params := DefaultBM25Params()

	score1 := BM25Score("rust programming language", "rust", 3.0, params)
	assert.Greater(t, score1, 0.0)

	score2 := BM25Score("python programming", "rust", 3.0, params)
	assert.Equal(t, 0.0, score2)

	score3 := BM25Score("rust rust rust", "rust", 3.0, params)
	assert.Greater(t, score3, score1)
}

func TestExactMatchBonus(t *testing.T) {
	assert.Equal(t, 1.0, ExactMatchBonus("rust programming", "rust programming"))
	assert.Equal(t, 0.8, ExactMatchBonus("rust programming language", "rust"))
	assert.Equal(t, 0.0, ExactMatchBonus("python", "rust"))
}

func TestURLRelevance(t *testing.T) {
	require.Greater(t, URLRelevance("https://www.rust-lang.org/", "rust"), 0.0)
	require.Equal(t, 0.0, URLRelevance("https://www.python.org/", "rust"))
}

func TestPositionScoreDecreasesWithRank(t *testing.T) {
	assert.Greater(t, PositionScore(0), PositionScore(5))
}

func TestEngineAuthorityKnownAndUnknown(t *testing.T) {
	assert.Equal(t, 1.0, EngineAuthority("Google"))
	assert.Equal(t, 0.70, EngineAuthority("some-obscure-engine"))
}

func TestScoreAndSortResultsOrdersDescending(t *testing.T) {
	items := []model.SearchResultItem{
		{Title: "Python tutorial", Content: "learn python basics", URL: "https://python.org", Engine: "google"},
		{Title: "Rust programming language", Content: "systems programming in rust", URL: "https://rust-lang.org", Engine: "google"},
		{Title: "Unrelated", Content: "nothing to do with either", URL: "https://example.com", Engine: "google"},
	}

	ScoreAndSortResults(items, "rust", nil)

	for _, it := range items {
		assert.GreaterOrEqual(t, it.Score, 0.0)
		assert.LessOrEqual(t, it.Score, 1.0)
	}
	for i := 1; i < len(items); i++ {
		assert.GreaterOrEqual(t, items[i-1].Score, items[i].Score)
	}
	assert.Equal(t, "Rust programming language", items[0].Title)
}

func TestScoreResultsEmptyInputNoPanic(t *testing.T) {
	var items []model.SearchResultItem
	ScoreResults(items, "anything", nil, nil)
	assert.Empty(t, items)
}

func TestCalculateScoreUsesEachItemsOwnEngine(t *testing.T) {
	// Two items, identical text/position, differing only in which engine
	// they came from: the authority signal must track item.Engine, not a
	// single batch-wide name.
	weights := Weights{EngineAuthority: 1.0}
	bm25 := DefaultBM25Params()

	high := model.SearchResultItem{Title: "x", Content: "x", URL: "https://a", Engine: "google"}
	low := model.SearchResultItem{Title: "x", Content: "x", URL: "https://b", Engine: "mojeek"}

	scoreHigh := CalculateScore(high, "x", 0, 1, 1, weights, bm25)
	scoreLow := CalculateScore(low, "x", 0, 1, 1, weights, bm25)

	assert.Greater(t, scoreHigh, scoreLow)
}

func TestScoreResultsLooksUpAuthorityPerItem(t *testing.T) {
	items := []model.SearchResultItem{
		{Title: "result", Content: "result", URL: "https://a", Engine: "google"},
		{Title: "result", Content: "result", URL: "https://b", Engine: "mojeek"},
	}
	ScoreResults(items, "result", nil, nil)
	assert.Greater(t, items[0].Score, items[1].Score)
}

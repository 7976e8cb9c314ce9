// SPDX-License-Identifier: MIT

// Package scoring implements the BM25-plus-heuristics cross-engine re-ranking
// stage. It has no cross-query corpus: IDF is simplified to 1 and averages
// are computed within the single aggregated result set being scored.
package scoring

import (
	"math"
	"sort"
	"strings"

	"github.com/apimgr/seesea/src/model"
)

// BM25Params controls term-frequency saturation (k1) and length
// normalization (b).
type BM25Params struct {
	K1 float64
	B float64
}

// DefaultBM25Params returns the standard tuning: k1=1.5, b=0.75.
func DefaultBM25Params() BM25Params {
	return BM25Params{K1: 1.5, B: 0.75}
}

// Weights is the final weighted-sum mix across the five scoring signals.
type Weights struct {
	TitleBM25 float64
	ContentBM25 float64
	URLMatch float64
	EngineAuthority float64
	Position float64
}

// DefaultWeights is the standard signal mix: title 0.40, content 0.30,
// url 0.10, authority 0.15, position 0.05.
func DefaultWeights() Weights {
	return Weights{
		TitleBM25: 0.40,
		ContentBM25: 0.30,
		URLMatch: 0.10,
		EngineAuthority: 0.15,
		Position: 0.05,
	}
}

// engineAuthority is the fixed lookup table; engines absent from
// the table fall back to the unknown-engine default of 0.70.
var engineAuthority = map[string]float64{
	"google": 1.0,
	"bing": 0.95,
	"duckduckgo": 0.90,
	"brave": 0.88,
	"startpage": 0.85,
	"qwant": 0.83,
	"yahoo": 0.80,
	"baidu": 0.95,
	"search360": 0.85,
	"sogou": 0.80,
	"yandex": 0.85,
	"mojeek": 0.75,
	"wikipedia": 0.95,
	"wikidata": 0.90,
	"github": 0.92,
	"stackoverflow": 0.93,
	"unsplash": 0.85,
}

const unknownEngineAuthority = 0.70

// EngineAuthority looks up a fixed reputation score for engineName,
// case-insensitively, defaulting to 0.70 for engines the table doesn't name.
func EngineAuthority(engineName string) float64 {
	if v, ok := engineAuthority[strings.ToLower(engineName)]; ok {
		return v
	}
	return unknownEngineAuthority
}

// Tokenize lowercases and splits on runs of non-alphanumeric, non-underscore
// characters, dropping empty tokens.
func Tokenize(text string) []string {
	lower := strings.ToLower(text)
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || isAlnumRune(r) {
			cur.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

func isAlnumRune(r rune) bool {
	// Covers the common non-ASCII letter/digit ranges without pulling in
	// the full unicode tables.
	return (r >= 0x00C0 && r <= 0x024F) || // Latin extended
		(r >= 0x4E00 && r <= 0x9FFF) || // CJK unified ideographs
		(r >= 0x3040 && r <= 0x30FF) // hiragana/katakana
}

func termFrequency(tokens []string) map[string]int {
	tf := make(map[string]int, len(tokens))
	for _, t := range tokens {
		tf[t]++
	}
	return tf
}

// BM25Score scores document against query, normalizing by avgDocLength (the
// average token count of the field across the result set being aggregated).
func BM25Score(document, query string, avgDocLength float64, params BM25Params) float64 {
	docTokens := Tokenize(document)
	queryTokens := Tokenize(query)
	if len(docTokens) == 0 || len(queryTokens) == 0 {
		return 0
	}

	docLength := float64(len(docTokens))
	tf := termFrequency(docTokens)

	var score float64
	for _, qt := range queryTokens {
		freq, ok := tf[qt]
		if !ok {
			continue
		}
		f := float64(freq)
		const idf = 1.0
		numerator := f * (params.K1 + 1.0)
		denominator := f + params.K1*(1.0-params.B+params.B*(docLength/avgDocLength))
		score += idf * (numerator / denominator)
	}

	maxPossible := float64(len(queryTokens)) * (params.K1 + 1.0)
	if maxPossible <= 0 {
		return 0
	}
	return math.Min(score/maxPossible, 1.0)
}

// ExactMatchBonus gives 1.0 for a case-insensitive exact match, 0.8 for a
// prefix match, 0.5 for a substring match, else 0.
func ExactMatchBonus(text, query string) float64 {
	textLower := strings.ToLower(text)
	queryLower := strings.ToLower(query)
	if !strings.Contains(textLower, queryLower) {
		return 0
	}
	switch {
	case textLower == queryLower:
		return 1.0
	case strings.HasPrefix(textLower, queryLower):
		return 0.8
	default:
		return 0.5
	}
}

// URLRelevance is the fraction of query tokens that appear as substrings of
// the lowercased URL.
func URLRelevance(url, query string) float64 {
	urlLower := strings.ToLower(url)
	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 {
		return 0
	}
	matches := 0
	for _, t := range queryTokens {
		if strings.Contains(urlLower, t) {
			matches++
		}
	}
	return float64(matches) / float64(len(queryTokens))
}

// PositionScore applies logarithmic decay over a 0-based source-engine rank.
func PositionScore(position int) float64 {
	return 1.0 / (1.0 + math.Log(float64(position+1)))
}

// CalculateScore combines all five signals into the final [0,1] score for
// one item at its source-engine position. Engine authority is looked up
// from item.Engine, not a batch-wide name, so a mixed-engine aggregate
// scores each item against the engine it actually came from.
func CalculateScore(
	item model.SearchResultItem,
	query string,
	position int,
	avgTitleLength, avgContentLength float64,
	weights Weights,
	bm25 BM25Params,
) float64 {
	titleBM25 := BM25Score(item.Title, query, avgTitleLength, bm25)
	titleExact := ExactMatchBonus(item.Title, query)
	titleScore := math.Min(titleBM25*0.7+titleExact*0.3, 1.0)

	contentBM25 := BM25Score(item.Content, query, avgContentLength, bm25)
	contentExact := ExactMatchBonus(item.Content, query)
	contentScore := math.Min(contentBM25*0.8+contentExact*0.2, 1.0)

	urlScore := URLRelevance(item.URL, query)
	authorityScore := EngineAuthority(item.Engine)
	posScore := PositionScore(position)

	final := titleScore*weights.TitleBM25 +
		contentScore*weights.ContentBM25 +
		urlScore*weights.URLMatch +
		authorityScore*weights.EngineAuthority +
		posScore*weights.Position

	return math.Max(0, math.Min(final, 1.0))
}

func avgTokenLength(items []model.SearchResultItem, field func(model.SearchResultItem) string) float64 {
	if len(items) == 0 {
		return 0
	}
	total := 0
	for _, it := range items {
		total += len(Tokenize(field(it)))
	}
	return float64(total) / float64(len(items))
}

// ScoreResults assigns item.Score in place for every item, using its index
// as the source-engine position and its own item.Engine for authority
// lookup. weights/bm25 default when nil.
func ScoreResults(items []model.SearchResultItem, query string, weights *Weights, bm25 *BM25Params) {
	if len(items) == 0 {
		return
	}
	w := DefaultWeights()
	if weights != nil {
		w = *weights
	}
	b := DefaultBM25Params()
	if bm25 != nil {
		b = *bm25
	}

	avgTitle := avgTokenLength(items, func(i model.SearchResultItem) string { return i.Title })
	avgContent := avgTokenLength(items, func(i model.SearchResultItem) string { return i.Content })

	for pos := range items {
		items[pos].Score = CalculateScore(items[pos], query, pos, avgTitle, avgContent, w, b)
	}
}

// ScoreAndSortResults scores in place, then sorts descending by score.
func ScoreAndSortResults(items []model.SearchResultItem, query string, weights *Weights) {
	ScoreResults(items, query, weights, nil)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
}

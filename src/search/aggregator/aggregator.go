// SPDX-License-Identifier: MIT

// Package aggregator merges N per-engine result sets under a chosen
// strategy, standardizes and deduplicates them, and (for Merged/Ranked)
// re-scores via the scoring package.
package aggregator

import (
	"sort"
	"strings"

	"github.com/apimgr/seesea/src/model"
	"github.com/apimgr/seesea/src/search/scoring"
	"github.com/apimgr/seesea/src/search/standardize"
)

// Strategy selects how per-engine result sets are combined.
type Strategy int

const (
	// Merged concatenates per-engine items, dedups by URL (first wins), and
	// re-ranks by the scoring package using the query. The default.
	Merged Strategy = iota
	// RoundRobin interleaves top-1 of each engine, then top-2, etc., to
	// guarantee per-engine presence diversity; dedup only, no re-ranking.
	RoundRobin
	// Ranked behaves identically to Merged.
	Ranked
	// Custom concatenates and dedups without any re-ranking.
	Custom
)

// SortBy picks the final ordering dimension.
type SortBy int

const (
	SortByRelevance SortBy = iota
	SortByTime
	SortBySource
)

// Aggregator combines multiple engines' SearchResults into one.
type Aggregator struct {
	strategy       Strategy
	sortBy         SortBy
	scoringWeights *scoring.Weights
}

// New builds an Aggregator with the given strategy and sort dimension.
func New(strategy Strategy, sortBy SortBy) *Aggregator {
	return &Aggregator{strategy: strategy, sortBy: sortBy}
}

// Default returns the standard aggregator: Merged strategy, sorted by relevance.
func Default() *Aggregator {
	return New(Merged, SortByRelevance)
}

// WithScoring overrides the scoring weights used during re-ranking.
func (a *Aggregator) WithScoring(w scoring.Weights) *Aggregator {
	a.scoringWeights = &w
	return a
}

func emptyAggregate() model.SearchResult {
	total := 0
	return model.SearchResult{
		EngineName:   "aggregated",
		TotalResults: &total,
		Items:        []model.SearchResultItem{},
		Metadata:     map[string]string{},
	}
}

// Aggregate merges results under the configured strategy without touching
// per-item scores. AggregateWithScoring does its own merge and dedup and
// does not call it.
func (a *Aggregator) Aggregate(results []model.SearchResult) model.SearchResult {
	if len(results) == 0 {
		return emptyAggregate()
	}
	items := a.deduplicateAndMerge(results)
	total := len(items)
	return model.SearchResult{
		EngineName:   "aggregated",
		TotalResults: &total,
		Items:        items,
		Metadata:     map[string]string{},
	}
}

// AggregateWithScoring standardizes every engine's results, merges them,
// dedups by URL, and re-scores/sorts against query. The orchestrator uses
// this path for every search; the configured strategy is not consulted here.
func (a *Aggregator) AggregateWithScoring(results []model.SearchResult, query string) model.SearchResult {
	if len(results) == 0 {
		return emptyAggregate()
	}

	for i := range results {
		standardize.StandardizeResults(&results[i])
	}

	var all []model.SearchResultItem
	for _, r := range results {
		all = append(all, r.Items...)
	}
	all = standardize.DeduplicateByURL(all)

	scoring.ScoreAndSortResults(all, query, a.scoringWeights)

	total := len(all)
	return model.SearchResult{
		EngineName:   "aggregated",
		TotalResults: &total,
		Items:        all,
		Metadata:     map[string]string{},
	}
}

func (a *Aggregator) deduplicateAndMerge(results []model.SearchResult) []model.SearchResultItem {
	seen := make(map[string]struct{})
	var merged []model.SearchResultItem

	switch a.strategy {
	case RoundRobin:
		maxLen := 0
		for _, r := range results {
			if len(r.Items) > maxLen {
				maxLen = len(r.Items)
			}
		}
		for i := 0; i < maxLen; i++ {
			for _, r := range results {
				if i >= len(r.Items) {
					continue
				}
				item := r.Items[i]
				key := item.URL
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
				merged = append(merged, item)
			}
		}
	default: // Merged, Ranked, Custom all concat-then-dedup the same way
		for _, r := range results {
			for _, item := range r.Items {
				key := item.URL
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
				merged = append(merged, item)
			}
		}
		if a.strategy == Merged || a.strategy == Ranked {
			a.sortItems(merged)
		}
	}

	return merged
}

func (a *Aggregator) sortItems(items []model.SearchResultItem) {
	switch a.sortBy {
	case SortByRelevance:
		// Input order already reflects relevance until AggregateWithScoring
		// re-scores it.
	case SortByTime:
		sort.SliceStable(items, func(i, j int) bool {
			ti, tj := items[i].PublishedDate, items[j].PublishedDate
			if ti == nil || tj == nil {
				return false
			}
			return ti.After(*tj)
		})
	case SortBySource:
		sort.SliceStable(items, func(i, j int) bool {
			ei, ej := items[i].Engine, items[j].Engine
			if ei != ej {
				return ei < ej
			}
			return strings.ToLower(items[i].URL) < strings.ToLower(items[j].URL)
		})
	}
}

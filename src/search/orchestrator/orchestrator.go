// SPDX-License-Identifier: MIT

// Package orchestrator is the Search Interface: the single entry point that
// ties the cache, query parser, engine manager, and aggregator together into
// one search(query) → SearchResponse call. It owns the cache-probe-first
// flow, the per-task deadline and max-concurrency bound on engine fan-out,
// and the process-wide search statistics.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/apimgr/seesea/src/cache"
	"github.com/apimgr/seesea/src/model"
	"github.com/apimgr/seesea/src/rss"
	"github.com/apimgr/seesea/src/search/aggregator"
	"github.com/apimgr/seesea/src/search/engine"
	"github.com/apimgr/seesea/src/search/manager"
	"github.com/apimgr/seesea/src/search/query"
	"github.com/apimgr/seesea/src/search/standardize"
)

// defaultFullTextMax bounds an unqualified full-text scan so a caller that
// forgets to pass maxResults can't walk the entire cache on every call.
const defaultFullTextMax = 200

// defaultMaxConcurrentEngines bounds how many engines are dispatched to at
// once, independent of how many are registered; it protects the privacy
// manager's upstream connection pool (and, when Tor is in play, circuit
// capacity) from a query that matches every registered engine.
const defaultMaxConcurrentEngines = 20

// defaultGlobalDeadline is the outer ceiling on a whole search, regardless
// of any per-engine or per-request timeout.
const defaultGlobalDeadline = 30 * time.Second

// Options configures an Orchestrator.
type Options struct {
	MaxConcurrentEngines int
	GlobalDeadline time.Duration
	CacheTTL time.Duration
	AllowStale bool
}

// DefaultOptions returns the standard concurrency and timeout defaults.
func DefaultOptions() Options {
	return Options{
		MaxConcurrentEngines: defaultMaxConcurrentEngines,
		GlobalDeadline: defaultGlobalDeadline,
		CacheTTL: 15 * time.Minute,
		AllowStale: true,
	}
}

// Stats are process-wide, updated atomically on every search.
type Stats struct {
	TotalSearches uint64
	CacheHits uint64
	CacheMisses uint64
	EngineFailures uint64
	Timeouts uint64
}

// Orchestrator is the Search Interface.
type Orchestrator struct {
	store *cache.Store
	manager *manager.Manager
	parser *query.Parser
	aggregator *aggregator.Aggregator
	opts Options

	totalSearches atomic.Uint64
	cacheHits atomic.Uint64
	cacheMisses atomic.Uint64
	engineFailures atomic.Uint64
	timeouts atomic.Uint64
}

// New wires an Orchestrator around its collaborators. None of store,
// mgr, parser, or agg may be nil.
func New(store *cache.Store, mgr *manager.Manager, parser *query.Parser, agg *aggregator.Aggregator, opts Options) *Orchestrator {
	if opts.MaxConcurrentEngines <= 0 {
		opts.MaxConcurrentEngines = defaultMaxConcurrentEngines
	}
	if opts.GlobalDeadline <= 0 {
		opts.GlobalDeadline = defaultGlobalDeadline
	}
	return &Orchestrator{store: store, manager: mgr, parser: parser, aggregator: agg, opts: opts}
}

// cachedEnvelope is what the orchestrator actually stores under a cache
// key, the full response shape, not a bare item list, so a cache hit can
// skip aggregation entirely.
type cachedEnvelope struct {
	Items []model.SearchResultItem `json:"items"`
	EnginesUsed []string `json:"engines_used"`
}

// Search runs the full cache-probe → dispatch → aggregate → cache-store
// pipeline.
func (o *Orchestrator) Search(ctx context.Context, q model.SearchQuery) (model.SearchResponse, error) {
	start := time.Now()
	o.totalSearches.Add(1)

	if err := engine.ValidateQuery(q); err != nil {
		return model.SearchResponse{}, err
	}

	parsed := o.parser.Parse(q.Query)
	q.Intent = parsed.Intent
	if q.Language == "" {
		q.Language = parsed.Language
	}

	results, enginesUsed, cacheKey, cached, timedOut := o.liveSearch(ctx, q)
	if cached {
		items := results[0].Items
		return model.SearchResponse{
			Results: items,
			EnginesUsed: enginesUsed,
			TotalCount: len(items),
			QueryTimeMs: time.Since(start).Milliseconds(),
			Query: q,
			Cached: true,
		}, nil
	}

	aggregated := o.aggregator.AggregateWithScoring(results, q.Query)
	standardize.StandardizeResults(&aggregated)

	items := aggregated.Items
	if q.PageSize > 0 && len(items) > q.PageSize {
		items = items[:q.PageSize]
	}

	o.storeCache(cacheKey, cachedEnvelope{Items: items, EnginesUsed: enginesUsed})

	if timedOut {
		o.timeouts.Add(1)
	}

	return model.SearchResponse{
		Results: items,
		EnginesUsed: enginesUsed,
		TotalCount: len(items),
		QueryTimeMs: time.Since(start).Milliseconds(),
		Query: q,
		Cached: false,
	}, nil
}

// SearchFullText runs the same cache-probe/dispatch/aggregate pipeline as
// Search, then concurrently walks the cache's historical result: entries
// (and, as a parallel addition, the rss: entries) for items matching
// q.Query. Both streams go through the same dedup+re-score pipeline, so a
// result cached by an earlier run of this query can resurface even if no
// engine returns it this time.
func (o *Orchestrator) SearchFullText(ctx context.Context, q model.SearchQuery) (model.SearchResponse, error) {
	start := time.Now()
	o.totalSearches.Add(1)

	if err := engine.ValidateQuery(q); err != nil {
		return model.SearchResponse{}, err
	}

	parsed := o.parser.Parse(q.Query)
	q.Intent = parsed.Intent
	if q.Language == "" {
		q.Language = parsed.Language
	}

	var historical []model.SearchResultItem
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		historical = o.FullTextSearch(q.Query, defaultFullTextMax)
	}()

	results, enginesUsed, cacheKey, cached, timedOut := o.liveSearch(ctx, q)
	wg.Wait()

	if len(historical) > 0 {
		results = append(results, model.SearchResult{EngineName: "historical", Items: historical})
	}

	aggregated := o.aggregator.AggregateWithScoring(results, q.Query)
	standardize.StandardizeResults(&aggregated)

	items := aggregated.Items
	if q.PageSize > 0 && len(items) > q.PageSize {
		items = items[:q.PageSize]
	}

	if !cached {
		o.storeCache(cacheKey, cachedEnvelope{Items: items, EnginesUsed: enginesUsed})
	}
	if timedOut {
		o.timeouts.Add(1)
	}

	return model.SearchResponse{
		Results: items,
		EnginesUsed: enginesUsed,
		TotalCount: len(items),
		QueryTimeMs: time.Since(start).Milliseconds(),
		Query: q,
		Cached: cached,
	}, nil
}

// liveSearch runs the cache-probe/dispatch portion shared by Search and
// SearchFullText: a cache hit returns a single-entry result set and skips
// dispatch entirely; a miss dispatches to every candidate engine under the
// usual bound and deadline.
func (o *Orchestrator) liveSearch(ctx context.Context, q model.SearchQuery) (results []model.SearchResult, enginesUsed []string, cacheKey string, cached, timedOut bool) {
	engineNames := o.candidateEngineNames(q)
	cacheKey = cache.AggregateKey(q.Query, engineNames)

	if env, ok := o.probeCache(cacheKey); ok {
		o.cacheHits.Add(1)
		return []model.SearchResult{{EngineName: "cache", Items: env.Items}}, env.EnginesUsed, cacheKey, true, false
	}
	o.cacheMisses.Add(1)

	searchCtx, cancel := context.WithTimeout(ctx, o.opts.GlobalDeadline)
	defer cancel()

	results = o.dispatchBounded(searchCtx, q)
	for _, r := range results {
		enginesUsed = append(enginesUsed, r.EngineName)
	}
	sort.Strings(enginesUsed)

	return results, enginesUsed, cacheKey, false, searchCtx.Err() != nil
}

// candidateEngineNames resolves which engines a query would hit, used only
// to build a stable cache key before dispatch, the manager still applies
// its own availability filtering at Dispatch time.
func (o *Orchestrator) candidateEngineNames(q model.SearchQuery) []string {
	var names []string
	if len(q.Params) > 0 {
		if raw, ok := q.Params["engines"]; ok && raw != "" {
			names = splitCSV(raw)
		}
	}
	if len(names) > 0 {
		return names
	}
	for _, info := range o.manager.List() {
		names = append(names, info.Name)
	}
	sort.Strings(names)
	return names
}

func splitCSV(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}

func (o *Orchestrator) probeCache(key string) (cachedEnvelope, bool) {
	raw, ok := o.store.Get(key)
	if !ok {
		return cachedEnvelope{}, false
	}
	var env cachedEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return cachedEnvelope{}, false
	}
	return env, true
}

func (o *Orchestrator) storeCache(key string, env cachedEnvelope) {
	raw, err := json.Marshal(env)
	if err != nil {
		return
	}
	ttl := o.opts.CacheTTL
	_ = o.store.Set(key, raw, &ttl)
}

// dispatchBounded fans out to the query's candidate engines directly
// (bypassing manager.Dispatch's own unbounded goroutine-per-engine fan-out)
// so that a semaphore of size MaxConcurrentEngines genuinely caps how many
// upstream connections are open at once.
func (o *Orchestrator) dispatchBounded(ctx context.Context, q model.SearchQuery) []model.SearchResult {
	engineNames := o.candidateEngineNames(q)
	sem := semaphore.NewWeighted(int64(o.opts.MaxConcurrentEngines))

	resultsChan := make(chan model.SearchResult, len(engineNames))
	var wg sync.WaitGroup
	for _, name := range engineNames {
		e, ok := o.manager.Get(name)
		if !ok || !o.manager.IsAvailable(name) {
			continue
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(name string, e engine.Engine) {
			defer wg.Done()
			defer sem.Release(1)
			result, err := e.Search(ctx, q)
			if err != nil {
				if !isValidationError(err) {
					o.engineFailures.Add(1)
					o.manager.RecordResult(name, false)
				}
				return
			}
			o.manager.RecordResult(name, true)
			resultsChan <- result
		}(name, e)
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	var all []model.SearchResult
	for r := range resultsChan {
		all = append(all, r)
	}
	return all
}

func isValidationError(err error) bool {
	return errors.Is(err, engine.ErrValidation)
}

// StreamItem is one incremental result delivered by StreamSearch.
type StreamItem struct {
	Engine string
	Item model.SearchResultItem
	Err error
	Done bool
}

// StreamSearch is the streaming variant of Search: it bypasses the cache
// entirely (a streamed response has no single payload to cache) and relays
// each engine's items to the caller as they arrive, via manager.DispatchStream.
func (o *Orchestrator) StreamSearch(ctx context.Context, q model.SearchQuery) <-chan StreamItem {
	o.totalSearches.Add(1)

	if err := engine.ValidateQuery(q); err != nil {
		out := make(chan StreamItem, 1)
		out <- StreamItem{Err: err, Done: true}
		close(out)
		return out
	}

	parsed := o.parser.Parse(q.Query)
	q.Intent = parsed.Intent
	if q.Language == "" {
		q.Language = parsed.Language
	}

	searchCtx, cancel := context.WithTimeout(ctx, o.opts.GlobalDeadline)
	out := make(chan StreamItem, 64)
	mgrStream := o.manager.DispatchStream(searchCtx, q, manager.SelectionGlobal, nil, "")

	go func() {
		defer cancel()
		defer close(out)
		for r := range mgrStream {
			if r.Err != nil && !isValidationError(r.Err) {
				o.engineFailures.Add(1)
			}
			select {
			case out <- StreamItem{Engine: r.Engine, Item: r.Item, Err: r.Err, Done: r.Done}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// FullTextSearch recovers historical items matching term without touching
// any engine or the network: the result: prefix (cached per-query
// SearchResult aggregates) is the primary source, and the rss: prefix is
// scanned as a parallel addition. An item matches when any whitespace-
// separated keyword of term appears in its title, content, or URL; RSS
// candidates are first narrowed by rss.Cache.Search on the whole term.
// maxResults bounds the combined total; pass 0 to use defaultFullTextMax.
func (o *Orchestrator) FullTextSearch(term string, maxResults int) []model.SearchResultItem {
	if maxResults <= 0 {
		maxResults = defaultFullTextMax
	}

	items := o.historicalResultItems(term, maxResults)
	if len(items) >= maxResults {
		return items
	}

	lowerTerm := strings.ToLower(term)
	for _, hit := range rss.New(o.store).Search(term) {
		if len(items) >= maxResults {
			break
		}
		candidate := rssItemToResult(hit.Item)
		if matchesTerm(candidate, lowerTerm) {
			items = append(items, candidate)
		}
	}
	return items
}

// historicalResultItems scans every cached result: aggregate, deserializing
// each as the same cachedEnvelope shape storeCache writes, and collects the
// items whose title, content, or URL contains any keyword of term.
func (o *Orchestrator) historicalResultItems(term string, maxResults int) []model.SearchResultItem {
	lowerTerm := strings.ToLower(term)
	var items []model.SearchResultItem
	o.store.ScanPrefix(cache.PrefixResult, func(key string, value []byte, stale bool) bool {
		var env cachedEnvelope
		if err := json.Unmarshal(value, &env); err != nil {
			return true
		}
		for _, it := range env.Items {
			if len(items) >= maxResults {
				return false
			}
			if matchesTerm(it, lowerTerm) {
				items = append(items, it)
			}
		}
		return len(items) < maxResults
	})
	return items
}

// matchesTerm reports whether any whitespace-separated keyword of lowerTerm
// (already lowercased) appears in the item's title, content, or URL.
func matchesTerm(it model.SearchResultItem, lowerTerm string) bool {
	title := strings.ToLower(it.Title)
	content := strings.ToLower(it.Content)
	url := strings.ToLower(it.URL)
	for _, kw := range strings.Fields(lowerTerm) {
		if strings.Contains(title, kw) || strings.Contains(content, kw) || strings.Contains(url, kw) {
			return true
		}
	}
	return false
}

// rssItemToResult adapts a cached RSS entry into the same item shape the
// aggregator and scoring package operate on, so historical RSS hits flow
// through the identical dedup+re-score pipeline as live engine results.
func rssItemToResult(it rss.Item) model.SearchResultItem {
	return model.SearchResultItem{
		Title: it.Title,
		Content: it.Description,
		URL: it.URL,
		ResultType: model.ResultNews,
		Engine: "rss",
		SiteName: it.FeedURL,
	}
}

// Store exposes the underlying cache store for callers that need direct
// access (e.g. the /api/cache/* routes) without duplicating cache wiring.
func (o *Orchestrator) Store() *cache.Store {
	return o.store
}

// Manager exposes the underlying engine manager for callers that need the
// registry directly (e.g. the /api/engines route).
func (o *Orchestrator) Manager() *manager.Manager {
	return o.manager
}

// Stats snapshots the process-wide search counters.
func (o *Orchestrator) Stats() Stats {
	return Stats{
		TotalSearches: o.totalSearches.Load(),
		CacheHits: o.cacheHits.Load(),
		CacheMisses: o.cacheMisses.Load(),
		EngineFailures: o.engineFailures.Load(),
		Timeouts: o.timeouts.Load(),
	}
}

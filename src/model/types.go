// SPDX-License-Identifier: MIT

// Package model defines the shared domain types passed between the query
// parser, engine manager, aggregator, cache, and orchestrator. Every other
// search/* package imports this one; it imports none of them.
package model

import (
	"time"
)

// EngineType classifies what kind of content an engine specializes in.
type EngineType string

const (
	EngineGeneral  EngineType = "general"
	EngineImage    EngineType = "image"
	EngineVideo    EngineType = "video"
	EngineNews     EngineType = "news"
	EngineAcademic EngineType = "academic"
	EngineCode     EngineType = "code"
	EngineShopping EngineType = "shopping"
	EngineMusic    EngineType = "music"
	EngineCustom   EngineType = "custom"
)

// SafeSearchLevel mirrors the three-tier knob most metasearch engines expose.
type SafeSearchLevel int

const (
	SafeSearchNone SafeSearchLevel = iota
	SafeSearchModerate
	SafeSearchStrict
)

// TimeRange restricts results to a recency window when an engine supports it.
type TimeRange string

const (
	TimeRangeAny   TimeRange = "any"
	TimeRangeHour  TimeRange = "hour"
	TimeRangeDay   TimeRange = "day"
	TimeRangeWeek  TimeRange = "week"
	TimeRangeMonth TimeRange = "month"
	TimeRangeYear  TimeRange = "year"
)

// ResultType is the content shape of a single SearchResultItem.
type ResultType string

const (
	ResultWeb      ResultType = "web"
	ResultImage    ResultType = "image"
	ResultVideo    ResultType = "video"
	ResultNews     ResultType = "news"
	ResultAcademic ResultType = "academic"
	ResultCode     ResultType = "code"
	ResultShopping ResultType = "shopping"
	ResultMusic    ResultType = "music"
	ResultTorrent  ResultType = "torrent"
	ResultFile     ResultType = "file"
	ResultMap      ResultType = "map"
	ResultOther    ResultType = "other"
)

// QueryIntent is the query parser's best guess at what the user wants.
type QueryIntent string

const (
	IntentInformational QueryIntent = "informational"
	IntentNavigational  QueryIntent = "navigational"
	IntentTransactional QueryIntent = "transactional"
	IntentLocal         QueryIntent = "local"
	IntentNews          QueryIntent = "news"
	IntentImage         QueryIntent = "image"
	IntentVideo         QueryIntent = "video"
	IntentCode          QueryIntent = "code"
)

// SearchQuery is the normalized query passed to every engine.
type SearchQuery struct {
	Query      string            `json:"query"`
	EngineType EngineType        `json:"engine_type"`
	Language   string            `json:"language,omitempty"`
	Region     string            `json:"region,omitempty"`
	PageSize   int               `json:"page_size"`
	Page       int               `json:"page"`
	SafeSearch SafeSearchLevel   `json:"safe_search"`
	TimeRange  TimeRange         `json:"time_range,omitempty"`
	Intent     QueryIntent       `json:"intent,omitempty"`
	Params     map[string]string `json:"params,omitempty"`
}

// DefaultSearchQuery returns a SearchQuery with conservative defaults
// (moderate safe search, page 1, 10 results).
func DefaultSearchQuery() SearchQuery {
	return SearchQuery{
		EngineType: EngineGeneral,
		PageSize:   10,
		Page:       1,
		SafeSearch: SafeSearchModerate,
		TimeRange:  TimeRangeAny,
		Params:     make(map[string]string),
	}
}

// RequestParams is what an engine's request() step builds from a SearchQuery
// before handing off to the HTTP layer, deliberately shaped like searxng's
// per-engine params dict so engine authors only fill in what they need.
type RequestParams struct {
	URL         string            `json:"url,omitempty"`
	Method      string            `json:"method"`
	Headers     map[string]string `json:"headers,omitempty"`
	Data        map[string]string `json:"data,omitempty"`
	Cookies     map[string]string `json:"cookies,omitempty"`
	PageNo      int               `json:"pageno"`
	Language    string            `json:"language,omitempty"`
	TimeRange   string            `json:"time_range,omitempty"`
	SafeSearch  int               `json:"safesearch"`
	Custom      map[string]string `json:"custom,omitempty"`
}

// RequestParamsFromQuery seeds RequestParams the way every BaseEngine.request()
// implementation starts: page number, language, time range, and safesearch
// copied over, with the raw query params threaded through as custom.
func RequestParamsFromQuery(q SearchQuery) RequestParams {
	p := RequestParams{
		Method:     "GET",
		Headers:    make(map[string]string),
		Cookies:    make(map[string]string),
		PageNo:     q.Page,
		Language:   q.Language,
		TimeRange:  string(q.TimeRange),
		SafeSearch: int(q.SafeSearch),
		Custom:     make(map[string]string),
	}
	for k, v := range q.Params {
		p.Custom[k] = v
	}
	return p
}

// SearchResultItem is a single normalized hit from one engine.
type SearchResultItem struct {
	Title         string            `json:"title"`
	URL           string            `json:"url"`
	Content       string            `json:"content"`
	DisplayURL    string            `json:"display_url,omitempty"`
	SiteName      string            `json:"site_name,omitempty"`
	Score         float64           `json:"score"`
	ResultType    ResultType        `json:"result_type"`
	Thumbnail     string            `json:"thumbnail,omitempty"`
	PublishedDate *time.Time        `json:"published_date,omitempty"`
	Template      string            `json:"template,omitempty"`
	Engine        string            `json:"engine,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// PaginationInfo describes how to walk forward/back through an engine's results.
type PaginationInfo struct {
	CurrentPage int    `json:"current_page"`
	PageSize    int    `json:"page_size"`
	TotalPages  *int   `json:"total_pages,omitempty"`
	NextPage    string `json:"next_page,omitempty"`
	PrevPage    string `json:"prev_page,omitempty"`
}

// SearchResult is one engine's full response to a single query.
type SearchResult struct {
	EngineName   string            `json:"engine_name"`
	TotalResults *int              `json:"total_results,omitempty"`
	ElapsedMs    int64             `json:"elapsed_ms"`
	Items        []SearchResultItem `json:"items"`
	Pagination   *PaginationInfo   `json:"pagination,omitempty"`
	Suggestions  []string          `json:"suggestions,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

// SearchResponse is the orchestrator's final answer: the aggregated,
// deduplicated, scored result set plus bookkeeping about how it was produced.
type SearchResponse struct {
	Results     []SearchResultItem `json:"results"`
	EnginesUsed []string           `json:"engines_used"`
	TotalCount  int                `json:"total_count"`
	QueryTimeMs int64              `json:"query_time_ms"`
	Query       SearchQuery        `json:"query"`
	Cached      bool               `json:"cached"`
}

// EngineCapabilities advertises what an engine can do so the manager and
// aggregator can route queries sensibly without probing at request time.
type EngineCapabilities struct {
	ResultTypes           []ResultType `json:"result_types"`
	SupportedParams       []string     `json:"supported_params,omitempty"`
	MaxPageSize           int          `json:"max_page_size"`
	SupportsPagination    bool         `json:"supports_pagination"`
	SupportsTimeRange     bool         `json:"supports_time_range"`
	SupportsLanguageFilter bool        `json:"supports_language_filter"`
	SupportsRegionFilter  bool         `json:"supports_region_filter"`
	SupportsSafeSearch    bool         `json:"supports_safe_search"`
	RateLimit             int          `json:"rate_limit,omitempty"`
}

// EngineStatus is the operator-facing health label for an engine.
type EngineStatus string

const (
	EngineStatusActive      EngineStatus = "active"
	EngineStatusMaintenance EngineStatus = "maintenance"
	EngineStatusDisabled    EngineStatus = "disabled"
	EngineStatusError       EngineStatus = "error"
)

// AboutInfo is static metadata about an engine, used by the /api/engines route.
type AboutInfo struct {
	Website                string `json:"website,omitempty"`
	WikidataID             string `json:"wikidata_id,omitempty"`
	OfficialAPIDocs        string `json:"official_api_documentation,omitempty"`
	UseOfficialAPI         bool   `json:"use_official_api"`
	RequireAPIKey          bool   `json:"require_api_key"`
	ResultsFormat          string `json:"results"`
}

// EngineInfo is what Engine.Info() returns: static metadata. The manager
// keeps per-engine health in EngineState and does not update these fields.
type EngineInfo struct {
	Name         string              `json:"name"`
	EngineType   EngineType          `json:"engine_type"`
	Description  string              `json:"description"`
	Status       EngineStatus        `json:"status"`
	Categories   []string            `json:"categories,omitempty"`
	Capabilities EngineCapabilities  `json:"capabilities"`
	About        AboutInfo           `json:"about"`
	Shortcut     string              `json:"shortcut,omitempty"`
	Timeout      time.Duration       `json:"timeout"`
	Disabled     bool                `json:"disabled"`
	Inactive     bool                `json:"inactive"`
	UsingTor     bool                `json:"using_tor_proxy"`
	MaxPage      int                 `json:"max_page"`
}

// EngineState is the engine manager's per-engine health-tracking record.
// Kept separate from EngineInfo: this is mutated on the hot path under a
// lock, EngineInfo is mostly-static metadata.
type EngineState struct {
	Enabled              bool
	TemporarilyDisabled  bool
	ConsecutiveFailures  int
	LastFailureAt        time.Time
	RecoveryDeadline     time.Time
}

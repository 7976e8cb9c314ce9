// SPDX-License-Identifier: MIT

// Package engine defines the uniform request→fetch→response contract every
// search backend implements, plus BaseEngine, the shared plumbing (HTTP
// client, circuit breaker, retry, validation defaults) concrete engines
// embed.
package engine

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/apimgr/seesea/src/model"
	"github.com/apimgr/seesea/src/netclient"
	"github.com/apimgr/seesea/src/retry"
)

// Engine is the uniform contract every backend implements.
type Engine interface {
	// Info returns immutable metadata for the life of the engine object.
	Info() model.EngineInfo
	// Request is a pure function that fills in URL/method/headers/cookies/
	// body on params. No I/O.
	Request(q model.SearchQuery, params *model.RequestParams) error
	// Fetch performs the HTTP call via the injected client.
	Fetch(ctx context.Context, params model.RequestParams) (*netclient.Response, error)
	// Response parses a Response into normalized items. Parse failures
	// return an empty slice and a nil error, never an error, unless the
	// body itself signals a CAPTCHA wall.
	Response(resp *netclient.Response) ([]model.SearchResultItem, error)
	// Search glues request→fetch→response and wraps the result.
	Search(ctx context.Context, q model.SearchQuery) (model.SearchResult, error)
}

// QueryValidator is an optional capability: engines that want custom
// validation beyond BaseEngine.ValidateQuery implement this.
type QueryValidator interface {
	ValidateQuery(q model.SearchQuery) error
}

// AvailabilityChecker is an optional cheap reachability probe.
type AvailabilityChecker interface {
	IsAvailable(ctx context.Context) bool
}

// HealthStatus is the structured result of an optional health check.
type HealthStatus struct {
	Healthy bool
	Detail string
}

// HealthChecker is an optional structured status probe.
type HealthChecker interface {
	HealthCheck(ctx context.Context) HealthStatus
}

// BaseEngine is the shared plumbing every concrete engine embeds: it is not
// itself a complete Engine (it has no Response implementation, parsing is
// always backend-specific) but supplies Info, default Request seeding,
// FetchWithResilience (with circuit breaker + retry), ValidateQuery, and a DoSearch
// helper concrete engines call from their own Search method.
type BaseEngine struct {
	info model.EngineInfo
	client *netclient.Client

	circuitBreaker *retry.CircuitBreaker
	retryConfig retry.Config
}

// NewBaseEngine wires a circuit breaker (transport-level, threshold 5) and
// retry config (3 attempts, 100ms..2s backoff) around client.
func NewBaseEngine(info model.EngineInfo, client *netclient.Client) *BaseEngine {
	if info.Timeout <= 0 {
		info.Timeout = 10 * time.Second
	}
	return &BaseEngine{
		info: info,
		client: client,
		circuitBreaker: retry.NewCircuitBreaker(retry.DefaultCircuitBreakerConfig(info.Name)),
		retryConfig: retry.DefaultConfig(),
	}
}

// Info returns the engine's static metadata.
func (b *BaseEngine) Info() model.EngineInfo {
	return b.info
}

// ValidateQuery implements the common default: reject empty or
// over-long queries, page beyond the engine's max, and time ranges the
// engine doesn't support.
func (b *BaseEngine) ValidateQuery(q model.SearchQuery) error {
	if err := ValidateQuery(q); err != nil {
		return err
	}
	if b.info.MaxPage > 0 && q.Page > b.info.MaxPage {
		return fmt.Errorf("%w: page %d exceeds max_page %d", ErrValidation, q.Page, b.info.MaxPage)
	}
	if q.TimeRange != "" && q.TimeRange != model.TimeRangeAny && !b.info.Capabilities.SupportsTimeRange {
		return fmt.Errorf("%w: engine does not support time_range", ErrValidation)
	}
	return nil
}

// ErrValidation tags the validation-error kind; it is never counted
// as an engine failure by the manager.
var ErrValidation = fmt.Errorf("validation error")

// ValidateQuery runs the validation every engine shares regardless of its
// own capabilities: empty query, over-long query. It is meant to run once
// per search, before any engine is dispatched to, rather than once per
// engine inside BaseEngine.ValidateQuery.
func ValidateQuery(q model.SearchQuery) error {
	if len(q.Query) == 0 {
		return fmt.Errorf("%w: empty query", ErrValidation)
	}
	if len(q.Query) > 1000 {
		return fmt.Errorf("%w: query too long", ErrValidation)
	}
	return nil
}

// FetchWithResilience performs an HTTP GET (or a form POST when
// params.Method is POST) through the circuit breaker and
// retry wrapper, classifying non-2xx responses as retryable or not.
func (b *BaseEngine) FetchWithResilience(ctx context.Context, params model.RequestParams) (*netclient.Response, error) {
	if !b.circuitBreaker.AllowRequest() {
		return nil, fmt.Errorf("%s: %w", b.info.Name, retry.ErrCircuitOpen)
	}

	var resp *netclient.Response
	err := retry.Do(ctx, b.retryConfig, nil, func() error {
		var fetchErr error
		if params.Method == "POST" {
			resp, fetchErr = b.client.PostForm(ctx, params.URL, params.Headers, formEncode(params.Data))
		} else {
			resp, fetchErr = b.client.Get(ctx, params.URL, params.Headers)
		}
		if fetchErr != nil {
			return fmt.Errorf("%s: %w: %v", b.info.Name, retry.ErrNetworkError, fetchErr)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("%s: %w", b.info.Name, retry.ClassifyHTTPError(resp.StatusCode))
		}
		return nil
	})

	if err != nil {
		b.circuitBreaker.RecordFailure()
		return nil, err
	}
	b.circuitBreaker.RecordSuccess()
	return resp, nil
}

func formEncode(data map[string]string) []byte {
	if len(data) == 0 {
		return nil
	}
	values := url.Values{}
	for k, v := range data {
		values.Set(k, v)
	}
	return []byte(values.Encode())
}

// DoSearch is the default search(query) glue: request → fetch →
// response, wrapped in a SearchResult with elapsed time. respond is the
// concrete engine's Response implementation (Go has no virtual dispatch
// through an embedded struct, so each engine passes its own parser in).
func (b *BaseEngine) DoSearch(ctx context.Context, q model.SearchQuery, request func(model.SearchQuery, *model.RequestParams) error, respond func(*netclient.Response) ([]model.SearchResultItem, error)) (model.SearchResult, error) {
	start := time.Now()

	params := model.RequestParamsFromQuery(q)
	if err := request(q, &params); err != nil {
		return model.SearchResult{}, err
	}

	deadline := b.info.Timeout
	if deadline <= 0 {
		deadline = 10 * time.Second
	}
	fetchCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	resp, err := b.FetchWithResilience(fetchCtx, params)
	if err != nil {
		return model.SearchResult{}, err
	}

	items, err := respond(resp)
	if err != nil {
		return model.SearchResult{}, err
	}
	for i := range items {
		items[i].Engine = b.info.Name
	}

	return model.SearchResult{
		EngineName: b.info.Name,
		ElapsedMs: time.Since(start).Milliseconds(),
		Items: items,
		Metadata: map[string]string{},
	}, nil
}

// SPDX-License-Identifier: MIT

package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apimgr/seesea/src/cache"
	"github.com/apimgr/seesea/src/model"
	"github.com/apimgr/seesea/src/netclient"
	"github.com/apimgr/seesea/src/search/aggregator"
	"github.com/apimgr/seesea/src/search/manager"
	"github.com/apimgr/seesea/src/search/orchestrator"
	"github.com/apimgr/seesea/src/search/query"
)

type stubEngine struct {
	info  model.EngineInfo
	items []model.SearchResultItem
}

func (s *stubEngine) Info() model.EngineInfo                                { return s.info }
func (s *stubEngine) Request(model.SearchQuery, *model.RequestParams) error { return nil }
func (s *stubEngine) Fetch(context.Context, model.RequestParams) (*netclient.Response, error) {
	return nil, nil
}
func (s *stubEngine) Response(*netclient.Response) ([]model.SearchResultItem, error) {
	return s.items, nil
}
func (s *stubEngine) Search(ctx context.Context, q model.SearchQuery) (model.SearchResult, error) {
	return model.SearchResult{EngineName: s.info.Name, Items: s.items}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store, err := cache.OpenAt(cache.Config{DBPath: filepath.Join(t.TempDir(), "test.db"), Mode: cache.HighThroughput})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	mgr := manager.New()
	mgr.Register(&stubEngine{
		info:  model.EngineInfo{Name: "stub-a"},
		items: []model.SearchResultItem{{Title: "Rust programming language", URL: "https://a", Content: "systems language"}},
	})

	orc := orchestrator.New(store, mgr, query.NewParser(), aggregator.Default(), orchestrator.DefaultOptions())
	return New(orc, nil, nil)
}

func TestHandleSearchReturnsResults(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/search?q=rust", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body searchResponseBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "rust", body.Query)
	assert.NotEmpty(t, body.Results)
}

func TestHandleEnginesListsRegistered(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/engines", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "stub-a")
}

func TestHandleHealthReturnsOK(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestHandleVersionReturnsConfiguredVersion(t *testing.T) {
	Version = "test-version"
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Contains(t, w.Body.String(), "test-version")
}

func TestHandleCacheStatsAndClear(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/cache/stats", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/cache/clear", nil)
	w = httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"cleared":true`)
}

func TestUnknownRouteReturnsNotFoundJSON(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not_found")
}

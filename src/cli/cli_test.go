// SPDX-License-Identifier: MIT

package cli

import (
	"bytes"
	"context"
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

func newTestOrchestrator(t *testing.T) *orchestrator.Orchestrator {
	t.Helper()
	store, err := cache.OpenAt(cache.Config{DBPath: filepath.Join(t.TempDir(), "test.db"), Mode: cache.HighThroughput})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	mgr := manager.New()
	mgr.Register(&stubEngine{
		info:  model.EngineInfo{Name: "stub-a", EngineType: model.EngineGeneral},
		items: []model.SearchResultItem{{Title: "Rust programming language", URL: "https://a", Content: "systems language"}},
	})

	return orchestrator.New(store, mgr, query.NewParser(), aggregator.Default(), orchestrator.DefaultOptions())
}

func TestSearchCommandPrintsResults(t *testing.T) {
	orc := newTestOrchestrator(t)
	root := NewRootCommand(orc)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"search", "rust"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Rust programming language")
}

func TestListEnginesCommandPrintsRegisteredEngines(t *testing.T) {
	orc := newTestOrchestrator(t)
	root := NewRootCommand(orc)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"list-engines"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "stub-a")
}

func TestListEnginesCommandWithStatsShowsFailureColumn(t *testing.T) {
	orc := newTestOrchestrator(t)
	root := NewRootCommand(orc)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"list-engines", "--stats"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "FAILURES")
}

// SPDX-License-Identifier: MIT

package manager

import (
	"context"
	"errors"
	"testing"

	"github.com/apimgr/seesea/src/model"
	"github.com/apimgr/seesea/src/netclient"
	"github.com/apimgr/seesea/src/search/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubEngine is a minimal engine.Engine for manager tests, avoiding any
// real network I/O.
type stubEngine struct {
	info  model.EngineInfo
	items []model.SearchResultItem
	err   error
}

func (s *stubEngine) Info() model.EngineInfo { return s.info }
func (s *stubEngine) Request(model.SearchQuery, *model.RequestParams) error { return nil }
func (s *stubEngine) Fetch(context.Context, model.RequestParams) (*netclient.Response, error) {
	return nil, nil
}
func (s *stubEngine) Response(*netclient.Response) ([]model.SearchResultItem, error) {
	return s.items, nil
}
func (s *stubEngine) Search(ctx context.Context, q model.SearchQuery) (model.SearchResult, error) {
	if s.err != nil {
		return model.SearchResult{}, s.err
	}
	return model.SearchResult{EngineName: s.info.Name, Items: s.items}, nil
}

func newStub(name string, items []model.SearchResultItem, err error) engine.Engine {
	return &stubEngine{info: model.EngineInfo{Name: name}, items: items, err: err}
}

func TestRegisterAndGet(t *testing.T) {
	m := New()
	m.Register(newStub("a", nil, nil))
	e, ok := m.Get("a")
	require.True(t, ok)
	assert.Equal(t, "a", e.Info().Name)
}

func TestDispatchCollectsSuccessfulEngines(t *testing.T) {
	m := New()
	m.Register(newStub("a", []model.SearchResultItem{{Title: "x"}}, nil))
	m.Register(newStub("b", []model.SearchResultItem{{Title: "y"}}, nil))

	results := m.Dispatch(context.Background(), model.SearchQuery{Query: "q"}, SelectionGlobal, nil, "")
	assert.Len(t, results, 2)
}

func TestDispatchSkipsFailedEngineResults(t *testing.T) {
	m := New()
	m.Register(newStub("good", []model.SearchResultItem{{Title: "x"}}, nil))
	m.Register(newStub("bad", nil, errors.New("boom")))

	results := m.Dispatch(context.Background(), model.SearchQuery{Query: "q"}, SelectionGlobal, nil, "")
	require.Len(t, results, 1)
	assert.Equal(t, "good", results[0].EngineName)
}

func TestRecordResultQuarantinesAfterThreeFailures(t *testing.T) {
	m := New()
	m.Register(newStub("flaky", nil, nil))

	m.RecordResult("flaky", false)
	m.RecordResult("flaky", false)
	state, _ := m.State("flaky")
	assert.False(t, state.TemporarilyDisabled)

	m.RecordResult("flaky", false)
	state, _ = m.State("flaky")
	assert.True(t, state.TemporarilyDisabled)
}

func TestRecordResultSuccessClearsQuarantine(t *testing.T) {
	m := New()
	m.Register(newStub("flaky", nil, nil))
	m.RecordResult("flaky", false)
	m.RecordResult("flaky", false)
	m.RecordResult("flaky", false)

	state, _ := m.State("flaky")
	require.True(t, state.TemporarilyDisabled)

	m.RecordResult("flaky", true)
	state, _ = m.State("flaky")
	assert.False(t, state.TemporarilyDisabled)
	assert.Equal(t, 0, state.ConsecutiveFailures)
}

func TestQuarantinedEngineExcludedFromSelection(t *testing.T) {
	m := New()
	m.Register(newStub("flaky", []model.SearchResultItem{{Title: "x"}}, nil))
	m.RecordResult("flaky", false)
	m.RecordResult("flaky", false)
	m.RecordResult("flaky", false)

	results := m.Dispatch(context.Background(), model.SearchQuery{Query: "q"}, SelectionGlobal, nil, "")
	assert.Len(t, results, 0)
}

func TestSelectionCustomRestrictsToNamedEngines(t *testing.T) {
	m := New()
	m.Register(newStub("a", []model.SearchResultItem{{Title: "x"}}, nil))
	m.Register(newStub("b", []model.SearchResultItem{{Title: "y"}}, nil))

	results := m.Dispatch(context.Background(), model.SearchQuery{Query: "q"}, SelectionCustom, []string{"a"}, "")
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].EngineName)
}

func TestCategoryFilterNarrowsSelection(t *testing.T) {
	m := New()
	web := newStub("web", []model.SearchResultItem{{Title: "x"}}, nil).(*stubEngine)
	web.info.Categories = []string{"general"}
	img := newStub("img", []model.SearchResultItem{{Title: "y"}}, nil).(*stubEngine)
	img.info.Categories = []string{"images"}
	m.Register(web)
	m.Register(img)

	results := m.Dispatch(context.Background(), model.SearchQuery{Query: "q"}, SelectionGlobal, nil, "images")
	require.Len(t, results, 1)
	assert.Equal(t, "img", results[0].EngineName)
}

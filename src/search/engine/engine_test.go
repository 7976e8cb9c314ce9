// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/apimgr/seesea/src/model"
	"github.com/apimgr/seesea/src/netclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInfo(name string) model.EngineInfo {
	return model.EngineInfo{
		Name:    name,
		Timeout: 2 * time.Second,
		MaxPage: 5,
		Capabilities: model.EngineCapabilities{
			SupportsTimeRange: false,
		},
	}
}

func TestValidateQueryRejectsEmpty(t *testing.T) {
	b := NewBaseEngine(testInfo("x"), netclient.New(netclient.DefaultOptions()))
	err := b.ValidateQuery(model.SearchQuery{Query: ""})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestValidateQueryRejectsOverlongQuery(t *testing.T) {
	b := NewBaseEngine(testInfo("x"), netclient.New(netclient.DefaultOptions()))
	long := make([]byte, 1001)
	for i := range long {
		long[i] = 'a'
	}
	err := b.ValidateQuery(model.SearchQuery{Query: string(long)})
	require.Error(t, err)
}

func TestValidateQueryRejectsPageBeyondMax(t *testing.T) {
	b := NewBaseEngine(testInfo("x"), netclient.New(netclient.DefaultOptions()))
	err := b.ValidateQuery(model.SearchQuery{Query: "go", Page: 99})
	require.Error(t, err)
}

func TestValidateQueryRejectsUnsupportedTimeRange(t *testing.T) {
	b := NewBaseEngine(testInfo("x"), netclient.New(netclient.DefaultOptions()))
	err := b.ValidateQuery(model.SearchQuery{Query: "go", Page: 1, TimeRange: model.TimeRangeWeek})
	require.Error(t, err)
}

func TestValidateQueryAcceptsWellFormedQuery(t *testing.T) {
	b := NewBaseEngine(testInfo("x"), netclient.New(netclient.DefaultOptions()))
	err := b.ValidateQuery(model.SearchQuery{Query: "go concurrency", Page: 1})
	assert.NoError(t, err)
}

func TestValidateQueryFunctionRejectsEmptyAndOverlong(t *testing.T) {
	assert.True(t, errors.Is(ValidateQuery(model.SearchQuery{Query: ""}), ErrValidation))

	long := make([]byte, 1001)
	for i := range long {
		long[i] = 'a'
	}
	assert.True(t, errors.Is(ValidateQuery(model.SearchQuery{Query: string(long)}), ErrValidation))

	assert.NoError(t, ValidateQuery(model.SearchQuery{Query: "go concurrency"}))
}

func TestDoSearchSurfacesFetchError(t *testing.T) {
	b := NewBaseEngine(testInfo("stub"), netclient.New(netclient.DefaultOptions()))

	request := func(q model.SearchQuery, params *model.RequestParams) error {
		params.URL = "http://example.invalid"
		return nil
	}
	respond := func(resp *netclient.Response) ([]model.SearchResultItem, error) {
		return []model.SearchResultItem{{Title: "a", URL: "http://a"}}, nil
	}

	// Fetch fails against an unreachable host, so DoSearch should surface
	// that error rather than panic or silently succeed.
	_, err := b.DoSearch(context.Background(), model.SearchQuery{Query: "q"}, request, respond)
	assert.Error(t, err)
	_ = respond
}

func TestFormEncodeURLEscapesReservedCharacters(t *testing.T) {
	encoded := formEncode(map[string]string{"q": "a&b=c"})
	assert.Contains(t, string(encoded), "q=a%26b%3Dc")
}

// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/apimgr/seesea/src/model"
	"github.com/apimgr/seesea/src/netclient"
)

// StackOverflowEngine queries the StackExchange API's advanced search,
// scoped to the stackoverflow site.
type StackOverflowEngine struct {
	*BaseEngine
}

func NewStackOverflowEngine(client *netclient.Client) *StackOverflowEngine {
	info := model.EngineInfo{
		Name:        "stackoverflow",
		EngineType:  model.EngineCode,
		Description: "Stack Overflow question search",
		Status:      model.EngineStatusActive,
		Categories:  []string{"code"},
		Capabilities: model.EngineCapabilities{
			ResultTypes: []model.ResultType{model.ResultCode},
			MaxPageSize: 30,
		},
		About: model.AboutInfo{
			Website:         "https://stackoverflow.com",
			OfficialAPIDocs: "https://api.stackexchange.com/docs",
			UseOfficialAPI:  true,
			ResultsFormat:   "JSON",
		},
		Timeout: 10 * time.Second,
		MaxPage: 5,
	}
	return &StackOverflowEngine{BaseEngine: NewBaseEngine(info, client)}
}

func (e *StackOverflowEngine) Request(q model.SearchQuery, params *model.RequestParams) error {
	v := url.Values{}
	v.Set("q", q.Query)
	v.Set("site", "stackoverflow")
	v.Set("order", "desc")
	v.Set("sort", "relevance")
	params.URL = "https://api.stackexchange.com/2.3/search/advanced?" + v.Encode()
	params.Method = "GET"
	params.Headers = map[string]string{"User-Agent": DefaultUserAgent, "Accept": "application/json"}
	return nil
}

func (e *StackOverflowEngine) Fetch(ctx context.Context, params model.RequestParams) (*netclient.Response, error) {
	return e.FetchWithResilience(ctx, params)
}

type stackExchangeResponse struct {
	Items []struct {
		Title        string `json:"title"`
		Link         string `json:"link"`
		IsAnswered   bool   `json:"is_answered"`
		AnswerCount  int    `json:"answer_count"`
		Score        int    `json:"score"`
		Tags         []string `json:"tags"`
	} `json:"items"`
}

func (e *StackOverflowEngine) Response(resp *netclient.Response) ([]model.SearchResultItem, error) {
	var payload stackExchangeResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, nil
	}

	items := make([]model.SearchResultItem, 0, len(payload.Items))
	for _, q := range payload.Items {
		content := "unanswered"
		if q.IsAnswered {
			content = "answered"
		}
		items = append(items, model.SearchResultItem{
			Title:      q.Title,
			URL:        q.Link,
			Content:    content,
			ResultType: model.ResultCode,
			SiteName:   "Stack Overflow",
			Metadata: map[string]string{
				"tags":  strings.Join(q.Tags, ","),
				"score": strconv.Itoa(q.Score),
			},
		})
	}
	return items, nil
}

func (e *StackOverflowEngine) Search(ctx context.Context, q model.SearchQuery) (model.SearchResult, error) {
	return e.DoSearch(ctx, q, e.Request, e.Response)
}

var _ Engine = (*StackOverflowEngine)(nil)

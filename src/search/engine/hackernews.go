// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/apimgr/seesea/src/model"
	"github.com/apimgr/seesea/src/netclient"
)

// HackerNewsEngine queries the Algolia-hosted Hacker News search API,
// covering the news category with a source that skews toward technical
// content, useful alongside stackoverflow/github for code-intent queries.
type HackerNewsEngine struct {
	*BaseEngine
}

func NewHackerNewsEngine(client *netclient.Client) *HackerNewsEngine {
	info := model.EngineInfo{
		Name:        "hackernews",
		EngineType:  model.EngineNews,
		Description: "Hacker News story search",
		Status:      model.EngineStatusActive,
		Categories:  []string{"news"},
		Capabilities: model.EngineCapabilities{
			ResultTypes: []model.ResultType{model.ResultNews},
			MaxPageSize: 20,
		},
		About: model.AboutInfo{
			Website:         "https://news.ycombinator.com",
			OfficialAPIDocs: "https://hn.algolia.com/api",
			UseOfficialAPI:  true,
			ResultsFormat:   "JSON",
		},
		Timeout: 8 * time.Second,
		MaxPage: 10,
	}
	return &HackerNewsEngine{BaseEngine: NewBaseEngine(info, client)}
}

func (e *HackerNewsEngine) Request(q model.SearchQuery, params *model.RequestParams) error {
	v := url.Values{}
	v.Set("query", q.Query)
	v.Set("tags", "story")
	params.URL = "https://hn.algolia.com/api/v1/search?" + v.Encode()
	params.Method = "GET"
	params.Headers = map[string]string{"User-Agent": DefaultUserAgent, "Accept": "application/json"}
	return nil
}

func (e *HackerNewsEngine) Fetch(ctx context.Context, params model.RequestParams) (*netclient.Response, error) {
	return e.FetchWithResilience(ctx, params)
}

type hnSearchResponse struct {
	Hits []struct {
		Title     string `json:"title"`
		URL       string `json:"url"`
		StoryText string `json:"story_text"`
		Points    int    `json:"points"`
		ObjectID  string `json:"objectID"`
	} `json:"hits"`
}

func (e *HackerNewsEngine) Response(resp *netclient.Response) ([]model.SearchResultItem, error) {
	var payload hnSearchResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, nil
	}

	items := make([]model.SearchResultItem, 0, len(payload.Hits))
	for _, hit := range payload.Hits {
		if hit.Title == "" {
			continue
		}
		link := hit.URL
		if link == "" {
			link = "https://news.ycombinator.com/item?id=" + hit.ObjectID
		}
		items = append(items, model.SearchResultItem{
			Title:      hit.Title,
			URL:        link,
			Content:    hit.StoryText,
			ResultType: model.ResultNews,
			SiteName:   "Hacker News",
		})
	}
	return items, nil
}

func (e *HackerNewsEngine) Search(ctx context.Context, q model.SearchQuery) (model.SearchResult, error) {
	return e.DoSearch(ctx, q, e.Request, e.Response)
}

var _ Engine = (*HackerNewsEngine)(nil)

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

// WikipediaEngine uses MediaWiki's public opensearch JSON API, no scraping
// involved, so it needs no goquery parsing and no CAPTCHA handling.
type WikipediaEngine struct {
	*BaseEngine
}

func NewWikipediaEngine(client *netclient.Client) *WikipediaEngine {
	info := model.EngineInfo{
		Name:        "wikipedia",
		EngineType:  model.EngineGeneral,
		Description: "Wikipedia article search",
		Status:      model.EngineStatusActive,
		Categories:  []string{"general", "academic"},
		Capabilities: model.EngineCapabilities{
			ResultTypes:            []model.ResultType{model.ResultWeb},
			MaxPageSize:            10,
			SupportsLanguageFilter: true,
		},
		About: model.AboutInfo{
			Website:         "https://www.wikipedia.org",
			WikidataID:      "Q52",
			OfficialAPIDocs: "https://www.mediawiki.org/wiki/API:Opensearch",
			UseOfficialAPI:  true,
			ResultsFormat:   "JSON",
		},
		Timeout: 8 * time.Second,
		MaxPage: 1,
	}
	return &WikipediaEngine{BaseEngine: NewBaseEngine(info, client)}
}

func (e *WikipediaEngine) Request(q model.SearchQuery, params *model.RequestParams) error {
	lang := q.Language
	if lang == "" {
		lang = "en"
	}
	v := url.Values{}
	v.Set("action", "opensearch")
	v.Set("search", q.Query)
	v.Set("limit", "10")
	v.Set("format", "json")
	params.URL = "https://" + lang + ".wikipedia.org/w/api.php?" + v.Encode()
	params.Method = "GET"
	params.Headers = BrowserHeaders(DefaultUserAgent)
	return nil
}

func (e *WikipediaEngine) Fetch(ctx context.Context, params model.RequestParams) (*netclient.Response, error) {
	return e.FetchWithResilience(ctx, params)
}

// Response decodes the opensearch 4-tuple: [query, titles, descriptions, urls].
func (e *WikipediaEngine) Response(resp *netclient.Response) ([]model.SearchResultItem, error) {
	var payload [4]json.RawMessage
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, nil
	}

	var titles, descriptions, urls []string
	if err := json.Unmarshal(payload[1], &titles); err != nil {
		return nil, nil
	}
	_ = json.Unmarshal(payload[2], &descriptions)
	_ = json.Unmarshal(payload[3], &urls)

	var items []model.SearchResultItem
	for i, title := range titles {
		item := model.SearchResultItem{
			Title:      title,
			ResultType: model.ResultWeb,
			SiteName:   "Wikipedia",
		}
		if i < len(urls) {
			item.URL = urls[i]
		}
		if i < len(descriptions) {
			item.Content = descriptions[i]
		}
		if item.URL == "" {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (e *WikipediaEngine) Search(ctx context.Context, q model.SearchQuery) (model.SearchResult, error) {
	return e.DoSearch(ctx, q, e.Request, e.Response)
}

var _ Engine = (*WikipediaEngine)(nil)

// SPDX-License-Identifier: MIT

package engine

import (
	"bytes"
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/apimgr/seesea/src/model"
	"github.com/apimgr/seesea/src/netclient"
)

// DuckDuckGoEngine scrapes the lightweight "html.duckduckgo.com" endpoint,
// which doesn't require JavaScript and stays stable across releases.
type DuckDuckGoEngine struct {
	*BaseEngine
}

func NewDuckDuckGoEngine(client *netclient.Client) *DuckDuckGoEngine {
	info := model.EngineInfo{
		Name:        "duckduckgo",
		EngineType:  model.EngineGeneral,
		Description: "DuckDuckGo web search",
		Status:      model.EngineStatusActive,
		Categories:  []string{"general"},
		Capabilities: model.EngineCapabilities{
			ResultTypes:        []model.ResultType{model.ResultWeb},
			MaxPageSize:        10,
			SupportsPagination: true,
			SupportsSafeSearch: true,
		},
		About:   model.AboutInfo{Website: "https://duckduckgo.com", ResultsFormat: "HTML"},
		Timeout: 10 * time.Second,
		MaxPage: 20,
	}
	return &DuckDuckGoEngine{BaseEngine: NewBaseEngine(info, client)}
}

func (e *DuckDuckGoEngine) Request(q model.SearchQuery, params *model.RequestParams) error {
	v := url.Values{}
	v.Set("q", q.Query)
	if q.Page > 1 {
		v.Set("s", strconv.Itoa((q.Page-1)*30))
	}
	if q.SafeSearch == model.SafeSearchNone {
		v.Set("kp", "-2")
	}
	params.URL = "https://html.duckduckgo.com/html/?" + v.Encode()
	params.Method = "GET"
	params.Headers = BrowserHeaders(DefaultUserAgent)
	return nil
}

func (e *DuckDuckGoEngine) Fetch(ctx context.Context, params model.RequestParams) (*netclient.Response, error) {
	return e.FetchWithResilience(ctx, params)
}

func (e *DuckDuckGoEngine) Response(resp *netclient.Response) ([]model.SearchResultItem, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, nil
	}

	var items []model.SearchResultItem
	doc.Find("div.result, div.web-result").Each(func(i int, s *goquery.Selection) {
		link := s.Find("a.result__a").First()
		href, _ := link.Attr("href")
		title := cleanText(link.Text())
		snippet := cleanText(s.Find(".result__snippet").First().Text())
		if href == "" || title == "" {
			return
		}
		items = append(items, model.SearchResultItem{
			Title:      title,
			URL:        href,
			Content:    snippet,
			ResultType: model.ResultWeb,
		})
	})
	return items, nil
}

func (e *DuckDuckGoEngine) Search(ctx context.Context, q model.SearchQuery) (model.SearchResult, error) {
	return e.DoSearch(ctx, q, e.Request, e.Response)
}

var _ Engine = (*DuckDuckGoEngine)(nil)

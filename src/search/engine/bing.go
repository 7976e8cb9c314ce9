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

// BingEngine scrapes Bing's HTML results page.
type BingEngine struct {
	*BaseEngine
}

func NewBingEngine(client *netclient.Client) *BingEngine {
	info := model.EngineInfo{
		Name:        "bing",
		EngineType:  model.EngineGeneral,
		Description: "Bing web search",
		Status:      model.EngineStatusActive,
		Categories:  []string{"general"},
		Capabilities: model.EngineCapabilities{
			ResultTypes:            []model.ResultType{model.ResultWeb},
			MaxPageSize:            10,
			SupportsPagination:     true,
			SupportsLanguageFilter: true,
			SupportsSafeSearch:     true,
		},
		About:   model.AboutInfo{Website: "https://www.bing.com", ResultsFormat: "HTML"},
		Timeout: 10 * time.Second,
		MaxPage: 10,
	}
	return &BingEngine{BaseEngine: NewBaseEngine(info, client)}
}

func (e *BingEngine) Request(q model.SearchQuery, params *model.RequestParams) error {
	v := url.Values{}
	v.Set("q", q.Query)
	v.Set("first", strconv.Itoa((q.Page-1)*10+1))
	if q.Language != "" {
		v.Set("setlang", q.Language)
	}
	params.URL = "https://www.bing.com/search?" + v.Encode()
	params.Method = "GET"
	params.Headers = BrowserHeaders(DefaultUserAgent)
	return nil
}

func (e *BingEngine) Fetch(ctx context.Context, params model.RequestParams) (*netclient.Response, error) {
	return e.FetchWithResilience(ctx, params)
}

func (e *BingEngine) Response(resp *netclient.Response) ([]model.SearchResultItem, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, nil
	}

	var items []model.SearchResultItem
	doc.Find("li.b_algo").Each(func(i int, s *goquery.Selection) {
		link := s.Find("h2 a").First()
		href, _ := link.Attr("href")
		title := cleanText(link.Text())
		snippet := cleanText(s.Find(".b_caption p").First().Text())
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

func (e *BingEngine) Search(ctx context.Context, q model.SearchQuery) (model.SearchResult, error) {
	return e.DoSearch(ctx, q, e.Request, e.Response)
}

var _ Engine = (*BingEngine)(nil)

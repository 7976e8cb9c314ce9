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

// SogouEngine scrapes Sogou's Chinese-language web search, valuable for
// queries the query parser detects as language "zh" where Western engines
// under-index local content.
type SogouEngine struct {
	*BaseEngine
}

func NewSogouEngine(client *netclient.Client) *SogouEngine {
	info := model.EngineInfo{
		Name:        "sogou",
		EngineType:  model.EngineGeneral,
		Description: "Sogou web search",
		Status:      model.EngineStatusActive,
		Categories:  []string{"general"},
		Capabilities: model.EngineCapabilities{
			ResultTypes:            []model.ResultType{model.ResultWeb},
			MaxPageSize:            10,
			SupportsPagination:     true,
			SupportsLanguageFilter: true,
		},
		About:   model.AboutInfo{Website: "https://www.sogou.com", ResultsFormat: "HTML"},
		Timeout: 10 * time.Second,
		MaxPage: 10,
	}
	return &SogouEngine{BaseEngine: NewBaseEngine(info, client)}
}

func (e *SogouEngine) Request(q model.SearchQuery, params *model.RequestParams) error {
	v := url.Values{}
	v.Set("query", q.Query)
	if q.Page > 1 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	params.URL = "https://www.sogou.com/web?" + v.Encode()
	params.Method = "GET"
	params.Headers = BrowserHeaders(DefaultUserAgent)
	return nil
}

func (e *SogouEngine) Fetch(ctx context.Context, params model.RequestParams) (*netclient.Response, error) {
	return e.FetchWithResilience(ctx, params)
}

func (e *SogouEngine) Response(resp *netclient.Response) ([]model.SearchResultItem, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, nil
	}

	var items []model.SearchResultItem
	doc.Find("div.vrwrap, div.rb").Each(func(i int, s *goquery.Selection) {
		link := s.Find("h3 a, a.title").First()
		href, _ := link.Attr("href")
		title := cleanText(link.Text())
		snippet := cleanText(s.Find(".str-info, .fz-mid").First().Text())
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

func (e *SogouEngine) Search(ctx context.Context, q model.SearchQuery) (model.SearchResult, error) {
	return e.DoSearch(ctx, q, e.Request, e.Response)
}

var _ Engine = (*SogouEngine)(nil)

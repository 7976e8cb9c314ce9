// SPDX-License-Identifier: MIT

package engine

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/apimgr/seesea/src/model"
	"github.com/apimgr/seesea/src/netclient"
)

// GoogleEngine scrapes Google's public HTML results page. Like every
// HTML-scraping engine, a layout change upstream degrades it to an empty
// result set rather than an error.
type GoogleEngine struct {
	*BaseEngine
}

// NewGoogleEngine builds the general-web Google engine.
func NewGoogleEngine(client *netclient.Client) *GoogleEngine {
	info := model.EngineInfo{
		Name: "google",
		EngineType: model.EngineGeneral,
		Description: "Google web search",
		Status: model.EngineStatusActive,
		Categories: []string{"general"},
		Capabilities: model.EngineCapabilities{
			ResultTypes: []model.ResultType{model.ResultWeb},
			MaxPageSize: 10,
			SupportsPagination: true,
			SupportsTimeRange: true,
			SupportsLanguageFilter: true,
			SupportsSafeSearch: true,
		},
		About: model.AboutInfo{Website: "https://www.google.com", ResultsFormat: "HTML"},
		Timeout: 10 * time.Second,
		MaxPage: 10,
	}
	return &GoogleEngine{BaseEngine: NewBaseEngine(info, client)}
}

// Request builds the Google search URL from the query.
func (e *GoogleEngine) Request(q model.SearchQuery, params *model.RequestParams) error {
	if e.info.MaxPage > 0 && q.Page > e.info.MaxPage {
		return fmt.Errorf("%w: page exceeds google's max_page", ErrValidation)
	}
	v := url.Values{}
	v.Set("q", q.Query)
	v.Set("start", strconv.Itoa((q.Page-1)*10))
	if q.Language != "" {
		v.Set("hl", q.Language)
	}
	if q.SafeSearch == model.SafeSearchStrict {
		v.Set("safe", "active")
	}
	params.URL = "https://www.google.com/search?" + v.Encode()
	params.Method = "GET"
	params.Headers = BrowserHeaders(DefaultUserAgent)
	return nil
}

// Fetch delegates to the BaseEngine's resilient transport.
func (e *GoogleEngine) Fetch(ctx context.Context, params model.RequestParams) (*netclient.Response, error) {
	return e.FetchWithResilience(ctx, params)
}

// Response parses Google's result cards. Selectors target the div.g (or
// div.tF2Cxc) card / h3 title / snippet-div shape Google's HTML interface
// has used for years; when that
// shape changes this returns an empty slice, never an error.
func (e *GoogleEngine) Response(resp *netclient.Response) ([]model.SearchResultItem, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, nil
	}

	var items []model.SearchResultItem
	doc.Find("div.g, div.tF2Cxc").Each(func(i int, s *goquery.Selection) {
		link := s.Find("a").First()
		href, _ := link.Attr("href")
		if href == "" {
			return
		}
		title := cleanText(s.Find("h3").First().Text())
		snippet := cleanText(s.Find("div.VwiC3b, span.aCOpRe").First().Text())
		if title == "" || href == "" {
			return
		}
		items = append(items, model.SearchResultItem{
			Title: title,
			URL: href,
			Content: snippet,
			ResultType: model.ResultWeb,
		})
	})
	return items, nil
}

// Search glues request→fetch→response via BaseEngine.DoSearch.
func (e *GoogleEngine) Search(ctx context.Context, q model.SearchQuery) (model.SearchResult, error) {
	return e.DoSearch(ctx, q, e.Request, e.Response)
}

var _ Engine = (*GoogleEngine)(nil)

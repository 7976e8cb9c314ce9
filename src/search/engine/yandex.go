// SPDX-License-Identifier: MIT

package engine

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/apimgr/seesea/src/model"
	"github.com/apimgr/seesea/src/netclient"
	"github.com/apimgr/seesea/src/retry"
)

// YandexEngine scrapes Yandex's HTML results. Yandex is the one backend
// known to answer suspicious traffic with an `x-yandex-captcha: captcha`
// response header instead of a 403, Response checks for it and
// reports a captcha error (retry.ErrCaptcha) so the manager counts it as a real failure
// rather than silently returning zero results.
type YandexEngine struct {
	*BaseEngine
}

func NewYandexEngine(client *netclient.Client) *YandexEngine {
	info := model.EngineInfo{
		Name: "yandex",
		EngineType: model.EngineGeneral,
		Description: "Yandex web search",
		Status: model.EngineStatusActive,
		Categories: []string{"general"},
		Capabilities: model.EngineCapabilities{
			ResultTypes: []model.ResultType{model.ResultWeb},
			MaxPageSize: 10,
			SupportsPagination: true,
			SupportsLanguageFilter: true,
		},
		About: model.AboutInfo{Website: "https://yandex.com", ResultsFormat: "HTML"},
		Timeout: 10 * time.Second,
		MaxPage: 10,
	}
	return &YandexEngine{BaseEngine: NewBaseEngine(info, client)}
}

func (e *YandexEngine) Request(q model.SearchQuery, params *model.RequestParams) error {
	v := url.Values{}
	v.Set("text", q.Query)
	if q.Page > 1 {
		v.Set("p", fmt.Sprintf("%d", q.Page-1))
	}
	params.URL = "https://yandex.com/search/?" + v.Encode()
	params.Method = "GET"
	params.Headers = BrowserHeaders(DefaultUserAgent)
	return nil
}

func (e *YandexEngine) Fetch(ctx context.Context, params model.RequestParams) (*netclient.Response, error) {
	return e.FetchWithResilience(ctx, params)
}

func (e *YandexEngine) Response(resp *netclient.Response) ([]model.SearchResultItem, error) {
	if resp.Header.Get("x-yandex-captcha") == "captcha" {
		return nil, fmt.Errorf("%s: %w: captcha challenge", e.info.Name, retry.ErrCaptcha)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body))
	if err != nil {
		return nil, nil
	}

	var items []model.SearchResultItem
	doc.Find("li.serp-item").Each(func(i int, s *goquery.Selection) {
		link := s.Find("a.Link").First()
		href, _ := link.Attr("href")
		title := cleanText(s.Find(".organic__url-text, .OrganicTitle-LinkText").First().Text())
		snippet := cleanText(s.Find(".TextContainer, .organic__text").First().Text())
		if href == "" || title == "" {
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

func (e *YandexEngine) Search(ctx context.Context, q model.SearchQuery) (model.SearchResult, error) {
	return e.DoSearch(ctx, q, e.Request, e.Response)
}

var _ Engine = (*YandexEngine)(nil)

// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"encoding/json"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/apimgr/seesea/src/model"
	"github.com/apimgr/seesea/src/netclient"
)

// UnsplashEngine queries Unsplash's official photo search API. It requires
// an access key (read from SEESEA_UNSPLASH_KEY); when the key is unset the
// constructor marks the engine Disabled and ValidateQuery rejects every
// query, instead of spending a request budget on guaranteed 401s.
type UnsplashEngine struct {
	*BaseEngine
	accessKey string
}

func NewUnsplashEngine(client *netclient.Client) *UnsplashEngine {
	info := model.EngineInfo{
		Name:        "unsplash",
		EngineType:  model.EngineImage,
		Description: "Unsplash photo search",
		Status:      model.EngineStatusActive,
		Categories:  []string{"images"},
		Capabilities: model.EngineCapabilities{
			ResultTypes: []model.ResultType{model.ResultImage},
			MaxPageSize: 30,
		},
		About: model.AboutInfo{
			Website:         "https://unsplash.com",
			OfficialAPIDocs: "https://unsplash.com/documentation",
			UseOfficialAPI:  true,
			RequireAPIKey:   true,
			ResultsFormat:   "JSON",
		},
		Timeout: 10 * time.Second,
		MaxPage: 10,
	}
	accessKey := os.Getenv("SEESEA_UNSPLASH_KEY")
	if accessKey == "" {
		info.Disabled = true
	}
	return &UnsplashEngine{BaseEngine: NewBaseEngine(info, client), accessKey: accessKey}
}

func (e *UnsplashEngine) ValidateQuery(q model.SearchQuery) error {
	if e.accessKey == "" {
		return ErrValidation
	}
	return e.BaseEngine.ValidateQuery(q)
}

func (e *UnsplashEngine) Request(q model.SearchQuery, params *model.RequestParams) error {
	v := url.Values{}
	v.Set("query", q.Query)
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("per_page", "30")
	params.URL = "https://api.unsplash.com/search/photos?" + v.Encode()
	params.Method = "GET"
	params.Headers = map[string]string{
		"User-Agent":    DefaultUserAgent,
		"Accept":        "application/json",
		"Authorization": "Client-ID " + e.accessKey,
	}
	return nil
}

func (e *UnsplashEngine) Fetch(ctx context.Context, params model.RequestParams) (*netclient.Response, error) {
	return e.FetchWithResilience(ctx, params)
}

type unsplashSearchResponse struct {
	Results []struct {
		Description    string `json:"description"`
		AltDescription string `json:"alt_description"`
		Links          struct {
			HTML string `json:"html"`
		} `json:"links"`
		URLs struct {
			Regular string `json:"regular"`
			Thumb   string `json:"thumb"`
		} `json:"urls"`
		User struct {
			Name string `json:"name"`
		} `json:"user"`
	} `json:"results"`
}

func (e *UnsplashEngine) Response(resp *netclient.Response) ([]model.SearchResultItem, error) {
	var payload unsplashSearchResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, nil
	}

	items := make([]model.SearchResultItem, 0, len(payload.Results))
	for _, photo := range payload.Results {
		title := photo.Description
		if title == "" {
			title = photo.AltDescription
		}
		if title == "" {
			title = "Photo by " + photo.User.Name
		}
		items = append(items, model.SearchResultItem{
			Title:      title,
			URL:        photo.Links.HTML,
			Content:    "Photo by " + photo.User.Name + " on Unsplash",
			Thumbnail:  photo.URLs.Thumb,
			ResultType: model.ResultImage,
			SiteName:   "Unsplash",
			Metadata:   map[string]string{"full_url": photo.URLs.Regular},
		})
	}
	return items, nil
}

func (e *UnsplashEngine) Search(ctx context.Context, q model.SearchQuery) (model.SearchResult, error) {
	return e.DoSearch(ctx, q, e.Request, e.Response)
}

var _ Engine = (*UnsplashEngine)(nil)
var _ QueryValidator = (*UnsplashEngine)(nil)

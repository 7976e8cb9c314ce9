// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"

	"github.com/apimgr/seesea/src/model"
	"github.com/apimgr/seesea/src/netclient"
)

// GitHubEngine queries the public repository search REST API. Unauthenticated
// requests are rate-limited to 10/minute by GitHub itself; the circuit
// breaker and retry classifier (429 → ErrRateLimited) absorb that without
// any GitHub-specific code.
type GitHubEngine struct {
	*BaseEngine
}

func NewGitHubEngine(client *netclient.Client) *GitHubEngine {
	info := model.EngineInfo{
		Name:        "github",
		EngineType:  model.EngineCode,
		Description: "GitHub code and repository search",
		Status:      model.EngineStatusActive,
		Categories:  []string{"code"},
		Capabilities: model.EngineCapabilities{
			ResultTypes:        []model.ResultType{model.ResultCode},
			MaxPageSize:        30,
			SupportsPagination: true,
			RateLimit:          10,
		},
		About: model.AboutInfo{
			Website:         "https://github.com",
			OfficialAPIDocs: "https://docs.github.com/en/rest/search",
			UseOfficialAPI:  true,
			ResultsFormat:   "JSON",
		},
		Timeout: 10 * time.Second,
		MaxPage: 10,
	}
	return &GitHubEngine{BaseEngine: NewBaseEngine(info, client)}
}

func (e *GitHubEngine) Request(q model.SearchQuery, params *model.RequestParams) error {
	v := url.Values{}
	v.Set("q", q.Query)
	v.Set("per_page", "30")
	v.Set("page", strconv.Itoa(q.Page))
	params.URL = "https://api.github.com/search/repositories?" + v.Encode()
	params.Method = "GET"
	params.Headers = map[string]string{
		"User-Agent": DefaultUserAgent,
		"Accept":     "application/vnd.github+json",
	}
	return nil
}

func (e *GitHubEngine) Fetch(ctx context.Context, params model.RequestParams) (*netclient.Response, error) {
	return e.FetchWithResilience(ctx, params)
}

type githubSearchResponse struct {
	TotalCount int `json:"total_count"`
	Items      []struct {
		FullName    string `json:"full_name"`
		HTMLURL     string `json:"html_url"`
		Description string `json:"description"`
		Language    string `json:"language"`
		Stars       int    `json:"stargazers_count"`
	} `json:"items"`
}

func (e *GitHubEngine) Response(resp *netclient.Response) ([]model.SearchResultItem, error) {
	var payload githubSearchResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, nil
	}

	items := make([]model.SearchResultItem, 0, len(payload.Items))
	for _, repo := range payload.Items {
		items = append(items, model.SearchResultItem{
			Title:      repo.FullName,
			URL:        repo.HTMLURL,
			Content:    repo.Description,
			ResultType: model.ResultCode,
			SiteName:   "GitHub",
			Metadata: map[string]string{
				"language": repo.Language,
				"stars":    strconv.Itoa(repo.Stars),
			},
		})
	}
	return items, nil
}

func (e *GitHubEngine) Search(ctx context.Context, q model.SearchQuery) (model.SearchResult, error) {
	return e.DoSearch(ctx, q, e.Request, e.Response)
}

var _ Engine = (*GitHubEngine)(nil)

// SPDX-License-Identifier: MIT

package engine

import (
	"context"
	"encoding/json"
	"net/url"
	"regexp"
	"time"

	"github.com/apimgr/seesea/src/model"
	"github.com/apimgr/seesea/src/netclient"
)

// YouTubeEngine scrapes YouTube's search results page. YouTube embeds its
// results as a JSON blob inside a <script> tag rather than plain markup, so
// this extracts that blob with a regex instead of goquery selectors.
type YouTubeEngine struct {
	*BaseEngine
}

var ytInitialDataPattern = regexp.MustCompile(`var ytInitialData = ({.*?});`)

func NewYouTubeEngine(client *netclient.Client) *YouTubeEngine {
	info := model.EngineInfo{
		Name:        "youtube",
		EngineType:  model.EngineVideo,
		Description: "YouTube video search",
		Status:      model.EngineStatusActive,
		Categories:  []string{"videos"},
		Capabilities: model.EngineCapabilities{
			ResultTypes: []model.ResultType{model.ResultVideo},
			MaxPageSize: 20,
		},
		About:   model.AboutInfo{Website: "https://www.youtube.com", ResultsFormat: "HTML"},
		Timeout: 10 * time.Second,
		MaxPage: 1,
	}
	return &YouTubeEngine{BaseEngine: NewBaseEngine(info, client)}
}

func (e *YouTubeEngine) Request(q model.SearchQuery, params *model.RequestParams) error {
	v := url.Values{}
	v.Set("search_query", q.Query)
	params.URL = "https://www.youtube.com/results?" + v.Encode()
	params.Method = "GET"
	params.Headers = BrowserHeaders(DefaultUserAgent)
	return nil
}

func (e *YouTubeEngine) Fetch(ctx context.Context, params model.RequestParams) (*netclient.Response, error) {
	return e.FetchWithResilience(ctx, params)
}

// videoRenderer is a minimal slice of ytInitialData's deeply nested shape ,
// only the fields results ever needs.
type videoRenderer struct {
	VideoRenderer struct {
		VideoID string `json:"videoId"`
		Title   struct {
			Runs []struct {
				Text string `json:"text"`
			} `json:"runs"`
		} `json:"title"`
		OwnerText struct {
			Runs []struct {
				Text string `json:"text"`
			} `json:"runs"`
		} `json:"ownerText"`
		LengthText struct {
			SimpleText string `json:"simpleText"`
		} `json:"lengthText"`
	} `json:"videoRenderer"`
}

func (e *YouTubeEngine) Response(resp *netclient.Response) ([]model.SearchResultItem, error) {
	match := ytInitialDataPattern.FindSubmatch(resp.Body)
	if match == nil {
		return nil, nil
	}

	// ytInitialData nests renderers many levels deep under contents; rather
	// than model the whole tree, scan for any videoRenderer object directly.
	var renderers []videoRenderer
	for _, raw := range extractObjects(match[1], `"videoRenderer"`) {
		var r videoRenderer
		if json.Unmarshal(raw, &r) == nil && r.VideoRenderer.VideoID != "" {
			renderers = append(renderers, r)
		}
	}

	items := make([]model.SearchResultItem, 0, len(renderers))
	for _, r := range renderers {
		v := r.VideoRenderer
		title := ""
		if len(v.Title.Runs) > 0 {
			title = v.Title.Runs[0].Text
		}
		channel := ""
		if len(v.OwnerText.Runs) > 0 {
			channel = v.OwnerText.Runs[0].Text
		}
		if title == "" {
			continue
		}
		items = append(items, model.SearchResultItem{
			Title:      title,
			URL:        "https://www.youtube.com/watch?v=" + v.VideoID,
			Content:    channel,
			ResultType: model.ResultVideo,
			SiteName:   "YouTube",
			Metadata:   map[string]string{"duration": v.LengthText.SimpleText},
		})
	}
	return items, nil
}

func (e *YouTubeEngine) Search(ctx context.Context, q model.SearchQuery) (model.SearchResult, error) {
	return e.DoSearch(ctx, q, e.Request, e.Response)
}

var _ Engine = (*YouTubeEngine)(nil)

// SPDX-License-Identifier: MIT

package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/apimgr/seesea/src/model"
)

type errorBody struct {
	Code string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Code: code, Message: message})
}

// searchRequestBody is the POST /api/search payload.
type searchRequestBody struct {
	Query string `json:"query"`
	Page int `json:"page"`
	PageSize int `json:"page_size"`
	Engines string `json:"engines"`
	Language string `json:"language"`
	Region string `json:"region"`
}

// searchResponseItem is the wire shape specifies for each result ,
// "description" rather than the internal "content" field name.
type searchResponseItem struct {
	Title string `json:"title"`
	URL string `json:"url"`
	Description string `json:"description"`
	Engine string `json:"engine"`
	Score float64 `json:"score"`
}

type searchResponseBody struct {
	Query string `json:"query"`
	Results []searchResponseItem `json:"results"`
	TotalCount int `json:"total_count"`
	Page int `json:"page"`
	PageSize int `json:"page_size"`
	EnginesUsed []string `json:"engines_used"`
	QueryTimeMs int64 `json:"query_time_ms"`
	Cached bool `json:"cached"`
}

func (s *Server) buildQuery(r *http.Request) (model.SearchQuery, error) {
	q := model.DefaultSearchQuery()

	if r.Method == http.MethodPost {
		var body searchRequestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return q, err
		}
		q.Query = body.Query
		if body.Page > 0 {
			q.Page = body.Page
		}
		if body.PageSize > 0 {
			q.PageSize = body.PageSize
		}
		q.Language = body.Language
		q.Region = body.Region
		if body.Engines != "" {
			q.Params = map[string]string{"engines": body.Engines}
		}
		return q, nil
	}

	query := r.URL.Query()
	q.Query = query.Get("q")
	if p := query.Get("page"); p != "" {
		if n, err := strconv.Atoi(p); err == nil && n > 0 {
			q.Page = n
		}
	}
	if ps := query.Get("page_size"); ps != "" {
		if n, err := strconv.Atoi(ps); err == nil && n > 0 {
			q.PageSize = n
		}
	}
	q.Language = query.Get("language")
	q.Region = query.Get("region")
	if engines := query.Get("engines"); engines != "" {
		q.Params = map[string]string{"engines": engines}
	}
	return q, nil
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q, err := s.buildQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation", "malformed request body")
		return
	}

	resp, err := s.orc.Search(r.Context(), q)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation", err.Error())
		return
	}

	searchQueriesTotal.Inc()
	searchResultsHist.Observe(float64(len(resp.Results)))
	searchDuration.Observe(float64(resp.QueryTimeMs) / 1000.0)

	items := make([]searchResponseItem, 0, len(resp.Results))
	for _, item := range resp.Results {
		items = append(items, searchResponseItem{
			Title: item.Title,
			URL: item.URL,
			Description: item.Content,
			Engine: item.Engine,
			Score: item.Score,
		})
	}

	writeJSON(w, http.StatusOK, searchResponseBody{
		Query: q.Query,
		Results: items,
		TotalCount: resp.TotalCount,
		Page: q.Page,
		PageSize: q.PageSize,
		EnginesUsed: resp.EnginesUsed,
		QueryTimeMs: resp.QueryTimeMs,
		Cached: resp.Cached,
	})
}

// handleStream serves Server-Sent Events, one event per item as engines
// respond in whatever order they finish.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal", "streaming unsupported")
		return
	}

	q, err := s.buildQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation", "malformed request")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	stream := s.orc.StreamSearch(r.Context(), q)
	enc := json.NewEncoder(w)
	for item := range stream {
		if item.Item.Title == "" && item.Err == nil {
			continue
		}
		w.Write([]byte("data: "))
		enc.Encode(item)
		w.Write([]byte("\n"))
		flusher.Flush()
	}
}

func (s *Server) handleEngines(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"engines": s.orc.Manager().List()})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"search": s.orc.Stats(),
		"cache": s.orc.Store().Stats(),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"version": Version})
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.orc.Store().Stats())
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if err := s.orc.Store().Clear(); err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "cache clear failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cleared": true})
}

func (s *Server) handleCacheCleanup(w http.ResponseWriter, r *http.Request) {
	n := s.orc.Store().CleanupExpired()
	writeJSON(w, http.StatusOK, map[string]any{"removed": n})
}

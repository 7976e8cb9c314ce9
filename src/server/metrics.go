// SPDX-License-Identifier: MIT

package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics are the prometheus counters/histograms this server exposes
// alongside /api/stats, narrowed to the search/cache/engine domain this
// module actually owns (no DB or auth metrics, there's no DB or auth here).
var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Name: "seesea_http_requests_total", Help: "Total HTTP requests"},
		[]string{"method", "path", "status"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "seesea_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	searchQueriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{Name: "seesea_search_queries_total", Help: "Total search queries"},
	)
	searchResultsHist = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "seesea_search_results_total",
			Help:    "Result count per search",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
		},
	)
	searchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "seesea_search_duration_seconds",
			Help:    "Search duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30, 60},
		},
	)

	cacheHitsTotal   = promauto.NewCounter(prometheus.CounterOpts{Name: "seesea_cache_hits_total", Help: "Cache hits"})
	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{Name: "seesea_cache_misses_total", Help: "Cache misses"})

	engineRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Name: "seesea_engine_requests_total", Help: "Engine requests"},
		[]string{"engine"},
	)
	engineErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Name: "seesea_engine_errors_total", Help: "Engine errors"},
		[]string{"engine"},
	)
)

// metricsMiddleware records request counts/durations for every route.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		route := r.URL.Path
		httpRequestsTotal.WithLabelValues(r.Method, route, itoa(wrapped.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// metricsHandler exposes /metrics in the prometheus exposition format.
func metricsHandler() http.Handler {
	return promhttp.Handler()
}

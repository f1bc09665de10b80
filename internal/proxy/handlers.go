package proxy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abelbrown/dashboard/internal/logging"
	"github.com/abelbrown/dashboard/internal/sources/movie"
)

// SourceHeader names what answered a content-source request: a provider
// name, "cache" or "mock".
const SourceHeader = "X-Content-Source"

// handlers serves the content-source routes. Every upstream failure
// degrades to the mock payload with 200; callers never see a 5xx from a
// provider problem.
type handlers struct {
	news     NewsProvider  // nil serves mock news
	movies   MovieProvider // nil serves mock movies
	cache    Cache         // nil disables caching
	cacheTTL time.Duration
	metrics  *Metrics
}

func (h *handlers) handleNews(c *gin.Context) {
	start := time.Now()
	q := NewsQuery{
		Category: strings.TrimSpace(c.Query("category")),
		Query:    strings.TrimSpace(c.Query("query")),
		Page:     parsePage(c.Query("page")),
	}

	outcome, source, body := h.serve(c.Request.Context(), "news", h.newsProvider(), newsKey(q),
		func(ctx context.Context) (any, error) {
			return h.news.News(ctx, q)
		},
		func() any { return mockNews() },
	)
	h.respond(c, "news", outcome, source, body, start)
}

func (h *handlers) handleMovies(c *gin.Context) {
	start := time.Now()
	q := MovieQuery{
		Type:  strings.TrimSpace(c.DefaultQuery("type", movie.ListPopular)),
		Query: strings.TrimSpace(c.Query("query")),
		Page:  parsePage(c.Query("page")),
	}

	outcome, source, body := h.serve(c.Request.Context(), "movies", h.movieProvider(), movieKey(q),
		func(ctx context.Context) (any, error) {
			return h.movies.Movies(ctx, q)
		},
		func() any { return mockMovies() },
	)
	h.respond(c, "movies", outcome, source, body, start)
}

// serve resolves one request: cache, then provider, then mock. provider is
// "" when no upstream is configured.
func (h *handlers) serve(
	ctx context.Context,
	route, provider, key string,
	fetch func(ctx context.Context) (any, error),
	mock func() any,
) (outcome, source string, body []byte) {
	if provider == "" {
		return outcomeMock, outcomeMock, mustJSON(mock())
	}
	key = provider + ":" + key

	if h.cache != nil {
		cached, ok, err := h.cache.Get(ctx, key)
		switch {
		case err != nil:
			h.metrics.CacheErrors.WithLabelValues("get").Inc()
			logging.Warn("Cache read failed, bypassing", "route", route, "error", err)
		case ok:
			return outcomeCache, outcomeCache, cached
		}
	}

	payload, err := fetch(ctx)
	if err != nil {
		h.metrics.UpstreamErrors.WithLabelValues(provider).Inc()
		logging.Warn("Upstream failed, serving mock data", "route", route, "provider", provider, "error", err)
		return outcomeMock, outcomeMock, mustJSON(mock())
	}

	body, err = json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to encode upstream payload", "route", route, "error", err)
		return outcomeMock, outcomeMock, mustJSON(mock())
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, key, body, h.cacheTTL); err != nil {
			h.metrics.CacheErrors.WithLabelValues("set").Inc()
			logging.Warn("Cache write failed", "route", route, "error", err)
		}
	}
	return outcomeUpstream, provider, body
}

func (h *handlers) respond(c *gin.Context, route, outcome, source string, body []byte, start time.Time) {
	h.metrics.Requests.WithLabelValues(route, outcome).Inc()
	h.metrics.Duration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	c.Header(SourceHeader, source)
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parsePage reads a 1-based page number; anything unparsable is page 1.
func parsePage(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func newsKey(q NewsQuery) string {
	return "news?" + url.Values{
		"category": {q.Category},
		"query":    {q.Query},
		"page":     {strconv.Itoa(q.Page)},
	}.Encode()
}

func movieKey(q MovieQuery) string {
	return "movies?" + url.Values{
		"type":  {q.Type},
		"query": {q.Query},
		"page":  {strconv.Itoa(q.Page)},
	}.Encode()
}

func (h *handlers) newsProvider() string {
	if h.news == nil {
		return ""
	}
	return h.news.Name()
}

func (h *handlers) movieProvider() string {
	if h.movies == nil {
		return ""
	}
	return h.movies.Name()
}

// mustJSON encodes the fixed mock payloads, which cannot fail.
func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

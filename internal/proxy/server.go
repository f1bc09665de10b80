// Package proxy implements the content-source proxy: the HTTP service the
// news and movie adapters talk to. It fronts NewsAPI (or an RSS feed) and
// TMDB, and degrades to fixed mock payloads whenever an upstream is missing
// or failing.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/abelbrown/dashboard/internal/config"
	"github.com/abelbrown/dashboard/internal/logging"
	"github.com/abelbrown/dashboard/internal/sources/movie"
	"github.com/abelbrown/dashboard/internal/sources/news"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 5 * time.Second

// Options wires the proxy's collaborators. Nil providers serve mock data;
// a nil Cache disables caching.
type Options struct {
	Addr     string
	News     NewsProvider
	Movies   MovieProvider
	Cache    Cache
	CacheTTL time.Duration
	// Registry receives the proxy metrics and backs /metrics. A fresh
	// registry is created when nil.
	Registry *prometheus.Registry
	Debug    bool
}

// Server is the content-source HTTP server.
type Server struct {
	router  *gin.Engine
	server  *http.Server
	metrics *Metrics
}

// NewServer builds the router and the http.Server.
func NewServer(opts Options) *Server {
	if opts.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	metrics := NewMetrics(reg)

	h := &handlers{
		news:     opts.News,
		movies:   opts.Movies,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		metrics:  metrics,
	}

	router := gin.New()
	// Recovery first to catch panics in everything below it.
	router.Use(RecoveryMiddleware())
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware())

	router.GET(news.Path, h.handleNews)
	router.GET(movie.Path, h.handleMovies)
	router.GET("/healthz", healthz)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	return &Server{
		router:  router,
		metrics: metrics,
		server: &http.Server{
			Addr:              opts.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
	}
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Metrics returns the proxy collectors.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logging.Info("Starting content-source proxy", "address", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info("Shutting down content-source proxy")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// OptionsFromConfig chooses providers and the cache from cfg. The returned
// cleanup closes the Redis connection, if one was opened. A Redis that
// cannot be reached is logged and skipped.
func OptionsFromConfig(cfg *config.Config) (Options, func()) {
	timeout := cfg.Sources.Timeout
	opts := Options{
		Addr:     cfg.Proxy.Addr,
		CacheTTL: cfg.Proxy.CacheTTL,
		Debug:    cfg.Logging.Level == "debug",
	}

	switch {
	case cfg.Proxy.NewsAPIKey != "":
		opts.News = NewNewsAPI(cfg.Proxy.NewsAPIBase, cfg.Proxy.NewsAPIKey, timeout)
	case cfg.Proxy.NewsRSSURL != "":
		opts.News = NewRSSNews(cfg.Proxy.NewsRSSURL, timeout)
	default:
		logging.Info("No NEWS_API_KEY or news_rss_url, serving mock news")
	}

	if cfg.Proxy.TMDBAPIKey != "" {
		opts.Movies = NewTMDB(cfg.Proxy.TMDBBase, cfg.Proxy.TMDBAPIKey, timeout)
	} else {
		logging.Info("No TMDB_API_KEY, serving mock movies")
	}

	cleanup := func() {}
	if cfg.Redis.Address != "" && cfg.Proxy.CacheTTL > 0 {
		client, err := NewRedisClient(cfg.Redis)
		if err != nil {
			logging.Warn("Redis unavailable, running without cache", "address", cfg.Redis.Address, "error", err)
		} else {
			opts.Cache = NewRedisCache(client)
			cleanup = func() { client.Close() }
			logging.Info("Response cache enabled", "address", cfg.Redis.Address, "ttl", cfg.Proxy.CacheTTL)
		}
	}
	return opts, cleanup
}

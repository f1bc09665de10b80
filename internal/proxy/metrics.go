package proxy

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes recorded per request.
const (
	outcomeUpstream = "upstream"
	outcomeCache    = "cache"
	outcomeMock     = "mock"
)

// Metrics holds the proxy's Prometheus collectors.
type Metrics struct {
	Requests       *prometheus.CounterVec   // route, outcome
	UpstreamErrors *prometheus.CounterVec   // provider
	CacheErrors    *prometheus.CounterVec   // op
	Duration       *prometheus.HistogramVec // route
}

// NewMetrics registers the proxy collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dashboard",
			Subsystem: "proxy",
			Name:      "requests_total",
			Help:      "Content-source requests by route and how they were answered.",
		}, []string{"route", "outcome"}),
		UpstreamErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dashboard",
			Subsystem: "proxy",
			Name:      "upstream_errors_total",
			Help:      "Upstream failures that degraded to mock data.",
		}, []string{"provider"}),
		CacheErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dashboard",
			Subsystem: "proxy",
			Name:      "cache_errors_total",
			Help:      "Cache operations that failed and were bypassed.",
		}, []string{"op"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dashboard",
			Subsystem: "proxy",
			Name:      "request_duration_seconds",
			Help:      "Content-source request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

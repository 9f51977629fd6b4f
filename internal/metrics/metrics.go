// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the collectors the engine and server record into.
type Metrics struct {
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
	RunDuration *prometheus.HistogramVec
	HTTPErrors  *prometheus.CounterVec
}

// New registers the service collectors with the given registerer and
// returns them. Pass prometheus.DefaultRegisterer in production; tests
// use a fresh registry to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CacheHits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kerf_cache_hits_total",
			Help: "Number of run requests answered from the result store.",
		}, []string{"algorithm"}),
		CacheMisses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kerf_cache_misses_total",
			Help: "Number of run requests that required computation.",
		}, []string{"algorithm"}),
		RunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kerf_run_duration_seconds",
			Help:    "Wall-clock duration of algorithm executions.",
			Buckets: prometheus.DefBuckets,
		}, []string{"algorithm"}),
		HTTPErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "kerf_http_errors_total",
			Help: "Number of error responses by status code.",
		}, []string{"status"}),
	}
}

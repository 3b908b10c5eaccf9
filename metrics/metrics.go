// Package metrics defines the Prometheus collectors exposed by the query
// binary: latency by driver, top-k queue size, cache hit/miss, and queries
// by outcome. Grounded on Adithya-.../pkg/metrics/metrics.go's
// collector-struct-plus-MustRegister pattern and pkg/metrics/server.go's
// promhttp.Handler exposure.
package metrics

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every Prometheus collector this repo registers.
type Metrics struct {
	QueryLatency   *prometheus.HistogramVec
	TopKQueueSize  prometheus.Histogram
	CacheHitsTotal prometheus.Counter
	CacheMissTotal prometheus.Counter
	QueriesTotal   *prometheus.CounterVec
}

// New creates and registers all collectors against the default registry.
func New() *Metrics {
	m := &Metrics{
		QueryLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "blockidx_query_latency_seconds",
				Help:    "Ranked query latency in seconds by driver.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"driver"},
		),
		TopKQueueSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "blockidx_topk_queue_size",
				Help:    "Number of entries held by the top-k queue at finalize.",
				Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 1000},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "blockidx_query_cache_hits_total",
				Help: "Total query-cache hits.",
			},
		),
		CacheMissTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "blockidx_query_cache_misses_total",
				Help: "Total query-cache misses.",
			},
		),
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blockidx_queries_total",
				Help: "Total queries executed, by driver and outcome.",
			},
			[]string{"driver", "outcome"},
		),
	}
	prometheus.MustRegister(
		m.QueryLatency,
		m.TopKQueueSize,
		m.CacheHitsTotal,
		m.CacheMissTotal,
		m.QueriesTotal,
	)
	return m
}

// Handler returns the Prometheus scrape endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartServer starts a background HTTP server exposing /metrics on port,
// returning a shutdown func. Grounded on pkg/metrics/server.go.
func StartServer(addr string) (shutdown func(context.Context) error) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server error", "error", err)
		}
	}()
	return server.Shutdown
}

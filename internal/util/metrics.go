package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CatalogLoadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_loads_total",
		Help: "Total number of successful product loads",
	})

	CatalogLoadsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_loads_failed_total",
		Help: "Total number of failed product loads",
	}, []string{"reason"})

	CatalogLoadsDiscardedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "catalog_loads_discarded_total",
		Help: "Total number of load results discarded after engine close",
	})

	CatalogRecomputeLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_recompute_latency_seconds",
		Help:    "Latency of derived view recomputation",
		Buckets: prometheus.DefBuckets,
	})

	StoreFetchLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "store_fetch_latency_seconds",
		Help:    "Latency of upstream store API fetches",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	StoreFetchesFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "store_fetches_failed_total",
		Help: "Total number of failed upstream store API fetches",
	}, []string{"endpoint"})

	CatalogCacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_cache_hits_total",
		Help: "Total number of catalog cache hits",
	}, []string{"key"})

	CatalogCacheMissesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_cache_misses_total",
		Help: "Total number of catalog cache misses",
	}, []string{"key"})

	CartMutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Total number of cart mutations",
	}, []string{"action"})

	SessionsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sessions_created_total",
		Help: "Total number of browsing sessions created",
	})

	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sessions_active",
		Help: "Number of currently active browsing sessions",
	})

	ActivityEventsConsumedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "activity_events_consumed_total",
		Help: "Total number of activity events consumed by the analytics worker",
	}, []string{"type"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)

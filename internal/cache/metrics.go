package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// cacheHits tracks read-through hits by layer ("service" for the
	// orchestrator, "http" for the response cache middleware).
	cacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobboard_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"layer"},
	)

	// cacheMisses tracks read-through misses by layer.
	cacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobboard_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"layer"},
	)

	// storeErrors tracks store operation errors.
	storeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jobboard_cache_errors_total",
			Help: "Total number of cache store operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete"
	)

	// invalidatedKeys counts member keys removed by tag invalidation.
	invalidatedKeys = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "jobboard_cache_invalidated_keys_total",
			Help: "Total number of member keys removed by tag invalidation",
		},
	)
)

// HitHTTP and MissHTTP are recorded by the HTTP response cache middleware,
// which lives outside this package but shares the metric family.
func HitHTTP()  { cacheHits.WithLabelValues("http").Inc() }
func MissHTTP() { cacheMisses.WithLabelValues("http").Inc() }

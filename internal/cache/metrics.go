package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	evictExpired = "expired"
	evictDeleted = "deleted"
	evictReset   = "reset"
)

var (
	// CacheHits counts Get calls that found a live entry.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ssr_cache_hits_total",
			Help: "Total number of rendered-page cache hits",
		},
	)

	// CacheMisses counts Get calls that found nothing or an expired entry.
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ssr_cache_misses_total",
			Help: "Total number of rendered-page cache misses",
		},
	)

	// CacheEntries tracks stored entries, expired-but-unswept included.
	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ssr_cache_entries",
			Help: "Current number of entries in the rendered-page cache",
		},
	)

	// CacheEvictions counts removed entries by reason.
	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ssr_cache_evictions_total",
			Help: "Total number of rendered-page cache entries removed",
		},
		[]string{"reason"}, // "expired", "deleted", "reset"
	)
)

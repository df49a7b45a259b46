package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Core per-strategy counters
	StrategyRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Total number of routed requests",
		},
		[]string{"strategy"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"strategy", "namespace"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"strategy"},
	)

	OfflineResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_offline_responses_total",
			Help: "Total number of synthetic offline responses",
		},
		[]string{"strategy"},
	)

	BackgroundRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_background_refreshes_total",
			Help: "Total number of stale-while-revalidate background refreshes",
		},
		[]string{"result"},
	)

	NamespacePurges = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_namespace_purges_total",
			Help: "Total number of stale cache namespaces deleted on activation",
		},
	)

	PrecachedAssets = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_precached_assets_total",
			Help: "Total number of assets seeded into the static namespace",
		},
	)

	// Push subscription lifecycle counters
	SubscribeOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_push_subscribe_total",
			Help: "Total number of push subscribe operations",
		},
		[]string{"result"},
	)

	UnsubscribeOps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_push_unsubscribe_total",
			Help: "Total number of push unsubscribe operations",
		},
		[]string{"result"},
	)

	NotificationsShown = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_notifications_shown_total",
			Help: "Total number of notifications rendered",
		},
	)

	// Fetch latency per strategy
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_fetch_duration_seconds",
			Help:    "Duration of upstream fetches",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)
)

// RecordRequest records a routed request for a strategy
func RecordRequest(strategy string) {
	StrategyRequests.WithLabelValues(strategy).Inc()
}

// RecordCacheHit records a cache hit
func RecordCacheHit(strategy, namespace string) {
	CacheHits.WithLabelValues(strategy, namespace).Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss(strategy string) {
	CacheMisses.WithLabelValues(strategy).Inc()
}

// RecordOffline records a synthetic offline response
func RecordOffline(strategy string) {
	OfflineResponses.WithLabelValues(strategy).Inc()
}

// RecordRefresh records the outcome of a background refresh ("ok" or "error")
func RecordRefresh(result string) {
	BackgroundRefreshes.WithLabelValues(result).Inc()
}

// RecordSubscribe records the outcome of a subscribe operation
func RecordSubscribe(result string) {
	SubscribeOps.WithLabelValues(result).Inc()
}

// RecordUnsubscribe records the outcome of an unsubscribe operation
func RecordUnsubscribe(result string) {
	UnsubscribeOps.WithLabelValues(result).Inc()
}

// TimeFetch returns a timer function for measuring upstream fetch duration
func TimeFetch(strategy string) func() {
	timer := prometheus.NewTimer(FetchDuration.WithLabelValues(strategy))
	return func() {
		timer.ObserveDuration()
	}
}

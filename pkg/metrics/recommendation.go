package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Latency of one full aggregation run (event received to records saved)
	RecommendationRunLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "recommendation_run_latency_seconds",
		Help:    "Latency of one preference event aggregation run",
		Buckets: prometheus.DefBuckets,
	})

	// Total number of preference events processed successfully
	PreferenceEventsProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recommendation_events_processed_total",
		Help: "Total number of preference events processed",
	})

	// Total number of preference events that failed and were handed back to
	// the broker for redelivery
	PreferenceEventsFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recommendation_events_failed_total",
		Help: "Total number of preference events that failed processing",
	})

	// Fan-out queries that degraded to an empty category, by category
	FanoutFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recommendation_fanout_failures_total",
		Help: "Total number of catalog fan-out queries that failed",
	}, []string{"category"})

	CacheHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recommendation_cache_hits_total",
		Help: "Total number of cache hits",
	}, []string{"cache"})

	CacheMisses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "recommendation_cache_misses_total",
		Help: "Total number of cache misses",
	}, []string{"cache"})
)

func Init() {
	prometheus.MustRegister(
		RecommendationRunLatency,
		PreferenceEventsProcessed,
		PreferenceEventsFailed,
		FanoutFailures,
		CacheHits,
		CacheMisses,
	)
}

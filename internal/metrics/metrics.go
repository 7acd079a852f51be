package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpstreamCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wxgate_upstream_calls_total",
			Help: "Total weather agency API calls",
		},
		[]string{"endpoint", "status"},
	)

	UpstreamLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wxgate_upstream_latency_seconds",
			Help:    "Weather agency API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wxgate_cache_hits_total",
			Help: "Cache hits by cache name",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wxgate_cache_misses_total",
			Help: "Cache misses (including stale entries) by cache name",
		},
		[]string{"cache"},
	)

	ActionsDispatched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wxgate_alert_actions_dispatched_total",
			Help: "Webhook actions successfully executed",
		},
	)

	DispatchFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wxgate_alert_dispatch_failures_total",
			Help: "Alert dispatches aborted by a failing action",
		},
	)
)

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	DocumentOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docvault", Name: "document_operations_total", Help: "Number of document operations by operation and outcome."},
		[]string{"operation", "outcome"},
	)
	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docvault", Name: "cache_hits_total", Help: "Number of cache hits by key namespace."},
		[]string{"namespace"},
	)
	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docvault", Name: "cache_misses_total", Help: "Number of cache misses by key namespace."},
		[]string{"namespace"},
	)
	StorageRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docvault", Name: "storage_retries_total", Help: "Number of retried storage attempts by backend."},
		[]string{"backend"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docvault", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docvault", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(DocumentOps)
	reg.MustRegister(CacheHits)
	reg.MustRegister(CacheMisses)
	reg.MustRegister(StorageRetries)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}

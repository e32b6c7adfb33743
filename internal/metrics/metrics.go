// Package metrics exposes Prometheus instrumentation for the engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ModelCalls counts completion requests by provider and operation.
	ModelCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clauselens_model_calls_total",
		Help: "Completion requests issued to the model provider.",
	}, []string{"provider", "operation"})

	// ModelCallErrors counts failed completion requests.
	ModelCallErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clauselens_model_call_errors_total",
		Help: "Completion requests that failed with a provider error.",
	}, []string{"provider", "operation"})

	// EmbeddingCalls counts embedding requests.
	EmbeddingCalls = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clauselens_embedding_calls_total",
		Help: "Embedding requests issued to the embedding provider.",
	})

	// IndexCacheHits counts semantic index cache hits.
	IndexCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clauselens_index_cache_hits_total",
		Help: "Semantic index cache lookups served from cache.",
	})

	// IndexCacheMisses counts semantic index cache misses.
	IndexCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clauselens_index_cache_misses_total",
		Help: "Semantic index cache lookups that required a build.",
	})

	// RetrievalFallbacks counts retrievals degraded by a provider failure.
	RetrievalFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clauselens_retrieval_fallbacks_total",
		Help: "Retrievals that fell back to positional context selection.",
	})

	// AnswerCacheHits counts follow-up answers served from the TTL cache.
	AnswerCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clauselens_answer_cache_hits_total",
		Help: "Follow-up answers served from the answer cache.",
	})

	// ModelCallDuration observes completion latency by provider.
	ModelCallDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "clauselens_model_call_duration_seconds",
		Help:    "Latency of completion requests.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})
)

// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ToolCalls counts tool invocations by tool name and outcome
	// (ok, not_found, validation_error, upstream_error, error).
	ToolCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopvoice_tool_calls_total",
		Help: "Tool call count by tool and outcome",
	}, []string{"tool", "outcome"})

	// ToolDuration tracks wall time per tool handler.
	ToolDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shopvoice_tool_duration_seconds",
		Help:    "Tool handler duration",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"tool"})

	// UpstreamDuration tracks outbound shop API call time per resource and
	// outcome (ok, not_found, timeout, error).
	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "shopvoice_upstream_duration_seconds",
		Help:    "Shop API request duration by resource and outcome",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"resource", "outcome"})

	// SearchVariations counts upstream search executions per source, so
	// cache effectiveness and fan-out width are visible.
	SearchVariations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopvoice_search_variations_total",
		Help: "Search variation executions by source (cache, upstream, failed)",
	}, []string{"source"})

	// CacheHits and CacheMisses are labeled by cache name
	// (search, product, carrier).
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopvoice_cache_hits_total",
		Help: "Cache hits by cache",
	}, []string{"cache"})
	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shopvoice_cache_misses_total",
		Help: "Cache misses by cache",
	}, []string{"cache"})

	// RateLimited counts rejected requests.
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopvoice_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	})

	// SignatureFailures counts webhook requests with a missing or invalid
	// signature. A spike is an abuse signal.
	SignatureFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shopvoice_signature_failures_total",
		Help: "Webhook requests failing HMAC verification",
	})
)

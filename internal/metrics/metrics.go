// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - API endpoint latency and throughput
// - Recommendation serving (strategy mix, signal failures, degraded responses)
// - Cache efficiency per purpose
// - Semantic search latency
// - Artifact reloads
// - Explanation service circuit breaker

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Recommendation Metrics
	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_served_total",
			Help: "Total number of recommendation responses served",
		},
		[]string{"strategy", "degraded"},
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "Duration of recommendation assembly in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	SignalFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_signal_failures_total",
			Help: "Total number of scoring signal failures",
		},
		[]string{"signal"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "recommendations", "profiles", "embeddings", "generated_text", "sessions"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of cache evictions (capacity or TTL expiry)",
		},
		[]string{"cache_type"},
	)

	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache_type"},
	)

	// Search Metrics
	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "search_duration_seconds",
			Help:    "Duration of semantic search queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	SearchQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_queries_total",
			Help: "Total number of semantic search queries",
		},
		[]string{"result"}, // "success", "error"
	)

	// Cold-Start Interview Metrics
	ColdStartSessions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "coldstart_sessions_started_total",
			Help: "Total number of cold-start interview sessions started",
		},
	)

	ColdStartRefines = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "coldstart_refines_total",
			Help: "Total number of cold-start refinement requests",
		},
		[]string{"result"}, // "success", "not_found", "error"
	)

	// Artifact Reload Metrics
	ArtifactReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artifact_reloads_total",
			Help: "Total number of artifact reload attempts",
		},
		[]string{"result"}, // "success", "failure"
	)

	ArtifactLastLoadSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "artifact_last_load_success_timestamp",
			Help: "Unix timestamp of the last successful artifact load",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordRecommendation records a served recommendation response
func RecordRecommendation(strategy string, degraded bool, duration time.Duration) {
	degradedStr := "false"
	if degraded {
		degradedStr = "true"
	}
	RecommendationsServed.WithLabelValues(strategy, degradedStr).Inc()
	RecommendationDuration.Observe(duration.Seconds())
}

// RecordSignalFailure records a scoring signal failure
func RecordSignalFailure(signal string) {
	SignalFailures.WithLabelValues(signal).Inc()
}

// RecordCacheAccess records a cache hit or miss for a cache purpose
func RecordCacheAccess(cacheType string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cacheType).Inc()
	} else {
		CacheMisses.WithLabelValues(cacheType).Inc()
	}
}

// UpdateCacheGauges updates entry count gauges for a cache purpose
func UpdateCacheGauges(cacheType string, entries int) {
	CacheEntries.WithLabelValues(cacheType).Set(float64(entries))
}

// RecordSearch records a semantic search query
func RecordSearch(duration time.Duration, err error) {
	SearchDuration.Observe(duration.Seconds())
	if err != nil {
		SearchQueries.WithLabelValues("error").Inc()
	} else {
		SearchQueries.WithLabelValues("success").Inc()
	}
}

// RecordArtifactReload records an artifact reload attempt
func RecordArtifactReload(err error) {
	if err != nil {
		ArtifactReloads.WithLabelValues("failure").Inc()
		return
	}
	ArtifactReloads.WithLabelValues("success").Inc()
	ArtifactLastLoadSuccess.Set(float64(time.Now().Unix()))
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

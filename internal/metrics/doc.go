// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

/*
Package metrics provides Prometheus metrics collection and export for observability.

All collectors are registered via promauto at package load time and exposed at the
/metrics endpoint in Prometheus text format.

# Available Metrics

API Metrics:
  - api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - api_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - api_active_requests: In-flight requests (gauge)
  - api_rate_limit_hits_total: Rate limit rejections (counter)
    Labels: endpoint

Recommendation Metrics:
  - recommendations_served_total: Responses served (counter)
    Labels: strategy (cold_start, warm_start, hybrid), degraded (true, false)
  - recommendation_duration_seconds: Assembly latency (histogram)
  - recommendation_signal_failures_total: Scoring signal failures (counter)
    Labels: signal (content, collaborative)

Cache Metrics:
  - cache_hits_total, cache_misses_total, cache_evictions_total (counters)
    Labels: cache_type (recommendations, profiles, embeddings, generated_text, sessions)
  - cache_entries: Current entry count (gauge)
    Labels: cache_type

Search Metrics:
  - search_duration_seconds: Query latency (histogram)
  - search_queries_total: Queries (counter)
    Labels: result (success, error)

Cold-Start Metrics:
  - coldstart_sessions_started_total: Interview sessions started (counter)
  - coldstart_refines_total: Refinement requests (counter)
    Labels: result (success, not_found, error)

Artifact Metrics:
  - artifact_reloads_total: Reload attempts (counter)
    Labels: result (success, failure)
  - artifact_last_load_success_timestamp: Unix time of last successful load (gauge)

Circuit Breaker Metrics:
  - circuit_breaker_state: Current state (gauge)
    Labels: name
    Values: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total: Requests through the breaker (counter)
    Labels: name, result (success, failure, rejected)

System Metrics:
  - app_info: Version and build information (gauge)
    Labels: version, go_version
  - app_uptime_seconds: Uptime (gauge)

# Usage Example

	import (
	    "github.com/merchantry/merchantry/internal/metrics"
	    "github.com/prometheus/client_golang/prometheus/promhttp"
	)

	func main() {
	    http.Handle("/metrics", promhttp.Handler())

	    metrics.RecordAPIRequest("GET", "/api/v1/recommendations", "200", 23*time.Millisecond)
	    metrics.RecordRecommendation("hybrid", false, 4*time.Millisecond)
	    metrics.RecordCacheAccess("recommendations", true)
	}

Example PromQL queries:

	# Request rate
	rate(api_requests_total[5m])

	# p95 request latency
	histogram_quantile(0.95, rate(api_request_duration_seconds_bucket[5m]))

	# Strategy mix
	sum by (strategy) (rate(recommendations_served_total[5m]))

	# Cache hit rate
	sum(rate(cache_hits_total[5m])) / (sum(rate(cache_hits_total[5m])) + sum(rate(cache_misses_total[5m])))

# Cardinality

Endpoint labels use chi route patterns rather than raw URL paths, so path
parameters such as user IDs do not create new time series. Cache types,
strategies, and breaker names are fixed constants.

# Thread Safety

All recording functions are safe for concurrent use. The Prometheus client
library handles synchronization internally.
*/
package metrics

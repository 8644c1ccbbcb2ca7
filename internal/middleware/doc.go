// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

/*
Package middleware provides HTTP middleware for the API router.

Key Components:

  - RequestID: UUID request tracking, propagated into the logging context
    and echoed in the X-Request-ID response header
  - PrometheusMetrics: request count, latency, and in-flight instrumentation,
    labeled by chi route pattern
  - Compression: gzip response compression for clients that accept it

All middleware uses the standard func(http.Handler) http.Handler shape and is
installed on the chi router via r.Use, outermost first:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.Compression)

CORS and rate limiting come from go-chi/cors and go-chi/httprate and are wired
in the api package alongside these.
*/
package middleware

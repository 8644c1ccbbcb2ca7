// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

/*
Package api provides HTTP routing and handlers using the chi router.

# Endpoints

	GET  /health                                       liveness probe
	GET  /metrics                                      Prometheus exposition
	GET  /api/v1/status                                engine state, counters, cache stats
	GET  /api/v1/recommendations/{userID}              personalized recommendations
	GET  /api/v1/users/{userID}/profile                purchase behavior summary
	GET  /api/v1/products/popular                      popularity ranking
	GET  /api/v1/products/{productID}/similar          embedding-space neighbors
	GET  /api/v1/search                                semantic catalog search
	POST /api/v1/coldstart/sessions                    start a preference interview
	POST /api/v1/coldstart/sessions/{sessionID}/refine refine by liked products

All endpoints share the APIResponse envelope. Query-parameter structs are
validated with go-playground/validator and translated into VALIDATION_ERROR
responses.

# Degradation

A degraded engine still serves: responses carry a degraded marker with
HTTP 200. Only an uninitialized engine (no catalog loaded yet) returns
503 for serving endpoints. /health and /api/v1/status always answer.

# Middleware

Global chain, outermost first: RequestID, RealIP, Recoverer,
PrometheusMetrics, Compression, CORS. The /api/v1 subtree adds
per-IP rate limiting via go-chi/httprate with a JSON 429 envelope.
*/
package api

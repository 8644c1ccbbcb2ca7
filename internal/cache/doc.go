// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

/*
Package cache provides a thread-safe in-memory cache with TTL and
bounded capacity, used for recommendation responses, user profiles,
query embeddings, and generated explanation text.

# Overview

The cache provides:
  - Thread-safe concurrent access (single mutex per operation)
  - Per-entry time-to-live set on write
  - Lazy expiration: deadlines are only observed by reads
  - Insertion-ordered (FIFO) eviction at capacity
  - Hit/miss/eviction/expiration counters for monitoring

Eviction is deliberately not recency-based. When the cache is full the
structurally oldest entry is dropped, even if it was read a moment ago.
Reads never reorder entries; overwriting a key resets both its deadline
and its position. This keeps every operation O(1) with a single lock
acquisition and makes eviction order fully deterministic.

# Usage

	c := cache.New[*recommend.Response](5000, time.Hour)

	key := cache.GenerateKey("recommendations", params)
	if resp, ok := c.Get(key); ok {
	    return resp, nil
	}
	// miss: compute, then store
	_ = c.Set(key, resp)

Each consumer receives its own cache instance via constructor injection;
there are no package-level cache singletons. The server wires four
instances with purposes and TTLs set in configuration.

# Key Generation

GenerateKey produces stable keys by hashing the canonical JSON encoding
of the request parameters, so equal parameter sets always map to the
same entry regardless of field ordering at the call site.
*/
package cache

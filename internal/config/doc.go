// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

/*
Package config provides centralized configuration management for Merchantry.

Configuration is loaded with Koanf v2 from three layered sources, later
layers overriding earlier ones:

 1. Built-in defaults (defaultConfig)
 2. Optional YAML config file (CONFIG_PATH or the default search paths)
 3. Environment variables

# Configuration Structure

The root Config groups settings by component:

  - ServerConfig: HTTP listen address, timeouts, CORS, rate limiting
  - logging.Config: log level, format, caller info
  - ArtifactsConfig: model artifact directory and refresh interval
  - CacheConfig: capacity and TTL per cache purpose
  - recommend.Config: blend weights and request limits
  - SearchConfig: embedding dimension and default result limit
  - ExplainConfig: external explanation service client
  - coldstart.Config: interview probe and suggestion counts

# Environment Variables

Common variables (see envTransformFunc for the full mapping):

	HTTP_HOST, HTTP_PORT           server address (default 0.0.0.0:8080)
	LOG_LEVEL, LOG_FORMAT          logging (default info/json)
	ARTIFACTS_DIR                  artifact directory (default /data/artifacts)
	ARTIFACTS_REFRESH_INTERVAL     hot reload check interval (default 5m)
	CACHE_RECOMMENDATIONS_TTL      per-purpose cache tuning
	RECOMMEND_MIN_PURCHASES        warm-start threshold (default 5)
	SEARCH_DIMENSION               embedding dimension (default 384)
	EXPLAIN_ENABLED, EXPLAIN_ENDPOINT  external explanation service
	CORS_ORIGINS                   comma-separated allowed origins

Unmapped environment variables are ignored so unrelated process
environment cannot leak into the configuration.

# Usage

	cfg, err := config.LoadWithKoanf()
	if err != nil {
	    log.Fatalf("failed to load config: %v", err)
	}
	fmt.Printf("listening on %s\n", cfg.Server.Addr())

# Thread Safety

The Config struct is immutable after LoadWithKoanf() returns, making it
safe for concurrent reads without synchronization.
*/
package config

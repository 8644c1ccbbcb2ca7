// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

package config

import (
	"fmt"
	"time"

	"github.com/merchantry/merchantry/internal/coldstart"
	"github.com/merchantry/merchantry/internal/explain"
	"github.com/merchantry/merchantry/internal/logging"
	"github.com/merchantry/merchantry/internal/recommend"
)

// Config is the root configuration for Merchantry.
type Config struct {
	Server    ServerConfig     `json:"server" koanf:"server"`
	Logging   logging.Config   `json:"logging" koanf:"logging"`
	Artifacts ArtifactsConfig  `json:"artifacts" koanf:"artifacts"`
	Cache     CacheConfig      `json:"cache" koanf:"cache"`
	Recommend recommend.Config `json:"recommend" koanf:"recommend"`
	Search    SearchConfig     `json:"search" koanf:"search"`
	Explain   ExplainConfig    `json:"explain" koanf:"explain"`
	ColdStart coldstart.Config `json:"coldstart" koanf:"coldstart"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the listen address. Default: 0.0.0.0
	Host string `json:"host" koanf:"host"`

	// Port is the listen port. Default: 8080
	Port int `json:"port" koanf:"port"`

	// ReadTimeout bounds request reads. Default: 15s
	ReadTimeout time.Duration `json:"read_timeout" koanf:"read_timeout"`

	// WriteTimeout bounds response writes. Default: 30s
	WriteTimeout time.Duration `json:"write_timeout" koanf:"write_timeout"`

	// ShutdownTimeout bounds graceful drain on shutdown. Default: 10s
	ShutdownTimeout time.Duration `json:"shutdown_timeout" koanf:"shutdown_timeout"`

	// CORSOrigins lists allowed CORS origins. Default: ["*"]
	CORSOrigins []string `json:"cors_origins" koanf:"cors_origins"`

	// RateLimitReqs is the per-client request budget per window.
	// Default: 100
	RateLimitReqs int `json:"rate_limit_reqs" koanf:"rate_limit_reqs"`

	// RateLimitWindow is the rate limit window. Default: 1m
	RateLimitWindow time.Duration `json:"rate_limit_window" koanf:"rate_limit_window"`
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ArtifactsConfig holds model artifact settings.
type ArtifactsConfig struct {
	// Dir is the directory holding catalog and model artifact files.
	// Default: /data/artifacts
	Dir string `json:"dir" koanf:"dir"`

	// RefreshInterval is how often artifact files are checked for
	// changes. Zero disables hot reload. Default: 5m
	RefreshInterval time.Duration `json:"refresh_interval" koanf:"refresh_interval"`
}

// CachePurpose configures one cache instance.
type CachePurpose struct {
	// Capacity is the maximum number of entries.
	Capacity int `json:"capacity" koanf:"capacity"`

	// TTL is the entry time-to-live.
	TTL time.Duration `json:"ttl" koanf:"ttl"`
}

// CacheConfig configures the cache instances.
type CacheConfig struct {
	// Recommendations caches assembled recommendation responses.
	// Default: 5000 entries, 1h TTL
	Recommendations CachePurpose `json:"recommendations" koanf:"recommendations"`

	// Profiles caches user profile summaries.
	// Default: 5000 entries, 30m TTL
	Profiles CachePurpose `json:"profiles" koanf:"profiles"`

	// Embeddings caches query embeddings for semantic search.
	// Default: 10000 entries, 2h TTL
	Embeddings CachePurpose `json:"embeddings" koanf:"embeddings"`

	// GeneratedText caches generated explanation text.
	// Default: 2000 entries, 1h TTL
	GeneratedText CachePurpose `json:"generated_text" koanf:"generated_text"`

	// Sessions caches cold-start interview sessions.
	// Default: 5000 entries, 30m TTL
	Sessions CachePurpose `json:"sessions" koanf:"sessions"`
}

// SearchConfig holds semantic search settings.
type SearchConfig struct {
	// Dimension is the embedding vector dimension. Must match the
	// product embeddings artifact. Default: 384
	Dimension int `json:"dimension" koanf:"dimension"`

	// DefaultLimit is the result count when the query gives none.
	// Default: 10
	DefaultLimit int `json:"default_limit" koanf:"default_limit"`
}

// ExplainConfig holds explanation service settings.
type ExplainConfig struct {
	// Enabled turns on the external explanation service. When false,
	// explanations use local templates. Default: false
	Enabled bool `json:"enabled" koanf:"enabled"`

	// HTTP configures the external service client.
	HTTP explain.HTTPConfig `json:"http" koanf:"http"`
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Artifacts.Dir == "" {
		return fmt.Errorf("artifacts.dir is required")
	}
	if c.Artifacts.RefreshInterval < 0 {
		return fmt.Errorf("artifacts.refresh_interval must not be negative")
	}

	purposes := map[string]CachePurpose{
		"cache.recommendations": c.Cache.Recommendations,
		"cache.profiles":        c.Cache.Profiles,
		"cache.embeddings":      c.Cache.Embeddings,
		"cache.generated_text":  c.Cache.GeneratedText,
		"cache.sessions":        c.Cache.Sessions,
	}
	for name, p := range purposes {
		if p.Capacity <= 0 {
			return fmt.Errorf("%s.capacity must be positive, got %d", name, p.Capacity)
		}
		if p.TTL <= 0 {
			return fmt.Errorf("%s.ttl must be positive, got %v", name, p.TTL)
		}
	}

	if err := c.Recommend.Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}

	if c.Search.Dimension <= 0 {
		return fmt.Errorf("search.dimension must be positive, got %d", c.Search.Dimension)
	}
	if c.Search.DefaultLimit <= 0 {
		return fmt.Errorf("search.default_limit must be positive, got %d", c.Search.DefaultLimit)
	}

	if c.Explain.Enabled && c.Explain.HTTP.Endpoint == "" {
		return fmt.Errorf("explain.http.endpoint is required when explain is enabled")
	}

	if c.ColdStart.MaxProbes <= 0 {
		return fmt.Errorf("coldstart.max_probes must be positive, got %d", c.ColdStart.MaxProbes)
	}
	if c.ColdStart.Suggestions <= 0 {
		return fmt.Errorf("coldstart.suggestions must be positive, got %d", c.ColdStart.Suggestions)
	}

	return nil
}

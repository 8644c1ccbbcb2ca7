// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/merchantry/merchantry/internal/coldstart"
	"github.com/merchantry/merchantry/internal/explain"
	"github.com/merchantry/merchantry/internal/logging"
	"github.com/merchantry/merchantry/internal/recommend"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/merchantry/config.yaml",
	"/etc/merchantry/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config
// file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Logging: logging.Config{
			Level:     "info",
			Format:    "json",
			Caller:    false,
			Timestamp: true,
		},
		Artifacts: ArtifactsConfig{
			Dir:             "/data/artifacts",
			RefreshInterval: 5 * time.Minute,
		},
		Cache: CacheConfig{
			Recommendations: CachePurpose{Capacity: 5000, TTL: time.Hour},
			Profiles:        CachePurpose{Capacity: 5000, TTL: 30 * time.Minute},
			Embeddings:      CachePurpose{Capacity: 10000, TTL: 2 * time.Hour},
			GeneratedText:   CachePurpose{Capacity: 2000, TTL: time.Hour},
			Sessions:        CachePurpose{Capacity: 5000, TTL: 30 * time.Minute},
		},
		Recommend: *recommend.DefaultConfig(),
		Search: SearchConfig{
			Dimension:    384,
			DefaultLimit: 10,
		},
		Explain: ExplainConfig{
			Enabled: false,
			HTTP:    explain.DefaultHTTPConfig(),
		},
		ColdStart: coldstart.DefaultConfig(),
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// Precedence is ENV > File > Defaults.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// Transform environment variable names to koanf paths:
	// HTTP_PORT -> server.port
	// ARTIFACTS_DIR -> artifacts.dir
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as
// comma-separated slices when they arrive as env var strings.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for
// known slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML file)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envTransformFunc transforms environment variable names to koanf config
// paths. Unmapped variables are skipped so random environment variables
// cannot pollute the configuration.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - ARTIFACTS_DIR -> artifacts.dir
//   - RECOMMEND_CONTENT_WEIGHT -> recommend.content_weight
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Server mappings
		"http_host":             "server.host",
		"http_port":             "server.port",
		"http_read_timeout":     "server.read_timeout",
		"http_write_timeout":    "server.write_timeout",
		"http_shutdown_timeout": "server.shutdown_timeout",
		"cors_origins":          "server.cors_origins",
		"rate_limit_requests":   "server.rate_limit_reqs",
		"rate_limit_window":     "server.rate_limit_window",

		// Logging mappings
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",

		// Artifact mappings
		"artifacts_dir":              "artifacts.dir",
		"artifacts_refresh_interval": "artifacts.refresh_interval",

		// Cache mappings
		"cache_recommendations_capacity": "cache.recommendations.capacity",
		"cache_recommendations_ttl":      "cache.recommendations.ttl",
		"cache_profiles_capacity":        "cache.profiles.capacity",
		"cache_profiles_ttl":             "cache.profiles.ttl",
		"cache_embeddings_capacity":      "cache.embeddings.capacity",
		"cache_embeddings_ttl":           "cache.embeddings.ttl",
		"cache_generated_text_capacity":  "cache.generated_text.capacity",
		"cache_generated_text_ttl":       "cache.generated_text.ttl",
		"cache_sessions_capacity":        "cache.sessions.capacity",
		"cache_sessions_ttl":             "cache.sessions.ttl",

		// Recommendation engine mappings
		"recommend_content_weight":       "recommend.content_weight",
		"recommend_collaborative_weight": "recommend.collaborative_weight",
		"recommend_min_purchases":        "recommend.min_purchases",
		"recommend_default_top_k":        "recommend.default_top_k",
		"recommend_max_top_k":            "recommend.max_top_k",
		"recommend_candidate_multiplier": "recommend.candidate_multiplier",

		// Search mappings
		"search_dimension":     "search.dimension",
		"search_default_limit": "search.default_limit",

		// Explanation service mappings
		"explain_enabled":  "explain.enabled",
		"explain_endpoint": "explain.http.endpoint",
		"explain_timeout":  "explain.http.timeout",
		"explain_rps":      "explain.http.requests_per_second",
		"explain_burst":    "explain.http.burst",

		// Cold-start interview mappings
		"coldstart_max_probes":  "coldstart.max_probes",
		"coldstart_suggestions": "coldstart.suggestions",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Skip unmapped keys
	return ""
}

// WatchConfigFile sets up a file watcher for hot-reload capability.
// The caller is responsible for mutex protection when accessing
// configuration during reloads.
func WatchConfigFile(path string, callback func()) error {
	provider := file.Provider(path)

	return provider.Watch(func(event interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}

// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	// Server defaults
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want 10s", cfg.Server.ShutdownTimeout)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "*" {
		t.Errorf("Server.CORSOrigins = %v, want [*]", cfg.Server.CORSOrigins)
	}

	// Logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want json", cfg.Logging.Format)
	}

	// Artifact defaults
	if cfg.Artifacts.Dir != "/data/artifacts" {
		t.Errorf("Artifacts.Dir = %q, want /data/artifacts", cfg.Artifacts.Dir)
	}
	if cfg.Artifacts.RefreshInterval != 5*time.Minute {
		t.Errorf("Artifacts.RefreshInterval = %v, want 5m", cfg.Artifacts.RefreshInterval)
	}

	// Cache defaults
	if cfg.Cache.Recommendations.Capacity != 5000 || cfg.Cache.Recommendations.TTL != time.Hour {
		t.Errorf("Cache.Recommendations = %+v, want 5000/1h", cfg.Cache.Recommendations)
	}
	if cfg.Cache.Profiles.TTL != 30*time.Minute {
		t.Errorf("Cache.Profiles.TTL = %v, want 30m", cfg.Cache.Profiles.TTL)
	}
	if cfg.Cache.Embeddings.Capacity != 10000 || cfg.Cache.Embeddings.TTL != 2*time.Hour {
		t.Errorf("Cache.Embeddings = %+v, want 10000/2h", cfg.Cache.Embeddings)
	}
	if cfg.Cache.GeneratedText.Capacity != 2000 {
		t.Errorf("Cache.GeneratedText.Capacity = %d, want 2000", cfg.Cache.GeneratedText.Capacity)
	}

	// Recommend defaults
	if cfg.Recommend.ContentWeight != 0.4 || cfg.Recommend.CollaborativeWeight != 0.6 {
		t.Errorf("Recommend weights = %v/%v, want 0.4/0.6",
			cfg.Recommend.ContentWeight, cfg.Recommend.CollaborativeWeight)
	}
	if cfg.Recommend.MinPurchases != 5 {
		t.Errorf("Recommend.MinPurchases = %d, want 5", cfg.Recommend.MinPurchases)
	}

	// Search defaults
	if cfg.Search.Dimension != 384 {
		t.Errorf("Search.Dimension = %d, want 384", cfg.Search.Dimension)
	}

	// Explain defaults (disabled)
	if cfg.Explain.Enabled {
		t.Error("Explain.Enabled should be false by default")
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadWithKoanfDefaultsOnly(t *testing.T) {
	// Point CONFIG_PATH at a nonexistent file so no config file is loaded.
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf failed: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
}

func TestLoadWithKoanfConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9191
  host: 127.0.0.1
artifacts:
  dir: /srv/models
recommend:
  min_purchases: 10
cache:
  recommendations:
    capacity: 1234
    ttl: 2h
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf failed: %v", err)
	}

	if cfg.Server.Port != 9191 {
		t.Errorf("Server.Port = %d, want 9191", cfg.Server.Port)
	}
	if cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server.Host = %q, want 127.0.0.1", cfg.Server.Host)
	}
	if cfg.Artifacts.Dir != "/srv/models" {
		t.Errorf("Artifacts.Dir = %q, want /srv/models", cfg.Artifacts.Dir)
	}
	if cfg.Recommend.MinPurchases != 10 {
		t.Errorf("Recommend.MinPurchases = %d, want 10", cfg.Recommend.MinPurchases)
	}
	if cfg.Cache.Recommendations.Capacity != 1234 {
		t.Errorf("Cache.Recommendations.Capacity = %d, want 1234", cfg.Cache.Recommendations.Capacity)
	}
	if cfg.Cache.Recommendations.TTL != 2*time.Hour {
		t.Errorf("Cache.Recommendations.TTL = %v, want 2h", cfg.Cache.Recommendations.TTL)
	}

	// Unset values keep their defaults.
	if cfg.Search.Dimension != 384 {
		t.Errorf("Search.Dimension = %d, want default 384", cfg.Search.Dimension)
	}
}

func TestLoadWithKoanfEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9191\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "7777")
	t.Setenv("ARTIFACTS_DIR", "/env/artifacts")
	t.Setenv("EXPLAIN_ENABLED", "true")
	t.Setenv("EXPLAIN_ENDPOINT", "http://explain.internal/v1")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf failed: %v", err)
	}

	if cfg.Server.Port != 7777 {
		t.Errorf("Server.Port = %d, want env override 7777", cfg.Server.Port)
	}
	if cfg.Artifacts.Dir != "/env/artifacts" {
		t.Errorf("Artifacts.Dir = %q, want /env/artifacts", cfg.Artifacts.Dir)
	}
	if !cfg.Explain.Enabled {
		t.Error("Explain.Enabled should be true from env")
	}
	if cfg.Explain.HTTP.Endpoint != "http://explain.internal/v1" {
		t.Errorf("Explain.HTTP.Endpoint = %q", cfg.Explain.HTTP.Endpoint)
	}
}

func TestLoadWithKoanfCORSOriginsFromEnv(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("CORS_ORIGINS", "https://shop.example.com, https://admin.example.com")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf failed: %v", err)
	}

	want := []string{"https://shop.example.com", "https://admin.example.com"}
	if len(cfg.Server.CORSOrigins) != len(want) {
		t.Fatalf("CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
	for i := range want {
		if cfg.Server.CORSOrigins[i] != want[i] {
			t.Errorf("CORSOrigins[%d] = %q, want %q", i, cfg.Server.CORSOrigins[i], want[i])
		}
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		env  string
		want string
	}{
		{"HTTP_PORT", "server.port"},
		{"LOG_LEVEL", "logging.level"},
		{"ARTIFACTS_DIR", "artifacts.dir"},
		{"CACHE_EMBEDDINGS_TTL", "cache.embeddings.ttl"},
		{"RECOMMEND_CONTENT_WEIGHT", "recommend.content_weight"},
		{"SEARCH_DIMENSION", "search.dimension"},
		{"EXPLAIN_ENDPOINT", "explain.http.endpoint"},
		{"COLDSTART_MAX_PROBES", "coldstart.max_probes"},
		{"PATH", ""},
		{"RANDOM_UNRELATED_VAR", ""},
	}

	for _, tc := range tests {
		if got := envTransformFunc(tc.env); got != tc.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tc.env, got, tc.want)
		}
	}
}

func TestLoadWithKoanfInvalidConfigRejected(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("HTTP_PORT", "0")

	if _, err := LoadWithKoanf(); err == nil {
		t.Fatal("expected validation error for port 0")
	}
}

// Merchantry - Hybrid Product Recommendation Engine for E-Commerce
// Copyright 2026 Merchantry Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/merchantry/merchantry

// Package main is the entry point for the Merchantry server.
//
// Merchantry serves hybrid product recommendations for e-commerce
// storefronts: collaborative and content signals blended per user tier,
// semantic catalog search, cold-start preference interviews, and
// optional LLM-generated explanation text behind a circuit breaker.
//
// # Startup Order
//
//  1. Configuration: layered koanf sources (defaults, YAML file, env)
//  2. Logging: zerolog with configured level and format
//  3. Serving components: product store, caches, signals, engine,
//     search index, cold-start interviews
//  4. Artifacts: initial load from the artifact directory; missing
//     model artifacts degrade, a missing catalog is fatal
//  5. Supervision: suture tree running the artifact refresher, the
//     metrics updater, and the HTTP server
//
// # Shutdown
//
// SIGINT/SIGTERM cancel the supervision tree; the HTTP server drains
// in-flight requests within the configured shutdown timeout.
package main

import (
	"context"
	"errors"
	"net/http"
	ossignal "os/signal"
	"runtime"
	"syscall"

	"github.com/merchantry/merchantry/internal/api"
	"github.com/merchantry/merchantry/internal/artifact"
	"github.com/merchantry/merchantry/internal/cache"
	"github.com/merchantry/merchantry/internal/coldstart"
	"github.com/merchantry/merchantry/internal/config"
	"github.com/merchantry/merchantry/internal/explain"
	"github.com/merchantry/merchantry/internal/logging"
	"github.com/merchantry/merchantry/internal/metrics"
	"github.com/merchantry/merchantry/internal/recommend"
	"github.com/merchantry/merchantry/internal/recommend/signal"
	"github.com/merchantry/merchantry/internal/search"
	"github.com/merchantry/merchantry/internal/store"
	"github.com/merchantry/merchantry/internal/supervisor"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(cfg.Logging)
	logger := logging.Logger()

	logging.Info().
		Str("version", version).
		Str("addr", cfg.Server.Addr()).
		Str("artifacts_dir", cfg.Artifacts.Dir).
		Msg("Starting Merchantry")

	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	// Serving components. The store starts empty; the artifact load
	// below populates it.
	st := store.New(nil)

	content := signal.NewContent(st, st)
	collaborative := signal.NewCollaborative(st, st)

	texts := cache.New[string](cfg.Cache.GeneratedText.Capacity, cfg.Cache.GeneratedText.TTL)

	var explainer recommend.Explainer
	var breakerState func() string
	if cfg.Explain.Enabled {
		httpExplainer, err := explain.NewHTTPExplainer(cfg.Explain.HTTP, texts, logger)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to create explanation client")
		}
		explainer = httpExplainer
		breakerState = httpExplainer.BreakerState
		logging.Info().Str("endpoint", cfg.Explain.HTTP.Endpoint).Msg("External explanation service enabled")
	} else {
		explainer = explain.NewStaticExplainer()
	}

	engine, err := recommend.NewEngine(&cfg.Recommend, recommend.EngineOptions{
		Catalog:       st,
		History:       st,
		Collaborative: collaborative,
		Content:       content,
		Explainer:     explainer,
		Responses:     cache.New[*recommend.Response](cfg.Cache.Recommendations.Capacity, cfg.Cache.Recommendations.TTL),
		Profiles:      cache.New[*recommend.Profile](cfg.Cache.Profiles.Capacity, cfg.Cache.Profiles.TTL),
	}, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create recommendation engine")
	}

	index, err := search.NewIndex(cfg.Search.Dimension)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create search index")
	}

	searchSvc, err := search.NewService(
		index,
		search.NewHashEmbedder(cfg.Search.Dimension),
		st,
		cache.New[[]float32](cfg.Cache.Embeddings.Capacity, cfg.Cache.Embeddings.TTL),
		cfg.Search.DefaultLimit,
		logger,
	)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create search service")
	}

	coldSvc, err := coldstart.NewService(
		cfg.ColdStart,
		st,
		content,
		cache.New[*coldstart.Session](cfg.Cache.Sessions.Capacity, cfg.Cache.Sessions.TTL),
		logger,
	)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create cold-start service")
	}

	// Initial artifact load. Missing model artifacts leave the engine
	// degraded; only a missing or corrupt catalog is fatal.
	bootstrap := &artifact.Bootstrap{
		Loader:        artifact.NewLoader(cfg.Artifacts.Dir),
		Store:         st,
		Collaborative: collaborative,
		Content:       content,
		Index:         index,
		Engine:        engine,
		Logger:        logger,
	}
	if err := bootstrap.Load(); err != nil {
		logging.Fatal().Err(err).Msg("Failed to load artifacts")
	}
	metrics.RecordArtifactReload(nil)

	handler := api.NewHandler(api.HandlerOptions{
		Engine:       engine,
		Search:       searchSvc,
		ColdStart:    coldSvc,
		Catalog:      st,
		Index:        index,
		BreakerState: breakerState,
		Version:      version,
	})

	router := api.NewRouter(handler, api.RouterConfig{
		CORSOrigins:       cfg.Server.CORSOrigins,
		RateLimitRequests: cfg.Server.RateLimitReqs,
		RateLimitWindow:   cfg.Server.RateLimitWindow,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	tree := supervisor.NewTree(logger, supervisor.DefaultTreeConfig())
	tree.AddDataService(artifact.NewRefresher(bootstrap, cfg.Artifacts.RefreshInterval, logger))
	tree.AddDataService(newMetricsService(engine, logger))
	tree.AddAPIService(supervisor.NewHTTPService(server, cfg.Server.ShutdownTimeout, logger))

	ctx, stop := ossignal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", cfg.Server.Addr()).Msg("Merchantry ready")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Fatal().Err(err).Msg("Supervision tree failed")
	}

	logging.Info().Msg("Merchantry stopped")
}

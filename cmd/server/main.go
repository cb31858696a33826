// Chronographus - Social Graph Timeline Generation and Ranking
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/chronographus

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/tomtom215/chronographus/docs" // Import generated swagger docs
	"github.com/tomtom215/chronographus/internal/api"
	"github.com/tomtom215/chronographus/internal/auth"
	"github.com/tomtom215/chronographus/internal/authz"
	"github.com/tomtom215/chronographus/internal/cache"
	"github.com/tomtom215/chronographus/internal/config"
	"github.com/tomtom215/chronographus/internal/engagement"
	"github.com/tomtom215/chronographus/internal/eventstream"
	"github.com/tomtom215/chronographus/internal/fanout"
	"github.com/tomtom215/chronographus/internal/filter"
	"github.com/tomtom215/chronographus/internal/logging"
	"github.com/tomtom215/chronographus/internal/ranking"
	"github.com/tomtom215/chronographus/internal/sources"
	"github.com/tomtom215/chronographus/internal/store"
	"github.com/tomtom215/chronographus/internal/streaming"
	"github.com/tomtom215/chronographus/internal/supervisor"
	"github.com/tomtom215/chronographus/internal/timeline"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting Chronographus with supervisor tree")
	logging.Info().
		Str("auth_mode", cfg.Auth.Mode).
		Str("algorithm", cfg.Timeline.Algorithm).
		Bool("durable_cache", cfg.Cache.DurableEnabled).
		Bool("event_bridge", cfg.NATS.Enabled).
		Msg("Configuration loaded")

	if cfg.Auth.Mode == "header" && cfg.Auth.SharedTokenHash == "" {
		logging.Warn().Msg("============================================================")
		logging.Warn().Msg("  SECURITY WARNING: header auth without a shared token")
		logging.Warn().Msg("  ")
		logging.Warn().Msg("  Callers are trusted on their x-user-id header alone.")
		logging.Warn().Msg("  Set SHARED_TOKEN_HASH or switch to jwt/oidc before")
		logging.Warn().Msg("  exposing this service outside a trusted network.")
		logging.Warn().Msg("============================================================")
	}
	if cfg.API.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
		logging.Warn().Msg("This should only be used for development and CI!")
	}

	// The in-memory note and follow-graph store. Notes arrive through
	// the event bridge; without it the store serves whatever the bridge
	// replayed before the tag was dropped, i.e. nothing on a fresh run.
	noteStore := store.NewMemoryStore()

	// Engagement analytics log (DuckDB). Losing it degrades engagement
	// recording to ranking state only, so failure is not fatal.
	engStore, err := engagement.New(cfg.Engagement)
	if err != nil {
		logging.Warn().Err(err).Msg("Failed to open engagement store, continuing without analytics")
		engStore = nil
	} else {
		defer func() {
			if err := engStore.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing engagement store")
			}
		}()
		logging.Info().Str("path", cfg.Engagement.Path).Msg("Engagement store initialized")
	}

	tieredCfg := cache.TieredConfig{
		TimelineCapacity: cfg.Cache.TimelineCapacity,
		ProfileCapacity:  cfg.Cache.ProfileCapacity,
		LastReadCapacity: cfg.Cache.LastReadCapacity,
		TimelineTTL:      cfg.Timeline.CacheTTL,
		ProfileTTL:       cfg.Cache.ProfileTTL,
		LastReadTTL:      cfg.Cache.LastReadTTL,
	}
	if cfg.Cache.DurableEnabled {
		tieredCfg.Durable = &cache.DurableConfig{
			Path:       cfg.Cache.DurablePath,
			SyncWrites: cfg.Cache.DurableSyncWrites,
		}
	}
	tiered, err := cache.NewTieredCache(tieredCfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize cache")
	}
	defer func() {
		if err := tiered.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing cache")
		}
	}()
	if cfg.Cache.DurableEnabled {
		logging.Info().Str("path", cfg.Cache.DurablePath).Msg("Durable cache tier enabled")
	}

	// Candidate sources. The memory store backs all four: it is the
	// note reader, the follow graph and the list directory.
	trendingWindow := time.Duration(cfg.Sources.TrendingWindowHours) * time.Hour
	trending := sources.NewTrendingSource(noteStore, trendingWindow, cfg.Sources.TrendingRefreshInterval)
	candidateSources := []sources.Source{
		sources.NewFollowingSource(noteStore, noteStore, cfg.Sources.FollowSetTTL),
		sources.NewRecommendedSource(noteStore, noteStore, cfg.Sources.RecommendedLookback),
		trending,
		sources.NewListsSource(noteStore, noteStore),
	}

	// Streaming hub for live timeline updates.
	var hub *streaming.Hub
	if cfg.Streaming.Enabled {
		hub = streaming.NewHub(cfg.Streaming)
	} else {
		logging.Info().Msg("Streaming disabled (STREAMING_ENABLED=false)")
	}

	serviceDeps := timeline.Deps{
		Config:  cfg,
		Cache:   tiered,
		Sources: candidateSources,
		Filter:  filter.NewContentFilter(),
		Ranker:  ranking.NewEngine(),
		Notes:   noteStore,
		Graph:   noteStore,
	}
	// Interface fields stay nil unless the concrete value exists;
	// assigning a nil pointer would defeat the handlers' nil checks.
	if engStore != nil {
		serviceDeps.Events = engStore
	}
	if hub != nil {
		serviceDeps.Notifier = hub
	}
	if cfg.Overdrive.Enabled {
		serviceDeps.Reranker = timeline.NewHTTPReranker(cfg.Overdrive)
		logging.Info().Str("url", cfg.Overdrive.URL).Msg("Overdrive re-ranker enabled")
	}

	service, err := timeline.NewService(serviceDeps)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build timeline service")
	}

	var notifier fanout.UpdatePublisher
	if hub != nil {
		notifier = hub
	}
	worker, err := fanout.NewWorker(cfg.Fanout, noteStore, tiered, notifier)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build fan-out worker")
	}

	// Event bridge (optional, requires build with -tags nats). Note
	// writes then arrive over JetStream and replay into the store and
	// the fan-out queue.
	var bridge *eventstream.Bridge
	if cfg.NATS.Enabled {
		bridge, err = eventstream.NewBridge(cfg.NATS, noteStore, worker)
		if errors.Is(err, eventstream.ErrBridgeDisabled) {
			logging.Fatal().Err(err).Msg("NATS is enabled in config but this binary was built without it")
		}
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize event bridge")
		}
		defer func() {
			if err := bridge.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing event bridge")
			}
		}()
		logging.Info().
			Str("stream", cfg.NATS.StreamName).
			Str("subjects", cfg.NATS.SubjectPrefix+".>").
			Bool("embedded", cfg.NATS.EmbeddedServer).
			Msg("Event bridge initialized")
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	authn, err := auth.New(ctx, cfg.Auth)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authenticator")
	}
	logging.Info().Str("mode", authn.Name()).Msg("Authentication configured")

	guard, err := authz.NewGuard(cfg.Auth)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authorization guard")
	}

	limiter := auth.NewRateLimiter(cfg.API)

	handlerDeps := api.HandlerDeps{
		Config:  cfg,
		Service: service,
		Authn:   authn,
		Guard:   guard,
		Limiter: limiter,
		Hub:     hub,
		Cache:   tiered,
		Fanout:  worker,
	}
	if engStore != nil {
		handlerDeps.Engagement = engStore
	}
	if bridge != nil {
		handlerDeps.Bridge = bridge
	}
	handlers, err := api.NewHandlers(handlerDeps)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build API handlers")
	}

	router := api.NewRouter(cfg, handlers)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Create structured logger for supervisor using our slog adapter
	// This bridges zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	// Data layer: background maintenance of stored state.
	if engStore != nil {
		tree.AddDataService(engStore)
	}
	tree.AddDataService(sources.NewRefreshService(trending, cfg.Sources.TrendingRefreshInterval))
	tree.AddDataService(cache.NewJanitor(tiered, cfg.Cache.CleanupInterval))

	// Delivery layer: everything that pushes timeline effects outward.
	if hub != nil {
		tree.AddDeliveryService(hub)
	}
	tree.AddDeliveryService(worker)
	if bridge != nil {
		tree.AddDeliveryService(bridge)
		logging.Info().Msg("Event bridge added to supervisor tree")
	}

	// API layer: request serving and admission upkeep.
	tree.AddAPIService(limiter)
	tree.AddAPIService(supervisor.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}

// Lost & Found - Campus Item Matching Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lostfound

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/lostfound/internal/api"
	"github.com/tomtom215/lostfound/internal/config"
	"github.com/tomtom215/lostfound/internal/database"
	"github.com/tomtom215/lostfound/internal/logging"
	"github.com/tomtom215/lostfound/internal/matching"
	"github.com/tomtom215/lostfound/internal/supervisor"
	"github.com/tomtom215/lostfound/internal/supervisor/services"
	"github.com/tomtom215/lostfound/internal/sweep"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Bool("notify_enabled", cfg.Notify.Enabled).
		Bool("events_enabled", cfg.Events.Enabled).
		Bool("sweep_enabled", cfg.Sweep.Enabled).
		Msg("Starting lost and found matching service")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Database.SeedOnStart {
		res, err := db.Seed(ctx, true)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to seed database")
		}
		logging.Info().
			Int("categories", res.Categories).
			Int("locations", res.Locations).
			Int("users", res.Users).
			Int("items", res.Items).
			Msg("Database seeded")
	}

	notifier, err := initNotifier(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize notifier")
	}

	engine := matching.NewEngine(db, db, notifier.matcher, matching.ConfigFrom(&cfg.Matching))

	bus, err := initEvents(cfg, engine)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize event bus")
	}

	scheduler := sweep.NewScheduler(engine, cfg.Sweep)

	opts := []api.HandlerOption{
		api.WithSweepRunner(scheduler),
		api.WithVersion(version),
	}
	if bus != nil {
		opts = append(opts, api.WithEventPublisher(bus))
	}
	if notifier.dispatcher != nil {
		opts = append(opts, api.WithNotifierStatus(notifier.dispatcher))
	}
	handler := api.NewHandler(db, engine, opts...)
	router := api.NewRouter(handler, api.NewChiMiddleware(api.NewChiMiddlewareConfig(&cfg.Security)))

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	// === SUPERVISOR TREE ===
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())

	if notifier.dispatcher != nil {
		tree.AddMessagingService(services.NewNotifierService(notifier.dispatcher))
		logging.Info().Msg("Notification dispatcher added to supervisor tree")
	}
	if bus != nil {
		tree.AddMessagingService(services.NewEventBusService(bus))
		logging.Info().Str("backend", cfg.Events.Backend).Msg("Event bus added to supervisor tree")
	}
	tree.AddJobService(services.NewSchedulerService("sweep-scheduler", scheduler))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.Timeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

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

	if err := supervisor.WaitForShutdown(ctx, errCh); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}
	logging.Info().Msg("Supervisor tree stopped")

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	// The supervisor closes the dispatcher; this covers a tree that
	// exited before the service ever ran.
	if notifier.dispatcher != nil {
		if err := notifier.dispatcher.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing notification dispatcher")
		}
	}
	if bus != nil {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}

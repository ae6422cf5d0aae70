// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/tomtom215/fundwise/internal/api"
	"github.com/tomtom215/fundwise/internal/config"
	"github.com/tomtom215/fundwise/internal/logging"
	"github.com/tomtom215/fundwise/internal/metrics"
	"github.com/tomtom215/fundwise/internal/supervisor"
	"github.com/tomtom215/fundwise/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// warmupTimeout bounds the initial model training.
const warmupTimeout = 5 * time.Minute

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("Fundwise stopped")
	}
}

//nolint:gocyclo // sequential startup steps
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logging.Init(cfg.LoggingSettings())
	logger := logging.Logger()

	logging.Info().Str("version", version).Str("go", runtime.Version()).Msg("Starting Fundwise")
	metrics.SetAppInfo(version, runtime.Version())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	// === CLASSIFIER ===
	// Training failure is fatal: the service never accepts requests
	// without a model.
	engine, err := initEngine(cfg, logger)
	if err != nil {
		return err
	}
	warmCtx, warmCancel := context.WithTimeout(ctx, warmupTimeout)
	err = engine.Warmup(warmCtx)
	warmCancel()
	if err != nil {
		return fmt.Errorf("train classifier: %w", err)
	}

	// === FUND CATALOG ===
	catalog, err := initCatalog(ctx, cfg, logger)
	if err != nil {
		return err
	}

	// === REPORTS AND DELIVERY ===
	renderer := initRenderer(cfg)
	dispatcher, err := initDelivery(cfg, logger)
	if err != nil {
		return err
	}
	if dispatcher != nil {
		defer func() {
			if err := dispatcher.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing delivery dispatcher")
			}
		}()
	}

	// === HTTP ===
	handler, err := api.NewHandler(api.HandlerDeps{
		Engine:     engine,
		Catalog:    catalog.store,
		Renderer:   renderer,
		Dispatcher: dispatcher,
		Version:    version,
	})
	if err != nil {
		return fmt.Errorf("create API handler: %w", err)
	}

	mwConfig := api.DefaultChiMiddlewareConfig()
	mwConfig.CORSAllowedOrigins = cfg.Server.CORSOrigins
	mwConfig.RateLimitRequests = cfg.Server.RateLimitRequests
	mwConfig.RateLimitWindow = cfg.Server.RateLimitWindow
	router := api.NewRouter(handler, api.NewChiMiddleware(mwConfig))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.Setup(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// === SUPERVISOR TREE ===
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout + 5*time.Second,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	for _, svc := range catalog.services {
		tree.AddDataService(svc)
	}
	tree.AddDataService(services.NewRetrainService(engine, cfg.Recommend.RetrainInterval, logger))
	if dispatcher != nil && dispatcher.AsyncEnabled() {
		tree.AddMessagingService(services.NewDeliveryWorkerService(dispatcher))
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logging.WithComponent("http")))

	logging.Info().
		Str("addr", server.Addr).
		Str("algorithm", cfg.Recommend.Algorithm).
		Str("catalog_source", catalog.store.Source().Name()).
		Bool("report", renderer != nil).
		Bool("delivery", dispatcher != nil).
		Msg("Starting supervisor tree")

	errCh := tree.ServeBackground(ctx)

	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
		serveErr = <-errCh
	case serveErr = <-errCh:
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		logging.Warn().Int("count", len(report)).Msg("Some services did not stop in time")
	}

	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		return fmt.Errorf("supervisor tree: %w", serveErr)
	}
	logging.Info().Msg("Fundwise stopped gracefully")
	return nil
}

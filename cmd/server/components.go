// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/fundwise/internal/config"
	"github.com/tomtom215/fundwise/internal/delivery"
	"github.com/tomtom215/fundwise/internal/funds"
	"github.com/tomtom215/fundwise/internal/recommend"
	"github.com/tomtom215/fundwise/internal/recommend/algorithms"
	"github.com/tomtom215/fundwise/internal/recommend/corpus"
	"github.com/tomtom215/fundwise/internal/recommend/storage"
	"github.com/tomtom215/fundwise/internal/report"
	"github.com/tomtom215/fundwise/internal/supervisor/services"
)

// initEngine builds the classification engine. It does not train.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initEngine(cfg *config.Config, logger zerolog.Logger) (*recommend.Engine, error) {
	rc := cfg.RecommendSettings()

	gen, err := corpus.NewGenerator(rc.Corpus)
	if err != nil {
		return nil, fmt.Errorf("create corpus generator: %w", err)
	}
	factory, err := algorithms.Factory(rc)
	if err != nil {
		return nil, fmt.Errorf("create classifier factory: %w", err)
	}

	var store *storage.Store
	if rc.ModelDir != "" {
		store, err = storage.NewStore(rc.ModelDir)
		if err != nil {
			return nil, fmt.Errorf("open model snapshot store: %w", err)
		}
	}

	engine, err := recommend.NewEngine(rc, factory, gen, store, logger)
	if err != nil {
		return nil, fmt.Errorf("create recommendation engine: %w", err)
	}

	logger.Info().
		Str("algorithm", rc.Algorithm).
		Int("trees", rc.Forest.Trees).
		Int("corpus_size", rc.Corpus.Size).
		Str("corpus", gen.Fingerprint()).
		Bool("snapshots", store != nil).
		Msg("Recommendation engine initialized")
	return engine, nil
}

// catalogComponents holds the fund store and the loops that keep it fresh.
type catalogComponents struct {
	store    *funds.Store
	services []suture.Service
}

// initCatalog builds the fund store and loads it once.
//
// A local catalog that fails to load is fatal. A remote catalog may be
// unreachable at startup: the process starts degraded and the refresher
// keeps trying.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initCatalog(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*catalogComponents, error) {
	fc := cfg.FundsSettings()

	source, err := funds.NewSource(fc, &http.Client{})
	if err != nil {
		return nil, fmt.Errorf("create fund catalog source: %w", err)
	}
	store := funds.NewStore(source, logger)

	if err := store.Reload(ctx); err != nil {
		if source.Name() != funds.SourceRemote {
			return nil, err
		}
		logger.Warn().Err(err).Msg("Remote fund catalog unavailable, starting degraded")
	}

	c := &catalogComponents{store: store}
	if fs, ok := source.(funds.FileSource); ok && fc.Watch {
		c.services = append(c.services,
			services.NewCatalogWatchService(funds.NewWatcher(store, fs.Path(), cfg.Funds.WatchDebounce)))
	}
	if fc.RefreshInterval > 0 || source.Name() == funds.SourceRemote {
		c.services = append(c.services,
			services.NewCatalogRefreshService(funds.NewRefresher(store, fc.RefreshInterval)))
	}
	return c, nil
}

// initRenderer returns nil when reports are disabled.
func initRenderer(cfg *config.Config) *report.Renderer {
	if !cfg.Report.Enabled {
		return nil
	}
	return report.NewRenderer(cfg.ReportSettings())
}

// initDelivery returns nil when delivery is disabled. The SMTP settings
// were already validated by config.Load.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initDelivery(cfg *config.Config, logger zerolog.Logger) (*delivery.Dispatcher, error) {
	if !cfg.Delivery.Enabled {
		logger.Info().Msg("Report delivery disabled (DELIVERY_ENABLED=false)")
		return nil, nil
	}

	smtpCfg := cfg.SMTPSettings()
	channel := delivery.NewEmailChannel(smtpCfg, logger)

	var status *delivery.StatusStore
	if cfg.Delivery.Async.Enabled {
		var err error
		status, err = delivery.OpenStatusStore(cfg.StatusSettings())
		if err != nil {
			return nil, err
		}
	}

	dispatcher, err := delivery.NewDispatcher(channel, status, cfg.DispatcherSettings(), logger)
	if err != nil {
		if status != nil {
			_ = status.Close()
		}
		return nil, fmt.Errorf("create delivery dispatcher: %w", err)
	}

	logger.Info().
		Str("smtp", smtpCfg.String()).
		Bool("async", status != nil).
		Int("rate_per_minute", cfg.Delivery.RatePerMinute).
		Msg("Report delivery enabled")
	return dispatcher, nil
}

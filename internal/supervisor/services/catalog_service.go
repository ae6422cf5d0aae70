// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package services

import (
	"context"
	"errors"
	"fmt"
)

// runFunc is a blocking loop that returns when ctx is done or it fails.
type runFunc func(ctx context.Context) error

// CatalogService supervises one fund catalog reload loop: the file
// watcher or the periodic remote refresher.
type CatalogService struct {
	run  runFunc
	name string
}

// CatalogWatcher is satisfied by *funds.Watcher.
type CatalogWatcher interface {
	Watch(ctx context.Context) error
}

// CatalogRefresher is satisfied by *funds.Refresher.
type CatalogRefresher interface {
	Run(ctx context.Context) error
}

// NewCatalogWatchService reloads the catalog when its file changes.
func NewCatalogWatchService(w CatalogWatcher) *CatalogService {
	return &CatalogService{run: w.Watch, name: "catalog-watcher"}
}

// NewCatalogRefreshService reloads a remote catalog periodically.
func NewCatalogRefreshService(r CatalogRefresher) *CatalogService {
	return &CatalogService{run: r.Run, name: "catalog-refresher"}
}

// Serve implements suture.Service. Loop failures are returned so suture
// restarts the loop with backoff.
func (s *CatalogService) Serve(ctx context.Context) error {
	err := s.run(ctx)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ctx.Err()
	}
	return fmt.Errorf("%s: %w", s.name, err)
}

// String returns the service name for logging.
func (s *CatalogService) String() string {
	return s.name
}

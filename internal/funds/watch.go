// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package funds

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce coalesces the burst of events editors emit for one save.
const defaultDebounce = 250 * time.Millisecond

// Watcher reloads a Store when its catalog file changes.
type Watcher struct {
	store    *Store
	path     string
	debounce time.Duration
}

// NewWatcher watches path and reloads store on change. The parent directory
// is watched so that atomic rename-over saves are seen.
func NewWatcher(store *Store, path string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{store: store, path: filepath.Clean(path), debounce: debounce}
}

// Watch blocks until ctx is done or the watcher fails.
func (w *Watcher) Watch(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.store.logger.Info().Str("path", w.path).Msg("watching fund catalog for changes")

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return fmt.Errorf("file watcher closed")
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return fmt.Errorf("file watcher closed")
			}
			w.store.logger.Warn().Err(err).Msg("file watcher error")

		case <-timer.C:
			// Errors are logged by Reload and the previous snapshot is kept.
			_ = w.store.Reload(ctx) //nolint:errcheck // logged in Reload
		}
	}
}

// Refresher reloads a Store on a fixed interval.
type Refresher struct {
	store    *Store
	interval time.Duration
}

// NewRefresher creates a refresher. A non-positive interval defaults to
// five minutes.
func NewRefresher(store *Store, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Refresher{store: store, interval: interval}
}

// Interval returns the refresh period.
func (r *Refresher) Interval() time.Duration {
	return r.interval
}

// Run blocks, reloading every interval until ctx is done.
func (r *Refresher) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			_ = r.store.Reload(ctx) //nolint:errcheck // logged in Reload
		}
	}
}

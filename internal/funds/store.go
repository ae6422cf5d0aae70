// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package funds

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/fundwise/internal/metrics"
)

// Store serves lookups from the most recent successfully loaded snapshot.
// Reloads swap the snapshot atomically; a failed reload keeps the previous
// one, so the catalog never empties once it has loaded.
type Store struct {
	source Source
	logger zerolog.Logger

	current atomic.Pointer[Snapshot]

	// reloadMu serializes reloads from the watcher, the refresher and callers.
	reloadMu  sync.Mutex
	lastError atomic.Pointer[string]
}

var _ Catalog = (*Store)(nil)

// NewStore creates a store for source. Call Reload before serving lookups.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewStore(source Source, logger zerolog.Logger) *Store {
	return &Store{
		source: source,
		logger: logger.With().Str("component", "funds").Str("source", source.Name()).Logger(),
	}
}

// Reload loads the source and installs the result. On failure the current
// snapshot stays in place and the error is returned.
func (s *Store) Reload(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	start := time.Now()
	records, err := s.source.Load(ctx)
	if err != nil {
		msg := err.Error()
		s.lastError.Store(&msg)
		metrics.RecordCatalogReload(s.source.Name(), 0, err)

		ev := s.logger.Warn().Err(err)
		if s.current.Load() == nil {
			ev = s.logger.Error().Err(err)
		}
		ev.Msg("fund catalog reload failed, keeping previous snapshot")
		return fmt.Errorf("reload fund catalog: %w", err)
	}

	snap := NewSnapshot(s.source.Name(), records)
	s.current.Store(snap)
	s.lastError.Store(nil)
	metrics.RecordCatalogReload(s.source.Name(), snap.Len(), nil)

	s.logger.Info().
		Int("funds", snap.Len()).
		Strs("categories", snap.Categories()).
		Dur("took", time.Since(start)).
		Msg("fund catalog loaded")
	return nil
}

// Snapshot returns the active snapshot, or nil before the first load.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Loaded reports whether any snapshot has been installed.
func (s *Store) Loaded() bool {
	return s.current.Load() != nil
}

// LastError returns the message of the most recent failed reload, or "" if
// the last reload succeeded.
func (s *Store) LastError() string {
	if msg := s.lastError.Load(); msg != nil {
		return *msg
	}
	return ""
}

// Lookup implements Catalog. Before the first load it returns an empty list.
func (s *Store) Lookup(category string) []FundRecord {
	var out []FundRecord
	if snap := s.current.Load(); snap != nil {
		out = snap.Lookup(category)
	} else {
		out = []FundRecord{}
	}
	metrics.RecordFundLookup(metricCategory(category), len(out))
	return out
}

// Categories implements Catalog.
func (s *Store) Categories() []string {
	if snap := s.current.Load(); snap != nil {
		return snap.Categories()
	}
	return []string{}
}

// All returns every category with its funds.
func (s *Store) All() (map[string][]FundRecord, error) {
	snap := s.current.Load()
	if snap == nil {
		return nil, ErrNotLoaded
	}
	return snap.All(), nil
}

// Source returns the backend the store loads from.
func (s *Store) Source() Source {
	return s.source
}

// metricCategory bounds label cardinality: lookups for categories outside
// the catalog are counted under "unknown".
func metricCategory(category string) string {
	switch c := normalizeCategory(category); c {
	case "conservative", "balanced", "aggressive":
		return c
	default:
		return "unknown"
	}
}

// IsSourceError reports whether err came from a catalog backend.
func IsSourceError(err error) bool {
	return errors.Is(err, ErrCatalogSource)
}

// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package funds

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/fundwise/internal/profile"
)

// ErrCatalogSource is wrapped by every error a Source returns for bad or
// unreachable catalog data.
var ErrCatalogSource = errors.New("fund catalog source")

// ErrNotLoaded is returned by Store operations that need a loaded catalog.
var ErrNotLoaded = errors.New("fund catalog not loaded")

// FundRecord is one mutual fund in the catalog. Returns and Rating are
// display text and are never parsed.
type FundRecord struct {
	Name        string `json:"name" yaml:"name"`
	Returns     string `json:"returns" yaml:"returns"`
	Rating      string `json:"rating" yaml:"rating"`
	Risk        string `json:"risk" yaml:"risk"`
	Category    string `json:"category" yaml:"category"`
	ETMoneyLink string `json:"etmoney_link,omitempty" yaml:"etmoney_link,omitempty"`
	GrowwLink   string `json:"groww_link,omitempty" yaml:"groww_link,omitempty"`
}

// Catalog answers category lookups. Lookup never fails: an unknown category
// yields an empty, non-nil slice.
type Catalog interface {
	Lookup(category string) []FundRecord
	Categories() []string
}

// normalizeCategory is the lookup key for a category label.
func normalizeCategory(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Snapshot is an immutable, indexed copy of the catalog.
type Snapshot struct {
	byCategory map[string][]FundRecord
	labels     map[string]string
	order      []string
	count      int
	source     string
	loadedAt   time.Time
}

// NewSnapshot indexes records by category. Record order within a category
// is preserved.
func NewSnapshot(source string, records []FundRecord) *Snapshot {
	s := &Snapshot{
		byCategory: make(map[string][]FundRecord),
		labels:     make(map[string]string),
		count:      len(records),
		source:     source,
		loadedAt:   time.Now().UTC(),
	}
	for _, r := range records {
		r.Name = strings.TrimSpace(r.Name)
		r.Category = strings.TrimSpace(r.Category)
		key := normalizeCategory(r.Category)
		if _, ok := s.labels[key]; !ok {
			s.labels[key] = r.Category
			s.order = append(s.order, key)
		}
		s.byCategory[key] = append(s.byCategory[key], r)
	}
	sort.SliceStable(s.order, func(i, j int) bool {
		return categoryRank(s.order[i]) < categoryRank(s.order[j])
	})
	return s
}

// categoryRank orders the known categories by risk and puts any others after
// them in the order they were first seen.
func categoryRank(key string) int {
	c, err := profile.ParseCategory(key)
	if err != nil {
		return profile.NumCategories
	}
	return c.Rank()
}

// Lookup returns a copy of the records for category.
func (s *Snapshot) Lookup(category string) []FundRecord {
	records := s.byCategory[normalizeCategory(category)]
	out := make([]FundRecord, len(records))
	copy(out, records)
	return out
}

// Categories returns the category labels as they appear in the data.
func (s *Snapshot) Categories() []string {
	out := make([]string, len(s.order))
	for i, key := range s.order {
		out[i] = s.labels[key]
	}
	return out
}

// All returns every category with its records.
func (s *Snapshot) All() map[string][]FundRecord {
	out := make(map[string][]FundRecord, len(s.order))
	for _, key := range s.order {
		out[s.labels[key]] = s.Lookup(key)
	}
	return out
}

// Len returns the number of records.
func (s *Snapshot) Len() int { return s.count }

// Source names the backend that produced the snapshot.
func (s *Snapshot) Source() string { return s.source }

// LoadedAt returns when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

var _ Catalog = (*Snapshot)(nil)

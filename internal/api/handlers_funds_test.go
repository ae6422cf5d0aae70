// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package api

import (
	"net/http"
	"strings"
	"testing"

	"github.com/tomtom215/fundwise/internal/funds"
	"github.com/tomtom215/fundwise/internal/models"
)

func TestListFunds(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOptions{})

	w := env.do(t, http.MethodGet, "/api/v1/funds", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var catalog models.FundCatalog
	decodeData(t, w, &catalog)

	if catalog.Source != funds.SourceEmbedded {
		t.Errorf("source = %q, want %q", catalog.Source, funds.SourceEmbedded)
	}
	total := 0
	for _, list := range catalog.Funds {
		total += len(list)
	}
	if catalog.Count == 0 || total != catalog.Count {
		t.Errorf("count = %d, funds across categories = %d", catalog.Count, total)
	}
	for _, want := range []string{"Conservative", "Balanced", "Aggressive"} {
		found := false
		for _, c := range catalog.Categories {
			if c == want {
				found = true
			}
		}
		if !found {
			t.Errorf("categories %v missing %s", catalog.Categories, want)
		}
	}
}

func TestListFunds_NotLoaded(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOptions{unloadedCatalog: true})

	w := env.do(t, http.MethodGet, "/api/v1/funds", nil)
	expectError(t, w, http.StatusServiceUnavailable, codeCatalogUnavailable)
}

func TestFundsByCategory(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOptions{})

	tests := []struct {
		name         string
		path         string
		wantCategory string
		wantEmpty    bool
	}{
		{"canonical name", "/api/v1/funds/Balanced", "Balanced", false},
		{"lower case", "/api/v1/funds/aggressive", "Aggressive", false},
		{"unknown category", "/api/v1/funds/Speculative", "Speculative", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodGet, tt.path, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
			}
			var list models.FundList
			decodeData(t, w, &list)

			if list.Category != tt.wantCategory {
				t.Errorf("category = %q, want %q", list.Category, tt.wantCategory)
			}
			if list.Count != len(list.Funds) {
				t.Errorf("count = %d, len(funds) = %d", list.Count, len(list.Funds))
			}
			if tt.wantEmpty {
				if !strings.Contains(w.Body.String(), `"funds":[]`) {
					t.Errorf("expected an empty list, got %s", w.Body.String())
				}
				return
			}
			if list.Count == 0 {
				t.Fatal("expected funds")
			}
			for _, f := range list.Funds {
				if f.Category != tt.wantCategory {
					t.Errorf("fund %q has category %q", f.Name, f.Category)
				}
			}
		})
	}
}

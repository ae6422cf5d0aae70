// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/fundwise/internal/models"
	"github.com/tomtom215/fundwise/internal/profile"
)

// ListFunds handles GET /api/v1/funds and returns every category with its funds.
func (h *Handler) ListFunds(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	snap := h.catalog.Snapshot()
	if snap == nil {
		respondError(w, http.StatusServiceUnavailable, codeCatalogUnavailable,
			"The fund catalog has not been loaded", nil)
		return
	}

	respondSuccess(w, http.StatusOK, &models.FundCatalog{
		Source:     snap.Source(),
		LoadedAt:   snap.LoadedAt(),
		Count:      snap.Len(),
		Categories: snap.Categories(),
		Funds:      snap.All(),
	}, start)
}

// FundsByCategory handles GET /api/v1/funds/{category}.
//
// An unknown category is not an error: the response is 200 with an empty list.
// Known category names are matched case-insensitively and echoed in their
// canonical form.
func (h *Handler) FundsByCategory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	category := strings.TrimSpace(chi.URLParam(r, "category"))
	if c, err := profile.ParseCategory(category); err == nil {
		category = string(c)
	}

	list := h.catalog.Lookup(category)
	respondSuccess(w, http.StatusOK, &models.FundList{
		Category: category,
		Count:    len(list),
		Funds:    list,
	}, start)
}

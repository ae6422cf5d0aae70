// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/fundwise/internal/delivery"
)

// DeliveryStatus handles GET /api/v1/deliveries/{id} and returns the
// status record of a queued delivery.
func (h *Handler) DeliveryStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.dispatcher == nil || !h.dispatcher.AsyncEnabled() {
		respondError(w, http.StatusNotFound, codeNotFound, delivery.ErrJobNotFound.Error(), nil)
		return
	}

	job, err := h.dispatcher.Status(r.Context(), chi.URLParam(r, "id"))
	switch {
	case err == nil:
		respondSuccess(w, http.StatusOK, job, start)
	case errors.Is(err, delivery.ErrJobNotFound):
		respondError(w, http.StatusNotFound, codeNotFound, err.Error(), nil)
	case errors.Is(err, delivery.ErrEmptyJobID):
		respondError(w, http.StatusBadRequest, codeInvalidRequest, err.Error(), nil)
	default:
		respondError(w, http.StatusInternalServerError, codeInternal, "Failed to read delivery status", err)
	}
}

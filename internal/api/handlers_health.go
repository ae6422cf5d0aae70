// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/fundwise/internal/models"
)

func (h *Handler) healthStatus() *models.HealthStatus {
	modelStatus := h.engine.Status()

	health := &models.HealthStatus{
		Status:          "healthy",
		Version:         h.version,
		Uptime:          time.Since(h.startTime).Seconds(),
		ModelTrained:    h.engine.Ready(),
		ModelTraining:   modelStatus.IsTraining,
		CatalogLoaded:   h.catalog.Loaded(),
		CatalogSource:   h.catalog.Source().Name(),
		CatalogError:    h.catalog.LastError(),
		ReportEnabled:   h.renderer != nil,
		DeliveryEnabled: h.dispatcher != nil,
	}
	if h.dispatcher != nil {
		health.AsyncDelivery = h.dispatcher.AsyncEnabled()
		health.DeliveryWorker = h.dispatcher.Running()
	}
	if !health.ModelTrained || !health.CatalogLoaded {
		health.Status = "degraded"
	}
	return health
}

// Health handles GET /api/v1/health. It always answers 200; the body
// says whether the service is ready.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, h.healthStatus(), time.Now())
}

// HealthLive handles GET /api/v1/health/live.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]string{"status": "alive"}, time.Now())
}

// HealthReady handles GET /api/v1/health/ready: 200 once the model is
// trained and the catalog loaded, 503 before.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	health := h.healthStatus()
	status := http.StatusOK
	if health.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	respondSuccess(w, status, health, time.Now())
}

// ModelStatus handles GET /api/v1/model.
func (h *Handler) ModelStatus(w http.ResponseWriter, r *http.Request) {
	classified, overridden := h.engine.Counts()
	respondSuccess(w, http.StatusOK, &models.ModelStatus{
		TrainingStatus: h.engine.Status(),
		Classified:     classified,
		Overridden:     overridden,
	}, time.Now())
}

// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package models

import "github.com/tomtom215/fundwise/internal/recommend"

// HealthStatus reports liveness and readiness.
//
// Status is "healthy" when the model is trained and the catalog is loaded,
// "degraded" otherwise. A stale catalog (last reload failed but an older
// snapshot is being served) is still healthy and reports CatalogError.
type HealthStatus struct {
	Status          string  `json:"status"`
	Version         string  `json:"version"`
	Uptime          float64 `json:"uptime_seconds"`
	ModelTrained    bool    `json:"model_trained"`
	ModelTraining   bool    `json:"model_training"`
	CatalogLoaded   bool    `json:"catalog_loaded"`
	CatalogSource   string  `json:"catalog_source"`
	CatalogError    string  `json:"catalog_error,omitempty"`
	ReportEnabled   bool    `json:"report_enabled"`
	DeliveryEnabled bool    `json:"delivery_enabled"`
	AsyncDelivery   bool    `json:"async_delivery"`
	DeliveryWorker  bool    `json:"delivery_worker_running"`
}

// ModelStatus is the training status of the classifier plus serving counters.
type ModelStatus struct {
	recommend.TrainingStatus
	Classified int64 `json:"classified"`
	Overridden int64 `json:"overridden"`
}

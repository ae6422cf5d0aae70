// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package api

import (
	"errors"
	"time"

	"github.com/tomtom215/fundwise/internal/delivery"
	"github.com/tomtom215/fundwise/internal/funds"
	"github.com/tomtom215/fundwise/internal/recommend"
	"github.com/tomtom215/fundwise/internal/report"
)

// classifyTimeout bounds a request that has to wait for the first training.
const classifyTimeout = 30 * time.Second

// Handler contains dependencies for API handlers
//
// Handler methods are split across multiple files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_helpers.go: Response and decoding helpers
//   - handlers_recommend.go: Recommendation and report endpoints
//   - handlers_funds.go: Fund catalog endpoints
//   - handlers_delivery.go: Delivery job status
//   - handlers_health.go: Health and model status
type Handler struct {
	engine     *recommend.Engine
	catalog    *funds.Store
	renderer   *report.Renderer
	dispatcher *delivery.Dispatcher
	version    string
	startTime  time.Time
}

// HandlerDeps lists the handler's collaborators. Renderer and Dispatcher
// are optional: nil disables reports and delivery respectively.
type HandlerDeps struct {
	Engine     *recommend.Engine
	Catalog    *funds.Store
	Renderer   *report.Renderer
	Dispatcher *delivery.Dispatcher
	Version    string
}

// NewHandler creates a new API handler.
//
// Example:
//
//	handler, err := api.NewHandler(api.HandlerDeps{Engine: engine, Catalog: store})
//	router := api.NewRouter(handler, api.NewChiMiddleware(nil))
//	http.ListenAndServe(":8080", router.Setup())
func NewHandler(deps HandlerDeps) (*Handler, error) {
	if deps.Engine == nil {
		return nil, errors.New("recommendation engine is required")
	}
	if deps.Catalog == nil {
		return nil, errors.New("fund catalog is required")
	}
	if deps.Dispatcher != nil && deps.Renderer == nil {
		return nil, errors.New("delivery requires the report renderer")
	}
	version := deps.Version
	if version == "" {
		version = "dev"
	}

	return &Handler{
		engine:     deps.Engine,
		catalog:    deps.Catalog,
		renderer:   deps.Renderer,
		dispatcher: deps.Dispatcher,
		version:    version,
		startTime:  time.Now(),
	}, nil
}

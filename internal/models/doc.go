// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

/*
Package models defines the HTTP response shapes shared by the API handlers.

Key Components:

  - APIResponse: Standard response envelope {status, data, metadata, error}
  - Recommendation: Category decision plus its funds and delivery outcome
  - DeliveryOutcome: Result of a synchronous send or the queued job record
  - FundList, FundCatalog: Fund lookup responses
  - HealthStatus: Liveness and readiness report

Domain types (profiles, decisions, fund records) live in their own packages;
this package only composes them for the wire.
*/
package models

// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

// Package funds provides the static mutual fund catalog keyed by category.
//
// A Source loads records from one backend: the embedded table, a CSV, JSON
// or YAML file, or a remote JSON document behind a circuit breaker. A Store
// holds the active Snapshot and answers lookups. Watcher and Refresher keep
// the Store current for file and remote sources respectively.
//
// Lookups are case-insensitive and never fail. An unknown category returns
// an empty list.
package funds

// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

// Package middleware provides net/http middleware shared by the API router.
//
// RequestID accepts a well-formed X-Request-ID from the client or generates
// a UUID, echoes it in the response and stores it in the request context
// where internal/logging picks it up. PrometheusMetrics records request
// counts and latency labelled by chi route pattern, so path parameters do
// not inflate label cardinality.
package middleware

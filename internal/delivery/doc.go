// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

// Package delivery emails rendered recommendation reports.
//
// EmailChannel speaks SMTP directly: optional STARTTLS, PLAIN auth and a
// multipart/mixed body carrying the PDF. Failures are returned as a
// DeliveryResult with a machine-readable error code rather than as a Go
// error, because a failed email never invalidates the recommendation it
// carries.
//
// Dispatcher sits in front of a Channel:
//   - Deliver sends inline and returns the result to the caller.
//   - Enqueue publishes the job on an in-process Watermill queue and returns
//     a job id. The worker records the outcome in a BadgerDB StatusStore
//     that expires records after a TTL.
//
// Nothing is retried. Outbound sends share one token bucket so a burst of
// requests cannot exceed the configured rate per minute.
//
// Security:
//   - SMTP credentials come from configuration only and are never logged
//   - Recipient addresses are masked in logs and job records
//   - Header values are stripped of line breaks
package delivery

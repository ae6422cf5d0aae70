// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

/*
Package api provides the HTTP interface of Fundwise.

Routes are served by chi under /api/v1:

	GET  /health                   liveness plus readiness details (always 200)
	GET  /health/live              process is up
	GET  /health/ready             503 until the model is trained and the catalog loaded
	GET  /model                    classifier training status and counters
	GET  /funds                    every category with its funds
	GET  /funds/{category}         funds for one category; unknown names yield []
	POST /recommendations          classify a profile, optionally email the report
	POST /recommendations/report   classify a profile and return the PDF report
	GET  /deliveries/{id}          status of a queued delivery

Prometheus metrics are exposed at /metrics.

# Response Envelope

JSON responses use models.APIResponse:

	{"status":"success","data":{...},"metadata":{"timestamp":"...","query_time_ms":3}}
	{"status":"error","error":{"code":"VALIDATION_ERROR","message":"...","details":{...}},...}

# Recommendation Requests

	{
	  "age": 35,
	  "monthly_income": 50000,
	  "savings": 50000,
	  "risk_appetite": "Medium",
	  "goal": "Retirement",
	  "horizon": "3-5 yrs",
	  "email": "investor@example.com",
	  "async": false
	}

Out-of-range numbers and unknown labels are rejected with 400 before the
classifier runs. When email is set the PDF report is delivered and the
outcome reported under data.delivery; a failed delivery never turns a
successful classification into an error response.

# Middleware

The global stack is request ID, real IP, access log, panic recovery and
CORS. The two POST endpoints are rate limited per client IP with
go-chi/httprate.
*/
package api

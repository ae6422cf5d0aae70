// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

// Package metrics declares the Prometheus collectors exported on /metrics.
//
// Collectors are registered with the default registry through promauto, so
// importing the package is enough to expose them. Record* helpers keep label
// values consistent across call sites.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Classifier Metrics
	Classifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fundwise_classifications_total",
			Help: "Profiles classified, by final category and override rule",
		},
		[]string{"category", "override"},
	)

	ModelTrainingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fundwise_model_training_duration_seconds",
			Help:    "Duration of classifier training in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"algorithm"},
	)

	ModelTrainingErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fundwise_model_training_errors_total",
			Help: "Total number of failed training runs",
		},
		[]string{"algorithm"},
	)

	ModelVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fundwise_model_version",
			Help: "Version of the model currently serving requests",
		},
	)

	// Fund Catalog Metrics
	FundLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fundwise_fund_lookups_total",
			Help: "Fund lookups by requested category and whether any fund matched",
		},
		[]string{"category", "result"},
	)

	CatalogReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fundwise_catalog_reloads_total",
			Help: "Fund catalog reload attempts by source and outcome",
		},
		[]string{"source", "result"},
	)

	CatalogFunds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fundwise_catalog_funds",
			Help: "Number of fund records in the active catalog",
		},
	)

	// Report and Delivery Metrics
	ReportsRendered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fundwise_reports_rendered_total",
			Help: "PDF reports rendered, by outcome",
		},
		[]string{"result"},
	)

	DeliveryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fundwise_delivery_attempts_total",
			Help: "Report deliveries by channel, mode and outcome",
		},
		[]string{"channel", "mode", "status", "error_code"},
	)

	DeliveryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fundwise_delivery_duration_seconds",
			Help:    "Time spent sending a report",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"channel"},
	)

	DeliveryQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "fundwise_delivery_queue_depth",
			Help: "Asynchronous deliveries accepted but not yet finished",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Requests through a circuit breaker by result (success, failure, rejected)",
		},
		[]string{"name", "result"},
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current run of consecutive failures seen by a circuit breaker",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordClassification counts one classified profile. An empty override
// reason is recorded as "none".
func RecordClassification(category, override string) {
	if override == "" {
		override = "none"
	}
	Classifications.WithLabelValues(category, override).Inc()
}

// RecordFundLookup counts a lookup and whether it returned any funds.
func RecordFundLookup(category string, found int) {
	result := "hit"
	if found == 0 {
		result = "empty"
	}
	FundLookups.WithLabelValues(category, result).Inc()
}

// RecordCatalogReload counts a reload and updates the catalog size on success.
func RecordCatalogReload(source string, funds int, err error) {
	if err != nil {
		CatalogReloads.WithLabelValues(source, "error").Inc()
		return
	}
	CatalogReloads.WithLabelValues(source, "success").Inc()
	CatalogFunds.Set(float64(funds))
}

// RecordReport counts a PDF render.
func RecordReport(err error) {
	if err != nil {
		ReportsRendered.WithLabelValues("error").Inc()
		return
	}
	ReportsRendered.WithLabelValues("success").Inc()
}

// RecordDelivery counts a delivery attempt and its duration.
func RecordDelivery(channel, mode string, success bool, errorCode string, duration time.Duration) {
	status := "sent"
	if !success {
		status = "failed"
	}
	DeliveryAttempts.WithLabelValues(channel, mode, status, errorCode).Inc()
	DeliveryDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// RecordCircuitBreakerTransition records a state change of a named breaker.
// States are encoded as 0=closed, 1=half-open, 2=open.
func RecordCircuitBreakerTransition(name, from, to string, toCode int) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(float64(toCode))
	if toCode == 0 {
		CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
	}
}

// SetAppInfo publishes the build version.
func SetAppInfo(version, goVersion string) {
	AppInfo.WithLabelValues(version, goVersion).Set(1)
}

// StatusLabel converts an HTTP status code into a label value.
func StatusLabel(code int) string {
	return strconv.Itoa(code)
}

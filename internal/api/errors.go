// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package api

import "errors"

// Common API errors
var (
	// ErrReportDisabled indicates PDF reports are turned off in config.
	ErrReportDisabled = errors.New("report rendering is disabled")

	// ErrDeliveryDisabled indicates report delivery is turned off in config.
	ErrDeliveryDisabled = errors.New("report delivery is disabled")
)

// Error codes returned in APIError.Code.
const (
	codeValidation          = "VALIDATION_ERROR"
	codeInvalidRequest      = "INVALID_REQUEST"
	codeNotFound            = "NOT_FOUND"
	codeMethodNotAllowed    = "METHOD_NOT_ALLOWED"
	codeModelUnavailable    = "MODEL_UNAVAILABLE"
	codeReportDisabled      = "REPORT_DISABLED"
	codeReportError         = "REPORT_ERROR"
	codeDeliveryDisabled    = "DELIVERY_DISABLED"
	codeDeliveryUnavailable = "DELIVERY_UNAVAILABLE"
	codeCatalogUnavailable  = "CATALOG_UNAVAILABLE"
	codeRateLimited         = "RATE_LIMIT_EXCEEDED"
	codeInternal            = "INTERNAL_ERROR"
)

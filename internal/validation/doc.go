// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is built on first use. It reports fields by
// their JSON names and adds tags for the profile vocabularies:
//
//	risk_appetite  Low | Medium | High
//	goal           Education | Travel | Retirement | Wealth Creation
//	horizon        1-3 yrs | 3-5 yrs | 5+ yrs
//	category       Conservative | Balanced | Aggressive
//
// Labels are accepted in the same loose forms the profile parsers accept,
// so "wealth_creation" and "5+" pass.
//
// Example usage:
//
//	type RecommendationRequest struct {
//	    Age          int    `json:"age" validate:"min=18,max=100"`
//	    RiskAppetite string `json:"risk_appetite" validate:"required,risk_appetite"`
//	}
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    apiErr := err.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
package validation

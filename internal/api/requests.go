// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package api

import (
	"fmt"
	"strings"

	"github.com/tomtom215/fundwise/internal/profile"
)

// RecommendationRequest is the body of POST /api/v1/recommendations and
// POST /api/v1/recommendations/report.
//
// Label fields accept the loose forms the profile parsers accept, for
// example "wealth_creation" or "5+".
type RecommendationRequest struct {
	Age           int     `json:"age" validate:"min=18,max=65"`
	MonthlyIncome float64 `json:"monthly_income" validate:"gte=10000,lte=200000"`
	Savings       float64 `json:"savings" validate:"gte=0,lte=1000000"`
	RiskAppetite  string  `json:"risk_appetite" validate:"required,risk_appetite"`
	Goal          string  `json:"goal" validate:"required,goal"`
	Horizon       string  `json:"horizon" validate:"required,horizon"`

	// Email requests delivery of the PDF report to this address.
	Email string `json:"email,omitempty" validate:"omitempty,email,max=254"`

	// Async queues the delivery and returns a job id instead of waiting.
	Async bool `json:"async,omitempty"`
}

// Profile converts a validated request into a profile.
func (r *RecommendationRequest) Profile() (profile.Profile, error) {
	risk, err := profile.ParseRisk(r.RiskAppetite)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("risk_appetite: %w", err)
	}
	goal, err := profile.ParseGoal(r.Goal)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("goal: %w", err)
	}
	horizon, err := profile.ParseHorizon(r.Horizon)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("horizon: %w", err)
	}

	return profile.Profile{
		Age:           r.Age,
		MonthlyIncome: r.MonthlyIncome,
		Savings:       r.Savings,
		RiskAppetite:  risk,
		Goal:          goal,
		Horizon:       horizon,
	}, nil
}

// normalizedEmail trims surrounding whitespace from the delivery address.
func (r *RecommendationRequest) normalizedEmail() string {
	return strings.TrimSpace(r.Email)
}

// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package recommend

import "github.com/tomtom215/fundwise/internal/profile"

// OverrideIncomeThreshold is the monthly income above which a high-risk,
// long-horizon investor is forced to Aggressive.
//
// It is deliberately not corpus.AggressiveIncomeThreshold (60000). Investors
// earning between the two thresholds are left to the classifier.
const OverrideIncomeThreshold = 80000

// OverrideReason identifies which override rule replaced a prediction.
type OverrideReason string

// Override reasons.
const (
	OverrideNone               OverrideReason = ""
	OverrideLowRiskShortTerm   OverrideReason = "low_risk_short_horizon"
	OverrideHighRiskHighIncome OverrideReason = "high_risk_high_income_long_horizon"
)

// ApplyOverride applies the post-classification rules, first match wins:
//
//  1. Low risk with a 1-3 year horizon: Conservative.
//  2. High risk, income above 80000 and a 5+ year horizon: Aggressive.
//  3. Otherwise the predicted category is kept.
//
// A rule fires regardless of what the classifier predicted, so the returned
// reason is set even when the forced category equals the prediction.
func ApplyOverride(p profile.Profile, predicted profile.Category) (profile.Category, OverrideReason) {
	switch {
	case p.RiskAppetite == profile.RiskLow && p.Horizon == profile.HorizonShort:
		return profile.Conservative, OverrideLowRiskShortTerm
	case p.RiskAppetite == profile.RiskHigh &&
		p.MonthlyIncome > OverrideIncomeThreshold &&
		p.Horizon == profile.HorizonLong:
		return profile.Aggressive, OverrideHighRiskHighIncome
	default:
		return predicted, OverrideNone
	}
}

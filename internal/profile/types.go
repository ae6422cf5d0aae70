// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package profile

import "fmt"

// Profile is one investor's financial profile. It is built per request and
// never stored.
type Profile struct {
	Age           int          `json:"age"`
	MonthlyIncome float64      `json:"monthly_income"`
	Savings       float64      `json:"savings"`
	RiskAppetite  RiskAppetite `json:"risk_appetite"`
	Goal          Goal         `json:"goal"`
	Horizon       Horizon      `json:"horizon"`
}

// Validate checks that every categorical field holds a known label.
// Numeric bounds are enforced at the input layer.
func (p Profile) Validate() error {
	if _, err := EncodeRisk(p.RiskAppetite); err != nil {
		return err
	}
	if _, err := EncodeGoal(p.Goal); err != nil {
		return err
	}
	if _, err := EncodeHorizon(p.Horizon); err != nil {
		return err
	}
	return nil
}

// LabeledSample is a synthetic training example.
type LabeledSample struct {
	Profile
	Category Category `json:"category"`
}

// Feature column order used by every classifier.
const (
	FeatureAge = iota
	FeatureIncome
	FeatureSavings
	FeatureRisk
	FeatureGoal
	FeatureHorizon

	NumFeatures
)

// FeatureNames is indexed by the Feature* constants.
var FeatureNames = [NumFeatures]string{"age", "income", "savings", "risk", "goal", "horizon"}

// Features encodes p into the classifier's input vector.
func Features(p Profile) ([]float64, error) {
	risk, err := EncodeRisk(p.RiskAppetite)
	if err != nil {
		return nil, err
	}
	goal, err := EncodeGoal(p.Goal)
	if err != nil {
		return nil, err
	}
	horizon, err := EncodeHorizon(p.Horizon)
	if err != nil {
		return nil, err
	}

	x := make([]float64, NumFeatures)
	x[FeatureAge] = float64(p.Age)
	x[FeatureIncome] = p.MonthlyIncome
	x[FeatureSavings] = p.Savings
	x[FeatureRisk] = float64(risk)
	x[FeatureGoal] = float64(goal)
	x[FeatureHorizon] = float64(horizon)
	return x, nil
}

// Matrix encodes a corpus into a feature matrix and class-index labels.
func Matrix(samples []LabeledSample) ([][]float64, []int, error) {
	xs := make([][]float64, len(samples))
	ys := make([]int, len(samples))
	for i, s := range samples {
		x, err := Features(s.Profile)
		if err != nil {
			return nil, nil, fmt.Errorf("sample %d: %w", i, err)
		}
		y, err := EncodeCategory(s.Category)
		if err != nil {
			return nil, nil, fmt.Errorf("sample %d: %w", i, err)
		}
		xs[i] = x
		ys[i] = y
	}
	return xs, ys, nil
}

// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package algorithms

import (
	"fmt"

	"github.com/tomtom215/fundwise/internal/recommend"
)

// Factory returns a constructor for the classifier named by cfg.Algorithm.
func Factory(cfg *recommend.Config) (recommend.ClassifierFactory, error) {
	forest := cfg.Forest
	seed := cfg.EffectiveSeed()

	switch cfg.Algorithm {
	case recommend.AlgorithmRandomForest, "":
		return func() (recommend.Classifier, error) {
			return NewRandomForest(forest, seed), nil
		}, nil
	case recommend.AlgorithmDecisionTree:
		return func() (recommend.Classifier, error) {
			return NewDecisionTree(forest, seed), nil
		}, nil
	case recommend.AlgorithmRules:
		return func() (recommend.Classifier, error) {
			return NewRules(), nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown algorithm %q", cfg.Algorithm)
	}
}

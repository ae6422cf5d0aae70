// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package algorithms

import (
	"context"

	"github.com/tomtom215/fundwise/internal/profile"
	"github.com/tomtom215/fundwise/internal/recommend"
	"github.com/tomtom215/fundwise/internal/recommend/corpus"
)

// Rules classifies with the corpus labelling rule itself. It reproduces the
// training labels exactly and is useful as a baseline and in tests.
type Rules struct {
	BaseAlgorithm
}

var _ recommend.Classifier = (*Rules)(nil)

// NewRules creates an untrained rule classifier.
func NewRules() *Rules {
	return &Rules{BaseAlgorithm: NewBaseAlgorithm(recommend.AlgorithmRules)}
}

// Train only checks the corpus is non-empty; the rule has nothing to fit.
func (r *Rules) Train(ctx context.Context, samples []profile.LabeledSample) error {
	if len(samples) == 0 {
		return recommend.ErrEmptyCorpus
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.markTrained()
	return nil
}

// Predict applies corpus.DeriveLabel with full confidence.
func (r *Rules) Predict(p profile.Profile) (recommend.Prediction, error) {
	if err := p.Validate(); err != nil {
		return recommend.Prediction{}, err
	}
	if !r.IsTrained() {
		return recommend.Prediction{}, recommend.ErrNotTrained
	}

	var weights [profile.NumCategories]float64
	weights[corpus.DeriveLabel(p).Rank()] = 1
	return distribution(weights), nil
}

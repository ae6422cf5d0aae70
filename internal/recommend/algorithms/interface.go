// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package algorithms

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/fundwise/internal/profile"
	"github.com/tomtom215/fundwise/internal/recommend"
)

// BaseAlgorithm provides the name, trained flag and version bookkeeping
// shared by every classifier.
type BaseAlgorithm struct {
	name          string
	trained       bool
	version       int
	lastTrainedAt time.Time
	mu            sync.RWMutex
}

// NewBaseAlgorithm creates a new base algorithm with the given name.
func NewBaseAlgorithm(name string) BaseAlgorithm {
	return BaseAlgorithm{name: name}
}

// Name returns the algorithm identifier.
func (b *BaseAlgorithm) Name() string {
	return b.name
}

// IsTrained returns whether the model has been trained.
func (b *BaseAlgorithm) IsTrained() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.trained
}

// Version returns the model version.
func (b *BaseAlgorithm) Version() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// LastTrainedAt returns when the model was last trained.
func (b *BaseAlgorithm) LastTrainedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastTrainedAt
}

// markTrained must be called with the write lock held.
func (b *BaseAlgorithm) markTrained() {
	b.trained = true
	b.version++
	b.lastTrainedAt = time.Now()
}

// contextCancelled reports whether ctx is done without blocking.
func contextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// distribution converts per-class weights into a prediction. Ties go to the
// lower class index, i.e. the less risky category.
func distribution(weights [profile.NumCategories]float64) recommend.Prediction {
	var total float64
	for _, w := range weights {
		total += w
	}

	probs := make(map[profile.Category]float64, profile.NumCategories)
	best := 0
	for i, w := range weights {
		c, _ := profile.DecodeCategory(i) //nolint:errcheck // i is always a valid class index
		p := 0.0
		if total > 0 {
			p = w / total
		}
		probs[c] = p
		if w > weights[best] {
			best = i
		}
	}

	category, _ := profile.DecodeCategory(best) //nolint:errcheck // best is always a valid class index
	return recommend.Prediction{
		Category:      category,
		Confidence:    probs[category],
		Probabilities: probs,
	}
}

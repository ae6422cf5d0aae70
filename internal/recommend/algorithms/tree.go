// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package algorithms

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"math/rand"

	"github.com/tomtom215/fundwise/internal/profile"
	"github.com/tomtom215/fundwise/internal/recommend"
)

// DecisionTree is a single CART tree grown on the full corpus with every
// feature considered at each split.
type DecisionTree struct {
	BaseAlgorithm

	params growParams
	seed   int64
	tree   cartTree
}

var (
	_ recommend.Classifier  = (*DecisionTree)(nil)
	_ recommend.Persistable = (*DecisionTree)(nil)
)

// NewDecisionTree creates an untrained tree. Forest-only settings
// (Trees, MaxFeatures, Workers) are ignored.
//
//nolint:gocritic // config passed by value for immutability
func NewDecisionTree(cfg recommend.ForestConfig, seed int64) *DecisionTree {
	return &DecisionTree{
		BaseAlgorithm: NewBaseAlgorithm(recommend.AlgorithmDecisionTree),
		params: growParams{
			maxDepth:    cfg.MaxDepth,
			minSplit:    max(2, cfg.MinSamplesSplit),
			minLeaf:     max(1, cfg.MinSamplesLeaf),
			maxFeatures: profile.NumFeatures,
		},
		seed: seed,
	}
}

// Train fits the tree.
func (d *DecisionTree) Train(ctx context.Context, samples []profile.LabeledSample) error {
	if len(samples) == 0 {
		return recommend.ErrEmptyCorpus
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	x, y, err := profile.Matrix(samples)
	if err != nil {
		return fmt.Errorf("encode corpus: %w", err)
	}

	idx := make([]int, len(x))
	for i := range idx {
		idx[i] = i
	}
	// The seed only orders features, which decides between equally good splits.
	tree := growTree(x, y, idx, d.params, rand.New(rand.NewSource(d.seed))) //nolint:gosec // model randomness

	d.mu.Lock()
	defer d.mu.Unlock()
	d.tree = tree
	d.markTrained()
	return nil
}

// Predict returns the class distribution of the leaf p falls into.
func (d *DecisionTree) Predict(p profile.Profile) (recommend.Prediction, error) {
	x, err := profile.Features(p)
	if err != nil {
		return recommend.Prediction{}, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.trained {
		return recommend.Prediction{}, recommend.ErrNotTrained
	}
	return distribution(d.tree.predict(x)), nil
}

// Depth returns the depth of the trained tree.
func (d *DecisionTree) Depth() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tree.depth()
}

// MarshalModel implements recommend.Persistable.
func (d *DecisionTree) MarshalModel() ([]byte, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.trained {
		return nil, recommend.ErrNotTrained
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(d.tree); err != nil {
		return nil, fmt.Errorf("encode tree: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalModel implements recommend.Persistable.
func (d *DecisionTree) UnmarshalModel(data []byte) error {
	var tree cartTree
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&tree); err != nil {
		return fmt.Errorf("decode tree: %w", err)
	}
	if len(tree.Nodes) == 0 {
		return fmt.Errorf("decode tree: no nodes")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.tree = tree
	d.markTrained()
	return nil
}

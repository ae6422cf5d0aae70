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
	"runtime"
	"sync"

	"github.com/tomtom215/fundwise/internal/profile"
	"github.com/tomtom215/fundwise/internal/recommend"
)

// RandomForest is an ensemble of CART trees, each grown on a bootstrap
// sample with a random feature subset tried at every split. The predicted
// distribution is the mean of the trees' leaf distributions.
//
// Per-tree random sources are derived from the configured seed before any
// tree is grown, so a given corpus always yields the same forest regardless
// of how tree construction is scheduled across workers.
type RandomForest struct {
	BaseAlgorithm

	cfg  recommend.ForestConfig
	seed int64

	trees   []cartTree
	samples int
}

// forestState is the gob-encoded snapshot of a trained forest.
type forestState struct {
	Trees   []cartTree
	Samples int
}

var (
	_ recommend.Classifier  = (*RandomForest)(nil)
	_ recommend.Persistable = (*RandomForest)(nil)
)

// NewRandomForest creates an untrained forest.
//
//nolint:gocritic // config passed by value for immutability
func NewRandomForest(cfg recommend.ForestConfig, seed int64) *RandomForest {
	if cfg.Trees <= 0 {
		cfg.Trees = 100
	}
	if cfg.MinSamplesSplit < 2 {
		cfg.MinSamplesSplit = 2
	}
	if cfg.MinSamplesLeaf < 1 {
		cfg.MinSamplesLeaf = 1
	}
	if cfg.MaxFeatures <= 0 || cfg.MaxFeatures > profile.NumFeatures {
		cfg.MaxFeatures = sqrtFeatures()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return &RandomForest{
		BaseAlgorithm: NewBaseAlgorithm(recommend.AlgorithmRandomForest),
		cfg:           cfg,
		seed:          seed,
	}
}

// Train grows cfg.Trees trees on bootstrap samples of the corpus.
// The previous model keeps serving until the new one is complete.
func (f *RandomForest) Train(ctx context.Context, samples []profile.LabeledSample) error {
	if len(samples) == 0 {
		return recommend.ErrEmptyCorpus
	}
	x, y, err := profile.Matrix(samples)
	if err != nil {
		return fmt.Errorf("encode corpus: %w", err)
	}

	master := rand.New(rand.NewSource(f.seed)) //nolint:gosec // model randomness, not security sensitive
	seeds := make([]int64, f.cfg.Trees)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	params := growParams{
		maxDepth:    f.cfg.MaxDepth,
		minSplit:    f.cfg.MinSamplesSplit,
		minLeaf:     f.cfg.MinSamplesLeaf,
		maxFeatures: f.cfg.MaxFeatures,
	}

	trees := make([]cartTree, f.cfg.Trees)
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(f.cfg.Workers, f.cfg.Trees); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if contextCancelled(ctx) {
					continue
				}
				rng := rand.New(rand.NewSource(seeds[i])) //nolint:gosec // model randomness
				trees[i] = growTree(x, y, bootstrapSample(len(x), rng), params, rng)
			}
		}()
	}

feed:
	for i := range trees {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.trees = trees
	f.samples = len(samples)
	f.markTrained()
	return nil
}

// Predict averages the leaf distributions of every tree.
func (f *RandomForest) Predict(p profile.Profile) (recommend.Prediction, error) {
	x, err := profile.Features(p)
	if err != nil {
		return recommend.Prediction{}, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	if !f.trained {
		return recommend.Prediction{}, recommend.ErrNotTrained
	}

	var sum [profile.NumCategories]float64
	for i := range f.trees {
		dist := f.trees[i].predict(x)
		for c := range sum {
			sum[c] += dist[c]
		}
	}
	return distribution(sum), nil
}

// TreeCount returns the number of trees in the trained forest.
func (f *RandomForest) TreeCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.trees)
}

// MarshalModel implements recommend.Persistable.
func (f *RandomForest) MarshalModel() ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if !f.trained {
		return nil, recommend.ErrNotTrained
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(forestState{Trees: f.trees, Samples: f.samples}); err != nil {
		return nil, fmt.Errorf("encode forest: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalModel implements recommend.Persistable.
func (f *RandomForest) UnmarshalModel(data []byte) error {
	var state forestState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&state); err != nil {
		return fmt.Errorf("decode forest: %w", err)
	}
	if len(state.Trees) == 0 {
		return fmt.Errorf("decode forest: %w", recommend.ErrEmptyCorpus)
	}
	for i := range state.Trees {
		if len(state.Trees[i].Nodes) == 0 {
			return fmt.Errorf("decode forest: tree %d has no nodes", i)
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.trees = state.Trees
	f.samples = state.Samples
	f.markTrained()
	return nil
}

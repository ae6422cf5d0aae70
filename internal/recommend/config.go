// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package recommend

import (
	"fmt"

	"github.com/tomtom215/fundwise/internal/recommend/corpus"
)

// Algorithm names accepted in Config.Algorithm.
const (
	AlgorithmRandomForest = "random_forest"
	AlgorithmDecisionTree = "decision_tree"
	AlgorithmRules        = "rules"
)

// Config contains all configuration for the classification engine.
type Config struct {
	// Algorithm selects the classifier implementation.
	Algorithm string `json:"algorithm"`

	// Forest holds tree-growing parameters. DecisionTree uses the same
	// settings with a single tree and no bootstrap.
	Forest ForestConfig `json:"forest"`

	// Corpus configures the synthetic training data.
	Corpus corpus.Config `json:"corpus"`

	// ModelDir enables model snapshots when non-empty.
	ModelDir string `json:"model_dir"`

	// KeepSnapshots is how many snapshot versions to retain in ModelDir.
	KeepSnapshots int `json:"keep_snapshots"`

	// Seed drives bootstrap sampling and feature selection.
	// If zero, 42 is used so the forest is reproducible for a given corpus.
	Seed int64 `json:"seed"`
}

// ForestConfig contains tree ensemble parameters.
type ForestConfig struct {
	// Trees is the number of estimators. Default: 100.
	Trees int `json:"trees"`

	// MaxDepth limits tree depth. 0 grows until leaves are pure.
	MaxDepth int `json:"max_depth"`

	// MinSamplesSplit is the smallest node that may be split. Default: 2.
	MinSamplesSplit int `json:"min_samples_split"`

	// MinSamplesLeaf is the smallest allowed leaf. Default: 1.
	MinSamplesLeaf int `json:"min_samples_leaf"`

	// MaxFeatures is the number of features tried per split.
	// 0 means floor(sqrt(feature count)).
	MaxFeatures int `json:"max_features"`

	// Workers bounds concurrent tree construction. 0 means one per CPU.
	Workers int `json:"workers"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		Algorithm: AlgorithmRandomForest,
		Forest: ForestConfig{
			Trees:           100,
			MinSamplesSplit: 2,
			MinSamplesLeaf:  1,
		},
		Corpus:        corpus.DefaultConfig(),
		KeepSnapshots: 3,
		Seed:          42,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.Algorithm {
	case AlgorithmRandomForest, AlgorithmDecisionTree, AlgorithmRules:
	default:
		return fmt.Errorf("unknown algorithm %q", c.Algorithm)
	}
	if c.Forest.Trees < 1 {
		return fmt.Errorf("forest.trees must be positive, got %d", c.Forest.Trees)
	}
	if c.Forest.MaxDepth < 0 {
		return fmt.Errorf("forest.max_depth must be non-negative, got %d", c.Forest.MaxDepth)
	}
	if c.Forest.MinSamplesSplit < 2 {
		return fmt.Errorf("forest.min_samples_split must be at least 2, got %d", c.Forest.MinSamplesSplit)
	}
	if c.Forest.MinSamplesLeaf < 1 {
		return fmt.Errorf("forest.min_samples_leaf must be positive, got %d", c.Forest.MinSamplesLeaf)
	}
	if c.Forest.MaxFeatures < 0 {
		return fmt.Errorf("forest.max_features must be non-negative, got %d", c.Forest.MaxFeatures)
	}
	if c.Forest.Workers < 0 {
		return fmt.Errorf("forest.workers must be non-negative, got %d", c.Forest.Workers)
	}
	if c.KeepSnapshots < 0 {
		return fmt.Errorf("keep_snapshots must be non-negative, got %d", c.KeepSnapshots)
	}
	if err := c.Corpus.Validate(); err != nil {
		return fmt.Errorf("corpus: %w", err)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// EffectiveSeed returns Seed, or 42 when Seed is zero.
func (c *Config) EffectiveSeed() int64 {
	if c.Seed == 0 {
		return 42
	}
	return c.Seed
}

// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

// Package algorithms implements the category classifiers used by the
// recommend engine.
//
// # Classifiers
//
//   - RandomForest: bagged CART trees with Gini splits (the default, 100 trees, seed 42)
//   - DecisionTree: a single CART tree over all features
//   - Rules: the corpus labelling rule, with no learning
//
// All classifiers consume the feature vector produced by profile.Features,
// so the categorical encodings match between training and inference.
//
// # Thread Safety
//
// Training builds the new model without holding the lock and swaps it in
// under the write lock. Prediction takes a shared lock.
package algorithms

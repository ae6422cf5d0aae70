// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

// Package recommend classifies investor profiles into a recommendation category.
//
// # Pipeline
//
// A request flows through three stages:
//
//  1. The Engine obtains the process-lifetime Classifier, training it on a
//     synthetic corpus the first time it is needed.
//  2. The Classifier predicts Conservative, Balanced or Aggressive from the
//     encoded profile.
//  3. ApplyOverride replaces the prediction for two hard-coded investor
//     shapes. The override always runs after the classifier.
//
// Classifier implementations live in the algorithms subpackage and are
// injected through a ClassifierFactory. The corpus subpackage supplies the
// default CorpusSource and the storage subpackage persists trained models.
//
// # Concurrency
//
// Training happens at most once per Engine unless Retrain is called. Callers
// that arrive during the first training run block until it finishes. Retrain
// builds a new classifier and swaps it in atomically, so in-flight requests
// keep the model they started with.
package recommend

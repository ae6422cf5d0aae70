// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package recommend

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/fundwise/internal/profile"
)

// Errors returned by classifiers and the engine.
var (
	// ErrEmptyCorpus is returned when training is attempted without samples.
	// At startup it is fatal.
	ErrEmptyCorpus = errors.New("empty training corpus")

	// ErrNotTrained is returned by Predict before Train has succeeded.
	ErrNotTrained = errors.New("model not trained")

	// ErrTrainingInProgress is returned by Retrain when another retrain holds the lock.
	ErrTrainingInProgress = errors.New("training already in progress")
)

// Classifier is a supervised multi-class model over encoded profiles.
//
// Implementations must be safe for concurrent Predict calls once trained.
type Classifier interface {
	// Name returns the algorithm identifier, e.g. "random_forest".
	Name() string

	// Train fits the model to samples. It returns ErrEmptyCorpus for an empty corpus.
	Train(ctx context.Context, samples []profile.LabeledSample) error

	// Predict classifies p. It returns ErrNotTrained before training.
	Predict(p profile.Profile) (Prediction, error)

	// IsTrained reports whether Predict can be called.
	IsTrained() bool

	// Version increments on every successful Train.
	Version() int
}

// Persistable is implemented by classifiers whose fitted state can be
// written to a snapshot and restored without retraining.
type Persistable interface {
	MarshalModel() ([]byte, error)
	UnmarshalModel(data []byte) error
}

// ClassifierFactory builds an untrained classifier. The engine calls it once
// per training run so a retrain never mutates the model serving requests.
type ClassifierFactory func() (Classifier, error)

// CorpusSource supplies training data.
type CorpusSource interface {
	// Corpus returns a fresh labelled corpus.
	Corpus(ctx context.Context) ([]profile.LabeledSample, error)

	// Fingerprint identifies the corpus distribution. Snapshots trained on a
	// different fingerprint are ignored.
	Fingerprint() string
}

// Prediction is a classifier's raw output for one profile.
type Prediction struct {
	Category      profile.Category             `json:"category"`
	Confidence    float64                      `json:"confidence"`
	Probabilities map[profile.Category]float64 `json:"probabilities"`
}

// Decision is the final classification of a profile: the classifier output
// after the override rule has been applied.
type Decision struct {
	// Category is the final category.
	Category profile.Category `json:"category"`

	// ModelCategory is what the classifier predicted before any override.
	ModelCategory profile.Category `json:"model_category"`

	// Overridden is true when an override rule fired, even if it agreed
	// with ModelCategory.
	Overridden bool `json:"overridden"`

	// OverrideReason names the rule that fired, or is empty.
	OverrideReason OverrideReason `json:"override_reason,omitempty"`

	// Confidence is the classifier's probability for ModelCategory.
	Confidence float64 `json:"confidence"`

	// Probabilities is the classifier's distribution over categories.
	Probabilities map[profile.Category]float64 `json:"probabilities"`

	// Algorithm and ModelVersion identify the model that produced the decision.
	Algorithm    string `json:"algorithm"`
	ModelVersion int    `json:"model_version"`
}

// TrainingStatus represents the current training state.
type TrainingStatus struct {
	Algorithm              string                   `json:"algorithm"`
	Trained                bool                     `json:"trained"`
	IsTraining             bool                     `json:"is_training"`
	ModelVersion           int                      `json:"model_version"`
	LastTrainedAt          time.Time                `json:"last_trained_at,omitempty"`
	LastTrainingDurationMS int64                    `json:"last_training_duration_ms"`
	SampleCount            int                      `json:"sample_count"`
	ClassCounts            map[profile.Category]int `json:"class_counts,omitempty"`
	CorpusFingerprint      string                   `json:"corpus_fingerprint"`
	RestoredFromSnapshot   bool                     `json:"restored_from_snapshot"`
	LastError              string                   `json:"last_error,omitempty"`
}

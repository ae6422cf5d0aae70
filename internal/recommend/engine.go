// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/fundwise/internal/metrics"
	"github.com/tomtom215/fundwise/internal/profile"
	"github.com/tomtom215/fundwise/internal/recommend/storage"
)

// Engine owns the process-lifetime classifier. The model is trained lazily on
// first use, at most once, and reused by every later Classify call until
// Retrain replaces it. It is safe for concurrent use.
type Engine struct {
	config  *Config
	logger  zerolog.Logger
	factory ClassifierFactory
	corpus  CorpusSource
	store   *storage.Store

	// current is nil until the first successful training.
	current atomic.Pointer[Classifier]

	// trainMu serializes training; statusMu guards status.
	trainMu  sync.Mutex
	statusMu sync.RWMutex
	status   TrainingStatus

	classifyCount atomic.Int64
	overrideCount atomic.Int64
}

// NewEngine creates an engine. store may be nil to disable snapshots.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, factory ClassifierFactory, source CorpusSource, store *storage.Store, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if factory == nil {
		return nil, errors.New("classifier factory is required")
	}
	if source == nil {
		return nil, errors.New("corpus source is required")
	}

	return &Engine{
		config:  cfg,
		logger:  logger.With().Str("component", "recommend").Logger(),
		factory: factory,
		corpus:  source,
		store:   store,
		status: TrainingStatus{
			Algorithm:         cfg.Algorithm,
			CorpusFingerprint: source.Fingerprint(),
		},
	}, nil
}

// Warmup trains the model if it is not trained yet. Call it at startup so a
// training failure aborts the process before requests are accepted.
func (e *Engine) Warmup(ctx context.Context) error {
	_, err := e.Model(ctx)
	return err
}

// Model returns the trained classifier, training it on first use.
// Concurrent first callers block until the single training run finishes.
func (e *Engine) Model(ctx context.Context) (Classifier, error) {
	if c := e.current.Load(); c != nil {
		return *c, nil
	}

	e.trainMu.Lock()
	defer e.trainMu.Unlock()

	if c := e.current.Load(); c != nil {
		return *c, nil
	}
	c, err := e.trainLocked(ctx, true)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Retrain draws a fresh corpus and replaces the model. Requests keep using
// the previous model until the new one is ready. It returns
// ErrTrainingInProgress if another training run holds the lock.
func (e *Engine) Retrain(ctx context.Context) error {
	if !e.trainMu.TryLock() {
		return ErrTrainingInProgress
	}
	defer e.trainMu.Unlock()

	_, err := e.trainLocked(ctx, false)
	return err
}

// trainLocked must be called with trainMu held. When allowRestore is true a
// matching snapshot is loaded instead of training.
func (e *Engine) trainLocked(ctx context.Context, allowRestore bool) (Classifier, error) {
	clf, err := e.factory()
	if err != nil {
		return nil, fmt.Errorf("create classifier: %w", err)
	}

	if allowRestore {
		if ok := e.restore(ctx, clf); ok {
			e.install(clf)
			return clf, nil
		}
	}

	start := time.Now()
	e.updateStatus(func(s *TrainingStatus) {
		s.IsTraining = true
		s.LastError = ""
	})
	e.logger.Info().Str("algorithm", clf.Name()).Msg("starting model training")

	samples, err := e.corpus.Corpus(ctx)
	if err == nil && len(samples) == 0 {
		err = ErrEmptyCorpus
	}
	if err == nil {
		err = clf.Train(ctx, samples)
	}
	duration := time.Since(start)

	if err != nil {
		e.updateStatus(func(s *TrainingStatus) {
			s.IsTraining = false
			s.LastError = err.Error()
		})
		metrics.ModelTrainingErrors.WithLabelValues(clf.Name()).Inc()
		e.logger.Error().Err(err).Str("algorithm", clf.Name()).Msg("model training failed")
		return nil, fmt.Errorf("train %s: %w", clf.Name(), err)
	}

	counts := make(map[profile.Category]int, profile.NumCategories)
	for _, s := range samples {
		counts[s.Category]++
	}

	trainedAt := time.Now().UTC()
	e.updateStatus(func(s *TrainingStatus) {
		s.IsTraining = false
		s.Trained = true
		s.ModelVersion++
		s.LastTrainedAt = trainedAt
		s.LastTrainingDurationMS = duration.Milliseconds()
		s.SampleCount = len(samples)
		s.ClassCounts = counts
		s.RestoredFromSnapshot = false
	})
	e.install(clf)

	metrics.ModelTrainingDuration.WithLabelValues(clf.Name()).Observe(duration.Seconds())
	e.logger.Info().
		Str("algorithm", clf.Name()).
		Int("samples", len(samples)).
		Int("conservative", counts[profile.Conservative]).
		Int("balanced", counts[profile.Balanced]).
		Int("aggressive", counts[profile.Aggressive]).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("model training complete")

	e.snapshot(ctx, clf, trainedAt, len(samples), duration)
	return clf, nil
}

func (e *Engine) install(clf Classifier) {
	e.current.Store(&clf)
	metrics.ModelVersion.Set(float64(e.Status().ModelVersion))
}

// restore loads the latest snapshot into clf if one exists for the same
// algorithm and corpus fingerprint. Any failure falls back to training.
func (e *Engine) restore(ctx context.Context, clf Classifier) bool {
	p, ok := clf.(Persistable)
	if e.store == nil || !ok {
		return false
	}

	data, meta, err := e.store.Load(ctx, clf.Name(), 0)
	if err != nil {
		if !errors.Is(err, storage.ErrNoSnapshot) {
			e.logger.Warn().Err(err).Msg("ignoring unreadable model snapshot")
		}
		return false
	}
	if meta.CorpusFingerprint != e.corpus.Fingerprint() {
		e.logger.Info().
			Str("snapshot_fingerprint", meta.CorpusFingerprint).
			Str("corpus_fingerprint", e.corpus.Fingerprint()).
			Msg("model snapshot trained on a different corpus, retraining")
		return false
	}
	if err := p.UnmarshalModel(data); err != nil {
		e.logger.Warn().Err(err).Int("version", meta.Version).Msg("ignoring corrupt model snapshot")
		return false
	}

	e.updateStatus(func(s *TrainingStatus) {
		s.Trained = true
		s.ModelVersion++
		s.LastTrainedAt = meta.TrainedAt
		s.LastTrainingDurationMS = meta.TrainingDurationMS
		s.SampleCount = meta.SampleCount
		s.RestoredFromSnapshot = true
	})
	e.logger.Info().
		Str("algorithm", clf.Name()).
		Int("snapshot_version", meta.Version).
		Time("trained_at", meta.TrainedAt).
		Msg("restored model from snapshot")
	return true
}

// snapshot persists clf when a store is configured. Failures are logged only.
func (e *Engine) snapshot(ctx context.Context, clf Classifier, trainedAt time.Time, samples int, took time.Duration) {
	p, ok := clf.(Persistable)
	if e.store == nil || !ok {
		return
	}

	data, err := p.MarshalModel()
	if err != nil {
		e.logger.Warn().Err(err).Msg("failed to serialize model snapshot")
		return
	}
	meta, err := e.store.Save(ctx, clf.Name(), data, storage.Metadata{
		TrainedAt:          trainedAt,
		SampleCount:        samples,
		CorpusFingerprint:  e.corpus.Fingerprint(),
		TrainingDurationMS: took.Milliseconds(),
	})
	if err != nil {
		e.logger.Warn().Err(err).Msg("failed to save model snapshot")
		return
	}
	if _, err := e.store.Prune(ctx, clf.Name(), e.config.KeepSnapshots); err != nil {
		e.logger.Warn().Err(err).Msg("failed to prune model snapshots")
	}
	e.logger.Debug().Int("version", meta.Version).Int64("size_bytes", meta.SizeBytes).Msg("saved model snapshot")
}

// Predict returns the classifier's raw prediction without the override rule.
func (e *Engine) Predict(ctx context.Context, p profile.Profile) (Prediction, error) {
	if err := p.Validate(); err != nil {
		return Prediction{}, err
	}
	clf, err := e.Model(ctx)
	if err != nil {
		return Prediction{}, err
	}
	return clf.Predict(p)
}

// Classify predicts a category for p and then applies the override rule.
// The override always runs after the classifier and may replace its output.
func (e *Engine) Classify(ctx context.Context, p profile.Profile) (*Decision, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	clf, err := e.Model(ctx)
	if err != nil {
		return nil, err
	}

	pred, err := clf.Predict(p)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}

	final, reason := ApplyOverride(p, pred.Category)
	d := &Decision{
		Category:       final,
		ModelCategory:  pred.Category,
		Overridden:     reason != OverrideNone,
		OverrideReason: reason,
		Confidence:     pred.Confidence,
		Probabilities:  pred.Probabilities,
		Algorithm:      clf.Name(),
		ModelVersion:   e.Status().ModelVersion,
	}

	e.classifyCount.Add(1)
	if d.Overridden {
		e.overrideCount.Add(1)
	}
	metrics.RecordClassification(string(d.Category), string(d.OverrideReason))

	return d, nil
}

// Status returns a copy of the training status.
func (e *Engine) Status() TrainingStatus {
	e.statusMu.RLock()
	defer e.statusMu.RUnlock()

	s := e.status
	if s.ClassCounts != nil {
		counts := make(map[profile.Category]int, len(s.ClassCounts))
		for k, v := range s.ClassCounts {
			counts[k] = v
		}
		s.ClassCounts = counts
	}
	return s
}

// Ready reports whether a trained model is installed.
func (e *Engine) Ready() bool {
	return e.current.Load() != nil
}

// Counts returns the number of Classify calls and how many were overridden.
func (e *Engine) Counts() (classified, overridden int64) {
	return e.classifyCount.Load(), e.overrideCount.Load()
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *Config {
	return e.config.Clone()
}

func (e *Engine) updateStatus(fn func(*TrainingStatus)) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	fn(&e.status)
}

// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Retrainer rebuilds the classifier. *recommend.Engine satisfies it.
type Retrainer interface {
	Retrain(ctx context.Context) error
}

// RetrainService retrains the classifier on a fixed interval. The initial
// training happens before the tree starts, so the first retrain is one
// interval after startup.
type RetrainService struct {
	engine   Retrainer
	interval time.Duration
	timeout  time.Duration
	logger   zerolog.Logger
	name     string
}

// NewRetrainService creates the scheduler. A non-positive interval disables
// retraining: Serve then just waits for shutdown.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRetrainService(engine Retrainer, interval time.Duration, logger zerolog.Logger) *RetrainService {
	return &RetrainService{
		engine:   engine,
		interval: interval,
		timeout:  10 * time.Minute,
		logger:   logger.With().Str("service", "retrain").Logger(),
		name:     "retrain-scheduler",
	}
}

// Serve implements suture.Service. A failed retrain is logged and the
// previous model keeps serving.
func (s *RetrainService) Serve(ctx context.Context) error {
	if s.interval <= 0 {
		s.logger.Debug().Msg("periodic retraining disabled")
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("retrain scheduler running")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.retrain(ctx)
		}
	}
}

func (s *RetrainService) retrain(ctx context.Context) {
	trainCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.engine.Retrain(trainCtx); err != nil {
		s.logger.Warn().Err(err).Msg("scheduled retrain failed, keeping current model")
		return
	}
	s.logger.Info().Dur("duration", time.Since(start)).Msg("scheduled retrain complete")
}

// String returns the service name for logging.
func (s *RetrainService) String() string {
	return s.name
}

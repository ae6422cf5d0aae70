// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package services

import (
	"context"
	"errors"
)

// DeliveryWorker is satisfied by *delivery.Dispatcher.
type DeliveryWorker interface {
	Serve(ctx context.Context) error
}

// DeliveryWorkerService runs the asynchronous report delivery queue.
//
// The dispatcher builds a fresh Watermill router on every Serve, so suture
// can restart it after a router failure without losing the queue.
type DeliveryWorkerService struct {
	worker DeliveryWorker
}

// NewDeliveryWorkerService wraps a dispatcher.
func NewDeliveryWorkerService(worker DeliveryWorker) *DeliveryWorkerService {
	return &DeliveryWorkerService{worker: worker}
}

// Serve implements suture.Service.
func (s *DeliveryWorkerService) Serve(ctx context.Context) error {
	err := s.worker.Serve(ctx)
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// String returns the service name for logging.
func (s *DeliveryWorkerService) String() string {
	return "delivery-worker"
}

// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package funds

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/fundwise/internal/logging"
	"github.com/tomtom215/fundwise/internal/metrics"
)

// maxRemoteBody caps the catalog document size.
const maxRemoteBody = 4 << 20

// BreakerConfig tunes the circuit breaker around the remote catalog.
type BreakerConfig struct {
	// MaxRequests allowed through while half-open.
	MaxRequests uint32
	// Interval after which closed-state counts reset. 0 never resets.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
}

// DefaultBreakerConfig returns conservative defaults for a catalog endpoint
// polled every few minutes.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:         1,
		Interval:            10 * time.Minute,
		Timeout:             time.Minute,
		ConsecutiveFailures: 3,
	}
}

// RemoteSource fetches the JSON catalog format over HTTP through a circuit
// breaker.
type RemoteSource struct {
	url    string
	client *http.Client
	cb     *gobreaker.CircuitBreaker[[]FundRecord]
	name   string
}

// NewRemoteSource creates a remote source. A nil client uses one with the
// given timeout.
func NewRemoteSource(url string, client *http.Client, timeout time.Duration, bc BreakerConfig) *RemoteSource {
	if client == nil {
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	if bc.ConsecutiveFailures == 0 {
		bc.ConsecutiveFailures = DefaultBreakerConfig().ConsecutiveFailures
	}
	cbName := "fund-catalog"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbName).Set(0)

	threshold := bc.ConsecutiveFailures
	cb := gobreaker.NewCircuitBreaker[[]FundRecord](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= threshold
			if trip {
				logging.Warn().
					Str("breaker", cbName).
					Uint32("consecutive_failures", counts.ConsecutiveFailures).
					Msg("opening circuit breaker")
			}
			return trip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", stateToString(from)).
				Str("to", stateToString(to)).
				Msg("circuit breaker state transition")
			metrics.RecordCircuitBreakerTransition(name, stateToString(from), stateToString(to), stateToCode(to))
		},
	})

	return &RemoteSource{url: url, client: client, cb: cb, name: cbName}
}

// Name implements Source.
func (s *RemoteSource) Name() string { return SourceRemote }

// State reports the breaker state as closed, half-open or open.
func (s *RemoteSource) State() string { return stateToString(s.cb.State()) }

// Load implements Source.
func (s *RemoteSource) Load(ctx context.Context) ([]FundRecord, error) {
	records, err := s.cb.Execute(func() ([]FundRecord, error) {
		return s.fetch(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(s.name, "rejected").Inc()
			return nil, fmt.Errorf("%w: %s: %w", ErrCatalogSource, s.url, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(s.name, "failure").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(s.name).Set(float64(s.cb.Counts().ConsecutiveFailures))
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(s.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(s.name).Set(0)
	return records, nil
}

func (s *RemoteSource) fetch(ctx context.Context) ([]FundRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrCatalogSource, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %w", ErrCatalogSource, s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetch %s: unexpected status %d", ErrCatalogSource, s.url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteBody))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrCatalogSource, s.url, err)
	}
	return ParseJSON(body)
}

// stateToCode converts circuit breaker state to numeric value for metrics
func stateToCode(state gobreaker.State) int {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

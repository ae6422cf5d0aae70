// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package delivery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// ErrJobNotFound is returned for an unknown or expired job id.
var ErrJobNotFound = errors.New("delivery job not found")

// ErrEmptyJobID is returned when a job has no id.
var ErrEmptyJobID = errors.New("delivery job id is required")

// JobState is the lifecycle state of an asynchronous delivery.
type JobState string

const (
	JobQueued  JobState = "queued"
	JobSending JobState = "sending"
	JobSent    JobState = "sent"
	JobFailed  JobState = "failed"
)

// Done reports whether the job reached a final state.
func (s JobState) Done() bool {
	return s == JobSent || s == JobFailed
}

// Job is the status record of one asynchronous delivery. Recipient holds the
// masked address only.
type Job struct {
	ID          string     `json:"id"`
	State       JobState   `json:"status"`
	Channel     string     `json:"channel"`
	Recipient   string     `json:"recipient"`
	ErrorCode   string     `json:"error_code,omitempty"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
}

// StatusConfig configures the job status store.
type StatusConfig struct {
	// Dir is the BadgerDB directory. Empty keeps the store in memory.
	Dir string

	// TTL is how long a job record stays queryable. Zero keeps records
	// until the process exits (in memory) or forever (on disk).
	TTL time.Duration
}

const jobKeyPrefix = "job:"

// StatusStore persists job records in BadgerDB. Every write refreshes the
// record's TTL.
type StatusStore struct {
	db  *badger.DB
	ttl time.Duration
}

// OpenStatusStore opens (or creates) the status store.
func OpenStatusStore(cfg StatusConfig) (*StatusStore, error) {
	if cfg.TTL < 0 {
		return nil, fmt.Errorf("status TTL must not be negative: %s", cfg.TTL)
	}

	opts := badger.DefaultOptions(cfg.Dir)
	if cfg.Dir == "" {
		opts = opts.WithInMemory(true)
	}
	// Badger's own logger is noisy at info level.
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open delivery status store: %w", err)
	}
	return &StatusStore{db: db, ttl: cfg.TTL}, nil
}

// Put writes or replaces a job record.
func (s *StatusStore) Put(ctx context.Context, job *Job) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if job.ID == "" {
		return ErrEmptyJobID
	}

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(jobKeyPrefix+job.ID), data)
		if s.ttl > 0 {
			e = e.WithTTL(s.ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("store job %s: %w", job.ID, err)
	}
	return nil
}

// Get returns the job record or ErrJobNotFound.
func (s *StatusStore) Get(ctx context.Context, id string) (*Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if id == "" {
		return nil, ErrJobNotFound
	}

	var job Job
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(jobKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrJobNotFound
		}
		if err != nil {
			return fmt.Errorf("get job: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &job)
		})
	})
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// Update loads a job, applies fn and writes it back in one transaction.
func (s *StatusStore) Update(ctx context.Context, id string, fn func(*Job)) (*Job, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var job Job
	err := s.db.Update(func(txn *badger.Txn) error {
		key := []byte(jobKeyPrefix + id)
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrJobNotFound
		}
		if err != nil {
			return fmt.Errorf("get job: %w", err)
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &job)
		}); err != nil {
			return fmt.Errorf("unmarshal job: %w", err)
		}

		fn(&job)

		data, err := json.Marshal(&job)
		if err != nil {
			return fmt.Errorf("marshal job: %w", err)
		}
		e := badger.NewEntry(key, data)
		if s.ttl > 0 {
			e = e.WithTTL(s.ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return nil, err
	}
	return &job, nil
}

// Count returns the number of live job records.
func (s *StatusStore) Count() (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(jobKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// Close closes the underlying database.
func (s *StatusStore) Close() error {
	return s.db.Close()
}

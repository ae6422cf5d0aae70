// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package funds

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "funds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("Balanced:\n  - name: First\n"), 0o600))

	store := NewStore(NewYAMLSource(path), zerolog.Nop())
	require.NoError(t, store.Reload(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewWatcher(store, path, 10*time.Millisecond).Watch(ctx) }()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("Balanced:\n  - name: Second\n  - name: Third\n"), 0o600))

	require.Eventually(t, func() bool {
		return len(store.Lookup("Balanced")) == 2
	}, 5*time.Second, 20*time.Millisecond)

	// A broken write keeps the last good snapshot.
	require.NoError(t, os.WriteFile(path, []byte(": not yaml ["), 0o600))
	require.Eventually(t, func() bool {
		return store.LastError() != ""
	}, 5*time.Second, 20*time.Millisecond)
	assert.Len(t, store.Lookup("Balanced"), 2)

	cancel()
	err := <-done
	assert.True(t, errors.Is(err, context.Canceled), "Watch() error = %v", err)
}

func TestWatcher_MissingDirectory(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "missing", "funds.csv")
	store := NewStore(NewCSVSource(path), zerolog.Nop())
	err := NewWatcher(store, path, 0).Watch(context.Background())
	assert.Error(t, err)
}

func TestRefresher_Run(t *testing.T) {
	t.Parallel()

	src := &flakySource{records: []FundRecord{{Name: "A", Category: "Balanced"}}}
	store := NewStore(src, zerolog.Nop())
	r := NewRefresher(store, 10*time.Millisecond)
	assert.Equal(t, 10*time.Millisecond, r.Interval())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool { return src.loadCount() >= 2 }, 2*time.Second, 5*time.Millisecond)
	assert.True(t, store.Loaded())

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	assert.Equal(t, 5*time.Minute, NewRefresher(store, 0).Interval())
}

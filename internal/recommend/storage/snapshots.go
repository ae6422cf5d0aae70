// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

// Package storage persists trained classifier snapshots.
//
// A snapshot is the classifier's own serialized state, gzip-compressed and
// stored next to its metadata in a single gob file named
// {algorithm}_v{version}.gob.gz. A SHA-256 checksum of the uncompressed
// state is verified on load.
package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ErrNoSnapshot is returned by Load when no snapshot exists for an algorithm.
var ErrNoSnapshot = errors.New("no snapshot found")

const snapshotExt = ".gob.gz"

// Metadata describes a stored snapshot.
type Metadata struct {
	Algorithm          string    `json:"algorithm"`
	Version            int       `json:"version"`
	TrainedAt          time.Time `json:"trained_at"`
	SavedAt            time.Time `json:"saved_at"`
	SampleCount        int       `json:"sample_count"`
	CorpusFingerprint  string    `json:"corpus_fingerprint"`
	TrainingDurationMS int64     `json:"training_duration_ms"`
	Checksum           string    `json:"checksum"`
	SizeBytes          int64     `json:"size_bytes"`
}

type storedFile struct {
	Metadata       Metadata
	CompressedData []byte
}

// Store manages snapshot files in one directory. It is safe for concurrent use.
type Store struct {
	baseDir string

	mu       sync.RWMutex
	versions map[string]int
}

// NewStore creates baseDir if needed and indexes existing snapshots.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("create snapshot directory: %w", err)
	}

	s := &Store{baseDir: baseDir, versions: make(map[string]int)}
	if err := s.scan(); err != nil {
		return nil, fmt.Errorf("scan snapshots: %w", err)
	}
	return s, nil
}

// Dir returns the snapshot directory.
func (s *Store) Dir() string {
	return s.baseDir
}

func (s *Store) scan() error {
	found, err := s.listVersions()
	if err != nil {
		return err
	}
	for name, versions := range found {
		s.versions[name] = versions[0]
	}
	return nil
}

// listVersions returns every version per algorithm, newest first.
func (s *Store) listVersions() (map[string][]int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]int)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, version, ok := parseSnapshotName(entry.Name())
		if !ok {
			continue
		}
		out[name] = append(out[name], version)
	}
	for name := range out {
		sort.Sort(sort.Reverse(sort.IntSlice(out[name])))
	}
	return out, nil
}

// parseSnapshotName splits "random_forest_v3.gob.gz" into ("random_forest", 3).
func parseSnapshotName(filename string) (string, int, bool) {
	base, ok := strings.CutSuffix(filename, snapshotExt)
	if !ok {
		return "", 0, false
	}
	idx := strings.LastIndex(base, "_v")
	if idx <= 0 {
		return "", 0, false
	}
	version, err := strconv.Atoi(base[idx+2:])
	if err != nil || version < 1 {
		return "", 0, false
	}
	return base[:idx], version, true
}

func (s *Store) path(name string, version int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_v%d%s", name, version, snapshotExt))
}

// Save writes data as the next version of name and returns the completed
// metadata. The file is written to a temporary name and renamed into place.
//
//nolint:gocritic // meta passed by value is acceptable for this write operation
func (s *Store) Save(ctx context.Context, name string, data []byte, meta Metadata) (Metadata, error) {
	if err := ctx.Err(); err != nil {
		return Metadata{}, err
	}
	if name == "" || strings.ContainsAny(name, `/\`) {
		return Metadata{}, fmt.Errorf("invalid snapshot name %q", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sum := sha256.Sum256(data)

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(data); err != nil {
		return Metadata{}, fmt.Errorf("compress snapshot: %w", err)
	}
	if err := gzw.Close(); err != nil {
		return Metadata{}, fmt.Errorf("finalize compression: %w", err)
	}

	meta.Algorithm = name
	meta.Version = s.versions[name] + 1
	meta.Checksum = hex.EncodeToString(sum[:])
	meta.SizeBytes = int64(compressed.Len())
	meta.SavedAt = time.Now().UTC()

	tmp, err := os.CreateTemp(s.baseDir, ".snapshot-*")
	if err != nil {
		return Metadata{}, fmt.Errorf("create snapshot file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }() //nolint:errcheck // no-op after a successful rename

	if err := gob.NewEncoder(tmp).Encode(storedFile{Metadata: meta, CompressedData: compressed.Bytes()}); err != nil {
		_ = tmp.Close() //nolint:errcheck // encode error takes precedence
		return Metadata{}, fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return Metadata{}, fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.path(name, meta.Version)); err != nil {
		return Metadata{}, fmt.Errorf("install snapshot: %w", err)
	}

	s.versions[name] = meta.Version
	return meta, nil
}

// Load reads a snapshot. Version 0 selects the latest.
func (s *Store) Load(ctx context.Context, name string, version int) ([]byte, *Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if version == 0 {
		latest, ok := s.versions[name]
		if !ok {
			return nil, nil, fmt.Errorf("%s: %w", name, ErrNoSnapshot)
		}
		version = latest
	}

	sf, err := readStoredFile(s.path(name, version))
	if err != nil {
		return nil, nil, err
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, nil, fmt.Errorf("decompress snapshot: %w", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // read already completed

	data, err := io.ReadAll(gzr)
	if err != nil {
		return nil, nil, fmt.Errorf("read decompressed snapshot: %w", err)
	}

	sum := sha256.Sum256(data)
	if got := hex.EncodeToString(sum[:]); got != sf.Metadata.Checksum {
		return nil, nil, fmt.Errorf("checksum mismatch: expected %s, got %s", sf.Metadata.Checksum, got)
	}
	return data, &sf.Metadata, nil
}

func readStoredFile(path string) (*storedFile, error) {
	f, err := os.Open(path) //nolint:gosec // path is built from the store directory and a validated name
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // read-only file

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return &sf, nil
}

// Latest returns the newest version number for name.
func (s *Store) Latest(name string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.versions[name]
	return v, ok
}

// List returns metadata for the latest snapshot of every algorithm.
func (s *Store) List(ctx context.Context) ([]Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Metadata, 0, len(s.versions))
	for name, version := range s.versions {
		sf, err := readStoredFile(s.path(name, version))
		if err != nil {
			continue
		}
		out = append(out, sf.Metadata)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Algorithm < out[j].Algorithm })
	return out, nil
}

// Prune removes all but the newest keep versions of name. keep < 1 is treated as 1.
func (s *Store) Prune(ctx context.Context, name string, keep int) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if keep < 1 {
		keep = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.listVersions()
	if err != nil {
		return 0, fmt.Errorf("read snapshot directory: %w", err)
	}

	removed := 0
	versions := all[name]
	for i := keep; i < len(versions); i++ {
		if err := os.Remove(s.path(name, versions[i])); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, fmt.Errorf("remove snapshot v%d: %w", versions[i], err)
		}
		removed++
	}
	return removed, nil
}

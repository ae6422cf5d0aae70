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
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadedEmbeddedStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(EmbeddedSource{}, zerolog.Nop())
	require.NoError(t, s.Reload(context.Background()))
	return s
}

func TestEmbeddedCatalog(t *testing.T) {
	t.Parallel()

	s := loadedEmbeddedStore(t)

	assert.Equal(t, []string{"Conservative", "Balanced", "Aggressive"}, s.Categories())
	for _, c := range s.Categories() {
		records := s.Lookup(c)
		assert.Len(t, records, 4, "category %s", c)
		for _, r := range records {
			assert.Equal(t, c, r.Category)
			assert.NotEmpty(t, r.Name)
			assert.True(t, strings.HasPrefix(r.ETMoneyLink, "https://www.etmoney.com/"), r.ETMoneyLink)
			assert.True(t, strings.HasPrefix(r.GrowwLink, "https://groww.in/"), r.GrowwLink)
		}
	}
}

func TestLookup_Normalization(t *testing.T) {
	t.Parallel()

	s := loadedEmbeddedStore(t)
	want := s.Lookup("Conservative")

	for _, in := range []string{"conservative", "  CONSERVATIVE ", "Conservative\t"} {
		assert.Equal(t, want, s.Lookup(in), "input %q", in)
	}
}

func TestLookup_UnknownCategory(t *testing.T) {
	t.Parallel()

	s := loadedEmbeddedStore(t)
	for _, in := range []string{"Speculative", "", "balanced-ish"} {
		got := s.Lookup(in)
		require.NotNil(t, got, "input %q", in)
		assert.Empty(t, got, "input %q", in)
	}
}

func TestLookup_BeforeLoad(t *testing.T) {
	t.Parallel()

	s := NewStore(EmbeddedSource{}, zerolog.Nop())
	assert.False(t, s.Loaded())
	got := s.Lookup("Balanced")
	require.NotNil(t, got)
	assert.Empty(t, got)
	_, err := s.All()
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestLookup_ReturnsCopy(t *testing.T) {
	t.Parallel()

	s := loadedEmbeddedStore(t)
	got := s.Lookup("Aggressive")
	got[0].Name = "mutated"
	assert.NotEqual(t, "mutated", s.Lookup("Aggressive")[0].Name)
}

func TestParseCSV(t *testing.T) {
	t.Parallel()

	t.Run("reordered and extra columns", func(t *testing.T) {
		t.Parallel()
		in := "Category,Fund Name,Notes,Rating\nBalanced,Alpha Hybrid,ignore me,4\n"
		records, err := ParseCSV(strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, FundRecord{Name: "Alpha Hybrid", Category: "Balanced", Rating: "4"}, records[0])
	})

	t.Run("missing name", func(t *testing.T) {
		t.Parallel()
		_, err := ParseCSV(strings.NewReader("Fund Name,Category\n,Balanced\n"))
		assert.ErrorIs(t, err, ErrCatalogSource)
	})

	t.Run("header only", func(t *testing.T) {
		t.Parallel()
		_, err := ParseCSV(strings.NewReader("Fund Name,Category\n"))
		assert.ErrorIs(t, err, ErrCatalogSource)
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		_, err := ParseCSV(strings.NewReader(""))
		assert.ErrorIs(t, err, ErrCatalogSource)
	})
}

func TestParseJSON(t *testing.T) {
	t.Parallel()

	t.Run("array", func(t *testing.T) {
		t.Parallel()
		records, err := ParseJSON([]byte(`[{"name":"A","category":"Balanced","returns":"12%"}]`))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "12%", records[0].Returns)
	})

	t.Run("keyed by category", func(t *testing.T) {
		t.Parallel()
		records, err := ParseJSON([]byte(`{"Conservative":[{"name":"Gilt"}],"Aggressive":[{"name":"Small Cap"}]}`))
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "Aggressive", records[0].Category)
		assert.Equal(t, "Conservative", records[1].Category)
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()
		_, err := ParseJSON([]byte(`{"Balanced": 3}`))
		assert.ErrorIs(t, err, ErrCatalogSource)
	})

	t.Run("blank", func(t *testing.T) {
		t.Parallel()
		_, err := ParseJSON([]byte("  "))
		assert.ErrorIs(t, err, ErrCatalogSource)
	})
}

func TestParseYAML(t *testing.T) {
	t.Parallel()

	t.Run("mapping", func(t *testing.T) {
		t.Parallel()
		doc := "Balanced:\n  - name: Hybrid One\n    rating: \"5\"\n    risk: Very High\n"
		records, err := ParseYAML([]byte(doc))
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, FundRecord{Name: "Hybrid One", Rating: "5", Risk: "Very High", Category: "Balanced"}, records[0])
	})

	t.Run("sequence", func(t *testing.T) {
		t.Parallel()
		doc := "- name: Liquid\n  category: Conservative\n- name: Flexi\n  category: Aggressive\n"
		records, err := ParseYAML([]byte(doc))
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("scalar root", func(t *testing.T) {
		t.Parallel()
		_, err := ParseYAML([]byte("just a string"))
		assert.ErrorIs(t, err, ErrCatalogSource)
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		_, err := ParseYAML(nil)
		assert.ErrorIs(t, err, ErrCatalogSource)
	})
}

func TestFileSources(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	files := map[string]string{
		"funds.csv":  "Fund Name,Category\nAlpha,Balanced\n",
		"funds.json": `[{"name":"Alpha","category":"Balanced"}]`,
		"funds.yaml": "Balanced:\n  - name: Alpha\n",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}

	tests := []struct {
		source FileSource
		name   string
	}{
		{NewCSVSource(filepath.Join(dir, "funds.csv")), SourceCSV},
		{NewJSONSource(filepath.Join(dir, "funds.json")), SourceJSON},
		{NewYAMLSource(filepath.Join(dir, "funds.yaml")), SourceYAML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.name, tt.source.Name())
			s := NewStore(tt.source, zerolog.Nop())
			require.NoError(t, s.Reload(context.Background()))
			got := s.Lookup("balanced")
			require.Len(t, got, 1)
			assert.Equal(t, "Alpha", got[0].Name)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := NewCSVSource(filepath.Join(dir, "nope.csv")).Load(context.Background())
		assert.ErrorIs(t, err, ErrCatalogSource)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

// flakySource fails whenever fail is set.
type flakySource struct {
	mu      sync.Mutex
	fail    bool
	records []FundRecord
	loads   int
}

func (f *flakySource) Name() string { return "flaky" }

func (f *flakySource) Load(ctx context.Context) ([]FundRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.fail {
		return nil, errors.New("backend down")
	}
	return f.records, nil
}

func (f *flakySource) set(fail bool, records []FundRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
	f.records = records
}

func (f *flakySource) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

func TestStore_KeepsLastGoodSnapshot(t *testing.T) {
	t.Parallel()

	src := &flakySource{}
	s := NewStore(src, zerolog.Nop())

	src.set(true, nil)
	require.Error(t, s.Reload(context.Background()))
	assert.False(t, s.Loaded())
	assert.Contains(t, s.LastError(), "backend down")

	src.set(false, []FundRecord{{Name: "One", Category: "Balanced"}})
	require.NoError(t, s.Reload(context.Background()))
	assert.Empty(t, s.LastError())

	src.set(true, nil)
	require.Error(t, s.Reload(context.Background()))
	assert.Len(t, s.Lookup("Balanced"), 1, "failed reload must not empty the catalog")
	assert.NotEmpty(t, s.LastError())
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"default embedded", Config{}, false},
		{"embedded", Config{Source: SourceEmbedded}, false},
		{"csv with path", Config{Source: SourceCSV, Path: "f.csv"}, false},
		{"csv without path", Config{Source: SourceCSV}, true},
		{"yaml without path", Config{Source: SourceYAML}, true},
		{"remote with url", Config{Source: SourceRemote, URL: "https://example.com/funds.json"}, false},
		{"remote without url", Config{Source: SourceRemote}, true},
		{"remote cannot watch", Config{Source: SourceRemote, URL: "https://x", Watch: true}, true},
		{"unknown", Config{Source: "ftp"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewSource(t *testing.T) {
	t.Parallel()

	src, err := NewSource(&Config{}, nil)
	require.NoError(t, err)
	assert.Equal(t, SourceEmbedded, src.Name())

	src, err = NewSource(&Config{Source: SourceYAML, Path: "x.yaml"}, nil)
	require.NoError(t, err)
	fs, ok := src.(FileSource)
	require.True(t, ok)
	assert.Equal(t, "x.yaml", fs.Path())

	_, err = NewSource(&Config{Source: "carrier-pigeon"}, nil)
	assert.Error(t, err)
}

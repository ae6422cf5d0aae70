// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package funds

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Source names accepted in Config.Source.
const (
	SourceEmbedded = "embedded"
	SourceCSV      = "csv"
	SourceJSON     = "json"
	SourceYAML     = "yaml"
	SourceRemote   = "remote"
)

// Source loads the full list of fund records from one backend.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]FundRecord, error)
}

// FileSource is a Source backed by a local file that can be watched.
type FileSource interface {
	Source
	Path() string
}

//go:embed data/fund_data.csv
var embeddedCSV []byte

// csvColumns maps header names to record fields. Headers are matched
// case-insensitively.
var csvColumns = map[string]func(*FundRecord, string){
	"fund name":    func(r *FundRecord, v string) { r.Name = v },
	"returns":      func(r *FundRecord, v string) { r.Returns = v },
	"rating":       func(r *FundRecord, v string) { r.Rating = v },
	"risk":         func(r *FundRecord, v string) { r.Risk = v },
	"category":     func(r *FundRecord, v string) { r.Category = v },
	"etmoney link": func(r *FundRecord, v string) { r.ETMoneyLink = v },
	"groww link":   func(r *FundRecord, v string) { r.GrowwLink = v },
}

// EmbeddedSource serves the catalog compiled into the binary.
type EmbeddedSource struct{}

// Name implements Source.
func (EmbeddedSource) Name() string { return SourceEmbedded }

// Load implements Source.
func (EmbeddedSource) Load(ctx context.Context) ([]FundRecord, error) {
	return ParseCSV(bytes.NewReader(embeddedCSV))
}

// fileSource reads and parses a file on every Load.
type fileSource struct {
	name  string
	path  string
	parse func([]byte) ([]FundRecord, error)
}

// NewCSVSource reads Fund Name,Returns,Rating,Risk,Category,ETMoney Link,Groww Link rows.
func NewCSVSource(path string) FileSource {
	return &fileSource{name: SourceCSV, path: path, parse: func(b []byte) ([]FundRecord, error) {
		return ParseCSV(bytes.NewReader(b))
	}}
}

// NewJSONSource reads an array of records or an object keyed by category.
func NewJSONSource(path string) FileSource {
	return &fileSource{name: SourceJSON, path: path, parse: ParseJSON}
}

// NewYAMLSource reads a mapping keyed by category or a sequence of records.
func NewYAMLSource(path string) FileSource {
	return &fileSource{name: SourceYAML, path: path, parse: ParseYAML}
}

func (s *fileSource) Name() string { return s.name }
func (s *fileSource) Path() string { return s.path }

func (s *fileSource) Load(ctx context.Context) ([]FundRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrCatalogSource, s.path, err)
	}
	return s.parse(data)
}

// ParseCSV parses the catalog CSV format. Unknown columns are ignored.
func ParseCSV(r io.Reader) ([]FundRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read csv header: %w", ErrCatalogSource, err)
	}
	setters := make([]func(*FundRecord, string), len(header))
	for i, h := range header {
		setters[i] = csvColumns[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))]
	}

	var records []FundRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: csv line %d: %w", ErrCatalogSource, line, err)
		}
		var rec FundRecord
		for i, v := range row {
			if i < len(setters) && setters[i] != nil {
				setters[i](&rec, strings.TrimSpace(v))
			}
		}
		records = append(records, rec)
	}
	return records, validateRecords(records)
}

// ParseJSON parses either [{...}, ...] or {"Category": [{...}], ...}.
// In the keyed form a record's category defaults to its key.
func ParseJSON(data []byte) ([]FundRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty json document", ErrCatalogSource)
	}

	if trimmed[0] == '[' {
		var records []FundRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("%w: decode json: %w", ErrCatalogSource, err)
		}
		return records, validateRecords(records)
	}

	var keyed map[string][]FundRecord
	if err := json.Unmarshal(trimmed, &keyed); err != nil {
		return nil, fmt.Errorf("%w: decode json: %w", ErrCatalogSource, err)
	}
	records := flattenKeyed(keyed)
	return records, validateRecords(records)
}

// ParseYAML parses a mapping keyed by category or a sequence of records.
func ParseYAML(data []byte) ([]FundRecord, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode yaml: %w", ErrCatalogSource, err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("%w: empty yaml document", ErrCatalogSource)
	}

	root := doc.Content[0]
	var records []FundRecord
	switch root.Kind {
	case yaml.SequenceNode:
		if err := root.Decode(&records); err != nil {
			return nil, fmt.Errorf("%w: decode yaml: %w", ErrCatalogSource, err)
		}
	case yaml.MappingNode:
		var keyed map[string][]FundRecord
		if err := root.Decode(&keyed); err != nil {
			return nil, fmt.Errorf("%w: decode yaml: %w", ErrCatalogSource, err)
		}
		records = flattenKeyed(keyed)
	default:
		return nil, fmt.Errorf("%w: yaml root must be a mapping or sequence", ErrCatalogSource)
	}
	return records, validateRecords(records)
}

// flattenKeyed turns a category-keyed document into records, with keys in
// sorted order so repeated loads produce the same snapshot.
func flattenKeyed(keyed map[string][]FundRecord) []FundRecord {
	keys := make([]string, 0, len(keyed))
	for k := range keyed {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var records []FundRecord
	for _, k := range keys {
		for _, r := range keyed[k] {
			if strings.TrimSpace(r.Category) == "" {
				r.Category = k
			}
			records = append(records, r)
		}
	}
	return records
}

func validateRecords(records []FundRecord) error {
	if len(records) == 0 {
		return fmt.Errorf("%w: catalog has no funds", ErrCatalogSource)
	}
	for i, r := range records {
		if strings.TrimSpace(r.Name) == "" {
			return fmt.Errorf("%w: record %d has no fund name", ErrCatalogSource, i+1)
		}
		if strings.TrimSpace(r.Category) == "" {
			return fmt.Errorf("%w: fund %q has no category", ErrCatalogSource, r.Name)
		}
	}
	return nil
}

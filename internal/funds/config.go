// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package funds

import (
	"fmt"
	"net/http"
	"time"
)

// Config selects and tunes the catalog backend.
type Config struct {
	Source          string
	Path            string
	URL             string
	Watch           bool
	RefreshInterval time.Duration
	Timeout         time.Duration
	Breaker         BreakerConfig
}

// Validate checks that the selected source has what it needs.
func (c *Config) Validate() error {
	switch c.Source {
	case SourceEmbedded, "":
	case SourceCSV, SourceJSON, SourceYAML:
		if c.Path == "" {
			return fmt.Errorf("funds.path is required for source %q", c.Source)
		}
	case SourceRemote:
		if c.URL == "" {
			return fmt.Errorf("funds.url is required for source %q", c.Source)
		}
		if c.Watch {
			return fmt.Errorf("funds.watch is only supported for file sources")
		}
	default:
		return fmt.Errorf("unknown funds.source %q", c.Source)
	}
	return nil
}

// NewSource builds the Source named by cfg.Source. client is used by the
// remote source and may be nil.
func NewSource(cfg *Config, client *http.Client) (Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Source {
	case SourceCSV:
		return NewCSVSource(cfg.Path), nil
	case SourceJSON:
		return NewJSONSource(cfg.Path), nil
	case SourceYAML:
		return NewYAMLSource(cfg.Path), nil
	case SourceRemote:
		return NewRemoteSource(cfg.URL, client, cfg.Timeout, cfg.Breaker), nil
	default:
		return EmbeddedSource{}, nil
	}
}

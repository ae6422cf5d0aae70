// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/fundwise/internal/delivery"
	"github.com/tomtom215/fundwise/internal/funds"
	"github.com/tomtom215/fundwise/internal/logging"
	"github.com/tomtom215/fundwise/internal/recommend"
	"github.com/tomtom215/fundwise/internal/recommend/corpus"
	"github.com/tomtom215/fundwise/internal/report"
)

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults for every setting
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any mapped setting
//
// A .env file in the working directory is read before step 3 and only fills
// variables that are not already set in the process environment.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
	Recommend RecommendConfig `koanf:"recommend"`
	Funds     FundsConfig     `koanf:"funds"`
	Report    ReportConfig    `koanf:"report"`
	Delivery  DeliveryConfig  `koanf:"delivery"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	CORSOrigins     []string      `koanf:"cors_origins"`

	// RateLimitRequests per RateLimitWindow per client IP on the
	// recommendation endpoints. Zero disables the limit.
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

// Addr returns host:port for net/http.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `koanf:"level"`

	// Format is json or console.
	Format string `koanf:"format"`

	// Caller adds file:line to each event.
	Caller bool `koanf:"caller"`
}

// RecommendConfig holds classifier and corpus settings.
type RecommendConfig struct {
	Algorithm       string `koanf:"algorithm"`
	Trees           int    `koanf:"trees"`
	MaxDepth        int    `koanf:"max_depth"`
	MinSamplesSplit int    `koanf:"min_samples_split"`
	MinSamplesLeaf  int    `koanf:"min_samples_leaf"`
	MaxFeatures     int    `koanf:"max_features"`
	Workers         int    `koanf:"workers"`
	Seed            int64  `koanf:"seed"`

	// ModelDir holds trained model snapshots. Empty disables snapshots.
	ModelDir      string `koanf:"model_dir"`
	KeepSnapshots int    `koanf:"keep_snapshots"`

	// RetrainInterval periodically rebuilds the model. Zero disables it.
	RetrainInterval time.Duration `koanf:"retrain_interval"`

	Corpus CorpusConfig `koanf:"corpus"`
}

// CorpusConfig holds synthetic training corpus settings.
type CorpusConfig struct {
	Size       int   `koanf:"size"`
	Seed       int64 `koanf:"seed"`
	AgeMin     int   `koanf:"age_min"`
	AgeMax     int   `koanf:"age_max"`
	IncomeMin  int   `koanf:"income_min"`
	IncomeMax  int   `koanf:"income_max"`
	SavingsMin int   `koanf:"savings_min"`
	SavingsMax int   `koanf:"savings_max"`
}

// FundsConfig holds fund catalog settings.
type FundsConfig struct {
	// Source is embedded, csv, json, yaml or remote.
	Source string `koanf:"source"`
	Path   string `koanf:"path"`
	URL    string `koanf:"url"`

	// Watch reloads a file source when it changes on disk.
	Watch         bool          `koanf:"watch"`
	WatchDebounce time.Duration `koanf:"watch_debounce"`

	// RefreshInterval periodically reloads the catalog. Zero disables it.
	RefreshInterval time.Duration `koanf:"refresh_interval"`
	Timeout         time.Duration `koanf:"timeout"`

	Breaker BreakerConfig `koanf:"breaker"`
}

// BreakerConfig tunes the remote catalog circuit breaker.
type BreakerConfig struct {
	MaxRequests         uint32        `koanf:"max_requests"`
	Interval            time.Duration `koanf:"interval"`
	Timeout             time.Duration `koanf:"timeout"`
	ConsecutiveFailures uint32        `koanf:"consecutive_failures"`
}

// ReportConfig holds PDF report settings.
type ReportConfig struct {
	Enabled  bool   `koanf:"enabled"`
	Title    string `koanf:"title"`
	Author   string `koanf:"author"`
	Compress bool   `koanf:"compress"`
}

// DeliveryConfig holds report delivery settings.
type DeliveryConfig struct {
	Enabled       bool        `koanf:"enabled"`
	SMTP          SMTPConfig  `koanf:"smtp"`
	RatePerMinute int         `koanf:"rate_per_minute"`
	Async         AsyncConfig `koanf:"async"`
}

// SMTPConfig holds outgoing mail server settings. Credentials are only ever
// read from the config file or the environment.
type SMTPConfig struct {
	Host     string        `koanf:"host"`
	Port     int           `koanf:"port"`
	Username string        `koanf:"username"`
	Password string        `koanf:"password"`
	From     string        `koanf:"from"`
	FromName string        `koanf:"from_name"`
	UseTLS   bool          `koanf:"use_tls"`
	Timeout  time.Duration `koanf:"timeout"`
}

// AsyncConfig holds queued delivery settings.
type AsyncConfig struct {
	Enabled bool `koanf:"enabled"`

	// StatusDir is the BadgerDB directory for job status. Empty keeps job
	// status in memory.
	StatusDir  string        `koanf:"status_dir"`
	StatusTTL  time.Duration `koanf:"status_ttl"`
	JobTimeout time.Duration `koanf:"job_timeout"`
}

// LoggingSettings converts the logging section for logging.Init.
func (c *Config) LoggingSettings() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = c.Logging.Level
	lc.Format = c.Logging.Format
	lc.Caller = c.Logging.Caller
	return lc
}

// RecommendSettings converts the recommend section to an engine config.
func (c *Config) RecommendSettings() *recommend.Config {
	r := c.Recommend
	return &recommend.Config{
		Algorithm: r.Algorithm,
		Forest: recommend.ForestConfig{
			Trees:           r.Trees,
			MaxDepth:        r.MaxDepth,
			MinSamplesSplit: r.MinSamplesSplit,
			MinSamplesLeaf:  r.MinSamplesLeaf,
			MaxFeatures:     r.MaxFeatures,
			Workers:         r.Workers,
		},
		Corpus: corpus.Config{
			Size:       r.Corpus.Size,
			Seed:       r.Corpus.Seed,
			AgeMin:     r.Corpus.AgeMin,
			AgeMax:     r.Corpus.AgeMax,
			IncomeMin:  r.Corpus.IncomeMin,
			IncomeMax:  r.Corpus.IncomeMax,
			SavingsMin: r.Corpus.SavingsMin,
			SavingsMax: r.Corpus.SavingsMax,
		},
		ModelDir:      r.ModelDir,
		KeepSnapshots: r.KeepSnapshots,
		Seed:          r.Seed,
	}
}

// FundsSettings converts the funds section to a catalog config.
func (c *Config) FundsSettings() *funds.Config {
	f := c.Funds
	return &funds.Config{
		Source:          f.Source,
		Path:            f.Path,
		URL:             f.URL,
		Watch:           f.Watch,
		RefreshInterval: f.RefreshInterval,
		Timeout:         f.Timeout,
		Breaker: funds.BreakerConfig{
			MaxRequests:         f.Breaker.MaxRequests,
			Interval:            f.Breaker.Interval,
			Timeout:             f.Breaker.Timeout,
			ConsecutiveFailures: f.Breaker.ConsecutiveFailures,
		},
	}
}

// ReportSettings converts the report section to a renderer config.
func (c *Config) ReportSettings() report.Config {
	return report.Config{
		Title:    c.Report.Title,
		Author:   c.Report.Author,
		Compress: c.Report.Compress,
	}
}

// SMTPSettings converts the SMTP section for the email channel.
func (c *Config) SMTPSettings() delivery.SMTPConfig {
	s := c.Delivery.SMTP
	return delivery.SMTPConfig{
		Host:     s.Host,
		Port:     s.Port,
		Username: s.Username,
		Password: s.Password,
		From:     s.From,
		FromName: s.FromName,
		UseTLS:   s.UseTLS,
		Timeout:  s.Timeout,
	}
}

// DispatcherSettings converts the delivery section for the dispatcher.
func (c *Config) DispatcherSettings() delivery.DispatcherConfig {
	dc := delivery.DefaultDispatcherConfig()
	dc.RatePerMinute = c.Delivery.RatePerMinute
	if c.Delivery.Async.JobTimeout > 0 {
		dc.JobTimeout = c.Delivery.Async.JobTimeout
	}
	return dc
}

// StatusSettings converts the async section for the job status store.
func (c *Config) StatusSettings() delivery.StatusConfig {
	return delivery.StatusConfig{
		Dir: c.Delivery.Async.StatusDir,
		TTL: c.Delivery.Async.StatusTTL,
	}
}

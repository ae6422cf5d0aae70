// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/fundwise/internal/funds"
	"github.com/tomtom215/fundwise/internal/recommend"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/fundwise/config.yaml",
	"/etc/fundwise/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// DotEnvPathEnvVar overrides the .env file location.
const DotEnvPathEnvVar = "DOTENV_PATH"

// defaultConfig returns a Config struct with all default values.
func defaultConfig() *Config {
	rd := recommend.DefaultConfig()
	fb := funds.DefaultBreakerConfig()

	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
			ShutdownTimeout:   10 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 60,
			RateLimitWindow:   time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Recommend: RecommendConfig{
			Algorithm:       rd.Algorithm,
			Trees:           rd.Forest.Trees,
			MaxDepth:        rd.Forest.MaxDepth,
			MinSamplesSplit: rd.Forest.MinSamplesSplit,
			MinSamplesLeaf:  rd.Forest.MinSamplesLeaf,
			Seed:            rd.Seed,
			ModelDir:        "",
			KeepSnapshots:   rd.KeepSnapshots,
			RetrainInterval: 0,
			Corpus: CorpusConfig{
				Size:       rd.Corpus.Size,
				Seed:       rd.Corpus.Seed,
				AgeMin:     rd.Corpus.AgeMin,
				AgeMax:     rd.Corpus.AgeMax,
				IncomeMin:  rd.Corpus.IncomeMin,
				IncomeMax:  rd.Corpus.IncomeMax,
				SavingsMin: rd.Corpus.SavingsMin,
				SavingsMax: rd.Corpus.SavingsMax,
			},
		},
		Funds: FundsConfig{
			Source:          funds.SourceEmbedded,
			Watch:           false,
			WatchDebounce:   250 * time.Millisecond,
			RefreshInterval: 0,
			Timeout:         10 * time.Second,
			Breaker: BreakerConfig{
				MaxRequests:         fb.MaxRequests,
				Interval:            fb.Interval,
				Timeout:             fb.Timeout,
				ConsecutiveFailures: fb.ConsecutiveFailures,
			},
		},
		Report: ReportConfig{
			Enabled:  true,
			Title:    "Investment Recommendation Report",
			Author:   "Fundwise",
			Compress: true,
		},
		Delivery: DeliveryConfig{
			Enabled: false, // opt-in: needs an SMTP server
			SMTP: SMTPConfig{
				Port:     587,
				FromName: "Fundwise",
				UseTLS:   true,
				Timeout:  30 * time.Second,
			},
			RatePerMinute: 30,
			Async: AsyncConfig{
				Enabled:    false,
				StatusDir:  "",
				StatusTTL:  24 * time.Hour,
				JobTimeout: 2 * time.Minute,
			},
		},
	}
}

// Load loads configuration using Koanf v2 with layered sources:
//  1. Defaults
//  2. Config File: optional YAML file
//  3. Environment Variables, after filling unset ones from .env
//
// The result is validated before it is returned.
func Load() (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// SMTP_PASSWORD -> delivery.smtp.password
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// loadDotEnv reads .env (or DOTENV_PATH) into the process environment.
// godotenv.Load never overrides variables that are already set. A missing
// default file is not an error; a missing explicit one is.
func loadDotEnv() error {
	path := os.Getenv(DotEnvPathEnvVar)
	explicit := path != ""
	if !explicit {
		path = ".env"
	}

	err := godotenv.Load(path)
	if err == nil {
		return nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"cors_origins":          "server.cors_origins",
	"rate_limit_requests":   "server.rate_limit_requests",
	"rate_limit_window":     "server.rate_limit_window",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Classifier
	"recommend_algorithm":         "recommend.algorithm",
	"recommend_trees":             "recommend.trees",
	"recommend_max_depth":         "recommend.max_depth",
	"recommend_min_samples_split": "recommend.min_samples_split",
	"recommend_min_samples_leaf":  "recommend.min_samples_leaf",
	"recommend_max_features":      "recommend.max_features",
	"recommend_workers":           "recommend.workers",
	"recommend_seed":              "recommend.seed",
	"recommend_model_dir":         "recommend.model_dir",
	"recommend_keep_snapshots":    "recommend.keep_snapshots",
	"recommend_retrain_interval":  "recommend.retrain_interval",
	"corpus_size":                 "recommend.corpus.size",
	"corpus_seed":                 "recommend.corpus.seed",

	// Fund catalog
	"funds_source":            "funds.source",
	"funds_path":              "funds.path",
	"funds_url":               "funds.url",
	"funds_watch":             "funds.watch",
	"funds_watch_debounce":    "funds.watch_debounce",
	"funds_refresh_interval":  "funds.refresh_interval",
	"funds_timeout":           "funds.timeout",
	"funds_breaker_failures":  "funds.breaker.consecutive_failures",
	"funds_breaker_timeout":   "funds.breaker.timeout",
	"funds_breaker_interval":  "funds.breaker.interval",
	"funds_breaker_half_open": "funds.breaker.max_requests",

	// Report
	"report_enabled":  "report.enabled",
	"report_title":    "report.title",
	"report_author":   "report.author",
	"report_compress": "report.compress",

	// Delivery
	"delivery_enabled":         "delivery.enabled",
	"delivery_rate_per_minute": "delivery.rate_per_minute",
	"smtp_host":                "delivery.smtp.host",
	"smtp_port":                "delivery.smtp.port",
	"smtp_username":            "delivery.smtp.username",
	"smtp_password":            "delivery.smtp.password",
	"smtp_from":                "delivery.smtp.from",
	"smtp_from_name":           "delivery.smtp.from_name",
	"smtp_use_tls":             "delivery.smtp.use_tls",
	"smtp_timeout":             "delivery.smtp.timeout",
	"delivery_async_enabled":   "delivery.async.enabled",
	"delivery_status_dir":      "delivery.async.status_dir",
	"delivery_status_ttl":      "delivery.async.status_ttl",
	"delivery_job_timeout":     "delivery.async.job_timeout",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - LOG_LEVEL -> logging.level
//   - FUNDS_SOURCE -> funds.source
//   - SMTP_PASSWORD -> delivery.smtp.password
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	// Unmapped variables are dropped so unrelated env does not leak in.
	return ""
}

// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tomtom215/fundwise/internal/delivery"
	"github.com/tomtom215/fundwise/internal/logging"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateFunds(); err != nil {
		return err
	}
	return c.validateDelivery()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.RateLimitRequests < 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be non-negative, got %d", c.Server.RateLimitRequests)
	}
	if c.Server.RateLimitRequests > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive when rate limiting is enabled")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error; got %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}

// validateRecommend defers to the engine's own checks so the two never drift.
func (c *Config) validateRecommend() error {
	if c.Recommend.RetrainInterval < 0 {
		return fmt.Errorf("RECOMMEND_RETRAIN_INTERVAL must be non-negative")
	}
	if err := c.RecommendSettings().Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	return nil
}

func (c *Config) validateFunds() error {
	if err := c.FundsSettings().Validate(); err != nil {
		return err
	}
	if c.Funds.URL != "" {
		if err := validateHTTPURL(c.Funds.URL, "FUNDS_URL"); err != nil {
			return err
		}
	}
	if c.Funds.RefreshInterval < 0 {
		return fmt.Errorf("FUNDS_REFRESH_INTERVAL must be non-negative")
	}
	return nil
}

func (c *Config) validateDelivery() error {
	if c.Delivery.RatePerMinute < 0 {
		return fmt.Errorf("DELIVERY_RATE_PER_MINUTE must be non-negative, got %d", c.Delivery.RatePerMinute)
	}
	if c.Delivery.Async.StatusTTL < 0 {
		return fmt.Errorf("DELIVERY_STATUS_TTL must be non-negative")
	}
	if !c.Delivery.Enabled {
		if c.Delivery.Async.Enabled {
			return fmt.Errorf("DELIVERY_ASYNC_ENABLED requires DELIVERY_ENABLED=true")
		}
		return nil
	}
	if !c.Report.Enabled {
		return fmt.Errorf("DELIVERY_ENABLED requires REPORT_ENABLED=true")
	}
	smtpCfg := c.SMTPSettings()
	if err := delivery.ValidateSMTPConfig(&smtpCfg); err != nil {
		return fmt.Errorf("delivery.smtp: %w", err)
	}
	return nil
}

// validateHTTPURL checks for an http or https URL with a host.
func validateHTTPURL(rawURL, fieldName string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s failed to parse URL: %w", fieldName, err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("%s scheme must be http or https, got: %s", fieldName, parsedURL.Scheme)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("%s host is required", fieldName)
	}
	return nil
}

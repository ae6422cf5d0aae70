// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package delivery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/fundwise/internal/logging"
)

// Channel sends a rendered report to one recipient.
type Channel interface {
	// Name returns the channel identifier used in metrics and job records.
	Name() string

	// Send delivers the message. Failures are described by the returned
	// result and never by a panic or a separate error value.
	Send(ctx context.Context, params *SendParams) *DeliveryResult
}

// Attachment is a file sent alongside the message body.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SendParams contains everything needed for one delivery.
type SendParams struct {
	// Recipient is the destination email address.
	Recipient string

	Subject  string
	BodyText string

	Attachments []Attachment

	// JobID correlates an asynchronous delivery with its status record.
	JobID string
}

// DeliveryResult contains the outcome of a delivery attempt.
type DeliveryResult struct {
	Success      bool       `json:"success"`
	Recipient    string     `json:"recipient"`
	DeliveredAt  *time.Time `json:"delivered_at,omitempty"`
	ErrorMessage string     `json:"error,omitempty"`
	ErrorCode    string     `json:"error_code,omitempty"`

	// IsTransient marks failures a caller could reasonably try again later.
	// Nothing in this package retries on its own.
	IsTransient bool `json:"is_transient,omitempty"`
}

// Error codes for delivery failures.
const (
	ErrorCodeInvalidRecipient = "INVALID_RECIPIENT"
	ErrorCodeInvalidConfig    = "INVALID_CONFIG"
	ErrorCodeConnectionFailed = "CONNECTION_FAILED"
	ErrorCodeAuthFailed       = "AUTH_FAILED"
	ErrorCodeTimeout          = "TIMEOUT"
	ErrorCodeSendFailed       = "SEND_FAILED"
	ErrorCodeRateLimited      = "RATE_LIMITED"
)

// failure builds an unsuccessful result.
func failure(recipient, code string, err error) *DeliveryResult {
	return &DeliveryResult{
		Recipient:    recipient,
		ErrorCode:    code,
		ErrorMessage: err.Error(),
		IsTransient:  isTransient(code),
	}
}

func isTransient(code string) bool {
	switch code {
	case ErrorCodeConnectionFailed, ErrorCodeTimeout, ErrorCodeRateLimited:
		return true
	default:
		return false
	}
}

// =============================================================================
// Validation Helpers
// =============================================================================

// ValidateEmail validates an email address format. Addresses containing
// whitespace or line breaks are rejected so they cannot inject headers.
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("email address is required")
	}
	if strings.ContainsAny(email, " \t\r\n<>") {
		return fmt.Errorf("invalid email address format: %q", email)
	}
	parts := strings.Split(email, "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("invalid email address format: %s", email)
	}
	if !strings.Contains(parts[1], ".") || strings.HasPrefix(parts[1], ".") || strings.HasSuffix(parts[1], ".") {
		return fmt.Errorf("invalid email domain: %s", parts[1])
	}
	return nil
}

// SMTPConfig holds the mail server settings. Credentials are only ever
// supplied through configuration.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string

	// UseTLS upgrades the connection with STARTTLS before authenticating.
	UseTLS bool

	// Timeout bounds the whole SMTP conversation.
	Timeout time.Duration
}

// String hides the password so the config can be logged.
func (c SMTPConfig) String() string {
	return fmt.Sprintf("smtp://%s@%s:%d (from=%s tls=%t password=%s)",
		c.Username, c.Host, c.Port, c.From, c.UseTLS, logging.MaskSecret(c.Password))
}

// ValidateSMTPConfig validates SMTP configuration.
func ValidateSMTPConfig(config *SMTPConfig) error {
	if config == nil {
		return errors.New("SMTP configuration is required")
	}
	if config.Host == "" {
		return errors.New("SMTP host is required")
	}
	if config.Port <= 0 || config.Port > 65535 {
		return fmt.Errorf("invalid SMTP port: %d", config.Port)
	}
	if config.From == "" {
		return errors.New("SMTP from address is required")
	}
	if err := ValidateEmail(config.From); err != nil {
		return fmt.Errorf("invalid SMTP from address: %w", err)
	}
	if (config.Username == "") != (config.Password == "") {
		return errors.New("SMTP username and password must be set together")
	}
	if strings.ContainsAny(config.FromName, "\r\n") {
		return errors.New("SMTP from name must not contain line breaks")
	}
	return nil
}

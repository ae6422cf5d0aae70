// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package delivery

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/fundwise/internal/logging"
)

// ChannelEmail is the name of the SMTP channel.
const ChannelEmail = "email"

const (
	defaultSMTPTimeout = 30 * time.Second
	defaultFromName    = "Fundwise"

	// base64LineLength follows RFC 2045.
	base64LineLength = 76
)

// SMTP conversation stages, used to classify failures.
const (
	stageConnect   = "connect"
	stageStartTLS  = "starttls"
	stageAuth      = "auth"
	stageSender    = "mail from"
	stageRecipient = "rcpt to"
	stageData      = "data"
)

// smtpStageError records which step of the SMTP conversation failed.
type smtpStageError struct {
	stage string
	err   error
}

func (e *smtpStageError) Error() string {
	return fmt.Sprintf("smtp %s: %v", e.stage, e.err)
}

func (e *smtpStageError) Unwrap() error { return e.err }

func stageErr(stage string, err error) error {
	return &smtpStageError{stage: stage, err: err}
}

// EmailChannel implements email delivery via SMTP. Each Send opens its own
// connection, so the channel is safe for concurrent use.
type EmailChannel struct {
	config SMTPConfig
	logger zerolog.Logger
	now    func() time.Time
}

// NewEmailChannel creates an email channel for the given server settings.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEmailChannel(cfg SMTPConfig, logger zerolog.Logger) *EmailChannel {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultSMTPTimeout
	}
	return &EmailChannel{
		config: cfg,
		logger: logger.With().Str("component", "delivery").Str("channel", ChannelEmail).Logger(),
		now:    time.Now,
	}
}

// Name returns the channel identifier.
func (c *EmailChannel) Name() string {
	return ChannelEmail
}

// Validate checks the SMTP configuration.
func (c *EmailChannel) Validate() error {
	return ValidateSMTPConfig(&c.config)
}

// Send delivers the message and its attachments as multipart/mixed mail.
func (c *EmailChannel) Send(ctx context.Context, params *SendParams) *DeliveryResult {
	if params == nil {
		return failure("", ErrorCodeInvalidRecipient, errors.New("send parameters are required"))
	}
	if err := ValidateEmail(params.Recipient); err != nil {
		return failure(params.Recipient, ErrorCodeInvalidRecipient, err)
	}
	if err := c.Validate(); err != nil {
		return failure(params.Recipient, ErrorCodeInvalidConfig, err)
	}

	log := c.logger.With().
		Str("recipient", logging.MaskEmail(params.Recipient)).
		Str("job_id", params.JobID).
		Logger()

	msg, err := c.buildMessage(params)
	if err != nil {
		log.Error().Err(err).Msg("failed to build email")
		return failure(params.Recipient, ErrorCodeSendFailed, err)
	}

	if err := c.sendSMTP(ctx, params.Recipient, msg); err != nil {
		result := failure(params.Recipient, classifyEmailError(ctx, err), err)
		log.Warn().Err(err).Str("error_code", result.ErrorCode).Msg("email delivery failed")
		return result
	}

	now := c.now().UTC()
	log.Info().Int("size_bytes", len(msg)).Msg("email delivered")
	return &DeliveryResult{
		Success:     true,
		Recipient:   params.Recipient,
		DeliveredAt: &now,
	}
}

// buildMessage renders the RFC 5322 message with a quoted-printable text
// part followed by one base64 part per attachment.
func (c *EmailChannel) buildMessage(params *SendParams) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	textPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/plain; charset=UTF-8"},
		"Content-Transfer-Encoding": {"quoted-printable"},
	})
	if err != nil {
		return nil, fmt.Errorf("create text part: %w", err)
	}
	qp := quotedprintable.NewWriter(textPart)
	if _, err := qp.Write([]byte(params.BodyText)); err != nil {
		return nil, fmt.Errorf("write text part: %w", err)
	}
	if err := qp.Close(); err != nil {
		return nil, fmt.Errorf("close text part: %w", err)
	}

	for _, a := range params.Attachments {
		if err := writeAttachment(mw, a); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	fromName := c.config.FromName
	if fromName == "" {
		fromName = defaultFromName
	}
	from := mail.Address{Name: fromName, Address: c.config.From}

	var msg bytes.Buffer
	writeHeader(&msg, "From", from.String())
	writeHeader(&msg, "To", params.Recipient)
	writeHeader(&msg, "Subject", mime.QEncoding.Encode("utf-8", params.Subject))
	writeHeader(&msg, "Date", c.now().Format(time.RFC1123Z))
	writeHeader(&msg, "Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), domainOf(c.config.From)))
	if params.JobID != "" {
		writeHeader(&msg, "X-Fundwise-Job-ID", params.JobID)
	}
	writeHeader(&msg, "MIME-Version", "1.0")
	writeHeader(&msg, "Content-Type", mime.FormatMediaType("multipart/mixed", map[string]string{"boundary": mw.Boundary()}))
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())

	return msg.Bytes(), nil
}

func writeAttachment(mw *multipart.Writer, a Attachment) error {
	if a.Filename == "" {
		return errors.New("attachment filename is required")
	}
	contentType := a.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	part, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {mime.FormatMediaType(contentType, map[string]string{"name": a.Filename})},
		"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename})},
		"Content-Transfer-Encoding": {"base64"},
	})
	if err != nil {
		return fmt.Errorf("create attachment %s: %w", a.Filename, err)
	}
	if err := writeBase64Lines(part, a.Data); err != nil {
		return fmt.Errorf("write attachment %s: %w", a.Filename, err)
	}
	return nil
}

func writeBase64Lines(w io.Writer, data []byte) error {
	encoded := base64.StdEncoding.EncodeToString(data)
	for len(encoded) > 0 {
		n := min(base64LineLength, len(encoded))
		if _, err := io.WriteString(w, encoded[:n]+"\r\n"); err != nil {
			return err
		}
		encoded = encoded[n:]
	}
	return nil
}

// writeHeader drops line breaks from v so callers cannot add headers.
func writeHeader(buf *bytes.Buffer, key, v string) {
	v = strings.NewReplacer("\r", "", "\n", "").Replace(v)
	buf.WriteString(key)
	buf.WriteString(": ")
	buf.WriteString(v)
	buf.WriteString("\r\n")
}

func domainOf(addr string) string {
	if at := strings.LastIndex(addr, "@"); at >= 0 && at < len(addr)-1 {
		return addr[at+1:]
	}
	return "localhost"
}

// sendSMTP runs one SMTP conversation. The whole exchange is bounded by the
// configured timeout or the context deadline, whichever is earlier.
func (c *EmailChannel) sendSMTP(ctx context.Context, to string, msg []byte) error {
	addr := net.JoinHostPort(c.config.Host, strconv.Itoa(c.config.Port))

	deadline := time.Now().Add(c.config.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	dialer := &net.Dialer{Deadline: deadline}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return stageErr(stageConnect, err)
	}
	defer func() { _ = conn.Close() }() //nolint:errcheck // Best effort cleanup

	if err := conn.SetDeadline(deadline); err != nil {
		return stageErr(stageConnect, err)
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() }) //nolint:errcheck // unblocks pending I/O on cancel
	defer stop()

	client, err := smtp.NewClient(conn, c.config.Host)
	if err != nil {
		return stageErr(stageConnect, err)
	}
	defer func() { _ = client.Close() }() //nolint:errcheck // Best effort cleanup

	if c.config.UseTLS {
		tlsConfig := &tls.Config{
			ServerName: c.config.Host,
			MinVersion: tls.VersionTLS12,
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return stageErr(stageStartTLS, err)
		}
	}

	if c.config.Username != "" && c.config.Password != "" {
		auth := smtp.PlainAuth("", c.config.Username, c.config.Password, c.config.Host)
		if err := client.Auth(auth); err != nil {
			return stageErr(stageAuth, err)
		}
	}

	if err := client.Mail(c.config.From); err != nil {
		return stageErr(stageSender, err)
	}
	if err := client.Rcpt(to); err != nil {
		return stageErr(stageRecipient, err)
	}

	writer, err := client.Data()
	if err != nil {
		return stageErr(stageData, err)
	}
	if _, err := writer.Write(msg); err != nil {
		return stageErr(stageData, err)
	}
	if err := writer.Close(); err != nil {
		return stageErr(stageData, err)
	}

	// The message is accepted once DATA completes.
	_ = client.Quit() //nolint:errcheck // message already accepted
	return nil
}

// classifyEmailError maps a send failure to an error code.
func classifyEmailError(ctx context.Context, err error) string {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return ErrorCodeTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorCodeTimeout
	}

	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		switch protoErr.Code {
		case 421, 450, 451, 452:
			return ErrorCodeRateLimited
		}
	}

	var se *smtpStageError
	if !errors.As(err, &se) {
		return ErrorCodeSendFailed
	}
	switch se.stage {
	case stageConnect, stageStartTLS:
		return ErrorCodeConnectionFailed
	case stageAuth:
		return ErrorCodeAuthFailed
	case stageRecipient:
		if protoErr != nil && protoErr.Code >= 500 {
			return ErrorCodeInvalidRecipient
		}
		return ErrorCodeSendFailed
	default:
		return ErrorCodeSendFailed
	}
}

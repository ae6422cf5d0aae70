// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package delivery

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net"
	"net/mail"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

var testPDF = []byte("%PDF-1.3\n% fake report body for tests\n%%EOF\n")

func reportParams(recipient string) *SendParams {
	return &SendParams{
		Recipient: recipient,
		Subject:   "Your Fundwise recommendation",
		BodyText:  "Your investor category is Balanced.\nThe report is attached.",
		Attachments: []Attachment{{
			Filename:    "fundwise-report.pdf",
			ContentType: "application/pdf",
			Data:        testPDF,
		}},
		JobID: "job-123",
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid email", "investor@example.com", false},
		{"subdomain", "a.b@mail.example.co.in", false},
		{"empty", "", true},
		{"no at sign", "investor.example.com", true},
		{"two at signs", "a@b@example.com", true},
		{"empty local part", "@example.com", true},
		{"domain without dot", "investor@localhost", true},
		{"trailing dot", "investor@example.", true},
		{"header injection", "investor@example.com\r\nBcc: x@example.com", true},
		{"space", "in vestor@example.com", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSMTPConfig(t *testing.T) {
	t.Parallel()

	valid := SMTPConfig{Host: "smtp.example.com", Port: 587, From: "reports@example.com"}

	tests := []struct {
		name    string
		mutate  func(*SMTPConfig)
		wantErr bool
	}{
		{"valid", func(*SMTPConfig) {}, false},
		{"with credentials", func(c *SMTPConfig) { c.Username, c.Password = "user", "secret" }, false},
		{"missing host", func(c *SMTPConfig) { c.Host = "" }, true},
		{"port zero", func(c *SMTPConfig) { c.Port = 0 }, true},
		{"port too large", func(c *SMTPConfig) { c.Port = 70000 }, true},
		{"missing from", func(c *SMTPConfig) { c.From = "" }, true},
		{"invalid from", func(c *SMTPConfig) { c.From = "reports" }, true},
		{"username without password", func(c *SMTPConfig) { c.Username = "user" }, true},
		{"from name with newline", func(c *SMTPConfig) { c.FromName = "a\nb" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := valid
			tt.mutate(&cfg)
			err := ValidateSMTPConfig(&cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSMTPConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if err := ValidateSMTPConfig(nil); err == nil {
		t.Error("ValidateSMTPConfig(nil) should fail")
	}
}

func TestSMTPConfig_StringHidesPassword(t *testing.T) {
	t.Parallel()

	cfg := SMTPConfig{Host: "smtp.example.com", Port: 587, Username: "user", Password: "hunter2", From: "a@example.com"}
	s := cfg.String()
	if strings.Contains(s, "hunter2") {
		t.Errorf("String() leaked password: %s", s)
	}
	if !strings.Contains(s, "[redacted]") {
		t.Errorf("String() = %s, want redacted marker", s)
	}
}

func TestEmailChannel_Send_Success(t *testing.T) {
	t.Parallel()

	srv := startFakeSMTP(t)
	cfg := srv.config()
	cfg.Username = "mailer"
	cfg.Password = "not-a-real-secret"

	var logs bytes.Buffer
	ch := NewEmailChannel(cfg, zerolog.New(&logs))

	result := ch.Send(context.Background(), reportParams("investor@example.com"))
	if !result.Success {
		t.Fatalf("Send() failed: %s (%s)", result.ErrorMessage, result.ErrorCode)
	}
	if result.DeliveredAt == nil {
		t.Error("DeliveredAt should be set on success")
	}
	if result.Recipient != "investor@example.com" {
		t.Errorf("Recipient = %q", result.Recipient)
	}

	msgs := srv.received()
	if len(msgs) != 1 {
		t.Fatalf("server received %d messages, want 1", len(msgs))
	}
	got := msgs[0]
	if got.From != cfg.From {
		t.Errorf("MAIL FROM = %q, want %q", got.From, cfg.From)
	}
	if len(got.To) != 1 || got.To[0] != "investor@example.com" {
		t.Errorf("RCPT TO = %v", got.To)
	}
	if got.AuthUser != "mailer" || got.AuthPass != "not-a-real-secret" {
		t.Errorf("AUTH PLAIN user=%q pass=%q", got.AuthUser, got.AuthPass)
	}

	if strings.Contains(logs.String(), "investor@example.com") {
		t.Error("logs contain the unmasked recipient address")
	}
	if strings.Contains(logs.String(), "not-a-real-secret") {
		t.Error("logs contain the SMTP password")
	}
}

func TestEmailChannel_MessageStructure(t *testing.T) {
	t.Parallel()

	srv := startFakeSMTP(t)
	ch := NewEmailChannel(srv.config(), zerolog.Nop())

	params := reportParams("investor@example.com")
	params.Subject = "Recommandation: équilibré"
	if result := ch.Send(context.Background(), params); !result.Success {
		t.Fatalf("Send() failed: %s", result.ErrorMessage)
	}

	msgs := srv.received()
	if len(msgs) != 1 {
		t.Fatalf("received %d messages", len(msgs))
	}

	msg, err := mail.ReadMessage(bytes.NewReader(msgs[0].Data))
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}

	dec := new(mime.WordDecoder)
	subject, err := dec.DecodeHeader(msg.Header.Get("Subject"))
	if err != nil {
		t.Fatalf("decode subject: %v", err)
	}
	if subject != params.Subject {
		t.Errorf("Subject = %q, want %q", subject, params.Subject)
	}
	if msg.Header.Get("X-Fundwise-Job-ID") != "job-123" {
		t.Errorf("X-Fundwise-Job-ID = %q", msg.Header.Get("X-Fundwise-Job-ID"))
	}
	from, err := mail.ParseAddress(msg.Header.Get("From"))
	if err != nil {
		t.Fatalf("parse From: %v", err)
	}
	if from.Name != "Fundwise Reports" || from.Address != "reports@fundwise.test" {
		t.Errorf("From = %+v", from)
	}

	mediaType, mparams, err := mime.ParseMediaType(msg.Header.Get("Content-Type"))
	if err != nil {
		t.Fatalf("parse Content-Type: %v", err)
	}
	if mediaType != "multipart/mixed" {
		t.Fatalf("Content-Type = %s, want multipart/mixed", mediaType)
	}

	mr := multipart.NewReader(msg.Body, mparams["boundary"])

	text, err := mr.NextPart()
	if err != nil {
		t.Fatalf("text part: %v", err)
	}
	// NextPart decodes quoted-printable transparently.
	body, _ := io.ReadAll(text)
	if !strings.Contains(string(body), "Balanced") {
		t.Errorf("text part = %q", body)
	}

	att, err := mr.NextPart()
	if err != nil {
		t.Fatalf("attachment part: %v", err)
	}
	if att.FileName() != "fundwise-report.pdf" {
		t.Errorf("attachment filename = %q", att.FileName())
	}
	if ct := att.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/pdf") {
		t.Errorf("attachment Content-Type = %q", ct)
	}
	raw, _ := io.ReadAll(att)
	decoded, err := base64.StdEncoding.DecodeString(strings.NewReplacer("\r", "", "\n", "").Replace(string(raw)))
	if err != nil {
		t.Fatalf("decode attachment: %v", err)
	}
	if !bytes.Equal(decoded, testPDF) {
		t.Errorf("attachment bytes differ: %q", decoded)
	}

	if _, err := mr.NextPart(); !errors.Is(err, io.EOF) {
		t.Errorf("expected exactly two parts, got err=%v", err)
	}
}

func TestEmailChannel_Send_Failures(t *testing.T) {
	t.Parallel()

	t.Run("invalid recipient", func(t *testing.T) {
		t.Parallel()
		ch := NewEmailChannel(SMTPConfig{Host: "127.0.0.1", Port: 25, From: "a@example.com"}, zerolog.Nop())
		result := ch.Send(context.Background(), reportParams("not-an-address"))
		assertFailure(t, result, ErrorCodeInvalidRecipient, false)
	})

	t.Run("nil params", func(t *testing.T) {
		t.Parallel()
		ch := NewEmailChannel(SMTPConfig{}, zerolog.Nop())
		result := ch.Send(context.Background(), nil)
		assertFailure(t, result, ErrorCodeInvalidRecipient, false)
	})

	t.Run("invalid config", func(t *testing.T) {
		t.Parallel()
		ch := NewEmailChannel(SMTPConfig{Port: 25, From: "a@example.com"}, zerolog.Nop())
		result := ch.Send(context.Background(), reportParams("investor@example.com"))
		assertFailure(t, result, ErrorCodeInvalidConfig, false)
	})

	t.Run("connection refused", func(t *testing.T) {
		t.Parallel()
		cfg := SMTPConfig{Host: "127.0.0.1", Port: closedPort(t), From: "a@example.com", Timeout: 2 * time.Second}
		ch := NewEmailChannel(cfg, zerolog.Nop())
		result := ch.Send(context.Background(), reportParams("investor@example.com"))
		assertFailure(t, result, ErrorCodeConnectionFailed, true)
	})

	t.Run("auth rejected", func(t *testing.T) {
		t.Parallel()
		srv := startFakeSMTP(t, withRejectAuth())
		cfg := srv.config()
		cfg.Username, cfg.Password = "mailer", "wrong"
		ch := NewEmailChannel(cfg, zerolog.Nop())
		result := ch.Send(context.Background(), reportParams("investor@example.com"))
		assertFailure(t, result, ErrorCodeAuthFailed, false)
		if n := len(srv.received()); n != 0 {
			t.Errorf("server accepted %d messages after failed auth", n)
		}
	})

	t.Run("recipient rejected", func(t *testing.T) {
		t.Parallel()
		srv := startFakeSMTP(t, withRejectRcpt())
		ch := NewEmailChannel(srv.config(), zerolog.Nop())
		result := ch.Send(context.Background(), reportParams("investor@example.com"))
		assertFailure(t, result, ErrorCodeInvalidRecipient, false)
	})

	t.Run("server never greets", func(t *testing.T) {
		t.Parallel()
		srv := startFakeSMTP(t, withSilent())
		cfg := srv.config()
		cfg.Timeout = 150 * time.Millisecond
		ch := NewEmailChannel(cfg, zerolog.Nop())
		result := ch.Send(context.Background(), reportParams("investor@example.com"))
		assertFailure(t, result, ErrorCodeTimeout, true)
	})

	t.Run("context deadline", func(t *testing.T) {
		t.Parallel()
		srv := startFakeSMTP(t, withSilent())
		ch := NewEmailChannel(srv.config(), zerolog.Nop())
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()
		result := ch.Send(ctx, reportParams("investor@example.com"))
		assertFailure(t, result, ErrorCodeTimeout, true)
	})
}

func assertFailure(t *testing.T, result *DeliveryResult, code string, transient bool) {
	t.Helper()
	if result == nil {
		t.Fatal("Send() returned nil result")
	}
	if result.Success {
		t.Fatal("Send() succeeded, want failure")
	}
	if result.ErrorCode != code {
		t.Errorf("ErrorCode = %s, want %s (message: %s)", result.ErrorCode, code, result.ErrorMessage)
	}
	if result.ErrorMessage == "" {
		t.Error("ErrorMessage should be set")
	}
	if result.IsTransient != transient {
		t.Errorf("IsTransient = %v, want %v", result.IsTransient, transient)
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestClassifyEmailError(t *testing.T) {
	t.Parallel()

	expired, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	tests := []struct {
		name string
		ctx  context.Context
		err  error
		want string
	}{
		{"dial failure", context.Background(), stageErr(stageConnect, errors.New("connection refused")), ErrorCodeConnectionFailed},
		{"starttls failure", context.Background(), stageErr(stageStartTLS, errors.New("handshake")), ErrorCodeConnectionFailed},
		{"auth failure", context.Background(), stageErr(stageAuth, &textproto.Error{Code: 535, Msg: "bad"}), ErrorCodeAuthFailed},
		{"mailbox unknown", context.Background(), stageErr(stageRecipient, &textproto.Error{Code: 550, Msg: "no"}), ErrorCodeInvalidRecipient},
		{"greylisted", context.Background(), stageErr(stageRecipient, &textproto.Error{Code: 451, Msg: "later"}), ErrorCodeRateLimited},
		{"data failure", context.Background(), stageErr(stageData, errors.New("broken pipe")), ErrorCodeSendFailed},
		{"network timeout", context.Background(), stageErr(stageSender, timeoutErr{}), ErrorCodeTimeout},
		{"context deadline", expired, stageErr(stageData, errors.New("use of closed connection")), ErrorCodeTimeout},
		{"untyped error", context.Background(), fmt.Errorf("boom"), ErrorCodeSendFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := classifyEmailError(tt.ctx, tt.err); got != tt.want {
				t.Errorf("classifyEmailError() = %s, want %s", got, tt.want)
			}
		})
	}
}

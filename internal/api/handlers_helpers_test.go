// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSanitizeLogValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"line\nbreak", `line\x0abreak`},
		{"tab\there", `tab\x09here`},
		{"del\x7f", `del\x7f`},
		{"ünïcode", "ünïcode"},
	}
	for _, tt := range tests {
		if got := sanitizeLogValue(tt.in); got != tt.want {
			t.Errorf("sanitizeLogValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGenerateETag(t *testing.T) {
	t.Parallel()

	a := generateETag([]byte(`{"a":1}`))
	if a != generateETag([]byte(`{"a":1}`)) {
		t.Error("etag is not deterministic")
	}
	if a == generateETag([]byte(`{"a":2}`)) {
		t.Error("different bodies share an etag")
	}
	if !strings.HasPrefix(a, `"`) || !strings.HasSuffix(a, `"`) {
		t.Errorf("etag %s is not quoted", a)
	}
}

func TestRespondSuccess(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	respondSuccess(w, http.StatusCreated, map[string]int{"n": 1}, time.Now())

	if w.Code != http.StatusCreated {
		t.Errorf("status = %d", w.Code)
	}
	if w.Header().Get("Cache-Control") != "no-store" || w.Header().Get("ETag") == "" {
		t.Errorf("headers = %v", w.Header())
	}
	env := decodeEnvelope(t, w)
	if env.Status != "success" || string(env.Data) != `{"n":1}` {
		t.Errorf("envelope = %+v", env)
	}
}

func TestRespondError_HidesCause(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	respondError(w, http.StatusInternalServerError, codeInternal, "Something failed", errors.New("disk on fire"))

	apiErr := expectError(t, w, http.StatusInternalServerError, codeInternal)
	if apiErr.Message != "Something failed" {
		t.Errorf("message = %q", apiErr.Message)
	}
	if strings.Contains(w.Body.String(), "disk on fire") {
		t.Error("cause leaked into the response body")
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"age":30,"goal":"Travel"}`, ""},
		{"empty", ``, "empty"},
		{"trailing object", `{"age":30}{"age":31}`, "single JSON object"},
		{"unknown field", `{"shoe_size":44}`, "invalid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var req RecommendationRequest
			err := decodeJSON(httptest.NewRecorder(), r, &req)

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("decodeJSON() error = %v", err)
				}
				if req.Age != 30 || req.Goal != "Travel" {
					t.Errorf("decoded %+v", req)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("decodeJSON() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestRecommendationRequest_Profile(t *testing.T) {
	t.Parallel()

	req := RecommendationRequest{
		Age: 40, MonthlyIncome: 70000, Savings: 1000,
		RiskAppetite: "high", Goal: "travel", Horizon: "5+",
		Email: "  someone@example.com\t",
	}
	p, err := req.Profile()
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if p.RiskAppetite != "High" || p.Goal != "Travel" || p.Horizon != "5+ yrs" {
		t.Errorf("profile = %+v", p)
	}
	if got := req.normalizedEmail(); got != "someone@example.com" {
		t.Errorf("normalizedEmail() = %q", got)
	}

	req.Horizon = "forever"
	if _, err := req.Profile(); err == nil || !strings.HasPrefix(err.Error(), "horizon:") {
		t.Errorf("Profile() error = %v, want horizon error", err)
	}
}

// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package api

import (
	"bytes"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/fundwise/internal/delivery"
	"github.com/tomtom215/fundwise/internal/models"
	"github.com/tomtom215/fundwise/internal/profile"
	"github.com/tomtom215/fundwise/internal/recommend"
	"github.com/tomtom215/fundwise/internal/report"
)

func TestRecommend_Scenarios(t *testing.T) {
	t.Parallel()

	// The forest runs end to end here; the other tests use the rules
	// classifier to stay fast.
	env := newTestEnv(t, envOptions{algorithm: recommend.AlgorithmRandomForest})

	t.Run("low risk short horizon is conservative", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/recommendations", conservativeProfile())
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
		var rec models.Recommendation
		decodeData(t, w, &rec)

		if rec.Category != profile.Conservative {
			t.Errorf("category = %s, want Conservative", rec.Category)
		}
		if rec.OverrideReason != recommend.OverrideLowRiskShortTerm {
			t.Errorf("override_reason = %q", rec.OverrideReason)
		}
		if len(rec.Funds) == 0 {
			t.Fatal("expected conservative funds")
		}
		for _, f := range rec.Funds {
			if f.Category != string(profile.Conservative) {
				t.Errorf("fund %q has category %q", f.Name, f.Category)
			}
		}
		if rec.Delivery != nil {
			t.Error("delivery reported without an email")
		}
	})

	t.Run("high earner long horizon is aggressive", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/recommendations", aggressiveProfile())
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
		var rec models.Recommendation
		decodeData(t, w, &rec)

		if rec.Category != profile.Aggressive || rec.OverrideReason != recommend.OverrideHighRiskHighIncome {
			t.Errorf("got (%s, %q), want Aggressive via high-income rule", rec.Category, rec.OverrideReason)
		}
		for _, f := range rec.Funds {
			if f.Category != string(profile.Aggressive) {
				t.Errorf("fund %q has category %q", f.Name, f.Category)
			}
		}
	})

	t.Run("medium risk is left to the model and stable", func(t *testing.T) {
		var first models.Recommendation
		for i := 0; i < 3; i++ {
			w := env.do(t, http.MethodPost, "/api/v1/recommendations", balancedProfile())
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
			}
			var rec models.Recommendation
			decodeData(t, w, &rec)

			if rec.Overridden || rec.OverrideReason != recommend.OverrideNone {
				t.Errorf("unexpected override %q", rec.OverrideReason)
			}
			if rec.Category != rec.ModelCategory {
				t.Errorf("category %s differs from model category %s", rec.Category, rec.ModelCategory)
			}
			if i == 0 {
				first = rec
				continue
			}
			if rec.Category != first.Category {
				t.Errorf("request %d: category %s, first was %s", i, rec.Category, first.Category)
			}
		}
	})
}

func TestRecommend_LenientLabels(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOptions{})
	body := with(with(aggressiveProfile(), "goal", "wealth_creation"), "horizon", "5+")

	w := env.do(t, http.MethodPost, "/api/v1/recommendations", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var rec models.Recommendation
	decodeData(t, w, &rec)
	if rec.Category != profile.Aggressive {
		t.Errorf("category = %s, want Aggressive", rec.Category)
	}
}

func TestRecommend_ValidationErrors(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOptions{})

	tests := []struct {
		name  string
		body  map[string]interface{}
		field string
	}{
		{"age below minimum", with(balancedProfile(), "age", 17), "age"},
		{"age above maximum", with(balancedProfile(), "age", 66), "age"},
		{"income below minimum", with(balancedProfile(), "monthly_income", 9999), "monthly_income"},
		{"income above maximum", with(balancedProfile(), "monthly_income", 200001), "monthly_income"},
		{"negative savings", with(balancedProfile(), "savings", -1), "savings"},
		{"savings above maximum", with(balancedProfile(), "savings", 1000001), "savings"},
		{"unknown risk", with(balancedProfile(), "risk_appetite", "Extreme"), "risk_appetite"},
		{"unknown goal", with(balancedProfile(), "goal", "Yacht"), "goal"},
		{"unknown horizon", with(balancedProfile(), "horizon", "10 yrs"), "horizon"},
		{"missing goal", with(balancedProfile(), "goal", nil), "goal"},
		{"bad email", with(balancedProfile(), "email", "not-an-address"), "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/v1/recommendations", tt.body)
			apiErr := expectError(t, w, http.StatusBadRequest, "VALIDATION_ERROR")
			if !strings.Contains(w.Body.String(), `"`+tt.field+`"`) {
				t.Errorf("details do not name field %q: %v", tt.field, apiErr.Details)
			}
		})
	}
}

func TestRecommend_MalformedBodies(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOptions{})

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"not json", "age=25"},
		{"wrong type", `{"age":"twenty"}`},
		{"unknown field", `{"age":30,"monthly_income":50000,"savings":0,"risk_appetite":"Low","goal":"Travel","horizon":"1-3 yrs","nickname":"x"}`},
		{"two objects", `{"age":30} {"age":31}`},
		{"oversize", `{"goal":"` + strings.Repeat("a", maxBodyBytes) + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/v1/recommendations", tt.body)
			expectError(t, w, http.StatusBadRequest, codeInvalidRequest)
		})
	}
}

func TestRecommend_ModelUnavailable(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOptions{brokenModel: true})

	w := env.do(t, http.MethodPost, "/api/v1/recommendations", balancedProfile())
	apiErr := expectError(t, w, http.StatusServiceUnavailable, codeModelUnavailable)
	if strings.Contains(apiErr.Message, "corpus unavailable") {
		t.Errorf("internal error leaked to client: %q", apiErr.Message)
	}
}

func TestRecommend_UnloadedCatalogStillClassifies(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOptions{unloadedCatalog: true})

	w := env.do(t, http.MethodPost, "/api/v1/recommendations", conservativeProfile())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"funds":[]`) {
		t.Errorf("expected empty fund list, got %s", w.Body.String())
	}
}

func TestRecommendReport(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOptions{})

	w := env.do(t, http.MethodPost, "/api/v1/recommendations/report", conservativeProfile())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != report.ContentType {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := w.Header().Get("X-Fundwise-Category"); got != string(profile.Conservative) {
		t.Errorf("X-Fundwise-Category = %q", got)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment; filename=") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")) {
		t.Error("body is not a PDF")
	}
}

func TestRecommendReport_Disabled(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOptions{noReport: true})

	w := env.do(t, http.MethodPost, "/api/v1/recommendations/report", conservativeProfile())
	expectError(t, w, http.StatusNotFound, codeReportDisabled)
}

func TestRecommendReport_ValidationRunsFirst(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOptions{})

	w := env.do(t, http.MethodPost, "/api/v1/recommendations/report", with(balancedProfile(), "age", 80))
	expectError(t, w, http.StatusBadRequest, "VALIDATION_ERROR")
}

func TestRecommend_SyncDelivery(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOptions{delivery: true})

	w := env.do(t, http.MethodPost, "/api/v1/recommendations",
		with(conservativeProfile(), "email", "  investor@example.com "))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var rec models.Recommendation
	decodeData(t, w, &rec)

	if rec.Delivery == nil {
		t.Fatal("delivery outcome missing")
	}
	d := rec.Delivery
	if d.Status != models.DeliverySent || d.Mode != delivery.ModeSync || d.Channel != "fake" {
		t.Errorf("outcome = %+v", d)
	}
	if d.Recipient != "in***@example.com" {
		t.Errorf("recipient = %q, want masked address", d.Recipient)
	}
	if d.DeliveredAt == nil {
		t.Error("delivered_at missing")
	}

	calls := env.channel.calls()
	if len(calls) != 1 {
		t.Fatalf("channel called %d times, want 1", len(calls))
	}
	sent := calls[0]
	if sent.Recipient != "investor@example.com" {
		t.Errorf("recipient = %q", sent.Recipient)
	}
	if !strings.Contains(sent.Subject, string(profile.Conservative)) {
		t.Errorf("subject = %q", sent.Subject)
	}
	if !strings.Contains(sent.BodyText, report.Disclaimer) {
		t.Error("body text lacks the disclaimer")
	}
	if len(sent.Attachments) != 1 || sent.Attachments[0].ContentType != report.ContentType ||
		!bytes.HasPrefix(sent.Attachments[0].Data, []byte("%PDF")) {
		t.Errorf("unexpected attachments: %d", len(sent.Attachments))
	}
	if sent.JobID == "" || sent.JobID != w.Header().Get("X-Request-ID") {
		t.Errorf("job id %q does not match request id %q", sent.JobID, w.Header().Get("X-Request-ID"))
	}
}

func TestRecommend_DeliveryFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		opts     envOptions
		async    bool
		wantCode string
	}{
		{"delivery disabled", envOptions{}, false, codeDeliveryDisabled},
		{"channel failure", envOptions{delivery: true, failDelivery: delivery.ErrorCodeAuthFailed}, false, delivery.ErrorCodeAuthFailed},
		{"async not configured", envOptions{delivery: true}, true, codeDeliveryUnavailable},
		{"async worker not running", envOptions{delivery: true, async: true}, true, codeDeliveryUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t, tt.opts)
			body := with(aggressiveProfile(), "email", "investor@example.com")
			if tt.async {
				body = with(body, "async", true)
			}

			w := env.do(t, http.MethodPost, "/api/v1/recommendations", body)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
			}
			var rec models.Recommendation
			decodeData(t, w, &rec)

			if rec.Category != profile.Aggressive {
				t.Errorf("category = %s, want Aggressive", rec.Category)
			}
			if rec.Delivery == nil || rec.Delivery.Status != models.DeliveryFailed {
				t.Fatalf("delivery = %+v, want failed", rec.Delivery)
			}
			if rec.Delivery.ErrorCode != tt.wantCode {
				t.Errorf("error_code = %q, want %q", rec.Delivery.ErrorCode, tt.wantCode)
			}
		})
	}
}

func TestRecommend_AsyncDelivery(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, envOptions{delivery: true, async: true})
	env.startWorker(t)

	body := with(with(balancedProfile(), "email", "investor@example.com"), "async", true)
	w := env.do(t, http.MethodPost, "/api/v1/recommendations", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var rec models.Recommendation
	decodeData(t, w, &rec)

	if rec.Delivery == nil || rec.Delivery.Status != models.DeliveryQueued || rec.Delivery.JobID == "" {
		t.Fatalf("delivery = %+v, want queued with a job id", rec.Delivery)
	}

	var job delivery.Job
	deadline := time.Now().Add(5 * time.Second)
	for {
		sw := env.do(t, http.MethodGet, "/api/v1/deliveries/"+rec.Delivery.JobID, nil)
		if sw.Code != http.StatusOK {
			t.Fatalf("status lookup = %d, body %s", sw.Code, sw.Body.String())
		}
		decodeData(t, sw, &job)
		if job.State.Done() {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("job still %s after 5s", job.State)
		}
		time.Sleep(20 * time.Millisecond)
	}

	if job.State != delivery.JobSent {
		t.Errorf("job state = %s, want sent (error %q)", job.State, job.Error)
	}
	if job.Recipient != "in***@example.com" {
		t.Errorf("job recipient = %q, want masked address", job.Recipient)
	}
	if n := len(env.channel.calls()); n != 1 {
		t.Errorf("channel called %d times, want 1", n)
	}
}

func TestDeliveryBody(t *testing.T) {
	t.Parallel()

	c := &classification{
		decision: &recommend.Decision{
			Category:      profile.Conservative,
			ModelCategory: profile.Balanced,
			Overridden:    true,
		},
	}
	body := deliveryBody(c)

	for _, want := range []string{"Conservative", "The model suggested Balanced", "No funds are currently listed", report.Disclaimer} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

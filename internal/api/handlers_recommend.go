// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/fundwise/internal/delivery"
	"github.com/tomtom215/fundwise/internal/funds"
	"github.com/tomtom215/fundwise/internal/logging"
	"github.com/tomtom215/fundwise/internal/models"
	"github.com/tomtom215/fundwise/internal/profile"
	"github.com/tomtom215/fundwise/internal/recommend"
	"github.com/tomtom215/fundwise/internal/report"
)

// classification is the shared result of both recommendation endpoints.
type classification struct {
	profile  profile.Profile
	decision *recommend.Decision
	funds    []funds.FundRecord
}

// classifyRequest decodes, validates and classifies the request body. On
// failure it has already written the error response and returns nil.
func (h *Handler) classifyRequest(w http.ResponseWriter, r *http.Request, req *RecommendationRequest) *classification {
	if err := decodeJSON(w, r, req); err != nil {
		respondError(w, http.StatusBadRequest, codeInvalidRequest, err.Error(), nil)
		return nil
	}
	req.Email = req.normalizedEmail()
	if apiErr := validateRequest(req); apiErr != nil {
		respondErrorDetails(w, http.StatusBadRequest, apiErr, nil)
		return nil
	}

	p, err := req.Profile()
	if err != nil {
		respondError(w, http.StatusBadRequest, codeValidation, err.Error(), nil)
		return nil
	}

	ctx, cancel := context.WithTimeout(r.Context(), classifyTimeout)
	defer cancel()

	decision, err := h.engine.Classify(ctx, p)
	switch {
	case err == nil:
	case errors.Is(err, profile.ErrUnknownCode), errors.Is(err, profile.ErrUnknownLabel):
		respondError(w, http.StatusBadRequest, codeValidation, err.Error(), nil)
		return nil
	default:
		respondError(w, http.StatusServiceUnavailable, codeModelUnavailable,
			"The recommendation model is not available", err)
		return nil
	}

	return &classification{
		profile:  p,
		decision: decision,
		funds:    h.catalog.Lookup(string(decision.Category)),
	}
}

// Recommend handles POST /api/v1/recommendations.
//
// The category and funds are always returned when classification succeeds.
// If an email address is given the PDF report is delivered as well, and the
// outcome is reported under "delivery"; a failed delivery does not change
// the status code.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req RecommendationRequest
	c := h.classifyRequest(w, r, &req)
	if c == nil {
		return
	}

	rec := models.NewRecommendation(c.decision, c.funds)
	if email := req.normalizedEmail(); email != "" {
		rec.Delivery = h.deliver(r.Context(), email, req.Async, c)
	}

	logging.Ctx(r.Context()).Info().
		Str("category", string(c.decision.Category)).
		Str("model_category", string(c.decision.ModelCategory)).
		Str("override", string(c.decision.OverrideReason)).
		Int("funds", len(c.funds)).
		Bool("delivery", rec.Delivery != nil).
		Msg("recommendation served")

	respondSuccess(w, http.StatusOK, rec, start)
}

// RecommendReport handles POST /api/v1/recommendations/report and returns
// the PDF report for the profile in the body.
func (h *Handler) RecommendReport(w http.ResponseWriter, r *http.Request) {
	if h.renderer == nil {
		respondError(w, http.StatusNotFound, codeReportDisabled, ErrReportDisabled.Error(), nil)
		return
	}

	var req RecommendationRequest
	c := h.classifyRequest(w, r, &req)
	if c == nil {
		return
	}

	now := time.Now().UTC()
	pdf, err := h.render(c, now)
	if err != nil {
		respondError(w, http.StatusInternalServerError, codeReportError, "Failed to render the report", err)
		return
	}

	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename(now)))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Fundwise-Category", string(c.decision.Category))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("failed to write report")
	}
}

func (h *Handler) render(c *classification, at time.Time) ([]byte, error) {
	return h.renderer.Render(report.Input{
		Profile:     c.profile,
		Decision:    c.decision,
		Funds:       c.funds,
		GeneratedAt: at,
	})
}

// deliver renders the report and sends or queues it. Every failure is
// folded into the returned outcome.
func (h *Handler) deliver(ctx context.Context, email string, async bool, c *classification) *models.DeliveryOutcome {
	mode := delivery.ModeSync
	if async {
		mode = delivery.ModeAsync
	}
	outcome := &models.DeliveryOutcome{
		Mode:      mode,
		Channel:   delivery.ChannelEmail,
		Recipient: logging.MaskEmail(email),
	}
	fail := func(code, msg string) *models.DeliveryOutcome {
		outcome.Status = models.DeliveryFailed
		outcome.ErrorCode = code
		outcome.Error = msg
		return outcome
	}

	if h.dispatcher == nil {
		return fail(codeDeliveryDisabled, ErrDeliveryDisabled.Error())
	}
	outcome.Channel = h.dispatcher.ChannelName()

	now := time.Now().UTC()
	pdf, err := h.render(c, now)
	if err != nil {
		logging.Ctx(ctx).Error().Err(err).Msg("report rendering failed, skipping delivery")
		return fail(codeReportError, "failed to render the report")
	}

	params := &delivery.SendParams{
		Recipient: email,
		Subject:   fmt.Sprintf("Your investment recommendation: %s", c.decision.Category),
		BodyText:  deliveryBody(c),
		Attachments: []delivery.Attachment{{
			Filename:    report.Filename(now),
			ContentType: report.ContentType,
			Data:        pdf,
		}},
		JobID: logging.RequestIDFromContext(ctx),
	}

	if async {
		job, err := h.dispatcher.Enqueue(ctx, params)
		switch {
		case err == nil:
			outcome.Status = models.DeliveryQueued
			outcome.JobID = job.ID
			return outcome
		case errors.Is(err, delivery.ErrAsyncDisabled), errors.Is(err, delivery.ErrQueueNotRunning):
			return fail(codeDeliveryUnavailable, err.Error())
		default:
			logging.Ctx(ctx).Error().Err(err).Msg("failed to queue delivery")
			return fail(delivery.ErrorCodeSendFailed, "failed to queue the delivery")
		}
	}

	result := h.dispatcher.Deliver(ctx, params)
	if !result.Success {
		return fail(result.ErrorCode, result.ErrorMessage)
	}
	outcome.Status = models.DeliverySent
	outcome.DeliveredAt = result.DeliveredAt
	return outcome
}

// deliveryBody is the plain-text part of the report email.
func deliveryBody(c *classification) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello,\n\nBased on the profile you submitted, your recommended investment category is %s.\n", c.decision.Category)
	if c.decision.Overridden {
		fmt.Fprintf(&b, "The model suggested %s; a fixed rule for your risk appetite and horizon set the final category.\n", c.decision.ModelCategory)
	}
	switch n := len(c.funds); n {
	case 0:
		b.WriteString("No funds are currently listed for this category.\n")
	case 1:
		b.WriteString("The attached report lists 1 fund for this category.\n")
	default:
		fmt.Fprintf(&b, "The attached report lists %d funds for this category.\n", n)
	}
	b.WriteString("\n")
	b.WriteString(report.Disclaimer)
	b.WriteString("\n")
	return b.String()
}

// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package models

import (
	"time"

	"github.com/tomtom215/fundwise/internal/funds"
	"github.com/tomtom215/fundwise/internal/profile"
	"github.com/tomtom215/fundwise/internal/recommend"
)

// Delivery outcome values for DeliveryOutcome.Status.
const (
	DeliveryQueued = "queued"
	DeliverySent   = "sent"
	DeliveryFailed = "failed"
)

// Recommendation is the body of a successful recommendation request.
// Funds is never null: an empty catalog category yields [].
type Recommendation struct {
	Category       profile.Category             `json:"category"`
	ModelCategory  profile.Category             `json:"model_category"`
	Overridden     bool                         `json:"overridden"`
	OverrideReason recommend.OverrideReason     `json:"override_reason,omitempty"`
	Confidence     float64                      `json:"confidence"`
	Probabilities  map[profile.Category]float64 `json:"probabilities"`
	Algorithm      string                       `json:"algorithm"`
	ModelVersion   int                          `json:"model_version"`
	Funds          []funds.FundRecord           `json:"funds"`
	Delivery       *DeliveryOutcome             `json:"delivery,omitempty"`
}

// NewRecommendation combines a decision with its funds.
func NewRecommendation(d *recommend.Decision, list []funds.FundRecord) *Recommendation {
	if list == nil {
		list = []funds.FundRecord{}
	}
	return &Recommendation{
		Category:       d.Category,
		ModelCategory:  d.ModelCategory,
		Overridden:     d.Overridden,
		OverrideReason: d.OverrideReason,
		Confidence:     d.Confidence,
		Probabilities:  d.Probabilities,
		Algorithm:      d.Algorithm,
		ModelVersion:   d.ModelVersion,
		Funds:          list,
	}
}

// DeliveryOutcome reports what happened to the emailed report. A failed
// delivery never changes the recommendation it accompanies.
type DeliveryOutcome struct {
	Status      string     `json:"status"`
	Mode        string     `json:"mode"`
	Channel     string     `json:"channel"`
	Recipient   string     `json:"recipient"`
	JobID       string     `json:"job_id,omitempty"`
	ErrorCode   string     `json:"error_code,omitempty"`
	Error       string     `json:"error,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
}

// FundList is the body of a single-category fund lookup.
type FundList struct {
	Category string             `json:"category"`
	Count    int                `json:"count"`
	Funds    []funds.FundRecord `json:"funds"`
}

// FundCatalog is the body of the full catalog listing.
type FundCatalog struct {
	Source     string                        `json:"source"`
	LoadedAt   time.Time                     `json:"loaded_at"`
	Count      int                           `json:"count"`
	Categories []string                      `json:"categories"`
	Funds      map[string][]funds.FundRecord `json:"funds"`
}

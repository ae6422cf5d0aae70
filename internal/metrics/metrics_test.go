// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordClassification(t *testing.T) {
	before := testutil.ToFloat64(Classifications.WithLabelValues("Balanced", "none"))
	RecordClassification("Balanced", "")
	after := testutil.ToFloat64(Classifications.WithLabelValues("Balanced", "none"))
	if after-before != 1 {
		t.Errorf("expected counter to increase by 1, got %v", after-before)
	}
}

func TestRecordFundLookup(t *testing.T) {
	tests := []struct {
		name     string
		category string
		found    int
		result   string
	}{
		{"hit", "Conservative", 3, "hit"},
		{"empty", "Speculative", 0, "empty"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := FundLookups.WithLabelValues(tt.category, tt.result)
			before := testutil.ToFloat64(c)
			RecordFundLookup(tt.category, tt.found)
			if got := testutil.ToFloat64(c) - before; got != 1 {
				t.Errorf("counter delta = %v, want 1", got)
			}
		})
	}
}

func TestRecordCatalogReload(t *testing.T) {
	RecordCatalogReload("csv", 12, nil)
	if got := testutil.ToFloat64(CatalogFunds); got != 12 {
		t.Errorf("CatalogFunds = %v, want 12", got)
	}

	RecordCatalogReload("csv", 0, errors.New("parse error"))
	if got := testutil.ToFloat64(CatalogFunds); got != 12 {
		t.Errorf("failed reload changed CatalogFunds to %v", got)
	}
}

func TestRecordDelivery(t *testing.T) {
	c := DeliveryAttempts.WithLabelValues("email", "sync", "failed", "CONNECTION_FAILED")
	before := testutil.ToFloat64(c)
	RecordDelivery("email", "sync", false, "CONNECTION_FAILED", 20*time.Millisecond)
	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Errorf("counter delta = %v, want 1", got)
	}
}

func TestRecordCircuitBreakerTransition(t *testing.T) {
	RecordCircuitBreakerTransition("fund-catalog", "closed", "open", 2)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("fund-catalog")); got != 2 {
		t.Errorf("state = %v, want 2", got)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("active requests = %v, want %v", got, before)
	}
}

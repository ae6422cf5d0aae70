// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

// Package profile defines the investor profile, the investment category it
// maps to, and the fixed integer encodings the classifier is trained on.
//
// The encoding tables are shared by training and inference. Changing the
// order of any values slice changes the meaning of persisted models.
package profile

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned by the codecs and parsers.
var (
	ErrUnknownCode  = errors.New("unknown code")
	ErrUnknownLabel = errors.New("unknown label")
)

// RiskAppetite is the investor's stated tolerance for risk.
type RiskAppetite string

// Risk appetites.
const (
	RiskLow    RiskAppetite = "Low"
	RiskMedium RiskAppetite = "Medium"
	RiskHigh   RiskAppetite = "High"
)

// Goal is what the investor is saving for.
type Goal string

// Goals.
const (
	GoalEducation      Goal = "Education"
	GoalTravel         Goal = "Travel"
	GoalRetirement     Goal = "Retirement"
	GoalWealthCreation Goal = "Wealth Creation"
)

// Horizon is the investment duration bucket.
type Horizon string

// Horizons.
const (
	HorizonShort  Horizon = "1-3 yrs"
	HorizonMedium Horizon = "3-5 yrs"
	HorizonLong   Horizon = "5+ yrs"
)

// Category is the final investor-risk classification.
type Category string

// Categories, in increasing order of risk exposure.
const (
	Conservative Category = "Conservative"
	Balanced     Category = "Balanced"
	Aggressive   Category = "Aggressive"
)

// codec maps the values of a label type to contiguous codes. The code of a
// value is its index in values.
type codec[T ~string] struct {
	kind   string
	values []T
}

func (c codec[T]) encode(v T) (int, error) {
	for i, candidate := range c.values {
		if candidate == v {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%s %q: %w", c.kind, string(v), ErrUnknownLabel)
}

func (c codec[T]) decode(code int) (T, error) {
	if code < 0 || code >= len(c.values) {
		var zero T
		return zero, fmt.Errorf("%s code %d: %w", c.kind, code, ErrUnknownCode)
	}
	return c.values[code], nil
}

func (c codec[T]) list() []T {
	out := make([]T, len(c.values))
	copy(out, c.values)
	return out
}

var (
	riskCodec     = codec[RiskAppetite]{kind: "risk appetite", values: []RiskAppetite{RiskLow, RiskMedium, RiskHigh}}
	goalCodec     = codec[Goal]{kind: "goal", values: []Goal{GoalEducation, GoalTravel, GoalRetirement, GoalWealthCreation}}
	horizonCodec  = codec[Horizon]{kind: "horizon", values: []Horizon{HorizonShort, HorizonMedium, HorizonLong}}
	categoryCodec = codec[Category]{kind: "category", values: []Category{Conservative, Balanced, Aggressive}}
)

// EncodeRisk returns the integer code of r (Low=0, Medium=1, High=2).
func EncodeRisk(r RiskAppetite) (int, error) { return riskCodec.encode(r) }

// DecodeRisk is the inverse of EncodeRisk.
func DecodeRisk(code int) (RiskAppetite, error) { return riskCodec.decode(code) }

// EncodeGoal returns the integer code of g
// (Education=0, Travel=1, Retirement=2, Wealth Creation=3).
func EncodeGoal(g Goal) (int, error) { return goalCodec.encode(g) }

// DecodeGoal is the inverse of EncodeGoal.
func DecodeGoal(code int) (Goal, error) { return goalCodec.decode(code) }

// EncodeHorizon returns the integer code of h ("1-3 yrs"=0, "3-5 yrs"=1, "5+ yrs"=2).
func EncodeHorizon(h Horizon) (int, error) { return horizonCodec.encode(h) }

// DecodeHorizon is the inverse of EncodeHorizon.
func DecodeHorizon(code int) (Horizon, error) { return horizonCodec.decode(code) }

// EncodeCategory returns the class index of c (Conservative=0, Balanced=1, Aggressive=2).
func EncodeCategory(c Category) (int, error) { return categoryCodec.encode(c) }

// DecodeCategory is the inverse of EncodeCategory.
func DecodeCategory(code int) (Category, error) { return categoryCodec.decode(code) }

// Risks lists every risk appetite in code order.
func Risks() []RiskAppetite { return riskCodec.list() }

// Goals lists every goal in code order.
func Goals() []Goal { return goalCodec.list() }

// Horizons lists every horizon in code order.
func Horizons() []Horizon { return horizonCodec.list() }

// Categories lists every category in code order.
func Categories() []Category { return categoryCodec.list() }

// NumCategories is the number of classes the classifier predicts.
const NumCategories = 3

// Rank is the category's position in the risk order, or -1 when unknown.
func (c Category) Rank() int {
	code, err := categoryCodec.encode(c)
	if err != nil {
		return -1
	}
	return code
}

// Valid reports whether c is one of the three categories.
func (c Category) Valid() bool { return c.Rank() >= 0 }

// String implements fmt.Stringer.
func (c Category) String() string { return string(c) }

func squash(s string) string {
	r := strings.NewReplacer(" ", "", "_", "", "-", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(s)))
}

// ParseRisk accepts the display label in any case.
func ParseRisk(s string) (RiskAppetite, error) {
	key := squash(s)
	for _, r := range riskCodec.values {
		if squash(string(r)) == key {
			return r, nil
		}
	}
	return "", fmt.Errorf("risk appetite %q: %w", s, ErrUnknownLabel)
}

// ParseGoal accepts "Wealth Creation", "wealth_creation" or "WealthCreation".
func ParseGoal(s string) (Goal, error) {
	key := squash(s)
	for _, g := range goalCodec.values {
		if squash(string(g)) == key {
			return g, nil
		}
	}
	return "", fmt.Errorf("goal %q: %w", s, ErrUnknownLabel)
}

// ParseHorizon accepts "1-3 yrs", "1-3y", "1-3 years" and "1-3".
func ParseHorizon(s string) (Horizon, error) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
	for _, suffix := range []string{"years", "year", "yrs", "yr", "y"} {
		if strings.HasSuffix(key, suffix) {
			key = strings.TrimSuffix(key, suffix)
			break
		}
	}
	switch key {
	case "1-3":
		return HorizonShort, nil
	case "3-5":
		return HorizonMedium, nil
	case "5+":
		return HorizonLong, nil
	}
	return "", fmt.Errorf("horizon %q: %w", s, ErrUnknownLabel)
}

// ParseCategory accepts the category name in any case.
func ParseCategory(s string) (Category, error) {
	key := squash(s)
	for _, c := range categoryCodec.values {
		if squash(string(c)) == key {
			return c, nil
		}
	}
	return "", fmt.Errorf("category %q: %w", s, ErrUnknownLabel)
}

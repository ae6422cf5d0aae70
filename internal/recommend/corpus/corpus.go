// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

// Package corpus generates the synthetic, rule-labelled training corpus the
// category classifier learns from.
//
// Features are drawn uniformly from configured ranges and every sample is
// labelled with DeriveLabel. The label rule is deterministic. The sampled
// features are not, unless a non-zero Seed is configured.
package corpus

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/fundwise/internal/profile"
)

// AggressiveIncomeThreshold is the monthly income above which a high-risk,
// long-horizon sample is labelled Aggressive. The post-classification
// override uses a different threshold; see recommend.OverrideIncomeThreshold.
const AggressiveIncomeThreshold = 60000

// Config describes the corpus size and the sampling ranges. Ranges are inclusive.
type Config struct {
	Size       int   `json:"size"`
	Seed       int64 `json:"seed"`
	AgeMin     int   `json:"age_min"`
	AgeMax     int   `json:"age_max"`
	IncomeMin  int   `json:"income_min"`
	IncomeMax  int   `json:"income_max"`
	SavingsMin int   `json:"savings_min"`
	SavingsMax int   `json:"savings_max"`
}

// DefaultConfig returns 500 samples over age 22..60, income 20000..150000
// and savings 5000..500000. Seed 0 draws a fresh corpus on every start.
func DefaultConfig() Config {
	return Config{
		Size:       500,
		AgeMin:     22,
		AgeMax:     60,
		IncomeMin:  20000,
		IncomeMax:  150000,
		SavingsMin: 5000,
		SavingsMax: 500000,
	}
}

// Validate rejects empty corpora and inverted or negative ranges.
func (c Config) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("corpus size must be positive, got %d", c.Size)
	}
	if c.AgeMin < 0 || c.AgeMin > c.AgeMax {
		return fmt.Errorf("invalid age range [%d, %d]", c.AgeMin, c.AgeMax)
	}
	if c.IncomeMin < 0 || c.IncomeMin > c.IncomeMax {
		return fmt.Errorf("invalid income range [%d, %d]", c.IncomeMin, c.IncomeMax)
	}
	if c.SavingsMin < 0 || c.SavingsMin > c.SavingsMax {
		return fmt.Errorf("invalid savings range [%d, %d]", c.SavingsMin, c.SavingsMax)
	}
	return nil
}

// DeriveLabel applies the training label rule, first match wins:
//
//  1. High risk, income above 60000 and a 5+ year horizon: Aggressive.
//  2. Medium risk and a horizon of 3-5 or 5+ years: Balanced.
//  3. Anything else: Conservative.
//
// Age, savings and goal do not influence the label.
func DeriveLabel(p profile.Profile) profile.Category {
	switch {
	case p.RiskAppetite == profile.RiskHigh &&
		p.MonthlyIncome > AggressiveIncomeThreshold &&
		p.Horizon == profile.HorizonLong:
		return profile.Aggressive
	case p.RiskAppetite == profile.RiskMedium &&
		(p.Horizon == profile.HorizonMedium || p.Horizon == profile.HorizonLong):
		return profile.Balanced
	default:
		return profile.Conservative
	}
}

// Generate draws cfg.Size labelled samples from rng.
func Generate(cfg Config, rng *rand.Rand) ([]profile.LabeledSample, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("corpus: nil random source")
	}

	risks, goals, horizons := profile.Risks(), profile.Goals(), profile.Horizons()
	samples := make([]profile.LabeledSample, cfg.Size)
	for i := range samples {
		p := profile.Profile{
			Age:           between(rng, cfg.AgeMin, cfg.AgeMax),
			MonthlyIncome: float64(between(rng, cfg.IncomeMin, cfg.IncomeMax)),
			Savings:       float64(between(rng, cfg.SavingsMin, cfg.SavingsMax)),
			RiskAppetite:  risks[rng.Intn(len(risks))],
			Goal:          goals[rng.Intn(len(goals))],
			Horizon:       horizons[rng.Intn(len(horizons))],
		}
		samples[i] = profile.LabeledSample{Profile: p, Category: DeriveLabel(p)}
	}
	return samples, nil
}

func between(rng *rand.Rand, lo, hi int) int {
	return lo + rng.Intn(hi-lo+1)
}

// Generator produces corpora for the engine. It is safe for concurrent use.
type Generator struct {
	cfg Config

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator validates cfg and seeds the random source. A zero seed is
// replaced with the current time.
func NewGenerator(cfg Config) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Generator{
		cfg: cfg,
		rng: rand.New(rand.NewSource(seed)), //nolint:gosec // synthetic data, not security sensitive
	}, nil
}

// Corpus draws a new corpus. ctx is checked once before sampling.
func (g *Generator) Corpus(ctx context.Context) ([]profile.LabeledSample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return Generate(g.cfg, g.rng)
}

// Config returns the generator configuration.
func (g *Generator) Config() Config {
	return g.cfg
}

// Fingerprint identifies the corpus distribution: two generators with the
// same configuration share a fingerprint.
func (g *Generator) Fingerprint() string {
	return Fingerprint(g.cfg)
}

// Fingerprint hashes cfg into a short stable identifier.
func Fingerprint(cfg Config) string {
	raw, err := json.Marshal(cfg)
	if err != nil {
		raw = []byte(fmt.Sprintf("%+v", cfg))
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:8])
}

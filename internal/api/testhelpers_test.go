// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/fundwise/internal/delivery"
	"github.com/tomtom215/fundwise/internal/funds"
	"github.com/tomtom215/fundwise/internal/models"
	"github.com/tomtom215/fundwise/internal/profile"
	"github.com/tomtom215/fundwise/internal/recommend"
	"github.com/tomtom215/fundwise/internal/recommend/algorithms"
	"github.com/tomtom215/fundwise/internal/recommend/corpus"
	"github.com/tomtom215/fundwise/internal/report"
)

// fakeChannel records sends instead of talking to a mail server.
type fakeChannel struct {
	mu    sync.Mutex
	sent  []delivery.SendParams
	failC string
}

func (c *fakeChannel) Name() string { return "fake" }

func (c *fakeChannel) Send(_ context.Context, params *delivery.SendParams) *delivery.DeliveryResult {
	c.mu.Lock()
	c.sent = append(c.sent, *params)
	c.mu.Unlock()

	if c.failC != "" {
		return &delivery.DeliveryResult{
			Recipient:    params.Recipient,
			ErrorCode:    c.failC,
			ErrorMessage: "mail server said no",
		}
	}
	now := time.Now().UTC()
	return &delivery.DeliveryResult{Success: true, Recipient: params.Recipient, DeliveredAt: &now}
}

func (c *fakeChannel) calls() []delivery.SendParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]delivery.SendParams(nil), c.sent...)
}

// failingCorpus makes every training attempt fail.
type failingCorpus struct{}

func (failingCorpus) Corpus(context.Context) ([]profile.LabeledSample, error) {
	return nil, errors.New("corpus unavailable")
}

func (failingCorpus) Fingerprint() string { return "failing" }

type envOptions struct {
	algorithm       string
	brokenModel     bool
	noReport        bool
	delivery        bool
	async           bool
	failDelivery    string
	unloadedCatalog bool
	middleware      *ChiMiddlewareConfig
}

type testEnv struct {
	handler    http.Handler
	channel    *fakeChannel
	dispatcher *delivery.Dispatcher
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	cfg := recommend.DefaultConfig()
	cfg.Algorithm = recommend.AlgorithmRules
	if opts.algorithm != "" {
		cfg.Algorithm = opts.algorithm
	}
	cfg.Corpus.Seed = 7

	var source recommend.CorpusSource = failingCorpus{}
	if !opts.brokenModel {
		gen, err := corpus.NewGenerator(cfg.Corpus)
		if err != nil {
			t.Fatalf("NewGenerator() error = %v", err)
		}
		source = gen
	}
	factory, err := algorithms.Factory(cfg)
	if err != nil {
		t.Fatalf("Factory() error = %v", err)
	}
	engine, err := recommend.NewEngine(cfg, factory, source, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	if !opts.brokenModel {
		if err := engine.Warmup(context.Background()); err != nil {
			t.Fatalf("Warmup() error = %v", err)
		}
	}

	catalog := funds.NewStore(funds.EmbeddedSource{}, zerolog.Nop())
	if !opts.unloadedCatalog {
		if err := catalog.Reload(context.Background()); err != nil {
			t.Fatalf("Reload() error = %v", err)
		}
	}

	deps := HandlerDeps{Engine: engine, Catalog: catalog, Version: "test"}
	if !opts.noReport {
		deps.Renderer = report.NewRenderer(report.DefaultConfig())
	}

	env := &testEnv{}
	if opts.delivery {
		env.channel = &fakeChannel{failC: opts.failDelivery}

		var status *delivery.StatusStore
		if opts.async {
			status, err = delivery.OpenStatusStore(delivery.StatusConfig{TTL: time.Hour})
			if err != nil {
				t.Fatalf("OpenStatusStore() error = %v", err)
			}
		}
		dcfg := delivery.DefaultDispatcherConfig()
		dcfg.RatePerMinute = 0
		env.dispatcher, err = delivery.NewDispatcher(env.channel, status, dcfg, zerolog.Nop())
		if err != nil {
			t.Fatalf("NewDispatcher() error = %v", err)
		}
		deps.Dispatcher = env.dispatcher
		t.Cleanup(func() { _ = env.dispatcher.Close() })
	}

	h, err := NewHandler(deps)
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}

	mwCfg := opts.middleware
	if mwCfg == nil {
		mwCfg = DefaultChiMiddlewareConfig()
		mwCfg.RateLimitRequests = 0
	}
	env.handler = NewRouter(h, NewChiMiddleware(mwCfg)).Setup()
	return env
}

// startWorker runs the async delivery worker until the test ends. The
// dispatcher itself is closed by the cleanup newTestEnv registered.
func (e *testEnv) startWorker(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.dispatcher.Serve(ctx) }()

	deadline := time.Now().Add(5 * time.Second)
	for !e.dispatcher.Running() {
		if time.Now().After(deadline) {
			cancel()
			t.Fatal("delivery worker did not start")
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

// envelope mirrors models.APIResponse with the data left raw.
type envelope struct {
	Status string           `json:"status"`
	Data   json.RawMessage  `json:"data"`
	Error  *models.APIError `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, w.Body.String())
	}
	return env
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()

	env := decodeEnvelope(t, w)
	if env.Status != "success" {
		t.Fatalf("status = %q, want success (body %s)", env.Status, w.Body.String())
	}
	if err := json.Unmarshal(env.Data, dst); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func expectError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) *models.APIError {
	t.Helper()

	if w.Code != status {
		t.Fatalf("status code = %d, want %d (body %s)", w.Code, status, w.Body.String())
	}
	env := decodeEnvelope(t, w)
	if env.Status != "error" || env.Error == nil {
		t.Fatalf("expected error envelope, got %s", w.Body.String())
	}
	if env.Error.Code != code {
		t.Errorf("error code = %q, want %q", env.Error.Code, code)
	}
	return env.Error
}

func conservativeProfile() map[string]interface{} {
	return map[string]interface{}{
		"age": 25, "monthly_income": 30000, "savings": 10000,
		"risk_appetite": "Low", "goal": "Education", "horizon": "1-3 yrs",
	}
}

func aggressiveProfile() map[string]interface{} {
	return map[string]interface{}{
		"age": 45, "monthly_income": 90000, "savings": 200000,
		"risk_appetite": "High", "goal": "Wealth Creation", "horizon": "5+ yrs",
	}
}

func balancedProfile() map[string]interface{} {
	return map[string]interface{}{
		"age": 35, "monthly_income": 50000, "savings": 50000,
		"risk_appetite": "Medium", "goal": "Retirement", "horizon": "3-5 yrs",
	}
}

func with(base map[string]interface{}, key string, value interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+1)
	for k, v := range base {
		out[k] = v
	}
	if value == nil {
		delete(out, key)
	} else {
		out[key] = value
	}
	return out
}

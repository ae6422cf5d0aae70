// Fundwise - Investor Risk Profiling and Fund Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fundwise

package delivery

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/fundwise/internal/logging"
	"github.com/tomtom215/fundwise/internal/metrics"
)

var (
	// ErrAsyncDisabled is returned by Enqueue when no status store is configured.
	ErrAsyncDisabled = errors.New("asynchronous delivery is disabled")

	// ErrQueueNotRunning is returned by Enqueue before the worker has started
	// or after it stopped.
	ErrQueueNotRunning = errors.New("delivery queue is not running")
)

// Delivery modes used as metric labels.
const (
	ModeSync  = "sync"
	ModeAsync = "async"
)

const handlerName = "report-delivery"

// DispatcherConfig configures sync and async delivery.
type DispatcherConfig struct {
	// RatePerMinute caps outbound sends. Zero disables the limit.
	RatePerMinute int

	// Topic is the in-process queue topic.
	Topic string

	// QueueBuffer is the subscriber channel buffer.
	QueueBuffer int64

	// JobTimeout bounds a single async send, including the rate limit wait.
	JobTimeout time.Duration

	// CloseTimeout is how long the worker waits for in-flight jobs on shutdown.
	CloseTimeout time.Duration
}

// DefaultDispatcherConfig returns production defaults.
func DefaultDispatcherConfig() DispatcherConfig {
	return DispatcherConfig{
		RatePerMinute: 30,
		Topic:         "fundwise.deliveries",
		QueueBuffer:   64,
		JobTimeout:    2 * time.Minute,
		CloseTimeout:  30 * time.Second,
	}
}

// jobPayload is the queued message body.
type jobPayload struct {
	JobID       string       `json:"job_id"`
	Recipient   string       `json:"recipient"`
	Subject     string       `json:"subject"`
	BodyText    string       `json:"body_text"`
	Attachments []Attachment `json:"attachments"`
}

// Dispatcher sends reports through a Channel, either inline (Deliver) or
// through an in-process Watermill queue (Enqueue). Failed deliveries are
// recorded and never retried.
type Dispatcher struct {
	channel Channel
	status  *StatusStore
	limiter *rate.Limiter
	config  DispatcherConfig
	logger  zerolog.Logger

	pubsub   *gochannel.GoChannel
	wmLogger watermill.LoggerAdapter

	mu     sync.Mutex
	router *message.Router
}

// NewDispatcher creates a dispatcher. status may be nil, which disables
// Enqueue.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewDispatcher(ch Channel, status *StatusStore, cfg DispatcherConfig, logger zerolog.Logger) (*Dispatcher, error) {
	if ch == nil {
		return nil, errors.New("delivery channel is required")
	}
	if cfg.RatePerMinute < 0 {
		return nil, fmt.Errorf("rate per minute must not be negative: %d", cfg.RatePerMinute)
	}
	defaults := DefaultDispatcherConfig()
	if cfg.Topic == "" {
		cfg.Topic = defaults.Topic
	}
	if cfg.QueueBuffer <= 0 {
		cfg.QueueBuffer = defaults.QueueBuffer
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = defaults.JobTimeout
	}
	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = defaults.CloseTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RatePerMinute)), 1)
	}

	logger = logger.With().Str("component", "delivery").Logger()
	wmLogger := logging.NewWatermillAdapter(logger)

	return &Dispatcher{
		channel:  ch,
		status:   status,
		limiter:  limiter,
		config:   cfg,
		logger:   logger,
		wmLogger: wmLogger,
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: cfg.QueueBuffer,
		}, wmLogger),
	}, nil
}

// AsyncEnabled reports whether Enqueue can be used.
func (d *Dispatcher) AsyncEnabled() bool {
	return d.status != nil
}

// ChannelName returns the name of the channel deliveries go out on.
func (d *Dispatcher) ChannelName() string {
	return d.channel.Name()
}

// Deliver sends params inline and returns the outcome.
func (d *Dispatcher) Deliver(ctx context.Context, params *SendParams) *DeliveryResult {
	return d.send(ctx, params, ModeSync)
}

func (d *Dispatcher) send(ctx context.Context, params *SendParams, mode string) *DeliveryResult {
	start := time.Now()

	var result *DeliveryResult
	if err := d.limiter.Wait(ctx); err != nil {
		result = failure(recipientOf(params), ErrorCodeRateLimited, fmt.Errorf("outbound rate limit: %w", err))
	} else {
		result = d.channel.Send(ctx, params)
	}

	metrics.RecordDelivery(d.channel.Name(), mode, result.Success, result.ErrorCode, time.Since(start))
	return result
}

func recipientOf(params *SendParams) string {
	if params == nil {
		return ""
	}
	return params.Recipient
}

// Enqueue records a queued job and publishes it for the worker. The
// returned job is the initial status record.
func (d *Dispatcher) Enqueue(ctx context.Context, params *SendParams) (*Job, error) {
	if d.status == nil {
		return nil, ErrAsyncDisabled
	}
	if params == nil {
		return nil, errors.New("send parameters are required")
	}
	if !d.Running() {
		return nil, ErrQueueNotRunning
	}

	now := time.Now().UTC()
	job := &Job{
		ID:        uuid.NewString(),
		State:     JobQueued,
		Channel:   d.channel.Name(),
		Recipient: logging.MaskEmail(params.Recipient),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := d.status.Put(ctx, job); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(&jobPayload{
		JobID:       job.ID,
		Recipient:   params.Recipient,
		Subject:     params.Subject,
		BodyText:    params.BodyText,
		Attachments: params.Attachments,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal delivery job: %w", err)
	}

	msg := message.NewMessage(job.ID, payload)
	if reqID := logging.RequestIDFromContext(ctx); reqID != "" {
		middleware.SetCorrelationID(reqID, msg)
	}

	metrics.DeliveryQueueDepth.Inc()
	if err := d.pubsub.Publish(d.config.Topic, msg); err != nil {
		metrics.DeliveryQueueDepth.Dec()
		d.markFailed(ctx, job.ID, ErrorCodeSendFailed, err)
		return nil, fmt.Errorf("publish delivery job: %w", err)
	}

	logging.Ctx(ctx).Debug().Str("job_id", job.ID).Msg("delivery job queued")
	return job, nil
}

// Status returns the status record of an async job.
func (d *Dispatcher) Status(ctx context.Context, id string) (*Job, error) {
	if d.status == nil {
		return nil, ErrJobNotFound
	}
	return d.status.Get(ctx, id)
}

// handle processes one queued job. It always acks: failures are recorded
// in the job status instead of being redelivered.
func (d *Dispatcher) handle(msg *message.Message) error {
	defer metrics.DeliveryQueueDepth.Dec()

	var p jobPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		d.logger.Error().Err(err).Str("message_uuid", msg.UUID).Msg("dropping malformed delivery job")
		d.markFailed(context.Background(), msg.UUID, ErrorCodeSendFailed, err)
		return nil
	}

	log := d.logger.With().
		Str("job_id", p.JobID).
		Str("correlation_id", middleware.MessageCorrelationID(msg)).
		Logger()
	ctx := logging.ContextWithJobID(msg.Context(), p.JobID)
	ctx = logging.ContextWithLogger(ctx, log)

	// Status writes use a fresh context so a cancelled send is still recorded.
	statusCtx := context.WithoutCancel(ctx)

	if _, err := d.status.Update(statusCtx, p.JobID, func(j *Job) {
		j.State = JobSending
		j.UpdatedAt = time.Now().UTC()
	}); err != nil {
		log.Warn().Err(err).Msg("failed to mark delivery job as sending")
	}

	result := d.send(ctx, &SendParams{
		Recipient:   p.Recipient,
		Subject:     p.Subject,
		BodyText:    p.BodyText,
		Attachments: p.Attachments,
		JobID:       p.JobID,
	}, ModeAsync)

	if _, err := d.status.Update(statusCtx, p.JobID, func(j *Job) {
		j.UpdatedAt = time.Now().UTC()
		if result.Success {
			j.State = JobSent
			j.DeliveredAt = result.DeliveredAt
			return
		}
		j.State = JobFailed
		j.ErrorCode = result.ErrorCode
		j.Error = result.ErrorMessage
	}); err != nil {
		log.Warn().Err(err).Msg("failed to record delivery job result")
	}

	if result.Success {
		log.Info().Msg("delivery job sent")
	} else {
		log.Warn().Str("error_code", result.ErrorCode).Msg("delivery job failed")
	}
	return nil
}

func (d *Dispatcher) markFailed(ctx context.Context, id, code string, cause error) {
	if d.status == nil || id == "" {
		return
	}
	_, err := d.status.Update(context.WithoutCancel(ctx), id, func(j *Job) {
		j.State = JobFailed
		j.ErrorCode = code
		j.Error = cause.Error()
		j.UpdatedAt = time.Now().UTC()
	})
	if err != nil && !errors.Is(err, ErrJobNotFound) {
		d.logger.Warn().Err(err).Str("job_id", id).Msg("failed to mark delivery job as failed")
	}
}

// Serve runs the queue worker until ctx is cancelled. A Watermill router
// can only run once, so every call builds a fresh one.
func (d *Dispatcher) Serve(ctx context.Context) error {
	if d.status == nil {
		<-ctx.Done()
		return ctx.Err()
	}

	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: d.config.CloseTimeout}, d.wmLogger)
	if err != nil {
		return fmt.Errorf("create delivery router: %w", err)
	}
	router.AddMiddleware(middleware.Timeout(d.config.JobTimeout))
	router.AddConsumerHandler(handlerName, d.config.Topic, d.pubsub, d.handle)

	d.mu.Lock()
	d.router = router
	d.mu.Unlock()

	d.logger.Info().Str("topic", d.config.Topic).Int("rate_per_minute", d.config.RatePerMinute).Msg("delivery worker started")
	err = router.Run(ctx)
	d.logger.Info().Msg("delivery worker stopped")

	if err != nil {
		return fmt.Errorf("delivery router: %w", err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logging.
func (d *Dispatcher) String() string {
	return "delivery-worker"
}

// Running reports whether the queue worker is accepting jobs.
func (d *Dispatcher) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.router != nil && d.router.IsRunning() && !d.router.IsClosed()
}

// Close shuts down the queue and the status store. Call it after the
// worker has stopped.
func (d *Dispatcher) Close() error {
	var errs []error
	if err := d.pubsub.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close delivery queue: %w", err))
	}
	if d.status != nil {
		if err := d.status.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close status store: %w", err))
		}
	}
	return errors.Join(errs...)
}

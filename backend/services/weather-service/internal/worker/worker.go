// Package worker feeds collector messages from a queue into the ingestion service.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"weatherwatch/backend/services/weather-service/internal/models"
	"weatherwatch/backend/services/weather-service/internal/observability"
	"weatherwatch/backend/services/weather-service/internal/queue"
	"weatherwatch/backend/services/weather-service/internal/service"
)

// Ingester stores validated readings.
type Ingester interface {
	CreateLog(ctx context.Context, raw models.RawReading) (*models.WeatherLog, error)
}

// MinSourceBackoff is the shortest pause after a failed read from the source.
const MinSourceBackoff = time.Second

// Options tunes retry behaviour. MaxAttempts defaults to 3; a zero RetryDelay retries
// ingestion immediately. SourceBackoff never drops below MinSourceBackoff.
type Options struct {
	SourceName    string
	MaxAttempts   int
	RetryDelay    time.Duration
	SourceBackoff time.Duration
	Clock         clockwork.Clock
}

// Worker consumes one message at a time. Store failures are retried a bounded number of
// times; malformed or invalid messages are dropped.
type Worker struct {
	source   queue.Source
	ingester Ingester
	metrics  *observability.Metrics
	logger   *zap.Logger
	opts     Options
}

// New returns a worker reading from source.
func New(source queue.Source, ingester Ingester, metrics *observability.Metrics, logger *zap.Logger, opts Options) *Worker {
	if opts.SourceName == "" {
		opts.SourceName = "queue"
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.RetryDelay < 0 {
		opts.RetryDelay = 0
	}
	if opts.SourceBackoff < MinSourceBackoff {
		opts.SourceBackoff = MinSourceBackoff
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if metrics == nil {
		metrics = observability.NewMetrics(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Worker{
		source:   source,
		ingester: ingester,
		metrics:  metrics,
		logger:   logger.With(zap.String("source", opts.SourceName)),
		opts:     opts,
	}
}

// Run processes messages until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("worker started")
	for {
		delivery, err := w.source.Next(ctx)
		if ctx.Err() != nil {
			w.logger.Info("worker stopped")
			return nil
		}
		if errors.Is(err, queue.ErrNoMessage) {
			continue
		}
		if err != nil {
			w.logger.Error("failed to consume queue", zap.Error(err))
			if !w.wait(ctx, w.opts.SourceBackoff) {
				return nil
			}
			continue
		}

		w.Handle(ctx, delivery)
	}
}

// Handle ingests a single delivery and acknowledges it. Deliveries that exhaust their
// retries are acknowledged too, so one bad record never blocks the queue.
func (w *Worker) Handle(ctx context.Context, d queue.Delivery) {
	outcome := w.ingest(ctx, d.Payload)
	w.metrics.QueueMessages.WithLabelValues(w.opts.SourceName, outcome).Inc()

	if d.Ack == nil {
		return
	}
	if err := d.Ack(ctx); err != nil {
		w.logger.Error("failed to ack message", zap.Error(err))
	}
}

func (w *Worker) ingest(ctx context.Context, payload []byte) string {
	raw, err := DecodeMessage(payload)
	if err != nil {
		w.logger.Warn("dropping malformed message", zap.ByteString("payload", payload), zap.Error(err))
		return "invalid"
	}

	var lastErr error
	for attempt := 1; attempt <= w.opts.MaxAttempts; attempt++ {
		log, err := w.ingester.CreateLog(ctx, raw)
		if err == nil {
			w.logger.Info("reading ingested", zap.String("id", log.ID), zap.String("city", log.City))
			return "ingested"
		}
		if service.IsValidation(err) {
			w.logger.Warn("dropping invalid reading", zap.String("city", raw.City), zap.Error(err))
			return "invalid"
		}

		lastErr = err
		w.logger.Warn("ingestion attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", w.opts.MaxAttempts),
			zap.Error(err),
		)
		if attempt < w.opts.MaxAttempts && !w.wait(ctx, w.opts.RetryDelay) {
			break
		}
	}

	w.logger.Error("giving up on reading", zap.String("city", raw.City), zap.Error(lastErr))
	return "failed"
}

func (w *Worker) wait(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	select {
	case <-ctx.Done():
		return false
	case <-w.opts.Clock.After(d):
		return true
	}
}

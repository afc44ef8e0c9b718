package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/driftapp/drift/backend/internal/domain/model"
	"github.com/driftapp/drift/backend/internal/domain/store"
)

const defaultBatchSize = 100

type Publisher interface {
	Publish(ctx context.Context, event model.OutboxEvent) (string, error)
}

type Metrics interface {
	ObserveOutboxPublished(n int)
	ObserveOutboxFailure()
}

// Job relays committed outbox events to the event stream. An event is marked
// published only after the stream accepted it, so a crash in between means a
// redelivery, never a loss.
type Job struct {
	outbox    store.Outbox
	publisher Publisher
	batchSize int
	metrics   Metrics
	now       func() time.Time
	logger    *zap.Logger
}

func New(outbox store.Outbox, publisher Publisher, batchSize int, logger *zap.Logger) *Job {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		outbox:    outbox,
		publisher: publisher,
		batchSize: batchSize,
		now:       time.Now,
		logger:    logger,
	}
}

func (j *Job) AttachMetrics(metrics Metrics) {
	j.metrics = metrics
}

// Run drains pending events batch by batch and returns how many it published.
func (j *Job) Run(ctx context.Context) (int, error) {
	total := 0
	for {
		n, err := j.runBatch(ctx)
		total += n
		if err != nil {
			if j.metrics != nil {
				j.metrics.ObserveOutboxFailure()
			}
			return total, err
		}
		if n < j.batchSize {
			break
		}
	}

	if total > 0 {
		j.logger.Info("outbox relay published events", zap.Int("published", total))
	}
	return total, nil
}

func (j *Job) runBatch(ctx context.Context) (int, error) {
	if j.outbox == nil || j.publisher == nil {
		return 0, nil
	}

	events, err := j.outbox.FetchPending(ctx, j.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch pending outbox events: %w", err)
	}
	if len(events) == 0 {
		return 0, nil
	}

	published := make([]uuid.UUID, 0, len(events))
	var publishErr error
	for _, event := range events {
		if _, err := j.publisher.Publish(ctx, event); err != nil {
			publishErr = fmt.Errorf("publish outbox event %s: %w", event.ID, err)
			break
		}
		published = append(published, event.ID)
	}

	if len(published) > 0 {
		if err := j.outbox.MarkPublished(ctx, published, j.now().UTC()); err != nil {
			return 0, fmt.Errorf("mark outbox events published: %w", err)
		}
		if j.metrics != nil {
			j.metrics.ObserveOutboxPublished(len(published))
		}
	}

	return len(published), publishErr
}

// Loop runs the relay immediately and then on every tick until ctx ends.
// A failed pass is logged and retried on the next tick.
func (j *Job) Loop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Second
	}

	j.runLogged(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.runLogged(ctx)
		}
	}
}

func (j *Job) runLogged(ctx context.Context) {
	if _, err := j.Run(ctx); err != nil && ctx.Err() == nil {
		j.logger.Warn("outbox relay pass failed", zap.Error(err))
	}
}

package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/driftapp/drift/backend/internal/domain/model"
)

const DefaultEventStream = "drift:relationship-events"

// EventStreamRepo appends relationship events to a capped Redis stream.
// Consumers dedupe on the event_id field.
type EventStreamRepo struct {
	client *goredis.Client
	stream string
	maxLen int64
}

func NewEventStreamRepo(client *goredis.Client, stream string, maxLen int64) *EventStreamRepo {
	stream = strings.TrimSpace(stream)
	if stream == "" {
		stream = DefaultEventStream
	}
	if maxLen < 0 {
		maxLen = 0
	}
	return &EventStreamRepo{client: client, stream: stream, maxLen: maxLen}
}

func (r *EventStreamRepo) Stream() string {
	return r.stream
}

func (r *EventStreamRepo) Publish(ctx context.Context, event model.OutboxEvent) (string, error) {
	if r.client == nil {
		return "", fmt.Errorf("redis client is nil")
	}

	recipients, err := json.Marshal(event.Recipients)
	if err != nil {
		return "", fmt.Errorf("marshal event recipients: %w", err)
	}
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return "", fmt.Errorf("marshal event payload: %w", err)
	}

	args := &goredis.XAddArgs{
		Stream: r.stream,
		Values: map[string]any{
			"event_id":   event.ID.String(),
			"kind":       string(event.Kind),
			"recipients": string(recipients),
			"payload":    string(payload),
			"created_at": event.CreatedAt.UTC().Format(time.RFC3339Nano),
		},
	}
	if r.maxLen > 0 {
		args.MaxLen = r.maxLen
		args.Approx = true
	}

	id, err := r.client.XAdd(ctx, args).Result()
	if err != nil {
		return "", fmt.Errorf("xadd %s: %w", r.stream, err)
	}
	return id, nil
}

package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/driftapp/drift/backend/internal/domain/enums"
	"github.com/driftapp/drift/backend/internal/domain/model"
)

func (t *txStore) AppendOutbox(ctx context.Context, event model.OutboxEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	createdAt := event.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	recipients, err := json.Marshal(event.Recipients)
	if err != nil {
		return fmt.Errorf("marshal outbox recipients: %w", err)
	}
	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}

	if _, err := t.q.Exec(ctx, `
INSERT INTO outbox_events (
	id,
	kind,
	recipients,
	payload,
	created_at
) VALUES (
	$1,
	$2,
	$3::jsonb,
	$4::jsonb,
	$5
)
`, event.ID, string(event.Kind), string(recipients), string(payload), createdAt); err != nil {
		return wrap("insert outbox event", err)
	}

	return nil
}

func (s *Store) FetchPending(ctx context.Context, limit int) ([]model.OutboxEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx, `
SELECT
	id,
	kind,
	recipients::text,
	payload::text,
	created_at
FROM outbox_events
WHERE published_at IS NULL
ORDER BY created_at ASC, id ASC
LIMIT $1
`, limit)
	if err != nil {
		return nil, wrap("fetch pending outbox events", err)
	}
	defer rows.Close()

	items := make([]model.OutboxEvent, 0, limit)
	for rows.Next() {
		var (
			event      model.OutboxEvent
			kind       string
			recipients string
			payload    string
		)
		if err := rows.Scan(&event.ID, &kind, &recipients, &payload, &event.CreatedAt); err != nil {
			return nil, wrap("scan outbox event", err)
		}
		event.Kind = enums.EventKind(kind)
		if err := json.Unmarshal([]byte(recipients), &event.Recipients); err != nil {
			return nil, fmt.Errorf("decode outbox recipients: %w", err)
		}
		if err := json.Unmarshal([]byte(payload), &event.Payload); err != nil {
			return nil, fmt.Errorf("decode outbox payload: %w", err)
		}
		items = append(items, event)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate outbox events", err)
	}

	return items, nil
}

func (s *Store) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	values := make([]string, 0, len(ids))
	for _, id := range ids {
		values = append(values, id.String())
	}

	if _, err := s.pool.Exec(ctx, `
UPDATE outbox_events
SET published_at = $2
WHERE id = ANY($1::uuid[]) AND published_at IS NULL
`, values, at.UTC()); err != nil {
		return wrap("mark outbox events published", err)
	}

	return nil
}

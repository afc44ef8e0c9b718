package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/driftapp/drift/backend/internal/domain/model"
)

func (t *txStore) BlockExists(ctx context.Context, a, b uuid.UUID) (bool, error) {
	var exists bool
	if err := t.q.QueryRow(ctx, `
SELECT EXISTS (
	SELECT 1
	FROM blocks
	WHERE (actor_id = $1 AND target_id = $2) OR (actor_id = $2 AND target_id = $1)
)
`, a, b).Scan(&exists); err != nil {
		return false, wrap("check block", err)
	}
	return exists, nil
}

func (t *txStore) UpsertBlock(ctx context.Context, block model.Block) error {
	if block.ActorID == uuid.Nil || block.TargetID == uuid.Nil || block.ActorID == block.TargetID {
		return fmt.Errorf("invalid block payload")
	}
	createdAt := block.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	if _, err := t.q.Exec(ctx, `
INSERT INTO blocks (
	actor_id,
	target_id,
	created_at
) VALUES ($1, $2, $3)
ON CONFLICT (actor_id, target_id) DO NOTHING
`, block.ActorID, block.TargetID, createdAt); err != nil {
		return wrap("upsert block", err)
	}

	return nil
}

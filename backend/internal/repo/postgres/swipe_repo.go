package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/driftapp/drift/backend/internal/domain/enums"
	"github.com/driftapp/drift/backend/internal/domain/model"
)

func (t *txStore) InsertSwipe(ctx context.Context, rec model.SwipeRecord) (model.SwipeRecord, error) {
	if rec.SwiperID == uuid.Nil || rec.SwipedID == uuid.Nil {
		return model.SwipeRecord{}, fmt.Errorf("invalid swipe payload")
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	if _, err := t.q.Exec(ctx, `
INSERT INTO swipes (
	id,
	swiper_id,
	swiped_id,
	direction,
	mode,
	created_at
) VALUES ($1, $2, $3, $4, $5, $6)
`, rec.ID, rec.SwiperID, rec.SwipedID, string(rec.Direction), string(rec.Mode), rec.CreatedAt.UTC()); err != nil {
		return model.SwipeRecord{}, wrap("insert swipe", err)
	}

	return rec, nil
}

func (s *Store) ListSwipedTargets(ctx context.Context, swiperID uuid.UUID, mode enums.SwipeMode, limit int) ([]uuid.UUID, error) {
	if limit <= 0 {
		limit = 500
	}

	rows, err := s.pool.Query(ctx, `
SELECT swiped_id
FROM swipes
WHERE swiper_id = $1 AND mode = $2
GROUP BY swiped_id
ORDER BY MAX(created_at) DESC
LIMIT $3
`, swiperID, string(mode), limit)
	if err != nil {
		return nil, wrap("list swiped targets", err)
	}
	defer rows.Close()

	items := make([]uuid.UUID, 0, limit)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, wrap("scan swiped target", err)
		}
		items = append(items, id)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate swiped targets", err)
	}

	return items, nil
}

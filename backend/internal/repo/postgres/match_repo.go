package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/driftapp/drift/backend/internal/domain/enums"
	"github.com/driftapp/drift/backend/internal/domain/model"
	"github.com/driftapp/drift/backend/internal/domain/store"
)

const matchPairColumns = `
	user_a_id,
	user_b_id,
	mode,
	user_a_liked_at,
	user_b_liked_at,
	matched_at,
	created_at,
	updated_at`

func (t *txStore) UpsertMatchPairIfAbsent(ctx context.Context, key model.PairKey, now time.Time) (model.MatchPair, bool, error) {
	pair, err := scanMatchPair(t.q.QueryRow(ctx, `
INSERT INTO match_pairs (
	user_a_id,
	user_b_id,
	mode,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $4)
ON CONFLICT (user_a_id, user_b_id, mode) DO NOTHING
RETURNING`+matchPairColumns, key.UserA, key.UserB, string(key.Mode), now.UTC()))
	if err == nil {
		return pair, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.MatchPair{}, false, wrap("insert match pair", err)
	}

	pair, err = t.getMatchPair(ctx, key)
	if err != nil {
		return model.MatchPair{}, false, err
	}
	return pair, false, nil
}

// MarkLikedIfUnset relies on the row lock taken by UPDATE: a concurrent
// writer for the other side re-evaluates the CASE against this write once it
// commits, so matched_at is set by exactly one statement.
func (t *txStore) MarkLikedIfUnset(ctx context.Context, key model.PairKey, side model.PairSide, at time.Time) (model.MatchPair, bool, error) {
	var query string
	switch side {
	case model.PairSideA:
		query = `
UPDATE match_pairs SET
	user_a_liked_at = $4,
	matched_at = CASE WHEN user_b_liked_at IS NOT NULL THEN COALESCE(matched_at, $4) ELSE matched_at END,
	updated_at = $4
WHERE user_a_id = $1 AND user_b_id = $2 AND mode = $3 AND user_a_liked_at IS NULL
RETURNING` + matchPairColumns
	case model.PairSideB:
		query = `
UPDATE match_pairs SET
	user_b_liked_at = $4,
	matched_at = CASE WHEN user_a_liked_at IS NOT NULL THEN COALESCE(matched_at, $4) ELSE matched_at END,
	updated_at = $4
WHERE user_a_id = $1 AND user_b_id = $2 AND mode = $3 AND user_b_liked_at IS NULL
RETURNING` + matchPairColumns
	default:
		return model.MatchPair{}, false, fmt.Errorf("invalid pair side %q", side)
	}

	pair, err := scanMatchPair(t.q.QueryRow(ctx, query, key.UserA, key.UserB, string(key.Mode), at.UTC()))
	if err == nil {
		return pair, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.MatchPair{}, false, wrap("mark pair liked", err)
	}

	pair, err = t.getMatchPair(ctx, key)
	if err != nil {
		return model.MatchPair{}, false, err
	}
	return pair, false, nil
}

func (t *txStore) getMatchPair(ctx context.Context, key model.PairKey) (model.MatchPair, error) {
	pair, err := scanMatchPair(t.q.QueryRow(ctx, `
SELECT`+matchPairColumns+`
FROM match_pairs
WHERE user_a_id = $1 AND user_b_id = $2 AND mode = $3
`, key.UserA, key.UserB, string(key.Mode)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.MatchPair{}, store.ErrNotFound
		}
		return model.MatchPair{}, wrap("get match pair", err)
	}
	return pair, nil
}

func (s *Store) ListMatches(ctx context.Context, userID uuid.UUID, mode enums.SwipeMode, limit int) ([]model.MatchPair, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx, `
SELECT`+matchPairColumns+`
FROM match_pairs
WHERE
	(user_a_id = $1 OR user_b_id = $1)
	AND mode = $2
	AND matched_at IS NOT NULL
	AND NOT EXISTS (
		SELECT 1
		FROM blocks b
		WHERE (b.actor_id = match_pairs.user_a_id AND b.target_id = match_pairs.user_b_id)
			OR (b.actor_id = match_pairs.user_b_id AND b.target_id = match_pairs.user_a_id)
	)
ORDER BY matched_at DESC
LIMIT $3
`, userID, string(mode), limit)
	if err != nil {
		return nil, wrap("list matches", err)
	}
	defer rows.Close()

	items := make([]model.MatchPair, 0, limit)
	for rows.Next() {
		pair, err := scanMatchPair(rows)
		if err != nil {
			return nil, wrap("scan match", err)
		}
		items = append(items, pair)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate matches", err)
	}

	return items, nil
}

func scanMatchPair(row pgx.Row) (model.MatchPair, error) {
	var (
		pair model.MatchPair
		mode string
	)
	if err := row.Scan(
		&pair.Key.UserA,
		&pair.Key.UserB,
		&mode,
		&pair.UserALikedAt,
		&pair.UserBLikedAt,
		&pair.MatchedAt,
		&pair.CreatedAt,
		&pair.UpdatedAt,
	); err != nil {
		return model.MatchPair{}, err
	}
	pair.Key.Mode = enums.SwipeMode(mode)
	return pair, nil
}

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/driftapp/drift/backend/internal/domain/enums"
	"github.com/driftapp/drift/backend/internal/domain/model"
	"github.com/driftapp/drift/backend/internal/domain/store"
)

const friendRequestColumns = `
	id,
	requester_id,
	addressee_id,
	status,
	created_at,
	updated_at`

func (t *txStore) FriendRequestsBetween(ctx context.Context, a, b uuid.UUID) ([]model.FriendRequest, error) {
	rows, err := t.q.Query(ctx, `
SELECT`+friendRequestColumns+`
FROM friend_requests
WHERE
	(requester_id = $1 AND addressee_id = $2)
	OR (requester_id = $2 AND addressee_id = $1)
ORDER BY created_at DESC, id DESC
`, a, b)
	if err != nil {
		return nil, wrap("list friend requests between", err)
	}
	defer rows.Close()

	items := make([]model.FriendRequest, 0, 2)
	for rows.Next() {
		req, err := scanFriendRequest(rows)
		if err != nil {
			return nil, wrap("scan friend request", err)
		}
		items = append(items, req)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate friend requests", err)
	}

	return items, nil
}

func (t *txStore) GetFriendRequest(ctx context.Context, id uuid.UUID) (model.FriendRequest, error) {
	return getFriendRequest(ctx, t.q, id)
}

func (s *Store) GetFriendRequest(ctx context.Context, id uuid.UUID) (model.FriendRequest, error) {
	return getFriendRequest(ctx, s.pool, id)
}

func getFriendRequest(ctx context.Context, q querier, id uuid.UUID) (model.FriendRequest, error) {
	req, err := scanFriendRequest(q.QueryRow(ctx, `
SELECT`+friendRequestColumns+`
FROM friend_requests
WHERE id = $1
`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.FriendRequest{}, store.ErrNotFound
		}
		return model.FriendRequest{}, wrap("get friend request", err)
	}
	return req, nil
}

// InsertFriendRequest leans on two partial unique indexes: one live row per
// ordered pair and one pending row per unordered pair. Either violation comes
// back as store.ErrConflict.
func (t *txStore) InsertFriendRequest(ctx context.Context, req model.FriendRequest) (model.FriendRequest, error) {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}

	out, err := scanFriendRequest(t.q.QueryRow(ctx, `
INSERT INTO friend_requests (
	id,
	requester_id,
	addressee_id,
	status,
	created_at,
	updated_at
) VALUES ($1, $2, $3, $4, $5, $6)
RETURNING`+friendRequestColumns,
		req.ID, req.RequesterID, req.AddresseeID, string(req.Status), req.CreatedAt.UTC(), req.UpdatedAt.UTC()))
	if err != nil {
		return model.FriendRequest{}, wrap("insert friend request", err)
	}
	return out, nil
}

func (t *txStore) CompareAndSetFriendRequestStatus(ctx context.Context, id uuid.UUID, expected, next enums.FriendRequestStatus, at time.Time) (model.FriendRequest, bool, error) {
	req, err := scanFriendRequest(t.q.QueryRow(ctx, `
UPDATE friend_requests SET
	status = $3,
	updated_at = $4
WHERE id = $1 AND status = $2
RETURNING`+friendRequestColumns, id, string(expected), string(next), at.UTC()))
	if err == nil {
		return req, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.FriendRequest{}, false, wrap("update friend request status", err)
	}

	req, err = getFriendRequest(ctx, t.q, id)
	if err != nil {
		return model.FriendRequest{}, false, err
	}
	return req, false, nil
}

func (s *Store) ListIncomingFriendRequests(ctx context.Context, addresseeID uuid.UUID, limit int) ([]model.FriendRequest, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx, `
SELECT`+friendRequestColumns+`
FROM friend_requests
WHERE addressee_id = $1 AND status = 'pending'
ORDER BY created_at DESC, id DESC
LIMIT $2
`, addresseeID, limit)
	if err != nil {
		return nil, wrap("list incoming friend requests", err)
	}
	defer rows.Close()

	items := make([]model.FriendRequest, 0, limit)
	for rows.Next() {
		req, err := scanFriendRequest(rows)
		if err != nil {
			return nil, wrap("scan friend request", err)
		}
		items = append(items, req)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate incoming friend requests", err)
	}

	return items, nil
}

func scanFriendRequest(row pgx.Row) (model.FriendRequest, error) {
	var (
		req    model.FriendRequest
		status string
	)
	if err := row.Scan(
		&req.ID,
		&req.RequesterID,
		&req.AddresseeID,
		&status,
		&req.CreatedAt,
		&req.UpdatedAt,
	); err != nil {
		return model.FriendRequest{}, err
	}
	req.Status = enums.FriendRequestStatus(status)
	return req, nil
}

package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/driftapp/drift/backend/internal/domain/enums"
	"github.com/driftapp/drift/backend/internal/domain/model"
)

func (t *txStore) CreateConversationIfAbsent(ctx context.Context, conv model.Conversation) (model.Conversation, bool, error) {
	if conv.ID == uuid.Nil {
		conv.ID = uuid.New()
	}

	out, err := scanConversation(t.q.QueryRow(ctx, `
INSERT INTO conversations (
	id,
	user_a_id,
	user_b_id,
	kind,
	origin,
	created_at
) VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_a_id, user_b_id, kind) DO NOTHING
RETURNING id, user_a_id, user_b_id, kind, origin, created_at
`, conv.ID, conv.UserA, conv.UserB, string(conv.Kind), string(conv.Origin), conv.CreatedAt.UTC()))
	if err == nil {
		return out, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return model.Conversation{}, false, wrap("insert conversation", err)
	}

	out, err = scanConversation(t.q.QueryRow(ctx, `
SELECT id, user_a_id, user_b_id, kind, origin, created_at
FROM conversations
WHERE user_a_id = $1 AND user_b_id = $2 AND kind = $3
`, conv.UserA, conv.UserB, string(conv.Kind)))
	if err != nil {
		return model.Conversation{}, false, wrap("get conversation", err)
	}
	return out, false, nil
}

func scanConversation(row pgx.Row) (model.Conversation, error) {
	var (
		conv   model.Conversation
		kind   string
		origin string
	)
	if err := row.Scan(&conv.ID, &conv.UserA, &conv.UserB, &kind, &origin, &conv.CreatedAt); err != nil {
		return model.Conversation{}, err
	}
	conv.Kind = enums.ConversationKind(kind)
	conv.Origin = enums.ConversationOrigin(origin)
	return conv, nil
}

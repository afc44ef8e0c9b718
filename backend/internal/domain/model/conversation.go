package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/driftapp/drift/backend/internal/domain/enums"
)

// Conversation is unique per (UserA, UserB, Kind); UserA sorts before UserB.
type Conversation struct {
	ID        uuid.UUID                `json:"id"`
	UserA     uuid.UUID                `json:"user_a_id"`
	UserB     uuid.UUID                `json:"user_b_id"`
	Kind      enums.ConversationKind   `json:"kind"`
	Origin    enums.ConversationOrigin `json:"origin"`
	CreatedAt time.Time                `json:"created_at"`
}

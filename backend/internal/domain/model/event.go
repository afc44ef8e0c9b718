package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/driftapp/drift/backend/internal/domain/enums"
)

type OutboxEvent struct {
	ID          uuid.UUID       `json:"id"`
	Kind        enums.EventKind `json:"kind"`
	Recipients  []uuid.UUID     `json:"recipients"`
	Payload     map[string]any  `json:"payload"`
	CreatedAt   time.Time       `json:"created_at"`
	PublishedAt *time.Time      `json:"published_at,omitempty"`
}

package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/driftapp/drift/backend/internal/domain/enums"
)

type FriendRequest struct {
	ID          uuid.UUID                 `json:"id"`
	RequesterID uuid.UUID                 `json:"requester_id"`
	AddresseeID uuid.UUID                 `json:"addressee_id"`
	Status      enums.FriendRequestStatus `json:"status"`
	CreatedAt   time.Time                 `json:"created_at"`
	UpdatedAt   time.Time                 `json:"updated_at"`
}

// Involves reports whether the request links exactly the two given users, in either direction.
func (r FriendRequest) Involves(a, b uuid.UUID) bool {
	return (r.RequesterID == a && r.AddresseeID == b) || (r.RequesterID == b && r.AddresseeID == a)
}

type Block struct {
	ActorID   uuid.UUID `json:"actor_id"`
	TargetID  uuid.UUID `json:"target_id"`
	CreatedAt time.Time `json:"created_at"`
}

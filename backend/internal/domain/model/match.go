package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/driftapp/drift/backend/internal/domain/enums"
)

// PairKey addresses the single MatchPair row of an unordered pair in one mode.
// UserA always sorts before UserB.
type PairKey struct {
	UserA uuid.UUID       `json:"user_a_id"`
	UserB uuid.UUID       `json:"user_b_id"`
	Mode  enums.SwipeMode `json:"mode"`
}

func (k PairKey) String() string {
	return string(k.Mode) + ":" + k.UserA.String() + ":" + k.UserB.String()
}

// Other returns the member of the pair that is not user.
func (k PairKey) Other(user uuid.UUID) uuid.UUID {
	if user == k.UserA {
		return k.UserB
	}
	return k.UserA
}

type PairSide string

const (
	PairSideA PairSide = "a"
	PairSideB PairSide = "b"
)

type MatchPair struct {
	Key          PairKey    `json:"key"`
	UserALikedAt *time.Time `json:"user_a_liked_at,omitempty"`
	UserBLikedAt *time.Time `json:"user_b_liked_at,omitempty"`
	MatchedAt    *time.Time `json:"matched_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsMatch is true exactly when both sides have liked.
func (p MatchPair) IsMatch() bool {
	return p.UserALikedAt != nil && p.UserBLikedAt != nil
}

func (p MatchPair) LikedAt(side PairSide) *time.Time {
	if side == PairSideA {
		return p.UserALikedAt
	}
	return p.UserBLikedAt
}

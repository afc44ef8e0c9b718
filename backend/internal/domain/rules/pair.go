package rules

import (
	"bytes"
	"errors"

	"github.com/google/uuid"

	"github.com/driftapp/drift/backend/internal/domain/enums"
	"github.com/driftapp/drift/backend/internal/domain/model"
)

var ErrSelfPair = errors.New("pair requires two distinct users")

// CompareUsers orders identities by their 16 raw bytes, the same order
// PostgreSQL applies to uuid columns.
func CompareUsers(a, b uuid.UUID) int {
	return bytes.Compare(a[:], b[:])
}

// CanonicalPair returns the key both (x, y) and (y, x) resolve to.
func CanonicalPair(x, y uuid.UUID, mode enums.SwipeMode) (model.PairKey, error) {
	switch CompareUsers(x, y) {
	case 0:
		return model.PairKey{}, ErrSelfPair
	case 1:
		x, y = y, x
	}
	return model.PairKey{UserA: x, UserB: y, Mode: mode}, nil
}

// SideOf reports which canonical side user occupies in key.
func SideOf(key model.PairKey, user uuid.UUID) (model.PairSide, bool) {
	switch user {
	case key.UserA:
		return model.PairSideA, true
	case key.UserB:
		return model.PairSideB, true
	default:
		return "", false
	}
}

// NewConversation builds the canonical conversation shell for a pair of users.
func NewConversation(x, y uuid.UUID, kind enums.ConversationKind, origin enums.ConversationOrigin) (model.Conversation, error) {
	key, err := CanonicalPair(x, y, "")
	if err != nil {
		return model.Conversation{}, err
	}
	return model.Conversation{
		ID:     uuid.New(),
		UserA:  key.UserA,
		UserB:  key.UserB,
		Kind:   kind,
		Origin: origin,
	}, nil
}

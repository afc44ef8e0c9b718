package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/driftapp/drift/backend/internal/domain/enums"
	"github.com/driftapp/drift/backend/internal/domain/model"
	"github.com/driftapp/drift/backend/internal/domain/store"
)

type tx struct {
	st *state
}

func (t *tx) InsertSwipe(_ context.Context, rec model.SwipeRecord) (model.SwipeRecord, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	t.st.swipes = append(t.st.swipes, rec)
	return rec, nil
}

func (t *tx) UpsertMatchPairIfAbsent(_ context.Context, key model.PairKey, now time.Time) (model.MatchPair, bool, error) {
	if pair, ok := t.st.pairs[key]; ok {
		return pair, false, nil
	}
	pair := model.MatchPair{
		Key:       key,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
	t.st.pairs[key] = pair
	return pair, true, nil
}

func (t *tx) MarkLikedIfUnset(_ context.Context, key model.PairKey, side model.PairSide, at time.Time) (model.MatchPair, bool, error) {
	pair, ok := t.st.pairs[key]
	if !ok {
		return model.MatchPair{}, false, store.ErrNotFound
	}
	if pair.LikedAt(side) != nil {
		return pair, false, nil
	}

	likedAt := at.UTC()
	if side == model.PairSideA {
		pair.UserALikedAt = &likedAt
	} else {
		pair.UserBLikedAt = &likedAt
	}
	if pair.IsMatch() && pair.MatchedAt == nil {
		pair.MatchedAt = &likedAt
	}
	pair.UpdatedAt = likedAt
	t.st.pairs[key] = pair
	return pair, true, nil
}

func (t *tx) FriendRequestsBetween(_ context.Context, a, b uuid.UUID) ([]model.FriendRequest, error) {
	items := make([]model.FriendRequest, 0, 2)
	for i := len(t.st.requestOrder) - 1; i >= 0; i-- {
		req := t.st.requests[t.st.requestOrder[i]]
		if req.Involves(a, b) {
			items = append(items, req)
		}
	}
	return items, nil
}

func (t *tx) GetFriendRequest(_ context.Context, id uuid.UUID) (model.FriendRequest, error) {
	req, ok := t.st.requests[id]
	if !ok {
		return model.FriendRequest{}, store.ErrNotFound
	}
	return req, nil
}

func (t *tx) InsertFriendRequest(_ context.Context, req model.FriendRequest) (model.FriendRequest, error) {
	for _, existing := range t.st.requests {
		if !existing.Involves(req.RequesterID, req.AddresseeID) {
			continue
		}
		sameDirection := existing.RequesterID == req.RequesterID
		if sameDirection && existing.Status != enums.FriendRequestStatusDeclined {
			return model.FriendRequest{}, store.ErrConflict
		}
		if existing.Status == enums.FriendRequestStatusPending && req.Status == enums.FriendRequestStatusPending {
			return model.FriendRequest{}, store.ErrConflict
		}
	}

	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	t.st.requests[req.ID] = req
	t.st.requestOrder = append(t.st.requestOrder, req.ID)
	return req, nil
}

func (t *tx) CompareAndSetFriendRequestStatus(_ context.Context, id uuid.UUID, expected, next enums.FriendRequestStatus, at time.Time) (model.FriendRequest, bool, error) {
	req, ok := t.st.requests[id]
	if !ok {
		return model.FriendRequest{}, false, store.ErrNotFound
	}
	if req.Status != expected {
		return req, false, nil
	}
	req.Status = next
	req.UpdatedAt = at.UTC()
	t.st.requests[id] = req
	return req, true, nil
}

func (t *tx) BlockExists(_ context.Context, a, b uuid.UUID) (bool, error) {
	return t.st.blocked(a, b), nil
}

func (t *tx) UpsertBlock(_ context.Context, block model.Block) error {
	key := orderedPair{from: block.ActorID, to: block.TargetID}
	if _, ok := t.st.blocks[key]; ok {
		return nil
	}
	t.st.blocks[key] = block
	return nil
}

func (t *tx) CreateConversationIfAbsent(_ context.Context, conv model.Conversation) (model.Conversation, bool, error) {
	key := conversationKey{userA: conv.UserA, userB: conv.UserB, kind: conv.Kind}
	if existing, ok := t.st.conversations[key]; ok {
		return existing, false, nil
	}
	if conv.ID == uuid.Nil {
		conv.ID = uuid.New()
	}
	t.st.conversations[key] = conv
	return conv, true, nil
}

func (t *tx) AppendOutbox(_ context.Context, event model.OutboxEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	t.st.outbox = append(t.st.outbox, event)
	return nil
}

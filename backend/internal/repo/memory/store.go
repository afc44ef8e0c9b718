// Package memory implements the relationship store contract in process memory.
// Transactions run one at a time against a private copy of the state that
// replaces the shared state on commit, so a failed or cancelled transaction
// leaves nothing behind.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/driftapp/drift/backend/internal/domain/enums"
	"github.com/driftapp/drift/backend/internal/domain/model"
	"github.com/driftapp/drift/backend/internal/domain/store"
)

type orderedPair struct {
	from uuid.UUID
	to   uuid.UUID
}

type conversationKey struct {
	userA uuid.UUID
	userB uuid.UUID
	kind  enums.ConversationKind
}

type state struct {
	swipes        []model.SwipeRecord
	pairs         map[model.PairKey]model.MatchPair
	requests      map[uuid.UUID]model.FriendRequest
	requestOrder  []uuid.UUID
	blocks        map[orderedPair]model.Block
	conversations map[conversationKey]model.Conversation
	outbox        []model.OutboxEvent
}

func newState() *state {
	return &state{
		pairs:         map[model.PairKey]model.MatchPair{},
		requests:      map[uuid.UUID]model.FriendRequest{},
		blocks:        map[orderedPair]model.Block{},
		conversations: map[conversationKey]model.Conversation{},
	}
}

func (s *state) blocked(a, b uuid.UUID) bool {
	if _, ok := s.blocks[orderedPair{from: a, to: b}]; ok {
		return true
	}
	_, ok := s.blocks[orderedPair{from: b, to: a}]
	return ok
}

func (s *state) clone() *state {
	out := &state{
		swipes:        append([]model.SwipeRecord(nil), s.swipes...),
		pairs:         make(map[model.PairKey]model.MatchPair, len(s.pairs)),
		requests:      make(map[uuid.UUID]model.FriendRequest, len(s.requests)),
		requestOrder:  append([]uuid.UUID(nil), s.requestOrder...),
		blocks:        make(map[orderedPair]model.Block, len(s.blocks)),
		conversations: make(map[conversationKey]model.Conversation, len(s.conversations)),
		outbox:        append([]model.OutboxEvent(nil), s.outbox...),
	}
	for k, v := range s.pairs {
		out.pairs[k] = v
	}
	for k, v := range s.requests {
		out.requests[k] = v
	}
	for k, v := range s.blocks {
		out.blocks[k] = v
	}
	for k, v := range s.conversations {
		out.conversations[k] = v
	}
	return out
}

type Store struct {
	mu    sync.Mutex
	state *state
}

func NewStore() *Store {
	return &Store{state: newState()}
}

// Stats is a row count snapshot per table.
type Stats struct {
	Swipes         int
	MatchPairs     int
	FriendRequests int
	Conversations  int
	OutboxEvents   int
}

func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		Swipes:         len(s.state.swipes),
		MatchPairs:     len(s.state.pairs),
		FriendRequests: len(s.state.requests),
		Conversations:  len(s.state.conversations),
		OutboxEvents:   len(s.state.outbox),
	}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	work := s.state.clone()
	if err := fn(ctx, &tx{st: work}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.state = work
	return nil
}

func (s *Store) GetFriendRequest(_ context.Context, id uuid.UUID) (model.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.state.requests[id]
	if !ok {
		return model.FriendRequest{}, store.ErrNotFound
	}
	return req, nil
}

func (s *Store) ListMatches(_ context.Context, userID uuid.UUID, mode enums.SwipeMode, limit int) ([]model.MatchPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]model.MatchPair, 0)
	for key, pair := range s.state.pairs {
		if key.Mode != mode || !pair.IsMatch() {
			continue
		}
		if key.UserA != userID && key.UserB != userID {
			continue
		}
		if s.state.blocked(key.UserA, key.UserB) {
			continue
		}
		items = append(items, pair)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].MatchedAt.After(*items[j].MatchedAt)
	})
	return truncate(items, limit), nil
}

func (s *Store) ListIncomingFriendRequests(_ context.Context, addresseeID uuid.UUID, limit int) ([]model.FriendRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]model.FriendRequest, 0)
	for i := len(s.state.requestOrder) - 1; i >= 0; i-- {
		req := s.state.requests[s.state.requestOrder[i]]
		if req.AddresseeID == addresseeID && req.Status == enums.FriendRequestStatusPending {
			items = append(items, req)
		}
	}
	return truncate(items, limit), nil
}

func (s *Store) ListSwipedTargets(_ context.Context, swiperID uuid.UUID, mode enums.SwipeMode, limit int) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := map[uuid.UUID]struct{}{}
	items := make([]uuid.UUID, 0)
	for i := len(s.state.swipes) - 1; i >= 0; i-- {
		rec := s.state.swipes[i]
		if rec.SwiperID != swiperID || rec.Mode != mode {
			continue
		}
		if _, ok := seen[rec.SwipedID]; ok {
			continue
		}
		seen[rec.SwipedID] = struct{}{}
		items = append(items, rec.SwipedID)
	}
	return truncate(items, limit), nil
}

func (s *Store) FetchPending(_ context.Context, limit int) ([]model.OutboxEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]model.OutboxEvent, 0)
	for _, event := range s.state.outbox {
		if event.PublishedAt == nil {
			items = append(items, event)
		}
	}
	return truncate(items, limit), nil
}

func (s *Store) MarkPublished(_ context.Context, ids []uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	for i := range s.state.outbox {
		if _, ok := wanted[s.state.outbox[i].ID]; ok && s.state.outbox[i].PublishedAt == nil {
			published := at.UTC()
			s.state.outbox[i].PublishedAt = &published
		}
	}
	return nil
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/driftapp/drift/backend/internal/domain/enums"
	"github.com/driftapp/drift/backend/internal/domain/model"
	"github.com/driftapp/drift/backend/internal/domain/rules"
	"github.com/driftapp/drift/backend/internal/domain/store"
)

func TestWithinTxRollsBackOnError(t *testing.T) {
	s := NewStore()
	boom := errors.New("boom")

	err := s.WithinTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		if _, err := tx.InsertSwipe(ctx, model.SwipeRecord{SwiperID: uuid.New(), SwipedID: uuid.New()}); err != nil {
			return err
		}
		if err := tx.AppendOutbox(ctx, model.OutboxEvent{Kind: enums.EventKindMatchCreated}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if stats := s.Stats(); stats != (Stats{}) {
		t.Fatalf("expected empty store after rollback, got %+v", stats)
	}
}

func TestWithinTxDiscardsWritesOnCancel(t *testing.T) {
	s := NewStore()
	ctx, cancel := context.WithCancel(context.Background())

	err := s.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		_, err := tx.InsertSwipe(ctx, model.SwipeRecord{SwiperID: uuid.New(), SwipedID: uuid.New()})
		cancel()
		return err
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if s.Stats().Swipes != 0 {
		t.Fatalf("expected cancelled tx to leave nothing")
	}
}

func TestMarkLikedIfUnsetIsCompareAndSet(t *testing.T) {
	s := NewStore()
	key, err := rules.CanonicalPair(uuid.New(), uuid.New(), enums.SwipeModeDating)
	if err != nil {
		t.Fatalf("canonical pair: %v", err)
	}
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	var (
		first, second, other model.MatchPair
		firstOK, secondOK    bool
		otherOK              bool
	)
	err = s.WithinTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		if _, created, err := tx.UpsertMatchPairIfAbsent(ctx, key, now); err != nil || !created {
			t.Fatalf("upsert: created=%v err=%v", created, err)
		}
		if _, created, err := tx.UpsertMatchPairIfAbsent(ctx, key, now); err != nil || created {
			t.Fatalf("second upsert: created=%v err=%v", created, err)
		}
		first, firstOK, err = tx.MarkLikedIfUnset(ctx, key, model.PairSideA, now)
		if err != nil {
			return err
		}
		second, secondOK, err = tx.MarkLikedIfUnset(ctx, key, model.PairSideA, now.Add(time.Minute))
		if err != nil {
			return err
		}
		other, otherOK, err = tx.MarkLikedIfUnset(ctx, key, model.PairSideB, now.Add(2*time.Minute))
		return err
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}

	if !firstOK || first.IsMatch() {
		t.Fatalf("unexpected first mark applied=%v pair=%+v", firstOK, first)
	}
	if secondOK || !second.UserALikedAt.Equal(now) {
		t.Fatalf("expected second mark to be a no-op, applied=%v", secondOK)
	}
	if !otherOK || !other.IsMatch() || other.MatchedAt == nil || !other.MatchedAt.Equal(now.Add(2*time.Minute)) {
		t.Fatalf("unexpected other side mark applied=%v pair=%+v", otherOK, other)
	}
	if s.Stats().MatchPairs != 1 {
		t.Fatalf("expected single pair row, got %d", s.Stats().MatchPairs)
	}
}

func TestInsertFriendRequestUniqueness(t *testing.T) {
	s := NewStore()
	alice := uuid.New()
	bob := uuid.New()
	now := time.Now().UTC()

	pending := func(from, to uuid.UUID) model.FriendRequest {
		return model.FriendRequest{RequesterID: from, AddresseeID: to, Status: enums.FriendRequestStatusPending, CreatedAt: now, UpdatedAt: now}
	}

	var firstID uuid.UUID
	err := s.WithinTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		req, err := tx.InsertFriendRequest(ctx, pending(alice, bob))
		firstID = req.ID
		return err
	})
	if err != nil {
		t.Fatalf("insert first request: %v", err)
	}

	for _, tc := range []struct {
		name string
		req  model.FriendRequest
	}{
		{name: "same direction", req: pending(alice, bob)},
		{name: "reverse pending", req: pending(bob, alice)},
	} {
		err := s.WithinTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
			_, err := tx.InsertFriendRequest(ctx, tc.req)
			return err
		})
		if !errors.Is(err, store.ErrConflict) {
			t.Fatalf("%s: expected ErrConflict, got %v", tc.name, err)
		}
	}

	err = s.WithinTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		_, applied, err := tx.CompareAndSetFriendRequestStatus(ctx, firstID, enums.FriendRequestStatusPending, enums.FriendRequestStatusDeclined, now)
		if err == nil && !applied {
			t.Fatalf("expected decline to apply")
		}
		return err
	})
	if err != nil {
		t.Fatalf("decline: %v", err)
	}

	err = s.WithinTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		_, err := tx.InsertFriendRequest(ctx, pending(alice, bob))
		return err
	})
	if err != nil {
		t.Fatalf("expected new request after decline, got %v", err)
	}
	if got := s.Stats().FriendRequests; got != 2 {
		t.Fatalf("expected 2 request rows, got %d", got)
	}
}

func TestCompareAndSetFriendRequestStatusMismatch(t *testing.T) {
	s := NewStore()
	now := time.Now().UTC()
	err := s.WithinTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		req, err := tx.InsertFriendRequest(ctx, model.FriendRequest{
			RequesterID: uuid.New(),
			AddresseeID: uuid.New(),
			Status:      enums.FriendRequestStatusAccepted,
		})
		if err != nil {
			return err
		}
		got, applied, err := tx.CompareAndSetFriendRequestStatus(ctx, req.ID, enums.FriendRequestStatusPending, enums.FriendRequestStatusDeclined, now)
		if err != nil {
			return err
		}
		if applied || got.Status != enums.FriendRequestStatusAccepted {
			t.Fatalf("expected untouched accepted row, applied=%v status=%s", applied, got.Status)
		}
		if _, _, err := tx.CompareAndSetFriendRequestStatus(ctx, uuid.New(), enums.FriendRequestStatusPending, enums.FriendRequestStatusDeclined, now); !errors.Is(err, store.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
}

func TestCreateConversationIfAbsent(t *testing.T) {
	s := NewStore()
	a, b := uuid.New(), uuid.New()

	conv, err := rules.NewConversation(a, b, enums.ConversationKindDating, enums.ConversationOriginMatch)
	if err != nil {
		t.Fatalf("new conversation: %v", err)
	}
	again, err := rules.NewConversation(b, a, enums.ConversationKindDating, enums.ConversationOriginMatch)
	if err != nil {
		t.Fatalf("new conversation: %v", err)
	}

	err = s.WithinTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		first, created, err := tx.CreateConversationIfAbsent(ctx, conv)
		if err != nil || !created {
			t.Fatalf("first create: created=%v err=%v", created, err)
		}
		second, created, err := tx.CreateConversationIfAbsent(ctx, again)
		if err != nil || created {
			t.Fatalf("second create: created=%v err=%v", created, err)
		}
		if second.ID != first.ID {
			t.Fatalf("expected existing conversation to be returned")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}
	if s.Stats().Conversations != 1 {
		t.Fatalf("expected 1 conversation, got %d", s.Stats().Conversations)
	}
}

func TestOutboxFetchAndMarkPublished(t *testing.T) {
	s := NewStore()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	err := s.WithinTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		for i := 0; i < 3; i++ {
			if err := tx.AppendOutbox(ctx, model.OutboxEvent{
				Kind:      enums.EventKindMatchCreated,
				CreatedAt: base.Add(time.Duration(i) * time.Second),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	ctx := context.Background()
	batch, err := s.FetchPending(ctx, 2)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(batch) != 2 || !batch[0].CreatedAt.Equal(base) {
		t.Fatalf("unexpected first batch %+v", batch)
	}

	if err := s.MarkPublished(ctx, []uuid.UUID{batch[0].ID, batch[1].ID}, base.Add(time.Hour)); err != nil {
		t.Fatalf("mark published: %v", err)
	}

	rest, err := s.FetchPending(ctx, 10)
	if err != nil {
		t.Fatalf("fetch rest: %v", err)
	}
	if len(rest) != 1 || !rest[0].CreatedAt.Equal(base.Add(2*time.Second)) {
		t.Fatalf("unexpected remaining events %+v", rest)
	}
}

func TestListSwipedTargetsDistinctNewestFirst(t *testing.T) {
	s := NewStore()
	swiper := uuid.New()
	first, second := uuid.New(), uuid.New()

	err := s.WithinTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
		for _, rec := range []model.SwipeRecord{
			{SwiperID: swiper, SwipedID: first, Direction: enums.SwipeDirectionLeft, Mode: enums.SwipeModeDating},
			{SwiperID: swiper, SwipedID: second, Direction: enums.SwipeDirectionRight, Mode: enums.SwipeModeDating},
			{SwiperID: swiper, SwipedID: first, Direction: enums.SwipeDirectionRight, Mode: enums.SwipeModeDating},
			{SwiperID: swiper, SwipedID: second, Direction: enums.SwipeDirectionRight, Mode: enums.SwipeModeFriends},
		} {
			if _, err := tx.InsertSwipe(ctx, rec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("insert swipes: %v", err)
	}

	got, err := s.ListSwipedTargets(context.Background(), swiper, enums.SwipeModeDating, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0] != first || got[1] != second {
		t.Fatalf("unexpected swiped targets %v", got)
	}
}

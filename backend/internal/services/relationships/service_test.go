package relationships

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/driftapp/drift/backend/internal/domain/enums"
	"github.com/driftapp/drift/backend/internal/domain/model"
	"github.com/driftapp/drift/backend/internal/domain/store"
	"github.com/driftapp/drift/backend/internal/repo/memory"
)

var testNow = time.Date(2026, 6, 1, 18, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, st store.Store) (*Service, *metricsSpy) {
	t.Helper()

	spy := &metricsSpy{}
	svc := NewService(Dependencies{Store: st, Metrics: spy}, Config{
		MaxRetries:     3,
		BackoffInitial: time.Millisecond,
		BackoffMax:     2 * time.Millisecond,
	})
	svc.now = func() time.Time { return testNow }
	return svc, spy
}

type metricsSpy struct {
	mu          sync.Mutex
	swipes      int
	matches     int
	friendships int
	retries     map[string]int
}

func (m *metricsSpy) ObserveSwipe(enums.SwipeDirection, enums.SwipeMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.swipes++
}

func (m *metricsSpy) ObserveMatchCreated(enums.SwipeMode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches++
}

func (m *metricsSpy) ObserveFriendshipEstablished() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.friendships++
}

func (m *metricsSpy) ObserveStoreRetry(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.retries == nil {
		m.retries = map[string]int{}
	}
	m.retries[op]++
}

func pendingEvents(t *testing.T, st *memory.Store) []model.OutboxEvent {
	t.Helper()

	events, err := st.FetchPending(context.Background(), 0)
	if err != nil {
		t.Fatalf("fetch outbox: %v", err)
	}
	return events
}

func eventsOfKind(events []model.OutboxEvent, kind enums.EventKind) []model.OutboxEvent {
	out := make([]model.OutboxEvent, 0, len(events))
	for _, event := range events {
		if event.Kind == kind {
			out = append(out, event)
		}
	}
	return out
}

// flakyStore fails the first failures transactions with failErr before
// delegating, and can simulate a racing writer through conflictOnInsert.
type flakyStore struct {
	*memory.Store

	mu       sync.Mutex
	failures int
	failErr  error
	attempts int

	conflictOnInsert *model.FriendRequest
}

func (f *flakyStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	f.mu.Lock()
	f.attempts++
	if f.failures > 0 {
		f.failures--
		f.mu.Unlock()
		return f.failErr
	}
	racing := f.conflictOnInsert
	f.mu.Unlock()

	if racing == nil {
		return f.Store.WithinTx(ctx, fn)
	}

	err := f.Store.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return fn(ctx, &racingTx{Tx: tx})
	})
	if err != nil {
		f.mu.Lock()
		f.conflictOnInsert = nil
		f.mu.Unlock()
		if commitErr := f.Store.WithinTx(context.Background(), func(ctx context.Context, tx store.Tx) error {
			_, err := tx.InsertFriendRequest(ctx, *racing)
			return err
		}); commitErr != nil {
			return commitErr
		}
	}
	return err
}

func (f *flakyStore) Attempts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts
}

// racingTx loses every insert as if another transaction committed first.
type racingTx struct {
	store.Tx
}

func (r *racingTx) InsertFriendRequest(context.Context, model.FriendRequest) (model.FriendRequest, error) {
	return model.FriendRequest{}, store.ErrConflict
}

// pairRaceStore replays the two ways a concurrent like can interleave with a
// swipe transaction: the pair row read before another writer committed
// (stalePair), and losing the row creation to another writer (conflictOnce,
// after which winner is committed).
type pairRaceStore struct {
	*memory.Store

	mu           sync.Mutex
	attempts     int
	stalePair    *model.MatchPair
	conflictOnce bool
	winner       func(ctx context.Context, tx store.Tx) error
}

func (p *pairRaceStore) WithinTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	p.mu.Lock()
	p.attempts++
	stale := p.stalePair
	conflict := p.conflictOnce
	p.conflictOnce = false
	p.mu.Unlock()

	err := p.Store.WithinTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return fn(ctx, &pairRaceTx{Tx: tx, stale: stale, conflict: conflict})
	})
	if conflict && p.winner != nil {
		if winErr := p.Store.WithinTx(context.Background(), p.winner); winErr != nil {
			return winErr
		}
	}
	return err
}

func (p *pairRaceStore) Attempts() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.attempts
}

type pairRaceTx struct {
	store.Tx
	stale    *model.MatchPair
	conflict bool
}

func (r *pairRaceTx) UpsertMatchPairIfAbsent(ctx context.Context, key model.PairKey, now time.Time) (model.MatchPair, bool, error) {
	if r.conflict {
		return model.MatchPair{}, false, store.ErrConflict
	}
	if r.stale != nil {
		return *r.stale, false, nil
	}
	return r.Tx.UpsertMatchPairIfAbsent(ctx, key, now)
}

func newUsers() (uuid.UUID, uuid.UUID) {
	return uuid.New(), uuid.New()
}

func newPendingRequest(from, to uuid.UUID) model.FriendRequest {
	return model.FriendRequest{
		ID:          uuid.New(),
		RequesterID: from,
		AddresseeID: to,
		Status:      enums.FriendRequestStatusPending,
		CreatedAt:   testNow,
		UpdatedAt:   testNow,
	}
}

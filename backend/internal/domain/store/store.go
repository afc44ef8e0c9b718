// Package store declares the contract between the relationship reconciler and
// the relational store behind it. Implementations must make every Tx method
// atomic and must serialize conflicting writes themselves: the store is the
// lock.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/driftapp/drift/backend/internal/domain/enums"
	"github.com/driftapp/drift/backend/internal/domain/model"
)

var (
	// ErrNotFound reports a missing row.
	ErrNotFound = errors.New("store: not found")
	// ErrConflict reports a lost race on a uniqueness constraint or
	// serialization check. The surrounding transaction has been rolled back
	// and may be retried from scratch.
	ErrConflict = errors.New("store: conflict")
	// ErrTransient reports a failure that may succeed on retry (connection
	// loss, server restart, resource exhaustion).
	ErrTransient = errors.New("store: transient failure")
)

// Store is the durable relationship store.
type Store interface {
	Reader
	// WithinTx runs fn in one transaction. Writes made through tx become
	// visible together when fn returns nil and the commit succeeds, and not
	// at all otherwise.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

type Tx interface {
	// InsertSwipe appends to the swipe log.
	InsertSwipe(ctx context.Context, rec model.SwipeRecord) (model.SwipeRecord, error)

	// UpsertMatchPairIfAbsent fetches the pair row, creating it with both
	// sides unliked when missing. The bool reports creation.
	UpsertMatchPairIfAbsent(ctx context.Context, key model.PairKey, now time.Time) (model.MatchPair, bool, error)
	// MarkLikedIfUnset sets the liked timestamp of side only if it is still
	// null, evaluated against the latest committed row. It returns the row as
	// it is after the statement and whether the write applied.
	MarkLikedIfUnset(ctx context.Context, key model.PairKey, side model.PairSide, at time.Time) (model.MatchPair, bool, error)

	// FriendRequestsBetween lists request rows in both directions, newest first.
	FriendRequestsBetween(ctx context.Context, a, b uuid.UUID) ([]model.FriendRequest, error)
	GetFriendRequest(ctx context.Context, id uuid.UUID) (model.FriendRequest, error)
	// InsertFriendRequest returns ErrConflict when a live row for the pair already exists.
	InsertFriendRequest(ctx context.Context, req model.FriendRequest) (model.FriendRequest, error)
	// CompareAndSetFriendRequestStatus moves the row to next only when its
	// current status equals expected.
	CompareAndSetFriendRequestStatus(ctx context.Context, id uuid.UUID, expected, next enums.FriendRequestStatus, at time.Time) (model.FriendRequest, bool, error)

	// BlockExists reports a block in either direction.
	BlockExists(ctx context.Context, a, b uuid.UUID) (bool, error)
	UpsertBlock(ctx context.Context, block model.Block) error

	CreateConversationIfAbsent(ctx context.Context, conv model.Conversation) (model.Conversation, bool, error)
	AppendOutbox(ctx context.Context, event model.OutboxEvent) error
}

type Reader interface {
	GetFriendRequest(ctx context.Context, id uuid.UUID) (model.FriendRequest, error)
	// ListMatches skips pairs with a block in either direction.
	ListMatches(ctx context.Context, userID uuid.UUID, mode enums.SwipeMode, limit int) ([]model.MatchPair, error)
	ListIncomingFriendRequests(ctx context.Context, addresseeID uuid.UUID, limit int) ([]model.FriendRequest, error)
	ListSwipedTargets(ctx context.Context, swiperID uuid.UUID, mode enums.SwipeMode, limit int) ([]uuid.UUID, error)
}

// Outbox is the relay side of the event outbox.
type Outbox interface {
	// FetchPending returns unpublished events, oldest first.
	FetchPending(ctx context.Context, limit int) ([]model.OutboxEvent, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// IsRetryable reports whether err is worth another attempt.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrTransient)
}

package relationships

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/driftapp/drift/backend/internal/domain/enums"
	"github.com/driftapp/drift/backend/internal/domain/model"
	"github.com/driftapp/drift/backend/internal/domain/store"
)

// Block records actor's block of target and moves every pending request
// between them to blocked. Accepted friendships and pair rows are kept, but
// ListMatches stops returning the pair.
func (s *Service) Block(ctx context.Context, actor, target uuid.UUID) (BlockResult, error) {
	if actor == uuid.Nil || target == uuid.Nil {
		return BlockResult{}, fmt.Errorf("%w: user ids are required", ErrInvalidArgument)
	}
	if actor == target {
		return BlockResult{}, fmt.Errorf("%w: cannot block yourself", ErrInvalidArgument)
	}
	now := s.now().UTC()

	var result BlockResult
	err := s.atomic(ctx, "block", func(ctx context.Context, tx store.Tx) error {
		result = BlockResult{}

		if err := tx.UpsertBlock(ctx, model.Block{ActorID: actor, TargetID: target, CreatedAt: now}); err != nil {
			return err
		}

		rows, err := tx.FriendRequestsBetween(ctx, actor, target)
		if err != nil {
			return err
		}
		for _, req := range rows {
			if req.Status != enums.FriendRequestStatusPending {
				continue
			}
			_, applied, err := tx.CompareAndSetFriendRequestStatus(ctx, req.ID, enums.FriendRequestStatusPending, enums.FriendRequestStatusBlocked, now)
			if err != nil {
				return err
			}
			if !applied {
				return fmt.Errorf("%w: friend request %s changed concurrently", store.ErrConflict, req.ID)
			}
			result.BlockedRequests++
		}
		return nil
	})
	if err != nil {
		return BlockResult{}, err
	}

	return result, nil
}

package relationships

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/driftapp/drift/backend/internal/domain/enums"
	"github.com/driftapp/drift/backend/internal/domain/model"
	"github.com/driftapp/drift/backend/internal/domain/rules"
	"github.com/driftapp/drift/backend/internal/domain/store"
)

// SendFriendRequest opens a pending request, or accepts the reverse one when
// the addressee already asked first. Repeating the call is a no-op.
func (s *Service) SendFriendRequest(ctx context.Context, requester, addressee uuid.UUID) (FriendRequestResult, error) {
	if requester == uuid.Nil || addressee == uuid.Nil {
		return FriendRequestResult{}, fmt.Errorf("%w: user ids are required", ErrInvalidArgument)
	}
	if requester == addressee {
		return FriendRequestResult{}, fmt.Errorf("%w: cannot befriend yourself", ErrInvalidArgument)
	}
	now := s.now().UTC()

	var result FriendRequestResult
	err := s.atomic(ctx, "send_friend_request", func(ctx context.Context, tx store.Tx) error {
		result = FriendRequestResult{}

		blocked, err := tx.BlockExists(ctx, requester, addressee)
		if err != nil {
			return err
		}
		if blocked {
			return fmt.Errorf("%w: users are blocked", ErrInvalidStateTransition)
		}

		rows, err := tx.FriendRequestsBetween(ctx, requester, addressee)
		if err != nil {
			return err
		}

		var forward, reverse *model.FriendRequest
		for i := range rows {
			req := rows[i]
			switch req.Status {
			case enums.FriendRequestStatusBlocked:
				return fmt.Errorf("%w: friend request %s is blocked", ErrInvalidStateTransition, req.ID)
			case enums.FriendRequestStatusAccepted:
				if result.Status == "" {
					result = FriendRequestResult{Request: req, Status: enums.FriendRequestStatusAccepted}
				}
			case enums.FriendRequestStatusPending:
				if req.RequesterID == requester {
					forward = &rows[i]
				} else {
					reverse = &rows[i]
				}
			}
		}
		if result.Status == enums.FriendRequestStatusAccepted {
			return nil
		}

		if reverse != nil {
			updated, applied, err := tx.CompareAndSetFriendRequestStatus(ctx, reverse.ID, enums.FriendRequestStatusPending, enums.FriendRequestStatusAccepted, now)
			if err != nil {
				return err
			}
			if !applied {
				return fmt.Errorf("%w: friend request %s changed concurrently", store.ErrConflict, reverse.ID)
			}
			conv, err := s.establishFriendship(ctx, tx, updated, now)
			if err != nil {
				return err
			}
			result = FriendRequestResult{
				Request:        updated,
				Status:         enums.FriendRequestStatusAccepted,
				Established:    true,
				ConversationID: conv.ID,
			}
			return nil
		}

		if forward != nil {
			result = FriendRequestResult{Request: *forward, Status: enums.FriendRequestStatusPending}
			return nil
		}

		req, err := tx.InsertFriendRequest(ctx, model.FriendRequest{
			ID:          uuid.New(),
			RequesterID: requester,
			AddresseeID: addressee,
			Status:      enums.FriendRequestStatusPending,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return err
		}
		result = FriendRequestResult{Request: req, Status: enums.FriendRequestStatusPending}
		return nil
	})
	if err != nil {
		return FriendRequestResult{}, err
	}

	s.afterFriendship(result)
	return result, nil
}

// RespondToFriendRequest accepts or declines a pending request. Any other
// current status is a terminal state and cannot be responded to.
func (s *Service) RespondToFriendRequest(ctx context.Context, requestID uuid.UUID, accept bool) (FriendRequestResult, error) {
	if requestID == uuid.Nil {
		return FriendRequestResult{}, fmt.Errorf("%w: request id is required", ErrInvalidArgument)
	}
	next := enums.FriendRequestStatusDeclined
	if accept {
		next = enums.FriendRequestStatusAccepted
	}
	now := s.now().UTC()

	var result FriendRequestResult
	err := s.atomic(ctx, "respond_friend_request", func(ctx context.Context, tx store.Tx) error {
		result = FriendRequestResult{}

		req, err := tx.GetFriendRequest(ctx, requestID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("%w: friend request %s", ErrNotFound, requestID)
			}
			return err
		}
		if !rules.CanTransition(req.Status, next) {
			return fmt.Errorf("%w: friend request is %s", ErrInvalidStateTransition, req.Status)
		}

		updated, applied, err := tx.CompareAndSetFriendRequestStatus(ctx, requestID, enums.FriendRequestStatusPending, next, now)
		if err != nil {
			return err
		}
		if !applied {
			return fmt.Errorf("%w: friend request %s changed concurrently", store.ErrConflict, requestID)
		}

		result = FriendRequestResult{Request: updated, Status: updated.Status}
		if !accept {
			return nil
		}

		conv, err := s.establishFriendship(ctx, tx, updated, now)
		if err != nil {
			return err
		}
		result.Established = true
		result.ConversationID = conv.ID
		return nil
	})
	if err != nil {
		return FriendRequestResult{}, err
	}

	s.afterFriendship(result)
	return result, nil
}

func (s *Service) establishFriendship(ctx context.Context, tx store.Tx, req model.FriendRequest, now time.Time) (model.Conversation, error) {
	conv, err := s.openConversation(ctx, tx, req.RequesterID, req.AddresseeID, enums.ConversationKindFriends, enums.ConversationOriginFriendRequest, now)
	if err != nil {
		return model.Conversation{}, err
	}

	if err := tx.AppendOutbox(ctx, model.OutboxEvent{
		ID:         uuid.New(),
		Kind:       enums.EventKindFriendshipEstablished,
		Recipients: []uuid.UUID{req.RequesterID, req.AddresseeID},
		Payload: map[string]any{
			"request_id":      req.ID.String(),
			"requester_id":    req.RequesterID.String(),
			"addressee_id":    req.AddresseeID.String(),
			"conversation_id": conv.ID.String(),
		},
		CreatedAt: now,
	}); err != nil {
		return model.Conversation{}, err
	}

	return conv, nil
}

func (s *Service) afterFriendship(result FriendRequestResult) {
	if !result.Established {
		return
	}
	s.metrics.ObserveFriendshipEstablished()
	s.logger.Info("friendship established",
		zap.String("request_id", result.Request.ID.String()),
		zap.String("conversation_id", result.ConversationID.String()),
	)
}

package relationships

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/driftapp/drift/backend/internal/domain/enums"
	"github.com/driftapp/drift/backend/internal/domain/model"
	"github.com/driftapp/drift/backend/internal/domain/store"
)

func (s *Service) ListMatches(ctx context.Context, userID uuid.UUID, mode string, limit int) ([]model.MatchPair, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidArgument)
	}
	swipeMode, err := modeOrDefault(mode)
	if err != nil {
		return nil, err
	}

	var items []model.MatchPair
	err = s.retry(ctx, "list_matches", func() error {
		var err error
		items, err = s.store.ListMatches(ctx, userID, swipeMode, clampLimit(limit))
		return err
	})
	return items, err
}

func (s *Service) ListIncomingRequests(ctx context.Context, userID uuid.UUID, limit int) ([]model.FriendRequest, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidArgument)
	}

	var items []model.FriendRequest
	err := s.retry(ctx, "list_incoming_requests", func() error {
		var err error
		items, err = s.store.ListIncomingFriendRequests(ctx, userID, clampLimit(limit))
		return err
	})
	return items, err
}

func (s *Service) GetFriendRequest(ctx context.Context, requestID uuid.UUID) (model.FriendRequest, error) {
	if requestID == uuid.Nil {
		return model.FriendRequest{}, fmt.Errorf("%w: request id is required", ErrInvalidArgument)
	}

	var req model.FriendRequest
	err := s.retry(ctx, "get_friend_request", func() error {
		var err error
		req, err = s.store.GetFriendRequest(ctx, requestID)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: friend request %s", ErrNotFound, requestID)
		}
		return err
	})
	return req, err
}

// SwipedTargets lists the distinct users swiper already swiped on in mode,
// most recent first.
func (s *Service) SwipedTargets(ctx context.Context, swiperID uuid.UUID, mode string, limit int) ([]uuid.UUID, error) {
	if swiperID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidArgument)
	}
	swipeMode, err := modeOrDefault(mode)
	if err != nil {
		return nil, err
	}

	var items []uuid.UUID
	err = s.retry(ctx, "list_swiped_targets", func() error {
		var err error
		items, err = s.store.ListSwipedTargets(ctx, swiperID, swipeMode, clampLimit(limit))
		return err
	})
	return items, err
}

func modeOrDefault(mode string) (enums.SwipeMode, error) {
	if mode == "" {
		return enums.SwipeModeDating, nil
	}
	swipeMode, ok := enums.ParseSwipeMode(mode)
	if !ok {
		return "", fmt.Errorf("%w: unsupported mode %q", ErrInvalidArgument, mode)
	}
	return swipeMode, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

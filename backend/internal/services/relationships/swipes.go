package relationships

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/driftapp/drift/backend/internal/domain/enums"
	"github.com/driftapp/drift/backend/internal/domain/model"
	"github.com/driftapp/drift/backend/internal/domain/rules"
	"github.com/driftapp/drift/backend/internal/domain/store"
)

// RecordSwipe appends the swipe to the log and, for likes between users with
// no block between them, marks the swiper's side of the canonical pair.
// Matched is true only for the call that completed the pair.
func (s *Service) RecordSwipe(ctx context.Context, swiper, swiped uuid.UUID, direction, mode string) (SwipeResult, error) {
	dir, ok := enums.ParseSwipeDirection(direction)
	if !ok {
		return SwipeResult{}, fmt.Errorf("%w: unsupported direction %q", ErrInvalidArgument, direction)
	}
	swipeMode, ok := enums.ParseSwipeMode(mode)
	if !ok {
		return SwipeResult{}, fmt.Errorf("%w: unsupported mode %q", ErrInvalidArgument, mode)
	}
	if swiper == uuid.Nil || swiped == uuid.Nil {
		return SwipeResult{}, fmt.Errorf("%w: user ids are required", ErrInvalidArgument)
	}
	key, err := rules.CanonicalPair(swiper, swiped, swipeMode)
	if err != nil {
		return SwipeResult{}, fmt.Errorf("%w: cannot swipe on yourself", ErrInvalidArgument)
	}
	side, _ := rules.SideOf(key, swiper)
	now := s.now().UTC()

	var result SwipeResult
	err = s.atomic(ctx, "record_swipe", func(ctx context.Context, tx store.Tx) error {
		result = SwipeResult{}

		if _, err := tx.InsertSwipe(ctx, model.SwipeRecord{
			ID:        uuid.New(),
			SwiperID:  swiper,
			SwipedID:  swiped,
			Direction: dir,
			Mode:      swipeMode,
			CreatedAt: now,
		}); err != nil {
			return err
		}
		if !dir.IsLike() {
			return nil
		}

		// A block in either direction keeps the like in the log but never
		// touches the pair.
		blocked, err := tx.BlockExists(ctx, swiper, swiped)
		if err != nil {
			return err
		}
		if blocked {
			return nil
		}

		pair, _, err := tx.UpsertMatchPairIfAbsent(ctx, key, now)
		if err != nil {
			return err
		}
		if pair.LikedAt(side) != nil {
			result.Pair = pair
			return nil
		}

		pair, applied, err := tx.MarkLikedIfUnset(ctx, key, side, now)
		if err != nil {
			return err
		}
		result.Pair = pair
		if !applied || !pair.IsMatch() {
			return nil
		}

		conv, err := s.openConversation(ctx, tx, swiper, swiped, enums.ConversationKindForMode(swipeMode), enums.ConversationOriginMatch, now)
		if err != nil {
			return err
		}
		if err := tx.AppendOutbox(ctx, matchCreatedEvent(pair, conv.ID, now)); err != nil {
			return err
		}

		result.Matched = true
		result.ConversationID = conv.ID
		return nil
	})
	if err != nil {
		return SwipeResult{}, err
	}

	s.metrics.ObserveSwipe(dir, swipeMode)
	if result.Matched {
		s.metrics.ObserveMatchCreated(swipeMode)
		s.logger.Info("match created",
			zap.String("pair", key.String()),
			zap.String("conversation_id", result.ConversationID.String()),
		)
	}

	return result, nil
}

func (s *Service) openConversation(ctx context.Context, tx store.Tx, x, y uuid.UUID, kind enums.ConversationKind, origin enums.ConversationOrigin, now time.Time) (model.Conversation, error) {
	conv, err := rules.NewConversation(x, y, kind, origin)
	if err != nil {
		return model.Conversation{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	conv.CreatedAt = now

	conv, _, err = tx.CreateConversationIfAbsent(ctx, conv)
	if err != nil {
		return model.Conversation{}, err
	}
	return conv, nil
}

func matchCreatedEvent(pair model.MatchPair, conversationID uuid.UUID, now time.Time) model.OutboxEvent {
	payload := map[string]any{
		"user_a_id":       pair.Key.UserA.String(),
		"user_b_id":       pair.Key.UserB.String(),
		"mode":            string(pair.Key.Mode),
		"conversation_id": conversationID.String(),
	}
	if pair.MatchedAt != nil {
		payload["matched_at"] = pair.MatchedAt.UTC().Format(time.RFC3339Nano)
	}

	return model.OutboxEvent{
		ID:         uuid.New(),
		Kind:       enums.EventKindMatchCreated,
		Recipients: []uuid.UUID{pair.Key.UserA, pair.Key.UserB},
		Payload:    payload,
		CreatedAt:  now,
	}
}

package relationships

import (
	"context"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/driftapp/drift/backend/internal/domain/store"
)

// atomic runs fn in a store transaction, replaying the whole transaction on
// conflicts and transient failures. fn must assign its results from scratch
// on every attempt.
func (s *Service) atomic(ctx context.Context, op string, fn func(ctx context.Context, tx store.Tx) error) error {
	return s.retry(ctx, op, func() error {
		return s.store.WithinTx(ctx, fn)
	})
}

func (s *Service) retry(ctx context.Context, op string, fn func() error) error {
	if s.store == nil {
		return fmt.Errorf("%w: store is not configured", ErrStorageUnavailable)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.cfg.BackoffInitial
	policy.MaxInterval = s.cfg.BackoffMax
	policy.MaxElapsedTime = 0

	attempt := 0
	operation := func() error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return backoff.Permanent(ctxErr)
		}
		if !store.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		if attempt <= s.cfg.MaxRetries {
			s.metrics.ObserveStoreRetry(op)
			s.logger.Warn("store attempt failed, retrying",
				zap.String("op", op),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
		}
		return err
	}

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(s.cfg.MaxRetries)), ctx))
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, ErrInvalidArgument),
		errors.Is(err, ErrInvalidStateTransition),
		errors.Is(err, ErrNotFound),
		errors.Is(err, ErrStorageUnavailable):
		return err
	}

	s.logger.Error("store operation failed",
		zap.String("op", op),
		zap.Int("attempts", attempt),
		zap.Error(err),
	)
	return fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, op, err)
}

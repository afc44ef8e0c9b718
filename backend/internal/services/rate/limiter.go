package rate

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/driftapp/drift/backend/internal/domain/enums"
)

var (
	ErrInvalidUser = errors.New("rate: invalid user id")
	ErrNoStore     = errors.New("rate: window store is not configured")
)

type WindowStore interface {
	IncrementWindow(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	WindowState(ctx context.Context, key string) (int64, time.Duration, error)
}

// window is one fixed counting window. A zero limit disables it.
type window struct {
	tag   string
	span  time.Duration
	limit int64
}

// Decision is the outcome of one like attempt.
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
}

// RetryAfterSec rounds RetryAfter up to whole seconds for clients.
func (d Decision) RetryAfterSec() int64 {
	if d.RetryAfter <= 0 {
		return 0
	}
	return int64((d.RetryAfter + time.Second - 1) / time.Second)
}

// Limiter throttles likes per user and mode. Passes are never counted since
// they cannot complete a pair.
type Limiter struct {
	store   WindowStore
	windows []window
}

func NewLimiter(store WindowStore, perMinute, per10Sec int) *Limiter {
	l := &Limiter{store: store}
	for _, w := range []window{
		{tag: "1m", span: time.Minute, limit: int64(perMinute)},
		{tag: "10s", span: 10 * time.Second, limit: int64(per10Sec)},
	} {
		if w.limit > 0 {
			l.windows = append(l.windows, w)
		}
	}
	return l
}

// AllowSwipe counts a like against every window of its mode. The swipe is
// refused when any window is over its limit; RetryAfter is then the longest
// remaining window.
func (l *Limiter) AllowSwipe(ctx context.Context, userID uuid.UUID, direction enums.SwipeDirection, mode enums.SwipeMode) (Decision, error) {
	if userID == uuid.Nil {
		return Decision{}, ErrInvalidUser
	}
	if !direction.IsLike() || len(l.windows) == 0 {
		return Decision{Allowed: true}, nil
	}
	if l.store == nil {
		return Decision{}, ErrNoStore
	}

	decision := Decision{Allowed: true}
	for _, w := range l.windows {
		count, ttl, err := l.store.IncrementWindow(ctx, likesKey(w, mode, userID), w.span)
		if err != nil {
			return Decision{}, err
		}
		if count > w.limit {
			if ttl <= 0 {
				ttl = time.Second
			}
			decision.Allowed = false
			decision.RetryAfter = longer(decision.RetryAfter, ttl)
		}
	}
	return decision, nil
}

// RetryAfter reports how long the user must wait before the next like in
// mode is accepted, without counting anything.
func (l *Limiter) RetryAfter(ctx context.Context, userID uuid.UUID, mode enums.SwipeMode) (time.Duration, error) {
	if userID == uuid.Nil {
		return 0, ErrInvalidUser
	}
	if len(l.windows) == 0 {
		return 0, nil
	}
	if l.store == nil {
		return 0, ErrNoStore
	}

	var wait time.Duration
	for _, w := range l.windows {
		count, ttl, err := l.store.WindowState(ctx, likesKey(w, mode, userID))
		if err != nil {
			return 0, err
		}
		if count >= w.limit {
			wait = longer(wait, ttl)
		}
	}
	return wait, nil
}

func likesKey(w window, mode enums.SwipeMode, userID uuid.UUID) string {
	return "rate:likes:" + string(mode) + ":" + w.tag + ":" + userID.String()
}

func longer(a, b time.Duration) time.Duration {
	if b > a {
		return b
	}
	return a
}

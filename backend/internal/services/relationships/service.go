// Package relationships reconciles swipes and friend actions between two users
// into match and friendship state. It holds no shared mutable state of its
// own; every decision is a compare-and-set against the store, and the side
// effects of a new relationship are written in the same transaction as the
// state change that caused them.
package relationships

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/driftapp/drift/backend/internal/domain/enums"
	"github.com/driftapp/drift/backend/internal/domain/model"
	"github.com/driftapp/drift/backend/internal/domain/store"
)

var (
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrStorageUnavailable     = errors.New("storage unavailable")
	ErrNotFound               = errors.New("not found")
)

const (
	defaultMaxRetries     = 4
	defaultBackoffInitial = 50 * time.Millisecond
	defaultBackoffMax     = time.Second

	defaultListLimit = 50
	maxListLimit     = 200
)

type Metrics interface {
	ObserveSwipe(direction enums.SwipeDirection, mode enums.SwipeMode)
	ObserveMatchCreated(mode enums.SwipeMode)
	ObserveFriendshipEstablished()
	ObserveStoreRetry(op string)
}

type Config struct {
	MaxRetries     int
	BackoffInitial time.Duration
	BackoffMax     time.Duration
}

type Dependencies struct {
	Store   store.Store
	Logger  *zap.Logger
	Metrics Metrics
}

type SwipeResult struct {
	Matched        bool
	Pair           model.MatchPair
	ConversationID uuid.UUID
}

type FriendRequestResult struct {
	Request model.FriendRequest
	Status  enums.FriendRequestStatus
	// Established is set only on the call that moved the pair into friendship.
	Established    bool
	ConversationID uuid.UUID
}

type BlockResult struct {
	BlockedRequests int
}

type Service struct {
	store   store.Store
	logger  *zap.Logger
	metrics Metrics
	cfg     Config
	now     func() time.Time
}

func NewService(deps Dependencies, cfg Config) *Service {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	} else if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.BackoffInitial <= 0 {
		cfg.BackoffInitial = defaultBackoffInitial
	}
	if cfg.BackoffMax <= 0 {
		cfg.BackoffMax = defaultBackoffMax
	}
	if cfg.BackoffMax < cfg.BackoffInitial {
		cfg.BackoffMax = cfg.BackoffInitial
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}

	return &Service{
		store:   deps.Store,
		logger:  logger,
		metrics: metrics,
		cfg:     cfg,
		now:     time.Now,
	}
}

type nopMetrics struct{}

func (nopMetrics) ObserveSwipe(enums.SwipeDirection, enums.SwipeMode) {}
func (nopMetrics) ObserveMatchCreated(enums.SwipeMode)                {}
func (nopMetrics) ObserveFriendshipEstablished()                      {}
func (nopMetrics) ObserveStoreRetry(string)                           {}

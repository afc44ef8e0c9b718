package apiapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/driftapp/drift/backend/internal/app/storage"
	"github.com/driftapp/drift/backend/internal/config"
	"github.com/driftapp/drift/backend/internal/infra/metrics"
	"github.com/driftapp/drift/backend/internal/jobs/outbox"
	redrepo "github.com/driftapp/drift/backend/internal/repo/redis"
	authsvc "github.com/driftapp/drift/backend/internal/services/auth"
	ratesvc "github.com/driftapp/drift/backend/internal/services/rate"
	relsvc "github.com/driftapp/drift/backend/internal/services/relationships"
)

type App struct {
	cfg        config.Config
	logger     *zap.Logger
	server     *http.Server
	backend    *storage.Backend
	redis      *goredis.Client
	relay      *outbox.Job
	relayCtx   context.Context
	stopRelay  context.CancelFunc
	relayOn    atomic.Bool
	relayDone  chan struct{}
	httpRouter http.Handler
}

func New(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	recorder := metrics.New()

	r := chi.NewRouter()
	ApplyMiddlewares(r, log, recorder, cfg.HTTP.RequestTimeout)

	backend, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warn("redis ping failed, swipe rate limiting degraded", zap.Error(err))
	}

	rateLimiter := ratesvc.NewLimiter(
		redrepo.NewRateRepo(redisClient),
		cfg.Limits.SwipesPerMinute,
		cfg.Limits.SwipesPer10Seconds,
	)
	relationships := relsvc.NewService(relsvc.Dependencies{
		Store:   backend.Store,
		Logger:  log,
		Metrics: recorder,
	}, relsvc.Config{
		MaxRetries:     cfg.Reconciler.MaxRetries,
		BackoffInitial: cfg.Reconciler.BackoffInitial,
		BackoffMax:     cfg.Reconciler.BackoffMax,
	})
	tokens := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAudience, cfg.Auth.JWTAccessTTL)

	var relay *outbox.Job
	if backend.InProcess() {
		// No worker can see an in-memory outbox, so this process relays it.
		relay = outbox.New(backend.Outbox, redrepo.NewEventStreamRepo(redisClient, cfg.Outbox.Stream, cfg.Outbox.MaxLen), cfg.Outbox.BatchSize, log)
		relay.AttachMetrics(recorder)
	}

	RegisterRoutes(r, Dependencies{
		Relationships:  relationships,
		RateLimiter:    rateLimiter,
		Tokens:         tokens,
		MetricsHandler: recorder.Handler(),
		Logger:         log,
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	relayCtx, stopRelay := context.WithCancel(context.Background())

	return &App{
		cfg:        cfg,
		logger:     log,
		server:     server,
		backend:    backend,
		redis:      redisClient,
		relay:      relay,
		relayCtx:   relayCtx,
		stopRelay:  stopRelay,
		relayDone:  make(chan struct{}),
		httpRouter: r,
	}, nil
}

func (a *App) Run() error {
	if a.relay != nil && a.relayOn.CompareAndSwap(false, true) {
		go func() {
			defer close(a.relayDone)
			a.relay.Loop(a.relayCtx, a.cfg.Outbox.Interval)
		}()
	}

	a.logger.Info("api server started",
		zap.String("addr", a.cfg.HTTP.Addr),
		zap.String("storage", a.backend.Driver),
	)
	err := a.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	var shutdownErr error

	if err := a.server.Shutdown(ctx); err != nil {
		shutdownErr = err
	}
	a.stopRelay()
	if a.relayOn.Load() {
		select {
		case <-a.relayDone:
		case <-ctx.Done():
		}
	}
	a.backend.Close()
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && shutdownErr == nil {
			shutdownErr = err
		}
	}

	return shutdownErr
}

func (a *App) Handler() http.Handler {
	return a.httpRouter
}

package workerapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/driftapp/drift/backend/internal/app/storage"
	"github.com/driftapp/drift/backend/internal/config"
	"github.com/driftapp/drift/backend/internal/infra/metrics"
	"github.com/driftapp/drift/backend/internal/jobs/outbox"
	redrepo "github.com/driftapp/drift/backend/internal/repo/redis"
)

type App struct {
	cfg       config.Config
	logger    *zap.Logger
	backend   *storage.Backend
	redis     *goredis.Client
	relay     *outbox.Job
	metricsSv *http.Server
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	backend, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init storage for worker app: %w", err)
	}
	if backend.InProcess() {
		logger.Warn("worker started with in-memory storage, it will only relay its own empty outbox")
	}

	redisClient := redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		backend.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("init redis for worker app: %w", err)
	}

	recorder := metrics.New()
	relay := outbox.New(
		backend.Outbox,
		redrepo.NewEventStreamRepo(redisClient, cfg.Outbox.Stream, cfg.Outbox.MaxLen),
		cfg.Outbox.BatchSize,
		logger,
	)
	relay.AttachMetrics(recorder)

	var metricsServer *http.Server
	if cfg.HTTP.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", recorder.Handler())
		metricsServer = &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           mux,
			ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
		}
	}

	return &App{
		cfg:       cfg,
		logger:    logger,
		backend:   backend,
		redis:     redisClient,
		relay:     relay,
		metricsSv: metricsServer,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("worker app started",
		zap.String("stream", a.cfg.Outbox.Stream),
		zap.Duration("interval", a.cfg.Outbox.Interval),
	)

	errCh := make(chan error, 1)
	if a.metricsSv != nil {
		go func() {
			if err := a.metricsSv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		a.relay.Loop(ctx, a.cfg.Outbox.Interval)
	}()

	select {
	case <-ctx.Done():
		<-relayDone
		a.logger.Info("worker app stopped")
		return nil
	case err := <-errCh:
		return fmt.Errorf("worker metrics server: %w", err)
	}
}

func (a *App) Close() {
	if a.metricsSv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.metricsSv.Shutdown(shutdownCtx)
	}
	a.backend.Close()
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

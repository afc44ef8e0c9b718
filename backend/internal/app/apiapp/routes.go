package apiapp

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	authsvc "github.com/driftapp/drift/backend/internal/services/auth"
	ratesvc "github.com/driftapp/drift/backend/internal/services/rate"
	relsvc "github.com/driftapp/drift/backend/internal/services/relationships"
	"github.com/driftapp/drift/backend/internal/transport/http/handlers"
)

type Dependencies struct {
	Relationships  *relsvc.Service
	RateLimiter    *ratesvc.Limiter
	Tokens         *authsvc.JWTManager
	MetricsHandler http.Handler
	Logger         *zap.Logger
}

func RegisterRoutes(r chi.Router, deps Dependencies) {
	swipeHandler := handlers.NewSwipeHandler(deps.Relationships, deps.RateLimiter, deps.Logger)
	matchesHandler := handlers.NewMatchesHandler(deps.Relationships)
	friendsHandler := handlers.NewFriendsHandler(deps.Relationships)
	blocksHandler := handlers.NewBlocksHandler(deps.Relationships)
	authMW := AuthMiddleware(deps.Tokens, deps.Logger)

	r.Get("/healthz", handlers.Healthz)
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Use(authMW)
		r.Post("/swipes", swipeHandler.Handle)
		r.Get("/swipes/seen", swipeHandler.Seen)
		r.Get("/matches", matchesHandler.Handle)
		r.Post("/blocks", blocksHandler.Create)
		r.Post("/friends/requests", friendsHandler.Send)
		r.Get("/friends/requests/incoming", friendsHandler.Incoming)
		r.Post("/friends/requests/{id}/respond", friendsHandler.Respond)
	})
}

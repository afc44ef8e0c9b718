package handlers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/driftapp/drift/backend/internal/domain/enums"
	"github.com/driftapp/drift/backend/internal/pkg/validate"
	authsvc "github.com/driftapp/drift/backend/internal/services/auth"
	ratesvc "github.com/driftapp/drift/backend/internal/services/rate"
	relsvc "github.com/driftapp/drift/backend/internal/services/relationships"
	"github.com/driftapp/drift/backend/internal/transport/http/dto"
	httperrors "github.com/driftapp/drift/backend/internal/transport/http/errors"
)

type SwipeHandler struct {
	service *relsvc.Service
	limiter *ratesvc.Limiter
	logger  *zap.Logger
}

func NewSwipeHandler(service *relsvc.Service, limiter *ratesvc.Limiter, logger *zap.Logger) *SwipeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SwipeHandler{service: service, limiter: limiter, logger: logger}
}

func (h *SwipeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, r, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, r, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	var req dto.SwipeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, r, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeBadRequest(w, r, "VALIDATION_ERROR", err.Error())
		return
	}
	targetID, err := uuid.Parse(req.TargetID)
	if err != nil {
		writeBadRequest(w, r, "VALIDATION_ERROR", "target_id must be a uuid")
		return
	}

	// Unparseable values fall through to the service, which rejects them.
	direction, _ := enums.ParseSwipeDirection(req.Direction)
	mode, _ := enums.ParseSwipeMode(req.Mode)
	if h.limiter != nil && direction != "" && mode != "" {
		decision, err := h.limiter.AllowSwipe(r.Context(), identity.UserID, direction, mode)
		if err != nil {
			// The limiter guards abuse, not correctness; a Redis outage must not block swipes.
			h.logger.Warn("swipe rate limiter unavailable", zap.Error(err))
		} else if !decision.Allowed {
			httperrors.WriteRateLimited(w, r, "TOO_FAST", "too many likes, slow down", decision.RetryAfterSec())
			return
		}
	}

	result, err := h.service.RecordSwipe(r.Context(), identity.UserID, targetID, req.Direction, req.Mode)
	if err != nil {
		writeServiceError(w, r, err, "failed to process swipe")
		return
	}

	resp := dto.SwipeResponse{OK: true, Matched: result.Matched}
	if result.Matched {
		conversationID := result.ConversationID.String()
		resp.ConversationID = &conversationID
	}
	httperrors.Write(w, http.StatusOK, resp)
}

func (h *SwipeHandler) Seen(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, r, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, r, "SWIPE_SERVICE_UNAVAILABLE", "swipe service is unavailable")
		return
	}

	query := r.URL.Query()
	items, err := h.service.SwipedTargets(
		r.Context(),
		identity.UserID,
		strings.TrimSpace(query.Get("mode")),
		parseIntOrDefault(query.Get("limit"), 100),
	)
	if err != nil {
		writeServiceError(w, r, err, "failed to load swiped profiles")
		return
	}

	resp := dto.SwipedTargetsResponse{Items: make([]string, 0, len(items))}
	for _, id := range items {
		resp.Items = append(resp.Items, id.String())
	}
	httperrors.Write(w, http.StatusOK, resp)
}

package handlers

import (
	"net/http"
	"strings"

	authsvc "github.com/driftapp/drift/backend/internal/services/auth"
	relsvc "github.com/driftapp/drift/backend/internal/services/relationships"
	"github.com/driftapp/drift/backend/internal/transport/http/dto"
	httperrors "github.com/driftapp/drift/backend/internal/transport/http/errors"
)

type MatchesHandler struct {
	service *relsvc.Service
}

func NewMatchesHandler(service *relsvc.Service) *MatchesHandler {
	return &MatchesHandler{service: service}
}

func (h *MatchesHandler) Handle(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, r, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, r, "MATCHES_SERVICE_UNAVAILABLE", "matches service is unavailable")
		return
	}

	query := r.URL.Query()
	items, err := h.service.ListMatches(
		r.Context(),
		identity.UserID,
		strings.TrimSpace(query.Get("mode")),
		parseIntOrDefault(query.Get("limit"), 100),
	)
	if err != nil {
		writeServiceError(w, r, err, "failed to load matches")
		return
	}

	responseItems := make([]dto.MatchItemResponse, 0, len(items))
	for _, item := range items {
		resp := dto.MatchItemResponse{
			TargetUserID: item.Key.Other(identity.UserID).String(),
			Mode:         string(item.Key.Mode),
		}
		if item.MatchedAt != nil {
			resp.MatchedAt = *item.MatchedAt
		}
		responseItems = append(responseItems, resp)
	}

	httperrors.Write(w, http.StatusOK, dto.MatchesResponse{Items: responseItems})
}

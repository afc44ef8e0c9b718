package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/driftapp/drift/backend/internal/pkg/validate"
	authsvc "github.com/driftapp/drift/backend/internal/services/auth"
	relsvc "github.com/driftapp/drift/backend/internal/services/relationships"
	"github.com/driftapp/drift/backend/internal/transport/http/dto"
	httperrors "github.com/driftapp/drift/backend/internal/transport/http/errors"
)

type BlocksHandler struct {
	service *relsvc.Service
}

func NewBlocksHandler(service *relsvc.Service) *BlocksHandler {
	return &BlocksHandler{service: service}
}

// Create blocks target_id for the caller. Pending friend requests between the
// two close as blocked and their match, if any, drops out of /v1/matches.
func (h *BlocksHandler) Create(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, r, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, r, "BLOCKS_SERVICE_UNAVAILABLE", "blocks service is unavailable")
		return
	}

	var req dto.BlockRequest
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

	result, err := h.service.Block(r.Context(), identity.UserID, targetID)
	if err != nil {
		writeServiceError(w, r, err, "failed to block user")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.BlockResponse{OK: true, BlockedRequests: result.BlockedRequests})
}

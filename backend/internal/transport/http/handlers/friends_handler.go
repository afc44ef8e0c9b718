package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/driftapp/drift/backend/internal/pkg/validate"
	authsvc "github.com/driftapp/drift/backend/internal/services/auth"
	relsvc "github.com/driftapp/drift/backend/internal/services/relationships"
	"github.com/driftapp/drift/backend/internal/transport/http/dto"
	httperrors "github.com/driftapp/drift/backend/internal/transport/http/errors"
)

type FriendsHandler struct {
	service *relsvc.Service
}

func NewFriendsHandler(service *relsvc.Service) *FriendsHandler {
	return &FriendsHandler{service: service}
}

func (h *FriendsHandler) Send(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, r, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, r, "FRIENDS_SERVICE_UNAVAILABLE", "friends service is unavailable")
		return
	}

	var req dto.SendFriendRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, r, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeBadRequest(w, r, "VALIDATION_ERROR", err.Error())
		return
	}
	addresseeID, err := uuid.Parse(req.AddresseeID)
	if err != nil {
		writeBadRequest(w, r, "VALIDATION_ERROR", "addressee_id must be a uuid")
		return
	}

	result, err := h.service.SendFriendRequest(r.Context(), identity.UserID, addresseeID)
	if err != nil {
		writeServiceError(w, r, err, "failed to send friend request")
		return
	}

	httperrors.Write(w, http.StatusOK, friendRequestResponse(result))
}

func (h *FriendsHandler) Incoming(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, r, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, r, "FRIENDS_SERVICE_UNAVAILABLE", "friends service is unavailable")
		return
	}

	items, err := h.service.ListIncomingRequests(r.Context(), identity.UserID, parseIntOrDefault(r.URL.Query().Get("limit"), 50))
	if err != nil {
		writeServiceError(w, r, err, "failed to load friend requests")
		return
	}

	resp := dto.FriendRequestsResponse{Items: make([]dto.FriendRequestItem, 0, len(items))}
	for _, item := range items {
		resp.Items = append(resp.Items, dto.FriendRequestItem{
			ID:          item.ID.String(),
			RequesterID: item.RequesterID.String(),
			AddresseeID: item.AddresseeID.String(),
			Status:      string(item.Status),
			CreatedAt:   item.CreatedAt,
		})
	}
	httperrors.Write(w, http.StatusOK, resp)
}

// Respond lets the addressee accept or decline. Anyone else gets 404 so
// request ids of other users are not confirmed.
func (h *FriendsHandler) Respond(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, r, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, r, "FRIENDS_SERVICE_UNAVAILABLE", "friends service is unavailable")
		return
	}

	requestID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeBadRequest(w, r, "VALIDATION_ERROR", "request id must be a uuid")
		return
	}

	var req dto.RespondFriendRequestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, r, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeBadRequest(w, r, "VALIDATION_ERROR", err.Error())
		return
	}

	current, err := h.service.GetFriendRequest(r.Context(), requestID)
	if err != nil {
		writeServiceError(w, r, err, "failed to load friend request")
		return
	}
	if current.AddresseeID != identity.UserID {
		writeNotFound(w, r)
		return
	}

	result, err := h.service.RespondToFriendRequest(r.Context(), requestID, *req.Accept)
	if err != nil {
		writeServiceError(w, r, err, "failed to respond to friend request")
		return
	}

	httperrors.Write(w, http.StatusOK, friendRequestResponse(result))
}

func friendRequestResponse(result relsvc.FriendRequestResult) dto.FriendRequestResponse {
	resp := dto.FriendRequestResponse{
		OK:        true,
		RequestID: result.Request.ID.String(),
		Status:    string(result.Status),
	}
	if result.Established {
		conversationID := result.ConversationID.String()
		resp.ConversationID = &conversationID
	}
	return resp
}

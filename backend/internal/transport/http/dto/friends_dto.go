package dto

import "time"

type SendFriendRequestRequest struct {
	AddresseeID string `json:"addressee_id" validate:"required,uuid"`
}

type RespondFriendRequestRequest struct {
	Accept *bool `json:"accept" validate:"required"`
}

type FriendRequestResponse struct {
	OK             bool    `json:"ok"`
	RequestID      string  `json:"request_id"`
	Status         string  `json:"status"`
	ConversationID *string `json:"conversation_id,omitempty"`
}

type FriendRequestItem struct {
	ID          string    `json:"id"`
	RequesterID string    `json:"requester_id"`
	AddresseeID string    `json:"addressee_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

type FriendRequestsResponse struct {
	Items []FriendRequestItem `json:"items"`
}

package dto

type BlockRequest struct {
	TargetID string `json:"target_id" validate:"required,uuid"`
}

type BlockResponse struct {
	OK              bool `json:"ok"`
	BlockedRequests int  `json:"blocked_requests"`
}

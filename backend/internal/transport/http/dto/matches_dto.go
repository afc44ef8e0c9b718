package dto

import "time"

type MatchItemResponse struct {
	TargetUserID string    `json:"target_user_id"`
	Mode         string    `json:"mode"`
	MatchedAt    time.Time `json:"matched_at"`
}

type MatchesResponse struct {
	Items []MatchItemResponse `json:"items"`
}

package dto

type SwipeRequest struct {
	TargetID  string `json:"target_id" validate:"required,uuid"`
	Direction string `json:"direction" validate:"required,max=16"`
	Mode      string `json:"mode" validate:"required,max=16"`
}

type SwipeResponse struct {
	OK             bool    `json:"ok"`
	Matched        bool    `json:"matched"`
	ConversationID *string `json:"conversation_id,omitempty"`
}

type SwipedTargetsResponse struct {
	Items []string `json:"items"`
}

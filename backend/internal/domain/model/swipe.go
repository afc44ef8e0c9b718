package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/driftapp/drift/backend/internal/domain/enums"
)

type SwipeRecord struct {
	ID        uuid.UUID            `json:"id"`
	SwiperID  uuid.UUID            `json:"swiper_id"`
	SwipedID  uuid.UUID            `json:"swiped_id"`
	Direction enums.SwipeDirection `json:"direction"`
	Mode      enums.SwipeMode      `json:"mode"`
	CreatedAt time.Time            `json:"created_at"`
}

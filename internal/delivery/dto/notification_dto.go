package dto

import (
	"time"

	"github.com/google/uuid"
)

type NotificationResponse struct {
	ID            int64      `json:"id"`
	RecipientID   *uuid.UUID `json:"recipient_id,omitempty"`
	RecipientRole string     `json:"recipient_role,omitempty"`
	Category      string     `json:"category"`
	Title         string     `json:"title"`
	Message       string     `json:"message"`
	Link          string     `json:"link,omitempty"`
	ReadAt        *time.Time `json:"read_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Total         int                    `json:"total"`
}

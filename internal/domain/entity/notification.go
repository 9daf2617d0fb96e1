package entity

import (
	"time"

	"github.com/google/uuid"
)

// Notification categories
const (
	NotificationCategoryAppointment = "appointment"
	NotificationCategoryIntake      = "intake"
	NotificationCategoryProject     = "project"
	NotificationCategoryDesign      = "design"
	NotificationCategoryPayment     = "payment"
	NotificationCategoryProduction  = "production"
)

// Notification is an in-app message addressed to a user or to everyone holding a role
type Notification struct {
	ID            int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	RecipientID   *uuid.UUID `gorm:"type:uuid;index" json:"recipient_id,omitempty"`
	RecipientRole string     `gorm:"type:varchar(20);index" json:"recipient_role,omitempty"`
	Category      string     `gorm:"type:varchar(32);not null" json:"category"`
	Title         string     `gorm:"type:varchar(255);not null" json:"title"`
	Message       string     `gorm:"type:text;not null" json:"message"`
	Link          string     `gorm:"type:text" json:"link,omitempty"`
	ReadAt        *time.Time `json:"read_at,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}

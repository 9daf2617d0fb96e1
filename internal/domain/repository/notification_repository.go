package repository

import (
	"fabrication-workflow/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(db *gorm.DB, notification *entity.Notification) error
	FindForRecipient(db *gorm.DB, userID uuid.UUID, role string, limit int) ([]entity.Notification, error)
	MarkRead(db *gorm.DB, id int64, userID uuid.UUID, role string) (int64, error)
}

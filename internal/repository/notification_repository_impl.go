package repository

import (
	"time"

	"fabrication-workflow/internal/domain/entity"
	domainRepo "fabrication-workflow/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type notificationRepository struct{}

func NewNotificationRepository() domainRepo.NotificationRepository {
	return &notificationRepository{}
}

func (r *notificationRepository) Create(db *gorm.DB, notification *entity.Notification) error {
	return db.Create(notification).Error
}

// FindForRecipient returns messages addressed to the user directly or to their role
func (r *notificationRepository) FindForRecipient(db *gorm.DB, userID uuid.UUID, role string, limit int) ([]entity.Notification, error) {
	var notifications []entity.Notification
	err := db.Where("recipient_id = ? OR (recipient_id IS NULL AND recipient_role = ?)", userID, role).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepository) MarkRead(db *gorm.DB, id int64, userID uuid.UUID, role string) (int64, error) {
	result := db.Model(&entity.Notification{}).
		Where("id = ? AND read_at IS NULL", id).
		Where("recipient_id = ? OR (recipient_id IS NULL AND recipient_role = ?)", userID, role).
		Update("read_at", time.Now().UTC())
	return result.RowsAffected, result.Error
}

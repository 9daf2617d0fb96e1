package usecase

import (
	"context"

	"fabrication-workflow/internal/converter"
	"fabrication-workflow/internal/delivery/dto"
	"fabrication-workflow/internal/domain/entity"
	"fabrication-workflow/internal/domain/repository"
	"fabrication-workflow/pkg/apperror"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrNotificationNotFound = apperror.NotFound("notification_not_found", "Notification not found or already read")

const notificationPageSize = 50

// NotificationUsecase is the in-app inbox read side
type NotificationUsecase interface {
	ListMine(ctx context.Context, actor entity.Actor) (*dto.NotificationListResponse, error)
	MarkRead(ctx context.Context, actor entity.Actor, id int64) error
}

type notificationUsecase struct {
	db               *gorm.DB
	log              *logrus.Logger
	notificationRepo repository.NotificationRepository
}

func NewNotificationUsecase(db *gorm.DB, log *logrus.Logger, notificationRepo repository.NotificationRepository) NotificationUsecase {
	return &notificationUsecase{
		db:               db,
		log:              log,
		notificationRepo: notificationRepo,
	}
}

func (u *notificationUsecase) ListMine(ctx context.Context, actor entity.Actor) (*dto.NotificationListResponse, error) {
	notifications, err := u.notificationRepo.FindForRecipient(u.db.WithContext(ctx), actor.UserID, actor.Role, notificationPageSize)
	if err != nil {
		u.log.Warnf("Failed to list notifications for %s: %+v", actor.UserID, err)
		return nil, err
	}
	return &dto.NotificationListResponse{
		Notifications: converter.NotificationsToResponses(notifications),
		Total:         len(notifications),
	}, nil
}

func (u *notificationUsecase) MarkRead(ctx context.Context, actor entity.Actor, id int64) error {
	affected, err := u.notificationRepo.MarkRead(u.db.WithContext(ctx), id, actor.UserID, actor.Role)
	if err != nil {
		u.log.Warnf("Failed to mark notification %d read: %+v", id, err)
		return err
	}
	if affected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

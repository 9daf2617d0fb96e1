package service

import (
	"context"

	"fabrication-workflow/internal/domain/entity"
	"fabrication-workflow/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// NotificationService stores in-app notifications off the request path.
// Push and email delivery are handled by other systems reading the same table.
type NotificationService struct {
	db               *gorm.DB
	log              *logrus.Logger
	notificationRepo repository.NotificationRepository
	dispatcher       *dispatcher[entity.Notification]
}

// NewNotificationService starts the background writer. Call Stop() during graceful shutdown.
func NewNotificationService(db *gorm.DB, log *logrus.Logger, notificationRepo repository.NotificationRepository, queueSize int) *NotificationService {
	s := &NotificationService{
		db:               db,
		log:              log,
		notificationRepo: notificationRepo,
	}
	s.dispatcher = newDispatcher("notification", log, queueSize, s.write)
	return s
}

// Notify enqueues n. It never blocks and never fails the caller.
func (s *NotificationService) Notify(ctx context.Context, n entity.Notification) {
	if n.RecipientID == nil && n.RecipientRole == "" {
		s.log.Warnf("Dropping notification %q without recipient", n.Title)
		return
	}
	s.dispatcher.dispatch(n)
}

func (s *NotificationService) Stop() {
	s.dispatcher.stop()
}

func (s *NotificationService) write(n entity.Notification) error {
	ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
	defer cancel()

	if err := s.notificationRepo.Create(s.db.WithContext(ctx), &n); err != nil {
		s.log.Warnf("Failed to store notification %q: %+v", n.Title, err)
		return err
	}
	return nil
}

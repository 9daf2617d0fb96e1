package service

import (
	"context"
	"time"

	"fabrication-workflow/internal/domain/entity"
	"fabrication-workflow/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const auditWriteTimeout = 5 * time.Second

// AuditService persists one audit log row per state-changing operation.
// Records are written asynchronously; a failed write is logged, never surfaced.
type AuditService struct {
	db         *gorm.DB
	log        *logrus.Logger
	auditRepo  repository.AuditLogRepository
	dispatcher *dispatcher[entity.AuditEvent]
}

// NewAuditService starts the background writer. Call Stop() during graceful shutdown.
func NewAuditService(db *gorm.DB, log *logrus.Logger, auditRepo repository.AuditLogRepository, queueSize int) *AuditService {
	s := &AuditService{
		db:        db,
		log:       log,
		auditRepo: auditRepo,
	}
	s.dispatcher = newDispatcher("audit", log, queueSize, s.write)
	return s
}

// Record enqueues ev, filling request metadata from ctx when the caller left it empty
func (s *AuditService) Record(ctx context.Context, ev entity.AuditEvent) {
	if ev.Request == (entity.RequestMeta{}) {
		ev.Request = entity.RequestMetaFromContext(ctx)
	}
	s.dispatcher.dispatch(ev)
}

func (s *AuditService) Stop() {
	s.dispatcher.stop()
}

func (s *AuditService) write(ev entity.AuditEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
	defer cancel()

	if err := s.auditRepo.Create(s.db.WithContext(ctx), toAuditLog(ev)); err != nil {
		s.log.Warnf("Failed to create audit log %s %s/%s: %+v", ev.Action, ev.TargetType, ev.TargetID, err)
		return err
	}
	return nil
}

func toAuditLog(ev entity.AuditEvent) *entity.AuditLog {
	metadata := entity.JSON{}
	if len(ev.Details) > 0 {
		metadata["details"] = ev.Details
	}
	if ev.Request != (entity.RequestMeta{}) {
		metadata["request"] = map[string]interface{}{
			"request_id": ev.Request.RequestID,
			"ip":         ev.Request.IP,
			"user_agent": ev.Request.UserAgent,
		}
	}

	auditLog := &entity.AuditLog{
		ActorRole:  ev.Actor.Role,
		Action:     ev.Action,
		TargetType: ev.TargetType,
		TargetID:   ev.TargetID,
		Metadata:   metadata,
	}
	if ev.Actor.UserID != uuid.Nil {
		actorID := ev.Actor.UserID
		auditLog.ActorID = &actorID
	}
	return auditLog
}

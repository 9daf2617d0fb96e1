package repository

import (
	"fabrication-workflow/internal/domain/entity"
	domainRepo "fabrication-workflow/internal/domain/repository"

	"gorm.io/gorm"
)

const defaultAuditLogLimit = 200

type auditLogRepository struct{}

func NewAuditLogRepository() domainRepo.AuditLogRepository {
	return &auditLogRepository{}
}

func (r *auditLogRepository) Create(db *gorm.DB, log *entity.AuditLog) error {
	return db.Create(log).Error
}

func (r *auditLogRepository) FindAll(db *gorm.DB, filter *entity.AuditLogFilter) ([]entity.AuditLog, error) {
	var logs []entity.AuditLog
	query := db
	limit := defaultAuditLogLimit

	if filter != nil {
		if filter.TargetType != "" {
			query = query.Where("target_type = ?", filter.TargetType)
		}
		if filter.TargetID != "" {
			query = query.Where("target_id = ?", filter.TargetID)
		}
		if filter.ActorID != nil {
			query = query.Where("actor_id = ?", *filter.ActorID)
		}
		if filter.Limit > 0 {
			limit = filter.Limit
		}
	}

	err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *auditLogRepository) FindByID(db *gorm.DB, id int64) (*entity.AuditLog, error) {
	return first[entity.AuditLog](db.Where("id = ?", id))
}

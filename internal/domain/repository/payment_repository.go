package repository

import (
	"fabrication-workflow/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentPlanRepository interface {
	Create(db *gorm.DB, plan *entity.PaymentPlan) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.PaymentPlan, error)
	FindByIDForUpdate(db *gorm.DB, id uuid.UUID) (*entity.PaymentPlan, error)
	FindActiveByProject(db *gorm.DB, projectID uuid.UUID) (*entity.PaymentPlan, error)
	Update(db *gorm.DB, plan *entity.PaymentPlan) error
	UpdateStage(db *gorm.DB, stage *entity.PaymentStage) error
	ReplaceStages(db *gorm.DB, planID uuid.UUID, stages []entity.PaymentStage) error
}

type PaymentRepository interface {
	Create(db *gorm.DB, payment *entity.Payment) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Payment, error)
	FindByPlan(db *gorm.DB, planID uuid.UUID) ([]entity.Payment, error)
	CountByPlan(db *gorm.DB, planID uuid.UUID) (int64, error)
	FindByProject(db *gorm.DB, projectID uuid.UUID) ([]entity.Payment, error)
	FindPending(db *gorm.DB) ([]entity.Payment, error)
	UpdateStatus(db *gorm.DB, id uuid.UUID, from entity.PaymentStatus, updates map[string]interface{}) (int64, error)
}

type ReceiptSequenceRepository interface {
	Next(db *gorm.DB, year int) (int, error)
}

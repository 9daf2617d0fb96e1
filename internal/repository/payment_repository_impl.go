package repository

import (
	"fabrication-workflow/internal/domain/entity"
	domainRepo "fabrication-workflow/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type paymentRepository struct{}

func NewPaymentRepository() domainRepo.PaymentRepository {
	return &paymentRepository{}
}

func (r *paymentRepository) Create(db *gorm.DB, payment *entity.Payment) error {
	return db.Create(payment).Error
}

func (r *paymentRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Payment, error) {
	return first[entity.Payment](db.Where("id = ?", id))
}

func (r *paymentRepository) FindByPlan(db *gorm.DB, planID uuid.UUID) ([]entity.Payment, error) {
	var payments []entity.Payment
	err := db.Where("plan_id = ?", planID).Order("created_at ASC").Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *paymentRepository) CountByPlan(db *gorm.DB, planID uuid.UUID) (int64, error) {
	var count int64
	err := db.Model(&entity.Payment{}).Where("plan_id = ?", planID).Count(&count).Error
	return count, err
}

func (r *paymentRepository) FindByProject(db *gorm.DB, projectID uuid.UUID) ([]entity.Payment, error) {
	var payments []entity.Payment
	err := db.Where("project_id = ?", projectID).Order("created_at DESC").Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// FindPending returns proofs waiting for back-office review, oldest first
func (r *paymentRepository) FindPending(db *gorm.DB) ([]entity.Payment, error) {
	var payments []entity.Payment
	err := db.Where("status = ?", entity.PaymentStatusProofSubmitted).Order("created_at ASC").Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}

// UpdateStatus applies updates ONLY if the payment is still in status from.
// Returns affected rows: 1 = success, 0 = already reviewed (prevents double verification).
func (r *paymentRepository) UpdateStatus(db *gorm.DB, id uuid.UUID, from entity.PaymentStatus, updates map[string]interface{}) (int64, error) {
	result := db.Model(&entity.Payment{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

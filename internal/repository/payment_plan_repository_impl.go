package repository

import (
	"fabrication-workflow/internal/domain/entity"
	domainRepo "fabrication-workflow/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type paymentPlanRepository struct{}

func NewPaymentPlanRepository() domainRepo.PaymentPlanRepository {
	return &paymentPlanRepository{}
}

func orderedStages(db *gorm.DB) *gorm.DB {
	return db.Order("sequence ASC")
}

// Create inserts the plan together with its stages
func (r *paymentPlanRepository) Create(db *gorm.DB, plan *entity.PaymentPlan) error {
	return db.Create(plan).Error
}

func (r *paymentPlanRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.PaymentPlan, error) {
	return first[entity.PaymentPlan](db.Preload("Stages", orderedStages).Where("id = ?", id))
}

// FindByIDForUpdate locks the plan row so concurrent verifications settle stages one at a time
func (r *paymentPlanRepository) FindByIDForUpdate(db *gorm.DB, id uuid.UUID) (*entity.PaymentPlan, error) {
	return first[entity.PaymentPlan](db.Clauses(clause.Locking{Strength: "UPDATE"}).Preload("Stages", orderedStages).Where("id = ?", id))
}

func (r *paymentPlanRepository) FindActiveByProject(db *gorm.DB, projectID uuid.UUID) (*entity.PaymentPlan, error) {
	return first[entity.PaymentPlan](db.Preload("Stages", orderedStages).Where("project_id = ? AND active = ?", projectID, true))
}

// Update saves plan-level columns only; stages are written through UpdateStage
func (r *paymentPlanRepository) Update(db *gorm.DB, plan *entity.PaymentPlan) error {
	return db.Omit("Stages").Save(plan).Error
}

func (r *paymentPlanRepository) UpdateStage(db *gorm.DB, stage *entity.PaymentStage) error {
	return db.Save(stage).Error
}

// ReplaceStages swaps the whole stage list of a plan that has not been locked yet
func (r *paymentPlanRepository) ReplaceStages(db *gorm.DB, planID uuid.UUID, stages []entity.PaymentStage) error {
	if err := db.Where("plan_id = ?", planID).Delete(&entity.PaymentStage{}).Error; err != nil {
		return err
	}
	for i := range stages {
		stages[i].PlanID = planID
	}
	return db.Create(&stages).Error
}

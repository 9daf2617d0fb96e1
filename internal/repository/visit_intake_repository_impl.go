package repository

import (
	"fabrication-workflow/internal/domain/entity"
	domainRepo "fabrication-workflow/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type visitIntakeRepository struct{}

func NewVisitIntakeRepository() domainRepo.VisitIntakeRepository {
	return &visitIntakeRepository{}
}

func (r *visitIntakeRepository) Create(db *gorm.DB, intake *entity.VisitIntake) error {
	return db.Create(intake).Error
}

func (r *visitIntakeRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.VisitIntake, error) {
	return first[entity.VisitIntake](db.Where("id = ?", id))
}

func (r *visitIntakeRepository) FindByAppointmentID(db *gorm.DB, appointmentID uuid.UUID) (*entity.VisitIntake, error) {
	return first[entity.VisitIntake](db.Where("appointment_id = ?", appointmentID))
}

func (r *visitIntakeRepository) FindByStaff(db *gorm.DB, staffID uuid.UUID) ([]entity.VisitIntake, error) {
	var intakes []entity.VisitIntake
	err := db.Where("staff_id = ?", staffID).Order("created_at DESC").Find(&intakes).Error
	if err != nil {
		return nil, err
	}
	return intakes, nil
}

func (r *visitIntakeRepository) FindByStatus(db *gorm.DB, status entity.VisitIntakeStatus) ([]entity.VisitIntake, error) {
	var intakes []entity.VisitIntake
	err := db.Where("status = ?", status).Order("submitted_at ASC, created_at ASC").Find(&intakes).Error
	if err != nil {
		return nil, err
	}
	return intakes, nil
}

func (r *visitIntakeRepository) Update(db *gorm.DB, intake *entity.VisitIntake) error {
	return db.Save(intake).Error
}

// UpdateStatus applies updates ONLY if the intake is still in status from
func (r *visitIntakeRepository) UpdateStatus(db *gorm.DB, id uuid.UUID, from entity.VisitIntakeStatus, updates map[string]interface{}) (int64, error) {
	result := db.Model(&entity.VisitIntake{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

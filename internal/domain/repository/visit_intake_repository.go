package repository

import (
	"fabrication-workflow/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VisitIntakeRepository interface {
	Create(db *gorm.DB, intake *entity.VisitIntake) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.VisitIntake, error)
	FindByAppointmentID(db *gorm.DB, appointmentID uuid.UUID) (*entity.VisitIntake, error)
	FindByStaff(db *gorm.DB, staffID uuid.UUID) ([]entity.VisitIntake, error)
	FindByStatus(db *gorm.DB, status entity.VisitIntakeStatus) ([]entity.VisitIntake, error)
	Update(db *gorm.DB, intake *entity.VisitIntake) error
	UpdateStatus(db *gorm.DB, id uuid.UUID, from entity.VisitIntakeStatus, updates map[string]interface{}) (int64, error)
}

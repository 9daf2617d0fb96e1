package repository

import (
	"fabrication-workflow/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectRepository interface {
	Create(db *gorm.DB, project *entity.Project) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Project, error)
	FindByAppointmentID(db *gorm.DB, appointmentID uuid.UUID) (*entity.Project, error)
	FindByCustomer(db *gorm.DB, customerID uuid.UUID) ([]entity.Project, error)
	FindByAssignee(db *gorm.DB, userID uuid.UUID) ([]entity.Project, error)
	FindAll(db *gorm.DB, filter *entity.ProjectFilter) ([]entity.Project, error)
	CountByAppointmentID(db *gorm.DB, appointmentID uuid.UUID) (int64, error)
	UpdateStatus(db *gorm.DB, id uuid.UUID, from entity.ProjectStatus, updates map[string]interface{}) (int64, error)
	AddAssignment(db *gorm.DB, assignment *entity.ProjectAssignment) error
	RemoveAssignment(db *gorm.DB, projectID, userID uuid.UUID, role string) (int64, error)
}

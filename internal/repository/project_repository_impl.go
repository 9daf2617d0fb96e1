package repository

import (
	"fabrication-workflow/internal/domain/entity"
	domainRepo "fabrication-workflow/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type projectRepository struct{}

func NewProjectRepository() domainRepo.ProjectRepository {
	return &projectRepository{}
}

func (r *projectRepository) Create(db *gorm.DB, project *entity.Project) error {
	return db.Omit("Assignments").Create(project).Error
}

func (r *projectRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Project, error) {
	return first[entity.Project](db.Preload("Assignments").Scopes(notDeleted).Where("id = ?", id))
}

func (r *projectRepository) FindByAppointmentID(db *gorm.DB, appointmentID uuid.UUID) (*entity.Project, error) {
	return first[entity.Project](db.Preload("Assignments").Scopes(notDeleted).Where("appointment_id = ?", appointmentID))
}

func (r *projectRepository) FindByCustomer(db *gorm.DB, customerID uuid.UUID) ([]entity.Project, error) {
	var projects []entity.Project
	err := db.Preload("Assignments").Scopes(notDeleted).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// FindByAssignee returns projects where userID holds any assignment
func (r *projectRepository) FindByAssignee(db *gorm.DB, userID uuid.UUID) ([]entity.Project, error) {
	var projects []entity.Project
	err := db.Preload("Assignments").Scopes(notDeleted).
		Where("id IN (?)", db.Session(&gorm.Session{NewDB: true}).
			Model(&entity.ProjectAssignment{}).Select("project_id").Where("user_id = ?", userID)).
		Order("created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepository) FindAll(db *gorm.DB, filter *entity.ProjectFilter) ([]entity.Project, error) {
	var projects []entity.Project
	query := db.Preload("Assignments").Scopes(notDeleted)

	if filter != nil {
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
		if filter.CustomerID != nil {
			query = query.Where("customer_id = ?", *filter.CustomerID)
		}
	}

	err := query.Order("created_at DESC").Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepository) CountByAppointmentID(db *gorm.DB, appointmentID uuid.UUID) (int64, error) {
	var count int64
	err := db.Model(&entity.Project{}).Where("appointment_id = ?", appointmentID).Count(&count).Error
	return count, err
}

// UpdateStatus applies updates ONLY if the project is still in status from
func (r *projectRepository) UpdateStatus(db *gorm.DB, id uuid.UUID, from entity.ProjectStatus, updates map[string]interface{}) (int64, error) {
	result := db.Model(&entity.Project{}).Scopes(notDeleted).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// AddAssignment is a no-op when the (project, user, role) triple already exists
func (r *projectRepository) AddAssignment(db *gorm.DB, assignment *entity.ProjectAssignment) error {
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(assignment).Error
}

func (r *projectRepository) RemoveAssignment(db *gorm.DB, projectID, userID uuid.UUID, role string) (int64, error) {
	result := db.Where("project_id = ? AND user_id = ? AND role = ?", projectID, userID, role).
		Delete(&entity.ProjectAssignment{})
	return result.RowsAffected, result.Error
}

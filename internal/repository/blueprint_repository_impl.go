package repository

import (
	"fabrication-workflow/internal/domain/entity"
	domainRepo "fabrication-workflow/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type blueprintRepository struct{}

func NewBlueprintRepository() domainRepo.BlueprintRepository {
	return &blueprintRepository{}
}

func (r *blueprintRepository) Create(db *gorm.DB, blueprint *entity.Blueprint) error {
	return db.Create(blueprint).Error
}

func (r *blueprintRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Blueprint, error) {
	return first[entity.Blueprint](db.Where("id = ?", id))
}

// FindByIDForUpdate locks the row so part approvals and revision requests apply one at a time
func (r *blueprintRepository) FindByIDForUpdate(db *gorm.DB, id uuid.UUID) (*entity.Blueprint, error) {
	return first[entity.Blueprint](db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id))
}

// FindLatestByProject returns the highest version, which carries the package status
func (r *blueprintRepository) FindLatestByProject(db *gorm.DB, projectID uuid.UUID) (*entity.Blueprint, error) {
	return first[entity.Blueprint](db.Where("project_id = ?", projectID).Order("version DESC"))
}

func (r *blueprintRepository) FindByProject(db *gorm.DB, projectID uuid.UUID) ([]entity.Blueprint, error) {
	var blueprints []entity.Blueprint
	err := db.Where("project_id = ?", projectID).Order("version ASC").Find(&blueprints).Error
	if err != nil {
		return nil, err
	}
	return blueprints, nil
}

func (r *blueprintRepository) Update(db *gorm.DB, blueprint *entity.Blueprint) error {
	return db.Save(blueprint).Error
}

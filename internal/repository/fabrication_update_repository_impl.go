package repository

import (
	"fabrication-workflow/internal/domain/entity"
	domainRepo "fabrication-workflow/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fabricationUpdateRepository struct{}

func NewFabricationUpdateRepository() domainRepo.FabricationUpdateRepository {
	return &fabricationUpdateRepository{}
}

func (r *fabricationUpdateRepository) Create(db *gorm.DB, update *entity.FabricationUpdate) error {
	return db.Create(update).Error
}

func (r *fabricationUpdateRepository) FindLatestByProject(db *gorm.DB, projectID uuid.UUID) (*entity.FabricationUpdate, error) {
	var update entity.FabricationUpdate
	err := db.Where("project_id = ?", projectID).Order("created_at DESC").Limit(1).Find(&update).Error
	if err != nil {
		return nil, err
	}
	if update.ID == uuid.Nil {
		return nil, nil
	}
	return &update, nil
}

func (r *fabricationUpdateRepository) FindByProject(db *gorm.DB, projectID uuid.UUID) ([]entity.FabricationUpdate, error) {
	var updates []entity.FabricationUpdate
	err := db.Where("project_id = ?", projectID).Order("created_at ASC").Find(&updates).Error
	if err != nil {
		return nil, err
	}
	return updates, nil
}

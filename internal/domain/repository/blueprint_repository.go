package repository

import (
	"fabrication-workflow/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BlueprintRepository interface {
	Create(db *gorm.DB, blueprint *entity.Blueprint) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Blueprint, error)
	FindByIDForUpdate(db *gorm.DB, id uuid.UUID) (*entity.Blueprint, error)
	FindLatestByProject(db *gorm.DB, projectID uuid.UUID) (*entity.Blueprint, error)
	FindByProject(db *gorm.DB, projectID uuid.UUID) ([]entity.Blueprint, error)
	Update(db *gorm.DB, blueprint *entity.Blueprint) error
}

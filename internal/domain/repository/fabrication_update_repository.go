package repository

import (
	"fabrication-workflow/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FabricationUpdateRepository interface {
	Create(db *gorm.DB, update *entity.FabricationUpdate) error
	FindLatestByProject(db *gorm.DB, projectID uuid.UUID) (*entity.FabricationUpdate, error)
	FindByProject(db *gorm.DB, projectID uuid.UUID) ([]entity.FabricationUpdate, error)
}

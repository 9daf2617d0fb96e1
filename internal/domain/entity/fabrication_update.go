package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FabricationStage is a forward-only production step
type FabricationStage string

const (
	FabricationStageQueued           FabricationStage = "queued"
	FabricationStageMaterialPrep     FabricationStage = "material_prep"
	FabricationStageCutting          FabricationStage = "cutting"
	FabricationStageWelding          FabricationStage = "welding"
	FabricationStageFinishing        FabricationStage = "finishing"
	FabricationStageQualityCheck     FabricationStage = "quality_check"
	FabricationStageReadyForDelivery FabricationStage = "ready_for_delivery"
	FabricationStageDone             FabricationStage = "done"
)

// FabricationStages lists the production steps in order
var FabricationStages = []FabricationStage{
	FabricationStageQueued,
	FabricationStageMaterialPrep,
	FabricationStageCutting,
	FabricationStageWelding,
	FabricationStageFinishing,
	FabricationStageQualityCheck,
	FabricationStageReadyForDelivery,
	FabricationStageDone,
}

// FabricationUpdate is an append-only production log entry
type FabricationUpdate struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID  uuid.UUID        `gorm:"type:uuid;not null;index" json:"project_id"`
	Stage      FabricationStage `gorm:"type:varchar(32);not null" json:"stage"`
	Notes      string           `gorm:"type:text" json:"notes,omitempty"`
	PhotoKeys  StringList       `gorm:"type:jsonb" json:"photo_keys,omitempty"`
	RecordedBy uuid.UUID        `gorm:"type:uuid;not null" json:"recorded_by"`
	CreatedAt  time.Time        `gorm:"autoCreateTime;index" json:"created_at"`
}

func (FabricationUpdate) TableName() string {
	return "fabrication_updates"
}

func (f *FabricationUpdate) BeforeCreate(tx *gorm.DB) error {
	ensureID(&f.ID)
	return nil
}

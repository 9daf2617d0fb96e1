package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type RecordFabricationRequest struct {
	Stage     string   `json:"stage" validate:"required,oneof=material_prep cutting welding finishing quality_check ready_for_delivery done"`
	Notes     string   `json:"notes" validate:"omitempty,max=5000"`
	PhotoKeys []string `json:"photo_keys" validate:"omitempty,max=50,dive,required,max=512"`
}

// Response DTOs

type FabricationUpdateResponse struct {
	ID         uuid.UUID `json:"id"`
	ProjectID  uuid.UUID `json:"project_id"`
	Stage      string    `json:"stage"`
	Notes      string    `json:"notes,omitempty"`
	PhotoKeys  []string  `json:"photo_keys"`
	RecordedBy uuid.UUID `json:"recorded_by"`
	CreatedAt  time.Time `json:"created_at"`
}

type FabricationHistoryResponse struct {
	ProjectID    uuid.UUID                   `json:"project_id"`
	CurrentStage string                      `json:"current_stage"`
	NextStages   []string                    `json:"next_stages"`
	Updates      []FabricationUpdateResponse `json:"updates"`
	Total        int                         `json:"total"`
}

// RecordFabricationResponse also reports the project status after the update
type RecordFabricationResponse struct {
	Update        *FabricationUpdateResponse `json:"update"`
	ProjectStatus string                     `json:"project_status"`
}

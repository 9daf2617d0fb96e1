package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type UploadBlueprintRequest struct {
	DrawingKey    string          `json:"drawing_key" validate:"required,max=512"`
	CostingKey    string          `json:"costing_key" validate:"required,max=512"`
	EstimatedCost decimal.Decimal `json:"estimated_cost"`
}

type ApproveBlueprintRequest struct {
	Part string `json:"part" validate:"required,oneof=drawing costing both"`
}

type RequestRevisionRequest struct {
	Notes string `json:"notes" validate:"required,max=5000"`
}

// Response DTOs

type BlueprintResponse struct {
	ID              uuid.UUID       `json:"id"`
	ProjectID       uuid.UUID       `json:"project_id"`
	Version         int             `json:"version"`
	DrawingKey      string          `json:"drawing_key"`
	CostingKey      string          `json:"costing_key"`
	EstimatedCost   decimal.Decimal `json:"estimated_cost"`
	DrawingApproved bool            `json:"drawing_approved"`
	CostingApproved bool            `json:"costing_approved"`
	Status          string          `json:"status"`
	RevisionNotes   string          `json:"revision_notes,omitempty"`
	UploadedBy      uuid.UUID       `json:"uploaded_by"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type BlueprintListResponse struct {
	Blueprints    []BlueprintResponse `json:"blueprints"`
	Total         int                 `json:"total"`
	PackageStatus string              `json:"package_status,omitempty"`
}

// ApproveBlueprintResponse also reports the project status after approval
type ApproveBlueprintResponse struct {
	Blueprint     *BlueprintResponse `json:"blueprint"`
	ProjectStatus string             `json:"project_status"`
}

package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BlueprintStatus represents the review status of a design package version
type BlueprintStatus string

const (
	BlueprintStatusUploaded          BlueprintStatus = "uploaded"
	BlueprintStatusApproved          BlueprintStatus = "approved"
	BlueprintStatusRevisionRequested BlueprintStatus = "revision_requested"
	BlueprintStatusRevisionUploaded  BlueprintStatus = "revision_uploaded"
)

// Blueprint is one version of a project's design package (drawing + costing)
type Blueprint struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_blueprints_project_version" json:"project_id"`
	Version         int             `gorm:"not null;uniqueIndex:idx_blueprints_project_version" json:"version"`
	DrawingKey      string          `gorm:"type:text;not null" json:"drawing_key"`
	CostingKey      string          `gorm:"type:text;not null" json:"costing_key"`
	EstimatedCost   decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"estimated_cost"`
	DrawingApproved bool            `gorm:"not null;default:false" json:"drawing_approved"`
	CostingApproved bool            `gorm:"not null;default:false" json:"costing_approved"`
	Status          BlueprintStatus `gorm:"type:varchar(32);not null;index" json:"status"`
	RevisionNotes   string          `gorm:"type:text" json:"revision_notes,omitempty"`
	UploadedBy      uuid.UUID       `gorm:"type:uuid;not null" json:"uploaded_by"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Blueprint) TableName() string {
	return "blueprints"
}

func (b *Blueprint) BeforeCreate(tx *gorm.DB) error {
	ensureID(&b.ID)
	return nil
}

// FullyApproved checks if both the drawing and the costing were accepted
func (b *Blueprint) FullyApproved() bool {
	return b.DrawingApproved && b.CostingApproved
}

// AwaitingReview reports whether the customer can act on this version
func (b *Blueprint) AwaitingReview() bool {
	return b.Status == BlueprintStatusUploaded || b.Status == BlueprintStatusRevisionUploaded
}

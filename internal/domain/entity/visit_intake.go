package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VisitIntakeStatus represents the status of a visit intake record
type VisitIntakeStatus string

const (
	VisitIntakeStatusDraft     VisitIntakeStatus = "draft"
	VisitIntakeStatusSubmitted VisitIntakeStatus = "submitted"
	VisitIntakeStatusReturned  VisitIntakeStatus = "returned"
	VisitIntakeStatusCompleted VisitIntakeStatus = "completed"
)

// VisitIntake captures the site findings of a confirmed appointment.
// One per appointment; owned by the assigned staff member until submitted.
type VisitIntake struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	AppointmentID uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex" json:"appointment_id"`
	CustomerID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"customer_id"`
	StaffID       *uuid.UUID        `gorm:"type:uuid;index" json:"staff_id,omitempty"`
	Status        VisitIntakeStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	Measurements  string            `gorm:"type:text" json:"measurements,omitempty"`
	Materials     string            `gorm:"type:text" json:"materials,omitempty"`
	Requirements  string            `gorm:"type:text" json:"requirements,omitempty"`
	Notes         string            `gorm:"type:text" json:"notes,omitempty"`
	PhotoKeys     StringList        `gorm:"type:jsonb" json:"photo_keys,omitempty"`
	ReturnReason  string            `gorm:"type:text" json:"return_reason,omitempty"`
	SubmittedAt   *time.Time        `json:"submitted_at,omitempty"`
	CreatedAt     time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

func (VisitIntake) TableName() string {
	return "visit_intakes"
}

func (v *VisitIntake) BeforeCreate(tx *gorm.DB) error {
	ensureID(&v.ID)
	return nil
}

// IsEditable checks if the assigned staff may still change the findings
func (v *VisitIntake) IsEditable() bool {
	return v.Status == VisitIntakeStatusDraft || v.Status == VisitIntakeStatusReturned
}

// IsSubmitted reports whether the findings have already left the staff member's hands
func (v *VisitIntake) IsSubmitted() bool {
	return v.Status == VisitIntakeStatusSubmitted || v.Status == VisitIntakeStatusCompleted
}

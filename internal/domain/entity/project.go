package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectStatus represents the status of a fabrication project
type ProjectStatus string

const (
	ProjectStatusDraft          ProjectStatus = "draft"
	ProjectStatusSubmitted      ProjectStatus = "submitted"
	ProjectStatusDesignPhase    ProjectStatus = "design_phase"
	ProjectStatusApproved       ProjectStatus = "approved"
	ProjectStatusPaymentPending ProjectStatus = "payment_pending"
	ProjectStatusProduction     ProjectStatus = "production"
	ProjectStatusCompleted      ProjectStatus = "completed"
	ProjectStatusCancelled      ProjectStatus = "cancelled"
)

// Assignment roles on a project
const (
	AssignmentRoleDesign     = "design"
	AssignmentRoleProduction = "production"
)

// Project is the fabrication job created from a submitted visit intake
type Project struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	AppointmentID uuid.UUID     `gorm:"type:uuid;not null;uniqueIndex" json:"appointment_id"`
	IntakeID      uuid.UUID     `gorm:"type:uuid;not null;index" json:"intake_id"`
	CustomerID    uuid.UUID     `gorm:"type:uuid;not null;index" json:"customer_id"`
	Title         string        `gorm:"type:varchar(255);not null" json:"title"`
	Measurements  string        `gorm:"type:text" json:"measurements,omitempty"`
	Materials     string        `gorm:"type:text" json:"materials,omitempty"`
	Requirements  string        `gorm:"type:text" json:"requirements,omitempty"`
	Status        ProjectStatus `gorm:"type:varchar(32);not null;index" json:"status"`
	CancelReason  string        `gorm:"type:text" json:"cancel_reason,omitempty"`
	CreatedAt     time.Time     `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     *time.Time    `gorm:"index" json:"-"`

	// Relationships
	Assignments []ProjectAssignment `gorm:"foreignKey:ProjectID" json:"assignments,omitempty"`
}

func (Project) TableName() string {
	return "projects"
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// StaffFor returns the user ids assigned to the project under role
func (p *Project) StaffFor(role string) []uuid.UUID {
	var ids []uuid.UUID
	for _, a := range p.Assignments {
		if a.Role == role {
			ids = append(ids, a.UserID)
		}
	}
	return ids
}

// IsAssigned reports whether userID holds role on the project
func (p *Project) IsAssigned(userID uuid.UUID, role string) bool {
	for _, a := range p.Assignments {
		if a.Role == role && a.UserID == userID {
			return true
		}
	}
	return false
}

// ProjectAssignment links design or production staff to a project
type ProjectAssignment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_project_assignments_unique" json:"project_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_project_assignments_unique;index" json:"user_id"`
	Role      string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_project_assignments_unique" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (ProjectAssignment) TableName() string {
	return "project_assignments"
}

func (a *ProjectAssignment) BeforeCreate(tx *gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

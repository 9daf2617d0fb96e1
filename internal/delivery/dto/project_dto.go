package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type AssignStaffRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Role   string    `json:"role" validate:"required,oneof=design production"`
}

type CancelProjectRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

type ProjectFilterRequest struct {
	Status string `json:"status"`
}

// Response DTOs

type AssignmentResponse struct {
	UserID    uuid.UUID `json:"user_id"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type ProjectResponse struct {
	ID             uuid.UUID            `json:"id"`
	AppointmentID  uuid.UUID            `json:"appointment_id"`
	IntakeID       uuid.UUID            `json:"intake_id"`
	CustomerID     uuid.UUID            `json:"customer_id"`
	Title          string               `json:"title"`
	Measurements   string               `json:"measurements,omitempty"`
	Materials      string               `json:"materials,omitempty"`
	Requirements   string               `json:"requirements,omitempty"`
	Status         string               `json:"status"`
	CancelReason   string               `json:"cancel_reason,omitempty"`
	Assignments    []AssignmentResponse `json:"assignments"`
	AllowedActions []string             `json:"allowed_actions"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

type ProjectListResponse struct {
	Projects []ProjectResponse `json:"projects"`
	Total    int               `json:"total"`
}

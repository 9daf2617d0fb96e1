package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type UpdateVisitIntakeRequest struct {
	Measurements *string  `json:"measurements" validate:"omitempty,max=10000"`
	Materials    *string  `json:"materials" validate:"omitempty,max=10000"`
	Requirements *string  `json:"requirements" validate:"omitempty,max=10000"`
	Notes        *string  `json:"notes" validate:"omitempty,max=10000"`
	PhotoKeys    []string `json:"photo_keys" validate:"omitempty,max=50,dive,required,max=512"`
}

type ReturnVisitIntakeRequest struct {
	Reason string `json:"reason" validate:"required,max=2000"`
}

// Response DTOs

type VisitIntakeResponse struct {
	ID            uuid.UUID  `json:"id"`
	AppointmentID uuid.UUID  `json:"appointment_id"`
	CustomerID    uuid.UUID  `json:"customer_id"`
	StaffID       *uuid.UUID `json:"staff_id,omitempty"`
	Status        string     `json:"status"`
	Measurements  string     `json:"measurements,omitempty"`
	Materials     string     `json:"materials,omitempty"`
	Requirements  string     `json:"requirements,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	PhotoKeys     []string   `json:"photo_keys"`
	ReturnReason  string     `json:"return_reason,omitempty"`
	SubmittedAt   *time.Time `json:"submitted_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type VisitIntakeListResponse struct {
	Intakes []VisitIntakeResponse `json:"intakes"`
	Total   int                   `json:"total"`
}

// SubmitVisitIntakeResponse reports what the submission set in motion
type SubmitVisitIntakeResponse struct {
	Intake            *VisitIntakeResponse `json:"intake"`
	AppointmentStatus string               `json:"appointment_status,omitempty"`
	ProjectID         *uuid.UUID           `json:"project_id,omitempty"`
	ProjectStatus     string               `json:"project_status,omitempty"`
}

package dto

import (
	"fabrication-workflow/internal/domain/entity"
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type AuditLogFilterRequest struct {
	TargetType string     `json:"target_type"`
	TargetID   string     `json:"target_id"`
	ActorID    *uuid.UUID `json:"actor_id"`
	Limit      int        `json:"limit" validate:"omitempty,min=1,max=500"`
}

// Response DTOs

type AuditLogResponse struct {
	ID         int64       `json:"id"`
	ActorID    *uuid.UUID  `json:"actor_id,omitempty"`
	ActorRole  string      `json:"actor_role,omitempty"`
	Action     string      `json:"action"`
	TargetType string      `json:"target_type"`
	TargetID   string      `json:"target_id"`
	Metadata   entity.JSON `json:"metadata"`
	CreatedAt  time.Time   `json:"created_at"`
}

type AuditLogListResponse struct {
	Logs  []AuditLogResponse `json:"logs"`
	Total int                `json:"total"`
}

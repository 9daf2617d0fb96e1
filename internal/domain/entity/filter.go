package entity

import "github.com/google/uuid"

// AppointmentFilter is a domain-level filter for back-office appointment queues.
// Used by repository layer to avoid coupling with delivery DTOs.
type AppointmentFilter struct {
	StartAt string // Format: YYYY-MM-DD
	EndAt   string // Format: YYYY-MM-DD
	Status  AppointmentStatus
	Type    AppointmentType
	StaffID *uuid.UUID
}

// ProjectFilter narrows project listings by status and customer
type ProjectFilter struct {
	Status     ProjectStatus
	CustomerID *uuid.UUID
}

// AuditLogFilter narrows the audit trail to one target or one actor
type AuditLogFilter struct {
	TargetType string
	TargetID   string
	ActorID    *uuid.UUID
	Limit      int
}

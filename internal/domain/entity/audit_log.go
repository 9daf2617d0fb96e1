package entity

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog represents a system audit trail entry
type AuditLog struct {
	ID         int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorID    *uuid.UUID `gorm:"type:uuid;index" json:"actor_id,omitempty"`
	ActorRole  string     `gorm:"type:varchar(20)" json:"actor_role,omitempty"`
	Action     string     `gorm:"type:varchar(100);not null;index" json:"action"`
	TargetType string     `gorm:"type:varchar(50);not null;index:idx_audit_logs_target" json:"target_type"`
	TargetID   string     `gorm:"type:varchar(64);not null;index:idx_audit_logs_target" json:"target_id"`
	Metadata   JSON       `gorm:"type:jsonb" json:"metadata,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// Audit target types
const (
	AuditTargetAppointment = "appointment"
	AuditTargetHold        = "reservation_hold"
	AuditTargetIntake      = "visit_intake"
	AuditTargetProject     = "project"
	AuditTargetBlueprint   = "blueprint"
	AuditTargetPaymentPlan = "payment_plan"
	AuditTargetPayment     = "payment"
	AuditTargetFabrication = "fabrication_update"
)

// Common audit actions
const (
	AuditActionAppointmentRequest            = "appointment.request"
	AuditActionAppointmentHold               = "appointment.hold"
	AuditActionAppointmentConfirm            = "appointment.confirm"
	AuditActionAppointmentComplete           = "appointment.complete"
	AuditActionAppointmentNoShow             = "appointment.no_show"
	AuditActionAppointmentCancel             = "appointment.cancel"
	AuditActionAppointmentRescheduleRequest  = "appointment.reschedule_request"
	AuditActionAppointmentRescheduleComplete = "appointment.reschedule_complete"
	AuditActionIntakeCreate                  = "intake.create"
	AuditActionIntakeUpdate                  = "intake.update"
	AuditActionIntakeSubmit                  = "intake.submit"
	AuditActionIntakeReturn                  = "intake.return"
	AuditActionIntakeAccept                  = "intake.accept"
	AuditActionProjectCreate                 = "project.create"
	AuditActionProjectAdvance                = "project.advance"
	AuditActionProjectAssign                 = "project.assign"
	AuditActionProjectCancel                 = "project.cancel"
	AuditActionBlueprintUpload               = "blueprint.upload"
	AuditActionBlueprintApprove              = "blueprint.approve"
	AuditActionBlueprintRevision             = "blueprint.request_revision"
	AuditActionPlanCreate                    = "payment_plan.create"
	AuditActionPlanUpdate                    = "payment_plan.update"
	AuditActionPaymentSubmit                 = "payment.submit"
	AuditActionPaymentVerify                 = "payment.verify"
	AuditActionPaymentDecline                = "payment.decline"
	AuditActionFabricationRecord             = "fabrication.record"
)

// AuditEvent is the write-only record handed to the audit sink
type AuditEvent struct {
	Action     string
	Actor      Actor
	TargetType string
	TargetID   string
	Details    map[string]interface{}
	Request    RequestMeta
}

package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreatePaymentPlanRequest struct {
	TotalAmount decimal.Decimal   `json:"total_amount" validate:"decimal_positive"`
	Percentages []decimal.Decimal `json:"percentages" validate:"required,min=1,max=12"`
}

type UpdatePaymentPlanRequest struct {
	TotalAmount decimal.Decimal   `json:"total_amount" validate:"decimal_positive"`
	Percentages []decimal.Decimal `json:"percentages" validate:"required,min=1,max=12"`
}

type SubmitPaymentRequest struct {
	StageID         uuid.UUID       `json:"stage_id" validate:"required"`
	Method          string          `json:"method" validate:"required,oneof=cash bank_transfer e_wallet check"`
	Amount          decimal.Decimal `json:"amount" validate:"decimal_positive"`
	ReferenceNumber *string         `json:"reference_number" validate:"omitempty,max=100"`
	ProofKey        string          `json:"proof_key" validate:"omitempty,max=512"`
}

type DeclinePaymentRequest struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

// Response DTOs

type PaymentStageResponse struct {
	ID               uuid.UUID       `json:"id"`
	Sequence         int             `json:"sequence"`
	Label            string          `json:"label"`
	Percentage       decimal.Decimal `json:"percentage"`
	TargetAmount     decimal.Decimal `json:"target_amount"`
	AmountPaid       decimal.Decimal `json:"amount_paid"`
	CreditApplied    decimal.Decimal `json:"credit_applied"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	Status           string          `json:"status"`
	VerifiedAt       *time.Time      `json:"verified_at,omitempty"`
}

type PaymentPlanResponse struct {
	ID                 uuid.UUID              `json:"id"`
	ProjectID          uuid.UUID              `json:"project_id"`
	TotalAmount        decimal.Decimal        `json:"total_amount"`
	CreditBalance      decimal.Decimal        `json:"credit_balance"`
	OutstandingBalance decimal.Decimal        `json:"outstanding_balance"`
	Immutable          bool                   `json:"immutable"`
	LockedAt           *time.Time             `json:"locked_at,omitempty"`
	Stages             []PaymentStageResponse `json:"stages"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
}

type PaymentResponse struct {
	ID              uuid.UUID       `json:"id"`
	PlanID          uuid.UUID       `json:"plan_id"`
	StageID         uuid.UUID       `json:"stage_id"`
	ProjectID       uuid.UUID       `json:"project_id"`
	SubmittedBy     uuid.UUID       `json:"submitted_by"`
	Method          string          `json:"method"`
	Amount          decimal.Decimal `json:"amount"`
	ReferenceNumber *string         `json:"reference_number,omitempty"`
	ProofKey        string          `json:"proof_key,omitempty"`
	Status          string          `json:"status"`
	ExcessCredit    decimal.Decimal `json:"excess_credit"`
	ReceiptNumber   *string         `json:"receipt_number,omitempty"`
	VerifiedBy      *uuid.UUID      `json:"verified_by,omitempty"`
	VerifiedAt      *time.Time      `json:"verified_at,omitempty"`
	DeclineReason   string          `json:"decline_reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

type PaymentListResponse struct {
	Payments []PaymentResponse `json:"payments"`
	Total    int               `json:"total"`
}

type CreditAllocationResponse struct {
	StageID  uuid.UUID       `json:"stage_id"`
	Sequence int             `json:"sequence"`
	Amount   decimal.Decimal `json:"amount"`
}

// VerifyPaymentResponse describes the settlement a verification produced
type VerifyPaymentResponse struct {
	Payment        *PaymentResponse           `json:"payment"`
	Plan           *PaymentPlanResponse       `json:"plan"`
	CarriedForward []CreditAllocationResponse `json:"carried_forward"`
	ProjectStatus  string                     `json:"project_status"`
	AlreadyApplied bool                       `json:"already_applied"`
}

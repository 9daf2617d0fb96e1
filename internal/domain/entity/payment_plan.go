package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentStageStatus represents the settlement status of one installment
type PaymentStageStatus string

const (
	PaymentStageStatusPending        PaymentStageStatus = "pending"
	PaymentStageStatusProofSubmitted PaymentStageStatus = "proof_submitted"
	PaymentStageStatusVerified       PaymentStageStatus = "verified"
	PaymentStageStatusDeclined       PaymentStageStatus = "declined"
)

// PaymentPlan splits a project's total into ordered percentage-based stages.
// It becomes immutable once any stage is verified.
type PaymentPlan struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"project_id"`
	Active        bool            `gorm:"not null;default:true;index" json:"active"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`
	CreditBalance decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"credit_balance"`
	Immutable     bool            `gorm:"not null;default:false" json:"immutable"`
	LockedAt      *time.Time      `json:"locked_at,omitempty"`
	CreatedBy     uuid.UUID       `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Stages []PaymentStage `gorm:"foreignKey:PlanID" json:"stages,omitempty"`
}

func (PaymentPlan) TableName() string {
	return "payment_plans"
}

func (p *PaymentPlan) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// StageByID returns a pointer into p.Stages
func (p *PaymentPlan) StageByID(id uuid.UUID) *PaymentStage {
	for i := range p.Stages {
		if p.Stages[i].ID == id {
			return &p.Stages[i]
		}
	}
	return nil
}

// AllVerified checks if every stage of the plan has been settled
func (p *PaymentPlan) AllVerified() bool {
	if len(p.Stages) == 0 {
		return false
	}
	for _, s := range p.Stages {
		if s.Status != PaymentStageStatusVerified {
			return false
		}
	}
	return true
}

// PaymentStage is one installment of a payment plan
type PaymentStage struct {
	ID               uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	PlanID           uuid.UUID          `gorm:"type:uuid;not null;index;uniqueIndex:idx_payment_stages_plan_seq" json:"plan_id"`
	Sequence         int                `gorm:"not null;uniqueIndex:idx_payment_stages_plan_seq" json:"sequence"`
	Label            string             `gorm:"type:varchar(50);not null" json:"label"`
	Percentage       decimal.Decimal    `gorm:"type:numeric(5,2);not null" json:"percentage"`
	TargetAmount     decimal.Decimal    `gorm:"type:numeric(12,2);not null" json:"target_amount"`
	AmountPaid       decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"amount_paid"`
	CreditApplied    decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"credit_applied"`
	RemainingBalance decimal.Decimal    `gorm:"type:numeric(12,2);not null" json:"remaining_balance"`
	Status           PaymentStageStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	VerifiedAt       *time.Time         `json:"verified_at,omitempty"`
	CreatedAt        time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PaymentStage) TableName() string {
	return "payment_stages"
}

func (s *PaymentStage) BeforeCreate(tx *gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

// AcceptsProof checks if a new payment proof may be filed against the stage
func (s *PaymentStage) AcceptsProof() bool {
	return s.Status == PaymentStageStatusPending || s.Status == PaymentStageStatusDeclined
}

// HasSettlement reports whether any stage already holds money or left pending
func (p *PaymentPlan) HasSettlement() bool {
	for _, s := range p.Stages {
		if s.Status != PaymentStageStatusPending || s.AmountPaid.IsPositive() || s.CreditApplied.IsPositive() {
			return true
		}
	}
	return false
}

package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentStatus mirrors the verification outcome of a submitted proof
type PaymentStatus string

const (
	PaymentStatusProofSubmitted PaymentStatus = "proof_submitted"
	PaymentStatusVerified       PaymentStatus = "verified"
	PaymentStatusDeclined       PaymentStatus = "declined"
)

// PaymentMethod is how the customer says the money was sent
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodEWallet      PaymentMethod = "e_wallet"
	PaymentMethodCheck        PaymentMethod = "check"
)

func IsValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBankTransfer, PaymentMethodEWallet, PaymentMethodCheck:
		return true
	}
	return false
}

// Payment is one submitted proof of payment against a plan stage
type Payment struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PlanID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"plan_id"`
	StageID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"stage_id"`
	ProjectID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"project_id"`
	SubmittedBy     uuid.UUID       `gorm:"type:uuid;not null" json:"submitted_by"`
	Method          PaymentMethod   `gorm:"type:varchar(20);not null" json:"method"`
	Amount          decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	ReferenceNumber *string         `gorm:"type:varchar(100)" json:"reference_number,omitempty"`
	ProofKey        string          `gorm:"type:text" json:"proof_key,omitempty"`
	Status          PaymentStatus   `gorm:"type:varchar(20);not null;index" json:"status"`
	ExcessCredit    decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"excess_credit"`
	ReceiptNumber   *string         `gorm:"type:varchar(32);uniqueIndex" json:"receipt_number,omitempty"`
	VerifiedBy      *uuid.UUID      `gorm:"type:uuid" json:"verified_by,omitempty"`
	VerifiedAt      *time.Time      `json:"verified_at,omitempty"`
	DeclineReason   string          `gorm:"type:text" json:"decline_reason,omitempty"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// ReceiptSequence is the per-year counter behind receipt numbers
type ReceiptSequence struct {
	Year      int `gorm:"primaryKey;autoIncrement:false"`
	LastValue int `gorm:"not null;default:0"`
}

func (ReceiptSequence) TableName() string {
	return "receipt_sequences"
}

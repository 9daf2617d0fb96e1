package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HoldKey identifies the (date, slot, staff) triple a reservation claims
type HoldKey struct {
	Date     time.Time
	SlotCode string
	StaffID  uuid.UUID
}

func (k HoldKey) DateString() string {
	return k.Date.Format(DateLayout)
}

// ReservationHold is an exclusive claim on a HoldKey.
// The unique index on (hold_date, slot_code, staff_id) is what breaks booking races.
type ReservationHold struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	HoldDate      string     `gorm:"type:varchar(10);not null;uniqueIndex:idx_reservation_holds_key" json:"hold_date"`
	SlotCode      string     `gorm:"type:varchar(5);not null;uniqueIndex:idx_reservation_holds_key" json:"slot_code"`
	StaffID       uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_reservation_holds_key" json:"staff_id"`
	Confirmed     bool       `gorm:"not null;default:false" json:"confirmed"`
	ExpiresAt     *time.Time `gorm:"index" json:"expires_at,omitempty"`
	HolderID      uuid.UUID  `gorm:"type:uuid;not null" json:"holder_id"`
	AppointmentID *uuid.UUID `gorm:"type:uuid;index" json:"appointment_id,omitempty"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ReservationHold) TableName() string {
	return "reservation_holds"
}

func (h *ReservationHold) BeforeCreate(tx *gorm.DB) error {
	ensureID(&h.ID)
	return nil
}

// IsLive reports whether the hold still blocks competing holds at now
func (h *ReservationHold) IsLive(now time.Time) bool {
	if h.Confirmed {
		return true
	}
	return h.ExpiresAt != nil && now.Before(*h.ExpiresAt)
}

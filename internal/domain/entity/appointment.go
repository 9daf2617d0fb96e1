package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AppointmentType distinguishes capacity-based office visits from staff-bound site visits
type AppointmentType string

const (
	AppointmentTypeOffice AppointmentType = "office"
	AppointmentTypeOnSite AppointmentType = "on_site"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusRequested           AppointmentStatus = "requested"
	AppointmentStatusConfirmed           AppointmentStatus = "confirmed"
	AppointmentStatusCompleted           AppointmentStatus = "completed"
	AppointmentStatusNoShow              AppointmentStatus = "no_show"
	AppointmentStatusCancelled           AppointmentStatus = "cancelled"
	AppointmentStatusRescheduleRequested AppointmentStatus = "reschedule_requested"
)

// ActiveAppointmentStatuses block a customer from requesting another appointment
var ActiveAppointmentStatuses = []AppointmentStatus{
	AppointmentStatusRequested,
	AppointmentStatusConfirmed,
	AppointmentStatusRescheduleRequested,
}

// SlotCodes is the fixed daily set of appointment windows
var SlotCodes = []string{"08:00", "09:00", "10:00", "11:00", "13:00", "14:00", "15:00", "16:00"}

func IsValidSlotCode(code string) bool {
	for _, c := range SlotCodes {
		if c == code {
			return true
		}
	}
	return false
}

// Appointment is a customer's request for an office consultation or a site visit
type Appointment struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID      uuid.UUID         `gorm:"type:uuid;not null;index" json:"customer_id"`
	Type            AppointmentType   `gorm:"type:varchar(20);not null" json:"type"`
	Date            time.Time         `gorm:"type:date;not null;index:idx_appointments_date_slot" json:"date"`
	SlotCode        string            `gorm:"type:varchar(5);not null;index:idx_appointments_date_slot" json:"slot_code"`
	Status          AppointmentStatus `gorm:"type:varchar(32);not null;index" json:"status"`
	StaffID         *uuid.UUID        `gorm:"type:uuid;index" json:"staff_id,omitempty"`
	RescheduleCount int               `gorm:"not null;default:0" json:"reschedule_count"`
	MaxReschedules  int               `gorm:"not null;default:2" json:"max_reschedules"`

	Address   string   `gorm:"type:text" json:"address,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	FeeDistanceKm *float64            `json:"fee_distance_km,omitempty"`
	FeeEtaMinutes *int                `json:"fee_eta_minutes,omitempty"`
	FeeBase       decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"fee_base"`
	FeeDistance   decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"fee_distance"`
	FeeTotal      decimal.NullDecimal `gorm:"type:numeric(12,2)" json:"fee_total"`

	RequestedDate *time.Time `gorm:"type:date" json:"requested_date,omitempty"`
	RequestedSlot string     `gorm:"type:varchar(5)" json:"requested_slot,omitempty"`
	Notes         string     `gorm:"type:text" json:"notes,omitempty"`
	CancelReason  string     `gorm:"type:text" json:"cancel_reason,omitempty"`
	CreatedBy     uuid.UUID  `gorm:"type:uuid;not null" json:"created_by"`

	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt   *time.Time `gorm:"index" json:"-"`
}

func (Appointment) TableName() string {
	return "appointments"
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

// IsOnSite reports whether the appointment binds a specific staff member
func (a *Appointment) IsOnSite() bool {
	return a.Type == AppointmentTypeOnSite
}

// IsActive checks if the appointment still occupies the customer's booking allowance
func (a *Appointment) IsActive() bool {
	for _, s := range ActiveAppointmentStatuses {
		if a.Status == s {
			return true
		}
	}
	return false
}

// HoldKey returns the reservation key of an on-site appointment with assigned staff
func (a *Appointment) HoldKey() (HoldKey, bool) {
	if !a.IsOnSite() || a.StaffID == nil {
		return HoldKey{}, false
	}
	return HoldKey{Date: a.Date, SlotCode: a.SlotCode, StaffID: *a.StaffID}, true
}

// ApplyFee stamps a computed fee quote onto the appointment
func (a *Appointment) ApplyFee(q *FeeQuote) {
	if q == nil {
		return
	}
	distance := q.DistanceKm
	eta := q.EtaMinutes
	a.FeeDistanceKm = &distance
	a.FeeEtaMinutes = &eta
	a.FeeBase = decimal.NewNullDecimal(q.BaseFee)
	a.FeeDistance = decimal.NewNullDecimal(q.DistanceFee)
	a.FeeTotal = decimal.NewNullDecimal(q.TotalFee)
}

// Coordinates is a WGS84 point
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// FeeQuote is the travel estimate and fee breakdown for a site visit
type FeeQuote struct {
	DistanceKm  float64         `json:"distance_km"`
	EtaMinutes  int             `json:"eta_minutes"`
	BaseFee     decimal.Decimal `json:"base_fee"`
	DistanceFee decimal.Decimal `json:"distance_fee"`
	TotalFee    decimal.Decimal `json:"total_fee"`
}

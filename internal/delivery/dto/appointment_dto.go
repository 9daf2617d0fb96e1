package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateAppointmentRequest struct {
	CustomerID *uuid.UUID `json:"customer_id" validate:"omitempty"` // agents book on behalf of a customer
	Type       string     `json:"type" validate:"required,oneof=office on_site"`
	Date       string     `json:"date" validate:"required"`      // Format: YYYY-MM-DD
	SlotCode   string     `json:"slot_code" validate:"required"` // Format: HH:MM
	Address    string     `json:"address" validate:"omitempty,max=500"`
	Latitude   *float64   `json:"latitude" validate:"omitempty,latitude"`
	Longitude  *float64   `json:"longitude" validate:"omitempty,longitude"`
	Notes      string     `json:"notes" validate:"omitempty,max=2000"`
}

type HoldSlotRequest struct {
	StaffID uuid.UUID `json:"staff_id" validate:"required"`
}

type ConfirmAppointmentRequest struct {
	StaffID *uuid.UUID `json:"staff_id" validate:"omitempty"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=1000"`
}

type RequestRescheduleRequest struct {
	Date     string `json:"date" validate:"required"`      // Format: YYYY-MM-DD
	SlotCode string `json:"slot_code" validate:"required"` // Format: HH:MM
	Reason   string `json:"reason" validate:"omitempty,max=1000"`
}

// CompleteRescheduleRequest overrides the customer's preferred date, slot or staff when set
type CompleteRescheduleRequest struct {
	Date     string     `json:"date" validate:"omitempty"`
	SlotCode string     `json:"slot_code" validate:"omitempty"`
	StaffID  *uuid.UUID `json:"staff_id" validate:"omitempty"`
}

type AppointmentFilterRequest struct {
	StartAt string `json:"start_at"`
	EndAt   string `json:"end_at"`
	Status  string `json:"status"`
	Type    string `json:"type"`
}

// Response DTOs

type FeeResponse struct {
	DistanceKm  float64         `json:"distance_km"`
	EtaMinutes  int             `json:"eta_minutes"`
	BaseFee     decimal.Decimal `json:"base_fee"`
	DistanceFee decimal.Decimal `json:"distance_fee"`
	TotalFee    decimal.Decimal `json:"total_fee"`
}

type AppointmentResponse struct {
	ID              uuid.UUID    `json:"id"`
	CustomerID      uuid.UUID    `json:"customer_id"`
	Type            string       `json:"type"`
	Date            string       `json:"date"`
	SlotCode        string       `json:"slot_code"`
	Status          string       `json:"status"`
	StaffID         *uuid.UUID   `json:"staff_id,omitempty"`
	RescheduleCount int          `json:"reschedule_count"`
	MaxReschedules  int          `json:"max_reschedules"`
	Address         string       `json:"address,omitempty"`
	Latitude        *float64     `json:"latitude,omitempty"`
	Longitude       *float64     `json:"longitude,omitempty"`
	Fee             *FeeResponse `json:"fee,omitempty"`
	RequestedDate   string       `json:"requested_date,omitempty"`
	RequestedSlot   string       `json:"requested_slot,omitempty"`
	Notes           string       `json:"notes,omitempty"`
	CancelReason    string       `json:"cancel_reason,omitempty"`
	AllowedActions  []string     `json:"allowed_actions"`
	ConfirmedAt     *time.Time   `json:"confirmed_at,omitempty"`
	CompletedAt     *time.Time   `json:"completed_at,omitempty"`
	CancelledAt     *time.Time   `json:"cancelled_at,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

type HoldResponse struct {
	HoldDate  string     `json:"hold_date"`
	SlotCode  string     `json:"slot_code"`
	StaffID   uuid.UUID  `json:"staff_id"`
	Confirmed bool       `json:"confirmed"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type SlotAvailabilityResponse struct {
	SlotCode        string      `json:"slot_code"`
	OfficeCapacity  int         `json:"office_capacity"`
	OfficeBooked    int         `json:"office_booked"`
	OfficeAvailable bool        `json:"office_available"`
	AvailableStaff  []uuid.UUID `json:"available_staff"`
}

type DayAvailabilityResponse struct {
	Date     string                     `json:"date"`
	Bookable bool                       `json:"bookable"`
	Reason   string                     `json:"reason,omitempty"`
	Slots    []SlotAvailabilityResponse `json:"slots"`
}

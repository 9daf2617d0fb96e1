package repository

import (
	"time"

	"fabrication-workflow/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReservationHoldRepository interface {
	Create(db *gorm.DB, hold *entity.ReservationHold) error
	FindByKey(db *gorm.DB, key entity.HoldKey) (*entity.ReservationHold, error)
	FindByStaffAndDate(db *gorm.DB, staffID uuid.UUID, date time.Time) ([]entity.ReservationHold, error)
	Confirm(db *gorm.DB, key entity.HoldKey, appointmentID uuid.UUID) (int64, error)
	RefreshExpiry(db *gorm.DB, id uuid.UUID, expiresAt time.Time) error
	DeleteByKey(db *gorm.DB, key entity.HoldKey) (int64, error)
	DeleteExpiredByKey(db *gorm.DB, key entity.HoldKey, now time.Time) (int64, error)
	DeleteExpired(db *gorm.DB, now time.Time) (int64, error)
}

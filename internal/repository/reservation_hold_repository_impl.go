package repository

import (
	"time"

	"fabrication-workflow/internal/domain/entity"
	domainRepo "fabrication-workflow/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type reservationHoldRepository struct{}

func NewReservationHoldRepository() domainRepo.ReservationHoldRepository {
	return &reservationHoldRepository{}
}

func byKey(db *gorm.DB, key entity.HoldKey) *gorm.DB {
	return db.Where("hold_date = ? AND slot_code = ? AND staff_id = ?", key.DateString(), key.SlotCode, key.StaffID)
}

func (r *reservationHoldRepository) Create(db *gorm.DB, hold *entity.ReservationHold) error {
	return db.Create(hold).Error
}

func (r *reservationHoldRepository) FindByKey(db *gorm.DB, key entity.HoldKey) (*entity.ReservationHold, error) {
	return first[entity.ReservationHold](byKey(db, key))
}

func (r *reservationHoldRepository) FindByStaffAndDate(db *gorm.DB, staffID uuid.UUID, date time.Time) ([]entity.ReservationHold, error) {
	var holds []entity.ReservationHold
	err := db.Where("staff_id = ? AND hold_date = ?", staffID, date.Format(entity.DateLayout)).
		Order("slot_code ASC").
		Find(&holds).Error
	if err != nil {
		return nil, err
	}
	return holds, nil
}

// Confirm turns the hold into a permanent claim backing appointmentID
func (r *reservationHoldRepository) Confirm(db *gorm.DB, key entity.HoldKey, appointmentID uuid.UUID) (int64, error) {
	result := byKey(db.Model(&entity.ReservationHold{}), key).
		Updates(map[string]interface{}{
			"confirmed":      true,
			"expires_at":     nil,
			"appointment_id": appointmentID,
		})
	return result.RowsAffected, result.Error
}

func (r *reservationHoldRepository) RefreshExpiry(db *gorm.DB, id uuid.UUID, expiresAt time.Time) error {
	return db.Model(&entity.ReservationHold{}).
		Where("id = ? AND confirmed = ?", id, false).
		Update("expires_at", expiresAt).Error
}

func (r *reservationHoldRepository) DeleteByKey(db *gorm.DB, key entity.HoldKey) (int64, error) {
	result := byKey(db, key).Delete(&entity.ReservationHold{})
	return result.RowsAffected, result.Error
}

// DeleteExpiredByKey reclaims the key if its current hold is unconfirmed and past expiry
func (r *reservationHoldRepository) DeleteExpiredByKey(db *gorm.DB, key entity.HoldKey, now time.Time) (int64, error) {
	result := byKey(db, key).
		Where("confirmed = ? AND expires_at IS NOT NULL AND expires_at <= ?", false, now).
		Delete(&entity.ReservationHold{})
	return result.RowsAffected, result.Error
}

func (r *reservationHoldRepository) DeleteExpired(db *gorm.DB, now time.Time) (int64, error) {
	result := db.Where("confirmed = ? AND expires_at IS NOT NULL AND expires_at <= ?", false, now).
		Delete(&entity.ReservationHold{})
	return result.RowsAffected, result.Error
}

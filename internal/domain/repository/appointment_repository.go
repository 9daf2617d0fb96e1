package repository

import (
	"time"

	"fabrication-workflow/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	FindByIDForUpdate(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	FindActiveByCustomer(db *gorm.DB, customerID uuid.UUID) (*entity.Appointment, error)
	FindByCustomer(db *gorm.DB, customerID uuid.UUID) ([]entity.Appointment, error)
	FindByStaff(db *gorm.DB, staffID uuid.UUID) ([]entity.Appointment, error)
	FindAll(db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error)
	CountOfficeBookings(db *gorm.DB, date time.Time, slotCode string) (int64, error)
	CountOfficeBookingsByDate(db *gorm.DB, date time.Time) (map[string]int64, error)
	Update(db *gorm.DB, appointment *entity.Appointment) error
	UpdateStatus(db *gorm.DB, id uuid.UUID, from entity.AppointmentStatus, updates map[string]interface{}) (int64, error)
}

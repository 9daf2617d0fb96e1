package repository

import (
	"time"

	"fabrication-workflow/internal/domain/entity"
	domainRepo "fabrication-workflow/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(db *gorm.DB, appointment *entity.Appointment) error {
	return db.Create(appointment).Error
}

func (r *appointmentRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	return first[entity.Appointment](db.Scopes(notDeleted).Where("id = ?", id))
}

// FindByIDForUpdate locks the row until the surrounding transaction ends
func (r *appointmentRepository) FindByIDForUpdate(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	return first[entity.Appointment](db.Clauses(clause.Locking{Strength: "UPDATE"}).Scopes(notDeleted).Where("id = ?", id))
}

func (r *appointmentRepository) FindActiveByCustomer(db *gorm.DB, customerID uuid.UUID) (*entity.Appointment, error) {
	return first[entity.Appointment](db.Scopes(notDeleted).
		Where("customer_id = ? AND status IN ?", customerID, entity.ActiveAppointmentStatuses))
}

func (r *appointmentRepository) FindByCustomer(db *gorm.DB, customerID uuid.UUID) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.Scopes(notDeleted).
		Where("customer_id = ?", customerID).
		Order("date DESC, slot_code DESC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindByStaff(db *gorm.DB, staffID uuid.UUID) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.Scopes(notDeleted).
		Where("staff_id = ?", staffID).
		Order("date ASC, slot_code ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// FindAll returns appointments for the back-office queue.
// Supports optional filters: date range, status, type and staff.
func (r *appointmentRepository) FindAll(db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	query := db.Scopes(notDeleted)

	if filter != nil {
		if filter.StartAt != "" {
			if start, err := entity.ParseDate(filter.StartAt); err == nil {
				query = query.Where("date >= ?", start)
			}
		}
		if filter.EndAt != "" {
			if end, err := entity.ParseDate(filter.EndAt); err == nil {
				query = query.Where("date <= ?", end)
			}
		}
		if filter.Status != "" {
			query = query.Where("status = ?", filter.Status)
		}
		if filter.Type != "" {
			query = query.Where("type = ?", filter.Type)
		}
		if filter.StaffID != nil {
			query = query.Where("staff_id = ?", *filter.StaffID)
		}
	}

	err := query.Order("date ASC, slot_code ASC").Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// CountOfficeBookings counts office visits occupying a slot's capacity
func (r *appointmentRepository) CountOfficeBookings(db *gorm.DB, date time.Time, slotCode string) (int64, error) {
	var count int64
	err := db.Model(&entity.Appointment{}).Scopes(notDeleted).
		Where("type = ? AND date = ? AND slot_code = ? AND status IN ?",
			entity.AppointmentTypeOffice, entity.NormalizeDate(date), slotCode, entity.ActiveAppointmentStatuses).
		Count(&count).Error
	return count, err
}

// CountOfficeBookingsByDate returns occupied office capacity per slot code
func (r *appointmentRepository) CountOfficeBookingsByDate(db *gorm.DB, date time.Time) (map[string]int64, error) {
	type slotCount struct {
		SlotCode string
		Total    int64
	}
	var rows []slotCount
	err := db.Model(&entity.Appointment{}).Scopes(notDeleted).
		Select("slot_code, COUNT(*) as total").
		Where("type = ? AND date = ? AND status IN ?",
			entity.AppointmentTypeOffice, entity.NormalizeDate(date), entity.ActiveAppointmentStatuses).
		Group("slot_code").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.SlotCode] = row.Total
	}
	return counts, nil
}

func (r *appointmentRepository) Update(db *gorm.DB, appointment *entity.Appointment) error {
	return db.Save(appointment).Error
}

// UpdateStatus applies updates ONLY if the appointment is still in status from.
// Returns affected rows: 1 = success, 0 = somebody else moved it first.
func (r *appointmentRepository) UpdateStatus(db *gorm.DB, id uuid.UUID, from entity.AppointmentStatus, updates map[string]interface{}) (int64, error) {
	result := db.Model(&entity.Appointment{}).Scopes(notDeleted).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

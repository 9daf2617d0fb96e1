package usecase

import (
	"context"
	"fmt"
	"time"

	"fabrication-workflow/internal/converter"
	"fabrication-workflow/internal/delivery/dto"
	"fabrication-workflow/internal/domain/entity"
	"fabrication-workflow/internal/domain/repository"
	repoImpl "fabrication-workflow/internal/repository"
	"fabrication-workflow/internal/service"
	"fabrication-workflow/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrAppointmentNotFound     = apperror.NotFound("appointment_not_found", "Appointment not found")
	ErrCustomerNotFound        = apperror.NotFound("customer_not_found", "Customer not found")
	ErrStaffNotFound           = apperror.NotFound("staff_not_found", "Staff member not found")
	ErrActiveAppointmentExists = apperror.Conflict("active_appointment_exists", "Customer already has an active appointment")
	ErrSlotFull                = apperror.Conflict("slot_full", "This office slot is fully booked")
	ErrRescheduleLimitReached  = apperror.Conflict("reschedule_limit_reached", "This appointment cannot be rescheduled again")
	ErrReschedulePending       = apperror.Conflict("reschedule_pending", "This appointment is waiting for a reschedule to be completed")
	ErrAppointmentNotPending   = apperror.Conflict("appointment_not_pending", "Only appointments awaiting confirmation can hold a slot")
	ErrNotRescheduleRequested  = apperror.Conflict("reschedule_not_requested", "No reschedule was requested for this appointment")
	ErrStaffUnavailable        = apperror.Conflict("staff_unavailable", "The selected staff member is not available on that date")
	ErrInvalidDate             = apperror.Validation("invalid_date", "Date must use the YYYY-MM-DD format")
	ErrDatePast                = apperror.Validation("date_past", "Cannot book a date in the past")
	ErrDateWeekend             = apperror.Validation("date_weekend", "Appointments are not available on weekends")
	ErrDateHoliday             = apperror.Validation("date_holiday", "Appointments are not available on holidays")
	ErrInvalidSlot             = apperror.Validation("invalid_slot", "Unknown appointment slot")
	ErrInvalidAppointmentType  = apperror.Validation("invalid_appointment_type", "Appointment type must be office or on_site")
	ErrLocationRequired        = apperror.Validation("location_required", "Site visits need the customer's latitude and longitude")
	ErrCustomerRequired        = apperror.Validation("customer_required", "Select the customer this appointment is for")
	ErrStaffRequired           = apperror.Validation("staff_required", "Site visits need an assigned staff member")
	ErrNotOnSite               = apperror.Validation("not_on_site", "Only site visits reserve a staff member's slot")
)

// AppointmentSettings are the booking rules the controller enforces
type AppointmentSettings struct {
	OfficeSlotCapacity int
	MaxReschedules     int
	Office             entity.Coordinates
	FeeTimeout         time.Duration
}

type AppointmentUsecase interface {
	Request(ctx context.Context, actor entity.Actor, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	HoldSlot(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID, req *dto.HoldSlotRequest) (*dto.HoldResponse, error)
	Confirm(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID, req *dto.ConfirmAppointmentRequest) (*dto.AppointmentResponse, error)
	Complete(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID) (*dto.AppointmentResponse, error)
	NoShow(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID) (*dto.AppointmentResponse, error)
	Cancel(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID, req *dto.CancelAppointmentRequest) (*dto.AppointmentResponse, error)
	RequestReschedule(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID, req *dto.RequestRescheduleRequest) (*dto.AppointmentResponse, error)
	CompleteReschedule(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID, req *dto.CompleteRescheduleRequest) (*dto.AppointmentResponse, error)
	Get(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID) (*dto.AppointmentResponse, error)
	ListMine(ctx context.Context, actor entity.Actor) (*dto.AppointmentListResponse, error)
	List(ctx context.Context, actor entity.Actor, req *dto.AppointmentFilterRequest) (*dto.AppointmentListResponse, error)
	SlotAvailability(ctx context.Context, actor entity.Actor, date string) (*dto.DayAvailabilityResponse, error)
}

type appointmentUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	chain           *workflowChain
	appointmentRepo repository.AppointmentRepository
	userRepo        repository.UserRepository
	reservation     *service.ReservationService
	availability    AvailabilityProvider
	fees            FeeCalculator
	audit           AuditRecorder
	notifier        Notifier
	settings        AppointmentSettings
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	intakeRepo repository.VisitIntakeRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	reservation *service.ReservationService,
	availability AvailabilityProvider,
	fees FeeCalculator,
	audit AuditRecorder,
	notifier Notifier,
	settings AppointmentSettings,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:              db,
		log:             log,
		chain:           newWorkflowChain(db, log, appointmentRepo, intakeRepo, projectRepo, reservation, audit, notifier),
		appointmentRepo: appointmentRepo,
		userRepo:        userRepo,
		reservation:     reservation,
		availability:    availability,
		fees:            fees,
		audit:           audit,
		notifier:        notifier,
		settings:        settings,
	}
}

// Request books an office consultation or a site visit.
//
// Flow:
// 1. Resolve the customer (self, or the one an agent books for)
// 2. Validate type, date and slot against the working calendar
// 3. Price site visits (best effort)
// 4. In one transaction: enforce one active appointment per customer and
// office capacity, then insert
func (u *appointmentUsecase) Request(ctx context.Context, actor entity.Actor, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	customerID, err := u.resolveCustomer(ctx, actor, req.CustomerID)
	if err != nil {
		return nil, err
	}

	apptType := entity.AppointmentType(req.Type)
	if apptType != entity.AppointmentTypeOffice && apptType != entity.AppointmentTypeOnSite {
		return nil, ErrInvalidAppointmentType
	}
	date, err := u.validateBookable(ctx, req.Date, req.SlotCode)
	if err != nil {
		return nil, err
	}

	appt := &entity.Appointment{
		CustomerID:     customerID,
		Type:           apptType,
		Date:           date,
		SlotCode:       req.SlotCode,
		Status:         entity.AppointmentStatusRequested,
		MaxReschedules: u.settings.MaxReschedules,
		Address:        req.Address,
		Notes:          req.Notes,
		CreatedBy:      actor.UserID,
	}

	if apptType == entity.AppointmentTypeOnSite {
		if req.Latitude == nil || req.Longitude == nil {
			return nil, ErrLocationRequired
		}
		appt.Latitude = req.Latitude
		appt.Longitude = req.Longitude
		appt.ApplyFee(u.quoteFee(ctx, entity.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude}))
	}

	fx := &effects{}
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	active, err := u.appointmentRepo.FindActiveByCustomer(tx, customerID)
	if err != nil {
		u.log.Warnf("Failed to check active appointment for customer %s: %+v", customerID, err)
		return nil, err
	}
	if active != nil {
		return nil, ErrActiveAppointmentExists.WithDetails(map[string]interface{}{
			"appointment_id": active.ID,
		})
	}

	if apptType == entity.AppointmentTypeOffice {
		if err := u.ensureOfficeCapacity(tx, date, req.SlotCode); err != nil {
			return nil, err
		}
	}

	if err := u.appointmentRepo.Create(tx, appt); err != nil {
		if repoImpl.IsDuplicateKeyError(err, "idx_appointments_active_customer") {
			return nil, ErrActiveAppointmentExists
		}
		u.log.Warnf("Failed to create appointment: %+v", err)
		return nil, err
	}

	fx.audit(entity.AuditActionAppointmentRequest, actor, entity.AuditTargetAppointment, appt.ID.String(), map[string]interface{}{
		"customer_id": customerID,
		"type":        appt.Type,
		"date":        req.Date,
		"slot_code":   req.SlotCode,
	})
	fx.notify(notifyRole(entity.RoleAgent, entity.NotificationCategoryAppointment,
		"New appointment request",
		fmt.Sprintf("A %s appointment was requested for %s at %s", readable(string(appt.Type)), req.Date, req.SlotCode),
		appointmentLink(appt)))

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit appointment: %+v", err)
		return nil, err
	}
	fx.flush(ctx, u.audit, u.notifier)

	return converter.AppointmentToResponse(appt), nil
}

// HoldSlot reserves a staff member's slot while an agent reviews a site visit
func (u *appointmentUsecase) HoldSlot(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID, req *dto.HoldSlotRequest) (*dto.HoldResponse, error) {
	if !actor.IsBackOffice() {
		return nil, ErrForbidden
	}

	appt, err := u.findAppointment(u.db.WithContext(ctx), appointmentID)
	if err != nil {
		return nil, err
	}
	if !appt.IsOnSite() {
		return nil, ErrNotOnSite
	}

	key := entity.HoldKey{Date: appt.Date, SlotCode: appt.SlotCode, StaffID: req.StaffID}
	switch appt.Status {
	case entity.AppointmentStatusRequested:
	case entity.AppointmentStatusRescheduleRequested:
		if appt.RequestedDate != nil {
			key.Date = *appt.RequestedDate
		}
		if appt.RequestedSlot != "" {
			key.SlotCode = appt.RequestedSlot
		}
	default:
		return nil, ErrAppointmentNotPending.WithDetails(map[string]interface{}{"status": appt.Status})
	}

	if err := u.ensureStaffAvailable(ctx, req.StaffID, key.Date); err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	hold, err := u.reservation.TentativelyHold(ctx, tx, key, actor.UserID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit hold for appointment %s: %+v", appt.ID, err)
		return nil, err
	}

	u.audit.Record(ctx, entity.AuditEvent{
		Action:     entity.AuditActionAppointmentHold,
		Actor:      actor,
		TargetType: entity.AuditTargetHold,
		TargetID:   hold.ID.String(),
		Details: map[string]interface{}{
			"appointment_id": appt.ID,
			"staff_id":       req.StaffID,
			"date":           hold.HoldDate,
			"slot_code":      hold.SlotCode,
		},
	})

	return converter.HoldToResponse(hold), nil
}

// Confirm assigns staff to a requested appointment and locks the staff slot
// for site visits. The visit intake is created once the confirmation commits.
func (u *appointmentUsecase) Confirm(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID, req *dto.ConfirmAppointmentRequest) (*dto.AppointmentResponse, error) {
	if !actor.IsBackOffice() {
		return nil, ErrForbidden
	}

	fx := &effects{}
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appt, err := u.findAppointmentForUpdate(tx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.Status == entity.AppointmentStatusRescheduleRequested {
		return nil, ErrReschedulePending
	}

	staffID := appt.StaffID
	if req != nil && req.StaffID != nil {
		staffID = req.StaffID
	}
	if appt.IsOnSite() && staffID == nil {
		return nil, ErrStaffRequired
	}
	if staffID != nil {
		if err := u.ensureStaffAvailable(ctx, *staffID, appt.Date); err != nil {
			return nil, err
		}
	}

	if appt.IsOnSite() {
		if prior, ok := appt.HoldKey(); ok && prior.StaffID != *staffID {
			if err := u.reservation.Release(ctx, tx, prior); err != nil {
				return nil, err
			}
		}
		key := entity.HoldKey{Date: appt.Date, SlotCode: appt.SlotCode, StaffID: *staffID}
		if err := u.reservation.HoldAndConfirm(ctx, tx, key, actor.UserID, appt.ID); err != nil {
			return nil, err
		}
	}

	now := u.reservation.Now()
	if err := u.chain.transitionAppointment(ctx, tx, appt, entity.AppointmentStatusConfirmed, map[string]interface{}{
		"staff_id":     staffID,
		"confirmed_at": now,
	}); err != nil {
		return nil, err
	}
	appt.StaffID = staffID
	appt.ConfirmedAt = &now

	fx.audit(entity.AuditActionAppointmentConfirm, actor, entity.AuditTargetAppointment, appt.ID.String(), map[string]interface{}{
		"staff_id": staffID,
	})
	fx.notify(notifyUser(appt.CustomerID, entity.NotificationCategoryAppointment,
		"Appointment confirmed",
		fmt.Sprintf("Your appointment on %s at %s is confirmed", appt.Date.Format(entity.DateLayout), appt.SlotCode),
		appointmentLink(appt)))

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit confirmation of appointment %s: %+v", appt.ID, err)
		return nil, err
	}
	fx.flush(ctx, u.audit, u.notifier)

	if _, err := u.chain.ensureIntake(ctx, appt, actor); err != nil {
		u.log.Errorf("Failed to prepare intake for appointment %s: %+v", appt.ID, err)
	}

	return converter.AppointmentToResponse(appt), nil
}

func (u *appointmentUsecase) Complete(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID) (*dto.AppointmentResponse, error) {
	return u.close(ctx, actor, appointmentID, entity.AppointmentStatusCompleted, "completed_at", "", entity.AuditActionAppointmentComplete)
}

func (u *appointmentUsecase) NoShow(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID) (*dto.AppointmentResponse, error) {
	return u.close(ctx, actor, appointmentID, entity.AppointmentStatusNoShow, "", "", entity.AuditActionAppointmentNoShow)
}

func (u *appointmentUsecase) Cancel(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID, req *dto.CancelAppointmentRequest) (*dto.AppointmentResponse, error) {
	reason := ""
	if req != nil {
		reason = req.Reason
	}
	return u.close(ctx, actor, appointmentID, entity.AppointmentStatusCancelled, "cancelled_at", reason, entity.AuditActionAppointmentCancel)
}

// close moves an appointment into one of its terminal states
func (u *appointmentUsecase) close(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID, to entity.AppointmentStatus, stampColumn, reason, action string) (*dto.AppointmentResponse, error) {
	fx := &effects{}
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appt, err := u.findAppointmentForUpdate(tx, appointmentID)
	if err != nil {
		return nil, err
	}

	allowed := actor.IsBackOffice()
	if to == entity.AppointmentStatusCancelled {
		allowed = allowed || (actor.Is(entity.RoleCustomer) && appt.CustomerID == actor.UserID)
	} else {
		allowed = allowed || (actor.Is(entity.RoleStaff) && appt.StaffID != nil && *appt.StaffID == actor.UserID)
	}
	if !allowed {
		return nil, ErrForbidden
	}

	now := u.reservation.Now()
	updates := map[string]interface{}{}
	if stampColumn != "" {
		updates[stampColumn] = now
	}
	if reason != "" {
		updates["cancel_reason"] = reason
	}
	if err := u.chain.transitionAppointment(ctx, tx, appt, to, updates); err != nil {
		return nil, err
	}
	switch to {
	case entity.AppointmentStatusCompleted:
		appt.CompletedAt = &now
	case entity.AppointmentStatusCancelled:
		appt.CancelledAt = &now
		appt.CancelReason = reason
	}

	details := map[string]interface{}{}
	if reason != "" {
		details["reason"] = reason
	}
	fx.audit(action, actor, entity.AuditTargetAppointment, appt.ID.String(), details)
	fx.notify(notifyUser(appt.CustomerID, entity.NotificationCategoryAppointment,
		"Appointment "+readable(string(to)),
		fmt.Sprintf("Your appointment on %s at %s is now %s", appt.Date.Format(entity.DateLayout), appt.SlotCode, readable(string(to))),
		appointmentLink(appt)))
	if appt.StaffID != nil && *appt.StaffID != actor.UserID {
		fx.notify(notifyUser(*appt.StaffID, entity.NotificationCategoryAppointment,
			"Appointment "+readable(string(to)),
			fmt.Sprintf("The appointment on %s at %s is now %s", appt.Date.Format(entity.DateLayout), appt.SlotCode, readable(string(to))),
			appointmentLink(appt)))
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit appointment %s -> %s: %+v", appt.ID, to, err)
		return nil, err
	}
	fx.flush(ctx, u.audit, u.notifier)

	return converter.AppointmentToResponse(appt), nil
}

// RequestReschedule records the customer's preferred new date and slot
func (u *appointmentUsecase) RequestReschedule(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID, req *dto.RequestRescheduleRequest) (*dto.AppointmentResponse, error) {
	date, err := u.validateBookable(ctx, req.Date, req.SlotCode)
	if err != nil {
		return nil, err
	}

	fx := &effects{}
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appt, err := u.findAppointmentForUpdate(tx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !actor.Is(entity.RoleCustomer) || appt.CustomerID != actor.UserID {
		return nil, ErrForbidden
	}
	if appt.RescheduleCount >= appt.MaxReschedules {
		return nil, ErrRescheduleLimitReached.WithDetails(map[string]interface{}{
			"reschedule_count": appt.RescheduleCount,
			"max_reschedules":  appt.MaxReschedules,
		})
	}

	if err := u.chain.transitionAppointment(ctx, tx, appt, entity.AppointmentStatusRescheduleRequested, map[string]interface{}{
		"requested_date": date,
		"requested_slot": req.SlotCode,
	}); err != nil {
		return nil, err
	}
	appt.RequestedDate = &date
	appt.RequestedSlot = req.SlotCode

	fx.audit(entity.AuditActionAppointmentRescheduleRequest, actor, entity.AuditTargetAppointment, appt.ID.String(), map[string]interface{}{
		"date":      req.Date,
		"slot_code": req.SlotCode,
		"reason":    req.Reason,
	})
	fx.notify(notifyRole(entity.RoleAgent, entity.NotificationCategoryAppointment,
		"Reschedule requested",
		fmt.Sprintf("A customer asked to move their appointment to %s at %s", req.Date, req.SlotCode),
		appointmentLink(appt)))

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit reschedule request for %s: %+v", appt.ID, err)
		return nil, err
	}
	fx.flush(ctx, u.audit, u.notifier)

	return converter.AppointmentToResponse(appt), nil
}

// CompleteReschedule moves the appointment to its new date, slot and staff
// and puts it back into confirmed.
func (u *appointmentUsecase) CompleteReschedule(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID, req *dto.CompleteRescheduleRequest) (*dto.AppointmentResponse, error) {
	if !actor.IsBackOffice() {
		return nil, ErrForbidden
	}

	fx := &effects{}
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appt, err := u.findAppointmentForUpdate(tx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.Status != entity.AppointmentStatusRescheduleRequested {
		return nil, ErrNotRescheduleRequested.WithDetails(map[string]interface{}{"status": appt.Status})
	}
	if appt.RescheduleCount >= appt.MaxReschedules {
		return nil, ErrRescheduleLimitReached
	}

	dateStr, slot, staffID := "", appt.SlotCode, appt.StaffID
	if appt.RequestedDate != nil {
		dateStr = appt.RequestedDate.Format(entity.DateLayout)
	}
	if appt.RequestedSlot != "" {
		slot = appt.RequestedSlot
	}
	if req != nil {
		if req.Date != "" {
			dateStr = req.Date
		}
		if req.SlotCode != "" {
			slot = req.SlotCode
		}
		if req.StaffID != nil {
			staffID = req.StaffID
		}
	}
	if dateStr == "" {
		dateStr = appt.Date.Format(entity.DateLayout)
	}

	date, err := u.validateBookable(ctx, dateStr, slot)
	if err != nil {
		return nil, err
	}
	if appt.IsOnSite() && staffID == nil {
		return nil, ErrStaffRequired
	}
	if staffID != nil {
		if err := u.ensureStaffAvailable(ctx, *staffID, date); err != nil {
			return nil, err
		}
	}

	moved := !date.Equal(appt.Date) || slot != appt.SlotCode
	if appt.Type == entity.AppointmentTypeOffice && moved {
		if err := u.ensureOfficeCapacity(tx, date, slot); err != nil {
			return nil, err
		}
	}

	if appt.IsOnSite() {
		newKey := entity.HoldKey{Date: date, SlotCode: slot, StaffID: *staffID}
		if oldKey, ok := appt.HoldKey(); ok && oldKey != newKey {
			if err := u.reservation.Release(ctx, tx, oldKey); err != nil {
				return nil, err
			}
		}
		if err := u.reservation.HoldAndConfirm(ctx, tx, newKey, actor.UserID, appt.ID); err != nil {
			return nil, err
		}
	}

	previous := map[string]interface{}{
		"date":      appt.Date.Format(entity.DateLayout),
		"slot_code": appt.SlotCode,
		"staff_id":  appt.StaffID,
	}
	if err := u.chain.transitionAppointment(ctx, tx, appt, entity.AppointmentStatusConfirmed, map[string]interface{}{
		"date":             date,
		"slot_code":        slot,
		"staff_id":         staffID,
		"reschedule_count": appt.RescheduleCount + 1,
		"requested_date":   nil,
		"requested_slot":   "",
	}); err != nil {
		return nil, err
	}
	appt.Date = date
	appt.SlotCode = slot
	appt.StaffID = staffID
	appt.RescheduleCount++
	appt.RequestedDate = nil
	appt.RequestedSlot = ""

	fx.audit(entity.AuditActionAppointmentRescheduleComplete, actor, entity.AuditTargetAppointment, appt.ID.String(), map[string]interface{}{
		"previous":         previous,
		"date":             dateStr,
		"slot_code":        slot,
		"staff_id":         staffID,
		"reschedule_count": appt.RescheduleCount,
	})
	fx.notify(notifyUser(appt.CustomerID, entity.NotificationCategoryAppointment,
		"Appointment rescheduled",
		fmt.Sprintf("Your appointment is now on %s at %s", dateStr, slot),
		appointmentLink(appt)))

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit reschedule of %s: %+v", appt.ID, err)
		return nil, err
	}
	fx.flush(ctx, u.audit, u.notifier)

	if _, err := u.chain.ensureIntake(ctx, appt, actor); err != nil {
		u.log.Errorf("Failed to sync intake for appointment %s: %+v", appt.ID, err)
	}

	return converter.AppointmentToResponse(appt), nil
}

func (u *appointmentUsecase) Get(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID) (*dto.AppointmentResponse, error) {
	appt, err := u.findAppointment(u.db.WithContext(ctx), appointmentID)
	if err != nil {
		return nil, err
	}
	if !canViewAppointment(actor, appt) {
		return nil, ErrForbidden
	}
	return converter.AppointmentToResponse(appt), nil
}

// ListMine returns the customer's own appointments or the staff member's visits
func (u *appointmentUsecase) ListMine(ctx context.Context, actor entity.Actor) (*dto.AppointmentListResponse, error) {
	db := u.db.WithContext(ctx)

	var (
		appts []entity.Appointment
		err   error
	)
	switch {
	case actor.Is(entity.RoleCustomer):
		appts, err = u.appointmentRepo.FindByCustomer(db, actor.UserID)
	case actor.Is(entity.RoleStaff):
		appts, err = u.appointmentRepo.FindByStaff(db, actor.UserID)
	case actor.IsBackOffice():
		appts, err = u.appointmentRepo.FindAll(db, &entity.AppointmentFilter{})
	default:
		return nil, ErrForbidden
	}
	if err != nil {
		u.log.Warnf("Failed to list appointments for %s: %+v", actor.UserID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appts),
		Total:        len(appts),
	}, nil
}

func (u *appointmentUsecase) List(ctx context.Context, actor entity.Actor, req *dto.AppointmentFilterRequest) (*dto.AppointmentListResponse, error) {
	if !actor.IsBackOffice() {
		return nil, ErrForbidden
	}

	filter := &entity.AppointmentFilter{}
	if req != nil {
		filter.StartAt = req.StartAt
		filter.EndAt = req.EndAt
		filter.Status = entity.AppointmentStatus(req.Status)
		filter.Type = entity.AppointmentType(req.Type)
	}

	appts, err := u.appointmentRepo.FindAll(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to list appointments: %+v", err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appts),
		Total:        len(appts),
	}, nil
}

// SlotAvailability reports office capacity and free staff for every slot of a day
func (u *appointmentUsecase) SlotAvailability(ctx context.Context, actor entity.Actor, dateStr string) (*dto.DayAvailabilityResponse, error) {
	date, err := entity.ParseDate(dateStr)
	if err != nil {
		return nil, ErrInvalidDate
	}

	resp := &dto.DayAvailabilityResponse{
		Date:     date.Format(entity.DateLayout),
		Bookable: true,
		Slots:    make([]dto.SlotAvailabilityResponse, 0, len(entity.SlotCodes)),
	}
	if err := u.checkCalendar(ctx, date); err != nil {
		resp.Bookable = false
		if appErr, ok := apperror.As(err); ok {
			resp.Reason = appErr.Code
		} else {
			return nil, err
		}
	}

	db := u.db.WithContext(ctx)
	booked, err := u.appointmentRepo.CountOfficeBookingsByDate(db, date)
	if err != nil {
		u.log.Warnf("Failed to count office bookings for %s: %+v", dateStr, err)
		return nil, err
	}

	var (
		staff []entity.User
		held  = map[uuid.UUID]map[string]bool{}
	)
	if resp.Bookable {
		staff, err = u.userRepo.FindActiveByRole(db, entity.RoleStaff)
		if err != nil {
			u.log.Warnf("Failed to list active staff: %+v", err)
			return nil, err
		}
		for _, s := range staff {
			slots, err := u.reservation.HeldSlots(ctx, db, s.ID, date)
			if err != nil {
				u.log.Warnf("Failed to load holds for staff %s: %+v", s.ID, err)
				return nil, err
			}
			held[s.ID] = slots
		}
	}

	for _, code := range entity.SlotCodes {
		count := int(booked[code])
		slot := dto.SlotAvailabilityResponse{
			SlotCode:        code,
			OfficeCapacity:  u.settings.OfficeSlotCapacity,
			OfficeBooked:    count,
			OfficeAvailable: resp.Bookable && count < u.settings.OfficeSlotCapacity,
			AvailableStaff:  []uuid.UUID{},
		}
		for _, s := range staff {
			if !held[s.ID][code] {
				slot.AvailableStaff = append(slot.AvailableStaff, s.ID)
			}
		}
		resp.Slots = append(resp.Slots, slot)
	}

	return resp, nil
}

func (u *appointmentUsecase) resolveCustomer(ctx context.Context, actor entity.Actor, requested *uuid.UUID) (uuid.UUID, error) {
	switch {
	case actor.Is(entity.RoleCustomer):
		return actor.UserID, nil
	case actor.IsBackOffice():
		if requested == nil || *requested == uuid.Nil {
			return uuid.Nil, ErrCustomerRequired
		}
		customer, err := u.userRepo.FindByID(u.db.WithContext(ctx), *requested)
		if err != nil {
			u.log.Warnf("Failed to find customer %s: %+v", *requested, err)
			return uuid.Nil, err
		}
		if customer == nil || customer.Role != entity.RoleCustomer {
			return uuid.Nil, ErrCustomerNotFound
		}
		return customer.ID, nil
	}
	return uuid.Nil, ErrForbidden
}

// validateBookable parses the date and checks it against the slot list and the calendar
func (u *appointmentUsecase) validateBookable(ctx context.Context, dateStr, slotCode string) (time.Time, error) {
	date, err := entity.ParseDate(dateStr)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	if !entity.IsValidSlotCode(slotCode) {
		return time.Time{}, ErrInvalidSlot.WithDetails(map[string]interface{}{"slot_codes": entity.SlotCodes})
	}
	if err := u.checkCalendar(ctx, date); err != nil {
		return time.Time{}, err
	}
	return date, nil
}

func (u *appointmentUsecase) checkCalendar(ctx context.Context, date time.Time) error {
	today := entity.NormalizeDate(u.reservation.Now())
	if date.Before(today) {
		return ErrDatePast
	}
	if service.IsWeekend(date) {
		return ErrDateWeekend
	}
	holiday, err := u.availability.IsHoliday(ctx, date)
	if err != nil {
		u.log.Warnf("Failed to check holiday %s: %+v", date.Format(entity.DateLayout), err)
		return err
	}
	if holiday {
		return ErrDateHoliday
	}
	return nil
}

func (u *appointmentUsecase) ensureOfficeCapacity(tx *gorm.DB, date time.Time, slotCode string) error {
	count, err := u.appointmentRepo.CountOfficeBookings(tx, date, slotCode)
	if err != nil {
		u.log.Warnf("Failed to count office bookings: %+v", err)
		return err
	}
	if int(count) >= u.settings.OfficeSlotCapacity {
		return ErrSlotFull.WithDetails(map[string]interface{}{
			"capacity": u.settings.OfficeSlotCapacity,
		})
	}
	return nil
}

func (u *appointmentUsecase) ensureStaffAvailable(ctx context.Context, staffID uuid.UUID, date time.Time) error {
	staff, err := u.userRepo.FindByID(u.db.WithContext(ctx), staffID)
	if err != nil {
		u.log.Warnf("Failed to find staff %s: %+v", staffID, err)
		return err
	}
	if staff == nil || staff.Role != entity.RoleStaff || !staff.IsActive {
		return ErrStaffNotFound
	}

	available, err := u.availability.IsStaffAvailable(ctx, staffID, date)
	if err != nil {
		u.log.Warnf("Failed to check availability of staff %s: %+v", staffID, err)
		return err
	}
	if !available {
		return ErrStaffUnavailable
	}
	return nil
}

// quoteFee prices a site visit. Failures leave the appointment unpriced.
func (u *appointmentUsecase) quoteFee(ctx context.Context, dest entity.Coordinates) *entity.FeeQuote {
	if u.fees == nil {
		return nil
	}
	if u.settings.FeeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.settings.FeeTimeout)
		defer cancel()
	}
	quote, err := u.fees.ComputeDistanceAndFee(ctx, u.settings.Office, dest)
	if err != nil {
		u.log.Warnf("Failed to compute site visit fee: %+v", err)
		return nil
	}
	return quote
}

func (u *appointmentUsecase) findAppointment(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	appt, err := u.appointmentRepo.FindByID(db, id)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", id, err)
		return nil, err
	}
	if appt == nil {
		return nil, ErrAppointmentNotFound
	}
	return appt, nil
}

func (u *appointmentUsecase) findAppointmentForUpdate(tx *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	appt, err := u.appointmentRepo.FindByIDForUpdate(tx, id)
	if err != nil {
		u.log.Warnf("Failed to lock appointment %s: %+v", id, err)
		return nil, err
	}
	if appt == nil {
		return nil, ErrAppointmentNotFound
	}
	return appt, nil
}

func canViewAppointment(actor entity.Actor, appt *entity.Appointment) bool {
	if actor.IsBackOffice() {
		return true
	}
	if actor.Is(entity.RoleCustomer) {
		return appt.CustomerID == actor.UserID
	}
	return appt.StaffID != nil && *appt.StaffID == actor.UserID
}

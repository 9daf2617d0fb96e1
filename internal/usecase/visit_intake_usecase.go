package usecase

import (
	"context"
	"fmt"

	"fabrication-workflow/internal/converter"
	"fabrication-workflow/internal/delivery/dto"
	"fabrication-workflow/internal/domain/entity"
	"fabrication-workflow/internal/domain/repository"
	"fabrication-workflow/internal/domain/transition"
	"fabrication-workflow/internal/service"
	"fabrication-workflow/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrIntakeNotFound    = apperror.NotFound("intake_not_found", "Visit intake not found")
	ErrIntakeNotEditable = apperror.Conflict("intake_not_editable", "Visit intake can only be edited while in draft or returned")
)

type VisitIntakeUsecase interface {
	Get(ctx context.Context, actor entity.Actor, intakeID uuid.UUID) (*dto.VisitIntakeResponse, error)
	GetByAppointment(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID) (*dto.VisitIntakeResponse, error)
	ListMine(ctx context.Context, actor entity.Actor) (*dto.VisitIntakeListResponse, error)
	ListSubmitted(ctx context.Context, actor entity.Actor) (*dto.VisitIntakeListResponse, error)
	Update(ctx context.Context, actor entity.Actor, intakeID uuid.UUID, req *dto.UpdateVisitIntakeRequest) (*dto.VisitIntakeResponse, error)
	Submit(ctx context.Context, actor entity.Actor, intakeID uuid.UUID) (*dto.SubmitVisitIntakeResponse, error)
	Return(ctx context.Context, actor entity.Actor, intakeID uuid.UUID, req *dto.ReturnVisitIntakeRequest) (*dto.VisitIntakeResponse, error)
	Accept(ctx context.Context, actor entity.Actor, intakeID uuid.UUID) (*dto.VisitIntakeResponse, error)
}

type visitIntakeUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	chain           *workflowChain
	intakeRepo      repository.VisitIntakeRepository
	appointmentRepo repository.AppointmentRepository
	reservation     *service.ReservationService
	audit           AuditRecorder
	notifier        Notifier
}

func NewVisitIntakeUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	intakeRepo repository.VisitIntakeRepository,
	appointmentRepo repository.AppointmentRepository,
	projectRepo repository.ProjectRepository,
	reservation *service.ReservationService,
	audit AuditRecorder,
	notifier Notifier,
) VisitIntakeUsecase {
	return &visitIntakeUsecase{
		db:              db,
		log:             log,
		chain:           newWorkflowChain(db, log, appointmentRepo, intakeRepo, projectRepo, reservation, audit, notifier),
		intakeRepo:      intakeRepo,
		appointmentRepo: appointmentRepo,
		reservation:     reservation,
		audit:           audit,
		notifier:        notifier,
	}
}

func (u *visitIntakeUsecase) Get(ctx context.Context, actor entity.Actor, intakeID uuid.UUID) (*dto.VisitIntakeResponse, error) {
	intake, err := u.findIntake(u.db.WithContext(ctx), intakeID)
	if err != nil {
		return nil, err
	}
	if !canViewIntake(actor, intake) {
		return nil, ErrForbidden
	}
	return converter.VisitIntakeToResponse(intake), nil
}

func (u *visitIntakeUsecase) GetByAppointment(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID) (*dto.VisitIntakeResponse, error) {
	intake, err := u.intakeRepo.FindByAppointmentID(u.db.WithContext(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find intake for appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if intake == nil {
		return nil, ErrIntakeNotFound
	}
	if !canViewIntake(actor, intake) {
		return nil, ErrForbidden
	}
	return converter.VisitIntakeToResponse(intake), nil
}

// ListMine returns the intakes assigned to the calling staff member
func (u *visitIntakeUsecase) ListMine(ctx context.Context, actor entity.Actor) (*dto.VisitIntakeListResponse, error) {
	if !actor.Is(entity.RoleStaff) {
		return nil, ErrForbidden
	}
	intakes, err := u.intakeRepo.FindByStaff(u.db.WithContext(ctx), actor.UserID)
	if err != nil {
		u.log.Warnf("Failed to list intakes for staff %s: %+v", actor.UserID, err)
		return nil, err
	}
	return &dto.VisitIntakeListResponse{
		Intakes: converter.VisitIntakesToResponses(intakes),
		Total:   len(intakes),
	}, nil
}

// ListSubmitted is the intake desk's review queue
func (u *visitIntakeUsecase) ListSubmitted(ctx context.Context, actor entity.Actor) (*dto.VisitIntakeListResponse, error) {
	if !actor.IsBackOffice() {
		return nil, ErrForbidden
	}
	intakes, err := u.intakeRepo.FindByStatus(u.db.WithContext(ctx), entity.VisitIntakeStatusSubmitted)
	if err != nil {
		u.log.Warnf("Failed to list submitted intakes: %+v", err)
		return nil, err
	}
	return &dto.VisitIntakeListResponse{
		Intakes: converter.VisitIntakesToResponses(intakes),
		Total:   len(intakes),
	}, nil
}

func (u *visitIntakeUsecase) Update(ctx context.Context, actor entity.Actor, intakeID uuid.UUID, req *dto.UpdateVisitIntakeRequest) (*dto.VisitIntakeResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	intake, err := u.findIntake(tx, intakeID)
	if err != nil {
		return nil, err
	}
	if !isAssignedStaff(actor, intake) {
		return nil, ErrForbidden
	}
	if !intake.IsEditable() {
		return nil, ErrIntakeNotEditable.WithDetails(map[string]interface{}{"status": intake.Status})
	}

	changed := []string{}
	if req.Measurements != nil {
		intake.Measurements = *req.Measurements
		changed = append(changed, "measurements")
	}
	if req.Materials != nil {
		intake.Materials = *req.Materials
		changed = append(changed, "materials")
	}
	if req.Requirements != nil {
		intake.Requirements = *req.Requirements
		changed = append(changed, "requirements")
	}
	if req.Notes != nil {
		intake.Notes = *req.Notes
		changed = append(changed, "notes")
	}
	if req.PhotoKeys != nil {
		intake.PhotoKeys = entity.StringList(req.PhotoKeys)
		changed = append(changed, "photo_keys")
	}

	if err := u.intakeRepo.Update(tx, intake); err != nil {
		u.log.Warnf("Failed to update intake %s: %+v", intake.ID, err)
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit intake %s: %+v", intake.ID, err)
		return nil, err
	}

	u.audit.Record(ctx, entity.AuditEvent{
		Action:     entity.AuditActionIntakeUpdate,
		Actor:      actor,
		TargetType: entity.AuditTargetIntake,
		TargetID:   intake.ID.String(),
		Details:    map[string]interface{}{"fields": changed},
	})

	return converter.VisitIntakeToResponse(intake), nil
}

// Submit hands the findings to the office and drives the chain:
//
// 0. the appointment must still be confirmed or already completed
// 1. intake draft|returned -> submitted (skipped on replay)
// 2. appointment confirmed -> completed (skipped when already completed)
// 3. project created from the intake and moved to submitted
//
// Steps 2 and 3 are idempotent, so submitting again retries whichever one
// failed last time. Their failures are logged and reported, not undone.
// No project is created unless the appointment ended up completed.
func (u *visitIntakeUsecase) Submit(ctx context.Context, actor entity.Actor, intakeID uuid.UUID) (*dto.SubmitVisitIntakeResponse, error) {
	intake, err := u.submitIntake(ctx, actor, intakeID)
	if err != nil {
		return nil, err
	}

	resp := &dto.SubmitVisitIntakeResponse{Intake: converter.VisitIntakeToResponse(intake)}

	appt, err := u.completeAppointment(ctx, actor, intake.AppointmentID)
	if err != nil {
		u.log.Errorf("Failed to complete appointment %s after intake %s: %+v", intake.AppointmentID, intake.ID, err)
	}
	if appt != nil {
		resp.AppointmentStatus = string(appt.Status)
	}
	if appt == nil || appt.Status != entity.AppointmentStatusCompleted {
		return resp, nil
	}

	project, err := u.chain.ensureProject(ctx, intake, appt, entity.SystemActor)
	if err != nil {
		u.log.Errorf("Failed to create project for intake %s: %+v", intake.ID, err)
		return resp, nil
	}
	if project != nil {
		resp.ProjectID = &project.ID
		resp.ProjectStatus = string(project.Status)
	}
	return resp, nil
}

func (u *visitIntakeUsecase) submitIntake(ctx context.Context, actor entity.Actor, intakeID uuid.UUID) (*entity.VisitIntake, error) {
	fx := &effects{}
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	intake, err := u.findIntake(tx, intakeID)
	if err != nil {
		return nil, err
	}
	if !isAssignedStaff(actor, intake) {
		return nil, ErrForbidden
	}

	appt, err := u.appointmentRepo.FindByIDForUpdate(tx, intake.AppointmentID)
	if err != nil {
		u.log.Warnf("Failed to lock appointment %s of intake %s: %+v", intake.AppointmentID, intake.ID, err)
		return nil, err
	}
	if appt == nil {
		return nil, ErrAppointmentNotFound
	}
	if appt.Status != entity.AppointmentStatusConfirmed && appt.Status != entity.AppointmentStatusCompleted {
		return nil, transition.Appointment.Assert(appt.Status, entity.AppointmentStatusCompleted)
	}

	if intake.IsSubmitted() {
		return intake, nil
	}

	if err := transition.VisitIntake.Assert(intake.Status, entity.VisitIntakeStatusSubmitted); err != nil {
		return nil, err
	}
	now := u.reservation.Now()
	affected, err := u.intakeRepo.UpdateStatus(tx, intake.ID, intake.Status, map[string]interface{}{
		"status":        entity.VisitIntakeStatusSubmitted,
		"submitted_at":  now,
		"return_reason": "",
	})
	if err != nil {
		u.log.Warnf("Failed to submit intake %s: %+v", intake.ID, err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrConcurrentUpdate
	}
	intake.Status = entity.VisitIntakeStatusSubmitted
	intake.SubmittedAt = &now
	intake.ReturnReason = ""

	fx.audit(entity.AuditActionIntakeSubmit, actor, entity.AuditTargetIntake, intake.ID.String(), map[string]interface{}{
		"appointment_id": intake.AppointmentID,
	})
	fx.notify(notifyRole(entity.RoleAgent, entity.NotificationCategoryIntake,
		"Visit intake submitted",
		"Site findings are ready for review",
		"/intakes/"+intake.ID.String()))

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit intake %s: %+v", intake.ID, err)
		return nil, err
	}
	fx.flush(ctx, u.audit, u.notifier)
	return intake, nil
}

func (u *visitIntakeUsecase) completeAppointment(ctx context.Context, actor entity.Actor, appointmentID uuid.UUID) (*entity.Appointment, error) {
	fx := &effects{}
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	appt, err := u.appointmentRepo.FindByIDForUpdate(tx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt == nil {
		return nil, ErrAppointmentNotFound
	}
	if appt.Status == entity.AppointmentStatusCompleted {
		return appt, nil
	}

	now := u.reservation.Now()
	if err := u.chain.transitionAppointment(ctx, tx, appt, entity.AppointmentStatusCompleted, map[string]interface{}{
		"completed_at": now,
	}); err != nil {
		return appt, err
	}
	appt.CompletedAt = &now
	fx.audit(entity.AuditActionAppointmentComplete, actor, entity.AuditTargetAppointment, appt.ID.String(), map[string]interface{}{
		"via": "intake_submit",
	})

	if err := tx.Commit().Error; err != nil {
		return appt, err
	}
	fx.flush(ctx, u.audit, u.notifier)
	return appt, nil
}

// Return sends submitted findings back to the staff member with a reason
func (u *visitIntakeUsecase) Return(ctx context.Context, actor entity.Actor, intakeID uuid.UUID, req *dto.ReturnVisitIntakeRequest) (*dto.VisitIntakeResponse, error) {
	return u.review(ctx, actor, intakeID, entity.VisitIntakeStatusReturned, req.Reason)
}

// Accept closes the intake once the office is satisfied with it
func (u *visitIntakeUsecase) Accept(ctx context.Context, actor entity.Actor, intakeID uuid.UUID) (*dto.VisitIntakeResponse, error) {
	return u.review(ctx, actor, intakeID, entity.VisitIntakeStatusCompleted, "")
}

func (u *visitIntakeUsecase) review(ctx context.Context, actor entity.Actor, intakeID uuid.UUID, to entity.VisitIntakeStatus, reason string) (*dto.VisitIntakeResponse, error) {
	if !actor.IsBackOffice() {
		return nil, ErrForbidden
	}

	fx := &effects{}
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	intake, err := u.findIntake(tx, intakeID)
	if err != nil {
		return nil, err
	}
	if err := transition.VisitIntake.Assert(intake.Status, to); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"status": to}
	if to == entity.VisitIntakeStatusReturned {
		updates["return_reason"] = reason
	}
	affected, err := u.intakeRepo.UpdateStatus(tx, intake.ID, intake.Status, updates)
	if err != nil {
		u.log.Warnf("Failed to move intake %s to %s: %+v", intake.ID, to, err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrConcurrentUpdate
	}
	intake.Status = to

	action := entity.AuditActionIntakeAccept
	details := map[string]interface{}{}
	if to == entity.VisitIntakeStatusReturned {
		action = entity.AuditActionIntakeReturn
		intake.ReturnReason = reason
		details["reason"] = reason
	}
	fx.audit(action, actor, entity.AuditTargetIntake, intake.ID.String(), details)
	if intake.StaffID != nil {
		fx.notify(notifyUser(*intake.StaffID, entity.NotificationCategoryIntake,
			"Visit intake "+readable(string(to)),
			fmt.Sprintf("Your site findings were %s", readable(string(to))),
			"/intakes/"+intake.ID.String()))
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit intake %s: %+v", intake.ID, err)
		return nil, err
	}
	fx.flush(ctx, u.audit, u.notifier)

	return converter.VisitIntakeToResponse(intake), nil
}

func (u *visitIntakeUsecase) findIntake(db *gorm.DB, id uuid.UUID) (*entity.VisitIntake, error) {
	intake, err := u.intakeRepo.FindByID(db, id)
	if err != nil {
		u.log.Warnf("Failed to find intake %s: %+v", id, err)
		return nil, err
	}
	if intake == nil {
		return nil, ErrIntakeNotFound
	}
	return intake, nil
}

func isAssignedStaff(actor entity.Actor, intake *entity.VisitIntake) bool {
	return actor.Is(entity.RoleStaff) && intake.StaffID != nil && *intake.StaffID == actor.UserID
}

func canViewIntake(actor entity.Actor, intake *entity.VisitIntake) bool {
	if actor.IsBackOffice() || isAssignedStaff(actor, intake) {
		return true
	}
	return actor.Is(entity.RoleCustomer) && intake.CustomerID == actor.UserID
}

package usecase

import (
	"context"
	"fmt"
	"strings"

	"fabrication-workflow/internal/domain/entity"
	"fabrication-workflow/internal/domain/repository"
	"fabrication-workflow/internal/domain/transition"
	repoImpl "fabrication-workflow/internal/repository"
	"fabrication-workflow/internal/service"
	"fabrication-workflow/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var ErrConcurrentUpdate = apperror.Conflict("concurrent_update", "The record was changed by another request, reload and try again")

const maxProjectTitle = 120

// workflowChain owns every status change that other usecases trigger on
// appointments, intakes and projects, so each one goes through the same
// validated, conditional write.
type workflowChain struct {
	db              *gorm.DB
	log             *logrus.Logger
	appointmentRepo repository.AppointmentRepository
	intakeRepo      repository.VisitIntakeRepository
	projectRepo     repository.ProjectRepository
	reservation     *service.ReservationService
	audit           AuditRecorder
	notifier        Notifier
}

func newWorkflowChain(
	db *gorm.DB,
	log *logrus.Logger,
	appointmentRepo repository.AppointmentRepository,
	intakeRepo repository.VisitIntakeRepository,
	projectRepo repository.ProjectRepository,
	reservation *service.ReservationService,
	audit AuditRecorder,
	notifier Notifier,
) *workflowChain {
	return &workflowChain{
		db:              db,
		log:             log,
		appointmentRepo: appointmentRepo,
		intakeRepo:      intakeRepo,
		projectRepo:     projectRepo,
		reservation:     reservation,
		audit:           audit,
		notifier:        notifier,
	}
}

// transitionAppointment moves appt to status to inside tx. Leaving the
// active set releases an on-site hold in the same transaction.
func (c *workflowChain) transitionAppointment(ctx context.Context, tx *gorm.DB, appt *entity.Appointment, to entity.AppointmentStatus, updates map[string]interface{}) error {
	if err := transition.Appointment.Assert(appt.Status, to); err != nil {
		return err
	}

	if transition.Appointment.IsTerminal(to) {
		if key, ok := appt.HoldKey(); ok {
			if err := c.reservation.Release(ctx, tx, key); err != nil {
				return err
			}
		}
	}

	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = to

	affected, err := c.appointmentRepo.UpdateStatus(tx, appt.ID, appt.Status, updates)
	if err != nil {
		c.log.Warnf("Failed to move appointment %s to %s: %+v", appt.ID, to, err)
		return err
	}
	if affected == 0 {
		return ErrConcurrentUpdate
	}

	appt.Status = to
	return nil
}

// advanceProject is the single path every project status change takes
func (c *workflowChain) advanceProject(tx *gorm.DB, project *entity.Project, to entity.ProjectStatus, actor entity.Actor, fx *effects, extra map[string]interface{}) error {
	if err := transition.Project.Assert(project.Status, to); err != nil {
		return err
	}

	updates := map[string]interface{}{"status": to}
	for k, v := range extra {
		updates[k] = v
	}

	affected, err := c.projectRepo.UpdateStatus(tx, project.ID, project.Status, updates)
	if err != nil {
		c.log.Warnf("Failed to advance project %s to %s: %+v", project.ID, to, err)
		return err
	}
	if affected == 0 {
		return ErrConcurrentUpdate
	}

	from := project.Status
	project.Status = to
	fx.audit(entity.AuditActionProjectAdvance, actor, entity.AuditTargetProject, project.ID.String(), map[string]interface{}{
		"from": from,
		"to":   to,
	})
	fx.notify(notifyUser(project.CustomerID, entity.NotificationCategoryProject,
		"Project update",
		fmt.Sprintf("Your project %q is now %s", project.Title, readable(string(to))),
		projectLink(project)))
	return nil
}

// ensureIntake returns the intake of a confirmed appointment, creating it on
// first call. A draft intake follows the appointment's staff assignment.
func (c *workflowChain) ensureIntake(ctx context.Context, appt *entity.Appointment, actor entity.Actor) (*entity.VisitIntake, error) {
	fx := &effects{}

	tx := c.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	intake, err := c.intakeRepo.FindByAppointmentID(tx, appt.ID)
	if err != nil {
		c.log.Warnf("Failed to find intake for appointment %s: %+v", appt.ID, err)
		return nil, err
	}

	if intake != nil {
		if intake.Status == entity.VisitIntakeStatusDraft && !sameStaff(intake.StaffID, appt.StaffID) {
			intake.StaffID = appt.StaffID
			if err := c.intakeRepo.Update(tx, intake); err != nil {
				c.log.Warnf("Failed to sync intake %s staff: %+v", intake.ID, err)
				return nil, err
			}
			fx.audit(entity.AuditActionIntakeUpdate, actor, entity.AuditTargetIntake, intake.ID.String(), map[string]interface{}{
				"staff_id": appt.StaffID,
			})
			if appt.StaffID != nil {
				fx.notify(intakeAssignedNotification(*appt.StaffID, appt))
			}
		}
		if err := tx.Commit().Error; err != nil {
			return nil, err
		}
		fx.flush(ctx, c.audit, c.notifier)
		return intake, nil
	}

	intake = &entity.VisitIntake{
		AppointmentID: appt.ID,
		CustomerID:    appt.CustomerID,
		StaffID:       appt.StaffID,
		Status:        entity.VisitIntakeStatusDraft,
	}
	if err := c.intakeRepo.Create(tx, intake); err != nil {
		if repoImpl.IsDuplicateKeyError(err, "visit_intakes") {
			tx.Rollback()
			return c.intakeRepo.FindByAppointmentID(c.db.WithContext(ctx), appt.ID)
		}
		c.log.Warnf("Failed to create intake for appointment %s: %+v", appt.ID, err)
		return nil, err
	}

	fx.audit(entity.AuditActionIntakeCreate, actor, entity.AuditTargetIntake, intake.ID.String(), map[string]interface{}{
		"appointment_id": appt.ID,
	})
	if appt.StaffID != nil {
		fx.notify(intakeAssignedNotification(*appt.StaffID, appt))
	}

	if err := tx.Commit().Error; err != nil {
		c.log.Warnf("Failed to commit intake for appointment %s: %+v", appt.ID, err)
		return nil, err
	}
	fx.flush(ctx, c.audit, c.notifier)
	return intake, nil
}

// ensureProject returns the project of a submitted intake, creating it on
// first call. Projects are keyed by appointment; a replay finds the existing
// one and finishes any advance a previous attempt left undone.
func (c *workflowChain) ensureProject(ctx context.Context, intake *entity.VisitIntake, appt *entity.Appointment, actor entity.Actor) (*entity.Project, error) {
	project, err := c.projectRepo.FindByAppointmentID(c.db.WithContext(ctx), intake.AppointmentID)
	if err != nil {
		c.log.Warnf("Failed to find project for appointment %s: %+v", intake.AppointmentID, err)
		return nil, err
	}
	if project != nil {
		if project.Status != entity.ProjectStatusDraft {
			return project, nil
		}
		return c.submitDraftProject(ctx, project, actor)
	}

	fx := &effects{}
	tx := c.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	project = &entity.Project{
		AppointmentID: intake.AppointmentID,
		IntakeID:      intake.ID,
		CustomerID:    intake.CustomerID,
		Title:         projectTitle(intake, appt),
		Measurements:  intake.Measurements,
		Materials:     intake.Materials,
		Requirements:  intake.Requirements,
		Status:        entity.ProjectStatusDraft,
	}
	if err := c.projectRepo.Create(tx, project); err != nil {
		if repoImpl.IsDuplicateKeyError(err, "projects") {
			tx.Rollback()
			existing, findErr := c.projectRepo.FindByAppointmentID(c.db.WithContext(ctx), intake.AppointmentID)
			if findErr != nil || existing == nil {
				return existing, findErr
			}
			if existing.Status == entity.ProjectStatusDraft {
				return c.submitDraftProject(ctx, existing, actor)
			}
			return existing, nil
		}
		c.log.Warnf("Failed to create project for appointment %s: %+v", intake.AppointmentID, err)
		return nil, err
	}
	fx.audit(entity.AuditActionProjectCreate, actor, entity.AuditTargetProject, project.ID.String(), map[string]interface{}{
		"appointment_id": intake.AppointmentID,
		"intake_id":      intake.ID,
	})

	if err := c.advanceProject(tx, project, entity.ProjectStatusSubmitted, actor, fx, nil); err != nil {
		return nil, err
	}
	fx.notify(notifyRole(entity.RoleAdmin, entity.NotificationCategoryProject,
		"New project submitted",
		fmt.Sprintf("Project %q is waiting for a design engineer", project.Title),
		projectLink(project)))

	if err := tx.Commit().Error; err != nil {
		c.log.Warnf("Failed to commit project for appointment %s: %+v", intake.AppointmentID, err)
		return nil, err
	}
	fx.flush(ctx, c.audit, c.notifier)
	return project, nil
}

func (c *workflowChain) submitDraftProject(ctx context.Context, project *entity.Project, actor entity.Actor) (*entity.Project, error) {
	fx := &effects{}
	tx := c.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := c.advanceProject(tx, project, entity.ProjectStatusSubmitted, actor, fx, nil); err != nil {
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	fx.flush(ctx, c.audit, c.notifier)
	return project, nil
}

func projectTitle(intake *entity.VisitIntake, appt *entity.Appointment) string {
	title := strings.TrimSpace(intake.Requirements)
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = strings.TrimSpace(title[:i])
	}
	if title == "" {
		date := ""
		if appt != nil {
			date = " " + appt.Date.Format(entity.DateLayout)
		}
		return "Site visit" + date
	}
	if r := []rune(title); len(r) > maxProjectTitle {
		title = string(r[:maxProjectTitle])
	}
	return title
}

func intakeAssignedNotification(staffID uuid.UUID, appt *entity.Appointment) entity.Notification {
	return notifyUser(staffID, entity.NotificationCategoryIntake,
		"Site visit assigned",
		fmt.Sprintf("You are assigned to the %s visit on %s at %s", readable(string(appt.Type)), appt.Date.Format(entity.DateLayout), appt.SlotCode),
		appointmentLink(appt))
}

func appointmentLink(appt *entity.Appointment) string {
	return "/appointments/" + appt.ID.String()
}

func projectLink(project *entity.Project) string {
	return "/projects/" + project.ID.String()
}

func sameStaff(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// readable turns a status or type value into words for notification text
func readable(value string) string {
	return strings.ReplaceAll(value, "_", " ")
}

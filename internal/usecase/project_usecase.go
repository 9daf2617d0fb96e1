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
	ErrProjectNotFound     = apperror.NotFound("project_not_found", "Project not found")
	ErrAssigneeNotFound    = apperror.NotFound("assignee_not_found", "User to assign not found")
	ErrAssignmentNotFound  = apperror.NotFound("assignment_not_found", "Assignment not found")
	ErrInvalidAssignment   = apperror.Validation("invalid_assignment", "This user cannot take that role on a project")
	ErrProjectClosed       = apperror.Conflict("project_closed", "Project is already completed or cancelled")
	ErrCancelReasonMissing = apperror.Validation("cancel_reason_required", "A reason is required to cancel a project")
)

type ProjectUsecase interface {
	Get(ctx context.Context, actor entity.Actor, projectID uuid.UUID) (*dto.ProjectResponse, error)
	ListMine(ctx context.Context, actor entity.Actor) (*dto.ProjectListResponse, error)
	List(ctx context.Context, actor entity.Actor, req *dto.ProjectFilterRequest) (*dto.ProjectListResponse, error)
	AssignStaff(ctx context.Context, actor entity.Actor, projectID uuid.UUID, req *dto.AssignStaffRequest) (*dto.ProjectResponse, error)
	RemoveAssignment(ctx context.Context, actor entity.Actor, projectID, userID uuid.UUID, role string) (*dto.ProjectResponse, error)
	Cancel(ctx context.Context, actor entity.Actor, projectID uuid.UUID, req *dto.CancelProjectRequest) (*dto.ProjectResponse, error)
	ListAssignable(ctx context.Context, actor entity.Actor, role string) (*dto.UserListResponse, error)
}

type projectUsecase struct {
	db          *gorm.DB
	log         *logrus.Logger
	chain       *workflowChain
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	audit       AuditRecorder
	notifier    Notifier
}

func NewProjectUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	projectRepo repository.ProjectRepository,
	appointmentRepo repository.AppointmentRepository,
	intakeRepo repository.VisitIntakeRepository,
	userRepo repository.UserRepository,
	reservation *service.ReservationService,
	audit AuditRecorder,
	notifier Notifier,
) ProjectUsecase {
	return &projectUsecase{
		db:          db,
		log:         log,
		chain:       newWorkflowChain(db, log, appointmentRepo, intakeRepo, projectRepo, reservation, audit, notifier),
		projectRepo: projectRepo,
		userRepo:    userRepo,
		audit:       audit,
		notifier:    notifier,
	}
}

func (u *projectUsecase) Get(ctx context.Context, actor entity.Actor, projectID uuid.UUID) (*dto.ProjectResponse, error) {
	project, err := findProject(u.db.WithContext(ctx), u.log, u.projectRepo, projectID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, project, CapabilityView); err != nil {
		return nil, err
	}
	return converter.ProjectToResponse(project), nil
}

// ListMine returns the customer's projects, or the ones a staff member is assigned to
func (u *projectUsecase) ListMine(ctx context.Context, actor entity.Actor) (*dto.ProjectListResponse, error) {
	db := u.db.WithContext(ctx)

	var (
		projects []entity.Project
		err      error
	)
	switch {
	case actor.Is(entity.RoleCustomer):
		projects, err = u.projectRepo.FindByCustomer(db, actor.UserID)
	case actor.Is(entity.RoleEngineer, entity.RoleStaff):
		projects, err = u.projectRepo.FindByAssignee(db, actor.UserID)
	case actor.IsBackOffice():
		projects, err = u.projectRepo.FindAll(db, &entity.ProjectFilter{})
	default:
		return nil, ErrForbidden
	}
	if err != nil {
		u.log.Warnf("Failed to list projects for %s: %+v", actor.UserID, err)
		return nil, err
	}

	return &dto.ProjectListResponse{
		Projects: converter.ProjectsToResponses(projects),
		Total:    len(projects),
	}, nil
}

func (u *projectUsecase) List(ctx context.Context, actor entity.Actor, req *dto.ProjectFilterRequest) (*dto.ProjectListResponse, error) {
	if !actor.IsBackOffice() {
		return nil, ErrForbidden
	}

	filter := &entity.ProjectFilter{}
	if req != nil {
		filter.Status = entity.ProjectStatus(req.Status)
	}
	projects, err := u.projectRepo.FindAll(u.db.WithContext(ctx), filter)
	if err != nil {
		u.log.Warnf("Failed to list projects: %+v", err)
		return nil, err
	}

	return &dto.ProjectListResponse{
		Projects: converter.ProjectsToResponses(projects),
		Total:    len(projects),
	}, nil
}

// AssignStaff links design or production staff to a project. The first
// design assignment on a submitted project opens the design phase.
func (u *projectUsecase) AssignStaff(ctx context.Context, actor entity.Actor, projectID uuid.UUID, req *dto.AssignStaffRequest) (*dto.ProjectResponse, error) {
	fx := &effects{}
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	project, err := findProject(tx, u.log, u.projectRepo, projectID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, project, CapabilityManage); err != nil {
		return nil, err
	}
	if transition.Project.IsTerminal(project.Status) {
		return nil, ErrProjectClosed
	}

	user, err := u.userRepo.FindByID(tx, req.UserID)
	if err != nil {
		u.log.Warnf("Failed to find user %s: %+v", req.UserID, err)
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, ErrAssigneeNotFound
	}
	if !canHoldAssignment(user.Role, req.Role) {
		return nil, ErrInvalidAssignment.WithDetails(map[string]interface{}{
			"user_role":       user.Role,
			"assignment_role": req.Role,
		})
	}

	if !project.IsAssigned(user.ID, req.Role) {
		assignment := entity.ProjectAssignment{ProjectID: project.ID, UserID: user.ID, Role: req.Role}
		if err := u.projectRepo.AddAssignment(tx, &assignment); err != nil {
			u.log.Warnf("Failed to assign %s to project %s: %+v", user.ID, project.ID, err)
			return nil, err
		}
		project.Assignments = append(project.Assignments, assignment)

		fx.audit(entity.AuditActionProjectAssign, actor, entity.AuditTargetProject, project.ID.String(), map[string]interface{}{
			"user_id": user.ID,
			"role":    req.Role,
		})
		fx.notify(notifyUser(user.ID, entity.NotificationCategoryProject,
			"Project assigned",
			fmt.Sprintf("You were assigned to %q as %s", project.Title, req.Role),
			projectLink(project)))
	}

	if req.Role == entity.AssignmentRoleDesign && project.Status == entity.ProjectStatusSubmitted {
		if err := u.chain.advanceProject(tx, project, entity.ProjectStatusDesignPhase, actor, fx, nil); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit assignment on project %s: %+v", project.ID, err)
		return nil, err
	}
	fx.flush(ctx, u.audit, u.notifier)

	return converter.ProjectToResponse(project), nil
}

func (u *projectUsecase) RemoveAssignment(ctx context.Context, actor entity.Actor, projectID, userID uuid.UUID, role string) (*dto.ProjectResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	project, err := findProject(tx, u.log, u.projectRepo, projectID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, project, CapabilityManage); err != nil {
		return nil, err
	}

	affected, err := u.projectRepo.RemoveAssignment(tx, project.ID, userID, role)
	if err != nil {
		u.log.Warnf("Failed to remove %s from project %s: %+v", userID, project.ID, err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrAssignmentNotFound
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	kept := project.Assignments[:0]
	for _, a := range project.Assignments {
		if a.UserID != userID || a.Role != role {
			kept = append(kept, a)
		}
	}
	project.Assignments = kept

	u.audit.Record(ctx, entity.AuditEvent{
		Action:     entity.AuditActionProjectAssign,
		Actor:      actor,
		TargetType: entity.AuditTargetProject,
		TargetID:   project.ID.String(),
		Details:    map[string]interface{}{"removed_user_id": userID, "role": role},
	})

	return converter.ProjectToResponse(project), nil
}

// Cancel stops a project from any non-terminal status
func (u *projectUsecase) Cancel(ctx context.Context, actor entity.Actor, projectID uuid.UUID, req *dto.CancelProjectRequest) (*dto.ProjectResponse, error) {
	if req == nil || req.Reason == "" {
		return nil, ErrCancelReasonMissing
	}

	fx := &effects{}
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	project, err := findProject(tx, u.log, u.projectRepo, projectID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, project, CapabilityManage); err != nil {
		return nil, err
	}

	if err := u.chain.advanceProject(tx, project, entity.ProjectStatusCancelled, actor, fx, map[string]interface{}{
		"cancel_reason": req.Reason,
	}); err != nil {
		return nil, err
	}
	project.CancelReason = req.Reason
	fx.audit(entity.AuditActionProjectCancel, actor, entity.AuditTargetProject, project.ID.String(), map[string]interface{}{
		"reason": req.Reason,
	})

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit cancellation of project %s: %+v", project.ID, err)
		return nil, err
	}
	fx.flush(ctx, u.audit, u.notifier)

	return converter.ProjectToResponse(project), nil
}

// ListAssignable returns the active users that can take an assignment role.
// An empty role lists both engineers and field staff.
func (u *projectUsecase) ListAssignable(ctx context.Context, actor entity.Actor, role string) (*dto.UserListResponse, error) {
	if !actor.IsBackOffice() {
		return nil, ErrForbidden
	}

	var userRoles []string
	switch role {
	case entity.AssignmentRoleDesign:
		userRoles = []string{entity.RoleEngineer}
	case entity.AssignmentRoleProduction, "":
		userRoles = []string{entity.RoleEngineer, entity.RoleStaff}
	default:
		return nil, ErrInvalidAssignment.WithDetails(map[string]interface{}{"assignment_role": role})
	}

	db := u.db.WithContext(ctx)
	var users []entity.User
	for _, r := range userRoles {
		found, err := u.userRepo.FindActiveByRole(db, r)
		if err != nil {
			u.log.Warnf("Failed to list active %s users: %+v", r, err)
			return nil, err
		}
		users = append(users, found...)
	}

	return &dto.UserListResponse{
		Users: converter.UsersToResponses(users),
		Total: len(users),
	}, nil
}

// findProject is shared by every project-scoped usecase
func findProject(db *gorm.DB, log *logrus.Logger, repo repository.ProjectRepository, id uuid.UUID) (*entity.Project, error) {
	project, err := repo.FindByID(db, id)
	if err != nil {
		log.Warnf("Failed to find project %s: %+v", id, err)
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	return project, nil
}

func canHoldAssignment(userRole, assignmentRole string) bool {
	switch assignmentRole {
	case entity.AssignmentRoleDesign:
		return userRole == entity.RoleEngineer
	case entity.AssignmentRoleProduction:
		return userRole == entity.RoleEngineer || userRole == entity.RoleStaff
	}
	return false
}

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
	ErrBlueprintNotFound    = apperror.NotFound("blueprint_not_found", "Blueprint not found")
	ErrBlueprintExists      = apperror.Conflict("blueprint_exists", "This project already has a design package, upload a revision instead")
	ErrBlueprintSuperseded  = apperror.Conflict("blueprint_superseded", "Only the latest blueprint version can be reviewed")
	ErrMaxRevisionsReached  = apperror.Conflict("max_revisions_reached", "No more revisions can be requested for this design")
	ErrNotInDesignPhase     = apperror.Conflict("not_in_design_phase", "Project is not in the design phase")
	ErrInvalidApprovalPart  = apperror.Validation("invalid_approval_part", "Approve drawing, costing or both")
	ErrNegativeEstimate     = apperror.Validation("invalid_estimate", "Estimated cost cannot be negative")
	ErrRevisionNotesMissing = apperror.Validation("revision_notes_required", "Describe what should change in the revision")
)

const DefaultMaxBlueprintVersions = 3

// Parts of a blueprint a customer can approve
const (
	ApprovalPartDrawing = "drawing"
	ApprovalPartCosting = "costing"
	ApprovalPartBoth    = "both"
)

type BlueprintUsecase interface {
	UploadInitial(ctx context.Context, actor entity.Actor, projectID uuid.UUID, req *dto.UploadBlueprintRequest) (*dto.BlueprintResponse, error)
	UploadRevision(ctx context.Context, actor entity.Actor, projectID uuid.UUID, req *dto.UploadBlueprintRequest) (*dto.BlueprintResponse, error)
	Approve(ctx context.Context, actor entity.Actor, blueprintID uuid.UUID, req *dto.ApproveBlueprintRequest) (*dto.ApproveBlueprintResponse, error)
	RequestRevision(ctx context.Context, actor entity.Actor, blueprintID uuid.UUID, req *dto.RequestRevisionRequest) (*dto.BlueprintResponse, error)
	Get(ctx context.Context, actor entity.Actor, blueprintID uuid.UUID) (*dto.BlueprintResponse, error)
	List(ctx context.Context, actor entity.Actor, projectID uuid.UUID) (*dto.BlueprintListResponse, error)
}

type blueprintUsecase struct {
	db            *gorm.DB
	log           *logrus.Logger
	chain         *workflowChain
	blueprintRepo repository.BlueprintRepository
	projectRepo   repository.ProjectRepository
	reservation   *service.ReservationService
	audit         AuditRecorder
	notifier      Notifier
	maxVersions   int
}

func NewBlueprintUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	blueprintRepo repository.BlueprintRepository,
	projectRepo repository.ProjectRepository,
	appointmentRepo repository.AppointmentRepository,
	intakeRepo repository.VisitIntakeRepository,
	reservation *service.ReservationService,
	audit AuditRecorder,
	notifier Notifier,
	maxVersions int,
) BlueprintUsecase {
	if maxVersions <= 0 {
		maxVersions = DefaultMaxBlueprintVersions
	}
	return &blueprintUsecase{
		db:            db,
		log:           log,
		chain:         newWorkflowChain(db, log, appointmentRepo, intakeRepo, projectRepo, reservation, audit, notifier),
		blueprintRepo: blueprintRepo,
		projectRepo:   projectRepo,
		reservation:   reservation,
		audit:         audit,
		notifier:      notifier,
		maxVersions:   maxVersions,
	}
}

// UploadInitial stores version 1 of a project's design package
func (u *blueprintUsecase) UploadInitial(ctx context.Context, actor entity.Actor, projectID uuid.UUID, req *dto.UploadBlueprintRequest) (*dto.BlueprintResponse, error) {
	return u.upload(ctx, actor, projectID, req, false)
}

// UploadRevision answers a revision request with the next version
func (u *blueprintUsecase) UploadRevision(ctx context.Context, actor entity.Actor, projectID uuid.UUID, req *dto.UploadBlueprintRequest) (*dto.BlueprintResponse, error) {
	return u.upload(ctx, actor, projectID, req, true)
}

func (u *blueprintUsecase) upload(ctx context.Context, actor entity.Actor, projectID uuid.UUID, req *dto.UploadBlueprintRequest, revision bool) (*dto.BlueprintResponse, error) {
	if req.EstimatedCost.IsNegative() {
		return nil, ErrNegativeEstimate
	}

	fx := &effects{}
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	project, err := findProject(tx, u.log, u.projectRepo, projectID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, project, CapabilityUploadDesign); err != nil {
		return nil, err
	}
	if project.Status != entity.ProjectStatusDesignPhase {
		return nil, ErrNotInDesignPhase.WithDetails(map[string]interface{}{"status": project.Status})
	}

	latest, err := u.blueprintRepo.FindLatestByProject(tx, project.ID)
	if err != nil {
		u.log.Warnf("Failed to find latest blueprint of project %s: %+v", project.ID, err)
		return nil, err
	}

	bp := &entity.Blueprint{
		ProjectID:     project.ID,
		Version:       1,
		DrawingKey:    req.DrawingKey,
		CostingKey:    req.CostingKey,
		EstimatedCost: req.EstimatedCost.Round(2),
		Status:        entity.BlueprintStatusUploaded,
		UploadedBy:    actor.UserID,
	}

	if !revision {
		if latest != nil {
			return nil, ErrBlueprintExists
		}
	} else {
		if latest == nil {
			return nil, ErrBlueprintNotFound
		}
		if err := transition.Blueprint.Assert(latest.Status, entity.BlueprintStatusRevisionUploaded); err != nil {
			return nil, err
		}
		bp.Version = latest.Version + 1
		bp.Status = entity.BlueprintStatusRevisionUploaded
		bp.RevisionNotes = latest.RevisionNotes
	}

	if err := u.blueprintRepo.Create(tx, bp); err != nil {
		u.log.Warnf("Failed to create blueprint v%d of project %s: %+v", bp.Version, project.ID, err)
		return nil, err
	}

	fx.audit(entity.AuditActionBlueprintUpload, actor, entity.AuditTargetBlueprint, bp.ID.String(), map[string]interface{}{
		"project_id":     project.ID,
		"version":        bp.Version,
		"estimated_cost": bp.EstimatedCost.String(),
	})
	fx.notify(notifyUser(project.CustomerID, entity.NotificationCategoryDesign,
		"Design ready for review",
		fmt.Sprintf("Version %d of the design for %q is ready", bp.Version, project.Title),
		projectLink(project)))

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit blueprint of project %s: %+v", project.ID, err)
		return nil, err
	}
	fx.flush(ctx, u.audit, u.notifier)

	return converter.BlueprintToResponse(bp), nil
}

// Approve accepts the drawing, the costing, or both. A fully approved
// blueprint moves a project in design to approved.
func (u *blueprintUsecase) Approve(ctx context.Context, actor entity.Actor, blueprintID uuid.UUID, req *dto.ApproveBlueprintRequest) (*dto.ApproveBlueprintResponse, error) {
	part := ApprovalPartBoth
	if req != nil && req.Part != "" {
		part = req.Part
	}
	if part != ApprovalPartDrawing && part != ApprovalPartCosting && part != ApprovalPartBoth {
		return nil, ErrInvalidApprovalPart
	}

	fx := &effects{}
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	bp, project, err := u.loadLatestForReview(tx, actor, blueprintID)
	if err != nil {
		return nil, err
	}
	if !bp.AwaitingReview() {
		return nil, transition.Blueprint.Assert(bp.Status, entity.BlueprintStatusApproved)
	}

	if part == ApprovalPartDrawing || part == ApprovalPartBoth {
		bp.DrawingApproved = true
	}
	if part == ApprovalPartCosting || part == ApprovalPartBoth {
		bp.CostingApproved = true
	}

	if bp.FullyApproved() {
		if err := transition.Blueprint.Assert(bp.Status, entity.BlueprintStatusApproved); err != nil {
			return nil, err
		}
		now := u.reservation.Now()
		bp.Status = entity.BlueprintStatusApproved
		bp.ApprovedAt = &now
	}

	if err := u.blueprintRepo.Update(tx, bp); err != nil {
		u.log.Warnf("Failed to update blueprint %s: %+v", bp.ID, err)
		return nil, err
	}
	fx.audit(entity.AuditActionBlueprintApprove, actor, entity.AuditTargetBlueprint, bp.ID.String(), map[string]interface{}{
		"part":             part,
		"drawing_approved": bp.DrawingApproved,
		"costing_approved": bp.CostingApproved,
	})

	if bp.Status == entity.BlueprintStatusApproved {
		for _, engineer := range project.StaffFor(entity.AssignmentRoleDesign) {
			fx.notify(notifyUser(engineer, entity.NotificationCategoryDesign,
				"Design approved",
				fmt.Sprintf("The customer approved version %d of %q", bp.Version, project.Title),
				projectLink(project)))
		}
		if project.Status == entity.ProjectStatusDesignPhase {
			if err := u.chain.advanceProject(tx, project, entity.ProjectStatusApproved, actor, fx, nil); err != nil {
				return nil, err
			}
			fx.notify(notifyRole(entity.RoleAgent, entity.NotificationCategoryPayment,
				"Payment plan needed",
				fmt.Sprintf("Project %q was approved and needs a payment plan", project.Title),
				projectLink(project)))
		}
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit approval of blueprint %s: %+v", bp.ID, err)
		return nil, err
	}
	fx.flush(ctx, u.audit, u.notifier)

	return &dto.ApproveBlueprintResponse{
		Blueprint:     converter.BlueprintToResponse(bp),
		ProjectStatus: string(project.Status),
	}, nil
}

// RequestRevision sends the latest version back to the design engineers,
// up to the configured number of versions.
func (u *blueprintUsecase) RequestRevision(ctx context.Context, actor entity.Actor, blueprintID uuid.UUID, req *dto.RequestRevisionRequest) (*dto.BlueprintResponse, error) {
	if req == nil || req.Notes == "" {
		return nil, ErrRevisionNotesMissing
	}

	fx := &effects{}
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	bp, project, err := u.loadLatestForReview(tx, actor, blueprintID)
	if err != nil {
		return nil, err
	}
	if err := transition.Blueprint.Assert(bp.Status, entity.BlueprintStatusRevisionRequested); err != nil {
		return nil, err
	}
	if bp.Version >= u.maxVersions {
		return nil, ErrMaxRevisionsReached.WithDetails(map[string]interface{}{
			"version":      bp.Version,
			"max_versions": u.maxVersions,
		})
	}

	bp.Status = entity.BlueprintStatusRevisionRequested
	bp.RevisionNotes = req.Notes
	bp.DrawingApproved = false
	bp.CostingApproved = false
	if err := u.blueprintRepo.Update(tx, bp); err != nil {
		u.log.Warnf("Failed to update blueprint %s: %+v", bp.ID, err)
		return nil, err
	}

	fx.audit(entity.AuditActionBlueprintRevision, actor, entity.AuditTargetBlueprint, bp.ID.String(), map[string]interface{}{
		"version": bp.Version,
		"notes":   req.Notes,
	})
	for _, engineer := range project.StaffFor(entity.AssignmentRoleDesign) {
		fx.notify(notifyUser(engineer, entity.NotificationCategoryDesign,
			"Revision requested",
			fmt.Sprintf("The customer asked for changes to version %d of %q", bp.Version, project.Title),
			projectLink(project)))
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit revision request on blueprint %s: %+v", bp.ID, err)
		return nil, err
	}
	fx.flush(ctx, u.audit, u.notifier)

	return converter.BlueprintToResponse(bp), nil
}

func (u *blueprintUsecase) Get(ctx context.Context, actor entity.Actor, blueprintID uuid.UUID) (*dto.BlueprintResponse, error) {
	db := u.db.WithContext(ctx)
	bp, err := u.findBlueprint(db, blueprintID)
	if err != nil {
		return nil, err
	}
	project, err := findProject(db, u.log, u.projectRepo, bp.ProjectID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, project, CapabilityView); err != nil {
		return nil, err
	}
	return converter.BlueprintToResponse(bp), nil
}

// List returns every version of a project's design package in version order
func (u *blueprintUsecase) List(ctx context.Context, actor entity.Actor, projectID uuid.UUID) (*dto.BlueprintListResponse, error) {
	db := u.db.WithContext(ctx)
	project, err := findProject(db, u.log, u.projectRepo, projectID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, project, CapabilityView); err != nil {
		return nil, err
	}

	bps, err := u.blueprintRepo.FindByProject(db, project.ID)
	if err != nil {
		u.log.Warnf("Failed to list blueprints of project %s: %+v", project.ID, err)
		return nil, err
	}

	resp := &dto.BlueprintListResponse{
		Blueprints: converter.BlueprintsToResponses(bps),
		Total:      len(bps),
	}
	if len(bps) > 0 {
		resp.PackageStatus = string(bps[len(bps)-1].Status)
	}
	return resp, nil
}

// loadLatestForReview locks the blueprint row for the rest of tx
func (u *blueprintUsecase) loadLatestForReview(tx *gorm.DB, actor entity.Actor, blueprintID uuid.UUID) (*entity.Blueprint, *entity.Project, error) {
	bp, err := u.blueprintRepo.FindByIDForUpdate(tx, blueprintID)
	if err != nil {
		u.log.Warnf("Failed to lock blueprint %s: %+v", blueprintID, err)
		return nil, nil, err
	}
	if bp == nil {
		return nil, nil, ErrBlueprintNotFound
	}
	project, err := findProject(tx, u.log, u.projectRepo, bp.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	if err := authorize(actor, project, CapabilityReviewDesign); err != nil {
		return nil, nil, err
	}
	if transition.Project.IsTerminal(project.Status) {
		return nil, nil, ErrProjectClosed
	}

	latest, err := u.blueprintRepo.FindLatestByProject(tx, project.ID)
	if err != nil {
		u.log.Warnf("Failed to find latest blueprint of project %s: %+v", project.ID, err)
		return nil, nil, err
	}
	if latest == nil || latest.ID != bp.ID {
		return nil, nil, ErrBlueprintSuperseded
	}
	return bp, project, nil
}

func (u *blueprintUsecase) findBlueprint(db *gorm.DB, id uuid.UUID) (*entity.Blueprint, error) {
	bp, err := u.blueprintRepo.FindByID(db, id)
	if err != nil {
		u.log.Warnf("Failed to find blueprint %s: %+v", id, err)
		return nil, err
	}
	if bp == nil {
		return nil, ErrBlueprintNotFound
	}
	return bp, nil
}

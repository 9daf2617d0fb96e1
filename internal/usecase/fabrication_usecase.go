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

var ErrProjectNotInProduction = apperror.Conflict("project_not_in_production", "Fabrication updates can only be recorded while the project is in production")

type FabricationUsecase interface {
	RecordUpdate(ctx context.Context, actor entity.Actor, projectID uuid.UUID, req *dto.RecordFabricationRequest) (*dto.RecordFabricationResponse, error)
	History(ctx context.Context, actor entity.Actor, projectID uuid.UUID) (*dto.FabricationHistoryResponse, error)
}

type fabricationUsecase struct {
	db          *gorm.DB
	log         *logrus.Logger
	chain       *workflowChain
	updateRepo  repository.FabricationUpdateRepository
	projectRepo repository.ProjectRepository
	audit       AuditRecorder
	notifier    Notifier
}

func NewFabricationUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	updateRepo repository.FabricationUpdateRepository,
	projectRepo repository.ProjectRepository,
	appointmentRepo repository.AppointmentRepository,
	intakeRepo repository.VisitIntakeRepository,
	reservation *service.ReservationService,
	audit AuditRecorder,
	notifier Notifier,
) FabricationUsecase {
	return &fabricationUsecase{
		db:          db,
		log:         log,
		chain:       newWorkflowChain(db, log, appointmentRepo, intakeRepo, projectRepo, reservation, audit, notifier),
		updateRepo:  updateRepo,
		projectRepo: projectRepo,
		audit:       audit,
		notifier:    notifier,
	}
}

// RecordUpdate appends a production log entry. Reaching done completes the project.
func (u *fabricationUsecase) RecordUpdate(ctx context.Context, actor entity.Actor, projectID uuid.UUID, req *dto.RecordFabricationRequest) (*dto.RecordFabricationResponse, error) {
	stage := entity.FabricationStage(req.Stage)

	fx := &effects{}
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	project, err := findProject(tx, u.log, u.projectRepo, projectID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, project, CapabilityRecordFabrication); err != nil {
		return nil, err
	}
	if project.Status != entity.ProjectStatusProduction {
		return nil, ErrProjectNotInProduction.WithDetails(map[string]interface{}{"status": project.Status})
	}

	current, err := u.currentStage(tx, project.ID)
	if err != nil {
		return nil, err
	}
	if err := transition.FabricationStage.Assert(current, stage); err != nil {
		return nil, err
	}

	update := &entity.FabricationUpdate{
		ProjectID:  project.ID,
		Stage:      stage,
		Notes:      req.Notes,
		PhotoKeys:  entity.StringList(req.PhotoKeys),
		RecordedBy: actor.UserID,
	}
	if err := u.updateRepo.Create(tx, update); err != nil {
		u.log.Warnf("Failed to record fabrication update for project %s: %+v", project.ID, err)
		return nil, err
	}

	fx.audit(entity.AuditActionFabricationRecord, actor, entity.AuditTargetFabrication, update.ID.String(), map[string]interface{}{
		"project_id": project.ID,
		"from":       current,
		"to":         stage,
	})
	fx.notify(notifyUser(project.CustomerID, entity.NotificationCategoryProduction,
		"Production update",
		fmt.Sprintf("%q moved to %s", project.Title, readable(string(stage))),
		projectLink(project)))

	if stage == entity.FabricationStageDone {
		if err := u.chain.advanceProject(tx, project, entity.ProjectStatusCompleted, actor, fx, nil); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit fabrication update for project %s: %+v", project.ID, err)
		return nil, err
	}
	fx.flush(ctx, u.audit, u.notifier)

	return &dto.RecordFabricationResponse{
		Update:        converter.FabricationUpdateToResponse(update),
		ProjectStatus: string(project.Status),
	}, nil
}

func (u *fabricationUsecase) History(ctx context.Context, actor entity.Actor, projectID uuid.UUID) (*dto.FabricationHistoryResponse, error) {
	db := u.db.WithContext(ctx)
	project, err := findProject(db, u.log, u.projectRepo, projectID)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, project, CapabilityView); err != nil {
		return nil, err
	}

	updates, err := u.updateRepo.FindByProject(db, project.ID)
	if err != nil {
		u.log.Warnf("Failed to list fabrication updates of project %s: %+v", project.ID, err)
		return nil, err
	}

	current := entity.FabricationStageQueued
	if n := len(updates); n > 0 {
		current = updates[n-1].Stage
	}

	return &dto.FabricationHistoryResponse{
		ProjectID:    project.ID,
		CurrentStage: string(current),
		NextStages:   converter.FabricationStagesToStrings(transition.FabricationStage.AllowedFrom(current)),
		Updates:      converter.FabricationUpdatesToResponses(updates),
		Total:        len(updates),
	}, nil
}

// currentStage is the stage of the newest entry, queued when nothing was recorded yet
func (u *fabricationUsecase) currentStage(db *gorm.DB, projectID uuid.UUID) (entity.FabricationStage, error) {
	latest, err := u.updateRepo.FindLatestByProject(db, projectID)
	if err != nil {
		u.log.Warnf("Failed to find latest fabrication update of project %s: %+v", projectID, err)
		return "", err
	}
	if latest == nil {
		return entity.FabricationStageQueued, nil
	}
	return latest.Stage, nil
}

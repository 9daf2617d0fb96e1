package usecase_test

import (
	"testing"

	"fabrication-workflow/internal/delivery/dto"
	"fabrication-workflow/internal/domain/entity"
	"fabrication-workflow/internal/domain/transition"
	"fabrication-workflow/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(stage entity.FabricationStage) *dto.RecordFabricationRequest {
	return &dto.RecordFabricationRequest{Stage: string(stage), Notes: "on schedule"}
}

func TestFabricationRecordUpdate_ForwardOnly(t *testing.T) {
	h := newHarness(t)
	projectID := h.productionProject()

	history, err := h.fabrication.History(h.ctx, h.customer, projectID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.FabricationStageQueued), history.CurrentStage)
	assert.Len(t, history.NextStages, len(entity.FabricationStages)-1)
	assert.Zero(t, history.Total)

	resp, err := h.fabrication.RecordUpdate(h.ctx, h.staff, projectID, record(entity.FabricationStageCutting))
	require.NoError(t, err)
	assert.Equal(t, string(entity.FabricationStageCutting), resp.Update.Stage)
	assert.Equal(t, h.staff.UserID, resp.Update.RecordedBy)
	assert.Equal(t, string(entity.ProjectStatusProduction), resp.ProjectStatus)

	_, err = h.fabrication.RecordUpdate(h.ctx, h.staff, projectID, record(entity.FabricationStageMaterialPrep))
	assert.ErrorIs(t, err, transition.ErrInvalidTransition)
	_, err = h.fabrication.RecordUpdate(h.ctx, h.staff, projectID, record(entity.FabricationStageCutting))
	assert.ErrorIs(t, err, transition.ErrInvalidTransition)

	_, err = h.fabrication.RecordUpdate(h.ctx, h.admin, projectID, record(entity.FabricationStageWelding))
	require.NoError(t, err)

	history, err = h.fabrication.History(h.ctx, h.staff, projectID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.FabricationStageWelding), history.CurrentStage)
	assert.Equal(t, 2, history.Total)
	assert.NotContains(t, history.NextStages, string(entity.FabricationStageCutting))
	assert.Contains(t, history.NextStages, string(entity.FabricationStageDone))
}

func TestFabricationRecordUpdate_DoneCompletesProject(t *testing.T) {
	h := newHarness(t)
	projectID := h.productionProject()

	_, err := h.fabrication.RecordUpdate(h.ctx, h.staff, projectID, record(entity.FabricationStageQualityCheck))
	require.NoError(t, err)

	resp, err := h.fabrication.RecordUpdate(h.ctx, h.staff, projectID, record(entity.FabricationStageDone))
	require.NoError(t, err)
	assert.Equal(t, string(entity.ProjectStatusCompleted), resp.ProjectStatus)

	project, err := h.projects.Get(h.ctx, h.customer, projectID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.ProjectStatusCompleted), project.Status)

	_, err = h.fabrication.RecordUpdate(h.ctx, h.admin, projectID, record(entity.FabricationStageDone))
	assert.ErrorIs(t, err, usecase.ErrProjectNotInProduction)

	history, err := h.fabrication.History(h.ctx, h.customer, projectID)
	require.NoError(t, err)
	assert.Empty(t, history.NextStages)
}

func TestFabricationRecordUpdate_Guards(t *testing.T) {
	h := newHarness(t)
	approved := h.approvedProject()

	_, err := h.fabrication.RecordUpdate(h.ctx, h.admin, approved, record(entity.FabricationStageCutting))
	assert.ErrorIs(t, err, usecase.ErrProjectNotInProduction)

	h2 := newHarness(t)
	projectID := h2.productionProject()

	_, err = h2.fabrication.RecordUpdate(h2.ctx, h2.customer, projectID, record(entity.FabricationStageCutting))
	assert.ErrorIs(t, err, usecase.ErrForbidden)
	_, err = h2.fabrication.RecordUpdate(h2.ctx, h2.newStaff(), projectID, record(entity.FabricationStageCutting))
	assert.ErrorIs(t, err, usecase.ErrForbidden)
	// the design engineer is not on the production crew
	_, err = h2.fabrication.RecordUpdate(h2.ctx, h2.engineer, projectID, record(entity.FabricationStageCutting))
	assert.ErrorIs(t, err, usecase.ErrForbidden)

	_, err = h2.fabrication.History(h2.ctx, h2.newCustomer(), projectID)
	assert.ErrorIs(t, err, usecase.ErrForbidden)
}

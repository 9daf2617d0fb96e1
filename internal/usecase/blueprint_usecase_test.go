package usecase_test

import (
	"sync"
	"testing"

	"fabrication-workflow/internal/delivery/dto"
	"fabrication-workflow/internal/domain/entity"
	"fabrication-workflow/internal/domain/transition"
	"fabrication-workflow/internal/testutil"
	"fabrication-workflow/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlueprintUpload_Guards(t *testing.T) {
	h := newHarness(t)
	submitted := h.submittedProject()

	_, err := h.blueprints.UploadInitial(h.ctx, h.admin, submitted, blueprintUpload(1000))
	assert.ErrorIs(t, err, usecase.ErrNotInDesignPhase)

	h2 := newHarness(t)
	projectID := h2.designProject()

	_, err = h2.blueprints.UploadInitial(h2.ctx, h2.customer, projectID, blueprintUpload(1000))
	assert.ErrorIs(t, err, usecase.ErrForbidden)

	unassigned := testutil.ActorFor(testutil.CreateUser(t, h2.db, entity.RoleEngineer))
	_, err = h2.blueprints.UploadInitial(h2.ctx, unassigned, projectID, blueprintUpload(1000))
	assert.ErrorIs(t, err, usecase.ErrForbidden)

	negative := blueprintUpload(0)
	negative.EstimatedCost = decimal.NewFromInt(-5)
	_, err = h2.blueprints.UploadInitial(h2.ctx, h2.engineer, projectID, negative)
	assert.ErrorIs(t, err, usecase.ErrNegativeEstimate)

	_, err = h2.blueprints.UploadRevision(h2.ctx, h2.engineer, projectID, blueprintUpload(1000))
	assert.ErrorIs(t, err, usecase.ErrBlueprintNotFound)

	bp, err := h2.blueprints.UploadInitial(h2.ctx, h2.engineer, projectID, blueprintUpload(1000))
	require.NoError(t, err)
	assert.Equal(t, 1, bp.Version)
	assert.Equal(t, string(entity.BlueprintStatusUploaded), bp.Status)
	assert.Equal(t, 1, noticesTitled(h2.notifier.ForUser(h2.customer.UserID), "Design ready for review"))

	_, err = h2.blueprints.UploadInitial(h2.ctx, h2.engineer, projectID, blueprintUpload(1000))
	assert.ErrorIs(t, err, usecase.ErrBlueprintExists)

	_, err = h2.blueprints.UploadRevision(h2.ctx, h2.engineer, projectID, blueprintUpload(1000))
	assert.ErrorIs(t, err, transition.ErrInvalidTransition)
}

func TestBlueprintApprove_PartsThenProject(t *testing.T) {
	h := newHarness(t)
	projectID := h.designProject()

	bp, err := h.blueprints.UploadInitial(h.ctx, h.engineer, projectID, blueprintUpload(25000))
	require.NoError(t, err)

	_, err = h.blueprints.Approve(h.ctx, h.agent, bp.ID, &dto.ApproveBlueprintRequest{Part: usecase.ApprovalPartBoth})
	assert.ErrorIs(t, err, usecase.ErrForbidden)

	_, err = h.blueprints.Approve(h.ctx, h.customer, bp.ID, &dto.ApproveBlueprintRequest{Part: "frame"})
	assert.ErrorIs(t, err, usecase.ErrInvalidApprovalPart)

	resp, err := h.blueprints.Approve(h.ctx, h.customer, bp.ID, &dto.ApproveBlueprintRequest{Part: usecase.ApprovalPartDrawing})
	require.NoError(t, err)
	assert.True(t, resp.Blueprint.DrawingApproved)
	assert.False(t, resp.Blueprint.CostingApproved)
	assert.Equal(t, string(entity.BlueprintStatusUploaded), resp.Blueprint.Status)
	assert.Equal(t, string(entity.ProjectStatusDesignPhase), resp.ProjectStatus)

	resp, err = h.blueprints.Approve(h.ctx, h.customer, bp.ID, &dto.ApproveBlueprintRequest{Part: usecase.ApprovalPartCosting})
	require.NoError(t, err)
	assert.Equal(t, string(entity.BlueprintStatusApproved), resp.Blueprint.Status)
	assert.NotNil(t, resp.Blueprint.ApprovedAt)
	assert.Equal(t, string(entity.ProjectStatusApproved), resp.ProjectStatus)

	assert.Len(t, h.notifier.ForRole(entity.RoleAgent), 3) // visit request, intake submitted, plan needed
	assert.Equal(t, 1, noticesTitled(h.notifier.ForUser(h.engineer.UserID), "Design approved"))

	_, err = h.blueprints.Approve(h.ctx, h.customer, bp.ID, &dto.ApproveBlueprintRequest{Part: usecase.ApprovalPartBoth})
	assert.ErrorIs(t, err, transition.ErrInvalidTransition)
}

func TestBlueprintApprove_ConcurrentPartsBothPersist(t *testing.T) {
	h := newHarness(t)
	projectID := h.designProject()
	bp, err := h.blueprints.UploadInitial(h.ctx, h.engineer, projectID, blueprintUpload(25000))
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, part := range []string{usecase.ApprovalPartDrawing, usecase.ApprovalPartCosting} {
		wg.Add(1)
		go func(i int, part string) {
			defer wg.Done()
			_, errs[i] = h.blueprints.Approve(h.ctx, h.customer, bp.ID, &dto.ApproveBlueprintRequest{Part: part})
		}(i, part)
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	var stored entity.Blueprint
	require.NoError(t, h.db.First(&stored, "id = ?", bp.ID).Error)
	assert.True(t, stored.DrawingApproved)
	assert.True(t, stored.CostingApproved)
	assert.Equal(t, entity.BlueprintStatusApproved, stored.Status)

	project, err := h.projects.Get(h.ctx, h.customer, projectID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.ProjectStatusApproved), project.Status)
}

func TestBlueprintRevision_CappedVersions(t *testing.T) {
	h := newHarness(t)
	projectID := h.designProject()

	bp, err := h.blueprints.UploadInitial(h.ctx, h.engineer, projectID, blueprintUpload(10000))
	require.NoError(t, err)

	_, err = h.blueprints.RequestRevision(h.ctx, h.customer, bp.ID, &dto.RequestRevisionRequest{})
	assert.ErrorIs(t, err, usecase.ErrRevisionNotesMissing)

	for version := 1; version < usecase.DefaultMaxBlueprintVersions; version++ {
		revised, err := h.blueprints.RequestRevision(h.ctx, h.customer, bp.ID, &dto.RequestRevisionRequest{Notes: "taller posts"})
		require.NoError(t, err)
		assert.Equal(t, string(entity.BlueprintStatusRevisionRequested), revised.Status)
		assert.Equal(t, "taller posts", revised.RevisionNotes)

		previous := bp
		bp, err = h.blueprints.UploadRevision(h.ctx, h.engineer, projectID, blueprintUpload(int64(10000+version*500)))
		require.NoError(t, err)
		assert.Equal(t, version+1, bp.Version)
		assert.Equal(t, string(entity.BlueprintStatusRevisionUploaded), bp.Status)

		_, err = h.blueprints.Approve(h.ctx, h.customer, previous.ID, &dto.ApproveBlueprintRequest{Part: usecase.ApprovalPartBoth})
		assert.ErrorIs(t, err, usecase.ErrBlueprintSuperseded)
	}

	_, err = h.blueprints.RequestRevision(h.ctx, h.customer, bp.ID, &dto.RequestRevisionRequest{Notes: "one more"})
	assert.ErrorIs(t, err, usecase.ErrMaxRevisionsReached)

	resp, err := h.blueprints.Approve(h.ctx, h.customer, bp.ID, &dto.ApproveBlueprintRequest{Part: usecase.ApprovalPartBoth})
	require.NoError(t, err)
	assert.Equal(t, string(entity.ProjectStatusApproved), resp.ProjectStatus)

	list, err := h.blueprints.List(h.ctx, h.customer, projectID)
	require.NoError(t, err)
	assert.Equal(t, usecase.DefaultMaxBlueprintVersions, list.Total)
	assert.Equal(t, string(entity.BlueprintStatusApproved), list.PackageStatus)
	for i, b := range list.Blueprints {
		assert.Equal(t, i+1, b.Version)
	}
	assertAmount(t, "11000", list.Blueprints[2].EstimatedCost)

	_, err = h.blueprints.Get(h.ctx, h.newCustomer(), bp.ID)
	assert.ErrorIs(t, err, usecase.ErrForbidden)
}

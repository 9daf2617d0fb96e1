package usecase_test

import (
	"testing"

	"fabrication-workflow/internal/delivery/dto"
	"fabrication-workflow/internal/domain/entity"
	"fabrication-workflow/internal/domain/transition"
	"fabrication-workflow/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectAssignStaff_DesignOpensDesignPhase(t *testing.T) {
	h := newHarness(t)
	projectID := h.submittedProject()

	project, err := h.projects.AssignStaff(h.ctx, h.admin, projectID, &dto.AssignStaffRequest{
		UserID: h.engineer.UserID,
		Role:   entity.AssignmentRoleDesign,
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.ProjectStatusDesignPhase), project.Status)
	require.Len(t, project.Assignments, 1)
	assert.Equal(t, h.engineer.UserID, project.Assignments[0].UserID)
	assert.Len(t, h.notifier.ForUser(h.engineer.UserID), 1)

	// assigning again changes nothing
	project, err = h.projects.AssignStaff(h.ctx, h.admin, projectID, &dto.AssignStaffRequest{
		UserID: h.engineer.UserID,
		Role:   entity.AssignmentRoleDesign,
	})
	require.NoError(t, err)
	assert.Len(t, project.Assignments, 1)
	assert.Equal(t, 1, h.audit.Count(entity.AuditActionProjectAssign))
}

func TestProjectAssignStaff_RoleRules(t *testing.T) {
	h := newHarness(t)
	projectID := h.submittedProject()

	tests := []struct {
		name  string
		actor entity.Actor
		req   *dto.AssignStaffRequest
		want  error
	}{
		{"customer cannot assign", h.customer, &dto.AssignStaffRequest{UserID: h.engineer.UserID, Role: entity.AssignmentRoleDesign}, usecase.ErrForbidden},
		{"staff cannot design", h.admin, &dto.AssignStaffRequest{UserID: h.staff.UserID, Role: entity.AssignmentRoleDesign}, usecase.ErrInvalidAssignment},
		{"agent cannot be assigned", h.admin, &dto.AssignStaffRequest{UserID: h.agent.UserID, Role: entity.AssignmentRoleProduction}, usecase.ErrInvalidAssignment},
		{"unknown role", h.admin, &dto.AssignStaffRequest{UserID: h.engineer.UserID, Role: "sales"}, usecase.ErrInvalidAssignment},
		{"unknown user", h.admin, &dto.AssignStaffRequest{UserID: uuid.New(), Role: entity.AssignmentRoleDesign}, usecase.ErrAssigneeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.projects.AssignStaff(h.ctx, tt.actor, projectID, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	// production staff can join early without moving the project
	project, err := h.projects.AssignStaff(h.ctx, h.agent, projectID, &dto.AssignStaffRequest{
		UserID: h.staff.UserID,
		Role:   entity.AssignmentRoleProduction,
	})
	require.NoError(t, err)
	assert.Equal(t, string(entity.ProjectStatusSubmitted), project.Status)
}

func TestProjectRemoveAssignment(t *testing.T) {
	h := newHarness(t)
	projectID := h.designProject()

	_, err := h.projects.RemoveAssignment(h.ctx, h.admin, projectID, h.staff.UserID, entity.AssignmentRoleDesign)
	assert.ErrorIs(t, err, usecase.ErrAssignmentNotFound)

	project, err := h.projects.RemoveAssignment(h.ctx, h.admin, projectID, h.engineer.UserID, entity.AssignmentRoleDesign)
	require.NoError(t, err)
	assert.Empty(t, project.Assignments)

	_, err = h.projects.Get(h.ctx, h.engineer, projectID)
	assert.ErrorIs(t, err, usecase.ErrForbidden)
}

func TestProjectCancel(t *testing.T) {
	h := newHarness(t)
	projectID := h.designProject()

	_, err := h.projects.Cancel(h.ctx, h.admin, projectID, &dto.CancelProjectRequest{})
	assert.ErrorIs(t, err, usecase.ErrCancelReasonMissing)

	_, err = h.projects.Cancel(h.ctx, h.customer, projectID, &dto.CancelProjectRequest{Reason: "budget"})
	assert.ErrorIs(t, err, usecase.ErrForbidden)

	project, err := h.projects.Cancel(h.ctx, h.admin, projectID, &dto.CancelProjectRequest{Reason: "budget"})
	require.NoError(t, err)
	assert.Equal(t, string(entity.ProjectStatusCancelled), project.Status)
	assert.Equal(t, "budget", project.CancelReason)
	assert.Empty(t, project.AllowedActions)

	_, err = h.projects.Cancel(h.ctx, h.admin, projectID, &dto.CancelProjectRequest{Reason: "again"})
	assert.ErrorIs(t, err, transition.ErrInvalidTransition)

	_, err = h.projects.AssignStaff(h.ctx, h.admin, projectID, &dto.AssignStaffRequest{
		UserID: h.engineer.UserID,
		Role:   entity.AssignmentRoleDesign,
	})
	assert.ErrorIs(t, err, usecase.ErrProjectClosed)
}

func TestProjectListing(t *testing.T) {
	h := newHarness(t)
	projectID := h.designProject()

	mine, err := h.projects.ListMine(h.ctx, h.customer)
	require.NoError(t, err)
	require.Equal(t, 1, mine.Total)
	assert.Equal(t, projectID, mine.Projects[0].ID)

	assigned, err := h.projects.ListMine(h.ctx, h.engineer)
	require.NoError(t, err)
	assert.Equal(t, 1, assigned.Total)

	others, err := h.projects.ListMine(h.ctx, h.newCustomer())
	require.NoError(t, err)
	assert.Zero(t, others.Total)

	_, err = h.projects.List(h.ctx, h.customer, nil)
	assert.ErrorIs(t, err, usecase.ErrForbidden)

	inDesign, err := h.projects.List(h.ctx, h.agent, &dto.ProjectFilterRequest{Status: string(entity.ProjectStatusDesignPhase)})
	require.NoError(t, err)
	assert.Equal(t, 1, inDesign.Total)

	_, err = h.projects.Get(h.ctx, h.newCustomer(), projectID)
	assert.ErrorIs(t, err, usecase.ErrForbidden)
	_, err = h.projects.Get(h.ctx, h.admin, uuid.New())
	assert.ErrorIs(t, err, usecase.ErrProjectNotFound)
}

func TestProjectListAssignable(t *testing.T) {
	h := newHarness(t)

	_, err := h.projects.ListAssignable(h.ctx, h.customer, "")
	assert.ErrorIs(t, err, usecase.ErrForbidden)

	_, err = h.projects.ListAssignable(h.ctx, h.agent, "welding")
	assert.ErrorIs(t, err, usecase.ErrInvalidAssignment)

	designers, err := h.projects.ListAssignable(h.ctx, h.agent, entity.AssignmentRoleDesign)
	require.NoError(t, err)
	require.Equal(t, 1, designers.Total)
	assert.Equal(t, h.engineer.UserID, designers.Users[0].ID)

	everyone, err := h.projects.ListAssignable(h.ctx, h.admin, "")
	require.NoError(t, err)
	ids := map[uuid.UUID]string{}
	for _, u := range everyone.Users {
		ids[u.ID] = u.Role
	}
	assert.Equal(t, map[uuid.UUID]string{
		h.engineer.UserID: entity.RoleEngineer,
		h.staff.UserID:    entity.RoleStaff,
	}, ids)
}

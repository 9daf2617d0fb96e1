package usecase_test

import (
	"sync"
	"testing"

	"fabrication-workflow/internal/delivery/dto"
	"fabrication-workflow/internal/domain/entity"
	"fabrication-workflow/internal/domain/transition"
	"fabrication-workflow/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func draftIntake(t *testing.T, h *harness) (*dto.AppointmentResponse, *dto.VisitIntakeResponse) {
	t.Helper()
	appt := h.confirmedVisit()
	intake, err := h.intakes.GetByAppointment(h.ctx, h.staff, appt.ID)
	require.NoError(t, err)
	return appt, intake
}

func TestVisitIntakeSubmit_CompletesVisitAndOpensProject(t *testing.T) {
	h := newHarness(t)
	appt, intake := draftIntake(t, h)

	requirements := "Steel gate with sliding rail\nPowder coated black"
	materials := "Galvanized steel"
	updated, err := h.intakes.Update(h.ctx, h.staff, intake.ID, &dto.UpdateVisitIntakeRequest{
		Requirements: &requirements,
		Materials:    &materials,
		PhotoKeys:    []string{"site_photo/2026/10/a.jpg"},
	})
	require.NoError(t, err)
	assert.Equal(t, materials, updated.Materials)
	assert.Equal(t, []string{"site_photo/2026/10/a.jpg"}, updated.PhotoKeys)

	resp, err := h.intakes.Submit(h.ctx, h.staff, intake.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.VisitIntakeStatusSubmitted), resp.Intake.Status)
	assert.NotNil(t, resp.Intake.SubmittedAt)
	assert.Equal(t, string(entity.AppointmentStatusCompleted), resp.AppointmentStatus)
	require.NotNil(t, resp.ProjectID)
	assert.Equal(t, string(entity.ProjectStatusSubmitted), resp.ProjectStatus)

	project, err := h.projects.Get(h.ctx, h.customer, *resp.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, "Steel gate with sliding rail", project.Title)
	assert.Equal(t, appt.ID, project.AppointmentID)
	assert.Equal(t, intake.ID, project.IntakeID)
	assert.Equal(t, materials, project.Materials)

	assert.Len(t, h.notifier.ForRole(entity.RoleAdmin), 1)
	assert.Equal(t, 1, h.audit.Count(entity.AuditActionProjectCreate))
}

func TestVisitIntakeSubmit_ReplayKeepsOneProject(t *testing.T) {
	h := newHarness(t)
	_, intake := draftIntake(t, h)

	first, err := h.intakes.Submit(h.ctx, h.staff, intake.ID)
	require.NoError(t, err)
	require.NotNil(t, first.ProjectID)

	second, err := h.intakes.Submit(h.ctx, h.staff, intake.ID)
	require.NoError(t, err)
	require.NotNil(t, second.ProjectID)
	assert.Equal(t, *first.ProjectID, *second.ProjectID)

	assert.Equal(t, 1, h.audit.Count(entity.AuditActionIntakeSubmit))
	assert.Equal(t, 1, h.audit.Count(entity.AuditActionProjectCreate))
}

func TestVisitIntakeSubmit_ConcurrentSubmitsKeepOneProject(t *testing.T) {
	h := newHarness(t)
	appt, intake := draftIntake(t, h)

	const workers = 5
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ids = map[uuid.UUID]struct{}{}
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := h.intakes.Submit(h.ctx, h.staff, intake.ID)
			if err != nil || resp.ProjectID == nil {
				return
			}
			mu.Lock()
			ids[*resp.ProjectID] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, ids, 1)

	var count int64
	require.NoError(t, h.db.Model(&entity.Project{}).Where("appointment_id = ?", appt.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestVisitIntakeSubmit_OnlyAssignedStaff(t *testing.T) {
	h := newHarness(t)
	_, intake := draftIntake(t, h)

	_, err := h.intakes.Submit(h.ctx, h.newStaff(), intake.ID)
	assert.ErrorIs(t, err, usecase.ErrForbidden)

	_, err = h.intakes.Submit(h.ctx, h.agent, intake.ID)
	assert.ErrorIs(t, err, usecase.ErrForbidden)

	notes := "gate faces east"
	_, err = h.intakes.Update(h.ctx, h.customer, intake.ID, &dto.UpdateVisitIntakeRequest{Notes: &notes})
	assert.ErrorIs(t, err, usecase.ErrForbidden)

	_, err = h.intakes.Submit(h.ctx, h.staff, uuid.New())
	assert.ErrorIs(t, err, usecase.ErrIntakeNotFound)
}

func TestVisitIntakeReview_ReturnAndAccept(t *testing.T) {
	h := newHarness(t)
	_, intake := draftIntake(t, h)

	_, err := h.intakes.Submit(h.ctx, h.staff, intake.ID)
	require.NoError(t, err)

	notes := "too late"
	_, err = h.intakes.Update(h.ctx, h.staff, intake.ID, &dto.UpdateVisitIntakeRequest{Notes: &notes})
	assert.ErrorIs(t, err, usecase.ErrIntakeNotEditable)

	_, err = h.intakes.Return(h.ctx, h.customer, intake.ID, &dto.ReturnVisitIntakeRequest{Reason: "missing photos"})
	assert.ErrorIs(t, err, usecase.ErrForbidden)

	returned, err := h.intakes.Return(h.ctx, h.agent, intake.ID, &dto.ReturnVisitIntakeRequest{Reason: "missing photos"})
	require.NoError(t, err)
	assert.Equal(t, string(entity.VisitIntakeStatusReturned), returned.Status)
	assert.Equal(t, "missing photos", returned.ReturnReason)

	queue, err := h.intakes.ListSubmitted(h.ctx, h.agent)
	require.NoError(t, err)
	assert.Zero(t, queue.Total)

	_, err = h.intakes.Update(h.ctx, h.staff, intake.ID, &dto.UpdateVisitIntakeRequest{PhotoKeys: []string{"site_photo/2026/10/b.jpg"}})
	require.NoError(t, err)

	resubmitted, err := h.intakes.Submit(h.ctx, h.staff, intake.ID)
	require.NoError(t, err)
	assert.Empty(t, resubmitted.Intake.ReturnReason)

	accepted, err := h.intakes.Accept(h.ctx, h.agent, intake.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.VisitIntakeStatusCompleted), accepted.Status)

	mine, err := h.intakes.ListMine(h.ctx, h.staff)
	require.NoError(t, err)
	assert.Equal(t, 1, mine.Total)
}

func TestVisitIntakeSubmit_RequiresConfirmedAppointment(t *testing.T) {
	tests := []struct {
		name   string
		detour func(h *harness, appointmentID uuid.UUID)
		status entity.AppointmentStatus
	}{
		{
			name: "cancelled by the customer",
			detour: func(h *harness, appointmentID uuid.UUID) {
				_, err := h.appointments.Cancel(h.ctx, h.customer, appointmentID, &dto.CancelAppointmentRequest{Reason: "changed plans"})
				require.NoError(h.t, err)
			},
			status: entity.AppointmentStatusCancelled,
		},
		{
			name: "waiting for a reschedule",
			detour: func(h *harness, appointmentID uuid.UUID) {
				_, err := h.appointments.RequestReschedule(h.ctx, h.customer, appointmentID, &dto.RequestRescheduleRequest{Date: wednesday, SlotCode: "10:00"})
				require.NoError(h.t, err)
			},
			status: entity.AppointmentStatusRescheduleRequested,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			appt, intake := draftIntake(t, h)
			tt.detour(h, appt.ID)

			resp, err := h.intakes.Submit(h.ctx, h.staff, intake.ID)
			assert.ErrorIs(t, err, transition.ErrInvalidTransition)
			assert.Nil(t, resp)

			var projects int64
			require.NoError(t, h.db.Model(&entity.Project{}).Where("appointment_id = ?", appt.ID).Count(&projects).Error)
			assert.Zero(t, projects)

			current, err := h.appointments.Get(h.ctx, h.customer, appt.ID)
			require.NoError(t, err)
			assert.Equal(t, string(tt.status), current.Status)
			assert.Zero(t, h.audit.Count(entity.AuditActionProjectCreate))
		})
	}
}

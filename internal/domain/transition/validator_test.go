package transition

import (
	"errors"
	"testing"

	"fabrication-workflow/internal/domain/entity"
	"fabrication-workflow/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// assertConsistent checks Assert(s, t) succeeds iff t is in AllowedFrom(s), for every pair.
func assertConsistent[S ~string](t *testing.T, v *Validator[S]) {
	t.Helper()
	states := v.States()
	require.NotEmpty(t, states)

	for _, from := range states {
		allowed := map[S]bool{}
		for _, s := range v.AllowedFrom(from) {
			allowed[s] = true
		}
		for _, to := range states {
			err := v.Assert(from, to)
			if allowed[to] {
				assert.NoError(t, err, "%s: %s -> %s", v.Entity(), from, to)
				assert.True(t, v.CanTransition(from, to))
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition, "%s: %s -> %s", v.Entity(), from, to)
				assert.False(t, v.CanTransition(from, to))
			}
		}
		if v.IsTerminal(from) {
			assert.Empty(t, v.AllowedFrom(from))
		}
	}
}

func TestTables_AssertMatchesAllowedFrom(t *testing.T) {
	assertConsistent(t, Appointment)
	assertConsistent(t, VisitIntake)
	assertConsistent(t, Project)
	assertConsistent(t, Blueprint)
	assertConsistent(t, PaymentStage)
	assertConsistent(t, FabricationStage)
}

func TestAppointment_TerminalStates(t *testing.T) {
	for _, s := range []entity.AppointmentStatus{
		entity.AppointmentStatusCompleted,
		entity.AppointmentStatusNoShow,
		entity.AppointmentStatusCancelled,
	} {
		assert.True(t, Appointment.IsTerminal(s), s)
		assert.Empty(t, Appointment.AllowedFrom(s), s)
	}
	assert.Equal(t,
		[]entity.AppointmentStatus{
			entity.AppointmentStatusCancelled,
			entity.AppointmentStatusCompleted,
			entity.AppointmentStatusNoShow,
			entity.AppointmentStatusRescheduleRequested,
		},
		Appointment.AllowedFrom(entity.AppointmentStatusConfirmed))
}

func TestProject_CancellableFromEveryNonTerminalState(t *testing.T) {
	for _, s := range Project.States() {
		if Project.IsTerminal(s) {
			continue
		}
		assert.True(t, Project.CanTransition(s, entity.ProjectStatusCancelled), s)
	}
	assert.True(t, Project.IsTerminal(entity.ProjectStatusCompleted))
	assert.True(t, Project.IsTerminal(entity.ProjectStatusCancelled))
}

func TestFabricationStage_ForwardOnly(t *testing.T) {
	assert.True(t, FabricationStage.CanTransition(entity.FabricationStageQueued, entity.FabricationStageMaterialPrep))
	assert.True(t, FabricationStage.CanTransition(entity.FabricationStageCutting, entity.FabricationStageDone))
	assert.False(t, FabricationStage.CanTransition(entity.FabricationStageWelding, entity.FabricationStageCutting))
	assert.False(t, FabricationStage.CanTransition(entity.FabricationStageWelding, entity.FabricationStageWelding))
	assert.True(t, FabricationStage.IsTerminal(entity.FabricationStageDone))
}

func TestValidator_UnknownStateHasNoEdges(t *testing.T) {
	unknown := entity.ProjectStatus("archived")

	assert.Empty(t, Project.AllowedFrom(unknown))
	assert.False(t, Project.CanTransition(unknown, entity.ProjectStatusCancelled))
	assert.Error(t, Project.Assert(unknown, entity.ProjectStatusCancelled))
	assert.False(t, Project.CanTransition(entity.ProjectStatusDraft, unknown))
}

func TestValidator_ErrorCarriesContext(t *testing.T) {
	err := Appointment.Assert(entity.AppointmentStatusRequested, entity.AppointmentStatusCompleted)
	require.Error(t, err)

	var trErr *Error
	require.True(t, errors.As(err, &trErr))
	assert.Equal(t, "appointment", trErr.Entity)
	assert.Equal(t, "requested", trErr.From)
	assert.Equal(t, "completed", trErr.To)
	assert.Equal(t, []string{"cancelled", "confirmed"}, trErr.Allowed)

	appErr, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindInvalidTransition, appErr.Kind)
	assert.Equal(t, "completed", appErr.Details["to"])
}

func TestNew_CopiesTable(t *testing.T) {
	table := map[string][]string{"a": {"b"}}
	v := New("test", table)
	table["a"] = append(table["a"], "c")
	table["b"] = []string{"a"}

	assert.True(t, v.CanTransition("a", "b"))
	assert.False(t, v.CanTransition("a", "c"))
	assert.False(t, v.CanTransition("b", "a"))
}

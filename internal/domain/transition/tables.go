package transition

import "fabrication-workflow/internal/domain/entity"

var Appointment = New("appointment", map[entity.AppointmentStatus][]entity.AppointmentStatus{
	entity.AppointmentStatusRequested: {
		entity.AppointmentStatusConfirmed,
		entity.AppointmentStatusCancelled,
	},
	entity.AppointmentStatusConfirmed: {
		entity.AppointmentStatusCompleted,
		entity.AppointmentStatusNoShow,
		entity.AppointmentStatusCancelled,
		entity.AppointmentStatusRescheduleRequested,
	},
	entity.AppointmentStatusRescheduleRequested: {
		entity.AppointmentStatusConfirmed,
		entity.AppointmentStatusCancelled,
	},
	entity.AppointmentStatusCompleted: {},
	entity.AppointmentStatusNoShow:    {},
	entity.AppointmentStatusCancelled: {},
})

var VisitIntake = New("visit_intake", map[entity.VisitIntakeStatus][]entity.VisitIntakeStatus{
	entity.VisitIntakeStatusDraft: {
		entity.VisitIntakeStatusSubmitted,
	},
	entity.VisitIntakeStatusSubmitted: {
		entity.VisitIntakeStatusReturned,
		entity.VisitIntakeStatusCompleted,
	},
	entity.VisitIntakeStatusReturned: {
		entity.VisitIntakeStatusSubmitted,
	},
	entity.VisitIntakeStatusCompleted: {},
})

var Project = New("project", map[entity.ProjectStatus][]entity.ProjectStatus{
	entity.ProjectStatusDraft: {
		entity.ProjectStatusSubmitted,
		entity.ProjectStatusCancelled,
	},
	entity.ProjectStatusSubmitted: {
		entity.ProjectStatusDesignPhase,
		entity.ProjectStatusCancelled,
	},
	entity.ProjectStatusDesignPhase: {
		entity.ProjectStatusApproved,
		entity.ProjectStatusCancelled,
	},
	entity.ProjectStatusApproved: {
		entity.ProjectStatusPaymentPending,
		entity.ProjectStatusCancelled,
	},
	entity.ProjectStatusPaymentPending: {
		entity.ProjectStatusProduction,
		entity.ProjectStatusCancelled,
	},
	entity.ProjectStatusProduction: {
		entity.ProjectStatusCompleted,
		entity.ProjectStatusCancelled,
	},
	entity.ProjectStatusCompleted: {},
	entity.ProjectStatusCancelled: {},
})

var Blueprint = New("blueprint", map[entity.BlueprintStatus][]entity.BlueprintStatus{
	entity.BlueprintStatusUploaded: {
		entity.BlueprintStatusApproved,
		entity.BlueprintStatusRevisionRequested,
	},
	entity.BlueprintStatusRevisionRequested: {
		entity.BlueprintStatusRevisionUploaded,
	},
	entity.BlueprintStatusRevisionUploaded: {
		entity.BlueprintStatusApproved,
		entity.BlueprintStatusRevisionRequested,
	},
	entity.BlueprintStatusApproved: {},
})

var PaymentStage = New("payment_stage", map[entity.PaymentStageStatus][]entity.PaymentStageStatus{
	entity.PaymentStageStatusPending: {
		entity.PaymentStageStatusProofSubmitted,
		entity.PaymentStageStatusVerified, // credit carry-forward
	},
	entity.PaymentStageStatusProofSubmitted: {
		entity.PaymentStageStatusVerified,
		entity.PaymentStageStatusPending, // partial payment
		entity.PaymentStageStatusDeclined,
	},
	entity.PaymentStageStatusDeclined: {
		entity.PaymentStageStatusProofSubmitted,
	},
	entity.PaymentStageStatusVerified: {},
})

// FabricationStage only moves forward; any later stage may be recorded
var FabricationStage = New("fabrication_stage", forwardOnly(entity.FabricationStages))

func forwardOnly[S ~string](ordered []S) map[S][]S {
	table := make(map[S][]S, len(ordered))
	for i, s := range ordered {
		later := make([]S, 0, len(ordered)-i-1)
		later = append(later, ordered[i+1:]...)
		table[s] = later
	}
	return table
}

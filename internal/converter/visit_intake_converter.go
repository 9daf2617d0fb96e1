package converter

import (
	"fabrication-workflow/internal/delivery/dto"
	"fabrication-workflow/internal/domain/entity"
)

// VisitIntakeToResponse converts a VisitIntake entity to VisitIntakeResponse DTO
func VisitIntakeToResponse(intake *entity.VisitIntake) *dto.VisitIntakeResponse {
	if intake == nil {
		return nil
	}

	photos := []string(intake.PhotoKeys)
	if photos == nil {
		photos = []string{}
	}

	return &dto.VisitIntakeResponse{
		ID:            intake.ID,
		AppointmentID: intake.AppointmentID,
		CustomerID:    intake.CustomerID,
		StaffID:       intake.StaffID,
		Status:        string(intake.Status),
		Measurements:  intake.Measurements,
		Materials:     intake.Materials,
		Requirements:  intake.Requirements,
		Notes:         intake.Notes,
		PhotoKeys:     photos,
		ReturnReason:  intake.ReturnReason,
		SubmittedAt:   intake.SubmittedAt,
		CreatedAt:     intake.CreatedAt,
		UpdatedAt:     intake.UpdatedAt,
	}
}

// VisitIntakesToResponses converts a slice of VisitIntake entities to slice of VisitIntakeResponse DTOs
func VisitIntakesToResponses(intakes []entity.VisitIntake) []dto.VisitIntakeResponse {
	responses := make([]dto.VisitIntakeResponse, len(intakes))
	for i := range intakes {
		if resp := VisitIntakeToResponse(&intakes[i]); resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}

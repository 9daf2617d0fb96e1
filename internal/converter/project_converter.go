package converter

import (
	"fabrication-workflow/internal/delivery/dto"
	"fabrication-workflow/internal/domain/entity"
	"fabrication-workflow/internal/domain/transition"
)

// ProjectToResponse converts a Project entity to ProjectResponse DTO
func ProjectToResponse(project *entity.Project) *dto.ProjectResponse {
	if project == nil {
		return nil
	}

	assignments := make([]dto.AssignmentResponse, len(project.Assignments))
	for i, a := range project.Assignments {
		assignments[i] = dto.AssignmentResponse{
			UserID:    a.UserID,
			Role:      a.Role,
			CreatedAt: a.CreatedAt,
		}
	}

	return &dto.ProjectResponse{
		ID:             project.ID,
		AppointmentID:  project.AppointmentID,
		IntakeID:       project.IntakeID,
		CustomerID:     project.CustomerID,
		Title:          project.Title,
		Measurements:   project.Measurements,
		Materials:      project.Materials,
		Requirements:   project.Requirements,
		Status:         string(project.Status),
		CancelReason:   project.CancelReason,
		Assignments:    assignments,
		AllowedActions: statesToStrings(transition.Project.AllowedFrom(project.Status)),
		CreatedAt:      project.CreatedAt,
		UpdatedAt:      project.UpdatedAt,
	}
}

// ProjectsToResponses converts a slice of Project entities to slice of ProjectResponse DTOs
func ProjectsToResponses(projects []entity.Project) []dto.ProjectResponse {
	responses := make([]dto.ProjectResponse, len(projects))
	for i := range projects {
		if resp := ProjectToResponse(&projects[i]); resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}

package converter

import (
	"fabrication-workflow/internal/delivery/dto"
	"fabrication-workflow/internal/domain/entity"
)

// BlueprintToResponse converts a Blueprint entity to BlueprintResponse DTO
func BlueprintToResponse(bp *entity.Blueprint) *dto.BlueprintResponse {
	if bp == nil {
		return nil
	}
	return &dto.BlueprintResponse{
		ID:              bp.ID,
		ProjectID:       bp.ProjectID,
		Version:         bp.Version,
		DrawingKey:      bp.DrawingKey,
		CostingKey:      bp.CostingKey,
		EstimatedCost:   bp.EstimatedCost,
		DrawingApproved: bp.DrawingApproved,
		CostingApproved: bp.CostingApproved,
		Status:          string(bp.Status),
		RevisionNotes:   bp.RevisionNotes,
		UploadedBy:      bp.UploadedBy,
		ApprovedAt:      bp.ApprovedAt,
		CreatedAt:       bp.CreatedAt,
		UpdatedAt:       bp.UpdatedAt,
	}
}

// BlueprintsToResponses converts a slice of Blueprint entities to slice of BlueprintResponse DTOs
func BlueprintsToResponses(bps []entity.Blueprint) []dto.BlueprintResponse {
	responses := make([]dto.BlueprintResponse, len(bps))
	for i := range bps {
		if resp := BlueprintToResponse(&bps[i]); resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}

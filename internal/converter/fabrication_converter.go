package converter

import (
	"fabrication-workflow/internal/delivery/dto"
	"fabrication-workflow/internal/domain/entity"
)

// FabricationUpdateToResponse converts a FabricationUpdate entity to FabricationUpdateResponse DTO
func FabricationUpdateToResponse(update *entity.FabricationUpdate) *dto.FabricationUpdateResponse {
	if update == nil {
		return nil
	}
	photos := []string(update.PhotoKeys)
	if photos == nil {
		photos = []string{}
	}
	return &dto.FabricationUpdateResponse{
		ID:         update.ID,
		ProjectID:  update.ProjectID,
		Stage:      string(update.Stage),
		Notes:      update.Notes,
		PhotoKeys:  photos,
		RecordedBy: update.RecordedBy,
		CreatedAt:  update.CreatedAt,
	}
}

// FabricationUpdatesToResponses converts a slice of FabricationUpdate entities to DTOs
func FabricationUpdatesToResponses(updates []entity.FabricationUpdate) []dto.FabricationUpdateResponse {
	responses := make([]dto.FabricationUpdateResponse, len(updates))
	for i := range updates {
		if resp := FabricationUpdateToResponse(&updates[i]); resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}

func FabricationStagesToStrings(stages []entity.FabricationStage) []string {
	return statesToStrings(stages)
}

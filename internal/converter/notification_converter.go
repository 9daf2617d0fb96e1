package converter

import (
	"fabrication-workflow/internal/delivery/dto"
	"fabrication-workflow/internal/domain/entity"
)

// NotificationsToResponses converts a slice of Notification entities to DTOs
func NotificationsToResponses(notifications []entity.Notification) []dto.NotificationResponse {
	responses := make([]dto.NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = dto.NotificationResponse{
			ID:            n.ID,
			RecipientID:   n.RecipientID,
			RecipientRole: n.RecipientRole,
			Category:      n.Category,
			Title:         n.Title,
			Message:       n.Message,
			Link:          n.Link,
			ReadAt:        n.ReadAt,
			CreatedAt:     n.CreatedAt,
		}
	}
	return responses
}

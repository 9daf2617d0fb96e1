package usecase

import (
	"context"

	"fabrication-workflow/internal/domain/entity"

	"github.com/google/uuid"
)

// effects collects audit records and notifications produced inside a
// transaction so they are only emitted once the transaction commits.
type effects struct {
	events        []entity.AuditEvent
	notifications []entity.Notification
}

func (e *effects) audit(action string, actor entity.Actor, targetType, targetID string, details map[string]interface{}) {
	e.events = append(e.events, entity.AuditEvent{
		Action:     action,
		Actor:      actor,
		TargetType: targetType,
		TargetID:   targetID,
		Details:    details,
	})
}

func (e *effects) notify(n entity.Notification) {
	e.notifications = append(e.notifications, n)
}

func (e *effects) flush(ctx context.Context, recorder AuditRecorder, notifier Notifier) {
	for _, ev := range e.events {
		recorder.Record(ctx, ev)
	}
	for _, n := range e.notifications {
		notifier.Notify(ctx, n)
	}
	e.events = nil
	e.notifications = nil
}

func notifyUser(userID uuid.UUID, category, title, message, link string) entity.Notification {
	id := userID
	return entity.Notification{
		RecipientID: &id,
		Category:    category,
		Title:       title,
		Message:     message,
		Link:        link,
	}
}

func notifyRole(role, category, title, message, link string) entity.Notification {
	return entity.Notification{
		RecipientRole: role,
		Category:      category,
		Title:         title,
		Message:       message,
		Link:          link,
	}
}

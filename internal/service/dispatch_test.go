package service_test

import (
	"context"
	"testing"

	"fabrication-workflow/internal/domain/entity"
	"fabrication-workflow/internal/repository"
	"fabrication-workflow/internal/service"
	"fabrication-workflow/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditService_PersistsOnStop(t *testing.T) {
	db := testutil.OpenDB(t)
	log, _ := testutil.NewLogger()
	repo := repository.NewAuditLogRepository()
	svc := service.NewAuditService(db, log, repo, 10)

	actor := entity.Actor{UserID: uuid.New(), Role: entity.RoleAdmin}
	ctx := entity.WithRequestMeta(context.Background(), entity.RequestMeta{RequestID: "req-1", IP: "10.0.0.1"})
	svc.Record(ctx, entity.AuditEvent{
		Action:     entity.AuditActionProjectCancel,
		Actor:      actor,
		TargetType: entity.AuditTargetProject,
		TargetID:   "p-1",
		Details:    map[string]interface{}{"reason": "customer withdrew"},
	})
	svc.Record(context.Background(), entity.AuditEvent{
		Action:     entity.AuditActionProjectAssign,
		Actor:      entity.SystemActor,
		TargetType: entity.AuditTargetProject,
		TargetID:   "p-1",
	})
	svc.Stop()
	svc.Stop()

	logs, err := repo.FindAll(db, &entity.AuditLogFilter{TargetType: entity.AuditTargetProject, TargetID: "p-1"})
	require.NoError(t, err)
	require.Len(t, logs, 2)

	byAction := map[string]entity.AuditLog{}
	for _, l := range logs {
		byAction[l.Action] = l
	}

	cancel := byAction[entity.AuditActionProjectCancel]
	require.NotNil(t, cancel.ActorID)
	assert.Equal(t, actor.UserID, *cancel.ActorID)
	assert.Equal(t, entity.RoleAdmin, cancel.ActorRole)
	assert.Equal(t, map[string]interface{}{"reason": "customer withdrew"}, cancel.Metadata["details"])
	request, ok := cancel.Metadata["request"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "req-1", request["request_id"])

	system := byAction[entity.AuditActionProjectAssign]
	assert.Nil(t, system.ActorID)
	assert.Equal(t, "system", system.ActorRole)
}

func TestAuditService_RecordAfterStopIsDropped(t *testing.T) {
	db := testutil.OpenDB(t)
	log, _ := testutil.NewLogger()
	repo := repository.NewAuditLogRepository()
	svc := service.NewAuditService(db, log, repo, 10)
	svc.Stop()

	svc.Record(context.Background(), entity.AuditEvent{
		Action:     entity.AuditActionProjectAssign,
		TargetType: entity.AuditTargetProject,
		TargetID:   "late",
	})

	logs, err := repo.FindAll(db, &entity.AuditLogFilter{TargetID: "late"})
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestNotificationService(t *testing.T) {
	db := testutil.OpenDB(t)
	log, _ := testutil.NewLogger()
	repo := repository.NewNotificationRepository()
	svc := service.NewNotificationService(db, log, repo, 10)

	customer := uuid.New()
	svc.Notify(context.Background(), entity.Notification{
		RecipientID: &customer,
		Category:    entity.NotificationCategoryProject,
		Title:       "Project update",
		Message:     "Your project moved to design",
	})
	svc.Notify(context.Background(), entity.Notification{
		RecipientRole: entity.RoleAgent,
		Category:      entity.NotificationCategoryProject,
		Title:         "Payment plan needed",
		Message:       "Design approved",
	})
	svc.Notify(context.Background(), entity.Notification{
		Category: entity.NotificationCategoryProject,
		Title:    "Nobody",
		Message:  "No recipient",
	})
	svc.Stop()

	var count int64
	require.NoError(t, db.Model(&entity.Notification{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)

	mine, err := repo.FindForRecipient(db, customer, entity.RoleCustomer, 10)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Project update", mine[0].Title)

	agents, err := repo.FindForRecipient(db, uuid.New(), entity.RoleAgent, 10)
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.Equal(t, "Payment plan needed", agents[0].Title)
}

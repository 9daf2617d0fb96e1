package usecase_test

import (
	"context"
	"testing"

	"fabrication-workflow/internal/delivery/dto"
	"fabrication-workflow/internal/domain/entity"
	"fabrication-workflow/internal/repository"
	"fabrication-workflow/internal/testutil"
	"fabrication-workflow/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationUsecase(t *testing.T) {
	db := testutil.OpenDB(t)
	log, _ := testutil.NewLogger()
	repo := repository.NewNotificationRepository()
	inbox := usecase.NewNotificationUsecase(db, log, repo)
	ctx := context.Background()

	customer := entity.Actor{UserID: uuid.New(), Role: entity.RoleCustomer}
	agent := entity.Actor{UserID: uuid.New(), Role: entity.RoleAgent}

	direct := &entity.Notification{RecipientID: &customer.UserID, Category: entity.NotificationCategoryPayment, Title: "Payment verified", Message: "Receipt RCP-2026-00001"}
	broadcast := &entity.Notification{RecipientRole: entity.RoleAgent, Category: entity.NotificationCategoryAppointment, Title: "New appointment request", Message: "Tuesday 09:00"}
	require.NoError(t, repo.Create(db, direct))
	require.NoError(t, repo.Create(db, broadcast))

	mine, err := inbox.ListMine(ctx, customer)
	require.NoError(t, err)
	require.Equal(t, 1, mine.Total)
	assert.Equal(t, "Payment verified", mine.Notifications[0].Title)

	agents, err := inbox.ListMine(ctx, agent)
	require.NoError(t, err)
	require.Equal(t, 1, agents.Total)
	assert.Equal(t, "New appointment request", agents.Notifications[0].Title)

	assert.ErrorIs(t, inbox.MarkRead(ctx, agent, direct.ID), usecase.ErrNotificationNotFound, "someone else's notification")
	require.NoError(t, inbox.MarkRead(ctx, customer, direct.ID))
	assert.ErrorIs(t, inbox.MarkRead(ctx, customer, direct.ID), usecase.ErrNotificationNotFound, "already read")

	mine, err = inbox.ListMine(ctx, customer)
	require.NoError(t, err)
	require.Len(t, mine.Notifications, 1)
	assert.NotNil(t, mine.Notifications[0].ReadAt)
}

func TestAuditLogUsecase(t *testing.T) {
	db := testutil.OpenDB(t)
	log, _ := testutil.NewLogger()
	repo := repository.NewAuditLogRepository()
	logs := usecase.NewAuditLogUsecase(db, log, repo)
	ctx := context.Background()

	admin := entity.Actor{UserID: uuid.New(), Role: entity.RoleAdmin}
	projectID := uuid.NewString()
	for _, action := range []string{entity.AuditActionProjectCreate, entity.AuditActionProjectAdvance, entity.AuditActionProjectCancel} {
		require.NoError(t, repo.Create(db, &entity.AuditLog{
			ActorID:    &admin.UserID,
			ActorRole:  admin.Role,
			Action:     action,
			TargetType: entity.AuditTargetProject,
			TargetID:   projectID,
		}))
	}
	require.NoError(t, repo.Create(db, &entity.AuditLog{
		Action:     entity.AuditActionAppointmentRequest,
		TargetType: entity.AuditTargetAppointment,
		TargetID:   uuid.NewString(),
	}))

	_, err := logs.GetAllAuditLogs(ctx, entity.Actor{UserID: uuid.New(), Role: entity.RoleEngineer}, nil)
	assert.ErrorIs(t, err, usecase.ErrForbidden)

	all, err := logs.GetAllAuditLogs(ctx, admin, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, all.Total)

	forProject, err := logs.GetAllAuditLogs(ctx, admin, &dto.AuditLogFilterRequest{TargetType: entity.AuditTargetProject, TargetID: projectID, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, forProject.Total)

	one, err := logs.GetAuditLog(ctx, admin, forProject.Logs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, projectID, one.TargetID)

	_, err = logs.GetAuditLog(ctx, admin, 9999)
	assert.ErrorIs(t, err, usecase.ErrAuditLogNotFound)
}

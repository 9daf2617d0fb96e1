// Package testutil holds the sqlite database and recording fakes shared by
// package tests.
package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"fabrication-workflow/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Models lists every table the workflow persists
func Models() []interface{} {
	return []interface{}{
		&entity.User{},
		&entity.Appointment{},
		&entity.ReservationHold{},
		&entity.VisitIntake{},
		&entity.Project{},
		&entity.ProjectAssignment{},
		&entity.Blueprint{},
		&entity.PaymentPlan{},
		&entity.PaymentStage{},
		&entity.Payment{},
		&entity.ReceiptSequence{},
		&entity.FabricationUpdate{},
		&entity.Notification{},
		&entity.AuditLog{},
	}
}

// OpenDB returns a migrated file-backed sqlite database private to the test.
// Transactions begin IMMEDIATE so concurrent writers queue on the busy
// timeout instead of failing.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?_busy_timeout=10000&_txlock=immediate&_journal_mode=WAL",
		filepath.Join(t.TempDir(), "workflow.db"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(Models()...))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

// NewLogger discards output but keeps entries for assertions
func NewLogger() (*logrus.Logger, *test.Hook) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return log, hook
}

// CreateUser inserts an active user holding role
func CreateUser(t *testing.T, db *gorm.DB, role string) *entity.User {
	t.Helper()
	id := uuid.New()
	user := &entity.User{
		ID:       id,
		Email:    fmt.Sprintf("%s-%s@example.com", role, id.String()[:8]),
		FullName: role + " " + id.String()[:8],
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// ActorFor is the authenticated identity of user
func ActorFor(user *entity.User) entity.Actor {
	return entity.Actor{UserID: user.ID, Role: user.Role}
}

// AuditSpy records audit events in memory
type AuditSpy struct {
	mu     sync.Mutex
	events []entity.AuditEvent
}

func (s *AuditSpy) Record(_ context.Context, ev entity.AuditEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, ev)
}

func (s *AuditSpy) Events() []entity.AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.AuditEvent(nil), s.events...)
}

// Count returns how many events carry action
func (s *AuditSpy) Count(action string) int {
	n := 0
	for _, ev := range s.Events() {
		if ev.Action == action {
			n++
		}
	}
	return n
}

// NotifierSpy records notifications in memory
type NotifierSpy struct {
	mu            sync.Mutex
	notifications []entity.Notification
}

func (s *NotifierSpy) Notify(_ context.Context, n entity.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
}

func (s *NotifierSpy) All() []entity.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]entity.Notification(nil), s.notifications...)
}

// ForUser returns the notifications addressed to userID
func (s *NotifierSpy) ForUser(userID uuid.UUID) []entity.Notification {
	var out []entity.Notification
	for _, n := range s.All() {
		if n.RecipientID != nil && *n.RecipientID == userID {
			out = append(out, n)
		}
	}
	return out
}

// ForRole returns the notifications broadcast to role
func (s *NotifierSpy) ForRole(role string) []entity.Notification {
	var out []entity.Notification
	for _, n := range s.All() {
		if n.RecipientRole == role {
			out = append(out, n)
		}
	}
	return out
}

// Clock is a settable time source
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock(now time.Time) *Clock {
	return &Clock{now: now.UTC()}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

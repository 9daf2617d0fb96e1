package repository_test

import (
	"errors"
	"fmt"
	"testing"

	"fabrication-workflow/internal/domain/entity"
	"fabrication-workflow/internal/repository"
	"fabrication-workflow/internal/testutil"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestReceiptSequence_CountsPerYear(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := repository.NewReceiptSequenceRepository()

	next := func(year int) int {
		var n int
		require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
			var err error
			n, err = repo.Next(tx, year)
			return err
		}))
		return n
	}

	assert.Equal(t, 1, next(2026))
	assert.Equal(t, 2, next(2026))
	assert.Equal(t, 1, next(2027))
	assert.Equal(t, 3, next(2026))
}

func TestReceiptSequence_RolledBackNumberIsReused(t *testing.T) {
	db := testutil.OpenDB(t)
	repo := repository.NewReceiptSequenceRepository()
	abort := errors.New("abort")

	err := db.Transaction(func(tx *gorm.DB) error {
		n, err := repo.Next(tx, 2026)
		require.NoError(t, err)
		require.Equal(t, 1, n)
		return abort
	})
	require.ErrorIs(t, err, abort)

	n, err := repo.Next(db, 2026)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestIsDuplicateKeyError(t *testing.T) {
	db := testutil.OpenDB(t)
	projectRepo := repository.NewProjectRepository()

	customer := testutil.CreateUser(t, db, entity.RoleCustomer)
	appointmentID := uuid.New()
	first := &entity.Project{CustomerID: customer.ID, AppointmentID: appointmentID, IntakeID: uuid.New(), Title: "Gate", Status: entity.ProjectStatusSubmitted}
	require.NoError(t, projectRepo.Create(db, first))

	dup := &entity.Project{CustomerID: customer.ID, AppointmentID: appointmentID, IntakeID: uuid.New(), Title: "Gate again", Status: entity.ProjectStatusSubmitted}
	err := projectRepo.Create(db, dup)
	require.Error(t, err)
	assert.True(t, repository.IsDuplicateKeyError(err, "idx_projects_appointment"))

	tests := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{"nil", nil, "", false},
		{"unrelated", errors.New("connection reset"), "", false},
		{"gorm duplicate", fmt.Errorf("create: %w", gorm.ErrDuplicatedKey), "any", true},
		{"postgres unique on the named index", &pgconn.PgError{Code: "23505", ConstraintName: "idx_reservation_holds_key"}, "idx_reservation_holds_key", true},
		{"postgres unique on another index", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}, "idx_reservation_holds_key", false},
		{"postgres unique without constraint filter", &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}, "", true},
		{"postgres foreign key", &pgconn.PgError{Code: "23503"}, "", false},
		{"sqlite message", errors.New("UNIQUE constraint failed: reservation_holds.hold_date"), "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, repository.IsDuplicateKeyError(tt.err, tt.constraint))
		})
	}
}

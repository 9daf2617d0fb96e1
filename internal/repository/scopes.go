package repository

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// notDeleted hides soft-deleted rows. Applied explicitly by every read on
// tables that carry a deleted_at column.
func notDeleted(db *gorm.DB) *gorm.DB {
	return db.Where("deleted_at IS NULL")
}

// IsDuplicateKeyError checks if err is a unique violation. constraintName narrows
// the match when the driver reports it; translated errors match any constraint.
func IsDuplicateKeyError(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// PostgreSQL error code 23505 = unique_violation
		return pgErr.Code == "23505" &&
			(constraintName == "" || strings.Contains(strings.ToLower(pgErr.ConstraintName), strings.ToLower(constraintName)))
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func first[T any](db *gorm.DB) (*T, error) {
	var out T
	err := db.First(&out).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

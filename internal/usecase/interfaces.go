package usecase

import (
	"context"
	"time"

	"fabrication-workflow/internal/domain/entity"

	"github.com/google/uuid"
)

// Notifier delivers in-app notifications. Fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, n entity.Notification)
}

// AuditRecorder receives one record per state-changing operation. Fire-and-forget.
type AuditRecorder interface {
	Record(ctx context.Context, ev entity.AuditEvent)
}

// FeeCalculator prices a site visit from the office to the customer's pin
type FeeCalculator interface {
	ComputeDistanceAndFee(ctx context.Context, origin, dest entity.Coordinates) (*entity.FeeQuote, error)
}

// ObjectStorage issues time-limited references to stored files
type ObjectStorage interface {
	PresignPut(ctx context.Context, key, contentType string, expiry time.Duration) (string, error)
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// AvailabilityProvider answers working-calendar questions
type AvailabilityProvider interface {
	IsHoliday(ctx context.Context, date time.Time) (bool, error)
	IsStaffAvailable(ctx context.Context, staffID uuid.UUID, date time.Time) (bool, error)
}

package service

import (
	"context"
	"fmt"
	"time"

	"fabrication-workflow/internal/domain/entity"
	"fabrication-workflow/internal/domain/repository"
	repoImpl "fabrication-workflow/internal/repository"
	"fabrication-workflow/pkg/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrSlotLocked   = apperror.Conflict("slot_locked", "This time slot is already reserved for the selected staff member")
	ErrHoldNotFound = apperror.NotFound("hold_not_found", "Reservation hold not found")
)

// DefaultHoldTTL is how long an unconfirmed hold blocks its key
const DefaultHoldTTL = 5 * time.Minute

// ReservationService guarantees at most one live hold per (date, slot, staff).
//
// The unique index on reservation_holds is the race-breaker: two writers
// inserting the same key cannot both commit. Expiry of unconfirmed holds is
// emulated by comparing expires_at on write, plus a periodic sweep.
//
// Every method takes the caller's transaction so the hold change commits or
// rolls back together with the appointment change that needed it.
type ReservationService struct {
	log      *logrus.Logger
	holdRepo repository.ReservationHoldRepository
	ttl      time.Duration
	now      func() time.Time
}

func NewReservationService(log *logrus.Logger, holdRepo repository.ReservationHoldRepository, ttl time.Duration) *ReservationService {
	if ttl <= 0 {
		ttl = DefaultHoldTTL
	}
	return &ReservationService{
		log:      log,
		holdRepo: holdRepo,
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the time source
func (s *ReservationService) SetClock(now func() time.Time) {
	s.now = func() time.Time { return now().UTC() }
}

func (s *ReservationService) Now() time.Time {
	return s.now()
}

// TentativelyHold claims key for holderID until the TTL elapses.
// A live hold by someone else yields ErrSlotLocked. A live unconfirmed hold
// by the same holder is extended and returned.
func (s *ReservationService) TentativelyHold(ctx context.Context, tx *gorm.DB, key entity.HoldKey, holderID uuid.UUID) (*entity.ReservationHold, error) {
	db := tx.WithContext(ctx)
	now := s.now()
	expiresAt := now.Add(s.ttl)

	existing, err := s.holdRepo.FindByKey(db, key)
	if err != nil {
		s.log.Warnf("Failed to find hold %s/%s/%s: %+v", key.DateString(), key.SlotCode, key.StaffID, err)
		return nil, err
	}

	if existing != nil {
		if existing.IsLive(now) {
			if existing.Confirmed || existing.HolderID != holderID {
				return nil, ErrSlotLocked
			}
			if err := s.holdRepo.RefreshExpiry(db, existing.ID, expiresAt); err != nil {
				s.log.Warnf("Failed to refresh hold %s: %+v", existing.ID, err)
				return nil, err
			}
			existing.ExpiresAt = &expiresAt
			return existing, nil
		}

		if _, err := s.holdRepo.DeleteExpiredByKey(db, key, now); err != nil {
			s.log.Warnf("Failed to reclaim expired hold %s: %+v", existing.ID, err)
			return nil, err
		}
	}

	hold := &entity.ReservationHold{
		HoldDate:  key.DateString(),
		SlotCode:  key.SlotCode,
		StaffID:   key.StaffID,
		HolderID:  holderID,
		ExpiresAt: &expiresAt,
	}
	if err := s.holdRepo.Create(db, hold); err != nil {
		if repoImpl.IsDuplicateKeyError(err, "idx_reservation_holds_key") {
			return nil, ErrSlotLocked
		}
		s.log.Warnf("Failed to create hold %s/%s/%s: %+v", key.DateString(), key.SlotCode, key.StaffID, err)
		return nil, err
	}

	s.log.Debugf("Hold taken: %s %s staff=%s holder=%s until %s", hold.HoldDate, hold.SlotCode, hold.StaffID, holderID, expiresAt.Format(time.RFC3339))
	return hold, nil
}

// Confirm makes the hold on key permanent and links it to appointmentID
func (s *ReservationService) Confirm(ctx context.Context, tx *gorm.DB, key entity.HoldKey, appointmentID uuid.UUID) error {
	affected, err := s.holdRepo.Confirm(tx.WithContext(ctx), key, appointmentID)
	if err != nil {
		s.log.Warnf("Failed to confirm hold %s/%s/%s: %+v", key.DateString(), key.SlotCode, key.StaffID, err)
		return err
	}
	if affected == 0 {
		return ErrHoldNotFound
	}
	return nil
}

// HoldAndConfirm takes key for appointmentID in one step
func (s *ReservationService) HoldAndConfirm(ctx context.Context, tx *gorm.DB, key entity.HoldKey, holderID, appointmentID uuid.UUID) error {
	if _, err := s.TentativelyHold(ctx, tx, key, holderID); err != nil {
		return err
	}
	return s.Confirm(ctx, tx, key, appointmentID)
}

// Release frees key. Releasing a key nobody holds is a no-op.
func (s *ReservationService) Release(ctx context.Context, tx *gorm.DB, key entity.HoldKey) error {
	affected, err := s.holdRepo.DeleteByKey(tx.WithContext(ctx), key)
	if err != nil {
		s.log.Warnf("Failed to release hold %s/%s/%s: %+v", key.DateString(), key.SlotCode, key.StaffID, err)
		return err
	}
	if affected > 0 {
		s.log.Debugf("Hold released: %s %s staff=%s", key.DateString(), key.SlotCode, key.StaffID)
	}
	return nil
}

// IsHeld reports whether a live hold currently blocks key
func (s *ReservationService) IsHeld(ctx context.Context, db *gorm.DB, key entity.HoldKey) (bool, error) {
	hold, err := s.holdRepo.FindByKey(db.WithContext(ctx), key)
	if err != nil {
		return false, err
	}
	return hold != nil && hold.IsLive(s.now()), nil
}

// HeldSlots returns the slot codes a staff member cannot take on date
func (s *ReservationService) HeldSlots(ctx context.Context, db *gorm.DB, staffID uuid.UUID, date time.Time) (map[string]bool, error) {
	holds, err := s.holdRepo.FindByStaffAndDate(db.WithContext(ctx), staffID, date)
	if err != nil {
		return nil, err
	}
	now := s.now()
	held := make(map[string]bool, len(holds))
	for i := range holds {
		if holds[i].IsLive(now) {
			held[holds[i].SlotCode] = true
		}
	}
	return held, nil
}

// SweepExpired deletes every unconfirmed hold past its expiry
func (s *ReservationService) SweepExpired(ctx context.Context, db *gorm.DB) (int64, error) {
	deleted, err := s.holdRepo.DeleteExpired(db.WithContext(ctx), s.now())
	if err != nil {
		return 0, fmt.Errorf("sweep expired holds: %w", err)
	}
	return deleted, nil
}

package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fabrication-workflow/internal/domain/entity"
	"fabrication-workflow/internal/repository"
	"fabrication-workflow/internal/service"
	"fabrication-workflow/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var holdDay = time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)

func newReservation(t *testing.T) (*service.ReservationService, *gorm.DB, *testutil.Clock) {
	t.Helper()
	db := testutil.OpenDB(t)
	log, _ := testutil.NewLogger()
	clock := testutil.NewClock(time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC))
	svc := service.NewReservationService(log, repository.NewReservationHoldRepository(), 5*time.Minute)
	svc.SetClock(clock.Now)
	return svc, db, clock
}

func key(slot string, staffID uuid.UUID) entity.HoldKey {
	return entity.HoldKey{Date: holdDay, SlotCode: slot, StaffID: staffID}
}

func TestTentativelyHold_ConcurrentClaimsHaveOneWinner(t *testing.T) {
	svc, db, _ := newReservation(t)
	ctx := context.Background()
	k := key("09:00", uuid.New())

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		won     int
		locked  int
		unknown []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := db.Transaction(func(tx *gorm.DB) error {
				_, err := svc.TentativelyHold(ctx, tx, k, uuid.New())
				return err
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				won++
			case errors.Is(err, service.ErrSlotLocked):
				locked++
			default:
				unknown = append(unknown, err)
			}
		}()
	}
	wg.Wait()

	require.Empty(t, unknown)
	assert.Equal(t, 1, won)
	assert.Equal(t, workers-1, locked)

	var count int64
	require.NoError(t, db.Model(&entity.ReservationHold{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestTentativelyHold_SameHolderExtends(t *testing.T) {
	svc, db, clock := newReservation(t)
	ctx := context.Background()
	k := key("10:00", uuid.New())
	holder := uuid.New()

	first, err := svc.TentativelyHold(ctx, db, k, holder)
	require.NoError(t, err)

	clock.Advance(3 * time.Minute)
	again, err := svc.TentativelyHold(ctx, db, k, holder)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.True(t, again.ExpiresAt.After(*first.ExpiresAt))

	// past the first expiry but inside the refreshed one
	clock.Advance(3 * time.Minute)
	held, err := svc.IsHeld(ctx, db, k)
	require.NoError(t, err)
	assert.True(t, held)
}

func TestTentativelyHold_ExpiredHoldIsReclaimed(t *testing.T) {
	svc, db, clock := newReservation(t)
	ctx := context.Background()
	k := key("11:00", uuid.New())

	_, err := svc.TentativelyHold(ctx, db, k, uuid.New())
	require.NoError(t, err)

	_, err = svc.TentativelyHold(ctx, db, k, uuid.New())
	assert.ErrorIs(t, err, service.ErrSlotLocked)

	clock.Advance(6 * time.Minute)
	held, err := svc.IsHeld(ctx, db, k)
	require.NoError(t, err)
	assert.False(t, held)

	newHolder := uuid.New()
	hold, err := svc.TentativelyHold(ctx, db, k, newHolder)
	require.NoError(t, err)
	assert.Equal(t, newHolder, hold.HolderID)
}

func TestConfirm(t *testing.T) {
	svc, db, clock := newReservation(t)
	ctx := context.Background()
	staff := uuid.New()
	appointmentID := uuid.New()

	t.Run("without hold", func(t *testing.T) {
		err := svc.Confirm(ctx, db, key("13:00", staff), appointmentID)
		assert.ErrorIs(t, err, service.ErrHoldNotFound)
	})

	t.Run("confirmed hold never expires", func(t *testing.T) {
		k := key("14:00", staff)
		holder := uuid.New()
		require.NoError(t, svc.HoldAndConfirm(ctx, db, k, holder, appointmentID))

		clock.Advance(24 * time.Hour)
		held, err := svc.IsHeld(ctx, db, k)
		require.NoError(t, err)
		assert.True(t, held)

		// not even by the original holder
		_, err = svc.TentativelyHold(ctx, db, k, holder)
		assert.ErrorIs(t, err, service.ErrSlotLocked)

		swept, err := svc.SweepExpired(ctx, db)
		require.NoError(t, err)
		assert.Zero(t, swept)
	})
}

func TestRelease(t *testing.T) {
	svc, db, _ := newReservation(t)
	ctx := context.Background()
	k := key("15:00", uuid.New())

	require.NoError(t, svc.Release(ctx, db, k), "releasing a free key is a no-op")

	require.NoError(t, svc.HoldAndConfirm(ctx, db, k, uuid.New(), uuid.New()))
	require.NoError(t, svc.Release(ctx, db, k))

	held, err := svc.IsHeld(ctx, db, k)
	require.NoError(t, err)
	assert.False(t, held)

	_, err = svc.TentativelyHold(ctx, db, k, uuid.New())
	assert.NoError(t, err)
}

func TestReleaseRollsBackWithTransaction(t *testing.T) {
	svc, db, _ := newReservation(t)
	ctx := context.Background()
	k := key("16:00", uuid.New())
	require.NoError(t, svc.HoldAndConfirm(ctx, db, k, uuid.New(), uuid.New()))

	rollback := errors.New("abort")
	err := db.Transaction(func(tx *gorm.DB) error {
		require.NoError(t, svc.Release(ctx, tx, k))
		return rollback
	})
	require.ErrorIs(t, err, rollback)

	held, err := svc.IsHeld(ctx, db, k)
	require.NoError(t, err)
	assert.True(t, held)
}

func TestHeldSlotsAndSweep(t *testing.T) {
	svc, db, clock := newReservation(t)
	ctx := context.Background()
	staff := uuid.New()

	require.NoError(t, svc.HoldAndConfirm(ctx, db, key("09:00", staff), uuid.New(), uuid.New()))
	_, err := svc.TentativelyHold(ctx, db, key("10:00", staff), uuid.New())
	require.NoError(t, err)
	_, err = svc.TentativelyHold(ctx, db, key("09:00", uuid.New()), uuid.New())
	require.NoError(t, err)

	held, err := svc.HeldSlots(ctx, db, staff, holdDay)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"09:00": true, "10:00": true}, held)

	clock.Advance(10 * time.Minute)
	held, err = svc.HeldSlots(ctx, db, staff, holdDay)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"09:00": true}, held)

	swept, err := svc.SweepExpired(ctx, db)
	require.NoError(t, err)
	assert.EqualValues(t, 2, swept)

	var remaining int64
	require.NoError(t, db.Model(&entity.ReservationHold{}).Count(&remaining).Error)
	assert.EqualValues(t, 1, remaining)
}

func TestHoldSweeper_StopIsIdempotent(t *testing.T) {
	svc, db, _ := newReservation(t)
	log, _ := testutil.NewLogger()

	sweeper := service.NewHoldSweeper(db, log, svc, 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	sweeper.Stop()
	sweeper.Stop()
}

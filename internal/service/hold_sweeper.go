package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	// DefaultSweepInterval is how often expired holds are purged
	DefaultSweepInterval = time.Minute

	sweepTimeout = 30 * time.Second
)

// HoldSweeper periodically deletes expired unconfirmed holds so the table
// does not grow with abandoned reservations. Correctness does not depend on it:
// TentativelyHold reclaims an expired key on its own.
type HoldSweeper struct {
	db          *gorm.DB
	log         *logrus.Logger
	reservation *ReservationService
	interval    time.Duration

	// Graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// NewHoldSweeper starts the background sweep goroutine.
// Call Stop() during graceful shutdown.
func NewHoldSweeper(db *gorm.DB, log *logrus.Logger, reservation *ReservationService, interval time.Duration) *HoldSweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	sw := &HoldSweeper{
		db:          db,
		log:         log,
		reservation: reservation,
		interval:    interval,
		stopChan:    make(chan struct{}),
	}

	sw.wg.Add(1)
	go sw.loop()

	return sw
}

// Stop gracefully shuts down the sweeper.
// Safe to call multiple times.
func (sw *HoldSweeper) Stop() {
	if sw.stopped.CompareAndSwap(false, true) {
		close(sw.stopChan)
		sw.wg.Wait()
		sw.log.Info("HoldSweeper stopped")
	}
}

func (sw *HoldSweeper) loop() {
	defer sw.wg.Done()

	ticker := time.NewTicker(sw.interval)
	defer ticker.Stop()

	for {
		select {
		case <-sw.stopChan:
			sw.log.Debug("Hold sweeper goroutine stopping")
			return
		case <-ticker.C:
			sw.sweep()
		}
	}
}

func (sw *HoldSweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	deleted, err := sw.reservation.SweepExpired(ctx, sw.db)
	if err != nil {
		sw.log.Warnf("Failed to sweep expired holds: %+v", err)
		return
	}
	if deleted > 0 {
		sw.log.Debugf("Swept %d expired holds", deleted)
	}
}

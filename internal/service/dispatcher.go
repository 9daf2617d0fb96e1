package service

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// dispatcher hands items to a single background worker through a bounded queue.
// A full queue drops the item; callers are never blocked.
type dispatcher[T any] struct {
	name   string
	log    *logrus.Logger
	queue  chan T
	handle func(T) error

	// Graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

func newDispatcher[T any](name string, log *logrus.Logger, size int, handle func(T) error) *dispatcher[T] {
	if size <= 0 {
		size = 100
	}
	d := &dispatcher[T]{
		name:     name,
		log:      log,
		queue:    make(chan T, size),
		handle:   handle,
		stopChan: make(chan struct{}),
	}

	d.wg.Add(1)
	go d.worker()

	return d
}

func (d *dispatcher[T]) dispatch(item T) bool {
	if d.stopped.Load() {
		d.log.Warnf("%s dispatcher stopped, dropping item", d.name)
		return false
	}
	select {
	case d.queue <- item:
		return true
	default:
		d.log.Warnf("%s queue full, dropping item", d.name)
		return false
	}
}

// stop drains whatever is already queued, then waits for the worker.
// Safe to call multiple times.
func (d *dispatcher[T]) stop() {
	if d.stopped.CompareAndSwap(false, true) {
		close(d.stopChan)
		d.wg.Wait()
		d.log.Infof("%s dispatcher stopped", d.name)
	}
}

func (d *dispatcher[T]) worker() {
	defer d.wg.Done()

	for {
		select {
		case item := <-d.queue:
			d.process(item)
		case <-d.stopChan:
			for {
				select {
				case item := <-d.queue:
					d.process(item)
				default:
					return
				}
			}
		}
	}
}

func (d *dispatcher[T]) process(item T) {
	if err := d.handle(item); err != nil {
		d.log.Errorf("Failed to process %s item: %+v", d.name, err)
	}
}

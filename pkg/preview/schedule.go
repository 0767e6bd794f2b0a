package preview

import (
	"context"
	"sync"
	"time"
)

// DefaultDebounce is the coalescing window for edits after the first preview.
const DefaultDebounce = 500 * time.Millisecond

// Timer is the subset of *time.Timer the engine needs.
type Timer interface {
	Stop() bool
}

// Scheduler runs f after d. The default uses time.AfterFunc; tests substitute
// a manual scheduler.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// debouncer keeps at most one pending call. Scheduling replaces the pending
// call; a callback that was superseded after its timer already fired is
// dropped.
type debouncer struct {
	mu    sync.Mutex
	sched Scheduler
	delay time.Duration
	timer Timer
	seq   uint64
}

func newDebouncer(sched Scheduler, delay time.Duration) *debouncer {
	if sched == nil {
		sched = realScheduler{}
	}
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &debouncer{sched: sched, delay: delay}
}

func (d *debouncer) Schedule(f func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.sched.AfterFunc(d.delay, func() {
		d.mu.Lock()
		current := seq == d.seq
		if current {
			d.timer = nil
		}
		d.mu.Unlock()
		if current {
			f()
		}
	})
}

// Stop cancels the pending call, if any.
func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// cancelSource hands out one cancelable context at a time. Starting a new one
// cancels the previous.
type cancelSource struct {
	cancel context.CancelFunc
}

func (c *cancelSource) Next() context.Context {
	c.Cancel()
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	return ctx
}

func (c *cancelSource) Cancel() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

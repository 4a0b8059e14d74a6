// Package debounce coalesces bursts of calls into single executions.
//
// A Debouncer is a small state machine with one timer slot: idle until a
// call arrives, scheduled while the quiet period runs, fired when the
// wrapped function executes. Each call while scheduled abandons the old
// timer and starts a fresh quiet period, so only the last call of a burst
// runs. The Immediate option adds a leading edge: a call arriving outside
// the quiet window runs at once, and Queue controls whether calls inside
// the window still schedule a trailing run.
package debounce

import (
	"sync"
	"time"
)

// DefaultWait is the quiet period used when Options.Wait is zero.
const DefaultWait = 3 * time.Second

// Options configures a Debouncer.
type Options struct {
	// Wait is the quiet period a trailing run waits out. Zero means
	// DefaultWait.
	Wait time.Duration

	// Immediate runs a call on the leading edge when the last execution
	// is at least Wait in the past.
	Immediate bool

	// Queue keeps scheduling trailing runs for calls that arrive inside
	// an Immediate debouncer's quiet window. Without it those calls are
	// dropped. Ignored unless Immediate is set.
	Queue bool
}

// Debouncer coalesces calls to Do. The zero value is not usable; construct
// with New.
type Debouncer struct {
	wait      time.Duration
	immediate bool
	queue     bool

	mu        sync.Mutex
	gen       uint64
	timer     *time.Timer
	lastFired time.Time
}

// New returns a Debouncer with the given options.
func New(opts Options) *Debouncer {
	if opts.Wait <= 0 {
		opts.Wait = DefaultWait
	}
	return &Debouncer{
		wait:      opts.Wait,
		immediate: opts.Immediate,
		queue:     opts.Queue,
	}
}

// Do requests an execution of fn. In a burst of calls only the last fn
// runs, after the quiet period; an Immediate debouncer runs the first call
// synchronously on the caller's goroutine instead.
func (d *Debouncer) Do(fn func()) {
	d.mu.Lock()
	now := time.Now()

	if d.immediate && now.Sub(d.lastFired) >= d.wait {
		d.lastFired = now
		d.stopLocked()
		d.mu.Unlock()
		fn()
		return
	}

	d.stopLocked()
	if d.immediate && !d.queue {
		d.mu.Unlock()
		return
	}

	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.wait, func() { d.fire(gen, fn) })
	d.mu.Unlock()
}

// Pending reports whether a trailing run is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop abandons any scheduled run. Further calls to Do work normally.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopLocked()
	d.mu.Unlock()
}

// stopLocked clears the timer slot. A timer callback that already started
// will find a stale generation and give up.
func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

func (d *Debouncer) fire(gen uint64, fn func()) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.lastFired = time.Now()
	d.mu.Unlock()

	fn()
}

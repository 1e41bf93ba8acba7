package editing

import (
	"time"

	"tableflip.dev/dbgrid/pkg/grid/clock"
)

// DefaultDelay is the quiet period before a debounced commit.
const DefaultDelay = 300 * time.Millisecond

// Debouncer runs fn once the trigger has been quiet for delay. It holds at
// most one timer; every Trigger replaces it.
type Debouncer struct {
	clock clock.Clock
	delay time.Duration
	fn    func()

	timer clock.Timer
	gen   uint64
}

// NewDebouncer returns a trailing-edge debouncer for fn.
func NewDebouncer(c clock.Clock, delay time.Duration, fn func()) *Debouncer {
	if c == nil {
		c = clock.Real()
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{clock: c, delay: delay, fn: fn}
}

// Trigger (re)starts the quiet period.
func (d *Debouncer) Trigger() {
	d.stop()
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() {
		// A timer that lost a race with Stop or a newer Trigger is ignored.
		if d.timer == nil || gen != d.gen {
			return
		}
		d.timer = nil
		d.fn()
	})
}

// Flush runs fn now if a call is pending and reports whether it did.
func (d *Debouncer) Flush() bool {
	if !d.Cancel() {
		return false
	}
	d.fn()
	return true
}

// Cancel drops the pending call, if any.
func (d *Debouncer) Cancel() bool {
	if d.timer == nil {
		return false
	}
	d.stop()
	return true
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	return d.timer != nil
}

func (d *Debouncer) stop() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
		d.gen++
	}
}

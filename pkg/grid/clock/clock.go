// Package clock is the timer seam used by the grid engine. Debounced commits
// and scroll settling take a Clock so tests can drive time by hand.
package clock

import (
	"sync/atomic"
	"time"
)

// Clock creates cancellable one-shot timers.
type Clock interface {
	Now() time.Time
	// AfterFunc calls f once d has elapsed unless the returned Timer is
	// stopped first.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending AfterFunc call.
type Timer interface {
	// Stop cancels the call. It reports whether the call was still pending.
	Stop() bool
}

// Real returns a Clock backed by the time package. Callbacks run on their own
// goroutine; wrap it with Dispatched to run them on an event loop.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Dispatched wraps c so that timer callbacks are handed to dispatch instead
// of running on the timer goroutine. A Bubble Tea program passes a func that
// sends a message carrying the callback back into Update.
//
// A callback that was already handed to dispatch when Stop is called is
// dropped when it eventually runs.
func Dispatched(c Clock, dispatch func(func())) Clock {
	return dispatchedClock{inner: c, dispatch: dispatch}
}

type dispatchedClock struct {
	inner    Clock
	dispatch func(func())
}

func (d dispatchedClock) Now() time.Time { return d.inner.Now() }

func (d dispatchedClock) AfterFunc(dur time.Duration, f func()) Timer {
	t := &dispatchedTimer{}
	t.inner = d.inner.AfterFunc(dur, func() {
		d.dispatch(func() {
			if t.stopped.Load() {
				return
			}
			t.fired.Store(true)
			f()
		})
	})
	return t
}

type dispatchedTimer struct {
	inner   Timer
	stopped atomic.Bool
	fired   atomic.Bool
}

func (t *dispatchedTimer) Stop() bool {
	if t.fired.Load() || t.stopped.Swap(true) {
		return false
	}
	t.inner.Stop()
	return true
}

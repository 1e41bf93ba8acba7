package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeAdvanceFiresInOrder(t *testing.T) {
	c := Fake(epoch)
	var got []string
	c.AfterFunc(200*time.Millisecond, func() { got = append(got, "b") })
	c.AfterFunc(100*time.Millisecond, func() { got = append(got, "a") })
	c.AfterFunc(time.Second, func() { got = append(got, "late") })

	c.Advance(250 * time.Millisecond)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("unexpected fire order %v", got)
	}
	if c.Pending() != 1 {
		t.Fatalf("expected 1 pending timer, got %d", c.Pending())
	}
	if !c.Now().Equal(epoch.Add(250 * time.Millisecond)) {
		t.Fatalf("clock at %v", c.Now())
	}
}

func TestFakeStop(t *testing.T) {
	c := Fake(epoch)
	fired := false
	tm := c.AfterFunc(time.Millisecond, func() { fired = true })
	if !tm.Stop() {
		t.Fatalf("Stop on pending timer should report true")
	}
	if tm.Stop() {
		t.Fatalf("second Stop should report false")
	}
	c.Advance(time.Second)
	if fired {
		t.Fatalf("stopped timer fired")
	}
}

func TestFakeCallbackSchedulesWithinWindow(t *testing.T) {
	c := Fake(epoch)
	var at []time.Duration
	c.AfterFunc(10*time.Millisecond, func() {
		at = append(at, c.Now().Sub(epoch))
		c.AfterFunc(10*time.Millisecond, func() {
			at = append(at, c.Now().Sub(epoch))
		})
	})
	c.Advance(25 * time.Millisecond)
	if len(at) != 2 || at[0] != 10*time.Millisecond || at[1] != 20*time.Millisecond {
		t.Fatalf("unexpected fire times %v", at)
	}
}

func TestFakeCallbackStopsSibling(t *testing.T) {
	c := Fake(epoch)
	fired := false
	var second Timer
	c.AfterFunc(time.Millisecond, func() { second.Stop() })
	second = c.AfterFunc(2*time.Millisecond, func() { fired = true })
	c.Advance(time.Second)
	if fired {
		t.Fatalf("timer stopped by an earlier callback still fired")
	}
}

func TestDispatchedRunsThroughDispatch(t *testing.T) {
	c := Fake(epoch)
	var queued []func()
	d := Dispatched(c, func(f func()) { queued = append(queued, f) })

	fired := 0
	d.AfterFunc(time.Millisecond, func() { fired++ })
	c.Advance(time.Millisecond)
	if fired != 0 || len(queued) != 1 {
		t.Fatalf("callback should be queued, fired=%d queued=%d", fired, len(queued))
	}
	queued[0]()
	if fired != 1 {
		t.Fatalf("dispatched callback did not run")
	}
}

func TestDispatchedStopAfterHandoff(t *testing.T) {
	c := Fake(epoch)
	var queued []func()
	d := Dispatched(c, func(f func()) { queued = append(queued, f) })

	fired := false
	tm := d.AfterFunc(time.Millisecond, func() { fired = true })
	c.Advance(time.Millisecond)
	if !tm.Stop() {
		t.Fatalf("Stop before the dispatched callback ran should report true")
	}
	queued[0]()
	if fired {
		t.Fatalf("stopped callback ran after handoff")
	}
}

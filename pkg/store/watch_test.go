package store

import (
	"context"
	"testing"
	"time"
)

func TestPersistenceWatchEmitsTableChanges(t *testing.T) {
	p := newTestPersistence(t)
	if err := p.CreateTable(usersTable()); err != nil {
		t.Fatalf("create table: %v", err)
	}
	if _, err := p.Insert(context.Background(), "users", map[string]any{"name": "seed"}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := p.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	// Allow watcher goroutine to subscribe to directories before writing.
	time.Sleep(50 * time.Millisecond)

	if err := p.Put("users", Record{ID: 1, Values: map[string]any{"name": "changed"}}); err != nil {
		t.Fatalf("put: %v", err)
	}

	deadline := time.After(2 * time.Second)
	for {
		select {
		case evt := <-ch:
			if evt.Type == EventTablesInvalidated {
				return
			}
			if evt.Table != "users" {
				t.Fatalf("expected table 'users', got %q", evt.Table)
			}
			return
		case <-deadline:
			t.Fatal("timed out waiting for table change event")
		}
	}
}

func TestWatchClosesOnCancel(t *testing.T) {
	p := newTestPersistence(t)
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := p.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	cancel()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel not closed after cancel")
		}
	}
}

func TestEventThrottleCoalesces(t *testing.T) {
	got := make(chan Event, 8)
	th := newEventThrottle(10*time.Millisecond, func(ev Event) { got <- ev })
	defer th.Stop()
	for range 5 {
		th.Enqueue(Event{Type: EventTableChanged, Table: "a"})
	}
	th.Enqueue(Event{Type: EventTableChanged, Table: "b"})

	var events []Event
	deadline := time.After(2 * time.Second)
	for len(events) < 2 {
		select {
		case ev := <-got:
			events = append(events, ev)
		case <-deadline:
			t.Fatalf("timed out, got %v", events)
		}
	}
	if events[0].Table != "a" || events[1].Table != "b" {
		t.Fatalf("events = %v", events)
	}
	select {
	case ev := <-got:
		t.Fatalf("unexpected extra event %v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType describes a storage change notification.
type EventType int

const (
	// EventTableChanged means rows or the schema of Table changed.
	EventTableChanged EventType = iota

	// EventTablesInvalidated means the set of tables may have changed and
	// callers should reload everything.
	EventTablesInvalidated
)

func (t EventType) String() string {
	if t == EventTablesInvalidated {
		return "tables-invalidated"
	}
	return "table-changed"
}

// Event is emitted by Persistence.Watch.
type Event struct {
	Type  EventType
	Table string
}

const watchThrottle = 100 * time.Millisecond

// Watch streams change events until ctx is cancelled. Bursts of writes are
// coalesced into one event per table. The channel is closed once ctx is done
// or the watcher fails.
func (p *persistence) Watch(ctx context.Context) (<-chan Event, error) {
	if err := os.MkdirAll(p.basePath, 0o755); err != nil {
		return nil, fmt.Errorf("store: ensure base path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("store: create watcher: %w", err)
	}

	dirs, err := collectDirs(p.basePath)
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("store: enumerate directories: %w", err)
	}
	watched := make(map[string]struct{}, len(dirs))
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("store: watch %s: %w", dir, err)
		}
		watched[dir] = struct{}{}
	}

	events := make(chan Event, 64)
	throttle := newEventThrottle(watchThrottle, func(ev Event) {
		select {
		case events <- ev:
		default:
			// The consumer is behind; its next reload picks the change up.
		}
	})

	go func() {
		defer close(events)
		defer watcher.Close()
		defer throttle.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				throttle.Enqueue(Event{Type: EventTablesInvalidated})
			case evt, ok := <-watcher.Events:
				if !ok {
					return
				}
				if evt.Op&fsnotify.Create == fsnotify.Create {
					if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
						// New table or its rows directory: watch it and everything below.
						sub, _ := collectDirs(evt.Name)
						for _, dir := range sub {
							if _, found := watched[dir]; found {
								continue
							}
							if err := watcher.Add(dir); err == nil {
								watched[dir] = struct{}{}
							}
						}
						throttle.Enqueue(Event{Type: EventTablesInvalidated})
						continue
					}
				}
				table := p.tableForPath(evt.Name)
				if table == "" {
					throttle.Enqueue(Event{Type: EventTablesInvalidated})
					continue
				}
				throttle.Enqueue(Event{Type: EventTableChanged, Table: table})
			}
		}
	}()

	return events, nil
}

// collectDirs walks base and returns it and every directory below it.
func collectDirs(base string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			dirs = append(dirs, filepath.Clean(path))
		}
		return nil
	})
	return dirs, err
}

// tableForPath derives the table from a diskv path like <hex>/rows/<id>.
func (p *persistence) tableForPath(path string) string {
	rel, err := filepath.Rel(p.basePath, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return ""
	}
	first, _, _ := strings.Cut(rel, string(os.PathSeparator))
	name, err := fromTable(first)
	if err != nil {
		return ""
	}
	return name
}

// eventThrottle coalesces events arriving within delay of the first one.
type eventThrottle struct {
	mu      sync.Mutex
	delay   time.Duration
	send    func(Event)
	timer   *time.Timer
	pending map[Event]struct{}
	order   []Event
}

func newEventThrottle(delay time.Duration, send func(Event)) *eventThrottle {
	return &eventThrottle{delay: delay, send: send, pending: map[Event]struct{}{}}
}

func (t *eventThrottle) Enqueue(ev Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.pending[ev]; !ok {
		t.pending[ev] = struct{}{}
		t.order = append(t.order, ev)
	}
	if t.timer == nil {
		t.timer = time.AfterFunc(t.delay, t.flush)
	}
}

func (t *eventThrottle) flush() {
	t.mu.Lock()
	order := t.order
	t.order = nil
	t.pending = map[Event]struct{}{}
	t.timer = nil
	t.mu.Unlock()

	for _, ev := range order {
		t.send(ev)
	}
}

func (t *eventThrottle) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

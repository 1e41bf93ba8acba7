// Package store is a small keyed state container. Writes mark the store
// dirty; listeners are told about a burst of writes once, when the store's
// Scheduler runs the deferred delivery.
package store

import (
	"reflect"
)

// Store holds a value of type S. It is not safe for concurrent use; the grid
// engine runs on a single goroutine.
type Store[S any] struct {
	state     S
	scheduler Scheduler
	// own is the queue a store without a scheduler delivers through.
	own *Queue

	listeners []*listener
	nextID    int

	depth     int
	dirty     bool
	scheduled bool
	disposed  bool
}

type listener struct {
	id int
	fn func()
}

// New returns a store holding initial. A nil scheduler gives the store a
// Queue of its own that Flush runs.
func New[S any](initial S, scheduler Scheduler) *Store[S] {
	s := &Store[S]{state: initial, scheduler: scheduler}
	if scheduler == nil {
		s.own = NewQueue()
		s.scheduler = s.own
	}
	return s
}

// Flush runs the store's own queue and reports whether a notification was
// delivered. A store built with a scheduler is flushed through it instead.
func (s *Store[S]) Flush() bool {
	if s.own == nil {
		return false
	}
	return s.own.Flush() > 0
}

// State returns a copy of the current state.
func (s *Store[S]) State() S {
	return s.state
}

// Subscribe registers fn and returns a func that removes it. Listeners run in
// subscription order.
func (s *Store[S]) Subscribe(fn func()) (unsubscribe func()) {
	if s.disposed || fn == nil {
		return func() {}
	}
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, &listener{id: id, fn: fn})
	return func() {
		for i, l := range s.listeners {
			if l.id == id {
				s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
				return
			}
		}
	}
}

// Listeners returns the number of registered listeners.
func (s *Store[S]) Listeners() int {
	return len(s.listeners)
}

// Batch runs fn with delivery suppressed. Nested batches are flattened; the
// outermost one schedules a single delivery if anything changed, including
// writes made before the batch started that had not been delivered yet.
func (s *Store[S]) Batch(fn func()) {
	s.depth++
	defer func() {
		s.depth--
		if s.depth == 0 && s.dirty {
			s.schedule()
		}
	}()
	fn()
}

// Notify forces a delivery even when no key changed, e.g. after mutating
// data that lives outside the store.
func (s *Store[S]) Notify() {
	s.markDirty()
}

// Dispose drops every listener. Later writes still update the state but reach
// nobody.
func (s *Store[S]) Dispose() {
	s.disposed = true
	s.listeners = nil
}

// Disposed reports whether Dispose was called.
func (s *Store[S]) Disposed() bool {
	return s.disposed
}

func (s *Store[S]) markDirty() {
	s.dirty = true
	if s.depth > 0 {
		return
	}
	s.schedule()
}

func (s *Store[S]) schedule() {
	if s.scheduled {
		return
	}
	s.scheduled = true
	s.scheduler.Schedule(s.deliver)
}

func (s *Store[S]) deliver() {
	s.scheduled = false
	if !s.dirty {
		return
	}
	if s.depth > 0 {
		// A batch opened before the deferred delivery ran; it will reschedule
		// when it closes.
		return
	}
	s.dirty = false
	snapshot := make([]*listener, len(s.listeners))
	copy(snapshot, s.listeners)
	for _, l := range snapshot {
		if !s.subscribed(l.id) {
			continue
		}
		l.fn()
	}
}

func (s *Store[S]) subscribed(id int) bool {
	for _, l := range s.listeners {
		if l.id == id {
			return true
		}
	}
	return false
}

// Key is a typed accessor for one field of S.
type Key[S, V any] struct {
	Name  string
	field func(*S) *V
	equal func(a, b V) bool
}

// NewKey builds a key for a field. Values are compared with Identical, so
// pointers, slices and maps compare by reference and everything else with ==.
func NewKey[S, V any](name string, field func(*S) *V) Key[S, V] {
	return Key[S, V]{Name: name, field: field, equal: Identical[V]}
}

// NewKeyFunc builds a key that uses equal to detect no-op writes.
func NewKeyFunc[S, V any](name string, field func(*S) *V, equal func(a, b V) bool) Key[S, V] {
	return Key[S, V]{Name: name, field: field, equal: equal}
}

// Get reads k from s.
func Get[S, V any](s *Store[S], k Key[S, V]) V {
	return *k.field(&s.state)
}

// Set writes v to k. It reports whether the state changed; writing a value
// equal to the current one is a no-op and schedules nothing.
func Set[S, V any](s *Store[S], k Key[S, V], v V) bool {
	p := k.field(&s.state)
	if k.equal(*p, v) {
		return false
	}
	*p = v
	s.markDirty()
	return true
}

// Identical compares by reference for pointers, maps, slices, channels and
// funcs, and with == for other comparable values. Incomparable values are
// never identical.
func Identical[V any](a, b V) bool {
	av := reflect.ValueOf(&a).Elem()
	bv := reflect.ValueOf(&b).Elem()
	return identical(av, bv)
}

func identical(a, b reflect.Value) bool {
	switch a.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return a.Pointer() == b.Pointer()
	case reflect.Slice:
		return a.Pointer() == b.Pointer() && a.Len() == b.Len()
	case reflect.Interface:
		if a.IsNil() || b.IsNil() {
			return a.IsNil() && b.IsNil()
		}
		ea, eb := a.Elem(), b.Elem()
		if ea.Type() != eb.Type() {
			return false
		}
		return identical(ea, eb)
	}
	if !a.Type().Comparable() {
		return false
	}
	return a.Equal(b)
}

package store

import "sync"

// Scheduler defers a delivery until the current synchronous work is done.
type Scheduler interface {
	Schedule(fn func())
}

// SchedulerFunc adapts a func to Scheduler.
type SchedulerFunc func(fn func())

func (f SchedulerFunc) Schedule(fn func()) { f(fn) }

// Immediate runs work right away.
var Immediate Scheduler = SchedulerFunc(func(fn func()) { fn() })

// Queue is a microtask queue. Work scheduled on it runs when the host calls
// Flush, typically once per handled input event.
type Queue struct {
	mu    sync.Mutex
	tasks []func()
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Schedule(fn func()) {
	q.mu.Lock()
	q.tasks = append(q.tasks, fn)
	q.mu.Unlock()
}

// Flush runs queued tasks, including tasks queued while flushing, and
// returns how many ran.
func (q *Queue) Flush() int {
	ran := 0
	for {
		q.mu.Lock()
		tasks := q.tasks
		q.tasks = nil
		q.mu.Unlock()
		if len(tasks) == 0 {
			return ran
		}
		for _, fn := range tasks {
			fn()
			ran++
		}
	}
}

// Len reports the number of queued tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

package store

import "testing"

type testState struct {
	Count int
	Name  string
	Items []string
	Ptr   *int
}

var (
	countKey = NewKey("count", func(s *testState) *int { return &s.Count })
	nameKey  = NewKey("name", func(s *testState) *string { return &s.Name })
	itemsKey = NewKey("items", func(s *testState) *[]string { return &s.Items })
	ptrKey   = NewKey("ptr", func(s *testState) **int { return &s.Ptr })
)

func newTestStore() (*Store[testState], *Queue, *int) {
	q := NewQueue()
	s := New(testState{}, q)
	calls := 0
	s.Subscribe(func() { calls++ })
	return s, q, &calls
}

func TestSetCoalescesBurst(t *testing.T) {
	s, q, calls := newTestStore()
	for i := 1; i <= 10; i++ {
		Set(s, countKey, i)
		Set(s, nameKey, "n")
	}
	if *calls != 0 {
		t.Fatalf("delivered before flush: %d", *calls)
	}
	q.Flush()
	if *calls != 1 {
		t.Fatalf("expected 1 delivery, got %d", *calls)
	}
	if got := Get(s, countKey); got != 10 {
		t.Fatalf("count = %d", got)
	}
}

func TestSetNoOpWhenEqual(t *testing.T) {
	s, q, calls := newTestStore()
	if Set(s, countKey, 0) {
		t.Fatalf("writing the zero value should be a no-op")
	}
	q.Flush()
	if *calls != 0 {
		t.Fatalf("no-op write notified %d times", *calls)
	}
	if q.Len() != 0 {
		t.Fatalf("no-op write scheduled work")
	}
}

func TestReferenceEquality(t *testing.T) {
	s, q, calls := newTestStore()
	items := []string{"a"}
	Set(s, itemsKey, items)
	q.Flush()
	if Set(s, itemsKey, items) {
		t.Fatalf("same slice should be a no-op")
	}
	if !Set(s, itemsKey, []string{"a"}) {
		t.Fatalf("a new slice with equal content is a different reference")
	}
	a, b := 1, 1
	Set(s, ptrKey, &a)
	q.Flush()
	if !Set(s, ptrKey, &b) {
		t.Fatalf("different pointers should differ")
	}
	q.Flush()
	if *calls != 3 {
		t.Fatalf("expected 3 deliveries, got %d", *calls)
	}
}

func TestBatchDeliversOnce(t *testing.T) {
	s, q, calls := newTestStore()
	s.Batch(func() {
		Set(s, countKey, 1)
		s.Batch(func() {
			Set(s, countKey, 2)
			Set(s, nameKey, "inner")
		})
		if q.Len() != 0 {
			t.Fatalf("nested batch scheduled a delivery")
		}
		Set(s, countKey, 3)
	})
	q.Flush()
	if *calls != 1 {
		t.Fatalf("expected 1 delivery, got %d", *calls)
	}
}

func TestBatchKeepsEarlierPendingWrite(t *testing.T) {
	s, q, calls := newTestStore()
	Set(s, countKey, 1)
	s.Batch(func() {})
	Set(s, nameKey, "after")
	q.Flush()
	if *calls != 1 {
		t.Fatalf("expected 1 delivery, got %d", *calls)
	}

	Set(s, countKey, 2)
	s.Batch(func() { Set(s, nameKey, "x") })
	q.Flush()
	if *calls != 2 {
		t.Fatalf("expected 2 deliveries, got %d", *calls)
	}
}

func TestEmptyBatchIsSilent(t *testing.T) {
	s, q, calls := newTestStore()
	s.Batch(func() { Set(s, countKey, 0) })
	q.Flush()
	if *calls != 0 {
		t.Fatalf("empty batch delivered %d", *calls)
	}
}

func TestUnsubscribe(t *testing.T) {
	q := NewQueue()
	s := New(testState{}, q)
	var order []string
	unsubA := s.Subscribe(func() { order = append(order, "a") })
	s.Subscribe(func() { order = append(order, "b") })
	Set(s, countKey, 1)
	q.Flush()
	unsubA()
	Set(s, countKey, 2)
	q.Flush()
	if got := len(order); got != 3 || order[0] != "a" || order[1] != "b" || order[2] != "b" {
		t.Fatalf("unexpected delivery order %v", order)
	}
}

func TestUnsubscribeDuringDelivery(t *testing.T) {
	q := NewQueue()
	s := New(testState{}, q)
	var unsubB func()
	bCalls := 0
	s.Subscribe(func() { unsubB() })
	unsubB = s.Subscribe(func() { bCalls++ })
	Set(s, countKey, 1)
	q.Flush()
	if bCalls != 0 {
		t.Fatalf("listener removed mid-delivery still ran")
	}
}

func TestDispose(t *testing.T) {
	s, q, calls := newTestStore()
	s.Dispose()
	if s.Listeners() != 0 {
		t.Fatalf("listeners not drained")
	}
	Set(s, countKey, 5)
	q.Flush()
	if *calls != 0 {
		t.Fatalf("disposed store notified")
	}
	if Get(s, countKey) != 5 {
		t.Fatalf("disposed store should still hold writes")
	}
}

func TestDefaultQueueCoalesces(t *testing.T) {
	s := New(testState{}, nil)
	calls := 0
	s.Subscribe(func() { calls++ })
	Set(s, countKey, 1)
	Set(s, countKey, 2)
	Set(s, countKey, 3)
	if calls != 0 {
		t.Fatalf("delivered before flush: %d", calls)
	}
	if !s.Flush() || calls != 1 {
		t.Fatalf("burst delivered %d times, want 1", calls)
	}
	if s.Flush() || calls != 1 {
		t.Fatalf("second flush delivered again: %d", calls)
	}
}

func TestFlushWithHostScheduler(t *testing.T) {
	q := NewQueue()
	s := New(testState{}, q)
	calls := 0
	s.Subscribe(func() { calls++ })
	Set(s, countKey, 1)
	if s.Flush() || calls != 0 {
		t.Fatalf("store flushed a host scheduler")
	}
	q.Flush()
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestImmediateScheduler(t *testing.T) {
	s := New(testState{}, Immediate)
	calls := 0
	s.Subscribe(func() { calls++ })
	Set(s, countKey, 1)
	Set(s, countKey, 2)
	if calls != 2 {
		t.Fatalf("immediate scheduler should deliver per write, got %d", calls)
	}
	s.Batch(func() {
		Set(s, countKey, 3)
		Set(s, countKey, 4)
	})
	if calls != 3 {
		t.Fatalf("batch should deliver once, got %d", calls)
	}
}

func TestIdentical(t *testing.T) {
	m := map[string]int{}
	if !Identical(m, m) {
		t.Fatalf("same map")
	}
	if Identical(map[string]int{}, map[string]int{}) {
		t.Fatalf("distinct maps")
	}
	var x, y any = 1, 1
	if !Identical(x, y) {
		t.Fatalf("equal ints in interfaces")
	}
	var n1, n2 any
	if !Identical(n1, n2) {
		t.Fatalf("nil interfaces")
	}
	if Identical[any](1, "1") {
		t.Fatalf("different dynamic types")
	}
}

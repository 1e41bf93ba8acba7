package editing

import (
	"testing"
	"time"

	"tableflip.dev/dbgrid/pkg/grid/cell"
	"tableflip.dev/dbgrid/pkg/grid/clock"
)

type harness struct {
	m       *Machine
	clock   *clock.FakeClock
	cursor  *MemoryCursor
	commits []Update
	stops   []StopEvent
	values  map[cell.Position]any
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		clock:  clock.Fake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		cursor: &MemoryCursor{},
		values: map[cell.Position]any{
			{RowIndex: 0, ColumnID: "name"}: "alice",
			{RowIndex: 0, ColumnID: "bio"}:  "hello",
			{RowIndex: 1, ColumnID: "name"}: "bob",
			{RowIndex: 1, ColumnID: "age"}:  41,
		},
	}
	bounds := cell.NewBounds(2, []string{"name", "age", "bio"})
	h.m = New(Options{
		Cursor: h.cursor,
		Clock:  h.clock,
		PolicyFor: func(col string) Policy {
			if col == "bio" {
				return Debounced
			}
			return Immediate
		},
		ValueAt:  func(p cell.Position) any { return h.values[p] },
		Bounds:   func() cell.Bounds { return bounds },
		OnCommit: func(u Update) { h.commits = append(h.commits, u) },
		OnStop:   func(ev StopEvent) { h.stops = append(h.stops, ev) },
	})
	return h
}

func at(r int, c string) cell.Position { return cell.Position{RowIndex: r, ColumnID: c} }

func (h *harness) focus() cell.Position {
	if f := h.cursor.Focus(); f != nil {
		return *f
	}
	return cell.Position{RowIndex: -1}
}

func TestClickFocusesWithoutEditing(t *testing.T) {
	h := newHarness(t)
	if h.m.Mode() != Idle {
		t.Fatalf("initial mode = %v", h.m.Mode())
	}
	h.m.Focus(at(0, "name"))
	if h.m.Mode() != Focused || h.focus() != at(0, "name") {
		t.Fatalf("mode = %v focus = %v", h.m.Mode(), h.focus())
	}
	if len(h.commits) != 0 || len(h.stops) != 0 {
		t.Fatalf("focus should have no side effects")
	}
}

func TestBeginSeedsCurrentValue(t *testing.T) {
	h := newHarness(t)
	h.m.Focus(at(1, "age"))
	h.m.Enter()
	p, text, ok := h.m.Pending()
	if !ok || p != at(1, "age") || text != "41" {
		t.Fatalf("pending = %v %q %v", p, text, ok)
	}
	if e := h.cursor.Edit(); e == nil || *e != h.focus() {
		t.Fatalf("editing cell must equal focused cell")
	}
}

func TestEnterCommitsAndMovesDown(t *testing.T) {
	h := newHarness(t)
	h.m.Begin(at(0, "name"))
	h.m.Input("alicia")
	h.m.Enter()
	if len(h.commits) != 1 || h.commits[0].Value != "alicia" || h.commits[0].Position() != at(0, "name") {
		t.Fatalf("commits = %+v", h.commits)
	}
	if h.focus() != at(1, "name") || h.m.Mode() != Focused {
		t.Fatalf("focus = %v mode = %v", h.focus(), h.m.Mode())
	}
	if len(h.stops) != 1 || !h.stops[0].MoveToNextRow {
		t.Fatalf("stops = %+v", h.stops)
	}
}

func TestEnterOnLastRowClamps(t *testing.T) {
	h := newHarness(t)
	h.m.Begin(at(1, "name"))
	h.m.Enter()
	if h.focus() != at(1, "name") {
		t.Fatalf("focus moved past the last row: %v", h.focus())
	}
	if len(h.commits) != 0 {
		t.Fatalf("unchanged value committed: %+v", h.commits)
	}
}

func TestTabDirections(t *testing.T) {
	h := newHarness(t)
	h.m.Begin(at(0, "age"))
	h.m.Input("7")
	h.m.Tab(false)
	if h.focus() != at(0, "bio") || h.stops[0].Direction != Right {
		t.Fatalf("tab: focus %v stop %+v", h.focus(), h.stops)
	}
	h.m.Begin(at(0, "age"))
	h.m.Tab(true)
	if h.focus() != at(0, "name") || h.stops[1].Direction != Left {
		t.Fatalf("shift+tab: focus %v stop %+v", h.focus(), h.stops)
	}
	if len(h.commits) != 1 || h.commits[0].Value != "7" {
		t.Fatalf("commits = %+v", h.commits)
	}
}

func TestPrintableKeyPrefills(t *testing.T) {
	h := newHarness(t)
	h.m.Focus(at(0, "name"))
	if !h.m.Type("z") {
		t.Fatalf("printable key rejected")
	}
	if _, text, _ := h.m.Pending(); text != "z" {
		t.Fatalf("prefill should replace content, got %q", text)
	}
	h.m.Type("e")
	if _, text, _ := h.m.Pending(); text != "ze" {
		t.Fatalf("typing while editing should append, got %q", text)
	}
	if h.m.Type("\x01") {
		t.Fatalf("control character accepted")
	}
}

func TestEscapeRestoresWithoutCommit(t *testing.T) {
	h := newHarness(t)
	h.m.Begin(at(0, "name"))
	h.m.Input("mallory")
	if !h.m.Escape() {
		t.Fatalf("escape while editing should report true")
	}
	if len(h.commits) != 0 {
		t.Fatalf("escape committed: %+v", h.commits)
	}
	if h.m.Mode() != Focused || h.focus() != at(0, "name") {
		t.Fatalf("escape should leave the cell focused")
	}
	if !h.stops[0].Cancelled {
		t.Fatalf("stop event not marked cancelled")
	}
	if h.m.Escape() {
		t.Fatalf("escape without editor should report false")
	}
}

func TestDebouncedBurstThenBlurCommitsOnce(t *testing.T) {
	h := newHarness(t)
	h.m.Begin(at(0, "bio"))
	h.m.Input("")
	for _, ch := range []string{"a", "b", "c"} {
		h.m.Append(ch)
		h.clock.Advance(100 * time.Millisecond)
	}
	if len(h.commits) != 0 {
		t.Fatalf("debounce fired inside the quiet period: %+v", h.commits)
	}
	h.m.Blur()
	if len(h.commits) != 1 || h.commits[0].Value != "abc" {
		t.Fatalf("commits = %+v", h.commits)
	}
	h.clock.Advance(time.Second)
	if len(h.commits) != 1 {
		t.Fatalf("timer fired after blur: %+v", h.commits)
	}
	if h.clock.Pending() != 0 {
		t.Fatalf("timer left behind after blur")
	}
}

func TestDebouncedTrailingEdge(t *testing.T) {
	h := newHarness(t)
	h.m.Begin(at(0, "bio"))
	h.m.Append("!")
	h.clock.Advance(299 * time.Millisecond)
	if len(h.commits) != 0 {
		t.Fatalf("fired early")
	}
	h.m.Append("?")
	h.clock.Advance(298 * time.Millisecond)
	if len(h.commits) != 0 {
		t.Fatalf("keystroke did not reschedule")
	}
	h.clock.Advance(2 * time.Millisecond)
	if len(h.commits) != 1 || h.commits[0].Value != "hello!?" {
		t.Fatalf("commits = %+v", h.commits)
	}
	if h.m.Mode() != Editing {
		t.Fatalf("debounced commit should not close the editor")
	}
	h.m.Blur()
	if len(h.commits) != 1 {
		t.Fatalf("blur re-sent an already committed value: %+v", h.commits)
	}
}

func TestEscapeOverridesDebouncedCommit(t *testing.T) {
	h := newHarness(t)
	h.m.Begin(at(0, "bio"))
	h.m.Input("draft")
	h.clock.Advance(DefaultDelay)
	if len(h.commits) != 1 || h.commits[0].Value != "draft" {
		t.Fatalf("debounce did not fire: %+v", h.commits)
	}
	h.m.Append("ing")
	h.m.Escape()
	if len(h.commits) != 2 || h.commits[1].Value != "hello" {
		t.Fatalf("escape should restore the original, commits = %+v", h.commits)
	}
	h.clock.Advance(time.Second)
	if len(h.commits) != 2 {
		t.Fatalf("cancelled timer fired: %+v", h.commits)
	}
}

func TestEscapeBeforeDebounceFiresIsSilent(t *testing.T) {
	h := newHarness(t)
	h.m.Begin(at(0, "bio"))
	h.m.Input("draft")
	h.m.Escape()
	h.clock.Advance(time.Second)
	if len(h.commits) != 0 {
		t.Fatalf("commits = %+v", h.commits)
	}
}

func TestFocusElsewhereFlushesPendingDebounce(t *testing.T) {
	h := newHarness(t)
	h.m.Begin(at(0, "bio"))
	h.m.Input("x")
	h.m.Focus(at(1, "name"))
	if len(h.commits) != 1 || h.commits[0].Value != "x" {
		t.Fatalf("commits = %+v", h.commits)
	}
	if h.m.DebouncePending() || h.clock.Pending() != 0 {
		t.Fatalf("timer survived leaving the cell")
	}
	if h.focus() != at(1, "name") || h.m.Mode() != Focused {
		t.Fatalf("focus = %v", h.focus())
	}
}

func TestClickOutsideReturnsToIdle(t *testing.T) {
	h := newHarness(t)
	h.m.Begin(at(0, "name"))
	h.m.Input("al")
	h.m.ClickOutside()
	if h.m.Mode() != Idle {
		t.Fatalf("mode = %v", h.m.Mode())
	}
	if len(h.commits) != 1 {
		t.Fatalf("click outside should commit the open edit once: %+v", h.commits)
	}
}

func TestResetDropsSession(t *testing.T) {
	h := newHarness(t)
	h.m.Begin(at(0, "bio"))
	h.m.Input("gone")
	h.m.Reset()
	h.clock.Advance(time.Second)
	if len(h.commits) != 0 || h.m.Mode() != Idle {
		t.Fatalf("reset committed or kept state: %+v %v", h.commits, h.m.Mode())
	}
}

func TestBackspace(t *testing.T) {
	h := newHarness(t)
	h.m.Begin(at(0, "name"))
	h.m.Input("né")
	h.m.Backspace()
	if _, text, _ := h.m.Pending(); text != "n" {
		t.Fatalf("backspace should remove one rune, got %q", text)
	}
}

func TestDebouncerFlushAndCancel(t *testing.T) {
	c := clock.Fake(time.Time{})
	n := 0
	d := NewDebouncer(c, 0, func() { n++ })
	if d.Flush() {
		t.Fatalf("flush without trigger should report false")
	}
	d.Trigger()
	d.Trigger()
	if c.Pending() != 1 {
		t.Fatalf("expected one outstanding timer, got %d", c.Pending())
	}
	if !d.Flush() || n != 1 {
		t.Fatalf("flush did not run fn")
	}
	d.Trigger()
	d.Cancel()
	c.Advance(time.Second)
	if n != 1 {
		t.Fatalf("cancelled call ran")
	}
}

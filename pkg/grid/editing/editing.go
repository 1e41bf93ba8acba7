// Package editing is the per-cell edit state machine.
//
// The machine moves between three modes: Idle (nothing focused), Focused
// (a cell has the cursor) and Editing (a cell holds an in-progress value).
// Focus itself is stored by the caller through the Cursor interface so that
// there is a single source of truth; the machine only keeps the edit session
// (original value, pending text, last committed text and the debounce timer).
package editing

import (
	"fmt"
	"io"
	"log/slog"
	"time"
	"unicode"
	"unicode/utf8"

	"tableflip.dev/dbgrid/pkg/grid/cell"
	"tableflip.dev/dbgrid/pkg/grid/clock"
)

// Mode is the machine's current state.
type Mode int

const (
	Idle Mode = iota
	Focused
	Editing
)

func (m Mode) String() string {
	switch m {
	case Focused:
		return "focused"
	case Editing:
		return "editing"
	default:
		return "idle"
	}
}

// Policy decides when an edit is handed to OnCommit.
type Policy int

const (
	// Immediate commits the live value when the editor closes.
	Immediate Policy = iota
	// Debounced also commits after every quiet period while typing.
	Debounced
)

func (p Policy) String() string {
	if p == Debounced {
		return "debounced"
	}
	return "immediate"
}

// Direction is the horizontal move that follows a Tab.
type Direction string

const (
	NoDirection Direction = ""
	Left        Direction = "left"
	Right       Direction = "right"
)

// Update is one committed edit.
type Update struct {
	RowIndex int
	ColumnID string
	Value    any
}

// Position returns the cell the update targets.
func (u Update) Position() cell.Position {
	return cell.Position{RowIndex: u.RowIndex, ColumnID: u.ColumnID}
}

// StopEvent reports that an edit session ended.
type StopEvent struct {
	Position      cell.Position
	MoveToNextRow bool
	Direction     Direction
	Cancelled     bool
}

// Cursor stores focus and edit positions on behalf of the machine.
type Cursor interface {
	Focus() *cell.Position
	Edit() *cell.Position
	SetCursor(focus, edit *cell.Position)
}

// Options configures a Machine.
type Options struct {
	Cursor Cursor
	Clock  clock.Clock
	Delay  time.Duration

	PolicyFor func(columnID string) Policy
	ValueAt   func(cell.Position) any
	Bounds    func() cell.Bounds
	Format    func(any) string

	OnCommit func(Update)
	OnStop   func(StopEvent)

	Logger *slog.Logger
}

// Machine is not safe for concurrent use. With a real clock, timer callbacks
// must be marshalled onto the goroutine that drives the machine (see
// clock.Dispatched).
type Machine struct {
	opts    Options
	session *session
	log     *slog.Logger
}

type session struct {
	pos          cell.Position
	policy       Policy
	original     any
	originalText string
	text         string
	lastSent     string
	debounce     *Debouncer
}

// New returns a machine in the Idle mode (or whatever the cursor says).
func New(opts Options) *Machine {
	if opts.Cursor == nil {
		opts.Cursor = &MemoryCursor{}
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.Format == nil {
		opts.Format = format
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Machine{opts: opts, log: log.With("component", "editing")}
}

// Mode derives the current mode from the cursor.
func (m *Machine) Mode() Mode {
	switch {
	case m.session != nil && m.opts.Cursor.Edit() != nil:
		return Editing
	case m.opts.Cursor.Focus() != nil:
		return Focused
	default:
		return Idle
	}
}

// Pending returns the in-progress value while editing.
func (m *Machine) Pending() (cell.Position, string, bool) {
	if m.session == nil {
		return cell.Zero, "", false
	}
	return m.session.pos, m.session.text, true
}

// Policy returns the commit policy of the open session.
func (m *Machine) Policy() (Policy, bool) {
	if m.session == nil {
		return Immediate, false
	}
	return m.session.policy, true
}

// DebouncePending reports whether a debounced commit is scheduled.
func (m *Machine) DebouncePending() bool {
	return m.session != nil && m.session.debounce != nil && m.session.debounce.Pending()
}

// Focus moves the cursor to p, closing any edit on another cell with a
// commit. It covers both a click on a cell and keyboard navigation.
func (m *Machine) Focus(p cell.Position) {
	if m.session != nil {
		if m.session.pos == p {
			return
		}
		m.close(StopEvent{Position: m.session.pos}, true)
	}
	m.opts.Cursor.SetCursor(&p, nil)
}

// Begin opens an editor on p seeded with the cell's current value.
func (m *Machine) Begin(p cell.Position) {
	if m.session != nil {
		if m.session.pos == p {
			return
		}
		m.close(StopEvent{Position: m.session.pos}, true)
	}
	var v any
	if m.opts.ValueAt != nil {
		v = m.opts.ValueAt(p)
	}
	m.open(p, v, m.opts.Format(v))
}

// Type handles a printable key. While merely focused it opens the editor
// with text as the whole content; while editing it appends. It reports
// whether text was accepted.
func (m *Machine) Type(text string) bool {
	if !Printable(text) {
		return false
	}
	if m.session != nil {
		m.Append(text)
		return true
	}
	f := m.opts.Cursor.Focus()
	if f == nil {
		return false
	}
	p := *f
	var v any
	if m.opts.ValueAt != nil {
		v = m.opts.ValueAt(p)
	}
	m.open(p, v, m.opts.Format(v))
	m.Input(text)
	return true
}

// Input replaces the pending value.
func (m *Machine) Input(text string) {
	s := m.session
	if s == nil || s.text == text {
		return
	}
	s.text = text
	if s.policy == Debounced {
		s.debounce.Trigger()
	}
}

// Append adds text to the pending value.
func (m *Machine) Append(text string) {
	if m.session == nil {
		return
	}
	m.Input(m.session.text + text)
}

// Backspace removes the last rune of the pending value.
func (m *Machine) Backspace() {
	if m.session == nil || m.session.text == "" {
		return
	}
	_, size := utf8.DecodeLastRuneInString(m.session.text)
	m.Input(m.session.text[:len(m.session.text)-size])
}

// Enter commits and moves one row down, or opens the editor when the focused
// cell is not being edited.
func (m *Machine) Enter() {
	if m.session == nil {
		if f := m.opts.Cursor.Focus(); f != nil {
			m.Begin(*f)
		}
		return
	}
	p := m.session.pos
	m.close(StopEvent{Position: p, MoveToNextRow: true}, true)
	m.move(p, 1, 0)
}

// Tab commits and moves one column right, or left with shift.
func (m *Machine) Tab(shift bool) {
	dir, dc := Right, 1
	if shift {
		dir, dc = Left, -1
	}
	if m.session == nil {
		if f := m.opts.Cursor.Focus(); f != nil {
			m.move(*f, 0, dc)
		}
		return
	}
	p := m.session.pos
	m.close(StopEvent{Position: p, Direction: dir}, true)
	m.move(p, 0, dc)
}

// Escape discards the pending value. If a debounced commit already went out
// the original value is committed again so it wins. Escape reports whether it
// closed an editor.
func (m *Machine) Escape() bool {
	s := m.session
	if s == nil {
		return false
	}
	s.debounce.Cancel()
	if s.lastSent != s.originalText {
		m.commit(s, s.original)
		s.lastSent = s.originalText
	}
	s.text = s.originalText
	m.session = nil
	m.opts.Cursor.SetCursor(&s.pos, nil)
	m.log.Debug("edit cancelled", "cell", s.pos.Key())
	m.stop(StopEvent{Position: s.pos, Cancelled: true})
	return true
}

// Blur closes the editor with a commit and keeps the cell focused.
func (m *Machine) Blur() {
	if m.session == nil {
		return
	}
	m.close(StopEvent{Position: m.session.pos}, true)
}

// Submit is the explicit save of a multi-line editor. It behaves like Blur.
func (m *Machine) Submit() {
	m.Blur()
}

// ClickOutside closes any editor with a commit and clears focus.
func (m *Machine) ClickOutside() {
	m.Blur()
	m.opts.Cursor.SetCursor(nil, nil)
}

// Reset drops the session without committing, e.g. when the table is
// replaced underneath the grid.
func (m *Machine) Reset() {
	if m.session != nil {
		m.session.debounce.Cancel()
		m.session = nil
	}
	m.opts.Cursor.SetCursor(nil, nil)
}

// Close stops any pending timer after flushing it.
func (m *Machine) Close() {
	if m.session != nil {
		m.close(StopEvent{Position: m.session.pos}, true)
	}
}

func (m *Machine) open(p cell.Position, original any, text string) {
	policy := Immediate
	if m.opts.PolicyFor != nil {
		policy = m.opts.PolicyFor(p.ColumnID)
	}
	s := &session{
		pos:          p,
		policy:       policy,
		original:     original,
		originalText: text,
		text:         text,
		lastSent:     text,
	}
	s.debounce = NewDebouncer(m.opts.Clock, m.opts.Delay, func() {
		if m.session != s {
			return
		}
		m.flush(s)
	})
	m.session = s
	m.opts.Cursor.SetCursor(&p, &p)
	m.log.Debug("edit started", "cell", p.Key(), "policy", policy)
}

// close ends the session, committing the pending value when commit is set.
func (m *Machine) close(ev StopEvent, commit bool) {
	s := m.session
	s.debounce.Cancel()
	if commit {
		m.flush(s)
	}
	m.session = nil
	m.opts.Cursor.SetCursor(&s.pos, nil)
	m.stop(ev)
}

func (m *Machine) flush(s *session) {
	if s.text == s.lastSent {
		return
	}
	m.commit(s, s.text)
	s.lastSent = s.text
}

func (m *Machine) commit(s *session, v any) {
	m.log.Debug("commit", "cell", s.pos.Key(), "policy", s.policy)
	if m.opts.OnCommit != nil {
		m.opts.OnCommit(Update{RowIndex: s.pos.RowIndex, ColumnID: s.pos.ColumnID, Value: v})
	}
}

func (m *Machine) stop(ev StopEvent) {
	if m.opts.OnStop != nil {
		m.opts.OnStop(ev)
	}
}

func (m *Machine) move(from cell.Position, dr, dc int) {
	if m.opts.Bounds == nil {
		return
	}
	b := m.opts.Bounds()
	if b.Empty() {
		return
	}
	to := b.Offset(from, dr, dc)
	m.opts.Cursor.SetCursor(&to, nil)
}

// Printable reports whether text is a non-empty run of printable characters.
func Printable(text string) bool {
	if text == "" || !utf8.ValidString(text) {
		return false
	}
	for _, r := range text {
		if !unicode.IsPrint(r) {
			return false
		}
	}
	return true
}

func format(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// MemoryCursor is a Cursor that keeps positions in memory.
type MemoryCursor struct {
	focus *cell.Position
	edit  *cell.Position
}

func (c *MemoryCursor) Focus() *cell.Position { return c.focus }
func (c *MemoryCursor) Edit() *cell.Position  { return c.edit }

func (c *MemoryCursor) SetCursor(focus, edit *cell.Position) {
	c.focus, c.edit = focus, edit
}

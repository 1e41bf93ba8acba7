// Package grid is the controller of the editable data grid. It owns a store
// holding every piece of grid state and turns abstract key and pointer
// intents into selection, focus, edit and scroll changes.
package grid

import (
	"errors"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"tableflip.dev/dbgrid/pkg/grid/cell"
	"tableflip.dev/dbgrid/pkg/grid/clock"
	"tableflip.dev/dbgrid/pkg/grid/editing"
	"tableflip.dev/dbgrid/pkg/grid/search"
	"tableflip.dev/dbgrid/pkg/grid/store"
	"tableflip.dev/dbgrid/pkg/grid/virtual"
)

type (
	Update    = editing.Update
	StopEvent = editing.StopEvent
)

// ErrNoRowAdd is returned by RowAdd when no OnRowAdd callback is set.
var ErrNoRowAdd = errors.New("grid: adding rows is not enabled")

// DefaultOverscan is the number of rows mounted beyond each edge of the
// viewport.
const DefaultOverscan = 5

const scrollSettle = 150 * time.Millisecond

// Options configures a Grid.
type Options struct {
	Columns   []Column
	Rows      []Row
	TotalRows int
	RowHeight virtual.RowHeight
	Overscan  int

	// Units converts a row height to the unit of viewport height and scroll
	// offsets. Defaults to RowHeight.Pixels.
	Units func(virtual.RowHeight) int
	// Format renders values for search and copy. Defaults to search.Format.
	Format func(any) string

	Clock  clock.Clock
	Logger *slog.Logger

	// Scheduler runs deferred notifications. Without one the grid queues
	// them until Flush.
	Scheduler store.Scheduler

	OnDataUpdate      func(Update)
	OnCellEditingStop func(StopEvent)
	OnRowAdd          func() (cell.Position, error)
	OnSortChange      func([]SortEntry)
}

// Grid is not safe for concurrent use.
type Grid struct {
	opts    Options
	store   *store.Store[State]
	machine *editing.Machine
	settle  *editing.Debouncer
	log     *slog.Logger

	matchSet map[cell.Position]int
}

// New builds a grid over the given columns and rows.
func New(opts Options) *Grid {
	if opts.Overscan == 0 {
		opts.Overscan = DefaultOverscan
	}
	if opts.Units == nil {
		opts.Units = virtual.RowHeight.Pixels
	}
	if opts.Format == nil {
		opts.Format = search.Format
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	g := &Grid{
		opts:  opts,
		store: store.New(initialState(opts.Columns, opts.Rows, opts.TotalRows, opts.RowHeight), opts.Scheduler),
		log:   log.With("component", "grid"),
	}
	g.machine = editing.New(editing.Options{
		Cursor:    cursor{s: g.store},
		Clock:     opts.Clock,
		PolicyFor: g.policyFor,
		ValueAt:   g.Value,
		Bounds:    g.Bounds,
		Format:    opts.Format,
		OnCommit:  g.commit,
		OnStop:    g.stopped,
		Logger:    log,
	})
	g.settle = editing.NewDebouncer(opts.Clock, scrollSettle, func() {
		store.Set(g.store, scrollingKey, false)
	})
	return g
}

// State returns a snapshot of the grid state.
func (g *Grid) State() State { return g.store.State() }

// Subscribe registers fn to run once per burst of state changes.
func (g *Grid) Subscribe(fn func()) func() { return g.store.Subscribe(fn) }

// Flush delivers the notification for the writes made since the last flush.
// It does nothing when Options.Scheduler is set; the host flushes that.
func (g *Grid) Flush() bool { return g.store.Flush() }

// Batch groups several calls into one notification.
func (g *Grid) Batch(fn func()) { g.store.Batch(fn) }

// Dispose commits any open edit, stops timers and drops every listener.
func (g *Grid) Dispose() {
	g.machine.Close()
	g.settle.Cancel()
	g.store.Dispose()
}

// Mode reports the editing mode.
func (g *Grid) Mode() editing.Mode { return g.machine.Mode() }

// EditingValue returns the in-progress value of the open editor.
func (g *Grid) EditingValue() (cell.Position, string, bool) { return g.machine.Pending() }

// EditingPolicy returns the commit policy of the open editor.
func (g *Grid) EditingPolicy() (editing.Policy, bool) { return g.machine.Policy() }

// Columns returns the column definitions.
func (g *Grid) Columns() []Column { return store.Get(g.store, columnsKey) }

// Rows returns the materialized rows.
func (g *Grid) Rows() []Row { return store.Get(g.store, rowsKey) }

// Column looks up a column by id.
func (g *Grid) Column(id string) (Column, bool) {
	for _, c := range g.Columns() {
		if c.ID == id {
			return c, true
		}
	}
	return Column{}, false
}

// ColumnIDs returns the column ids in render order.
func (g *Grid) ColumnIDs() []string {
	cols := g.Columns()
	ids := make([]string, len(cols))
	for i, c := range cols {
		ids[i] = c.ID
	}
	return ids
}

// Bounds is the addressable area: the materialized rows by the columns.
func (g *Grid) Bounds() cell.Bounds {
	return cell.NewBounds(len(g.Rows()), g.ColumnIDs())
}

// Value returns the value of cell p, or nil.
func (g *Grid) Value(p cell.Position) any {
	rows := g.Rows()
	if p.RowIndex < 0 || p.RowIndex >= len(rows) {
		return nil
	}
	return rows[p.RowIndex][p.ColumnID]
}

// Text returns the rendered value of cell p.
func (g *Grid) Text(p cell.Position) string {
	return g.opts.Format(g.Value(p))
}

func (g *Grid) policyFor(columnID string) editing.Policy {
	if c, ok := g.Column(columnID); ok {
		return c.Policy
	}
	return editing.Immediate
}

func (g *Grid) focus() (cell.Position, bool) {
	if f := store.Get(g.store, focusedKey); f != nil {
		return *f, true
	}
	return cell.Zero, false
}

// input runs fn as one batch and keeps the focused cell on screen.
func (g *Grid) input(fn func()) {
	g.store.Batch(func() {
		before := store.Get(g.store, focusedKey)
		fn()
		after := store.Get(g.store, focusedKey)
		if after != nil && !samePosition(before, after) {
			g.ScrollToRow(after.RowIndex, virtual.AlignAuto)
		}
	})
}

// commit applies an edit locally before handing it to the host.
func (g *Grid) commit(u Update) {
	g.SetCellValue(u.Position(), u.Value)
	g.log.Debug("data update", "cell", u.Position().Key())
	if g.opts.OnDataUpdate != nil {
		g.opts.OnDataUpdate(u)
	}
}

func (g *Grid) stopped(ev StopEvent) {
	if g.opts.OnCellEditingStop != nil {
		g.opts.OnCellEditingStop(ev)
	}
}

// SetCellValue replaces the displayed value of p. Hosts call it to revert
// a failed write.
func (g *Grid) SetCellValue(p cell.Position, v any) {
	rows := g.Rows()
	if p.RowIndex < 0 || p.RowIndex >= len(rows) {
		return
	}
	next := slices.Clone(rows)
	row := maps.Clone(next[p.RowIndex])
	if row == nil {
		row = Row{}
	}
	row[p.ColumnID] = v
	next[p.RowIndex] = row
	g.store.Batch(func() {
		store.Set(g.store, rowsKey, next)
		g.refreshMatches(false)
	})
}

// SetRows installs a new row window. Focus, selection and search matches are
// re-evaluated against the new rows; an editor on a row that disappeared is
// dropped.
func (g *Grid) SetRows(rows []Row, total int) {
	g.store.Batch(func() {
		if total < len(rows) {
			total = len(rows)
		}
		store.Set(g.store, rowsKey, rows)
		store.Set(g.store, totalRowsKey, total)
		b := g.Bounds()
		if e := store.Get(g.store, editingKey); e != nil && !b.Contains(*e) {
			g.machine.Reset()
		}
		if f, ok := g.focus(); ok && !b.Contains(f) {
			if b.Empty() {
				store.Set(g.store, focusedKey, nil)
			} else {
				c := b.Clamp(f)
				store.Set(g.store, focusedKey, &c)
			}
		}
		g.pruneSelection()
		g.refreshMatches(false)
		g.ScrollTo(store.Get(g.store, scrollOffsetKey))
	})
}

// AppendRow adds row at the end of the window and returns its index.
func (g *Grid) AppendRow(row Row) int {
	rows := append(slices.Clone(g.Rows()), row)
	g.store.Batch(func() {
		store.Set(g.store, rowsKey, rows)
		store.Set(g.store, totalRowsKey, store.Get(g.store, totalRowsKey)+1)
		g.refreshMatches(false)
	})
	return len(rows) - 1
}

// Reset replaces the schema and rows and returns every piece of interaction
// state to its default. Row height and viewport size survive.
func (g *Grid) Reset(columns []Column, rows []Row, total int) {
	g.machine.Reset()
	g.settle.Cancel()
	prev := g.store.State()
	g.store.Batch(func() {
		def := initialState(columns, rows, total, prev.RowHeight)
		store.Set(g.store, columnsKey, def.Columns)
		store.Set(g.store, rowsKey, def.Rows)
		store.Set(g.store, totalRowsKey, def.TotalRows)
		store.Set(g.store, sortingKey, def.Sorting)
		store.Set(g.store, rowSelectionKey, def.RowSelection)
		store.Set(g.store, selectionKey, def.Selection)
		store.Set(g.store, focusedKey, nil)
		store.Set(g.store, editingKey, nil)
		store.Set(g.store, contextMenuKey, ContextMenu{})
		store.Set(g.store, queryKey, "")
		store.Set(g.store, matchesKey, nil)
		store.Set(g.store, matchIndexKey, -1)
		store.Set(g.store, searchOpenKey, false)
		store.Set(g.store, lastClickedKey, -1)
		store.Set(g.store, scrollingKey, false)
		store.Set(g.store, scrollOffsetKey, 0)
		store.Set(g.store, addRowKey, false)
		g.matchSet = nil
	})
}

func (g *Grid) pruneSelection() {
	sel := store.Get(g.store, selectionKey)
	store.Set(g.store, selectionKey, sel.Prune(g.Bounds()))
	rows := len(g.Rows())
	rs := store.Get(g.store, rowSelectionKey)
	for i := range rs {
		if i >= rows {
			next := maps.Clone(rs)
			maps.DeleteFunc(next, func(k int, _ struct{}) bool { return k >= rows })
			store.Set(g.store, rowSelectionKey, next)
			break
		}
	}
}

// Viewport describes the current scroll geometry.
func (g *Grid) Viewport() virtual.Viewport {
	s := g.store.State()
	return virtual.Viewport{
		RowCount:     len(s.Rows),
		RowHeight:    g.opts.Units(s.RowHeight),
		Height:       s.ViewportHeight,
		ScrollOffset: s.ScrollOffset,
		Overscan:     g.opts.Overscan,
	}
}

// Window returns the rows to render.
func (g *Grid) Window() virtual.Window {
	return g.Viewport().Compute()
}

// SetViewport records the viewport height and re-clamps the scroll offset.
func (g *Grid) SetViewport(height int) {
	g.store.Batch(func() {
		store.Set(g.store, viewportKey, max(height, 0))
		store.Set(g.store, scrollOffsetKey, g.Viewport().ClampOffset(store.Get(g.store, scrollOffsetKey)))
	})
}

// ScrollTo moves the viewport to offset, clamped. IsScrolling stays set
// until the offset has been still for a short while.
func (g *Grid) ScrollTo(offset int) {
	off := g.Viewport().ClampOffset(offset)
	if store.Set(g.store, scrollOffsetKey, off) {
		store.Set(g.store, scrollingKey, true)
		g.settle.Trigger()
	}
}

// ScrollBy scrolls by delta units.
func (g *Grid) ScrollBy(delta int) {
	g.ScrollTo(store.Get(g.store, scrollOffsetKey) + delta)
}

// ScrollToRow brings row index into view.
func (g *Grid) ScrollToRow(index int, align virtual.Align) {
	g.ScrollTo(g.Viewport().ScrollToIndex(index, align))
}

// RowHeight returns the row density.
func (g *Grid) RowHeight() virtual.RowHeight { return store.Get(g.store, rowHeightKey) }

// SetRowHeight changes the row density, keeping the first visible row at
// the top.
func (g *Grid) SetRowHeight(h virtual.RowHeight) {
	g.store.Batch(func() {
		first := g.Window().First
		if !store.Set(g.store, rowHeightKey, h) {
			return
		}
		g.ScrollTo(max(first, 0) * g.opts.Units(h))
	})
}

func (g *Grid) moveTo(p cell.Position) {
	g.machine.Focus(p)
	store.Set(g.store, addRowKey, false)
	sel := store.Get(g.store, selectionKey)
	store.Set(g.store, selectionKey, sel.SelectSingle(p))
}

func (g *Grid) extendTo(head cell.Position) {
	b := g.Bounds()
	sel := store.Get(g.store, selectionKey)
	anchor := head
	if sel.Range != nil {
		anchor = sel.Range.Anchor
	} else if f, ok := g.focus(); ok {
		anchor = f
	}
	g.machine.Focus(head)
	store.Set(g.store, selectionKey, sel.ExtendFrom(anchor, head, b))
}

// selectionHead is where shift navigation continues from.
func (g *Grid) selectionHead() (cell.Position, bool) {
	if sel := store.Get(g.store, selectionKey); sel.Range != nil {
		return sel.Range.Head, true
	}
	return g.focus()
}

// ToggleSort cycles a column through ascending, descending and unsorted.
func (g *Grid) ToggleSort(columnID string) {
	cur := store.Get(g.store, sortingKey)
	var next []SortEntry
	switch {
	case len(cur) == 0 || cur[0].ColumnID != columnID:
		next = []SortEntry{{ColumnID: columnID}}
	case !cur[0].Desc:
		next = []SortEntry{{ColumnID: columnID, Desc: true}}
	default:
		next = []SortEntry{}
	}
	store.Set(g.store, sortingKey, next)
	if g.opts.OnSortChange != nil {
		g.opts.OnSortChange(next)
	}
}

// Sorting returns the sort order.
func (g *Grid) Sorting() []SortEntry { return store.Get(g.store, sortingKey) }

// ToggleRowSelection selects or deselects a whole row from the gutter. With
// extend, every row between the last clicked row and row is selected.
func (g *Grid) ToggleRowSelection(row int, extend bool) {
	if row < 0 || row >= len(g.Rows()) {
		return
	}
	g.store.Batch(func() {
		next := maps.Clone(store.Get(g.store, rowSelectionKey))
		last := store.Get(g.store, lastClickedKey)
		if extend && last >= 0 {
			for i := min(last, row); i <= max(last, row); i++ {
				next[i] = struct{}{}
			}
		} else if _, ok := next[row]; ok {
			delete(next, row)
		} else {
			next[row] = struct{}{}
		}
		store.Set(g.store, rowSelectionKey, next)
		store.Set(g.store, lastClickedKey, row)
	})
}

// SelectedRows returns the gutter-selected rows in order.
func (g *Grid) SelectedRows() []int {
	return slices.Sorted(maps.Keys(store.Get(g.store, rowSelectionKey)))
}

// selected returns the selected cells, or the focused cell when the
// selection is empty.
func (g *Grid) selected() []cell.Position {
	b := g.Bounds()
	sel := store.Get(g.store, selectionKey)
	if !sel.Empty() {
		return sel.Positions(b)
	}
	if f, ok := g.focus(); ok && b.Contains(f) {
		return []cell.Position{f}
	}
	return nil
}

// SelectedText renders the selection as tab separated values, one line per
// row, columns in render order.
func (g *Grid) SelectedText() string {
	var sb strings.Builder
	row := -1
	for _, p := range g.selected() {
		if p.RowIndex != row {
			if row >= 0 {
				sb.WriteByte('\n')
			}
			row = p.RowIndex
		} else {
			sb.WriteByte('\t')
		}
		sb.WriteString(g.Text(p))
	}
	return sb.String()
}

// ClearSelectedCells commits nil into every selected cell that has a value.
func (g *Grid) ClearSelectedCells() {
	g.input(func() {
		for _, p := range g.selected() {
			if g.Value(p) == nil {
				continue
			}
			g.commit(Update{RowIndex: p.RowIndex, ColumnID: p.ColumnID, Value: nil})
		}
	})
}

// RowAdd asks the host for a new row and focuses the position it returns.
func (g *Grid) RowAdd() (cell.Position, error) {
	if g.opts.OnRowAdd == nil {
		return cell.Zero, ErrNoRowAdd
	}
	var (
		p   cell.Position
		err error
	)
	g.input(func() {
		g.machine.Blur()
		p, err = g.opts.OnRowAdd()
		if err != nil {
			return
		}
		store.Set(g.store, addRowKey, false)
		if b := g.Bounds(); b.Contains(p) {
			g.moveTo(p)
		}
	})
	return p, err
}

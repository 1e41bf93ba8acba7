package grid

import (
	"tableflip.dev/dbgrid/pkg/grid/cell"
	"tableflip.dev/dbgrid/pkg/grid/editing"
	"tableflip.dev/dbgrid/pkg/grid/search"
	"tableflip.dev/dbgrid/pkg/grid/store"
	"tableflip.dev/dbgrid/pkg/grid/virtual"
)

// Modifiers held during an input.
type Modifiers struct {
	Shift bool
	Ctrl  bool
	Alt   bool
}

// Key names understood by HandleKey. Printable input uses Key.Text with an
// empty Name.
const (
	KeyUp        = "up"
	KeyDown      = "down"
	KeyLeft      = "left"
	KeyRight     = "right"
	KeyHome      = "home"
	KeyEnd       = "end"
	KeyPageUp    = "pgup"
	KeyPageDown  = "pgdown"
	KeyEnter     = "enter"
	KeyTab       = "tab"
	KeyEscape    = "esc"
	KeyBackspace = "backspace"
	KeyDelete    = "delete"
	KeySpace     = "space"
)

// Key is a keyboard intent.
type Key struct {
	Name string
	Text string
	Modifiers
}

// Button is a pointer button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
)

// Pointer is a pointer intent on a cell. X and Y are surface coordinates,
// used to place the context menu.
type Pointer struct {
	X, Y   int
	Button Button
	Modifiers
}

// HandleKey applies a key to the grid and reports whether it was consumed.
func (g *Grid) HandleKey(k Key) bool {
	handled := false
	g.input(func() {
		if k.Ctrl && !k.Alt && k.Text == "f" {
			g.SetSearchOpen(true)
			handled = true
			return
		}
		switch {
		case store.Get(g.store, addRowKey):
			handled = g.addRowKey(k)
		case g.machine.Mode() == editing.Editing:
			handled = g.editingKey(k)
		default:
			handled = g.navigationKey(k)
		}
	})
	return handled
}

func (g *Grid) addRowKey(k Key) bool {
	switch k.Name {
	case KeyEnter, KeySpace:
		if _, err := g.RowAdd(); err != nil {
			g.log.Debug("row add failed", "err", err)
		}
	case KeyUp:
		store.Set(g.store, addRowKey, false)
		b := g.Bounds()
		if !b.Empty() {
			col := b.Columns[0]
			if f, ok := g.focus(); ok {
				col = f.ColumnID
			}
			g.moveTo(b.Clamp(cell.Position{RowIndex: b.Rows - 1, ColumnID: col}))
		}
	case KeyEscape:
		store.Set(g.store, addRowKey, false)
	default:
		return false
	}
	return true
}

func (g *Grid) editingKey(k Key) bool {
	m := g.machine
	multiline := false
	if pol, ok := m.Policy(); ok {
		multiline = pol == editing.Debounced
	}
	switch k.Name {
	case KeyEscape:
		m.Escape()
	case KeyEnter:
		switch {
		case multiline && k.Alt:
			m.Append("\n")
		case multiline && k.Ctrl:
			m.Submit()
		default:
			m.Enter()
		}
	case KeyTab:
		m.Tab(k.Shift)
	case KeyBackspace:
		m.Backspace()
	case KeySpace:
		m.Append(" ")
	case KeyUp, KeyDown, KeyLeft, KeyRight, KeyHome, KeyEnd, KeyPageUp, KeyPageDown:
		m.Blur()
		return g.navigationKey(k)
	case "":
		if k.Ctrl || k.Alt || !editing.Printable(k.Text) {
			return false
		}
		m.Append(k.Text)
	default:
		return false
	}
	return true
}

func (g *Grid) navigationKey(k Key) bool {
	b := g.Bounds()
	f, focused := g.focus()

	switch k.Name {
	case KeyUp, KeyDown, KeyLeft, KeyRight, KeyHome, KeyEnd, KeyPageUp, KeyPageDown:
		if b.Empty() {
			if k.Name == KeyDown && g.opts.OnRowAdd != nil {
				store.Set(g.store, addRowKey, true)
				return true
			}
			return false
		}
		if !focused {
			g.moveTo(b.Clamp(cell.Position{ColumnID: b.Columns[0]}))
			return true
		}
		g.navigate(k, f, b)
		return true
	case KeyTab:
		if !focused {
			return false
		}
		g.machine.Tab(k.Shift)
		if nf, ok := g.focus(); ok {
			store.Set(g.store, selectionKey, store.Get(g.store, selectionKey).SelectSingle(nf))
		}
		return true
	case KeyEnter:
		if !focused {
			return false
		}
		g.machine.Enter()
		return true
	case KeyEscape:
		switch {
		case store.Get(g.store, searchOpenKey):
			g.SetSearchOpen(false)
		case store.Get(g.store, contextMenuKey).Open:
			g.CloseContextMenu()
		default:
			g.clearSelection()
		}
		return true
	case KeyDelete, KeyBackspace:
		g.ClearSelectedCells()
		return true
	case KeySpace:
		if !focused {
			return false
		}
		if c, ok := g.Column(f.ColumnID); ok && c.Boolean {
			g.toggleBoolean(f)
			return true
		}
		return g.machine.Type(" ")
	case "":
		if k.Ctrl && k.Text == "a" {
			store.Set(g.store, selectionKey, store.Get(g.store, selectionKey).SelectAll(b))
			return true
		}
		if k.Ctrl || k.Alt || !focused {
			return false
		}
		return g.machine.Type(k.Text)
	}
	return false
}

// navigate moves or extends from f according to an arrow-like key.
func (g *Grid) navigate(k Key, f cell.Position, b cell.Bounds) {
	dr, dc := 0, 0
	page := g.Viewport().PageSize()
	switch k.Name {
	case KeyUp:
		dr = -1
	case KeyDown:
		dr = 1
	case KeyLeft:
		dc = -1
	case KeyRight:
		dc = 1
	case KeyPageUp:
		dr = -page
	case KeyPageDown:
		dr = page
	case KeyHome:
		dc = -len(b.Columns)
		if k.Ctrl {
			dr = -b.Rows
		}
	case KeyEnd:
		dc = len(b.Columns)
		if k.Ctrl {
			dr = b.Rows
		}
	}
	arrow := k.Name == KeyUp || k.Name == KeyDown || k.Name == KeyLeft || k.Name == KeyRight

	// ctrl+arrow and shift+arrow extend the selection; ctrl jumps to the edge.
	if arrow && (k.Shift || k.Ctrl) {
		head, _ := g.selectionHead()
		if k.Ctrl {
			dr, dc = dr*b.Rows, dc*len(b.Columns)
		}
		g.extendTo(b.Offset(head, dr, dc))
		return
	}
	if !arrow && k.Shift {
		head, _ := g.selectionHead()
		g.extendTo(b.Offset(head, dr, dc))
		return
	}

	if k.Name == KeyDown && f.RowIndex == b.Rows-1 && g.opts.OnRowAdd != nil {
		g.machine.Blur()
		store.Set(g.store, addRowKey, true)
		g.ScrollTo(g.Viewport().MaxScroll())
		return
	}
	g.moveTo(b.Offset(f, dr, dc))
}

func (g *Grid) toggleBoolean(p cell.Position) {
	v, _ := g.Value(p).(bool)
	g.commit(Update{RowIndex: p.RowIndex, ColumnID: p.ColumnID, Value: !v})
}

func (g *Grid) clearSelection() {
	store.Set(g.store, selectionKey, store.Get(g.store, selectionKey).Clear())
	if len(store.Get(g.store, rowSelectionKey)) > 0 {
		store.Set(g.store, rowSelectionKey, map[int]struct{}{})
	}
}

// PointerDown starts a click or drag on p. Shift extends the selection,
// ctrl toggles p, the right button opens the context menu.
func (g *Grid) PointerDown(p cell.Position, ev Pointer) {
	g.input(func() {
		b := g.Bounds()
		if !b.Contains(p) {
			return
		}
		store.Set(g.store, addRowKey, false)
		sel := store.Get(g.store, selectionKey)
		if ev.Button == ButtonRight {
			if !sel.Contains(p) {
				g.moveTo(p)
			}
			store.Set(g.store, contextMenuKey, ContextMenu{Open: true, X: ev.X, Y: ev.Y})
			return
		}
		store.Set(g.store, contextMenuKey, ContextMenu{})
		switch {
		case ev.Shift:
			g.extendTo(p)
		case ev.Ctrl:
			g.machine.Focus(p)
			store.Set(g.store, selectionKey, sel.Toggle(p))
		default:
			g.machine.Focus(p)
			store.Set(g.store, selectionKey, sel.BeginDrag(p))
		}
	})
}

// PointerMove extends an active drag to p.
func (g *Grid) PointerMove(p cell.Position) {
	g.input(func() {
		sel := store.Get(g.store, selectionKey)
		if !sel.IsSelecting {
			return
		}
		p = g.Bounds().Clamp(p)
		store.Set(g.store, selectionKey, sel.DragTo(p, g.Bounds()))
	})
}

// PointerUp ends a drag wherever the pointer is.
func (g *Grid) PointerUp() {
	g.input(func() {
		store.Set(g.store, selectionKey, store.Get(g.store, selectionKey).EndDrag())
	})
}

// DoubleClick opens the editor on p.
func (g *Grid) DoubleClick(p cell.Position) {
	g.input(func() {
		if !g.Bounds().Contains(p) {
			return
		}
		if c, ok := g.Column(p.ColumnID); ok && c.Boolean {
			g.machine.Focus(p)
			g.toggleBoolean(p)
			return
		}
		g.machine.Begin(p)
	})
}

// ClickOutside handles a click anywhere off the grid body.
func (g *Grid) ClickOutside() {
	g.input(func() {
		g.machine.ClickOutside()
		store.Set(g.store, addRowKey, false)
		store.Set(g.store, contextMenuKey, ContextMenu{})
		store.Set(g.store, selectionKey, store.Get(g.store, selectionKey).EndDrag().Clear())
	})
}

// Focus moves the cursor to p as a keyboard move would.
func (g *Grid) Focus(p cell.Position) {
	g.input(func() {
		if g.Bounds().Contains(p) {
			g.moveTo(p)
		}
	})
}

// BeginEdit opens the editor on the focused cell.
func (g *Grid) BeginEdit() {
	g.input(func() {
		if f, ok := g.focus(); ok {
			g.machine.Begin(f)
		}
	})
}

// Input replaces the open editor's value, e.g. from a text widget.
func (g *Grid) Input(text string) {
	g.input(func() { g.machine.Input(text) })
}

// CommitEdit closes the open editor with a commit.
func (g *Grid) CommitEdit() {
	g.input(func() { g.machine.Blur() })
}

// CancelEdit closes the open editor and restores the original value.
func (g *Grid) CancelEdit() bool {
	ok := false
	g.input(func() { ok = g.machine.Escape() })
	return ok
}

// OpenContextMenu opens the context menu at x, y.
func (g *Grid) OpenContextMenu(x, y int) {
	store.Set(g.store, contextMenuKey, ContextMenu{Open: true, X: x, Y: y})
}

// CloseContextMenu closes the context menu.
func (g *Grid) CloseContextMenu() {
	store.Set(g.store, contextMenuKey, ContextMenu{})
}

// SearchOpen reports whether the search bar is open.
func (g *Grid) SearchOpen() bool { return store.Get(g.store, searchOpenKey) }

// SetSearchOpen opens or closes search. Opening leaves focus and editing
// alone; closing clears the query and its matches.
func (g *Grid) SetSearchOpen(open bool) {
	g.store.Batch(func() {
		store.Set(g.store, searchOpenKey, open)
		if !open {
			store.Set(g.store, queryKey, "")
			g.setMatches(nil, -1)
		}
	})
}

// Search returns the search state.
func (g *Grid) Search() search.State {
	s := g.store.State()
	return search.State{Query: s.SearchQuery, Matches: s.SearchMatches, MatchIndex: s.MatchIndex, Open: s.SearchOpen}
}

// SetSearchQuery rescans the rows for query and focuses the first match.
func (g *Grid) SetSearchQuery(query string) {
	g.input(func() {
		store.Set(g.store, queryKey, query)
		g.refreshMatches(true)
	})
}

// NextMatch focuses the following match, wrapping at the end.
func (g *Grid) NextMatch() {
	g.input(func() {
		g.setMatchIndex(g.Search().Next().MatchIndex)
	})
}

// PrevMatch focuses the preceding match, wrapping at the start.
func (g *Grid) PrevMatch() {
	g.input(func() {
		g.setMatchIndex(g.Search().Prev().MatchIndex)
	})
}

// SetMatchIndex focuses match i.
func (g *Grid) SetMatchIndex(i int) {
	g.input(func() { g.setMatchIndex(i) })
}

func (g *Grid) setMatchIndex(i int) {
	matches := store.Get(g.store, matchesKey)
	if i < 0 || i >= len(matches) {
		return
	}
	store.Set(g.store, matchIndexKey, i)
	g.focusMatch(matches[i])
}

func (g *Grid) focusMatch(p cell.Position) {
	g.moveTo(p)
	g.ScrollToRow(p.RowIndex, virtual.AlignCenter)
}

// refreshMatches recomputes matches for the current query. With jump set
// the first match is focused; otherwise the pointer is kept in range.
func (g *Grid) refreshMatches(jump bool) {
	q := store.Get(g.store, queryKey)
	if q == "" {
		g.setMatches(nil, -1)
		return
	}
	matches := search.Find(q, g.Rows(), g.ColumnIDs(), g.opts.Format)
	idx := -1
	if len(matches) > 0 {
		idx = 0
		if !jump {
			idx = min(max(store.Get(g.store, matchIndexKey), 0), len(matches)-1)
		}
	}
	g.setMatches(matches, idx)
	if jump && idx >= 0 {
		g.focusMatch(matches[idx])
	}
}

func (g *Grid) setMatches(matches []cell.Position, idx int) {
	store.Set(g.store, matchesKey, matches)
	store.Set(g.store, matchIndexKey, idx)
	if len(matches) == 0 {
		g.matchSet = nil
		return
	}
	g.matchSet = make(map[cell.Position]int, len(matches))
	for i, p := range matches {
		g.matchSet[p] = i
	}
}

// CellState is what a renderer needs to draw one cell.
type CellState struct {
	Focused      bool
	Editing      bool
	Selected     bool
	Match        bool
	CurrentMatch bool
}

// CellState reports the render mode of p.
func (g *Grid) CellState(p cell.Position) CellState {
	s := g.store.State()
	cs := CellState{
		Focused:  s.FocusedCell != nil && *s.FocusedCell == p && !s.AddRowFocused,
		Editing:  s.EditingCell != nil && *s.EditingCell == p,
		Selected: s.Selection.Contains(p),
	}
	if _, ok := s.RowSelection[p.RowIndex]; ok {
		cs.Selected = true
	}
	if i, ok := g.matchSet[p]; ok {
		cs.Match = true
		cs.CurrentMatch = i == s.MatchIndex
	}
	return cs
}

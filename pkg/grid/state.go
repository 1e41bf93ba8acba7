package grid

import (
	"tableflip.dev/dbgrid/pkg/grid/cell"
	"tableflip.dev/dbgrid/pkg/grid/editing"
	"tableflip.dev/dbgrid/pkg/grid/selection"
	"tableflip.dev/dbgrid/pkg/grid/store"
	"tableflip.dev/dbgrid/pkg/grid/virtual"
)

// Column is a grid column. Order in the column list is render order.
type Column struct {
	ID            string
	DataTypeLabel string
	MinWidth      int

	// Policy is the commit policy used when the column is edited.
	Policy editing.Policy
	// Boolean columns toggle on space instead of opening an editor.
	Boolean bool
}

// Row maps column ids to values.
type Row = map[string]any

// SortEntry is one column of the sort order.
type SortEntry struct {
	ColumnID string
	Desc     bool
}

// ContextMenu is the right-click menu.
type ContextMenu struct {
	Open bool
	X, Y int
}

// State is everything the grid knows. It is owned by the grid's store.
type State struct {
	Columns   []Column
	Rows      []Row
	TotalRows int

	Sorting      []SortEntry
	RowHeight    virtual.RowHeight
	RowSelection map[int]struct{}

	Selection   *selection.State
	FocusedCell *cell.Position
	EditingCell *cell.Position
	ContextMenu ContextMenu

	SearchQuery   string
	SearchMatches []cell.Position
	MatchIndex    int
	SearchOpen    bool

	LastClickedRowIndex int
	IsScrolling         bool
	ScrollOffset        int
	ViewportHeight      int

	// AddRowFocused is set while the cursor sits on the add-row affordance
	// below the last row.
	AddRowFocused bool
}

func initialState(columns []Column, rows []Row, total int, h virtual.RowHeight) State {
	if h == "" {
		h = virtual.Short
	}
	if total < len(rows) {
		total = len(rows)
	}
	return State{
		Columns:             columns,
		Rows:                rows,
		TotalRows:           total,
		Sorting:             []SortEntry{},
		RowHeight:           h,
		RowSelection:        map[int]struct{}{},
		Selection:           selection.New(),
		MatchIndex:          -1,
		LastClickedRowIndex: -1,
	}
}

func samePosition(a, b *cell.Position) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

var (
	columnsKey      = store.NewKey("columns", func(s *State) *[]Column { return &s.Columns })
	rowsKey         = store.NewKey("rows", func(s *State) *[]Row { return &s.Rows })
	totalRowsKey    = store.NewKey("totalRows", func(s *State) *int { return &s.TotalRows })
	sortingKey      = store.NewKey("sorting", func(s *State) *[]SortEntry { return &s.Sorting })
	rowHeightKey    = store.NewKey("rowHeight", func(s *State) *virtual.RowHeight { return &s.RowHeight })
	rowSelectionKey = store.NewKey("rowSelection", func(s *State) *map[int]struct{} { return &s.RowSelection })
	selectionKey    = store.NewKey("selectionState", func(s *State) **selection.State { return &s.Selection })
	focusedKey      = store.NewKeyFunc("focusedCell", func(s *State) **cell.Position { return &s.FocusedCell }, samePosition)
	editingKey      = store.NewKeyFunc("editingCell", func(s *State) **cell.Position { return &s.EditingCell }, samePosition)
	contextMenuKey  = store.NewKey("contextMenu", func(s *State) *ContextMenu { return &s.ContextMenu })
	queryKey        = store.NewKey("searchQuery", func(s *State) *string { return &s.SearchQuery })
	matchesKey      = store.NewKey("searchMatches", func(s *State) *[]cell.Position { return &s.SearchMatches })
	matchIndexKey   = store.NewKey("matchIndex", func(s *State) *int { return &s.MatchIndex })
	searchOpenKey   = store.NewKey("searchOpen", func(s *State) *bool { return &s.SearchOpen })
	lastClickedKey  = store.NewKey("lastClickedRowIndex", func(s *State) *int { return &s.LastClickedRowIndex })
	scrollingKey    = store.NewKey("isScrolling", func(s *State) *bool { return &s.IsScrolling })
	scrollOffsetKey = store.NewKey("scrollOffset", func(s *State) *int { return &s.ScrollOffset })
	viewportKey     = store.NewKey("viewportHeight", func(s *State) *int { return &s.ViewportHeight })
	addRowKey       = store.NewKey("addRowFocused", func(s *State) *bool { return &s.AddRowFocused })
)

// cursor lets the editing machine keep focus in the store.
type cursor struct {
	s *store.Store[State]
}

func (c cursor) Focus() *cell.Position { return store.Get(c.s, focusedKey) }
func (c cursor) Edit() *cell.Position  { return store.Get(c.s, editingKey) }

func (c cursor) SetCursor(focus, edit *cell.Position) {
	c.s.Batch(func() {
		store.Set(c.s, focusedKey, focus)
		store.Set(c.s, editingKey, edit)
	})
}

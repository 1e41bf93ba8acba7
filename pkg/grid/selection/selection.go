// Package selection models the set of selected grid cells.
//
// A State is never mutated after it is returned; every operation hands back
// a new State, or the receiver itself when nothing changed. That lets the
// grid store compare selections by reference.
package selection

import (
	"maps"
	"slices"

	"tableflip.dev/dbgrid/pkg/grid/cell"
)

// Range is the rectangle spanned by an anchor and a head. The rectangle is
// inclusive and does not depend on which corner is which.
type Range struct {
	Anchor cell.Position
	Head   cell.Position
}

// State is a selection snapshot.
type State struct {
	Cells       map[cell.Position]struct{}
	Range       *Range
	IsSelecting bool
}

// New returns an empty selection.
func New() *State {
	return &State{Cells: map[cell.Position]struct{}{}}
}

// Len is the number of selected cells.
func (s *State) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Cells)
}

// Empty reports whether nothing is selected.
func (s *State) Empty() bool {
	return s.Len() == 0
}

// Contains reports whether p is selected.
func (s *State) Contains(p cell.Position) bool {
	if s == nil {
		return false
	}
	_, ok := s.Cells[p]
	return ok
}

// Positions returns the selected cells ordered by row, then column order in b.
func (s *State) Positions(b cell.Bounds) []cell.Position {
	if s == nil {
		return nil
	}
	out := slices.Collect(maps.Keys(s.Cells))
	slices.SortFunc(out, func(x, y cell.Position) int {
		switch {
		case b.Less(x, y):
			return -1
		case b.Less(y, x):
			return 1
		}
		return 0
	})
	return out
}

// SelectSingle selects exactly p and collapses the range onto it.
func (s *State) SelectSingle(p cell.Position) *State {
	return &State{
		Cells:       map[cell.Position]struct{}{p: {}},
		Range:       &Range{Anchor: p, Head: p},
		IsSelecting: s != nil && s.IsSelecting,
	}
}

// ExtendTo keeps the current anchor and moves the head to p. Cells toggled
// outside the previous rectangle survive; the previous rectangle is replaced
// by the new one. Without a range, ExtendTo behaves like SelectSingle.
func (s *State) ExtendTo(p cell.Position, b cell.Bounds) *State {
	if s == nil || s.Range == nil {
		return s.SelectSingle(p)
	}
	return s.ExtendFrom(s.Range.Anchor, p, b)
}

// ExtendFrom is ExtendTo with an explicit anchor, used when the caller tracks
// the anchor itself (e.g. the focused cell before a shift+arrow).
func (s *State) ExtendFrom(anchor, head cell.Position, b cell.Bounds) *State {
	cells := map[cell.Position]struct{}{}
	if s != nil {
		maps.Copy(cells, s.Cells)
		if s.Range != nil {
			for p := range Rect(s.Range.Anchor, s.Range.Head, b) {
				delete(cells, p)
			}
		}
	}
	maps.Copy(cells, Rect(anchor, head, b))
	return &State{
		Cells:       cells,
		Range:       &Range{Anchor: anchor, Head: head},
		IsSelecting: s != nil && s.IsSelecting,
	}
}

// Toggle adds or removes p without touching the range. The selection may no
// longer be a rectangle afterwards.
func (s *State) Toggle(p cell.Position) *State {
	next := &State{Cells: map[cell.Position]struct{}{}}
	if s != nil {
		maps.Copy(next.Cells, s.Cells)
		next.Range = s.Range
		next.IsSelecting = s.IsSelecting
	}
	if _, ok := next.Cells[p]; ok {
		delete(next.Cells, p)
	} else {
		next.Cells[p] = struct{}{}
	}
	return next
}

// Clear empties the selection. An already empty, idle selection is returned
// unchanged.
func (s *State) Clear() *State {
	if s != nil && len(s.Cells) == 0 && s.Range == nil && !s.IsSelecting {
		return s
	}
	return New()
}

// BeginDrag starts a pointer drag at p.
func (s *State) BeginDrag(p cell.Position) *State {
	next := s.SelectSingle(p)
	next.IsSelecting = true
	return next
}

// DragTo extends the selection to p while a drag is in progress.
func (s *State) DragTo(p cell.Position, b cell.Bounds) *State {
	if s == nil || !s.IsSelecting {
		return s
	}
	if s.Range != nil && s.Range.Head == p {
		return s
	}
	return s.ExtendTo(p, b)
}

// EndDrag finishes a drag. It is safe to call when no drag is active.
func (s *State) EndDrag() *State {
	if s == nil || !s.IsSelecting {
		return s
	}
	return &State{Cells: s.Cells, Range: s.Range}
}

// SelectRows selects every cell of rows from..to, inclusive, in either order.
func (s *State) SelectRows(from, to int, b cell.Bounds) *State {
	if b.Empty() {
		return s.Clear()
	}
	anchor := b.Clamp(cell.Position{RowIndex: from, ColumnID: b.Columns[0]})
	head := b.Clamp(cell.Position{RowIndex: to, ColumnID: b.Columns[len(b.Columns)-1]})
	return &State{
		Cells: Rect(anchor, head, b),
		Range: &Range{Anchor: anchor, Head: head},
	}
}

// SelectAll selects every cell in b.
func (s *State) SelectAll(b cell.Bounds) *State {
	return s.SelectRows(0, b.Rows-1, b)
}

// Prune drops cells outside b and clamps the range endpoints into it. It
// returns s itself when nothing was stale.
func (s *State) Prune(b cell.Bounds) *State {
	if s == nil {
		return s
	}
	stale := false
	for p := range s.Cells {
		if !b.Contains(p) {
			stale = true
			break
		}
	}
	rangeStale := s.Range != nil && (!b.Contains(s.Range.Anchor) || !b.Contains(s.Range.Head))
	if !stale && !rangeStale {
		return s
	}
	next := &State{Cells: map[cell.Position]struct{}{}, IsSelecting: s.IsSelecting}
	for p := range s.Cells {
		if b.Contains(p) {
			next.Cells[p] = struct{}{}
		}
	}
	if s.Range != nil && !b.Empty() {
		next.Range = &Range{Anchor: b.Clamp(s.Range.Anchor), Head: b.Clamp(s.Range.Head)}
	}
	return next
}

// Rect returns the cells of the rectangle spanned by a and h, limited to b.
func Rect(a, h cell.Position, b cell.Bounds) map[cell.Position]struct{} {
	out := map[cell.Position]struct{}{}
	ai, hi := b.ColumnIndex(a.ColumnID), b.ColumnIndex(h.ColumnID)
	if ai < 0 || hi < 0 {
		for _, p := range []cell.Position{a, h} {
			if b.Contains(p) {
				out[p] = struct{}{}
			}
		}
		return out
	}
	r0, r1 := min(a.RowIndex, h.RowIndex), max(a.RowIndex, h.RowIndex)
	r0, r1 = max(r0, 0), min(r1, b.Rows-1)
	c0, c1 := min(ai, hi), max(ai, hi)
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			out[cell.Position{RowIndex: r, ColumnID: b.Columns[c]}] = struct{}{}
		}
	}
	return out
}

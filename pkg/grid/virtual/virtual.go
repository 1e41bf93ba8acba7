// Package virtual computes which rows of a tall list need to be rendered.
//
// All units are abstract: pass pixels with RowHeight.Pixels or terminal
// lines with RowHeight.Lines, as long as Height and ScrollOffset agree.
package virtual

import "iter"

// Viewport is the input to Compute.
type Viewport struct {
	RowCount     int
	RowHeight    int
	Height       int
	ScrollOffset int
	Overscan     int
}

// Window is the slice of rows to mount. Start is inclusive, End exclusive.
// OffsetTop is the position of row Start inside the content.
type Window struct {
	Start       int
	End         int
	TotalHeight int
	OffsetTop   int

	// First and Last bracket the rows that intersect the viewport, without
	// overscan. Last is -1 when nothing is visible.
	First int
	Last  int

	// ScrollOffset is the clamped offset the window was computed from.
	ScrollOffset int
}

// Len is the number of mounted rows.
func (w Window) Len() int {
	return w.End - w.Start
}

// Empty reports whether no row is mounted.
func (w Window) Empty() bool {
	return w.End <= w.Start
}

// Indexes yields the mounted row indexes in order.
func (w Window) Indexes() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := w.Start; i < w.End; i++ {
			if !yield(i) {
				return
			}
		}
	}
}

// Contains reports whether row i is mounted.
func (w Window) Contains(i int) bool {
	return i >= w.Start && i < w.End
}

// TotalHeight is RowCount*RowHeight, or 0 for an empty list.
func (v Viewport) TotalHeight() int {
	if v.RowCount <= 0 || v.RowHeight <= 0 {
		return 0
	}
	return v.RowCount * v.RowHeight
}

// MaxScroll is the largest offset that still fills the viewport.
func (v Viewport) MaxScroll() int {
	return max(0, v.TotalHeight()-max(v.Height, 0))
}

// ClampOffset pulls off into [0, MaxScroll].
func (v Viewport) ClampOffset(off int) int {
	return min(max(off, 0), v.MaxScroll())
}

// Compute returns the window for v. It does constant work regardless of the
// row count.
func (v Viewport) Compute() Window {
	total := v.TotalHeight()
	if total == 0 || v.Height <= 0 {
		return Window{TotalHeight: total, Last: -1}
	}
	off := v.ClampOffset(v.ScrollOffset)
	first := off / v.RowHeight
	last := min(v.RowCount-1, (off+v.Height-1)/v.RowHeight)
	over := max(v.Overscan, 0)
	start := max(0, first-over)
	end := min(v.RowCount-1, last+over) + 1
	return Window{
		Start:        start,
		End:          end,
		TotalHeight:  total,
		OffsetTop:    start * v.RowHeight,
		First:        first,
		Last:         last,
		ScrollOffset: off,
	}
}

// PageSize is the number of rows that fit entirely in the viewport, at
// least 1.
func (v Viewport) PageSize() int {
	if v.RowHeight <= 0 {
		return 1
	}
	return max(1, v.Height/v.RowHeight)
}

// Align says where ScrollToIndex places the row.
type Align int

const (
	// AlignAuto scrolls the least distance that makes the row fully visible.
	AlignAuto Align = iota
	AlignStart
	AlignCenter
	AlignEnd
)

// ScrollToIndex returns the clamped offset that brings row index into view.
func (v Viewport) ScrollToIndex(index int, align Align) int {
	if v.RowCount <= 0 || v.RowHeight <= 0 {
		return 0
	}
	index = min(max(index, 0), v.RowCount-1)
	top := index * v.RowHeight
	bottom := top + v.RowHeight
	cur := v.ClampOffset(v.ScrollOffset)
	var off int
	switch align {
	case AlignStart:
		off = top
	case AlignEnd:
		off = bottom - v.Height
	case AlignCenter:
		off = top - (v.Height-v.RowHeight)/2
	default:
		switch {
		case top < cur:
			off = top
		case bottom > cur+v.Height:
			off = bottom - v.Height
		default:
			off = cur
		}
	}
	return v.ClampOffset(off)
}

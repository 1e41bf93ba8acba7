// Package cell addresses grid cells by row index and column id.
package cell

import (
	"strconv"
	"strings"
)

// Position identifies one grid cell. Row indexes are positional: they refer
// to the current (possibly filtered or sorted) row sequence.
type Position struct {
	RowIndex int
	ColumnID string
}

// Zero is the sentinel returned for malformed keys.
var Zero = Position{}

// Key formats a position as "<row>:<column>".
func Key(rowIndex int, columnID string) string {
	return strconv.Itoa(rowIndex) + ":" + columnID
}

// Key returns the string key of p.
func (p Position) Key() string {
	return Key(p.RowIndex, p.ColumnID)
}

func (p Position) String() string {
	return p.Key()
}

// Parse is the inverse of Key. Anything that does not carry a non-negative
// row number followed by ":" yields Zero. The column id is everything after
// the first ":" so ids that contain ":" round-trip.
func Parse(key string) Position {
	row, col, ok := strings.Cut(key, ":")
	if !ok || row == "" {
		return Zero
	}
	for _, r := range row {
		if r < '0' || r > '9' {
			return Zero
		}
	}
	n, err := strconv.Atoi(row)
	if err != nil {
		return Zero
	}
	return Position{RowIndex: n, ColumnID: col}
}

// Less orders positions by row, then by column order as reported by index.
func (p Position) Less(o Position, index func(string) int) bool {
	if p.RowIndex != o.RowIndex {
		return p.RowIndex < o.RowIndex
	}
	return index(p.ColumnID) < index(o.ColumnID)
}

// Bounds describes the addressable area of a grid: a row count and an ordered
// list of column ids.
type Bounds struct {
	Rows    int
	Columns []string

	index map[string]int
}

// NewBounds builds Bounds for rows rows over the given columns.
func NewBounds(rows int, columns []string) Bounds {
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		idx[c] = i
	}
	return Bounds{Rows: rows, Columns: columns, index: idx}
}

// ColumnIndex returns the render position of id, or -1.
func (b Bounds) ColumnIndex(id string) int {
	if b.index == nil {
		for i, c := range b.Columns {
			if c == id {
				return i
			}
		}
		return -1
	}
	if i, ok := b.index[id]; ok {
		return i
	}
	return -1
}

// Contains reports whether p addresses a cell inside b.
func (b Bounds) Contains(p Position) bool {
	return p.RowIndex >= 0 && p.RowIndex < b.Rows && b.ColumnIndex(p.ColumnID) >= 0
}

// Empty reports whether b addresses no cell at all.
func (b Bounds) Empty() bool {
	return b.Rows <= 0 || len(b.Columns) == 0
}

// Clamp moves p to the nearest position inside b. An unknown column clamps to
// the first column. Clamp on empty bounds returns Zero.
func (b Bounds) Clamp(p Position) Position {
	if b.Empty() {
		return Zero
	}
	row := min(max(p.RowIndex, 0), b.Rows-1)
	col := p.ColumnID
	if b.ColumnIndex(col) < 0 {
		col = b.Columns[0]
	}
	return Position{RowIndex: row, ColumnID: col}
}

// Offset moves p by dr rows and dc columns, clamped to b.
func (b Bounds) Offset(p Position, dr, dc int) Position {
	if b.Empty() {
		return Zero
	}
	ci := b.ColumnIndex(p.ColumnID)
	if ci < 0 {
		ci = 0
	}
	ci = min(max(ci+dc, 0), len(b.Columns)-1)
	row := min(max(p.RowIndex+dr, 0), b.Rows-1)
	return Position{RowIndex: row, ColumnID: b.Columns[ci]}
}

// Less orders two positions by row, then column order in b.
func (b Bounds) Less(p, o Position) bool {
	return p.Less(o, b.ColumnIndex)
}

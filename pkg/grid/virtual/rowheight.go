package virtual

import (
	"fmt"
	"strings"
)

// RowHeight is the user-selectable row density.
type RowHeight string

const (
	Short     RowHeight = "short"
	Medium    RowHeight = "medium"
	Tall      RowHeight = "tall"
	ExtraTall RowHeight = "extra-tall"
)

// RowHeights lists the densities from smallest to largest.
var RowHeights = []RowHeight{Short, Medium, Tall, ExtraTall}

// Pixels is the geometry height of a row.
func (h RowHeight) Pixels() int {
	switch h {
	case Medium:
		return 56
	case Tall:
		return 76
	case ExtraTall:
		return 96
	default:
		return 36
	}
}

// Lines is the height of a row in terminal lines.
func (h RowHeight) Lines() int {
	switch h {
	case Medium:
		return 2
	case Tall:
		return 3
	case ExtraTall:
		return 4
	default:
		return 1
	}
}

// Next cycles to the following density, wrapping after ExtraTall.
func (h RowHeight) Next() RowHeight {
	for i, v := range RowHeights {
		if v == h {
			return RowHeights[(i+1)%len(RowHeights)]
		}
	}
	return Short
}

func (h RowHeight) String() string {
	if h == "" {
		return string(Short)
	}
	return string(h)
}

// ParseRowHeight accepts the density names, case-insensitively. "extra_tall"
// and "extratall" are accepted for extra-tall.
func ParseRowHeight(s string) (RowHeight, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "short":
		return Short, nil
	case "medium":
		return Medium, nil
	case "tall":
		return Tall, nil
	case "extra-tall", "extra_tall", "extratall":
		return ExtraTall, nil
	}
	return Short, fmt.Errorf("virtual: unknown row height %q", s)
}

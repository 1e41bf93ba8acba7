// Package search finds cells whose rendered value contains a query.
package search

import (
	"fmt"
	"strings"

	"tableflip.dev/dbgrid/pkg/grid/cell"
)

// Format renders a cell value the way the grid displays it.
func Format(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}

// Find returns every cell whose formatted value contains query, ignoring
// case, ordered by row and then by column order. An empty query matches
// nothing. A nil format uses Format.
func Find(query string, rows []map[string]any, columns []string, format func(any) string) []cell.Position {
	if query == "" {
		return nil
	}
	if format == nil {
		format = Format
	}
	needle := strings.ToLower(query)
	var out []cell.Position
	for r, row := range rows {
		for _, c := range columns {
			if strings.Contains(strings.ToLower(format(row[c])), needle) {
				out = append(out, cell.Position{RowIndex: r, ColumnID: c})
			}
		}
	}
	return out
}

// State is the search bar state.
type State struct {
	Query      string
	Matches    []cell.Position
	MatchIndex int
	Open       bool
}

// NewState returns a closed search with no matches.
func NewState() State {
	return State{MatchIndex: -1}
}

// WithMatches installs a new match list. The pointer goes to the first match,
// or -1 when there is none.
func (s State) WithMatches(query string, matches []cell.Position) State {
	s.Query = query
	s.Matches = matches
	s.MatchIndex = -1
	if len(matches) > 0 {
		s.MatchIndex = 0
	}
	return s
}

// Next advances the pointer, wrapping to the first match.
func (s State) Next() State {
	if len(s.Matches) == 0 {
		s.MatchIndex = -1
		return s
	}
	s.MatchIndex = (s.MatchIndex + 1) % len(s.Matches)
	return s
}

// Prev moves the pointer back, wrapping to the last match.
func (s State) Prev() State {
	n := len(s.Matches)
	if n == 0 {
		s.MatchIndex = -1
		return s
	}
	s.MatchIndex = ((s.MatchIndex-1)%n + n) % n
	return s
}

// Current returns the match under the pointer.
func (s State) Current() (cell.Position, bool) {
	if s.MatchIndex < 0 || s.MatchIndex >= len(s.Matches) {
		return cell.Zero, false
	}
	return s.Matches[s.MatchIndex], true
}

// Label is the "n/m" counter shown next to the search bar.
func (s State) Label() string {
	if len(s.Matches) == 0 {
		if s.Query == "" {
			return ""
		}
		return "0/0"
	}
	return fmt.Sprintf("%d/%d", s.MatchIndex+1, len(s.Matches))
}

package search

import (
	"testing"

	"tableflip.dev/dbgrid/pkg/grid/cell"
)

func TestFindOrdersByRow(t *testing.T) {
	rows := []map[string]any{{"v": "19"}, {"v": "29"}, {"v": "90"}}
	got := Find("9", rows, []string{"v"}, nil)
	if len(got) != 3 {
		t.Fatalf("expected 3 matches, got %v", got)
	}
	for i, p := range got {
		if p.RowIndex != i || p.ColumnID != "v" {
			t.Fatalf("match %d = %v", i, p)
		}
	}

	s := NewState().WithMatches("9", got)
	for range 4 {
		s = s.Next()
	}
	if s.MatchIndex != 1 {
		t.Fatalf("four nexts from 0 on 3 matches should land on 1, got %d", s.MatchIndex)
	}
	s = NewState().WithMatches("9", got)
	s.MatchIndex = 2
	if s.Next().MatchIndex != 0 {
		t.Fatalf("next should wrap to 0")
	}
}

func TestNextCyclesBackToStart(t *testing.T) {
	s := NewState().WithMatches("x", []cell.Position{{RowIndex: 0}, {RowIndex: 1}, {RowIndex: 2}})
	s.MatchIndex = -1
	for range 4 {
		s = s.Next()
	}
	// -1 -> 0 -> 1 -> 2 -> 0
	if s.MatchIndex != 0 {
		t.Fatalf("match index = %d, want 0", s.MatchIndex)
	}
}

func TestFindCaseInsensitiveAcrossColumns(t *testing.T) {
	rows := []map[string]any{
		{"a": "Hello", "b": nil, "c": 12},
		{"a": "x", "b": "HELLO there", "c": true},
	}
	got := Find("hello", rows, []string{"a", "b", "c"}, nil)
	want := []cell.Position{{RowIndex: 0, ColumnID: "a"}, {RowIndex: 1, ColumnID: "b"}}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("matches = %v", got)
	}
	if n := len(Find("12", rows, []string{"c"}, nil)); n != 1 {
		t.Fatalf("numbers should be matched on their rendered text, got %d", n)
	}
}

func TestEmptyQuery(t *testing.T) {
	s := NewState().WithMatches("", Find("", []map[string]any{{"a": "x"}}, []string{"a"}, nil))
	if len(s.Matches) != 0 || s.MatchIndex != -1 {
		t.Fatalf("empty query state = %+v", s)
	}
	if _, ok := s.Current(); ok {
		t.Fatalf("no current match expected")
	}
	if s.Next().MatchIndex != -1 || s.Prev().MatchIndex != -1 {
		t.Fatalf("cycling an empty list should stay at -1")
	}
}

func TestPrevWraps(t *testing.T) {
	s := NewState().WithMatches("q", []cell.Position{{RowIndex: 0}, {RowIndex: 4}})
	s = s.Prev()
	if s.MatchIndex != 1 {
		t.Fatalf("prev from 0 should wrap to last, got %d", s.MatchIndex)
	}
	if p, _ := s.Current(); p.RowIndex != 4 {
		t.Fatalf("current = %v", p)
	}
	if s.Label() != "2/2" {
		t.Fatalf("label = %q", s.Label())
	}
}

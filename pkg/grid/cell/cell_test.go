package cell

import "testing"

func TestKeyRoundTrip(t *testing.T) {
	cases := []Position{
		{RowIndex: 0, ColumnID: "id"},
		{RowIndex: 42, ColumnID: "name"},
		{RowIndex: 7, ColumnID: "a:b:c"},
		{RowIndex: 123456, ColumnID: " spaced "},
	}
	for _, p := range cases {
		if got := Parse(p.Key()); got != p {
			t.Fatalf("Parse(%q) = %#v, want %#v", p.Key(), got, p)
		}
	}
}

func TestParseMalformed(t *testing.T) {
	for _, in := range []string{"", "abc", ":name", "x:name", "-1:name", "1.5:name", "+3:col", "12"} {
		if got := Parse(in); got != Zero {
			t.Fatalf("Parse(%q) = %#v, want sentinel", in, got)
		}
	}
}

func TestBoundsOffsetClamps(t *testing.T) {
	b := NewBounds(3, []string{"a", "b", "c"})
	p := Position{RowIndex: 0, ColumnID: "a"}
	if got := b.Offset(p, -1, -1); got != p {
		t.Fatalf("offset past top-left = %v", got)
	}
	if got := b.Offset(p, 10, 10); got != (Position{RowIndex: 2, ColumnID: "c"}) {
		t.Fatalf("offset past bottom-right = %v", got)
	}
	if got := b.Offset(p, 1, 1); got != (Position{RowIndex: 1, ColumnID: "b"}) {
		t.Fatalf("offset by one = %v", got)
	}
}

func TestBoundsContains(t *testing.T) {
	b := NewBounds(2, []string{"a"})
	if !b.Contains(Position{RowIndex: 1, ColumnID: "a"}) {
		t.Fatalf("expected row 1 inside")
	}
	if b.Contains(Position{RowIndex: 2, ColumnID: "a"}) {
		t.Fatalf("row 2 should be outside")
	}
	if b.Contains(Position{RowIndex: 0, ColumnID: "z"}) {
		t.Fatalf("unknown column should be outside")
	}
	if got := NewBounds(0, nil).Clamp(Position{RowIndex: 4, ColumnID: "a"}); got != Zero {
		t.Fatalf("clamp on empty bounds = %v", got)
	}
}

func TestLessOrdersRowThenColumn(t *testing.T) {
	b := NewBounds(5, []string{"z", "a"})
	if !b.Less(Position{0, "a"}, Position{1, "z"}) {
		t.Fatalf("row should dominate")
	}
	if !b.Less(Position{1, "z"}, Position{1, "a"}) {
		t.Fatalf("column order should follow bounds, not names")
	}
}

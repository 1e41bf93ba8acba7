package eventviewer

import (
	"strings"
	"testing"
	"time"
)

func TestAppendNewestFirstAndCapped(t *testing.T) {
	m := NewModel(2)
	m.SetSize(60, 8)
	at := time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	m.Append(Entry{Timestamp: at, Summary: "first"})
	m.Append(Entry{Timestamp: at, Summary: "second", Source: "grid"})
	m.Append(Entry{Timestamp: at, Summary: "third", Level: LevelError})

	if m.Len() != 2 {
		t.Fatalf("len = %d", m.Len())
	}
	view := m.View()
	if strings.Contains(view, "first") {
		t.Fatal("oldest entry should be dropped")
	}
	if strings.Index(view, "third") > strings.Index(view, "second") {
		t.Fatal("newest entry should be on top")
	}
	if !strings.Contains(view, "[grid]") || !strings.Contains(view, "09:30:00.000") {
		t.Fatalf("view:\n%s", view)
	}
}

package command

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/dbgrid/pkg/tui/events"
	"tableflip.dev/dbgrid/pkg/tui/theme"
	"tableflip.dev/dbgrid/pkg/tui/ui/overlay"
)

func newBar(t *testing.T) *Model {
	t.Helper()
	m := NewModel(Options{ID: "test-command", Theme: theme.Default().Footer, StatusText: "Ready"})
	m.SetSuggestions([]SuggestionOption{
		{Name: "filter", Description: "Filter rows"},
		{Name: "find", Description: "Search cells"},
		{Name: "help", Description: "Show help"},
	})
	m.SetSize(40, 10)
	return m
}

func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func typeText(m *Model, s string) []tea.Msg {
	var out []tea.Msg
	for _, r := range s {
		_, cmd := m.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
		out = append(out, collect(cmd)...)
	}
	return out
}

func TestPromptAnchorsBelowContent(t *testing.T) {
	m := newBar(t)
	body := strings.Repeat("row\n", 20)
	m.SetContent(body, nil)
	m.BeginInput("")

	view, cursor := m.View()
	lines := strings.Split(overlay.StripANSI(view), "\n")
	if len(lines) != 10 {
		t.Fatalf("view has %d lines, want 10", len(lines))
	}
	if !strings.HasPrefix(lines[9], ":") {
		t.Fatalf("prompt line = %q", lines[9])
	}
	if !strings.Contains(view, "filter") || !strings.Contains(view, "help") {
		t.Fatalf("suggestions missing:\n%s", view)
	}
	if cursor != nil && cursor.Y != 9 {
		t.Fatalf("cursor row = %d", cursor.Y)
	}
}

func TestSubmitCommand(t *testing.T) {
	m := newBar(t)
	m.BeginInput("")
	typeText(m, "filter age > 3")
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	var submit *events.CommandSubmitMsg
	for _, msg := range collect(cmd) {
		if v, ok := msg.(events.CommandSubmitMsg); ok {
			submit = &v
		}
	}
	if submit == nil || submit.Value != "filter age > 3" || submit.Mode != events.CommandModeInput {
		t.Fatalf("submit = %+v", submit)
	}
	if m.Active() {
		t.Fatal("prompt should close after submit")
	}
}

func TestSearchStaysOpenOnEnter(t *testing.T) {
	m := newBar(t)
	m.BeginSearch("")
	var last events.CommandChangeMsg
	for _, msg := range typeText(m, "ab") {
		if v, ok := msg.(events.CommandChangeMsg); ok {
			last = v
		}
	}
	if last.Value != "ab" || last.Mode != events.CommandModeSearch {
		t.Fatalf("change = %#v", last)
	}
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	msgs := collect(cmd)
	if len(msgs) != 1 {
		t.Fatalf("msgs = %#v", msgs)
	}
	if v, ok := msgs[0].(events.CommandSubmitMsg); !ok || v.Mode != events.CommandModeSearch {
		t.Fatalf("submit = %#v", msgs[0])
	}
	if m.Mode() != events.CommandModeSearch {
		t.Fatal("search prompt should stay open")
	}
	if view, _ := m.View(); !strings.Contains(overlay.StripANSI(view), "/ab") {
		t.Fatalf("search prompt not rendered:\n%s", view)
	}
}

func TestEscapeCancels(t *testing.T) {
	m := newBar(t)
	m.BeginInput("he")
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	cancelled := false
	for _, msg := range collect(cmd) {
		if v, ok := msg.(events.CommandCancelMsg); ok && v.Mode == events.CommandModeInput {
			cancelled = true
		}
	}
	if !cancelled || m.Active() {
		t.Fatal("escape should cancel the prompt")
	}
}

func TestSuggestionCycleAndRestore(t *testing.T) {
	m := newBar(t)
	m.BeginInput("f")
	m.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	if m.Value() != "filter" {
		t.Fatalf("value = %q", m.Value())
	}
	m.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	if m.Value() != "find" {
		t.Fatalf("value = %q", m.Value())
	}
	m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if m.Value() != "f" || !m.Active() {
		t.Fatalf("escape should restore the typed text, got %q", m.Value())
	}
}

func TestStatusLine(t *testing.T) {
	m := newBar(t)
	m.SetInfo("page 1 of 2")
	m.SetError(errors.New("boom"))
	view, _ := m.View()
	last := strings.Split(overlay.StripANSI(view), "\n")[9]
	if !strings.HasPrefix(last, "boom") || !strings.HasSuffix(last, "page 1 of 2") {
		t.Fatalf("status line = %q", last)
	}
}

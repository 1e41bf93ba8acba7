// Package tablenav lists the tables of the open database.
package tablenav

import (
	"github.com/charmbracelet/bubbles/v2/list"
	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/dbgrid/pkg/tui/events"
)

// Model wraps a bubbles list of table names.
type Model struct {
	id          events.ComponentID
	list        list.Model
	highlighted string
}

// NewModel constructs the list with the provided table names.
func NewModel(id events.ComponentID, names []string) *Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetSpacing(0)
	l := list.New(items(names), delegate, 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()
	m := &Model{id: id, list: l}
	m.highlighted = m.Selected()
	return m
}

// SetItems replaces the listed tables and keeps the cursor on the same name
// when it still exists.
func (m *Model) SetItems(names []string) {
	current := m.Selected()
	m.list.SetItems(items(names))
	m.Select(current)
	m.highlighted = m.Selected()
}

// Select moves the cursor to name.
func (m *Model) Select(name string) bool {
	for i, it := range m.list.Items() {
		if it.(tableItem).name == name {
			m.list.Select(i)
			return true
		}
	}
	return false
}

// Selected returns the table under the cursor, or "".
func (m *Model) Selected() string {
	if it, ok := m.list.SelectedItem().(tableItem); ok {
		return it.name
	}
	return ""
}

// Len returns the number of listed tables.
func (m *Model) Len() int { return len(m.list.Items()) }

// Filtering reports whether the filter prompt is being edited.
func (m *Model) Filtering() bool { return m.list.FilterState() == list.Filtering }

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// Update forwards messages to the list. Enter opens the highlighted table.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyPressMsg); ok && key.String() == "enter" && !m.Filtering() {
		if name := m.Selected(); name != "" {
			return m, events.TableSelectCmd(m.id, name)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	cmds := []tea.Cmd{cmd}
	if name := m.Selected(); name != m.highlighted {
		m.highlighted = name
		id := m.id
		cmds = append(cmds, func() tea.Msg {
			return events.TableHighlightMsg{Component: id, Table: name}
		})
	}
	return m, tea.Batch(cmds...)
}

// View renders the list.
func (m *Model) View() string {
	if m.Len() == 0 {
		return "no tables"
	}
	return m.list.View()
}

func items(names []string) []list.Item {
	out := make([]list.Item, 0, len(names))
	for _, name := range names {
		out = append(out, tableItem{name: name})
	}
	return out
}

type tableItem struct {
	name string
}

func (t tableItem) Title() string       { return t.name }
func (tableItem) Description() string   { return "" }
func (t tableItem) FilterValue() string { return t.name }

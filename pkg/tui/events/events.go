package events

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/dbgrid/pkg/grid"
)

// ComponentID uniquely identifies a component instance emitting events.
type ComponentID string

// TableHighlightMsg is emitted when a table is highlighted in the table list.
type TableHighlightMsg struct {
	Component ComponentID
	Table     string
}

// Describe renders the highlight in a human-friendly format for logs.
func (m TableHighlightMsg) Describe() string {
	return fmt.Sprintf(`table:%q`, m.Table)
}

// TableSelectMsg is emitted when the user opens a table (e.g. presses Enter).
type TableSelectMsg struct {
	Component ComponentID
	Table     string
}

// Describe renders the selection in a human-friendly format for logs.
func (m TableSelectMsg) Describe() string {
	return fmt.Sprintf(`table:%q`, m.Table)
}

// TableSelectCmd wraps TableSelectMsg into a tea.Cmd.
func TableSelectCmd(component ComponentID, table string) tea.Cmd {
	return func() tea.Msg {
		return TableSelectMsg{Component: component, Table: table}
	}
}

// CellUpdateMsg is emitted once per committed edit.
type CellUpdateMsg struct {
	Component ComponentID
	Update    grid.Update
}

// Describe renders the update for logs.
func (m CellUpdateMsg) Describe() string {
	return fmt.Sprintf(`row:%d column:%q`, m.Update.RowIndex, m.Update.ColumnID)
}

// EditStopMsg is emitted when an editor closes.
type EditStopMsg struct {
	Component ComponentID
	Event     grid.StopEvent
}

// Describe renders the stop for logs.
func (m EditStopMsg) Describe() string {
	return fmt.Sprintf(`cell:%s next:%t direction:%q cancelled:%t`,
		m.Event.Position, m.Event.MoveToNextRow, m.Event.Direction, m.Event.Cancelled)
}

// RowAddMsg asks the host to append a row.
type RowAddMsg struct {
	Component ComponentID
}

// Describe implements the logging helper.
func (m RowAddMsg) Describe() string { return string(m.Component) }

// SortChangeMsg is emitted when a header click changes the sort.
type SortChangeMsg struct {
	Component ComponentID
	Sorting   []grid.SortEntry
}

// Describe implements the logging helper.
func (m SortChangeMsg) Describe() string {
	if len(m.Sorting) == 0 {
		return "none"
	}
	s := m.Sorting[0]
	dir := "asc"
	if s.Desc {
		dir = "desc"
	}
	return fmt.Sprintf(`column:%q dir:%s`, s.ColumnID, dir)
}

// CopyMsg carries text the user copied from the grid.
type CopyMsg struct {
	Component ComponentID
	Text      string
}

// Describe implements the logging helper.
func (m CopyMsg) Describe() string { return fmt.Sprintf("bytes:%d", len(m.Text)) }

// CommandMode is the state of the prompt bar.
type CommandMode string

const (
	// CommandModePassive shows the status line.
	CommandModePassive CommandMode = "passive"
	// CommandModeInput collects a ":" command.
	CommandModeInput CommandMode = "input"
	// CommandModeSearch collects a grid search query.
	CommandModeSearch CommandMode = "search"
)

// CommandChangeMsg is emitted when the prompt value changes.
type CommandChangeMsg struct {
	Component ComponentID
	Value     string
	Mode      CommandMode
}

// Describe implements the logging helper.
func (m CommandChangeMsg) Describe() string {
	return fmt.Sprintf(`value:%q mode:%q`, m.Value, m.Mode)
}

// CommandSubmitMsg is emitted when the prompt is submitted with enter.
type CommandSubmitMsg struct {
	Component ComponentID
	Value     string
	Mode      CommandMode
}

// Describe implements the logging helper.
func (m CommandSubmitMsg) Describe() string {
	return fmt.Sprintf(`value:%q mode:%q`, m.Value, m.Mode)
}

// CommandCancelMsg is emitted when the prompt is dismissed.
type CommandCancelMsg struct {
	Component ComponentID
	Mode      CommandMode
}

// Describe implements the logging helper.
func (m CommandCancelMsg) Describe() string {
	return fmt.Sprintf(`component:%q mode:%q`, m.Component, m.Mode)
}

// CommandChangeCmd wraps CommandChangeMsg.
func CommandChangeCmd(component ComponentID, value string, mode CommandMode) tea.Cmd {
	return func() tea.Msg {
		return CommandChangeMsg{Component: component, Value: value, Mode: mode}
	}
}

// CommandSubmitCmd wraps CommandSubmitMsg.
func CommandSubmitCmd(component ComponentID, value string, mode CommandMode) tea.Cmd {
	return func() tea.Msg {
		return CommandSubmitMsg{Component: component, Value: value, Mode: mode}
	}
}

// CommandCancelCmd wraps CommandCancelMsg.
func CommandCancelCmd(component ComponentID, mode CommandMode) tea.Cmd {
	return func() tea.Msg {
		return CommandCancelMsg{Component: component, Mode: mode}
	}
}

// TimerMsg carries a timer callback to the UI goroutine.
type TimerMsg struct {
	Fn func()
}

// Describer is implemented by messages that render a log line.
type Describer interface {
	Describe() string
}

// Describe returns a log string for msg, or "" when msg is not an event.
func Describe(msg tea.Msg) string {
	if d, ok := msg.(Describer); ok {
		return fmt.Sprintf("%T %s", msg, d.Describe())
	}
	return ""
}

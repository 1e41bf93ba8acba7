package ui

import tea "github.com/charmbracelet/bubbletea/v2"

// Overlay is a modal surface drawn over the main view, such as help or the
// schema panel.
type Overlay interface {
	Init() tea.Cmd
	Update(tea.Msg) (Overlay, tea.Cmd)
	View() (string, *tea.Cursor)
	SetSize(width, height int)
}

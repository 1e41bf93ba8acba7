// Package panel renders a framed block of text lines as an overlay.
package panel

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/dbgrid/pkg/tui/theme"
	"tableflip.dev/dbgrid/pkg/tui/ui"
)

// Model renders an information panel with a title and body lines. Lines
// past the panel height scroll with up and down.
type Model struct {
	title  string
	lines  []string
	offset int

	width  int
	height int

	frameStyle lipgloss.Style
	titleStyle lipgloss.Style
	bodyStyle  lipgloss.Style
}

// New returns an empty panel.
func New(th theme.PanelTheme) *Model {
	return &Model{
		frameStyle: th.FocusFrame.Padding(0, 1),
		titleStyle: th.Title,
		bodyStyle:  th.Body,
	}
}

// SetContent updates the panel title and body lines.
func (m *Model) SetContent(title string, lines []string) {
	m.title = title
	m.lines = lines
	m.offset = 0
}

// Init implements ui.Overlay.
func (m *Model) Init() tea.Cmd { return nil }

// SetSize bounds the panel. The panel shrinks to fit short content.
func (m *Model) SetSize(width, height int) {
	m.width, m.height = width, height
	m.offset = min(m.offset, m.maxOffset())
}

// Update scrolls the body.
func (m *Model) Update(msg tea.Msg) (ui.Overlay, tea.Cmd) {
	if key, ok := msg.(tea.KeyPressMsg); ok {
		switch key.String() {
		case "up", "k":
			m.offset = max(m.offset-1, 0)
		case "down", "j":
			m.offset = min(m.offset+1, m.maxOffset())
		}
	}
	return m, nil
}

func (m *Model) bodyRows() int {
	rows := m.height - m.frameStyle.GetVerticalFrameSize()
	if m.title != "" {
		rows--
	}
	return max(rows, 1)
}

func (m *Model) maxOffset() int {
	return max(len(m.lines)-m.bodyRows(), 0)
}

// View renders the framed panel.
func (m *Model) View() (string, *tea.Cursor) {
	var content []string
	if m.title != "" {
		content = append(content, m.titleStyle.Render(m.title))
	}
	end := min(m.offset+m.bodyRows(), len(m.lines))
	for _, line := range m.lines[min(m.offset, end):end] {
		content = append(content, m.bodyStyle.Render(line))
	}
	style := m.frameStyle
	if m.width > 0 {
		style = style.MaxWidth(m.width)
	}
	return style.Render(strings.Join(content, "\n")), nil
}

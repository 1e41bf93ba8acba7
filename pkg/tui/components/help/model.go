// Package help renders the key reference as a scrollable overlay.
package help

import (
	_ "embed"
	"strings"

	"github.com/charmbracelet/bubbles/v2/viewport"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/dbgrid/pkg/tui/theme"
	"tableflip.dev/dbgrid/pkg/tui/ui"
	"tableflip.dev/dbgrid/pkg/tui/ui/overlay"
)

//go:embed help.md
var helpMarkdown string

// Markdown returns the raw help text.
func Markdown() string { return helpMarkdown }

// Render formats the help text for a terminal of the given width.
func Render(width int, style string) (string, error) {
	if style == "" {
		style = "dark"
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(max(width, 10)),
	)
	if err != nil {
		return "", err
	}
	return renderer.Render(strings.TrimSpace(helpMarkdown))
}

// Model renders the help inside a bordered viewport.
type Model struct {
	viewport viewport.Model
	width    int
	height   int

	frame lipgloss.Style
	title lipgloss.Style
	style string
	err   error
}

// New constructs a help overlay sized to the provided bounds.
func New(th theme.ModalTheme, width, height int) *Model {
	vp := viewport.New(
		viewport.WithWidth(max(width, 1)),
		viewport.WithHeight(max(height, 1)),
	)
	vp.MouseWheelEnabled = true
	m := &Model{
		viewport: vp,
		frame:    th.Frame.Padding(0),
		title:    th.Title,
		style:    "dark",
	}
	m.SetSize(width, height)
	return m
}

// Init implements ui.Overlay.
func (m *Model) Init() tea.Cmd { return nil }

// Update forwards scrolling to the viewport.
func (m *Model) Update(msg tea.Msg) (ui.Overlay, tea.Cmd) {
	vp, cmd := m.viewport.Update(msg)
	m.viewport = vp
	return m, cmd
}

// View renders the help content inside the frame.
func (m *Model) View() (string, *tea.Cursor) {
	body := m.viewport.View()
	if m.err != nil {
		body = "help unavailable: " + m.err.Error()
	}
	title := m.title.Render("Help") + "  " + lipgloss.NewStyle().Faint(true).Render("esc to close")
	return m.frame.Width(m.width).Height(m.height).Render(title + "\n" + body), nil
}

// SetSize configures the overlay dimensions and re-renders the markdown.
func (m *Model) SetSize(width, height int) {
	width, height = max(width, 32), max(height, 8)
	if m.width == width && m.height == height {
		return
	}
	m.width, m.height = width, height

	innerWidth := max(width-m.frame.GetHorizontalFrameSize(), 1)
	innerHeight := max(height-m.frame.GetVerticalFrameSize()-1, 1)
	m.viewport.SetWidth(innerWidth)
	m.viewport.SetHeight(innerHeight)

	content, err := Render(innerWidth, m.style)
	m.err = err
	if err != nil {
		return
	}
	m.viewport.SetContent(overlay.StripANSI(content))
	m.viewport.SetYOffset(0)
}

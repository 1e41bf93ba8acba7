// Package command implements the prompt bar pinned to the bottom of the
// screen. It shows status text, collects ":" commands and search queries,
// and renders command suggestions over the content above it.
package command

import (
	"strings"

	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"

	"tableflip.dev/dbgrid/pkg/tui/events"
	"tableflip.dev/dbgrid/pkg/tui/theme"
	"tableflip.dev/dbgrid/pkg/tui/ui/overlay"
)

// Options configures the command bar.
type Options struct {
	ID          events.ComponentID
	Theme       theme.FooterTheme
	Placeholder string
	StatusText  string
}

// SuggestionOption represents a possible command the prompt can surface.
type SuggestionOption struct {
	Name        string
	Description string
}

const defaultSuggestionLimit = 8

// Model renders the content area with a sticky prompt line below it.
type Model struct {
	id     events.ComponentID
	styles theme.FooterTheme
	mode   events.CommandMode

	width         int
	height        int
	contentHeight int

	contentView   string
	contentCursor *tea.Cursor

	status  string
	isError bool
	info    string

	prompt    textinput.Model
	lastValue string

	suggestions     []SuggestionOption
	filtered        []SuggestionOption
	suggestionIndex int
	original        string
}

// NewModel constructs a command bar with the provided options.
func NewModel(opts Options) *Model {
	prompt := textinput.New()
	prompt.Placeholder = opts.Placeholder
	prompt.Prompt = ""
	prompt.Blur()

	id := opts.ID
	if id == "" {
		id = "command"
	}
	return &Model{
		id:              id,
		styles:          opts.Theme,
		mode:            events.CommandModePassive,
		status:          opts.StatusText,
		prompt:          prompt,
		suggestionIndex: -1,
	}
}

// ID exposes the component identifier.
func (m *Model) ID() events.ComponentID { return m.id }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// SetSize configures the area the component manages, including the prompt
// line.
func (m *Model) SetSize(width, height int) {
	m.width = max(width, 1)
	m.height = max(height, 2)
	m.contentHeight = m.height - 1
	m.prompt.SetWidth(max(m.width-2, 1))
}

// ContentHeight is the number of lines available above the prompt.
func (m *Model) ContentHeight() int { return m.contentHeight }

// SetContent stores the view that should appear above the command bar.
func (m *Model) SetContent(view string, cursor *tea.Cursor) {
	m.contentView = view
	m.contentCursor = nil
	if cursor != nil {
		c := *cursor
		m.contentCursor = &c
	}
}

// SetStatus updates the passive status text.
func (m *Model) SetStatus(text string) {
	m.status = text
	m.isError = false
}

// SetError shows err in the status line until the next status.
func (m *Model) SetError(err error) {
	if err == nil {
		return
	}
	m.status = err.Error()
	m.isError = true
}

// Status returns the current status text.
func (m *Model) Status() string { return m.status }

// SetInfo sets the right-aligned text shown in passive mode, e.g. the page.
func (m *Model) SetInfo(text string) { m.info = text }

// SetSuggestions configures the available command list.
func (m *Model) SetSuggestions(options []SuggestionOption) {
	m.suggestions = append([]SuggestionOption(nil), options...)
	m.filter(m.prompt.Value())
}

// Mode reports the prompt state.
func (m *Model) Mode() events.CommandMode { return m.mode }

// Active reports whether the prompt is collecting input.
func (m *Model) Active() bool { return m.mode != events.CommandModePassive }

// Value returns the current prompt contents.
func (m *Model) Value() string { return m.prompt.Value() }

// BeginInput opens the ":" prompt.
func (m *Model) BeginInput(initial string) tea.Cmd {
	return m.begin(events.CommandModeInput, initial)
}

// BeginSearch opens the "/" search prompt.
func (m *Model) BeginSearch(initial string) tea.Cmd {
	return m.begin(events.CommandModeSearch, initial)
}

func (m *Model) begin(mode events.CommandMode, initial string) tea.Cmd {
	m.mode = mode
	m.prompt.SetValue(initial)
	m.prompt.CursorEnd()
	m.lastValue = initial
	m.filter(initial)
	return tea.Batch(m.prompt.Focus(), events.CommandChangeCmd(m.id, initial, mode))
}

// ExitInput returns the command bar to passive mode.
func (m *Model) ExitInput() tea.Cmd {
	mode := m.mode
	m.mode = events.CommandModePassive
	m.prompt.Blur()
	m.prompt.SetValue("")
	m.lastValue = ""
	m.filtered = nil
	m.suggestionIndex = -1
	if mode == events.CommandModePassive {
		return nil
	}
	return events.CommandChangeCmd(m.id, "", events.CommandModePassive)
}

// Update routes messages to the prompt. Passive mode ignores input.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	if m.mode == events.CommandModePassive {
		return m, nil
	}
	var cmds []tea.Cmd
	if key, ok := msg.(tea.KeyPressMsg); ok {
		switch key.String() {
		case "esc":
			if m.clearSuggestion() {
				return m, m.changed()
			}
			mode := m.mode
			return m, tea.Batch(m.ExitInput(), events.CommandCancelCmd(m.id, mode))
		case "enter":
			mode := m.mode
			value := strings.TrimSpace(m.prompt.Value())
			if mode == events.CommandModeSearch {
				return m, events.CommandSubmitCmd(m.id, value, mode)
			}
			cmds = append(cmds, m.ExitInput())
			if value != "" {
				cmds = append(cmds, events.CommandSubmitCmd(m.id, value, mode))
			}
			return m, tea.Batch(cmds...)
		case "up", "shift+tab":
			if m.cycle(-1) {
				return m, m.changed()
			}
		case "down", "tab":
			if m.cycle(1) {
				return m, m.changed()
			}
		}
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	cmds = append(cmds, cmd)
	if m.prompt.Value() != m.lastValue {
		m.filter(m.prompt.Value())
		cmds = append(cmds, m.changed())
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) changed() tea.Cmd {
	v := m.prompt.Value()
	if v == m.lastValue {
		return nil
	}
	m.lastValue = v
	return events.CommandChangeCmd(m.id, v, m.mode)
}

// filter keeps suggestions whose name starts with the first word of value,
// then those containing it.
func (m *Model) filter(value string) {
	m.suggestionIndex = -1
	m.original = value
	m.filtered = m.filtered[:0]
	if m.mode != events.CommandModeInput {
		return
	}
	word, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(value)), " ")
	var contains []SuggestionOption
	for _, opt := range m.suggestions {
		name := strings.ToLower(opt.Name)
		switch {
		case strings.HasPrefix(name, word):
			m.filtered = append(m.filtered, opt)
		case strings.Contains(name, word):
			contains = append(contains, opt)
		}
	}
	m.filtered = append(m.filtered, contains...)
	if len(m.filtered) == 1 && strings.EqualFold(m.filtered[0].Name, word) {
		m.filtered = m.filtered[:0]
	}
}

func (m *Model) cycle(delta int) bool {
	total := len(m.filtered)
	if m.mode != events.CommandModeInput || total == 0 {
		return false
	}
	if m.suggestionIndex == -1 {
		m.original = m.prompt.Value()
		if delta > 0 {
			m.suggestionIndex = 0
		} else {
			m.suggestionIndex = total - 1
		}
	} else {
		m.suggestionIndex = (m.suggestionIndex + delta + total) % total
	}
	m.prompt.SetValue(m.filtered[m.suggestionIndex].Name)
	m.prompt.CursorEnd()
	return true
}

func (m *Model) clearSuggestion() bool {
	if m.suggestionIndex == -1 {
		return false
	}
	m.prompt.SetValue(m.original)
	m.prompt.CursorEnd()
	m.suggestionIndex = -1
	return true
}

// View renders the content, the suggestion list and the prompt line.
func (m *Model) View() (string, *tea.Cursor) {
	content := m.contentView
	if list := m.suggestionView(); list != "" {
		content = overlay.Compose(content, m.width, m.contentHeight, list, overlay.Placement{
			Vertical: lipgloss.Bottom,
		})
	}
	lines := strings.Split(content, "\n")
	if len(lines) > m.contentHeight {
		lines = lines[:m.contentHeight]
	}
	for len(lines) < m.contentHeight {
		lines = append(lines, "")
	}

	bar, cursor := m.bar()
	if cursor == nil && m.contentCursor != nil {
		c := *m.contentCursor
		cursor = &c
	}
	return strings.Join(append(lines, bar), "\n"), cursor
}

func (m *Model) bar() (string, *tea.Cursor) {
	switch m.mode {
	case events.CommandModeInput, events.CommandModeSearch:
		prefix := ":"
		if m.mode == events.CommandModeSearch {
			prefix = "/"
		}
		line := m.styles.Prompt.Render(prefix) + m.prompt.View()
		var cursor *tea.Cursor
		if c := m.prompt.Cursor(); c != nil {
			cc := *c
			cc.X += len(prefix)
			cc.Y = m.contentHeight
			cursor = &cc
		}
		return pad(line, m.width), cursor
	}
	style := m.styles.Status
	if m.isError {
		style = m.styles.Error
	}
	left := style.Render(m.status)
	right := m.styles.Page.Render(m.info)
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return pad(left, m.width), nil
	}
	return left + strings.Repeat(" ", gap) + right, nil
}

func (m *Model) suggestionView() string {
	if m.mode != events.CommandModeInput || len(m.filtered) == 0 {
		return ""
	}
	limit := min(defaultSuggestionLimit, len(m.filtered), m.contentHeight)
	start := 0
	if m.suggestionIndex >= limit {
		start = m.suggestionIndex - limit + 1
	}
	rows := make([]string, 0, limit)
	for i := start; i < start+limit; i++ {
		opt := m.filtered[i]
		marker := "  "
		name := m.styles.Prompt.Render(opt.Name)
		if i == m.suggestionIndex {
			marker = "→ "
			name = m.styles.Prompt.Reverse(true).Render(opt.Name)
		}
		line := marker + name
		if d := strings.TrimSpace(opt.Description); d != "" {
			line += "  " + m.styles.Help.Render(d)
		}
		rows = append(rows, line)
	}
	return strings.Join(rows, "\n")
}

func pad(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return lipgloss.NewStyle().MaxWidth(width).Render(s)
	}
	return s + strings.Repeat(" ", width-w)
}

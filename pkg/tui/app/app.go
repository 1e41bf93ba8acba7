// Package teaui is the root Bubble Tea model of the database browser: a table
// list, the data grid and the command bar.
package teaui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/v2/key"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"tableflip.dev/dbgrid/pkg/app"
	"tableflip.dev/dbgrid/pkg/grid/clock"
	"tableflip.dev/dbgrid/pkg/grid/store"
	"tableflip.dev/dbgrid/pkg/grid/virtual"
	"tableflip.dev/dbgrid/pkg/tui/components/command"
	"tableflip.dev/dbgrid/pkg/tui/components/eventviewer"
	"tableflip.dev/dbgrid/pkg/tui/components/gridview"
	"tableflip.dev/dbgrid/pkg/tui/components/help"
	"tableflip.dev/dbgrid/pkg/tui/components/tablenav"
	"tableflip.dev/dbgrid/pkg/tui/events"
	"tableflip.dev/dbgrid/pkg/tui/theme"
	"tableflip.dev/dbgrid/pkg/tui/ui"
	"tableflip.dev/dbgrid/pkg/tui/ui/overlay"
)

const (
	tablesID  events.ComponentID = "tables"
	gridID    events.ComponentID = "grid"
	commandID events.ComponentID = "command"

	maxTablesWidth = 28
	debugHeight    = 8
)

// Options configures the browser.
type Options struct {
	// Table opens on start. Empty opens the first table.
	Table     string
	PageSize  int
	RowHeight virtual.RowHeight
	Overscan  int
	// Watch reloads the open page when the store changes on disk.
	Watch bool

	Theme     *theme.Theme
	Logger    *slog.Logger
	Clock     clock.Clock
	Clipboard func(string) error
}

type focus int

const (
	focusGrid focus = iota
	focusTables
)

// Model composes the table list, the grid and the command bar.
type Model struct {
	ctx     context.Context
	service *app.Service
	opts    Options
	theme   theme.Theme
	keys    KeyMap
	log     *slog.Logger
	queue   *store.Queue
	send    func(tea.Msg)

	width  int
	height int
	focus  focus

	tables  *tablenav.Model
	grid    *gridview.Model
	command *command.Model
	overlay ui.Overlay
	debug   *eventviewer.Model

	query app.Query
	page  app.Page
	// stale is set when the open table changed on disk during an edit.
	stale bool
	quit  bool

	// saves holds committed edits not yet written, in commit order.
	saves  []save
	saving bool
}

// New constructs the root model.
func New(ctx context.Context, service *app.Service, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.PageSize <= 0 {
		opts.PageSize = app.DefaultPageSize
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	th := theme.Default()
	if opts.Theme != nil {
		th = *opts.Theme
	}
	m := &Model{
		ctx:     ctx,
		service: service,
		opts:    opts,
		theme:   th,
		keys:    DefaultKeyMap(),
		log:     opts.Logger.With("component", "tui"),
		queue:   store.NewQueue(),
	}
	clk := opts.Clock
	if clk == nil {
		// Timer callbacks re-enter through Update so the grid is only
		// touched from the UI goroutine.
		clk = clock.Dispatched(clock.Real(), func(fn func()) {
			if m.send != nil {
				m.send(events.TimerMsg{Fn: fn})
			}
		})
	}
	m.tables = tablenav.NewModel(tablesID, nil)
	m.grid = gridview.New(gridview.Options{
		ID:        gridID,
		Theme:     th.Grid,
		Clock:     clk,
		Scheduler: m.queue,
		Logger:    opts.Logger,
		RowHeight: opts.RowHeight,
		Overscan:  opts.Overscan,
		AddRow:    m.addRow,
		OnCommit:  m.commit,
	})
	m.command = command.NewModel(command.Options{
		ID:         commandID,
		Theme:      th.Footer,
		StatusText: "Ready",
	})
	m.command.SetSuggestions(suggestions)
	return m
}

// Run launches the browser and blocks until it exits.
func Run(ctx context.Context, service *app.Service, opts Options) error {
	if opts.Theme == nil {
		th := theme.Detect()
		opts.Theme = &th
	}
	m := New(ctx, service, opts)
	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	m.send = p.Send
	_, err := p.Run()
	m.grid.Close()
	if serr := m.flushSaves(); err == nil {
		err = serr
	}
	return err
}

// Init loads the table list and starts the store watcher.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.loadTables()}
	if m.opts.Watch {
		cmds = append(cmds, m.startWatch())
	}
	return tea.Batch(cmds...)
}

// Update routes messages to the focused component and applies data results.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m.noteEvent(msg)
	cmd := m.update(msg)
	m.queue.Flush()
	m.syncSearch()
	cmds := []tea.Cmd{cmd, m.grid.Drain(), m.nextSave()}
	if m.quit && !m.saving && len(m.saves) == 0 {
		cmds = append(cmds, tea.Quit)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch v := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = v.Width, v.Height
		m.layout()
		return nil
	case events.TimerMsg:
		v.Fn()
		return nil
	case tea.KeyPressMsg:
		return m.handleKey(v)
	case tea.MouseMsg:
		return m.handleMouse(v)

	case tablesLoadedMsg:
		return m.tablesLoaded(v)
	case pageLoadedMsg:
		return m.pageLoaded(v)
	case cellSavedMsg:
		m.saving = false
		if v.err != nil {
			m.log.Warn("save failed", "table", v.save.table, "id", v.save.id, "err", v.err)
			m.command.SetError(fmt.Errorf("save %s: %w", v.save.update.ColumnID, v.err))
			if v.save.table == m.query.Table {
				return m.loadPage(false)
			}
			return nil
		}
		m.command.SetStatus(fmt.Sprintf("Saved %s on row %d", v.save.update.ColumnID, v.save.update.RowIndex+1))
	case copiedMsg:
		if v.err != nil {
			m.command.SetError(fmt.Errorf("copy: %w", v.err))
			break
		}
		m.command.SetStatus(fmt.Sprintf("Copied %d bytes", v.bytes))
	case exportedMsg:
		if v.err != nil {
			m.command.SetError(fmt.Errorf("export: %w", v.err))
			break
		}
		m.command.SetStatus(fmt.Sprintf("Exported %d rows to %s", v.rows, v.path))
	case watchStartedMsg:
		if v.err != nil {
			m.log.Warn("watch failed", "err", v.err)
			return nil
		}
		return waitEvent(v.ch)
	case storeEventMsg:
		return tea.Batch(m.storeChanged(v.event), waitEvent(v.ch))

	case events.TableSelectMsg:
		return m.openTable(v.Table)
	case events.TableHighlightMsg:
		m.command.SetStatus("Enter opens " + v.Table)
	case events.EditStopMsg:
		if m.stale && !m.grid.Editing() {
			m.stale = false
			return m.loadPage(false)
		}
	case events.RowAddMsg:
		m.command.SetStatus("Row added")
	case events.SortChangeMsg:
		m.query.Sort = v.Sorting
		m.query.Page = 1
		return m.loadPage(false)
	case events.CopyMsg:
		return m.copy(v.Text)
	case events.CommandSubmitMsg:
		if v.Mode == events.CommandModeInput {
			return m.runCommand(v.Value)
		}
	case events.CommandChangeMsg:
		if v.Mode == events.CommandModeSearch {
			m.grid.Grid().SetSearchQuery(v.Value)
		}
	case events.CommandCancelMsg:
		if v.Mode == events.CommandModeSearch {
			m.grid.Grid().SetSearchOpen(false)
		}
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	if key.Matches(msg, m.keys.Quit) {
		m.requestQuit()
		return nil
	}
	if m.overlay != nil {
		if key.Matches(msg, m.keys.Close) || key.Matches(msg, m.keys.Help) {
			m.overlay = nil
			m.layout()
			return nil
		}
		var cmd tea.Cmd
		m.overlay, cmd = m.overlay.Update(msg)
		return cmd
	}

	switch m.command.Mode() {
	case events.CommandModeSearch:
		g := m.grid.Grid()
		switch {
		case msg.String() == "esc":
			g.SetSearchOpen(false)
			return m.command.ExitInput()
		case key.Matches(msg, m.keys.SearchPrev):
			g.PrevMatch()
			return nil
		case key.Matches(msg, m.keys.SearchNext):
			g.NextMatch()
			return nil
		}
		_, cmd := m.command.Update(msg)
		return cmd
	case events.CommandModeInput:
		_, cmd := m.command.Update(msg)
		return cmd
	}

	switch {
	case key.Matches(msg, m.keys.Help):
		m.toggleHelp()
		return nil
	case key.Matches(msg, m.keys.FocusToggle):
		m.setFocus(1 - m.focus)
		return nil
	}
	if m.focus == focusTables {
		if key.Matches(msg, m.keys.Command) && !m.tables.Filtering() {
			return m.command.BeginInput("")
		}
		_, cmd := m.tables.Update(msg)
		return cmd
	}

	if !m.grid.Editing() {
		switch {
		case key.Matches(msg, m.keys.Command):
			return m.command.BeginInput("")
		case key.Matches(msg, m.keys.NextPage):
			return m.turnPage(1)
		case key.Matches(msg, m.keys.PrevPage):
			return m.turnPage(-1)
		case key.Matches(msg, m.keys.Reload):
			return m.loadPage(false)
		}
	}
	_, cmd := m.grid.Update(msg)
	return cmd
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if m.overlay != nil {
		var cmd tea.Cmd
		m.overlay, cmd = m.overlay.Update(msg)
		return cmd
	}
	x0, y0 := m.gridOrigin()
	mouse := msg.Mouse()
	if mouse.X < x0 {
		// Motion and release still reach the grid so a drag can end over
		// the table list.
		switch msg.(type) {
		case tea.MouseClickMsg:
			m.grid.Grid().ClickOutside()
			m.setFocus(focusTables)
			return nil
		case tea.MouseWheelMsg:
			return nil
		}
	}
	if _, ok := msg.(tea.MouseClickMsg); ok {
		m.setFocus(focusGrid)
	}
	mouse.X -= x0
	mouse.Y -= y0
	var local tea.Msg
	switch msg.(type) {
	case tea.MouseClickMsg:
		local = tea.MouseClickMsg(mouse)
	case tea.MouseReleaseMsg:
		local = tea.MouseReleaseMsg(mouse)
	case tea.MouseMotionMsg:
		local = tea.MouseMotionMsg(mouse)
	case tea.MouseWheelMsg:
		local = tea.MouseWheelMsg(mouse)
	default:
		return nil
	}
	_, cmd := m.grid.Update(local)
	return cmd
}

func (m *Model) setFocus(f focus) {
	if f == focusTables {
		m.grid.Grid().ClickOutside()
	}
	m.focus = f
}

// syncSearch opens or closes the search prompt to follow the grid.
func (m *Model) syncSearch() {
	open := m.grid.Grid().SearchOpen()
	searching := m.command.Mode() == events.CommandModeSearch
	switch {
	case open && !searching:
		m.command.BeginSearch(m.grid.Grid().State().SearchQuery)
	case !open && searching:
		m.command.ExitInput()
	}
}

func (m *Model) toggleHelp() {
	if _, ok := m.overlay.(*help.Model); ok {
		m.overlay = nil
		return
	}
	w, h := m.overlaySize()
	m.overlay = help.New(m.theme.Modal, w, h)
}

func (m *Model) overlaySize() (int, int) {
	ch := max(m.height-1, 1)
	return max(m.width*9/10, 1), max(ch*9/10, 1)
}

func (m *Model) tablesWidth() int {
	return min(maxTablesWidth, max(m.width/4, 12))
}

// gridOrigin is the screen position of the grid's header line.
func (m *Model) gridOrigin() (int, int) {
	return m.tablesWidth(), 1
}

func (m *Model) contentHeight() int {
	h := max(m.height-1, 2)
	if m.debug != nil {
		h = max(h-debugHeight, 2)
	}
	return h
}

func (m *Model) layout() {
	if m.width == 0 {
		return
	}
	m.command.SetSize(m.width, m.height)
	tw := m.tablesWidth()
	ch := m.contentHeight()
	frame := m.theme.Panel.Frame
	m.tables.SetSize(max(tw-frame.GetHorizontalFrameSize(), 1), max(ch-frame.GetVerticalFrameSize(), 1))
	m.grid.SetSize(max(m.width-tw, 1), max(ch-1, 2))
	if m.debug != nil {
		m.debug.SetSize(m.width, debugHeight)
	}
	if m.overlay != nil {
		m.overlay.SetSize(m.overlaySize())
	}
}

// View renders the composed UI.
func (m *Model) View() (string, *tea.Cursor) {
	if m.width == 0 {
		return "loading…", nil
	}
	ch := m.contentHeight()
	tw := m.tablesWidth()

	frame := m.theme.Panel.Frame
	if m.focus == focusTables {
		frame = m.theme.Panel.FocusFrame
	}
	left := frame.
		Width(tw - frame.GetHorizontalFrameSize()).
		Height(ch - frame.GetVerticalFrameSize()).
		Render(m.tables.View())

	right := lipgloss.JoinVertical(lipgloss.Left, m.titleLine(m.width-tw), m.grid.View())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	if m.debug != nil {
		body = lipgloss.JoinVertical(lipgloss.Left, body, m.debug.View())
	}

	if m.overlay != nil {
		view, _ := m.overlay.View()
		body = overlay.Compose(body, m.width, m.height-1, view, overlay.Placement{
			Horizontal: lipgloss.Center,
			Vertical:   lipgloss.Center,
		})
	}
	m.command.SetContent(body, nil)
	return m.command.View()
}

func (m *Model) titleLine(width int) string {
	th := m.theme.Panel
	if m.query.Table == "" {
		return th.Title.Render(fit("no table open · ctrl+t to pick one", width))
	}
	parts := []string{th.Title.Render(m.query.Table)}
	if m.query.Filter != "" {
		parts = append(parts, th.Item.Render("where "+m.query.Filter))
	}
	g := m.grid.Grid()
	if s := g.State(); s.SearchOpen && s.SearchQuery != "" {
		if n := len(s.SearchMatches); n > 0 {
			parts = append(parts, th.CurrentItem.Render(fmt.Sprintf("match %d of %d", s.MatchIndex+1, n)))
		} else {
			parts = append(parts, th.CurrentItem.Render("no matches"))
		}
	}
	if p := g.RowHeight(); p != virtual.Short {
		parts = append(parts, th.Item.Render(p.String()))
	}
	line := strings.Join(parts, "  ")
	var hints []string
	for _, b := range m.keys.ShortHelp() {
		hints = append(hints, b.Help().Key+" "+b.Help().Desc)
	}
	hint := m.theme.Footer.Help.Render(strings.Join(hints, " · "))
	if gap := width - lipgloss.Width(line) - lipgloss.Width(hint); gap > 0 {
		return line + strings.Repeat(" ", gap) + hint
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(line)
}

func (m *Model) noteEvent(msg tea.Msg) {
	desc := events.Describe(msg)
	if desc == "" {
		return
	}
	m.log.Debug("event", "msg", desc)
	if m.debug != nil {
		source, detail, _ := strings.Cut(desc, " ")
		m.debug.Append(eventviewer.Entry{Source: source, Summary: detail})
	}
}

func (m *Model) toggleDebug() {
	if m.debug != nil {
		m.debug = nil
	} else {
		m.debug = eventviewer.NewModel(400)
	}
	m.layout()
}

func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

// Package gridview renders a grid.Grid in the terminal and translates Bubble
// Tea key and mouse messages into grid intents.
package gridview

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"

	"tableflip.dev/dbgrid/pkg/grid"
	"tableflip.dev/dbgrid/pkg/grid/cell"
	"tableflip.dev/dbgrid/pkg/grid/clock"
	"tableflip.dev/dbgrid/pkg/grid/editing"
	"tableflip.dev/dbgrid/pkg/grid/store"
	"tableflip.dev/dbgrid/pkg/grid/virtual"
	"tableflip.dev/dbgrid/pkg/tui/events"
	"tableflip.dev/dbgrid/pkg/tui/theme"
	"tableflip.dev/dbgrid/pkg/tui/ui/overlay"
)

// DoubleClickWindow is the longest gap between two clicks on one cell that
// counts as a double click.
const DoubleClickWindow = 400 * time.Millisecond

const (
	maxColumnWidth = 40
	popoverWidth   = 60
	cellPadding    = 1
	wheelStep      = 3
)

// Options configures a Model.
type Options struct {
	ID        events.ComponentID
	Theme     theme.GridTheme
	Clock     clock.Clock
	Scheduler store.Scheduler
	Logger    *slog.Logger
	RowHeight virtual.RowHeight
	Overscan  int

	// AddRow appends a row for the add-row control. Without it the control
	// is hidden.
	AddRow func() (grid.Row, error)
	// OnCommit runs synchronously for every committed edit, while the rows
	// the edit was made on are still loaded.
	OnCommit func(grid.Update)
}

// Model is the terminal grid component.
type Model struct {
	id     events.ComponentID
	styles theme.GridTheme
	grid   *grid.Grid
	clock  clock.Clock
	log    *slog.Logger
	addRow func() (grid.Row, error)

	width  int
	height int

	colOffset int
	lastClick click
	menuIndex int

	// version counts store notifications; View re-renders only when it or
	// the layout changed.
	version int
	cache   renderCache

	outbox []tea.Msg
}

type renderCache struct {
	key  cacheKey
	view string
	ok   bool
}

type cacheKey struct {
	version, width, height, colOffset, menuIndex int
}

type click struct {
	pos cell.Position
	at  time.Time
}

var menuItems = []string{"Copy", "Edit", "Clear", "Add row"}

// New builds an empty grid view.
func New(opts Options) *Model {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	m := &Model{
		id:     opts.ID,
		styles: opts.Theme,
		clock:  opts.Clock,
		log:    opts.Logger.With("component", "gridview"),
		addRow: opts.AddRow,
	}
	gopts := grid.Options{
		RowHeight: opts.RowHeight,
		Overscan:  opts.Overscan,
		Units:     virtual.RowHeight.Lines,
		Clock:     opts.Clock,
		Scheduler: opts.Scheduler,
		Logger:    opts.Logger,
		OnDataUpdate: func(u grid.Update) {
			if opts.OnCommit != nil {
				opts.OnCommit(u)
			}
			m.emit(events.CellUpdateMsg{Component: m.id, Update: u})
		},
		OnCellEditingStop: func(ev grid.StopEvent) {
			m.emit(events.EditStopMsg{Component: m.id, Event: ev})
		},
		OnSortChange: func(s []grid.SortEntry) {
			m.emit(events.SortChangeMsg{Component: m.id, Sorting: s})
		},
	}
	if opts.AddRow != nil {
		gopts.OnRowAdd = m.appendRow
	}
	m.grid = grid.New(gopts)
	m.grid.Subscribe(func() { m.version++ })
	return m
}

// ID exposes the component identifier.
func (m *Model) ID() events.ComponentID { return m.id }

// Grid exposes the underlying grid controller.
func (m *Model) Grid() *grid.Grid { return m.grid }

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// SetSize sets the area the grid renders into.
func (m *Model) SetSize(width, height int) {
	m.width = max(width, 1)
	m.height = max(height, 2)
	m.grid.SetViewport(m.bodyHeight())
	m.ensureColumnVisible()
}

// Load replaces the schema and rows.
func (m *Model) Load(columns []grid.Column, rows []grid.Row) {
	m.grid.Reset(columns, rows, len(rows))
	m.colOffset = 0
	m.menuIndex = 0
	m.grid.SetViewport(m.bodyHeight())
}

// Refresh installs a reloaded row window and keeps interaction state.
func (m *Model) Refresh(rows []grid.Row) {
	m.grid.SetRows(rows, len(rows))
}

// Editing reports whether a cell editor is open.
func (m *Model) Editing() bool { return m.grid.Mode() == editing.Editing }

// Close flushes an open edit and releases the grid.
func (m *Model) Close() { m.grid.Dispose() }

func (m *Model) emit(msg tea.Msg) {
	m.outbox = append(m.outbox, msg)
}

// Drain returns commands for grid callbacks that fired outside Update, such
// as a debounced commit run from a timer.
func (m *Model) Drain() tea.Cmd { return m.drain() }

// drain turns queued grid callbacks into commands.
func (m *Model) drain() tea.Cmd {
	if len(m.outbox) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(m.outbox))
	for _, msg := range m.outbox {
		cmds = append(cmds, func() tea.Msg { return msg })
	}
	m.outbox = nil
	return tea.Batch(cmds...)
}

func (m *Model) appendRow() (cell.Position, error) {
	row, err := m.addRow()
	if err != nil {
		return cell.Zero, err
	}
	idx := m.grid.AppendRow(row)
	ids := m.grid.ColumnIDs()
	if len(ids) == 0 {
		return cell.Zero, nil
	}
	m.emit(events.RowAddMsg{Component: m.id})
	return cell.Position{RowIndex: idx, ColumnID: ids[0]}, nil
}

// Update handles key and mouse messages.
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch v := msg.(type) {
	case tea.KeyPressMsg:
		m.handleKey(v)
	case tea.MouseClickMsg:
		m.handleClick(v.Mouse())
	case tea.MouseMotionMsg:
		mouse := v.Mouse()
		if mouse.Button == tea.MouseLeft {
			if p, ok := m.nearestCell(mouse.X, mouse.Y); ok {
				m.grid.PointerMove(p)
			}
		}
	case tea.MouseReleaseMsg:
		m.grid.PointerUp()
	case tea.MouseWheelMsg:
		units := m.grid.RowHeight().Lines()
		switch v.Mouse().Button {
		case tea.MouseWheelUp:
			m.grid.ScrollBy(-wheelStep * units)
		case tea.MouseWheelDown:
			m.grid.ScrollBy(wheelStep * units)
		}
	}
	m.ensureColumnVisible()
	m.grid.Flush()
	return m, m.drain()
}

func (m *Model) handleKey(msg tea.KeyPressMsg) {
	if m.grid.State().ContextMenu.Open && m.menuKey(msg) {
		return
	}
	k := Translate(msg)
	if k.Ctrl && k.Text == "c" && !m.Editing() {
		m.copySelection()
		return
	}
	if !m.grid.HandleKey(k) {
		m.log.Debug("key ignored", "key", msg.String())
	}
}

func (m *Model) menuKey(msg tea.KeyPressMsg) bool {
	switch msg.Code {
	case tea.KeyUp:
		m.menuIndex = (m.menuIndex + len(menuItems) - 1) % len(menuItems)
	case tea.KeyDown:
		m.menuIndex = (m.menuIndex + 1) % len(menuItems)
	case tea.KeyEnter:
		m.activateMenu(m.menuIndex)
	default:
		return false
	}
	return true
}

func (m *Model) activateMenu(i int) {
	m.grid.CloseContextMenu()
	m.menuIndex = 0
	switch menuItems[i] {
	case "Copy":
		m.copySelection()
	case "Edit":
		m.grid.BeginEdit()
	case "Clear":
		m.grid.ClearSelectedCells()
	case "Add row":
		if _, err := m.grid.RowAdd(); err != nil {
			m.log.Debug("row add failed", "err", err)
		}
	}
}

func (m *Model) copySelection() {
	if text := m.grid.SelectedText(); text != "" {
		m.emit(events.CopyMsg{Component: m.id, Text: text})
	}
}

// Translate converts a Bubble Tea key press into a grid key.
func Translate(msg tea.KeyPressMsg) grid.Key {
	k := grid.Key{
		Modifiers: grid.Modifiers{
			Shift: msg.Mod.Contains(tea.ModShift),
			Ctrl:  msg.Mod.Contains(tea.ModCtrl),
			Alt:   msg.Mod.Contains(tea.ModAlt),
		},
	}
	switch msg.Code {
	case tea.KeyUp:
		k.Name = grid.KeyUp
	case tea.KeyDown:
		k.Name = grid.KeyDown
	case tea.KeyLeft:
		k.Name = grid.KeyLeft
	case tea.KeyRight:
		k.Name = grid.KeyRight
	case tea.KeyHome:
		k.Name = grid.KeyHome
	case tea.KeyEnd:
		k.Name = grid.KeyEnd
	case tea.KeyPgUp:
		k.Name = grid.KeyPageUp
	case tea.KeyPgDown:
		k.Name = grid.KeyPageDown
	case tea.KeyEnter:
		k.Name = grid.KeyEnter
	case tea.KeyTab:
		k.Name = grid.KeyTab
	case tea.KeyEscape:
		k.Name = grid.KeyEscape
	case tea.KeyBackspace:
		k.Name = grid.KeyBackspace
	case tea.KeyDelete:
		k.Name = grid.KeyDelete
	case tea.KeySpace:
		k.Name = grid.KeySpace
	default:
		k.Text = msg.Text
		if k.Text == "" && msg.Code > ' ' && msg.Code < 0x7f {
			k.Text = string(msg.Code)
		}
	}
	return k
}

func (m *Model) handleClick(mouse tea.Mouse) {
	mods := grid.Modifiers{
		Shift: mouse.Mod.Contains(tea.ModShift),
		Ctrl:  mouse.Mod.Contains(tea.ModCtrl),
		Alt:   mouse.Mod.Contains(tea.ModAlt),
	}
	if m.grid.State().ContextMenu.Open {
		if i, ok := m.menuItemAt(mouse.X, mouse.Y); ok {
			m.activateMenu(i)
			return
		}
		m.grid.CloseContextMenu()
	}
	if mouse.Y == 0 {
		if id, ok := m.columnAt(mouse.X); ok && mouse.Button == tea.MouseLeft {
			m.grid.ToggleSort(id)
		}
		return
	}
	if m.addRow != nil && mouse.Y == m.height-1 {
		if _, err := m.grid.RowAdd(); err != nil {
			m.log.Debug("row add failed", "err", err)
		}
		return
	}
	row, ok := m.rowAt(mouse.Y)
	if !ok {
		m.grid.ClickOutside()
		return
	}
	if mouse.X < m.gutterWidth() {
		m.grid.ToggleRowSelection(row, mods.Shift)
		return
	}
	id, ok := m.columnAt(mouse.X)
	if !ok {
		m.grid.ClickOutside()
		return
	}
	p := cell.Position{RowIndex: row, ColumnID: id}
	button := grid.ButtonLeft
	if mouse.Button == tea.MouseRight {
		button = grid.ButtonRight
		m.menuIndex = 0
	}
	now := m.clock.Now()
	if button == grid.ButtonLeft && !mods.Shift && !mods.Ctrl &&
		m.lastClick.pos == p && now.Sub(m.lastClick.at) <= DoubleClickWindow {
		m.lastClick = click{}
		m.grid.PointerUp()
		m.grid.DoubleClick(p)
		return
	}
	m.lastClick = click{pos: p, at: now}
	m.grid.PointerDown(p, grid.Pointer{X: mouse.X, Y: mouse.Y, Button: button, Modifiers: mods})
}

func (m *Model) cellAt(x, y int) (cell.Position, bool) {
	row, ok := m.rowAt(y)
	if !ok {
		return cell.Zero, false
	}
	id, ok := m.columnAt(x)
	if !ok {
		return cell.Zero, false
	}
	return cell.Position{RowIndex: row, ColumnID: id}, true
}

// nearestCell maps a pointer on or off the body to the closest cell, so a
// drag keeps extending after the pointer leaves the grid.
func (m *Model) nearestCell(x, y int) (cell.Position, bool) {
	cols := m.layout()
	n := len(m.grid.Rows())
	if len(cols) == 0 || n == 0 {
		return cell.Zero, false
	}
	y = min(max(y, 1), m.bodyHeight())
	row := min((m.grid.Viewport().ScrollOffset+y-1)/m.grid.RowHeight().Lines(), n-1)
	id := cols[0].id
	for _, c := range cols {
		if x >= c.x {
			id = c.id
		}
	}
	return cell.Position{RowIndex: row, ColumnID: id}, true
}

func (m *Model) rowAt(y int) (int, bool) {
	if y < 1 || y > m.bodyHeight() {
		return 0, false
	}
	line := m.grid.Viewport().ScrollOffset + y - 1
	row := line / m.grid.RowHeight().Lines()
	if row >= len(m.grid.Rows()) {
		return 0, false
	}
	return row, true
}

func (m *Model) columnAt(x int) (string, bool) {
	for _, c := range m.layout() {
		if x >= c.x && x < c.x+c.width {
			return c.id, true
		}
	}
	return "", false
}

func (m *Model) bodyHeight() int {
	h := m.height - 1
	if m.addRow != nil {
		h--
	}
	return max(h, 1)
}

func (m *Model) gutterWidth() int {
	return len(strconv.Itoa(max(len(m.grid.Rows()), 1))) + 2
}

type placed struct {
	id    string
	x     int
	width int
}

func columnWidth(c grid.Column) int {
	w := max(c.MinWidth, runewidth.StringWidth(c.ID)+2)
	return min(w, maxColumnWidth) + cellPadding
}

// layout places the visible columns starting at colOffset.
func (m *Model) layout() []placed {
	cols := m.grid.Columns()
	x := m.gutterWidth()
	var out []placed
	for i := m.colOffset; i < len(cols); i++ {
		w := columnWidth(cols[i])
		if x >= m.width {
			break
		}
		out = append(out, placed{id: cols[i].ID, x: x, width: min(w, m.width-x)})
		x += w
	}
	return out
}

// ensureColumnVisible scrolls horizontally so the focused column is drawn
// in full.
func (m *Model) ensureColumnVisible() {
	f := m.grid.State().FocusedCell
	if f == nil || m.width == 0 {
		return
	}
	b := m.grid.Bounds()
	idx := b.ColumnIndex(f.ColumnID)
	if idx < 0 {
		return
	}
	if idx < m.colOffset {
		m.colOffset = idx
		return
	}
	cols := m.grid.Columns()
	for m.colOffset < idx {
		x := m.gutterWidth()
		for i := m.colOffset; i <= idx; i++ {
			x += columnWidth(cols[i])
		}
		if x <= m.width {
			break
		}
		m.colOffset++
	}
}

// View renders the header, the visible rows, the add-row control and any
// open popover.
func (m *Model) View() string {
	if m.width == 0 {
		return ""
	}
	m.grid.Flush()
	key := cacheKey{m.version, m.width, m.height, m.colOffset, m.menuIndex}
	if m.cache.ok && m.cache.key == key {
		return m.cache.view
	}
	view := m.render()
	m.cache = renderCache{key: key, view: view, ok: true}
	return view
}

func (m *Model) render() string {
	cols := m.layout()
	lines := make([]string, 0, m.height)
	lines = append(lines, m.header(cols))
	body := m.body(cols)
	lines = append(lines, body...)
	if m.addRow != nil {
		lines = append(lines, m.addRowLine())
	}
	view := strings.Join(lines, "\n")

	if menu := m.menuView(); menu != "" {
		cm := m.grid.State().ContextMenu
		view = overlay.Place(view, menu, cm.X, cm.Y, m.width)
	}
	if pop := m.popoverView(); pop != "" {
		view = lipgloss.JoinVertical(lipgloss.Left, view, pop)
	}
	return view
}

func (m *Model) header(cols []placed) string {
	var sb strings.Builder
	sb.WriteString(strings.Repeat(" ", m.gutterWidth()))
	sorting := m.grid.Sorting()
	for _, c := range cols {
		label := c.id
		style := m.styles.Header
		if len(sorting) > 0 && sorting[0].ColumnID == c.id {
			style = m.styles.HeaderSorted
			if sorting[0].Desc {
				label += " ↓"
			} else {
				label += " ↑"
			}
		}
		sb.WriteString(style.Render(fit(label, c.width-cellPadding)))
		sb.WriteString(strings.Repeat(" ", cellPadding))
	}
	return sb.String()
}

func (m *Model) body(cols []placed) []string {
	bodyH := m.bodyHeight()
	rows := m.grid.Rows()
	if len(rows) == 0 {
		out := make([]string, bodyH)
		out[0] = m.styles.Empty.Render(fit("  No data in this table", m.width))
		return out
	}
	w := m.grid.Window()
	units := m.grid.RowHeight().Lines()
	mounted := make([]string, 0, w.Len()*units)
	for i := range w.Indexes() {
		mounted = append(mounted, m.rowLines(i, cols, units)...)
	}
	skip := w.ScrollOffset - w.OffsetTop
	out := make([]string, 0, bodyH)
	for i := skip; i < len(mounted) && len(out) < bodyH; i++ {
		if i >= 0 {
			out = append(out, mounted[i])
		}
	}
	for len(out) < bodyH {
		out = append(out, "")
	}
	return out
}

func (m *Model) rowLines(row int, cols []placed, units int) []string {
	lines := make([]strings.Builder, units)
	gutter := m.gutterWidth()
	label := fmt.Sprintf("%*d ", gutter-1, row+1)
	if _, ok := m.grid.State().RowSelection[row]; ok {
		label = fmt.Sprintf("%*s ", gutter-1, "▌"+strconv.Itoa(row+1))
	}
	for l := range lines {
		if l == 0 {
			lines[l].WriteString(m.styles.Null.Render(fit(label, gutter)))
		} else {
			lines[l].WriteString(strings.Repeat(" ", gutter))
		}
	}
	for _, c := range cols {
		p := cell.Position{RowIndex: row, ColumnID: c.id}
		cs := m.grid.CellState(p)
		text, style := m.cellText(p, cs)
		width := c.width - cellPadding
		parts := wrapLines(text, width, units)
		for l := range lines {
			part := ""
			if l < len(parts) {
				part = parts[l]
			}
			lines[l].WriteString(style.Render(fit(part, width)))
			lines[l].WriteString(strings.Repeat(" ", cellPadding))
		}
	}
	out := make([]string, units)
	for l := range lines {
		out[l] = lines[l].String()
	}
	return out
}

func (m *Model) cellText(p cell.Position, cs grid.CellState) (string, lipgloss.Style) {
	if cs.Editing {
		if _, text, ok := m.grid.EditingValue(); ok {
			return text + "▏", m.styles.Editing
		}
	}
	v := m.grid.Value(p)
	text := m.grid.Text(p)
	style := m.styles.Cell
	if c, ok := m.grid.Column(p.ColumnID); ok && c.Boolean {
		if b, _ := v.(bool); b {
			text = "[x]"
		} else if v != nil {
			text = "[ ]"
		}
	}
	if v == nil {
		text = "NULL"
		style = m.styles.Null
	}
	switch {
	case cs.CurrentMatch:
		style = m.styles.CurrentMatch
	case cs.Focused:
		style = m.styles.Focused
	case cs.Match:
		style = m.styles.Match
	case cs.Selected:
		style = m.styles.Selected
	}
	return text, style
}

func (m *Model) addRowLine() string {
	style := m.styles.AddRow
	label := "  + add row"
	if m.grid.State().AddRowFocused {
		style = m.styles.AddRowFocus
		label = "▸ + add row (enter)"
	}
	return style.Render(fit(label, m.width))
}

// popoverView renders the long-text editor under the grid while a
// multi-line cell is being edited.
func (m *Model) popoverView() string {
	p, text, ok := m.grid.EditingValue()
	if !ok {
		return ""
	}
	if pol, ok := m.grid.EditingPolicy(); !ok || pol != editing.Debounced {
		return ""
	}
	width := min(popoverWidth, max(m.width-m.styles.Popover.GetHorizontalFrameSize(), 10))
	title := m.styles.Null.Render(fmt.Sprintf("%s row %d · alt+enter newline · ctrl+enter save · esc cancel", p.ColumnID, p.RowIndex+1))
	body := wordwrap.String(text+"▏", width)
	return m.styles.Popover.Width(width + m.styles.Popover.GetHorizontalPadding()).Render(title + "\n" + body)
}

func (m *Model) menuView() string {
	if !m.grid.State().ContextMenu.Open {
		return ""
	}
	lines := make([]string, len(menuItems))
	for i, item := range menuItems {
		label := " " + item + " "
		if i == m.menuIndex {
			lines[i] = m.styles.Focused.Render(fit(label, 10))
		} else {
			lines[i] = m.styles.Cell.Render(fit(label, 10))
		}
	}
	return m.styles.Menu.Render(strings.Join(lines, "\n"))
}

func (m *Model) menuItemAt(x, y int) (int, bool) {
	cm := m.grid.State().ContextMenu
	frame := m.styles.Menu.GetVerticalFrameSize() / 2
	i := y - cm.Y - frame
	if x < cm.X || x > cm.X+12 || i < 0 || i >= len(menuItems) {
		return 0, false
	}
	return i, true
}

// fit truncates or pads s to exactly width cells.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	s = runewidth.Truncate(s, width, "…")
	return runewidth.FillRight(s, width)
}

// wrapLines splits text into at most n lines of the given width. A single
// line row shows the first line of the text.
func wrapLines(text string, width, n int) []string {
	if n <= 1 {
		first, rest, found := strings.Cut(text, "\n")
		if found && rest != "" {
			first += " ↵"
		}
		return []string{first}
	}
	lines := strings.Split(wordwrap.String(text, max(width, 1)), "\n")
	if len(lines) > n {
		lines = lines[:n]
		lines[n-1] = runewidth.Truncate(lines[n-1]+"…", width, "…")
	}
	return lines
}

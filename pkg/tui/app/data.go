package teaui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"

	tea "github.com/charmbracelet/bubbletea/v2"

	"tableflip.dev/dbgrid/pkg/app"
	"tableflip.dev/dbgrid/pkg/grid"
	"tableflip.dev/dbgrid/pkg/store"
)

type tablesLoadedMsg struct {
	names []string
	err   error
}

type pageLoadedMsg struct {
	page  app.Page
	reset bool
	err   error
}

// save is a committed edit resolved to the stored row it was made on.
type save struct {
	table  string
	id     int64
	update grid.Update
}

type cellSavedMsg struct {
	save save
	err  error
}

type copiedMsg struct {
	bytes int
	err   error
}

type exportedMsg struct {
	path string
	rows int
	err  error
}

type watchStartedMsg struct {
	ch  <-chan store.Event
	err error
}

type storeEventMsg struct {
	event store.Event
	ch    <-chan store.Event
}

func (m *Model) loadTables() tea.Cmd {
	ctx, svc := m.ctx, m.service
	return func() tea.Msg {
		names, err := svc.Tables(ctx)
		return tablesLoadedMsg{names: names, err: err}
	}
}

func (m *Model) tablesLoaded(msg tablesLoadedMsg) tea.Cmd {
	if msg.err != nil {
		m.command.SetError(msg.err)
		return nil
	}
	m.tables.SetItems(msg.names)
	if m.query.Table != "" {
		return nil
	}
	switch {
	case m.opts.Table != "":
		m.tables.Select(m.opts.Table)
		return m.openTable(m.opts.Table)
	case len(msg.names) > 0:
		return m.openTable(msg.names[0])
	}
	m.command.SetStatus("No tables. Create one with dbgrid create")
	return nil
}

func (m *Model) openTable(name string) tea.Cmd {
	if m.grid.Editing() {
		m.grid.Grid().CommitEdit()
	}
	m.query = app.Query{Table: name, Page: 1, PageSize: m.opts.PageSize}
	m.tables.Select(name)
	m.setFocus(focusGrid)
	return m.loadPageCmd(m.query, true)
}

// loadPage re-reads the current query. reset replaces the grid schema and
// interaction state; otherwise only the rows are swapped.
func (m *Model) loadPage(reset bool) tea.Cmd {
	if m.query.Table == "" {
		return nil
	}
	return m.loadPageCmd(m.query, reset)
}

func (m *Model) loadPageCmd(q app.Query, reset bool) tea.Cmd {
	ctx, svc := m.ctx, m.service
	return func() tea.Msg {
		page, err := svc.Page(ctx, q)
		return pageLoadedMsg{page: page, reset: reset, err: err}
	}
}

func (m *Model) pageLoaded(msg pageLoadedMsg) tea.Cmd {
	if msg.err != nil {
		m.command.SetError(msg.err)
		if errors.Is(msg.err, app.ErrTableNotFound) {
			m.query = app.Query{}
			m.grid.Load(nil, nil)
			return m.loadTables()
		}
		return nil
	}
	if msg.page.Table != m.query.Table {
		return nil
	}
	m.page = msg.page
	m.query.Page = msg.page.Page
	if msg.reset || !slices.Equal(m.grid.Grid().Columns(), msg.page.Grid) {
		m.grid.Load(msg.page.Grid, msg.page.Rows)
	} else {
		m.grid.Refresh(msg.page.Rows)
	}
	m.command.SetInfo(msg.page.Label())
	return nil
}

func (m *Model) turnPage(delta int) tea.Cmd {
	next := m.query.Page + delta
	if m.query.Table == "" || next < 1 || (m.page.TotalPages > 0 && next > m.page.TotalPages) {
		return nil
	}
	m.query.Page = next
	return m.loadPage(false)
}

// addRow backs the grid's add-row control. It inserts synchronously so the
// grid can focus the new row right away.
func (m *Model) addRow() (grid.Row, error) {
	if m.query.Table == "" {
		return nil, errNoTable
	}
	rec, err := m.service.AddRow(m.ctx, m.query.Table)
	if err != nil {
		m.command.SetError(err)
		return nil, err
	}
	row := make(grid.Row, len(m.page.Columns))
	for _, c := range m.page.Columns {
		row[c.Name] = rec.Values[c.Name]
	}
	m.page.IDs = append(m.page.IDs, rec.ID)
	m.page.TotalRows++
	m.command.SetInfo(m.page.Label())
	return row, nil
}

// commit backs the grid's data callback. The row index is resolved against
// the page on screen now, before a table switch or page turn replaces it.
func (m *Model) commit(u grid.Update) {
	if u.RowIndex < 0 || u.RowIndex >= len(m.page.IDs) {
		m.command.SetError(fmt.Errorf("save %s: %w: %d", u.ColumnID, app.ErrRowOutOfRange, u.RowIndex))
		return
	}
	m.saves = append(m.saves, save{table: m.page.Table, id: m.page.IDs[u.RowIndex], update: u})
}

// nextSave starts the oldest queued save. One save runs at a time so writes
// land in commit order.
func (m *Model) nextSave() tea.Cmd {
	if m.saving || len(m.saves) == 0 {
		return nil
	}
	s := m.saves[0]
	m.saves = m.saves[1:]
	m.saving = true
	ctx, svc := m.ctx, m.service
	return func() tea.Msg {
		_, err := svc.UpdateCell(ctx, s.table, s.id, s.update.ColumnID, s.update.Value)
		return cellSavedMsg{save: s, err: err}
	}
}

// flushSaves writes queued saves in place. Run calls it after the program
// stops, when no command will run again.
func (m *Model) flushSaves() error {
	var errs []error
	for _, s := range m.saves {
		if _, err := m.service.UpdateCell(context.WithoutCancel(m.ctx), s.table, s.id, s.update.ColumnID, s.update.Value); err != nil {
			errs = append(errs, fmt.Errorf("save %s.%s: %w", s.table, s.update.ColumnID, err))
		}
	}
	m.saves = nil
	return errors.Join(errs...)
}

// requestQuit commits an open edit. Update quits once queued saves are
// written.
func (m *Model) requestQuit() {
	if m.grid.Editing() {
		m.grid.Grid().CommitEdit()
	}
	m.quit = true
}

func (m *Model) copy(text string) tea.Cmd {
	write := m.opts.Clipboard
	return func() tea.Msg {
		return copiedMsg{bytes: len(text), err: write(text)}
	}
}

func (m *Model) export(path string) tea.Cmd {
	ctx, svc, q := m.ctx, m.service, m.query
	return func() tea.Msg {
		f, err := os.Create(path)
		if err != nil {
			return exportedMsg{path: path, err: err}
		}
		n, err := svc.ExportXLSX(ctx, q, f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		return exportedMsg{path: path, rows: n, err: err}
	}
}

func (m *Model) startWatch() tea.Cmd {
	ctx, svc := m.ctx, m.service
	return func() tea.Msg {
		ch, err := svc.Watch(ctx)
		return watchStartedMsg{ch: ch, err: err}
	}
}

func waitEvent(ch <-chan store.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return storeEventMsg{event: ev, ch: ch}
	}
}

func (m *Model) storeChanged(ev store.Event) tea.Cmd {
	switch {
	case ev.Type == store.EventTablesInvalidated:
		return tea.Batch(m.loadTables(), m.reloadWhenIdle())
	case ev.Table == m.query.Table:
		return m.reloadWhenIdle()
	}
	return m.loadTables()
}

// reloadWhenIdle reloads now, or after the open edit stops.
func (m *Model) reloadWhenIdle() tea.Cmd {
	if m.grid.Editing() {
		m.stale = true
		return nil
	}
	return m.loadPage(false)
}

package teaui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/gosuri/uitable"
	"github.com/mitchellh/go-homedir"

	"tableflip.dev/dbgrid/pkg/app"
	"tableflip.dev/dbgrid/pkg/grid/virtual"
	"tableflip.dev/dbgrid/pkg/tui/components/command"
	"tableflip.dev/dbgrid/pkg/tui/components/panel"
)

var suggestions = []command.SuggestionOption{
	{Name: "open", Description: "open a table"},
	{Name: "filter", Description: "keep rows matching an expression"},
	{Name: "nofilter", Description: "drop the filter"},
	{Name: "page", Description: "jump to a page"},
	{Name: "next", Description: "next page"},
	{Name: "prev", Description: "previous page"},
	{Name: "height", Description: "short, medium, tall, extra-tall"},
	{Name: "export", Description: "write the table to an xlsx file"},
	{Name: "schema", Description: "show the table columns"},
	{Name: "reload", Description: "reload the page"},
	{Name: "tables", Description: "focus the table list"},
	{Name: "debug", Description: "toggle the event log"},
	{Name: "help", Description: "toggle help"},
	{Name: "quit", Description: "exit"},
}

var errNoTable = errors.New("no table open")

// runCommand executes a ":" command line.
func (m *Model) runCommand(line string) tea.Cmd {
	name, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	cmd, err := m.execute(strings.ToLower(name), arg)
	if err != nil {
		m.command.SetError(err)
		return nil
	}
	return cmd
}

func (m *Model) execute(name, arg string) (tea.Cmd, error) {
	switch name {
	case "q", "quit", "exit":
		m.requestQuit()
		return nil, nil
	case "help", "h", "?":
		m.toggleHelp()
		return nil, nil
	case "debug":
		m.toggleDebug()
		return nil, nil
	case "tables":
		m.setFocus(focusTables)
		return nil, nil
	case "open", "o":
		if arg == "" {
			return nil, errors.New("usage: open TABLE")
		}
		return m.openTable(arg), nil
	}

	if m.query.Table == "" {
		return nil, errNoTable
	}
	switch name {
	case "filter", "f", "where":
		if arg == "" {
			return nil, errors.New("usage: filter EXPR")
		}
		if err := app.ValidateFilter(arg); err != nil {
			return nil, err
		}
		m.query.Filter = arg
		m.query.Page = 1
		return m.loadPage(false), nil
	case "nofilter":
		m.query.Filter = ""
		m.query.Page = 1
		return m.loadPage(false), nil
	case "page", "p":
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("page: want a number from 1, got %q", arg)
		}
		m.query.Page = n
		return m.loadPage(false), nil
	case "next", "n":
		return m.turnPage(1), nil
	case "prev":
		return m.turnPage(-1), nil
	case "height":
		h, err := virtual.ParseRowHeight(arg)
		if err != nil {
			return nil, err
		}
		m.grid.Grid().SetRowHeight(h)
		return nil, nil
	case "export", "w":
		if arg == "" {
			arg = m.query.Table + ".xlsx"
		}
		path, err := homedir.Expand(arg)
		if err != nil {
			return nil, err
		}
		m.command.SetStatus("Exporting to " + path)
		return m.export(path), nil
	case "schema":
		m.showSchema()
		return nil, nil
	case "reload", "r":
		return m.loadPage(false), nil
	}
	return nil, fmt.Errorf("unknown command %q", name)
}

func (m *Model) showSchema() {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("COLUMN", "TYPE", "NULL", "KEY", "DEFAULT")
	for _, c := range m.page.Columns {
		k := ""
		switch {
		case c.IsPrimaryKey:
			k = "PK"
		case c.IsForeignKey:
			k = "FK " + c.ReferencedTable + "." + c.ReferencedColumn
		}
		def := ""
		if c.ColumnDefault != nil {
			def = *c.ColumnDefault
		}
		tbl.AddRow(c.Name, c.DataTypeLabel, yesNo(c.IsNullable), k, def)
	}
	p := panel.New(m.theme.Panel)
	p.SetContent(m.query.Table, strings.Split(tbl.String(), "\n"))
	m.overlay = p
	m.overlay.SetSize(m.overlaySize())
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// Package printers renders tables, schemas and pages for the command line.
package printers

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"tableflip.dev/dbgrid/pkg/app"
	"tableflip.dev/dbgrid/pkg/grid/search"
	"tableflip.dev/dbgrid/pkg/schema"
)

// DefaultColumnWidth caps a printed column before uitable truncates it.
const DefaultColumnWidth = 40

type PrettyPrint struct {
	Out    io.Writer
	ShowID bool
	// MaxWidth caps each column. Zero uses DefaultColumnWidth.
	MaxWidth uint
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

func (pp *PrettyPrint) NewLine() {
	_, _ = fmt.Fprintln(pp.out(), "")
}

func (pp *PrettyPrint) Title(title string) {
	t := color.New(color.Bold, color.Underline)
	_, _ = t.Fprintln(pp.out(), title)
}

// TitleWithCount prints title followed by a faint count of noun.
func (pp *PrettyPrint) TitleWithCount(title string, count int, noun string) {
	t := color.New(color.Bold, color.Underline)
	c := color.New(color.Faint)

	_, _ = t.Fprint(pp.out(), title)
	if count != 1 {
		noun += "s"
	}
	_, _ = c.Fprintf(pp.out(), " - %d %s\n", count, noun)
}

func (pp *PrettyPrint) table() *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = pp.MaxWidth
	if tbl.MaxColWidth == 0 {
		tbl.MaxColWidth = DefaultColumnWidth
	}
	return tbl
}

func (pp *PrettyPrint) none() {
	f := color.New(color.Faint, color.Italic)
	_, _ = f.Fprint(pp.out(), " none\n\n")
}

// Tables lists table names with their row counts.
func (pp *PrettyPrint) Tables(names []string, counts []int) {
	pp.TitleWithCount("tables", len(names), "table")
	if len(names) == 0 {
		pp.none()
		return
	}
	bold := color.New(color.Bold)
	tbl := pp.table()
	tbl.AddRow(bold.Sprint("NAME"), bold.Sprint("ROWS"))
	for i, n := range names {
		count := ""
		if i < len(counts) {
			count = strconv.Itoa(counts[i])
		}
		tbl.AddRow(n, count)
	}
	tbl.RightAlign(1)
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Columns prints a table schema.
func (pp *PrettyPrint) Columns(t *schema.Table) {
	pp.TitleWithCount(t.Name, len(t.Columns), "column")
	bold := color.New(color.Bold)
	faint := color.New(color.Faint)
	key := color.New(color.FgHiYellow)

	tbl := pp.table()
	tbl.AddRow(bold.Sprint("COLUMN"), bold.Sprint("TYPE"), bold.Sprint("KIND"),
		bold.Sprint("NULL"), bold.Sprint("KEY"), bold.Sprint("DEFAULT"))
	for _, c := range t.Columns {
		k := ""
		switch {
		case c.IsPrimaryKey:
			k = key.Sprint("PK")
		case c.IsForeignKey:
			k = key.Sprintf("FK %s.%s", c.ReferencedTable, c.ReferencedColumn)
		}
		def := ""
		if c.ColumnDefault != nil {
			def = *c.ColumnDefault
		}
		tbl.AddRow(c.Name, c.DataTypeLabel, faint.Sprint(string(c.DataType)),
			strconv.FormatBool(c.IsNullable), k, def)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	pp.NewLine()
}

// Page prints one page of rows and a pagination footer.
func (pp *PrettyPrint) Page(p app.Page) {
	pp.TitleWithCount(p.Table, p.TotalRows, "row")
	if len(p.Rows) == 0 {
		pp.none()
		return
	}
	bold := color.New(color.Bold)
	y := color.New(color.FgHiYellow, color.Italic, color.Faint)

	tbl := pp.table()
	header := make([]interface{}, 0, len(p.Columns)+1)
	if pp.ShowID {
		header = append(header, y.Sprint("#"))
	}
	for _, c := range p.Columns {
		header = append(header, bold.Sprint(c.Name))
	}
	tbl.AddRow(header...)
	for i, r := range p.Rows {
		cells := make([]interface{}, 0, len(header))
		if pp.ShowID {
			cells = append(cells, y.Sprint(p.IDs[i]))
		}
		for _, c := range p.Columns {
			cells = append(cells, Value(r[c.Name]))
		}
		tbl.AddRow(cells...)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
	_, _ = color.New(color.Faint).Fprintf(pp.out(), "%s\n\n", p.Label())
}

// Value renders one cell. NULL is printed faint; multi-line text is folded
// onto one line.
func Value(v any) string {
	if v == nil {
		return color.New(color.Faint).Sprint("NULL")
	}
	s := search.Format(v)
	return strings.ReplaceAll(s, "\n", "⏎")
}

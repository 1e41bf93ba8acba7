package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

// ExportXLSX writes every row matching q's filter and sort to w as a
// workbook with one sheet named after the table. The header row is bold and
// frozen. It returns the number of rows written.
func (s *Service) ExportXLSX(ctx context.Context, q Query, w io.Writer) (int, error) {
	q.Page, q.PageSize = 1, math.MaxInt32
	page, err := s.Page(ctx, q)
	if err != nil {
		return 0, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetName(q.Table)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return 0, fmt.Errorf("app: name sheet: %w", err)
	}

	header := make([]any, len(page.Columns))
	for i, c := range page.Columns {
		header[i] = c.Name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return 0, fmt.Errorf("app: write header: %w", err)
	}
	if len(header) > 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return 0, err
		}
		last, _ := excelize.CoordinatesToCellName(len(header), 1)
		if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
			return 0, err
		}
		if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			return 0, err
		}
	}

	for i, row := range page.Rows {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		values := make([]any, len(page.Columns))
		for j, c := range page.Columns {
			values[j] = sheetValue(row[c.Name])
		}
		start, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, start, &values); err != nil {
			return i, fmt.Errorf("app: write row %d: %w", i+1, err)
		}
	}
	if err := f.Write(w); err != nil {
		return 0, fmt.Errorf("app: write workbook: %w", err)
	}
	s.log().Info("table exported", "table", q.Table, "rows", len(page.Rows))
	return len(page.Rows), nil
}

// ImportXLSX appends the rows of the first sheet of the workbook in r to
// table. The first row names the columns; unknown header names are an error.
// Blank rows are skipped and empty cells keep the column default. It
// returns the number of rows inserted.
func (s *Service) ImportXLSX(ctx context.Context, table string, r io.Reader) (int, error) {
	t, err := s.Schema(ctx, table)
	if err != nil {
		return 0, err
	}
	f, err := excelize.OpenReader(r)
	if err != nil {
		return 0, fmt.Errorf("app: open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return 0, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return 0, fmt.Errorf("app: read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return 0, nil
	}
	header := rows[0]
	for _, name := range header {
		if _, ok := t.Column(name); !ok {
			return 0, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, table, name)
		}
	}

	n := 0
	for i, cells := range rows[1:] {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if blank(cells) {
			continue
		}
		values := make(map[string]any, len(header))
		for j, name := range header {
			if j < len(cells) && cells[j] != "" {
				values[name] = cells[j]
			}
		}
		if _, err := s.InsertRow(ctx, table, values); err != nil {
			return n, fmt.Errorf("app: import row %d: %w", i+2, err)
		}
		n++
	}
	s.log().Info("table imported", "table", table, "rows", n)
	return n, nil
}

// sheetName strips the characters a worksheet name may not contain.
func sheetName(table string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ':', '\\', '/', '?', '*', '[', ']':
			return '_'
		}
		return r
	}, table)
	name = strings.Trim(name, "'")
	if r := []rune(name); len(r) > maxSheetName {
		name = string(r[:maxSheetName])
	}
	if name == "" {
		return "Sheet1"
	}
	return name
}

func sheetValue(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case []any, map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
	return v
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

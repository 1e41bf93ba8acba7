package app

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"tableflip.dev/dbgrid/pkg/grid"
	"tableflip.dev/dbgrid/pkg/grid/search"
	"tableflip.dev/dbgrid/pkg/schema"
	"tableflip.dev/dbgrid/pkg/store"
)

// DefaultPageSize is the number of rows fetched per page.
const DefaultPageSize = 100

// Query selects one page of a table.
type Query struct {
	Table    string
	Page     int // 1-based
	PageSize int
	// Filter is an expression evaluated per row with the column names as
	// variables and "id" as the row id, e.g. `age > 30 && active`.
	Filter string
	Sort   []grid.SortEntry
}

// Page is a materialized window of rows with pagination metadata.
type Page struct {
	Table      string
	Columns    []schema.Column
	Grid       []grid.Column
	Rows       []grid.Row
	IDs        []int64
	Page       int
	PageSize   int
	TotalRows  int
	TotalPages int
}

// Page loads the page q asks for. Filter and sort apply before paging; a
// page past the end is clamped to the last one.
func (s *Service) Page(ctx context.Context, q Query) (Page, error) {
	t, err := s.Schema(ctx, q.Table)
	if err != nil {
		return Page{}, err
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	var match *vm.Program
	if f := strings.TrimSpace(q.Filter); f != "" {
		if match, err = compileFilter(f); err != nil {
			return Page{}, err
		}
	}

	recs, err := s.Persistence.Rows(ctx, q.Table)
	if err != nil {
		return Page{}, translate(err)
	}
	if match != nil {
		recs = slices.DeleteFunc(recs, func(r store.Record) bool {
			ok, err := runFilter(match, r)
			if err != nil {
				s.log().Debug("filter skipped row", "table", q.Table, "id", r.ID, "err", err)
			}
			return !ok
		})
	}
	if len(q.Sort) > 0 {
		sortRecords(recs, q.Sort)
	}

	total := len(recs)
	pages := int(math.Ceil(float64(total) / float64(q.PageSize)))
	page := min(max(q.Page, 1), max(pages, 1))
	lo := min((page-1)*q.PageSize, total)
	hi := min(lo+q.PageSize, total)

	out := Page{
		Table:      q.Table,
		Columns:    t.Columns,
		Grid:       t.GridColumns(),
		Rows:       make([]grid.Row, 0, hi-lo),
		IDs:        make([]int64, 0, hi-lo),
		Page:       page,
		PageSize:   q.PageSize,
		TotalRows:  total,
		TotalPages: pages,
	}
	for _, r := range recs[lo:hi] {
		row := make(grid.Row, len(t.Columns))
		for _, c := range t.Columns {
			row[c.Name] = r.Values[c.Name]
		}
		out.Rows = append(out.Rows, row)
		out.IDs = append(out.IDs, r.ID)
	}
	return out, nil
}

// HasNext reports whether another page follows.
func (p Page) HasNext() bool { return p.Page < p.TotalPages }

// HasPrev reports whether a page precedes this one.
func (p Page) HasPrev() bool { return p.Page > 1 }

// Label renders the "page x of y" status text.
func (p Page) Label() string {
	return fmt.Sprintf("page %d of %d (%d rows)", p.Page, max(p.TotalPages, 1), p.TotalRows)
}

// ValidateFilter reports whether filter compiles.
func ValidateFilter(filter string) error {
	if strings.TrimSpace(filter) == "" {
		return nil
	}
	_, err := compileFilter(filter)
	return err
}

func compileFilter(filter string) (*vm.Program, error) {
	program, err := expr.Compile(filter, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("app: compile filter %q: %w", filter, err)
	}
	return program, nil
}

// runFilter evaluates program against one record. A nil result is false.
func runFilter(program *vm.Program, r store.Record) (bool, error) {
	env := make(map[string]any, len(r.Values)+1)
	for k, v := range r.Values {
		env[k] = v
	}
	if _, ok := env["id"]; !ok {
		env["id"] = r.ID
	}
	result, err := expr.Run(program, env)
	if err != nil {
		return false, err
	}
	if result == nil {
		return false, nil
	}
	b, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("app: filter evaluated to %T, expected bool", result)
	}
	return b, nil
}

func sortRecords(recs []store.Record, entries []grid.SortEntry) {
	slices.SortStableFunc(recs, func(a, b store.Record) int {
		for _, e := range entries {
			c := compareValues(a.Values[e.ColumnID], b.Values[e.ColumnID])
			if e.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// compareValues orders nil first, then numbers, booleans (false < true) and
// finally everything else by display text.
func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		}
		return 1
	}
	fa, aNum := number(a)
	fb, bNum := number(b)
	if aNum && bNum {
		return cmp.Compare(fa, fb)
	}
	ba, aBool := a.(bool)
	bb, bBool := b.(bool)
	if aBool && bBool {
		switch {
		case ba == bb:
			return 0
		case !ba:
			return -1
		}
		return 1
	}
	return strings.Compare(strings.ToLower(search.Format(a)), strings.ToLower(search.Format(b)))
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}

// Package add provides the runner that appends a row to a table.
package add

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"tableflip.dev/dbgrid/pkg/app"
	"tableflip.dev/dbgrid/pkg/printers"
)

// Add inserts a row. Values are "column=value" pairs; missing columns take
// their defaults.
type Add struct {
	Service *app.Service
	Table   string
	Values  []string
	Format  printers.Format
	Out     io.Writer
}

// ParseValues splits "column=value" pairs.
func ParseValues(pairs []string) (map[string]any, error) {
	values := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("expected column=value, got %q", p)
		}
		values[k] = v
	}
	return values, nil
}

func (n *Add) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not add, no service")
	}
	values, err := ParseValues(n.Values)
	if err != nil {
		return err
	}
	rec, err := n.Service.InsertRow(ctx, n.Table, values)
	if err != nil {
		return err
	}

	out := n.Out
	if out == nil {
		out = color.Output
	}
	if n.Format != printers.Pretty {
		return printers.Write(out, n.Format, printers.RecordDocument(rec))
	}
	page, err := n.Service.Page(ctx, app.Query{Table: n.Table, Page: 1 << 30})
	if err != nil {
		return err
	}
	_, _ = color.New(color.FgGreen).Fprintf(out, "added row #%d\n\n", rec.ID)
	pp := printers.PrettyPrint{Out: out, ShowID: true}
	pp.Page(page)
	return nil
}

// Package set provides the runner that writes one cell.
package set

import (
	"context"
	"errors"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/dbgrid/pkg/app"
	"tableflip.dev/dbgrid/pkg/printers"
)

// Set writes Value into Column of the row with ID. Null stores NULL and
// ignores Value.
type Set struct {
	Service *app.Service
	Table   string
	ID      int64
	Column  string
	Value   string
	Null    bool
	Format  printers.Format
	Out     io.Writer
}

// Do executes the update and prints the stored row.
func (n *Set) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not set, no service")
	}
	var v any = n.Value
	if n.Null {
		v = nil
	}
	rec, err := n.Service.UpdateCell(ctx, n.Table, n.ID, n.Column, v)
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
	_, _ = color.New(color.Faint).Fprintf(out, "%s #%d ", n.Table, rec.ID)
	_, _ = color.New(color.Bold).Fprint(out, n.Column)
	_, _ = color.New().Fprintf(out, " = %s\n", printers.Value(rec.Values[n.Column]))
	return nil
}

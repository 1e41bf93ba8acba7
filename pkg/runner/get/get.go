// Package get provides the runner that prints a page of rows.
package get

import (
	"context"
	"errors"
	"io"

	"github.com/fatih/color"

	"tableflip.dev/dbgrid/pkg/app"
	"tableflip.dev/dbgrid/pkg/printers"
)

// Get prints the page Query selects.
type Get struct {
	Service *app.Service
	Query   app.Query
	ShowID  bool
	Format  printers.Format
	Out     io.Writer
}

func (n *Get) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not get, no service")
	}
	out := n.Out
	if out == nil {
		out = color.Output
	}

	page, err := n.Service.Page(ctx, n.Query)
	if err != nil {
		return err
	}
	if n.Format != printers.Pretty {
		return printers.Write(out, n.Format, printers.NewPageDocument(page))
	}
	pp := printers.PrettyPrint{Out: out, ShowID: n.ShowID}
	pp.Page(page)
	return nil
}

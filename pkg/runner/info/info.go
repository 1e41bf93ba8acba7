// Package info provides the runners that describe the store: its tables and
// their columns.
package info

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"tableflip.dev/dbgrid/pkg/app"
	"tableflip.dev/dbgrid/pkg/printers"
	"tableflip.dev/dbgrid/pkg/store"
)

// Info lists tables, or the columns of Table when set.
type Info struct {
	Config  store.Config
	Service *app.Service
	Table   string
	Format  printers.Format
	// ShowConfig prints where the configuration came from first.
	ShowConfig bool
	Out        io.Writer
}

type tableDocument struct {
	Name string `json:"name" yaml:"name"`
	Rows int    `json:"rows" yaml:"rows"`
}

func (n *Info) out() io.Writer {
	if n.Out == nil {
		return color.Output
	}
	return n.Out
}

// Do prints the requested description.
func (n *Info) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not describe, no service")
	}
	if n.Table != "" {
		return n.columns(ctx)
	}

	if n.ShowConfig && n.Format == printers.Pretty {
		if override := os.Getenv("DBGRID_CONFIG_PATH"); override != "" {
			_, _ = fmt.Fprintln(n.out(), "DBGRID_CONFIG_PATH found on env, using", override)
		}
		if n.Config != nil {
			_, _ = fmt.Fprintln(n.out(), "path:", n.Config.BasePath())
		}
		_, _ = fmt.Fprintln(n.out(), "")
	}

	names, err := n.Service.Tables(ctx)
	if err != nil {
		return err
	}
	counts := make([]int, len(names))
	for i, name := range names {
		if counts[i], err = n.Service.Persistence.Count(ctx, name); err != nil {
			return err
		}
	}

	if n.Format != printers.Pretty {
		docs := make([]tableDocument, len(names))
		for i := range names {
			docs[i] = tableDocument{Name: names[i], Rows: counts[i]}
		}
		return printers.Write(n.out(), n.Format, docs)
	}
	pp := printers.PrettyPrint{Out: n.out()}
	pp.Tables(names, counts)
	return nil
}

func (n *Info) columns(ctx context.Context) error {
	t, err := n.Service.Schema(ctx, n.Table)
	if err != nil {
		return err
	}
	if n.Format != printers.Pretty {
		return printers.Write(n.out(), n.Format, t)
	}
	pp := printers.PrettyPrint{Out: n.out()}
	pp.Columns(t)
	return nil
}

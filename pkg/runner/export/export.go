// Package export provides the runners that move tables in and out of xlsx
// workbooks.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mitchellh/go-homedir"

	"tableflip.dev/dbgrid/pkg/app"
)

// Export writes the rows Query selects, across all pages, to Path.
type Export struct {
	Service *app.Service
	Query   app.Query
	Path    string
	Out     io.Writer
}

func (e *Export) Do(ctx context.Context) error {
	if e.Service == nil {
		return errors.New("can not export, no service")
	}
	path := e.Path
	if path == "" {
		path = e.Query.Table + ".xlsx"
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	n, err := e.Service.ExportXLSX(ctx, e.Query, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("export %s: %w", e.Query.Table, err)
	}
	_, _ = color.New(color.FgGreen).Fprintf(out(e.Out), "exported %d rows to %s\n", n, path)
	return nil
}

// Import appends the rows of the first sheet in Path to Table.
type Import struct {
	Service *app.Service
	Table   string
	Path    string
	Out     io.Writer
}

func (i *Import) Do(ctx context.Context) error {
	if i.Service == nil {
		return errors.New("can not import, no service")
	}
	path, err := homedir.Expand(i.Path)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	n, err := i.Service.ImportXLSX(ctx, i.Table, f)
	if err != nil {
		return fmt.Errorf("import %s: %w", i.Table, err)
	}
	_, _ = color.New(color.FgGreen).Fprintf(out(i.Out), "imported %d rows into %s\n", n, i.Table)
	return nil
}

func out(w io.Writer) io.Writer {
	if w == nil {
		return color.Output
	}
	return w
}

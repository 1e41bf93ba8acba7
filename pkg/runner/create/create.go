// Package create provides the runners that create and drop tables.
package create

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"tableflip.dev/dbgrid/pkg/app"
	"tableflip.dev/dbgrid/pkg/printers"
	"tableflip.dev/dbgrid/pkg/schema"
)

// Create makes a table from a schema document. File may be "-" for stdin;
// documents ending in .json are decoded as JSON, everything else as YAML.
type Create struct {
	Service *app.Service
	File    string
	// Name overrides the table name in the document.
	Name string
	In   io.Reader
	Out  io.Writer
}

// Decode reads a table schema in the given format ("json" or "yaml").
func Decode(r io.Reader, format string) (*schema.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	t := &schema.Table{}
	switch format {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(t)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(t)
	}
	if err != nil {
		return nil, fmt.Errorf("decode schema: %w", err)
	}
	return t, nil
}

func (c *Create) Do(ctx context.Context) error {
	if c.Service == nil {
		return errors.New("can not create, no service")
	}
	var r io.Reader
	switch c.File {
	case "", "-":
		r = c.In
		if r == nil {
			r = os.Stdin
		}
	default:
		f, err := os.Open(c.File)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	format := "yaml"
	if strings.EqualFold(filepath.Ext(c.File), ".json") {
		format = "json"
	}
	t, err := Decode(r, format)
	if err != nil {
		return err
	}
	if c.Name != "" {
		t.Name = c.Name
	}
	if err := c.Service.CreateTable(ctx, t); err != nil {
		return err
	}

	out := c.Out
	if out == nil {
		out = color.Output
	}
	_, _ = color.New(color.FgGreen).Fprintf(out, "created table %s\n\n", t.Name)
	pp := printers.PrettyPrint{Out: out}
	pp.Columns(t)
	return nil
}

// Drop removes a table and its rows.
type Drop struct {
	Service *app.Service
	Table   string
	Out     io.Writer
}

func (d *Drop) Do(ctx context.Context) error {
	if d.Service == nil {
		return errors.New("can not drop, no service")
	}
	if err := d.Service.DropTable(ctx, d.Table); err != nil {
		return err
	}
	out := d.Out
	if out == nil {
		out = color.Output
	}
	_, _ = color.New(color.FgYellow).Fprintf(out, "dropped table %s\n", d.Table)
	return nil
}

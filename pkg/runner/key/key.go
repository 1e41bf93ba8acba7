// Package key provides CLI helpers to display the key map.
package key

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	teaui "tableflip.dev/dbgrid/pkg/tui/app"
	"tableflip.dev/dbgrid/pkg/tui/components/help"
)

// Key prints the browser key map.
type Key struct {
	// Full renders the complete help page with glamour instead of the
	// short binding table.
	Full  bool
	Width int
	// Style is a glamour standard style; "notty" disables colour.
	Style string
	Out   io.Writer
}

// Do renders the keys to Out.
func (k *Key) Do(_ context.Context) error {
	out := k.Out
	if out == nil {
		out = color.Output
	}
	if k.Full {
		text, err := help.Render(k.Width, k.Style)
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(out, text)
		return err
	}

	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Key"), bold.Sprint("Action"))
	for _, b := range teaui.DefaultKeyMap().FullHelp() {
		tbl.AddRow(b.Help().Key, b.Help().Desc)
	}
	tbl.RightAlign(0)

	_, _ = fmt.Fprintln(out, "")
	_, _ = fmt.Fprintln(out, tbl)
	_, _ = fmt.Fprintln(out, "")
	_, _ = color.New(color.Faint).Fprintln(out, "Run with --full for grid keys and commands.")
	return nil
}

package options

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tableflip.dev/dbgrid/pkg/printers"
)

// OutputOptions
type OutputOptions struct {
	JSON   bool
	Output string
	// Out receives JSON errors. Nil writes to color.Output.
	Out io.Writer
}

func AddOutputArg(cmd *cobra.Command, po *OutputOptions) {
	cmd.Flags().BoolVar(&po.JSON, "json", false,
		"Output as JSON.")
	cmd.Flags().StringVarP(&po.Output, "output", "o", "pretty",
		"Output format. One of 'pretty', 'json' or 'yaml'.")
}

// Format resolves the output format; --json wins over --output.
func (o *OutputOptions) Format() (printers.Format, error) {
	if o.JSON {
		return printers.JSON, nil
	}
	return printers.ParseFormat(o.Output)
}

func (o *OutputOptions) HandleError(err error) error {
	if o.JSON && err != nil {
		out := map[string]string{
			"error": err.Error(),
		}
		b, err := json.Marshal(out)
		if err != nil {
			return err
		}
		w := o.Out
		if w == nil {
			w = color.Output
		}
		_, _ = fmt.Fprintln(w, string(b))
		return nil
	}
	return err
}

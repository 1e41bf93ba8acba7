package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/dbgrid/pkg/runner/ui"
)

func addDemo(topLevel *cobra.Command) {
	var rows int

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "seed the store with sample tables",
		Example: `
DBGRID_PATH=/tmp/demo.db dbgrid demo && DBGRID_PATH=/tmp/demo.db dbgrid ui
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := load()
			if err != nil {
				return err
			}
			d := ui.Demo{Service: l.svc, Rows: rows, Out: cmd.OutOrStdout()}
			return d.Do(cmd.Context())
		},
	}

	cmd.Flags().IntVar(&rows, "rows", 250, "Number of people to generate.")
	topLevel.AddCommand(cmd)
}

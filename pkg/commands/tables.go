package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/dbgrid/pkg/commands/options"
	"tableflip.dev/dbgrid/pkg/runner/info"
)

func addTables(topLevel *cobra.Command) {
	var showConfig bool

	cmd := &cobra.Command{
		Use:     "tables",
		Aliases: []string{"ls", "info"},
		Short:   "list tables and their row counts",
		Example: `
dbgrid tables
dbgrid tables --config
dbgrid tables -o json
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := oo.Format()
			if err != nil {
				return err
			}
			l, err := load()
			if err != nil {
				return oo.HandleError(err)
			}
			s := info.Info{Config: l.cfg, Service: l.svc, Format: f, ShowConfig: showConfig, Out: cmd.OutOrStdout()}
			return oo.HandleError(s.Do(cmd.Context()))
		},
	}

	cmd.Flags().BoolVar(&showConfig, "config", false, "Show where the store lives.")
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

func addColumns(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "columns <table>",
		Aliases: []string{"schema", "describe"},
		Short:   "show the columns of a table",
		Example: `
dbgrid columns people
dbgrid columns people -o yaml > people.yaml
`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeTable,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := oo.Format()
			if err != nil {
				return err
			}
			l, err := load()
			if err != nil {
				return oo.HandleError(err)
			}
			s := info.Info{Service: l.svc, Table: args[0], Format: f, Out: cmd.OutOrStdout()}
			return oo.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

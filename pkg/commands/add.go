package commands

import (
	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/dbgrid/pkg/commands/options"
	"tableflip.dev/dbgrid/pkg/runner/add"
)

func addAddRow(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:     "add-row <table> [column=value...]",
		Aliases: []string{"add", "insert"},
		Short:   "append a row",
		Long: base.Wrap80("Append a row. Columns that are not given take their default; " +
			"a numeric primary key without a default takes the row id."),
		Example: `
dbgrid add-row people name=Ada age=36
`,
		Args:              cobra.MinimumNArgs(1),
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
			s := add.Add{Service: l.svc, Table: args[0], Values: args[1:], Format: f, Out: cmd.OutOrStdout()}
			return oo.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

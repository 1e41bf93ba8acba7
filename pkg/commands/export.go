package commands

import (
	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/dbgrid/pkg/commands/options"
	"tableflip.dev/dbgrid/pkg/runner/export"
)

func addExport(topLevel *cobra.Command) {
	qo := &options.QueryOptions{}
	var path string

	cmd := &cobra.Command{
		Use:   "export <table>",
		Short: "write a table to an xlsx workbook",
		Example: `
dbgrid export people --xlsx ~/people.xlsx
dbgrid export people --filter "active" --sort name
`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeTable,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := load()
			if err != nil {
				return err
			}
			q, err := qo.Query(args[0])
			if err != nil {
				return err
			}
			e := export.Export{Service: l.svc, Query: q, Path: path, Out: cmd.OutOrStdout()}
			return e.Do(cmd.Context())
		},
	}

	options.AddQueryArgs(cmd, qo)
	cmd.Flags().StringVar(&path, "xlsx", "", "Workbook to write. Defaults to <table>.xlsx.")
	topLevel.AddCommand(cmd)
}

func addImport(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "import <table> <workbook.xlsx>",
		Short: "append the rows of an xlsx workbook",
		Long: base.Wrap80("Append the rows of the first sheet. The first row must name " +
			"columns of the table; empty cells take the column default."),
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeTable,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := load()
			if err != nil {
				return err
			}
			i := export.Import{Service: l.svc, Table: args[0], Path: args[1], Out: cmd.OutOrStdout()}
			return i.Do(cmd.Context())
		},
	}

	topLevel.AddCommand(cmd)
}

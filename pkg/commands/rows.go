package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/dbgrid/pkg/commands/options"
	"tableflip.dev/dbgrid/pkg/runner/get"
)

func addRows(topLevel *cobra.Command) {
	qo := &options.QueryOptions{}
	io := &options.IDOptions{}

	cmd := &cobra.Command{
		Use:     "rows <table>",
		Aliases: []string{"get"},
		Short:   "print a page of rows",
		Example: `
dbgrid rows people
dbgrid rows people --filter "age > 30" --sort -age --page 2
dbgrid rows people -o yaml
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
			if qo.PageSize <= 0 {
				qo.PageSize = l.cfg.PageSize()
			}
			q, err := qo.Query(args[0])
			if err != nil {
				return oo.HandleError(err)
			}
			s := get.Get{Service: l.svc, Query: q, ShowID: io.ShowID, Format: f, Out: cmd.OutOrStdout()}
			return oo.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddQueryArgs(cmd, qo)
	options.AddShowIDArgs(cmd, io)
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"tableflip.dev/dbgrid/pkg/commands/options"
	"tableflip.dev/dbgrid/pkg/runner/set"
)

func addSet(topLevel *cobra.Command) {
	io := &options.IDOptions{}
	var null bool

	cmd := &cobra.Command{
		Use:   "set <table> <column> [value]",
		Short: "write one cell",
		Example: `
dbgrid set people name "Ada Lovelace" --id 1
dbgrid set people bio --id 1 --null
`,
		Args: func(cmd *cobra.Command, args []string) error {
			switch {
			case len(args) < 2:
				return errors.New("requires a table and a column")
			case len(args) == 2 && !null:
				return errors.New("requires a value, or --null")
			case len(args) > 3:
				return errors.New("too many arguments, quote the value")
			}
			return nil
		},
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
			s := set.Set{
				Service: l.svc,
				Table:   args[0],
				Column:  args[1],
				ID:      io.ID,
				Null:    null,
				Format:  f,
				Out:     cmd.OutOrStdout(),
			}
			if len(args) == 3 {
				s.Value = args[2]
			}
			return oo.HandleError(s.Do(cmd.Context()))
		},
	}

	options.AddIDArgs(cmd, io)
	cmd.Flags().BoolVar(&null, "null", false, "Store NULL.")
	options.AddOutputArg(cmd, oo)
	topLevel.AddCommand(cmd)
}

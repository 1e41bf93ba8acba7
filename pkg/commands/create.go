package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/dbgrid/pkg/runner/create"
)

func addCreate(topLevel *cobra.Command) {
	var name string

	cmd := &cobra.Command{
		Use:   "create <schema-file>",
		Short: "create a table from a yaml or json schema",
		Long: `Create a table from a schema document. Use "-" to read yaml from stdin.

name: people
dialect: postgres
columns:
  - columnName: id
    dataType: serial
    isPrimaryKey: true
  - columnName: name
    dataType: varchar(80)
  - columnName: bio
    dataType: text
    isNullable: true
`,
		Example: `
dbgrid create people.yaml
dbgrid columns people -o yaml | dbgrid create - --name people_copy
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := load()
			if err != nil {
				return err
			}
			c := create.Create{Service: l.svc, File: args[0], Name: name, In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}
			return c.Do(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Override the table name in the schema.")
	topLevel.AddCommand(cmd)
}

func addDrop(topLevel *cobra.Command) {
	cmd := &cobra.Command{
		Use:               "drop <table>",
		Short:             "delete a table and its rows",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeTable,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := load()
			if err != nil {
				return err
			}
			d := create.Drop{Service: l.svc, Table: args[0], Out: cmd.OutOrStdout()}
			return d.Do(cmd.Context())
		},
	}

	topLevel.AddCommand(cmd)
}

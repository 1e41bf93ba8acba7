package commands

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"tableflip.dev/dbgrid/pkg/runner/key"
)

func addKey(topLevel *cobra.Command) {
	k := key.Key{Width: 80}

	cmd := &cobra.Command{
		Use:     "key",
		Aliases: []string{"keys"},
		Short:   "print the browser key map",
		Example: `
dbgrid key
dbgrid key --full
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if k.Style == "" && !isatty.IsTerminal(os.Stdout.Fd()) {
				k.Style = "notty"
			}
			k.Out = cmd.OutOrStdout()
			return oo.HandleError(k.Do(cmd.Context()))
		},
	}

	cmd.Flags().BoolVar(&k.Full, "full", false, "Print the full help page.")
	cmd.Flags().StringVar(&k.Style, "style", "", "Glamour style for --full: dark, light or notty.")
	cmd.Flags().IntVar(&k.Width, "width", 80, "Wrap width for --full.")
	topLevel.AddCommand(cmd)
}

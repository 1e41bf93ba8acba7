package commands

import (
	"github.com/spf13/cobra"

	"tableflip.dev/dbgrid/pkg/commands/options"
	"tableflip.dev/dbgrid/pkg/grid/virtual"
	"tableflip.dev/dbgrid/pkg/logging"
	"tableflip.dev/dbgrid/pkg/runner/ui"
)

func addUI(topLevel *cobra.Command) {
	fo := &options.LogOptions{}
	var (
		rowHeight string
		pageSize  int
		noWatch   bool
	)

	cmd := &cobra.Command{
		Use:     "ui [table]",
		Aliases: []string{"browse", "open"},
		Short:   "open the terminal browser",
		Example: `
dbgrid ui
dbgrid ui people --row-height tall
`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeTable,
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := lo.Leveler()
			if err != nil {
				return err
			}
			log, closeLog, err := logging.Open(fo.File, level)
			if err != nil {
				return err
			}
			defer func() { _ = closeLog() }()

			l, err := loadWith(log)
			if err != nil {
				return err
			}
			i := ui.UI{
				Service:   l.svc,
				PageSize:  l.cfg.PageSize(),
				RowHeight: l.cfg.RowHeight(),
				Overscan:  l.cfg.Overscan(),
				Watch:     !noWatch,
				Logger:    log,
			}
			if len(args) > 0 {
				i.Table = args[0]
			}
			if pageSize > 0 {
				i.PageSize = pageSize
			}
			if rowHeight != "" {
				if i.RowHeight, err = virtual.ParseRowHeight(rowHeight); err != nil {
					return err
				}
			}
			return i.Do(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&rowHeight, "row-height", "",
		"Row density. One of short, medium, tall or extra-tall.")
	cmd.Flags().IntVar(&pageSize, "page-size", 0,
		"Rows per page. Defaults to the configured page_size.")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false,
		"Do not reload when the store changes on disk.")
	options.AddLogFileArg(cmd, fo)
	topLevel.AddCommand(cmd)
}

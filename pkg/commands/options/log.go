package options

import (
	"log/slog"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/dbgrid/pkg/logging"
)

// LogOptions
type LogOptions struct {
	Level string
	File  string
}

func AddLogArgs(cmd *cobra.Command, o *LogOptions) {
	cmd.PersistentFlags().StringVar(&o.Level, "log-level", "info",
		"Log level. One of debug, info, warn or error.")
}

func AddLogFileArg(cmd *cobra.Command, o *LogOptions) {
	cmd.Flags().StringVar(&o.File, "log-file", "",
		base.Wrap80("Write logs to this file. Defaults to $"+logging.EnvFile+"; logs are dropped when neither is set."))
}

// Leveler parses Level.
func (o *LogOptions) Leveler() (slog.Level, error) {
	return logging.ParseLevel(o.Level)
}

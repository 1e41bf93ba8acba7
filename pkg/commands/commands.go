package commands

import (
	"context"
	"log/slog"
	"os"
	"strings"

	base "github.com/n3wscott/cli-base/pkg/commands/options"
	"github.com/spf13/cobra"

	"tableflip.dev/dbgrid/pkg/app"
	"tableflip.dev/dbgrid/pkg/commands/options"
	"tableflip.dev/dbgrid/pkg/logging"
	"tableflip.dev/dbgrid/pkg/store"
)

var (
	oo = &options.OutputOptions{}
	lo = &options.LogOptions{}
)

func New() *cobra.Command {

	cmd := &cobra.Command{
		Use:   "dbgrid",
		Short: base.Wrap80("Browse and edit tables in the terminal."),
		Long: base.Wrap80("dbgrid keeps tables in a local store and opens them in a virtualized, " +
			"editable grid. Every command reads .dbgrid.yaml from the working directory " +
			"or $DBGRID_CONFIG_PATH."),
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			oo.Out = cmd.OutOrStdout()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	options.AddLogArgs(cmd, lo)

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addUI(topLevel)
	addTables(topLevel)
	addColumns(topLevel)
	addRows(topLevel)
	addSet(topLevel)
	addAddRow(topLevel)
	addCreate(topLevel)
	addDrop(topLevel)
	addExport(topLevel)
	addImport(topLevel)
	addDemo(topLevel)
	addKey(topLevel)
	addVersion(topLevel)
	addCompletions(topLevel)
}

// loaded is what most commands need: the resolved config, a service over
// the configured store and a logger.
type loaded struct {
	cfg store.Config
	svc *app.Service
	log *slog.Logger
}

// load opens the configured store. Command line tools log to stderr.
func load() (*loaded, error) {
	level, err := lo.Leveler()
	if err != nil {
		return nil, err
	}
	return loadWith(logging.New(os.Stderr, level))
}

func loadWith(log *slog.Logger) (*loaded, error) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, err
	}
	p, err := store.Load(cfg, store.WithLogger(log))
	if err != nil {
		return nil, err
	}
	return &loaded{cfg: cfg, svc: &app.Service{Persistence: p, Logger: log}, log: log}, nil
}

// tableCompletions returns table names starting with toComplete.
func tableCompletions(toComplete string) []string {
	l, err := loadWith(logging.Discard())
	if err != nil {
		return nil
	}
	names, err := l.svc.Tables(context.Background())
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if strings.HasPrefix(n, toComplete) {
			out = append(out, n)
		}
	}
	return out
}

// completeTable completes the first positional argument with a table name.
func completeTable(_ *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return tableCompletions(toComplete), cobra.ShellCompDirectiveNoFileComp
}

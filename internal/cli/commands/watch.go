package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/leapstack-labs/leapschema/internal/loader"
	"github.com/spf13/cobra"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reload the schema whenever DDL files change",
		Long: `Load the DDL directory, then watch it (and its subdirectories) and
rebuild the catalog from scratch whenever a .sql file is written, created,
removed or renamed. A failed rebuild is reported and the previous catalog
is kept. Stop with Ctrl+C.`,
		Example: `  leapschema watch --ddl-dir ./schema`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, debounce)
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", loader.DefaultDebounce, "Time to wait for changes to settle")

	return cmd
}

func runWatch(cmd *cobra.Command, debounce time.Duration) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	rebuild := func(ctx context.Context) error {
		sch, result, err := cmdCtx.LoadSchema(ctx, nil)
		if err != nil {
			r.Error(err.Error())
			return err
		}
		return renderLoad(r, loadOutput(sch, result), false)
	}

	if err := rebuild(cmd.Context()); err != nil {
		return err
	}

	w, err := loader.NewWatcher(cmdCtx.Cfg.DDLDir, rebuild, cmdCtx.Logger)
	if err != nil {
		return err
	}
	w.Debounce = debounce

	r.Muted(fmt.Sprintf("Watching %s for changes...", cmdCtx.Cfg.DDLDir))
	return w.Run(cmd.Context())
}

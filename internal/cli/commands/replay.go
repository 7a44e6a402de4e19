package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/leapstack-labs/leapschema/internal/cli/output"
	"github.com/leapstack-labs/leapschema/internal/loader"
	"github.com/spf13/cobra"
)

// ReplayOptions holds options for the replay command.
type ReplayOptions struct {
	List  bool
	Clear bool
}

// NewReplayCommand creates the replay command.
func NewReplayCommand() *cobra.Command {
	opts := &ReplayOptions{}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Rebuild the schema from the recorded journal",
		Long: `Replay every statement journaled by "load --record" for the
configured schema, in recording order, and list the resulting catalog.
The journal must have been recorded with the same dialect.`,
		Example: `  # Rebuild and list
  leapschema replay

  # Show recorded batches without replaying
  leapschema replay --list

  # Forget the journal of this schema
  leapschema replay --clear`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReplay(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.List, "list", false, "List recorded batches instead of replaying")
	cmd.Flags().BoolVar(&opts.Clear, "clear", false, "Delete the journal of the schema")
	cmd.MarkFlagsMutuallyExclusive("list", "clear")

	return cmd
}

func runReplay(cmd *cobra.Command, opts *ReplayOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer
	name := cmdCtx.Cfg.Schema

	store, err := cmdCtx.OpenStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	switch {
	case opts.Clear:
		n, err := store.Clear(name)
		if err != nil {
			return err
		}
		if r.IsStructured() {
			return r.Data(map[string]any{"schema": name, "batches_removed": n})
		}
		r.Success(fmt.Sprintf("Removed %d batch(es) for schema %s", n, name))
		return nil

	case opts.List:
		batches, err := store.Batches(name)
		if err != nil {
			return err
		}
		infos := make([]output.BatchInfo, 0, len(batches))
		for _, b := range batches {
			infos = append(infos, output.BatchInfo{
				ID:         b.ID,
				Dialect:    b.Dialect,
				Statements: b.Statements,
				CreatedAt:  b.CreatedAt.UTC().Format(time.RFC3339),
			})
		}
		return renderBatches(r, name, infos)
	}

	sch, err := cmdCtx.NewSchema()
	if err != nil {
		return err
	}
	changed, err := loader.Replay(store, sch)
	if err != nil {
		return err
	}
	cmdCtx.Logger.Info("journal replayed", "schema", name, "changed", changed)
	return renderCatalog(r, catalogOutput(sch, nil))
}

func renderBatches(r *output.Renderer, schemaName string, batches []output.BatchInfo) error {
	if r.IsStructured() {
		return r.Data(batches)
	}
	r.Header(1, "Journal of "+schemaName)
	if len(batches) == 0 {
		r.Muted("No batches recorded.")
		return nil
	}
	rows := make([][]string, 0, len(batches))
	for _, b := range batches {
		rows = append(rows, []string{b.ID, b.Dialect, strconv.Itoa(b.Statements), b.CreatedAt})
	}
	r.Table([]string{"Batch", "Dialect", "Statements", "Recorded"}, rows)
	return nil
}

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/leapschema/internal/cli/config"
	"github.com/leapstack-labs/leapschema/internal/cli/output"
	"github.com/leapstack-labs/leapschema/internal/loader"
	"github.com/leapstack-labs/leapschema/internal/state"
	"github.com/leapstack-labs/leapschema/pkg/schema"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext reads the config and logger stored on the command's
// context and builds a renderer for its output mode.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(ctx),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat)),
	}
}

// NewSchema creates an empty schema named and typed by the config.
func (c *CommandContext) NewSchema() (*schema.Schema, error) {
	d, err := c.Cfg.ResolveDialect()
	if err != nil {
		return nil, err
	}
	return schema.New(c.Cfg.Schema, d, schema.WithLogger(c.Logger))
}

// LoadSchema builds a schema from files, or from every .sql file under the
// configured DDL directory when files is empty.
func (c *CommandContext) LoadSchema(ctx context.Context, files []string) (*schema.Schema, *loader.Result, error) {
	if len(files) == 0 {
		if err := c.Cfg.ValidateDDLDir(); err != nil {
			return nil, nil, err
		}
		var err error
		files, err = loader.Discover(c.Cfg.DDLDir)
		if err != nil {
			return nil, nil, err
		}
	}

	sch, err := c.NewSchema()
	if err != nil {
		return nil, nil, err
	}
	result, err := loader.Load(ctx, sch, files, c.Logger)
	if err != nil {
		return nil, nil, err
	}
	return sch, result, nil
}

// OpenStore opens and migrates the state database.
// The caller must close the returned store.
func (c *CommandContext) OpenStore() (*state.SQLiteStore, error) {
	path := c.Cfg.StatePath
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create state directory: %w", err)
			}
		}
	}

	store := state.NewSQLiteStore()
	if err := store.Open(path); err != nil {
		return nil, fmt.Errorf("failed to open state: %w", err)
	}
	if err := store.Migrate(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate state: %w", err)
	}
	c.Logger.Debug("state opened", "path", path)
	return store, nil
}

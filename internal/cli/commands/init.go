package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new leapschema project",
		Long: `Initialize a new leapschema project.

This creates:
  - leapschema.yaml with the dialect and schema from --dialect and --schema
  - ddl/ directory for SQL DDL files
  - .gitignore excluding the local state directory

Use --example to create a small MySQL project with tables, an index, a view
and a sample query to resolve.`,
		Example: `  # Initialize in current directory
  leapschema init

  # Initialize an Oracle project named hr
  leapschema init hr --dialect oracle --schema hr

  # Initialize with a working example
  leapschema init demo --example`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			return runInit(cmd, dir, example, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&example, "example", false, "Create an example project with DDL and a query")

	return cmd
}

func runInit(cmd *cobra.Command, dir string, example, force bool) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	d, err := cmdCtx.Cfg.ResolveDialect()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	configPath := filepath.Join(dir, "leapschema.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", configPath)
	}

	name := "minimal"
	if example {
		name = "example"
	}
	files, err := copyTemplate(name, dir, templateData{Dialect: d.Name, Schema: cmdCtx.Cfg.Schema}, force)
	if err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}
	cmdCtx.Logger.Debug("project initialized", "dir", dir, "template", name, "files", len(files))

	if r.IsStructured() {
		return r.Data(map[string]any{"directory": dir, "template": name, "files": files})
	}

	groups := groupTemplateFiles(files)
	for _, group := range []string{"config", "ddl", "queries"} {
		if len(groups[group]) == 0 {
			continue
		}
		r.Header(2, group)
		for _, f := range groups[group] {
			r.Success(f)
		}
		r.Println("")
	}

	r.Success("leapschema project initialized!")
	r.Println("")
	r.Println("Next steps:")
	if example {
		r.Println("  leapschema load                               Build the catalog from ddl/")
		r.Println("  leapschema tables                             List tables and views")
		r.Println("  leapschema resolve - < queries/top_customers.sql   Resolve a query")
	} else {
		r.Println("  1. Add CREATE statements to ddl/")
		r.Println("  2. Run 'leapschema load' to build the catalog")
		r.Println("  3. Run 'leapschema repl' to explore it")
	}
	return nil
}

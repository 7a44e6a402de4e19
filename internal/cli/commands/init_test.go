package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/leapstack-labs/leapschema/internal/cli/config"
	"github.com/leapstack-labs/leapschema/internal/cli/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCommand(t *testing.T) {
	tests := []struct {
		name      string
		setupDir  func(t *testing.T, dir string)
		args      []string
		wantErr   string
		wantFiles []string
	}{
		{
			name:      "init empty directory",
			wantFiles: []string{"leapschema.yaml", ".gitignore", "ddl/001_schema.sql"},
		},
		{
			name: "existing config without force",
			setupDir: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "leapschema.yaml"), []byte("existing"), 0o600))
			},
			wantErr: "already exists",
		},
		{
			name: "existing config with force",
			setupDir: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "leapschema.yaml"), []byte("existing"), 0o600))
			},
			args:      []string{"--force"},
			wantFiles: []string{"leapschema.yaml", "ddl/001_schema.sql"},
		},
		{
			name: "example",
			args: []string{"--example"},
			wantFiles: []string{
				"leapschema.yaml",
				"ddl/01_customers.sql",
				"ddl/02_orders.sql",
				"ddl/views/03_reports.sql",
				"queries/top_customers.sql",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if tt.setupDir != nil {
				tt.setupDir(t, dir)
			}
			cfg := config.Default()
			cfg.OutputFormat = "text"

			stdout, _, err := execute(t, NewInitCommand(), cfg, append([]string{dir}, tt.args...)...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, stdout, "project initialized")
			for _, f := range tt.wantFiles {
				assert.FileExists(t, filepath.Join(dir, filepath.FromSlash(f)))
			}
			assert.NoFileExists(t, filepath.Join(dir, "leapschema.yaml.tmpl"))
			assert.NoFileExists(t, filepath.Join(dir, "gitignore"))
		})
	}
}

func TestInitCommand_RendersConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "hr")
	cfg := config.Default()
	cfg.Dialect = "oracle"
	cfg.Schema = "hr"
	cfg.OutputFormat = "json"

	stdout, _, err := execute(t, NewInitCommand(), cfg, dir)
	require.NoError(t, err)

	out := decode[map[string]any](t, stdout)
	assert.Equal(t, "minimal", out["template"])
	assert.ElementsMatch(t, []any{"leapschema.yaml", ".gitignore", "ddl/001_schema.sql"}, out["files"])

	data, err := os.ReadFile(filepath.Join(dir, "leapschema.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "dialect: oracle\n")
	assert.Contains(t, string(data), "schema: hr\n")
}

func TestInitCommand_ExampleLoads(t *testing.T) {
	dir := t.TempDir()
	_, _, err := execute(t, NewInitCommand(), config.Default(), dir, "--example")
	require.NoError(t, err)

	cfg := &config.Config{
		Dialect:      "mysql",
		Schema:       "demo",
		DDLDir:       filepath.Join(dir, "ddl"),
		StatePath:    filepath.Join(dir, ".leapschema", "state.db"),
		OutputFormat: "json",
		ProjectRoot:  dir,
	}
	stdout, _, err := execute(t, NewLoadCommand(), cfg)
	require.NoError(t, err)

	out := decode[output.LoadOutput](t, stdout)
	assert.Len(t, out.Files, 3)
	assert.Equal(t, 7, out.Statements)
	assert.Equal(t, 3, out.Tables)
	assert.Equal(t, 1, out.Views)

	query, err := os.ReadFile(filepath.Join(dir, "queries", "top_customers.sql"))
	require.NoError(t, err)
	stdout, _, err = execute(t, NewResolveCommand(), cfg, string(query))
	require.NoError(t, err)
	refs := decode[[]output.ReferenceInfo](t, stdout)
	require.Len(t, refs, 3)
	assert.Equal(t, "customer_totals", refs[0].Table)
	assert.Equal(t, "name", refs[0].Column)
	assert.Equal(t, output.ReferenceInfo{Item: "MAX(o.amount) AS biggest_order", Table: "orders", Column: "amount"}, refs[2])
}

func TestGroupTemplateFiles(t *testing.T) {
	groups := groupTemplateFiles([]string{"leapschema.yaml", ".gitignore", "ddl/a.sql", "ddl/views/b.sql", "queries/q.sql"})
	assert.Equal(t, []string{"leapschema.yaml", ".gitignore"}, groups["config"])
	assert.Equal(t, []string{"ddl/a.sql", "ddl/views/b.sql"}, groups["ddl"])
	assert.Equal(t, []string{"queries/q.sql"}, groups["queries"])
}

func TestRenameSpecialFiles(t *testing.T) {
	assert.Equal(t, ".gitignore", renameSpecialFiles("gitignore"))
	assert.Equal(t, "sub/.gitignore", renameSpecialFiles("sub/gitignore"))
	assert.Equal(t, "leapschema.yaml", renameSpecialFiles("leapschema.yaml.tmpl"))
	assert.Equal(t, "ddl/a.sql", renameSpecialFiles("ddl/a.sql"))
}

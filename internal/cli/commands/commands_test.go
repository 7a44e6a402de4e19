package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leapstack-labs/leapschema/internal/cli/config"
	"github.com/leapstack-labs/leapschema/internal/cli/output"
	"github.com/leapstack-labs/leapschema/internal/testutil"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureDDL = `CREATE TABLE customers (id INT PRIMARY KEY, name VARCHAR(50) NOT NULL);
CREATE TABLE orders (id INT, customer_id INT, total DECIMAL(10, 2));
CREATE VIEW big_orders AS SELECT id, total FROM orders WHERE total > 100;
CREATE INDEX idx_orders_customer ON orders (customer_id);
CREATE SEQUENCE order_seq;
`

// setupProject writes the fixture DDL and returns a config pointing at it.
func setupProject(t *testing.T, outputFormat string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	ddlDir := filepath.Join(dir, "ddl")
	require.NoError(t, os.MkdirAll(ddlDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(ddlDir, "01_schema.sql"), []byte(fixtureDDL), 0o600))

	return &config.Config{
		Dialect:      "mysql",
		Schema:       "shop",
		DDLDir:       ddlDir,
		StatePath:    filepath.Join(dir, ".leapschema", "state.db"),
		OutputFormat: outputFormat,
		ProjectRoot:  dir,
	}
}

// execute runs cmd with cfg and a test logger on its context.
func execute(t *testing.T, cmd *cobra.Command, cfg *config.Config, args ...string) (string, string, error) {
	t.Helper()
	ctx := config.WithConfig(context.Background(), cfg)
	ctx = context.WithValue(ctx, config.LoggerKey(), testutil.NewTestLogger(t))

	out, errOut := new(bytes.Buffer), new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

func decode[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(s), &v), s)
	return v
}

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewInitCommand(), "init [directory]", []string{"force", "example"}},
		{NewDoctorCommand(), "doctor", nil},
		{NewLoadCommand(), "load [files...]", []string{"record"}},
		{NewTablesCommand(), "tables [files...]", []string{"kind"}},
		{NewDescribeCommand(), "describe <name>", nil},
		{NewResolveCommand(), "resolve <query>", nil},
		{NewFlattenCommand(), "flatten <query>", nil},
		{NewReplayCommand(), "replay", []string{"list", "clear"}},
		{NewWatchCommand(), "watch", []string{"debounce"}},
		{NewREPLCommand(), "repl", []string{"empty"}},
	}
	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			assert.NotEmpty(t, tt.cmd.Example, "Example should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestLoadCommand(t *testing.T) {
	cfg := setupProject(t, "json")
	stdout, _, err := execute(t, NewLoadCommand(), cfg)
	require.NoError(t, err)

	out := decode[output.LoadOutput](t, stdout)
	assert.Equal(t, "shop", out.Schema)
	assert.Equal(t, "mysql", out.Dialect)
	assert.Len(t, out.Files, 1)
	assert.Equal(t, 5, out.Statements)
	assert.Equal(t, 5, out.Changed)
	assert.Equal(t, 2, out.Tables)
	assert.Equal(t, 1, out.Views)
	assert.Empty(t, out.BatchID)
	require.Len(t, out.Applied, 5)
	assert.Equal(t, "CREATE VIEW", out.Applied[2].Kind)
	assert.NoFileExists(t, cfg.StatePath, "state is only opened with --record")
}

func TestLoadCommand_Markdown(t *testing.T) {
	cfg := setupProject(t, "markdown")
	stdout, _, err := execute(t, NewLoadCommand(), cfg)
	require.NoError(t, err)

	assert.Contains(t, stdout, "# Loaded schema shop (mysql)")
	assert.Contains(t, stdout, "- **Statements**: 5")
	assert.Contains(t, stdout, "| 01_schema.sql | CREATE TABLE | yes |")
}

func TestLoadCommand_Errors(t *testing.T) {
	cfg := setupProject(t, "json")

	missing := *cfg
	missing.DDLDir = filepath.Join(cfg.ProjectRoot, "nope")
	_, _, err := execute(t, NewLoadCommand(), &missing)
	assert.ErrorContains(t, err, "does not exist")

	bad := filepath.Join(cfg.ProjectRoot, "bad.sql")
	require.NoError(t, os.WriteFile(bad, []byte("CREATE TABLE t (a INT"), 0o600))
	_, _, err = execute(t, NewLoadCommand(), cfg, bad)
	assert.ErrorContains(t, err, "bad.sql")
}

func TestRecordAndReplay(t *testing.T) {
	cfg := setupProject(t, "json")

	stdout, _, err := execute(t, NewLoadCommand(), cfg, "--record")
	require.NoError(t, err)
	loaded := decode[output.LoadOutput](t, stdout)
	assert.NotEmpty(t, loaded.BatchID)
	assert.FileExists(t, cfg.StatePath)

	stdout, _, err = execute(t, NewReplayCommand(), cfg)
	require.NoError(t, err)
	replayed := decode[output.CatalogOutput](t, stdout)
	assert.Equal(t, 2, replayed.Tables)
	assert.Equal(t, 1, replayed.Views)
	var names []string
	for _, o := range replayed.Objects {
		names = append(names, o.Name)
	}
	assert.Equal(t, []string{"big_orders", "customers", "idx_orders_customer", "order_seq", "orders"}, names)

	stdout, _, err = execute(t, NewReplayCommand(), cfg, "--list")
	require.NoError(t, err)
	batches := decode[[]output.BatchInfo](t, stdout)
	require.Len(t, batches, 1)
	assert.Equal(t, loaded.BatchID, batches[0].ID)
	assert.Equal(t, 5, batches[0].Statements)
	assert.Equal(t, "mysql", batches[0].Dialect)

	stdout, _, err = execute(t, NewReplayCommand(), cfg, "--clear")
	require.NoError(t, err)
	cleared := decode[map[string]any](t, stdout)
	assert.EqualValues(t, 1, cleared["batches_removed"])

	stdout, _, err = execute(t, NewReplayCommand(), cfg)
	require.NoError(t, err)
	assert.Empty(t, decode[output.CatalogOutput](t, stdout).Objects)

	_, _, err = execute(t, NewReplayCommand(), cfg, "--list", "--clear")
	assert.Error(t, err)
}

func TestReplay_DialectMismatch(t *testing.T) {
	cfg := setupProject(t, "json")
	_, _, err := execute(t, NewLoadCommand(), cfg, "--record")
	require.NoError(t, err)

	oracle := *cfg
	oracle.Dialect = "oracle"
	_, _, err = execute(t, NewReplayCommand(), &oracle)
	assert.ErrorContains(t, err, "dialect mismatch")
}

func TestTablesCommand(t *testing.T) {
	cfg := setupProject(t, "json")

	stdout, _, err := execute(t, NewTablesCommand(), cfg)
	require.NoError(t, err)
	all := decode[output.CatalogOutput](t, stdout)
	assert.Len(t, all.Objects, 5)
	assert.Empty(t, all.Functions)

	stdout, _, err = execute(t, NewTablesCommand(), cfg, "--kind", "view,sequence")
	require.NoError(t, err)
	filtered := decode[output.CatalogOutput](t, stdout)
	require.Len(t, filtered.Objects, 2)
	assert.Equal(t, "big_orders", filtered.Objects[0].Name)
	assert.Equal(t, "VIEW", filtered.Objects[0].Type)
	assert.Equal(t, "order_seq", filtered.Objects[1].Name)
	assert.Equal(t, 2, filtered.Tables, "counts cover the whole schema")

	_, _, err = execute(t, NewTablesCommand(), cfg, "--kind", "trigger")
	assert.ErrorContains(t, err, `unknown object kind "trigger"`)
}

func TestTablesCommand_Text(t *testing.T) {
	cfg := setupProject(t, "text")
	stdout, _, err := execute(t, NewTablesCommand(), cfg)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Schema shop (mysql)")
	assert.Contains(t, stdout, "idx_orders_customer")
	assert.Contains(t, stdout, "SEQUENCE")
}

func TestDescribeCommand(t *testing.T) {
	cfg := setupProject(t, "json")

	stdout, _, err := execute(t, NewDescribeCommand(), cfg, "CUSTOMERS")
	require.NoError(t, err)
	obj := decode[output.ObjectInfo](t, stdout)
	assert.Equal(t, "customers", obj.Name)
	assert.Equal(t, "TABLE", obj.Type)
	require.Len(t, obj.Columns, 2)
	assert.Equal(t, "id", obj.Columns[0].Name)
	assert.True(t, obj.Columns[0].PrimaryKey)
	assert.Equal(t, "VARCHAR(50)", obj.Columns[1].Type)
	assert.True(t, obj.Columns[1].NotNull)

	stdout, _, err = execute(t, NewDescribeCommand(), cfg, "order_seq")
	require.NoError(t, err)
	seq := decode[output.ObjectInfo](t, stdout)
	assert.Equal(t, "SEQUENCE", seq.Type)
	assert.Empty(t, seq.Columns)

	_, _, err = execute(t, NewDescribeCommand(), cfg, "missing")
	assert.ErrorContains(t, err, `object "missing" not found`)

	_, _, err = execute(t, NewDescribeCommand(), cfg)
	assert.Error(t, err)
}

func TestResolveCommand(t *testing.T) {
	cfg := setupProject(t, "json")

	stdout, _, err := execute(t, NewResolveCommand(), cfg,
		"SELECT o.id, c.name, MAX(o.total) AS biggest, COUNT(*) AS n, missing.x",
		"FROM orders o JOIN customers c ON o.customer_id = c.id")
	require.NoError(t, err)

	refs := decode[[]output.ReferenceInfo](t, stdout)
	assert.Equal(t, []output.ReferenceInfo{
		{Item: "o.id", Table: "orders", Column: "id"},
		{Item: "c.name", Table: "customers", Column: "name"},
		{Item: "MAX(o.total) AS biggest", Table: "orders", Column: "total"},
		{Item: "COUNT(*) AS n"},
		{Item: "missing.x"},
	}, refs)
}

func TestResolveCommand_Stdin(t *testing.T) {
	cfg := setupProject(t, "markdown")
	cmd := NewResolveCommand()
	cmd.SetIn(strings.NewReader("SELECT total FROM big_orders"))

	stdout, _, err := execute(t, cmd, cfg, "-")
	require.NoError(t, err)
	assert.Contains(t, stdout, "| total | big_orders | total |")
}

func TestResolveCommand_ParseError(t *testing.T) {
	cfg := setupProject(t, "json")
	_, _, err := execute(t, NewResolveCommand(), cfg, "SELECT a + FROM t")
	assert.ErrorContains(t, err, "parse query")
}

func TestFlattenCommand(t *testing.T) {
	cfg := setupProject(t, "json")

	stdout, _, err := execute(t, NewFlattenCommand(), cfg,
		"SELECT * FROM orders o JOIN customers c ON o.customer_id = c.id, big_orders, ghost g")
	require.NoError(t, err)

	entries := decode[[]output.FlattenEntry](t, stdout)
	assert.Equal(t, []output.FlattenEntry{
		{Key: "orders", Table: "orders", Type: "TABLE"},
		{Key: "o", Table: "orders", Type: "TABLE"},
		{Key: "customers", Table: "customers", Type: "TABLE"},
		{Key: "c", Table: "customers", Type: "TABLE"},
		{Key: "big_orders", Table: "big_orders", Type: "VIEW"},
	}, entries)

	_, _, err = execute(t, NewFlattenCommand(), cfg, "SELECT 1")
	assert.ErrorIs(t, err, errNoFrom)
}

func newTestSession(t *testing.T, empty bool) (*replSession, *bytes.Buffer) {
	t.Helper()
	cfg := setupProject(t, "markdown")
	cmd := NewREPLCommand()
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	ctx := config.WithConfig(context.Background(), cfg)
	cmd.SetContext(context.WithValue(ctx, config.LoggerKey(), testutil.NewTestLogger(t)))

	s, err := newREPLSession(cmd, NewCommandContext(cmd), empty)
	require.NoError(t, err)
	return s, out
}

func TestREPLSession_LoadsDDLDir(t *testing.T) {
	s, _ := newTestSession(t, false)
	assert.Equal(t, 2, s.sch.TableCount())

	empty, _ := newTestSession(t, true)
	assert.Equal(t, 0, empty.sch.TableCount())
}

func TestREPLSession_Statements(t *testing.T) {
	s, out := newTestSession(t, true)

	assert.False(t, s.Feed("CREATE TABLE t (a INT,"))
	assert.True(t, s.Pending())
	assert.False(t, s.Feed("  b INT);"))
	assert.False(t, s.Pending())
	assert.NotNil(t, s.sch.FindTable("t").FindColumn("b"))
	assert.Contains(t, out.String(), "✓ CREATE TABLE")

	out.Reset()
	s.Feed("CREATE TABLE T (z INT);")
	assert.Contains(t, out.String(), "CREATE TABLE: no change")

	out.Reset()
	s.Feed("SELECT b FROM t;")
	assert.Contains(t, out.String(), "| b | t | b |")

	out.Reset()
	s.Feed("SELECT FROM;")
	assert.Contains(t, out.String(), "✗")

	assert.False(t, s.Feed(""))
	assert.True(t, s.Feed(".quit"))
	assert.True(t, s.Feed(".EXIT"))
}

func TestREPLSession_DotCommands(t *testing.T) {
	s, out := newTestSession(t, false)

	s.Feed(".tables")
	assert.Contains(t, out.String(), "# Schema shop (mysql)")

	out.Reset()
	s.Feed(".describe orders")
	assert.Contains(t, out.String(), "| customer_id | INT | YES |")

	out.Reset()
	s.Feed(".describe")
	assert.Contains(t, out.String(), "Usage: .describe")

	out.Reset()
	s.Feed(".flatten SELECT * FROM orders o;")
	assert.Contains(t, out.String(), "| o | orders | TABLE |")

	out.Reset()
	s.Feed(".flatten SELECT 1")
	assert.Contains(t, out.String(), errNoFrom.Error())

	out.Reset()
	s.Feed(".reset")
	assert.Equal(t, 0, s.sch.TableCount())

	s.Feed(".reload")
	assert.Equal(t, 2, s.sch.TableCount())

	out.Reset()
	s.Feed(".bogus")
	assert.Contains(t, out.String(), "Unknown command: .bogus")

	out.Reset()
	s.Feed(".help")
	assert.Contains(t, out.String(), ".describe <name>")
}

package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testFlags mirrors the persistent flags of the root command.
func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("config", "", "")
	flags.String("dialect", "", "")
	flags.String("schema", "", "")
	flags.String("ddl-dir", "", "")
	flags.String("state", "", "")
	flags.StringP("output", "o", "", "")
	flags.String("log-level", "", "")
	flags.BoolP("verbose", "v", false, "")
	return flags
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "leapschema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultDialect, cfg.Dialect)
	assert.Equal(t, DefaultSchema, cfg.Schema)
	assert.Equal(t, DefaultOutput, cfg.OutputFormat)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.False(t, cfg.Verbose)
	assert.Empty(t, cfg.ConfigFile)

	root, err := filepath.EvalSymlinks(cfg.ProjectRoot)
	require.NoError(t, err)
	want, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, want, root)
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, "ddl"), cfg.DDLDir)
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, ".leapschema", "state.db"), cfg.StatePath)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, `dialect: mysql
schema: shop
ddl_dir: sql
state_path: ":memory:"
output: json
log_level: debug
`)

	cfg, err := Load(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Dialect)
	assert.Equal(t, "shop", cfg.Schema)
	assert.Equal(t, filepath.Join(dir, "sql"), cfg.DDLDir)
	assert.Equal(t, ":memory:", cfg.StatePath)
	assert.Equal(t, "json", cfg.OutputFormat)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, cfgPath, cfg.ConfigFile)

	d, err := cfg.ResolveDialect()
	require.NoError(t, err)
	assert.Equal(t, "mysql", d.Name)
}

func TestLoad_FindsConfigUpward(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "schema: found\n")
	nested := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))
	t.Chdir(nested)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "found", cfg.Schema)
	assert.Equal(t, "leapschema.yaml", filepath.Base(cfg.ConfigFile))
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "schema: from_file\ndialect: oracle\noutput: markdown\n")

	t.Setenv("LEAPSCHEMA_SCHEMA", "from_env")
	t.Setenv("LEAPSCHEMA_OUTPUT", "yaml")

	t.Run("env overrides file", func(t *testing.T) {
		cfg, err := Load(cfgPath, nil)
		require.NoError(t, err)
		assert.Equal(t, "from_env", cfg.Schema)
		assert.Equal(t, "yaml", cfg.OutputFormat)
		assert.Equal(t, "oracle", cfg.Dialect)
	})

	t.Run("flag overrides env", func(t *testing.T) {
		flags := testFlags()
		require.NoError(t, flags.Set("schema", "from_flag"))
		require.NoError(t, flags.Set("log-level", "error"))
		require.NoError(t, flags.Set("verbose", "true"))

		cfg, err := Load(cfgPath, flags)
		require.NoError(t, err)
		assert.Equal(t, "from_flag", cfg.Schema)
		assert.Equal(t, "yaml", cfg.OutputFormat, "unset flags do not override")
		assert.Equal(t, slog.LevelError, cfg.LogLevel)
		assert.True(t, cfg.Verbose)
		assert.Equal(t, slog.LevelDebug, cfg.EffectiveLogLevel())
	})
}

func TestLoad_FlagPaths(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeConfig(t, dir, "state_path: state/from_file.db\n")

	work := t.TempDir()
	t.Chdir(work)

	flags := testFlags()
	require.NoError(t, flags.Set("state", "mine.db"))
	require.NoError(t, flags.Set("ddl-dir", "schema_files"))

	cfg, err := Load(cfgPath, flags)
	require.NoError(t, err)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "mine.db"), cfg.StatePath, "--state maps to state_path, relative to CWD")
	assert.Equal(t, filepath.Join(cwd, "schema_files"), cfg.DDLDir)
}

func TestLoad_DDLDirAnchor(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "ddl"), 0o755))
	t.Chdir(t.TempDir())

	flags := testFlags()
	require.NoError(t, flags.Set("ddl-dir", filepath.Join(dir, "ddl")))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, dir, cfg.ProjectRoot)
	assert.Equal(t, filepath.Join(dir, ".leapschema", "state.db"), cfg.StatePath)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		errSubstr string
	}{
		{"unknown dialect", "dialect: cobol\n", "invalid dialect"},
		{"bad output", "output: html\n", "invalid output format"},
		{"empty schema", "schema: \"\"\n", "schema is required"},
		{"bad log level", "log_level: loud\n", "unable to decode config"},
		{"bad yaml", "dialect: [\n", "error reading config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfgPath := writeConfig(t, t.TempDir(), tt.content)
			_, err := Load(cfgPath, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestValidateDDLDir(t *testing.T) {
	dir := t.TempDir()
	cfg := Default()

	cfg.DDLDir = dir
	assert.NoError(t, cfg.ValidateDDLDir())

	cfg.DDLDir = filepath.Join(dir, "missing")
	assert.ErrorContains(t, cfg.ValidateDDLDir(), "does not exist")

	file := filepath.Join(dir, "f.sql")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	cfg.DDLDir = file
	assert.ErrorContains(t, cfg.ValidateDDLDir(), "not a directory")
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, Default(), FromContext(ctx))
	assert.NotNil(t, GetLogger(ctx))

	cfg := &Config{Schema: "x"}
	ctx = WithConfig(ctx, cfg)
	assert.Same(t, cfg, FromContext(ctx))

	logger := slog.New(slog.DiscardHandler)
	ctx = context.WithValue(ctx, LoggerKey(), logger)
	assert.Same(t, logger, GetLogger(ctx))
}

// Package config provides configuration management for the leapschema CLI.
//
// Values are layered with koanf: built-in defaults, then leapschema.yaml,
// then LEAPSCHEMA_ environment variables, then explicitly set flags.
package config

import "log/slog"

// Config holds all CLI configuration options.
type Config struct {
	Dialect      string     `koanf:"dialect"`
	Schema       string     `koanf:"schema"`
	DDLDir       string     `koanf:"ddl_dir"`
	StatePath    string     `koanf:"state_path"`
	OutputFormat string     `koanf:"output"`
	LogLevel     slog.Level `koanf:"log_level"`
	Verbose      bool       `koanf:"verbose"`

	// Set by the loader, never read from a source.
	ProjectRoot string `koanf:"-"`
	ConfigFile  string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultDialect   = "ansi"
	DefaultSchema    = "main"
	DefaultDDLDir    = "ddl"
	DefaultStateFile = ".leapschema/state.db"
	DefaultOutput    = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultLogLevel  = "warn"
)

// configFileNames are the names searched for, in order.
var configFileNames = []string{"leapschema.yaml", "leapschema.yml"}

// Default returns a configuration built from defaults only, rooted at the
// current directory.
func Default() *Config {
	return &Config{
		Dialect:      DefaultDialect,
		Schema:       DefaultSchema,
		DDLDir:       DefaultDDLDir,
		StatePath:    DefaultStateFile,
		OutputFormat: DefaultOutput,
		LogLevel:     slog.LevelWarn,
	}
}

// EffectiveLogLevel returns the level the CLI logger should use. Verbose
// lowers the configured level to debug.
func (c *Config) EffectiveLogLevel() slog.Level {
	if c.Verbose && c.LogLevel > slog.LevelDebug {
		return slog.LevelDebug
	}
	return c.LogLevel
}

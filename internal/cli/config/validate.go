package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/leapstack-labs/leapschema/pkg/dialect"
)

// OutputFormats are the accepted values of the output key.
var OutputFormats = []string{"auto", "text", "markdown", "json", "yaml"}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Schema == "" {
		return errors.New("schema is required")
	}
	if _, err := dialect.Lookup(c.Dialect); err != nil {
		return fmt.Errorf("invalid dialect: %w", err)
	}
	for _, f := range OutputFormats {
		if c.OutputFormat == f {
			return nil
		}
	}
	return fmt.Errorf("invalid output format %q (want one of %v)", c.OutputFormat, OutputFormats)
}

// ValidateDDLDir checks that the DDL directory exists.
func (c *Config) ValidateDDLDir() error {
	info, err := os.Stat(c.DDLDir)
	if os.IsNotExist(err) {
		return fmt.Errorf("ddl directory does not exist: %s\nHint: Create the directory or use --ddl-dir to specify a different path", c.DDLDir)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("ddl path is not a directory: %s", c.DDLDir)
	}
	return nil
}

// ResolveDialect returns the configured dialect.
func (c *Config) ResolveDialect() (*dialect.Dialect, error) {
	return dialect.Lookup(c.Dialect)
}

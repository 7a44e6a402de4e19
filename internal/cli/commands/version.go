package commands

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapschema/pkg/dialect"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display leapschema version and the SQL dialects it understands.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "leapschema v%s\n", version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Dialects: %s\n", strings.Join(dialect.List(), ", "))
		},
	}
}

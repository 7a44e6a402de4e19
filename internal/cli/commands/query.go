package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/leapstack-labs/leapschema/pkg/core"
	"github.com/leapstack-labs/leapschema/pkg/schema"
	"github.com/spf13/cobra"
)

// errNoFrom is returned by flatten for a query without a FROM clause.
var errNoFrom = errors.New("query has no FROM clause")

// queryText joins the arguments into one query. A single "-" reads the
// query from stdin.
func queryText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read query: %w", err)
		}
		return string(data), nil
	}
	return strings.Join(args, " "), nil
}

// loadAndParse loads the configured DDL and parses the query against it.
func loadAndParse(cmd *cobra.Command, args []string) (*CommandContext, *schema.Schema, *core.SelectStmt, error) {
	sql, err := queryText(cmd, args)
	if err != nil {
		return nil, nil, nil, err
	}
	cmdCtx := NewCommandContext(cmd)
	sch, _, err := cmdCtx.LoadSchema(cmd.Context(), nil)
	if err != nil {
		return nil, nil, nil, err
	}
	sel, err := sch.ParseQuery(sql)
	if err != nil {
		return nil, nil, nil, err
	}
	return cmdCtx, sch, sel, nil
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <query>",
		Short: "Resolve each select item to its table and column",
		Long: `Load the DDL, parse a SELECT and report, for every select-list
item, the catalog object and column it refers to. Items that cannot be
resolved are shown as "-". Pass "-" to read the query from stdin.`,
		Example: `  leapschema resolve "SELECT o.id, MAX(c.name) FROM orders o JOIN customers c ON o.customer_id = c.id"

  echo "SELECT * FROM orders" | leapschema resolve -`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, sch, sel, err := loadAndParse(cmd, args)
			if err != nil {
				return err
			}
			refs := sch.NewResolver().SelectItems(sel)
			return renderReferences(cmdCtx.Renderer, referenceInfos(refs))
		},
	}
}

// NewFlattenCommand creates the flatten command.
func NewFlattenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "flatten <query>",
		Short: "Map every name of a FROM clause to its table",
		Long: `Load the DDL, parse a SELECT and flatten its FROM clause into an
ordered map from table names and aliases to catalog objects. Sources that
are not known tables or views (subqueries, table functions, unknown
names) are left out.`,
		Example: `  leapschema flatten "SELECT * FROM orders o JOIN customers c ON o.customer_id = c.id"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, sch, sel, err := loadAndParse(cmd, args)
			if err != nil {
				return err
			}
			if sel.From == nil {
				return errNoFrom
			}
			tables := sch.NewResolver().Flatten(sel.From)
			return renderFlatten(cmdCtx.Renderer, flattenEntries(tables))
		},
	}
}

package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	var kinds []string

	cmd := &cobra.Command{
		Use:     "tables [files...]",
		Aliases: []string{"ls"},
		Short:   "List catalog objects",
		Long: `Load the DDL and list every catalog object in name order,
followed by functions. Use --kind to keep only some object types.`,
		Example: `  # Everything under ./ddl
  leapschema tables

  # Views and sequences only
  leapschema tables --kind view --kind sequence`,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseKinds(kinds)
			if err != nil {
				return err
			}
			cmdCtx := NewCommandContext(cmd)
			sch, _, err := cmdCtx.LoadSchema(cmd.Context(), args)
			if err != nil {
				return err
			}
			return renderCatalog(cmdCtx.Renderer, catalogOutput(sch, filter))
		},
	}

	cmd.Flags().StringSliceVar(&kinds, "kind", nil, "Object kinds to list (table|view|index|sequence|function)")
	_ = cmd.RegisterFlagCompletionFunc("kind", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "view", "index", "sequence", "function"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// NewDescribeCommand creates the describe command.
func NewDescribeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <name>",
		Short: "Show the columns of a table or view",
		Long: `Load the DDL and show the columns of one table or view. Other
objects (indexes, sequences, functions) are shown by type only.
Names are matched case-insensitively.`,
		Example: `  leapschema describe orders`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx := NewCommandContext(cmd)
			sch, _, err := cmdCtx.LoadSchema(cmd.Context(), nil)
			if err != nil {
				return err
			}
			obj := sch.FindTableOrView(args[0])
			if obj == nil {
				obj = sch.FindFunction(args[0])
			}
			if obj == nil {
				for _, o := range sch.Objects() {
					if strings.EqualFold(o.DisplayName(), args[0]) {
						obj = o
						break
					}
				}
			}
			if obj == nil {
				return fmt.Errorf("object %q not found in schema %s", args[0], sch.Name())
			}
			return renderObject(cmdCtx.Renderer, obj)
		},
	}
}

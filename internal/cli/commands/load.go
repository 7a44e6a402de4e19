package commands

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/leapstack-labs/leapschema/internal/cli/output"
	"github.com/leapstack-labs/leapschema/internal/loader"
	"github.com/leapstack-labs/leapschema/pkg/schema"
	"github.com/spf13/cobra"
)

// LoadOptions holds options for the load command.
type LoadOptions struct {
	Record bool
}

// NewLoadCommand creates the load command.
func NewLoadCommand() *cobra.Command {
	opts := &LoadOptions{}

	cmd := &cobra.Command{
		Use:   "load [files...]",
		Short: "Load DDL files into the schema catalog",
		Long: `Parse DDL files and apply them to a fresh schema catalog, in file order.

Without arguments every .sql file under the DDL directory is loaded.
Files are parsed concurrently; if any file fails nothing is applied.
With --record, the statements that changed the catalog are journaled
to the state database so "replay" can rebuild the schema later.`,
		Example: `  # Load every .sql file under ./ddl
  leapschema load

  # Load specific files as MySQL and journal the result
  leapschema load --dialect mysql --record tables.sql views.sql

  # Machine-readable summary
  leapschema load -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd, args, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Record, "record", false, "Journal applied statements to the state database")

	return cmd
}

func runLoad(cmd *cobra.Command, files []string, opts *LoadOptions) error {
	cmdCtx := NewCommandContext(cmd)
	r := cmdCtx.Renderer

	sch, result, err := cmdCtx.LoadSchema(cmd.Context(), files)
	if err != nil {
		return err
	}

	out := loadOutput(sch, result)
	if opts.Record {
		store, err := cmdCtx.OpenStore()
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		id, err := loader.Record(store, sch, result)
		if err != nil {
			return err
		}
		out.BatchID = id
	}

	return renderLoad(r, out, opts.Record)
}

func loadOutput(sch *schema.Schema, result *loader.Result) output.LoadOutput {
	out := output.LoadOutput{
		Schema:     sch.Name(),
		Dialect:    sch.Dialect().Name,
		Files:      result.Files,
		Skipped:    result.Skipped,
		Statements: result.Statements,
		Changed:    result.Changed,
		Tables:     sch.TableCount(),
		Views:      sch.ViewCount(),
		Applied:    make([]output.StatementInfo, 0, len(result.Applied)),
	}
	if out.Files == nil {
		out.Files = []string{}
	}
	for _, a := range result.Applied {
		out.Applied = append(out.Applied, output.StatementInfo{
			File:    a.File,
			Kind:    a.Kind,
			Changed: a.Changed,
			Text:    a.Text,
		})
	}
	return out
}

func renderLoad(r *output.Renderer, out output.LoadOutput, recorded bool) error {
	if r.IsStructured() {
		return r.Data(out)
	}

	r.Header(1, fmt.Sprintf("Loaded schema %s (%s)", out.Schema, out.Dialect))
	r.KeyValue("Files", strconv.Itoa(len(out.Files)))
	if len(out.Skipped) > 0 {
		r.KeyValue("Skipped", strconv.Itoa(len(out.Skipped)))
	}
	r.KeyValue("Statements", strconv.Itoa(out.Statements))
	r.KeyValue("Changed", strconv.Itoa(out.Changed))
	r.KeyValue("Tables", strconv.Itoa(out.Tables))
	r.KeyValue("Views", strconv.Itoa(out.Views))
	r.Println("")

	if len(out.Applied) > 0 {
		rows := make([][]string, 0, len(out.Applied))
		for _, a := range out.Applied {
			changed := "no"
			if a.Changed {
				changed = "yes"
			}
			rows = append(rows, []string{filepath.Base(a.File), a.Kind, changed})
		}
		r.Table([]string{"File", "Statement", "Changed"}, rows)
	}

	if recorded {
		if out.BatchID == "" {
			r.Muted("Nothing changed; no batch recorded.")
		} else {
			r.Success("Recorded batch " + out.BatchID)
		}
	}
	return nil
}

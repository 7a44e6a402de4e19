package commands

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/leapschema/internal/cli/output"
	"github.com/leapstack-labs/leapschema/internal/loader"
	"github.com/leapstack-labs/leapschema/pkg/catalog"
	"github.com/leapstack-labs/leapschema/pkg/core"
	"github.com/leapstack-labs/leapschema/pkg/schema"
	"github.com/spf13/cobra"
)

// Check statuses.
const (
	statusPass  = "pass"
	statusWarn  = "warn"
	statusError = "error"
)

// Check groups, in report order.
const (
	groupConfig  = "configuration"
	groupDDL     = "definitions"
	groupCatalog = "catalog"
	groupState   = "state"
)

var checkGroups = []string{groupConfig, groupDDL, groupCatalog, groupState}

// DoctorOutput is the structured output of the doctor command.
type DoctorOutput struct {
	Summary    ProjectSummary `json:"summary" yaml:"summary"`
	Checks     []HealthCheck  `json:"checks" yaml:"checks"`
	IssueCount int            `json:"issue_count" yaml:"issue_count"`
}

// ProjectSummary contains project-level statistics.
type ProjectSummary struct {
	Schema     string `json:"schema" yaml:"schema"`
	Dialect    string `json:"dialect" yaml:"dialect"`
	Files      int    `json:"files" yaml:"files"`
	Statements int    `json:"statements" yaml:"statements"`
	Tables     int    `json:"tables" yaml:"tables"`
	Views      int    `json:"views" yaml:"views"`
	Batches    int    `json:"batches" yaml:"batches"`
}

// HealthCheck is the result of one check.
type HealthCheck struct {
	Name    string   `json:"name" yaml:"name"`
	Group   string   `json:"group" yaml:"group"`
	Status  string   `json:"status" yaml:"status"`
	Message string   `json:"message,omitempty" yaml:"message,omitempty"`
	Details []string `json:"details,omitempty" yaml:"details,omitempty"`
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the project configuration, DDL and state",
		Long: `Run a health check over the project:

  - Configuration: config file and dialect
  - Definitions: DDL directory, loading, skipped files and statements that
    left the catalog unchanged
  - Catalog: view columns that do not resolve to a table
  - State: the state database and the dialect of recorded batches

The state database is only inspected, never created.`,
		Example: `  leapschema doctor
  leapschema doctor -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd)
		},
	}
}

func runDoctor(cmd *cobra.Command) error {
	cmdCtx := NewCommandContext(cmd)
	out := diagnose(cmd, cmdCtx)

	r := cmdCtx.Renderer
	switch r.EffectiveMode() {
	case output.ModeJSON, output.ModeYAML:
		return r.Data(out)
	case output.ModeMarkdown:
		renderDoctorMarkdown(r, out)
	default:
		renderDoctorText(r, out)
	}
	return nil
}

func diagnose(cmd *cobra.Command, cmdCtx *CommandContext) *DoctorOutput {
	cfg := cmdCtx.Cfg
	out := &DoctorOutput{Summary: ProjectSummary{Schema: cfg.Schema, Dialect: cfg.Dialect}}
	add := func(c HealthCheck) {
		out.Checks = append(out.Checks, c)
		if c.Status != statusPass {
			out.IssueCount++
		}
	}

	if cfg.ConfigFile != "" {
		add(HealthCheck{Name: "config file", Group: groupConfig, Status: statusPass, Message: cfg.ConfigFile})
	} else {
		add(HealthCheck{Name: "config file", Group: groupConfig, Status: statusWarn,
			Message: "no leapschema.yaml found, using defaults (run 'leapschema init')"})
	}
	if d, err := cfg.ResolveDialect(); err != nil {
		add(HealthCheck{Name: "dialect", Group: groupConfig, Status: statusError, Message: err.Error()})
	} else {
		out.Summary.Dialect = d.Name
		add(HealthCheck{Name: "dialect", Group: groupConfig, Status: statusPass, Message: d.Name})
	}

	if sch := checkDDL(cmd, cmdCtx, out, add); sch != nil {
		add(checkViews(sch))
	}
	checkState(cmdCtx, out, add)
	return out
}

func checkDDL(cmd *cobra.Command, cmdCtx *CommandContext, out *DoctorOutput, add func(HealthCheck)) *schema.Schema {
	if err := cmdCtx.Cfg.ValidateDDLDir(); err != nil {
		add(HealthCheck{Name: "ddl directory", Group: groupDDL, Status: statusError, Message: err.Error()})
		return nil
	}
	add(HealthCheck{Name: "ddl directory", Group: groupDDL, Status: statusPass, Message: cmdCtx.Cfg.DDLDir})

	sch, result, err := cmdCtx.LoadSchema(cmd.Context(), nil)
	if err != nil {
		add(HealthCheck{Name: "load", Group: groupDDL, Status: statusError, Message: err.Error()})
		return nil
	}
	out.Summary.Files = len(result.Files)
	out.Summary.Statements = result.Statements
	out.Summary.Tables = sch.TableCount()
	out.Summary.Views = sch.ViewCount()

	load := HealthCheck{Name: "load", Group: groupDDL, Status: statusPass,
		Message: fmt.Sprintf("%d file(s), %d statement(s)", len(result.Files), result.Statements)}
	if len(result.Files) == 0 {
		load.Status = statusWarn
		load.Message = "no .sql files found"
	}
	add(load)

	skipped := HealthCheck{Name: "skipped files", Group: groupDDL, Status: statusPass}
	if len(result.Skipped) > 0 {
		skipped.Status = statusWarn
		skipped.Message = fmt.Sprintf("%d file(s) skipped by their header", len(result.Skipped))
		skipped.Details = result.Skipped
	}
	add(skipped)

	add(checkNoOps(result))
	return sch
}

// checkNoOps reports statements that left the catalog unchanged, such as a
// CREATE TABLE for a name already taken or a DROP of a missing object.
func checkNoOps(result *loader.Result) HealthCheck {
	c := HealthCheck{Name: "unchanged statements", Group: groupDDL, Status: statusPass}
	for _, a := range result.Applied {
		if !a.Changed {
			c.Details = append(c.Details, fmt.Sprintf("%s: %s", a.File, a.Kind))
		}
	}
	if len(c.Details) > 0 {
		c.Status = statusWarn
		c.Message = fmt.Sprintf("%d statement(s) did not change the catalog", len(c.Details))
	}
	return c
}

// checkViews resolves the select list of every view and reports column
// names that match no table of its FROM clause.
func checkViews(sch *schema.Schema) HealthCheck {
	c := HealthCheck{Name: "view columns", Group: groupCatalog, Status: statusPass}
	resolver := sch.NewResolver()
	for _, obj := range sch.Objects() {
		if obj.Type() != catalog.View {
			continue
		}
		view, ok := obj.Statement().(*core.CreateViewStmt)
		if !ok {
			continue
		}
		for _, ref := range resolver.SelectItems(view.Query) {
			if ref.Table != nil || !isColumnName(ref.Item.Expr) {
				continue
			}
			c.Details = append(c.Details, fmt.Sprintf("%s: %s", obj.DisplayName(), itemText(ref.Item)))
		}
	}
	if len(c.Details) > 0 {
		c.Status = statusWarn
		c.Message = fmt.Sprintf("%d view column(s) do not resolve", len(c.Details))
	}
	return c
}

func isColumnName(e core.Expr) bool {
	switch n := e.(type) {
	case *core.Identifier:
		return true
	case *core.QualifiedRef:
		return n.Name != "*"
	}
	return false
}

func checkState(cmdCtx *CommandContext, out *DoctorOutput, add func(HealthCheck)) {
	path := cmdCtx.Cfg.StatePath
	if path != ":memory:" {
		if _, err := os.Stat(path); err != nil {
			add(HealthCheck{Name: "state database", Group: groupState, Status: statusPass,
				Message: "not created yet (use 'leapschema load --record')"})
			return
		}
	}

	store, err := cmdCtx.OpenStore()
	if err != nil {
		add(HealthCheck{Name: "state database", Group: groupState, Status: statusError, Message: err.Error()})
		return
	}
	defer func() { _ = store.Close() }()

	version, err := store.MigrationVersion()
	if err != nil {
		add(HealthCheck{Name: "state database", Group: groupState, Status: statusError, Message: err.Error()})
		return
	}
	add(HealthCheck{Name: "state database", Group: groupState, Status: statusPass,
		Message: fmt.Sprintf("%s (schema version %d)", path, version)})

	batches, err := store.Batches(cmdCtx.Cfg.Schema)
	if err != nil {
		add(HealthCheck{Name: "journal", Group: groupState, Status: statusError, Message: err.Error()})
		return
	}
	out.Summary.Batches = len(batches)

	journal := HealthCheck{Name: "journal", Group: groupState, Status: statusPass,
		Message: fmt.Sprintf("%d batch(es) for schema %s", len(batches), cmdCtx.Cfg.Schema)}
	for _, b := range batches {
		if b.Dialect != out.Summary.Dialect {
			journal.Details = append(journal.Details, fmt.Sprintf("%s recorded as %s", b.ID, b.Dialect))
		}
	}
	if len(journal.Details) > 0 {
		journal.Status = statusWarn
		journal.Message = fmt.Sprintf("%d batch(es) recorded in another dialect cannot be replayed", len(journal.Details))
	}
	add(journal)
}

func statusIcon(r *output.Renderer, status string) string {
	styles := r.Styles()
	switch status {
	case statusWarn:
		return styles.Warning.Render("!")
	case statusError:
		return styles.Error.Render("✗")
	default:
		return styles.Success.Render("✓")
	}
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) {
	styles := r.Styles()
	titleCaser := cases.Title(language.English)

	r.Println(styles.Header.Render("leapschema health report"))
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	r.Printf("   Schema: %s | Dialect: %s\n", out.Summary.Schema, out.Summary.Dialect)
	r.Printf("   Files: %d | Statements: %d | Tables: %d | Views: %d | Batches: %d\n",
		out.Summary.Files, out.Summary.Statements, out.Summary.Tables, out.Summary.Views, out.Summary.Batches)
	r.Println("")

	for _, group := range checkGroups {
		checks := checksIn(out.Checks, group)
		if len(checks) == 0 {
			continue
		}
		r.Println(styles.Bold.Render("   " + titleCaser.String(group)))
		r.Println(styles.Muted.Render("   " + strings.Repeat("-", 40)))
		for _, c := range checks {
			line := fmt.Sprintf("   %s %s", statusIcon(r, c.Status), c.Name)
			if c.Message != "" {
				line += ": " + c.Message
			}
			r.Println(line)
			for i, detail := range c.Details {
				if i >= 3 {
					r.Println(styles.Muted.Render(fmt.Sprintf("       ... and %d more", len(c.Details)-3)))
					break
				}
				r.Println(styles.Muted.Render("       - " + detail))
			}
		}
		r.Println("")
	}

	if out.IssueCount == 0 {
		r.Success("No issues found")
	} else {
		r.Warning(fmt.Sprintf("%d issue(s) found", out.IssueCount))
	}
}

func renderDoctorMarkdown(r *output.Renderer, out *DoctorOutput) {
	titleCaser := cases.Title(language.English)

	r.Header(1, "leapschema health report")
	r.KeyValue("Schema", out.Summary.Schema)
	r.KeyValue("Dialect", out.Summary.Dialect)
	r.KeyValue("Files", fmt.Sprint(out.Summary.Files))
	r.KeyValue("Statements", fmt.Sprint(out.Summary.Statements))
	r.KeyValue("Tables", fmt.Sprint(out.Summary.Tables))
	r.KeyValue("Views", fmt.Sprint(out.Summary.Views))
	r.KeyValue("Batches", fmt.Sprint(out.Summary.Batches))
	r.Println("")

	for _, group := range checkGroups {
		checks := checksIn(out.Checks, group)
		if len(checks) == 0 {
			continue
		}
		r.Header(2, titleCaser.String(group))
		rows := make([][]string, 0, len(checks))
		for _, c := range checks {
			rows = append(rows, []string{c.Name, c.Status, orDash(c.Message)})
		}
		r.Table([]string{"Check", "Status", "Message"}, rows)
		for _, c := range checks {
			for _, detail := range c.Details {
				r.Printf("- %s: %s\n", c.Name, detail)
			}
		}
		r.Println("")
	}
	r.Printf("**Issues**: %d\n", out.IssueCount)
}

func checksIn(checks []HealthCheck, group string) []HealthCheck {
	var out []HealthCheck
	for _, c := range checks {
		if c.Group == group {
			out = append(out, c)
		}
	}
	return out
}

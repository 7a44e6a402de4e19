package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/leapschema/pkg/core"
	"github.com/leapstack-labs/leapschema/pkg/parser"
	"github.com/leapstack-labs/leapschema/pkg/schema"
	"github.com/spf13/cobra"
)

const (
	replPrompt     = "leapschema> "
	replContPrompt = "       ...> "
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	var empty bool

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive schema shell",
		Long: `Start an interactive shell over a schema catalog.

DDL statements are applied to the catalog; SELECT statements are resolved
item by item against it. Statements end with a semicolon and may span
several lines. The DDL directory is loaded first unless --empty is given.`,
		Example: `  leapschema repl --dialect mysql
  leapschema repl --empty`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runREPL(cmd, empty)
		},
	}

	cmd.Flags().BoolVar(&empty, "empty", false, "Start from an empty catalog")

	return cmd
}

func runREPL(cmd *cobra.Command, empty bool) error {
	cmdCtx := NewCommandContext(cmd)
	session, err := newREPLSession(cmd, cmdCtx, empty)
	if err != nil {
		return err
	}

	historyFile := ""
	if cmdCtx.Cfg.StatePath != ":memory:" {
		dir := filepath.Dir(cmdCtx.Cfg.StatePath)
		if err := os.MkdirAll(dir, 0o750); err == nil {
			historyFile = filepath.Join(dir, "repl_history")
		}
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          replPrompt,
		HistoryFile:     historyFile,
		AutoComplete:    session.completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdin:           io.NopCloser(cmd.InOrStdin()),
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	r := cmdCtx.Renderer
	r.Printf("leapschema shell (schema %s, dialect %s)\n", session.sch.Name(), session.sch.Dialect().Name)
	r.Println("Type .help for commands, .quit to exit")
	r.Println("")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			session.buf.Reset()
			rl.SetPrompt(replPrompt)
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if session.Feed(line) {
			return nil
		}
		if session.Pending() {
			rl.SetPrompt(replContPrompt)
		} else {
			rl.SetPrompt(replPrompt)
		}
	}
}

// replSession is the state of one shell: the catalog and any statement
// text not yet terminated by a semicolon.
type replSession struct {
	cmd    *cobra.Command
	cmdCtx *CommandContext
	sch    *schema.Schema
	buf    strings.Builder
}

func newREPLSession(cmd *cobra.Command, cmdCtx *CommandContext, empty bool) (*replSession, error) {
	s := &replSession{cmd: cmd, cmdCtx: cmdCtx}
	if empty {
		sch, err := cmdCtx.NewSchema()
		if err != nil {
			return nil, err
		}
		s.sch = sch
		return s, nil
	}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// reload replaces the catalog with the contents of the DDL directory, or an
// empty one when the directory does not exist.
func (s *replSession) reload() error {
	if s.cmdCtx.Cfg.ValidateDDLDir() != nil {
		sch, err := s.cmdCtx.NewSchema()
		if err != nil {
			return err
		}
		s.sch = sch
		return nil
	}
	sch, _, err := s.cmdCtx.LoadSchema(s.cmd.Context(), nil)
	if err != nil {
		return err
	}
	s.sch = sch
	return nil
}

// Pending reports whether an unterminated statement is buffered.
func (s *replSession) Pending() bool { return s.buf.Len() > 0 }

// Feed handles one input line and reports whether the shell should exit.
func (s *replSession) Feed(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !s.Pending() && strings.HasPrefix(line, ".") {
		return s.dotCommand(line)
	}

	s.buf.WriteString(line)
	if !strings.HasSuffix(line, ";") {
		s.buf.WriteString("\n")
		return false
	}
	sql := s.buf.String()
	s.buf.Reset()
	s.execute(sql)
	return false
}

// execute applies DDL and resolves queries, statement by statement.
func (s *replSession) execute(sql string) {
	r := s.cmdCtx.Renderer
	stmts, err := parser.ParseStatements(sql, s.sch.Dialect())
	if err != nil {
		r.Error(err.Error())
		return
	}
	for _, stmt := range stmts {
		if sel, ok := stmt.(*core.SelectStmt); ok {
			refs := s.sch.NewResolver().SelectItems(sel)
			if err := renderReferences(r, referenceInfos(refs)); err != nil {
				r.Error(err.Error())
			}
			continue
		}
		kind := core.StmtKind(stmt)
		if s.sch.Accept(stmt) {
			r.Success(kind)
		} else {
			r.Muted(kind + ": no change")
		}
	}
}

func (s *replSession) dotCommand(line string) bool {
	r := s.cmdCtx.Renderer
	command, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	var err error
	switch strings.ToLower(command) {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(r.Writer())

	case ".tables":
		err = renderCatalog(r, catalogOutput(s.sch, nil))

	case ".describe":
		if rest == "" {
			r.Warning("Usage: .describe <name>")
			return false
		}
		obj := s.sch.FindTableOrView(rest)
		if obj == nil {
			obj = s.sch.FindFunction(rest)
		}
		if obj == nil {
			r.Warning(fmt.Sprintf("object %q not found", rest))
			return false
		}
		err = renderObject(r, obj)

	case ".flatten":
		if rest == "" {
			r.Warning("Usage: .flatten <query>")
			return false
		}
		sel, perr := s.sch.ParseQuery(strings.TrimSuffix(rest, ";"))
		if perr != nil {
			err = perr
			break
		}
		if sel.From == nil {
			err = errNoFrom
			break
		}
		err = renderFlatten(r, flattenEntries(s.sch.NewResolver().Flatten(sel.From)))

	case ".reset":
		var sch *schema.Schema
		if sch, err = s.cmdCtx.NewSchema(); err == nil {
			s.sch = sch
			r.Success("Catalog cleared")
		}

	case ".reload":
		if err = s.reload(); err == nil {
			r.Success(fmt.Sprintf("Reloaded %d table(s), %d view(s)", s.sch.TableCount(), s.sch.ViewCount()))
		}

	default:
		r.Warning(fmt.Sprintf("Unknown command: %s (type .help for commands)", command))
	}

	if err != nil {
		r.Error(err.Error())
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help              Show this help message
  .tables            List catalog objects
  .describe <name>   Show the columns of a table or view
  .flatten <query>   Map the FROM clause of a query to tables
  .reset             Start over with an empty catalog
  .reload            Reload the DDL directory
  .quit / .exit      Exit the shell

Tips:
  - Statements must end with a semicolon (;)
  - DDL changes the catalog, SELECT is resolved against it
  - Tab completion works for commands and object names
`
	_, _ = fmt.Fprintln(w, help)
}

// completer completes dot-commands and, after .describe, object names.
func (s *replSession) completer() *readline.PrefixCompleter {
	names := func(string) []string {
		var out []string
		for _, obj := range s.sch.Objects() {
			out = append(out, obj.DisplayName())
		}
		return out
	}
	return readline.NewPrefixCompleter(
		readline.PcItem(".help"),
		readline.PcItem(".tables"),
		readline.PcItem(".describe", readline.PcItemDynamic(names)),
		readline.PcItem(".flatten"),
		readline.PcItem(".reset"),
		readline.PcItem(".reload"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}

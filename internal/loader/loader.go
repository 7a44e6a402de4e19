// Package loader reads DDL files into a schema, journals what changed and
// replays journals.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapschema/internal/state"
	"github.com/leapstack-labs/leapschema/pkg/core"
	"github.com/leapstack-labs/leapschema/pkg/dialect"
	"github.com/leapstack-labs/leapschema/pkg/parser"
	"github.com/leapstack-labs/leapschema/pkg/schema"
)

// ErrDialectMismatch is returned when a file header or a journal names a
// dialect other than the schema's.
var ErrDialectMismatch = errors.New("dialect mismatch")

// Applied is one statement applied to the schema.
type Applied struct {
	File    string
	Kind    string
	Text    string
	Changed bool
}

// Result summarizes a Load.
type Result struct {
	Files      []string // files read, in apply order
	Skipped    []string // files whose header asked to be skipped
	Statements int
	Changed    int
	Applied    []Applied
}

// ChangedText returns the text of every statement that changed the
// catalog, in order.
func (r *Result) ChangedText() []string {
	var out []string
	for _, a := range r.Applied {
		if a.Changed {
			out = append(out, a.Text)
		}
	}
	return out
}

// Discover returns every .sql file under dir, sorted by path. Hidden
// directories are skipped.
func Discover(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".sql") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover ddl files: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

type parsedFile struct {
	path    string
	content string
	header  *Header
	stmts   []core.Stmt
}

// Load parses files concurrently, then applies their statements to sch in
// file order. If any file fails to read or parse, nothing is applied.
func Load(ctx context.Context, sch *schema.Schema, files []string, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	parsed := make([]parsedFile, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			pf, err := parseFile(path, sch.Dialect())
			if err != nil {
				return err
			}
			parsed[i] = pf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &Result{}
	for _, pf := range parsed {
		if pf.header != nil && pf.header.Skip {
			logger.Debug("file skipped", "file", pf.path)
			result.Skipped = append(result.Skipped, pf.path)
			continue
		}
		result.Files = append(result.Files, pf.path)
		for _, stmt := range pf.stmts {
			changed := sch.Accept(stmt)
			result.Statements++
			if changed {
				result.Changed++
			}
			result.Applied = append(result.Applied, Applied{
				File:    pf.path,
				Kind:    core.StmtKind(stmt),
				Text:    core.SourceText(pf.content, stmt),
				Changed: changed,
			})
		}
		logger.Debug("file loaded", "file", pf.path, "statements", len(pf.stmts))
	}

	logger.Info("ddl loaded",
		"schema", sch.Name(),
		"files", len(result.Files),
		"statements", result.Statements,
		"changed", result.Changed)
	return result, nil
}

func parseFile(path string, d *dialect.Dialect) (parsedFile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // paths come from the user
	if err != nil {
		return parsedFile{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	pf := parsedFile{path: path, content: string(data)}

	pf.header, err = ExtractHeader(pf.content)
	if err != nil {
		return parsedFile{}, fmt.Errorf("%s: %w", path, err)
	}
	if pf.header != nil {
		if pf.header.Skip {
			return pf, nil
		}
		if err := checkDialect(pf.header.Dialect, d); err != nil {
			return parsedFile{}, fmt.Errorf("%s: %w", path, err)
		}
	}

	pf.stmts, err = parser.ParseStatements(pf.content, d)
	if err != nil {
		return parsedFile{}, fmt.Errorf("%s: %w", path, err)
	}
	return pf, nil
}

// checkDialect verifies that name, if set, resolves to d.
func checkDialect(name string, d *dialect.Dialect) error {
	if name == "" {
		return nil
	}
	want, err := dialect.Lookup(name)
	if err != nil {
		return err
	}
	if want.Name != d.Name {
		return fmt.Errorf("%w: written for %s, schema uses %s", ErrDialectMismatch, want.Name, d.Name)
	}
	return nil
}

// Record journals the statements of r that changed the catalog as one
// batch. It returns "" when nothing changed.
func Record(store state.Store, sch *schema.Schema, r *Result) (string, error) {
	texts := r.ChangedText()
	if len(texts) == 0 {
		return "", nil
	}
	id, err := store.RecordBatch(sch.Name(), sch.Dialect().Name, texts)
	if err != nil {
		return "", fmt.Errorf("failed to record load: %w", err)
	}
	return id, nil
}

// Replay applies the journal recorded for sch's name to sch, in order, and
// returns the number of statements that changed the catalog.
func Replay(store state.Store, sch *schema.Schema) (int, error) {
	entries, err := store.Journal(sch.Name())
	if err != nil {
		return 0, err
	}
	changed := 0
	for _, e := range entries {
		if err := checkDialect(e.Dialect, sch.Dialect()); err != nil {
			return changed, fmt.Errorf("batch %s: %w", e.BatchID, err)
		}
		n, err := sch.AcceptDDL(e.Statement)
		if err != nil {
			return changed, fmt.Errorf("batch %s statement %d: %w", e.BatchID, e.Seq, err)
		}
		changed += n
	}
	return changed, nil
}

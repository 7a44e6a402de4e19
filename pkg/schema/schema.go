// Package schema ties a catalog to its dialect: it parses DDL text, applies
// it, and hands out resolvers over the result.
package schema

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/leapschema/pkg/catalog"
	"github.com/leapstack-labs/leapschema/pkg/core"
	"github.com/leapstack-labs/leapschema/pkg/dialect"
	"github.com/leapstack-labs/leapschema/pkg/ingest"
	"github.com/leapstack-labs/leapschema/pkg/parser"
	"github.com/leapstack-labs/leapschema/pkg/resolve"
)

// ErrNameRequired is returned by New for an empty schema name.
var ErrNameRequired = errors.New("schema name is required")

// Option configures a Schema.
type Option func(*Schema)

// WithLogger sets the logger used by the schema and its ingestor.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Schema) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Schema is one named catalog with the dialect its DDL is written in.
// Lookups are safe for concurrent use; DDL is expected from one writer.
type Schema struct {
	name     string
	dialect  *dialect.Dialect
	catalog  *catalog.Catalog
	ingestor *ingest.Ingestor
	logger   *slog.Logger
}

// New creates an empty schema.
func New(name string, d *dialect.Dialect, opts ...Option) (*Schema, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if d == nil {
		return nil, dialect.ErrDialectRequired
	}
	s := &Schema{
		name:    name,
		dialect: d,
		catalog: catalog.New(),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("schema", name, "dialect", d.Name)
	s.ingestor = ingest.New(s.catalog, d, s.logger)
	return s, nil
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Dialect returns the schema's dialect.
func (s *Schema) Dialect() *dialect.Dialect { return s.dialect }

// Catalog returns the underlying catalog.
func (s *Schema) Catalog() *catalog.Catalog { return s.catalog }

// AcceptDDL parses sql and applies every statement in order. It returns the
// number of statements that changed the catalog. If sql does not parse,
// nothing is applied.
func (s *Schema) AcceptDDL(sql string) (int, error) {
	stmts, err := parser.ParseStatements(sql, s.dialect)
	if err != nil {
		return 0, fmt.Errorf("parse ddl: %w", err)
	}
	changed := 0
	for _, stmt := range stmts {
		if s.Accept(stmt) {
			changed++
		}
	}
	s.logger.Debug("ddl accepted", "statements", len(stmts), "changed", changed)
	return changed, nil
}

// Accept applies one parsed statement and reports whether the catalog
// changed.
func (s *Schema) Accept(stmt core.Stmt) bool {
	return s.ingestor.Apply(stmt)
}

// FindTable returns the table named name, or nil.
func (s *Schema) FindTable(name string) *catalog.Object { return s.catalog.FindTable(name) }

// FindTableOrView returns the table or view named name, or nil.
func (s *Schema) FindTableOrView(name string) *catalog.Object {
	return s.catalog.FindTableOrView(name)
}

// FindFunction returns the function named name, or nil.
func (s *Schema) FindFunction(name string) *catalog.Object { return s.catalog.FindFunction(name) }

// IsSequence reports whether name, as given, is a sequence.
func (s *Schema) IsSequence(name string) bool { return s.catalog.IsSequence(name) }

// TableCount returns the number of tables.
func (s *Schema) TableCount() int { return s.catalog.TableCount() }

// ViewCount returns the number of views.
func (s *Schema) ViewCount() int { return s.catalog.ViewCount() }

// Objects returns tables, views, indexes and sequences in name order.
func (s *Schema) Objects() []*catalog.Object { return s.catalog.Objects() }

// Functions returns the functions in name order.
func (s *Schema) Functions() []*catalog.Object { return s.catalog.Functions() }

// NewResolver starts a resolution pass. Use one pass per query and discard
// it once the schema changes.
func (s *Schema) NewResolver() *resolve.Resolver {
	return resolve.New(s.catalog)
}

// ParseQuery parses a SELECT in the schema's dialect.
func (s *Schema) ParseQuery(sql string) (*core.SelectStmt, error) {
	sel, err := parser.ParseSelect(sql, s.dialect)
	if err != nil {
		return nil, fmt.Errorf("parse query: %w", err)
	}
	return sel, nil
}

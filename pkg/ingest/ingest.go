// Package ingest applies parsed DDL statements to a catalog.
//
// One algorithm serves every dialect. Dialect differences are confined to
// the dialect's hooks: today only the structural template of CREATE TABLE
// (MySQL's LIKE). No semantic validation is performed: unknown referenced
// objects, duplicate columns or type mismatches are not detected.
package ingest

import (
	"log/slog"

	"github.com/leapstack-labs/leapschema/pkg/catalog"
	"github.com/leapstack-labs/leapschema/pkg/core"
	"github.com/leapstack-labs/leapschema/pkg/dialect"
)

// Ingestor applies DDL statements to one catalog under one dialect.
type Ingestor struct {
	catalog *catalog.Catalog
	dialect *dialect.Dialect
	logger  *slog.Logger
}

// New creates an ingestor. A nil logger discards output.
func New(c *catalog.Catalog, d *dialect.Dialect, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Ingestor{catalog: c, dialect: d, logger: logger}
}

// Apply applies one statement and reports whether it changed the catalog.
// Statements that are not DDL the catalog tracks are ignored.
func (i *Ingestor) Apply(stmt core.Stmt) bool {
	switch s := stmt.(type) {
	case *core.CreateSequenceStmt:
		return i.createSequence(s)
	case *core.DropSequenceStmt:
		return i.dropSequence(s)
	case *core.CreateTableStmt:
		return i.createTable(s)
	case *core.CreateViewStmt:
		return i.createView(s)
	case *core.CreateIndexStmt:
		return i.createIndex(s)
	case *core.CreateFunctionStmt:
		return i.createFunction(s)
	case *core.AlterTableStmt:
		return i.alterTable(s)
	}
	if stmt != nil {
		i.logger.Debug("statement ignored", "kind", core.StmtKind(stmt))
	}
	return false
}

func (i *Ingestor) createSequence(s *core.CreateSequenceStmt) bool {
	if s.Name == nil {
		return false
	}
	name := s.Name.SimpleName()
	i.catalog.Upsert(name, catalog.NewObject(name, catalog.Sequence, nil))
	i.logger.Debug("sequence created", "name", name)
	return true
}

// dropSequence removes by the name as written; see Catalog.Remove.
func (i *Ingestor) dropSequence(s *core.DropSequenceStmt) bool {
	if s.Name == nil {
		return false
	}
	removed := i.catalog.Remove(s.Name.SimpleName())
	i.logger.Debug("sequence dropped", "name", s.Name.SimpleName(), "removed", removed)
	return removed
}

func (i *Ingestor) createTable(s *core.CreateTableStmt) bool {
	name := s.ComputeName()
	if name == "" {
		return false
	}

	if tmpl := i.dialect.TableTemplate(s); tmpl != nil {
		if source := i.catalog.FindTable(tmpl.SimpleName()); source != nil {
			if clone := source.CloneTable(); clone != nil {
				clone.SetName(core.CloneName(s.Name))
				clone.Like = nil
				clone.IfNotExists = s.IfNotExists
				clone.Temporary = s.Temporary
				clone.SetSpan(s.Span)
				i.logger.Debug("table copied from template", "name", name, "template", source.DisplayName())
				return i.createTable(clone)
			}
		}
		i.logger.Debug("table template not found", "name", name, "template", tmpl.SimpleName())
	}

	inserted := i.catalog.InsertIfAbsent(name, catalog.NewObject(name, catalog.Table, s))
	i.logger.Debug("table created", "name", name, "inserted", inserted)
	return inserted
}

func (i *Ingestor) createView(s *core.CreateViewStmt) bool {
	name := s.ComputeName()
	if name == "" {
		return false
	}
	inserted := i.catalog.InsertIfAbsent(name, catalog.NewObject(name, catalog.View, s))
	i.logger.Debug("view created", "name", name, "inserted", inserted)
	return inserted
}

func (i *Ingestor) createIndex(s *core.CreateIndexStmt) bool {
	if s.Name == nil {
		return false
	}
	name := s.Name.SimpleName()
	i.catalog.Upsert(name, catalog.NewObject(name, catalog.Index, nil))
	i.logger.Debug("index created", "name", name)
	return true
}

func (i *Ingestor) createFunction(s *core.CreateFunctionStmt) bool {
	if s.Name == nil {
		return false
	}
	name := s.Name.SimpleName()
	i.catalog.UpsertFunction(name, catalog.NewObject(name, catalog.Function, s))
	i.logger.Debug("function created", "name", name)
	return true
}

// alterTable alters the definition in place. ALTER of a missing table, or of
// a view, is a silent no-op.
func (i *Ingestor) alterTable(s *core.AlterTableStmt) bool {
	if s.Name == nil {
		return false
	}
	obj := i.catalog.FindTable(s.Name.SimpleName())
	if obj == nil {
		i.logger.Debug("alter of unknown table ignored", "name", s.Name.SimpleName())
		return false
	}
	altered := obj.Alter(s)
	i.logger.Debug("table altered", "name", obj.DisplayName(), "items", len(s.Items))
	return altered
}

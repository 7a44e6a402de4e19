// Package catalog holds the named objects of one database schema.
//
// A Catalog has two case-insensitive name spaces: objects (tables, views,
// indexes, sequences) and functions. Both enumerate in lower-cased key order.
// Catalog operations never fail; absence is reported as nil or false.
package catalog

import (
	"sync"

	"github.com/leapstack-labs/leapschema/pkg/core"
)

// ObjectType is the kind of a schema object. It is fixed at construction.
type ObjectType int

// Object types.
const (
	Table ObjectType = iota
	View
	Index
	Sequence
	Function
)

// String returns the upper-case SQL name of the type.
func (t ObjectType) String() string {
	switch t {
	case Table:
		return "TABLE"
	case View:
		return "VIEW"
	case Index:
		return "INDEX"
	case Sequence:
		return "SEQUENCE"
	case Function:
		return "FUNCTION"
	}
	return "UNKNOWN"
}

// Object is a named schema object with an optional defining statement.
//
// Only the definition of a table changes after construction, and only
// through Alter. Alter never writes into a published definition: it alters
// a copy and swaps it in under the object's lock, so a statement or column
// returned earlier stays a consistent snapshot.
type Object struct {
	name string
	typ  ObjectType

	mu   sync.RWMutex
	stmt core.Stmt
}

// NewObject creates an object. stmt may be nil.
func NewObject(name string, typ ObjectType, stmt core.Stmt) *Object {
	return &Object{name: name, typ: typ, stmt: stmt}
}

// DisplayName returns the name in its original case.
func (o *Object) DisplayName() string { return o.name }

// Type returns the object's kind.
func (o *Object) Type() ObjectType { return o.typ }

// Statement returns the defining statement, or nil.
func (o *Object) Statement() core.Stmt {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.stmt
}

// FindColumn returns the column named name for tables and views, matched
// case-insensitively. It returns nil for other kinds and for objects
// without a definition.
func (o *Object) FindColumn(name string) *core.ColumnDef {
	o.mu.RLock()
	defer o.mu.RUnlock()

	switch s := o.stmt.(type) {
	case *core.CreateTableStmt:
		return s.FindColumn(name)
	case *core.CreateViewStmt:
		return s.FindColumn(name)
	}
	return nil
}

// Alter applies an ALTER TABLE statement to the table definition. It
// reports whether the definition changed; objects that are not tables with
// a definition never change.
func (o *Object) Alter(alter *core.AlterTableStmt) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	table, ok := o.stmt.(*core.CreateTableStmt)
	if !ok {
		return false
	}
	next := table.Clone()
	if !next.Apply(alter) {
		return false
	}
	o.stmt = next
	return true
}

// CloneTable returns a deep copy of the table definition, or nil when the
// object is not a table with a definition.
func (o *Object) CloneTable() *core.CreateTableStmt {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if table, ok := o.stmt.(*core.CreateTableStmt); ok {
		return table.Clone()
	}
	return nil
}

// Columns returns copies of the object's columns in definition order. Views
// and CREATE TABLE ... AS SELECT tables report their output columns.
func (o *Object) Columns() []*core.ColumnDef {
	o.mu.RLock()
	defer o.mu.RUnlock()

	switch s := o.stmt.(type) {
	case *core.CreateTableStmt:
		if len(s.Columns) == 0 && s.Select != nil {
			return queryColumns(s.Select, s.FindColumn)
		}
		cols := make([]*core.ColumnDef, len(s.Columns))
		for i, c := range s.Columns {
			cols[i] = c.Clone()
		}
		return cols
	case *core.CreateViewStmt:
		if len(s.Columns) > 0 {
			cols := make([]*core.ColumnDef, len(s.Columns))
			for i, c := range s.Columns {
				cols[i] = &core.ColumnDef{Name: c}
			}
			return cols
		}
		if s.Query != nil {
			return queryColumns(s.Query, s.FindColumn)
		}
	}
	return nil
}

// queryColumns lists the named output columns of a query.
func queryColumns(q *core.SelectStmt, find func(string) *core.ColumnDef) []*core.ColumnDef {
	var cols []*core.ColumnDef
	for _, item := range q.Items {
		if name := item.OutputName(); name != "" {
			cols = append(cols, find(name))
		}
	}
	return cols
}

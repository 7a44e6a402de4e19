package core

import "strings"

// ---------- Query Statements ----------

// SelectStmt represents a SELECT query, optionally chained with set
// operations.
type SelectStmt struct {
	NodeInfo
	Distinct bool
	Items    []*SelectItem
	From     TableSource // nil for SELECT without FROM
	Where    Expr
	GroupBy  []Expr
	Having   Expr
	OrderBy  []*OrderByItem
	Limit    Expr
	Offset   Expr

	SetOp SetOpType   // UNION, INTERSECT, EXCEPT, or empty
	Next  *SelectStmt // right operand of SetOp
}

func (*SelectStmt) stmtNode() {}

// SetOpType represents the type of set operation.
type SetOpType string

// SetOpType constants for set operations in queries.
const (
	SetOpNone      SetOpType = ""
	SetOpUnion     SetOpType = "UNION"
	SetOpUnionAll  SetOpType = "UNION ALL"
	SetOpIntersect SetOpType = "INTERSECT"
	SetOpExcept    SetOpType = "EXCEPT"
)

// SelectItem represents an item in the SELECT list.
type SelectItem struct {
	Expr  Expr
	Alias string
}

// OutputName returns the column name the item produces: the alias, else the
// simple name of a name expression, else "".
func (s *SelectItem) OutputName() string {
	if s.Alias != "" {
		return s.Alias
	}
	if n, ok := s.Expr.(Name); ok {
		return n.SimpleName()
	}
	return ""
}

// OrderByItem represents an item in ORDER BY clause.
type OrderByItem struct {
	Expr Expr
	Desc bool
}

// ---------- DDL Statements ----------

// CreateTableStmt represents CREATE TABLE. It doubles as the stored
// definition of a catalog table and is mutated in place by ALTER TABLE.
type CreateTableStmt struct {
	NodeInfo
	Name        Name
	Temporary   bool
	IfNotExists bool
	Columns     []*ColumnDef
	Constraints []*Constraint
	Like        Name        // CREATE TABLE b LIKE a
	Select      *SelectStmt // CREATE TABLE b AS SELECT ...
	Options     string      // trailing table options, verbatim
}

func (*CreateTableStmt) stmtNode() {}

// ComputeName returns the table's canonical name: the unqualified name with
// any schema prefix dropped.
func (s *CreateTableStmt) ComputeName() string {
	if s.Name == nil {
		return ""
	}
	return s.Name.SimpleName()
}

// SetName replaces the table's name.
func (s *CreateTableStmt) SetName(n Name) {
	s.Name = n
}

// FindColumn returns the column named name (case-insensitive). Tables created
// with AS SELECT expose the select list's output names.
func (s *CreateTableStmt) FindColumn(name string) *ColumnDef {
	if i := s.columnIndex(name); i >= 0 {
		return s.Columns[i]
	}
	if len(s.Columns) == 0 && s.Select != nil {
		return selectColumn(s.Select, name)
	}
	return nil
}

func (s *CreateTableStmt) columnIndex(name string) int {
	for i, c := range s.Columns {
		if strings.EqualFold(c.Name, name) {
			return i
		}
	}
	return -1
}

// PrimaryKey returns the columns of the primary key, from either a table
// constraint or column-level PRIMARY KEY markers.
func (s *CreateTableStmt) PrimaryKey() []string {
	for _, c := range s.Constraints {
		if c.Kind == ConstraintPrimaryKey {
			return c.Columns
		}
	}
	var cols []string
	for _, c := range s.Columns {
		if c.PrimaryKey {
			cols = append(cols, c.Name)
		}
	}
	return cols
}

// ColumnDef is a column definition inside CREATE TABLE or ALTER TABLE.
type ColumnDef struct {
	Name          string
	Type          *DataType
	NotNull       bool
	Default       Expr
	PrimaryKey    bool
	Unique        bool
	AutoIncrement bool
	Comment       string
	References    *ForeignRef
	Check         Expr
}

// ConstraintKind distinguishes table-level constraints.
type ConstraintKind int

// ConstraintKind constants.
const (
	ConstraintPrimaryKey ConstraintKind = iota
	ConstraintUnique
	ConstraintForeignKey
	ConstraintCheck
	ConstraintIndex // MySQL inline KEY / INDEX
)

// String returns the SQL spelling of the constraint kind.
func (k ConstraintKind) String() string {
	switch k {
	case ConstraintPrimaryKey:
		return "PRIMARY KEY"
	case ConstraintUnique:
		return "UNIQUE"
	case ConstraintForeignKey:
		return "FOREIGN KEY"
	case ConstraintCheck:
		return "CHECK"
	case ConstraintIndex:
		return "INDEX"
	}
	return "UNKNOWN"
}

// Constraint is a table-level constraint or inline index.
type Constraint struct {
	Name    string
	Kind    ConstraintKind
	Columns []string
	Ref     *ForeignRef // FOREIGN KEY only
	Check   Expr        // CHECK only
}

// ForeignRef is the REFERENCES part of a foreign key.
type ForeignRef struct {
	Table   Name
	Columns []string
}

// CreateViewStmt represents CREATE VIEW.
type CreateViewStmt struct {
	NodeInfo
	Name      Name
	OrReplace bool
	Columns   []string // optional declared column list
	Query     *SelectStmt
}

func (*CreateViewStmt) stmtNode() {}

// ComputeName returns the view's unqualified name.
func (s *CreateViewStmt) ComputeName() string {
	if s.Name == nil {
		return ""
	}
	return s.Name.SimpleName()
}

// FindColumn returns the view column named name. Declared column lists win;
// otherwise the defining query's output names are searched.
func (s *CreateViewStmt) FindColumn(name string) *ColumnDef {
	if len(s.Columns) > 0 {
		for _, c := range s.Columns {
			if strings.EqualFold(c, name) {
				return &ColumnDef{Name: c}
			}
		}
		return nil
	}
	if s.Query == nil {
		return nil
	}
	return selectColumn(s.Query, name)
}

// selectColumn finds an output column of a query by name. Only the first
// branch of a set operation names the columns.
func selectColumn(q *SelectStmt, name string) *ColumnDef {
	for _, item := range q.Items {
		out := item.OutputName()
		if out != "" && strings.EqualFold(out, name) {
			col := &ColumnDef{Name: out}
			if c, ok := item.Expr.(*CastExpr); ok {
				col.Type = c.Type.Clone()
			}
			return col
		}
	}
	return nil
}

// CreateIndexStmt represents CREATE [UNIQUE] INDEX.
type CreateIndexStmt struct {
	NodeInfo
	Name    Name
	Unique  bool
	Table   Name
	Columns []string
}

func (*CreateIndexStmt) stmtNode() {}

// CreateSequenceStmt represents CREATE SEQUENCE.
type CreateSequenceStmt struct {
	NodeInfo
	Name    Name
	Options string // START WITH / INCREMENT BY / ..., verbatim
}

func (*CreateSequenceStmt) stmtNode() {}

// DropSequenceStmt represents DROP SEQUENCE.
type DropSequenceStmt struct {
	NodeInfo
	Name     Name
	IfExists bool
}

func (*DropSequenceStmt) stmtNode() {}

// CreateFunctionStmt represents CREATE [OR REPLACE] FUNCTION.
type CreateFunctionStmt struct {
	NodeInfo
	Name      Name
	OrReplace bool
	Params    []*FuncParam
	Returns   *DataType
	Body      string // everything after the signature, verbatim
}

func (*CreateFunctionStmt) stmtNode() {}

// FuncParam is one parameter of a function signature.
type FuncParam struct {
	Name string
	Mode string // IN, OUT, INOUT or empty
	Type *DataType
}

// AlterTableStmt represents ALTER TABLE with one or more alteration items.
type AlterTableStmt struct {
	NodeInfo
	Name  Name
	Items []AlterItem
}

func (*AlterTableStmt) stmtNode() {}

// RawStmt is any statement the parser does not model (INSERT, DROP TABLE,
// SET, ...). Its text is kept verbatim.
type RawStmt struct {
	NodeInfo
	Verb string // leading keyword, upper-cased
	Text string
}

func (*RawStmt) stmtNode() {}

// StmtKind returns a short upper-case label for a statement, e.g.
// "CREATE TABLE". Unmodeled statements report their leading keyword.
func StmtKind(s Stmt) string {
	switch n := s.(type) {
	case *SelectStmt:
		return "SELECT"
	case *CreateTableStmt:
		return "CREATE TABLE"
	case *CreateViewStmt:
		return "CREATE VIEW"
	case *CreateIndexStmt:
		return "CREATE INDEX"
	case *CreateSequenceStmt:
		return "CREATE SEQUENCE"
	case *DropSequenceStmt:
		return "DROP SEQUENCE"
	case *CreateFunctionStmt:
		return "CREATE FUNCTION"
	case *AlterTableStmt:
		return "ALTER TABLE"
	case *RawStmt:
		return n.Verb
	}
	return "UNKNOWN"
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

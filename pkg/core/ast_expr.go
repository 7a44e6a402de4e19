package core

import (
	"strings"

	"github.com/leapstack-labs/leapschema/pkg/token"
)

// ---------- Name Expressions ----------

// Name is an expression that names an object or column: an *Identifier or a
// *QualifiedRef.
type Name interface {
	Expr
	// SimpleName returns the last component of the name.
	SimpleName() string
}

// Identifier is a bare name such as a column or table reference.
type Identifier struct {
	Name   string
	Quoted bool // written with quote characters
}

func (*Identifier) exprNode() {}

// SimpleName implements Name.
func (i *Identifier) SimpleName() string { return i.Name }

// QualifiedRef is an owner.member reference such as t.id or schema.table.
// A qualified wildcard (t.*) is a QualifiedRef whose Name is "*".
type QualifiedRef struct {
	Owner Expr // *Identifier or *QualifiedRef
	Name  string
}

func (*QualifiedRef) exprNode() {}

// SimpleName implements Name.
func (q *QualifiedRef) SimpleName() string { return q.Name }

// OwnerName renders the owner part as a dotted string.
func (q *QualifiedRef) OwnerName() string {
	switch o := q.Owner.(type) {
	case *Identifier:
		return o.Name
	case *QualifiedRef:
		return o.OwnerName() + "." + o.Name
	case nil:
		return ""
	default:
		return FormatExpr(o)
	}
}

// NewName builds an Identifier or QualifiedRef from dotted parts.
// It returns nil for an empty slice.
func NewName(parts ...string) Name {
	if len(parts) == 0 {
		return nil
	}
	var n Name = &Identifier{Name: parts[0]}
	for _, p := range parts[1:] {
		n = &QualifiedRef{Owner: n, Name: p}
	}
	return n
}

// Wildcard is an unqualified * in a select list.
type Wildcard struct{}

func (*Wildcard) exprNode() {}

// ---------- Calls ----------

// AggregateCall is a call to an aggregate function such as COUNT or MAX.
type AggregateCall struct {
	Name     string
	Distinct bool
	Star     bool // COUNT(*)
	Args     []Expr
}

func (*AggregateCall) exprNode() {}

// FuncCall is a call to a scalar or table function.
type FuncCall struct {
	Name string
	Args []Expr
}

func (*FuncCall) exprNode() {}

// aggregateNames lists the functions parsed as AggregateCall.
var aggregateNames = map[string]bool{
	"avg":          true,
	"bit_and":      true,
	"bit_or":       true,
	"bit_xor":      true,
	"count":        true,
	"group_concat": true,
	"listagg":      true,
	"max":          true,
	"median":       true,
	"min":          true,
	"stddev":       true,
	"stddev_pop":   true,
	"stddev_samp":  true,
	"string_agg":   true,
	"sum":          true,
	"var_pop":      true,
	"var_samp":     true,
	"variance":     true,
}

// IsAggregateName reports whether name is a known aggregate function.
func IsAggregateName(name string) bool {
	return aggregateNames[strings.ToLower(name)]
}

// ---------- Operators and Literals ----------

// LiteralKind represents the type of a literal.
type LiteralKind int

// LiteralKind constants for SQL literal value types.
const (
	LiteralNumber LiteralKind = iota
	LiteralString
	LiteralBool
	LiteralNull
)

// Literal represents a literal value.
type Literal struct {
	Kind  LiteralKind
	Value string
}

func (*Literal) exprNode() {}

// BinaryExpr represents a binary expression.
type BinaryExpr struct {
	Left  Expr
	Op    token.TokenType
	Right Expr
}

func (*BinaryExpr) exprNode() {}

// UnaryExpr represents a unary expression (NOT x, -x).
type UnaryExpr struct {
	Op   token.TokenType
	Expr Expr
}

func (*UnaryExpr) exprNode() {}

// ParenExpr represents a parenthesized expression.
type ParenExpr struct {
	Expr Expr
}

func (*ParenExpr) exprNode() {}

// CaseExpr represents CASE [operand] WHEN ... THEN ... [ELSE ...] END.
type CaseExpr struct {
	Operand Expr // nil for searched CASE
	Whens   []*WhenClause
	Else    Expr
}

func (*CaseExpr) exprNode() {}

// WhenClause is one WHEN ... THEN ... arm.
type WhenClause struct {
	Cond   Expr
	Result Expr
}

// CastExpr represents CAST(expr AS type).
type CastExpr struct {
	Expr Expr
	Type *DataType
}

func (*CastExpr) exprNode() {}

// InExpr represents expr [NOT] IN (values) or expr [NOT] IN (subquery).
type InExpr struct {
	Expr   Expr
	Not    bool
	Values []Expr
	Query  *SelectStmt
}

func (*InExpr) exprNode() {}

// BetweenExpr represents expr [NOT] BETWEEN low AND high.
type BetweenExpr struct {
	Expr Expr
	Not  bool
	Low  Expr
	High Expr
}

func (*BetweenExpr) exprNode() {}

// IsNullExpr represents expr IS [NOT] NULL.
type IsNullExpr struct {
	Expr Expr
	Not  bool
}

func (*IsNullExpr) exprNode() {}

// LikeExpr represents expr [NOT] LIKE pattern.
type LikeExpr struct {
	Expr    Expr
	Not     bool
	Pattern Expr
}

func (*LikeExpr) exprNode() {}

// ExistsExpr represents [NOT] EXISTS (subquery).
type ExistsExpr struct {
	Not   bool
	Query *SelectStmt
}

func (*ExistsExpr) exprNode() {}

// SubqueryExpr represents a parenthesized query used as a value or as a
// FROM-clause leaf.
type SubqueryExpr struct {
	Query *SelectStmt
}

func (*SubqueryExpr) exprNode() {}

// ---------- Data Types ----------

// DataType is a column or cast type such as VARCHAR(32) or DECIMAL(10, 2).
type DataType struct {
	Name     string
	Args     []string
	Unsigned bool
}

// String renders the type as SQL.
func (d *DataType) String() string {
	if d == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(d.Name)
	if len(d.Args) > 0 {
		sb.WriteByte('(')
		sb.WriteString(strings.Join(d.Args, ", "))
		sb.WriteByte(')')
	}
	if d.Unsigned {
		sb.WriteString(" UNSIGNED")
	}
	return sb.String()
}

// Clone returns a deep copy of the type.
func (d *DataType) Clone() *DataType {
	if d == nil {
		return nil
	}
	return &DataType{Name: d.Name, Args: cloneStrings(d.Args), Unsigned: d.Unsigned}
}

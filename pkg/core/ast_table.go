package core

import "strings"

// ---------- Table Source Types ----------

// TableLeaf is a single FROM-clause item: a table name, a subquery or a
// table function, with an optional alias.
type TableLeaf struct {
	NodeInfo
	Expr  Expr // *Identifier, *QualifiedRef, *SubqueryExpr, *FuncCall
	Alias string
}

func (*TableLeaf) tableSourceNode() {}

// TableName returns the leaf's bare table name, or "" when the leaf is not
// a name (subquery, function call).
func (t *TableLeaf) TableName() string {
	if n, ok := t.Expr.(Name); ok {
		return n.SimpleName()
	}
	return ""
}

// ComputeAlias returns the explicit alias if present, else the bare table
// name. Subquery and function leaves without an alias have no alias.
func (t *TableLeaf) ComputeAlias() string {
	if t.Alias != "" {
		return t.Alias
	}
	return t.TableName()
}

// JoinType is the SQL keyword of a join, e.g. "LEFT" or "CROSS".
type JoinType string

// Join types.
const (
	JoinInner JoinType = "INNER"
	JoinLeft  JoinType = "LEFT"
	JoinRight JoinType = "RIGHT"
	JoinFull  JoinType = "FULL"
	JoinCross JoinType = "CROSS"
	// JoinComma is an implicit cross join written with a comma.
	JoinComma JoinType = ","
)

// JoinSource joins two table sources. Chains of joins nest to the left:
// a JOIN b JOIN c is Join(Join(a, b), c).
type JoinSource struct {
	NodeInfo
	Left      TableSource
	Right     TableSource
	Type      JoinType
	Condition Expr     // ON clause
	Using     []string // USING (col, ...)
}

func (*JoinSource) tableSourceNode() {}

// Leaves returns the leaves of a table-source tree in left-to-right order.
func Leaves(src TableSource) []*TableLeaf {
	var out []*TableLeaf
	var walk func(TableSource)
	walk = func(s TableSource) {
		switch n := s.(type) {
		case *TableLeaf:
			out = append(out, n)
		case *JoinSource:
			walk(n.Left)
			walk(n.Right)
		}
	}
	walk(src)
	return out
}

// FormatTableSource renders a table-source tree as SQL.
func FormatTableSource(src TableSource) string {
	var sb strings.Builder
	writeTableSource(&sb, src)
	return sb.String()
}

func writeTableSource(sb *strings.Builder, src TableSource) {
	switch n := src.(type) {
	case *TableLeaf:
		writeExpr(sb, n.Expr)
		if n.Alias != "" {
			sb.WriteString(" AS ")
			sb.WriteString(n.Alias)
		}
	case *JoinSource:
		writeTableSource(sb, n.Left)
		if n.Type == JoinComma {
			sb.WriteString(", ")
		} else {
			sb.WriteByte(' ')
			sb.WriteString(string(n.Type))
			sb.WriteString(" JOIN ")
		}
		writeTableSource(sb, n.Right)
		if n.Condition != nil {
			sb.WriteString(" ON ")
			writeExpr(sb, n.Condition)
		}
		if len(n.Using) > 0 {
			sb.WriteString(" USING (")
			sb.WriteString(strings.Join(n.Using, ", "))
			sb.WriteByte(')')
		}
	}
}

package core

import (
	"strings"

	"github.com/leapstack-labs/leapschema/pkg/token"
)

// FormatExpr renders an expression as single-line SQL. Identifiers are
// printed unquoted.
func FormatExpr(e Expr) string {
	var sb strings.Builder
	writeExpr(&sb, e)
	return sb.String()
}

// FormatSelect renders a query as single-line SQL.
func FormatSelect(s *SelectStmt) string {
	var sb strings.Builder
	writeSelect(&sb, s)
	return sb.String()
}

// FormatColumnDef renders a column definition as it would appear inside
// CREATE TABLE.
func FormatColumnDef(c *ColumnDef) string {
	var sb strings.Builder
	sb.WriteString(c.Name)
	if c.Type != nil {
		sb.WriteByte(' ')
		sb.WriteString(c.Type.String())
	}
	if c.NotNull {
		sb.WriteString(" NOT NULL")
	}
	if c.Default != nil {
		sb.WriteString(" DEFAULT ")
		writeExpr(&sb, c.Default)
	}
	if c.AutoIncrement {
		sb.WriteString(" AUTO_INCREMENT")
	}
	if c.PrimaryKey {
		sb.WriteString(" PRIMARY KEY")
	}
	if c.Unique {
		sb.WriteString(" UNIQUE")
	}
	if c.References != nil {
		sb.WriteString(" REFERENCES ")
		writeExpr(&sb, c.References.Table)
		if len(c.References.Columns) > 0 {
			sb.WriteString(" (")
			sb.WriteString(strings.Join(c.References.Columns, ", "))
			sb.WriteByte(')')
		}
	}
	return sb.String()
}

func writeSelect(sb *strings.Builder, s *SelectStmt) {
	if s == nil {
		return
	}
	sb.WriteString("SELECT ")
	if s.Distinct {
		sb.WriteString("DISTINCT ")
	}
	for i, item := range s.Items {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeExpr(sb, item.Expr)
		if item.Alias != "" {
			sb.WriteString(" AS ")
			sb.WriteString(item.Alias)
		}
	}
	if s.From != nil {
		sb.WriteString(" FROM ")
		writeTableSource(sb, s.From)
	}
	if s.Where != nil {
		sb.WriteString(" WHERE ")
		writeExpr(sb, s.Where)
	}
	if len(s.GroupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		writeExprList(sb, s.GroupBy)
	}
	if s.Having != nil {
		sb.WriteString(" HAVING ")
		writeExpr(sb, s.Having)
	}
	if len(s.OrderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		for i, o := range s.OrderBy {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeExpr(sb, o.Expr)
			if o.Desc {
				sb.WriteString(" DESC")
			}
		}
	}
	if s.Limit != nil {
		sb.WriteString(" LIMIT ")
		writeExpr(sb, s.Limit)
	}
	if s.Offset != nil {
		sb.WriteString(" OFFSET ")
		writeExpr(sb, s.Offset)
	}
	if s.SetOp != SetOpNone && s.Next != nil {
		sb.WriteByte(' ')
		sb.WriteString(string(s.SetOp))
		sb.WriteByte(' ')
		writeSelect(sb, s.Next)
	}
}

func writeExprList(sb *strings.Builder, list []Expr) {
	for i, e := range list {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeExpr(sb, e)
	}
}

func writeExpr(sb *strings.Builder, e Expr) {
	switch n := e.(type) {
	case nil:
	case *Identifier:
		sb.WriteString(n.Name)
	case *QualifiedRef:
		writeExpr(sb, n.Owner)
		sb.WriteByte('.')
		sb.WriteString(n.Name)
	case *Wildcard:
		sb.WriteByte('*')
	case *AggregateCall:
		sb.WriteString(strings.ToUpper(n.Name))
		sb.WriteByte('(')
		if n.Distinct {
			sb.WriteString("DISTINCT ")
		}
		if n.Star {
			sb.WriteByte('*')
		} else {
			writeExprList(sb, n.Args)
		}
		sb.WriteByte(')')
	case *FuncCall:
		sb.WriteString(n.Name)
		sb.WriteByte('(')
		writeExprList(sb, n.Args)
		sb.WriteByte(')')
	case *Literal:
		switch n.Kind {
		case LiteralString:
			sb.WriteByte('\'')
			sb.WriteString(strings.ReplaceAll(n.Value, "'", "''"))
			sb.WriteByte('\'')
		case LiteralNull:
			sb.WriteString("NULL")
		default:
			sb.WriteString(n.Value)
		}
	case *BinaryExpr:
		writeExpr(sb, n.Left)
		sb.WriteByte(' ')
		sb.WriteString(n.Op.String())
		sb.WriteByte(' ')
		writeExpr(sb, n.Right)
	case *UnaryExpr:
		if n.Op == token.NOT {
			sb.WriteString("NOT ")
		} else {
			sb.WriteString(n.Op.String())
		}
		writeExpr(sb, n.Expr)
	case *ParenExpr:
		sb.WriteByte('(')
		writeExpr(sb, n.Expr)
		sb.WriteByte(')')
	case *CaseExpr:
		sb.WriteString("CASE")
		if n.Operand != nil {
			sb.WriteByte(' ')
			writeExpr(sb, n.Operand)
		}
		for _, w := range n.Whens {
			sb.WriteString(" WHEN ")
			writeExpr(sb, w.Cond)
			sb.WriteString(" THEN ")
			writeExpr(sb, w.Result)
		}
		if n.Else != nil {
			sb.WriteString(" ELSE ")
			writeExpr(sb, n.Else)
		}
		sb.WriteString(" END")
	case *CastExpr:
		sb.WriteString("CAST(")
		writeExpr(sb, n.Expr)
		sb.WriteString(" AS ")
		sb.WriteString(n.Type.String())
		sb.WriteByte(')')
	case *InExpr:
		writeExpr(sb, n.Expr)
		writeNot(sb, n.Not)
		sb.WriteString(" IN (")
		if n.Query != nil {
			writeSelect(sb, n.Query)
		} else {
			writeExprList(sb, n.Values)
		}
		sb.WriteByte(')')
	case *BetweenExpr:
		writeExpr(sb, n.Expr)
		writeNot(sb, n.Not)
		sb.WriteString(" BETWEEN ")
		writeExpr(sb, n.Low)
		sb.WriteString(" AND ")
		writeExpr(sb, n.High)
	case *IsNullExpr:
		writeExpr(sb, n.Expr)
		sb.WriteString(" IS")
		writeNot(sb, n.Not)
		sb.WriteString(" NULL")
	case *LikeExpr:
		writeExpr(sb, n.Expr)
		writeNot(sb, n.Not)
		sb.WriteString(" LIKE ")
		writeExpr(sb, n.Pattern)
	case *ExistsExpr:
		if n.Not {
			sb.WriteString("NOT ")
		}
		sb.WriteString("EXISTS (")
		writeSelect(sb, n.Query)
		sb.WriteByte(')')
	case *SubqueryExpr:
		sb.WriteByte('(')
		writeSelect(sb, n.Query)
		sb.WriteByte(')')
	}
}

func writeNot(sb *strings.Builder, not bool) {
	if not {
		sb.WriteString(" NOT")
	}
}

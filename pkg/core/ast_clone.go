package core

// Deep copies. A cloned statement shares no mutable state with its source,
// so altering one never shows through the other.

// Clone returns a deep copy of the statement.
func (s *CreateTableStmt) Clone() *CreateTableStmt {
	if s == nil {
		return nil
	}
	out := &CreateTableStmt{
		NodeInfo:    s.NodeInfo,
		Name:        CloneName(s.Name),
		Temporary:   s.Temporary,
		IfNotExists: s.IfNotExists,
		Like:        CloneName(s.Like),
		Select:      s.Select.Clone(),
		Options:     s.Options,
	}
	if s.Columns != nil {
		out.Columns = make([]*ColumnDef, len(s.Columns))
		for i, c := range s.Columns {
			out.Columns[i] = c.Clone()
		}
	}
	if s.Constraints != nil {
		out.Constraints = make([]*Constraint, len(s.Constraints))
		for i, c := range s.Constraints {
			out.Constraints[i] = c.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the column definition.
func (c *ColumnDef) Clone() *ColumnDef {
	if c == nil {
		return nil
	}
	return &ColumnDef{
		Name:          c.Name,
		Type:          c.Type.Clone(),
		NotNull:       c.NotNull,
		Default:       CloneExpr(c.Default),
		PrimaryKey:    c.PrimaryKey,
		Unique:        c.Unique,
		AutoIncrement: c.AutoIncrement,
		Comment:       c.Comment,
		References:    c.References.Clone(),
		Check:         CloneExpr(c.Check),
	}
}

// Clone returns a deep copy of the constraint.
func (c *Constraint) Clone() *Constraint {
	if c == nil {
		return nil
	}
	return &Constraint{
		Name:    c.Name,
		Kind:    c.Kind,
		Columns: cloneStrings(c.Columns),
		Ref:     c.Ref.Clone(),
		Check:   CloneExpr(c.Check),
	}
}

// Clone returns a deep copy of the reference.
func (r *ForeignRef) Clone() *ForeignRef {
	if r == nil {
		return nil
	}
	return &ForeignRef{Table: CloneName(r.Table), Columns: cloneStrings(r.Columns)}
}

// CloneName returns a deep copy of a name, or nil.
func CloneName(n Name) Name {
	if n == nil {
		return nil
	}
	if c, ok := CloneExpr(n).(Name); ok {
		return c
	}
	return nil
}

// Clone returns a deep copy of the query.
func (s *SelectStmt) Clone() *SelectStmt {
	if s == nil {
		return nil
	}
	out := &SelectStmt{
		NodeInfo: s.NodeInfo,
		Distinct: s.Distinct,
		From:     CloneTableSource(s.From),
		Where:    CloneExpr(s.Where),
		GroupBy:  cloneExprs(s.GroupBy),
		Having:   CloneExpr(s.Having),
		Limit:    CloneExpr(s.Limit),
		Offset:   CloneExpr(s.Offset),
		SetOp:    s.SetOp,
		Next:     s.Next.Clone(),
	}
	if s.Items != nil {
		out.Items = make([]*SelectItem, len(s.Items))
		for i, it := range s.Items {
			out.Items[i] = &SelectItem{Expr: CloneExpr(it.Expr), Alias: it.Alias}
		}
	}
	if s.OrderBy != nil {
		out.OrderBy = make([]*OrderByItem, len(s.OrderBy))
		for i, o := range s.OrderBy {
			out.OrderBy[i] = &OrderByItem{Expr: CloneExpr(o.Expr), Desc: o.Desc}
		}
	}
	return out
}

// CloneTableSource returns a deep copy of a table-source tree.
func CloneTableSource(src TableSource) TableSource {
	switch n := src.(type) {
	case *TableLeaf:
		return &TableLeaf{NodeInfo: n.NodeInfo, Expr: CloneExpr(n.Expr), Alias: n.Alias}
	case *JoinSource:
		return &JoinSource{
			NodeInfo:  n.NodeInfo,
			Left:      CloneTableSource(n.Left),
			Right:     CloneTableSource(n.Right),
			Type:      n.Type,
			Condition: CloneExpr(n.Condition),
			Using:     cloneStrings(n.Using),
		}
	}
	return nil
}

// CloneExpr returns a deep copy of an expression tree.
func CloneExpr(e Expr) Expr {
	switch n := e.(type) {
	case nil:
		return nil
	case *Identifier:
		c := *n
		return &c
	case *QualifiedRef:
		return &QualifiedRef{Owner: CloneExpr(n.Owner), Name: n.Name}
	case *Wildcard:
		return &Wildcard{}
	case *AggregateCall:
		return &AggregateCall{Name: n.Name, Distinct: n.Distinct, Star: n.Star, Args: cloneExprs(n.Args)}
	case *FuncCall:
		return &FuncCall{Name: n.Name, Args: cloneExprs(n.Args)}
	case *Literal:
		c := *n
		return &c
	case *BinaryExpr:
		return &BinaryExpr{Left: CloneExpr(n.Left), Op: n.Op, Right: CloneExpr(n.Right)}
	case *UnaryExpr:
		return &UnaryExpr{Op: n.Op, Expr: CloneExpr(n.Expr)}
	case *ParenExpr:
		return &ParenExpr{Expr: CloneExpr(n.Expr)}
	case *CaseExpr:
		out := &CaseExpr{Operand: CloneExpr(n.Operand), Else: CloneExpr(n.Else)}
		for _, w := range n.Whens {
			out.Whens = append(out.Whens, &WhenClause{Cond: CloneExpr(w.Cond), Result: CloneExpr(w.Result)})
		}
		return out
	case *CastExpr:
		return &CastExpr{Expr: CloneExpr(n.Expr), Type: n.Type.Clone()}
	case *InExpr:
		return &InExpr{Expr: CloneExpr(n.Expr), Not: n.Not, Values: cloneExprs(n.Values), Query: n.Query.Clone()}
	case *BetweenExpr:
		return &BetweenExpr{Expr: CloneExpr(n.Expr), Not: n.Not, Low: CloneExpr(n.Low), High: CloneExpr(n.High)}
	case *IsNullExpr:
		return &IsNullExpr{Expr: CloneExpr(n.Expr), Not: n.Not}
	case *LikeExpr:
		return &LikeExpr{Expr: CloneExpr(n.Expr), Not: n.Not, Pattern: CloneExpr(n.Pattern)}
	case *ExistsExpr:
		return &ExistsExpr{Not: n.Not, Query: n.Query.Clone()}
	case *SubqueryExpr:
		return &SubqueryExpr{Query: n.Query.Clone()}
	}
	return e
}

func cloneExprs(in []Expr) []Expr {
	if in == nil {
		return nil
	}
	out := make([]Expr, len(in))
	for i, e := range in {
		out[i] = CloneExpr(e)
	}
	return out
}

package core

import "strings"

// AlterItem is one alteration inside ALTER TABLE.
type AlterItem interface {
	alterItemNode()
}

// AddColumn adds one or more columns. First and After position a single
// added column (MySQL); otherwise columns are appended.
type AddColumn struct {
	Columns []*ColumnDef
	First   bool
	After   string
}

// DropColumn drops a column by name.
type DropColumn struct {
	Name string
}

// ModifyColumn replaces the definition of the column with the same name.
type ModifyColumn struct {
	Column *ColumnDef
}

// ChangeColumn replaces the column OldName with a new definition that may
// carry a different name (MySQL CHANGE COLUMN).
type ChangeColumn struct {
	OldName string
	Column  *ColumnDef
}

// RenameColumn renames a column.
type RenameColumn struct {
	OldName string
	NewName string
}

// AlterColumnDefault sets or drops a column default. A nil Default drops it.
type AlterColumnDefault struct {
	Column  string
	Default Expr
}

// AddConstraint adds a table constraint or inline index.
type AddConstraint struct {
	Constraint *Constraint
}

// DropConstraint drops a named constraint or index.
type DropConstraint struct {
	Name string
}

// DropPrimaryKey drops the primary key.
type DropPrimaryKey struct{}

func (*AddColumn) alterItemNode()          {}
func (*DropColumn) alterItemNode()         {}
func (*ModifyColumn) alterItemNode()       {}
func (*ChangeColumn) alterItemNode()       {}
func (*RenameColumn) alterItemNode()       {}
func (*AlterColumnDefault) alterItemNode() {}
func (*AddConstraint) alterItemNode()      {}
func (*DropConstraint) alterItemNode()     {}
func (*DropPrimaryKey) alterItemNode()     {}

// Apply applies the items of an ALTER TABLE statement to the definition.
// Items that reference unknown columns or constraints are skipped. It
// reports whether any item changed the definition.
//
// Columns are replaced rather than written through, so a *ColumnDef taken
// from the definition before the call keeps its old values.
func (s *CreateTableStmt) Apply(alter *AlterTableStmt) bool {
	if alter == nil {
		return false
	}
	changed := false
	for _, item := range alter.Items {
		if s.applyItem(item) {
			changed = true
		}
	}
	return changed
}

func (s *CreateTableStmt) applyItem(item AlterItem) bool {
	switch it := item.(type) {
	case *AddColumn:
		return s.addColumns(it)
	case *DropColumn:
		i := s.columnIndex(it.Name)
		if i < 0 {
			return false
		}
		cols := make([]*ColumnDef, 0, len(s.Columns)-1)
		s.Columns = append(append(cols, s.Columns[:i]...), s.Columns[i+1:]...)
		return true
	case *ModifyColumn:
		i := s.columnIndex(it.Column.Name)
		if i < 0 {
			return false
		}
		s.Columns[i] = it.Column.Clone()
		return true
	case *ChangeColumn:
		i := s.columnIndex(it.OldName)
		if i < 0 {
			return false
		}
		s.Columns[i] = it.Column.Clone()
		s.renameConstraintColumn(it.OldName, it.Column.Name)
		return true
	case *RenameColumn:
		i := s.columnIndex(it.OldName)
		if i < 0 {
			return false
		}
		col := s.Columns[i].Clone()
		col.Name = it.NewName
		s.Columns[i] = col
		s.renameConstraintColumn(it.OldName, it.NewName)
		return true
	case *AlterColumnDefault:
		i := s.columnIndex(it.Column)
		if i < 0 {
			return false
		}
		col := s.Columns[i].Clone()
		col.Default = CloneExpr(it.Default)
		s.Columns[i] = col
		return true
	case *AddConstraint:
		s.Constraints = append(s.Constraints, it.Constraint.Clone())
		return true
	case *DropConstraint:
		for i, c := range s.Constraints {
			if c.Name != "" && strings.EqualFold(c.Name, it.Name) {
				s.Constraints = append(s.Constraints[:i], s.Constraints[i+1:]...)
				return true
			}
		}
		return false
	case *DropPrimaryKey:
		dropped := false
		for i, c := range s.Constraints {
			if c.Kind == ConstraintPrimaryKey {
				s.Constraints = append(s.Constraints[:i], s.Constraints[i+1:]...)
				dropped = true
				break
			}
		}
		for _, c := range s.Columns {
			if c.PrimaryKey {
				c.PrimaryKey = false
				dropped = true
			}
		}
		return dropped
	}
	return false
}

func (s *CreateTableStmt) addColumns(it *AddColumn) bool {
	if len(it.Columns) == 0 {
		return false
	}
	added := make([]*ColumnDef, len(it.Columns))
	for i, c := range it.Columns {
		added[i] = c.Clone()
	}

	pos := len(s.Columns)
	switch {
	case it.First:
		pos = 0
	case it.After != "":
		if i := s.columnIndex(it.After); i >= 0 {
			pos = i + 1
		}
	}

	cols := make([]*ColumnDef, 0, len(s.Columns)+len(added))
	cols = append(cols, s.Columns[:pos]...)
	cols = append(cols, added...)
	cols = append(cols, s.Columns[pos:]...)
	s.Columns = cols
	return true
}

func (s *CreateTableStmt) renameConstraintColumn(oldName, newName string) {
	if oldName == newName {
		return
	}
	for _, c := range s.Constraints {
		for i, col := range c.Columns {
			if strings.EqualFold(col, oldName) {
				c.Columns[i] = newName
			}
		}
	}
}

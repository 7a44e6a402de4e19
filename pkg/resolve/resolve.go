// Package resolve maps table and column references in a query to the
// catalog objects that define them.
//
// A Resolver is one resolution pass. It remembers the object each FROM-clause
// leaf resolved to, keyed by the leaf's identity, so repeated questions about
// the same query do not repeat catalog lookups. The memo is never
// invalidated: after the catalog changes, start a new pass or call Reset.
// A Resolver is not safe for concurrent use.
package resolve

import (
	"strings"

	"github.com/leapstack-labs/leapschema/pkg/catalog"
	"github.com/leapstack-labs/leapschema/pkg/core"
)

// Resolver resolves references against one catalog.
type Resolver struct {
	catalog *catalog.Catalog
	memo    map[*core.TableLeaf]*catalog.Object
}

// New starts a resolution pass over c.
func New(c *catalog.Catalog) *Resolver {
	return &Resolver{
		catalog: c,
		memo:    make(map[*core.TableLeaf]*catalog.Object),
	}
}

// Reset forgets every memoized leaf.
func (r *Resolver) Reset() {
	clear(r.memo)
}

// Memoized returns the object leaf resolved to earlier in this pass.
func (r *Resolver) Memoized(leaf *core.TableLeaf) (*catalog.Object, bool) {
	obj, ok := r.memo[leaf]
	return obj, ok
}

// TableByAlias returns the object for the table referenced as alias in src.
// A leaf matches when its alias, or its bare table name without one, equals
// alias ignoring case. In a join the left side is searched first, so a
// duplicated alias resolves to its leftmost occurrence.
func (r *Resolver) TableByAlias(src core.TableSource, alias string) *catalog.Object {
	switch s := src.(type) {
	case *core.TableLeaf:
		if !strings.EqualFold(s.ComputeAlias(), alias) {
			return nil
		}
		return r.leafObject(s)
	case *core.JoinSource:
		if obj := r.TableByAlias(s.Left, alias); obj != nil {
			return obj
		}
		return r.TableByAlias(s.Right, alias)
	}
	return nil
}

// TableForExpr returns the object that the column reference expr belongs to.
//
//   - MIN(x) and MAX(x) resolve as x.
//   - owner.member resolves owner as an alias.
//   - A bare identifier or * resolves to the leaf itself, or in a join to the
//     first side, left before right, that resolves it.
//
// Any other expression resolves to nil.
func (r *Resolver) TableForExpr(src core.TableSource, expr core.Expr) *catalog.Object {
	expr = unwrap(expr)
	switch e := expr.(type) {
	case *core.QualifiedRef:
		return r.TableByAlias(src, e.OwnerName())
	case *core.Identifier, *core.Wildcard:
		switch s := src.(type) {
		case *core.TableLeaf:
			return r.TableByAlias(s, s.ComputeAlias())
		case *core.JoinSource:
			if obj := r.TableForExpr(s.Left, expr); obj != nil {
				return obj
			}
			return r.TableForExpr(s.Right, expr)
		}
	}
	return nil
}

// Column returns the column definition expr refers to, or nil.
func (r *Resolver) Column(src core.TableSource, expr core.Expr) *core.ColumnDef {
	obj := r.TableForExpr(src, expr)
	if obj == nil {
		return nil
	}
	name, ok := unwrap(expr).(core.Name)
	if !ok {
		return nil
	}
	return obj.FindColumn(name.SimpleName())
}

// leafObject returns the memoized object for leaf, looking it up by its
// simple name on first use. Only name leaves resolve; subqueries and table
// functions never do.
func (r *Resolver) leafObject(leaf *core.TableLeaf) *catalog.Object {
	if obj, ok := r.memo[leaf]; ok {
		return obj
	}
	name, ok := leaf.Expr.(core.Name)
	if !ok {
		return nil
	}
	obj := r.catalog.FindTableOrView(name.SimpleName())
	if obj != nil {
		r.memo[leaf] = obj
	}
	return obj
}

// unwrap strips MIN and MAX calls down to their first argument. Other
// aggregates are left alone.
func unwrap(expr core.Expr) core.Expr {
	for {
		agg, ok := expr.(*core.AggregateCall)
		if !ok || !isPassThrough(agg.Name) {
			return expr
		}
		if len(agg.Args) == 0 {
			return nil
		}
		expr = agg.Args[0]
	}
}

func isPassThrough(name string) bool {
	return strings.EqualFold(name, "min") || strings.EqualFold(name, "max")
}

package resolve

import (
	"github.com/leapstack-labs/leapschema/pkg/catalog"
	"github.com/leapstack-labs/leapschema/pkg/core"
)

// Reference is the resolution of one select-list item.
type Reference struct {
	Item   *core.SelectItem
	Table  *catalog.Object  // nil when unresolved
	Column *core.ColumnDef // nil for wildcards and unresolved names
}

// SelectItems resolves every item of the first branch of sel against its
// FROM clause. A query without FROM resolves nothing.
func (r *Resolver) SelectItems(sel *core.SelectStmt) []Reference {
	if sel == nil {
		return nil
	}
	out := make([]Reference, 0, len(sel.Items))
	for _, item := range sel.Items {
		ref := Reference{Item: item}
		if sel.From != nil {
			ref.Table = r.TableForExpr(sel.From, item.Expr)
			ref.Column = r.Column(sel.From, item.Expr)
		}
		out = append(out, ref)
	}
	return out
}

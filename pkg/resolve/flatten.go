package resolve

import (
	"strings"

	"github.com/leapstack-labs/leapschema/pkg/catalog"
	"github.com/leapstack-labs/leapschema/pkg/core"
)

// Tables is an insertion-ordered mapping from names in scope to objects.
// Keys keep their case as written in the query.
type Tables struct {
	keys  []string
	index map[string]int
	objs  []*catalog.Object
}

func newTables() *Tables {
	return &Tables{index: make(map[string]int)}
}

// put stores obj under key. A repeated key keeps its first position and
// takes the new object.
func (t *Tables) put(key string, obj *catalog.Object) {
	if i, ok := t.index[key]; ok {
		t.objs[i] = obj
		return
	}
	t.index[key] = len(t.keys)
	t.keys = append(t.keys, key)
	t.objs = append(t.objs, obj)
}

// Keys returns the names in FROM-clause order.
func (t *Tables) Keys() []string {
	return append([]string(nil), t.keys...)
}

// Get returns the object stored under key, matched exactly.
func (t *Tables) Get(key string) *catalog.Object {
	i, ok := t.index[key]
	if !ok {
		return nil
	}
	return t.objs[i]
}

// Len returns the number of keys.
func (t *Tables) Len() int {
	return len(t.keys)
}

// Each calls fn for every entry in order until fn returns false.
func (t *Tables) Each(fn func(name string, obj *catalog.Object) bool) {
	for i, k := range t.keys {
		if !fn(k, t.objs[i]) {
			return
		}
	}
}

// Flatten collects every resolvable table of src, left to right. A leaf
// naming a table by a bare identifier is stored under that name and, when
// its alias differs ignoring case, under the alias too. Qualified names,
// subqueries and table functions contribute nothing. Leaves resolve through
// the same memoized lookup as TableByAlias, so views are included.
func (r *Resolver) Flatten(src core.TableSource) *Tables {
	out := newTables()
	r.flatten(src, out)
	return out
}

func (r *Resolver) flatten(src core.TableSource, out *Tables) {
	switch s := src.(type) {
	case *core.TableLeaf:
		id, ok := s.Expr.(*core.Identifier)
		if !ok {
			return
		}
		obj := r.leafObject(s)
		if obj == nil {
			return
		}
		out.put(id.Name, obj)
		if s.Alias != "" && !strings.EqualFold(s.Alias, id.Name) {
			out.put(s.Alias, obj)
		}
	case *core.JoinSource:
		r.flatten(s.Left, out)
		r.flatten(s.Right, out)
	}
}

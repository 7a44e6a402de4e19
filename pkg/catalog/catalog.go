package catalog

import (
	"strings"
	"sync"

	"github.com/google/btree"
)

const btreeDegree = 16

type entry struct {
	key string
	obj *Object
}

func entryLess(a, b entry) bool { return a.key < b.key }

// Catalog is a thread-safe store of schema objects. Each single operation
// is atomic; compound operations such as InsertIfAbsent are not.
type Catalog struct {
	mu        sync.RWMutex
	objects   *btree.BTreeG[entry]
	functions *btree.BTreeG[entry]
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		objects:   btree.NewG(btreeDegree, entryLess),
		functions: btree.NewG(btreeDegree, entryLess),
	}
}

func (c *Catalog) get(tree *btree.BTreeG[entry], key string) *Object {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := tree.Get(entry{key: key})
	if !ok {
		return nil
	}
	return e.obj
}

func (c *Catalog) put(tree *btree.BTreeG[entry], key string, obj *Object) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tree.ReplaceOrInsert(entry{key: key, obj: obj})
}

// FindTable returns the table named name (case-insensitive), or nil.
func (c *Catalog) FindTable(name string) *Object {
	obj := c.get(c.objects, strings.ToLower(name))
	if obj == nil || obj.Type() != Table {
		return nil
	}
	return obj
}

// FindTableOrView returns the table or view named name (case-insensitive),
// or nil.
func (c *Catalog) FindTableOrView(name string) *Object {
	obj := c.get(c.objects, strings.ToLower(name))
	if obj == nil || (obj.Type() != Table && obj.Type() != View) {
		return nil
	}
	return obj
}

// FindFunction returns the function named name (case-insensitive), or nil.
func (c *Catalog) FindFunction(name string) *Object {
	return c.get(c.functions, strings.ToLower(name))
}

// IsSequence reports whether a sequence is stored under name. The name is
// used as given: keys are lower-case, so a mixed-case name never matches.
func (c *Catalog) IsSequence(name string) bool {
	obj := c.get(c.objects, name)
	return obj != nil && obj.Type() == Sequence
}

// InsertIfAbsent stores obj under the lower-cased name unless the key is
// taken, and reports whether it stored. The lookup and the store are two
// separate operations: concurrent callers may both store, the later winning.
func (c *Catalog) InsertIfAbsent(name string, obj *Object) bool {
	key := strings.ToLower(name)
	if c.get(c.objects, key) != nil {
		return false
	}
	c.put(c.objects, key, obj)
	return true
}

// Upsert stores obj under the lower-cased name, replacing any existing
// object.
func (c *Catalog) Upsert(name string, obj *Object) {
	c.put(c.objects, strings.ToLower(name), obj)
}

// UpsertFunction stores a function under the lower-cased name, replacing
// any existing function.
func (c *Catalog) UpsertFunction(name string, obj *Object) {
	c.put(c.functions, strings.ToLower(name), obj)
}

// Remove deletes the object stored under name, used as given, and reports
// whether one was removed.
func (c *Catalog) Remove(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.objects.Delete(entry{key: name})
	return ok
}

// TableCount returns the number of tables.
func (c *Catalog) TableCount() int {
	return c.count(Table)
}

// ViewCount returns the number of views.
func (c *Catalog) ViewCount() int {
	return c.count(View)
}

func (c *Catalog) count(typ ObjectType) int {
	n := 0
	for _, obj := range c.Objects() {
		if obj.Type() == typ {
			n++
		}
	}
	return n
}

// Objects returns the objects ordered by lower-cased name.
func (c *Catalog) Objects() []*Object {
	return c.list(c.objects)
}

// Functions returns the functions ordered by lower-cased name.
func (c *Catalog) Functions() []*Object {
	return c.list(c.functions)
}

func (c *Catalog) list(tree *btree.BTreeG[entry]) []*Object {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Object, 0, tree.Len())
	tree.Ascend(func(e entry) bool {
		out = append(out, e.obj)
		return true
	})
	return out
}

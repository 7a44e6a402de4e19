package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapschema/internal/cli/output"
	"github.com/leapstack-labs/leapschema/pkg/catalog"
	"github.com/leapstack-labs/leapschema/pkg/core"
	"github.com/leapstack-labs/leapschema/pkg/resolve"
	"github.com/leapstack-labs/leapschema/pkg/schema"
)

var objectKinds = map[string]catalog.ObjectType{
	"table":    catalog.Table,
	"view":     catalog.View,
	"index":    catalog.Index,
	"sequence": catalog.Sequence,
	"function": catalog.Function,
}

// parseKinds turns --kind values into a type filter. An empty list keeps
// everything.
func parseKinds(kinds []string) (map[catalog.ObjectType]bool, error) {
	if len(kinds) == 0 {
		return nil, nil
	}
	filter := make(map[catalog.ObjectType]bool, len(kinds))
	for _, k := range kinds {
		typ, ok := objectKinds[strings.ToLower(strings.TrimSpace(k))]
		if !ok {
			return nil, fmt.Errorf("unknown object kind %q (want table, view, index, sequence or function)", k)
		}
		filter[typ] = true
	}
	return filter, nil
}

func columnInfo(c *core.ColumnDef) output.ColumnInfo {
	return output.ColumnInfo{
		Name:       c.Name,
		Type:       c.Type.String(),
		NotNull:    c.NotNull,
		PrimaryKey: c.PrimaryKey,
		Definition: core.FormatColumnDef(c),
	}
}

func objectInfo(obj *catalog.Object, withColumns bool) output.ObjectInfo {
	info := output.ObjectInfo{Name: obj.DisplayName(), Type: obj.Type().String()}
	if withColumns {
		for _, c := range obj.Columns() {
			info.Columns = append(info.Columns, columnInfo(c))
		}
	}
	return info
}

// catalogOutput collects the objects of sch that pass filter.
func catalogOutput(sch *schema.Schema, filter map[catalog.ObjectType]bool) output.CatalogOutput {
	out := output.CatalogOutput{
		Schema:    sch.Name(),
		Dialect:   sch.Dialect().Name,
		Tables:    sch.TableCount(),
		Views:     sch.ViewCount(),
		Objects:   []output.ObjectInfo{},
		Functions: []output.ObjectInfo{},
	}
	keep := func(t catalog.ObjectType) bool { return filter == nil || filter[t] }
	for _, obj := range sch.Objects() {
		if keep(obj.Type()) {
			out.Objects = append(out.Objects, objectInfo(obj, true))
		}
	}
	for _, fn := range sch.Functions() {
		if keep(fn.Type()) {
			out.Functions = append(out.Functions, objectInfo(fn, false))
		}
	}
	return out
}

func renderCatalog(r *output.Renderer, out output.CatalogOutput) error {
	if r.IsStructured() {
		return r.Data(out)
	}

	r.Header(1, fmt.Sprintf("Schema %s (%s)", out.Schema, out.Dialect))
	r.KeyValue("Tables", strconv.Itoa(out.Tables))
	r.KeyValue("Views", strconv.Itoa(out.Views))
	r.Println("")

	all := append(append([]output.ObjectInfo{}, out.Objects...), out.Functions...)
	if len(all) == 0 {
		r.Muted("No objects.")
		return nil
	}
	rows := make([][]string, 0, len(all))
	for _, o := range all {
		cols := ""
		if o.Type == catalog.Table.String() || o.Type == catalog.View.String() {
			cols = strconv.Itoa(len(o.Columns))
		}
		rows = append(rows, []string{o.Name, o.Type, cols})
	}
	r.Table([]string{"Name", "Type", "Columns"}, rows)
	return nil
}

func renderObject(r *output.Renderer, obj *catalog.Object) error {
	info := objectInfo(obj, true)
	if r.IsStructured() {
		return r.Data(info)
	}

	r.Header(1, fmt.Sprintf("%s %s", info.Type, info.Name))
	if len(info.Columns) == 0 {
		r.Muted("No columns.")
		return nil
	}
	rows := make([][]string, 0, len(info.Columns))
	for _, c := range info.Columns {
		null := "YES"
		if c.NotNull || c.PrimaryKey {
			null = "NO"
		}
		key := ""
		if c.PrimaryKey {
			key = "PRI"
		}
		rows = append(rows, []string{c.Name, c.Type, null, key})
	}
	r.Table([]string{"Column", "Type", "Nullable", "Key"}, rows)
	return nil
}

func itemText(item *core.SelectItem) string {
	text := core.FormatExpr(item.Expr)
	if item.Alias != "" {
		text += " AS " + item.Alias
	}
	return text
}

func referenceInfos(refs []resolve.Reference) []output.ReferenceInfo {
	out := make([]output.ReferenceInfo, 0, len(refs))
	for _, ref := range refs {
		info := output.ReferenceInfo{Item: itemText(ref.Item)}
		if ref.Table != nil {
			info.Table = ref.Table.DisplayName()
		}
		if ref.Column != nil {
			info.Column = ref.Column.Name
		}
		out = append(out, info)
	}
	return out
}

func renderReferences(r *output.Renderer, refs []output.ReferenceInfo) error {
	if r.IsStructured() {
		return r.Data(refs)
	}
	rows := make([][]string, 0, len(refs))
	for _, ref := range refs {
		rows = append(rows, []string{ref.Item, orDash(ref.Table), orDash(ref.Column)})
	}
	r.Table([]string{"Item", "Table", "Column"}, rows)
	return nil
}

func flattenEntries(tables *resolve.Tables) []output.FlattenEntry {
	out := make([]output.FlattenEntry, 0, tables.Len())
	tables.Each(func(key string, obj *catalog.Object) bool {
		out = append(out, output.FlattenEntry{Key: key, Table: obj.DisplayName(), Type: obj.Type().String()})
		return true
	})
	return out
}

func renderFlatten(r *output.Renderer, entries []output.FlattenEntry) error {
	if r.IsStructured() {
		return r.Data(entries)
	}
	if len(entries) == 0 {
		r.Muted("No known tables in FROM.")
		return nil
	}
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Key, e.Table, e.Type})
	}
	r.Table([]string{"Name", "Table", "Type"}, rows)
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

package catalog

import (
	"fmt"
	"sync"
	"testing"

	"github.com/leapstack-labs/leapschema/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableStmt(name string, cols ...string) *core.CreateTableStmt {
	stmt := &core.CreateTableStmt{Name: core.NewName(name)}
	for _, c := range cols {
		stmt.Columns = append(stmt.Columns, &core.ColumnDef{Name: c, Type: &core.DataType{Name: "INT"}})
	}
	return stmt
}

func TestFind_CaseInsensitive(t *testing.T) {
	c := New()
	require.True(t, c.InsertIfAbsent("Orders", NewObject("Orders", Table, tableStmt("Orders", "id"))))
	require.True(t, c.InsertIfAbsent("v_orders", NewObject("v_orders", View, nil)))

	for _, name := range []string{"orders", "ORDERS", "Orders"} {
		obj := c.FindTable(name)
		require.NotNil(t, obj, name)
		assert.Equal(t, "Orders", obj.DisplayName())
	}

	assert.Nil(t, c.FindTable("v_orders"), "views are not tables")
	assert.NotNil(t, c.FindTableOrView("V_ORDERS"))
	assert.Nil(t, c.FindTable("missing"))
}

func TestInsertIfAbsent_FirstWriterWins(t *testing.T) {
	c := New()
	first := NewObject("t", Table, tableStmt("t", "a"))
	second := NewObject("T", Table, tableStmt("T", "b"))

	assert.True(t, c.InsertIfAbsent("t", first))
	assert.False(t, c.InsertIfAbsent("T", second))
	assert.Same(t, first, c.FindTable("t"))

	// a view cannot take a table's name either
	assert.False(t, c.InsertIfAbsent("t", NewObject("t", View, nil)))
}

func TestUpsert_Overwrites(t *testing.T) {
	c := New()
	c.Upsert("idx", NewObject("idx", Index, nil))
	replacement := NewObject("IDX", Index, nil)
	c.Upsert("IDX", replacement)

	objs := c.Objects()
	require.Len(t, objs, 1)
	assert.Same(t, replacement, objs[0])
}

func TestSequence_RawNameAsymmetry(t *testing.T) {
	c := New()
	c.Upsert("SEQ_A", NewObject("SEQ_A", Sequence, nil))

	assert.True(t, c.IsSequence("seq_a"))
	assert.False(t, c.IsSequence("SEQ_A"), "IsSequence does not lower-case")

	assert.False(t, c.Remove("SEQ_A"), "Remove does not lower-case")
	assert.True(t, c.IsSequence("seq_a"))
	assert.True(t, c.Remove("seq_a"))
	assert.False(t, c.IsSequence("seq_a"))

	c.InsertIfAbsent("t", NewObject("t", Table, nil))
	assert.False(t, c.IsSequence("t"))
}

func TestFunctions_SeparateNamespace(t *testing.T) {
	c := New()
	c.InsertIfAbsent("f", NewObject("f", Table, tableStmt("f", "a")))
	fn := NewObject("F", Function, &core.CreateFunctionStmt{Name: core.NewName("F")})
	c.UpsertFunction("F", fn)

	assert.Same(t, fn, c.FindFunction("f"))
	assert.NotNil(t, c.FindTable("f"))
	assert.Len(t, c.Objects(), 1)
	assert.Len(t, c.Functions(), 1)
	assert.Nil(t, c.FindFunction("g"))
}

func TestObjects_Ordered(t *testing.T) {
	c := New()
	for _, name := range []string{"zeta", "Alpha", "mid", "beta"} {
		c.InsertIfAbsent(name, NewObject(name, Table, nil))
	}
	c.Upsert("Gamma_Idx", NewObject("Gamma_Idx", Index, nil))
	c.InsertIfAbsent("aview", NewObject("aview", View, nil))

	var names []string
	for _, obj := range c.Objects() {
		names = append(names, obj.DisplayName())
	}
	assert.Equal(t, []string{"Alpha", "aview", "beta", "Gamma_Idx", "mid", "zeta"}, names)
	assert.Equal(t, 4, c.TableCount())
	assert.Equal(t, 1, c.ViewCount())
}

func TestCatalog_ConcurrentAccess(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("t%02d", i)
			c.InsertIfAbsent(name, NewObject(name, Table, tableStmt(name, "id")))
			c.FindTable(name)
			c.Objects()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, c.TableCount())
}

func TestObject_FindColumn(t *testing.T) {
	table := NewObject("t", Table, tableStmt("t", "Id", "name"))
	col := table.FindColumn("ID")
	require.NotNil(t, col)
	assert.Equal(t, "Id", col.Name)
	assert.Nil(t, table.FindColumn("missing"))

	view := NewObject("v", View, &core.CreateViewStmt{
		Name:    core.NewName("v"),
		Columns: []string{"x"},
	})
	assert.NotNil(t, view.FindColumn("X"))

	assert.Nil(t, NewObject("i", Index, nil).FindColumn("id"))
	assert.Nil(t, NewObject("t2", Table, nil).FindColumn("id"))
}

func TestObject_Alter(t *testing.T) {
	table := NewObject("t", Table, tableStmt("t", "a"))
	ok := table.Alter(&core.AlterTableStmt{Items: []core.AlterItem{
		&core.AddColumn{Columns: []*core.ColumnDef{{Name: "b"}}},
	}})
	assert.True(t, ok)
	assert.NotNil(t, table.FindColumn("b"))

	// nothing to drop: no change
	before := table.Statement()
	assert.False(t, table.Alter(&core.AlterTableStmt{Items: []core.AlterItem{&core.DropColumn{Name: "missing"}}}))
	assert.Same(t, before, table.Statement())

	view := NewObject("v", View, &core.CreateViewStmt{})
	assert.False(t, view.Alter(&core.AlterTableStmt{}))
	assert.False(t, NewObject("x", Table, nil).Alter(&core.AlterTableStmt{}))
}

func TestObject_AlterKeepsSnapshots(t *testing.T) {
	table := NewObject("t", Table, tableStmt("t", "a"))
	col := table.FindColumn("a")
	stmt := table.Statement()

	require.True(t, table.Alter(&core.AlterTableStmt{Items: []core.AlterItem{
		&core.RenameColumn{OldName: "a", NewName: "b"},
	}}))

	assert.Equal(t, "a", col.Name)
	assert.Equal(t, "a", stmt.(*core.CreateTableStmt).Columns[0].Name)
	assert.Nil(t, table.FindColumn("a"))
	assert.NotNil(t, table.FindColumn("b"))
}

// Run with -race: readers hold columns while a writer renames them.
func TestObject_AlterConcurrentReaders(t *testing.T) {
	table := NewObject("t", Table, tableStmt("t", "a"))
	col := table.FindColumn("a")
	require.NotNil(t, col)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			from, to := fmt.Sprintf("c%d", i), fmt.Sprintf("c%d", i+1)
			if i == 0 {
				from = "a"
			}
			table.Alter(&core.AlterTableStmt{Items: []core.AlterItem{
				&core.RenameColumn{OldName: from, NewName: to},
				&core.AlterColumnDefault{Column: to, Default: &core.Literal{Kind: core.LiteralNumber, Value: "1"}},
			}})
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				assert.Equal(t, "a", col.Name)
				assert.Nil(t, col.Default)
				for _, c := range table.Columns() {
					_ = c.Name
				}
				if stmt, ok := table.Statement().(*core.CreateTableStmt); ok {
					_ = stmt.Columns[0].Name
				}
			}
		}()
	}
	wg.Wait()

	assert.NotNil(t, table.FindColumn("c100"))
}

func TestObject_CloneTable(t *testing.T) {
	table := NewObject("t", Table, tableStmt("t", "a"))
	clone := table.CloneTable()
	require.NotNil(t, clone)
	clone.Columns[0].Name = "changed"

	assert.NotNil(t, table.FindColumn("a"))
	assert.Nil(t, NewObject("v", View, &core.CreateViewStmt{}).CloneTable())
}

func TestObject_Columns(t *testing.T) {
	table := NewObject("t", Table, tableStmt("t", "a", "b"))
	cols := table.Columns()
	require.Len(t, cols, 2)
	assert.Equal(t, "b", cols[1].Name)

	view := NewObject("v", View, &core.CreateViewStmt{
		Query: &core.SelectStmt{Items: []*core.SelectItem{
			{Expr: core.NewName("t", "a")},
			{Expr: &core.Literal{Kind: core.LiteralNumber, Value: "1"}, Alias: "one"},
			{Expr: &core.Literal{Kind: core.LiteralNumber, Value: "2"}},
		}},
	})
	cols = view.Columns()
	require.Len(t, cols, 2)
	assert.Equal(t, "a", cols[0].Name)
	assert.Equal(t, "one", cols[1].Name)
}

func TestObjectType_String(t *testing.T) {
	assert.Equal(t, "TABLE", Table.String())
	assert.Equal(t, "FUNCTION", Function.String())
	assert.Equal(t, "UNKNOWN", ObjectType(42).String())
}

package schema_test

import (
	"testing"

	"github.com/leapstack-labs/leapschema/internal/testutil"
	"github.com/leapstack-labs/leapschema/pkg/core"
	"github.com/leapstack-labs/leapschema/pkg/dialect"
	"github.com/leapstack-labs/leapschema/pkg/parser"
	"github.com/leapstack-labs/leapschema/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSchema(t *testing.T, d *dialect.Dialect) *schema.Schema {
	t.Helper()
	s, err := schema.New("test", d, schema.WithLogger(testutil.NewTestLogger(t)))
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	_, err := schema.New("", dialect.ANSI)
	assert.ErrorIs(t, err, schema.ErrNameRequired)

	_, err = schema.New("s", nil)
	assert.ErrorIs(t, err, dialect.ErrDialectRequired)

	s, err := schema.New("shop", dialect.MySQL, schema.WithLogger(nil))
	require.NoError(t, err)
	assert.Equal(t, "shop", s.Name())
	assert.Same(t, dialect.MySQL, s.Dialect())
	assert.Empty(t, s.Objects())
}

func TestAcceptDDL_EndToEnd(t *testing.T) {
	s := newSchema(t, dialect.MySQL)
	changed, err := s.AcceptDDL(`
		CREATE TABLE t1 (id INT);
		CREATE TABLE t2 (id INT);
		CREATE VIEW v1 AS SELECT id FROM t1 JOIN t2 ON t1.id = t2.id;`)
	require.NoError(t, err)
	assert.Equal(t, 3, changed)

	view := s.FindTableOrView("v1")
	require.NotNil(t, view)
	query := view.Statement().(*core.CreateViewStmt).Query
	require.NotNil(t, query)

	ref, err := parser.ParseExpr("t1.id", s.Dialect())
	require.NoError(t, err)

	r := s.NewResolver()
	col := r.Column(query.From, ref)
	require.NotNil(t, col)
	assert.Same(t, s.FindTable("t1").FindColumn("id"), col)
	assert.NotSame(t, s.FindTable("t2").FindColumn("id"), col)
}

func TestAcceptDDL_ParseErrorAppliesNothing(t *testing.T) {
	s := newSchema(t, dialect.ANSI)
	_, err := s.AcceptDDL(`
		CREATE TABLE ok (id INT);
		CREATE TABLE broken (id INT UNSIGNED);`)
	require.Error(t, err)

	var perr *parser.ParseError
	assert.ErrorAs(t, err, &perr)
	assert.Nil(t, s.FindTable("ok"))
}

func TestSchema_Delegations(t *testing.T) {
	s := newSchema(t, dialect.Oracle)
	_, err := s.AcceptDDL(`
		CREATE TABLE emp (id NUMBER, dept_id NUMBER);
		CREATE TABLE dept (id NUMBER, name VARCHAR2(30));
		CREATE VIEW emp_v AS SELECT id FROM emp;
		CREATE SEQUENCE emp_seq START WITH 1;
		CREATE INDEX emp_idx ON emp (dept_id);
		CREATE OR REPLACE FUNCTION emp_count RETURN NUMBER IS BEGIN RETURN 1; END;`)
	require.NoError(t, err)

	assert.Equal(t, 2, s.TableCount())
	assert.Equal(t, 1, s.ViewCount())
	assert.True(t, s.IsSequence("emp_seq"))
	assert.NotNil(t, s.FindFunction("EMP_COUNT"))
	assert.Nil(t, s.FindTable("emp_v"))
	assert.Len(t, s.Objects(), 5)
	assert.Len(t, s.Functions(), 1)
	assert.Same(t, s.Catalog().FindTable("emp"), s.FindTable("EMP"))
}

func TestSchema_SelectItems(t *testing.T) {
	s := newSchema(t, dialect.ANSI)
	_, err := s.AcceptDDL(`
		CREATE TABLE orders (id INT, customer_id INT, total DECIMAL(10, 2));
		CREATE TABLE customers (id INT, name VARCHAR(50));`)
	require.NoError(t, err)

	sel, err := s.ParseQuery(`SELECT o.id, c.name, MAX(o.total) AS top, COUNT(*) AS n, 1 AS one
		FROM orders o JOIN customers c ON o.customer_id = c.id`)
	require.NoError(t, err)

	refs := s.NewResolver().SelectItems(sel)
	require.Len(t, refs, 5)

	type got struct{ table, column string }
	var out []got
	for _, ref := range refs {
		var g got
		if ref.Table != nil {
			g.table = ref.Table.DisplayName()
		}
		if ref.Column != nil {
			g.column = ref.Column.Name
		}
		out = append(out, g)
	}
	assert.Equal(t, []got{
		{"orders", "id"},
		{"customers", "name"},
		{"orders", "total"},
		{"", ""},
		{"", ""},
	}, out)

	_, err = s.ParseQuery("SELECT a + FROM t")
	assert.Error(t, err)
}

package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapschema/pkg/core"
)

func TestGet(t *testing.T) {
	tests := []struct {
		name string
		want *Dialect
	}{
		{"mysql", MySQL},
		{"MySQL", MySQL},
		{"mariadb", MySQL},
		{"oracle", Oracle},
		{"ansi", ANSI},
		{"postgres", ANSI},
		{"PostgreSQL", ANSI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ok := Get(tt.name)
			require.True(t, ok)
			assert.Same(t, tt.want, d)
		})
	}
}

func TestLookup(t *testing.T) {
	t.Run("known", func(t *testing.T) {
		d, err := Lookup("oracle")
		require.NoError(t, err)
		assert.Equal(t, "oracle", d.Name)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := Lookup("sybase")
		require.ErrorIs(t, err, ErrUnknownDialect)
		assert.Contains(t, err.Error(), "mysql")
	})

	t.Run("empty", func(t *testing.T) {
		_, err := Lookup("")
		assert.ErrorIs(t, err, ErrDialectRequired)
	})
}

func TestList(t *testing.T) {
	// aliases are not listed
	assert.Equal(t, []string{"ansi", "mysql", "oracle"}, List())
}

func TestTableTemplate(t *testing.T) {
	stmt := &core.CreateTableStmt{
		Name: core.NewName("b"),
		Like: core.NewName("a"),
	}

	t.Run("mysql returns like target", func(t *testing.T) {
		got := MySQL.TableTemplate(stmt)
		require.NotNil(t, got)
		assert.Equal(t, "a", got.SimpleName())
	})

	t.Run("oracle has no template", func(t *testing.T) {
		assert.Nil(t, Oracle.TableTemplate(stmt))
	})

	t.Run("nil statement", func(t *testing.T) {
		assert.Nil(t, MySQL.TableTemplate(nil))
	})

	t.Run("custom hook", func(t *testing.T) {
		d := NewDialect("test").
			TableTemplate(func(*core.CreateTableStmt) core.Name { return core.NewName("tmpl") }).
			Build()
		assert.Equal(t, "tmpl", d.TableTemplate(stmt).SimpleName())
		assert.False(t, d.AllowsCreateLike())
	})
}

func TestIsAggregate(t *testing.T) {
	tests := []struct {
		d    *Dialect
		name string
		want bool
	}{
		{MySQL, "COUNT", true},
		{MySQL, "json_arrayagg", true},
		{Oracle, "json_arrayagg", false},
		{Oracle, "XMLAGG", true},
		{ANSI, "array_agg", true},
		{ANSI, "coalesce", false},
	}

	for _, tt := range tests {
		t.Run(tt.d.Name+"/"+tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.d.IsAggregate(tt.name))
		})
	}
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, "`a``b`", MySQL.QuoteIdentifier("a`b"))
	assert.Equal(t, `"a""b"`, ANSI.QuoteIdentifier(`a"b`))
	assert.True(t, MySQL.IsQuoteStart('`'))
	assert.False(t, MySQL.IsQuoteStart('"'))
	assert.True(t, Oracle.IsQuoteStart('"'))
}

func TestBuilderChaining(t *testing.T) {
	d := NewDialect("test").
		Identifiers("[", "]", "]]").
		Aliases("T1").
		Aggregates("FIRST").
		WithDataTypes("INTEGER").
		CreateLike().
		Build()

	require.NotNil(t, d)
	assert.Equal(t, "test", d.Name)
	assert.Equal(t, []string{"t1"}, d.Aliases())
	assert.True(t, d.IsAggregate("first"))
	assert.True(t, d.AllowsCreateLike())
	assert.False(t, d.AllowsUnsigned())
	assert.Equal(t, []string{"INTEGER"}, d.DataTypes())
	assert.Equal(t, "[x]]]", d.QuoteIdentifier("x]"))
}

// Package dialect provides the SQL dialect hook sets used by the parser and
// the DDL ingestor.
//
// A dialect is a small parameter object rather than a class hierarchy: the
// lexer asks it how identifiers are quoted, the parser asks it which clauses
// it accepts, and the ingestor asks it whether a CREATE TABLE names a
// structural template. Built-in dialects register themselves in init.
package dialect

import (
	"strings"

	"github.com/leapstack-labs/leapschema/pkg/core"
)

// IdentifierConfig describes how a dialect quotes identifiers.
type IdentifierConfig struct {
	Quote    string // opening quote, e.g. ` or "
	QuoteEnd string // closing quote
	Escape   string // escaped closing quote inside an identifier, e.g. ``
}

// TemplateFunc returns the table a CREATE TABLE statement copies its
// structure from, or nil when the statement has no template.
type TemplateFunc func(stmt *core.CreateTableStmt) core.Name

// Dialect represents a SQL dialect configuration.
type Dialect struct {
	Name        string
	Identifiers IdentifierConfig

	aliases       []string
	aggregates    map[string]struct{}
	dataTypes     []string
	allowLike     bool // CREATE TABLE ... LIKE
	unsignedTypes bool // INT UNSIGNED
	tableTemplate TemplateFunc

	// Lexing behavior
	hashComments      bool // # starts a line comment
	backslashEscapes  bool // \' inside string literals
	doubleQuoteString bool // "..." is a string, not an identifier
}

// Aliases returns the alternate names the dialect is registered under.
func (d *Dialect) Aliases() []string {
	return d.aliases
}

// IsAggregate reports whether name is an aggregate function in this dialect.
func (d *Dialect) IsAggregate(name string) bool {
	if core.IsAggregateName(name) {
		return true
	}
	_, ok := d.aggregates[strings.ToLower(name)]
	return ok
}

// DataTypes returns the type names the dialect documents.
func (d *Dialect) DataTypes() []string {
	return d.dataTypes
}

// AllowsCreateLike reports whether CREATE TABLE ... LIKE is accepted.
func (d *Dialect) AllowsCreateLike() bool {
	return d.allowLike
}

// AllowsUnsigned reports whether numeric types may carry UNSIGNED.
func (d *Dialect) AllowsUnsigned() bool {
	return d.unsignedTypes
}

// TableTemplate returns the structural template of a CREATE TABLE statement
// under this dialect's rules, or nil.
func (d *Dialect) TableTemplate(stmt *core.CreateTableStmt) core.Name {
	if d.tableTemplate == nil || stmt == nil {
		return nil
	}
	return d.tableTemplate(stmt)
}

// HashComments reports whether # starts a line comment.
func (d *Dialect) HashComments() bool {
	return d.hashComments
}

// BackslashEscapes reports whether backslash escapes apply inside strings.
func (d *Dialect) BackslashEscapes() bool {
	return d.backslashEscapes
}

// DoubleQuotedStrings reports whether "..." lexes as a string literal.
func (d *Dialect) DoubleQuotedStrings() bool {
	return d.doubleQuoteString
}

// IsQuoteStart reports whether ch opens a quoted identifier.
func (d *Dialect) IsQuoteStart(ch byte) bool {
	return d.Identifiers.Quote != "" && d.Identifiers.Quote[0] == ch
}

// QuoteIdentifier quotes an identifier using the dialect's quote characters.
func (d *Dialect) QuoteIdentifier(name string) string {
	escaped := strings.ReplaceAll(name, d.Identifiers.QuoteEnd, d.Identifiers.Escape)
	return d.Identifiers.Quote + escaped + d.Identifiers.QuoteEnd
}

// Builder provides a fluent API for constructing dialects.
type Builder struct {
	dialect *Dialect
}

// NewDialect creates a new dialect builder with the given name. Identifiers
// default to ANSI double quotes.
func NewDialect(name string) *Builder {
	return &Builder{
		dialect: &Dialect{
			Name: name,
			Identifiers: IdentifierConfig{
				Quote:    `"`,
				QuoteEnd: `"`,
				Escape:   `""`,
			},
			aggregates: make(map[string]struct{}),
		},
	}
}

// Identifiers sets the identifier quoting configuration.
func (b *Builder) Identifiers(quote, quoteEnd, escape string) *Builder {
	b.dialect.Identifiers = IdentifierConfig{Quote: quote, QuoteEnd: quoteEnd, Escape: escape}
	return b
}

// Aliases adds alternate registry names.
func (b *Builder) Aliases(names ...string) *Builder {
	for _, n := range names {
		b.dialect.aliases = append(b.dialect.aliases, strings.ToLower(n))
	}
	return b
}

// Aggregates adds dialect-specific aggregate functions on top of the
// standard set.
func (b *Builder) Aggregates(funcs ...string) *Builder {
	for _, f := range funcs {
		b.dialect.aggregates[strings.ToLower(f)] = struct{}{}
	}
	return b
}

// WithDataTypes sets the documented data types.
func (b *Builder) WithDataTypes(types ...string) *Builder {
	b.dialect.dataTypes = types
	return b
}

// UnsignedTypes enables the UNSIGNED type modifier.
func (b *Builder) UnsignedTypes() *Builder {
	b.dialect.unsignedTypes = true
	return b
}

// MySQLLexing enables # comments, backslash escapes in strings and
// double-quoted strings.
func (b *Builder) MySQLLexing() *Builder {
	b.dialect.hashComments = true
	b.dialect.backslashEscapes = true
	b.dialect.doubleQuoteString = true
	return b
}

// CreateLike enables CREATE TABLE ... LIKE and installs the template hook
// that returns the LIKE target.
func (b *Builder) CreateLike() *Builder {
	b.dialect.allowLike = true
	b.dialect.tableTemplate = likeTemplate
	return b
}

// TableTemplate installs a custom structural-template hook.
func (b *Builder) TableTemplate(fn TemplateFunc) *Builder {
	b.dialect.tableTemplate = fn
	return b
}

// Build returns the constructed dialect.
func (b *Builder) Build() *Dialect {
	return b.dialect
}

func likeTemplate(stmt *core.CreateTableStmt) core.Name {
	return stmt.Like
}

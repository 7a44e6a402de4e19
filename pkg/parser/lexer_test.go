package parser_test

import (
	"testing"

	"github.com/leapstack-labs/leapschema/pkg/dialect"
	"github.com/leapstack-labs/leapschema/pkg/parser"
	"github.com/leapstack-labs/leapschema/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenTypes(toks []token.Token) []token.TokenType {
	types := make([]token.TokenType, len(toks))
	for i, tok := range toks {
		types[i] = tok.Type
	}
	return types
}

func TestLexer_IdentifierQuoting(t *testing.T) {
	tests := []struct {
		name    string
		dialect *dialect.Dialect
		input   string
		want    []token.TokenType
		quoted  string
	}{
		{
			name:    "mysql backticks",
			dialect: dialect.MySQL,
			input:   "SELECT `my col`",
			want:    []token.TokenType{token.SELECT, token.IDENT, token.EOF},
			quoted:  "my col",
		},
		{
			name:    "mysql doubled backtick",
			dialect: dialect.MySQL,
			input:   "SELECT `a``b`",
			want:    []token.TokenType{token.SELECT, token.IDENT, token.EOF},
			quoted:  "a`b",
		},
		{
			name:    "oracle double quotes",
			dialect: dialect.Oracle,
			input:   `SELECT "Mixed"`,
			want:    []token.TokenType{token.SELECT, token.IDENT, token.EOF},
			quoted:  "Mixed",
		},
		{
			name:    "ansi double quotes",
			dialect: dialect.ANSI,
			input:   `SELECT "select"`,
			want:    []token.TokenType{token.SELECT, token.IDENT, token.EOF},
			quoted:  "select",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := parser.Tokenize(tt.input, tt.dialect)
			require.Equal(t, tt.want, tokenTypes(toks))
			assert.Equal(t, tt.quoted, toks[1].Literal)
			assert.True(t, toks[1].Quoted)
		})
	}
}

func TestLexer_BacktickOutsideMySQL(t *testing.T) {
	toks := parser.Tokenize("SELECT `a`", dialect.ANSI)
	require.Len(t, toks, 5)
	assert.Equal(t, token.ILLEGAL, toks[1].Type)
	assert.Equal(t, token.IDENT, toks[2].Type)
	assert.False(t, toks[2].Quoted)
}

func TestLexer_DoubleQuotedStringMySQL(t *testing.T) {
	toks := parser.Tokenize(`SELECT "it\"s"`, dialect.MySQL)
	require.Len(t, toks, 3)
	assert.Equal(t, token.STRING, toks[1].Type)
	assert.Equal(t, `it"s`, toks[1].Literal)
}

func TestLexer_Strings(t *testing.T) {
	tests := []struct {
		name    string
		dialect *dialect.Dialect
		input   string
		want    string
	}{
		{"doubled quote", dialect.ANSI, `'it''s'`, "it's"},
		{"backslash kept in ansi", dialect.ANSI, `'a\n'`, `a\n`},
		{"backslash escape in mysql", dialect.MySQL, `'a\'b'`, "a'b"},
		{"dollar quoted", dialect.ANSI, "$$ SELECT 1; $$", " SELECT 1; "},
		{"tagged dollar quoted", dialect.ANSI, "$fn$ a $$ b $fn$", " a $$ b "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := parser.Tokenize(tt.input, tt.dialect)
			require.Len(t, toks, 2)
			assert.Equal(t, token.STRING, toks[0].Type)
			assert.Equal(t, tt.want, toks[0].Literal)
		})
	}
}

func TestLexer_Comments(t *testing.T) {
	input := "-- line\nSELECT /* block */ a # trailing\n"

	toks := parser.Tokenize(input, dialect.MySQL)
	assert.Equal(t, []token.TokenType{token.SELECT, token.IDENT, token.EOF}, tokenTypes(toks))

	// # is part of identifiers outside MySQL
	toks = parser.Tokenize("SELECT a#b", dialect.Oracle)
	require.Len(t, toks, 3)
	assert.Equal(t, "a#b", toks[1].Literal)
}

func TestLexer_Operators(t *testing.T) {
	toks := parser.Tokenize("a <> b != c <= d >= e || f", dialect.ANSI)
	assert.Equal(t, []token.TokenType{
		token.IDENT, token.NE, token.IDENT, token.NE, token.IDENT, token.LE,
		token.IDENT, token.GE, token.IDENT, token.DPIPE, token.IDENT, token.EOF,
	}, tokenTypes(toks))
}

func TestLexer_Numbers(t *testing.T) {
	toks := parser.Tokenize("1 2.5 1e10 0x1F", dialect.MySQL)
	require.Len(t, toks, 5)
	for i, want := range []string{"1", "2.5", "1e10", "0x1F"} {
		assert.Equal(t, token.NUMBER, toks[i].Type)
		assert.Equal(t, want, toks[i].Literal)
	}
}

func TestLexer_Positions(t *testing.T) {
	toks := parser.Tokenize("SELECT a\nFROM t", dialect.ANSI)
	require.Len(t, toks, 5)

	from := toks[2]
	assert.Equal(t, token.FROM, from.Type)
	assert.Equal(t, 2, from.Pos.Line)
	assert.Equal(t, 1, from.Pos.Column)
	assert.Equal(t, 9, from.Pos.Offset)
	assert.Equal(t, 13, from.End.Offset)
}

func TestLexer_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unterminated string", "SELECT 'abc", parser.ErrUnterminatedString},
		{"unterminated identifier", `SELECT "abc`, parser.ErrUnterminatedIdent},
		{"unterminated comment", "SELECT /* abc", parser.ErrUnterminatedComment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := parser.NewLexer(tt.input, dialect.ANSI)
			for l.NextToken().Type != token.EOF {
			}
			require.Len(t, l.Errors(), 1)
			assert.Contains(t, l.Errors()[0].Error(), tt.want)
		})
	}
}

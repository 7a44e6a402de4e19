// Package parser provides dialect-aware parsing of SQL scripts into the
// syntax tree defined in pkg/core.
//
// # Usage
//
//	d, err := dialect.Lookup("mysql")
//	stmts, err := parser.ParseStatements(script, d)
//
// The parser requires a dialect: it decides identifier quoting, comment
// syntax and which dialect-only clauses (CREATE TABLE ... LIKE) are valid.
//
// # Grammar Overview
//
//	script        → statement (";" statement)* [";"]
//	statement     → create | alter_table | drop_sequence | select | other
//	create        → CREATE [OR REPLACE] [modifiers]
//	                (TABLE | VIEW | INDEX | SEQUENCE | FUNCTION) ...
//	other         → any tokens up to ";" (kept verbatim as a RawStmt)
//
// DDL words such as TABLE or SEQUENCE are not reserved; they are matched in
// context. See each file for detailed grammar rules for that section.
package parser

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapschema/pkg/core"
	"github.com/leapstack-labs/leapschema/pkg/dialect"
	"github.com/leapstack-labs/leapschema/pkg/token"
)

// Parser parses SQL into an AST.
type Parser struct {
	input   string
	lexer   *Lexer
	token   token.Token // current token
	peek    token.Token // lookahead token
	peek2   token.Token // second lookahead token
	prevEnd token.Position
	errors  []error
	dialect *dialect.Dialect // required
}

// NewParser creates a new parser for the given SQL input with dialect support.
func NewParser(sql string, d *dialect.Dialect) *Parser {
	p := &Parser{
		input:   sql,
		lexer:   NewLexer(sql, d),
		dialect: d,
	}
	// Read three tokens to initialize current, peek, and peek2
	p.nextToken()
	p.nextToken()
	p.nextToken()
	return p
}

// ParseStatements parses a script of semicolon-separated statements.
// Statements the parser does not model come back as *core.RawStmt. On error
// no statements are returned.
func ParseStatements(sql string, d *dialect.Dialect) ([]core.Stmt, error) {
	if d == nil {
		return nil, dialect.ErrDialectRequired
	}
	p := NewParser(sql, d)
	stmts := p.parseScript()
	if err := p.err(); err != nil {
		return nil, err
	}
	return stmts, nil
}

// ParseSelect parses a single query. A trailing semicolon is allowed.
func ParseSelect(sql string, d *dialect.Dialect) (*core.SelectStmt, error) {
	if d == nil {
		return nil, dialect.ErrDialectRequired
	}
	p := NewParser(sql, d)
	start := p.token.Pos
	stmt := p.parseSelectStmt()
	stmt.SetSpan(token.Span{Start: start, End: p.prevEnd})
	p.match(token.SEMICOLON)
	p.expectEOF()
	if err := p.err(); err != nil {
		return nil, err
	}
	return stmt, nil
}

// ParseExpr parses a single expression.
func ParseExpr(sql string, d *dialect.Dialect) (core.Expr, error) {
	if d == nil {
		return nil, dialect.ErrDialectRequired
	}
	p := NewParser(sql, d)
	expr := p.parseExpression()
	p.expectEOF()
	if err := p.err(); err != nil {
		return nil, err
	}
	return expr, nil
}

// Dialect returns the parser's dialect.
func (p *Parser) Dialect() *dialect.Dialect {
	return p.dialect
}

// err returns the first lexical or parse error.
func (p *Parser) err() error {
	if errs := p.lexer.Errors(); len(errs) > 0 {
		return errs[0]
	}
	if len(p.errors) > 0 {
		return p.errors[0]
	}
	return nil
}

// ---------- Script ----------

// spanner is implemented by every statement through core.NodeInfo.
type spanner interface {
	SetSpan(token.Span)
}

// parseScript parses statements until EOF. After an error the parser skips
// to the next semicolon so later statements still report their own errors.
func (p *Parser) parseScript() []core.Stmt {
	var stmts []core.Stmt
	for {
		for p.match(token.SEMICOLON) {
		}
		if p.check(token.EOF) {
			return stmts
		}

		before := len(p.errors)
		start := p.token.Pos
		stmt := p.parseStatement()
		if stmt != nil {
			if s, ok := stmt.(spanner); ok {
				s.SetSpan(token.Span{Start: start, End: p.prevEnd})
			}
			stmts = append(stmts, stmt)
		}

		if len(p.errors) > before {
			p.skipStatement()
			continue
		}
		if !p.check(token.SEMICOLON) && !p.check(token.EOF) {
			p.addError(fmt.Sprintf(ErrExpectedStatementEnd, describe(p.token)))
			p.skipStatement()
		}
	}
}

// parseStatement dispatches on the leading keyword.
func (p *Parser) parseStatement() core.Stmt {
	switch {
	case p.check(token.SELECT), p.check(token.LPAREN) && p.checkPeek(token.SELECT):
		return p.parseSelectStmt()
	case p.check(token.CREATE):
		return p.parseCreate()
	case p.check(token.ALTER) && p.peekWord("table"):
		return p.parseAlterTable()
	case p.check(token.DROP) && p.peekWord("sequence"):
		return p.parseDropSequence()
	}
	return p.parseRaw(p.token.Pos, strings.ToUpper(p.token.Literal))
}

// parseRaw consumes the rest of a statement starting at start and keeps its
// text verbatim.
func (p *Parser) parseRaw(start token.Position, verb string) *core.RawStmt {
	p.skipStatement()
	return &core.RawStmt{
		Verb: verb,
		Text: token.Span{Start: start, End: p.prevEnd}.Text(p.input),
	}
}

// skipStatement consumes tokens up to the statement's terminating semicolon
// (not consumed). BEGIN ... END blocks are skipped whole so semicolons
// inside routine bodies do not end the statement.
func (p *Parser) skipStatement() {
	p.skipBlock(false)
}

// skipBlock implements skipStatement. For routines, an IS/AS/DECLARE at
// depth zero opens a declaration section: its semicolons belong to the
// routine until the BEGIN that follows.
func (p *Parser) skipBlock(routine bool) {
	depth := 0
	pendingBegin := false
	for !p.check(token.EOF) {
		switch {
		case p.check(token.SEMICOLON) && depth == 0 && !pendingBegin:
			return
		case routine && depth == 0 && (p.check(token.IS) || p.check(token.AS) || p.checkWord("declare")):
			pendingBegin = !p.checkPeek(token.STRING)
		case p.checkWord("begin"):
			pendingBegin = false
			depth++
		case p.check(token.CASE) && depth > 0:
			depth++
		case p.check(token.END) && depth > 0:
			if p.peekWord("if") || p.peekWord("loop") || p.peekWord("while") || p.peekWord("repeat") {
				p.nextToken()
			} else {
				if p.checkPeek(token.CASE) {
					p.nextToken()
				}
				depth--
			}
		}
		p.nextToken()
	}
}

// ---------- Token Helpers ----------

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.prevEnd = p.token.End
	p.token = p.peek
	p.peek = p.peek2
	p.peek2 = p.lexer.NextToken()
}

// check returns true if the current token is of the given type.
func (p *Parser) check(t token.TokenType) bool {
	return p.token.Type == t
}

// checkPeek returns true if the peek token is of the given type.
func (p *Parser) checkPeek(t token.TokenType) bool {
	return p.peek.Type == t
}

// match consumes the current token if it matches and returns true.
func (p *Parser) match(t token.TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	return false
}

// expect consumes the current token if it matches, otherwise adds an error.
func (p *Parser) expect(t token.TokenType) bool {
	if p.check(t) {
		p.nextToken()
		return true
	}
	p.addError(fmt.Sprintf(ErrUnexpectedToken, describe(p.token), t))
	return false
}

func (p *Parser) expectEOF() {
	if !p.check(token.EOF) {
		p.addError(fmt.Sprintf(ErrUnexpectedToken, describe(p.token), token.EOF))
	}
}

// addError adds a parse error at the current token.
func (p *Parser) addError(msg string) {
	p.errors = append(p.errors, &ParseError{
		Pos:     p.token.Pos,
		Message: msg,
	})
}

// ---------- Contextual Words ----------

// isWord reports whether tok is the unquoted identifier w.
func isWord(tok token.Token, w string) bool {
	return tok.Type == token.IDENT && !tok.Quoted && strings.EqualFold(tok.Literal, w)
}

// checkWord returns true if the current token is the contextual word w.
func (p *Parser) checkWord(w string) bool {
	return isWord(p.token, w)
}

// peekWord returns true if the peek token is the contextual word w.
func (p *Parser) peekWord(w string) bool {
	return isWord(p.peek, w)
}

// matchWord consumes the contextual word w if present.
func (p *Parser) matchWord(w string) bool {
	if p.checkWord(w) {
		p.nextToken()
		return true
	}
	return false
}

// expectWord consumes the contextual word w, otherwise adds an error.
func (p *Parser) expectWord(w string) bool {
	if p.matchWord(w) {
		return true
	}
	p.addError(fmt.Sprintf(ErrUnexpectedToken, describe(p.token), strings.ToUpper(w)))
	return false
}

// matchIfNotExists consumes IF NOT EXISTS.
func (p *Parser) matchIfNotExists() bool {
	if p.checkWord("if") && p.checkPeek(token.NOT) && p.peek2.Type == token.EXISTS {
		p.nextToken()
		p.nextToken()
		p.nextToken()
		return true
	}
	return false
}

// matchIfExists consumes IF EXISTS.
func (p *Parser) matchIfExists() bool {
	if p.checkWord("if") && p.checkPeek(token.EXISTS) {
		p.nextToken()
		p.nextToken()
		return true
	}
	return false
}

// ---------- Names ----------

// parseName parses a possibly qualified name: a, s.a, c.s.a.
func (p *Parser) parseName() core.Name {
	if !p.check(token.IDENT) {
		p.addError(fmt.Sprintf(ErrUnexpectedToken, describe(p.token), "name"))
		return nil
	}
	var name core.Name = &core.Identifier{Name: p.token.Literal, Quoted: p.token.Quoted}
	p.nextToken()

	for p.check(token.DOT) && p.checkPeek(token.IDENT) {
		p.nextToken()
		name = &core.QualifiedRef{Owner: name, Name: p.token.Literal}
		p.nextToken()
	}
	return name
}

// parseIdent parses a single identifier.
func (p *Parser) parseIdent() string {
	if !p.check(token.IDENT) {
		p.addError(fmt.Sprintf(ErrUnexpectedToken, describe(p.token), token.IDENT))
		return ""
	}
	name := p.token.Literal
	p.nextToken()
	return name
}

// parseIdentList parses "(" ident ("," ident)* ")". Index key parts may carry
// a prefix length or ordering, which is dropped: (name(10) DESC) -> [name].
func (p *Parser) parseIdentList() []string {
	if !p.expect(token.LPAREN) {
		return nil
	}
	var names []string
	for {
		names = append(names, p.parseIdent())
		if p.check(token.LPAREN) {
			p.skipParens()
		}
		if !p.match(token.ASC) {
			p.match(token.DESC)
		}
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN)
	return names
}

// skipParens consumes a balanced parenthesized group starting at "(".
func (p *Parser) skipParens() {
	if !p.check(token.LPAREN) {
		return
	}
	depth := 0
	for !p.check(token.EOF) {
		switch p.token.Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
			if depth == 0 {
				p.nextToken()
				return
			}
		}
		p.nextToken()
	}
}

// textFrom returns the source text from start up to the last consumed token.
func (p *Parser) textFrom(start token.Position) string {
	return token.Span{Start: start, End: p.prevEnd}.Text(p.input)
}

// describe renders a token for error messages.
func describe(tok token.Token) string {
	switch tok.Type {
	case token.IDENT, token.NUMBER, token.STRING, token.ILLEGAL:
		return fmt.Sprintf("%s %q", tok.Type, tok.Literal)
	}
	return tok.Type.String()
}

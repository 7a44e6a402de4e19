package parser

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapschema/pkg/core"
	"github.com/leapstack-labs/leapschema/pkg/token"
)

// Expression parsing using precedence climbing.
//
// Precedence levels:
//
//	precOr         = 1
//	precAnd        = 2
//	precNot        = 3
//	precComparison = 4  (=, !=, <, >, <=, >=, IS, IN, BETWEEN, LIKE)
//	precAddition   = 5  (+, -, ||)
//	precMultiply   = 6  (*, /, %)
//	precUnary      = 7  (-, +)
//
// Grammar:
//
//	primary       → literal | name | func_call | paren_expr | case_expr | cast_expr | exists_expr
//	literal       → NUMBER | STRING | TRUE | FALSE | NULL | (DATE|TIME|TIMESTAMP|INTERVAL) STRING
//	name          → identifier ("." identifier)* ["." "*"]
//	func_call     → name "(" [DISTINCT|ALL] [expr_list | "*"] ")" [WITHIN GROUP (...)] [OVER ...]

const (
	precNone = iota
	precOr
	precAnd
	precNot
	precComparison
	precAddition
	precMultiply
	precUnary
)

// typedLiteralWords prefix a string literal: DATE '2024-01-01'.
var typedLiteralWords = map[string]bool{
	"date":      true,
	"datetime":  true,
	"time":      true,
	"timestamp": true,
	"interval":  true,
}

// parseExpression parses an expression using precedence climbing.
func (p *Parser) parseExpression() core.Expr {
	return p.parseExpressionWithPrecedence(precNone + 1)
}

// parseExpressionWithPrecedence parses operators binding at least as tightly
// as minPrecedence.
func (p *Parser) parseExpressionWithPrecedence(minPrecedence int) core.Expr {
	left := p.parsePrefixExpr()
	if left == nil {
		return nil
	}

	for {
		prec := infixPrecedence(p.token.Type)
		if prec < minPrecedence {
			break
		}
		left = p.parseInfixExpr(left, prec)
		if left == nil {
			break
		}
	}
	return left
}

// parsePrefixExpr parses prefix expressions (unary operators and primary expressions).
func (p *Parser) parsePrefixExpr() core.Expr {
	switch p.token.Type {
	case token.NOT:
		p.nextToken()
		if p.check(token.EXISTS) {
			return p.parseExistsExpr(true)
		}
		return &core.UnaryExpr{Op: token.NOT, Expr: p.parseExpressionWithPrecedence(precNot)}
	case token.MINUS, token.PLUS:
		op := p.token.Type
		p.nextToken()
		return &core.UnaryExpr{Op: op, Expr: p.parseExpressionWithPrecedence(precUnary)}
	}
	return p.parsePrimary()
}

// infixPrecedence returns the precedence of t as an infix operator, or
// precNone.
func infixPrecedence(t token.TokenType) int {
	switch t {
	case token.OR:
		return precOr
	case token.AND:
		return precAnd
	case token.EQ, token.NE, token.LT, token.GT, token.LE, token.GE,
		token.IS, token.IN, token.BETWEEN, token.LIKE, token.NOT:
		return precComparison
	case token.PLUS, token.MINUS, token.DPIPE:
		return precAddition
	case token.STAR, token.SLASH, token.PERCENT:
		return precMultiply
	}
	return precNone
}

// parseInfixExpr parses an infix expression given the left operand and current precedence.
func (p *Parser) parseInfixExpr(left core.Expr, prec int) core.Expr {
	switch p.token.Type {
	case token.NOT:
		return p.parseNotInfixExpr(left)
	case token.IS:
		return p.parseIsExpr(left)
	case token.IN:
		p.nextToken()
		return p.parseInExpr(left, false)
	case token.BETWEEN:
		p.nextToken()
		return p.parseBetweenExpr(left, false)
	case token.LIKE:
		p.nextToken()
		return p.parseLikeExpr(left, false)
	}

	op := p.token.Type
	p.nextToken()
	// left-associative
	right := p.parseExpressionWithPrecedence(prec + 1)
	return &core.BinaryExpr{Left: left, Op: op, Right: right}
}

// parseNotInfixExpr handles NOT as an infix modifier (NOT IN, NOT BETWEEN, NOT LIKE).
func (p *Parser) parseNotInfixExpr(left core.Expr) core.Expr {
	p.nextToken() // consume NOT

	switch p.token.Type {
	case token.IN:
		p.nextToken()
		return p.parseInExpr(left, true)
	case token.BETWEEN:
		p.nextToken()
		return p.parseBetweenExpr(left, true)
	case token.LIKE:
		p.nextToken()
		return p.parseLikeExpr(left, true)
	}
	p.addError("expected IN, BETWEEN, or LIKE after NOT")
	return left
}

// parseIsExpr parses IS [NOT] NULL / IS [NOT] TRUE / IS [NOT] FALSE.
func (p *Parser) parseIsExpr(left core.Expr) core.Expr {
	p.nextToken() // consume IS
	isNot := p.match(token.NOT)

	switch p.token.Type {
	case token.NULL:
		p.nextToken()
		return &core.IsNullExpr{Expr: left, Not: isNot}
	case token.TRUE, token.FALSE:
		lit := &core.Literal{Kind: core.LiteralBool, Value: strings.ToLower(p.token.Literal)}
		p.nextToken()
		var expr core.Expr = &core.BinaryExpr{Left: left, Op: token.IS, Right: lit}
		if isNot {
			expr = &core.UnaryExpr{Op: token.NOT, Expr: expr}
		}
		return expr
	}
	p.addError("expected NULL, TRUE, or FALSE after IS")
	return left
}

// parseInExpr parses the right side of [NOT] IN.
func (p *Parser) parseInExpr(left core.Expr, not bool) core.Expr {
	in := &core.InExpr{Expr: left, Not: not}
	if !p.check(token.LPAREN) {
		// POSITION(a IN b)
		in.Values = []core.Expr{p.parsePrimary()}
		return in
	}
	p.nextToken()
	if p.check(token.SELECT) {
		in.Query = p.parseSelectStmt()
	} else {
		in.Values = p.parseExpressionList()
	}
	p.expect(token.RPAREN)
	return in
}

// parseBetweenExpr parses a BETWEEN expression.
func (p *Parser) parseBetweenExpr(left core.Expr, not bool) core.Expr {
	between := &core.BetweenExpr{Expr: left, Not: not}
	// bounds bind tighter than AND
	between.Low = p.parseExpressionWithPrecedence(precAddition)
	p.expect(token.AND)
	between.High = p.parseExpressionWithPrecedence(precAddition)
	return between
}

// parseLikeExpr parses a LIKE expression with an optional ESCAPE clause.
func (p *Parser) parseLikeExpr(left core.Expr, not bool) core.Expr {
	like := &core.LikeExpr{Expr: left, Not: not}
	like.Pattern = p.parseExpressionWithPrecedence(precAddition)
	if p.matchWord("escape") {
		p.parsePrimary()
	}
	return like
}

// parseExpressionList parses a comma-separated list of expressions.
func (p *Parser) parseExpressionList() []core.Expr {
	var exprs []core.Expr
	for {
		exprs = append(exprs, p.parseExpression())
		if !p.match(token.COMMA) {
			break
		}
	}
	return exprs
}

// ---------- Primary Expressions ----------

// parsePrimary parses primary expressions.
func (p *Parser) parsePrimary() core.Expr {
	switch p.token.Type {
	case token.NUMBER:
		lit := &core.Literal{Kind: core.LiteralNumber, Value: p.token.Literal}
		p.nextToken()
		return lit
	case token.STRING:
		lit := &core.Literal{Kind: core.LiteralString, Value: p.token.Literal}
		p.nextToken()
		return lit
	case token.TRUE, token.FALSE:
		lit := &core.Literal{Kind: core.LiteralBool, Value: strings.ToLower(p.token.Literal)}
		p.nextToken()
		return lit
	case token.NULL:
		p.nextToken()
		return &core.Literal{Kind: core.LiteralNull, Value: "null"}
	case token.CASE:
		return p.parseCaseExpr()
	case token.CAST:
		return p.parseCastExpr()
	case token.EXISTS:
		return p.parseExistsExpr(false)
	case token.IDENT:
		return p.parseIdentifierExpr()
	case token.LEFT, token.RIGHT:
		// LEFT(s, n) and RIGHT(s, n) are functions outside FROM
		if p.checkPeek(token.LPAREN) {
			name := p.token.Literal
			p.nextToken()
			return p.parseCall(name)
		}
	case token.LPAREN:
		return p.parseParenExpr()
	case token.STAR:
		p.nextToken()
		return &core.Wildcard{}
	}

	p.addError(fmt.Sprintf("unexpected token in expression: %s", describe(p.token)))
	p.nextToken()
	return nil
}

// parseIdentifierExpr parses a name, a function call or a typed literal.
func (p *Parser) parseIdentifierExpr() core.Expr {
	if !p.token.Quoted && typedLiteralWords[strings.ToLower(p.token.Literal)] && p.checkPeek(token.STRING) {
		interval := p.checkWord("interval")
		p.nextToken()
		lit := &core.Literal{Kind: core.LiteralString, Value: p.token.Literal}
		p.nextToken()
		if interval && p.check(token.IDENT) {
			p.nextToken() // unit
		}
		return lit
	}

	var name core.Name = &core.Identifier{Name: p.token.Literal, Quoted: p.token.Quoted}
	p.nextToken()

	for p.check(token.DOT) {
		p.nextToken()
		switch {
		case p.check(token.STAR):
			p.nextToken()
			return &core.QualifiedRef{Owner: name, Name: "*"}
		case p.check(token.IDENT):
			name = &core.QualifiedRef{Owner: name, Name: p.token.Literal}
			p.nextToken()
		default:
			p.addError(fmt.Sprintf(ErrUnexpectedToken, describe(p.token), "name after ."))
			return name
		}
	}

	if p.check(token.LPAREN) {
		return p.parseCall(core.FormatExpr(name))
	}
	return name
}

// parseCall parses the argument list of a call to name. Known aggregates
// become *core.AggregateCall; everything else is a *core.FuncCall.
func (p *Parser) parseCall(name string) core.Expr {
	p.expect(token.LPAREN)

	var (
		args     []core.Expr
		distinct bool
		star     bool
	)
	switch {
	case p.check(token.STAR):
		star = true
		p.nextToken()
	case !p.check(token.RPAREN):
		if p.match(token.DISTINCT) {
			distinct = true
		} else {
			p.match(token.ALL)
		}
		args = p.parseExpressionList()
	}

	// ORDER BY / SEPARATOR inside aggregates, FROM inside EXTRACT and TRIM
	p.skipToCloseParen()
	p.expect(token.RPAREN)
	p.skipCallSuffix()

	if !strings.Contains(name, ".") && p.dialect.IsAggregate(name) {
		return &core.AggregateCall{Name: name, Distinct: distinct, Star: star, Args: args}
	}
	if star {
		args = []core.Expr{&core.Wildcard{}}
	}
	return &core.FuncCall{Name: name, Args: args}
}

// skipToCloseParen consumes tokens up to the ")" closing the current group.
func (p *Parser) skipToCloseParen() {
	depth := 0
	for !p.check(token.EOF) {
		switch p.token.Type {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			if depth == 0 {
				return
			}
			depth--
		}
		p.nextToken()
	}
}

// skipCallSuffix consumes WITHIN GROUP (...), FILTER (...), KEEP (...) and
// OVER (...) / OVER name after a call.
func (p *Parser) skipCallSuffix() {
	for {
		switch {
		case p.checkWord("within") && p.checkPeek(token.GROUP):
			p.nextToken()
			p.nextToken()
			p.skipParens()
		case (p.checkWord("filter") || p.checkWord("keep")) && p.checkPeek(token.LPAREN):
			p.nextToken()
			p.skipParens()
		case p.checkWord("over"):
			p.nextToken()
			if p.check(token.LPAREN) {
				p.skipParens()
			} else {
				p.match(token.IDENT)
			}
		default:
			return
		}
	}
}

// parseParenExpr parses a parenthesized expression, subquery or row value.
func (p *Parser) parseParenExpr() core.Expr {
	p.expect(token.LPAREN)
	if p.check(token.SELECT) {
		query := p.parseSelectStmt()
		p.expect(token.RPAREN)
		return &core.SubqueryExpr{Query: query}
	}

	exprs := p.parseExpressionList()
	p.expect(token.RPAREN)
	if len(exprs) == 1 {
		return &core.ParenExpr{Expr: exprs[0]}
	}
	return &core.FuncCall{Name: "ROW", Args: exprs}
}

// parseCaseExpr parses CASE [operand] WHEN ... THEN ... [ELSE ...] END.
func (p *Parser) parseCaseExpr() core.Expr {
	p.expect(token.CASE)
	c := &core.CaseExpr{}
	if !p.check(token.WHEN) {
		c.Operand = p.parseExpression()
	}
	for p.match(token.WHEN) {
		w := &core.WhenClause{Cond: p.parseExpression()}
		p.expect(token.THEN)
		w.Result = p.parseExpression()
		c.Whens = append(c.Whens, w)
	}
	if len(c.Whens) == 0 {
		p.addError("expected WHEN in CASE expression")
	}
	if p.match(token.ELSE) {
		c.Else = p.parseExpression()
	}
	p.expect(token.END)
	return c
}

// parseCastExpr parses CAST(expr AS type).
func (p *Parser) parseCastExpr() core.Expr {
	p.expect(token.CAST)
	p.expect(token.LPAREN)
	c := &core.CastExpr{Expr: p.parseExpression()}
	p.expect(token.AS)
	c.Type = p.parseDataType()
	p.expect(token.RPAREN)
	return c
}

// parseExistsExpr parses [NOT] EXISTS (subquery); NOT is already consumed.
func (p *Parser) parseExistsExpr(not bool) core.Expr {
	p.expect(token.EXISTS)
	p.expect(token.LPAREN)
	e := &core.ExistsExpr{Not: not, Query: p.parseSelectStmt()}
	p.expect(token.RPAREN)
	return e
}

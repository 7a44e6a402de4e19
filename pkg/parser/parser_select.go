package parser

import (
	"strings"

	"github.com/leapstack-labs/leapschema/pkg/core"
	"github.com/leapstack-labs/leapschema/pkg/token"
)

// Query parsing: SELECT body, set operations, FROM clause and joins.
//
// Grammar:
//
//	select_stmt   → select_term [(UNION [ALL|DISTINCT] | INTERSECT | EXCEPT | MINUS) select_stmt]
//	select_term   → select_core | "(" select_stmt ")"
//	select_core   → SELECT [DISTINCT|ALL] select_list
//	                [FROM from_clause] [WHERE expr]
//	                [GROUP BY expr_list] [HAVING expr]
//	                [ORDER BY order_list] [LIMIT expr [("," | OFFSET) expr]] [OFFSET expr]
//	select_item   → "*" | name "." "*" | expr [[AS] alias]
//	from_clause   → table_ref (join)*
//	table_ref     → name [[AS] alias] | func_call [[AS] alias]
//	              | "(" select_stmt ")" [[AS] alias] | "(" from_clause ")"
//	join          → "," table_ref | join_type JOIN table_ref [ON expr | USING ident_list]
//	join_type     → [INNER] | LEFT [OUTER] | RIGHT [OUTER] | FULL [OUTER] | CROSS | NATURAL ...

// nonAliasWords are unreserved words that end a FROM item or select item
// instead of naming an alias.
var nonAliasWords = map[string]bool{
	"minus":         true,
	"fetch":         true,
	"for":           true,
	"lock":          true,
	"window":        true,
	"connect":       true,
	"start":         true,
	"natural":       true,
	"straight_join": true,
	"returning":     true,
	"with":          true,
}

// parseSelectStmt parses a query with optional set operations.
func (p *Parser) parseSelectStmt() *core.SelectStmt {
	start := p.token.Pos

	var stmt *core.SelectStmt
	if p.match(token.LPAREN) {
		stmt = p.parseSelectStmt()
		p.expect(token.RPAREN)
	} else {
		stmt = p.parseSelectCore()
	}

	op := p.parseSetOp()
	if op != core.SetOpNone {
		last := stmt
		for last.Next != nil {
			last = last.Next
		}
		last.SetOp = op
		last.Next = p.parseSelectStmt()
	}

	stmt.SetSpan(token.Span{Start: start, End: p.prevEnd})
	return stmt
}

func (p *Parser) parseSetOp() core.SetOpType {
	switch {
	case p.match(token.UNION):
		if p.match(token.ALL) {
			return core.SetOpUnionAll
		}
		p.match(token.DISTINCT)
		return core.SetOpUnion
	case p.match(token.INTERSECT):
		p.match(token.ALL)
		return core.SetOpIntersect
	case p.match(token.EXCEPT), p.matchWord("minus"):
		p.match(token.ALL)
		return core.SetOpExcept
	}
	return core.SetOpNone
}

// parseSelectCore parses a single SELECT without set operations.
func (p *Parser) parseSelectCore() *core.SelectStmt {
	stmt := &core.SelectStmt{}
	if !p.expect(token.SELECT) {
		return stmt
	}

	if p.match(token.DISTINCT) {
		stmt.Distinct = true
	} else {
		p.match(token.ALL)
	}

	stmt.Items = p.parseSelectList()

	if p.match(token.FROM) {
		stmt.From = p.parseFromClause()
	}
	if p.match(token.WHERE) {
		stmt.Where = p.parseExpression()
	}
	if p.check(token.GROUP) {
		p.nextToken()
		p.expect(token.BY)
		stmt.GroupBy = p.parseExpressionList()
	}
	if p.match(token.HAVING) {
		stmt.Having = p.parseExpression()
	}
	if p.check(token.ORDER) {
		p.nextToken()
		p.expect(token.BY)
		stmt.OrderBy = p.parseOrderByList()
	}
	p.parseLimit(stmt)
	return stmt
}

// parseLimit parses LIMIT / OFFSET in their MySQL, ANSI and Oracle forms.
func (p *Parser) parseLimit(stmt *core.SelectStmt) {
	if p.match(token.LIMIT) {
		stmt.Limit = p.parseExpression()
		switch {
		case p.match(token.COMMA):
			// LIMIT offset, count
			stmt.Offset = stmt.Limit
			stmt.Limit = p.parseExpression()
		case p.match(token.OFFSET):
			stmt.Offset = p.parseExpression()
		}
	}
	if p.match(token.OFFSET) {
		stmt.Offset = p.parseExpression()
		if !p.matchWord("rows") {
			p.matchWord("row")
		}
	}
	if p.matchWord("fetch") {
		// FETCH FIRST n ROWS ONLY
		if !p.matchWord("first") {
			p.matchWord("next")
		}
		if !p.checkWord("rows") && !p.checkWord("row") {
			stmt.Limit = p.parseExpression()
		}
		if !p.matchWord("rows") {
			p.matchWord("row")
		}
		p.matchWord("only")
	}
}

// parseSelectList parses the comma-separated select items.
func (p *Parser) parseSelectList() []*core.SelectItem {
	var items []*core.SelectItem
	for {
		items = append(items, p.parseSelectItem())
		if !p.match(token.COMMA) {
			break
		}
	}
	return items
}

func (p *Parser) parseSelectItem() *core.SelectItem {
	if p.match(token.STAR) {
		return &core.SelectItem{Expr: &core.Wildcard{}}
	}
	item := &core.SelectItem{Expr: p.parseExpression()}
	item.Alias = p.parseAlias()
	return item
}

// parseAlias parses [AS] alias. Aliases may be identifiers or, after AS or
// in MySQL, string literals.
func (p *Parser) parseAlias() string {
	if p.match(token.AS) {
		if p.check(token.IDENT) || p.check(token.STRING) {
			alias := p.token.Literal
			p.nextToken()
			return alias
		}
		p.addError("expected alias after AS")
		return ""
	}
	if p.check(token.IDENT) && (p.token.Quoted || !nonAliasWords[strings.ToLower(p.token.Literal)]) {
		alias := p.token.Literal
		p.nextToken()
		return alias
	}
	return ""
}

// parseOrderByList parses an ORDER BY list.
func (p *Parser) parseOrderByList() []*core.OrderByItem {
	var items []*core.OrderByItem
	for {
		item := &core.OrderByItem{Expr: p.parseExpression()}
		if p.match(token.DESC) {
			item.Desc = true
		} else {
			p.match(token.ASC)
		}
		// NULLS FIRST | NULLS LAST
		if p.matchWord("nulls") {
			if !p.matchWord("first") {
				p.matchWord("last")
			}
		}
		items = append(items, item)
		if !p.match(token.COMMA) {
			break
		}
	}
	return items
}

// ---------- FROM Clause ----------

// parseFromClause parses a FROM clause into a left-nested join tree.
func (p *Parser) parseFromClause() core.TableSource {
	left := p.parseTableRef()
	for left != nil {
		start := left.Pos()
		join := &core.JoinSource{Left: left}

		if p.match(token.COMMA) {
			join.Type = core.JoinComma
			join.Right = p.parseTableRef()
		} else {
			typ, ok := p.parseJoinType()
			if !ok {
				break
			}
			join.Type = typ
			join.Right = p.parseTableRef()
			switch {
			case p.match(token.ON):
				join.Condition = p.parseExpression()
			case p.check(token.USING):
				p.nextToken()
				join.Using = p.parseIdentList()
			}
		}

		if join.Right == nil {
			return left
		}
		join.SetSpan(token.Span{Start: start, End: p.prevEnd})
		left = join
	}
	return left
}

// parseJoinType consumes a join keyword sequence ending in JOIN.
func (p *Parser) parseJoinType() (core.JoinType, bool) {
	p.matchWord("natural")

	var typ core.JoinType
	switch {
	case p.match(token.JOIN), p.matchWord("straight_join"):
		return core.JoinInner, true
	case p.match(token.INNER):
		typ = core.JoinInner
	case p.match(token.LEFT):
		typ = core.JoinLeft
		p.match(token.OUTER)
	case p.match(token.RIGHT):
		typ = core.JoinRight
		p.match(token.OUTER)
	case p.match(token.FULL):
		typ = core.JoinFull
		p.match(token.OUTER)
	case p.match(token.CROSS):
		typ = core.JoinCross
	default:
		return "", false
	}
	p.expect(token.JOIN)
	return typ, true
}

// parseTableRef parses one FROM item.
func (p *Parser) parseTableRef() core.TableSource {
	start := p.token.Pos

	if p.check(token.LPAREN) {
		if p.checkPeek(token.SELECT) || p.checkPeek(token.LPAREN) {
			p.nextToken()
			query := p.parseSelectStmt()
			p.expect(token.RPAREN)
			leaf := &core.TableLeaf{Expr: &core.SubqueryExpr{Query: query}}
			leaf.Alias = p.parseAlias()
			leaf.SetSpan(token.Span{Start: start, End: p.prevEnd})
			return leaf
		}
		// parenthesized join
		p.nextToken()
		src := p.parseFromClause()
		p.expect(token.RPAREN)
		return src
	}

	if !p.check(token.IDENT) {
		p.addError("expected table name")
		return nil
	}

	var expr core.Expr = p.parseName()
	if p.check(token.LPAREN) {
		expr = p.parseCall(core.FormatExpr(expr))
	}
	leaf := &core.TableLeaf{Expr: expr}
	leaf.Alias = p.parseAlias()
	leaf.SetSpan(token.Span{Start: start, End: p.prevEnd})
	return leaf
}

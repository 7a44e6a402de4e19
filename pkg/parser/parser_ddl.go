package parser

import (
	"fmt"
	"slices"
	"strings"

	"github.com/leapstack-labs/leapschema/pkg/core"
	"github.com/leapstack-labs/leapschema/pkg/token"
)

// DDL parsing: CREATE TABLE / VIEW / INDEX / SEQUENCE / FUNCTION,
// ALTER TABLE and DROP SEQUENCE.
//
// Grammar:
//
//	create_table  → TABLE [IF NOT EXISTS] name
//	                (LIKE name | "(" LIKE name ")" | "(" element ("," element)* ")" [options] [[AS] select_stmt])
//	element       → column_def | constraint
//	column_def    → ident [data_type] column_option*
//	constraint    → [CONSTRAINT ident] (PRIMARY KEY | UNIQUE | FOREIGN KEY | CHECK | KEY | INDEX) ...
//	create_view   → VIEW name ["(" ident_list ")"] AS select_stmt
//	create_index  → INDEX [IF NOT EXISTS] [name] ON name "(" key_part ("," key_part)* ")" ...
//	create_seq    → SEQUENCE [IF NOT EXISTS] name options
//	create_func   → FUNCTION name ["(" param ("," param)* ")"] [RETURNS|RETURN data_type] body
//	alter_table   → ALTER TABLE [IF EXISTS] name alter_item ("," alter_item)*
//	drop_sequence → DROP SEQUENCE [IF EXISTS] name [CASCADE|RESTRICT]

// standardTypes are type names recognized in every dialect when telling a
// column definition from an inline index.
var standardTypes = []string{
	"BIGINT", "BLOB", "BOOLEAN", "CHAR", "CHARACTER", "CLOB", "DATE", "DECIMAL",
	"DOUBLE", "FLOAT", "INT", "INTEGER", "NUMERIC", "REAL", "SMALLINT", "TEXT",
	"TIME", "TIMESTAMP", "VARCHAR",
}

// parseCreate parses CREATE [OR REPLACE] [modifiers] <kind> .... Kinds the
// parser does not model come back as a raw CREATE statement.
func (p *Parser) parseCreate() core.Stmt {
	start := p.token.Pos
	p.expect(token.CREATE)

	orReplace := false
	if p.match(token.OR) {
		p.expectWord("replace")
		orReplace = true
	}

	var temporary, unique bool
modifiers:
	for {
		switch {
		case p.checkWord("temporary"), p.checkWord("temp"):
			temporary = true
			p.nextToken()
		case p.checkWord("unique"):
			unique = true
			p.nextToken()
		case p.checkWord("global"), p.checkWord("local"), p.checkWord("force"), p.checkWord("noforce"),
			p.checkWord("editionable"), p.checkWord("noneditionable"), p.checkWord("bitmap"),
			p.checkWord("fulltext"), p.checkWord("spatial"):
			p.nextToken()
		case p.checkWord("algorithm") && p.checkPeek(token.EQ):
			p.nextToken()
			p.nextToken()
			p.nextToken()
		case p.checkWord("sql") && p.peekWord("security"):
			p.nextToken()
			p.nextToken()
			p.nextToken()
		case p.checkWord("definer") && p.checkPeek(token.EQ):
			// DEFINER = 'user'@'host' runs up to the object kind
			for !p.check(token.EOF) && !p.check(token.SEMICOLON) && !p.checkCreateKind() && !p.checkWord("sql") {
				p.nextToken()
			}
		default:
			break modifiers
		}
	}

	switch {
	case p.matchWord("table"):
		return p.parseCreateTable(temporary)
	case p.matchWord("view"):
		return p.parseCreateView(orReplace)
	case p.matchWord("index"):
		return p.parseCreateIndex(unique)
	case p.matchWord("sequence"):
		return p.parseCreateSequence()
	case p.matchWord("function"):
		return p.parseCreateFunction(orReplace)
	}

	// PROCEDURE, TRIGGER, PACKAGE, ...
	p.skipBlock(true)
	return &core.RawStmt{Verb: "CREATE", Text: p.textFrom(start)}
}

// checkCreateKind reports whether the current token names an object kind
// after CREATE.
func (p *Parser) checkCreateKind() bool {
	for _, w := range []string{"table", "view", "index", "sequence", "function", "procedure", "trigger", "event"} {
		if p.checkWord(w) {
			return true
		}
	}
	return false
}

// ---------- CREATE TABLE ----------

func (p *Parser) parseCreateTable(temporary bool) *core.CreateTableStmt {
	stmt := &core.CreateTableStmt{Temporary: temporary}
	stmt.IfNotExists = p.matchIfNotExists()
	stmt.Name = p.parseName()
	if stmt.Name == nil {
		return stmt
	}

	switch {
	case p.check(token.LIKE):
		p.parseLikeClause(stmt)
		return stmt
	case p.check(token.LPAREN) && p.checkPeek(token.LIKE):
		p.nextToken()
		p.parseLikeClause(stmt)
		p.expect(token.RPAREN)
		return stmt
	case p.match(token.LPAREN):
		p.parseTableElements(stmt)
		p.expect(token.RPAREN)
	}

	stmt.Options = p.textUntil(func() bool {
		return p.check(token.AS) || p.check(token.SELECT) || (p.check(token.LPAREN) && p.checkPeek(token.SELECT))
	})

	if p.match(token.AS) || p.check(token.SELECT) || p.check(token.LPAREN) {
		stmt.Select = p.parseSelectStmt()
	}
	return stmt
}

// parseLikeClause parses LIKE name when the dialect supports it.
func (p *Parser) parseLikeClause(stmt *core.CreateTableStmt) {
	if !p.dialect.AllowsCreateLike() {
		p.addError(fmt.Sprintf(ErrUnsupportedClause, "CREATE TABLE ... LIKE", p.dialect.Name))
		return
	}
	p.expect(token.LIKE)
	stmt.Like = p.parseName()
}

// parseTableElements parses column definitions and table constraints.
func (p *Parser) parseTableElements(stmt *core.CreateTableStmt) {
	for {
		if p.isConstraintStart() {
			if c := p.parseConstraint(); c != nil {
				stmt.Constraints = append(stmt.Constraints, c)
			}
		} else if col := p.parseColumnDef(); col != nil {
			stmt.Columns = append(stmt.Columns, col)
		}
		if !p.match(token.COMMA) {
			return
		}
	}
}

// isConstraintStart reports whether the current element is a constraint or
// inline index rather than a column named like one.
func (p *Parser) isConstraintStart() bool {
	switch {
	case p.checkWord("constraint"):
		return p.checkPeek(token.IDENT)
	case p.checkWord("primary"), p.checkWord("foreign"):
		return p.peekWord("key")
	case p.checkWord("check"):
		return p.checkPeek(token.LPAREN)
	case p.checkWord("unique"), p.checkWord("key"), p.checkWord("index"),
		p.checkWord("fulltext"), p.checkWord("spatial"):
		if p.checkPeek(token.LPAREN) || p.peekWord("key") || p.peekWord("index") {
			return true
		}
		// KEY idx_name (a) vs. a column "key" of type VARCHAR(10)
		return p.checkPeek(token.IDENT) && p.peek2.Type == token.LPAREN && !p.isTypeName(p.peek.Literal)
	}
	return false
}

// checkConstraintKind reports whether an unnamed CONSTRAINT is followed
// directly by its kind.
func (p *Parser) checkConstraintKind() bool {
	return (p.checkWord("primary") || p.checkWord("foreign")) && p.peekWord("key") ||
		p.checkWord("unique") && (!p.checkPeek(token.IDENT) || p.peekWord("key") || p.peekWord("index")) ||
		p.checkWord("check") && p.checkPeek(token.LPAREN)
}

// isTypeName reports whether name is a data type known to the dialect.
func (p *Parser) isTypeName(name string) bool {
	name = strings.ToUpper(name)
	return slices.Contains(standardTypes, name) || slices.Contains(p.dialect.DataTypes(), name)
}

// parseConstraint parses a table-level constraint or inline index.
func (p *Parser) parseConstraint() *core.Constraint {
	c := &core.Constraint{}
	if p.matchWord("constraint") && !p.checkConstraintKind() {
		c.Name = p.parseIdent()
	}

	switch {
	case p.matchWord("primary"):
		p.expectWord("key")
		c.Kind = core.ConstraintPrimaryKey
		c.Columns = p.parseKeyParts()
	case p.matchWord("unique"):
		if !p.matchWord("key") {
			p.matchWord("index")
		}
		c.Kind = core.ConstraintUnique
		p.parseIndexName(c)
		c.Columns = p.parseKeyParts()
	case p.matchWord("foreign"):
		p.expectWord("key")
		c.Kind = core.ConstraintForeignKey
		p.parseIndexName(c)
		c.Columns = p.parseKeyParts()
		if p.checkWord("references") {
			c.Ref = p.parseReferences()
		}
	case p.matchWord("check"):
		c.Kind = core.ConstraintCheck
		p.expect(token.LPAREN)
		c.Check = p.parseExpression()
		p.expect(token.RPAREN)
	case p.matchWord("fulltext"), p.matchWord("spatial"), p.checkWord("key"), p.checkWord("index"):
		if !p.matchWord("key") {
			p.matchWord("index")
		}
		c.Kind = core.ConstraintIndex
		p.parseIndexName(c)
		c.Columns = p.parseKeyParts()
	default:
		p.addError(fmt.Sprintf(ErrUnexpectedToken, describe(p.token), "constraint"))
		return nil
	}

	// USING BTREE, COMMENT '...', ENABLE, NOVALIDATE, ...
	p.skipElementRest()
	return c
}

// parseIndexName parses the optional name after KEY / INDEX / UNIQUE and an
// optional USING method.
func (p *Parser) parseIndexName(c *core.Constraint) {
	if p.check(token.IDENT) {
		name := p.parseIdent()
		if c.Name == "" {
			c.Name = name
		}
	}
	if p.match(token.USING) {
		p.match(token.IDENT)
	}
}

// parseKeyParts parses "(" key_part ("," key_part)* ")". Plain columns are
// returned by name; expressions are returned as their source text.
func (p *Parser) parseKeyParts() []string {
	if !p.expect(token.LPAREN) {
		return nil
	}
	var parts []string
	for {
		if p.check(token.IDENT) {
			parts = append(parts, p.parseIdent())
			if p.check(token.LPAREN) {
				p.skipParens() // prefix length
			}
		} else {
			start := p.token.Pos
			p.parseExpression()
			parts = append(parts, p.textFrom(start))
		}
		if !p.match(token.ASC) {
			p.match(token.DESC)
		}
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN)
	return parts
}

// parseReferences parses REFERENCES table [(cols)] [MATCH x] [ON DELETE|UPDATE action]*.
func (p *Parser) parseReferences() *core.ForeignRef {
	p.expectWord("references")
	ref := &core.ForeignRef{Table: p.parseName()}
	if p.check(token.LPAREN) {
		ref.Columns = p.parseIdentList()
	}
	for {
		switch {
		case p.matchWord("match"):
			p.match(token.IDENT)
		case p.check(token.ON) && (p.peekWord("delete") || p.peekWord("update")):
			p.nextToken()
			p.nextToken()
			switch {
			case p.matchWord("set"), p.matchWord("no"):
				p.nextToken() // NULL | DEFAULT | ACTION
			default:
				p.nextToken() // CASCADE | RESTRICT
			}
		default:
			return ref
		}
	}
}

// skipElementRest consumes tokens up to the "," or ")" ending a table
// element.
func (p *Parser) skipElementRest() {
	for !p.atElementEnd() {
		if p.check(token.LPAREN) {
			p.skipParens()
			continue
		}
		p.nextToken()
	}
}

func (p *Parser) atElementEnd() bool {
	switch p.token.Type {
	case token.COMMA, token.RPAREN, token.SEMICOLON, token.EOF:
		return true
	}
	return false
}

// ---------- Columns ----------

// parseColumnDef parses ident [data_type] column_option*.
func (p *Parser) parseColumnDef() *core.ColumnDef {
	name := p.parseIdent()
	if name == "" {
		return nil
	}
	col := &core.ColumnDef{Name: name}
	if p.check(token.IDENT) && !p.checkPositionWord() {
		col.Type = p.parseDataType()
	}
	p.parseColumnOptions(col)
	return col
}

// checkPositionWord reports whether the current token is MySQL's FIRST or
// AFTER column position.
func (p *Parser) checkPositionWord() bool {
	return p.checkWord("first") || p.checkWord("after")
}

// parseColumnOptions parses the options following a column's type. Options
// that do not affect the catalog are skipped.
func (p *Parser) parseColumnOptions(col *core.ColumnDef) {
	for !p.atElementEnd() && !p.checkPositionWord() {
		switch {
		case p.check(token.NOT) && p.checkPeek(token.NULL):
			p.nextToken()
			p.nextToken()
			col.NotNull = true
		case p.match(token.NULL):
		case p.matchWord("default"):
			col.Default = p.parseExpressionWithPrecedence(precAddition)
		case p.matchWord("primary"):
			p.expectWord("key")
			col.PrimaryKey = true
		case p.matchWord("unique"):
			p.matchWord("key")
			col.Unique = true
		case p.matchWord("auto_increment"), p.matchWord("autoincrement"):
			col.AutoIncrement = true
		case p.matchWord("identity"):
			col.AutoIncrement = true
			p.skipParens()
		case p.matchWord("comment"):
			if p.check(token.STRING) {
				col.Comment = p.token.Literal
				p.nextToken()
			}
		case p.checkWord("references"):
			col.References = p.parseReferences()
		case p.matchWord("check"):
			p.expect(token.LPAREN)
			col.Check = p.parseExpression()
			p.expect(token.RPAREN)
		case p.matchWord("constraint"):
			p.match(token.IDENT)
		case p.matchWord("collate"), p.matchWord("charset"):
			p.nextToken()
		case p.checkWord("character") && p.peekWord("set"):
			p.nextToken()
			p.nextToken()
			p.nextToken()
		case p.check(token.ON) && p.peekWord("update"):
			p.nextToken()
			p.nextToken()
			p.parseExpressionWithPrecedence(precAddition)
		case p.matchWord("generated"):
			p.parseGenerated(col)
		case p.check(token.AS) && p.checkPeek(token.LPAREN):
			p.nextToken()
			p.skipParens()
		case p.check(token.LPAREN):
			p.skipParens()
		default:
			p.nextToken()
		}
	}
}

// parseGenerated parses GENERATED ALWAYS AS (expr) and GENERATED
// [ALWAYS | BY DEFAULT] AS IDENTITY.
func (p *Parser) parseGenerated(col *core.ColumnDef) {
	for !p.atElementEnd() && !p.check(token.AS) {
		p.nextToken()
	}
	if !p.match(token.AS) {
		return
	}
	if p.matchWord("identity") {
		col.AutoIncrement = true
	}
	p.skipParens()
}

// parseDataType parses a type name with optional arguments and modifiers:
// VARCHAR(32), DECIMAL(10, 2), INT UNSIGNED, TIMESTAMP WITH TIME ZONE.
func (p *Parser) parseDataType() *core.DataType {
	if !p.check(token.IDENT) {
		p.addError(fmt.Sprintf(ErrUnexpectedToken, describe(p.token), "data type"))
		return nil
	}
	dt := &core.DataType{Name: strings.ToUpper(p.token.Literal)}
	p.nextToken()

	switch {
	case dt.Name == "DOUBLE" && p.matchWord("precision"):
		dt.Name = "DOUBLE PRECISION"
	case (dt.Name == "CHARACTER" || dt.Name == "CHAR" || dt.Name == "NATIONAL") && p.matchWord("varying"):
		dt.Name += " VARYING"
	case dt.Name == "LONG" && p.matchWord("raw"):
		dt.Name = "LONG RAW"
	}

	// schema.type and Oracle anchored types: emp.id%TYPE
	for p.check(token.DOT) && p.checkPeek(token.IDENT) {
		p.nextToken()
		dt.Name += "." + strings.ToUpper(p.token.Literal)
		p.nextToken()
	}
	if p.check(token.PERCENT) && p.checkPeek(token.IDENT) {
		p.nextToken()
		dt.Name += "%" + strings.ToUpper(p.token.Literal)
		p.nextToken()
	}

	if p.check(token.LPAREN) {
		dt.Args = p.parseTypeArgs()
	}

	if (p.checkWord("with") || p.checkWord("without")) && p.peekWord("time") {
		mod := strings.ToUpper(p.token.Literal)
		p.nextToken()
		p.nextToken()
		p.expectWord("zone")
		dt.Name += " " + mod + " TIME ZONE"
	}

	for {
		switch {
		case p.checkWord("unsigned"):
			if !p.dialect.AllowsUnsigned() {
				p.addError(fmt.Sprintf(ErrUnsupportedClause, "UNSIGNED", p.dialect.Name))
			}
			dt.Unsigned = true
			p.nextToken()
		case p.checkWord("signed"), p.checkWord("zerofill"):
			p.nextToken()
		default:
			return dt
		}
	}
}

// parseTypeArgs parses "(" arg ("," arg)* ")" keeping each argument's text.
func (p *Parser) parseTypeArgs() []string {
	p.expect(token.LPAREN)
	var args []string
	for !p.check(token.RPAREN) && !p.check(token.EOF) {
		start := p.token.Pos
		depth := 0
		for !p.check(token.EOF) {
			if depth == 0 && (p.check(token.COMMA) || p.check(token.RPAREN)) {
				break
			}
			switch p.token.Type {
			case token.LPAREN:
				depth++
			case token.RPAREN:
				depth--
			}
			p.nextToken()
		}
		args = append(args, p.textFrom(start))
		if !p.match(token.COMMA) {
			break
		}
	}
	p.expect(token.RPAREN)
	return args
}

// textUntil consumes tokens up to the end of the statement or until stop
// reports true, and returns the consumed text. Parenthesized groups are
// consumed whole.
func (p *Parser) textUntil(stop func() bool) string {
	start := p.token.Pos
	moved := false
	for !p.check(token.SEMICOLON) && !p.check(token.EOF) && !stop() {
		if p.check(token.LPAREN) {
			p.skipParens()
		} else {
			p.nextToken()
		}
		moved = true
	}
	if !moved {
		return ""
	}
	return p.textFrom(start)
}

func (p *Parser) restText() string {
	return p.textUntil(func() bool { return false })
}

// ---------- CREATE VIEW / INDEX / SEQUENCE ----------

func (p *Parser) parseCreateView(orReplace bool) *core.CreateViewStmt {
	stmt := &core.CreateViewStmt{OrReplace: orReplace}
	p.matchIfNotExists()
	stmt.Name = p.parseName()
	if p.check(token.LPAREN) {
		stmt.Columns = p.parseIdentList()
	}
	if !p.expect(token.AS) {
		return stmt
	}

	// Common table expressions are not modeled; the view keeps no query.
	if p.checkWord("with") {
		p.skipStatement()
		return stmt
	}
	stmt.Query = p.parseSelectStmt()

	// WITH [CASCADED | LOCAL] CHECK OPTION, WITH READ ONLY
	if p.checkWord("with") {
		p.restText()
	}
	return stmt
}

func (p *Parser) parseCreateIndex(unique bool) *core.CreateIndexStmt {
	stmt := &core.CreateIndexStmt{Unique: unique}
	p.matchIfNotExists()
	if !p.check(token.ON) {
		stmt.Name = p.parseName()
	}
	if p.match(token.USING) {
		p.match(token.IDENT)
	}
	if !p.expect(token.ON) {
		return stmt
	}
	stmt.Table = p.parseName()
	if p.match(token.USING) {
		p.match(token.IDENT)
	}
	stmt.Columns = p.parseKeyParts()

	// WHERE predicate, TABLESPACE, ALGORITHM, ...
	p.restText()
	return stmt
}

func (p *Parser) parseCreateSequence() *core.CreateSequenceStmt {
	stmt := &core.CreateSequenceStmt{}
	p.matchIfNotExists()
	stmt.Name = p.parseName()
	stmt.Options = p.restText()
	return stmt
}

// parseDropSequence parses DROP SEQUENCE [IF EXISTS] name [CASCADE | RESTRICT].
func (p *Parser) parseDropSequence() *core.DropSequenceStmt {
	p.expect(token.DROP)
	p.expectWord("sequence")
	stmt := &core.DropSequenceStmt{IfExists: p.matchIfExists()}
	stmt.Name = p.parseName()
	if !p.matchWord("cascade") {
		p.matchWord("restrict")
	}
	return stmt
}

// ---------- CREATE FUNCTION ----------

func (p *Parser) parseCreateFunction(orReplace bool) *core.CreateFunctionStmt {
	stmt := &core.CreateFunctionStmt{OrReplace: orReplace}
	p.matchIfNotExists()
	stmt.Name = p.parseName()
	if stmt.Name == nil {
		return stmt
	}

	if p.match(token.LPAREN) {
		for !p.check(token.RPAREN) && !p.check(token.EOF) {
			stmt.Params = append(stmt.Params, p.parseFuncParam())
			if !p.match(token.COMMA) {
				break
			}
		}
		p.expect(token.RPAREN)
	}

	if p.matchWord("returns") || p.matchWord("return") {
		stmt.Returns = p.parseDataType()
	}

	start := p.token.Pos
	before := p.prevEnd
	p.skipBlock(true)
	if p.prevEnd != before {
		stmt.Body = p.textFrom(start)
	}
	return stmt
}

// parseFuncParam parses one parameter in either the ANSI/MySQL form
// [IN|OUT|INOUT] name type or the Oracle form name [IN] [OUT] [NOCOPY] type.
// Type-only parameters (PostgreSQL) are accepted.
func (p *Parser) parseFuncParam() *core.FuncParam {
	param := &core.FuncParam{}
	switch {
	case p.match(token.IN):
		param.Mode = "IN"
	case p.checkWord("out"), p.checkWord("inout"), p.checkWord("variadic"):
		param.Mode = strings.ToUpper(p.token.Literal)
		p.nextToken()
	}

	if p.check(token.IDENT) && (p.checkPeek(token.IDENT) || p.checkPeek(token.IN)) {
		param.Name = p.parseIdent()
	}

	if param.Mode == "" {
		switch {
		case p.match(token.IN):
			param.Mode = "IN"
			if p.matchWord("out") {
				param.Mode = "IN OUT"
			}
		case p.matchWord("out"):
			param.Mode = "OUT"
		}
		p.matchWord("nocopy")
	}

	param.Type = p.parseDataType()

	// DEFAULT value, := value
	p.skipElementRest()
	return param
}

// ---------- ALTER TABLE ----------

// parseAlterTable parses ALTER TABLE name item, item, .... Items the catalog
// does not track are skipped.
func (p *Parser) parseAlterTable() *core.AlterTableStmt {
	p.expect(token.ALTER)
	p.expectWord("table")
	p.matchWord("only")
	p.matchIfExists()

	stmt := &core.AlterTableStmt{Name: p.parseName()}
	if stmt.Name == nil {
		return stmt
	}
	for !p.check(token.SEMICOLON) && !p.check(token.EOF) {
		if item := p.parseAlterItem(); item != nil {
			stmt.Items = append(stmt.Items, item)
		}
		p.skipAlterItem()
		if !p.match(token.COMMA) {
			break
		}
	}
	return stmt
}

// parseAlterItem parses one alteration. It returns nil for alterations that
// do not affect columns or constraints.
func (p *Parser) parseAlterItem() core.AlterItem {
	switch {
	case p.matchWord("add"):
		return p.parseAlterAdd()
	case p.match(token.DROP):
		return p.parseAlterDrop()
	case p.matchWord("modify"):
		p.matchWord("column")
		if p.match(token.LPAREN) {
			col := p.parseColumnDef()
			p.expect(token.RPAREN)
			return modifyColumn(col)
		}
		return modifyColumn(p.parseColumnDef())
	case p.matchWord("change"):
		p.matchWord("column")
		oldName := p.parseIdent()
		col := p.parseColumnDef()
		if oldName == "" || col == nil {
			return nil
		}
		return &core.ChangeColumn{OldName: oldName, Column: col}
	case p.matchWord("rename"):
		if p.matchWord("column") || (p.check(token.IDENT) && p.peekWord("to")) {
			oldName := p.parseIdent()
			p.expectWord("to")
			return &core.RenameColumn{OldName: oldName, NewName: p.parseIdent()}
		}
	case p.match(token.ALTER):
		p.matchWord("column")
		name := p.parseIdent()
		switch {
		case p.matchWord("set") && p.matchWord("default"):
			return &core.AlterColumnDefault{Column: name, Default: p.parseExpressionWithPrecedence(precAddition)}
		case p.check(token.DROP) && p.peekWord("default"):
			p.nextToken()
			p.nextToken()
			return &core.AlterColumnDefault{Column: name}
		}
	}
	return nil
}

func modifyColumn(col *core.ColumnDef) core.AlterItem {
	if col == nil {
		return nil
	}
	return &core.ModifyColumn{Column: col}
}

func (p *Parser) parseAlterAdd() core.AlterItem {
	if !p.matchWord("column") && p.isConstraintStart() {
		if c := p.parseConstraint(); c != nil {
			return &core.AddConstraint{Constraint: c}
		}
		return nil
	}
	p.matchIfNotExists()

	add := &core.AddColumn{}
	if p.match(token.LPAREN) {
		for {
			if col := p.parseColumnDef(); col != nil {
				add.Columns = append(add.Columns, col)
			}
			if !p.match(token.COMMA) {
				break
			}
		}
		p.expect(token.RPAREN)
		return add
	}

	col := p.parseColumnDef()
	if col == nil {
		return nil
	}
	add.Columns = []*core.ColumnDef{col}
	switch {
	case p.matchWord("first"):
		add.First = true
	case p.matchWord("after"):
		add.After = p.parseIdent()
	}
	return add
}

func (p *Parser) parseAlterDrop() core.AlterItem {
	switch {
	case p.matchWord("primary"):
		p.expectWord("key")
		return &core.DropPrimaryKey{}
	case p.matchWord("constraint"):
		p.matchIfExists()
		return &core.DropConstraint{Name: p.parseIdent()}
	case p.matchWord("index"), p.matchWord("key"), p.matchWord("check"):
		return &core.DropConstraint{Name: p.parseIdent()}
	case p.matchWord("foreign"):
		p.expectWord("key")
		return &core.DropConstraint{Name: p.parseIdent()}
	}
	p.matchWord("column")
	p.matchIfExists()
	if !p.check(token.IDENT) {
		return nil
	}
	return &core.DropColumn{Name: p.parseIdent()}
}

// skipAlterItem consumes the rest of an alteration up to the next top-level
// comma.
func (p *Parser) skipAlterItem() {
	for !p.check(token.COMMA) && !p.check(token.SEMICOLON) && !p.check(token.EOF) {
		if p.check(token.LPAREN) {
			p.skipParens()
			continue
		}
		p.nextToken()
	}
}

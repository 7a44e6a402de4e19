package parser

import (
	"strings"
	"unicode"

	"github.com/leapstack-labs/leapschema/pkg/dialect"
	"github.com/leapstack-labs/leapschema/pkg/token"
)

// Lexer tokenizes SQL input.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)

	dialect *dialect.Dialect
	errors  []error
}

// NewLexer creates a new dialect-aware Lexer for the given input.
func NewLexer(input string, d *dialect.Dialect) *Lexer {
	l := &Lexer{
		input:   input,
		line:    1,
		col:     0,
		dialect: d,
	}
	l.readChar()
	return l
}

// Errors returns the lexical errors seen so far.
func (l *Lexer) Errors() []error {
	return l.errors
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++
	l.col++
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// currentPos returns the current position.
func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.col,
		Offset: min(l.pos, len(l.input)),
	}
}

func (l *Lexer) addError(pos token.Position, msg string) {
	l.errors = append(l.errors, &LexError{Pos: pos, Message: msg})
}

// NextToken returns the next token.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	pos := l.currentPos()
	tok := l.scan(pos)
	tok.Pos = pos
	tok.End = l.currentPos()
	return tok
}

// scan reads one token starting at the current character and leaves the
// lexer just past it.
func (l *Lexer) scan(pos token.Position) token.Token {
	switch l.ch {
	case 0:
		return token.Token{Type: token.EOF}
	case '\'':
		return token.Token{Type: token.STRING, Literal: l.readString('\'', pos)}
	case '"':
		if l.dialect.DoubleQuotedStrings() {
			return token.Token{Type: token.STRING, Literal: l.readString('"', pos)}
		}
	case '$':
		if lit, ok := l.readDollarString(pos); ok {
			return token.Token{Type: token.STRING, Literal: lit}
		}
	}

	if l.dialect.IsQuoteStart(l.ch) {
		return token.Token{Type: token.IDENT, Literal: l.readQuotedIdentifier(pos), Quoted: true}
	}

	switch {
	case isLetter(l.ch) || l.ch == '_':
		lit := l.readIdentifier()
		return token.Token{Type: token.LookupIdent(strings.ToLower(lit)), Literal: lit}
	case isDigit(l.ch):
		return token.Token{Type: token.NUMBER, Literal: l.readNumber()}
	}

	typ, width := l.operator()
	lit := l.input[l.pos:min(l.pos+width, len(l.input))]
	for range width {
		l.readChar()
	}
	return token.Token{Type: typ, Literal: lit}
}

// operator classifies the punctuation at the current character and returns
// its width in bytes.
func (l *Lexer) operator() (token.TokenType, int) {
	switch l.ch {
	case '+':
		return token.PLUS, 1
	case '-':
		return token.MINUS, 1
	case '*':
		return token.STAR, 1
	case '/':
		return token.SLASH, 1
	case '%':
		return token.PERCENT, 1
	case '=':
		return token.EQ, 1
	case '<':
		switch l.peekChar() {
		case '=':
			return token.LE, 2
		case '>':
			return token.NE, 2
		}
		return token.LT, 1
	case '>':
		if l.peekChar() == '=' {
			return token.GE, 2
		}
		return token.GT, 1
	case '!':
		if l.peekChar() == '=' {
			return token.NE, 2
		}
	case '|':
		if l.peekChar() == '|' {
			return token.DPIPE, 2
		}
	case '.':
		return token.DOT, 1
	case ',':
		return token.COMMA, 1
	case ';':
		return token.SEMICOLON, 1
	case '(':
		return token.LPAREN, 1
	case ')':
		return token.RPAREN, 1
	}
	return token.ILLEGAL, 1
}

// skipWhitespaceAndComments skips whitespace, -- and /* */ comments, and #
// comments where the dialect allows them.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' || l.ch == '\f' {
			l.readChar()
		}

		switch {
		case l.ch == '-' && l.peekChar() == '-':
			l.skipLineComment()
		case l.ch == '#' && l.dialect.HashComments():
			l.skipLineComment()
		case l.ch == '/' && l.peekChar() == '*':
			l.skipBlockComment()
		default:
			return
		}
	}
}

func (l *Lexer) skipLineComment() {
	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}
}

func (l *Lexer) skipBlockComment() {
	pos := l.currentPos()
	l.readChar() // skip '/'
	l.readChar() // skip '*'

	for l.ch != 0 {
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar() // skip '*'
			l.readChar() // skip '/'
			return
		}
		l.readChar()
	}
	l.addError(pos, ErrUnterminatedComment)
}

// readString reads a string literal delimited by quote. A doubled quote
// escapes the quote; backslash escapes apply when the dialect enables them.
func (l *Lexer) readString(quote byte, pos token.Position) string {
	l.readChar() // skip opening quote

	var result strings.Builder
	for l.ch != 0 {
		switch {
		case l.ch == quote && l.peekChar() == quote:
			result.WriteByte(quote)
			l.readChar()
			l.readChar()
		case l.ch == quote:
			l.readChar() // skip closing quote
			return result.String()
		case l.ch == '\\' && l.dialect.BackslashEscapes() && l.peekChar() != 0:
			l.readChar()
			result.WriteByte(unescape(l.ch))
			l.readChar()
		default:
			result.WriteByte(l.ch)
			l.readChar()
		}
	}
	l.addError(pos, ErrUnterminatedString)
	return result.String()
}

func unescape(ch byte) byte {
	switch ch {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	}
	return ch
}

// readDollarString reads a $$...$$ or $tag$...$tag$ string. It reports false
// without consuming anything when the input is not a dollar quote.
func (l *Lexer) readDollarString(pos token.Position) (string, bool) {
	rest := l.input[l.pos:]
	end := strings.IndexByte(rest[1:], '$')
	if end < 0 {
		return "", false
	}
	tag := rest[:end+2]
	for i := 1; i < len(tag)-1; i++ {
		if !isLetter(tag[i]) && !isDigit(tag[i]) && tag[i] != '_' {
			return "", false
		}
	}

	body := rest[len(tag):]
	closing := strings.Index(body, tag)
	consumed := len(rest)
	if closing < 0 {
		l.addError(pos, ErrUnterminatedString)
		closing = len(body)
	} else {
		consumed = len(tag) + closing + len(tag)
	}
	for range consumed {
		l.readChar()
	}
	return body[:closing], true
}

// readQuotedIdentifier reads an identifier in the dialect's quotes.
// A doubled closing quote escapes it: `col``name` -> col`name
func (l *Lexer) readQuotedIdentifier(pos token.Position) string {
	closeQuote := l.dialect.Identifiers.QuoteEnd[0]
	l.readChar() // skip opening quote

	var result strings.Builder
	for l.ch != 0 {
		if l.ch == closeQuote {
			if l.peekChar() == closeQuote {
				result.WriteByte(closeQuote)
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar() // skip closing quote
			return result.String()
		}
		result.WriteByte(l.ch)
		l.readChar()
	}
	l.addError(pos, ErrUnterminatedIdent)
	return result.String()
}

// readIdentifier reads an unquoted identifier. $ and # are allowed after the
// first character (Oracle names such as V$SESSION).
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' || l.ch == '$' || (l.ch == '#' && !l.dialect.HashComments()) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readNumber reads a numeric literal (integer, decimal, scientific or hex).
func (l *Lexer) readNumber() string {
	start := l.pos

	if l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X') {
		l.readChar()
		l.readChar()
		for isDigit(l.ch) || isLetter(l.ch) {
			l.readChar()
		}
		return l.input[start:l.pos]
	}

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // skip '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	if (l.ch == 'e' || l.ch == 'E') && (isDigit(l.peekChar()) || l.peekChar() == '+' || l.peekChar() == '-') {
		l.readChar() // skip 'e' or 'E'
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return l.input[start:l.pos]
}

// isLetter returns true if ch is a letter. Bytes of multi-byte UTF-8
// sequences count as letters so non-ASCII identifiers survive.
func isLetter(ch byte) bool {
	return ch >= 0x80 || unicode.IsLetter(rune(ch))
}

// isDigit returns true if ch is a digit.
func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// Tokenize returns all tokens from the input.
func Tokenize(input string, d *dialect.Dialect) []token.Token {
	l := NewLexer(input, d)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return tokens
}

// Package lexer turns Mildew source text into a token stream.
package lexer

import (
	"fmt"
	"strconv"
	"strings"

	"mildew/token"
)

func isLetter(char rune) bool {
	return char == '_' || char == '$' ||
		(char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z')
}

func isDigit(char rune) bool {
	return char >= '0' && char <= '9'
}

func isHexDigit(char rune) bool {
	return isDigit(char) || (char >= 'a' && char <= 'f') || (char >= 'A' && char <= 'F')
}

// CompileError is raised by the lexer on malformed input: unterminated
// strings, unknown escapes, malformed numbers, or unexpected characters.
type CompileError struct {
	Reason string
	Line   int
	Column int
}

func (e CompileError) Error() string {
	return fmt.Sprintf("lex error at line %d, column %d: %s", e.Line, e.Column, e.Reason)
}

// Lexer scans a single source string into a token stream. It is not
// reentrant and exists for the duration of one Scan call.
type Lexer struct {
	src          []rune
	length       int
	position     int // index of currentChar
	readPosition int // index of the next unread rune
	currentChar  rune
	line         int
	column       int
	tokens       []token.Token
}

// New creates a Lexer over the given source text.
func New(source string) *Lexer {
	l := &Lexer{
		src:    []rune(source),
		line:   1,
		column: 0,
	}
	l.length = len(l.src)
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= l.length {
		l.currentChar = 0
	} else {
		l.currentChar = l.src[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++
}

func (l *Lexer) peek() rune {
	if l.readPosition >= l.length {
		return 0
	}
	return l.src[l.readPosition]
}

func (l *Lexer) isFinished() bool {
	return l.position >= l.length
}

// Tokenize lexes source into a token stream, failing with CompileError on
// the first malformed construct encountered.
func Tokenize(source string) ([]token.Token, error) {
	l := New(source)
	return l.Scan()
}

// Scan performs lexical analysis over the full source, returning the token
// stream terminated by an EOF token.
func (l *Lexer) Scan() ([]token.Token, error) {
	for !l.isFinished() {
		if err := l.scanOne(); err != nil {
			return nil, err
		}
	}
	l.emit(token.New(token.EOF, "", l.line, l.column))
	return l.tokens, nil
}

func (l *Lexer) emit(tok token.Token) {
	l.tokens = append(l.tokens, tok)
}

func (l *Lexer) scanOne() error {
	l.skipWhitespaceAndComments()
	if l.isFinished() {
		return nil
	}

	line, column := l.line, l.column
	c := l.currentChar

	switch {
	case isLetter(c):
		l.scanIdentifierOrLabel(line, column)
		return nil
	case isDigit(c), c == '.' && isDigit(l.peek()):
		return l.scanNumber(line, column)
	case c == '"' || c == '\'':
		return l.scanString(c, line, column)
	case c == '`':
		return l.scanTemplate(line, column)
	}

	return l.scanOperator(line, column)
}

func (l *Lexer) skipWhitespaceAndComments() {
	for !l.isFinished() {
		switch l.currentChar {
		case ' ', '\t', '\r':
			l.readChar()
		case '\n':
			l.line++
			l.column = 0
			l.readChar()
		case '/':
			if l.peek() == '/' {
				for !l.isFinished() && l.currentChar != '\n' {
					l.readChar()
				}
				continue
			}
			if l.peek() == '*' {
				l.readChar()
				l.readChar()
				for !l.isFinished() && !(l.currentChar == '*' && l.peek() == '/') {
					if l.currentChar == '\n' {
						l.line++
						l.column = 0
					}
					l.readChar()
				}
				l.readChar()
				l.readChar()
				continue
			}
			return
		default:
			return
		}
	}
}

// scanIdentifierOrLabel reads an identifier lexeme, classifies it against the
// keyword table, and applies the label lookahead: an identifier immediately
// followed by ':' that is not a reserved word becomes a LABEL token instead.
func (l *Lexer) scanIdentifierOrLabel(line, column int) {
	start := l.position
	for !l.isFinished() && (isLetter(l.currentChar) || isDigit(l.currentChar)) {
		l.readChar()
	}
	lexeme := string(l.src[start:l.position])

	if kind, ok := token.Keywords[lexeme]; ok {
		l.emit(token.New(kind, lexeme, line, column))
		return
	}

	if l.currentChar == ':' {
		l.emit(token.New(token.LABEL, lexeme, line, column))
		l.readChar() // consume ':'
		return
	}

	l.emit(token.New(token.IDENTIFIER, lexeme, line, column))
}

// scanNumber implements the numeric grammar: decimal with optional fraction
// and exponent, or a 0x/0o/0b prefixed integer.
func (l *Lexer) scanNumber(line, column int) error {
	start := l.position

	if l.currentChar == '0' && (l.peek() == 'x' || l.peek() == 'X') {
		return l.scanRadixNumber(start, line, column, 16, token.NumberHex, isHexDigit)
	}
	if l.currentChar == '0' && (l.peek() == 'o' || l.peek() == 'O') {
		return l.scanRadixNumber(start, line, column, 8, token.NumberOctal, func(c rune) bool {
			return c >= '0' && c <= '7'
		})
	}
	if l.currentChar == '0' && (l.peek() == 'b' || l.peek() == 'B') {
		return l.scanRadixNumber(start, line, column, 2, token.NumberBinary, func(c rune) bool {
			return c == '0' || c == '1'
		})
	}

	decimalPoints := 0
	exponents := 0
	for !l.isFinished() {
		c := l.currentChar
		if isDigit(c) {
			l.readChar()
			continue
		}
		if c == '.' {
			decimalPoints++
			if decimalPoints > 1 {
				return l.numberError(start, line, column)
			}
			l.readChar()
			continue
		}
		if c == 'e' || c == 'E' {
			exponents++
			if exponents > 1 {
				return l.numberError(start, line, column)
			}
			l.readChar()
			if l.currentChar == '+' || l.currentChar == '-' {
				l.readChar()
			}
			if !isDigit(l.currentChar) {
				return l.numberError(start, line, column)
			}
			continue
		}
		break
	}

	lexeme := string(l.src[start:l.position])
	if strings.HasSuffix(lexeme, ".") {
		return l.numberError(start, line, column)
	}

	var tok token.Token
	if decimalPoints == 0 && exponents == 0 {
		v, err := strconv.ParseInt(lexeme, 10, 64)
		if err != nil {
			return l.numberError(start, line, column)
		}
		tok = token.NewLiteral(token.NUMBER, lexeme, v, line, column)
	} else {
		v, err := strconv.ParseFloat(lexeme, 64)
		if err != nil {
			return l.numberError(start, line, column)
		}
		tok = token.NewLiteral(token.NUMBER, lexeme, v, line, column)
	}
	l.emit(tok)
	return nil
}

func (l *Lexer) scanRadixNumber(start, line, column, base int, flag token.NumberFlag, digit func(rune) bool) error {
	l.readChar()
	l.readChar()
	digitsStart := l.position
	for !l.isFinished() && digit(l.currentChar) {
		l.readChar()
	}
	if l.position == digitsStart {
		return l.numberError(start, line, column)
	}
	lexeme := string(l.src[start:l.position])
	v, err := strconv.ParseInt(lexeme[2:], base, 64)
	if err != nil {
		return l.numberError(start, line, column)
	}
	tok := token.NewLiteral(token.NUMBER, lexeme, v, line, column)
	tok.NumberFlag = flag
	l.emit(tok)
	return nil
}

func (l *Lexer) numberError(start, line, column int) error {
	end := l.position
	if end <= start {
		end = start + 1
	}
	if end > l.length {
		end = l.length
	}
	return CompileError{
		Reason: fmt.Sprintf("malformed number %q", string(l.src[start:end])),
		Line:   line, Column: column,
	}
}

var simpleEscapes = map[rune]rune{
	'b': '\b', 'f': '\f', 'n': '\n', 'r': '\r',
	't': '\t', 'v': '\v', '0': 0, '\'': '\'', '"': '"', '\\': '\\',
}

// scanString reads a single- or double-quoted string literal, decoding
// escape sequences. No embedded newlines are permitted.
func (l *Lexer) scanString(quote rune, line, column int) error {
	l.readChar() // consume opening quote
	var b strings.Builder
	for {
		if l.isFinished() {
			return CompileError{Reason: "unterminated string literal", Line: line, Column: column}
		}
		c := l.currentChar
		if c == quote {
			l.readChar()
			break
		}
		if c == '\n' {
			return CompileError{Reason: "unterminated string literal", Line: line, Column: column}
		}
		if c == '\\' {
			l.readChar()
			esc := l.currentChar
			decoded, ok := simpleEscapes[esc]
			if !ok {
				return CompileError{
					Reason: fmt.Sprintf("unknown escape sequence '\\%c'", esc),
					Line:   l.line, Column: l.column,
				}
			}
			b.WriteRune(decoded)
			l.readChar()
			continue
		}
		b.WriteRune(c)
		l.readChar()
	}
	lexeme := b.String()
	l.emit(token.NewLiteral(token.STRING, lexeme, lexeme, line, column))
	return nil
}

// scanTemplate reads a back-tick delimited template string. The raw interior
// (with `${...}` spans preserved literally, unescaped) is stored as the
// token's literal; the parser is responsible for splitting it into
// literal/expression parts and re-lexing each expression span.
func (l *Lexer) scanTemplate(line, column int) error {
	l.readChar() // consume opening backtick
	start := l.position
	depth := 0
	for {
		if l.isFinished() {
			return CompileError{Reason: "unterminated template string", Line: line, Column: column}
		}
		if depth == 0 && l.currentChar == '`' {
			break
		}
		if l.currentChar == '$' && l.peek() == '{' {
			depth++
			l.readChar()
			l.readChar()
			continue
		}
		if depth > 0 && l.currentChar == '}' {
			depth--
			l.readChar()
			continue
		}
		if l.currentChar == '\n' {
			l.line++
			l.column = 0
		}
		l.readChar()
	}
	raw := string(l.src[start:l.position])
	l.readChar() // consume closing backtick
	l.emit(token.NewLiteral(token.TEMPLATE, raw, raw, line, column))
	return nil
}

// scanOperator matches the punctuator/operator grammar, preferring the
// longest match (e.g. ">>>" over ">>" over ">").
func (l *Lexer) scanOperator(line, column int) error {
	c := l.currentChar
	switch c {
	case '(':
		l.readChar()
		l.emit(token.New(token.LPAREN, "(", line, column))
	case ')':
		l.readChar()
		l.emit(token.New(token.RPAREN, ")", line, column))
	case '{':
		l.readChar()
		l.emit(token.New(token.LBRACE, "{", line, column))
	case '}':
		l.readChar()
		l.emit(token.New(token.RBRACE, "}", line, column))
	case '[':
		l.readChar()
		l.emit(token.New(token.LBRACKET, "[", line, column))
	case ']':
		l.readChar()
		l.emit(token.New(token.RBRACKET, "]", line, column))
	case ',':
		l.readChar()
		l.emit(token.New(token.COMMA, ",", line, column))
	case ';':
		l.readChar()
		l.emit(token.New(token.SEMICOLON, ";", line, column))
	case ':':
		l.readChar()
		l.emit(token.New(token.COLON, ":", line, column))
	case '.':
		l.readChar()
		l.emit(token.New(token.DOT, ".", line, column))
	case '?':
		l.readChar()
		l.emit(token.New(token.QUESTION, "?", line, column))
	case '~':
		l.readChar()
		l.emit(token.New(token.TILDE, "~", line, column))
	case '+':
		l.readChar()
		switch l.currentChar {
		case '+':
			l.readChar()
			l.emit(token.New(token.PLUS_PLUS, "++", line, column))
		case '=':
			l.readChar()
			l.emit(token.New(token.PLUS_ASSIGN, "+=", line, column))
		default:
			l.emit(token.New(token.PLUS, "+", line, column))
		}
	case '-':
		l.readChar()
		switch l.currentChar {
		case '-':
			l.readChar()
			l.emit(token.New(token.MINUS_MINUS, "--", line, column))
		case '=':
			l.readChar()
			l.emit(token.New(token.MINUS_ASSIGN, "-=", line, column))
		default:
			l.emit(token.New(token.MINUS, "-", line, column))
		}
	case '*':
		l.readChar()
		switch l.currentChar {
		case '*':
			l.readChar()
			l.emit(token.New(token.STARSTAR, "**", line, column))
		case '=':
			l.readChar()
			l.emit(token.New(token.STAR_ASSIGN, "*=", line, column))
		default:
			l.emit(token.New(token.STAR, "*", line, column))
		}
	case '/':
		l.readChar()
		if l.currentChar == '=' {
			l.readChar()
			l.emit(token.New(token.SLASH_ASSIGN, "/=", line, column))
		} else {
			l.emit(token.New(token.SLASH, "/", line, column))
		}
	case '%':
		l.readChar()
		if l.currentChar == '=' {
			l.readChar()
			l.emit(token.New(token.PERCENT_ASSIGN, "%=", line, column))
		} else {
			l.emit(token.New(token.PERCENT, "%", line, column))
		}
	case '=':
		l.readChar()
		switch {
		case l.currentChar == '=' && l.peek() == '=':
			l.readChar()
			l.readChar()
			l.emit(token.New(token.STRICT_EQ, "===", line, column))
		case l.currentChar == '=':
			l.readChar()
			l.emit(token.New(token.EQ, "==", line, column))
		case l.currentChar == '>':
			l.readChar()
			l.emit(token.New(token.ARROW, "=>", line, column))
		default:
			l.emit(token.New(token.ASSIGN, "=", line, column))
		}
	case '!':
		l.readChar()
		switch {
		case l.currentChar == '=' && l.peek() == '=':
			l.readChar()
			l.readChar()
			l.emit(token.New(token.STRICT_NEQ, "!==", line, column))
		case l.currentChar == '=':
			l.readChar()
			l.emit(token.New(token.NEQ, "!=", line, column))
		default:
			l.emit(token.New(token.BANG, "!", line, column))
		}
	case '<':
		l.readChar()
		switch {
		case l.currentChar == '=':
			l.readChar()
			l.emit(token.New(token.LE, "<=", line, column))
		case l.currentChar == '<':
			l.readChar()
			l.emit(token.New(token.SHL, "<<", line, column))
		default:
			l.emit(token.New(token.LT, "<", line, column))
		}
	case '>':
		l.readChar()
		switch {
		case l.currentChar == '=':
			l.readChar()
			l.emit(token.New(token.GE, ">=", line, column))
		case l.currentChar == '>' && l.peek() == '>':
			l.readChar()
			l.readChar()
			l.emit(token.New(token.USHR, ">>>", line, column))
		case l.currentChar == '>':
			l.readChar()
			l.emit(token.New(token.SHR, ">>", line, column))
		default:
			l.emit(token.New(token.GT, ">", line, column))
		}
	case '&':
		l.readChar()
		switch l.currentChar {
		case '&':
			l.readChar()
			l.emit(token.New(token.AND_AND, "&&", line, column))
		case '=':
			l.readChar()
			l.emit(token.New(token.AMP_ASSIGN, "&=", line, column))
		default:
			l.emit(token.New(token.AMP, "&", line, column))
		}
	case '|':
		l.readChar()
		switch l.currentChar {
		case '|':
			l.readChar()
			l.emit(token.New(token.OR_OR, "||", line, column))
		case '=':
			l.readChar()
			l.emit(token.New(token.PIPE_ASSIGN, "|=", line, column))
		default:
			l.emit(token.New(token.PIPE, "|", line, column))
		}
	case '^':
		l.readChar()
		if l.currentChar == '=' {
			l.readChar()
			l.emit(token.New(token.CARET_ASSIGN, "^=", line, column))
		} else {
			l.emit(token.New(token.CARET, "^", line, column))
		}
	default:
		bad := c
		l.readChar()
		return CompileError{
			Reason: fmt.Sprintf("unexpected character %q", bad),
			Line:   line, Column: column,
		}
	}
	return nil
}

package querylang

import (
	"strings"
)

// TokenKind identifies the type of lexical token.
type TokenKind int

const (
	TokEOF    TokenKind = iota
	TokWord             // bareword or quoted string (quotes stripped, escapes processed)
	TokOr               // OR (case-insensitive)
	TokAnd              // AND (case-insensitive)
	TokNot              // NOT (case-insensitive)
	TokLParen           // (
	TokRParen           // )
	TokOp               // comparison operator: = == != <> < <= > >=
)

func (k TokenKind) String() string {
	switch k {
	case TokEOF:
		return "EOF"
	case TokWord:
		return "WORD"
	case TokOr:
		return "OR"
	case TokAnd:
		return "AND"
	case TokNot:
		return "NOT"
	case TokLParen:
		return "("
	case TokRParen:
		return ")"
	case TokOp:
		return "OPERATOR"
	default:
		return "UNKNOWN"
	}
}

// Token represents a lexical token.
type Token struct {
	Kind   TokenKind
	Lit    string // for quoted strings: unescaped content without quotes
	Pos    int    // byte offset in input for error reporting
	Quoted bool   // the word was written as a quoted string
}

// Lexer tokenizes a query string.
type Lexer struct {
	input string
	pos   int // current position in input
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Next returns the next token.
func (l *Lexer) Next() (Token, error) {
	l.skipWhitespace()

	if l.pos >= len(l.input) {
		return Token{Kind: TokEOF, Pos: l.pos}, nil
	}

	startPos := l.pos
	ch := l.input[l.pos]

	switch ch {
	case '(':
		l.pos++
		return Token{Kind: TokLParen, Lit: "(", Pos: startPos}, nil
	case ')':
		l.pos++
		return Token{Kind: TokRParen, Lit: ")", Pos: startPos}, nil
	case '=', '!', '<', '>':
		return l.scanOperator()
	case '"', '\'':
		return l.scanQuotedString(ch)
	}

	// Bareword (may be keyword)
	return l.scanBareword()
}

// skipWhitespace advances past whitespace characters.
func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			l.pos++
		} else {
			break
		}
	}
}

// scanOperator scans a one or two character comparison operator.
func (l *Lexer) scanOperator() (Token, error) {
	startPos := l.pos
	ch := l.input[l.pos]
	l.pos++

	var next byte
	if l.pos < len(l.input) {
		next = l.input[l.pos]
	}

	switch {
	case next == '=' || (ch == '<' && next == '>'):
		l.pos++
	case ch == '!':
		return Token{}, newParseError(startPos, ErrUnexpectedToken, "expected '!=', got '!'")
	}
	return Token{Kind: TokOp, Lit: l.input[startPos:l.pos], Pos: startPos}, nil
}

// scanQuotedString scans a quoted string, processing escape sequences.
func (l *Lexer) scanQuotedString(quote byte) (Token, error) {
	startPos := l.pos
	l.pos++ // skip opening quote

	var sb strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]

		if ch == quote {
			l.pos++ // skip closing quote
			return Token{Kind: TokWord, Lit: sb.String(), Pos: startPos, Quoted: true}, nil
		}

		if ch == '\\' {
			l.pos++
			if l.pos >= len(l.input) {
				return Token{}, newParseError(l.pos-1, ErrUnterminatedString, "unterminated string: escape at end of input")
			}

			escaped := l.input[l.pos]
			switch escaped {
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			case '\'':
				sb.WriteByte('\'')
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			default:
				return Token{}, newParseError(l.pos-1, ErrInvalidEscape, "invalid escape sequence: \\%c", escaped)
			}
			l.pos++
			continue
		}

		sb.WriteByte(ch)
		l.pos++
	}

	return Token{}, newParseError(startPos, ErrUnterminatedString, "unterminated string starting at position %d", startPos)
}

// scanBareword scans a bareword token, which may be a keyword.
func (l *Lexer) scanBareword() (Token, error) {
	startPos := l.pos
	for l.pos < len(l.input) && isBarewordChar(l.input[l.pos]) {
		l.pos++
	}

	lit := l.input[startPos:l.pos]
	return Token{Kind: classifyWord(lit), Lit: lit, Pos: startPos}, nil
}

// isBarewordChar returns true if ch can be part of a bareword.
// Barewords exclude whitespace, parentheses, quotes and operator characters.
func isBarewordChar(ch byte) bool {
	switch ch {
	case ' ', '\t', '\n', '\r':
		return false
	case '(', ')', '=', '!', '<', '>', '"', '\'':
		return false
	default:
		return true
	}
}

// classifyWord checks if a word is a keyword (case-insensitive).
func classifyWord(word string) TokenKind {
	switch strings.ToUpper(word) {
	case "OR":
		return TokOr
	case "AND":
		return TokAnd
	case "NOT":
		return TokNot
	default:
		return TokWord
	}
}

// Peek returns the next token without consuming it.
func (l *Lexer) Peek() (Token, error) {
	savedPos := l.pos
	tok, err := l.Next()
	l.pos = savedPos
	return tok, err
}

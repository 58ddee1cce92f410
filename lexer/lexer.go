// Package lexer converts an input program into a sequence of tokens.
package lexer

import (
	"github.com/evipepota/evicc/compileerr"
	"github.com/evipepota/evicc/token"
)

// Lexer holds our object-state.
type Lexer struct {
	input        string
	position     int  // current character position
	readPosition int  // next character position
	ch           byte // current character, 0 at end of input
}

// New creates a Lexer instance from the source string.
func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// read one character forward
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

// peek at the next character without consuming it
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// NextToken reads and returns the next token, skipping whitespace.
//
// An error is returned for a stray '!' not followed by '=', or any other
// unrecognized byte.
func (l *Lexer) NextToken() (token.Token, error) {
	l.skipWhitespace()

	offset := l.position
	var tok token.Token
	tok.Offset = offset

	switch l.ch {
	case '+':
		tok = l.simple(token.PLUS)
	case '-':
		tok = l.simple(token.MINUS)
	case '*':
		tok = l.simple(token.ASTERISK)
	case '/':
		tok = l.simple(token.SLASH)
	case '(':
		tok = l.simple(token.LPAREN)
	case ')':
		tok = l.simple(token.RPAREN)
	case '{':
		tok = l.simple(token.LBRACE)
	case '}':
		tok = l.simple(token.RBRACE)
	case '[':
		tok = l.simple(token.LBRACKET)
	case ']':
		tok = l.simple(token.RBRACKET)
	case ';':
		tok = l.simple(token.SEMI)
	case ',':
		tok = l.simple(token.COMMA)
	case '&':
		tok = l.simple(token.AMP)
	case '=':
		if l.peekChar() == '=' {
			tok = l.two(token.EQ)
		} else {
			tok = l.simple(token.ASSIGN)
		}
	case '!':
		if l.peekChar() == '=' {
			tok = l.two(token.NE)
		} else {
			return token.Token{}, compileerr.New(offset, "invalid token")
		}
	case '<':
		if l.peekChar() == '=' {
			tok = l.two(token.LE)
		} else {
			tok = l.simple(token.LT)
		}
	case '>':
		if l.peekChar() == '=' {
			tok = l.two(token.GE)
		} else {
			tok = l.simple(token.GT)
		}
	case 0:
		tok.Type = token.EOF
		tok.Literal = ""
	default:
		if isDigit(l.ch) {
			return l.readNumber(), nil
		}
		if isAlpha(l.ch) {
			lit := l.readIdentifier()
			return token.Token{
				Type:    token.LookupIdentifier(lit),
				Literal: lit,
				Offset:  offset,
			}, nil
		}
		return token.Token{}, compileerr.New(offset, "invalid token")
	}

	return tok, nil
}

// simple consumes a single-character token and advances.
func (l *Lexer) simple(kind token.Type) token.Token {
	tok := token.Token{Type: kind, Literal: string(l.ch), Offset: l.position}
	l.readChar()
	return tok
}

// two consumes a two-character token (the current and next character)
// and advances past both.
func (l *Lexer) two(kind token.Type) token.Token {
	offset := l.position
	lit := string(l.ch) + string(l.peekChar())
	l.readChar()
	l.readChar()
	return token.Token{Type: kind, Literal: lit, Offset: offset}
}

// skipWhitespace advances past any run of whitespace.
func (l *Lexer) skipWhitespace() {
	for isWhitespace(l.ch) {
		l.readChar()
	}
}

// readNumber reads a maximal run of decimal digits.
func (l *Lexer) readNumber() token.Token {
	offset := l.position
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	lit := l.input[start:l.position]

	var val int64
	for _, c := range []byte(lit) {
		val = val*10 + int64(c-'0')
	}

	return token.Token{Type: token.NUMBER, Literal: lit, Value: int32(val), Offset: offset}
}

// readIdentifier reads a maximal run of identifier characters, which
// must start with a letter.
func (l *Lexer) readIdentifier() string {
	start := l.position
	for isAlnum(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isAlpha(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

func isAlnum(ch byte) bool {
	return isAlpha(ch) || isDigit(ch)
}

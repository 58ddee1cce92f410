package lexer

import (
	"testing"

	"github.com/evipepota/evicc/compileerr"
	"github.com/evipepota/evicc/token"
	"github.com/stretchr/testify/require"
)

// TestParseNumbers checks that digit runs are read as NUMBER tokens and
// that '-' is always tokenized separately rather than folded into the
// number (unary minus is a parser concern, not a lexer one).
func TestParseNumbers(t *testing.T) {
	input := `3 -43 17`

	tests := []struct {
		expectedType    token.Type
		expectedLiteral string
	}{
		{token.NUMBER, "3"},
		{token.MINUS, "-"},
		{token.NUMBER, "43"},
		{token.NUMBER, "17"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok, err := l.NextToken()
		require.NoError(t, err, "tests[%d]", i)
		require.Equal(t, tt.expectedType, tok.Type, "tests[%d] - type", i)
		require.Equal(t, tt.expectedLiteral, tok.Literal, "tests[%d] - literal", i)
	}
}

// TestParseOperators checks every punctuation/operator token, including
// the two-character operators which must win over their single-character
// prefixes.
func TestParseOperators(t *testing.T) {
	input := `+ - * / ( ) { } [ ] ; , & == != <= >= < > =`

	tests := []struct {
		expectedType    token.Type
		expectedLiteral string
	}{
		{token.PLUS, "+"},
		{token.MINUS, "-"},
		{token.ASTERISK, "*"},
		{token.SLASH, "/"},
		{token.LPAREN, "("},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.RBRACE, "}"},
		{token.LBRACKET, "["},
		{token.RBRACKET, "]"},
		{token.SEMI, ";"},
		{token.COMMA, ","},
		{token.AMP, "&"},
		{token.EQ, "=="},
		{token.NE, "!="},
		{token.LE, "<="},
		{token.GE, ">="},
		{token.LT, "<"},
		{token.GT, ">"},
		{token.ASSIGN, "="},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok, err := l.NextToken()
		require.NoError(t, err, "tests[%d]", i)
		require.Equal(t, tt.expectedType, tok.Type, "tests[%d] - type", i)
		require.Equal(t, tt.expectedLiteral, tok.Literal, "tests[%d] - literal", i)
	}
}

// TestParseKeywordsAndIdents checks keyword recognition against plain
// identifiers that merely share a prefix with a keyword.
func TestParseKeywordsAndIdents(t *testing.T) {
	input := `return if else while for int sizeof counter retur`

	tests := []struct {
		expectedType    token.Type
		expectedLiteral string
	}{
		{token.RETURN, "return"},
		{token.IF, "if"},
		{token.ELSE, "else"},
		{token.WHILE, "while"},
		{token.FOR, "for"},
		{token.INT, "int"},
		{token.SIZEOF, "sizeof"},
		{token.IDENT, "counter"},
		{token.IDENT, "retur"},
		{token.EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok, err := l.NextToken()
		require.NoError(t, err, "tests[%d]", i)
		require.Equal(t, tt.expectedType, tok.Type, "tests[%d] - type", i)
		require.Equal(t, tt.expectedLiteral, tok.Literal, "tests[%d] - literal", i)
	}
}

// TestInvalidToken checks that a stray '!' and an unrecognized byte both
// fail with "invalid token" anchored at the offending column.
func TestInvalidToken(t *testing.T) {
	tests := []struct {
		input  string
		offset int
	}{
		{"1 ! 2", 2},
		{"$", 0},
		{"a $ b", 2},
	}

	for _, tt := range tests {
		l := New(tt.input)
		var err error
		for {
			var tok token.Token
			tok, err = l.NextToken()
			if err != nil || tok.Type == token.EOF {
				break
			}
		}
		require.Error(t, err)
		require.Equal(t, "invalid token", err.Error())

		var ce *compileerr.Error
		require.ErrorAs(t, err, &ce)
		require.Equal(t, tt.offset, ce.Offset, "input %q", tt.input)
	}
}

// TestOffsets checks that byte offsets are tracked accurately across
// whitespace.
func TestOffsets(t *testing.T) {
	input := "  12 + x"
	l := New(input)

	tok, err := l.NextToken()
	require.NoError(t, err)
	require.Equal(t, 2, tok.Offset)

	tok, err = l.NextToken()
	require.NoError(t, err)
	require.Equal(t, 5, tok.Offset)

	tok, err = l.NextToken()
	require.NoError(t, err)
	require.Equal(t, 7, tok.Offset)
}

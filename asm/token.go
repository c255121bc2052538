package asm

// TokenKind represents the type of token.
type TokenKind uint8

const (
	TokenEOF TokenKind = iota
	TokenError
	TokenNewline

	TokenIdent
	TokenInt

	TokenDot          // .
	TokenComma        // ,
	TokenPlus         // +
	TokenMinus        // -
	TokenLeftParen    // (
	TokenRightParen   // )
	TokenLeftBracket  // [
	TokenRightBracket // ]
)

var tokenNames = [...]string{
	TokenEOF:          "end of input",
	TokenError:        "invalid character",
	TokenNewline:      "end of line",
	TokenIdent:        "identifier",
	TokenInt:          "integer",
	TokenDot:          "'.'",
	TokenComma:        "','",
	TokenPlus:         "'+'",
	TokenMinus:        "'-'",
	TokenLeftParen:    "'('",
	TokenRightParen:   "')'",
	TokenLeftBracket:  "'['",
	TokenRightBracket: "']'",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenNames) {
		return tokenNames[k]
	}
	return "Unknown"
}

// Token represents a lexical token.
type Token struct {
	Kind   TokenKind
	Lexeme string
	Line   int
	Column int
}

// Span represents a source code location span.
type Span struct {
	Start Position
	End   Position
}

// Position represents a position in source code.
type Position struct {
	Line   int
	Column int
}

func (t Token) span() Span {
	start := Position{Line: t.Line, Column: t.Column}
	return Span{
		Start: start,
		End:   Position{Line: t.Line, Column: t.Column + len(t.Lexeme)},
	}
}

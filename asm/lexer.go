package asm

// Lexer tokenizes assembly source.
type Lexer struct {
	source string
	pos    int
	line   int
	column int
	start  int
	tokens []Token
}

// NewLexer creates a new lexer for the given source.
func NewLexer(source string) *Lexer {
	// Estimate ~1 token per 4 characters of source.
	estTokens := max(len(source)/4, 16)
	return &Lexer{
		source: source,
		line:   1,
		column: 1,
		tokens: make([]Token, 0, estTokens),
	}
}

// Tokenize returns all tokens from the source. Invalid characters become
// TokenError tokens and are reported by the parser.
func (l *Lexer) Tokenize() []Token {
	for !l.isAtEnd() {
		l.start = l.pos
		l.scanToken()
	}

	l.tokens = append(l.tokens, Token{
		Kind:   TokenEOF,
		Line:   l.line,
		Column: l.column,
	})
	return l.tokens
}

func (l *Lexer) scanToken() {
	c := l.advance()

	switch c {
	case '.':
		l.addToken(TokenDot)
	case ',':
		l.addToken(TokenComma)
	case '+':
		l.addToken(TokenPlus)
	case '-':
		l.addToken(TokenMinus)
	case '(':
		l.addToken(TokenLeftParen)
	case ')':
		l.addToken(TokenRightParen)
	case '[':
		l.addToken(TokenLeftBracket)
	case ']':
		l.addToken(TokenRightBracket)

	case '#':
		for l.peek() != '\n' && !l.isAtEnd() {
			l.advance()
		}

	case ' ', '\r', '\t':
	case '\n':
		l.addToken(TokenNewline)
		l.line++
		l.column = 1

	default:
		switch {
		case isDigit(c):
			for isDigit(l.peek()) {
				l.advance()
			}
			l.addToken(TokenInt)
		case isAlpha(c) || c == '_':
			for isAlpha(l.peek()) || isDigit(l.peek()) || l.peek() == '_' {
				l.advance()
			}
			l.addToken(TokenIdent)
		default:
			l.addToken(TokenError)
		}
	}
}

func (l *Lexer) addToken(kind TokenKind) {
	l.tokens = append(l.tokens, Token{
		Kind:   kind,
		Lexeme: l.source[l.start:l.pos],
		Line:   l.line,
		Column: l.column - (l.pos - l.start),
	})
}

// The format is ASCII; any other byte is lexed as TokenError.
func (l *Lexer) advance() byte {
	c := l.source[l.pos]
	l.pos++
	l.column++
	return c
}

func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.pos]
}

func (l *Lexer) isAtEnd() bool {
	return l.pos >= len(l.source)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

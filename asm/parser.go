package asm

import (
	"strconv"

	"github.com/gogpu/regmerge/ir"
)

// Parser parses assembly tokens into a program.
type Parser struct {
	source  string
	tokens  []Token
	current int
	errors  SourceErrors

	prog       *ir.Program
	tempsSet   bool
	maxTemp    int
	arraySizes map[uint32]uint32
	arrayUse   map[uint32]int // highest direct index per referenced array
}

// NewParser creates a new parser for the tokens of source.
func NewParser(source string, tokens []Token) *Parser {
	return &Parser{
		source:     source,
		tokens:     tokens,
		prog:       &ir.Program{},
		maxTemp:    -1,
		arraySizes: make(map[uint32]uint32),
		arrayUse:   make(map[uint32]int),
	}
}

// Parse parses assembly source into a program.
//
// On failure the error is a SourceErrors holding one entry per bad line.
func Parse(source string) (*ir.Program, error) {
	return NewParser(source, NewLexer(source).Tokenize()).Parse()
}

// Parse parses the tokens and returns the program.
func (p *Parser) Parse() (*ir.Program, error) {
	for !p.isAtEnd() {
		if p.match(TokenNewline) {
			continue
		}
		if err := p.line(); err != nil {
			p.errors.Add(err)
			p.synchronize()
		}
	}

	if p.errors.HasErrors() {
		return nil, p.errors
	}
	p.finish()
	return p.prog, nil
}

// line parses one directive or instruction including its line end.
func (p *Parser) line() *SourceError {
	var err *SourceError
	if p.match(TokenDot) {
		err = p.directive()
	} else {
		err = p.instruction()
	}
	if err != nil {
		return err
	}
	if !p.check(TokenNewline) && !p.isAtEnd() {
		return p.errorAt(p.peek(), "unexpected %s, expected end of line", p.describe(p.peek()))
	}
	return nil
}

func (p *Parser) directive() *SourceError {
	name, err := p.expect(TokenIdent, "directive name")
	if err != nil {
		return err
	}

	switch name.Lexeme {
	case "name":
		tok, err := p.expect(TokenIdent, "program name")
		if err != nil {
			return err
		}
		p.prog.Name = tok.Lexeme

	case "stage":
		tok, err := p.expect(TokenIdent, "shader stage")
		if err != nil {
			return err
		}
		stage, ok := ir.LookupStage(tok.Lexeme)
		if !ok {
			return p.errorAt(tok, "unknown shader stage %q", tok.Lexeme)
		}
		p.prog.Stage = stage

	case "temps":
		n, err := p.integer("temporary count")
		if err != nil {
			return err
		}
		p.prog.NumTemps = n
		p.tempsSet = true

	case "array":
		idTok := p.peek()
		id, err := p.integer("array id")
		if err != nil {
			return err
		}
		if id < 1 {
			return p.errorAt(idTok, "array id %d must be at least 1", id)
		}
		size, err := p.integer("array length")
		if err != nil {
			return err
		}
		if _, dup := p.arraySizes[uint32(id)]; dup {
			return p.errorAt(idTok, "array %d declared twice", id)
		}
		p.arraySizes[uint32(id)] = uint32(size)

	default:
		return p.errorAt(name, "unknown directive .%s", name.Lexeme)
	}
	return nil
}

func (p *Parser) instruction() *SourceError {
	mnemonic, err := p.expect(TokenIdent, "instruction mnemonic")
	if err != nil {
		return err
	}

	in := ir.Instruction{}
	nDst := 0
	if op, ok := ir.LookupOpcode(mnemonic.Lexeme); ok {
		in.Op = op
	} else {
		in.Op = ir.OpGeneral
		in.Name = mnemonic.Lexeme
		nDst = ir.DstCount(in.Name)
	}

	for n := 0; p.startsOperand(); n++ {
		if n > 0 {
			if _, err := p.expect(TokenComma, "','"); err != nil {
				return err
			}
		}
		if n < nDst {
			dst, err := p.dstOperand()
			if err != nil {
				return err
			}
			in.Dst = append(in.Dst, dst)
		} else {
			src, err := p.srcOperand()
			if err != nil {
				return err
			}
			in.Src = append(in.Src, src)
		}
	}

	for p.check(TokenIdent) {
		kw := p.peek()
		switch kw.Lexeme {
		case "OFFSET":
			if in.TexOffsets != nil {
				return p.errorAt(kw, "duplicate OFFSET")
			}
			p.advance()
			offsets, err := p.operandList()
			if err != nil {
				return err
			}
			in.TexOffsets = offsets
		case "RES":
			if in.Resource != nil {
				return p.errorAt(kw, "duplicate RES")
			}
			p.advance()
			res, err := p.operandList()
			if err != nil {
				return err
			}
			if len(res) != 1 {
				return p.errorAt(kw, "RES takes exactly one operand, got %d", len(res))
			}
			in.Resource = &res[0]
		default:
			return p.errorAt(kw, "unexpected %q after operands", kw.Lexeme)
		}
	}

	p.prog.Instructions = append(p.prog.Instructions, in)
	return nil
}

// startsOperand reports whether the next token begins a register operand.
func (p *Parser) startsOperand() bool {
	tok := p.peek()
	if tok.Kind == TokenComma {
		return true
	}
	if tok.Kind != TokenIdent {
		return false
	}
	return tok.Lexeme != "OFFSET" && tok.Lexeme != "RES"
}

// operandList parses "( src, src, ... )".
func (p *Parser) operandList() ([]ir.SrcOperand, *SourceError) {
	if _, err := p.expect(TokenLeftParen, "'('"); err != nil {
		return nil, err
	}
	var out []ir.SrcOperand
	for {
		src, err := p.srcOperand()
		if err != nil {
			return nil, err
		}
		out = append(out, src)
		if !p.match(TokenComma) {
			break
		}
	}
	if _, err := p.expect(TokenRightParen, "')'"); err != nil {
		return nil, err
	}
	return out, nil
}

// register is the part shared by source and destination operands.
type register struct {
	file     ir.File
	index    int
	arrayID  uint32
	relAddr  *ir.SrcOperand
	relAddr2 *ir.SrcOperand
}

func (p *Parser) register() (register, *SourceError) {
	var r register

	tok, err := p.expect(TokenIdent, "register")
	if err != nil {
		return r, err
	}
	file, ok := ir.LookupFile(tok.Lexeme)
	if !ok {
		return r, p.errorAt(tok, "unknown register file %q", tok.Lexeme)
	}
	r.file = file

	if file == ir.FileArray {
		if _, err := p.expect(TokenLeftParen, "'('"); err != nil {
			return r, err
		}
		idTok := p.peek()
		id, err := p.integer("array id")
		if err != nil {
			return r, err
		}
		if id < 1 {
			return r, p.errorAt(idTok, "array id %d must be at least 1", id)
		}
		r.arrayID = uint32(id)
		if _, err := p.expect(TokenRightParen, "')'"); err != nil {
			return r, err
		}
	}

	if _, err := p.expect(TokenLeftBracket, "'['"); err != nil {
		return r, err
	}
	if p.check(TokenIdent) {
		rel, err := p.srcOperand()
		if err != nil {
			return r, err
		}
		r.relAddr = &rel
		if p.check(TokenPlus) || p.check(TokenMinus) {
			r.index, err = p.signedInteger("register offset")
			if err != nil {
				return r, err
			}
		}
	} else {
		r.index, err = p.signedInteger("register index")
		if err != nil {
			return r, err
		}
	}
	if _, err := p.expect(TokenRightBracket, "']'"); err != nil {
		return r, err
	}

	if p.match(TokenLeftBracket) {
		rel2, err := p.srcOperand()
		if err != nil {
			return r, err
		}
		r.relAddr2 = &rel2
		if _, err := p.expect(TokenRightBracket, "']'"); err != nil {
			return r, err
		}
	}

	p.noteUse(r)
	return r, nil
}

func (p *Parser) noteUse(r register) {
	switch r.file {
	case ir.FileTemporary:
		if r.relAddr == nil {
			p.maxTemp = max(p.maxTemp, r.index)
		}
	case ir.FileArray:
		use, seen := p.arrayUse[r.arrayID]
		if !seen {
			use = -1
		}
		if r.relAddr == nil {
			use = max(use, r.index)
		}
		p.arrayUse[r.arrayID] = use
	}
}

func (p *Parser) srcOperand() (ir.SrcOperand, *SourceError) {
	r, err := p.register()
	if err != nil {
		return ir.SrcOperand{}, err
	}
	src := ir.SrcOperand{
		File:     r.file,
		Index:    r.index,
		ArrayID:  r.arrayID,
		Swizzle:  ir.SwizzleXYZW,
		RelAddr:  r.relAddr,
		RelAddr2: r.relAddr2,
	}
	if p.match(TokenDot) {
		tok, err := p.expect(TokenIdent, "swizzle")
		if err != nil {
			return src, err
		}
		if len(tok.Lexeme) > 4 {
			return src, p.errorAt(tok, "swizzle %q has more than four components", tok.Lexeme)
		}
		for i := 0; i < 4; i++ {
			letter := tok.Lexeme[min(i, len(tok.Lexeme)-1)]
			c, ok := ir.ParseComponent(letter)
			if !ok {
				return src, p.errorAt(tok, "invalid swizzle %q", tok.Lexeme)
			}
			src.Swizzle = src.Swizzle.Set(i, c)
		}
	}
	return src, nil
}

func (p *Parser) dstOperand() (ir.DstOperand, *SourceError) {
	r, err := p.register()
	if err != nil {
		return ir.DstOperand{}, err
	}
	dst := ir.DstOperand{
		File:      r.file,
		Index:     r.index,
		ArrayID:   r.arrayID,
		WriteMask: ir.WriteMaskXYZW,
		RelAddr:   r.relAddr,
		RelAddr2:  r.relAddr2,
	}
	if p.match(TokenDot) {
		tok, err := p.expect(TokenIdent, "writemask")
		if err != nil {
			return dst, err
		}
		dst.WriteMask = ir.WriteMaskNone
		for i := 0; i < len(tok.Lexeme); i++ {
			c, ok := ir.ParseComponent(tok.Lexeme[i])
			if !ok || len(tok.Lexeme) > 4 {
				return dst, p.errorAt(tok, "invalid writemask %q", tok.Lexeme)
			}
			dst.WriteMask |= 1 << c
		}
	}
	return dst, nil
}

// finish fills in the counts that were not declared.
func (p *Parser) finish() {
	if !p.tempsSet {
		p.prog.NumTemps = p.maxTemp + 1
	}

	var numArrays uint32
	for id := range p.arraySizes {
		numArrays = max(numArrays, id)
	}
	for id := range p.arrayUse {
		numArrays = max(numArrays, id)
	}
	if numArrays == 0 {
		return
	}

	p.prog.ArraySizes = make([]uint32, numArrays)
	for id := uint32(1); id <= numArrays; id++ {
		size, ok := p.arraySizes[id]
		if !ok {
			size = uint32(max(p.arrayUse[id]+1, 1))
		}
		p.prog.ArraySizes[id-1] = size
	}
}

func (p *Parser) integer(what string) (int, *SourceError) {
	tok, err := p.expect(TokenInt, what)
	if err != nil {
		return 0, err
	}
	n, convErr := strconv.Atoi(tok.Lexeme)
	if convErr != nil {
		return 0, p.errorAt(tok, "%s %s out of range", what, tok.Lexeme)
	}
	return n, nil
}

func (p *Parser) signedInteger(what string) (int, *SourceError) {
	neg := false
	if p.match(TokenMinus) {
		neg = true
	} else {
		p.match(TokenPlus)
	}
	n, err := p.integer(what)
	if neg {
		n = -n
	}
	return n, err
}

// Helper methods

func (p *Parser) expect(kind TokenKind, what string) (Token, *SourceError) {
	if p.check(kind) {
		return p.advance(), nil
	}
	tok := p.peek()
	return tok, p.errorAt(tok, "unexpected %s, expected %s", p.describe(tok), what)
}

func (p *Parser) describe(tok Token) string {
	switch tok.Kind {
	case TokenIdent, TokenInt, TokenError:
		return strconv.Quote(tok.Lexeme)
	}
	return tok.Kind.String()
}

func (p *Parser) errorAt(tok Token, format string, args ...any) *SourceError {
	return NewSourceErrorf(tok.span(), p.source, format, args...)
}

// synchronize skips to the start of the next line.
func (p *Parser) synchronize() {
	for !p.isAtEnd() && !p.check(TokenNewline) {
		p.advance()
	}
}

func (p *Parser) check(kind TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) match(kind TokenKind) bool {
	if p.check(kind) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) advance() Token {
	tok := p.tokens[p.current]
	if !p.isAtEnd() {
		p.current++
	}
	return tok
}

func (p *Parser) peek() Token {
	return p.tokens[p.current]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Kind == TokenEOF
}

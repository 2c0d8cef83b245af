package parser

import (
	"strconv"

	"github.com/kvasm/vm32/encoding"
	"github.com/kvasm/vm32/lexer"
)

// Parser is a recursive-descent reader over a flat token slice. Use Parse
// rather than constructing one directly.
type Parser struct {
	toks  []lexer.Token
	pos   int
	diags []Diagnostic
}

// Parse consumes the full token stream and returns every item it could
// build together with every diagnostic recorded along the way. A malformed
// item never aborts the remaining file: the parser records one Diagnostic
// (and one ErrorItem marking the span), skips to the next line, and
// continues.
func Parse(toks []lexer.Token) ([]Item, []Diagnostic) {
	p := &Parser{toks: toks}
	var items []Item
	for !p.atEnd() {
		if p.current().Kind == lexer.KindNewline {
			p.advance()
			continue
		}
		items = append(items, p.parseLine()...)
	}
	return items, p.diags
}

func (p *Parser) current() lexer.Token {
	if p.pos < len(p.toks) {
		return p.toks[p.pos]
	}
	return p.toks[len(p.toks)-1]
}

func (p *Parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) atEnd() bool { return p.current().Kind == lexer.KindEOF }

func (p *Parser) prevEnd() int {
	if p.pos == 0 {
		return 0
	}
	return p.toks[p.pos-1].Span.End
}

func (p *Parser) addDiag(span lexer.Span, tag Tag, message string) {
	p.diags = append(p.diags, Diagnostic{Span: span, Tag: tag, Message: message})
}

func (p *Parser) addExpectedToken(span lexer.Span, want lexer.Kind) {
	p.diags = append(p.diags, Diagnostic{Span: span, Tag: ExpectedToken, Want: want})
}

func (p *Parser) lastDiagItem() Item {
	d := p.diags[len(p.diags)-1]
	return &ErrorItem{Diag: d, Span: d.Span}
}

// recover skips to just past the next newline (or EOF), guaranteeing the
// parser advances by at least one token even if the failing item consumed
// nothing.
func (p *Parser) recover() {
	start := p.pos
	for !p.atEnd() && p.current().Kind != lexer.KindNewline {
		p.advance()
	}
	if p.current().Kind == lexer.KindNewline {
		p.advance()
	}
	if p.pos == start {
		p.advance()
	}
}

// consumeTerminator expects a newline or EOF to end the current item's
// line. It does not advance past EOF.
func (p *Parser) consumeTerminator() bool {
	switch p.current().Kind {
	case lexer.KindNewline:
		p.advance()
		return true
	case lexer.KindEOF:
		return true
	default:
		p.addDiag(p.current().Span, ExpectedNewLine, "")
		return false
	}
}

func (p *Parser) parseLine() []Item {
	tok := p.current()
	switch tok.Kind {
	case lexer.KindLabelDef:
		return p.parseLabelLine(tok)
	case lexer.KindMnemonic:
		return p.parseInstructionLine()
	case lexer.KindDirective:
		return p.parseDirectiveLine()
	default:
		p.addDiag(tok.Span, CannotParse, tok.Text)
		item := p.lastDiagItem()
		p.recover()
		return []Item{item}
	}
}

func (p *Parser) parseLabelLine(tok lexer.Token) []Item {
	p.advance()
	items := []Item{&Label{Name: tok.Text, Span: tok.Span}}
	if p.current().Kind == lexer.KindMnemonic {
		instrItems := p.parseInstructionLine()
		return append(items, instrItems...)
	}
	if !p.consumeTerminator() {
		p.recover()
	}
	return items
}

func (p *Parser) parseInstructionLine() []Item {
	tok := p.current()
	item, ok := p.parseInstruction(tok)
	if !ok {
		errItem := p.lastDiagItem()
		p.recover()
		return []Item{errItem}
	}
	if !p.consumeTerminator() {
		p.recover()
	}
	return []Item{item}
}

func (p *Parser) parseInstruction(tok lexer.Token) (Item, bool) {
	p.advance() // consume the mnemonic
	op := tok.Op
	switch op.Format() {
	case encoding.FormatTwoReg:
		r0, ok := p.parseRegisterOperand()
		if !ok {
			return nil, false
		}
		if !p.expect(lexer.KindComma) {
			return nil, false
		}
		r1, ok := p.parseRegisterOperand()
		if !ok {
			return nil, false
		}
		return &Instruction{Op: op, Reg0: r0, Reg1: r1, Span: lexer.Span{Start: tok.Span.Start, End: p.prevEnd()}}, true
	case encoding.FormatReg:
		r0, ok := p.parseRegisterOperand()
		if !ok {
			return nil, false
		}
		return &Instruction{Op: op, Reg0: r0, Span: lexer.Span{Start: tok.Span.Start, End: p.prevEnd()}}, true
	case encoding.FormatRegImm:
		r0, ok := p.parseRegisterOperand()
		if !ok {
			return nil, false
		}
		if !p.expect(lexer.KindComma) {
			return nil, false
		}
		imm, ok := p.parseImmExpr()
		if !ok {
			return nil, false
		}
		return &Instruction{Op: op, Reg0: r0, Imm: imm, Span: lexer.Span{Start: tok.Span.Start, End: p.prevEnd()}}, true
	default: // encoding.FormatImm
		imm, ok := p.parseImmExpr()
		if !ok {
			return nil, false
		}
		return &Instruction{Op: op, Imm: imm, Span: lexer.Span{Start: tok.Span.Start, End: p.prevEnd()}}, true
	}
}

func (p *Parser) parseRegisterOperand() (encoding.Register, bool) {
	tok := p.current()
	if tok.Kind != lexer.KindRegister {
		p.addDiag(tok.Span, ExpectedRegister, "")
		return 0, false
	}
	reg, ok := encoding.RegisterByName(tok.Text)
	if !ok {
		p.addDiag(tok.Span, ExpectedValidRegister, tok.Text)
		return 0, false
	}
	p.advance()
	return reg, true
}

func (p *Parser) expect(kind lexer.Kind) bool {
	tok := p.current()
	if tok.Kind != kind {
		p.addExpectedToken(tok.Span, kind)
		return false
	}
	p.advance()
	return true
}

// parseImmExpr implements the grammar's precedence climb:
//
//	imm  := term (('+'|'-') term)*
//	term := factor (('*'|'/') factor)*
func (p *Parser) parseImmExpr() (Expr, bool) {
	left, ok := p.parseTerm()
	if !ok {
		return nil, false
	}
	for {
		var kind BinOpKind
		switch p.current().Kind {
		case lexer.KindPlus:
			kind = OpAdd
		case lexer.KindMinus:
			kind = OpSub
		default:
			return left, true
		}
		p.advance()
		right, ok := p.parseTerm()
		if !ok {
			return nil, false
		}
		left = &BinExpr{Op: kind, Left: left, Right: right, Span: lexer.Span{Start: left.ExprSpan().Start, End: right.ExprSpan().End}}
	}
}

func (p *Parser) parseTerm() (Expr, bool) {
	left, ok := p.parseFactor()
	if !ok {
		return nil, false
	}
	for {
		var kind BinOpKind
		switch p.current().Kind {
		case lexer.KindStar:
			kind = OpMul
		case lexer.KindSlash:
			kind = OpDiv
		default:
			return left, true
		}
		p.advance()
		right, ok := p.parseFactor()
		if !ok {
			return nil, false
		}
		left = &BinExpr{Op: kind, Left: left, Right: right, Span: lexer.Span{Start: left.ExprSpan().Start, End: right.ExprSpan().End}}
	}
}

func (p *Parser) parseFactor() (Expr, bool) {
	tok := p.current()
	switch tok.Kind {
	case lexer.KindInt:
		v, err := strconv.ParseUint(tok.Text, 10, 32)
		if err != nil {
			p.addDiag(tok.Span, ExpectedValidImmediate, tok.Text)
			return nil, false
		}
		p.advance()
		return &IntLit{Value: uint32(v), Span: tok.Span}, true
	case lexer.KindHex:
		v, err := strconv.ParseUint(tok.Text, 16, 32)
		if err != nil {
			p.addDiag(tok.Span, ExpectedValidImmediate, tok.Text)
			return nil, false
		}
		p.advance()
		return &IntLit{Value: uint32(v), Span: tok.Span}, true
	case lexer.KindLabelRef:
		p.advance()
		return &LabelRefExpr{Name: tok.Text, Span: tok.Span}, true
	case lexer.KindLParen:
		p.advance()
		inner, ok := p.parseImmExpr()
		if !ok {
			return nil, false
		}
		if !p.expect(lexer.KindRParen) {
			return nil, false
		}
		return inner, true
	case lexer.KindNewline, lexer.KindEOF:
		p.addDiag(tok.Span, ExpectedImmediate, "")
		return nil, false
	default:
		p.addDiag(tok.Span, ExpectedValidImmediate, tok.Text)
		return nil, false
	}
}

func (p *Parser) parseDirectiveLine() []Item {
	tok := p.current()
	item, ok := p.parseDirective(tok)
	if !ok {
		errItem := p.lastDiagItem()
		p.recover()
		return []Item{errItem}
	}
	if !p.consumeTerminator() {
		p.recover()
	}
	return []Item{item}
}

func (p *Parser) parseDirective(tok lexer.Token) (Item, bool) {
	p.advance() // consume the directive keyword
	switch tok.Text {
	case "i32":
		val, ok := p.parseImmExpr()
		if !ok {
			return nil, false
		}
		return &StoreI32{Value: val, Span: lexer.Span{Start: tok.Span.Start, End: p.prevEnd()}}, true
	case "str":
		strTok := p.current()
		if strTok.Kind != lexer.KindString {
			p.addDiag(strTok.Span, CannotParse, "expected string literal after .str")
			return nil, false
		}
		p.advance()
		return &StoreStr{Bytes: p.decodeString(strTok), Span: lexer.Span{Start: tok.Span.Start, End: strTok.Span.End}}, true
	default:
		p.addDiag(tok.Span, CannotParse, "."+tok.Text)
		return nil, false
	}
}

// decodeString decodes the escapes recognized in a .str literal: \n \r \t
// \0 \" \'. Any other backslash sequence is a diagnostic; the literal byte
// '?' is substituted so the rest of the file still compiles.
func (p *Parser) decodeString(tok lexer.Token) []byte {
	raw := tok.Text
	out := make([]byte, 0, len(raw))
	// +1 accounts for the opening quote consumed before tok.Text began.
	base := tok.Span.Start + 1
	for i := 0; i < len(raw); {
		if raw[i] == '\\' && i+1 < len(raw) {
			switch raw[i+1] {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case '0':
				out = append(out, 0)
			case '"':
				out = append(out, '"')
			case '\'':
				out = append(out, '\'')
			default:
				p.addDiag(lexer.Span{Start: base + i, End: base + i + 2}, InvalidEscapeSequence, string(raw[i+1]))
				out = append(out, '?')
			}
			i += 2
			continue
		}
		out = append(out, raw[i])
		i++
	}
	return out
}

// Package parser turns a lexer.Token stream into an ordered sequence of
// Items — labels, instructions, data directives, and recovered errors —
// together with the immediate-expression trees each instruction or
// directive needs, per the grammar:
//
//	item           := label_def | instruction | data_directive
//	label_def      := IDENT ':' [instruction]
//	instruction    := opcode operands
//	operands       := two_reg | reg ',' imm | reg | imm | ε   // chosen by opcode
//	data_directive := '.i32' imm | '.str' STRING
//	imm            := term (('+'|'-') term)*
//	term           := factor (('*'|'/') factor)*
//	factor         := INT | HEX | '%' IDENT | '(' imm ')'
package parser

import (
	"github.com/kvasm/vm32/encoding"
	"github.com/kvasm/vm32/lexer"
)

// Item is one top-level parsed unit. Every concrete type also reports the
// source span it was parsed from.
type Item interface {
	ItemSpan() lexer.Span
	itemNode()
}

// Label is a label definition; it occupies zero bytes in the emitted image.
type Label struct {
	Name string
	Span lexer.Span
}

// Instruction carries an opcode and whichever operand slots its
// encoding.Format uses. Unused slots are zero-valued.
type Instruction struct {
	Op   encoding.Opcode
	Reg0 encoding.Register
	Reg1 encoding.Register
	Imm  Expr // non-nil only for FormatRegImm and FormatImm
	Span lexer.Span
}

// StoreI32 is a ".i32 <imm>" directive: four bytes, the little-endian
// encoding of the folded immediate.
type StoreI32 struct {
	Value Expr
	Span  lexer.Span
}

// StoreStr is a ".str \"...\"" directive: raw bytes with escapes already
// decoded, no trailing NUL.
type StoreStr struct {
	Bytes []byte
	Span  lexer.Span
}

// ErrorItem marks a span the parser could not turn into a well-formed item.
// It occupies no bytes in the compiled layout.
type ErrorItem struct {
	Diag Diagnostic
	Span lexer.Span
}

func (i *Label) ItemSpan() lexer.Span       { return i.Span }
func (i *Instruction) ItemSpan() lexer.Span { return i.Span }
func (i *StoreI32) ItemSpan() lexer.Span    { return i.Span }
func (i *StoreStr) ItemSpan() lexer.Span    { return i.Span }
func (i *ErrorItem) ItemSpan() lexer.Span   { return i.Span }

func (*Label) itemNode()       {}
func (*Instruction) itemNode() {}
func (*StoreI32) itemNode()    {}
func (*StoreStr) itemNode()    {}
func (*ErrorItem) itemNode()   {}

// Expr is an immediate-expression node: an integer literal, a label
// reference, or a binary operator over two sub-expressions.
type Expr interface {
	ExprSpan() lexer.Span
	exprNode()
}

// IntLit is a literal integer (decimal or hex), already parsed into an
// unsigned 32-bit value.
type IntLit struct {
	Value uint32
	Span  lexer.Span
}

// LabelRefExpr is a "%name" reference inside an immediate expression.
type LabelRefExpr struct {
	Name string
	Span lexer.Span
}

// BinOpKind names the four constant-folding operators.
type BinOpKind byte

const (
	OpAdd BinOpKind = '+'
	OpSub BinOpKind = '-'
	OpMul BinOpKind = '*'
	OpDiv BinOpKind = '/'
)

// BinExpr is a binary operator node; Left/Right are evaluated with wrapping
// 32-bit arithmetic during compilation.
type BinExpr struct {
	Op          BinOpKind
	Left, Right Expr
	Span        lexer.Span
}

func (e *IntLit) ExprSpan() lexer.Span      { return e.Span }
func (e *LabelRefExpr) ExprSpan() lexer.Span { return e.Span }
func (e *BinExpr) ExprSpan() lexer.Span     { return e.Span }

func (*IntLit) exprNode()       {}
func (*LabelRefExpr) exprNode() {}
func (*BinExpr) exprNode()      {}

// Package lexer turns assembly source text into a flat stream of tokens
// with byte spans, following a hand-written scanner in the style of a
// single-pass recursive-descent reader rather than a regex table: every
// token class in the grammar corresponds to one reader function.
package lexer

import (
	"fmt"

	"github.com/kvasm/vm32/encoding"
)

// Span is a half-open byte range [Start, End) into the source buffer a
// token (or later, a diagnostic) refers to.
type Span struct {
	Start int
	End   int
}

func (s Span) String() string { return fmt.Sprintf("%d:%d", s.Start, s.End) }

// Kind enumerates the lexical token classes named in the grammar.
type Kind int

const (
	KindLabelDef   Kind = iota // "name:" — Text holds name without the colon
	KindLabelRef               // "%name" — Text holds name without '%'
	KindRegister               // "$name" — Text holds name without '$'
	KindInt                    // decimal integer literal — Text holds the digits
	KindHex                    // "0x...." literal — Text holds the digits after 0x
	KindString                 // a quoted string literal — Text holds the raw contents between quotes, escapes undecoded
	KindMnemonic               // one of the recognized opcodes — Op holds the decoded Opcode
	KindDirective              // any "."-prefixed word, e.g. ".i32" or ".str" — Text holds the directive name without the leading '.'
	KindComma
	KindPlus
	KindMinus
	KindStar
	KindSlash
	KindLParen
	KindRParen
	KindNewline
	KindEOF
	KindError // Text holds a human-readable description of the problem
)

var kindNames = [...]string{
	KindLabelDef: "label", KindLabelRef: "label-ref", KindRegister: "register",
	KindInt: "int", KindHex: "hex", KindString: "string",
	KindMnemonic: "mnemonic", KindDirective: "directive",
	KindComma: ",", KindPlus: "+", KindMinus: "-", KindStar: "*", KindSlash: "/",
	KindLParen: "(", KindRParen: ")", KindNewline: "newline", KindEOF: "eof",
	KindError: "error",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Token is one lexical unit with its source span.
type Token struct {
	Kind Kind
	Span Span
	Text string
	Op   encoding.Opcode
}

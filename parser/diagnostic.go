package parser

import (
	"fmt"

	"github.com/kvasm/vm32/lexer"
)

// Tag is a closed enumeration of compile-time diagnostic kinds. Diagnostic
// values are plain data, not the error interface, so the parser and
// compiler can accumulate many of them across a single pass instead of
// stopping at the first one.
type Tag int

const (
	CannotParse Tag = iota
	ExpectedRegister
	ExpectedValidRegister
	ExpectedImmediate
	ExpectedValidImmediate
	ExpectedLabel
	ExpectedNewLine
	ExpectedToken
	CannotCompileExpression
	InvalidEscapeSequence
)

var tagNames = [...]string{
	CannotParse: "CannotParse", ExpectedRegister: "ExpectedRegister",
	ExpectedValidRegister: "ExpectedValidRegister", ExpectedImmediate: "ExpectedImmediate",
	ExpectedValidImmediate: "ExpectedValidImmediate", ExpectedLabel: "ExpectedLabel",
	ExpectedNewLine: "ExpectedNewLine", ExpectedToken: "ExpectedToken",
	CannotCompileExpression: "CannotCompileExpression", InvalidEscapeSequence: "InvalidEscapeSequence",
}

func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return "Tag(?)"
}

// Diagnostic is a single compile-time error, tagged with the source span it
// refers to. It deliberately does not implement the error interface: the
// parser and compiler collect many of these per run rather than stopping at
// the first one.
type Diagnostic struct {
	Span lexer.Span
	Tag  Tag
	// Want is populated only for ExpectedToken, naming the missing token
	// kind.
	Want lexer.Kind
	// Message is a short human-readable detail, e.g. the offending text.
	Message string
}

func (d Diagnostic) String() string {
	if d.Tag == ExpectedToken {
		return fmt.Sprintf("%s: expected %v: %s", d.Span, d.Want, d.Message)
	}
	if d.Message == "" {
		return fmt.Sprintf("%s: %s", d.Span, d.Tag)
	}
	return fmt.Sprintf("%s: %s: %s", d.Span, d.Tag, d.Message)
}

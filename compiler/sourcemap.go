package compiler

import "github.com/kvasm/vm32/lexer"

// SourceMap indexes compiled byte offsets back to the source span that
// produced them. Built once during Pass 1 layout, it exists for tooling —
// a disassembler or a JSON execution report annotating a program counter
// with the assembly line it came from — and plays no role in Pass 2
// emission itself.
type SourceMap struct {
	entries []sourceMapEntry
}

type sourceMapEntry struct {
	Offset int
	Span   lexer.Span
}

func newSourceMap() *SourceMap {
	return &SourceMap{}
}

// add records that the item compiled at offset originated from span. Pass 1
// visits items in increasing offset order, so entries are appended already
// sorted by Offset.
func (m *SourceMap) add(offset int, span lexer.Span) {
	m.entries = append(m.entries, sourceMapEntry{Offset: offset, Span: span})
}

// SpanForOffset returns the source span of whichever item was compiled at
// the given byte offset, if any.
func (m *SourceMap) SpanForOffset(offset int) (lexer.Span, bool) {
	// Entries are sorted by Offset; the instruction set is small enough in
	// practice that a linear scan beats the bookkeeping of a binary search.
	for _, e := range m.entries {
		if e.Offset == offset {
			return e.Span, true
		}
	}
	return lexer.Span{}, false
}

// Len returns the number of indexed offsets.
func (m *SourceMap) Len() int { return len(m.entries) }

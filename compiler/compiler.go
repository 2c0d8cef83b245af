// Package compiler turns parsed items into a flat machine-code image: a
// deterministic Pass 1 layout assigns every item a byte offset and resolves
// label definitions, then a fixed-point Pass 2 evaluates every immediate
// expression against the label map and emits bytes, retrying only the
// items still blocked on an unresolved label.
package compiler

import (
	"encoding/binary"

	kencoding "github.com/kvasm/vm32/encoding"
	"github.com/kvasm/vm32/lexer"
	"github.com/kvasm/vm32/parser"
)

// Image is the result of a successful assembly: the flat byte image plus
// the offset-to-source index built alongside it.
type Image struct {
	Bytes     []byte
	SourceMap *SourceMap
}

// Assemble runs the full pipeline — lexer, parser, compiler — over source
// text. It returns the image and a nil diagnostic list on success, or a nil
// image paired with every diagnostic recorded across all three stages: the
// compiler never emits a partial image.
func Assemble(source string) (*Image, []parser.Diagnostic) {
	items, diags := parser.Parse(lexer.Tokenize(source))

	offsets, labels, totalSize, layoutDiags, smap := layout(items)
	diags = append(diags, layoutDiags...)

	bytes, emitDiags := emit(items, offsets, labels, totalSize)
	diags = append(diags, emitDiags...)

	if len(diags) > 0 {
		return nil, diags
	}
	return &Image{Bytes: bytes, SourceMap: smap}, nil
}

// itemSize returns an item's deterministic compiled size: 4 bytes for an
// instruction or a ".i32", the raw decoded byte length for a ".str", and 0
// for a label definition or a recovered parse error (excluded from layout).
func itemSize(item parser.Item) int {
	switch it := item.(type) {
	case *parser.Instruction:
		return 4
	case *parser.StoreI32:
		return 4
	case *parser.StoreStr:
		return len(it.Bytes)
	default:
		return 0
	}
}

// layout is Pass 1: it walks items in order, assigning each a byte offset
// equal to the running sum of preceding sizes, and records every label's
// offset. Redefining a label is a diagnostic, not a panic; the first
// definition wins and layout continues so later errors can still surface.
func layout(items []parser.Item) (offsets map[parser.Item]int, labels map[string]uint32, totalSize int, diags []parser.Diagnostic, smap *SourceMap) {
	offsets = make(map[parser.Item]int, len(items))
	labels = make(map[string]uint32)
	smap = newSourceMap()

	offset := 0
	for _, item := range items {
		if lbl, ok := item.(*parser.Label); ok {
			if _, exists := labels[lbl.Name]; exists {
				diags = append(diags, parser.Diagnostic{
					Span:    lbl.Span,
					Tag:     parser.CannotCompileExpression,
					Message: "duplicate label " + lbl.Name,
				})
				continue
			}
			labels[lbl.Name] = uint32(offset)
			continue
		}
		if _, ok := item.(*parser.ErrorItem); ok {
			continue
		}
		size := itemSize(item)
		offsets[item] = offset
		smap.add(offset, item.ItemSpan())
		offset += size
	}
	totalSize = offset
	return
}

type pendingItem struct {
	item   parser.Item
	offset int
}

// emit is Pass 2: a fixed-point worklist loop. Each round it attempts every
// still-unresolved item; items that resolve are written into buf and
// dropped. The loop stops when the worklist is empty or a round makes no
// progress, at which point every remaining item becomes a
// CannotCompileExpression diagnostic at its own span. With Pass 1's layout
// already fixed, a single forward round always suffices in practice — the
// loop exists so emission order never matters.
func emit(items []parser.Item, offsets map[parser.Item]int, labels map[string]uint32, totalSize int) ([]byte, []parser.Diagnostic) {
	buf := make([]byte, totalSize)
	var diags []parser.Diagnostic

	pending := make([]pendingItem, 0, len(offsets))
	for _, item := range items {
		if _, tracked := offsets[item]; tracked {
			pending = append(pending, pendingItem{item: item, offset: offsets[item]})
		}
	}

	for len(pending) > 0 {
		var next []pendingItem
		progressed := false
		for _, pi := range pending {
			resolved, hardErr := tryEmit(buf, pi.item, pi.offset, labels)
			switch {
			case hardErr != nil:
				diags = append(diags, *hardErr)
				progressed = true
			case resolved:
				progressed = true
			default:
				next = append(next, pi)
			}
		}
		pending = next
		if !progressed {
			break
		}
	}

	for _, pi := range pending {
		diags = append(diags, parser.Diagnostic{
			Span:    pi.item.ItemSpan(),
			Tag:     parser.CannotCompileExpression,
			Message: "unresolved label reference",
		})
	}

	return buf, diags
}

// tryEmit attempts to write one item's bytes at its pre-assigned offset. It
// returns resolved=false, hardErr=nil when the item is still blocked on an
// unresolved label (retry it later), and a non-nil hardErr for a failure
// that will never resolve by retrying (division by zero).
func tryEmit(buf []byte, item parser.Item, offset int, labels map[string]uint32) (resolved bool, hardErr *parser.Diagnostic) {
	switch it := item.(type) {
	case *parser.StoreStr:
		copy(buf[offset:], it.Bytes)
		return true, nil

	case *parser.StoreI32:
		v, status, d := evalExpr(it.Value, labels)
		switch status {
		case evalError:
			return false, &d
		case evalUnresolved:
			return false, nil
		}
		binary.LittleEndian.PutUint32(buf[offset:], v)
		return true, nil

	case *parser.Instruction:
		return tryEmitInstruction(buf, it, offset, labels)
	}
	return true, nil
}

func tryEmitInstruction(buf []byte, in *parser.Instruction, offset int, labels map[string]uint32) (bool, *parser.Diagnostic) {
	switch in.Op.Format() {
	case kencoding.FormatTwoReg:
		word := kencoding.EncodeTwoReg(in.Op, in.Reg0, in.Reg1)
		binary.LittleEndian.PutUint32(buf[offset:], word)
		return true, nil

	case kencoding.FormatReg:
		word := kencoding.EncodeReg(in.Op, in.Reg0)
		binary.LittleEndian.PutUint32(buf[offset:], word)
		return true, nil

	case kencoding.FormatRegImm:
		v, status, d := evalExpr(in.Imm, labels)
		switch status {
		case evalError:
			return false, &d
		case evalUnresolved:
			return false, nil
		}
		word := kencoding.EncodeRegImm(in.Op, in.Reg0, v)
		binary.LittleEndian.PutUint32(buf[offset:], word)
		return true, nil

	default: // kencoding.FormatImm
		v, status, d := evalExpr(in.Imm, labels)
		switch status {
		case evalError:
			return false, &d
		case evalUnresolved:
			return false, nil
		}
		word := kencoding.EncodeImm(in.Op, v)
		binary.LittleEndian.PutUint32(buf[offset:], word)
		return true, nil
	}
}

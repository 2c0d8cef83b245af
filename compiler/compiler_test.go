package compiler

import (
	"encoding/binary"
	"testing"

	"github.com/kvasm/vm32/parser"
)

func assembleOK(t *testing.T, src string) []byte {
	t.Helper()
	img, diags := Assemble(src)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics for %q: %v", src, diags)
	}
	return img.Bytes
}

func TestAssembleHaltLength(t *testing.T) {
	bytes := assembleOK(t, "syscalli 0\n")
	if len(bytes) != 4 {
		t.Fatalf("got %d bytes want 4", len(bytes))
	}
}

func TestAssembleExpressionFolding(t *testing.T) {
	bytes := assembleOK(t, ".i32 (1 + 2) * 3\n")
	if len(bytes) != 4 {
		t.Fatalf("got %d bytes want 4", len(bytes))
	}
	if got := binary.LittleEndian.Uint32(bytes); got != 9 {
		t.Fatalf("got %d want 9", got)
	}
}

func TestAssembleOperatorPrecedence(t *testing.T) {
	cases := []struct {
		src  string
		want uint32
	}{
		{".i32 1 + 2 * 3\n", 7},
		{".i32 4 * 2 + 3\n", 11},
	}
	for _, c := range cases {
		bytes := assembleOK(t, c.src)
		if got := binary.LittleEndian.Uint32(bytes); got != c.want {
			t.Fatalf("%q: got %d want %d", c.src, got, c.want)
		}
	}
}

func TestAssembleForwardLabelReference(t *testing.T) {
	// li references a label defined later in the same program: the
	// fixed-point worklist must resolve it without a second explicit pass.
	bytes := assembleOK(t, "ji 4\nli $r1, %target\nsyscalli 0\ntarget:\n.i32 42\n")
	if len(bytes) != 16 {
		t.Fatalf("got %d bytes want 16", len(bytes))
	}
}

func TestAssembleDuplicateLabelIsDiagnostic(t *testing.T) {
	_, diags := Assemble("a: ji 4\na: ji 8\n")
	if len(diags) != 1 || diags[0].Tag != parser.CannotCompileExpression {
		t.Fatalf("got %v", diags)
	}
}

func TestAssembleUnresolvedLabelIsDiagnostic(t *testing.T) {
	_, diags := Assemble(".i32 %missing\n")
	if len(diags) != 1 || diags[0].Tag != parser.CannotCompileExpression {
		t.Fatalf("got %v", diags)
	}
}

func TestAssembleDivisionByZeroDuringFolding(t *testing.T) {
	_, diags := Assemble(".i32 4 / 0\n")
	if len(diags) != 1 || diags[0].Tag != parser.CannotCompileExpression {
		t.Fatalf("got %v", diags)
	}
}

func TestAssembleIsIdempotent(t *testing.T) {
	const src = "loop: add $r0, $r1\nji %loop\nsyscalli 0\n"
	img1, diags1 := Assemble(src)
	img2, diags2 := Assemble(src)
	if len(diags1) != 0 || len(diags2) != 0 {
		t.Fatalf("unexpected diagnostics: %v / %v", diags1, diags2)
	}
	if string(img1.Bytes) != string(img2.Bytes) {
		t.Fatalf("assemble was not byte-for-byte idempotent")
	}
}

func TestAssembleNoImageWhenDiagnosticsPresent(t *testing.T) {
	img, diags := Assemble("bogus\n")
	if img != nil {
		t.Fatalf("expected nil image, got %+v", img)
	}
	if len(diags) == 0 {
		t.Fatalf("expected diagnostics")
	}
}

func TestAssembleSourceMapCoversInstructions(t *testing.T) {
	img, diags := Assemble("add $r0, $r1\nsub $r0, $r1\n")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if _, ok := img.SourceMap.SpanForOffset(0); !ok {
		t.Fatalf("expected a source span at offset 0")
	}
	if _, ok := img.SourceMap.SpanForOffset(4); !ok {
		t.Fatalf("expected a source span at offset 4")
	}
	if _, ok := img.SourceMap.SpanForOffset(8); ok {
		t.Fatalf("did not expect a source span past the image")
	}
}

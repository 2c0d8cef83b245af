package lexer

import (
	"testing"

	"github.com/kvasm/vm32/encoding"
)

func kinds(toks []Token) []Kind {
	out := make([]Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeInstructionLine(t *testing.T) {
	toks := Tokenize("add $r0, $r2\n")
	want := []Kind{KindMnemonic, KindRegister, KindComma, KindRegister, KindNewline, KindEOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v want %v", i, got[i], want[i])
		}
	}
	if toks[0].Op != encoding.ADD {
		t.Fatalf("opcode: got %v want ADD", toks[0].Op)
	}
	if toks[1].Text != "r0" || toks[3].Text != "r2" {
		t.Fatalf("register text: %q / %q", toks[1].Text, toks[3].Text)
	}
}

func TestTokenizeLabelDef(t *testing.T) {
	toks := Tokenize("loop: add $r0, $r1\n")
	if toks[0].Kind != KindLabelDef || toks[0].Text != "loop" {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestTokenizeLabelRef(t *testing.T) {
	toks := Tokenize("ji %loop\n")
	if toks[1].Kind != KindLabelRef || toks[1].Text != "loop" {
		t.Fatalf("got %+v", toks[1])
	}
}

func TestTokenizeHexUppercaseOnly(t *testing.T) {
	toks := Tokenize(".i32 0xFF\n")
	if toks[1].Kind != KindHex || toks[1].Text != "FF" {
		t.Fatalf("got %+v", toks[1])
	}
}

func TestTokenizeHexLowercaseRejected(t *testing.T) {
	toks := Tokenize(".i32 0xff\n")
	// "0x" with no uppercase hex digits following is a malformed literal.
	if toks[1].Kind != KindError {
		t.Fatalf("expected error token for lowercase hex, got %+v", toks[1])
	}
}

func TestTokenizeComment(t *testing.T) {
	toks := Tokenize("add $r0, $r1 // comment\nsub $r0, $r1\n")
	got := kinds(toks)
	want := []Kind{
		KindMnemonic, KindRegister, KindComma, KindRegister, KindNewline,
		KindMnemonic, KindRegister, KindComma, KindRegister, KindNewline,
		KindEOF,
	}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestTokenizeString(t *testing.T) {
	toks := Tokenize(`.str "hi\n"` + "\n")
	if toks[1].Kind != KindString || toks[1].Text != `hi\n` {
		t.Fatalf("got %+v", toks[1])
	}
}

func TestTokenizeUnterminatedString(t *testing.T) {
	toks := Tokenize(`.str "hi`)
	if toks[1].Kind != KindError {
		t.Fatalf("expected error for unterminated string, got %+v", toks[1])
	}
}

func TestTokenizeUnknownMnemonic(t *testing.T) {
	toks := Tokenize("bogus $r0\n")
	if toks[0].Kind != KindError {
		t.Fatalf("expected error for unknown word, got %+v", toks[0])
	}
}

func TestTokenSpans(t *testing.T) {
	toks := Tokenize("add")
	if toks[0].Span != (Span{0, 3}) {
		t.Fatalf("got span %v", toks[0].Span)
	}
}

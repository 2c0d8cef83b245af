package lexer

import "github.com/kvasm/vm32/encoding"

// Lexer is a byte-at-a-time scanner over a single source buffer.
type Lexer struct {
	input        string
	position     int // start of the byte currently in ch
	readPosition int // position of the next byte to read
	ch           byte
}

// New returns a Lexer ready to scan input.
func New(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

// skipBlank advances past spaces, tabs and carriage returns, but not
// newlines: the grammar is
// line-oriented and the newline token is significant.
func (l *Lexer) skipBlank() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) readWhile(pred func(byte) bool) string {
	start := l.position
	for pred(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// Tokenize scans the entire source and returns its token stream, always
// terminated by a single KindEOF token. Whitespace other than newlines is
// skipped; newlines and "// " line comments are handled inline.
func Tokenize(source string) []Token {
	l := New(source)
	var out []Token
	for {
		tok := l.next()
		out = append(out, tok)
		if tok.Kind == KindEOF {
			return out
		}
	}
}

func (l *Lexer) next() Token {
	l.skipBlank()

	if l.ch == '/' && l.peekChar() == '/' {
		l.readWhile(func(b byte) bool { return b != '\n' && b != 0 })
		return l.next()
	}

	start := l.position
	switch {
	case l.ch == 0:
		return Token{Kind: KindEOF, Span: Span{start, start}}
	case l.ch == '\n':
		l.readChar()
		return Token{Kind: KindNewline, Span: Span{start, l.position}}
	case l.ch == ',':
		l.readChar()
		return Token{Kind: KindComma, Span: Span{start, l.position}}
	case l.ch == '+':
		l.readChar()
		return Token{Kind: KindPlus, Span: Span{start, l.position}}
	case l.ch == '-':
		l.readChar()
		return Token{Kind: KindMinus, Span: Span{start, l.position}}
	case l.ch == '*':
		l.readChar()
		return Token{Kind: KindStar, Span: Span{start, l.position}}
	case l.ch == '/':
		l.readChar()
		return Token{Kind: KindSlash, Span: Span{start, l.position}}
	case l.ch == '(':
		l.readChar()
		return Token{Kind: KindLParen, Span: Span{start, l.position}}
	case l.ch == ')':
		l.readChar()
		return Token{Kind: KindRParen, Span: Span{start, l.position}}
	case l.ch == '%':
		return l.readLabelRef(start)
	case l.ch == '$':
		return l.readRegister(start)
	case l.ch == '"':
		return l.readString(start)
	case l.ch == '.':
		return l.readDirective(start)
	case l.ch == '0' && (l.peekChar() == 'x' || l.peekChar() == 'X'):
		return l.readHex(start)
	case isDigit(l.ch):
		return l.readInt(start)
	case isIdentStart(l.ch):
		return l.readWordOrLabelDef(start)
	default:
		bad := string(l.ch)
		l.readChar()
		return Token{Kind: KindError, Span: Span{start, l.position}, Text: "unexpected character " + bad}
	}
}

func (l *Lexer) readLabelRef(start int) Token {
	l.readChar() // '%'
	name := l.readWhile(isIdentCont)
	if name == "" {
		return Token{Kind: KindError, Span: Span{start, l.position}, Text: "empty label reference"}
	}
	return Token{Kind: KindLabelRef, Span: Span{start, l.position}, Text: name}
}

func (l *Lexer) readRegister(start int) Token {
	l.readChar() // '$'
	name := l.readWhile(isIdentCont)
	if name == "" {
		return Token{Kind: KindError, Span: Span{start, l.position}, Text: "empty register name"}
	}
	return Token{Kind: KindRegister, Span: Span{start, l.position}, Text: name}
}

func (l *Lexer) readDirective(start int) Token {
	l.readChar() // '.'
	name := l.readWhile(isIdentCont)
	if name == "" {
		return Token{Kind: KindError, Span: Span{start, l.position}, Text: "empty directive"}
	}
	return Token{Kind: KindDirective, Span: Span{start, l.position}, Text: name}
}

func (l *Lexer) readHex(start int) Token {
	l.readChar() // '0'
	l.readChar() // 'x'
	digits := l.readWhile(isUpperHexDigit)
	if digits == "" {
		return Token{Kind: KindError, Span: Span{start, l.position}, Text: "malformed hex literal"}
	}
	return Token{Kind: KindHex, Span: Span{start, l.position}, Text: digits}
}

func (l *Lexer) readInt(start int) Token {
	digits := l.readWhile(isDigit)
	return Token{Kind: KindInt, Span: Span{start, l.position}, Text: digits}
}

func (l *Lexer) readString(start int) Token {
	l.readChar() // opening quote
	contentStart := l.position
	for l.ch != '"' && l.ch != 0 {
		if l.ch == '\\' && l.peekChar() != 0 {
			l.readChar()
		}
		l.readChar()
	}
	text := l.input[contentStart:l.position]
	if l.ch != '"' {
		return Token{Kind: KindError, Span: Span{start, l.position}, Text: "unterminated string literal"}
	}
	l.readChar() // closing quote
	return Token{Kind: KindString, Span: Span{start, l.position}, Text: text}
}

// readWordOrLabelDef reads a bare word. If immediately followed by ':' it is
// a label definition; otherwise it must name a known mnemonic.
func (l *Lexer) readWordOrLabelDef(start int) Token {
	word := l.readWhile(isIdentCont)
	if l.ch == ':' {
		l.readChar()
		return Token{Kind: KindLabelDef, Span: Span{start, l.position}, Text: word}
	}
	if op, ok := encoding.OpcodeByMnemonic(word); ok {
		return Token{Kind: KindMnemonic, Span: Span{start, l.position}, Text: word, Op: op}
	}
	return Token{Kind: KindError, Span: Span{start, l.position}, Text: "unknown mnemonic " + word}
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isUpperHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'A' && ch <= 'F')
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentCont(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

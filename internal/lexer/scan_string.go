package lexer

import (
	"yarax/internal/diag"
	"yarax/internal/token"
)

// "..." с escape \n \t \r \" \\ \xNN. Неизвестный escape - репорт, токен продолжаем.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening '"'
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch b {
		case '"':
			lx.cursor.Bump()
			sp := lx.cursor.SpanFrom(start)
			return token.Token{Kind: token.StringLit, Span: sp, Text: lx.text(sp)}
		case '\\':
			escStart := lx.cursor.Mark()
			lx.cursor.Bump()
			if lx.cursor.EOF() {
				continue
			}
			if !lx.scanEscape() {
				lx.errLex(diag.LexBadEscape, lx.cursor.SpanFrom(escStart), "invalid escape sequence")
			}
		case '\n':
			sp := lx.cursor.SpanFrom(start)
			lx.errLex(diag.LexUnterminatedString, sp, "newline in string literal")
			return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
		default:
			lx.cursor.Bump()
		}
	}
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.LexUnterminatedString, sp, "unterminated string literal")
	return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
}

// scanEscape consumes the escape body after '\'.
func (lx *Lexer) scanEscape() bool {
	switch lx.cursor.Bump() {
	case 'n', 't', 'r', '"', '\\':
		return true
	case 'x':
		for range 2 {
			if !isHex(lx.cursor.Peek()) {
				return false
			}
			lx.cursor.Bump()
		}
		return true
	default:
		return false
	}
}

// ScanHex reads the body of a hex pattern after its opening brace has been
// consumed and returns it as a HexLit token (braces excluded from Text).
// The body itself is validated by the parser.
func (lx *Lexer) ScanHex() token.Token {
	if lx.look != nil {
		panic("lexer: ScanHex with pending lookahead")
	}
	start := lx.cursor.Mark()
	for !lx.cursor.EOF() {
		if lx.cursor.Peek() == '}' {
			sp := lx.cursor.SpanFrom(start)
			tok := token.Token{Kind: token.HexLit, Span: sp, Text: lx.text(sp)}
			lx.cursor.Bump()
			return tok
		}
		lx.cursor.Bump()
	}
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.LexUnterminatedHex, sp, "unterminated hex pattern")
	return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
}

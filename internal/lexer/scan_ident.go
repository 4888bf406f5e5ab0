package lexer

import (
	"yarax/internal/token"
)

// scanIdentOrKeyword сканирует [Ident] и проверяет через LookupKeyword.
// Ключевые слова регистрозависимые. Token.Text - ровно исходный срез.
func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump()
	lx.skipIdentContinue()

	sp := lx.cursor.SpanFrom(start)
	text := lx.text(sp)
	if k, ok := token.LookupKeyword(text); ok {
		return token.Token{Kind: k, Span: sp, Text: text}
	}
	return token.Token{Kind: token.Ident, Span: sp, Text: text}
}

// scanPatternRef handles `$name`, `#name`, `@name` and `!name`.
// The name may be empty (anonymous pattern); `$prefix*` keeps the star.
func (lx *Lexer) scanPatternRef() token.Token {
	start := lx.cursor.Mark()
	var kind token.Kind
	switch lx.cursor.Bump() {
	case '$':
		kind = token.PatternIdent
	case '#':
		kind = token.PatternCount
	case '@':
		kind = token.PatternOffset
	default:
		kind = token.PatternLength
	}
	lx.skipIdentContinue()
	if kind == token.PatternIdent {
		lx.cursor.Eat('*')
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: lx.text(sp)}
}

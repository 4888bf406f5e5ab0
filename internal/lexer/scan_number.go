package lexer

import (
	"yarax/internal/diag"
	"yarax/internal/token"
)

// Поддержка: 123, 0x1F, 0o17, 10KB, 2MB, 1.5, 1.5e3.
// Неверные формы - репорт в opts.Reporter, токен по возможности завершаем.
// Значение литерала вычисляет ParseInt/ParseFloat.
func (lx *Lexer) scanNumber() token.Token {
	start := lx.cursor.Mark()
	kind := token.IntLit

	if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '0' && (b1 == 'x' || b1 == 'X' || b1 == 'o' || b1 == 'O') {
		lx.cursor.Bump()
		lx.cursor.Bump()
		digit := isHex
		if b1 == 'o' || b1 == 'O' {
			digit = isOct
		}
		if !digit(lx.cursor.Peek()) {
			return lx.badNumber(start, "expected digits after radix prefix")
		}
		for digit(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
		return lx.finishNumber(start, kind)
	}

	for isDec(lx.cursor.Peek()) {
		lx.cursor.Bump()
	}

	// дробная часть; ".." - диапазон, не часть числа
	if b0, b1, ok := lx.cursor.Peek2(); ok && b0 == '.' && isDec(b1) {
		kind = token.FloatLit
		lx.cursor.Bump()
		for isDec(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
	}

	if b := lx.cursor.Peek(); kind == token.FloatLit && (b == 'e' || b == 'E') {
		lx.cursor.Bump()
		if lx.cursor.Peek() == '+' || lx.cursor.Peek() == '-' {
			lx.cursor.Bump()
		}
		if !isDec(lx.cursor.Peek()) {
			return lx.badNumber(start, "expected digit after exponent")
		}
		for isDec(lx.cursor.Peek()) {
			lx.cursor.Bump()
		}
	}

	if kind == token.IntLit && !lx.try2('K', 'B') {
		lx.try2('M', 'B')
	}
	return lx.finishNumber(start, kind)
}

// finishNumber rejects identifier characters glued to the literal (`10abc`).
func (lx *Lexer) finishNumber(start Mark, kind token.Kind) token.Token {
	if isIdentContinueByte(lx.cursor.Peek()) {
		lx.skipIdentContinue()
		return lx.badNumber(start, "invalid character in numeric literal")
	}
	sp := lx.cursor.SpanFrom(start)
	return token.Token{Kind: kind, Span: sp, Text: lx.text(sp)}
}

func (lx *Lexer) badNumber(start Mark, msg string) token.Token {
	lx.skipIdentContinue()
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.LexBadNumber, sp, msg)
	return token.Token{Kind: token.Invalid, Span: sp, Text: lx.text(sp)}
}

package parser

import (
	"strings"

	"yarax/internal/ast"
	"yarax/internal/diag"
	"yarax/internal/source"
	"yarax/internal/token"
)

// parsePatternExpr: `$a`, `$a at e`, `$a in (lo..hi)`, `#a`, `@a[i]`, `!a[i]`.
func (p *Parser) parsePatternExpr() (ast.ExprID, bool) {
	tok := p.advance()
	// имя всегда храним с `$`, как в секции strings
	name := "$" + tok.Text[1:]
	span := tok.Span

	switch tok.Kind {
	case token.PatternIdent:
		if strings.HasSuffix(name, "*") {
			p.errAt(diag.SynUnexpectedToken, tok.Span, "wildcard pattern "+name+" is only allowed inside a pattern set")
			return ast.NoExprID, false
		}
		data := ast.ExprPatternData{Kind: ast.PatRefMatch, Name: name}
		switch p.lx.Peek().Kind {
		case token.KwAt:
			p.advance()
			at, ok := p.parseBinaryExpr(precBitwiseOr)
			if !ok {
				return ast.NoExprID, false
			}
			data.Kind, data.At = ast.PatRefAt, at
			span = span.Cover(p.exprSpan(at))
		case token.KwIn:
			p.advance()
			lo, hi, closeSpan, ok := p.parseRange()
			if !ok {
				return ast.NoExprID, false
			}
			data.Kind, data.Lo, data.Hi = ast.PatRefIn, lo, hi
			span = span.Cover(closeSpan)
		}
		return p.arenas.Exprs.NewPattern(span, data), true

	case token.PatternCount:
		return p.arenas.Exprs.NewPattern(span, ast.ExprPatternData{Kind: ast.PatRefCount, Name: name}), true

	default:
		kind := ast.PatRefOffset
		if tok.Kind == token.PatternLength {
			kind = ast.PatRefLength
		}
		data := ast.ExprPatternData{Kind: kind, Name: name}
		if p.at(token.LBracket) {
			p.advance()
			idx, ok := p.parseExpr()
			if !ok {
				return ast.NoExprID, false
			}
			closeTok, ok := p.expect(token.RBracket, diag.SynUnclosedBracket, "expected ']'")
			if !ok {
				return ast.NoExprID, false
			}
			data.Index = idx
			span = span.Cover(closeTok.Span)
		}
		return p.arenas.Exprs.NewPattern(span, data), true
	}
}

// parseRange: `(lo..hi)`.
func (p *Parser) parseRange() (lo, hi ast.ExprID, closeSpan source.Span, ok bool) {
	if _, ok = p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' to open a range"); !ok {
		return
	}
	if lo, ok = p.parseBinaryExpr(precBitwiseOr); !ok {
		return
	}
	if _, ok = p.expect(token.DotDot, diag.SynUnexpectedToken, "expected '..' in range"); !ok {
		return
	}
	if hi, ok = p.parseBinaryExpr(precBitwiseOr); !ok {
		return
	}
	var closeTok token.Token
	closeTok, ok = p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close the range")
	return lo, hi, closeTok.Span, ok
}

// parseOfExpr: `<quantifier> of them` или `<quantifier> of ($a, $b*, ...)`.
func (p *Parser) parseOfExpr(q ast.Quantifier, count ast.ExprID, start source.Span) (ast.ExprID, bool) {
	if _, ok := p.expect(token.KwOf, diag.SynUnexpectedToken, "expected `of`"); !ok {
		return ast.NoExprID, false
	}
	data := ast.ExprOfData{Quantifier: q, Count: count}

	if p.at(token.KwThem) {
		tok := p.advance()
		data.Them = true
		return p.arenas.Exprs.NewOf(start.Cover(tok.Span), data), true
	}

	if _, ok := p.expect(token.LParen, diag.SynUnexpectedToken, "expected `them` or '(' after `of`"); !ok {
		return ast.NoExprID, false
	}
	for {
		tok, ok := p.expect(token.PatternIdent, diag.SynExpectIdentifier, "expected pattern identifier in set")
		if !ok {
			return ast.NoExprID, false
		}
		name := tok.Text
		wildcard := strings.HasSuffix(name, "*")
		if wildcard {
			name = strings.TrimSuffix(name, "*")
		}
		data.Items = append(data.Items, ast.PatternSetItem{Name: name, Wildcard: wildcard, Span: tok.Span})
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	closeTok, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' to close the pattern set")
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewOf(start.Cover(closeTok.Span), data), true
}

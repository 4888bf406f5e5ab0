package parser

import (
	"errors"

	"yarax/internal/ast"
	"yarax/internal/diag"
	"yarax/internal/lexer"
	"yarax/internal/source"
	"yarax/internal/token"
)

// parseExpr - главная точка входа для парсинга выражений
func (p *Parser) parseExpr() (ast.ExprID, bool) {
	return p.parseBinaryExpr(0)
}

// parseBinaryExpr реализует Pratt parsing для бинарных операторов
// minPrec - минимальный приоритет для текущего уровня
func (p *Parser) parseBinaryExpr(minPrec int) (ast.ExprID, bool) {
	left, ok := p.parseUnaryExpr()
	if !ok {
		return ast.NoExprID, false
	}

	for {
		tok := p.lx.Peek()
		if tok.Kind == token.KwMatches {
			p.err(diag.SynUnsupported, "regular expressions are not supported")
			return ast.NoExprID, false
		}
		prec := getBinaryOperatorPrec(tok.Kind)
		if prec < minPrec || prec < 0 {
			return left, true
		}
		opTok := p.advance()

		right, ok := p.parseBinaryExpr(prec + 1)
		if !ok {
			return ast.NoExprID, false
		}

		finalSpan := p.exprSpan(left).Cover(p.exprSpan(right))
		left = p.arenas.Exprs.NewBinary(finalSpan, ast.ExprBinaryData{
			Op:    binaryOps[opTok.Kind].op,
			Left:  left,
			Right: right,
		})
	}
}

// parseUnaryExpr обрабатывает унарные операторы (префиксы)
func (p *Parser) parseUnaryExpr() (ast.ExprID, bool) {
	op, operandPrec, isUnary := getUnaryOperator(p.lx.Peek().Kind)
	if !isUnary {
		return p.parsePostfixExpr()
	}
	opTok := p.advance()
	operand, ok := p.parseBinaryExpr(operandPrec)
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewUnary(opTok.Span.Cover(p.exprSpan(operand)), ast.ExprUnaryData{
		Op:      op,
		Operand: operand,
	}), true
}

// parsePostfixExpr обрабатывает постфиксные операторы: вызов, индекс, поле, `of`.
func (p *Parser) parsePostfixExpr() (ast.ExprID, bool) {
	expr, ok := p.parsePrimaryExpr()
	if !ok {
		return ast.NoExprID, false
	}

	for {
		switch p.lx.Peek().Kind {
		case token.LParen:
			expr, ok = p.parseCallExpr(expr)
		case token.LBracket:
			expr, ok = p.parseIndexExpr(expr)
		case token.Dot:
			expr, ok = p.parseMemberExpr(expr)
		case token.KwOf:
			// `<count> of (...)`
			return p.parseOfExpr(ast.QuantExpr, expr, p.exprSpan(expr))
		default:
			return expr, true
		}
		if !ok {
			return ast.NoExprID, false
		}
	}
}

// parsePrimaryExpr парсит основные (атомарные) выражения
func (p *Parser) parsePrimaryExpr() (ast.ExprID, bool) {
	tok := p.lx.Peek()
	switch tok.Kind {
	case token.Ident:
		p.advance()
		return p.arenas.Exprs.NewIdent(tok.Span, ast.ExprIdentData{Name: tok.Text}), true

	case token.IntLit:
		return p.parseIntLiteral()

	case token.FloatLit:
		p.advance()
		v, err := lexer.ParseFloat(tok.Text)
		if err != nil {
			p.errAt(diag.SynUnexpectedToken, tok.Span, "invalid float literal")
			return ast.NoExprID, false
		}
		return p.arenas.Exprs.NewLiteral(tok.Span, ast.ExprLiteralData{Kind: ast.LitFloat, Float: v}), true

	case token.StringLit:
		p.advance()
		b, err := lexer.Unquote(tok.Text)
		if err != nil {
			p.errAt(diag.LexBadEscape, tok.Span, err.Error())
			return ast.NoExprID, false
		}
		return p.arenas.Exprs.NewLiteral(tok.Span, ast.ExprLiteralData{Kind: ast.LitString, Str: b}), true

	case token.KwTrue, token.KwFalse:
		p.advance()
		return p.arenas.Exprs.NewLiteral(tok.Span, ast.ExprLiteralData{Kind: ast.LitBool, Bool: tok.Kind == token.KwTrue}), true

	case token.KwFilesize:
		p.advance()
		return p.arenas.Exprs.NewFilesize(tok.Span), true

	case token.PatternIdent, token.PatternCount, token.PatternOffset, token.PatternLength:
		return p.parsePatternExpr()

	case token.KwAny, token.KwAll, token.KwNone:
		p.advance()
		q := map[token.Kind]ast.Quantifier{token.KwAny: ast.QuantAny, token.KwAll: ast.QuantAll, token.KwNone: ast.QuantNone}[tok.Kind]
		return p.parseOfExpr(q, ast.NoExprID, tok.Span)

	case token.LParen:
		return p.parseGroupExpr()

	case token.KwFor:
		p.err(diag.SynUnsupported, "`for` loops are not supported")
		return ast.NoExprID, false

	case token.Invalid:
		// лексер уже отрепортил
		p.advance()
		return ast.NoExprID, false

	default:
		p.err(diag.SynExpectExpression, "expected expression, got "+describe(tok))
		return ast.NoExprID, false
	}
}

func (p *Parser) parseIntLiteral() (ast.ExprID, bool) {
	tok := p.advance()
	v, err := lexer.ParseInt(tok.Text)
	if err != nil {
		if errors.Is(err, lexer.ErrIntRange) {
			p.errAt(diag.SynIntLiteralRange, tok.Span, "integer literal "+tok.Text+" is out of range")
		} else {
			p.errAt(diag.LexBadNumber, tok.Span, "invalid integer literal "+tok.Text)
		}
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewLiteral(tok.Span, ast.ExprLiteralData{Kind: ast.LitInt, Int: v}), true
}

func (p *Parser) parseGroupExpr() (ast.ExprID, bool) {
	open := p.advance()
	inner, ok := p.parseExpr()
	if !ok {
		return ast.NoExprID, false
	}
	closeTok, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'")
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewGroup(open.Span.Cover(closeTok.Span), ast.ExprGroupData{Inner: inner}), true
}

func (p *Parser) parseCallExpr(callee ast.ExprID) (ast.ExprID, bool) {
	p.advance() // '('
	var args []ast.ExprID
	for !p.at(token.RParen) {
		arg, ok := p.parseExpr()
		if !ok {
			return ast.NoExprID, false
		}
		args = append(args, arg)
		if !p.at(token.Comma) {
			break
		}
		p.advance()
	}
	closeTok, ok := p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after call arguments")
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewCall(p.exprSpan(callee).Cover(closeTok.Span), ast.ExprCallData{
		Callee: callee,
		Args:   args,
	}), true
}

func (p *Parser) parseIndexExpr(target ast.ExprID) (ast.ExprID, bool) {
	p.advance() // '['
	index, ok := p.parseExpr()
	if !ok {
		return ast.NoExprID, false
	}
	closeTok, ok := p.expect(token.RBracket, diag.SynUnclosedBracket, "expected ']'")
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewIndex(p.exprSpan(target).Cover(closeTok.Span), ast.ExprIndexData{
		Target: target,
		Index:  index,
	}), true
}

func (p *Parser) parseMemberExpr(target ast.ExprID) (ast.ExprID, bool) {
	p.advance() // '.'
	field, ok := p.parseIdent()
	if !ok {
		return ast.NoExprID, false
	}
	return p.arenas.Exprs.NewMember(p.exprSpan(target).Cover(field.Span), ast.ExprMemberData{
		Target:    target,
		Field:     field.Text,
		FieldSpan: field.Span,
	}), true
}

func (p *Parser) exprSpan(id ast.ExprID) source.Span {
	if e := p.arenas.Exprs.Get(id); e != nil {
		return e.Span
	}
	return p.lastSpan
}

package parser

import (
	"yarax/internal/ast"
	"yarax/internal/diag"
	"yarax/internal/lexer"
	"yarax/internal/source"
	"yarax/internal/token"
)

// parseRuleItem:
//
//	[private] [global] rule NAME [: tag ...] {
//	    meta:      key = value ...
//	    strings:   $name = "text" [modifiers] | $name = { hex }
//	    condition: expr
//	}
func (p *Parser) parseRuleItem() (ast.ItemID, bool) {
	start := p.lx.Peek().Span
	var rule ast.RuleItem

	for p.atOr(token.KwPrivate, token.KwGlobal) {
		tok := p.advance()
		flag := ast.RulePrivate
		if tok.Kind == token.KwGlobal {
			flag = ast.RuleGlobal
		}
		if rule.Modifiers.Has(flag) {
			p.errAt(diag.SynUnexpectedToken, tok.Span, "duplicate rule modifier "+tok.Text)
			return ast.NoItemID, false
		}
		rule.Modifiers |= flag
	}
	if _, ok := p.expect(token.KwRule, diag.SynUnexpectedToken, "expected `rule`"); !ok {
		return ast.NoItemID, false
	}
	name, ok := p.parseIdent()
	if !ok {
		return ast.NoItemID, false
	}
	rule.Name, rule.NameSpan = name.Text, name.Span

	if p.at(token.Colon) {
		p.advance()
		for p.at(token.Ident) {
			tag := p.advance()
			rule.Tags = append(rule.Tags, ast.Tag{Name: tag.Text, Span: tag.Span})
		}
		if len(rule.Tags) == 0 {
			p.err(diag.SynExpectIdentifier, "expected at least one tag after ':'")
			return ast.NoItemID, false
		}
	}

	if _, ok := p.expect(token.LBrace, diag.SynExpectLBrace, "expected '{' to open the rule body"); !ok {
		return ast.NoItemID, false
	}

	if p.at(token.KwMeta) {
		if rule.Meta, ok = p.parseMetaSection(); !ok {
			return ast.NoItemID, false
		}
	}
	if p.at(token.KwStrings) {
		if rule.Patterns, ok = p.parseStringsSection(); !ok {
			return ast.NoItemID, false
		}
	}

	if _, ok := p.expect(token.KwCondition, diag.SynExpectCondition, "expected `condition` section"); !ok {
		return ast.NoItemID, false
	}
	if _, ok := p.expect(token.Colon, diag.SynExpectColon, "expected ':' after `condition`"); !ok {
		return ast.NoItemID, false
	}
	if rule.Condition, ok = p.parseExpr(); !ok {
		return ast.NoItemID, false
	}
	closeTok, ok := p.expect(token.RBrace, diag.SynUnclosedBrace, "expected '}' to close the rule body")
	if !ok {
		return ast.NoItemID, false
	}
	return p.arenas.Items.NewRule(start.Cover(closeTok.Span), rule), true
}

func (p *Parser) parseMetaSection() ([]ast.Meta, bool) {
	p.advance() // meta
	if _, ok := p.expect(token.Colon, diag.SynExpectColon, "expected ':' after `meta`"); !ok {
		return nil, false
	}
	var metas []ast.Meta
	for p.at(token.Ident) {
		key := p.advance()
		if _, ok := p.expect(token.Assign, diag.SynUnexpectedToken, "expected '=' after meta key"); !ok {
			return nil, false
		}
		m := ast.Meta{Key: key.Text}
		neg := false
		if p.at(token.Minus) {
			p.advance()
			neg = true
		}
		val := p.advance()
		m.Span = key.Span.Cover(val.Span)
		switch {
		case val.Kind == token.StringLit && !neg:
			b, err := lexer.Unquote(val.Text)
			if err != nil {
				p.errAt(diag.SynBadMetaValue, val.Span, err.Error())
				return nil, false
			}
			m.Kind, m.Str = ast.MetaString, b
		case val.Kind == token.IntLit:
			v, err := lexer.ParseInt(val.Text)
			if err != nil {
				p.errAt(diag.SynIntLiteralRange, val.Span, "integer literal "+val.Text+" is out of range")
				return nil, false
			}
			if neg {
				v = -v
			}
			m.Kind, m.Int = ast.MetaInt, v
		case val.Kind == token.FloatLit:
			v, err := lexer.ParseFloat(val.Text)
			if err != nil {
				p.errAt(diag.SynBadMetaValue, val.Span, "invalid float literal")
				return nil, false
			}
			if neg {
				v = -v
			}
			m.Kind, m.Float = ast.MetaFloat, v
		case (val.Kind == token.KwTrue || val.Kind == token.KwFalse) && !neg:
			m.Kind, m.Bool = ast.MetaBool, val.Kind == token.KwTrue
		default:
			p.errAt(diag.SynBadMetaValue, val.Span, "meta value must be a string, number or boolean")
			return nil, false
		}
		metas = append(metas, m)
	}
	return metas, true
}

func (p *Parser) parseStringsSection() ([]ast.PatternDecl, bool) {
	p.advance() // strings
	if _, ok := p.expect(token.Colon, diag.SynExpectColon, "expected ':' after `strings`"); !ok {
		return nil, false
	}
	var patterns []ast.PatternDecl
	for p.at(token.PatternIdent) {
		pat, ok := p.parsePatternDecl()
		if !ok {
			return nil, false
		}
		patterns = append(patterns, pat)
	}
	if len(patterns) == 0 {
		p.err(diag.SynExpectPatternValue, "`strings` section must declare at least one pattern")
		return nil, false
	}
	return patterns, true
}

func (p *Parser) parsePatternDecl() (ast.PatternDecl, bool) {
	nameTok := p.advance()
	decl := ast.PatternDecl{Name: nameTok.Text, Span: nameTok.Span}
	if len(decl.Name) > 1 && decl.Name[len(decl.Name)-1] == '*' {
		p.errAt(diag.SynExpectIdentifier, nameTok.Span, "pattern declaration cannot be a wildcard")
		return decl, false
	}
	if _, ok := p.expect(token.Assign, diag.SynExpectPatternValue, "expected '=' after pattern identifier"); !ok {
		return decl, false
	}

	switch p.lx.Peek().Kind {
	case token.StringLit:
		val := p.advance()
		b, err := lexer.Unquote(val.Text)
		if err != nil {
			p.errAt(diag.LexBadEscape, val.Span, err.Error())
			return decl, false
		}
		if len(b) == 0 {
			p.errAt(diag.SynExpectPatternValue, val.Span, "empty text pattern")
			return decl, false
		}
		decl.Kind, decl.Bytes = ast.PatternText, b
		decl.Span = decl.Span.Cover(val.Span)
		mods, last, ok := p.parsePatternModifiers()
		if !ok {
			return decl, false
		}
		decl.Modifiers = mods
		decl.Span = decl.Span.Cover(last)
	case token.LBrace:
		p.advance()
		hex := p.lx.ScanHex()
		if hex.Kind != token.HexLit {
			return decl, false
		}
		p.lastSpan = hex.Span
		bytes, mask, ok := p.parseHexBody(hex)
		if !ok {
			return decl, false
		}
		decl.Kind, decl.Bytes, decl.Mask = ast.PatternHex, bytes, mask
		decl.Span = decl.Span.Cover(hex.Span)
	default:
		p.err(diag.SynExpectPatternValue, "expected text string or hex pattern, got "+describe(p.lx.Peek()))
		return decl, false
	}
	return decl, true
}

func (p *Parser) parsePatternModifiers() (ast.PatternModifiers, source.Span, bool) {
	var mods ast.PatternModifiers
	last := p.lastSpan
	for {
		tok := p.lx.Peek()
		var flag ast.PatternModifiers
		switch tok.Kind {
		case token.KwAscii:
			flag = ast.PatAscii
		case token.KwWide:
			flag = ast.PatWide
		case token.KwNocase:
			flag = ast.PatNocase
		case token.KwFullword:
			flag = ast.PatFullword
		case token.Ident:
			// xor, base64, private и прочие - не реализованы
			p.errAt(diag.SynUnsupported, tok.Span, "unsupported pattern modifier "+tok.Text)
			return 0, last, false
		default:
			return mods, last, true
		}
		p.advance()
		if mods.Has(flag) {
			p.errAt(diag.SynUnexpectedToken, tok.Span, "duplicate pattern modifier "+tok.Text)
			return 0, last, false
		}
		mods |= flag
		last = tok.Span
	}
}

package parser

import (
	"yarax/internal/ast"
	"yarax/internal/diag"
	"yarax/internal/lexer"
	"yarax/internal/token"
)

// parseImportItem распознаёт форму:
//
//	import "module"
func (p *Parser) parseImportItem() (ast.ItemID, bool) {
	importTok := p.advance() // если мы здесь, то это точно KwImport

	nameTok, ok := p.expect(token.StringLit, diag.SynExpectModuleName, "expected module name string after `import`")
	if !ok {
		return ast.NoItemID, false
	}
	name, err := lexer.Unquote(nameTok.Text)
	if err != nil || len(name) == 0 {
		p.errAt(diag.SynExpectModuleName, nameTok.Span, "invalid module name")
		return ast.NoItemID, false
	}
	return p.arenas.Items.NewImport(importTok.Span.Cover(nameTok.Span), ast.ImportItem{
		Module:     string(name),
		ModuleSpan: nameTok.Span,
	}), true
}

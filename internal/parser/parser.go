package parser

import (
	"slices"

	"yarax/internal/ast"
	"yarax/internal/diag"
	"yarax/internal/lexer"
	"yarax/internal/source"
	"yarax/internal/token"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	File   ast.FileID
	Errors uint
}

// Parser - состояние парсера на один файл
type Parser struct {
	lx       *lexer.Lexer // поток токенов (Peek/Next)
	arenas   *ast.Builder // построитель аренных узлов
	file     ast.FileID
	opts     Options
	lastSpan source.Span // span последнего съеденного токена для лучшей диагностики
}

// ParseFile - входная точка для разбора одного файла.
// Лексические ошибки идут через тот же reporter и учитываются в Result.Errors.
func ParseFile(file *source.File, arenas *ast.Builder, opts Options) Result {
	p := &Parser{arenas: arenas, opts: opts}
	p.lx = lexer.New(file, lexer.Options{Reporter: lexReporter{p: p}})
	p.file = arenas.NewFile(p.lx.EmptySpan())
	p.lastSpan = p.lx.EmptySpan()
	p.parseItems()
	return Result{File: p.file, Errors: p.opts.CurrentErrors}
}

func (p *Parser) at(k token.Kind) bool {
	return p.lx.Peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.lx.Peek().Kind)
}

// parseItems - основной цикл верхнего уровня: пока не EOF - parseItem.
func (p *Parser) parseItems() {
	startSpan := p.lx.Peek().Span
	for !p.at(token.EOF) {
		if p.opts.Enough() {
			return
		}
		itemID, ok := p.parseItem()
		if !ok {
			p.resyncTop()
			continue
		}
		p.arenas.PushItem(p.file, itemID)
	}
	p.arenas.Files.Get(p.file).Span = startSpan.Cover(p.lx.Peek().Span)
}

// parseItem выбирает по первому токену нужный распознаватель top-level конструкции.
func (p *Parser) parseItem() (ast.ItemID, bool) {
	switch p.lx.Peek().Kind {
	case token.KwImport:
		return p.parseImportItem()
	case token.KwRule, token.KwPrivate, token.KwGlobal:
		return p.parseRuleItem()
	case token.Invalid:
		// лексер уже отрепортил
		p.advance()
		return ast.NoItemID, false
	default:
		p.err(diag.SynUnexpectedTopLevel, "expected `rule` or `import`, got "+describe(p.lx.Peek()))
		p.advance()
		return ast.NoItemID, false
	}
}

// resyncTop - восстановление после ошибки на верхнем уровне:
// прокручиваем до стартового токена следующего item ИЛИ EOF.
func (p *Parser) resyncTop() {
	p.resyncUntil(token.KwRule, token.KwImport, token.KwPrivate, token.KwGlobal)
}

// parseIdent - утилита: ожидает Ident. На ошибке - репорт SynExpectIdentifier.
func (p *Parser) parseIdent() (token.Token, bool) {
	if p.at(token.Ident) {
		return p.advance(), true
	}
	p.err(diag.SynExpectIdentifier, "expected identifier, got "+describe(p.lx.Peek()))
	return token.Token{}, false
}

func describe(tok token.Token) string {
	if tok.Kind == token.EOF {
		return "end of file"
	}
	return "\"" + tok.Text + "\""
}

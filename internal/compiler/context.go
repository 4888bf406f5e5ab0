package compiler

import (
	"fmt"

	"yarax/internal/ast"
	"yarax/internal/diag"
	"yarax/internal/ident"
	"yarax/internal/source"
	"yarax/internal/symbols"
	"yarax/internal/wasm"
)

// handlerFrame is where control resumes when an expression is undefined.
type handlerFrame struct {
	ty wasm.ValType
	id wasm.SeqID
}

// Context is the state of compiling one rule condition. It borrows the
// session tables and is discarded when the rule is done.
type Context struct {
	exprs   *ast.Exprs
	idents  *ident.Pool
	root    symbols.SymbolLookup
	builder *wasm.ModuleBuilder
	rule    *CompiledRule
	ruleID  RuleID
	scratch wasm.LocalID

	// currentStruct overrides root while resolving the field of a member access.
	currentStruct symbols.SymbolLookup

	// результаты semcheck для emit
	types map[ast.ExprID]symbols.TypeValue
	calls map[ast.ExprID]symbols.FuncSig
	sets  map[ast.ExprID][]PatternID

	warnings []diag.Diagnostic

	handlers     []handlerFrame
	raiseEmitted bool

	// tri holds one i32 local per and/or nesting depth, shared by the session.
	tri   *[]wasm.LocalID
	depth int
}

func newContext(c *Compiler, exprs *ast.Exprs, ns *namespace, rule *CompiledRule, id RuleID) *Context {
	return &Context{
		exprs:   exprs,
		idents:  c.idents,
		root:    symbols.Stack{c.globals, ns.table},
		builder: c.wasm,
		rule:    rule,
		ruleID:  id,
		scratch: c.scratch,
		tri:     &c.tri,
		types:   make(map[ast.ExprID]symbols.TypeValue),
		calls:   make(map[ast.ExprID]symbols.FuncSig),
		sets:    make(map[ast.ExprID][]PatternID),
	}
}

// triLocal is the local for the left operand of the and/or at the current depth.
func (ctx *Context) triLocal() wasm.LocalID {
	for len(*ctx.tri) <= ctx.depth {
		*ctx.tri = append(*ctx.tri, ctx.builder.AddLocal(wasm.I32))
	}
	return (*ctx.tri)[ctx.depth]
}

func (ctx *Context) lookup(name string) (symbols.TypeValue, bool) {
	if ctx.currentStruct != nil {
		return ctx.currentStruct.Lookup(name)
	}
	return ctx.root.Lookup(name)
}

// patternID returns the first pattern of the current rule called name.
func (ctx *Context) patternID(name string) (PatternID, bool) {
	for _, p := range ctx.rule.Patterns {
		if ctx.idents.MustResolve(p.Ident) == name {
			return p.Pattern, true
		}
	}
	return 0, false
}

// mustPatternID is patternID for code that semcheck already validated.
func (ctx *Context) mustPatternID(name string) PatternID {
	id, ok := ctx.patternID(name)
	if !ok {
		panic("compiler: pattern " + name + " vanished after semcheck")
	}
	return id
}

func (ctx *Context) errorf(code diag.Code, sp source.Span, format string, args ...any) error {
	return &diagError{d: diag.NewError(code, sp, fmt.Sprintf(format, args...))}
}

func (ctx *Context) warn(d diag.Diagnostic) {
	ctx.warnings = append(ctx.warnings, d)
}

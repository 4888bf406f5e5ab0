// Package compiler turns rule sources into a compiled Rules artifact.
//
// Each rule condition is type-checked by semcheck and then emitted into the
// entry function of a wasm module. Undefined values are modelled with nested
// blocks: every place that can produce one branches to the innermost
// handler, which substitutes false.
package compiler

import (
	"errors"
	"fmt"
	"strings"

	"fortio.org/safecast"
	"github.com/rs/zerolog"

	"yarax/internal/ast"
	"yarax/internal/diag"
	"yarax/internal/diagfmt"
	"yarax/internal/ident"
	"yarax/internal/modules"
	"yarax/internal/parser"
	"yarax/internal/source"
	"yarax/internal/symbols"
	"yarax/internal/vm"
	"yarax/internal/wasm"
)

// DefaultNamespace is where rules go until NewNamespace is called.
const DefaultNamespace = "default"

var (
	// ErrDuplicateGlobal is returned by DefineGlobal for a name defined twice.
	ErrDuplicateGlobal = errors.New("compiler: global already defined")
	// ErrInvalidGlobal is returned by DefineGlobal for values of an unsupported Go type.
	ErrInvalidGlobal = errors.New("compiler: unsupported global value")
)

type state uint8

const (
	stateEmpty state = iota
	stateAccumulating
	stateBuilt
)

// namespace groups rules that share imports and rule names.
type namespace struct {
	name     ident.ID
	table    *symbols.Table
	imported map[string]bool
}

// Compiler accumulates sources and produces Rules. It is not safe for
// concurrent use.
type Compiler struct {
	opts  options
	log   zerolog.Logger
	state state

	fset   *source.FileSet
	idents *ident.Pool

	globals    *symbols.Table
	globalDefs []Global

	namespaces map[string]*namespace
	current    *namespace

	rules    []CompiledRule
	patterns []Pattern
	warnings []Warning

	wasm    *wasm.ModuleBuilder
	scratch wasm.LocalID
	tri     []wasm.LocalID
	module  *wasm.Module
	built   *Rules
}

// New creates an empty compiler.
func New(opts ...Option) *Compiler {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	c := &Compiler{
		opts:       o,
		log:        o.logger,
		fset:       source.NewFileSet(),
		idents:     ident.NewPool(),
		globals:    symbols.NewTable(),
		namespaces: make(map[string]*namespace),
		wasm:       wasm.NewModuleBuilder(),
	}
	// scratch живёт всю сессию и создаётся до первого Checkpoint
	c.scratch = c.wasm.AddLocal(wasm.I64)
	c.switchNamespace(DefaultNamespace)
	return c
}

func (c *Compiler) switchNamespace(name string) {
	ns, ok := c.namespaces[name]
	if !ok {
		ns = &namespace{
			name:     c.idents.Intern(name),
			table:    symbols.NewTable(),
			imported: make(map[string]bool),
		}
		c.namespaces[name] = ns
	}
	c.current = ns
}

// NewNamespace makes the following sources compile into the namespace
// called name, creating it on first use.
func (c *Compiler) NewNamespace(name string) (*Compiler, error) {
	if c.state == stateBuilt {
		return c, ErrAlreadyBuilt
	}
	c.switchNamespace(name)
	return c, nil
}

// DefineGlobal declares an external variable visible to every namespace.
// value must be a bool, an integer, a float or a string; it is the default
// the scanner uses until SetGlobal overrides it.
func (c *Compiler) DefineGlobal(name string, value any) (*Compiler, error) {
	if c.state == stateBuilt {
		return c, ErrAlreadyBuilt
	}
	if !validGlobalName(name) {
		return c, fmt.Errorf("%w: %q is not an identifier", ErrInvalidGlobal, name)
	}
	var g Global
	switch v := value.(type) {
	case bool:
		g = Global{Type: symbols.Bool, Value: symbols.Value{Bool: v}}
	case int:
		g = Global{Type: symbols.Integer, Value: symbols.Value{Int: int64(v)}}
	case int32:
		g = Global{Type: symbols.Integer, Value: symbols.Value{Int: int64(v)}}
	case int64:
		g = Global{Type: symbols.Integer, Value: symbols.Value{Int: v}}
	case float32:
		g = Global{Type: symbols.Float, Value: symbols.Value{Float: float64(v)}}
	case float64:
		g = Global{Type: symbols.Float, Value: symbols.Value{Float: v}}
	case string:
		g = Global{Type: symbols.String, Value: symbols.Value{Str: []byte(v)}}
	default:
		return c, fmt.Errorf("%w: %s has type %T", ErrInvalidGlobal, name, value)
	}
	if _, exists := c.globals.Lookup(name); exists {
		return c, fmt.Errorf("%w: %s", ErrDuplicateGlobal, name)
	}
	g.Name = name
	c.globals.Insert(name, symbols.Var(g.Type, name))
	c.globalDefs = append(c.globalDefs, g)
	return c, nil
}

// validGlobalName accepts [A-Za-z_][A-Za-z0-9_]*; globals are looked up by
// plain name, so dotted paths cannot be declared.
func validGlobalName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// snapshot is everything AddSource may change, captured before it starts.
type snapshot struct {
	rules    int
	patterns int
	warnings int
	tri      int
	ns       *namespace
	table    *symbols.Table
	imported map[string]bool
	wasm     wasm.Checkpoint
}

func (c *Compiler) takeSnapshot() snapshot {
	imported := make(map[string]bool, len(c.current.imported))
	for k, v := range c.current.imported {
		imported[k] = v
	}
	return snapshot{
		rules:    len(c.rules),
		patterns: len(c.patterns),
		warnings: len(c.warnings),
		tri:      len(c.tri),
		ns:       c.current,
		table:    c.current.table.Clone(),
		imported: imported,
		wasm:     c.wasm.Checkpoint(),
	}
}

// restore undoes a failed AddSource. Interned identifiers are kept: the pool
// is append-only and unused entries are harmless.
func (c *Compiler) restore(s snapshot) {
	c.rules = c.rules[:s.rules]
	c.patterns = c.patterns[:s.patterns]
	c.warnings = c.warnings[:s.warnings]
	c.tri = c.tri[:s.tri]
	s.ns.table = s.table
	s.ns.imported = s.imported
	c.wasm.Rollback(s.wasm)
}

// AddSource parses and compiles src into the current namespace. Either the
// whole source is added or, on error, the compiler is left exactly as it
// was before the call.
func (c *Compiler) AddSource(src SourceCode) (*Compiler, error) {
	if c.state == stateBuilt {
		return c, ErrAlreadyBuilt
	}
	var fileID source.FileID
	if src.Origin == "" {
		fileID = c.fset.AddVirtual(fmt.Sprintf("<source %d>", c.fset.Len()+1), src.Data)
	} else {
		fileID = c.fset.Add(src.Origin, src.Data, 0)
	}

	bag := diag.NewBag(c.opts.maxDiagnostics)
	maxErrors, err := safecast.Conv[uint](max(c.opts.maxDiagnostics, 0))
	if err != nil {
		maxErrors = 0
	}
	arenas := ast.NewBuilder(ast.Hints{})
	reporter := diag.NewDedupReporter(&diag.BagReporter{Bag: bag})
	res := parser.ParseFile(c.fset.Get(fileID), arenas, parser.Options{
		MaxErrors: maxErrors,
		Reporter:  reporter,
	})
	if n := reporter.Suppressed(); n > 0 {
		c.log.Debug().Str("file", c.fset.Get(fileID).Path).Int("suppressed", n).Msg("duplicate parse diagnostics dropped")
	}
	if res.Errors > 0 || bag.HasErrors() {
		d, _ := bag.FirstError()
		return c, c.newError(SyntaxError, d)
	}

	snap := c.takeSnapshot()
	for _, d := range bag.Filter(diag.SevWarning) {
		c.addWarning(d)
	}
	if err := c.compileFile(arenas, res.File); err != nil {
		c.restore(snap)
		var de *diagError
		if errors.As(err, &de) {
			return c, c.newError(CompileError, de.d)
		}
		return c, err
	}
	c.state = stateAccumulating
	return c, nil
}

func (c *Compiler) compileFile(arenas *ast.Builder, fileID ast.FileID) error {
	file := arenas.Files.Get(fileID)
	// импорты видны всем правилам файла, даже объявленным выше
	for _, itemID := range file.Items {
		if imp, ok := arenas.Items.Import(itemID); ok {
			if err := c.processImport(imp); err != nil {
				return err
			}
		}
	}
	for _, itemID := range file.Items {
		if rule, ok := arenas.Items.Rule(itemID); ok {
			if err := c.compileRule(arenas.Exprs, rule); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *Compiler) processImport(imp *ast.ImportItem) error {
	ns := c.current
	m, ok := modules.Lookup(imp.Module)
	if !ok {
		d := diag.NewError(diag.SemaUnknownModule, imp.ModuleSpan,
			fmt.Sprintf("unknown module `%s`", imp.Module))
		d = d.WithNote(imp.ModuleSpan, "available modules: "+strings.Join(modules.Names(), ", "))
		return &diagError{d: d}
	}
	if ns.imported[m.Name] {
		c.addWarning(diag.NewWarning(diag.SemaDuplicateImport, imp.ModuleSpan,
			fmt.Sprintf("module `%s` is already imported", m.Name)))
		return nil
	}
	if _, taken := ns.table.Lookup(m.Name); taken {
		return &diagError{d: diag.NewError(diag.SemaDuplicateImport, imp.ModuleSpan,
			fmt.Sprintf("`%s` is already declared in this namespace", m.Name))}
	}
	ns.imported[m.Name] = true
	ns.table.Insert(m.Name, symbols.StructValue(m.Decl))
	return nil
}

func (c *Compiler) compileRule(exprs *ast.Exprs, item *ast.RuleItem) error {
	ns := c.current
	if _, taken := ns.table.Lookup(item.Name); taken {
		return &diagError{d: diag.NewError(diag.SemaDuplicateRule, item.NameSpan,
			fmt.Sprintf("`%s` is already declared in this namespace", item.Name))}
	}
	if _, taken := c.globals.Lookup(item.Name); taken {
		return &diagError{d: diag.NewError(diag.SemaDuplicateRule, item.NameSpan,
			fmt.Sprintf("rule `%s` has the name of a global variable", item.Name))}
	}

	id, err := safecast.Conv[RuleID](len(c.rules))
	if err != nil {
		panic(fmt.Errorf("compiler: too many rules: %w", err))
	}
	rule := CompiledRule{
		Ident:     c.idents.Intern(item.Name),
		Namespace: ns.name,
		Private:   item.Modifiers.Has(ast.RulePrivate),
		Global:    item.Modifiers.Has(ast.RuleGlobal),
	}
	for _, tag := range item.Tags {
		rule.Tags = append(rule.Tags, c.idents.Intern(tag.Name))
	}
	for _, m := range item.Meta {
		rule.Meta = append(rule.Meta, Meta{
			Ident: c.idents.Intern(m.Key),
			Kind:  m.Kind,
			Str:   m.Str,
			Int:   m.Int,
			Bool:  m.Bool,
			Float: m.Float,
		})
	}
	for _, p := range item.Patterns {
		pid, err := safecast.Conv[PatternID](len(c.patterns))
		if err != nil {
			panic(fmt.Errorf("compiler: too many patterns: %w", err))
		}
		name := c.idents.Intern(p.Name)
		c.patterns = append(c.patterns, Pattern{
			Rule:      id,
			Ident:     name,
			Hex:       p.Kind == ast.PatternHex,
			Bytes:     p.Bytes,
			Mask:      p.Mask,
			Modifiers: p.Modifiers,
		})
		rule.Patterns = append(rule.Patterns, PatternEntry{Ident: name, Pattern: pid})
	}
	c.rules = append(c.rules, rule)

	ctx := newContext(c, exprs, ns, &c.rules[len(c.rules)-1], id)
	t, err := semcheck(ctx, anyScalar, item.Condition)
	if err != nil {
		return err
	}
	if !c.opts.relaxed {
		warnIfNotBool(ctx, t, item.Condition)
	}
	emitRule(ctx, c.wasm.MainFn(), item.Condition)
	if len(ctx.handlers) != 0 {
		panic(fmt.Sprintf("compiler: %d exception handlers left after rule %s", len(ctx.handlers), item.Name))
	}
	for _, w := range ctx.warnings {
		c.addWarning(w)
	}
	ns.table.Insert(item.Name, symbols.RuleValue(uint32(id)))

	c.log.Debug().
		Str("namespace", c.idents.MustResolve(ns.name)).
		Str("rule", item.Name).
		Uint32("rule_id", uint32(id)).
		Int("patterns", len(rule.Patterns)).
		Msg("rule compiled")
	return nil
}

// Build finishes the module and returns the compiled rules. The compiler
// cannot be used to add sources afterwards.
func (c *Compiler) Build() (*Rules, error) {
	if c.state == stateBuilt {
		return nil, ErrAlreadyBuilt
	}
	c.state = stateBuilt
	c.module = c.wasm.Build()
	prog, err := vm.Compile(c.module)
	if err != nil {
		// модуль уже прошёл Validate
		panic(fmt.Errorf("compiler: %w", err))
	}
	c.log.Info().
		Int("rules", len(c.rules)).
		Int("patterns", len(c.patterns)).
		Int("instructions", c.module.InstrCount()).
		Msg("rules built")
	c.built = &Rules{
		idents:   c.idents,
		module:   c.module,
		program:  prog,
		rules:    c.rules,
		patterns: c.patterns,
		globals:  c.globalDefs,
	}
	return c.built, nil
}

// EmitWasmFile writes the binary module to path, building first if needed.
// It returns the built rules either way, so the compiler need not be built
// again to get them.
func (c *Compiler) EmitWasmFile(path string) (*Rules, error) {
	if c.built == nil {
		if _, err := c.Build(); err != nil {
			return nil, err
		}
	}
	if err := c.module.EmitFile(path); err != nil {
		return nil, err
	}
	return c.built, nil
}

// Warnings returns the warnings of every source added so far.
func (c *Compiler) Warnings() []Warning {
	return append([]Warning(nil), c.warnings...)
}

// FileSet holds every source passed to AddSource, for rendering diagnostics.
func (c *Compiler) FileSet() *source.FileSet { return c.fset }

func (c *Compiler) prettyOpts() diagfmt.PrettyOpts {
	return diagfmt.PrettyOpts{
		Color:     c.opts.colorize,
		Context:   1,
		PathMode:  diagfmt.PathModeAuto,
		ShowNotes: true,
	}
}

func (c *Compiler) newError(kind ErrorKind, d diag.Diagnostic) *Error {
	return &Error{
		Kind:       kind,
		Diagnostic: d,
		Report:     diagfmt.PrettyString(d, c.fset, c.prettyOpts()),
	}
}

func (c *Compiler) addWarning(d diag.Diagnostic) {
	c.warnings = append(c.warnings, Warning{
		Diagnostic: d,
		Report:     diagfmt.PrettyString(d, c.fset, c.prettyOpts()),
	})
}

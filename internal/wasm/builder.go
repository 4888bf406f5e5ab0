package wasm

import (
	"fmt"

	"fortio.org/safecast"
)

// ModuleBuilder accumulates the entry function, locals, and literals.
type ModuleBuilder struct {
	imports   []Import
	importIdx map[string]FuncID
	locals    []ValType
	seqs      []Seq
	main      SeqID
	literals  [][]byte
	litIdx    map[string]LiteralID
	built     bool
}

// NewModuleBuilder declares the runtime callbacks followed by every module
// function overload, and opens an empty entry function.
func NewModuleBuilder() *ModuleBuilder {
	b := &ModuleBuilder{
		importIdx: make(map[string]FuncID),
		litIdx:    make(map[string]LiteralID),
	}
	for _, imp := range runtimeImports() {
		b.declare(imp)
	}
	for _, imp := range moduleImports() {
		b.declare(imp)
	}
	b.main = b.newSeq(ValNone)
	return b
}

func (b *ModuleBuilder) declare(imp Import) {
	id, err := safecast.Conv[FuncID](len(b.imports))
	if err != nil {
		panic(fmt.Errorf("wasm: too many imports: %w", err))
	}
	b.imports = append(b.imports, imp)
	b.importIdx[imp.FullName()] = id
}

// Func returns the import called module.name.
func (b *ModuleBuilder) Func(module, name string) (FuncID, bool) {
	id, ok := b.importIdx[module+"."+name]
	return id, ok
}

// MustFunc is Func for imports the compiler always declares.
func (b *ModuleBuilder) MustFunc(module, name string) FuncID {
	id, ok := b.Func(module, name)
	if !ok {
		panic(fmt.Sprintf("wasm: unknown import %s.%s", module, name))
	}
	return id
}

// Import returns the declaration of id.
func (b *ModuleBuilder) Import(id FuncID) Import { return b.imports[id] }

// MainFn is the entry function body.
func (b *ModuleBuilder) MainFn() *InstrSeqBuilder {
	return &InstrSeqBuilder{b: b, id: b.main}
}

// AddLocal allocates a local of the entry function.
func (b *ModuleBuilder) AddLocal(t ValType) LocalID {
	id, err := safecast.Conv[LocalID](len(b.locals))
	if err != nil {
		panic(fmt.Errorf("wasm: too many locals: %w", err))
	}
	b.locals = append(b.locals, t)
	return id
}

// AddLiteral interns s in the literal pool. Equal byte strings share an id.
func (b *ModuleBuilder) AddLiteral(s []byte) LiteralID {
	if id, ok := b.litIdx[string(s)]; ok {
		return id
	}
	id, err := safecast.Conv[LiteralID](len(b.literals) + 1)
	if err != nil {
		panic(fmt.Errorf("wasm: literal pool overflow: %w", err))
	}
	b.literals = append(b.literals, append([]byte(nil), s...))
	b.litIdx[string(s)] = id
	return id
}

// LiteralCount is the number of pooled literals.
func (b *ModuleBuilder) LiteralCount() int { return len(b.literals) }

func (b *ModuleBuilder) newSeq(result ValType) SeqID {
	id, err := safecast.Conv[SeqID](len(b.seqs))
	if err != nil {
		panic(fmt.Errorf("wasm: too many sequences: %w", err))
	}
	b.seqs = append(b.seqs, Seq{Result: result})
	return id
}

// Checkpoint captures the builder so that a failed compilation unit can be undone.
type Checkpoint struct {
	seqs     int
	mainLen  int
	locals   int
	literals int
}

func (b *ModuleBuilder) Checkpoint() Checkpoint {
	return Checkpoint{
		seqs:     len(b.seqs),
		mainLen:  len(b.seqs[b.main].Instrs),
		locals:   len(b.locals),
		literals: len(b.literals),
	}
}

// Rollback discards everything emitted after cp.
// Only the entry function receives code at top level, so truncating it and
// dropping newer sequences restores the earlier state.
func (b *ModuleBuilder) Rollback(cp Checkpoint) {
	if b.built {
		panic("wasm: rollback after Build")
	}
	b.seqs = b.seqs[:cp.seqs]
	b.seqs[b.main].Instrs = b.seqs[b.main].Instrs[:cp.mainLen]
	b.locals = b.locals[:cp.locals]
	for _, lit := range b.literals[cp.literals:] {
		delete(b.litIdx, string(lit))
	}
	b.literals = b.literals[:cp.literals]
}

// Build validates and freezes the module. Calling it twice, or building
// malformed code, is a compiler bug and panics.
func (b *ModuleBuilder) Build() *Module {
	if b.built {
		panic("wasm: ModuleBuilder.Build called twice")
	}
	b.built = true
	m := &Module{
		Imports:  b.imports,
		Locals:   b.locals,
		Seqs:     b.seqs,
		Main:     b.main,
		Literals: b.literals,
	}
	if err := Validate(m); err != nil {
		panic(fmt.Errorf("wasm: invalid module: %w", err))
	}
	return m
}

// InstrSeqBuilder appends instructions to one sequence.
type InstrSeqBuilder struct {
	b  *ModuleBuilder
	id SeqID
}

// ID is the sequence id; branching to it exits the block.
func (s *InstrSeqBuilder) ID() SeqID { return s.id }

func (s *InstrSeqBuilder) emit(in Instr) *InstrSeqBuilder {
	if s.b.built {
		panic("wasm: emit after Build")
	}
	seq := &s.b.seqs[s.id]
	seq.Instrs = append(seq.Instrs, in)
	return s
}

// Block opens a nested block with the given result type and fills it with body.
func (s *InstrSeqBuilder) Block(result ValType, body func(*InstrSeqBuilder)) *InstrSeqBuilder {
	id := s.b.newSeq(result)
	body(&InstrSeqBuilder{b: s.b, id: id})
	return s.emit(Instr{Op: OpBlock, Seq: id})
}

// IfElse pops an i32 condition and runs then or els.
func (s *InstrSeqBuilder) IfElse(result ValType, then, els func(*InstrSeqBuilder)) *InstrSeqBuilder {
	thenID := s.b.newSeq(result)
	then(&InstrSeqBuilder{b: s.b, id: thenID})
	elseID := s.b.newSeq(result)
	if els != nil {
		els(&InstrSeqBuilder{b: s.b, id: elseID})
	}
	return s.emit(Instr{Op: OpIfElse, Seq: thenID, Else: elseID})
}

func (s *InstrSeqBuilder) Br(target SeqID) *InstrSeqBuilder {
	return s.emit(Instr{Op: OpBr, Target: target})
}

func (s *InstrSeqBuilder) BrIf(target SeqID) *InstrSeqBuilder {
	return s.emit(Instr{Op: OpBrIf, Target: target})
}

func (s *InstrSeqBuilder) Call(f FuncID) *InstrSeqBuilder {
	return s.emit(Instr{Op: OpCall, Func: f})
}

func (s *InstrSeqBuilder) Drop() *InstrSeqBuilder { return s.emit(Instr{Op: OpDrop}) }

func (s *InstrSeqBuilder) Unreachable() *InstrSeqBuilder { return s.emit(Instr{Op: OpUnreachable}) }

func (s *InstrSeqBuilder) LocalGet(l LocalID) *InstrSeqBuilder {
	return s.emit(Instr{Op: OpLocalGet, Local: l})
}

func (s *InstrSeqBuilder) LocalSet(l LocalID) *InstrSeqBuilder {
	return s.emit(Instr{Op: OpLocalSet, Local: l})
}

func (s *InstrSeqBuilder) LocalTee(l LocalID) *InstrSeqBuilder {
	return s.emit(Instr{Op: OpLocalTee, Local: l})
}

func (s *InstrSeqBuilder) I32Const(v int32) *InstrSeqBuilder {
	return s.emit(Instr{Op: OpI32Const, Int: int64(v)})
}

func (s *InstrSeqBuilder) I64Const(v int64) *InstrSeqBuilder {
	return s.emit(Instr{Op: OpI64Const, Int: v})
}

func (s *InstrSeqBuilder) F64Const(v float64) *InstrSeqBuilder {
	return s.emit(Instr{Op: OpF64Const, Float: v})
}

// Op appends a plain arithmetic, comparison, or conversion instruction.
func (s *InstrSeqBuilder) Op(op Op) *InstrSeqBuilder {
	if _, ok := plainSigs[op]; !ok {
		panic(fmt.Sprintf("wasm: %s is not a plain instruction", op))
	}
	return s.emit(Instr{Op: op})
}

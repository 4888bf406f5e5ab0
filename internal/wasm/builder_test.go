package wasm

import (
	"strings"
	"testing"
)

// emitTry builds block(ty){ block(){ try; br outer } except } the way the
// compiler protects expressions that can be undefined.
func emitTry(s *InstrSeqBuilder, ty ValType, try func(*InstrSeqBuilder, SeqID), except func(*InstrSeqBuilder)) {
	s.Block(ty, func(outer *InstrSeqBuilder) {
		outer.Block(ValNone, func(inner *InstrSeqBuilder) {
			try(inner, inner.ID())
			inner.Br(outer.ID())
		})
		except(outer)
	})
}

func TestBuilder_TryExceptValidates(t *testing.T) {
	b := NewModuleBuilder()
	ruleMatch := b.MustFunc(RuntimeModule, "rule_match")
	lookup := b.MustFunc(RuntimeModule, "lookup_int")
	path := b.AddLiteral([]byte("test.int_undef"))

	main := b.MainFn()
	emitTry(main, I32, func(s *InstrSeqBuilder, handler SeqID) {
		s.I64Const(int64(path)).Call(lookup)
		s.Op(OpI32Eqz).BrIf(handler)
		s.I64Const(1).Op(OpI64Eq)
	}, func(s *InstrSeqBuilder) {
		s.I32Const(0)
	})
	main.Op(OpI32Eqz).IfElse(ValNone, func(*InstrSeqBuilder) {}, func(s *InstrSeqBuilder) {
		s.I32Const(0).Call(ruleMatch)
	})

	m := b.Build()
	if err := Validate(m); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got := m.InstrCount(); got == 0 {
		t.Fatal("empty module")
	}
}

func TestBuilder_ImportsDeterministic(t *testing.T) {
	a := NewModuleBuilder()
	b := NewModuleBuilder()
	if len(a.imports) != len(b.imports) {
		t.Fatalf("import counts differ: %d vs %d", len(a.imports), len(b.imports))
	}
	for i := range a.imports {
		if a.imports[i].FullName() != b.imports[i].FullName() {
			t.Fatalf("import %d differs: %s vs %s", i, a.imports[i].FullName(), b.imports[i].FullName())
		}
	}
	if a.imports[0].FullName() != "yara.rule_match" {
		t.Fatalf("first import = %s", a.imports[0].FullName())
	}
	id, ok := a.Func("string", "to_int@si")
	if !ok {
		t.Fatal("string.to_int@si not declared")
	}
	imp := a.Import(id)
	if len(imp.Params) != 2 || imp.Params[0] != I64 || imp.Params[1] != I64 {
		t.Fatalf("to_int@si params = %v", imp.Params)
	}
	if len(imp.Results) != 2 || imp.Results[1] != I32 {
		t.Fatalf("to_int@si results = %v", imp.Results)
	}
}

func TestBuilder_LiteralDedup(t *testing.T) {
	b := NewModuleBuilder()
	x := b.AddLiteral([]byte("foo"))
	y := b.AddLiteral([]byte("bar"))
	z := b.AddLiteral([]byte("foo"))
	if x == 0 || x != z || x == y {
		t.Fatalf("ids: foo=%d bar=%d foo=%d", x, y, z)
	}
	m := b.Build()
	if lit, ok := m.Literal(y); !ok || string(lit) != "bar" {
		t.Fatalf("Literal(%d) = %q, %v", y, lit, ok)
	}
	if _, ok := m.Literal(0); ok {
		t.Fatal("literal 0 must not exist")
	}
}

func TestBuilder_Rollback(t *testing.T) {
	b := NewModuleBuilder()
	main := b.MainFn()
	main.I32Const(1).Drop()
	b.AddLiteral([]byte("kept"))

	cp := b.Checkpoint()
	b.AddLocal(I64)
	lit := b.AddLiteral([]byte("dropped"))
	main.Block(I32, func(s *InstrSeqBuilder) { s.I32Const(7) }).Drop()
	b.Rollback(cp)

	if len(b.locals) != 0 {
		t.Fatalf("locals = %d after rollback", len(b.locals))
	}
	if b.LiteralCount() != 1 {
		t.Fatalf("literals = %d after rollback", b.LiteralCount())
	}
	if again := b.AddLiteral([]byte("dropped")); again != lit {
		t.Fatalf("literal id after rollback = %d, want reuse of %d", again, lit)
	}
	m := b.Build()
	if len(m.Seqs[m.Main].Instrs) != 2 {
		t.Fatalf("main has %d instrs, want 2", len(m.Seqs[m.Main].Instrs))
	}
	if len(m.Seqs) != 1 {
		t.Fatalf("seqs = %d, want 1", len(m.Seqs))
	}
}

func TestBuilder_BuildTwicePanics(t *testing.T) {
	b := NewModuleBuilder()
	b.Build()
	defer func() {
		r := recover()
		if r == nil || !strings.Contains(r.(string), "twice") {
			t.Fatalf("recover = %v", r)
		}
	}()
	b.Build()
}

func TestBuilder_MalformedPanics(t *testing.T) {
	b := NewModuleBuilder()
	b.MainFn().I64Const(1)
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on leftover stack value")
		}
	}()
	b.Build()
}

func TestBuilder_OpRejectsStructural(t *testing.T) {
	b := NewModuleBuilder()
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	b.MainFn().Op(OpBr)
}

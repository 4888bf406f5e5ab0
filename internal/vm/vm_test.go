package vm

import (
	"errors"
	"math"
	"testing"

	"yarax/internal/wasm"
)

// recorder captures rule_match calls and answers a few runtime imports.
type recorder struct {
	b       *wasm.ModuleBuilder
	matched []int32
	defined bool
	value   int64
}

func (r *recorder) Call(fn wasm.FuncID, args, results []Value) error {
	imp := r.b.Import(fn)
	switch imp.Name {
	case "rule_match":
		r.matched = append(r.matched, args[0].I32())
	case "lookup_int":
		results[0] = I64(r.value)
		results[1] = Bool(r.defined)
	case "filesize":
		results[0] = I64(42)
	default:
		return errors.New("unexpected import " + imp.FullName())
	}
	return nil
}

func build(t *testing.T, body func(b *wasm.ModuleBuilder, main *wasm.InstrSeqBuilder)) (*Program, *wasm.ModuleBuilder) {
	t.Helper()
	b := wasm.NewModuleBuilder()
	body(b, b.MainFn())
	p, err := Compile(b.Build())
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return p, b
}

// rule emits the per-rule protocol: a guarded condition followed by rule_match.
func rule(b *wasm.ModuleBuilder, s *wasm.InstrSeqBuilder, id int32, cond func(s *wasm.InstrSeqBuilder, handler wasm.SeqID)) {
	s.Block(wasm.ValNone, func(blk *wasm.InstrSeqBuilder) {
		blk.Block(wasm.I32, func(outer *wasm.InstrSeqBuilder) {
			outer.Block(wasm.ValNone, func(inner *wasm.InstrSeqBuilder) {
				cond(inner, inner.ID())
				inner.Br(outer.ID())
			})
			outer.I32Const(0)
		})
		blk.Op(wasm.OpI32Eqz).BrIf(blk.ID())
		blk.I32Const(id).Call(b.MustFunc(wasm.RuntimeModule, "rule_match"))
	})
}

func TestRun_RuleProtocol(t *testing.T) {
	for _, tc := range []struct {
		name    string
		defined bool
		value   int64
		want    []int32
	}{
		{"defined equal", true, 7, []int32{0, 2}},
		{"defined different", true, 8, []int32{2}},
		{"undefined", false, 7, []int32{2}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p, b := build(t, func(b *wasm.ModuleBuilder, main *wasm.InstrSeqBuilder) {
				path := b.AddLiteral([]byte("test.x"))
				lookup := b.MustFunc(wasm.RuntimeModule, "lookup_int")
				rule(b, main, 0, func(s *wasm.InstrSeqBuilder, handler wasm.SeqID) {
					s.I64Const(int64(path)).Call(lookup)
					s.Op(wasm.OpI32Eqz).BrIf(handler)
					s.I64Const(7).Op(wasm.OpI64Eq)
				})
				rule(b, main, 1, func(s *wasm.InstrSeqBuilder, _ wasm.SeqID) {
					s.I32Const(0)
				})
				rule(b, main, 2, func(s *wasm.InstrSeqBuilder, _ wasm.SeqID) {
					s.Call(b.MustFunc(wasm.RuntimeModule, "filesize")).I64Const(42).Op(wasm.OpI64Eq)
				})
			})
			r := &recorder{b: b, defined: tc.defined, value: tc.value}
			if err := p.Run(r); err != nil {
				t.Fatalf("Run: %v", err)
			}
			if len(r.matched) != len(tc.want) {
				t.Fatalf("matched = %v, want %v", r.matched, tc.want)
			}
			for i := range tc.want {
				if r.matched[i] != tc.want[i] {
					t.Fatalf("matched = %v, want %v", r.matched, tc.want)
				}
			}
		})
	}
}

// evalI32 runs code leaving one i32 on the stack and reports it through rule_match.
func evalI32(t *testing.T, emit func(s *wasm.InstrSeqBuilder)) (int32, error) {
	t.Helper()
	p, b := build(t, func(b *wasm.ModuleBuilder, main *wasm.InstrSeqBuilder) {
		emit(main)
		main.Call(b.MustFunc(wasm.RuntimeModule, "rule_match"))
	})
	r := &recorder{b: b}
	err := p.Run(r)
	if err != nil {
		return 0, err
	}
	if len(r.matched) != 1 {
		t.Fatalf("rule_match called %d times", len(r.matched))
	}
	return r.matched[0], nil
}

func TestRun_Arithmetic(t *testing.T) {
	tests := []struct {
		name string
		emit func(s *wasm.InstrSeqBuilder)
		want int32
	}{
		{"add", func(s *wasm.InstrSeqBuilder) {
			s.I64Const(2).I64Const(3).Op(wasm.OpI64Add).I64Const(5).Op(wasm.OpI64Eq)
		}, 1},
		{"signed compare", func(s *wasm.InstrSeqBuilder) {
			s.I64Const(-1).I64Const(1).Op(wasm.OpI64LtS)
		}, 1},
		{"div truncates", func(s *wasm.InstrSeqBuilder) {
			s.I64Const(-7).I64Const(2).Op(wasm.OpI64DivS).I64Const(-3).Op(wasm.OpI64Eq)
		}, 1},
		{"min div -1 wraps", func(s *wasm.InstrSeqBuilder) {
			s.I64Const(math.MinInt64).I64Const(-1).Op(wasm.OpI64DivS).I64Const(math.MinInt64).Op(wasm.OpI64Eq)
		}, 1},
		{"shl 64 is zero", func(s *wasm.InstrSeqBuilder) {
			s.I64Const(1).I64Const(64).Op(wasm.OpI64Shl).Op(wasm.OpI64Eqz)
		}, 1},
		{"shr keeps sign", func(s *wasm.InstrSeqBuilder) {
			s.I64Const(-8).I64Const(1).Op(wasm.OpI64ShrS).I64Const(-4).Op(wasm.OpI64Eq)
		}, 1},
		{"float mixed", func(s *wasm.InstrSeqBuilder) {
			s.I64Const(1).Op(wasm.OpF64ConvertI64S).F64Const(0.5).Op(wasm.OpF64Add).F64Const(1.5).Op(wasm.OpF64Eq)
		}, 1},
		{"nan not equal", func(s *wasm.InstrSeqBuilder) {
			s.F64Const(math.NaN()).F64Const(math.NaN()).Op(wasm.OpF64Eq)
		}, 0},
		{"extend", func(s *wasm.InstrSeqBuilder) {
			s.I32Const(-1).Op(wasm.OpI64ExtendI32U).I64Const(0xffffffff).Op(wasm.OpI64Eq)
		}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := evalI32(t, tt.emit)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRun_IfElseAndLocals(t *testing.T) {
	got, err := evalI32(t, func(s *wasm.InstrSeqBuilder) {
		s.I32Const(0).IfElse(wasm.I32, func(then *wasm.InstrSeqBuilder) {
			then.I32Const(10)
		}, func(els *wasm.InstrSeqBuilder) {
			els.I32Const(20)
		})
	})
	if err != nil || got != 20 {
		t.Fatalf("got %d, %v; want 20", got, err)
	}

	p, b := build(t, func(b *wasm.ModuleBuilder, main *wasm.InstrSeqBuilder) {
		l := b.AddLocal(wasm.I64)
		main.I64Const(5).LocalTee(l).LocalGet(l).Op(wasm.OpI64Add).I64Const(10).Op(wasm.OpI64Eq)
		main.Call(b.MustFunc(wasm.RuntimeModule, "rule_match"))
	})
	r := &recorder{b: b}
	if err := p.Run(r); err != nil {
		t.Fatal(err)
	}
	if len(r.matched) != 1 || r.matched[0] != 1 {
		t.Fatalf("matched = %v", r.matched)
	}
}

func TestRun_BranchUnwindsStack(t *testing.T) {
	got, err := evalI32(t, func(s *wasm.InstrSeqBuilder) {
		s.Block(wasm.I32, func(outer *wasm.InstrSeqBuilder) {
			outer.I64Const(99) // останется на стеке при переходе
			outer.I32Const(3)
			outer.Br(outer.ID())
		})
	})
	if err != nil || got != 3 {
		t.Fatalf("got %d, %v; want 3", got, err)
	}
}

func TestRun_DivideByZeroTraps(t *testing.T) {
	_, err := evalI32(t, func(s *wasm.InstrSeqBuilder) {
		s.I64Const(1).I64Const(0).Op(wasm.OpI64DivS).Op(wasm.OpI64Eqz)
	})
	var trap *Trap
	if !errors.As(err, &trap) || trap.Code != TrapDivideByZero {
		t.Fatalf("err = %v, want divide by zero trap", err)
	}
}

func TestRun_UnreachableTraps(t *testing.T) {
	_, err := evalI32(t, func(s *wasm.InstrSeqBuilder) {
		s.Unreachable()
	})
	var trap *Trap
	if !errors.As(err, &trap) || trap.Code != TrapUnreachable {
		t.Fatalf("err = %v, want unreachable trap", err)
	}
}

func TestRun_HostErrorWrapped(t *testing.T) {
	sentinel := errors.New("boom")
	p, b := build(t, func(b *wasm.ModuleBuilder, main *wasm.InstrSeqBuilder) {
		main.Call(b.MustFunc(wasm.RuntimeModule, "filesize")).Drop()
	})
	host := make(HostFuncs, len(p.Imports()))
	host[b.MustFunc(wasm.RuntimeModule, "filesize")] = func(_, _ []Value) error { return sentinel }
	err := p.Run(host)
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want wrapping %v", err, sentinel)
	}
}

func TestRun_MissingHostFunc(t *testing.T) {
	p, _ := build(t, func(b *wasm.ModuleBuilder, main *wasm.InstrSeqBuilder) {
		main.Call(b.MustFunc(wasm.RuntimeModule, "filesize")).Drop()
	})
	if err := p.Run(HostFuncs{}); err == nil {
		t.Fatal("expected error for missing import")
	}
}

func TestValueEncoding(t *testing.T) {
	if I32(-1).I32() != -1 {
		t.Fatal("i32 round trip")
	}
	if I64(math.MinInt64).I64() != math.MinInt64 {
		t.Fatal("i64 round trip")
	}
	if F64(2.5).F64() != 2.5 {
		t.Fatal("f64 round trip")
	}
	if !Bool(true).Bool() || Bool(false).Bool() {
		t.Fatal("bool encoding")
	}
}

package compiler

import (
	"strings"
	"testing"

	"yarax/internal/wasm"
)

func disasm(t *testing.T, src string) string {
	t.Helper()
	c := New(WithRelaxed(true))
	mustAdd(t, c, src)
	rules, err := c.Build()
	if err != nil {
		t.Fatal(err)
	}
	var sb strings.Builder
	if err := rules.Module().Disassemble(&sb); err != nil {
		t.Fatal(err)
	}
	return sb.String()
}

func TestEmitCallsRuleMatchPerRule(t *testing.T) {
	out := disasm(t, "rule a { condition: true } rule b { condition: false } rule c { condition: 1 }")
	if n := strings.Count(out, ";; yara.rule_match"); n != 3 {
		t.Fatalf("want 3 rule_match calls, got %d:\n%s", n, out)
	}
}

func TestEmitGuardsDivision(t *testing.T) {
	out := disasm(t, "rule a { condition: filesize \\ 0 == 1 }")
	if !strings.Contains(out, "i64.div_s") || !strings.Contains(out, "local.tee") {
		t.Fatalf("division is not guarded:\n%s", out)
	}
}

func TestEmitConstantBadBaseRaises(t *testing.T) {
	out := disasm(t, `import "string" rule a { condition: string.to_int("1", 99) == 1 }`)
	if strings.Contains(out, ";; string.to_int@si") {
		t.Fatalf("call with a constant bad base must not be emitted:\n%s", out)
	}
}

func TestEmitStringLiteralsArePooled(t *testing.T) {
	c := New()
	mustAdd(t, c, `rule a { condition: "x" == "x" and "x" != "y" }`)
	// константы "x" и "y" попадают в пул по одному разу
	if n := c.wasm.LiteralCount(); n != 2 {
		t.Fatalf("want 2 literals, got %d", n)
	}
}

func TestRaiseOutsideHandlerPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("raise without a handler must panic")
		}
	}()
	ctx := &Context{builder: wasm.NewModuleBuilder()}
	raise(ctx, ctx.builder.MainFn())
}

func TestTryExceptRestoresHandlers(t *testing.T) {
	b := wasm.NewModuleBuilder()
	ctx := &Context{builder: b}
	tryExcept(ctx, b.MainFn(), wasm.I32,
		func(try *wasm.InstrSeqBuilder) {
			if len(ctx.handlers) != 1 {
				t.Fatalf("want one frame inside try, got %d", len(ctx.handlers))
			}
			raise(ctx, try)
		},
		func(except *wasm.InstrSeqBuilder) { except.I32Const(0) },
	)
	if len(ctx.handlers) != 0 || ctx.raiseEmitted {
		t.Fatal("tryExcept must pop its frame and clear the raise flag")
	}
	b.MainFn().Drop()
	if err := wasm.Validate(b.Build()); err != nil {
		t.Fatal(err)
	}
}

func TestEmitLogicalNestsUnderNotAndDefined(t *testing.T) {
	// Build валидирует модуль: ветки and/or поднимают undefined во внешний обработчик
	out := disasm(t, `rule a {
	strings: $a = "x"
	condition: not (@a[1] > 0 and filesize > 1) and defined (@a[2] > 0 or $a)
}`)
	if n := strings.Count(out, ";; yara.rule_match"); n != 1 {
		t.Fatalf("want one rule_match call, got %d:\n%s", n, out)
	}
	if !strings.Contains(out, "br_if") {
		t.Fatalf("undefined operand is not re-raised:\n%s", out)
	}
}

func TestEmitLogicalEvaluatesOperandsOnce(t *testing.T) {
	out := disasm(t, `rule a {
	strings: $a = "a" $b = "b" $c = "c" $d = "d"
	condition: $a and ($b or ($c and ($d or $a)))
}`)
	if n := strings.Count(out, ";; yara.pat_matched"); n != 5 {
		t.Fatalf("want 5 pat_matched calls, got %d:\n%s", n, out)
	}
}

package wasm

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func sampleModule(t *testing.T) *Module {
	t.Helper()
	b := NewModuleBuilder()
	lit := b.AddLiteral([]byte("hello"))
	l := b.AddLocal(F64)
	main := b.MainFn()
	main.F64Const(2.5).LocalSet(l)
	main.Block(I32, func(s *InstrSeqBuilder) {
		s.I64Const(int64(lit)).Call(b.MustFunc(RuntimeModule, "str_len"))
		s.I64Const(5).Op(OpI64Eq)
	})
	main.Call(b.MustFunc(RuntimeModule, "rule_match"))
	return b.Build()
}

func TestCodec_RoundTrip(t *testing.T) {
	m := sampleModule(t)
	data := m.EmitBinary()
	if !bytes.HasPrefix(data, Magic) {
		t.Fatal("missing magic")
	}
	got, err := DecodeBinary(data)
	if err != nil {
		t.Fatalf("DecodeBinary: %v", err)
	}
	var want, have bytes.Buffer
	if err := m.Disassemble(&want); err != nil {
		t.Fatal(err)
	}
	if err := got.Disassemble(&have); err != nil {
		t.Fatal(err)
	}
	if want.String() != have.String() {
		t.Fatalf("listing differs after round trip:\n%s\nvs\n%s", want.String(), have.String())
	}
}

func TestCodec_BadInput(t *testing.T) {
	if _, err := DecodeBinary([]byte("garbage")); !errors.Is(err, ErrBadMagic) {
		t.Fatalf("err = %v, want ErrBadMagic", err)
	}
	data := append(append([]byte(nil), Magic...), 0xc1)
	if _, err := DecodeBinary(data); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestCodec_EmitFile(t *testing.T) {
	m := sampleModule(t)
	path := filepath.Join(t.TempDir(), "rules.wasm")
	if err := m.EmitFile(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, m.EmitBinary()) {
		t.Fatal("file content differs from EmitBinary")
	}
}

func TestDisassemble(t *testing.T) {
	var buf bytes.Buffer
	if err := sampleModule(t).Disassemble(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		`(import 0 "yara" "rule_match" (param i32))`,
		`(literal 1 "hello")`,
		"$l0:f64",
		"f64.const 2.5",
		"block $s1 (result i32)",
		";; yara.str_len",
		"i64.eq",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("listing lacks %q:\n%s", want, out)
		}
	}
}

package modules

import (
	"testing"

	"yarax/internal/symbols"
)

func TestRegistryNames(t *testing.T) {
	got := Names()
	want := []string{"math", "string", "test"}
	if len(got) != len(want) {
		t.Fatalf("Names() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", got, want)
		}
	}
}

func TestSignaturesStableOrder(t *testing.T) {
	sigs := Signatures()
	if len(sigs) == 0 {
		t.Fatal("no signatures")
	}
	seen := map[string]bool{}
	for _, s := range sigs {
		if seen[s.Mangled] {
			t.Fatalf("duplicate signature %s", s.Mangled)
		}
		seen[s.Mangled] = true
	}
	for _, name := range []string{"string.to_int@s", "string.to_int@si", "math.abs@i", "test.add@ii", "test.add@ff", "test.undef_fn@"} {
		if !seen[name] {
			t.Errorf("missing %s", name)
		}
	}
	again := Signatures()
	for i := range sigs {
		if sigs[i].Mangled != again[i].Mangled {
			t.Fatalf("order differs at %d: %s vs %s", i, sigs[i].Mangled, again[i].Mangled)
		}
	}
}

func TestDeclMatchesFields(t *testing.T) {
	m, ok := Lookup("test")
	if !ok {
		t.Fatal("test module missing")
	}
	v, ok := m.Decl.Lookup("int_one")
	if !ok || v.Type != symbols.Integer || v.Path != "test.int_one" {
		t.Fatalf("int_one decl = %+v", v)
	}
	f, ok := Resolver{}.Field(v.Path)
	if !ok || !f.Defined || f.Value.Int != 1 {
		t.Fatalf("int_one field = %+v", f)
	}

	nested, ok := m.Decl.Lookup("nested")
	if !ok || nested.Type != symbols.Struct {
		t.Fatalf("nested decl = %+v", nested)
	}
	two, ok := nested.Fields.Lookup("int_two")
	if !ok || two.Path != "test.nested.int_two" {
		t.Fatalf("nested.int_two decl = %+v", two)
	}

	undef, _ := Resolver{}.Field("test.int_undef")
	if undef.Defined {
		t.Fatal("int_undef must be undefined")
	}

	arr, ok := Resolver{}.Field("test.array_int")
	if !ok || !arr.IsArray || len(arr.Array) != 3 || arr.Array[2].Int != 100 {
		t.Fatalf("array_int = %+v", arr)
	}
}

func TestOverloads(t *testing.T) {
	m, _ := Lookup("test")
	add, _ := m.Decl.Lookup("add")
	if add.Type != symbols.Func || len(add.Funcs) != 2 {
		t.Fatalf("add = %+v", add)
	}
	sig, ok := add.FindOverload([]symbols.Type{symbols.Float, symbols.Float})
	if !ok || sig.Result != symbols.Float {
		t.Fatalf("float overload = %+v, %v", sig, ok)
	}
	if _, ok := add.FindOverload([]symbols.Type{symbols.Integer, symbols.Float}); ok {
		t.Fatal("mixed overload must not resolve")
	}
}

func call(t *testing.T, mangled string, args ...symbols.Value) (symbols.Value, bool) {
	t.Helper()
	fn, ok := Resolver{}.Func(mangled)
	if !ok {
		t.Fatalf("no implementation for %s", mangled)
	}
	return fn(args)
}

func TestStringToInt(t *testing.T) {
	cases := []struct {
		in      string
		base    int64
		want    int64
		defined bool
	}{
		{"1234", 0, 1234, true},
		{"-10", 0, -10, true},
		{"A", 0, 0, false},
		{"0x1A", 0, 0, false},
		{"A", 16, 10, true},
		{"011", 8, 9, true},
		{"-011", 8, -9, true},
		{"-011", 0, 0, false},
		{"-011", 1, 0, false},
		{"-011", 37, 0, false},
		{"zz", 36, 1295, true},
		{"9223372036854775808", 0, 0, false},
	}
	for _, tc := range cases {
		var (
			got     symbols.Value
			defined bool
		)
		if tc.base == 0 && tc.in != "-011" {
			got, defined = call(t, "string.to_int@s", symbols.Value{Str: []byte(tc.in)})
		} else {
			got, defined = call(t, "string.to_int@si", symbols.Value{Str: []byte(tc.in)}, symbols.Value{Int: tc.base})
		}
		if defined != tc.defined {
			t.Errorf("to_int(%q, %d) defined = %v, want %v", tc.in, tc.base, defined, tc.defined)
			continue
		}
		if defined && got.Int != tc.want {
			t.Errorf("to_int(%q, %d) = %d, want %d", tc.in, tc.base, got.Int, tc.want)
		}
	}
}

func TestMath(t *testing.T) {
	if v, _ := call(t, "math.abs@i", symbols.Value{Int: -5}); v.Int != 5 {
		t.Errorf("abs(-5) = %d", v.Int)
	}
	if v, _ := call(t, "math.min@ii", symbols.Value{Int: 3}, symbols.Value{Int: -1}); v.Int != -1 {
		t.Errorf("min = %d", v.Int)
	}
	if v, _ := call(t, "math.max@ii", symbols.Value{Int: 3}, symbols.Value{Int: -1}); v.Int != 3 {
		t.Errorf("max = %d", v.Int)
	}
	if v, _ := call(t, "math.to_string@ii", symbols.Value{Int: 255}, symbols.Value{Int: 16}); string(v.Str) != "ff" {
		t.Errorf("to_string(255, 16) = %q", v.Str)
	}
	if _, ok := call(t, "math.to_string@ii", symbols.Value{Int: 1}, symbols.Value{Int: 40}); ok {
		t.Error("to_string with base 40 must be undefined")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	Register(&Module{Name: "math"})
}

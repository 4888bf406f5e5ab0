package compiler

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestSerializeRoundTrip(t *testing.T) {
	c := New()
	if _, err := c.DefineGlobal("limit", 10); err != nil {
		t.Fatal(err)
	}
	mustAdd(t, c, `import "test"
rule a : tag { meta: k = "v" strings: $x = "abc" $h = { 4D ?? 5A } condition: $x or $h }
rule b { condition: a and test.int_one < limit }`)
	rules, err := c.Build()
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := rules.Serialize(&buf); err != nil {
		t.Fatal(err)
	}
	got, err := Deserialize(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Rules()) != 2 || len(got.Patterns()) != 2 || len(got.Globals()) != 1 {
		t.Fatalf("tables lost: %d rules, %d patterns, %d globals",
			len(got.Rules()), len(got.Patterns()), len(got.Globals()))
	}
	if got.RuleName(1) != "b" {
		t.Fatalf("RuleName(1) = %q", got.RuleName(1))
	}
	if !bytes.Equal(got.Patterns()[1].Mask, rules.Patterns()[1].Mask) {
		t.Fatal("hex mask lost")
	}
	if got.Module().InstrCount() != rules.Module().InstrCount() {
		t.Fatal("module differs after round trip")
	}
	if got.Program().Len() != rules.Program().Len() {
		t.Fatal("program differs after round trip")
	}
	if name := got.Idents().MustResolve(got.Rule(0).Tags[0]); name != "tag" {
		t.Fatalf("tag resolved to %q", name)
	}
}

func TestDeserializeRejectsGarbage(t *testing.T) {
	if _, err := Deserialize(strings.NewReader("nope")); !errors.Is(err, ErrNotRules) {
		t.Fatalf("want ErrNotRules, got %v", err)
	}
	if _, err := Deserialize(strings.NewReader("YRXC\xc1")); err == nil {
		t.Fatal("want a decode error")
	}
}

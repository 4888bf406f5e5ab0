package parser

import (
	"testing"

	"yarax/internal/ast"
	"yarax/internal/diag"
	"yarax/internal/source"
)

func parseSource(t *testing.T, input string) (*ast.Builder, ast.FileID, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("test.yar", []byte(input))
	bag := diag.NewBag(100)
	builder := ast.NewBuilder(ast.Hints{})
	res := ParseFile(fs.Get(fileID), builder, Options{Reporter: &diag.BagReporter{Bag: bag}, MaxErrors: 100})
	return builder, res.File, bag
}

func mustParse(t *testing.T, input string) (*ast.Builder, ast.FileID) {
	t.Helper()
	b, f, bag := parseSource(t, input)
	if bag.HasErrors() {
		for _, d := range bag.Items() {
			t.Logf("%s: %s", d.Code.ID(), d.Message)
		}
		t.Fatalf("unexpected parse errors for:\n%s", input)
	}
	return b, f
}

func firstRule(t *testing.T, b *ast.Builder, f ast.FileID) *ast.RuleItem {
	t.Helper()
	for _, id := range b.Files.Get(f).Items {
		if r, ok := b.Items.Rule(id); ok {
			return r
		}
	}
	t.Fatal("no rule parsed")
	return nil
}

// conditionOf parses `rule r { condition: <expr> }` and returns the condition.
func conditionOf(t *testing.T, expr string) (*ast.Builder, ast.ExprID) {
	t.Helper()
	b, f := mustParse(t, "rule r { strings: $a = \"x\" $b1 = \"y\" condition: "+expr+" }")
	return b, firstRule(t, b, f).Condition
}

func expectCode(t *testing.T, input string, code diag.Code) {
	t.Helper()
	_, _, bag := parseSource(t, input)
	first, ok := bag.FirstError()
	if !ok {
		t.Fatalf("expected %s for %q, got no errors", code.ID(), input)
	}
	if first.Code != code {
		t.Fatalf("expected %s for %q, got %s: %s", code.ID(), input, first.Code.ID(), first.Message)
	}
}

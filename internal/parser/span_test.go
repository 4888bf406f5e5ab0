package parser

import (
	"os"
	"path/filepath"
	"testing"

	"yarax/internal/ast"
	"yarax/internal/diag"
	"yarax/internal/source"
	"yarax/internal/testkit"
)

func TestSpanInvariants(t *testing.T) {
	inputs := map[string]string{
		"full": `import "string"
private rule demo : tag1 tag2 {
	meta:
		author = "me"
		offset = -2
	strings:
		$a = "abc" ascii wide nocase
		$h = { 4D 5A ?? 9? }
		$ = "anon"
	condition:
		$a and #a > 1 and string.length("x") == 1
}`,
		"two rules": "rule a { condition: true }\nrule b { condition: a or not a }\n",
	}
	files, _ := filepath.Glob(filepath.Join("..", "..", "testdata", "rules", "*.yar"))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		inputs[filepath.Base(path)] = string(data)
	}

	for name, input := range inputs {
		fs := source.NewFileSet()
		fileID := fs.AddVirtual(name, []byte(input))
		bag := diag.NewBag(100)
		b := ast.NewBuilder(ast.Hints{})
		res := ParseFile(fs.Get(fileID), b, Options{Reporter: &diag.BagReporter{Bag: bag}, MaxErrors: 100})
		if bag.HasErrors() {
			t.Fatalf("%s: unexpected parse errors: %v", name, bag.Items())
		}
		if err := testkit.CheckSpanInvariants(b, res.File, fs.Get(fileID)); err != nil {
			t.Fatalf("%s: %v", name, err)
		}
	}
}

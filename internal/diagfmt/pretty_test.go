package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"yarax/internal/diag"
	"yarax/internal/source"
)

func singleDiag(t *testing.T, path, content string, d func(source.FileID) diag.Diagnostic) (*diag.Bag, *source.FileSet) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual(path, []byte(content))
	bag := diag.NewBag(10)
	bag.Add(d(id))
	return bag, fs
}

func TestPrettyHeaderAndCaret(t *testing.T) {
	content := "rule r {\n\tcondition: foo\n}\n"
	bag, fs := singleDiag(t, "rules.yar", content, func(id source.FileID) diag.Diagnostic {
		return diag.NewError(diag.SemaUnresolvedSymbol, source.Span{File: id, Start: 21, End: 24}, "unknown identifier `foo`")
	})
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{})
	out := buf.String()

	if !strings.HasPrefix(out, "rules.yar:2:13: ERROR SEM3003: unknown identifier `foo`\n") {
		t.Fatalf("unexpected header:\n%s", out)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("want header, source and caret lines, got:\n%s", out)
	}
	if lines[1] != "2 | \tcondition: foo" {
		t.Fatalf("unexpected source line %q", lines[1])
	}
	// таб сохраняется, дальше пробелы до колонки
	if lines[2] != "  | \t           ^~~" {
		t.Fatalf("unexpected caret line %q", lines[2])
	}
}

func TestPrettyContextAndNotes(t *testing.T) {
	content := "import \"string\"\nimport \"string\"\n"
	bag, fs := singleDiag(t, "dup.yar", content, func(id source.FileID) diag.Diagnostic {
		return diag.NewWarning(diag.SemaDuplicateImport, source.Span{File: id, Start: 16, End: 31}, "duplicate import").
			WithNote(source.Span{File: id, Start: 0, End: 15}, "first imported here")
	})
	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{Context: 1, ShowNotes: true})
	out := buf.String()
	for _, want := range []string{
		"dup.yar:2:1: WARNING SEM3002: duplicate import",
		"1 | import \"string\"",
		"2 | import \"string\"",
		"note: dup.yar:1:1: first imported here",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}
}

func TestPrettyContextWindow(t *testing.T) {
	content := "rule r {\n\tmeta:\n\t\ta = 1\n\tcondition: foo\n}\n"
	bag, fs := singleDiag(t, "ctx.yar", content, func(id source.FileID) diag.Diagnostic {
		return diag.NewError(diag.SemaUnresolvedSymbol, source.Span{File: id, Start: 36, End: 39}, "unknown identifier `foo`")
	})
	for _, tc := range []struct {
		context int8
		want    []string
		absent  []string
	}{
		{0, []string{"4 | \tcondition: foo"}, []string{"1 |", "2 |", "3 |"}},
		{1, []string{"3 | \t\ta = 1", "4 | \tcondition: foo"}, []string{"1 |", "2 |"}},
		{9, []string{"1 | rule r {", "4 | \tcondition: foo"}, nil},
	} {
		var buf bytes.Buffer
		Pretty(&buf, bag, fs, PrettyOpts{Context: tc.context})
		out := buf.String()
		for _, want := range tc.want {
			if !strings.Contains(out, want) {
				t.Errorf("context %d: output lacks %q:\n%s", tc.context, want, out)
			}
		}
		for _, bad := range tc.absent {
			if strings.Contains(out, bad) {
				t.Errorf("context %d: output has %q:\n%s", tc.context, bad, out)
			}
		}
	}
}

func TestPrettyColorToggle(t *testing.T) {
	bag, fs := singleDiag(t, "c.yar", "rule x", func(id source.FileID) diag.Diagnostic {
		return diag.NewError(diag.SynExpectLBrace, source.Span{File: id, Start: 6, End: 6}, "expected '{'")
	})
	var plain, colored bytes.Buffer
	Pretty(&plain, bag, fs, PrettyOpts{Color: false})
	Pretty(&colored, bag, fs, PrettyOpts{Color: true})
	if strings.Contains(plain.String(), "\x1b[") {
		t.Fatal("plain output must not contain escape sequences")
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Fatal("colored output must contain escape sequences")
	}
}

func TestPathModes(t *testing.T) {
	long := "/very/long/absolute/path/to/some/nested/directory/rules.yar"
	bag, fs := singleDiag(t, long, "rule x", func(id source.FileID) diag.Diagnostic {
		return diag.NewError(diag.SynExpectLBrace, source.Span{File: id, Start: 6, End: 6}, "expected '{'")
	})
	cases := []struct {
		mode PathMode
		want string
	}{
		{PathModeAuto, "rules.yar:1:7"},
		{PathModeBasename, "rules.yar:1:7"},
		{PathModeAbsolute, long + ":1:7"},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		Pretty(&buf, bag, fs, PrettyOpts{PathMode: tc.mode})
		if !strings.HasPrefix(buf.String(), tc.want) {
			t.Errorf("mode %d: want prefix %q, got %q", tc.mode, tc.want, buf.String())
		}
	}
}

func TestUnderlineUsesDisplayWidth(t *testing.T) {
	if got := underline("日本"); got != "^~~~" {
		t.Fatalf("underline(日本) = %q", got)
	}
	if got := padTo("é\tx"); got != " \t " {
		t.Fatalf("padTo = %q", got)
	}
}

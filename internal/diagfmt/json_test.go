package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"yarax/internal/diag"
	"yarax/internal/source"
)

func TestJSONOutput(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.yar", []byte("import \"nope\"\n"))
	items := []diag.Diagnostic{
		diag.NewError(diag.SemaUnknownModule, source.Span{File: id, Start: 7, End: 13}, "unknown module `nope`").
			WithNote(source.Span{File: id, Start: 0, End: 6}, "in this import"),
		diag.NewWarning(diag.SemaNonBoolCondition, source.Span{File: id, Start: 0, End: 1}, "second"),
	}

	var buf bytes.Buffer
	if err := JSON(&buf, items, fs, JSONOpts{IncludePositions: true, IncludeNotes: true, Max: 1}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	// Max режет список, но не счётчики
	if out.Errors != 1 || out.Warnings != 1 || len(out.Diagnostics) != 1 {
		t.Fatalf("unexpected counts: errors=%d warnings=%d items=%d", out.Errors, out.Warnings, len(out.Diagnostics))
	}
	d := out.Diagnostics[0]
	if d.Type != "error" || d.Code != "SEM3001" || d.Title != "Unknown module" || d.File != "a.yar" {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if d.Span.Start != 7 || d.Span.Line != 1 || d.Span.Column != 8 || d.Span.EndColumn != 14 {
		t.Fatalf("unexpected span %+v", d.Span)
	}
	if len(d.Labels) != 1 || d.Labels[0].Text != "in this import" || d.Labels[0].Span.Column != 1 {
		t.Fatalf("unexpected labels %+v", d.Labels)
	}
}

func TestJSONWithoutPositions(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.yar", []byte("rule a { condition: 1 }\n"))
	items := []diag.Diagnostic{
		diag.NewWarning(diag.SemaNonBoolCondition, source.Span{File: id, Start: 20, End: 21}, "condition is not a boolean"),
	}
	var buf bytes.Buffer
	if err := JSON(&buf, items, fs, JSONOpts{}); err != nil {
		t.Fatal(err)
	}
	var out DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	d := out.Diagnostics[0]
	if d.Type != "warning" || d.Span.Line != 0 || d.Span.Start != 20 || d.Labels != nil {
		t.Fatalf("unexpected diagnostic %+v", d)
	}
	if out.Errors != 0 || out.Warnings != 1 {
		t.Fatalf("unexpected counts %+v", out)
	}
}

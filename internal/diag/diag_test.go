package diag

import (
	"testing"

	"yarax/internal/source"
)

func TestBagLimitAndErrors(t *testing.T) {
	bag := NewBag(2)
	r := &BagReporter{Bag: bag}

	r.Report(SemaNonBoolCondition, SevWarning, source.Span{}, "w", nil)
	if bag.HasErrors() {
		t.Fatal("warnings only, HasErrors must be false")
	}
	if !bag.HasWarnings() {
		t.Fatal("HasWarnings must be true")
	}
	ReportError(r, SemaUnknownModule, source.Span{Start: 1, End: 2}, "unknown module `x`").Emit()
	if !bag.HasErrors() {
		t.Fatal("HasErrors must be true")
	}
	if bag.Add(New(SevInfo, SemaInfo, source.Span{}, "dropped")) {
		t.Fatal("bag limit must be enforced")
	}
	first, ok := bag.FirstError()
	if !ok || first.Code != SemaUnknownModule {
		t.Fatalf("FirstError = %+v, %v", first, ok)
	}
	if got := len(bag.Filter(SevWarning)); got != 1 {
		t.Fatalf("expected 1 warning, got %d", got)
	}
}

func TestBagTruncateAndSort(t *testing.T) {
	bag := NewBag(0)
	bag.Add(NewError(SemaTypeMismatch, source.Span{Start: 10, End: 12}, "b"))
	bag.Add(NewWarning(SemaDuplicateImport, source.Span{Start: 2, End: 3}, "a"))
	bag.Add(NewError(SemaUnresolvedSymbol, source.Span{Start: 20, End: 21}, "c"))

	bag.Sort()
	if bag.Items()[0].Message != "a" {
		t.Fatalf("unexpected order after Sort: %+v", bag.Items())
	}
	bag.Truncate(1)
	if bag.Len() != 1 {
		t.Fatalf("Truncate left %d items", bag.Len())
	}
	bag.Truncate(10)
	if bag.Len() != 1 {
		t.Fatal("Truncate beyond length must be a no-op")
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(0)
	b := ReportWarning(&BagReporter{Bag: bag}, SemaDuplicateImport, source.Span{}, "dup").
		WithNote(source.Span{Start: 4, End: 5}, "first imported here")
	b.Emit()
	b.Emit()
	if bag.Len() != 1 {
		t.Fatalf("expected exactly one diagnostic, got %d", bag.Len())
	}
	if len(bag.Items()[0].Notes) != 1 {
		t.Fatal("note must be attached")
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(&BagReporter{Bag: bag})
	for range 3 {
		r.Report(SemaDuplicateImport, SevWarning, source.Span{Start: 1, End: 2}, "dup", nil)
	}
	if bag.Len() != 1 {
		t.Fatalf("expected 1 diagnostic after dedup, got %d", bag.Len())
	}
}

func TestCodeIDs(t *testing.T) {
	cases := map[Code]string{
		LexUnknownChar:     "LEX1001",
		SynUnexpectedToken: "SYN2001",
		SemaUnknownModule:  "SEM3001",
		IOLoadFileError:    "IO4000",
		UnknownCode:        "E0000",
	}
	for c, want := range cases {
		if got := c.ID(); got != want {
			t.Errorf("%d.ID() = %q, want %q", c, got, want)
		}
	}
	if Code(9999).Title() != "Unknown error" {
		t.Error("unknown codes must fall back to the generic title")
	}
}

func TestFormatShort(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.AddVirtual("rules.yar", []byte("import \"x\"\nrule a { condition: 1 }\n"))

	diags := []Diagnostic{
		NewWarning(SemaNonBoolCondition, source.Span{File: file, Start: 31, End: 32}, "condition is not\na boolean"),
		NewError(SemaUnknownModule, source.Span{File: file, Start: 7, End: 10}, "unknown module `x`"),
	}
	want := "error SEM3001 rules.yar:1:8 unknown module `x`\n" +
		"warning SEM3006 rules.yar:2:21 condition is not a boolean"
	if got := FormatShort(diags, fs); got != want {
		t.Fatalf("FormatShort:\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestDedupReporterEscalates(t *testing.T) {
	bag := NewBag(0)
	r := NewDedupReporter(&BagReporter{Bag: bag})
	sp := source.Span{Start: 4, End: 9}
	r.Report(SemaNonBoolCondition, SevWarning, sp, "not a boolean", nil)
	r.Report(SemaNonBoolCondition, SevWarning, sp, "not a boolean", nil)
	// тот же текст как ошибка проходит
	r.Report(SemaNonBoolCondition, SevError, sp, "not a boolean", nil)
	r.Report(SemaNonBoolCondition, SevWarning, sp, "not a boolean", nil)
	// другой span - другая диагностика
	r.Report(SemaNonBoolCondition, SevWarning, source.Span{Start: 10, End: 11}, "not a boolean", nil)

	if bag.Len() != 3 {
		t.Fatalf("want 3 forwarded diagnostics, got %d", bag.Len())
	}
	if r.Suppressed() != 2 {
		t.Fatalf("want 2 suppressed, got %d", r.Suppressed())
	}
	var nilRep *DedupReporter
	if nilRep.Suppressed() != 0 {
		t.Fatal("nil reporter suppresses nothing")
	}
}

func TestSeverityLabels(t *testing.T) {
	for _, tc := range []struct {
		sev    Severity
		label  string
		header string
	}{
		{SevInfo, "info", "INFO"},
		{SevWarning, "warning", "WARNING"},
		{SevError, "error", "ERROR"},
		{Severity(9), "unknown", "UNKNOWN"},
	} {
		if tc.sev.Label() != tc.label || tc.sev.String() != tc.header {
			t.Errorf("%d: got %q/%q", tc.sev, tc.sev.Label(), tc.sev.String())
		}
	}
	if sev, ok := ParseSeverity("Warning"); !ok || sev != SevWarning {
		t.Errorf("ParseSeverity(Warning) = %v, %v", sev, ok)
	}
	if _, ok := ParseSeverity("fatal"); ok {
		t.Error("unknown label must not parse")
	}
}

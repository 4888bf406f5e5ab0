package diagfmt

import (
	"encoding/json"
	"io"

	"yarax/internal/diag"
	"yarax/internal/source"
)

// SpanJSON is a byte range of a rule source; line and column are 1-based
// and present only when positions were requested.
type SpanJSON struct {
	Start     uint32 `json:"start"`
	End       uint32 `json:"end"`
	Line      uint32 `json:"line,omitempty"`
	Column    uint32 `json:"column,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndColumn uint32 `json:"end_column,omitempty"`
}

// LabelJSON points at a secondary place, e.g. the first import of a module.
type LabelJSON struct {
	File string   `json:"file"`
	Span SpanJSON `json:"span"`
	Text string   `json:"text"`
}

// DiagnosticJSON is one compiler error or warning.
type DiagnosticJSON struct {
	Type   string      `json:"type"` // error, warning, info
	Code   string      `json:"code"`
	Title  string      `json:"title"`
	Text   string      `json:"text"`
	File   string      `json:"file"`
	Span   SpanJSON    `json:"span"`
	Labels []LabelJSON `json:"labels,omitempty"`
}

// DiagnosticsOutput is the document printed for one rules file.
type DiagnosticsOutput struct {
	Errors      int              `json:"errors"`
	Warnings    int              `json:"warnings"`
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
}

func makeSpan(sp source.Span, fs *source.FileSet, withPositions bool) SpanJSON {
	out := SpanJSON{Start: sp.Start, End: sp.End}
	if withPositions && fs.Get(sp.File) != nil {
		start, end := fs.Resolve(sp)
		out.Line, out.Column = start.Line, start.Col
		out.EndLine, out.EndColumn = end.Line, end.Col
	}
	return out
}

// BuildDiagnosticsOutput converts items without encoding them. Errors and
// Warnings count every item, including those cut off by opts.Max.
func BuildDiagnosticsOutput(items []diag.Diagnostic, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	out := DiagnosticsOutput{Diagnostics: []DiagnosticJSON{}}
	for _, d := range items {
		switch d.Severity {
		case diag.SevError:
			out.Errors++
		case diag.SevWarning:
			out.Warnings++
		}
		if opts.Max > 0 && len(out.Diagnostics) >= opts.Max {
			continue
		}
		dj := DiagnosticJSON{
			Type:  d.Severity.Label(),
			Code:  d.Code.ID(),
			Title: d.Code.Title(),
			Text:  d.Message,
			File:  formatPath(fs.Get(d.Primary.File), opts.PathMode),
			Span:  makeSpan(d.Primary, fs, opts.IncludePositions),
		}
		if opts.IncludeNotes {
			for _, n := range d.Notes {
				dj.Labels = append(dj.Labels, LabelJSON{
					File: formatPath(fs.Get(n.Span.File), opts.PathMode),
					Span: makeSpan(n.Span, fs, opts.IncludePositions),
					Text: n.Msg,
				})
			}
		}
		out.Diagnostics = append(out.Diagnostics, dj)
	}
	return out
}

// JSON writes items as one indented document.
func JSON(w io.Writer, items []diag.Diagnostic, fs *source.FileSet, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDiagnosticsOutput(items, fs, opts))
}

package diagfmt

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"yarax/internal/diag"
	"yarax/internal/source"
)

type palette struct {
	err, warn, info, loc, gutter, caret, note *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		loc:    color.New(color.Bold),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgGreen, color.Bold),
		note:   color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.loc, p.gutter, p.caret, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		PrettyOne(w, d, fs, opts)
	}
}

// PrettyOne renders a single diagnostic.
func PrettyOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	pal := newPalette(opts.Color)
	file := fs.Get(d.Primary.File)
	start, _ := fs.Resolve(d.Primary)

	fmt.Fprintf(w, "%s %s: %s\n",
		pal.loc.Sprintf("%s:%d:%d:", formatPath(file, opts.PathMode), start.Line, start.Col),
		pal.severity(d.Severity).Sprintf("%s %s", d.Severity, d.Code.ID()),
		d.Message,
	)
	if file != nil {
		writeSnippet(w, pal, fs, file, d.Primary, opts.Context)
	}

	if !opts.ShowNotes {
		return
	}
	for _, n := range d.Notes {
		nfile := fs.Get(n.Span.File)
		if nfile == nil {
			fmt.Fprintf(w, "  %s %s\n", pal.note.Sprint("note:"), n.Msg)
			continue
		}
		npos, _ := fs.Resolve(n.Span)
		fmt.Fprintf(w, "  %s %s:%d:%d: %s\n", pal.note.Sprint("note:"), formatPath(nfile, opts.PathMode), npos.Line, npos.Col, n.Msg)
	}
}

// PrettyString renders a single diagnostic into a string.
func PrettyString(d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) string {
	var buf bytes.Buffer
	PrettyOne(&buf, d, fs, opts)
	return buf.String()
}

func writeSnippet(w io.Writer, pal palette, fs *source.FileSet, file *source.File, sp source.Span, context int8) {
	start, end := fs.Resolve(sp)
	first := start.Line
	if context > 0 {
		first = 1
		if start.Line > uint32(context) {
			first = start.Line - uint32(context)
		}
	}
	width := len(fmt.Sprint(start.Line))
	for ln := first; ln <= start.Line; ln++ {
		fmt.Fprintf(w, "%s %s\n", pal.gutter.Sprintf("%*d |", width, ln), file.GetLine(ln))
	}

	line := file.GetLine(start.Line)
	col := int(start.Col) - 1
	if col > len(line) {
		col = len(line)
	}
	// span через несколько строк подчёркиваем до конца первой
	endCol := len(line)
	if end.Line == start.Line {
		endCol = min(int(end.Col)-1, len(line))
	}
	fmt.Fprintf(w, "%s %s%s\n",
		pal.gutter.Sprintf("%*s |", width, ""),
		padTo(line[:col]),
		pal.caret.Sprint(underline(line[col:max(col, endCol)])),
	)
}

// padTo повторяет отступ строки: табы сохраняем, остальное - пробелы по ширине рун.
func padTo(prefix string) string {
	var sb strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			sb.WriteByte('\t')
			continue
		}
		sb.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return sb.String()
}

func underline(text string) string {
	n := runewidth.StringWidth(text)
	if n <= 1 {
		return "^"
	}
	return "^" + strings.Repeat("~", n-1)
}

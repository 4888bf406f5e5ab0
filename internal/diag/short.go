package diag

import (
	"fmt"
	"sort"
	"strings"

	"yarax/internal/source"
)

// FormatShort renders diagnostics one per line as
// "<severity> <CODE> <path>:<line>:<col> <message>", sorted by location.
// Intended for tests and terse CLI output.
func FormatShort(diags []Diagnostic, fs *source.FileSet) string {
	if fs == nil || len(diags) == 0 {
		return ""
	}

	type row struct {
		sev, code, path string
		line, col       uint32
		msg             string
	}
	rows := make([]row, 0, len(diags))
	for _, d := range diags {
		file := fs.Get(d.Primary.File)
		if file == nil {
			continue
		}
		start, _ := fs.Resolve(d.Primary)
		rows = append(rows, row{
			sev:  d.Severity.Label(),
			code: d.Code.ID(),
			path: file.DisplayPath(),
			line: start.Line,
			col:  start.Col,
			msg:  sanitizeMessage(d.Message),
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		ri, rj := rows[i], rows[j]
		if ri.path != rj.path {
			return ri.path < rj.path
		}
		if ri.line != rj.line {
			return ri.line < rj.line
		}
		return ri.col < rj.col
	})

	var b strings.Builder
	for i, r := range rows {
		fmt.Fprintf(&b, "%s %s %s:%d:%d %s", r.sev, r.code, r.path, r.line, r.col, r.msg)
		if i < len(rows)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}

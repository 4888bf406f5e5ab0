package diag

import "yarax/internal/source"

type dedupKey struct {
	code Code
	span source.Span
	msg  string
}

// DedupReporter forwards a diagnostic once per code, span and message.
// Parser recovery can reach the same bad token from several paths; a repeat
// is dropped unless it comes with a higher severity than the first report.
type DedupReporter struct {
	next       Reporter
	seen       map[dedupKey]Severity
	suppressed int
}

func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{
		next: next,
		seen: make(map[dedupKey]Severity),
	}
}

func (r *DedupReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	if r == nil {
		return
	}
	key := dedupKey{code: code, span: primary, msg: msg}
	if prev, ok := r.seen[key]; ok && prev >= sev {
		r.suppressed++
		return
	}
	r.seen[key] = sev
	if r.next != nil {
		r.next.Report(code, sev, primary, msg, notes)
	}
}

// Suppressed is the number of reports dropped so far.
func (r *DedupReporter) Suppressed() int {
	if r == nil {
		return 0
	}
	return r.suppressed
}

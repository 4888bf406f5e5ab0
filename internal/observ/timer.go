// Package observ measures the phases of a CLI run (parse, compile, build,
// scan) for the --timings flag.
package observ

import (
	"fmt"
	"io"
	"time"
)

// Phase is one finished measurement.
type Phase struct {
	Name string        `json:"name"`
	Dur  time.Duration `json:"duration_ns"`
	Note string        `json:"note,omitempty"`
}

// Timer collects phases in the order they finish. The zero value is ready
// to use; a nil *Timer ignores everything, so callers need not check
// whether timings were requested.
type Timer struct {
	phases []Phase
	now    func() time.Time
}

func NewTimer() *Timer { return &Timer{now: time.Now} }

// Start begins a phase; the returned func ends it with an optional note.
func (t *Timer) Start(name string) func(note string) {
	if t == nil {
		return func(string) {}
	}
	if t.now == nil {
		t.now = time.Now
	}
	began := t.now()
	return func(note string) {
		t.phases = append(t.phases, Phase{Name: name, Dur: t.now().Sub(began), Note: note})
	}
}

func (t *Timer) Phases() []Phase {
	if t == nil {
		return nil
	}
	return append([]Phase(nil), t.phases...)
}

// Total is the sum of all phase durations.
func (t *Timer) Total() time.Duration {
	var total time.Duration
	for _, p := range t.Phases() {
		total += p.Dur
	}
	return total
}

// WriteSummary prints one line per phase plus the total, in milliseconds.
func (t *Timer) WriteSummary(w io.Writer) {
	if t == nil || len(t.phases) == 0 {
		return
	}
	fmt.Fprintln(w, "timings:")
	for _, p := range t.phases {
		fmt.Fprintf(w, "  %-12s %8.2f ms", p.Name, millis(p.Dur))
		if p.Note != "" {
			fmt.Fprintf(w, "  // %s", p.Note)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "  %-12s %8.2f ms\n", "total", millis(t.Total()))
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

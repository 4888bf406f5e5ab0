package observ

import (
	"strings"
	"testing"
	"time"
)

func fakeClock(step time.Duration) func() time.Time {
	t0 := time.Unix(0, 0)
	n := 0
	return func() time.Time {
		n++
		return t0.Add(time.Duration(n) * step)
	}
}

func TestTimerPhases(t *testing.T) {
	tm := &Timer{now: fakeClock(time.Millisecond)}
	endParse := tm.Start("parse")
	endParse("3 files")
	endBuild := tm.Start("build")
	endBuild("")

	ps := tm.Phases()
	if len(ps) != 2 || ps[0].Name != "parse" || ps[1].Name != "build" {
		t.Fatalf("unexpected phases %+v", ps)
	}
	if ps[0].Dur != time.Millisecond || tm.Total() != 2*time.Millisecond {
		t.Fatalf("durations: %v total %v", ps[0].Dur, tm.Total())
	}

	var sb strings.Builder
	tm.WriteSummary(&sb)
	out := sb.String()
	for _, want := range []string{"timings:", "parse", "// 3 files", "total", "2.00 ms"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary misses %q:\n%s", want, out)
		}
	}
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	tm.Start("x")("")
	if tm.Phases() != nil || tm.Total() != 0 {
		t.Fatal("nil timer must record nothing")
	}
	var sb strings.Builder
	tm.WriteSummary(&sb)
	if sb.Len() != 0 {
		t.Fatal("nil timer must print nothing")
	}
}

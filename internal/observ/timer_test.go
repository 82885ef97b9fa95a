package observ

import (
	"strings"
	"testing"
	"time"
)

func TestTimer_ReportAndSummary(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	tm := NewTimer()
	tm.now = func() time.Time { return clock }

	endLoad := tm.Begin("load")
	clock = clock.Add(3 * time.Millisecond)
	endLoad("2 files")

	endResolve := tm.Begin("resolve")
	clock = clock.Add(1500 * time.Microsecond)
	endResolve("")

	r := tm.Report()
	if len(r.Phases) != 2 || r.Phases[0].DurationMS != 3 || r.Phases[1].DurationMS != 1.5 || r.TotalMS != 4.5 {
		t.Fatalf("unexpected report: %+v", r)
	}

	want := "timings:\n" +
		"  load             3.00 ms  (2 files)\n" +
		"  resolve          1.50 ms\n" +
		"  total            4.50 ms\n"
	if got := tm.Summary(); got != want {
		t.Fatalf("summary mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestTimer_Empty(t *testing.T) {
	if got := NewTimer().Summary(); !strings.HasSuffix(got, "total            0.00 ms\n") {
		t.Fatalf("unexpected summary %q", got)
	}
}

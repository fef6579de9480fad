package observ

import (
	"strings"
	"testing"
	"time"
)

func TestTimerReport(t *testing.T) {
	clock := time.Unix(0, 0)
	tm := NewTimer()
	tm.now = func() time.Time { return clock }

	seed := tm.Begin("seed")
	clock = clock.Add(2 * time.Millisecond)
	tm.End(seed, "42 records")
	ingest := tm.Begin("ingest")
	clock = clock.Add(3 * time.Millisecond)
	tm.End(ingest, "")
	tm.End(99, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(r.Phases))
	}
	if r.TotalMS != 5 {
		t.Fatalf("total = %v ms, want 5", r.TotalMS)
	}
	sum := r.Summary()
	if !strings.Contains(sum, "seed") || !strings.Contains(sum, "// 42 records") {
		t.Fatalf("summary missing phase details:\n%s", sum)
	}
}

func TestNilTimerIsSafe(t *testing.T) {
	var tm *Timer
	tm.End(tm.Begin("x"), "")
	if len(tm.Report().Phases) != 0 {
		t.Fatalf("nil timer should report nothing")
	}
}

package observ

import (
	"strings"
	"testing"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	a := tm.Begin("merge-partial-types")
	b := tm.Begin("resolve-type-declarations")
	tm.End(b, 4, "")
	tm.End(a, 2, "frozen")
	tm.End(99, 0, "ignored")

	r := tm.Report()
	if len(r.Phases) != 2 || r.Phases[0].Name != "merge-partial-types" {
		t.Fatalf("unexpected phases: %+v", r.Phases)
	}
	if r.Phases[1].Items != 4 || r.Phases[0].Note != "frozen" {
		t.Fatalf("phase metadata lost: %+v", r.Phases)
	}
	s := r.Summary()
	if !strings.Contains(s, "// frozen") || !strings.Contains(s, "total") {
		t.Fatalf("summary:\n%s", s)
	}
}

func TestEmptyTimer(t *testing.T) {
	if r := NewTimer().Report(); r.TotalMS != 0 || len(r.Phases) != 0 {
		t.Fatalf("expected empty report, got %+v", r)
	}
}

package diag

import (
	"sync"
	"testing"

	"semgraph/internal/source"
)

func TestBagLimitAndSort(t *testing.T) {
	bag := NewBag(3)
	bag.Add(NewError(SemaSimpleNameUndefined, source.Span{File: 1, Start: 10, End: 12}, "b"))
	bag.Add(NewError(SemaAmbiguousDeclarations, source.Span{File: 0, Start: 5, End: 6}, "a"))
	bag.Add(New(SevWarning, SemaInfo, source.Span{File: 1, Start: 10, End: 12}, "w"))
	if bag.Add(NewError(SemaInfo, source.Span{}, "overflow")) {
		t.Fatalf("bag accepted a diagnostic over its limit")
	}

	bag.Sort()
	items := bag.Items()
	if items[0].Message != "a" || items[1].Message != "b" || items[2].Message != "w" {
		t.Fatalf("unexpected order: %q %q %q", items[0].Message, items[1].Message, items[2].Message)
	}
	if !bag.HasErrors() {
		t.Fatalf("expected HasErrors")
	}
	if bag.Count(SemaAmbiguousDeclarations) != 1 {
		t.Fatalf("Count mismatch")
	}
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(10)
	b := ReportError(BagReporter{Bag: bag}, SemaAmbiguousDeclarations, source.Span{}, "ambiguous 'X'").
		WithNote(source.Span{Start: 1}, "candidate").
		WithNote(source.Span{Start: 2}, "candidate")
	b.Emit()
	b.Emit()
	if bag.Len() != 1 {
		t.Fatalf("Emit must report exactly once, got %d", bag.Len())
	}
	if got := len(bag.Items()[0].Notes); got != 2 {
		t.Fatalf("notes = %d, want 2", got)
	}
	if ReportError(nil, SemaInfo, source.Span{}, "x") != nil {
		t.Fatalf("nil reporter must produce a nil builder")
	}
}

func TestDedupAndSyncReporter(t *testing.T) {
	bag := NewBag(100)
	rep := NewSyncReporter(NewDedupReporter(BagReporter{Bag: bag}))
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rep.Report(SemaSimpleNameUndefined, SevError, source.Span{Start: 1, End: 2}, "same", nil)
		}()
	}
	wg.Wait()
	if bag.Len() != 1 {
		t.Fatalf("expected a single deduplicated diagnostic, got %d", bag.Len())
	}

	dedup := NewDedupReporter(BagReporter{Bag: bag})
	dedup.Report(SemaSimpleNameUndefined, SevError, source.Span{Start: 1, End: 2}, "same", nil)
	dedup.Report(SemaSimpleNameUndefined, SevError, source.Span{Start: 1, End: 2}, "same", nil)
	dedup.Report(SemaSimpleNameUndefined, SevWarning, source.Span{Start: 1, End: 2}, "same", nil)
	if dedup.Suppressed() != 1 || bag.Len() != 3 {
		t.Fatalf("suppressed = %d, len = %d", dedup.Suppressed(), bag.Len())
	}
}

func TestRetainAndPromote(t *testing.T) {
	bag := NewBag(10)
	bag.Add(New(SevInfo, ObsTimings, source.Span{}, "timings"))
	bag.Add(New(SevWarning, SemaDuplicateUsing, source.Span{Start: 3}, "dup"))
	if bag.HasErrors() {
		t.Fatalf("warnings are not errors")
	}
	bag.Retain(SevWarning)
	if bag.Len() != 1 || bag.Items()[0].Code != SemaDuplicateUsing {
		t.Fatalf("Retain kept %v", bag.Items())
	}
	bag.Promote(SevWarning, SevError)
	if !bag.HasErrors() {
		t.Fatalf("Promote should turn the warning into an error")
	}
}

func TestTruncateKeepsSortedPrefix(t *testing.T) {
	bag := NewBag(1 << 20)
	for i := 150; i > 0; i-- {
		bag.Add(NewError(SemaSimpleNameUndefined, source.Span{Start: uint32(i), End: uint32(i) + 1}, "x"))
	}
	bag.Sort()
	bag.Truncate(2)
	if bag.Len() != 2 || bag.Items()[0].Primary.Start != 1 || bag.Items()[1].Primary.Start != 2 {
		t.Fatalf("Truncate(2) kept %v", bag.Items())
	}

	big := NewBag(1 << 20)
	for i := 0; i < DefaultLimit+5; i++ {
		big.Add(NewError(SemaSimpleNameUndefined, source.Span{Start: uint32(i)}, "x"))
	}
	big.Truncate(0)
	if big.Len() != DefaultLimit {
		t.Fatalf("Truncate(0) kept %d, want %d", big.Len(), DefaultLimit)
	}
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want Severity
		ok   bool
	}{
		{"info", SevInfo, true},
		{" Warning ", SevWarning, true},
		{"ERROR", SevError, true},
		{"fatal", SevInfo, false},
	}
	for _, tt := range tests {
		got, err := ParseSeverity(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Fatalf("ParseSeverity(%q) = %v, %v", tt.in, got, err)
		}
	}
	if SevWarning.String() != "WARNING" || SevError.Label() != "error" {
		t.Fatalf("labels: %s %s", SevWarning, SevError.Label())
	}
}

func TestCodeID(t *testing.T) {
	if got := SemaQualifierRefersToType.ID(); got != "SEM3010" {
		t.Fatalf("ID = %s", got)
	}
	if got := SynBadName.Title(); got == "" {
		t.Fatalf("missing title")
	}
}

package source

import (
	"fmt"
	"sync"
	"testing"
)

func TestInternerBasic(t *testing.T) {
	interner := NewInterner()

	if s, ok := interner.Lookup(NoStringID); !ok || s != "" {
		t.Fatalf("NoStringID must map to the empty string, got %q ok=%v", s, ok)
	}
	id1 := interner.Intern("Widget")
	if id1 == NoStringID {
		t.Fatalf("Intern returned NoStringID for a non-empty string")
	}
	if id2 := interner.Intern("Widget"); id1 != id2 {
		t.Fatalf("same string interned twice: %d != %d", id1, id2)
	}
	if s := interner.MustLookup(id1); s != "Widget" {
		t.Fatalf("Lookup returned %q", s)
	}
	if id3 := interner.Intern("Gadget"); id3 == id1 {
		t.Fatalf("different strings share an ID")
	}
	if interner.Len() != 3 {
		t.Fatalf("Len = %d, want 3", interner.Len())
	}
}

func TestInternerNormalizesNFC(t *testing.T) {
	interner := NewInterner()
	composed := interner.Intern("caf\u00e9")
	decomposed := interner.Intern("cafe\u0301")
	if composed != decomposed {
		t.Fatalf("canonically equivalent identifiers got different IDs: %d vs %d", composed, decomposed)
	}
	if _, ok := interner.Find("cafe\u0301"); !ok {
		t.Fatalf("Find must normalize its argument")
	}
}

func TestInternerConcurrent(t *testing.T) {
	interner := NewInterner()
	const workers = 8
	ids := make([][]StringID, workers)
	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				ids[w] = append(ids[w], interner.Intern(fmt.Sprintf("name%d", i)))
			}
		}()
	}
	wg.Wait()
	for w := 1; w < workers; w++ {
		for i := range ids[w] {
			if ids[w][i] != ids[0][i] {
				t.Fatalf("worker %d got ID %d for name%d, worker 0 got %d", w, ids[w][i], i, ids[0][i])
			}
		}
	}
	if interner.Len() != 101 {
		t.Fatalf("Len = %d, want 101", interner.Len())
	}
}

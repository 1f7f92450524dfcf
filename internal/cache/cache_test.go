package cache

import (
	"testing"

	"semgraph/internal/diag"
	"semgraph/internal/observ"
	"semgraph/internal/source"
)

func TestPutGetRoundTripsDiagnostics(t *testing.T) {
	c, err := OpenDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	fs := source.NewFileSet()
	a := fs.AddVirtual("a.sgu.yaml", []byte("types: []\n"))
	key := Key("dev", "App", []*source.File{fs.Get(a)})

	if _, ok, err := c.Get(key); ok || err != nil {
		t.Fatalf("empty cache hit: %v %v", ok, err)
	}

	bag := diag.NewBag(0)
	bag.Add(diag.NewError(diag.SemaSimpleNameUndefined, source.Span{File: a, Start: 0, End: 5}, "missing").
		WithNote(source.Span{File: a, Start: 7, End: 9}, "here"))
	payload := &Payload{
		RunID:       "run-1",
		Files:       []string{"a.sgu.yaml"},
		Diagnostics: Capture(bag, fs),
		Timings:     observ.Report{TotalMS: 1.5},
	}
	if err := c.Put(key, payload); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := c.Get(key)
	if err != nil || !ok {
		t.Fatalf("Get: %v %v", ok, err)
	}
	if got.RunID != "run-1" || got.Timings.TotalMS != 1.5 {
		t.Fatalf("payload = %+v", got)
	}

	fresh := source.NewFileSet()
	id := fresh.AddVirtual("a.sgu.yaml", []byte("types: []\n"))
	restored := diag.NewBag(0)
	Restore(restored, fresh, got.Diagnostics)
	items := restored.Items()
	if len(items) != 1 || items[0].Code != diag.SemaSimpleNameUndefined || items[0].Primary.File != id {
		t.Fatalf("restored = %+v", items)
	}
	if len(items[0].Notes) != 1 || items[0].Notes[0].Span.Start != 7 {
		t.Fatalf("notes lost: %+v", items[0].Notes)
	}

	if err := c.DropAll(); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := c.Get(key); ok {
		t.Fatalf("DropAll left an entry")
	}
}

func TestKeyIgnoresFileOrderButNotContent(t *testing.T) {
	fs := source.NewFileSet()
	a := fs.Get(fs.AddVirtual("a", []byte("1")))
	b := fs.Get(fs.AddVirtual("b", []byte("2")))
	if Key("v", "App", []*source.File{a, b}) != Key("v", "App", []*source.File{b, a}) {
		t.Fatalf("key depends on order")
	}
	b2 := fs.Get(fs.AddVirtual("b", []byte("3")))
	if Key("v", "App", []*source.File{a, b}) == Key("v", "App", []*source.File{a, b2}) {
		t.Fatalf("key ignores content")
	}
	if Key("v", "App", []*source.File{a}) == Key("v", "Lib", []*source.File{a}) {
		t.Fatalf("key ignores assembly")
	}
}

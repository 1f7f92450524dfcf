package source

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSetVersioning(t *testing.T) {
	fs := NewFileSet()
	id1 := fs.Add("unit.yaml", []byte("a: 1"), 0)
	id2 := fs.Add("unit.yaml", []byte("a: 2"), 0)
	if id1 == id2 {
		t.Fatalf("re-adding a path must allocate a new FileID")
	}
	latest, ok := fs.GetLatest("./unit.yaml")
	if !ok || latest != id2 {
		t.Fatalf("GetLatest = %d, %v; want %d", latest, ok, id2)
	}
	if got := string(fs.Get(id1).Content); got != "a: 1" {
		t.Fatalf("old version content = %q", got)
	}
}

func TestFileSetResolveAndOffset(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("mem.yaml", []byte("first\nsecond line\nthird"))
	f := fs.Get(id)

	tests := []struct {
		line, col int
		want      uint32
	}{
		{1, 1, 0},
		{1, 3, 2},
		{2, 1, 6},
		{2, 8, 13},
		{3, 2, 19},
		{9, 1, 23},
	}
	for _, tt := range tests {
		if got := f.Offset(tt.line, tt.col); got != tt.want {
			t.Fatalf("Offset(%d,%d) = %d, want %d", tt.line, tt.col, got, tt.want)
		}
	}

	start, end := fs.Resolve(Span{File: id, Start: 13, End: 17})
	if start != (LineCol{Line: 2, Col: 8}) || end != (LineCol{Line: 2, Col: 12}) {
		t.Fatalf("Resolve = %+v %+v", start, end)
	}
	if got := f.GetLine(2); got != "second line" {
		t.Fatalf("GetLine(2) = %q", got)
	}
	if got := f.GetLine(3); got != "third" {
		t.Fatalf("GetLine(3) = %q", got)
	}
}

func TestLoadNormalizesCRLFAndBOM(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		flags FileFlags
	}{
		{"\xEF\xBB\xBFx\r\ny", "x\ny", FileHadBOM | FileNormalizedCRLF},
		{"a\rb\n", "a\rb\n", 0},
		{"", "", 0},
	}
	for _, tt := range tests {
		got, flags := normalize([]byte(tt.in))
		if string(got) != tt.want || flags != tt.flags {
			t.Fatalf("normalize(%q) = %q, %b", tt.in, got, flags)
		}
	}

	path := filepath.Join(t.TempDir(), "crlf.sgu.yaml")
	if err := os.WriteFile(path, []byte("\xEF\xBB\xBFa: 1\r\nb: 2\r\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	fs := NewFileSet()
	id, err := fs.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	f := fs.Get(id)
	if f.GetLine(2) != "b: 2" || f.Flags&FileNormalizedCRLF == 0 {
		t.Fatalf("loaded %q flags %b", f.Content, f.Flags)
	}
	if pos := f.Position(f.Offset(2, 3)); pos != (LineCol{Line: 2, Col: 3}) {
		t.Fatalf("Offset/Position round trip = %+v", pos)
	}
}

func TestSpanCoverAndLess(t *testing.T) {
	a := Span{File: 1, Start: 4, End: 8}
	b := Span{File: 1, Start: 2, End: 6}
	if got := a.Cover(b); got != (Span{File: 1, Start: 2, End: 8}) {
		t.Fatalf("Cover = %v", got)
	}
	if !b.Less(a) || a.Less(b) {
		t.Fatalf("Less ordering broken")
	}
	if other := (Span{File: 2}); a.Cover(other) != a {
		t.Fatalf("Cover across files must be a no-op")
	}
}

func TestOffsetClampsAndOffChecks(t *testing.T) {
	fs := NewFileSet()
	f := fs.Get(fs.Add("u.yaml", []byte("ab\ncd"), 0))
	if got := f.Offset(2, 1<<40); got != 5 {
		t.Fatalf("Offset with a huge column = %d, want 5", got)
	}
	if got := f.Offset(9, 1); got != 5 {
		t.Fatalf("Offset past the last line = %d, want 5", got)
	}
	if Off(7) != 7 {
		t.Fatalf("Off(7) != 7")
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("Off(-1) should panic")
		}
	}()
	Off(-1)
}

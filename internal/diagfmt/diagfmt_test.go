package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"semgraph/internal/diag"
	"semgraph/internal/source"
)

const unitText = "types:\n  - {kind: class, name: Foo, bases: [Bar]}\n"

func fixture(t *testing.T) (*source.FileSet, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.sgu.yaml", []byte(unitText))
	at := func(text string) source.Span {
		off := strings.Index(unitText, text)
		if off < 0 {
			t.Fatalf("%q not in unit", text)
		}
		return source.Span{File: id, Start: uint32(off), End: uint32(off + len(text))} //nolint:gosec // test data
	}
	bag := diag.NewBag(0)
	bag.Add(diag.NewError(diag.SemaSimpleNameUndefined, at("Bar"),
		"the type or namespace name 'Bar' could not be found").WithNote(at("Foo"), "base of 'Foo'"))
	bag.Add(diag.NewError(diag.SemaCircularBaseDependency, at("Foo"), "circular base type dependency involving 'Foo'"))
	bag.Sort()
	return fs, bag
}

func TestPrettyAlignsCaret(t *testing.T) {
	fs, bag := fixture(t)
	var buf bytes.Buffer
	if err := Pretty(&buf, bag, fs, PrettyOpts{ShowNotes: true}); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "a.sgu.yaml:2:25: error SEM3014: circular base") {
		t.Fatalf("missing header:\n%s", out)
	}
	if !strings.Contains(out, "note: a.sgu.yaml:2:25: base of 'Foo'") {
		t.Fatalf("missing note:\n%s", out)
	}

	lines := strings.Split(out, "\n")
	for i, line := range lines {
		caret := strings.Index(line, "^~~")
		if caret < 0 {
			continue
		}
		src := lines[i-1]
		want := strings.Index(src, "Foo")
		if strings.Contains(lines[i-2], "SEM3008") {
			want = strings.Index(src, "Bar")
		}
		if caret != want {
			t.Fatalf("caret at %d, want %d:\n%s\n%s", caret, want, src, line)
		}
	}
}

func TestShortAndJSON(t *testing.T) {
	fs, bag := fixture(t)

	var short bytes.Buffer
	if err := Short(&short, bag, fs, PathModeAuto, ""); err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(short.String(), "\n"); got != 2 {
		t.Fatalf("short lines = %d:\n%s", got, short.String())
	}

	out := BuildDiagnosticsOutput(bag, fs, JSONOpts{IncludePositions: true, IncludeNotes: true, Max: 1})
	if out.Count != 2 || out.Errors != 2 || len(out.Diagnostics) != 1 {
		t.Fatalf("unexpected output: %+v", out)
	}
	first := out.Diagnostics[0]
	if first.Code != "SEM3014" || first.Location.StartLine != 2 || first.Location.StartCol != 25 {
		t.Fatalf("first diagnostic: %+v", first)
	}

	var buf bytes.Buffer
	if err := Write(&buf, FormatSARIF, bag, fs, PrettyOpts{}, SarifRunMeta{ToolName: "semgraph"}); err != nil {
		t.Fatal(err)
	}
	var log map[string]any
	if err := json.Unmarshal(buf.Bytes(), &log); err != nil {
		t.Fatalf("sarif is not JSON: %v", err)
	}
	if log["version"] != "2.1.0" {
		t.Fatalf("sarif version = %v", log["version"])
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		err  bool
	}{
		{"", FormatPretty, false},
		{"JSON", FormatJSON, false},
		{"short", FormatShort, false},
		{"xml", FormatPretty, true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.err || got != tt.want {
			t.Fatalf("ParseFormat(%q) = %v, %v", tt.in, got, err)
		}
	}
}

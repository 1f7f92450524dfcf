package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, text string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
}

func isUnit(path string) bool { return strings.HasSuffix(path, ".sgu.yaml") }

func TestDiscoverWalksUpAndFillsDefaults(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, FileName), `
[project]
assembly = "App"

[check]
jobs = 2
`)
	sub := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	m, ok, err := Discover(sub)
	if err != nil || !ok {
		t.Fatalf("Discover: %v %v", ok, err)
	}
	if m.Root != root {
		t.Fatalf("root = %s", m.Root)
	}
	if m.Config.Check.Jobs != 2 || m.Config.Check.MaxDiagnostics != 200 || m.Config.Check.Format != "pretty" {
		t.Fatalf("config = %+v", m.Config.Check)
	}
}

func TestLoadRejectsBadManifests(t *testing.T) {
	tests := []struct {
		name, text, want string
	}{
		{"missing assembly", "[check]\njobs = 1\n", "missing [project].assembly"},
		{"unknown key", "[project]\nassembly = \"App\"\ncolour = true\n", "unknown keys: project.colour"},
		{"negative jobs", "[project]\nassembly = \"App\"\n[check]\njobs = -1\n", "jobs must not be negative"},
		{"syntax", "[project\n", "failed to parse TOML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			writeFile(t, path, tt.text)
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestSourcesHonoursIncludeAndExclude(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "src", "a.sgu.yaml"), "")
	writeFile(t, filepath.Join(root, "src", "gen", "b.sgu.yaml"), "")
	writeFile(t, filepath.Join(root, "src", "notes.txt"), "")
	writeFile(t, filepath.Join(root, "lib.sgu.yaml"), "")
	m := &Manifest{Root: root, Config: Default("App")}
	m.Config.Sources = SourcesConfig{Include: []string{"src", "lib.sgu.yaml"}, Exclude: []string{"src/gen/*"}}

	got, err := m.Sources(isUnit)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{filepath.Join(root, "lib.sgu.yaml"), filepath.Join(root, "src", "a.sgu.yaml")}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("sources = %v, want %v", got, want)
	}
}

func TestWriteRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := Write(path, Default("App")); err != nil {
		t.Fatal(err)
	}
	if err := Write(path, Default("App")); err == nil {
		t.Fatalf("second Write must refuse to overwrite")
	}
	m, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Config.Project.Assembly != "App" || !m.Config.Check.Cache {
		t.Fatalf("config = %+v", m.Config)
	}
}

package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestInfo(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	defer func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate }()

	tests := []struct {
		version, commit, date, want string
	}{
		{"1.2.3", "", "", "semgraph 1.2.3"},
		{"1.2.3", "abc123", "", "semgraph 1.2.3 (abc123)"},
		{"1.2.3", "abc123", "2026-01-15", "semgraph 1.2.3 (abc123, 2026-01-15)"},
		{"1.2.3-rc.1", "", "2026-01-15", "semgraph 1.2.3-rc.1 (2026-01-15)"},
	}
	for _, tt := range tests {
		Version, GitCommit, BuildDate = tt.version, tt.commit, tt.date
		if got := Info(false); got != tt.want {
			t.Fatalf("Info() = %q, want %q", got, tt.want)
		}
	}
}

func TestColoredKeepsSuffix(t *testing.T) {
	orig, origNoColor := Version, color.NoColor
	defer func() { Version, color.NoColor = orig, origNoColor }()

	color.NoColor = true
	Version = "0.1.0-dev"
	if got := Colored(); got != "0.1.0-dev" {
		t.Fatalf("Colored() = %q", got)
	}

	color.NoColor = false
	if got := Colored(); !strings.HasSuffix(got, "-dev") || !strings.Contains(got, "\x1b[") {
		t.Fatalf("Colored() = %q", got)
	}
}

func TestKeyChangesWithCommit(t *testing.T) {
	orig := GitCommit
	defer func() { GitCommit = orig }()
	GitCommit = "a"
	a := Key()
	GitCommit = "b"
	if a == Key() {
		t.Fatalf("Key ignores the commit")
	}
}

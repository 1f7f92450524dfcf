package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const appUnit = `
assembly: App
usings: [System]
namespaces:
  - name: App
    types:
      - kind: class
        name: Program
        access: public
        fields:
          - {name: count, type: int, init: "42"}
          - {name: lost, type: Missing}
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"--color", "off"}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	runCleanups()
	return out.String(), err
}

func project(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if _, err := execute(t, "init", dir, "--assembly", "App"); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "app.sgu.yaml"), []byte(appUnit), 0o600); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestInitRefusesExistingManifest(t *testing.T) {
	dir := project(t)
	if _, err := os.Stat(filepath.Join(dir, "semgraph.toml")); err != nil {
		t.Fatalf("manifest not written: %v", err)
	}
	_, err := execute(t, "init", dir, "--assembly", "App")
	if err == nil || !strings.Contains(err.Error(), "already initialized") {
		t.Fatalf("second init: %v", err)
	}
}

func TestCheckReportsAndFails(t *testing.T) {
	dir := project(t)
	out, err := execute(t, "check", dir, "--format", "short", "--cache=false", "--ui", "off")
	if !isExitStatus(err) {
		t.Fatalf("check error = %v, want exit status", err)
	}
	if !strings.Contains(out, "SEM3008") || !strings.Contains(out, "Missing") {
		t.Fatalf("output:\n%s", out)
	}
}

func TestCheckReusesCachedDiagnostics(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	dir := project(t)

	first, err := execute(t, "check", dir, "--format", "pretty", "--cache=true", "--ui", "off")
	if !isExitStatus(err) {
		t.Fatalf("first check: %v", err)
	}
	if strings.Contains(first, "(cached)") {
		t.Fatalf("first run cannot be cached:\n%s", first)
	}
	second, err := execute(t, "check", dir, "--format", "pretty", "--cache=true", "--ui", "off")
	if !isExitStatus(err) {
		t.Fatalf("second check: %v", err)
	}
	if !strings.Contains(second, "(cached)") {
		t.Fatalf("second run should hit the cache:\n%s", second)
	}
	strip := func(s string) string { return strings.ReplaceAll(s, " (cached)", "") }
	if strip(first) != strip(second) {
		t.Fatalf("cached output differs:\n%s\n---\n%s", first, second)
	}
}

func TestCachedRunIgnoresEarlierLimit(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Cleanup(func() { _ = checkCmd.Flags().Set("max-diagnostics", "0") })
	dir := t.TempDir()
	if _, err := execute(t, "init", dir, "--assembly", "App"); err != nil {
		t.Fatalf("init: %v", err)
	}
	unit := `
assembly: App
namespaces:
  - name: App
    types:
      - kind: class
        name: Holder
        access: public
        fields:
          - {name: a, type: MissingA}
          - {name: b, type: MissingB}
`
	if err := os.WriteFile(filepath.Join(dir, "holder.sgu.yaml"), []byte(unit), 0o600); err != nil {
		t.Fatal(err)
	}

	limited, err := execute(t, "check", dir, "--format", "short", "--cache=true", "--ui", "off", "--max-diagnostics", "1")
	if !isExitStatus(err) {
		t.Fatalf("limited check: %v", err)
	}
	if !strings.Contains(limited, "MissingA") || strings.Contains(limited, "MissingB") {
		t.Fatalf("limited output should keep only the first diagnostic:\n%s", limited)
	}
	full, err := execute(t, "check", dir, "--format", "short", "--cache=true", "--ui", "off", "--max-diagnostics", "50")
	if !isExitStatus(err) {
		t.Fatalf("full check: %v", err)
	}
	if !strings.Contains(full, "MissingA") || !strings.Contains(full, "MissingB") {
		t.Fatalf("cached run lost diagnostics:\n%s", full)
	}
}

func TestResolveJSON(t *testing.T) {
	dir := project(t)
	out, err := execute(t, "resolve", dir, "--format", "json", "--owner", "App.Program.count")
	if !isExitStatus(err) {
		t.Fatalf("resolve: %v", err)
	}
	var rows []resolvedExpr
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(rows) != 1 || rows[0].Expr != "42" || !strings.HasPrefix(rows[0].Result, "value of type") {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestExportWritesDatabase(t *testing.T) {
	dir := project(t)
	db := filepath.Join(t.TempDir(), "graph.sqlite")
	out, err := execute(t, "export", dir, "--db", db, "--force")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasPrefix(out, "wrote "+db) {
		t.Fatalf("output = %q", out)
	}
	if fi, err := os.Stat(db); err != nil || fi.Size() == 0 {
		t.Fatalf("database missing: %v", err)
	}
}

func TestFlagParsers(t *testing.T) {
	for _, tt := range []struct {
		in   string
		want uiMode
		ok   bool
	}{
		{"", uiModeAuto, true},
		{"ON", uiModeOn, true},
		{"off", uiModeOff, true},
		{"sometimes", "", false},
	} {
		got, err := readUIMode(tt.in)
		if (err == nil) != tt.ok || got != tt.want {
			t.Fatalf("readUIMode(%q) = %q, %v", tt.in, got, err)
		}
	}
	if on, err := colorEnabled("on", os.Stdout); err != nil || !on {
		t.Fatalf("colorEnabled(on) = %v, %v", on, err)
	}
	if _, err := colorEnabled("rainbow", os.Stdout); err == nil {
		t.Fatalf("colorEnabled accepted an invalid mode")
	}
}

// Package config loads the semgraph.toml project manifest.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the manifest name searched for from the working directory up.
const FileName = "semgraph.toml"

// Manifest is a located, validated project manifest.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors semgraph.toml.
type Config struct {
	Project ProjectConfig `toml:"project"`
	Sources SourcesConfig `toml:"sources"`
	Check   CheckConfig   `toml:"check"`
	Trace   TraceConfig   `toml:"trace"`
}

type ProjectConfig struct {
	Assembly string `toml:"assembly"`
}

// SourcesConfig selects unit files. Include entries are directories or
// files relative to the manifest; Exclude entries are filepath.Match
// patterns tested against each file's base name and its relative path.
type SourcesConfig struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
}

type CheckConfig struct {
	Jobs           int    `toml:"jobs"`
	MaxDiagnostics int    `toml:"max_diagnostics"`
	Format         string `toml:"format"`
	Cache          bool   `toml:"cache"`
}

type TraceConfig struct {
	Level  string `toml:"level"`
	Mode   string `toml:"mode"`
	Output string `toml:"output"`
}

// Default is the configuration used without a manifest and the one `init`
// writes.
func Default(assembly string) Config {
	return Config{
		Project: ProjectConfig{Assembly: assembly},
		Sources: SourcesConfig{Include: []string{"."}},
		Check:   CheckConfig{MaxDiagnostics: 200, Format: "pretty", Cache: true},
		Trace:   TraceConfig{Level: "off", Mode: "stream", Output: "-"},
	}
}

// Find walks from startDir up to the filesystem root looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		dir = parent
	}
}

// Discover finds and loads the manifest governing startDir. ok is false
// when there is none.
func Discover(startDir string) (*Manifest, bool, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// Load parses and validates the manifest at path. Unset keys keep their
// defaults; unknown keys are an error.
func Load(path string) (*Manifest, error) {
	cfg := Default("")
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if !meta.IsDefined("project", "assembly") || strings.TrimSpace(cfg.Project.Assembly) == "" {
		return nil, fmt.Errorf("%s: missing [project].assembly", path)
	}
	if cfg.Check.Jobs < 0 {
		return nil, fmt.Errorf("%s: [check].jobs must not be negative", path)
	}
	if cfg.Check.MaxDiagnostics < 0 {
		return nil, fmt.Errorf("%s: [check].max_diagnostics must not be negative", path)
	}
	if len(cfg.Sources.Include) == 0 {
		cfg.Sources.Include = []string{"."}
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, nil
}

// Write stores cfg as TOML at path, refusing to overwrite an existing file.
func Write(path string, cfg Config) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		_ = f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// Sources lists the unit files selected by the manifest, sorted. isUnit
// decides which files count as units.
func (m *Manifest) Sources(isUnit func(string) bool) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(path string) {
		rel, err := filepath.Rel(m.Root, path)
		if err != nil {
			rel = path
		}
		if seen[path] || m.excluded(filepath.ToSlash(rel)) {
			return
		}
		seen[path] = true
		out = append(out, path)
	}
	for _, inc := range m.Config.Sources.Include {
		root := filepath.Join(m.Root, filepath.FromSlash(inc))
		info, err := os.Stat(root)
		if err != nil {
			return nil, fmt.Errorf("%s: [sources].include %q: %w", m.Path, inc, err)
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && isUnit(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	slices.Sort(out)
	return out, nil
}

func (m *Manifest) excluded(rel string) bool {
	for _, pat := range m.Config.Sources.Exclude {
		if ok, _ := filepath.Match(pat, rel); ok {
			return true
		}
		if ok, _ := filepath.Match(pat, filepath.Base(rel)); ok {
			return true
		}
	}
	return false
}

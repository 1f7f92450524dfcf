// Package cache stores the diagnostics of a finished check on disk, keyed
// by a digest of every input unit, so an unchanged project is not
// re-checked.
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"semgraph/internal/diag"
	"semgraph/internal/observ"
	"semgraph/internal/source"
)

// SchemaVersion changes whenever Payload changes shape.
const SchemaVersion uint16 = 1

// Digest is a SHA-256 content key.
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// DiskCache keeps payloads under <dir>/checks/<digest>.mp. Safe for
// concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// Note is a cached diagnostic note.
type Note struct {
	File  string `msgpack:"file"`
	Start uint32 `msgpack:"start"`
	End   uint32 `msgpack:"end"`
	Msg   string `msgpack:"msg"`
}

// Diagnostic is a diagnostic with its file recorded by path, since FileIDs
// do not survive the process.
type Diagnostic struct {
	Severity uint8  `msgpack:"sev"`
	Code     uint16 `msgpack:"code"`
	Message  string `msgpack:"msg"`
	File     string `msgpack:"file"`
	Start    uint32 `msgpack:"start"`
	End      uint32 `msgpack:"end"`
	Notes    []Note `msgpack:"notes,omitempty"`
}

// Payload is one cached check.
type Payload struct {
	Schema      uint16        `msgpack:"schema"`
	RunID       string        `msgpack:"run"`
	Files       []string      `msgpack:"files"`
	Diagnostics []Diagnostic  `msgpack:"diags"`
	Timings     observ.Report `msgpack:"timings"`
}

// Open returns the cache under $XDG_CACHE_HOME/<app>, or ~/.cache/<app>.
func Open(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDir(filepath.Join(base, app))
}

// OpenDir returns a cache rooted at dir, creating it.
func OpenDir(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string { return c.dir }

func (c *DiskCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "checks", key.String()+".mp")
}

// Key digests the schema, the tool version, the root assembly and the
// path and content hash of every file, independent of file order.
func Key(version, assembly string, files []*source.File) Digest {
	sorted := slices.Clone(files)
	slices.SortFunc(sorted, func(a, b *source.File) int {
		switch {
		case a.Path < b.Path:
			return -1
		case a.Path > b.Path:
			return 1
		}
		return 0
	})
	h := sha256.New()
	var schema [2]byte
	binary.BigEndian.PutUint16(schema[:], SchemaVersion)
	h.Write(schema[:])
	for _, s := range []string{version, assembly} {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	for _, f := range sorted {
		h.Write([]byte(f.Path))
		h.Write([]byte{0})
		h.Write(f.Hash[:])
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// Put writes payload atomically.
func (c *DiskCache) Put(key Digest, payload *Payload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) && err == nil {
			err = rmErr
		}
	}()

	payload.Schema = SchemaVersion
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads the payload stored under key. A missing entry or one written
// by another schema is a miss.
func (c *DiskCache) Get(key Digest) (*Payload, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var out Payload
	if err := msgpack.NewDecoder(f).Decode(&out); err != nil {
		return nil, false, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	if out.Schema != SchemaVersion {
		return nil, false, nil
	}
	return &out, true, nil
}

// DropAll removes every cached check.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "checks"))
}

// Capture converts a bag into its cacheable form.
func Capture(bag *diag.Bag, fs *source.FileSet) []Diagnostic {
	path := func(id source.FileID) string {
		if f := fs.Get(id); f != nil {
			return f.Path
		}
		return ""
	}
	items := bag.Items()
	out := make([]Diagnostic, 0, len(items))
	for _, d := range items {
		cd := Diagnostic{
			Severity: uint8(d.Severity),
			Code:     uint16(d.Code),
			Message:  d.Message,
			File:     path(d.Primary.File),
			Start:    d.Primary.Start,
			End:      d.Primary.End,
		}
		for _, n := range d.Notes {
			cd.Notes = append(cd.Notes, Note{File: path(n.Span.File), Start: n.Span.Start, End: n.Span.End, Msg: n.Msg})
		}
		out = append(out, cd)
	}
	return out
}

// Restore adds cached diagnostics to bag, re-binding file paths to the
// files currently loaded in fs.
func Restore(bag *diag.Bag, fs *source.FileSet, diags []Diagnostic) {
	span := func(file string, start, end uint32) source.Span {
		id, _ := fs.GetLatest(file)
		return source.Span{File: id, Start: start, End: end}
	}
	for _, cd := range diags {
		d := diag.Diagnostic{
			Severity: diag.Severity(cd.Severity),
			Code:     diag.Code(cd.Code),
			Message:  cd.Message,
			Primary:  span(cd.File, cd.Start, cd.End),
		}
		for _, n := range cd.Notes {
			d.Notes = append(d.Notes, diag.Note{Span: span(n.File, n.Start, n.End), Msg: n.Msg})
		}
		bag.Add(d)
	}
}

package skeleton

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"semgraph/internal/diag"
	"semgraph/internal/source"
)

// Extensions lists the file suffixes treated as compilation units.
var Extensions = []string{".sgu.yaml", ".sgu.yml"}

// IsUnitFile reports whether path names a compilation unit.
func IsUnitFile(path string) bool {
	for _, ext := range Extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// ListUnits returns the sorted unit files below dir.
func ListUnits(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsUnitFile(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// Parse decodes the unit stored in file id of fs.
func Parse(fs *source.FileSet, id source.FileID) (*Unit, error) {
	f := fs.Get(id)
	if f == nil {
		return nil, fmt.Errorf("skeleton: unknown file %d", id)
	}
	dec := yaml.NewDecoder(bytes.NewReader(f.Content))
	dec.KnownFields(true)
	u := &Unit{}
	if err := dec.Decode(u); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	u.File = id
	u.Path = f.Path
	return u, nil
}

// LoadFiles reads and decodes paths in parallel, at most jobs at a time.
// Units come back in path order; files that fail to load or decode are
// reported to rep, which must accept concurrent reports, and left out.
func LoadFiles(ctx context.Context, fs *source.FileSet, paths []string, jobs int, rep diag.Reporter) ([]*Unit, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	units := make([]*Unit, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			id, err := fs.Load(path)
			if err != nil {
				rep.Report(diag.IOLoadFileError, diag.SevError, source.Span{}, "failed to load file: "+err.Error(), nil)
				return nil
			}
			u, err := Parse(fs, id)
			if err != nil {
				rep.Report(diag.SynBadUnit, diag.SevError, source.Span{File: id},
					fmt.Sprintf("%s: malformed compilation unit: %v", path, err), nil)
				return nil
			}
			units[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := units[:0]
	for _, u := range units {
		if u != nil {
			out = append(out, u)
		}
	}
	return out, nil
}

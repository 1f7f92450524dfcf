package source

import (
	"bytes"
	"fmt"
	"path/filepath"
	"slices"

	"fortio.org/safecast"
)

// FileID identifies a file within a FileSet. 0 is a valid ID.
type FileID uint32

// FileFlags record how a file was obtained.
type FileFlags uint8

const (
	FileVirtual        FileFlags = 1 << iota // added from memory
	FileHadBOM                               // a UTF-8 BOM was stripped
	FileNormalizedCRLF                       // CRLF line endings were rewritten
)

// File is one loaded compilation-unit document.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of '\n' bytes
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol is a 1-based position.
type LineCol struct {
	Line uint32
	Col  uint32
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// normalize strips a leading BOM and rewrites CRLF pairs to LF. Lone CRs
// are kept.
func normalize(content []byte) ([]byte, FileFlags) {
	var flags FileFlags
	if rest, ok := bytes.CutPrefix(content, utf8BOM); ok {
		content = rest
		flags |= FileHadBOM
	}
	if bytes.Contains(content, []byte("\r\n")) {
		content = bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
		flags |= FileNormalizedCRLF
	}
	return content, flags
}

func lineIndex(content []byte) []uint32 {
	idx := make([]uint32, 0, bytes.Count(content, []byte{'\n'}))
	for off := 0; ; {
		i := bytes.IndexByte(content[off:], '\n')
		if i < 0 {
			return idx
		}
		off += i
		idx = append(idx, Off(off))
		off++
	}
}

// Position converts a byte offset into a line and column.
func (f *File) Position(off uint32) LineCol {
	// Newlines before off end the preceding lines.
	line, _ := slices.BinarySearch(f.LineIdx, off)
	if line == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}
	start := f.LineIdx[line-1] + 1
	return LineCol{Line: Off(line + 1), Col: off - start + 1}
}

// Off converts a byte offset or length inside a loaded file to uint32.
// FileSet.Add rejects files that do not fit, so overflow is a bug.
func Off(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("source offset overflow: %w", err))
	}
	return v
}

// Offset converts a 1-based line/column into a byte offset, clamped to the
// file bounds.
func (f *File) Offset(line, col int) uint32 {
	if f == nil || line <= 0 {
		return 0
	}
	size := len(f.Content)
	start := 0
	if line > 1 {
		if line-2 >= len(f.LineIdx) {
			return Off(size)
		}
		start = int(f.LineIdx[line-2]) + 1
	}
	if col > 1 {
		start += col - 1
	}
	return Off(min(start, size))
}

// GetLine returns the text of a 1-based line without its newline.
func (f *File) GetLine(line uint32) string {
	if f == nil || line == 0 || int(line-1) > len(f.LineIdx) {
		return ""
	}
	var start uint32
	if line > 1 {
		start = f.LineIdx[line-2] + 1
	}
	end := Off(len(f.Content))
	if int(line-1) < len(f.LineIdx) {
		end = f.LineIdx[line-1]
	}
	if start > end {
		return ""
	}
	return string(f.Content[start:end])
}

func normalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

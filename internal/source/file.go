// Package source owns assembler input files and maps byte spans back to
// line and column positions.
package source

import (
	"fmt"
	"os"

	"fortio.org/safecast"
)

// FileID identifies a file within a FileSet.
type FileID uint32

// FileFlags records how a file's content was obtained.
type FileFlags uint8

const (
	// FileVirtual marks content that did not come from disk.
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
)

// File is one loaded source. LineIdx holds the offset of every '\n'.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Flags   FileFlags
}

// LineCol is a 1-based position.
type LineCol struct {
	Line uint32
	Col  uint32
}

func (lc LineCol) String() string { return fmt.Sprintf("%d:%d", lc.Line, lc.Col) }

// FileSet is the collection of files seen by one assembler invocation.
type FileSet struct {
	files []File
	index map[string]FileID
}

func NewFileSet() *FileSet {
	return &FileSet{index: make(map[string]FileID)}
}

// Add stores content under path and returns its ID. Re-adding a path
// creates a new file and points the path index at it.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	n, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("too many source files: %w", err))
	}
	id := FileID(n)
	path = normalizePath(path)
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    path,
		Content: content,
		LineIdx: buildLineIndex(content),
		Flags:   flags,
	})
	fs.index[path] = id
	return id
}

// Load reads path, strips a UTF-8 BOM and folds CRLF line endings.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return fs.AddNormalized(path, content), nil
}

// AddNormalized is Load for content already in memory.
func (fs *FileSet) AddNormalized(path string, content []byte) FileID {
	var flags FileFlags
	content, bom := removeBOM(content)
	if bom {
		flags |= FileHadBOM
	}
	content, crlf := normalizeCRLF(content)
	if crlf {
		flags |= FileNormalizedCRLF
	}
	return fs.Add(path, content, flags)
}

// AddVirtual adds in-memory content such as stdin or a test fixture.
func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	return fs.Add(name, content, FileVirtual)
}

func (fs *FileSet) Get(id FileID) *File {
	return &fs.files[id]
}

func (fs *FileSet) Lookup(path string) (*File, bool) {
	id, ok := fs.index[normalizePath(path)]
	if !ok {
		return nil, false
	}
	return &fs.files[id], true
}

// Resolve converts a span to start and end positions.
func (fs *FileSet) Resolve(sp Span) (start, end LineCol) {
	f := &fs.files[sp.File]
	return toLineCol(f.LineIdx, sp.Start), toLineCol(f.LineIdx, sp.End)
}

// Position renders "path:line:col" for the start of sp.
func (fs *FileSet) Position(sp Span) string {
	if int(sp.File) >= len(fs.files) {
		return sp.String()
	}
	start, _ := fs.Resolve(sp)
	return fs.files[sp.File].Path + ":" + start.String()
}

// Line returns line n (1-based) without its terminator, or "" when out of
// range.
func (f *File) Line(n uint32) string {
	if n == 0 {
		return ""
	}
	var start uint32
	if n > 1 {
		if int(n-2) >= len(f.LineIdx) {
			return ""
		}
		start = f.LineIdx[n-2] + 1
	}
	end := uint32(len(f.Content))
	if int(n-1) < len(f.LineIdx) {
		end = f.LineIdx[n-1]
	}
	if start > end {
		return ""
	}
	return string(f.Content[start:end])
}

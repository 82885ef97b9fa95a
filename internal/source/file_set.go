package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"fortio.org/safecast"
)

// FileSet manages the bridge inputs of one batch and resolves spans to
// line/column positions. It is safe for concurrent use: files are loaded by
// the driver while rendering may already run for earlier inputs.
type FileSet struct {
	mu      sync.RWMutex
	files   []*File
	index   map[string]FileID
	baseDir string
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{index: make(map[string]FileID)}
}

// NewFileSetWithBase creates a FileSet that formats paths relative to baseDir.
func NewFileSetWithBase(baseDir string) *FileSet {
	fs := NewFileSet()
	fs.baseDir = baseDir
	return fs
}

// SetBaseDir sets the directory relative paths are computed against.
func (fileSet *FileSet) SetBaseDir(dir string) {
	fileSet.mu.Lock()
	fileSet.baseDir = dir
	fileSet.mu.Unlock()
}

// BaseDir returns the base directory, falling back to the working directory.
func (fileSet *FileSet) BaseDir() string {
	fileSet.mu.RLock()
	dir := fileSet.baseDir
	fileSet.mu.RUnlock()
	if dir == "" {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	return dir
}

// Add stores already normalized content and returns a new FileID.
// It always creates a new FileID even if the path was added before.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	fileSet.mu.Lock()
	defer fileSet.mu.Unlock()

	n, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	id := FileID(n)
	normalized := normalizePath(path)
	fileSet.files = append(fileSet.files, &File{
		ID:      id,
		Path:    normalized,
		Content: content,
		LineIdx: buildLineIndex(content),
		Flags:   flags,
	})
	fileSet.index[normalized] = id
	return id
}

// Load reads a file from disk, strips a BOM, normalizes CRLF and calls Add.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}

	content, hadBOM := removeBOM(content)
	content, hadCRLF := normalizeCRLF(content)

	flags := FileFlags(0)
	if hadBOM {
		flags |= FileHadBOM
	}
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return fileSet.Add(path, content, flags), nil
}

// AddVirtual adds an in-memory file with the FileVirtual flag.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	return fileSet.Add(name, content, FileVirtual)
}

// Get returns the file for id, or nil when the id is unknown.
func (fileSet *FileSet) Get(id FileID) *File {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	if int(id) >= len(fileSet.files) {
		return nil
	}
	return fileSet.files[id]
}

// GetByPath returns the latest file added under path.
func (fileSet *FileSet) GetByPath(path string) (*File, bool) {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	id, ok := fileSet.index[normalizePath(path)]
	if !ok {
		return nil, false
	}
	return fileSet.files[id], true
}

// Len reports how many files were added.
func (fileSet *FileSet) Len() int {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	return len(fileSet.files)
}

// Resolve converts a span into line and column positions.
// ok is false when the span points at an unknown file.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol, ok bool) {
	f := fileSet.Get(span.File)
	if f == nil {
		return LineCol{}, LineCol{}, false
	}
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End), true
}

// GetLine returns line lineNum (1-based) without its newline, or "" when out of range.
func (f *File) GetLine(lineNum uint32) string {
	if lineNum == 0 {
		return ""
	}
	lenIdx, err := safecast.Conv[uint32](len(f.LineIdx))
	if err != nil {
		panic(fmt.Errorf("line index length overflow: %w", err))
	}
	lenContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}

	var start, end uint32
	switch {
	case lineNum == 1:
		start = 0
	case lineNum-2 < lenIdx:
		start = f.LineIdx[lineNum-2] + 1
	default:
		return ""
	}
	if lineNum-1 < lenIdx {
		end = f.LineIdx[lineNum-1]
	} else {
		end = lenContent
	}
	if start > lenContent {
		return ""
	}
	return string(f.Content[start:end])
}

// FormatPath renders the file path. mode is one of "absolute", "relative",
// "basename"; anything else returns the stored path.
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := filepath.Abs(f.Path); err == nil {
			return normalizePath(abs)
		}
	case "relative":
		if baseDir == "" {
			return f.Path
		}
		abs, err := filepath.Abs(f.Path)
		if err != nil {
			return f.Path
		}
		rel, err := filepath.Rel(baseDir, abs)
		if err != nil {
			return normalizePath(abs)
		}
		rel = normalizePath(rel)
		if rel == ".." || strings.HasPrefix(rel, "../") {
			return normalizePath(abs)
		}
		return rel
	case "basename":
		return filepath.Base(f.Path)
	}
	return f.Path
}

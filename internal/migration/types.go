package migration

import (
	"io"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// SourceFile is one resolved migration source. It is enumerated fresh on
// every run and only read once, by the generator.
type SourceFile struct {
	// Path is the absolute path with forward slashes.
	Path string
	// RelPath is the path relative to the source root it was found under.
	RelPath string

	fs afero.Fs
}

func NewSourceFile(fs afero.Fs, absPath, relPath string) SourceFile {
	return SourceFile{Path: absPath, RelPath: relPath, fs: fs}
}

// Name returns the base name of the file.
func (f SourceFile) Name() string {
	return path.Base(f.Path)
}

// Identifier is the file's base name with the final extension removed,
// e.g. "V1__init.java" becomes "V1__init" and "archive.tar.gz" becomes "archive.tar".
func (f SourceFile) Identifier() string {
	return IdentifierFromFilename(f.Path)
}

func (f SourceFile) Open() (io.ReadCloser, error) {
	return f.fs.Open(fromSlash(f.Path))
}

func IdentifierFromFilename(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if i := strings.LastIndex(base, "."); i >= 0 {
		return base[:i]
	}
	return base
}

// ChecksumEntry pairs a migration identifier with the checksum of its source.
type ChecksumEntry struct {
	Checksum   int32  `json:"checksum" yaml:"checksum"`
	Identifier string `json:"identifier" yaml:"identifier"`
	Path       string `json:"path" yaml:"-"`
}

// Table is the ordered data handed to a renderer.
type Table struct {
	Package  string
	TypeName string
	Entries  []ChecksumEntry
}

// Result describes a finished generate or check run.
type Result struct {
	Path    string
	Entries []ChecksumEntry
	Content []byte
	Diff    string
}

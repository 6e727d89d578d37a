package migration

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

var validSegment = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

const artifactMode os.FileMode = 0644

// IsIdentifier reports whether s can be used as a type or constant name.
func IsIdentifier(s string) bool {
	return validSegment.MatchString(s)
}

// artifactExtensions are file-type suffixes a type name must not end with.
var artifactExtensions = []string{"java", "kt", "go", "yaml", "yml", "json"}

// Renderer turns a checksum table into the text of the generated artifact.
type Renderer interface {
	Name() string
	Extension() string
	Render(w io.Writer, table Table) error
}

// OutputTarget names the generated type and where its file goes.
type OutputTarget struct {
	// Name is the fully qualified type name, e.g. "db.migration.JavaMigrationChecksum".
	Name        string
	Destination string
}

// Validate checks the fully qualified name: it needs a namespace, each
// segment must be an identifier and it must not end in a file-type suffix.
func (t OutputTarget) Validate() error {
	if strings.TrimSpace(t.Destination) == "" {
		return configErrorf("destination directory must be specified")
	}
	if !strings.Contains(t.Name, ".") {
		return configErrorf("type name %q is invalid - it must include a namespace (e.g. db.migration.%s)", t.Name, t.Name)
	}

	last := t.Name[strings.LastIndex(t.Name, ".")+1:]
	for _, ext := range artifactExtensions {
		if last == ext {
			return configErrorf("type name %q is invalid - it must not end with a .%s file extension", t.Name, last)
		}
	}

	for _, segment := range strings.Split(t.Name, ".") {
		if !validSegment.MatchString(segment) {
			return configErrorf("type name %q is invalid - segment %q is not an identifier", t.Name, segment)
		}
	}
	return nil
}

// Namespace is everything before the last separator.
func (t OutputTarget) Namespace() string {
	i := strings.LastIndex(t.Name, ".")
	if i < 0 {
		return ""
	}
	return t.Name[:i]
}

// SimpleName is everything after the last separator.
func (t OutputTarget) SimpleName() string {
	return t.Name[strings.LastIndex(t.Name, ".")+1:]
}

// Path is destination/<namespace as directories>/<SimpleName>.<ext>.
func (t OutputTarget) Path(ext string) string {
	dir := strings.ReplaceAll(t.Namespace(), ".", "/")
	return path.Join(toSlash(t.Destination), dir, t.SimpleName()+"."+ext)
}

type Generator struct {
	fs       afero.Fs
	renderer Renderer
	logger   zerolog.Logger
}

func NewGenerator(fs afero.Fs, renderer Renderer, logger zerolog.Logger) *Generator {
	return &Generator{fs: fs, renderer: renderer, logger: logger}
}

// Build validates the target and computes the ordered checksum table. No
// file is read before the target has been validated.
func (g *Generator) Build(files []SourceFile, target OutputTarget) (*Table, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, &Error{Kind: ErrNoInput, Msg: "nothing to checksum"}
	}
	if err := CheckDuplicateIdentifiers(files); err != nil {
		return nil, err
	}

	total := len(files)
	entries := make([]ChecksumEntry, 0, total)
	for i, f := range files {
		checksum, err := checksumSource(f)
		if err != nil {
			return nil, err
		}

		entry := ChecksumEntry{
			Checksum:   checksum,
			Identifier: f.Identifier(),
			Path:       f.Path,
		}
		entries = append(entries, entry)

		g.logger.Debug().
			Int("current", i+1).
			Int("total", total).
			Str("identifier", entry.Identifier).
			Int32("checksum", entry.Checksum).
			Msg("Calculated migration checksum")
	}

	return &Table{
		Package:  target.Namespace(),
		TypeName: target.SimpleName(),
		Entries:  entries,
	}, nil
}

func checksumSource(f SourceFile) (int32, error) {
	r, err := f.Open()
	if err != nil {
		return 0, sourceReadError(f.Path, err)
	}
	defer r.Close()

	checksum, err := CalculateChecksum(r)
	if err != nil {
		return 0, sourceReadError(f.Path, err)
	}
	return checksum, nil
}

func (g *Generator) render(files []SourceFile, target OutputTarget) (*Result, error) {
	table, err := g.Build(files, target)
	if err != nil {
		return nil, err
	}

	out := target.Path(g.renderer.Extension())

	var buf bytes.Buffer
	if err := g.renderer.Render(&buf, *table); err != nil {
		return nil, renderError(out, err)
	}

	return &Result{
		Path:    out,
		Entries: table.Entries,
		Content: buf.Bytes(),
	}, nil
}

// Generate writes the artifact for files. The whole table is rendered in
// memory first and then moved into place with a rename, so a failed run
// never leaves a partial artifact behind.
func (g *Generator) Generate(files []SourceFile, target OutputTarget) (*Result, error) {
	runID := uuid.New().String()[:8]
	logger := g.logger.With().Str("run_id", runID).Logger()

	res, err := g.render(files, target)
	if err != nil {
		return nil, err
	}

	if err := g.write(res.Path, res.Content); err != nil {
		return nil, err
	}

	logger.Info().
		Str("path", res.Path).
		Str("format", g.renderer.Name()).
		Int("count", len(res.Entries)).
		Msg("Generated migration checksums")

	return res, nil
}

func (g *Generator) write(out string, content []byte) error {
	dir := path.Dir(out)
	if err := g.fs.MkdirAll(fromSlash(dir), 0755); err != nil {
		return renderError(out, err)
	}

	tmp, err := afero.TempFile(g.fs, fromSlash(dir), "."+path.Base(out)+".*.tmp")
	if err != nil {
		return renderError(out, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		_ = g.fs.Remove(tmpName)
		return renderError(out, err)
	}
	if err := tmp.Close(); err != nil {
		_ = g.fs.Remove(tmpName)
		return renderError(out, err)
	}
	// TempFile creates 0600; the artifact is read by other build users.
	if err := g.fs.Chmod(tmpName, artifactMode); err != nil {
		_ = g.fs.Remove(tmpName)
		return renderError(out, err)
	}
	if err := g.fs.Rename(tmpName, fromSlash(out)); err != nil {
		_ = g.fs.Remove(tmpName)
		return renderError(out, err)
	}
	return nil
}

// Check renders the table and compares it with the artifact on disk. A
// missing or different artifact yields ErrOutOfDate and a unified diff in
// the result.
func (g *Generator) Check(files []SourceFile, target OutputTarget) (*Result, error) {
	res, err := g.render(files, target)
	if err != nil {
		return nil, err
	}

	current, err := afero.ReadFile(g.fs, fromSlash(res.Path))
	if err != nil && !os.IsNotExist(err) {
		return nil, renderError(res.Path, err)
	}

	if bytes.Equal(current, res.Content) {
		g.logger.Info().
			Str("path", res.Path).
			Int("count", len(res.Entries)).
			Msg("Migration checksums are up to date")
		return res, nil
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(current)),
		B:        difflib.SplitLines(string(res.Content)),
		FromFile: res.Path,
		ToFile:   res.Path + " (expected)",
		Context:  3,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to diff %s: %w", res.Path, err)
	}
	res.Diff = diff

	return res, &Error{Kind: ErrOutOfDate, Path: res.Path, Msg: "run generate to refresh it"}
}

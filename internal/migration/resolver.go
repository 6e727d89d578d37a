package migration

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// DefaultExcludes are the VCS and editor files dropped from every source
// tree unless FilterSpec.DefaultExcludes is false.
var DefaultExcludes = []string{
	"**/.git/**",
	"**/.svn/**",
	"**/.hg/**",
	"**/.DS_Store",
	"**/.gitignore",
	"**/.gitattributes",
	"**/.gitkeep",
	"**/*~",
	"**/#*#",
	"**/.#*",
	"**/._*",
}

// FilterSpec narrows a candidate set with Ant-style patterns matched against
// the slash-separated path relative to the source root. An empty include
// list matches everything; any exclude match drops the file.
type FilterSpec struct {
	Includes        []string
	Excludes        []string
	DefaultExcludes bool
}

// Validate rejects patterns the matcher cannot parse.
func (f FilterSpec) Validate() error {
	for _, p := range f.Includes {
		if !doublestar.ValidatePattern(normalizePattern(p)) {
			return configErrorf("invalid include pattern %q", p)
		}
	}
	for _, p := range f.Excludes {
		if !doublestar.ValidatePattern(normalizePattern(p)) {
			return configErrorf("invalid exclude pattern %q", p)
		}
	}
	return nil
}

// Matches reports whether a relative path survives the filter.
func (f FilterSpec) Matches(relPath string) bool {
	if len(f.Includes) > 0 && !matchAny(f.Includes, relPath) {
		return false
	}
	if matchAny(f.Excludes, relPath) {
		return false
	}
	if f.DefaultExcludes && matchAny(DefaultExcludes, relPath) {
		return false
	}
	return true
}

func matchAny(patterns []string, relPath string) bool {
	for _, p := range patterns {
		ok, err := doublestar.Match(normalizePattern(p), relPath)
		if err == nil && ok {
			return true
		}
	}
	return false
}

// normalizePattern applies the Ant conventions: backslashes are separators,
// a leading "/" is ignored and a trailing "/" means everything beneath.
func normalizePattern(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "/")
	if strings.HasSuffix(p, "/") {
		p += "**"
	}
	return p
}

// ResolveFiles filters candidates and orders the survivors by absolute path,
// byte-wise. The same file reached through two sources is kept once.
func ResolveFiles(fs afero.Fs, candidates []Candidate, filter FilterSpec) ([]SourceFile, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(candidates))
	var files []SourceFile
	for _, c := range candidates {
		if !filter.Matches(c.RelPath) {
			continue
		}
		if _, dup := seen[c.Path]; dup {
			continue
		}
		seen[c.Path] = struct{}{}
		files = append(files, NewSourceFile(fs, c.Path, c.RelPath))
	}

	if len(files) == 0 {
		return nil, &Error{Kind: ErrNoInput, Msg: "no files matched the configured sources and filters"}
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})

	return files, nil
}

type Resolver struct {
	fs     afero.Fs
	logger zerolog.Logger
}

func NewResolver(fs afero.Fs, logger zerolog.Logger) *Resolver {
	return &Resolver{fs: fs, logger: logger}
}

// Resolve scans sources and returns the filtered, ordered migration set.
func (r *Resolver) Resolve(sources []string, filter FilterSpec) ([]SourceFile, error) {
	if len(sources) == 0 {
		return nil, configErrorf("at least one source must be specified")
	}

	candidates, err := ScanSources(r.fs, sources)
	if err != nil {
		return nil, err
	}

	r.logger.Debug().
		Strs("sources", sources).
		Int("candidates", len(candidates)).
		Msg("Scanned migration sources")

	files, err := ResolveFiles(r.fs, candidates, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve migrations: %w", err)
	}

	r.logger.Debug().
		Int("count", len(files)).
		Strs("includes", filter.Includes).
		Strs("excludes", filter.Excludes).
		Msg("Resolved migration set")

	return files, nil
}

// CheckDuplicateIdentifiers fails on the first identifier shared by two files.
func CheckDuplicateIdentifiers(files []SourceFile) error {
	seen := make(map[string]string, len(files))
	for _, f := range files {
		id := f.Identifier()
		if prev, ok := seen[id]; ok {
			return &Error{
				Kind: ErrDuplicateIdentifier,
				Msg:  fmt.Sprintf("%q is derived from both %s and %s", id, prev, f.Path),
			}
		}
		seen[id] = f.Path
	}
	return nil
}

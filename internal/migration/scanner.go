package migration

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/spf13/afero"
)

// Candidate is a regular file found under one of the configured sources,
// before any include/exclude filtering.
type Candidate struct {
	Path    string // absolute path with forward slashes
	RelPath string // path relative to the source root, forward slashes
}

// ScanSources enumerates every regular file under the given sources. A source
// may be a directory, walked recursively, or a single file whose relative
// path is its base name. Directory entries are visited in lexical order.
func ScanSources(fs afero.Fs, sources []string) ([]Candidate, error) {
	var candidates []Candidate

	for _, source := range sources {
		root, err := filepath.Abs(source)
		if err != nil {
			return nil, configErrorf("failed to resolve source %s: %v", source, err)
		}

		info, err := fs.Stat(root)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, configErrorf("source %s does not exist", source)
			}
			return nil, sourceReadError(toSlash(root), err)
		}

		if !info.IsDir() {
			if info.Mode().IsRegular() {
				candidates = append(candidates, Candidate{
					Path:    toSlash(root),
					RelPath: path.Base(toSlash(root)),
				})
			}
			continue
		}

		found, err := scanDir(fs, root)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, found...)
	}

	return candidates, nil
}

func scanDir(fs afero.Fs, root string) ([]Candidate, error) {
	var found []Candidate

	err := afero.Walk(fs, root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return sourceReadError(toSlash(p), err)
		}
		if info.Mode()&os.ModeSymlink != 0 {
			// Links to files are followed; links to directories are not.
			target, err := fs.Stat(p)
			if err != nil {
				return sourceReadError(toSlash(p), err)
			}
			info = target
		}
		if info.IsDir() || !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return fmt.Errorf("failed to relativize %s: %w", p, err)
		}

		found = append(found, Candidate{
			Path:    toSlash(p),
			RelPath: toSlash(rel),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return found, nil
}

func toSlash(p string) string {
	return filepath.ToSlash(p)
}

func fromSlash(p string) string {
	return filepath.FromSlash(p)
}

package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func relPaths(candidates []Candidate) []string {
	var out []string
	for _, c := range candidates {
		out = append(out, c.RelPath)
	}
	return out
}

func TestScanSources_Testdata(t *testing.T) {
	dir := filepath.Join("..", "..", "testdata", "migrations")

	candidates, err := ScanSources(afero.NewOsFs(), []string{dir})
	require.NoError(t, err)

	assert.Equal(t, []string{
		".gitkeep",
		"README.txt",
		"V1__init.sql",
		"V2__seed.sql",
		"archive/V0__legacy.sql",
	}, relPaths(candidates))

	for _, c := range candidates {
		assert.True(t, filepath.IsAbs(filepath.FromSlash(c.Path)), c.Path)
	}
}

func TestScanSources_SingleFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	createTestMigration(t, fs, "/src/db/V1__init.sql", "CREATE TABLE t;")

	candidates, err := ScanSources(fs, []string{"/src/db/V1__init.sql"})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "/src/db/V1__init.sql", candidates[0].Path)
	assert.Equal(t, "V1__init.sql", candidates[0].RelPath)
}

func TestScanSources_MultipleRoots(t *testing.T) {
	fs := afero.NewMemMapFs()
	createTestMigration(t, fs, "/a/V1__one.sql", "one")
	createTestMigration(t, fs, "/b/nested/V2__two.sql", "two")

	candidates, err := ScanSources(fs, []string{"/b", "/a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"nested/V2__two.sql", "V1__one.sql"}, relPaths(candidates))
}

func TestScanSources_EmptyDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/empty", 0755))

	candidates, err := ScanSources(fs, []string{"/empty"})
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestScanSources_NonExistent(t *testing.T) {
	_, err := ScanSources(afero.NewMemMapFs(), []string{"/nonexistent/path"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "/nonexistent/path")
}

func TestScanSources_Symlinks(t *testing.T) {
	root := t.TempDir()
	source := filepath.Join(root, "migrations")
	shared := filepath.Join(root, "shared")
	require.NoError(t, os.MkdirAll(source, 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(shared, "nested"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(source, "V1__init.sql"), []byte("CREATE TABLE t;\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(shared, "V2__seed.sql"), []byte("INSERT INTO t VALUES (1);\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(shared, "nested", "V3__more.sql"), []byte("SELECT 1;\n"), 0644))

	require.NoError(t, os.Symlink(filepath.Join(shared, "V2__seed.sql"), filepath.Join(source, "V2__seed.sql")))
	require.NoError(t, os.Symlink(filepath.Join(shared, "nested"), filepath.Join(source, "nested")))

	candidates, err := ScanSources(afero.NewOsFs(), []string{source})
	require.NoError(t, err)
	assert.Equal(t, []string{"V1__init.sql", "V2__seed.sql"}, relPaths(candidates))
	assert.Equal(t, filepath.ToSlash(filepath.Join(source, "V2__seed.sql")), candidates[1].Path)

	checksum, err := CalculateFileChecksum(afero.NewOsFs(), candidates[1].Path)
	require.NoError(t, err)
	assert.Equal(t, int32(-705379488), checksum)
}

func TestScanSources_DanglingSymlink(t *testing.T) {
	source := t.TempDir()
	require.NoError(t, os.Symlink(filepath.Join(source, "missing.sql"), filepath.Join(source, "V1__gone.sql")))

	_, err := ScanSources(afero.NewOsFs(), []string{source})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSourceRead)
	assert.Contains(t, err.Error(), "V1__gone.sql")
}

func createTestMigration(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
}

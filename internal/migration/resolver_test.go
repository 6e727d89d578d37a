package migration

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(files []SourceFile) []string {
	var out []string
	for _, f := range files {
		out = append(out, f.RelPath)
	}
	return out
}

func candidatesFor(relPaths ...string) []Candidate {
	var out []Candidate
	for _, p := range relPaths {
		out = append(out, Candidate{Path: "/src/" + p, RelPath: p})
	}
	return out
}

func TestResolveFiles_IncludeExclude(t *testing.T) {
	fs := afero.NewMemMapFs()
	candidates := candidatesFor("A.sql", "B.sql", "A.txt")

	files, err := ResolveFiles(fs, candidates, FilterSpec{Includes: []string{"*.sql"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"A.sql", "B.sql"}, names(files))

	files, err = ResolveFiles(fs, candidates, FilterSpec{
		Includes: []string{"*.sql"},
		Excludes: []string{"A.sql"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"B.sql"}, names(files))
}

func TestResolveFiles_EmptyIncludesMatchAll(t *testing.T) {
	files, err := ResolveFiles(afero.NewMemMapFs(), candidatesFor("b.sql", "a.txt"), FilterSpec{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.sql"}, names(files))
}

func TestResolveFiles_Patterns(t *testing.T) {
	candidates := candidatesFor(
		"V1__init.sql",
		"nested/V2__add.sql",
		"nested/deeper/V3__more.sql",
		"archive/V0__old.sql",
		"nested/.DS_Store",
		".git/config",
		"V4__draft.sql~",
	)

	tests := []struct {
		name   string
		filter FilterSpec
		want   []string
	}{
		{
			name:   "single star stays in one directory",
			filter: FilterSpec{Includes: []string{"*.sql"}},
			want:   []string{"V1__init.sql"},
		},
		{
			name:   "double star crosses directories",
			filter: FilterSpec{Includes: []string{"**/*.sql"}},
			want: []string{
				"V1__init.sql",
				"archive/V0__old.sql",
				"nested/V2__add.sql",
				"nested/deeper/V3__more.sql",
			},
		},
		{
			name: "trailing slash excludes a whole directory",
			filter: FilterSpec{
				Includes: []string{"**/*.sql"},
				Excludes: []string{"archive/", "nested/deeper/"},
			},
			want: []string{"V1__init.sql", "nested/V2__add.sql"},
		},
		{
			name:   "default excludes drop vcs and editor files",
			filter: FilterSpec{DefaultExcludes: true},
			want: []string{
				"V1__init.sql",
				"archive/V0__old.sql",
				"nested/V2__add.sql",
				"nested/deeper/V3__more.sql",
			},
		},
		{
			name:   "without default excludes everything is kept",
			filter: FilterSpec{Excludes: []string{"**/*.sql"}},
			want:   []string{".git/config", "V4__draft.sql~", "nested/.DS_Store"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := ResolveFiles(afero.NewMemMapFs(), candidates, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(files))
		})
	}
}

func TestResolveFiles_NoInput(t *testing.T) {
	_, err := ResolveFiles(afero.NewMemMapFs(), candidatesFor("A.sql"), FilterSpec{Excludes: []string{"**"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoInput)

	_, err = ResolveFiles(afero.NewMemMapFs(), nil, FilterSpec{})
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestResolveFiles_InvalidPattern(t *testing.T) {
	_, err := ResolveFiles(afero.NewMemMapFs(), candidatesFor("A.sql"), FilterSpec{Includes: []string{"[a-"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestResolveFiles_DeduplicatesSamePath(t *testing.T) {
	candidates := []Candidate{
		{Path: "/src/db/V1__init.sql", RelPath: "db/V1__init.sql"},
		{Path: "/src/db/V1__init.sql", RelPath: "V1__init.sql"},
	}
	files, err := ResolveFiles(afero.NewMemMapFs(), candidates, FilterSpec{})
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestResolver_Resolve(t *testing.T) {
	fs := afero.NewMemMapFs()
	createTestMigration(t, fs, "/project/migrations/V2__seed.sql", "INSERT INTO t VALUES (1);")
	createTestMigration(t, fs, "/project/migrations/V1__init.sql", "CREATE TABLE t;")
	createTestMigration(t, fs, "/project/migrations/notes.txt", "notes")
	createTestMigration(t, fs, "/project/extra/V3__extra.sql", "SELECT 1;")

	resolver := NewResolver(fs, zerolog.Nop())
	files, err := resolver.Resolve(
		[]string{"/project/migrations", "/project/extra/V3__extra.sql"},
		FilterSpec{Includes: []string{"*.sql"}, DefaultExcludes: true},
	)
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{
		"/project/extra/V3__extra.sql",
		"/project/migrations/V1__init.sql",
		"/project/migrations/V2__seed.sql",
	}, paths)
}

func TestResolver_Resolve_NoSources(t *testing.T) {
	_, err := NewResolver(afero.NewMemMapFs(), zerolog.Nop()).Resolve(nil, FilterSpec{})
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestResolver_Resolve_Deterministic(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, name := range []string{"V3__c.sql", "V1__a.sql", "V10__j.sql", "V2__b.sql"} {
		createTestMigration(t, fs, "/m/"+name, name)
	}

	resolver := NewResolver(fs, zerolog.Nop())
	first, err := resolver.Resolve([]string{"/m"}, FilterSpec{})
	require.NoError(t, err)
	second, err := resolver.Resolve([]string{"/m"}, FilterSpec{})
	require.NoError(t, err)

	assert.Equal(t, names(first), names(second))
	assert.Equal(t, []string{"V10__j.sql", "V1__a.sql", "V2__b.sql", "V3__c.sql"}, names(first))
}

func TestCheckDuplicateIdentifiers(t *testing.T) {
	fs := afero.NewMemMapFs()
	files := []SourceFile{
		NewSourceFile(fs, "/a/V1__init.sql", "V1__init.sql"),
		NewSourceFile(fs, "/b/V1__init.java", "V1__init.java"),
	}

	err := CheckDuplicateIdentifiers(files)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateIdentifier)
	assert.Contains(t, err.Error(), "/a/V1__init.sql")
	assert.Contains(t, err.Error(), "/b/V1__init.java")

	assert.NoError(t, CheckDuplicateIdentifiers(files[:1]))
}

func TestIdentifierFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"V2__add_table.sql", "V2__add_table"},
		{"archive.tar.gz", "archive.tar"},
		{"V1__init.java", "V1__init"},
		{"/abs/path/V3__x.sql", "V3__x"},
		{"noext", "noext"},
		{".hidden", ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, IdentifierFromFilename(tt.filename))
		})
	}
}

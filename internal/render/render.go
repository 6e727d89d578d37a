// Package render turns a migration checksum table into the text of the
// generated artifact. Each renderer owns its parsed template; nothing is
// shared between instances.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"go/format"
	"io"
	"strings"
	"sync"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/migration-checksum/migration-checksum/internal/migration"
)

const (
	FormatJava = "java"
	FormatGo   = "go"
	FormatYAML = "yaml"
)

//go:embed templates/*.tmpl
var templates embed.FS

// Formats lists the supported artifact formats.
func Formats() []string {
	return []string{FormatJava, FormatGo, FormatYAML}
}

// New returns a fresh renderer for format.
func New(format string) (migration.Renderer, error) {
	switch format {
	case FormatJava:
		return NewJava(), nil
	case FormatGo:
		return NewGo(), nil
	case FormatYAML:
		return NewYAML(), nil
	default:
		return nil, fmt.Errorf("%w: unsupported format %q (supported: %s)",
			migration.ErrConfiguration, format, strings.Join(Formats(), ", "))
	}
}

// templateRenderer parses its template on first use.
type templateRenderer struct {
	name     string
	ext      string
	file     string
	check    func(migration.Table) error
	postfix  func([]byte) ([]byte, error)
	once     sync.Once
	tmpl     *template.Template
	parseErr error
}

func (r *templateRenderer) Name() string      { return r.name }
func (r *templateRenderer) Extension() string { return r.ext }

func (r *templateRenderer) template() (*template.Template, error) {
	r.once.Do(func() {
		r.tmpl, r.parseErr = template.New(r.file).Funcs(funcs).ParseFS(templates, "templates/"+r.file)
	})
	return r.tmpl, r.parseErr
}

func (r *templateRenderer) Render(w io.Writer, table migration.Table) error {
	if r.check != nil {
		if err := r.check(table); err != nil {
			return err
		}
	}

	tmpl, err := r.template()
	if err != nil {
		return fmt.Errorf("failed to load template %s: %w", r.file, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, table); err != nil {
		return fmt.Errorf("failed to render %s: %w", r.file, err)
	}

	out := buf.Bytes()
	if r.postfix != nil {
		if out, err = r.postfix(out); err != nil {
			return err
		}
	}

	_, err = w.Write(out)
	return err
}

var funcs = template.FuncMap{
	"isLast": func(i int, entries []migration.ChecksumEntry) bool {
		return i == len(entries)-1
	},
	"goPackage": func(namespace string) string {
		return namespace[strings.LastIndex(namespace, ".")+1:]
	},
}

// NewJava renders a Java enum with one constant per migration.
func NewJava() migration.Renderer {
	return &templateRenderer{
		name:  FormatJava,
		ext:   "java",
		file:  "java-migration-checksum-enum.tmpl",
		check: checkIdentifiers,
	}
}

// NewGo renders a gofmt'ed Go source file holding an ordered entry slice.
func NewGo() migration.Renderer {
	return &templateRenderer{
		name: FormatGo,
		ext:  "go",
		file: "go-migration-checksum.tmpl",
		postfix: func(src []byte) ([]byte, error) {
			formatted, err := format.Source(src)
			if err != nil {
				return nil, fmt.Errorf("generated Go source does not parse: %w", err)
			}
			return formatted, nil
		},
	}
}

// checkIdentifiers rejects entries that cannot become enum constants.
func checkIdentifiers(table migration.Table) error {
	for _, e := range table.Entries {
		if !migration.IsIdentifier(e.Identifier) {
			return fmt.Errorf("migration %q (%s) cannot be used as an identifier - rename the file or exclude it", e.Identifier, e.Path)
		}
	}
	return nil
}

type yamlRenderer struct{}

// NewYAML renders a plain YAML document for non-JVM consumers.
func NewYAML() migration.Renderer {
	return yamlRenderer{}
}

func (yamlRenderer) Name() string      { return FormatYAML }
func (yamlRenderer) Extension() string { return "yaml" }

type yamlDocument struct {
	Package    string                    `yaml:"package"`
	Name       string                    `yaml:"name"`
	Migrations []migration.ChecksumEntry `yaml:"migrations"`
}

func (yamlRenderer) Render(w io.Writer, table migration.Table) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(yamlDocument{
		Package:    table.Package,
		Name:       table.TypeName,
		Migrations: table.Entries,
	}); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}

// Package checksumgen provides an embeddable generator for Flyway-compatible
// migration checksum tables, for use as a Go library in build tooling.
//
// Example usage:
//
//	g, err := checksumgen.New(
//	    checksumgen.WithSources("src/main/java/db/migration"),
//	    checksumgen.WithIncludes("**/V*.java"),
//	    checksumgen.WithTypeName("com.example.db.MigrationChecksum"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := g.Generate()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("wrote", res.Path)
package checksumgen

import (
	"fmt"
	"io"

	"github.com/migration-checksum/migration-checksum/internal/config"
	"github.com/migration-checksum/migration-checksum/internal/migration"
	"github.com/migration-checksum/migration-checksum/internal/render"
)

type Generator struct {
	settings  *settings
	resolver  *migration.Resolver
	generator *migration.Generator
}

func New(opts ...Option) (*Generator, error) {
	s := defaultSettings()
	for _, opt := range opts {
		opt(s)
	}

	if err := s.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	renderer, err := render.New(s.config.Format)
	if err != nil {
		return nil, err
	}

	return &Generator{
		settings:  s,
		resolver:  migration.NewResolver(s.fs, s.logger),
		generator: migration.NewGenerator(s.fs, renderer, s.logger),
	}, nil
}

// Generate resolves the sources and writes the artifact.
func (g *Generator) Generate() (*migration.Result, error) {
	target := g.settings.config.Target()
	if err := target.Validate(); err != nil {
		return nil, err
	}

	files, err := g.resolve()
	if err != nil {
		return nil, err
	}
	return g.generator.Generate(files, target)
}

// Check renders the artifact in memory and compares it with the file on
// disk. A stale or missing artifact yields migration.ErrOutOfDate along
// with a result carrying the unified diff.
func (g *Generator) Check() (*migration.Result, error) {
	target := g.settings.config.Target()
	if err := target.Validate(); err != nil {
		return nil, err
	}

	files, err := g.resolve()
	if err != nil {
		return nil, err
	}
	return g.generator.Check(files, target)
}

// Files returns the resolved file set without reading any content.
func (g *Generator) Files() ([]migration.SourceFile, error) {
	return g.resolve()
}

// Calculate returns the checksum of a single migration body.
func (g *Generator) Calculate(r io.Reader) (int32, error) {
	return migration.CalculateChecksum(r)
}

func (g *Generator) resolve() ([]migration.SourceFile, error) {
	return g.resolver.Resolve(g.settings.config.Sources, g.settings.config.Filter())
}

// Config returns a copy of the effective configuration.
func (g *Generator) Config() config.Config {
	return *g.settings.config
}

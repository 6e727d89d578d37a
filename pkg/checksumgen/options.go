package checksumgen

import (
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/migration-checksum/migration-checksum/internal/config"
)

type settings struct {
	config *config.Config
	fs     afero.Fs
	logger zerolog.Logger
}

func defaultSettings() *settings {
	return &settings{
		config: config.Default(),
		fs:     afero.NewOsFs(),
		logger: zerolog.Nop(),
	}
}

type Option func(*settings)

func WithSources(sources ...string) Option {
	return func(s *settings) {
		s.config.Sources = sources
	}
}

func WithIncludes(patterns ...string) Option {
	return func(s *settings) {
		s.config.Includes = patterns
	}
}

func WithExcludes(patterns ...string) Option {
	return func(s *settings) {
		s.config.Excludes = patterns
	}
}

// WithDefaultExcludes toggles the built-in VCS and editor file excludes.
func WithDefaultExcludes(enabled bool) Option {
	return func(s *settings) {
		s.config.DefaultExcludes = enabled
	}
}

func WithDestination(dir string) Option {
	return func(s *settings) {
		s.config.Destination = dir
	}
}

func WithTypeName(name string) Option {
	return func(s *settings) {
		s.config.TypeName = name
	}
}

func WithFormat(format string) Option {
	return func(s *settings) {
		s.config.Format = format
	}
}

// WithFs replaces the OS filesystem, e.g. with afero.NewMemMapFs in tests.
func WithFs(fs afero.Fs) Option {
	return func(s *settings) {
		s.fs = fs
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/migration-checksum/migration-checksum/internal/migration"
	"github.com/migration-checksum/migration-checksum/internal/render"
)

const (
	DefaultSource      = "src/main/java/db/migration"
	DefaultDestination = "build/generated/migration-checksum"
	DefaultTypeName    = "db.migration.JavaMigrationChecksum"
	DefaultFormat      = render.FormatJava
	DefaultLogLevel    = "info"
)

type Config struct {
	Sources         []string `mapstructure:"sources" yaml:"sources"`
	Includes        []string `mapstructure:"includes" yaml:"includes"`
	Excludes        []string `mapstructure:"excludes" yaml:"excludes"`
	DefaultExcludes bool     `mapstructure:"default_excludes" yaml:"default_excludes"`
	Destination     string   `mapstructure:"destination" yaml:"destination"`
	TypeName        string   `mapstructure:"type_name" yaml:"type_name"`
	Format          string   `mapstructure:"format" yaml:"format"`
	LogLevel        string   `mapstructure:"log_level" yaml:"log_level"`
}

func Default() *Config {
	return &Config{
		Sources:         []string{DefaultSource},
		DefaultExcludes: true,
		Destination:     DefaultDestination,
		TypeName:        DefaultTypeName,
		Format:          DefaultFormat,
		LogLevel:        DefaultLogLevel,
	}
}

// SetDefaults registers the defaults on v so they rank below config file,
// environment and explicitly set flags.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("sources", d.Sources)
	v.SetDefault("includes", []string{})
	v.SetDefault("excludes", []string{})
	v.SetDefault("default_excludes", d.DefaultExcludes)
	v.SetDefault("destination", d.Destination)
	v.SetDefault("type_name", d.TypeName)
	v.SetDefault("format", d.Format)
	v.SetDefault("log_level", d.LogLevel)
}

func Load(v *viper.Viper) (*Config, error) {
	cfg := Default()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	cfg.Sources = compact(cfg.Sources)
	cfg.Includes = compact(cfg.Includes)
	cfg.Excludes = compact(cfg.Excludes)

	return cfg, nil
}

func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("%w: at least one source must be specified", migration.ErrConfiguration)
	}

	if strings.TrimSpace(c.Destination) == "" {
		return fmt.Errorf("%w: destination must be specified", migration.ErrConfiguration)
	}

	if c.TypeName == "" {
		return fmt.Errorf("%w: type_name must be specified", migration.ErrConfiguration)
	}

	if _, err := render.New(c.Format); err != nil {
		return fmt.Errorf("format: %w", err)
	}

	if err := c.Filter().Validate(); err != nil {
		return err
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unsupported log_level: %s", migration.ErrConfiguration, c.LogLevel)
	}

	return nil
}

func (c *Config) Filter() migration.FilterSpec {
	return migration.FilterSpec{
		Includes:        c.Includes,
		Excludes:        c.Excludes,
		DefaultExcludes: c.DefaultExcludes,
	}
}

func (c *Config) Target() migration.OutputTarget {
	return migration.OutputTarget{
		Name:        c.TypeName,
		Destination: c.Destination,
	}
}

// compact trims entries and drops empty ones, so "a, b," from the
// environment behaves like ["a", "b"].
func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

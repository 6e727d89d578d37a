package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/migration-checksum/migration-checksum/internal/config"
	"github.com/migration-checksum/migration-checksum/internal/migration"
	"github.com/migration-checksum/migration-checksum/internal/render"
)

var (
	cfgFile string
	cfg     *config.Config
	log     zerolog.Logger
	fs      = afero.NewOsFs()

	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "migration-checksum",
	Short: "Generate Flyway-compatible checksums for migration source files",
	Long: `migration-checksum calculates the checksum Flyway records for SQL migrations
for every migration source file in a file set, and generates a lookup table
(a Java enum by default) mapping migration name to checksum.

Java-based migrations can return the generated value from getChecksum() so that
Flyway detects edits to an already applied migration.

The file set is made of one or more sources (directories or files), narrowed by
Ant-style include and exclude patterns such as "**/V*.java".`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults(viper.GetViper())

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./migration-checksum.yaml)")
	rootCmd.PersistentFlags().StringSlice("source", nil, "migration source directories or files (default: "+config.DefaultSource+")")
	rootCmd.PersistentFlags().StringSlice("include", nil, "Ant-style include patterns, relative to each source")
	rootCmd.PersistentFlags().StringSlice("exclude", nil, "Ant-style exclude patterns, relative to each source")
	rootCmd.PersistentFlags().Bool("default-excludes", true, "skip VCS and editor files")
	rootCmd.PersistentFlags().String("destination", "", "output directory (default: "+config.DefaultDestination+")")
	rootCmd.PersistentFlags().String("type-name", "", "fully qualified name of the generated type (default: "+config.DefaultTypeName+")")
	rootCmd.PersistentFlags().String("format", "", fmt.Sprintf("artifact format %v (default: %s)", render.Formats(), config.DefaultFormat))
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")

	_ = viper.BindPFlag("sources", rootCmd.PersistentFlags().Lookup("source"))
	_ = viper.BindPFlag("includes", rootCmd.PersistentFlags().Lookup("include"))
	_ = viper.BindPFlag("excludes", rootCmd.PersistentFlags().Lookup("exclude"))
	_ = viper.BindPFlag("default_excludes", rootCmd.PersistentFlags().Lookup("default-excludes"))
	_ = viper.BindPFlag("destination", rootCmd.PersistentFlags().Lookup("destination"))
	_ = viper.BindPFlag("type_name", rootCmd.PersistentFlags().Lookup("type-name"))
	_ = viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.SetVersionTemplate(fmt.Sprintf("migration-checksum %s (commit: %s, built: %s)\n", version, commit, date))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("migration-checksum")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.migration-checksum")
		viper.AddConfigPath("/etc/migration-checksum")
	}

	viper.SetEnvPrefix("MIGRATION_CHECKSUM")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func initLogger() {
	level := viper.GetString("log_level")
	if level == "" {
		level = "info"
	}

	var l zerolog.Level
	switch level {
	case "debug":
		l = zerolog.DebugLevel
	case "warn":
		l = zerolog.WarnLevel
	case "error":
		l = zerolog.ErrorLevel
	default:
		l = zerolog.InfoLevel
	}

	log = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: "15:04:05",
	}).Level(l).With().Timestamp().Logger()
}

func loadConfig() error {
	initLogger()

	var err error
	cfg, err = config.Load(viper.GetViper())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		if errors.Is(err, migration.ErrConfiguration) {
			return err
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	return nil
}

// resolveMigrations runs the resolver over the configured sources.
func resolveMigrations() ([]migration.SourceFile, error) {
	resolver := migration.NewResolver(fs, log)
	return resolver.Resolve(cfg.Sources, cfg.Filter())
}

func newGenerator() (*migration.Generator, error) {
	renderer, err := render.New(cfg.Format)
	if err != nil {
		return nil, err
	}
	return migration.NewGenerator(fs, renderer, log), nil
}
